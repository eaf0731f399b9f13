package testutils

import (
	"time"

	"github.com/jackrehmann/fade-scalps/types"
)

// Tape builds an observation sequence for one symbol with timestamps
// expressed as offsets from a fixed base, which keeps test scenarios short
// and deterministic.
type Tape struct {
	Symbol string
	Base   time.Time
	Obs    []types.Observation
}

// NewTape starts a tape at a fixed, arbitrary session open.
func NewTape(symbol string) *Tape {
	return &Tape{
		Symbol: symbol,
		Base:   time.Date(2024, 3, 11, 10, 0, 0, 0, time.UTC),
	}
}

// At appends an observation at Base+offset.
func (t *Tape) At(offset time.Duration, price float64) *Tape {
	t.Obs = append(t.Obs, types.Observation{
		Symbol:    t.Symbol,
		Price:     price,
		Timestamp: t.Base.Add(offset),
	})
	return t
}

// Feed runs every observation through fn, collecting the trades. fn is
// typically Engine.Process.
func (t *Tape) Feed(fn func(types.Observation) ([]types.Trade, error)) ([]types.Trade, error) {
	var trades []types.Trade
	for _, obs := range t.Obs {
		out, err := fn(obs)
		if err != nil {
			return trades, err
		}
		trades = append(trades, out...)
	}
	return trades, nil
}
