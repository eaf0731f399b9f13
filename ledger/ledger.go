// Package ledger owns position bookkeeping: current and peak quantity,
// volume-weighted entry price, the append-only trade log and realized P&L.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackrehmann/fade-scalps/types"
)

// ErrSignFlip is returned when a single Apply would cross through zero into
// the opposite sign. Reversals must be expressed as two discrete trades:
// flatten, then open.
type ErrSignFlip struct {
	Symbol  string
	Current int64
	Target  int64
}

func (e *ErrSignFlip) Error() string {
	return fmt.Sprintf("%s: target %d crosses zero from %d; flatten first", e.Symbol, e.Target, e.Current)
}

type position struct {
	qty      int64
	peak     int64
	avgEntry float64
	realized float64
}

// Ledger tracks positions and trades for any number of symbols. It carries
// its own lock so independent per-symbol callers can share one instance.
type Ledger struct {
	mu        sync.RWMutex
	positions map[string]*position
	trades    []types.Trade
}

func New() *Ledger {
	return &Ledger{positions: make(map[string]*position)}
}

// Apply moves the symbol's position to target at the given price, recording
// a trade for the delta. A zero delta records nothing and returns nil.
func (l *Ledger) Apply(symbol string, target int64, price float64, ts time.Time, reason string, capped bool) (*types.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.pos(symbol)
	delta := target - p.qty
	if delta == 0 {
		return nil, nil
	}
	if (p.qty > 0 && target < 0) || (p.qty < 0 && target > 0) {
		return nil, &ErrSignFlip{Symbol: symbol, Current: p.qty, Target: target}
	}

	switch {
	case p.qty == 0 || sameSign(delta, p.qty):
		// Open or increase: fold the increment into the VWAP entry.
		prevAbs := float64(abs64(p.qty))
		addAbs := float64(abs64(delta))
		p.avgEntry = (p.avgEntry*prevAbs + price*addAbs) / (prevAbs + addAbs)
	default:
		// Reduce or close: realize P&L on the closed quantity, keep the
		// entry price for whatever stays open.
		closed := float64(abs64(delta))
		if p.qty > 0 {
			p.realized += closed * (price - p.avgEntry)
		} else {
			p.realized += closed * (p.avgEntry - price)
		}
	}

	p.qty = target
	if p.qty == 0 {
		p.avgEntry = 0
		p.peak = 0
	} else if abs64(target) > abs64(p.peak) {
		p.peak = target
	}

	side := types.Buy
	if delta < 0 {
		side = types.Sell
	}
	tr := types.Trade{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Timestamp:    ts,
		Price:        price,
		Side:         side,
		Qty:          delta,
		ResultingQty: target,
		Reason:       reason,
		Capped:       capped,
	}
	l.trades = append(l.trades, tr)
	return &tr, nil
}

// Flatten forces the symbol's position to zero at the given price. Calling
// it on a flat symbol is a no-op and records no trade.
func (l *Ledger) Flatten(symbol string, price float64, ts time.Time, reason string) *types.Trade {
	tr, _ := l.Apply(symbol, 0, price, ts, reason, false)
	return tr
}

// Position returns the symbol's current state snapshot.
func (l *Ledger) Position(symbol string) types.PositionState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[symbol]
	if !ok {
		return types.PositionState{}
	}
	return types.PositionState{CurrentQty: p.qty, PeakQty: p.peak, AvgEntryPrice: p.avgEntry}
}

// MarkToMarket values the symbol's open position at the given price. The
// signed formula qty*(price-avgEntry) holds for longs and shorts alike.
func (l *Ledger) MarkToMarket(symbol string, price float64) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.positions[symbol]
	if !ok || p.qty == 0 {
		return 0
	}
	return float64(p.qty) * (price - p.avgEntry)
}

// RealizedPnL sums realized P&L across all symbols.
func (l *Ledger) RealizedPnL() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0.0
	for _, p := range l.positions {
		total += p.realized
	}
	return total
}

// Trades returns a copy of the full trade log in emission order.
func (l *Ledger) Trades() []types.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

// TradesFor returns the symbol's trades in emission order.
func (l *Ledger) TradesFor(symbol string) []types.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []types.Trade
	for _, tr := range l.trades {
		if tr.Symbol == symbol {
			out = append(out, tr)
		}
	}
	return out
}

// Positions returns current quantity per symbol, omitting flat symbols
// that never traded.
func (l *Ledger) Positions() map[string]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int64, len(l.positions))
	for sym, p := range l.positions {
		out[sym] = p.qty
	}
	return out
}

// OpenSymbols returns the symbols with a non-zero position.
func (l *Ledger) OpenSymbols() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []string
	for sym, p := range l.positions {
		if p.qty != 0 {
			out = append(out, sym)
		}
	}
	return out
}

// Reset drops all state for the symbol, trade log excepted.
func (l *Ledger) Reset(symbol string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.positions, symbol)
}

func (l *Ledger) pos(symbol string) *position {
	p, ok := l.positions[symbol]
	if !ok {
		p = &position{}
		l.positions[symbol] = p
	}
	return p
}

func sameSign(a, b int64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
