// Package engine drives the tick-to-trade pipeline: rolling price window,
// position-aware move, ratchet sizing and ledger bookkeeping, one owned
// state record per symbol.
package engine

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jackrehmann/fade-scalps/config"
	"github.com/jackrehmann/fade-scalps/ledger"
	"github.com/jackrehmann/fade-scalps/logger"
	"github.com/jackrehmann/fade-scalps/metrics"
	"github.com/jackrehmann/fade-scalps/risk"
	"github.com/jackrehmann/fade-scalps/types"
	"github.com/jackrehmann/fade-scalps/window"
)

const reasonSessionEnd = "end of session flatten"

// symbolState is the per-symbol mutable state. Each symbol has its own
// lock, so distinct symbols can be driven from distinct goroutines as long
// as each individual stream stays serialized.
type symbolState struct {
	mu     sync.Mutex
	window *window.Window
	// failed latches an invariant violation; the symbol refuses further
	// observations once set.
	failed error
}

// Engine is the fade orchestrator. Construct with New, feed it
// observations, flatten at session end, snapshot with Summary.
type Engine struct {
	cfg    config.EngineConfig
	log    logger.Logger
	ledger *ledger.Ledger

	mu     sync.RWMutex
	states map[string]*symbolState
}

// New validates the config and returns a ready engine. A nil logger is
// replaced with a no-op one.
func New(cfg config.EngineConfig, log logger.Logger) (*Engine, error) {
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	log.Info("engine_initialized",
		logger.Float64("shares_per_dollar", cfg.SharesPerDollar),
		logger.Float64("min_move_threshold", cfg.MinMoveThreshold),
		logger.Duration("time_window", cfg.TimeWindow),
		logger.Int64("max_position", cfg.MaxPosition),
	)
	return &Engine{
		cfg:    cfg,
		log:    log,
		ledger: ledger.New(),
		states: make(map[string]*symbolState),
	}, nil
}

// Ledger exposes the underlying position ledger for read-side collaborators.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Process is an Observation-struct convenience over OnObservation.
func (e *Engine) Process(obs types.Observation) ([]types.Trade, error) {
	return e.OnObservation(obs.Symbol, obs.Price, obs.Timestamp)
}

// OnObservation runs one tick through the pipeline and returns the trades
// it produced: usually none or one, two when a reversal flattens and
// re-opens under the flatten-reopen policy. Rejected observations mutate
// nothing.
func (e *Engine) OnObservation(symbol string, price float64, ts time.Time) ([]types.Trade, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		metrics.ObservationsRejected.WithLabelValues("invalid_price").Inc()
		return nil, &InvalidPriceError{Symbol: symbol, Price: price}
	}

	st := e.state(symbol)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.failed != nil {
		metrics.ObservationsRejected.WithLabelValues("failed_symbol").Inc()
		return nil, st.failed
	}

	high, low, err := st.window.Update(ts, price)
	if err != nil {
		metrics.ObservationsRejected.WithLabelValues("out_of_order").Inc()
		e.log.Warn("observation_rejected",
			logger.String("symbol", symbol),
			logger.Err(err),
		)
		return nil, err
	}
	metrics.ObservationsProcessed.WithLabelValues(symbol).Inc()

	pos := e.ledger.Position(symbol)
	if pos.CurrentQty != 0 && abs64(pos.PeakQty) < abs64(pos.CurrentQty) {
		st.failed = &InvariantViolationError{
			Symbol:     symbol,
			CurrentQty: pos.CurrentQty,
			PeakQty:    pos.PeakQty,
		}
		e.log.Error("symbol_halted", logger.String("symbol", symbol), logger.Err(st.failed))
		return nil, st.failed
	}

	move := ComputeMove(high, low, price, pos.CurrentQty)

	var trades []types.Trade

	dec := risk.Decide(move, e.cfg, pos)
	tr, err := e.apply(symbol, dec, move, pos, price, ts)
	if err != nil {
		return nil, err
	}
	if tr != nil {
		trades = append(trades, *tr)
	}

	// A flatten means the move fully retraced under the position. When the
	// flat-state view of the same tick already shows a threshold move the
	// other way, the fade thesis has reversed. Never flip sign in one
	// trade: under flatten-reopen the fresh position is a second discrete
	// trade within this observation; under hold, the next tick decides.
	if dec.Action == types.Flatten && e.cfg.ReversalPolicy == config.ReversalFlattenReopen {
		flatMove := ComputeMove(high, low, price, 0)
		reopen := risk.Decide(flatMove, e.cfg, types.PositionState{})
		if reopen.Action == types.Expand {
			tr, err := e.apply(symbol, reopen, flatMove, types.PositionState{}, price, ts)
			if err != nil {
				return trades, err
			}
			if tr != nil {
				trades = append(trades, *tr)
			}
		}
	}
	return trades, nil
}

// apply executes one sizing decision against the ledger, honoring the
// minimum trade delta for everything but flattens.
func (e *Engine) apply(symbol string, dec types.Decision, move float64, pos types.PositionState, price float64, ts time.Time) (*types.Trade, error) {
	if dec.Action == types.Hold {
		return nil, nil
	}
	delta := dec.TargetQty - pos.CurrentQty
	if e.cfg.MinTradeDelta > 0 && dec.TargetQty != 0 && abs64(delta) < e.cfg.MinTradeDelta {
		return nil, nil
	}
	tr, err := e.ledger.Apply(symbol, dec.TargetQty, price, ts, reasonFor(dec, move, e.cfg), dec.Capped)
	if err != nil {
		return nil, err
	}
	if tr != nil {
		e.noteTrade(*tr, dec.Action.String())
		if dec.Capped {
			metrics.CapClamps.Inc()
		}
	}
	return tr, nil
}

// FlattenAll closes every open position, pricing each symbol through
// priceFor. A nil lookup, or a non-positive price from it, falls back to
// the symbol's last observed price. Returns the closing trades.
func (e *Engine) FlattenAll(ts time.Time, priceFor func(symbol string) float64) []types.Trade {
	symbols := e.ledger.OpenSymbols()
	sort.Strings(symbols)

	var trades []types.Trade
	for _, sym := range symbols {
		st := e.state(sym)
		st.mu.Lock()
		price := st.window.Last()
		if priceFor != nil {
			if p := priceFor(sym); p > 0 {
				price = p
			}
		}
		if price <= 0 {
			st.mu.Unlock()
			continue
		}
		if tr := e.ledger.Flatten(sym, price, ts, reasonSessionEnd); tr != nil {
			e.noteTrade(*tr, "session_end")
			trades = append(trades, *tr)
		}
		st.mu.Unlock()
	}
	return trades
}

// Summary snapshots positions, the trade log and P&L. Unrealized P&L marks
// every open position at its last observed price.
func (e *Engine) Summary() types.Summary {
	s := types.Summary{
		Positions:   e.ledger.Positions(),
		Trades:      e.ledger.Trades(),
		RealizedPnL: e.ledger.RealizedPnL(),
	}
	for _, sym := range e.ledger.OpenSymbols() {
		st := e.state(sym)
		st.mu.Lock()
		last := st.window.Last()
		st.mu.Unlock()
		if last > 0 {
			s.UnrealizedPnL += e.ledger.MarkToMarket(sym, last)
		}
	}
	return s
}

// Reset drops the symbol's window and position state, clearing a failure
// latch if one is set. The trade log is preserved.
func (e *Engine) Reset(symbol string) {
	e.mu.Lock()
	delete(e.states, symbol)
	e.mu.Unlock()
	e.ledger.Reset(symbol)
	metrics.PositionGauge.WithLabelValues(symbol).Set(0)
}

func (e *Engine) state(symbol string) *symbolState {
	e.mu.RLock()
	st, ok := e.states[symbol]
	e.mu.RUnlock()
	if ok {
		return st
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok = e.states[symbol]; ok {
		return st
	}
	st = &symbolState{window: window.New(e.cfg.TimeWindow)}
	e.states[symbol] = st
	return st
}

func (e *Engine) noteTrade(tr types.Trade, kind string) {
	metrics.TradesEmitted.WithLabelValues(kind).Inc()
	metrics.PositionGauge.WithLabelValues(tr.Symbol).Set(float64(tr.ResultingQty))
	e.log.Info("trade",
		logger.String("symbol", tr.Symbol),
		logger.String("side", string(tr.Side)),
		logger.Int64("qty", tr.Qty),
		logger.Int64("resulting_qty", tr.ResultingQty),
		logger.Float64("price", tr.Price),
		logger.String("reason", tr.Reason),
		logger.Bool("capped", tr.Capped),
	)
}

func reasonFor(dec types.Decision, move float64, cfg config.EngineConfig) string {
	switch dec.Action {
	case types.Expand:
		excess := math.Abs(move) - cfg.MinMoveThreshold
		if excess < 0 {
			excess = 0
		}
		return fmt.Sprintf("fade $%.2f move (excess $%.2f)", move, excess)
	case types.Contract:
		return fmt.Sprintf("reduce on $%.2f move", move)
	case types.Flatten:
		return fmt.Sprintf("flatten below floor on $%.2f move", move)
	}
	return "hold"
}
