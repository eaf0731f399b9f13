package types

import "time"

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Observation is a single normalized price tick. How it was obtained
// (midpoint, last trade, consolidated feed) is the caller's business.
type Observation struct {
	Symbol    string
	Price     float64
	Timestamp time.Time
}

// Trade is an immutable record of one position change. Qty is the signed
// delta applied to the position (positive = bought shares); ResultingQty is
// the position immediately after the trade.
type Trade struct {
	ID           string
	Symbol       string
	Timestamp    time.Time
	Price        float64
	Side         Side
	Qty          int64
	ResultingQty int64
	Reason       string
	// Capped is set when the requested target was clamped to the
	// position cap before this trade was sized.
	Capped bool
}

// PositionState is a snapshot of one symbol's bookkeeping.
// PeakQty carries the sign of the position it belongs to and resets to
// zero exactly when CurrentQty returns to zero. AvgEntryPrice is the
// volume-weighted entry of the open position, zero when flat.
type PositionState struct {
	CurrentQty    int64
	PeakQty       int64
	AvgEntryPrice float64
}

type Action int

const (
	Hold Action = iota
	Expand
	Contract
	Flatten
)

func (a Action) String() string {
	switch a {
	case Expand:
		return "expand"
	case Contract:
		return "contract"
	case Flatten:
		return "flatten"
	}
	return "hold"
}

// Decision is the sizer's verdict for one observation. TargetQty is the
// signed position the ledger should move to; it is meaningful for every
// action except Hold.
type Decision struct {
	Action    Action
	TargetQty int64
	Capped    bool
}

// Summary is a point-in-time snapshot of the engine suitable for external
// serialization; the engine defines the shape, not the storage format.
type Summary struct {
	Positions     map[string]int64
	Trades        []Trade
	RealizedPnL   float64
	UnrealizedPnL float64
}
