package engine

import "fmt"

// InvalidPriceError reports a non-positive or non-finite price. The
// observation is rejected with no state change; the stream may continue.
type InvalidPriceError struct {
	Symbol string
	Price  float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("%s: invalid price %v", e.Symbol, e.Price)
}

// InvariantViolationError means the engine's own bookkeeping is broken
// (peak magnitude below current magnitude). The symbol is latched failed
// and refuses further observations, because trading on inconsistent state
// puts capital at risk. Other symbols are unaffected.
type InvariantViolationError struct {
	Symbol     string
	CurrentQty int64
	PeakQty    int64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: bookkeeping invariant violated: |peak| %d < |current| %d",
		e.Symbol, abs64(e.PeakQty), abs64(e.CurrentQty))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
