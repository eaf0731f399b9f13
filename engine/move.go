package engine

// ComputeMove reduces the window extremes, current price and position to a
// single signed move. Negative = fall from the window high (fade with a
// buy), positive = rise from the window low (fade with a sell).
//
// While flat the larger of the two distances wins, ties favoring the fall.
// While positioned the move is measured against the extreme that justified
// the position, so its magnitude shrinks as price reverts: a long tracks
// price - high, a short tracks price - low. The sign flips only once the
// original move has fully reversed through the opposite extreme.
func ComputeMove(high, low, price float64, currentQty int64) float64 {
	switch {
	case currentQty > 0:
		return price - high
	case currentQty < 0:
		return price - low
	}
	fall := high - price
	rise := price - low
	if fall >= rise {
		return -fall
	}
	return rise
}
