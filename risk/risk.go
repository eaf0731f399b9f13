// Package risk sizes fade positions from the current move via the
// asymmetric ratchet: expand only while the adverse move deepens, contract
// proportionally as it recedes.
package risk

import (
	"math"

	"github.com/jackrehmann/fade-scalps/config"
	"github.com/jackrehmann/fade-scalps/types"
)

// sizeEps absorbs float noise in share-count products before truncation:
// a move derived from real tick subtraction (102.60-100.00) sits a few
// ulps under the real-number value, and the boundary share must not be
// lost to that. Fixed, not config-scaled: share counts are integers and
// the noise is relative, orders of magnitude below one share.
const sizeEps = 1e-6

// Losing reports whether the move carries the open position's losing sign:
// a long fades a fall, so further falling (negative move) hurts it; a short
// fades a rise, so further rising (positive move) hurts it. Flat positions
// have no losing sign.
func Losing(move float64, currentQty int64) bool {
	return (currentQty > 0 && move < 0) || (currentQty < 0 && move > 0)
}

// Decide converts a position-aware move into a ratchet decision, evaluated
// expansion-first. Targets are signed positions, not deltas.
func Decide(move float64, cfg config.EngineConfig, pos types.PositionState) types.Decision {
	absMove := math.Abs(move)
	thr := cfg.MinMoveThreshold
	atThreshold := absMove >= thr-cfg.Epsilon

	if atThreshold && (pos.CurrentQty == 0 || Losing(move, pos.CurrentQty)) {
		return expand(move, absMove, cfg, pos)
	}
	if pos.CurrentQty != 0 && !atThreshold {
		return contract(absMove, cfg, pos)
	}
	return types.Decision{Action: types.Hold, TargetQty: pos.CurrentQty}
}

func expand(move, absMove float64, cfg config.EngineConfig, pos types.PositionState) types.Decision {
	size := int64((absMove-cfg.MinMoveThreshold)*cfg.SharesPerDollar + sizeEps)
	if size < 0 {
		size = 0
	}
	capped := false
	if size > cfg.MaxPosition {
		size = cfg.MaxPosition
		capped = true
	}
	// Fade: position against the move.
	target := size
	if move > 0 {
		target = -size
	}
	// Ratchet up only; anything else holds.
	if abs64(target) <= abs64(pos.CurrentQty) {
		return types.Decision{Action: types.Hold, TargetQty: pos.CurrentQty, Capped: capped}
	}
	return types.Decision{Action: types.Expand, TargetQty: target, Capped: capped}
}

func contract(absMove float64, cfg config.EngineConfig, pos types.PositionState) types.Decision {
	frac := absMove / cfg.MinMoveThreshold
	mag := int64(float64(abs64(pos.PeakQty))*frac + sizeEps)
	target := mag
	if pos.PeakQty < 0 {
		target = -mag
	}
	// Contraction never re-expands.
	if abs64(target) > abs64(pos.CurrentQty) {
		target = pos.CurrentQty
	}
	if abs64(target) < cfg.FlattenFloor {
		return types.Decision{Action: types.Flatten, TargetQty: 0}
	}
	if target == pos.CurrentQty {
		return types.Decision{Action: types.Hold, TargetQty: pos.CurrentQty}
	}
	return types.Decision{Action: types.Contract, TargetQty: target}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
