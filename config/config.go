package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// ReversalPolicy decides whether a flatten whose tick already shows a
// threshold move the other way may re-open the opposite fade within the
// same observation. A sign flip is never a single trade either way.
type ReversalPolicy string

const (
	// ReversalFlattenReopen follows the flatten with a fresh flat-state
	// expansion as a second discrete trade in the same observation.
	ReversalFlattenReopen ReversalPolicy = "flatten-reopen"
	// ReversalHold stops at the flatten; the next observation sizes any
	// new position from flat.
	ReversalHold ReversalPolicy = "hold"
)

// EngineConfig holds all tunable parameters for a fade engine instance.
// It is supplied once at construction and never mutated afterwards.
type EngineConfig struct {
	// SharesPerDollar linearly maps excess move (dollars beyond the
	// threshold) to position size.
	SharesPerDollar float64 `yaml:"shares_per_dollar"`

	// MinMoveThreshold is the price move (in dollars) below which no
	// position is opened and open positions are scaled down.
	MinMoveThreshold float64 `yaml:"min_move_threshold"`

	// TimeWindow is the trailing interval over which the high/low
	// extremes are tracked.
	TimeWindow time.Duration `yaml:"time_window" default:"2m"`

	// MaxPosition caps position magnitude in shares. Targets beyond it
	// are clamped, not rejected.
	MaxPosition int64 `yaml:"max_position" default:"5000"`

	// FlattenFloor force-zeroes a contraction target whose magnitude
	// falls below it, instead of carrying a dust position.
	FlattenFloor int64 `yaml:"flatten_floor" default:"10"`

	// MinTradeDelta suppresses trades smaller than this many shares
	// (flatten trades excepted). Zero disables the check.
	MinTradeDelta int64 `yaml:"min_trade_delta"`

	// Epsilon is the tolerance for float comparisons against
	// MinMoveThreshold, so boundary ticks don't flap between branches.
	Epsilon float64 `yaml:"epsilon" default:"1e-9"`

	ReversalPolicy ReversalPolicy `yaml:"reversal_policy" default:"flatten-reopen"`
}

// ApplyDefaults fills zero-valued fields that have documented defaults.
// SharesPerDollar and MinMoveThreshold have no sensible default and must be
// set by the caller.
func (c *EngineConfig) ApplyDefaults() error {
	return defaults.Set(c)
}

// Validate checks that all fields are within sensible bounds. It returns
// the first encountered error, so a configuration problem surfaces clearly
// before any trading starts.
func (c *EngineConfig) Validate() error {
	if c.SharesPerDollar <= 0 {
		return fmt.Errorf("SharesPerDollar (%f) must be positive", c.SharesPerDollar)
	}
	if c.MinMoveThreshold <= 0 {
		return fmt.Errorf("MinMoveThreshold (%f) must be positive", c.MinMoveThreshold)
	}
	if c.TimeWindow <= 0 {
		return errors.New("TimeWindow must be positive")
	}
	if c.MaxPosition <= 0 {
		return errors.New("MaxPosition must be positive")
	}
	if c.FlattenFloor <= 0 {
		return errors.New("FlattenFloor must be positive")
	}
	if c.FlattenFloor > c.MaxPosition {
		return fmt.Errorf("FlattenFloor (%d) cannot exceed MaxPosition (%d)", c.FlattenFloor, c.MaxPosition)
	}
	if c.MinTradeDelta < 0 {
		return errors.New("MinTradeDelta cannot be negative")
	}
	if c.Epsilon < 0 {
		return errors.New("Epsilon cannot be negative")
	}
	switch c.ReversalPolicy {
	case ReversalFlattenReopen, ReversalHold:
	default:
		return fmt.Errorf("unknown ReversalPolicy %q", c.ReversalPolicy)
	}
	return nil
}

// Load reads and parses a YAML configuration file, applies defaults to
// unset fields and validates the result. The engine never calls this
// itself; it is a convenience for embedding applications.
func Load(path string) (EngineConfig, error) {
	var c EngineConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	if err := c.ApplyDefaults(); err != nil {
		return c, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}
