package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() EngineConfig {
	return EngineConfig{
		SharesPerDollar:  100,
		MinMoveThreshold: 1.50,
		TimeWindow:       2 * time.Minute,
		MaxPosition:      5000,
		FlattenFloor:     10,
		Epsilon:          1e-9,
		ReversalPolicy:   ReversalFlattenReopen,
	}
}

func TestValidateAcceptsSaneConfig(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{"zero shares per dollar", func(c *EngineConfig) { c.SharesPerDollar = 0 }},
		{"negative threshold", func(c *EngineConfig) { c.MinMoveThreshold = -1 }},
		{"zero window", func(c *EngineConfig) { c.TimeWindow = 0 }},
		{"zero cap", func(c *EngineConfig) { c.MaxPosition = 0 }},
		{"zero floor", func(c *EngineConfig) { c.FlattenFloor = 0 }},
		{"floor above cap", func(c *EngineConfig) { c.FlattenFloor = 6000 }},
		{"negative min trade delta", func(c *EngineConfig) { c.MinTradeDelta = -1 }},
		{"negative epsilon", func(c *EngineConfig) { c.Epsilon = -1 }},
		{"bogus reversal policy", func(c *EngineConfig) { c.ReversalPolicy = "yolo" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := validConfig()
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := EngineConfig{SharesPerDollar: 100, MinMoveThreshold: 1.50}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if cfg.TimeWindow != 2*time.Minute {
		t.Fatalf("TimeWindow default = %v, want 2m", cfg.TimeWindow)
	}
	if cfg.MaxPosition != 5000 || cfg.FlattenFloor != 10 {
		t.Fatalf("cap/floor defaults = %d/%d, want 5000/10", cfg.MaxPosition, cfg.FlattenFloor)
	}
	if cfg.Epsilon != 1e-9 {
		t.Fatalf("Epsilon default = %v, want 1e-9", cfg.Epsilon)
	}
	if cfg.ReversalPolicy != ReversalFlattenReopen {
		t.Fatalf("ReversalPolicy default = %q", cfg.ReversalPolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaulted config failed validation: %v", err)
	}
}

func TestDefaultsDontOverrideSetFields(t *testing.T) {
	cfg := EngineConfig{
		SharesPerDollar:  100,
		MinMoveThreshold: 1.50,
		MaxPosition:      2000,
		FlattenFloor:     25,
	}
	if err := cfg.ApplyDefaults(); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if cfg.MaxPosition != 2000 || cfg.FlattenFloor != 25 {
		t.Fatalf("defaults clobbered set fields: cap=%d floor=%d", cfg.MaxPosition, cfg.FlattenFloor)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	body := "shares_per_dollar: 100\nmin_move_threshold: 1.5\nmax_position: 2500\nreversal_policy: hold\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SharesPerDollar != 100 || cfg.MinMoveThreshold != 1.5 {
		t.Fatalf("loaded %+v", cfg)
	}
	if cfg.MaxPosition != 2500 {
		t.Fatalf("MaxPosition = %d, want 2500", cfg.MaxPosition)
	}
	if cfg.ReversalPolicy != ReversalHold {
		t.Fatalf("ReversalPolicy = %q, want hold", cfg.ReversalPolicy)
	}
	// Unset fields picked up their defaults.
	if cfg.TimeWindow != 2*time.Minute || cfg.FlattenFloor != 10 {
		t.Fatalf("defaults missing after load: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("shares_per_dollar: -5\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation failure")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected read failure")
	}
}
