package gradient

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds every tunable of the search engine. All parameters are
// configurable; nothing is hard-coded at the use site.
type Config struct {
	// MaxEpoch bounds the outer minimize/maximize loop.
	MaxEpoch int `yaml:"max_epoch" json:"max_epoch"`

	// MaxRandomInput bounds the number of random single-coordinate escape
	// attempts tried when a gradient is found stationary. Pinned to 0 in
	// the shipped default, which makes the escape dormant.
	MaxRandomInput int `yaml:"max_random_input" json:"max_random_input"`

	// ReseedInterval sets how often the RNG reseeds from the entropy
	// source: after each reseed, the number of draws until the next one is
	// picked from [ReseedInterval/2, ReseedInterval/2+ReseedInterval), so
	// reseeds come every ReseedInterval draws on average.
	ReseedInterval int `yaml:"reseed_interval" json:"reseed_interval"`

	// InitialGradientCapacity sizes the engine's reusable gradient scratch
	// buffer at construction time. The buffer grows on demand and never
	// shrinks.
	InitialGradientCapacity int `yaml:"initial_gradient_capacity" json:"initial_gradient_capacity"`

	// MomentumBeta blends each epoch's normalized pct with the previous
	// epoch's. Pinned to 0 (plain normalization); pct_prev is always zero
	// since gradients are rebuilt fresh every epoch, but the blend formula
	// is kept for a future non-zero beta.
	MomentumBeta float64 `yaml:"momentum_beta" json:"momentum_beta"`

	// RefinementSkipThreshold is the minimum pct a coordinate needs to be
	// visited during descend's per-coordinate refinement phase. Ascend uses
	// an exact zero test instead of this threshold; see Engine.ascend.
	RefinementSkipThreshold float64 `yaml:"refinement_skip_threshold" json:"refinement_skip_threshold"`
}

// DefaultConfig returns the shipped configuration. All defaults live here,
// not scattered across call sites.
func DefaultConfig() *Config {
	return &Config{
		MaxEpoch:                1000,
		MaxRandomInput:          0,
		ReseedInterval:          10000,
		InitialGradientCapacity: 10,
		MomentumBeta:            0.0,
		RefinementSkipThreshold: 0.01,
	}
}

// MergeWithDefaults fills any zero-valued field with the shipped default.
// Used after unmarshaling a partial user configuration.
func (c *Config) MergeWithDefaults() {
	defaults := DefaultConfig()

	if c.MaxEpoch == 0 {
		c.MaxEpoch = defaults.MaxEpoch
	}
	if c.ReseedInterval == 0 {
		c.ReseedInterval = defaults.ReseedInterval
	}
	if c.InitialGradientCapacity == 0 {
		c.InitialGradientCapacity = defaults.InitialGradientCapacity
	}
	if c.RefinementSkipThreshold == 0 {
		c.RefinementSkipThreshold = defaults.RefinementSkipThreshold
	}
	// MaxRandomInput and MomentumBeta are intentionally left at zero when
	// unset; zero is their meaningful shipped default, not a "missing value"
	// sentinel.
}

// LoadConfig reads a YAML configuration file and merges it with
// DefaultConfig for any field the file omits.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gradient: read config %q: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("gradient: parse config %q: %w", path, err)
	}

	cfg.MergeWithDefaults()
	return cfg, nil
}
