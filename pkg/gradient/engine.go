package gradient

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Engine owns the two resources the search loop needs across calls: an
// entropy-backed RNG for plateau escapes and a reusable gradient scratch
// buffer. It replaces the original engine's process-wide globals with an
// explicit, constructible context, per the module's re-architecture
// guidance; a concurrent driver should create one Engine per goroutine,
// since none of its state is synchronized.
type Engine struct {
	cfg *Config

	rng *reseedingRNG

	// gradScratch is grown on demand and never shrunk, mirroring the
	// original's tmp_gradient buffer.
	gradScratch []Element

	// prevScratch holds the outer loop's current-best snapshot, the
	// starting point handed to each epoch's line search.
	prevScratch []uint64

	// lsScratch is the line search's own internal backtracking buffer,
	// distinct from prevScratch and from the caller-visible output vector.
	lsScratch []uint64

	stats  Stats
	closed bool
}

// NewEngine constructs an Engine, opening its entropy source and
// allocating its gradient scratch at cfg's initial capacity. If cfg is nil,
// DefaultConfig is used. Returns an error if the entropy source cannot be
// read from — this replaces the original engine's process-abort-on-init
// failure with an idiomatic Go error return.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	return newEngineWithEntropy(cfg, rand.Reader)
}

// newEngineWithEntropy is the constructor NewEngine delegates to, taking an
// explicit entropy source so tests can supply a deterministic one.
func newEngineWithEntropy(cfg *Config, entropy io.Reader) (*Engine, error) {
	rng, err := newReseedingRNG(entropy, cfg.ReseedInterval)
	if err != nil {
		return nil, fmt.Errorf("gradient: open entropy source: %w", err)
	}

	capacity := cfg.InitialGradientCapacity
	if capacity < 1 {
		capacity = 1
	}

	return &Engine{
		cfg:         cfg,
		rng:         rng,
		gradScratch: make([]Element, capacity),
		prevScratch: make([]uint64, capacity),
		lsScratch:   make([]uint64, capacity),
	}, nil
}

// Close releases the Engine's scratch buffers. It is idempotent; calling
// Minimize, Maximize, DescendOnce or AscendOnce after Close returns
// ErrEngineClosed, while Statistics keeps working.
func (e *Engine) Close() error {
	e.closed = true
	e.gradScratch = nil
	e.prevScratch = nil
	e.lsScratch = nil
	return nil
}

// Statistics returns a snapshot of the Engine's running counters.
func (e *Engine) Statistics() Stats {
	stats := e.stats
	stats.RNGReseeds = e.rng.reseeds
	return stats
}

// ensureScratch grows the Engine's gradient, snapshot, and line-search
// scratch buffers to at least n elements, never shrinking them, and returns
// slices of exactly length n backed by that storage.
func (e *Engine) ensureScratch(n int) (grad []Element, prev, ls []uint64) {
	if len(e.gradScratch) < n {
		e.gradScratch = make([]Element, n)
	}
	if len(e.prevScratch) < n {
		e.prevScratch = make([]uint64, n)
	}
	if len(e.lsScratch) < n {
		e.lsScratch = make([]uint64, n)
	}
	return e.gradScratch[:n], e.prevScratch[:n], e.lsScratch[:n]
}

// wrapCounting wraps f so every call into it is tallied in e.stats, without
// changing what f computes. Used once per entry point so internal helpers
// can call the objective directly.
func (e *Engine) wrapCounting(f ObjectiveFunc) ObjectiveFunc {
	return func(x []uint64) uint64 {
		e.stats.ObjectiveEvals++
		return f(x)
	}
}

func validateInput(x0 []uint64) error {
	if len(x0) == 0 {
		return ErrEmptyAssignment
	}
	return nil
}
