package gradient

// Minimize drives f toward a local minimum starting from x0, returning the
// best assignment found, its cost, and any error. x0 is never mutated.
//
// The outer loop runs at most cfg.MaxEpoch epochs. Each epoch rebuilds the
// gradient from scratch; if the gradient is stationary, it tries up to
// cfg.MaxRandomInput random single-coordinate escape perturbations (a
// no-op at the shipped default of 0) and then terminates if still
// stationary. Otherwise it normalizes the gradient and runs one descent
// line search; equal cost before and after the line search also
// terminates the loop (converged).
func (e *Engine) Minimize(f ObjectiveFunc, x0 []uint64) ([]uint64, int64, error) {
	if e.closed {
		return nil, 0, ErrEngineClosed
	}
	if err := validateInput(x0); err != nil {
		return nil, 0, err
	}

	f = e.wrapCounting(f)
	n := len(x0)
	grad, prev, ls := e.ensureScratch(n)

	out := make([]uint64, n)
	copy(out, x0)
	fPrev := int64(f(x0))
	fNext := fPrev

	for epoch := 0; epoch < e.cfg.MaxEpoch; epoch++ {
		e.stats.Epochs++
		copy(prev, out)
		fPrev = fNext

		computeGradient(f, fPrev, prev, grad)
		if e.escapePlateau(f, x0, prev, grad, &fPrev) {
			break
		}

		normalizeGradient(grad, e.cfg.MomentumBeta)
		fNext = e.descend(f, grad, prev, fPrev, ls, out)

		if fPrev == fNext {
			break
		}
	}

	return out, fNext, nil
}

// Maximize is Minimize's mirror: it drives f toward a local maximum via
// ascend line searches.
func (e *Engine) Maximize(f ObjectiveFunc, x0 []uint64) ([]uint64, int64, error) {
	if e.closed {
		return nil, 0, ErrEngineClosed
	}
	if err := validateInput(x0); err != nil {
		return nil, 0, err
	}

	f = e.wrapCounting(f)
	n := len(x0)
	grad, prev, ls := e.ensureScratch(n)

	out := make([]uint64, n)
	copy(out, x0)
	fPrev := int64(f(x0))
	fNext := fPrev

	for epoch := 0; epoch < e.cfg.MaxEpoch; epoch++ {
		e.stats.Epochs++
		copy(prev, out)
		fPrev = fNext

		computeGradient(f, fPrev, prev, grad)
		if e.escapePlateau(f, x0, prev, grad, &fPrev) {
			break
		}

		normalizeGradient(grad, e.cfg.MomentumBeta)
		fNext = e.ascend(f, grad, prev, fPrev, ls, out)

		if fPrev == fNext {
			break
		}
	}

	return out, fNext, nil
}

// escapePlateau implements the outer loop's stationary-gradient handling:
// while the gradient is all-zero, it tries up to cfg.MaxRandomInput random
// single-coordinate bit flips against prev, recomputing the gradient each
// time. It reports whether the gradient is still stationary once it gives
// up, which at the shipped MaxRandomInput = 0 is immediately true (the
// escape loop body never runs) and the outer loop terminates on the very
// first stationary gradient it sees — see DESIGN.md for why this, and not
// a literal transliteration of the original's loop-exit check, matches the
// engine's documented behavior.
//
// Per coordinate bit flips are applied to prev, but — matching the
// original engine's own inconsistency, preserved rather than fixed — the
// cost re-evaluated after each flip is f(x0), the call's untouched starting
// point, not f(prev).
func (e *Engine) escapePlateau(f ObjectiveFunc, x0, prev []uint64, grad []Element, fPrev *int64) bool {
	n := len(prev)
	max := maxValue(grad)

	attempts := 0
	for max == 0 && attempts < e.cfg.MaxRandomInput {
		idx := e.rng.Intn(n)
		prev[idx] ^= uint64(1) << uint(e.rng.Intn(8))
		e.stats.RandomEscapeDraws++

		*fPrev = int64(f(x0))
		computeGradient(f, *fPrev, prev, grad)
		max = maxValue(grad)
		attempts++
	}

	return max == 0
}
