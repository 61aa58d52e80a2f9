package gradient

// computeDeltaAllDescend applies one full-gradient descent step of the
// given size to x in place: coordinates ascending under +1 are decremented,
// coordinates descending under +1 are incremented, stationary coordinates
// are left untouched.
func computeDeltaAllDescend(x []uint64, grad []Element, step uint64) {
	for i, el := range grad {
		delta := truncateDelta8(el.Pct, step)
		switch el.Direction {
		case Ascending:
			x[i] = WrappingSub8(x[i], delta)
		case Descending:
			x[i] = WrappingAdd8(x[i], delta)
		}
	}
}

// computeDeltaAllAscend is computeDeltaAllDescend with the step direction
// flipped.
func computeDeltaAllAscend(x []uint64, grad []Element, step uint64) {
	for i, el := range grad {
		delta := truncateDelta8(el.Pct, step)
		switch el.Direction {
		case Ascending:
			x[i] = WrappingAdd8(x[i], delta)
		case Descending:
			x[i] = WrappingSub8(x[i], delta)
		}
	}
}

// descend runs the full-gradient doubling phase followed by per-coordinate
// refinement, leaving the best point found in xNext and returning its cost.
// grad must
// already be normalized. xPrev is engine-owned scratch, reused across
// calls; its contents on return are unspecified.
func (e *Engine) descend(f ObjectiveFunc, grad []Element, x0 []uint64, f0 int64, xPrev, xNext []uint64) int64 {
	copy(xNext, x0)

	fPrev, fNext := f0, f0
	step := uint64(1)
	for {
		copy(xPrev, xNext)
		computeDeltaAllDescend(xNext, grad, step)
		fNext = int64(f(xNext))
		e.stats.LineSearchProbes++
		if fNext >= fPrev {
			break
		}
		step *= 2
		fPrev = fNext
	}
	copy(xNext, xPrev)

	n := len(x0)
	if n == 1 {
		return fPrev
	}

	idx := 0
	for idx < n && grad[idx].Pct < e.cfg.RefinementSkipThreshold {
		idx++
	}
	if idx >= n {
		return fPrev
	}

	step = 1
	for {
		for {
			copy(xPrev, xNext)
			movement := truncateDelta8(grad[idx].Pct, step)
			switch grad[idx].Direction {
			case Ascending:
				xNext[idx] = WrappingSub8(xNext[idx], movement)
			case Descending:
				xNext[idx] = WrappingAdd8(xNext[idx], movement)
			default:
				panic("gradient: descend refinement reached an unreachable direction")
			}

			fNext = int64(f(xNext))
			e.stats.LineSearchProbes++
			if fNext >= fPrev {
				break
			}
			step *= 2
			fPrev = fNext
		}
		copy(xNext, xPrev)

		idx++
		for idx < n && grad[idx].Pct < e.cfg.RefinementSkipThreshold {
			idx++
		}
		if idx >= n {
			break
		}
		step = 1
	}

	return fPrev
}

// ascend mirrors descend with every inequality flipped and the
// per-coordinate refinement's skip predicate tightened to an exact zero
// test. That asymmetry is intentional and matches the original engine.
func (e *Engine) ascend(f ObjectiveFunc, grad []Element, x0 []uint64, f0 int64, xPrev, xNext []uint64) int64 {
	copy(xNext, x0)

	fPrev, fNext := f0, f0
	step := uint64(1)
	for {
		copy(xPrev, xNext)
		computeDeltaAllAscend(xNext, grad, step)
		fNext = int64(f(xNext))
		e.stats.LineSearchProbes++
		if fNext <= fPrev {
			break
		}
		step *= 2
		fPrev = fNext
	}
	copy(xNext, xPrev)

	n := len(x0)
	if n == 1 {
		return fPrev
	}

	idx := 0
	for idx < n && grad[idx].Pct == 0 {
		idx++
	}
	if idx >= n {
		return fPrev
	}

	step = 1
	for {
		for {
			copy(xPrev, xNext)
			movement := truncateDelta8(grad[idx].Pct, step)
			switch grad[idx].Direction {
			case Ascending:
				xNext[idx] = WrappingAdd8(xNext[idx], movement)
			case Descending:
				xNext[idx] = WrappingSub8(xNext[idx], movement)
			default:
				panic("gradient: ascend refinement reached an unreachable direction")
			}

			fNext = int64(f(xNext))
			e.stats.LineSearchProbes++
			if fNext <= fPrev {
				break
			}
			step *= 2
			fPrev = fNext
		}
		copy(xNext, xPrev)

		idx++
		for idx < n && grad[idx].Pct == 0 {
			idx++
		}
		if idx >= n {
			break
		}
		step = 1
	}

	return fPrev
}
