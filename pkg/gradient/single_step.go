package gradient

// DescendOnce performs exactly one gradient build followed by one descent
// line search, for drivers that want to interleave descent with other
// transformations rather than run the full outer loop. It reports
// atExtremum = true without running a line search if x0's gradient is
// already stationary.
func (e *Engine) DescendOnce(f ObjectiveFunc, x0 []uint64) (outX []uint64, outF int64, atExtremum bool, err error) {
	if e.closed {
		return nil, 0, false, ErrEngineClosed
	}
	if err := validateInput(x0); err != nil {
		return nil, 0, false, err
	}

	f = e.wrapCounting(f)
	n := len(x0)
	grad, _, ls := e.ensureScratch(n)

	f0 := int64(f(x0))
	computeGradient(f, f0, x0, grad)
	if maxValue(grad) == 0 {
		out := make([]uint64, n)
		copy(out, x0)
		return out, f0, true, nil
	}

	normalizeGradient(grad, e.cfg.MomentumBeta)

	out := make([]uint64, n)
	fOut := e.descend(f, grad, x0, f0, ls, out)
	return out, fOut, false, nil
}

// AscendOnce mirrors DescendOnce using an ascent line search.
func (e *Engine) AscendOnce(f ObjectiveFunc, x0 []uint64) (outX []uint64, outF int64, atExtremum bool, err error) {
	if e.closed {
		return nil, 0, false, ErrEngineClosed
	}
	if err := validateInput(x0); err != nil {
		return nil, 0, false, err
	}

	f = e.wrapCounting(f)
	n := len(x0)
	grad, _, ls := e.ensureScratch(n)

	f0 := int64(f(x0))
	computeGradient(f, f0, x0, grad)
	if maxValue(grad) == 0 {
		out := make([]uint64, n)
		copy(out, x0)
		return out, f0, true, nil
	}

	normalizeGradient(grad, e.cfg.MomentumBeta)

	out := make([]uint64, n)
	fOut := e.ascend(f, grad, x0, f0, ls, out)
	return out, fOut, false, nil
}
