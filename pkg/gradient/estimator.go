package gradient

// partialDerivative probes coordinate i with a +1 and a -1 perturbation and
// classifies the result into a gradient Element. x is restored to its
// original value before returning; the net cost is exactly two evaluations
// of f.
func partialDerivative(f ObjectiveFunc, f0 int64, x []uint64, i int) Element {
	original := x[i]

	x[i] = WrappingAdd8(original, 1)
	fPlus := int64(f(x))

	x[i] = WrappingSub8(original, 1)
	fMinus := int64(f(x))

	x[i] = original

	return classify(f0, fMinus, fPlus)
}

// classify maps a (f0, fMinus, fPlus) triple to the unique gradient element
// the distilled contract assigns it. The five cases are exhaustive over
// totally ordered signed integers; anything else indicates a defect in the
// comparisons above, not a reachable runtime state.
func classify(f0, fMinus, fPlus int64) Element {
	switch {
	case f0 <= fMinus && f0 <= fPlus:
		return Element{Value: 0, Direction: Stationary}
	case fPlus < f0 && f0 <= fMinus:
		return Element{Value: uint64(f0 - fPlus), Direction: Descending}
	case fMinus < f0 && f0 <= fPlus:
		return Element{Value: uint64(f0 - fMinus), Direction: Ascending}
	case fMinus < f0 && fPlus < f0 && fMinus < fPlus:
		return Element{Value: uint64(f0 - fMinus), Direction: Ascending}
	case fMinus < f0 && fPlus < f0 && fMinus >= fPlus:
		return Element{Value: uint64(f0 - fPlus), Direction: Descending}
	default:
		panic("gradient: classify reached an unreachable case")
	}
}

// computeGradient fills grad[0:len(x)] by probing every coordinate of x in
// index order. Cost: exactly 2*len(x) evaluations of f.
func computeGradient(f ObjectiveFunc, f0 int64, x []uint64, grad []Element) {
	for i := range x {
		grad[i] = partialDerivative(f, f0, x, i)
		grad[i].Pct = 0
	}
}

// maxValue returns the largest Value across the gradient, or 0 for an empty
// or fully stationary gradient.
func maxValue(grad []Element) uint64 {
	var max uint64
	for _, el := range grad {
		if el.Value > max {
			max = el.Value
		}
	}
	return max
}

// normalizeGradient sets each element's Pct to its normalized weight within
// the gradient. The momentum blend is kept symbolically (beta pinned to 0,
// pctPrev always 0 going in) so the formula's shape survives even though it
// currently degenerates to plain normalization.
func normalizeGradient(grad []Element, beta float64) {
	max := maxValue(grad)
	if max == 0 {
		return
	}
	for i := range grad {
		pctPrev := grad[i].Pct
		grad[i].Pct = beta*pctPrev + (1-beta)*float64(grad[i].Value)/float64(max)
	}
}
