package gradient

// WrappingAdd8 adds delta to the low 8 bits of x with 8-bit modular
// wraparound, preserving the upper 56 bits untouched.
func WrappingAdd8(x uint64, delta uint8) uint64 {
	return (x &^ 0xFF) | uint64(uint8(x)+delta)
}

// WrappingSub8 subtracts delta from the low 8 bits of x with 8-bit modular
// wraparound, preserving the upper 56 bits untouched.
func WrappingSub8(x uint64, delta uint8) uint64 {
	return (x &^ 0xFF) | uint64(uint8(x)-delta)
}

// truncateDelta8 truncates a step·weight product to the 8-bit modular delta
// applied to a single coordinate. step grows geometrically inside the line
// search and pct is always in [0, 1], so the product can exceed 255; only
// the low 8 bits of the truncated magnitude matter since WrappingAdd8/
// WrappingSub8 wrap anyway.
func truncateDelta8(pct float64, step uint64) uint8 {
	return uint8(pct * float64(step))
}
