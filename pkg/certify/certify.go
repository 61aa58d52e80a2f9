// Package certify verifies, after the fact, whether a candidate assignment
// produced by pkg/gradient is a genuine per-coordinate local optimum of a
// caller-declared linear byte objective. It is a verification aid, not part
// of the search loop; neither the engine nor the cmd/gradprobe harness
// imports it, and the engine stays agnostic to any objective's internal
// structure.
package certify

import "errors"

// ErrCertifierUnavailable is returned by NewCertifier in builds that do not
// enable the z3 build tag.
var ErrCertifierUnavailable = errors.New("certify: z3 certifier not available - rebuild with '-tags z3' to enable")

// LinearObjective describes an objective of the shape exercised by this
// module's S3/S5 scenarios: a constant plus a per-coordinate linear (and, for
// Targets, absolute-distance) term over the low byte of each coordinate.
//
//	f(x) = Constant + sum_i Coeffs[i] * |x[i]&0xFF - Targets[i]|   (if Targets != nil)
//	f(x) = Constant + sum_i Coeffs[i] * (x[i]&0xFF)                (if Targets == nil)
type LinearObjective struct {
	Coeffs   []int64
	Targets  []int64
	Constant int64
}

// Certificate reports the outcome of certifying one assignment against one
// LinearObjective.
type Certificate struct {
	// Optimal is true iff no single-coordinate, single-byte-domain move from
	// Assignment can strictly improve the objective in the requested
	// direction.
	Optimal bool

	// ViolatingCoordinate is set when Optimal is false, naming the first
	// coordinate index where a strictly improving byte value exists.
	ViolatingCoordinate int

	// BetterValue is the byte value ViolatingCoordinate could take to
	// strictly improve the objective, valid only when Optimal is false.
	BetterValue uint8
}

// Minimizing and Maximizing select which extremum Certify checks for.
type Direction bool

const (
	Minimizing Direction = false
	Maximizing Direction = true
)

// Certifier checks candidate assignments against LinearObjectives. The
// default (no z3 build tag) build's Certifier always reports
// ErrCertifierUnavailable; a build with -tags z3 uses an SMT solver to prove
// optimality exhaustively rather than by brute-force enumeration.
type Certifier struct {
	impl certifierImpl
}

// NewCertifier constructs a Certifier. In the default build this always
// returns ErrCertifierUnavailable.
func NewCertifier() (*Certifier, error) {
	impl, err := newCertifierImpl()
	if err != nil {
		return nil, err
	}
	return &Certifier{impl: impl}, nil
}

// Close releases the Certifier's resources.
func (c *Certifier) Close() {
	c.impl.Close()
}

// Certify checks whether assignment is a per-coordinate local optimum of obj
// in the given direction.
func (c *Certifier) Certify(obj LinearObjective, assignment []uint64, dir Direction) (Certificate, error) {
	return c.impl.Certify(obj, assignment, dir)
}

// evalLinear evaluates obj at the given byte-projected coordinates. It is
// tag-independent; the z3-backed path uses it to compute the current cost.
func evalLinear(obj LinearObjective, bytes []uint8) int64 {
	total := obj.Constant
	for i, coeff := range obj.Coeffs {
		v := int64(bytes[i])
		if obj.Targets != nil {
			d := v - obj.Targets[i]
			if d < 0 {
				d = -d
			}
			total += coeff * d
		} else {
			total += coeff * v
		}
	}
	return total
}

func projectBytes(assignment []uint64) []uint8 {
	bytes := make([]uint8, len(assignment))
	for i, v := range assignment {
		bytes[i] = uint8(v)
	}
	return bytes
}
