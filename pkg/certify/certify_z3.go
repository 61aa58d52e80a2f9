// +build z3

package certify

import (
	"math/big"
	"strconv"

	z3 "github.com/mitchellh/go-z3"
)

// certifierImpl is the interface the build-tagged variants satisfy.
type certifierImpl interface {
	Certify(obj LinearObjective, assignment []uint64, dir Direction) (Certificate, error)
	Close()
}

// z3Certifier proves per-coordinate local optimality with an SMT query
// instead of brute-force enumeration over the byte domain: for coordinate i
// it asks z3 whether any byte value other than the current one makes the
// objective strictly better, holding every other coordinate fixed.
type z3Certifier struct {
	config  *z3.Config
	context *z3.Context
}

func newCertifierImpl() (certifierImpl, error) {
	config := z3.NewConfig()
	ctx := z3.NewContext(config)
	return &z3Certifier{config: config, context: ctx}, nil
}

func (c *z3Certifier) Close() {
	if c.context != nil {
		c.context.Close()
	}
	if c.config != nil {
		c.config.Close()
	}
}

func (c *z3Certifier) Certify(obj LinearObjective, assignment []uint64, dir Direction) (Certificate, error) {
	current := projectBytes(assignment)
	currentCost := evalLinear(obj, current)

	for i := range obj.Coeffs {
		better, value, err := c.checkCoordinate(obj, current, i, currentCost, dir)
		if err != nil {
			return Certificate{}, err
		}
		if better {
			return Certificate{Optimal: false, ViolatingCoordinate: i, BetterValue: value}, nil
		}
	}

	return Certificate{Optimal: true}, nil
}

// checkCoordinate asks z3 for a byte value at position i, distinct from
// current[i], that strictly improves the objective over currentCost in the
// requested direction, all other coordinates held at their current values.
// Targets' absolute-value term is split into its two linear branches (above
// and below the target) and queried separately rather than encoded as a
// single non-linear expression.
func (c *z3Certifier) checkCoordinate(obj LinearObjective, current []uint8, i int, currentCost int64, dir Direction) (bool, uint8, error) {
	sort := c.context.BVSort(16)

	var branches [][2]int64 // [lowByte, highByte] inclusive ranges to try as one linear branch
	if obj.Targets != nil {
		target := obj.Targets[i]
		lo, hi := int64(0), int64(255)
		if target < lo {
			target = lo
		}
		if target > hi {
			target = hi
		}
		branches = [][2]int64{{lo, target}, {target, hi}}
	} else {
		branches = [][2]int64{{0, 255}}
	}

	for _, branch := range branches {
		solver := c.context.NewSolver()

		y := c.context.Const(c.context.Symbol("byte_candidate"), sort)
		low := c.intBV(branch[0], sort)
		high := c.intBV(branch[1], sort)
		solver.Assert(y.UGE(low))
		solver.Assert(y.ULE(high))

		currentByte := c.intBV(int64(current[i]), sort)
		solver.Assert(y.Eq(currentByte).Not())

		cost := c.branchCostExpr(obj, current, i, y, branch, sort)
		currentAST := c.intBV(currentCost, sort)

		var improves *z3.Bool
		if dir == Minimizing {
			improves = cost.SLT(currentAST)
		} else {
			improves = cost.SGT(currentAST)
		}
		solver.Assert(improves)

		sat := solver.Check()
		if sat != z3.True {
			solver.Close()
			continue
		}

		model := solver.Model()
		assignment := model.Eval(y, true)
		model.Close()
		solver.Close()

		bv, ok := assignment.(*z3.BV)
		if !ok {
			continue
		}
		return true, bvToByte(bv), nil
	}

	return false, 0, nil
}

// branchCostExpr builds the bitvector expression for obj's cost when
// coordinate i's candidate value y is known to fall in the given linear
// branch (so the Targets term's absolute value resolves to a fixed sign).
// The other coordinates are held at their known current values, so their
// contribution is folded into a plain Go constant rather than kept
// symbolic.
func (c *z3Certifier) branchCostExpr(obj LinearObjective, current []uint8, i int, y *z3.BV, branch [2]int64, sort *z3.Sort) *z3.BV {
	fixed := obj.Constant
	for j, coeff := range obj.Coeffs {
		if j == i {
			continue
		}
		v := int64(current[j])
		if obj.Targets != nil {
			d := v - obj.Targets[j]
			if d < 0 {
				d = -d
			}
			fixed += coeff * d
		} else {
			fixed += coeff * v
		}
	}

	total := c.intBV(fixed, sort)
	coeffAST := c.intBV(obj.Coeffs[i], sort)

	var term *z3.BV
	if obj.Targets != nil {
		target := c.intBV(obj.Targets[i], sort)
		if branch[1] <= obj.Targets[i] {
			term = target.Sub(y)
		} else {
			term = y.Sub(target)
		}
	} else {
		term = y
	}

	return total.Add(term.Mul(coeffAST))
}

// intBV wraps an int64 as a bitvector constant of the given sort, routing
// through big.Int the way the teacher's bigIntToBV does for its 256-bit
// parameters.
func (c *z3Certifier) intBV(v int64, sort *z3.Sort) *z3.BV {
	return c.context.FromBigInt(big.NewInt(v), sort)
}

func bvToByte(bv *z3.BV) uint8 {
	s := bv.String()
	if len(s) > 2 && s[:2] == "#x" {
		v, _ := strconv.ParseUint(s[2:], 16, 16)
		return uint8(v)
	}
	if len(s) > 2 && s[:2] == "#b" {
		v, _ := strconv.ParseUint(s[2:], 2, 16)
		return uint8(v)
	}
	v, _ := strconv.ParseInt(s, 10, 16)
	return uint8(v)
}
