// Package number implements the CAS core's tagged numeric scalar:
// exact 64-bit integers, exact reduced rationals, and IEEE double
// floats, with promotion rules matching spec.md §3.1 and §4.1.
//
// The variant tower mirrors the teacher's value.Int/BigInt/BigRat
// ladder (robpike-ivy), but collapses BigInt into plain int64 with
// overflow promoting straight to float64 rather than to an arbitrary
// precision integer: spec.md §4.1 specifies overflow loses exactness
// rather than growing a bignum.
package number

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	gonumscalar "gonum.org/v1/gonum/floats/scalar"

	"github.com/symtensor/tensorcas/caserr"
)

// Kind tags the active variant of a Number.
type Kind int

const (
	IntegerKind Kind = iota
	RationalKind
	RealKind
)

func (k Kind) String() string {
	switch k {
	case IntegerKind:
		return "integer"
	case RationalKind:
		return "rational"
	case RealKind:
		return "real"
	default:
		return "unknown-number-kind"
	}
}

// Number is an immutable tagged numeric scalar. The zero Number is the
// exact integer 0.
type Number struct {
	kind Kind
	i    int64    // valid when kind == IntegerKind
	r    *big.Rat // valid when kind == RationalKind; always reduced, denom > 0
	f    float64  // valid when kind == RealKind
}

// FromInt64 returns an exact integer Number.
func FromInt64(v int64) Number { return Number{kind: IntegerKind, i: v} }

// FromFloat64 returns a Real Number.
func FromFloat64(v float64) Number { return Number{kind: RealKind, f: v} }

// FromRat returns a Rational Number, normalizing to Integer if the
// ratio reduces to a whole number.
func FromRat(num, den int64) (Number, error) {
	if den == 0 {
		return Number{}, caserr.New(caserr.DivisionByZero, "FromRat", "zero denominator")
	}
	r := big.NewRat(num, den)
	return normalizedRat(r), nil
}

func normalizedRat(r *big.Rat) Number {
	if r.IsInt() {
		if r.Num().IsInt64() {
			return FromInt64(r.Num().Int64())
		}
		// Too large for int64: the spec's int64 integer variant can't
		// hold it exactly; fall back to Real, as overflow does elsewhere.
		f, _ := new(big.Float).SetRat(r).Float64()
		return FromFloat64(f)
	}
	return Number{kind: RationalKind, r: r}
}

// Kind reports the active variant.
func (n Number) Kind() Kind { return n.kind }

// IsZero reports whether n is exactly zero.
func (n Number) IsZero() bool {
	switch n.kind {
	case IntegerKind:
		return n.i == 0
	case RationalKind:
		return n.r.Sign() == 0
	case RealKind:
		return n.f == 0
	}
	return false
}

// IsOne reports whether n is exactly one.
func (n Number) IsOne() bool {
	switch n.kind {
	case IntegerKind:
		return n.i == 1
	case RationalKind:
		return n.r.IsInt() && n.r.Num().IsInt64() && n.r.Num().Int64() == 1
	case RealKind:
		return n.f == 1
	}
	return false
}

// IsInteger reports whether n's value is an integer, regardless of variant.
func (n Number) IsInteger() bool {
	switch n.kind {
	case IntegerKind:
		return true
	case RationalKind:
		return n.r.IsInt()
	case RealKind:
		return n.f == math.Trunc(n.f) && !math.IsInf(n.f, 0) && !math.IsNaN(n.f)
	}
	return false
}

// IsPositive reports whether n > 0.
func (n Number) IsPositive() bool { return n.Sign() > 0 }

// IsNegative reports whether n < 0.
func (n Number) IsNegative() bool { return n.Sign() < 0 }

// Sign returns -1, 0, or 1.
func (n Number) Sign() int {
	switch n.kind {
	case IntegerKind:
		switch {
		case n.i < 0:
			return -1
		case n.i > 0:
			return 1
		default:
			return 0
		}
	case RationalKind:
		return n.r.Sign()
	case RealKind:
		switch {
		case n.f < 0:
			return -1
		case n.f > 0:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func maxKind(a, b Kind) Kind {
	if a > b {
		return a
	}
	return b
}

func (n Number) toRat() *big.Rat {
	switch n.kind {
	case IntegerKind:
		return new(big.Rat).SetInt64(n.i)
	case RationalKind:
		return n.r
	}
	panic("toRat: not exact")
}

func (n Number) toFloat() float64 {
	switch n.kind {
	case IntegerKind:
		return float64(n.i)
	case RationalKind:
		f, _ := new(big.Float).SetRat(n.r).Float64()
		return f
	case RealKind:
		return n.f
	}
	panic("toFloat: bad kind")
}

// Add returns a + b, with result variant the widest of the two inputs
// (int64 overflow promotes to Real per §4.1).
func Add(a, b Number) Number {
	k := maxKind(a.kind, b.kind)
	switch k {
	case IntegerKind:
		sum, ok := addInt64(a.i, b.i)
		if !ok {
			return FromFloat64(a.toFloat() + b.toFloat())
		}
		return FromInt64(sum)
	case RationalKind:
		return normalizedRat(new(big.Rat).Add(a.toRat(), b.toRat()))
	default:
		return FromFloat64(a.toFloat() + b.toFloat())
	}
}

// Sub returns a - b.
func Sub(a, b Number) Number { return Add(a, Neg(b)) }

// Neg returns -a.
func Neg(a Number) Number {
	switch a.kind {
	case IntegerKind:
		if a.i == math.MinInt64 {
			return FromFloat64(-float64(a.i))
		}
		return FromInt64(-a.i)
	case RationalKind:
		return Number{kind: RationalKind, r: new(big.Rat).Neg(a.r)}
	default:
		return FromFloat64(-a.f)
	}
}

// Mul returns a * b.
func Mul(a, b Number) Number {
	k := maxKind(a.kind, b.kind)
	switch k {
	case IntegerKind:
		prod, ok := mulInt64(a.i, b.i)
		if !ok {
			return FromFloat64(a.toFloat() * b.toFloat())
		}
		return FromInt64(prod)
	case RationalKind:
		return normalizedRat(new(big.Rat).Mul(a.toRat(), b.toRat()))
	default:
		return FromFloat64(a.toFloat() * b.toFloat())
	}
}

// Div returns a / b, promoting to Rational for an inexact integer
// division and to Real once either operand is Real. Fails with
// caserr.DivisionByZero for an exact zero divisor.
func Div(a, b Number) (Number, error) {
	if b.kind != RealKind && b.IsZero() {
		return Number{}, caserr.New(caserr.DivisionByZero, "Div", "division by exact zero")
	}
	if a.kind == RealKind || b.kind == RealKind {
		return FromFloat64(a.toFloat() / b.toFloat()), nil
	}
	if b.IsZero() {
		// Real-kind zero divisor already handled above; unreachable
		// for integer/rational kinds because IsZero would have matched.
		return Number{}, caserr.New(caserr.DivisionByZero, "Div", "division by zero")
	}
	rat := new(big.Rat).Quo(a.toRat(), b.toRat())
	return normalizedRat(rat), nil
}

// Pow returns base**exp following §4.1's rules: integer base with
// non-negative integer exponent stays integer; negative integer
// exponent demotes to rational; pow(0,0) = 1.
func Pow(base, exp Number) (Number, error) {
	if exp.IsZero() {
		return FromInt64(1), nil
	}
	if base.kind == IntegerKind && exp.kind == IntegerKind {
		if exp.i >= 0 {
			return intPow(base.i, exp.i)
		}
		p, err := intPow(base.i, -exp.i)
		if err != nil {
			return Number{}, err
		}
		if p.IsZero() {
			return Number{}, caserr.New(caserr.DivisionByZero, "Pow", "zero base with negative exponent")
		}
		return Div(FromInt64(1), p)
	}
	if exp.IsInteger() && exp.kind != RealKind && base.kind != RealKind {
		ei := exp.toRat().Num().Int64()
		neg := ei < 0
		if neg {
			ei = -ei
		}
		acc := FromInt64(1)
		for i := int64(0); i < ei; i++ {
			acc = Mul(acc, base)
		}
		if neg {
			if acc.IsZero() {
				return Number{}, caserr.New(caserr.DivisionByZero, "Pow", "zero base with negative exponent")
			}
			return Div(FromInt64(1), acc)
		}
		return acc, nil
	}
	return FromFloat64(math.Pow(base.toFloat(), exp.toFloat())), nil
}

func intPow(base, exp int64) (Number, error) {
	if exp < 0 {
		panic("intPow: negative exponent")
	}
	acc := int64(1)
	b := base
	e := exp
	overflow := false
	for e > 0 {
		if e&1 == 1 {
			var ok bool
			acc, ok = mulInt64(acc, b)
			if !ok {
				overflow = true
				break
			}
		}
		e >>= 1
		if e == 0 {
			break
		}
		var ok bool
		b, ok = mulInt64(b, b)
		if !ok {
			overflow = true
			break
		}
	}
	if overflow {
		return FromFloat64(math.Pow(float64(base), float64(exp))), nil
	}
	return FromInt64(acc), nil
}

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// Equal reports exact equality within a variant, and value equality
// across variants (rational<->real comparisons convert to real).
func Equal(a, b Number) bool {
	if a.kind == b.kind {
		switch a.kind {
		case IntegerKind:
			return a.i == b.i
		case RationalKind:
			return a.r.Cmp(b.r) == 0
		case RealKind:
			return a.f == b.f
		}
	}
	if a.kind == RealKind || b.kind == RealKind {
		return a.toFloat() == b.toFloat()
	}
	return a.toRat().Cmp(b.toRat()) == 0
}

// ApproxEqual reports whether a and b are equal within an absolute
// tolerance once both are viewed as floats, for round-tripping
// comparisons involving a Real variant (e.g. a big.Rat converted from
// a Real and back) where Equal's exactness is too strict.
func ApproxEqual(a, b Number, tol float64) bool {
	return gonumscalar.EqualWithinAbs(a.toFloat(), b.toFloat(), tol)
}

// Cmp returns -1, 0, +1 as a compares less than, equal to, or greater
// than b, using strict IEEE semantics whenever a Real is involved.
func Cmp(a, b Number) int {
	if a.kind == RealKind || b.kind == RealKind {
		af, bf := a.toFloat(), b.toFloat()
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return a.toRat().Cmp(b.toRat())
}

// Abs returns the absolute value of n.
func Abs(n Number) Number {
	if n.Sign() < 0 {
		return Neg(n)
	}
	return n
}

// String renders n the way the teacher renders BigRat/BigFloat: plain
// decimal for integers, "num/den" for rationals, shortest round-trip
// decimal for reals.
func (n Number) String() string {
	switch n.kind {
	case IntegerKind:
		return strconv.FormatInt(n.i, 10)
	case RationalKind:
		return fmt.Sprintf("%s/%s", n.r.Num().String(), n.r.Denom().String())
	case RealKind:
		if math.IsInf(n.f, 1) {
			return "inf"
		}
		if math.IsInf(n.f, -1) {
			return "-inf"
		}
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	default:
		return "?"
	}
}

// Int64 returns the value as an int64 and true if n is exactly
// representable as one.
func (n Number) Int64() (int64, bool) {
	switch n.kind {
	case IntegerKind:
		return n.i, true
	case RationalKind:
		if n.r.IsInt() && n.r.Num().IsInt64() {
			return n.r.Num().Int64(), true
		}
	case RealKind:
		if n.f == math.Trunc(n.f) && n.f >= math.MinInt64 && n.f <= math.MaxInt64 {
			return int64(n.f), true
		}
	}
	return 0, false
}

// Float64 returns the value approximated as a float64, always
// succeeding (rationals and large integers are rounded).
func (n Number) Float64() float64 { return n.toFloat() }
