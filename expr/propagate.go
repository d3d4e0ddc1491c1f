package expr

import (
	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/number"
)

// numericAssumer is implemented by every Scalar node via the embedded
// scalarBase, giving the propagator access to a node's mutable
// assumption cache without widening the public Scalar interface.
type numericAssumer interface {
	assumptions() *assume.NumericSet
}

// ensureScalarPropagated returns x's full tag set, running the lazy
// bottom-up propagator (spec.md §4.6) exactly once per node and caching
// the result on the node's "inferred" flag. A later call to
// AssumeScalar invalidates the cache (assume.NumericSet.Assume already
// clears "inferred"), so the next query re-derives from the wider set —
// idempotent re-derivation, per the Open Question resolution in
// spec.md §9.
func ensureScalarPropagated(x Scalar) assume.NumericTag {
	na, ok := x.(numericAssumer)
	if !ok {
		return 0
	}
	set := na.assumptions()
	if tags, inferred := set.Snapshot(); inferred {
		return tags
	}
	derived := deriveScalarTags(x)
	if derived == 0 {
		set.MarkInferredEmpty()
	} else {
		debugTrace("propagate", "%s: derived tags %s", x.String(), derived.String())
		set.MergeInferred(derived)
	}
	tags, _ := set.Snapshot()
	return tags
}

// deriveScalarTags computes the primitive facts a node's own shape
// implies about its value, per the visitor rules of spec.md §4.6. The
// implication closure (Rational => Real, etc.) is applied by
// NumericSet.MergeInferred, so this only needs to report the tightest
// direct facts.
func deriveScalarTags(x Scalar) assume.NumericTag {
	switch v := x.(type) {
	case *symbolScalar:
		return 0
	case *zeroScalar:
		return assume.Nonnegative | assume.Nonpositive | assume.Integer | assume.Even | assume.Rational
	case *oneScalar:
		return assume.Positive | assume.Nonzero | assume.Integer | assume.Odd | assume.Rational
	case *constantScalar:
		return deriveConstantTags(v)
	case *namedScalar:
		return ensureScalarPropagated(v.Sub)
	case *unaryScalar:
		return deriveUnaryTags(v)
	case *powScalar:
		return derivePowTags(v)
	case *addScalar:
		return deriveAddTags(v)
	case *mulScalar:
		return deriveMulTags(v)
	default:
		return 0
	}
}

func deriveConstantTags(c *constantScalar) assume.NumericTag {
	var tags assume.NumericTag
	n := c.Value
	if n.IsPositive() {
		tags |= assume.Positive
	}
	if n.IsNegative() {
		tags |= assume.Negative
	}
	tags |= assume.Nonzero // ScalarConstant folds exact 0 to the Zero singleton.
	if n.IsInteger() {
		tags |= assume.Integer
		if v, ok := n.Int64(); ok {
			if v%2 == 0 {
				tags |= assume.Even
			} else {
				tags |= assume.Odd
			}
		}
	}
	switch n.Kind() {
	case number.IntegerKind, number.RationalKind:
		tags |= assume.Rational
	default:
		tags |= assume.Real
	}
	return tags
}

func deriveUnaryTags(u *unaryScalar) assume.NumericTag {
	child := ensureScalarPropagated(u.X)
	switch u.kind {
	case SkNeg:
		var tags assume.NumericTag
		if child&assume.Positive != 0 {
			tags |= assume.Negative
		}
		if child&assume.Negative != 0 {
			tags |= assume.Positive
		}
		if child&assume.Nonnegative != 0 {
			tags |= assume.Nonpositive
		}
		if child&assume.Nonpositive != 0 {
			tags |= assume.Nonnegative
		}
		tags |= child & (assume.Nonzero | assume.Integer | assume.Even | assume.Odd | assume.Rational | assume.Irrational | assume.Real | assume.Complex)
		return tags
	case SkExp:
		tags := assume.Positive | assume.Nonzero
		if child&assume.Real != 0 {
			tags |= assume.Real
		}
		return tags
	case SkSqrt:
		return assume.Nonnegative
	case SkAbs:
		tags := assume.Nonnegative
		if child&assume.Nonzero != 0 {
			tags |= assume.Positive | assume.Nonzero
		}
		if child&assume.Real != 0 {
			tags |= assume.Real
		}
		return tags
	default:
		return 0
	}
}

func derivePowTags(p *powScalar) assume.NumericTag {
	if c, ok := p.Exp.(*constantScalar); ok && c.Value.IsInteger() {
		if v, ok := c.Value.Int64(); ok && v%2 == 0 {
			base := ensureScalarPropagated(p.Base)
			tags := assume.Nonnegative
			if base&assume.Real != 0 {
				tags |= assume.Real
			}
			return tags
		}
	}
	return 0
}

func deriveAddTags(a *addScalar) assume.NumericTag {
	children := a.Children()
	if len(children) == 0 {
		return 0
	}
	allPositive, allNonnegative, allReal := true, true, true
	for _, c := range children {
		tags := ensureScalarPropagated(c)
		if tags&assume.Positive == 0 {
			allPositive = false
		}
		if tags&assume.Nonnegative == 0 {
			allNonnegative = false
		}
		if tags&assume.Real == 0 {
			allReal = false
		}
	}
	var out assume.NumericTag
	if allPositive {
		out |= assume.Positive
	} else if allNonnegative {
		out |= assume.Nonnegative
	}
	if allReal {
		out |= assume.Real
	}
	return out
}

func deriveMulTags(m *mulScalar) assume.NumericTag {
	children := m.Children()
	signKnown := true
	negatives := 0
	allNonzero := true
	allReal := true
	for _, c := range children {
		tags := ensureScalarPropagated(c)
		switch {
		case tags&assume.Positive != 0:
		case tags&assume.Negative != 0:
			negatives++
		default:
			signKnown = false
		}
		if tags&assume.Nonzero == 0 {
			allNonzero = false
		}
		if tags&assume.Real == 0 {
			allReal = false
		}
	}
	var out assume.NumericTag
	if signKnown && len(children) > 0 {
		if negatives%2 == 0 {
			out |= assume.Positive
		} else {
			out |= assume.Negative
		}
	}
	if allNonzero {
		out |= assume.Nonzero
	}
	if allReal {
		out |= assume.Real
	}
	return out
}

// AssumeScalar adds tag as a user-level assumption on x.
func AssumeScalar(x Scalar, tag assume.NumericTag) {
	if na, ok := x.(numericAssumer); ok {
		na.assumptions().Assume(tag)
	}
}

// RemoveScalarAssumption removes tag from x's user-level assumptions.
func RemoveScalarAssumption(x Scalar, tag assume.NumericTag) {
	if na, ok := x.(numericAssumer); ok {
		na.assumptions().Remove(tag)
	}
}

func hasScalarTag(x Scalar, tag assume.NumericTag) bool {
	return ensureScalarPropagated(x)&tag != 0
}

// IsPositiveScalar reports whether x is known positive.
func IsPositiveScalar(x Scalar) bool { return hasScalarTag(x, assume.Positive) }

// IsNegativeScalar reports whether x is known negative.
func IsNegativeScalar(x Scalar) bool { return hasScalarTag(x, assume.Negative) }

// IsNonzeroScalar reports whether x is known nonzero.
func IsNonzeroScalar(x Scalar) bool { return hasScalarTag(x, assume.Nonzero) }

// IsNonnegativeScalar reports whether x is known nonnegative.
func IsNonnegativeScalar(x Scalar) bool { return hasScalarTag(x, assume.Nonnegative) }

// IsNonpositiveScalar reports whether x is known nonpositive.
func IsNonpositiveScalar(x Scalar) bool { return hasScalarTag(x, assume.Nonpositive) }

// IsIntegerScalar reports whether x is known integer.
func IsIntegerScalar(x Scalar) bool { return hasScalarTag(x, assume.Integer) }

// IsEvenScalar reports whether x is known even.
func IsEvenScalar(x Scalar) bool { return hasScalarTag(x, assume.Even) }

// IsOddScalar reports whether x is known odd.
func IsOddScalar(x Scalar) bool { return hasScalarTag(x, assume.Odd) }

// IsRationalScalar reports whether x is known rational.
func IsRationalScalar(x Scalar) bool { return hasScalarTag(x, assume.Rational) }

// IsIrrationalScalar reports whether x is known irrational.
func IsIrrationalScalar(x Scalar) bool { return hasScalarTag(x, assume.Irrational) }

// IsRealScalar reports whether x is known real.
func IsRealScalar(x Scalar) bool { return hasScalarTag(x, assume.Real) }

// IsComplexScalar reports whether x is known complex (non-real).
func IsComplexScalar(x Scalar) bool { return hasScalarTag(x, assume.Complex) }

// IsPrimeScalar reports whether x is known prime.
func IsPrimeScalar(x Scalar) bool { return hasScalarTag(x, assume.Prime) }

// ---- Tensor space propagation (spec.md §4.6, tensor-space clause) ----

// ensureTensorSpacePropagated mirrors ensureScalarPropagated for the
// (permutation class, trace class) lattice of assume.Space.
func ensureTensorSpacePropagated(x Tensor, sa spaceAssumer) (assume.Space, bool) {
	set := sa.spaceSetOf()
	if sp, inferred := set.Snapshot(); inferred {
		return sp, true
	}
	derived := deriveTensorSpace(x)
	debugTrace("propagate", "%s: derived space perm=%s trace=%s", x.String(), derived.Perm.String(), derived.Trace.String())
	set.MergeInferred(derived)
	sp, _ := set.Snapshot()
	return sp, true
}

// deriveTensorSpace computes the direct space facts implied by a
// node's own shape: KroneckerDelta/IdentityTensor are symmetric and
// volumetric by construction (already seeded at their factories);
// compound nodes join or propagate their children's spaces.
func deriveTensorSpace(x Tensor) assume.Space {
	switch v := x.(type) {
	case *negTensor:
		sp, _ := spaceOf(v.X)
		return sp
	case *scalarMulTensor:
		sp, _ := spaceOf(v.T)
		return sp
	case *invTensor:
		sp, _ := spaceOf(v.X)
		trace := assume.AnyTrace
		if sp.Trace == assume.VolumetricTrace {
			trace = assume.VolumetricTrace
		}
		return assume.Space{Perm: sp.Perm, Trace: trace}
	case *symmetryTensor:
		return assume.Space{Perm: assume.SymmetricPerm}
	case *addTensor:
		joined := assume.AnySpace
		first := true
		for _, key := range v.sortedKeys() {
			sp, _ := spaceOf(v.Terms[key].Term)
			if first {
				joined, first = sp, false
			} else {
				joined = assume.Join(joined, sp)
			}
		}
		return joined
	default:
		return assume.AnySpace
	}
}

// The spaceAssumer interface exposes *tensorBase.spaceSetOf to the rest
// of the package without widening the public Tensor interface; tensor.go
// defines spaceAssumer and the concrete spaceSetOf method.

// AssumeTensorSpace adds sp as a user-level assumption on x.
func AssumeTensorSpace(x Tensor, sp assume.Space) {
	if sa, ok := x.(spaceAssumer); ok {
		sa.spaceSetOf().Assume(sp)
	}
}

// RemoveTensorSpaceAssumption clears the given axes of x's user-level
// assumption back to Any.
func RemoveTensorSpaceAssumption(x Tensor, sp assume.Space) {
	if sa, ok := x.(spaceAssumer); ok {
		sa.spaceSetOf().Remove(sp)
	}
}

// IsSymmetricTensor reports whether x is known symmetric.
func IsSymmetricTensor(x Tensor) bool {
	sp, _ := spaceOf(x)
	return sp.Perm == assume.SymmetricPerm
}

// IsSkewTensor reports whether x is known skew.
func IsSkewTensor(x Tensor) bool {
	sp, _ := spaceOf(x)
	return sp.Perm == assume.SkewPerm
}

// IsDeviatoricTensor reports whether x is known deviatoric (traceless).
func IsDeviatoricTensor(x Tensor) bool {
	sp, _ := spaceOf(x)
	return sp.Trace == assume.DeviatoricTrace
}

// IsVolumetricTensor reports whether x is known volumetric (a multiple
// of the identity).
func IsVolumetricTensor(x Tensor) bool {
	sp, _ := spaceOf(x)
	return sp.Trace == assume.VolumetricTrace
}
