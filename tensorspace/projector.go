// Package tensorspace implements the rank-4 projector algebra of
// spec.md §4.8 and the permutation/index-sequence plumbing shared by
// BasisChange and InnerProduct/OuterProduct (§4.5.7).
package tensorspace

import "github.com/symtensor/tensorcas/assume"

// ProjectorKind names one of the four rank-4 projectors of §4.8.
type ProjectorKind int

const (
	Sym ProjectorKind = iota
	Skew
	Vol
	Dev
)

func (k ProjectorKind) String() string {
	switch k {
	case Sym:
		return "sym"
	case Skew:
		return "skew"
	case Vol:
		return "vol"
	case Dev:
		return "dev"
	default:
		return "unknown-projector"
	}
}

// TargetSpace returns the Space a tensor lands in once this projector
// has been applied to it and the elimination rule has fired.
func (k ProjectorKind) TargetSpace() assume.Space {
	switch k {
	case Sym:
		return assume.Space{Perm: assume.SymmetricPerm, Trace: assume.AnyTrace}
	case Skew:
		return assume.Space{Perm: assume.SkewPerm, Trace: assume.AnyTrace}
	case Vol:
		return assume.Space{Perm: assume.AnyPerm, Trace: assume.VolumetricTrace}
	case Dev:
		return assume.Space{Perm: assume.AnyPerm, Trace: assume.DeviatoricTrace}
	default:
		return assume.AnySpace
	}
}

// matches reports whether x's known space already satisfies this
// projector's condition, the test behind §4.5.9's elimination rules.
func (k ProjectorKind) Matches(sp assume.Space) bool {
	switch k {
	case Sym:
		return sp.Perm == assume.SymmetricPerm
	case Skew:
		return sp.Perm == assume.SkewPerm
	case Vol:
		return sp.Trace == assume.VolumetricTrace
	case Dev:
		return sp.Trace == assume.DeviatoricTrace
	default:
		return false
	}
}

// Annihilates reports whether applying this projector to a tensor
// already known to be in the *opposite* class yields Zero: skew(x) for
// symmetric x, sym(x) for skew x, vol(x) for deviatoric x, dev(x) for
// volumetric x.
func (k ProjectorKind) Annihilates(sp assume.Space) bool {
	switch k {
	case Sym:
		return sp.Perm == assume.SkewPerm
	case Skew:
		return sp.Perm == assume.SymmetricPerm
	case Vol:
		return sp.Trace == assume.DeviatoricTrace
	case Dev:
		return sp.Trace == assume.VolumetricTrace
	default:
		return false
	}
}

// Complement returns the projector k pairs with to reconstruct the
// identity: Sym+Skew=Identity, Vol+Dev=P_sym (§4.8).
func Complement(k ProjectorKind) ProjectorKind {
	switch k {
	case Sym:
		return Skew
	case Skew:
		return Sym
	case Vol:
		return Dev
	case Dev:
		return Vol
	default:
		return k
	}
}

// SameAxis reports whether a and b act on the same lattice axis
// (Sym/Skew share the permutation axis, Vol/Dev share the trace axis),
// the precondition for the "cross products are zero" identity.
func SameAxis(a, b ProjectorKind) bool {
	permAxis := func(k ProjectorKind) bool { return k == Sym || k == Skew }
	return permAxis(a) == permAxis(b)
}
