package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/hashkey"
	"github.com/symtensor/tensorcas/tensorspace"
)

// TensorKind tags the variant of a Tensor node (spec.md §3.2).
type TensorKind int

const (
	TkSymbol TensorKind = iota
	TkZero
	TkKroneckerDelta
	TkIdentity
	TkProjector
	TkNeg
	TkInv
	TkPow
	TkBasisChange
	TkSymmetry
	TkInnerProduct
	TkOuterProduct
	TkScalarMul
	TkScalarDiv
	TkAdd
	TkMul
	TkSimpleOuterProduct
)

func (k TensorKind) String() string {
	names := [...]string{
		"Symbol", "Zero", "KroneckerDelta", "IdentityTensor", "Projector",
		"Neg", "Inv", "Pow", "BasisChange", "Symmetry", "InnerProduct",
		"OuterProduct", "ScalarMul", "ScalarDiv", "Add", "Mul",
		"SimpleOuterProduct",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UnknownTensorKind"
}

// Tensor is the sealed interface implemented by every tensor expression
// node.
type Tensor interface {
	isTensor()
	TensorKind() TensorKind
	Hash() hashkey.Hash
	Dim() int
	Rank() int
	Children() []Tensor
	String() string
}

type tensorBase struct {
	h     hashkey.Hash
	dim   int
	rank  int
	space assume.SpaceSet
}

func (b *tensorBase) isTensor()                     {}
func (b *tensorBase) Hash() hashkey.Hash            { return b.h }
func (b *tensorBase) Dim() int                      { return b.dim }
func (b *tensorBase) Rank() int                     { return b.rank }
func (b *tensorBase) spaceSet() *assume.SpaceSet     { return &b.space }

const (
	tagTensorSymbol uint32 = iota + 2000
	tagTensorZero
	tagTensorDelta
	tagTensorIdentity
	tagTensorProjector
	tagTensorNeg
	tagTensorInv
	tagTensorPow
	tagTensorBasisChange
	tagTensorSymmetry
	tagTensorInnerProduct
	tagTensorOuterProduct
	tagTensorScalarMul
	tagTensorScalarDiv
	tagTensorAdd
	tagTensorMul
	tagTensorSimpleOuterProduct
)

func requireSameDim(op string, a, b Tensor) error {
	if a.Dim() != b.Dim() {
		return caserr.New(caserr.ShapeMismatch, op, "dim mismatch: %d vs %d", a.Dim(), b.Dim())
	}
	return nil
}

// ---- Leaves ----

type symbolTensor struct {
	tensorBase
	Name string
}

func (s *symbolTensor) TensorKind() TensorKind { return TkSymbol }
func (s *symbolTensor) Children() []Tensor     { return nil }
func (s *symbolTensor) String() string         { return s.Name }

// TensorSymbol returns a rank-`rank`, dim-`dim` symbolic tensor.
func TensorSymbol(name string, dim, rank int) Tensor {
	s := &symbolTensor{Name: name}
	s.dim, s.rank = dim, rank
	h := hashkey.String(hashkey.Tag(tagTensorSymbol), name)
	h = hashkey.Int(h, dim)
	h = hashkey.Int(h, rank)
	s.h = h
	return s
}

type zeroTensor struct{ tensorBase }

func (z *zeroTensor) TensorKind() TensorKind { return TkZero }
func (z *zeroTensor) Children() []Tensor     { return nil }
func (z *zeroTensor) String() string         { return "0T" }

// TensorZero returns the additive identity of shape (dim, rank).
func TensorZero(dim, rank int) Tensor {
	z := &zeroTensor{}
	z.dim, z.rank = dim, rank
	h := hashkey.Int(hashkey.Tag(tagTensorZero), dim)
	h = hashkey.Int(h, rank)
	z.h = h
	z.space.MergeInferred(assume.AnySpace)
	return z
}

type deltaTensor struct{ tensorBase }

func (d *deltaTensor) TensorKind() TensorKind { return TkKroneckerDelta }
func (d *deltaTensor) Children() []Tensor     { return nil }
func (d *deltaTensor) String() string         { return "delta" }

// TensorDelta returns the Kronecker delta of dimension dim (rank 2).
func TensorDelta(dim int) Tensor {
	d := &deltaTensor{}
	d.dim, d.rank = dim, 2
	d.h = hashkey.Int(hashkey.Tag(tagTensorDelta), dim)
	d.space.MergeInferred(assume.Space{Perm: assume.SymmetricPerm, Trace: assume.VolumetricTrace})
	return d
}

type identityTensor struct{ tensorBase }

func (i *identityTensor) TensorKind() TensorKind { return TkIdentity }
func (i *identityTensor) Children() []Tensor     { return nil }
func (i *identityTensor) String() string         { return "I" }

// TensorIdentity returns the even-rank identity tensor of shape (dim,
// rank). rank must be even (spec.md §3.2).
func TensorIdentity(dim, rank int) (Tensor, error) {
	if rank%2 != 0 {
		return nil, caserr.New(caserr.InvalidExpression, "TensorIdentity", "rank %d must be even", rank)
	}
	i := &identityTensor{}
	i.dim, i.rank = dim, rank
	h := hashkey.Int(hashkey.Tag(tagTensorIdentity), dim)
	h = hashkey.Int(h, rank)
	i.h = h
	i.space.MergeInferred(assume.Space{Perm: assume.SymmetricPerm, Trace: assume.VolumetricTrace})
	return i, nil
}

// MustTensorIdentity panics instead of returning an error; for call
// sites (simplifier rules) that already know rank is even.
func MustTensorIdentity(dim, rank int) Tensor {
	t, err := TensorIdentity(dim, rank)
	if err != nil {
		panic(err)
	}
	return t
}

type projectorTensor struct {
	tensorBase
	Space    tensorspace.ProjectorKind
	ActsOn   int // acts_on_rank
}

func (p *projectorTensor) TensorKind() TensorKind { return TkProjector }
func (p *projectorTensor) Children() []Tensor     { return nil }
func (p *projectorTensor) String() string         { return fmt.Sprintf("P_%s", p.Space) }

// TensorProjector returns the rank-4 projector onto the named space,
// acting on rank-`actsOnRank` tensors of dimension dim (spec.md §4.8).
func TensorProjector(space tensorspace.ProjectorKind, actsOnRank, dim int) Tensor {
	p := &projectorTensor{Space: space, ActsOn: actsOnRank}
	p.dim, p.rank = dim, 4
	h := hashkey.Int(hashkey.Tag(tagTensorProjector), int(space))
	h = hashkey.Int(h, actsOnRank)
	h = hashkey.Int(h, dim)
	p.h = h
	p.space.MergeInferred(space.TargetSpace())
	return p
}

// ---- Unary ----

type negTensor struct {
	tensorBase
	X Tensor
}

func (n *negTensor) TensorKind() TensorKind { return TkNeg }
func (n *negTensor) Children() []Tensor     { return []Tensor{n.X} }
func (n *negTensor) String() string         { return "-" + n.X.String() }

// TensorNeg returns -x.
func TensorNeg(x Tensor) Tensor {
	requireTensor(x, "Neg")
	if _, ok := x.(*zeroTensor); ok {
		return x
	}
	if n, ok := x.(*negTensor); ok {
		debugTrace("simplify", "Neg: double negation -(-%s) -> %s", n.X.String(), n.X.String())
		return n.X
	}
	n := &negTensor{X: x}
	n.dim, n.rank = x.Dim(), x.Rank()
	n.h = hashkey.MixOrdered(hashkey.Tag(tagTensorNeg), x.Hash())
	sp, _ := x.(spaceAssumer).spaceSetOf().Snapshot()
	n.space.MergeInferred(sp)
	return n
}

type invTensor struct {
	tensorBase
	X Tensor
}

func (n *invTensor) TensorKind() TensorKind { return TkInv }
func (n *invTensor) Children() []Tensor     { return []Tensor{n.X} }
func (n *invTensor) String() string         { return "inv(" + n.X.String() + ")" }

// TensorInv returns the inverse of a rank-2 tensor.
func TensorInv(x Tensor) (Tensor, error) {
	requireTensor(x, "Inv")
	if x.Rank() != 2 {
		return nil, caserr.New(caserr.ShapeMismatch, "Inv", "inverse requires rank 2, got %d", x.Rank())
	}
	if id, ok := x.(*identityTensor); ok {
		debugTrace("simplify", "Inv: identity is self-inverse")
		return id, nil
	}
	n := &invTensor{X: x}
	n.dim, n.rank = x.Dim(), x.Rank()
	n.h = hashkey.MixOrdered(hashkey.Tag(tagTensorInv), x.Hash())
	sp, _ := spaceOf(x)
	// permutation class is preserved by inversion; trace class is only
	// preserved when volumetric (a multiple of the identity stays one
	// under inversion), otherwise unknown (§4.6).
	trace := assume.AnyTrace
	if sp.Trace == assume.VolumetricTrace {
		trace = assume.VolumetricTrace
	}
	n.space.MergeInferred(assume.Space{Perm: sp.Perm, Trace: trace})
	return n, nil
}

type powTensor struct {
	tensorBase
	Base Tensor
	Exp  Scalar
}

func (p *powTensor) TensorKind() TensorKind { return TkPow }
func (p *powTensor) Children() []Tensor     { return []Tensor{p.Base} }
func (p *powTensor) String() string         { return fmt.Sprintf("%s^%s", p.Base.String(), p.Exp.String()) }

// TensorPow returns base**exp for a scalar exponent exp (§4.5.6).
// Pow(t,0)=Identity(dim,rank); Pow(t,1)=t.
func TensorPow(base Tensor, exp Scalar) (Tensor, error) {
	requireTensor(base, "Pow")
	requireScalar(exp, "Pow")
	if isZeroScalar(exp) {
		debugTrace("simplify", "Pow: %s^0 -> identity", base.String())
		return TensorIdentity(base.Dim(), base.Rank())
	}
	if isOneScalar(exp) {
		return base, nil
	}
	if p, ok := base.(*powTensor); ok {
		debugTrace("simplify", "Pow: (%s^%s)^%s -> %s^(%s*%s)", p.Base.String(), p.Exp.String(), exp.String(), p.Base.String(), p.Exp.String(), exp.String())
		return TensorPow(p.Base, ScalarMul(p.Exp, exp))
	}
	p := &powTensor{Base: base, Exp: exp}
	p.dim, p.rank = base.Dim(), base.Rank()
	p.h = hashkey.MixOrdered(hashkey.Tag(tagTensorPow), base.Hash(), exp.Hash())
	sp, _ := spaceOf(base)
	perm := sp.Perm
	if perm == assume.SkewPerm {
		if c, ok := exp.(*constantScalar); ok && c.Value.IsInteger() {
			if v, _ := c.Value.Int64(); v >= 2 {
				perm = assume.SymmetricPerm
			}
		}
	}
	trace := sp.Trace
	if trace == assume.DeviatoricTrace {
		// a power of a deviatoric tensor need not itself be traceless.
		trace = assume.AnyTrace
	}
	p.space.MergeInferred(assume.Space{Perm: perm, Trace: trace})
	return p, nil
}

type basisChangeTensor struct {
	tensorBase
	X    Tensor
	Perm tensorspace.Permutation
}

func (b *basisChangeTensor) TensorKind() TensorKind { return TkBasisChange }
func (b *basisChangeTensor) Children() []Tensor     { return []Tensor{b.X} }
func (b *basisChangeTensor) String() string         { return fmt.Sprintf("basis(%s,%v)", b.X.String(), []int(b.Perm)) }

// TensorBasisChange permutes x's free indices per perm (1-based).
// Composes per §4.5.7: BasisChange(BasisChange(t,p),q) = BasisChange(t, p o q).
func TensorBasisChange(x Tensor, perm tensorspace.Permutation) (Tensor, error) {
	requireTensor(x, "BasisChange")
	if len(perm) != x.Rank() {
		return nil, caserr.New(caserr.ShapeMismatch, "BasisChange", "permutation length %d != rank %d", len(perm), x.Rank())
	}
	if err := perm.Validate(); err != nil {
		return nil, err
	}
	if perm.IsIdentity() {
		return x, nil
	}
	if bc, ok := x.(*basisChangeTensor); ok {
		return TensorBasisChange(bc.X, tensorspace.Compose(perm, bc.Perm))
	}
	b := &basisChangeTensor{X: x, Perm: perm}
	b.dim, b.rank = x.Dim(), x.Rank()
	h := hashkey.Tag(tagTensorBasisChange)
	h = hashkey.MixOrdered(h, x.Hash())
	for _, p := range perm {
		h = hashkey.Int(h, p)
	}
	b.h = h
	return b, nil
}

type symmetryTensor struct {
	tensorBase
	X     Tensor
	Perms []tensorspace.Permutation
}

func (s *symmetryTensor) TensorKind() TensorKind { return TkSymmetry }
func (s *symmetryTensor) Children() []Tensor     { return []Tensor{s.X} }
func (s *symmetryTensor) String() string         { return fmt.Sprintf("symmetrize(%s)", s.X.String()) }

// TensorSymmetry wraps x as symmetric under the given list of
// permutations, deduplicating and unioning with any existing Symmetry
// wrapper on x (SPEC_FULL §3 composition law).
func TensorSymmetry(x Tensor, perms []tensorspace.Permutation) (Tensor, error) {
	requireTensor(x, "Symmetry")
	for _, p := range perms {
		if len(p) != x.Rank() {
			return nil, caserr.New(caserr.ShapeMismatch, "Symmetry", "permutation length %d != rank %d", len(p), x.Rank())
		}
	}
	merged := perms
	base := x
	if s, ok := x.(*symmetryTensor); ok {
		base = s.X
		merged = unionPermutations(s.Perms, perms)
	}
	if len(merged) == 0 {
		return base, nil
	}
	if base.Rank() == 2 && IsSymmetricTensor(base) {
		debugTrace("simplify", "Symmetry: %s already symmetric", base.String())
		return base, nil
	}
	s := &symmetryTensor{X: base, Perms: merged}
	s.dim, s.rank = base.Dim(), base.Rank()
	h := hashkey.Tag(tagTensorSymmetry)
	h = hashkey.MixOrdered(h, base.Hash())
	sortedPerms := make([]tensorspace.Permutation, len(merged))
	copy(sortedPerms, merged)
	sort.Slice(sortedPerms, func(i, j int) bool { return fmt.Sprint(sortedPerms[i]) < fmt.Sprint(sortedPerms[j]) })
	for _, p := range sortedPerms {
		for _, v := range p {
			h = hashkey.Int(h, v)
		}
	}
	s.h = h
	s.space.MergeInferred(assume.Space{Perm: assume.SymmetricPerm})
	return s, nil
}

func unionPermutations(a, b []tensorspace.Permutation) []tensorspace.Permutation {
	out := make([]tensorspace.Permutation, 0, len(a)+len(b))
	out = append(out, a...)
	for _, p := range b {
		dup := false
		for _, q := range out {
			if tensorspace.Equal(p, q) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func requireTensor(x Tensor, op string) {
	if x == nil {
		panicInvalid(op)
	}
}

type spaceAssumer interface {
	spaceSetOf() *assume.SpaceSet
}

func (b *tensorBase) spaceSetOf() *assume.SpaceSet { return &b.space }

func spaceOf(x Tensor) (assume.Space, bool) {
	if sa, ok := x.(spaceAssumer); ok {
		return ensureTensorSpacePropagated(x, sa)
	}
	return assume.AnySpace, false
}

// ---- Binary ----

type scalarMulTensor struct {
	tensorBase
	S Scalar
	T Tensor
}

func (m *scalarMulTensor) TensorKind() TensorKind { return TkScalarMul }
func (m *scalarMulTensor) Children() []Tensor     { return []Tensor{m.T} }
func (m *scalarMulTensor) String() string         { return fmt.Sprintf("%s*%s", m.S.String(), m.T.String()) }

// TensorScalarMul returns s*t (§4.5.6): ScalarMul(1,t)=t,
// ScalarMul(0,t)=Zero, ScalarMul(s1,ScalarMul(s2,t))=ScalarMul(s1*s2,t).
func TensorScalarMul(s Scalar, t Tensor) Tensor {
	requireScalar(s, "ScalarMul")
	requireTensor(t, "ScalarMul")
	if isOneScalar(s) {
		return t
	}
	if isZeroScalar(s) || isTensorZero(t) {
		return TensorZero(t.Dim(), t.Rank())
	}
	if sm, ok := t.(*scalarMulTensor); ok {
		return TensorScalarMul(ScalarMul(s, sm.S), sm.T)
	}
	m := &scalarMulTensor{S: s, T: t}
	m.dim, m.rank = t.Dim(), t.Rank()
	m.h = hashkey.MixOrdered(hashkey.Tag(tagTensorScalarMul), s.Hash(), t.Hash())
	sp, _ := spaceOf(t)
	m.space.MergeInferred(sp)
	return m
}

func isTensorZero(t Tensor) bool { _, ok := t.(*zeroTensor); return ok }

// TensorScalarDiv returns t/s.
func TensorScalarDiv(t Tensor, s Scalar) (Tensor, error) {
	requireTensor(t, "ScalarDiv")
	requireScalar(s, "ScalarDiv")
	if isZeroScalar(s) {
		return nil, caserr.New(caserr.DivisionByZero, "ScalarDiv", "division by symbolic zero")
	}
	inv := ScalarPow(s, ScalarNeg(ScalarOne()))
	return TensorScalarMul(inv, t), nil
}

type innerProductTensor struct {
	tensorBase
	LHS, RHS         Tensor
	LHSIdx, RHSIdx   []int
}

func (p *innerProductTensor) TensorKind() TensorKind { return TkInnerProduct }
func (p *innerProductTensor) Children() []Tensor     { return []Tensor{p.LHS, p.RHS} }
func (p *innerProductTensor) String() string {
	return fmt.Sprintf("(%s).%v.(%s).%v", p.LHS.String(), p.LHSIdx, p.RHS.String(), p.RHSIdx)
}

// TensorInnerProduct contracts lhs on lhsIdx against rhs on rhsIdx
// (1-based, equal length), per spec.md §4.5.7.
func TensorInnerProduct(lhs Tensor, lhsIdx []int, rhs Tensor, rhsIdx []int) (Tensor, error) {
	requireTensor(lhs, "InnerProduct")
	requireTensor(rhs, "InnerProduct")
	if len(lhsIdx) != len(rhsIdx) {
		return nil, caserr.New(caserr.IndexError, "InnerProduct", "index sequence length mismatch: %d vs %d", len(lhsIdx), len(rhsIdx))
	}
	if err := tensorspace.ValidateIndices(lhsIdx, lhs.Rank()); err != nil {
		return nil, err
	}
	if err := tensorspace.ValidateIndices(rhsIdx, rhs.Rank()); err != nil {
		return nil, err
	}
	if err := requireSameDim("InnerProduct", lhs, rhs); err != nil {
		return nil, err
	}
	if isTensorZero(lhs) || isTensorZero(rhs) {
		debugTrace("simplify", "InnerProduct: zero operand annihilates contraction")
		return TensorZero(lhs.Dim(), lhs.Rank()+rhs.Rank()-2*len(lhsIdx)), nil
	}
	// Delta absorption: InnerProduct(KroneckerDelta, [2], x, [1]) with x.rank==2 => x.
	if _, ok := lhs.(*deltaTensor); ok && len(lhsIdx) == 1 && lhsIdx[0] == 2 && len(rhsIdx) == 1 && rhsIdx[0] == 1 && rhs.Rank() == 2 {
		debugTrace("simplify", "InnerProduct: KroneckerDelta absorbed into %s", rhs.String())
		return rhs, nil
	}
	if _, ok := rhs.(*deltaTensor); ok && len(rhsIdx) == 1 && rhsIdx[0] == 1 && len(lhsIdx) == 1 && lhsIdx[0] == 2 && lhs.Rank() == 2 {
		debugTrace("simplify", "InnerProduct: KroneckerDelta absorbed into %s", lhs.String())
		return lhs, nil
	}
	// Identity absorption: contracting against the first half of a
	// right-hand identity's indices, or the second half of a left-hand
	// identity's, returns the other operand unchanged.
	if id, ok := rhs.(*identityTensor); ok {
		half := id.rank / 2
		if indicesAre(rhsIdx, rangeInts(1, half)) && len(lhsIdx) == half {
			return lhs, nil
		}
	}
	if id, ok := lhs.(*identityTensor); ok {
		half := id.rank / 2
		if indicesAre(lhsIdx, rangeInts(half+1, id.rank)) && len(rhsIdx) == half {
			return rhs, nil
		}
	}
	// Projector elimination (§4.5.7, §4.5.9): InnerProduct(P,{3,4},x,{1,2})
	// for a rank-4 projector P of space s.
	if proj, ok := lhs.(*projectorTensor); ok && proj.rank == 4 && rhs.Rank() == 2 {
		if indicesAre(lhsIdx, []int{3, 4}) && indicesAre(rhsIdx, []int{1, 2}) {
			sp, _ := spaceOf(rhs)
			if proj.Space.Matches(sp) {
				debugTrace("simplify", "InnerProduct: projector matches %s's space, eliminated", rhs.String())
				return rhs, nil
			}
			if proj.Space.Annihilates(sp) {
				debugTrace("simplify", "InnerProduct: projector annihilates %s's space", rhs.String())
				return TensorZero(rhs.Dim(), 2), nil
			}
			return applyProjectorFunctional(proj.Space, rhs), nil
		}
	}
	if proj, ok := rhs.(*projectorTensor); ok && proj.rank == 4 && lhs.Rank() == 2 {
		if indicesAre(rhsIdx, []int{1, 2}) && indicesAre(lhsIdx, []int{1, 2}) {
			// InnerProduct(x,{1,2},P,{1,2}) normalizes to P,{3,4},x,{1,2}.
			return TensorInnerProduct(proj, []int{3, 4}, lhs, []int{1, 2})
		}
	}
	p := &innerProductTensor{LHS: lhs, RHS: rhs, LHSIdx: append([]int(nil), lhsIdx...), RHSIdx: append([]int(nil), rhsIdx...)}
	p.dim = lhs.Dim()
	p.rank = lhs.Rank() + rhs.Rank() - 2*len(lhsIdx)
	h := hashkey.Tag(tagTensorInnerProduct)
	h = hashkey.MixOrdered(h, lhs.Hash())
	for _, i := range lhsIdx {
		h = hashkey.Int(h, i)
	}
	h = hashkey.MixOrdered(h, rhs.Hash())
	for _, i := range rhsIdx {
		h = hashkey.Int(h, i)
	}
	p.h = h
	return p, nil
}

// applyProjectorFunctional returns the symmetry/skew/vol/dev functional
// form of x when a projector-elimination rule fires but x's space
// isn't yet known to match or be annihilated by the projector.
func applyProjectorFunctional(k tensorspace.ProjectorKind, x Tensor) Tensor {
	switch k {
	case tensorspace.Sym:
		sym, _ := TensorSymmetry(x, []tensorspace.Permutation{{2, 1}})
		return sym
	case tensorspace.Skew:
		return TensorScalarMul(ScalarConstantFromFraction(1, 2), TensorAdd(x, TensorNeg(mustBasisChange(x, tensorspace.Permutation{2, 1}))))
	case tensorspace.Vol:
		dim := x.Dim()
		tr, _ := T2STrace(x)
		coeff := ScalarMul(ScalarConstantFromFraction(1, int64(dim)), T2SToScalar(tr))
		return TensorScalarMul(coeff, TensorDelta(dim))
	case tensorspace.Dev:
		dim := x.Dim()
		tr, _ := T2STrace(x)
		coeff := ScalarMul(ScalarConstantFromFraction(1, int64(dim)), T2SToScalar(tr))
		vol := TensorScalarMul(coeff, TensorDelta(dim))
		return TensorAdd(x, TensorNeg(vol))
	}
	return x
}

func mustBasisChange(x Tensor, p tensorspace.Permutation) Tensor {
	b, err := TensorBasisChange(x, p)
	if err != nil {
		panic(err)
	}
	return b
}

func indicesAre(got, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	g := tensorspace.SortedCopy(got)
	w := tensorspace.SortedCopy(want)
	for i := range g {
		if g[i] != w[i] {
			return false
		}
	}
	return true
}

func rangeInts(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}

type outerProductTensor struct {
	tensorBase
	LHS, RHS       Tensor
	LHSIdx, RHSIdx []int
}

func (p *outerProductTensor) TensorKind() TensorKind { return TkOuterProduct }
func (p *outerProductTensor) Children() []Tensor     { return []Tensor{p.LHS, p.RHS} }
func (p *outerProductTensor) String() string {
	return fmt.Sprintf("(%s)x(%s)", p.LHS.String(), p.RHS.String())
}

// TensorOuterProduct forms the tensor product of lhs and rhs with an
// index-concatenation rule (§3.2, §4.5.7): no contraction, so rank adds.
func TensorOuterProduct(lhs Tensor, lhsIdx []int, rhs Tensor, rhsIdx []int) (Tensor, error) {
	requireTensor(lhs, "OuterProduct")
	requireTensor(rhs, "OuterProduct")
	if err := requireSameDim("OuterProduct", lhs, rhs); err != nil {
		return nil, err
	}
	if isTensorZero(lhs) || isTensorZero(rhs) {
		return TensorZero(lhs.Dim(), lhs.Rank()+rhs.Rank()), nil
	}
	p := &outerProductTensor{LHS: lhs, RHS: rhs, LHSIdx: append([]int(nil), lhsIdx...), RHSIdx: append([]int(nil), rhsIdx...)}
	p.dim = lhs.Dim()
	p.rank = lhs.Rank() + rhs.Rank()
	h := hashkey.Tag(tagTensorOuterProduct)
	h = hashkey.MixOrdered(h, lhs.Hash(), rhs.Hash())
	p.h = h
	return p, nil
}

func (k TensorKind) isIdentityOrDeltaLike() bool {
	return k == TkIdentity || k == TkKroneckerDelta
}

// ---- N-ary ----

type tensorAddTerm struct {
	Coeff Scalar
	Term  Tensor
}

type addTensor struct {
	tensorBase
	Terms map[hashkey.Hash]tensorAddTerm
}

func (a *addTensor) TensorKind() TensorKind { return TkAdd }
func (a *addTensor) Children() []Tensor {
	out := make([]Tensor, 0, len(a.Terms))
	for _, key := range a.sortedKeys() {
		out = append(out, scaledTensorTerm(a.Terms[key].Coeff, a.Terms[key].Term))
	}
	return out
}
func (a *addTensor) sortedKeys() []hashkey.Hash {
	keys := make([]hashkey.Hash, 0, len(a.Terms))
	for k := range a.Terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
func (a *addTensor) String() string {
	parts := make([]string, 0, len(a.Terms))
	for _, c := range a.Children() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "+")
}

func scaledTensorTerm(coeff Scalar, term Tensor) Tensor {
	if isOneScalar(coeff) {
		return term
	}
	return TensorScalarMul(coeff, term)
}

// TensorAdd builds the canonical sum of same-shape tensor terms
// (§4.5.6). Fails with ShapeMismatch if dim/rank differ.
func TensorAdd(terms ...Tensor) Tensor {
	var dim, rank int
	haveShape := false
	acc := map[hashkey.Hash]tensorAddTerm{}
	order := []hashkey.Hash{}
	var addOne func(coeff Scalar, t Tensor)
	addOne = func(coeff Scalar, t Tensor) {
		if isTensorZero(t) {
			return
		}
		if !haveShape {
			dim, rank = t.Dim(), t.Rank()
			haveShape = true
		} else if t.Dim() != dim || t.Rank() != rank {
			panic(caserr.New(caserr.ShapeMismatch, "Add", "tensor shapes differ: (%d,%d) vs (%d,%d)", dim, rank, t.Dim(), t.Rank()))
		}
		switch v := t.(type) {
		case *addTensor:
			for _, key := range v.sortedKeys() {
				e := v.Terms[key]
				addOne(ScalarMul(coeff, e.Coeff), e.Term)
			}
		case *scalarMulTensor:
			addOne(ScalarMul(coeff, v.S), v.T)
		case *negTensor:
			addOne(ScalarNeg(coeff), v.X)
		default:
			key := t.Hash()
			if e, ok := acc[key]; ok {
				newCoeff := ScalarAdd(e.Coeff, coeff)
				if isZeroScalar(newCoeff) {
					delete(acc, key)
				} else {
					acc[key] = tensorAddTerm{Coeff: newCoeff, Term: t}
				}
				return
			}
			if isZeroScalar(coeff) {
				return
			}
			acc[key] = tensorAddTerm{Coeff: coeff, Term: t}
			order = append(order, key)
		}
	}
	for _, t := range terms {
		requireTensor(t, "Add")
		addOne(ScalarOne(), t)
	}
	if len(acc) == 0 {
		if !haveShape {
			panic(caserr.New(caserr.InvalidExpression, "Add", "no terms"))
		}
		return TensorZero(dim, rank)
	}
	if len(acc) == 1 {
		for _, e := range acc {
			return scaledTensorTerm(e.Coeff, e.Term)
		}
	}
	a := &addTensor{Terms: acc}
	a.dim, a.rank = dim, rank
	hs := make([]hashkey.Hash, 0, len(acc))
	var spaces []assume.Space
	for k, e := range acc {
		a.Terms[k] = e
		hs = append(hs, hashkey.MixOrdered(e.Coeff.Hash(), e.Term.Hash()))
		sp, _ := spaceOf(e.Term)
		spaces = append(spaces, sp)
	}
	a.h = hashkey.MixUnordered(hashkey.Tag(tagTensorAdd), hs...)
	joined := assume.AnySpace
	for i, sp := range spaces {
		if i == 0 {
			joined = sp
		} else {
			joined = assume.Join(joined, sp)
		}
	}
	a.space.MergeInferred(joined)
	return a
}

// TensorSub returns lhs - rhs.
func TensorSub(lhs, rhs Tensor) Tensor { return TensorAdd(lhs, TensorNeg(rhs)) }

// mulTensor is a chain of rank-2 contractions ("matrix product" in the
// continuum-mechanics sense): each adjacent pair contracts factor i's
// trailing index against factor i+1's leading index. The spec leaves
// tensor Mul's exact contraction pattern unstated (§3.2 lists only
// "Mul{factors}"); this is an explicit Open Question resolution,
// recorded in DESIGN.md, matching the original's matrix-chain usage.
type mulTensor struct {
	tensorBase
	Factors []Tensor
}

func (m *mulTensor) TensorKind() TensorKind { return TkMul }
func (m *mulTensor) Children() []Tensor     { return m.Factors }
func (m *mulTensor) String() string {
	parts := make([]string, len(m.Factors))
	for i, f := range m.Factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, "*")
}

// TensorMul builds the canonical rank-2 matrix-chain product, flattening
// nested Mul, dropping IdentityTensor(dim,2) factors, and annihilating
// to Zero if any factor is Zero.
func TensorMul(factors ...Tensor) (Tensor, error) {
	flat := make([]Tensor, 0, len(factors))
	var flatten func(Tensor) error
	flatten = func(t Tensor) error {
		requireTensor(t, "Mul")
		if t.Rank() != 2 {
			return caserr.New(caserr.ShapeMismatch, "Mul", "matrix-chain factor must be rank 2, got %d", t.Rank())
		}
		if m, ok := t.(*mulTensor); ok {
			for _, f := range m.Factors {
				if err := flatten(f); err != nil {
					return err
				}
			}
			return nil
		}
		if _, ok := t.(*identityTensor); ok {
			return nil
		}
		flat = append(flat, t)
		return nil
	}
	var dim int
	haveDim := false
	for _, f := range factors {
		if f == nil {
			panicInvalid("Mul")
		}
		if isTensorZero(f) {
			return TensorZero(f.Dim(), 2), nil
		}
		if !haveDim {
			dim, haveDim = f.Dim(), true
		} else if f.Dim() != dim {
			return nil, caserr.New(caserr.ShapeMismatch, "Mul", "dim mismatch in matrix chain")
		}
		if err := flatten(f); err != nil {
			return nil, err
		}
	}
	if len(flat) == 0 {
		return MustTensorIdentity(dim, 2), nil
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	m := &mulTensor{Factors: flat}
	m.dim, m.rank = dim, 2
	h := hashkey.Tag(tagTensorMul)
	for _, f := range flat {
		h = hashkey.MixOrdered(h, f.Hash())
	}
	m.h = h
	return m, nil
}

type simpleOuterProductTensor struct {
	tensorBase
	Factors map[hashkey.Hash]Tensor
}

func (s *simpleOuterProductTensor) TensorKind() TensorKind { return TkSimpleOuterProduct }
func (s *simpleOuterProductTensor) Children() []Tensor {
	out := make([]Tensor, 0, len(s.Factors))
	for _, k := range s.sortedKeys() {
		out = append(out, s.Factors[k])
	}
	return out
}
func (s *simpleOuterProductTensor) sortedKeys() []hashkey.Hash {
	keys := make([]hashkey.Hash, 0, len(s.Factors))
	for k := range s.Factors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
func (s *simpleOuterProductTensor) String() string {
	parts := make([]string, 0, len(s.Factors))
	for _, c := range s.Children() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "(x)")
}

// TensorSimpleOuterProduct builds the n-ary, contraction-free tensor
// product of same-dim factors; rank is additive, order-insensitive
// (§3.2's n-ary heading groups it with Add/Mul's hash-keyed containers).
func TensorSimpleOuterProduct(factors ...Tensor) (Tensor, error) {
	flat := make([]Tensor, 0, len(factors))
	var dim int
	haveDim := false
	var flatten func(Tensor)
	flatten = func(t Tensor) {
		if s, ok := t.(*simpleOuterProductTensor); ok {
			for _, k := range s.sortedKeys() {
				flatten(s.Factors[k])
			}
			return
		}
		flat = append(flat, t)
	}
	for _, f := range factors {
		requireTensor(f, "SimpleOuterProduct")
		if !haveDim {
			dim, haveDim = f.Dim(), true
		} else if f.Dim() != dim {
			return nil, caserr.New(caserr.ShapeMismatch, "SimpleOuterProduct", "dim mismatch")
		}
		if isTensorZero(f) {
			totalRank := 0
			for _, g := range factors {
				totalRank += g.Rank()
			}
			return TensorZero(dim, totalRank), nil
		}
		flatten(f)
	}
	m := map[hashkey.Hash]Tensor{}
	for _, f := range flat {
		m[f.Hash()] = f
	}
	if len(flat) == 1 {
		return flat[0], nil
	}
	s := &simpleOuterProductTensor{Factors: m}
	totalRank := 0
	hs := make([]hashkey.Hash, 0, len(flat))
	for _, f := range flat {
		totalRank += f.Rank()
		hs = append(hs, f.Hash())
	}
	s.dim, s.rank = dim, totalRank
	s.h = hashkey.MixUnordered(hashkey.Tag(tagTensorSimpleOuterProduct), hs...)
	return s, nil
}

// TensorEqual reports structural equality.
func TensorEqual(a, b Tensor) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Hash() != b.Hash() || a.TensorKind() != b.TensorKind() || a.Dim() != b.Dim() || a.Rank() != b.Rank() {
		return false
	}
	switch av := a.(type) {
	case *symbolTensor:
		return av.Name == b.(*symbolTensor).Name
	case *zeroTensor, *deltaTensor, *identityTensor:
		return true
	case *projectorTensor:
		bv := b.(*projectorTensor)
		return av.Space == bv.Space && av.ActsOn == bv.ActsOn
	case *negTensor:
		return TensorEqual(av.X, b.(*negTensor).X)
	case *invTensor:
		return TensorEqual(av.X, b.(*invTensor).X)
	case *powTensor:
		bv := b.(*powTensor)
		return TensorEqual(av.Base, bv.Base) && ScalarEqual(av.Exp, bv.Exp)
	case *basisChangeTensor:
		bv := b.(*basisChangeTensor)
		return TensorEqual(av.X, bv.X) && tensorspace.Equal(av.Perm, bv.Perm)
	case *symmetryTensor:
		bv := b.(*symmetryTensor)
		return TensorEqual(av.X, bv.X) && len(av.Perms) == len(bv.Perms)
	case *scalarMulTensor:
		bv := b.(*scalarMulTensor)
		return ScalarEqual(av.S, bv.S) && TensorEqual(av.T, bv.T)
	case *innerProductTensor:
		bv := b.(*innerProductTensor)
		return TensorEqual(av.LHS, bv.LHS) && TensorEqual(av.RHS, bv.RHS) && intsEqual(av.LHSIdx, bv.LHSIdx) && intsEqual(av.RHSIdx, bv.RHSIdx)
	case *outerProductTensor:
		bv := b.(*outerProductTensor)
		return TensorEqual(av.LHS, bv.LHS) && TensorEqual(av.RHS, bv.RHS)
	case *addTensor:
		bv := b.(*addTensor)
		if len(av.Terms) != len(bv.Terms) {
			return false
		}
		for k, e := range av.Terms {
			oe, ok := bv.Terms[k]
			if !ok || !ScalarEqual(e.Coeff, oe.Coeff) || !TensorEqual(e.Term, oe.Term) {
				return false
			}
		}
		return true
	case *mulTensor:
		bv := b.(*mulTensor)
		if len(av.Factors) != len(bv.Factors) {
			return false
		}
		for i := range av.Factors {
			if !TensorEqual(av.Factors[i], bv.Factors[i]) {
				return false
			}
		}
		return true
	case *simpleOuterProductTensor:
		bv := b.(*simpleOuterProductTensor)
		if len(av.Factors) != len(bv.Factors) {
			return false
		}
		for k, f := range av.Factors {
			of, ok := bv.Factors[k]
			if !ok || !TensorEqual(f, of) {
				return false
			}
		}
		return true
	}
	return false
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
