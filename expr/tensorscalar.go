package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/hashkey"
	"github.com/symtensor/tensorcas/number"
)

// T2SKind tags the variant of a TensorToScalar node (spec.md §3.2).
type T2SKind int

const (
	TsZero T2SKind = iota
	TsOne
	TsWrapped
	TsTrace
	TsDeterminant
	TsNorm
	TsDot
	TsLog
	TsNeg
	TsPow
	TsInnerProductToScalar
	TsWithScalarAdd
	TsWithScalarMul
	TsWithScalarDiv
	TsScalarWithDiv
	TsWithTensorMul
	TsWithTensorDiv
	TsAdd
	TsMul
)

func (k T2SKind) String() string {
	names := [...]string{
		"Zero", "One", "Wrapped", "Trace", "Determinant", "Norm", "Dot",
		"Log", "Neg", "Pow", "InnerProductToScalar", "WithScalarAdd",
		"WithScalarMul", "WithScalarDiv", "ScalarWithDiv", "WithTensorMul",
		"WithTensorDiv", "Add", "Mul",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UnknownT2SKind"
}

// T2S is the sealed interface implemented by every tensor-to-scalar
// expression node: a scalar value computed from tensor operands (e.g.
// Trace, Determinant, Norm) that stays distinguished from a plain
// Scalar until explicitly unwrapped (§3.2, §3.4).
type T2S interface {
	isT2S()
	T2SKind() T2SKind
	Hash() hashkey.Hash
	Children() []T2S
	String() string
}

type t2sBase struct{ h hashkey.Hash }

func (b *t2sBase) isT2S()          {}
func (b *t2sBase) Hash() hashkey.Hash { return b.h }

const (
	tagT2SZero uint32 = iota + 3000
	tagT2SOne
	tagT2SWrapped
	tagT2STrace
	tagT2SDeterminant
	tagT2SNorm
	tagT2SDot
	tagT2SLog
	tagT2SNeg
	tagT2SPow
	tagT2SInnerProductToScalar
	tagT2SWithScalarAdd
	tagT2SWithScalarMul
	tagT2SWithScalarDiv
	tagT2SScalarWithDiv
	tagT2SWithTensorMul
	tagT2SWithTensorDiv
	tagT2SAdd
	tagT2SMul
)

func requireT2S(x T2S, op string) {
	if x == nil {
		panicInvalid(op)
	}
}

func isT2SZero(x T2S) bool { _, ok := x.(*zeroT2S); return ok }
func isT2SOne(x T2S) bool  { _, ok := x.(*oneT2S); return ok }

// ---- Leaves ----

type zeroT2S struct{ t2sBase }

func (z *zeroT2S) T2SKind() T2SKind { return TsZero }
func (z *zeroT2S) Children() []T2S  { return nil }
func (z *zeroT2S) String() string   { return "0s" }

var t2sZeroSingleton = &zeroT2S{t2sBase: t2sBase{h: hashkey.Tag(tagT2SZero)}}

// T2SZero is the additive identity of the tensor-to-scalar domain.
func T2SZero() T2S { return t2sZeroSingleton }

type oneT2S struct{ t2sBase }

func (o *oneT2S) T2SKind() T2SKind { return TsOne }
func (o *oneT2S) Children() []T2S  { return nil }
func (o *oneT2S) String() string   { return "1s" }

var t2sOneSingleton = &oneT2S{t2sBase: t2sBase{h: hashkey.Tag(tagT2SOne)}}

// T2SOne is the multiplicative identity of the tensor-to-scalar domain.
func T2SOne() T2S { return t2sOneSingleton }

type wrappedT2S struct {
	t2sBase
	X Tensor
}

func (w *wrappedT2S) T2SKind() T2SKind { return TsWrapped }
func (w *wrappedT2S) Children() []T2S  { return nil }
func (w *wrappedT2S) String() string   { return w.X.String() }

// T2SWrap lifts a scalar-valued Tensor handle (rank 0) into the
// tensor-to-scalar domain, matching spec.md §3.2's "ScalarWrapper" leaf.
func T2SWrap(x Tensor) (T2S, error) {
	requireTensor(x, "T2SWrap")
	if x.Rank() != 0 {
		return nil, caserr.New(caserr.ShapeMismatch, "T2SWrap", "wrapped tensor must be rank 0, got %d", x.Rank())
	}
	if isTensorZero(x) {
		return T2SZero(), nil
	}
	w := &wrappedT2S{X: x}
	w.h = hashkey.MixOrdered(hashkey.Tag(tagT2SWrapped), x.Hash())
	return w, nil
}

// ---- Unary reductions ----

type traceT2S struct {
	t2sBase
	X Tensor
}

func (t *traceT2S) T2SKind() T2SKind { return TsTrace }
func (t *traceT2S) Children() []T2S  { return nil }
func (t *traceT2S) String() string   { return "tr(" + t.X.String() + ")" }

// T2STrace returns the trace of a rank-2 tensor. Trace(KroneckerDelta) =
// dim, Trace(Zero) = 0 (§4.5.8).
func T2STrace(x Tensor) (T2S, error) {
	requireTensor(x, "Trace")
	if x.Rank() != 2 {
		return nil, caserr.New(caserr.ShapeMismatch, "Trace", "trace requires rank 2, got %d", x.Rank())
	}
	if isTensorZero(x) {
		return T2SZero(), nil
	}
	if _, ok := x.(*deltaTensor); ok {
		return wrapScalarLeaf(ScalarConstant(mustIntNumber(int64(x.Dim())))), nil
	}
	if id, ok := x.(*identityTensor); ok && id.rank == 2 {
		return wrapScalarLeaf(ScalarConstant(mustIntNumber(int64(id.dim)))), nil
	}
	if sm, ok := x.(*scalarMulTensor); ok {
		inner, err := T2STrace(sm.T)
		if err != nil {
			return nil, err
		}
		return T2SWithScalarMul(sm.S, inner), nil
	}
	if a, ok := x.(*addTensor); ok {
		terms := make([]T2S, 0, len(a.Terms))
		for _, key := range a.sortedKeys() {
			e := a.Terms[key]
			tr, err := T2STrace(e.Term)
			if err != nil {
				return nil, err
			}
			terms = append(terms, T2SWithScalarMul(e.Coeff, tr))
		}
		return T2SAdd(terms...)
	}
	t := &traceT2S{X: x}
	t.h = hashkey.MixOrdered(hashkey.Tag(tagT2STrace), x.Hash())
	return t, nil
}

type determinantT2S struct {
	t2sBase
	X Tensor
}

func (d *determinantT2S) T2SKind() T2SKind { return TsDeterminant }
func (d *determinantT2S) Children() []T2S  { return nil }
func (d *determinantT2S) String() string   { return "det(" + d.X.String() + ")" }

// T2SDeterminant returns the determinant of a rank-2 tensor.
// Determinant(Identity) = 1, Determinant(Zero) = 0 for dim > 0.
func T2SDeterminant(x Tensor) (T2S, error) {
	requireTensor(x, "Determinant")
	if x.Rank() != 2 {
		return nil, caserr.New(caserr.ShapeMismatch, "Determinant", "determinant requires rank 2, got %d", x.Rank())
	}
	if isTensorZero(x) {
		if x.Dim() == 0 {
			return T2SOne(), nil
		}
		return T2SZero(), nil
	}
	if id, ok := x.(*identityTensor); ok && id.rank == 2 {
		return T2SOne(), nil
	}
	d := &determinantT2S{X: x}
	d.h = hashkey.MixOrdered(hashkey.Tag(tagT2SDeterminant), x.Hash())
	return d, nil
}

type normT2S struct {
	t2sBase
	X Tensor
}

func (n *normT2S) T2SKind() T2SKind { return TsNorm }
func (n *normT2S) Children() []T2S  { return nil }
func (n *normT2S) String() string   { return "norm(" + n.X.String() + ")" }

// T2SNorm returns the Euclidean norm of x. Norm(Zero) = 0.
func T2SNorm(x Tensor) T2S {
	requireTensor(x, "Norm")
	if isTensorZero(x) {
		return T2SZero()
	}
	n := &normT2S{X: x}
	n.h = hashkey.MixOrdered(hashkey.Tag(tagT2SNorm), x.Hash())
	return n
}

type dotT2S struct {
	t2sBase
	LHS, RHS Tensor
}

func (d *dotT2S) T2SKind() T2SKind { return TsDot }
func (d *dotT2S) Children() []T2S  { return nil }
func (d *dotT2S) String() string   { return "dot(" + d.LHS.String() + "," + d.RHS.String() + ")" }

// T2SDot returns the full contraction of two equal-rank, equal-dim
// tensors against each other (all indices paired in order).
func T2SDot(lhs, rhs Tensor) (T2S, error) {
	requireTensor(lhs, "Dot")
	requireTensor(rhs, "Dot")
	if err := requireSameDim("Dot", lhs, rhs); err != nil {
		return nil, err
	}
	if lhs.Rank() != rhs.Rank() {
		return nil, caserr.New(caserr.ShapeMismatch, "Dot", "rank mismatch: %d vs %d", lhs.Rank(), rhs.Rank())
	}
	if isTensorZero(lhs) || isTensorZero(rhs) {
		return T2SZero(), nil
	}
	d := &dotT2S{LHS: lhs, RHS: rhs}
	d.h = hashkey.MixOrdered(hashkey.Tag(tagT2SDot), lhs.Hash(), rhs.Hash())
	return d, nil
}

type logT2S struct {
	t2sBase
	X T2S
}

func (l *logT2S) T2SKind() T2SKind { return TsLog }
func (l *logT2S) Children() []T2S  { return []T2S{l.X} }
func (l *logT2S) String() string   { return "log(" + l.X.String() + ")" }

// T2SLog returns the natural logarithm of a tensor-to-scalar value
// (used by §4.7.2's d(logdet)/dX identity).
func T2SLog(x T2S) (T2S, error) {
	requireT2S(x, "Log")
	if isT2SOne(x) {
		return T2SZero(), nil
	}
	l := &logT2S{X: x}
	l.h = hashkey.MixOrdered(hashkey.Tag(tagT2SLog), x.Hash())
	return l, nil
}

type negT2S struct {
	t2sBase
	X T2S
}

func (n *negT2S) T2SKind() T2SKind { return TsNeg }
func (n *negT2S) Children() []T2S  { return []T2S{n.X} }
func (n *negT2S) String() string   { return "-" + n.X.String() }

// T2SNeg returns -x.
func T2SNeg(x T2S) T2S {
	requireT2S(x, "Neg")
	if isT2SZero(x) {
		return x
	}
	if n, ok := x.(*negT2S); ok {
		return n.X
	}
	n := &negT2S{X: x}
	n.h = hashkey.MixOrdered(hashkey.Tag(tagT2SNeg), x.Hash())
	return n
}

type powT2S struct {
	t2sBase
	Base T2S
	Exp  Scalar
}

func (p *powT2S) T2SKind() T2SKind { return TsPow }
func (p *powT2S) Children() []T2S  { return []T2S{p.Base} }
func (p *powT2S) String() string   { return fmt.Sprintf("%s^%s", p.Base.String(), p.Exp.String()) }

// T2SPow returns base**exp.
func T2SPow(base T2S, exp Scalar) T2S {
	requireT2S(base, "Pow")
	requireScalar(exp, "Pow")
	if isZeroScalar(exp) || isT2SOne(base) {
		return T2SOne()
	}
	if isOneScalar(exp) {
		return base
	}
	p := &powT2S{Base: base, Exp: exp}
	p.h = hashkey.MixOrdered(hashkey.Tag(tagT2SPow), base.Hash(), exp.Hash())
	return p
}

type innerProductToScalarT2S struct {
	t2sBase
	LHS, RHS       Tensor
	LHSIdx, RHSIdx []int
}

func (p *innerProductToScalarT2S) T2SKind() T2SKind { return TsInnerProductToScalar }
func (p *innerProductToScalarT2S) Children() []T2S  { return nil }
func (p *innerProductToScalarT2S) String() string {
	return fmt.Sprintf("(%s).%v.(%s).%v", p.LHS.String(), p.LHSIdx, p.RHS.String(), p.RHSIdx)
}

// T2SInnerProduct contracts lhs and rhs down to a scalar: the
// contraction index sets must cover every index of both operands.
func T2SInnerProduct(lhs Tensor, lhsIdx []int, rhs Tensor, rhsIdx []int) (T2S, error) {
	requireTensor(lhs, "InnerProductToScalar")
	requireTensor(rhs, "InnerProductToScalar")
	if len(lhsIdx) != lhs.Rank() || len(rhsIdx) != rhs.Rank() {
		return nil, caserr.New(caserr.ShapeMismatch, "InnerProductToScalar", "contraction must consume every index to yield a scalar")
	}
	if err := requireSameDim("InnerProductToScalar", lhs, rhs); err != nil {
		return nil, err
	}
	if isTensorZero(lhs) || isTensorZero(rhs) {
		return T2SZero(), nil
	}
	p := &innerProductToScalarT2S{LHS: lhs, RHS: rhs, LHSIdx: append([]int(nil), lhsIdx...), RHSIdx: append([]int(nil), rhsIdx...)}
	p.h = hashkey.MixOrdered(hashkey.Tag(tagT2SInnerProductToScalar), lhs.Hash(), rhs.Hash())
	return p, nil
}

// ---- Cross-domain binary ----

type withScalarAddT2S struct {
	t2sBase
	S Scalar
	T T2S
}

func (w *withScalarAddT2S) T2SKind() T2SKind { return TsWithScalarAdd }
func (w *withScalarAddT2S) Children() []T2S  { return []T2S{w.T} }
func (w *withScalarAddT2S) String() string   { return w.S.String() + "+" + w.T.String() }

// T2SWithScalarAdd adds a plain Scalar to a T2S value, producing a T2S.
func T2SWithScalarAdd(s Scalar, t T2S) T2S {
	requireScalar(s, "WithScalarAdd")
	requireT2S(t, "WithScalarAdd")
	if isZeroScalar(s) {
		return t
	}
	if isT2SZero(t) {
		return wrapScalarLeaf(s)
	}
	w := &withScalarAddT2S{S: s, T: t}
	w.h = hashkey.MixUnordered(hashkey.Tag(tagT2SWithScalarAdd), s.Hash(), t.Hash())
	return w
}

type withScalarMulT2S struct {
	t2sBase
	S Scalar
	T T2S
}

func (w *withScalarMulT2S) T2SKind() T2SKind { return TsWithScalarMul }
func (w *withScalarMulT2S) Children() []T2S  { return []T2S{w.T} }
func (w *withScalarMulT2S) String() string   { return w.S.String() + "*" + w.T.String() }

// T2SWithScalarMul multiplies a T2S value by a plain Scalar (§4.5.8:
// WithScalarMul(1,t)=t, WithScalarMul(0,t)=Zero).
func T2SWithScalarMul(s Scalar, t T2S) T2S {
	requireScalar(s, "WithScalarMul")
	requireT2S(t, "WithScalarMul")
	if isOneScalar(s) {
		return t
	}
	if isZeroScalar(s) || isT2SZero(t) {
		return T2SZero()
	}
	if isT2SOne(t) {
		return wrapScalarLeaf(s)
	}
	if wm, ok := t.(*withScalarMulT2S); ok {
		return T2SWithScalarMul(ScalarMul(s, wm.S), wm.T)
	}
	w := &withScalarMulT2S{S: s, T: t}
	w.h = hashkey.MixOrdered(hashkey.Tag(tagT2SWithScalarMul), s.Hash(), t.Hash())
	return w
}

type withScalarDivT2S struct {
	t2sBase
	T T2S
	S Scalar
}

func (w *withScalarDivT2S) T2SKind() T2SKind { return TsWithScalarDiv }
func (w *withScalarDivT2S) Children() []T2S  { return []T2S{w.T} }
func (w *withScalarDivT2S) String() string   { return w.T.String() + "/" + w.S.String() }

// T2SWithScalarDiv divides a T2S value by a plain Scalar.
func T2SWithScalarDiv(t T2S, s Scalar) (T2S, error) {
	requireT2S(t, "WithScalarDiv")
	requireScalar(s, "WithScalarDiv")
	if isZeroScalar(s) {
		return nil, caserr.New(caserr.DivisionByZero, "WithScalarDiv", "division by symbolic zero")
	}
	inv := ScalarPow(s, ScalarNeg(ScalarOne()))
	return T2SWithScalarMul(inv, t), nil
}

type scalarWithDivT2S struct {
	t2sBase
	S Scalar
	T T2S
}

func (w *scalarWithDivT2S) T2SKind() T2SKind { return TsScalarWithDiv }
func (w *scalarWithDivT2S) Children() []T2S  { return []T2S{w.T} }
func (w *scalarWithDivT2S) String() string   { return w.S.String() + "/" + w.T.String() }

// T2SScalarWithDiv divides a plain Scalar by a T2S value.
func T2SScalarWithDiv(s Scalar, t T2S) (T2S, error) {
	requireScalar(s, "ScalarWithDiv")
	requireT2S(t, "ScalarWithDiv")
	if isT2SZero(t) {
		return nil, caserr.New(caserr.DivisionByZero, "ScalarWithDiv", "division by symbolic zero")
	}
	if isZeroScalar(s) {
		return T2SZero(), nil
	}
	w := &scalarWithDivT2S{S: s, T: t}
	w.h = hashkey.MixOrdered(hashkey.Tag(tagT2SScalarWithDiv), s.Hash(), t.Hash())
	return w, nil
}

type withTensorMulT2S struct {
	t2sBase
	T1, T2 Tensor
}

func (w *withTensorMulT2S) T2SKind() T2SKind { return TsWithTensorMul }
func (w *withTensorMulT2S) Children() []T2S  { return nil }
func (w *withTensorMulT2S) String() string   { return w.T1.String() + "*t*" + w.T2.String() }

// T2SWithTensorMul represents a T2S value derived from a full
// contraction of two tensors into a scalar without fixing an index
// pattern up front.
func T2SWithTensorMul(t1, t2 Tensor) (T2S, error) {
	requireTensor(t1, "WithTensorMul")
	requireTensor(t2, "WithTensorMul")
	if err := requireSameDim("WithTensorMul", t1, t2); err != nil {
		return nil, err
	}
	if isTensorZero(t1) || isTensorZero(t2) {
		return T2SZero(), nil
	}
	w := &withTensorMulT2S{T1: t1, T2: t2}
	w.h = hashkey.MixUnordered(hashkey.Tag(tagT2SWithTensorMul), t1.Hash(), t2.Hash())
	return w, nil
}

type withTensorDivT2S struct {
	t2sBase
	T1, T2 Tensor
}

func (w *withTensorDivT2S) T2SKind() T2SKind { return TsWithTensorDiv }
func (w *withTensorDivT2S) Children() []T2S  { return nil }
func (w *withTensorDivT2S) String() string   { return w.T1.String() + "/t/" + w.T2.String() }

// T2SWithTensorDiv is the dual of T2SWithTensorMul for division.
func T2SWithTensorDiv(t1, t2 Tensor) (T2S, error) {
	requireTensor(t1, "WithTensorDiv")
	requireTensor(t2, "WithTensorDiv")
	if err := requireSameDim("WithTensorDiv", t1, t2); err != nil {
		return nil, err
	}
	if isTensorZero(t2) {
		return nil, caserr.New(caserr.DivisionByZero, "WithTensorDiv", "division by symbolic zero tensor")
	}
	if isTensorZero(t1) {
		return T2SZero(), nil
	}
	w := &withTensorDivT2S{T1: t1, T2: t2}
	w.h = hashkey.MixOrdered(hashkey.Tag(tagT2SWithTensorDiv), t1.Hash(), t2.Hash())
	return w, nil
}

// ---- N-ary ----

type t2sAddTerm struct {
	Coeff Scalar
	Term  T2S
}

type addT2S struct {
	t2sBase
	Terms map[hashkey.Hash]t2sAddTerm
}

func (a *addT2S) T2SKind() T2SKind { return TsAdd }
func (a *addT2S) Children() []T2S {
	out := make([]T2S, 0, len(a.Terms))
	for _, k := range a.sortedKeys() {
		out = append(out, scaledT2STerm(a.Terms[k].Coeff, a.Terms[k].Term))
	}
	return out
}
func (a *addT2S) sortedKeys() []hashkey.Hash {
	keys := make([]hashkey.Hash, 0, len(a.Terms))
	for k := range a.Terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
func (a *addT2S) String() string {
	parts := make([]string, 0, len(a.Terms))
	for _, c := range a.Children() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "+")
}

func scaledT2STerm(coeff Scalar, term T2S) T2S {
	if isOneScalar(coeff) {
		return term
	}
	return T2SWithScalarMul(coeff, term)
}

// T2SAdd builds the canonical sum of tensor-to-scalar terms.
func T2SAdd(terms ...T2S) (T2S, error) {
	acc := map[hashkey.Hash]t2sAddTerm{}
	var addOne func(coeff Scalar, t T2S)
	addOne = func(coeff Scalar, t T2S) {
		if isT2SZero(t) {
			return
		}
		switch v := t.(type) {
		case *addT2S:
			for _, key := range v.sortedKeys() {
				e := v.Terms[key]
				addOne(ScalarMul(coeff, e.Coeff), e.Term)
			}
		case *withScalarMulT2S:
			addOne(ScalarMul(coeff, v.S), v.T)
		case *negT2S:
			addOne(ScalarNeg(coeff), v.X)
		case *oneT2S:
			key := t.Hash()
			bump(acc, key, coeff, t)
		default:
			key := t.Hash()
			bump(acc, key, coeff, t)
		}
	}
	for _, t := range terms {
		requireT2S(t, "Add")
		addOne(ScalarOne(), t)
	}
	if len(acc) == 0 {
		return T2SZero(), nil
	}
	if len(acc) == 1 {
		for _, e := range acc {
			return scaledT2STerm(e.Coeff, e.Term), nil
		}
	}
	a := &addT2S{Terms: acc}
	hs := make([]hashkey.Hash, 0, len(acc))
	for _, e := range acc {
		hs = append(hs, hashkey.MixOrdered(e.Coeff.Hash(), e.Term.Hash()))
	}
	a.h = hashkey.MixUnordered(hashkey.Tag(tagT2SAdd), hs...)
	return a, nil
}

func bump(acc map[hashkey.Hash]t2sAddTerm, key hashkey.Hash, coeff Scalar, t T2S) {
	if e, ok := acc[key]; ok {
		newCoeff := ScalarAdd(e.Coeff, coeff)
		if isZeroScalar(newCoeff) {
			delete(acc, key)
		} else {
			acc[key] = t2sAddTerm{Coeff: newCoeff, Term: t}
		}
		return
	}
	if isZeroScalar(coeff) {
		return
	}
	acc[key] = t2sAddTerm{Coeff: coeff, Term: t}
}

// T2SSub returns lhs - rhs.
func T2SSub(lhs, rhs T2S) (T2S, error) { return T2SAdd(lhs, T2SNeg(rhs)) }

type mulFactorT2S struct {
	Base T2S
	Exp  Scalar
}

type mulT2S struct {
	t2sBase
	Coeff   Scalar
	Factors map[hashkey.Hash]mulFactorT2S
}

func (m *mulT2S) T2SKind() T2SKind { return TsMul }
func (m *mulT2S) Children() []T2S {
	out := make([]T2S, 0, len(m.Factors)+1)
	for _, k := range m.sortedKeys() {
		f := m.Factors[k]
		if isOneScalar(f.Exp) {
			out = append(out, f.Base)
		} else {
			out = append(out, T2SPow(f.Base, f.Exp))
		}
	}
	return out
}
func (m *mulT2S) sortedKeys() []hashkey.Hash {
	keys := make([]hashkey.Hash, 0, len(m.Factors))
	for k := range m.Factors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
func (m *mulT2S) String() string {
	parts := make([]string, 0, len(m.Factors)+1)
	if !isOneScalar(m.Coeff) {
		parts = append(parts, m.Coeff.String())
	}
	for _, c := range m.Children() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "*")
}

// T2SMul builds the canonical product of tensor-to-scalar factors,
// folding exponents of repeated bases the same way ScalarMul does.
func T2SMul(factors ...T2S) (T2S, error) {
	coeff := ScalarOne()
	facs := map[hashkey.Hash]mulFactorT2S{}
	order := []hashkey.Hash{}
	annihilated := false
	var mulIn func(t T2S) bool
	mulIn = func(t T2S) bool {
		switch v := t.(type) {
		case *oneT2S:
			return true
		case *zeroT2S:
			return false
		case *withScalarMulT2S:
			coeff = ScalarMul(coeff, v.S)
			return mulIn(v.T)
		case *mulT2S:
			coeff = ScalarMul(coeff, v.Coeff)
			for _, key := range v.sortedKeys() {
				f := v.Factors[key]
				if !bumpT2SExp(facs, &order, key, f.Base, f.Exp) {
					return false
				}
			}
			return true
		case *powT2S:
			if !bumpT2SExp(facs, &order, v.Base.Hash(), v.Base, v.Exp) {
				return false
			}
			return true
		default:
			if !bumpT2SExp(facs, &order, t.Hash(), t, ScalarOne()) {
				return false
			}
			return true
		}
	}
	for _, t := range factors {
		requireT2S(t, "Mul")
		if !mulIn(t) {
			annihilated = true
			break
		}
	}
	if annihilated || isZeroScalar(coeff) {
		return T2SZero(), nil
	}
	if len(facs) == 0 {
		return wrapScalarLeaf(coeff), nil
	}
	if len(facs) == 1 && isOneScalar(coeff) {
		for _, f := range facs {
			if isOneScalar(f.Exp) {
				return f.Base, nil
			}
		}
	}
	m := &mulT2S{Coeff: coeff, Factors: facs}
	h := hashkey.Tag(tagT2SMul)
	h = hashkey.MixOrdered(h, coeff.Hash())
	hs := make([]hashkey.Hash, 0, len(facs))
	for _, key := range order {
		f := facs[key]
		hs = append(hs, hashkey.MixOrdered(f.Base.Hash(), f.Exp.Hash()))
	}
	m.h = hashkey.MixUnordered(h, hs...)
	return m, nil
}

func bumpT2SExp(facs map[hashkey.Hash]mulFactorT2S, order *[]hashkey.Hash, key hashkey.Hash, base T2S, exp Scalar) bool {
	if e, ok := facs[key]; ok {
		newExp := ScalarAdd(e.Exp, exp)
		if isZeroScalar(newExp) {
			delete(facs, key)
			return true
		}
		facs[key] = mulFactorT2S{Base: base, Exp: newExp}
		return true
	}
	facs[key] = mulFactorT2S{Base: base, Exp: exp}
	*order = append(*order, key)
	return true
}

func wrapScalarLeaf(s Scalar) T2S {
	w, err := T2SWrap(rawScalarAsRankZeroTensor(s))
	if err != nil {
		panic(err)
	}
	return w
}

// rawScalarAsRankZeroTensor lifts a Scalar into a degenerate rank-0
// Tensor handle purely so wrapScalarLeaf can reuse the T2SWrap
// constructor; rank-0 tensors carry no index structure so this is a
// lossless round trip in both directions (see T2SToScalar).
type scalarLeafTensor struct {
	tensorBase
	S Scalar
}

func (s *scalarLeafTensor) TensorKind() TensorKind { return TkSymbol }
func (s *scalarLeafTensor) Children() []Tensor     { return nil }
func (s *scalarLeafTensor) String() string         { return s.S.String() }

func rawScalarAsRankZeroTensor(s Scalar) Tensor {
	t := &scalarLeafTensor{S: s}
	t.dim, t.rank = 0, 0
	t.h = hashkey.MixOrdered(hashkey.Tag(tagTensorSymbol+500), s.Hash())
	return t
}

// T2SToScalar unwraps a tensor-to-scalar value into a plain Scalar,
// the explicit domain-crossing operation spec.md §3.4 requires (no
// implicit coercion between T2S and Scalar).
func T2SToScalar(t T2S) Scalar {
	switch v := t.(type) {
	case *zeroT2S:
		return ScalarZero()
	case *oneT2S:
		return ScalarOne()
	case *wrappedT2S:
		if sl, ok := v.X.(*scalarLeafTensor); ok {
			return sl.S
		}
		return ScalarNamed("wrapped", ScalarSymbol(v.X.String()))
	case *negT2S:
		return ScalarNeg(T2SToScalar(v.X))
	case *withScalarAddT2S:
		return ScalarAdd(v.S, T2SToScalar(v.T))
	case *withScalarMulT2S:
		return ScalarMul(v.S, T2SToScalar(v.T))
	case *withScalarDivT2S:
		s, err := ScalarDiv(T2SToScalar(v.T), v.S)
		if err != nil {
			panic(err)
		}
		return s
	case *scalarWithDivT2S:
		s, err := ScalarDiv(v.S, T2SToScalar(v.T))
		if err != nil {
			panic(err)
		}
		return s
	case *powT2S:
		return ScalarPow(T2SToScalar(v.Base), v.Exp)
	case *logT2S:
		return ScalarLog(T2SToScalar(v.X))
	case *addT2S:
		terms := make([]Scalar, 0, len(v.Terms))
		for _, k := range v.sortedKeys() {
			e := v.Terms[k]
			terms = append(terms, ScalarMul(e.Coeff, T2SToScalar(e.Term)))
		}
		return ScalarAdd(terms...)
	case *mulT2S:
		factors := []Scalar{v.Coeff}
		for _, k := range v.sortedKeys() {
			f := v.Factors[k]
			factors = append(factors, ScalarPow(T2SToScalar(f.Base), f.Exp))
		}
		return ScalarMul(factors...)
	default:
		return ScalarNamed(v.String(), ScalarSymbol(v.String()))
	}
}

// T2SEqual reports structural equality.
func T2SEqual(a, b T2S) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Hash() != b.Hash() || a.T2SKind() != b.T2SKind() {
		return false
	}
	switch av := a.(type) {
	case *zeroT2S, *oneT2S:
		return true
	case *wrappedT2S:
		return TensorEqual(av.X, b.(*wrappedT2S).X)
	case *traceT2S:
		return TensorEqual(av.X, b.(*traceT2S).X)
	case *determinantT2S:
		return TensorEqual(av.X, b.(*determinantT2S).X)
	case *normT2S:
		return TensorEqual(av.X, b.(*normT2S).X)
	case *dotT2S:
		bv := b.(*dotT2S)
		return TensorEqual(av.LHS, bv.LHS) && TensorEqual(av.RHS, bv.RHS)
	case *logT2S:
		return T2SEqual(av.X, b.(*logT2S).X)
	case *negT2S:
		return T2SEqual(av.X, b.(*negT2S).X)
	case *powT2S:
		bv := b.(*powT2S)
		return T2SEqual(av.Base, bv.Base) && ScalarEqual(av.Exp, bv.Exp)
	case *withScalarAddT2S:
		bv := b.(*withScalarAddT2S)
		return ScalarEqual(av.S, bv.S) && T2SEqual(av.T, bv.T)
	case *withScalarMulT2S:
		bv := b.(*withScalarMulT2S)
		return ScalarEqual(av.S, bv.S) && T2SEqual(av.T, bv.T)
	case *addT2S:
		bv := b.(*addT2S)
		if len(av.Terms) != len(bv.Terms) {
			return false
		}
		for k, e := range av.Terms {
			oe, ok := bv.Terms[k]
			if !ok || !ScalarEqual(e.Coeff, oe.Coeff) || !T2SEqual(e.Term, oe.Term) {
				return false
			}
		}
		return true
	case *mulT2S:
		bv := b.(*mulT2S)
		if !ScalarEqual(av.Coeff, bv.Coeff) || len(av.Factors) != len(bv.Factors) {
			return false
		}
		for k, f := range av.Factors {
			of, ok := bv.Factors[k]
			if !ok || !T2SEqual(f.Base, of.Base) || !ScalarEqual(f.Exp, of.Exp) {
				return false
			}
		}
		return true
	}
	return false
}

func mustIntNumber(v int64) number.Number { return number.FromInt64(v) }
