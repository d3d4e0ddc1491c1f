package expr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/hashkey"
	"github.com/symtensor/tensorcas/number"
)

// ScalarKind tags the variant of a Scalar node (spec.md §3.2).
type ScalarKind int

const (
	SkSymbol ScalarKind = iota
	SkZero
	SkOne
	SkConstant
	SkNamed
	SkNeg
	SkSin
	SkCos
	SkTan
	SkASin
	SkACos
	SkATan
	SkExp
	SkLog
	SkSqrt
	SkSign
	SkAbs
	SkPow
	SkAdd
	SkMul
)

func (k ScalarKind) String() string {
	names := [...]string{
		"Symbol", "Zero", "One", "Constant", "Named", "Neg", "Sin", "Cos",
		"Tan", "ASin", "ACos", "ATan", "Exp", "Log", "Sqrt", "Sign", "Abs",
		"Pow", "Add", "Mul",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "UnknownScalarKind"
}

// Scalar is the sealed interface implemented by every scalar expression
// node. Only factories in this package can produce one.
type Scalar interface {
	isScalar()
	ScalarKind() ScalarKind
	Hash() hashkey.Hash
	Children() []Scalar
	String() string
}

type scalarBase struct {
	h     hashkey.Hash
	assum assume.NumericSet
}

func (b *scalarBase) isScalar()             {}
func (b *scalarBase) Hash() hashkey.Hash    { return b.h }
func (b *scalarBase) assumptions() *assume.NumericSet { return &b.assum }

// tagScalarSymbol etc. are the per-variant hash tag constants.
const (
	tagScalarSymbol uint32 = iota + 1000
	tagScalarZero
	tagScalarOne
	tagScalarConstant
	tagScalarNamed
	tagScalarNeg
	tagScalarSin
	tagScalarCos
	tagScalarTan
	tagScalarASin
	tagScalarACos
	tagScalarATan
	tagScalarExp
	tagScalarLog
	tagScalarSqrt
	tagScalarSign
	tagScalarAbs
	tagScalarPow
	tagScalarAdd
	tagScalarMul
)

// ---- Leaves ----

type symbolScalar struct {
	scalarBase
	Name string
}

func (s *symbolScalar) ScalarKind() ScalarKind { return SkSymbol }
func (s *symbolScalar) Children() []Scalar     { return nil }
func (s *symbolScalar) String() string         { return s.Name }

// ScalarSymbol returns the symbol named name. Distinct *symbolScalar
// values with the same name are distinct handles that compare equal
// (handles need not be aliased, spec.md §3.4) but do NOT share an
// assumption set — assume on one handle does not affect another. Use
// the same returned Scalar value to accumulate assumptions on one
// symbol.
func ScalarSymbol(name string) Scalar {
	s := &symbolScalar{Name: name}
	s.h = hashkey.String(hashkey.Tag(tagScalarSymbol), name)
	return s
}

type zeroScalar struct{ scalarBase }

func (z *zeroScalar) ScalarKind() ScalarKind { return SkZero }
func (z *zeroScalar) Children() []Scalar     { return nil }
func (z *zeroScalar) String() string         { return "0" }

var scalarZeroSingleton = func() Scalar {
	z := &zeroScalar{}
	z.h = hashkey.Tag(tagScalarZero)
	return z
}()

// ScalarZero returns the scalar additive identity.
func ScalarZero() Scalar { return scalarZeroSingleton }

type oneScalar struct{ scalarBase }

func (o *oneScalar) ScalarKind() ScalarKind { return SkOne }
func (o *oneScalar) Children() []Scalar     { return nil }
func (o *oneScalar) String() string         { return "1" }

var scalarOneSingleton = func() Scalar {
	o := &oneScalar{}
	o.h = hashkey.Tag(tagScalarOne)
	return o
}()

// ScalarOne returns the scalar multiplicative identity.
func ScalarOne() Scalar { return scalarOneSingleton }

type constantScalar struct {
	scalarBase
	Value number.Number
}

func (c *constantScalar) ScalarKind() ScalarKind { return SkConstant }
func (c *constantScalar) Children() []Scalar     { return nil }
func (c *constantScalar) String() string         { return c.Value.String() }

// ScalarConstant returns a numeric-constant leaf, folding to Zero/One
// when the value is exactly 0 or 1 so the canonical representation of
// those values is always the singleton leaf.
func ScalarConstant(n number.Number) Scalar {
	if n.IsZero() {
		return ScalarZero()
	}
	if n.IsOne() {
		return ScalarOne()
	}
	c := &constantScalar{Value: n}
	h := hashkey.Tag(tagScalarConstant)
	switch n.Kind() {
	case number.IntegerKind:
		v, _ := n.Int64()
		h = hashkey.Int(h, int(v))
	case number.RealKind:
		h = hashkey.Float64(h, n.Float64())
	default:
		h = hashkey.String(h, n.String())
	}
	c.h = h
	return c
}

// ScalarConstantFromFraction returns a constant scalar for num/den,
// panicking on a zero denominator (call sites pass fixed literal
// denominators, e.g. 1/dim for a projector trace coefficient).
func ScalarConstantFromFraction(num, den int64) Scalar {
	n, err := number.FromRat(num, den)
	if err != nil {
		panic(err)
	}
	return ScalarConstant(n)
}

type namedScalar struct {
	scalarBase
	Name string
	Sub  Scalar
}

func (n *namedScalar) ScalarKind() ScalarKind { return SkNamed }
func (n *namedScalar) Children() []Scalar     { return []Scalar{n.Sub} }
func (n *namedScalar) String() string         { return n.Name }

// ScalarNamed wraps sub under a display name while remaining
// structurally transparent: its hash and equality delegate entirely to
// sub (spec.md SPEC_FULL §3 "Named expressions"), so the simplifier
// sees through it exactly as if the name annotation weren't there.
func ScalarNamed(name string, sub Scalar) Scalar {
	if sub == nil {
		panicInvalid("ScalarNamed")
	}
	return &namedScalar{Name: name, Sub: sub, scalarBase: scalarBase{h: sub.Hash()}}
}

func panicInvalid(op string) {
	panic(caserr.New(caserr.InvalidExpression, op, "nil child"))
}

// ---- Unary ----

type unaryScalarKindInfo struct {
	kind ScalarKind
	tag  uint32
	name string
}

var unaryScalarKinds = map[ScalarKind]unaryScalarKindInfo{
	SkNeg:  {SkNeg, tagScalarNeg, "Neg"},
	SkSin:  {SkSin, tagScalarSin, "Sin"},
	SkCos:  {SkCos, tagScalarCos, "Cos"},
	SkTan:  {SkTan, tagScalarTan, "Tan"},
	SkASin: {SkASin, tagScalarASin, "ASin"},
	SkACos: {SkACos, tagScalarACos, "ACos"},
	SkATan: {SkATan, tagScalarATan, "ATan"},
	SkExp:  {SkExp, tagScalarExp, "Exp"},
	SkLog:  {SkLog, tagScalarLog, "Log"},
	SkSqrt: {SkSqrt, tagScalarSqrt, "Sqrt"},
	SkSign: {SkSign, tagScalarSign, "Sign"},
	SkAbs:  {SkAbs, tagScalarAbs, "Abs"},
}

type unaryScalar struct {
	scalarBase
	kind ScalarKind
	X    Scalar
}

func (u *unaryScalar) ScalarKind() ScalarKind { return u.kind }
func (u *unaryScalar) Children() []Scalar     { return []Scalar{u.X} }
func (u *unaryScalar) String() string {
	return fmt.Sprintf("%s(%s)", unaryScalarKinds[u.kind].name, u.X.String())
}

func newUnaryScalar(kind ScalarKind, x Scalar) Scalar {
	info := unaryScalarKinds[kind]
	return &unaryScalar{kind: kind, X: x, scalarBase: scalarBase{h: hashkey.MixOrdered(hashkey.Tag(info.tag), x.Hash())}}
}

// ScalarNeg returns -x, applying §4.5.1's double-negation rule.
func ScalarNeg(x Scalar) Scalar {
	requireScalar(x, "Neg")
	if isZeroScalar(x) {
		return x
	}
	if n, ok := x.(*unaryScalar); ok && n.kind == SkNeg {
		return n.X
	}
	if c, ok := x.(*constantScalar); ok {
		return ScalarConstant(number.Neg(c.Value))
	}
	return newUnaryScalar(SkNeg, x)
}

// ScalarSin returns sin(x).
func ScalarSin(x Scalar) Scalar {
	requireScalar(x, "Sin")
	if isZeroScalar(x) {
		return ScalarZero()
	}
	return newUnaryScalar(SkSin, x)
}

// ScalarCos returns cos(x).
func ScalarCos(x Scalar) Scalar {
	requireScalar(x, "Cos")
	if isZeroScalar(x) {
		return ScalarOne()
	}
	return newUnaryScalar(SkCos, x)
}

// ScalarTan returns tan(x).
func ScalarTan(x Scalar) Scalar {
	requireScalar(x, "Tan")
	if isZeroScalar(x) {
		return ScalarZero()
	}
	return newUnaryScalar(SkTan, x)
}

// ScalarASin returns asin(x).
func ScalarASin(x Scalar) Scalar { requireScalar(x, "ASin"); return newUnaryScalar(SkASin, x) }

// ScalarACos returns acos(x).
func ScalarACos(x Scalar) Scalar { requireScalar(x, "ACos"); return newUnaryScalar(SkACos, x) }

// ScalarATan returns atan(x).
func ScalarATan(x Scalar) Scalar {
	requireScalar(x, "ATan")
	if isZeroScalar(x) {
		return ScalarZero()
	}
	return newUnaryScalar(SkATan, x)
}

// ScalarExp returns exp(x); exp(0) = 1.
func ScalarExp(x Scalar) Scalar {
	requireScalar(x, "Exp")
	if isZeroScalar(x) {
		return ScalarOne()
	}
	return newUnaryScalar(SkExp, x)
}

// ScalarLog returns log(x); log(1) = 0. log(exp(y)) folds only when the
// child is the exact structural counterpart (§4.5.5).
func ScalarLog(x Scalar) Scalar {
	requireScalar(x, "Log")
	if isOneScalar(x) {
		return ScalarZero()
	}
	if u, ok := x.(*unaryScalar); ok && u.kind == SkExp {
		return u.X
	}
	return newUnaryScalar(SkLog, x)
}

// ScalarSqrt returns sqrt(x); sqrt(Pow(x,2)) with x nonnegative folds
// to x (§4.5.5).
func ScalarSqrt(x Scalar) Scalar {
	requireScalar(x, "Sqrt")
	if isZeroScalar(x) {
		return ScalarZero()
	}
	if isOneScalar(x) {
		return ScalarOne()
	}
	if p, ok := x.(*powScalar); ok {
		if c, ok := p.Exp.(*constantScalar); ok && c.Value.IsInteger() {
			if v, _ := c.Value.Int64(); v == 2 && IsNonnegativeScalar(p.Base) {
				return p.Base
			}
		}
	}
	return newUnaryScalar(SkSqrt, x)
}

// ScalarSign returns sign(x), folding under sign assumptions (§4.5.5).
func ScalarSign(x Scalar) Scalar {
	requireScalar(x, "Sign")
	if IsPositiveScalar(x) {
		return ScalarOne()
	}
	if IsNegativeScalar(x) {
		return ScalarNeg(ScalarOne())
	}
	return newUnaryScalar(SkSign, x)
}

// ScalarAbs returns |x|, folding under sign assumptions (§4.5.5).
func ScalarAbs(x Scalar) Scalar {
	requireScalar(x, "Abs")
	if IsPositiveScalar(x) || isZeroScalar(x) {
		return x
	}
	if IsNegativeScalar(x) {
		return ScalarNeg(x)
	}
	if u, ok := x.(*unaryScalar); ok && u.kind == SkAbs {
		return u
	}
	return newUnaryScalar(SkAbs, x)
}

func requireScalar(x Scalar, op string) {
	if x == nil {
		panicInvalid(op)
	}
}

func isZeroScalar(x Scalar) bool  { _, ok := x.(*zeroScalar); return ok }
func isOneScalar(x Scalar) bool   { _, ok := x.(*oneScalar); return ok }

// ---- Binary: Pow ----

type powScalar struct {
	scalarBase
	Base Scalar
	Exp  Scalar
}

func (p *powScalar) ScalarKind() ScalarKind { return SkPow }
func (p *powScalar) Children() []Scalar     { return []Scalar{p.Base, p.Exp} }
func (p *powScalar) String() string         { return fmt.Sprintf("%s^%s", p.Base.String(), p.Exp.String()) }

func newRawPowScalar(base, exp Scalar) *powScalar {
	return &powScalar{Base: base, Exp: exp, scalarBase: scalarBase{h: hashkey.MixOrdered(hashkey.Tag(tagScalarPow), base.Hash(), exp.Hash())}}
}

// ScalarPow returns base**exp, applying §4.5.4's identities.
func ScalarPow(base, exp Scalar) Scalar {
	requireScalar(base, "Pow")
	requireScalar(exp, "Pow")
	if isOneScalar(base) {
		debugTrace("simplify", "Pow: 1^%s -> 1", exp.String())
		return ScalarOne()
	}
	if isZeroScalar(exp) {
		debugTrace("simplify", "Pow: %s^0 -> 1", base.String())
		return ScalarOne()
	}
	if isOneScalar(exp) {
		debugTrace("simplify", "Pow: %s^1 -> %s", base.String(), base.String())
		return base
	}
	if isZeroScalar(base) {
		if IsPositiveScalar(exp) {
			debugTrace("simplify", "Pow: 0^%s -> 0 (exp known positive)", exp.String())
			return ScalarZero()
		}
		if c, ok := exp.(*constantScalar); ok && c.Value.IsZero() {
			return ScalarOne()
		}
	}
	if bc, ok := base.(*constantScalar); ok {
		if ec, ok := exp.(*constantScalar); ok {
			if p, err := number.Pow(bc.Value, ec.Value); err == nil {
				debugTrace("simplify", "Pow: folding constant %s^%s", bc.String(), ec.String())
				return ScalarConstant(p)
			}
		}
	}
	if p, ok := base.(*powScalar); ok {
		debugTrace("simplify", "Pow: (%s^%s)^%s -> %s^(%s*%s)", p.Base.String(), p.Exp.String(), exp.String(), p.Base.String(), p.Exp.String(), exp.String())
		return ScalarPow(p.Base, ScalarMul(p.Exp, exp))
	}
	return newRawPowScalar(base, exp)
}

// ---- N-ary: Add ----

type addTerm struct {
	Coeff number.Number
	Term  Scalar
}

type addScalar struct {
	scalarBase
	Const number.Number
	Terms map[hashkey.Hash]addTerm
	order []hashkey.Hash // not filled in by the factories; iteration goes through sortedKeys
}

func (a *addScalar) ScalarKind() ScalarKind { return SkAdd }

func (a *addScalar) Children() []Scalar {
	out := make([]Scalar, 0, len(a.Terms)+1)
	if !a.Const.IsZero() {
		out = append(out, ScalarConstant(a.Const))
	}
	for _, key := range a.sortedKeys() {
		out = append(out, scaledScalarTerm(a.Terms[key].Coeff, a.Terms[key].Term))
	}
	return out
}

func (a *addScalar) sortedKeys() []hashkey.Hash {
	keys := make([]hashkey.Hash, 0, len(a.Terms))
	for k := range a.Terms {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (a *addScalar) String() string {
	var b strings.Builder
	children := a.Children()
	for i, c := range children {
		if i > 0 {
			b.WriteString("+")
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// scaledScalarTerm renders coeff*term in canonical form without
// re-entering the factory pipeline (the caller already knows the
// result is simplified).
func scaledScalarTerm(coeff number.Number, term Scalar) Scalar {
	if coeff.IsOne() {
		return term
	}
	if coeff.IsZero() {
		return ScalarZero()
	}
	return buildMulScalar(coeff, map[hashkey.Hash]mulFactor{term.Hash(): {Base: term, Exp: ScalarOne()}}, []hashkey.Hash{term.Hash()})
}

// ScalarAdd builds the canonical sum of terms (spec.md §4.5.2).
func ScalarAdd(terms ...Scalar) Scalar {
	acc := &addAccumulator{terms: make(map[hashkey.Hash]addTerm)}
	for _, t := range terms {
		requireScalar(t, "Add")
		acc.add(number.FromInt64(1), t)
	}
	return acc.build()
}

type addAccumulator struct {
	constv number.Number
	terms  map[hashkey.Hash]addTerm
	order  []hashkey.Hash
}

func (acc *addAccumulator) add(scale number.Number, t Scalar) {
	switch v := t.(type) {
	case *zeroScalar:
		return
	case *constantScalar:
		acc.constv = number.Add(acc.constv, number.Mul(scale, v.Value))
	case *oneScalar:
		acc.constv = number.Add(acc.constv, scale)
	case *addScalar:
		acc.constv = number.Add(acc.constv, number.Mul(scale, v.Const))
		for _, key := range v.sortedKeys() {
			e := v.Terms[key]
			acc.bump(e.Term, key, number.Mul(scale, e.Coeff))
		}
	case *unaryScalar:
		if v.kind == SkNeg {
			acc.add(number.Neg(scale), v.X)
			return
		}
		acc.bump(v, v.Hash(), scale)
	case *mulScalar:
		coeff, sym := splitMulForAdd(v)
		acc.bump(sym, sym.Hash(), number.Mul(scale, coeff))
	default:
		acc.bump(v, v.Hash(), scale)
	}
}

func (acc *addAccumulator) bump(term Scalar, key hashkey.Hash, delta number.Number) {
	if e, ok := acc.terms[key]; ok {
		newCoeff := number.Add(e.Coeff, delta)
		if newCoeff.IsZero() {
			debugTrace("simplify", "Add: term %s cancels", term.String())
			delete(acc.terms, key)
		} else {
			acc.terms[key] = addTerm{Coeff: newCoeff, Term: term}
		}
		return
	}
	if delta.IsZero() {
		return
	}
	acc.terms[key] = addTerm{Coeff: delta, Term: term}
	acc.order = append(acc.order, key)
}

func (acc *addAccumulator) build() Scalar {
	if len(acc.terms) == 0 {
		debugTrace("simplify", "Add: all terms cancelled, collapsing to constant %s", acc.constv.String())
		return ScalarConstant(acc.constv)
	}
	if len(acc.terms) == 1 && acc.constv.IsZero() {
		for _, e := range acc.terms {
			debugTrace("simplify", "Add: collapsing to lone term %s", e.Term.String())
			return scaledScalarTerm(e.Coeff, e.Term)
		}
	}
	a := &addScalar{Const: acc.constv, Terms: map[hashkey.Hash]addTerm{}}
	hs := make([]hashkey.Hash, 0, len(acc.terms))
	for k, v := range acc.terms {
		a.Terms[k] = v
		hs = append(hs, k)
	}
	if !acc.constv.IsZero() {
		hs = append(hs, ScalarConstant(acc.constv).Hash())
	}
	a.h = hashkey.MixUnordered(hashkey.Tag(tagScalarAdd), hs...)
	return a
}

// splitMulForAdd decomposes a Mul node into its numeric coefficient and
// the coefficient-free remainder, for use when folding a Mul term into
// an Add accumulator (§4.5.2's "Symbol + (coef . Symbol)" family).
func splitMulForAdd(m *mulScalar) (number.Number, Scalar) {
	if len(m.Factors) == 1 {
		for _, f := range m.Factors {
			if isOneConstExp(f.Exp) {
				return m.Coeff, f.Base
			}
		}
	}
	rest := buildMulScalar(number.FromInt64(1), m.Factors, m.order)
	return m.Coeff, rest
}

func isOneConstExp(e Scalar) bool {
	c, ok := e.(*constantScalar)
	if ok {
		return c.Value.IsOne()
	}
	return isOneScalar(e)
}

// ---- N-ary: Mul ----

type mulFactor struct {
	Base Scalar
	Exp  Scalar
}

type mulScalar struct {
	scalarBase
	Coeff   number.Number
	Factors map[hashkey.Hash]mulFactor
	order   []hashkey.Hash
}

func (m *mulScalar) ScalarKind() ScalarKind { return SkMul }

func (m *mulScalar) Children() []Scalar {
	out := make([]Scalar, 0, len(m.Factors)+1)
	if !m.Coeff.IsOne() {
		out = append(out, ScalarConstant(m.Coeff))
	}
	for _, key := range m.sortedKeys() {
		f := m.Factors[key]
		if isOneConstExp(f.Exp) {
			out = append(out, f.Base)
		} else {
			out = append(out, newRawPowScalar(f.Base, f.Exp))
		}
	}
	return out
}

func (m *mulScalar) sortedKeys() []hashkey.Hash {
	keys := make([]hashkey.Hash, 0, len(m.Factors))
	for k := range m.Factors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (m *mulScalar) String() string {
	parts := make([]string, 0, len(m.Factors)+1)
	for _, c := range m.Children() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "*")
}

func buildMulScalar(coeff number.Number, factors map[hashkey.Hash]mulFactor, order []hashkey.Hash) Scalar {
	if coeff.IsZero() {
		debugTrace("simplify", "Mul: zero coefficient annihilates product")
		return ScalarZero()
	}
	if len(factors) == 0 {
		return ScalarConstant(coeff)
	}
	if len(factors) == 1 && coeff.IsOne() {
		for _, f := range factors {
			if isOneConstExp(f.Exp) {
				debugTrace("simplify", "Mul: collapsing to lone factor %s", f.Base.String())
				return f.Base
			}
			return newRawPowScalar(f.Base, f.Exp)
		}
	}
	m := &mulScalar{Coeff: coeff, Factors: map[hashkey.Hash]mulFactor{}}
	hs := make([]hashkey.Hash, 0, len(factors)+1)
	for k, v := range factors {
		m.Factors[k] = v
		var fh hashkey.Hash
		if isOneConstExp(v.Exp) {
			fh = v.Base.Hash()
		} else {
			fh = hashkey.MixOrdered(hashkey.Tag(tagScalarPow), v.Base.Hash(), v.Exp.Hash())
		}
		hs = append(hs, fh)
	}
	if !coeff.IsOne() {
		hs = append(hs, ScalarConstant(coeff).Hash())
	}
	m.h = hashkey.MixUnordered(hashkey.Tag(tagScalarMul), hs...)
	return m
}

// ScalarMul builds the canonical product of factors (spec.md §4.5.3).
// Distribution over Add is never performed (§8 P10).
func ScalarMul(factors ...Scalar) Scalar {
	acc := &mulAccumulator{coeff: number.FromInt64(1), factors: make(map[hashkey.Hash]mulFactor)}
	for _, f := range factors {
		requireScalar(f, "Mul")
		if !acc.mulIn(f) {
			return ScalarZero()
		}
	}
	return acc.build()
}

type mulAccumulator struct {
	coeff   number.Number
	factors map[hashkey.Hash]mulFactor
	order   []hashkey.Hash
}

// mulIn folds f into the accumulator. Returns false if the whole
// product is annihilated to Zero.
func (acc *mulAccumulator) mulIn(f Scalar) bool {
	switch v := f.(type) {
	case *zeroScalar:
		return false
	case *oneScalar:
		return true
	case *constantScalar:
		acc.coeff = number.Mul(acc.coeff, v.Value)
		return true
	case *mulScalar:
		acc.coeff = number.Mul(acc.coeff, v.Coeff)
		for _, key := range v.sortedKeys() {
			acc.bumpExp(v.Factors[key].Base, key, v.Factors[key].Exp)
		}
		return true
	case *powScalar:
		acc.bumpExp(v.Base, v.Base.Hash(), v.Exp)
		return true
	default:
		acc.bumpExp(v, v.Hash(), ScalarOne())
		return true
	}
}

func (acc *mulAccumulator) bumpExp(base Scalar, key hashkey.Hash, exp Scalar) {
	if e, ok := acc.factors[key]; ok {
		newExp := ScalarAdd(e.Exp, exp)
		if isZeroScalar(newExp) {
			delete(acc.factors, key)
		} else {
			acc.factors[key] = mulFactor{Base: base, Exp: newExp}
		}
		return
	}
	acc.factors[key] = mulFactor{Base: base, Exp: exp}
	acc.order = append(acc.order, key)
}

func (acc *mulAccumulator) build() Scalar {
	return buildMulScalar(acc.coeff, acc.factors, acc.order)
}

// ScalarDiv returns lhs/rhs, rewritten as lhs * rhs**-1 per §4.5.5.
func ScalarDiv(lhs, rhs Scalar) (Scalar, error) {
	requireScalar(lhs, "Div")
	requireScalar(rhs, "Div")
	if isZeroScalar(rhs) {
		return nil, caserr.New(caserr.DivisionByZero, "ScalarDiv", "division by symbolic zero")
	}
	return ScalarMul(lhs, ScalarPow(rhs, ScalarNeg(ScalarOne()))), nil
}

// ScalarSub returns lhs - rhs.
func ScalarSub(lhs, rhs Scalar) Scalar { return ScalarAdd(lhs, ScalarNeg(rhs)) }

// ScalarEqual reports structural equality between two scalar handles
// (spec.md §3.4, §4.2): equal variant tags, equal domain metadata, and
// pairwise-equal children, order-insensitive for Add/Mul.
func ScalarEqual(a, b Scalar) bool {
	if a == nil || b == nil {
		return a == b
	}
	if n, ok := a.(*namedScalar); ok {
		return ScalarEqual(n.Sub, b)
	}
	if n, ok := b.(*namedScalar); ok {
		return ScalarEqual(a, n.Sub)
	}
	if a.Hash() != b.Hash() {
		return false
	}
	if a.ScalarKind() != b.ScalarKind() {
		return false
	}
	switch av := a.(type) {
	case *symbolScalar:
		return av.Name == b.(*symbolScalar).Name
	case *zeroScalar, *oneScalar:
		return true
	case *constantScalar:
		return number.Equal(av.Value, b.(*constantScalar).Value)
	case *namedScalar:
		return ScalarEqual(av.Sub, b.(*namedScalar).Sub)
	case *unaryScalar:
		return ScalarEqual(av.X, b.(*unaryScalar).X)
	case *powScalar:
		bv := b.(*powScalar)
		return ScalarEqual(av.Base, bv.Base) && ScalarEqual(av.Exp, bv.Exp)
	case *addScalar:
		bv := b.(*addScalar)
		if !number.Equal(av.Const, bv.Const) || len(av.Terms) != len(bv.Terms) {
			return false
		}
		for k, e := range av.Terms {
			oe, ok := bv.Terms[k]
			if !ok || !number.Equal(e.Coeff, oe.Coeff) || !ScalarEqual(e.Term, oe.Term) {
				return false
			}
		}
		return true
	case *mulScalar:
		bv := b.(*mulScalar)
		if !number.Equal(av.Coeff, bv.Coeff) || len(av.Factors) != len(bv.Factors) {
			return false
		}
		for k, e := range av.Factors {
			oe, ok := bv.Factors[k]
			if !ok || !ScalarEqual(e.Base, oe.Base) || !ScalarEqual(e.Exp, oe.Exp) {
				return false
			}
		}
		return true
	}
	return false
}
