package expr

// This file exposes read-only decompositions of node variants whose
// Children() view alone discards information a visitor outside this
// package needs (the numeric coefficient of a ScalarMul tensor, the
// operand of a Trace, the exponent of a Pow) — chiefly for the diff
// package's index- and coefficient-aware rules (spec.md §4.7). Each
// function returns ok=false when x isn't the requested variant, never
// panics, so callers can probe freely.

// ScalarPowParts returns (base, exp, true) if x is a Pow node.
func ScalarPowParts(x Scalar) (base, exp Scalar, ok bool) {
	p, ok := x.(*powScalar)
	if !ok {
		return nil, nil, false
	}
	return p.Base, p.Exp, true
}

// ScalarUnaryOperand returns (kind, operand, true) if x is a unary
// elementary-function node (Neg, Sin, Cos, ... Abs).
func ScalarUnaryOperand(x Scalar) (kind ScalarKind, operand Scalar, ok bool) {
	u, ok := x.(*unaryScalar)
	if !ok {
		return 0, nil, false
	}
	return u.kind, u.X, true
}

// ScalarNamedOperand returns (sub, true) if x is a Named wrapper.
func ScalarNamedOperand(x Scalar) (sub Scalar, ok bool) {
	n, ok := x.(*namedScalar)
	if !ok {
		return nil, false
	}
	return n.Sub, true
}

// TensorScalarMulParts returns (scalar, tensor, true) if x is a
// ScalarMul node.
func TensorScalarMulParts(x Tensor) (s Scalar, t Tensor, ok bool) {
	m, ok := x.(*scalarMulTensor)
	if !ok {
		return nil, nil, false
	}
	return m.S, m.T, true
}

// TensorPowParts returns (base, exp, true) if x is a Pow node.
func TensorPowParts(x Tensor) (base Tensor, exp Scalar, ok bool) {
	p, ok := x.(*powTensor)
	if !ok {
		return nil, nil, false
	}
	return p.Base, p.Exp, true
}

// TensorAddTerm pairs a coefficient with its tensor term, as stored in
// an Add container.
type TensorAddTerm struct {
	Coeff Scalar
	Term  Tensor
}

// TensorAddTerms returns the (coefficient, term) pairs of an Add node.
func TensorAddTerms(x Tensor) ([]TensorAddTerm, bool) {
	a, ok := x.(*addTensor)
	if !ok {
		return nil, false
	}
	out := make([]TensorAddTerm, 0, len(a.Terms))
	for _, key := range a.sortedKeys() {
		e := a.Terms[key]
		out = append(out, TensorAddTerm{Coeff: e.Coeff, Term: e.Term})
	}
	return out, true
}

// TensorMulFactors returns the flattened rank-2 matrix-chain factors of
// a Mul node.
func TensorMulFactors(x Tensor) ([]Tensor, bool) {
	m, ok := x.(*mulTensor)
	if !ok {
		return nil, false
	}
	return m.Factors, true
}

// TensorInnerProductParts returns the operands and contraction index
// sequences of an InnerProduct node.
func TensorInnerProductParts(x Tensor) (lhs Tensor, lhsIdx []int, rhs Tensor, rhsIdx []int, ok bool) {
	p, ok := x.(*innerProductTensor)
	if !ok {
		return nil, nil, nil, nil, false
	}
	return p.LHS, p.LHSIdx, p.RHS, p.RHSIdx, true
}

// T2STraceOperand returns (x, true) if t is a Trace node.
func T2STraceOperand(t T2S) (Tensor, bool) {
	tr, ok := t.(*traceT2S)
	if !ok {
		return nil, false
	}
	return tr.X, true
}

// T2SDeterminantOperand returns (x, true) if t is a Determinant node.
func T2SDeterminantOperand(t T2S) (Tensor, bool) {
	d, ok := t.(*determinantT2S)
	if !ok {
		return nil, false
	}
	return d.X, true
}

// T2SLogOperand returns (x, true) if t is a Log node.
func T2SLogOperand(t T2S) (T2S, bool) {
	l, ok := t.(*logT2S)
	if !ok {
		return nil, false
	}
	return l.X, true
}

// T2SWithScalarMulParts returns (scalar, t2s, true) if t is a
// WithScalarMul node.
func T2SWithScalarMulParts(t T2S) (Scalar, T2S, bool) {
	w, ok := t.(*withScalarMulT2S)
	if !ok {
		return nil, nil, false
	}
	return w.S, w.T, true
}

// T2SWithScalarAddParts returns (scalar, t2s, true) if t is a
// WithScalarAdd node.
func T2SWithScalarAddParts(t T2S) (Scalar, T2S, bool) {
	w, ok := t.(*withScalarAddT2S)
	if !ok {
		return nil, nil, false
	}
	return w.S, w.T, true
}

// T2SAddTerm pairs a coefficient with its T2S term.
type T2SAddTerm struct {
	Coeff Scalar
	Term  T2S
}

// T2SAddTerms returns the (coefficient, term) pairs of an Add node.
func T2SAddTerms(t T2S) ([]T2SAddTerm, bool) {
	a, ok := t.(*addT2S)
	if !ok {
		return nil, false
	}
	out := make([]T2SAddTerm, 0, len(a.Terms))
	for _, k := range a.sortedKeys() {
		e := a.Terms[k]
		out = append(out, T2SAddTerm{Coeff: e.Coeff, Term: e.Term})
	}
	return out, true
}

// T2SMulFactor pairs a base with its exponent, as stored in a Mul
// container.
type T2SMulFactor struct {
	Base T2S
	Exp  Scalar
}

// T2SMulFactors returns the coefficient and (base, exponent) factors
// of a Mul node.
func T2SMulFactors(t T2S) (coeff Scalar, factors []T2SMulFactor, ok bool) {
	m, ok := t.(*mulT2S)
	if !ok {
		return nil, nil, false
	}
	out := make([]T2SMulFactor, 0, len(m.Factors))
	for _, k := range m.sortedKeys() {
		f := m.Factors[k]
		out = append(out, T2SMulFactor{Base: f.Base, Exp: f.Exp})
	}
	return m.Coeff, out, true
}

// T2SWrappedTensor returns the underlying rank-0 Tensor if t is a
// ScalarWrapper leaf.
func T2SWrappedTensor(t T2S) (Tensor, bool) {
	w, ok := t.(*wrappedT2S)
	if !ok {
		return nil, false
	}
	return w.X, true
}
