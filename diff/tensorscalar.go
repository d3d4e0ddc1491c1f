package diff

import (
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/expr"
	"github.com/symtensor/tensorcas/tensorspace"
)

// T2S returns the gradient of a tensor-to-scalar invariant with
// respect to a tensor, as a Tensor of the same shape as wrt (spec.md
// §4.7.2). Linear combinations (Add, Neg, WithScalarAdd, WithScalarMul)
// are fully general; the classical matrix-calculus identities (Trace,
// Determinant, logdet) are implemented for the textbook case
// where the invariant's tensor operand is wrt itself — the case every
// one of spec.md's worked examples needs — and report
// caserr.NotImplemented for a compound operand rather than guess at a
// chain rule through operations diff.Tensor does not express. Norm has
// no gradient rule and always reports caserr.NotImplemented.
func T2S(e expr.T2S, wrt expr.Tensor) (expr.Tensor, error) {
	dim, rank := wrt.Dim(), wrt.Rank()
	switch e.T2SKind() {
	case expr.TsZero, expr.TsOne:
		return expr.TensorZero(dim, rank), nil
	case expr.TsWrapped:
		return expr.TensorZero(dim, rank), nil
	case expr.TsTrace:
		x, _ := expr.T2STraceOperand(e)
		return traceGradient(x, wrt)
	case expr.TsDeterminant:
		x, _ := expr.T2SDeterminantOperand(e)
		return determinantGradient(x, wrt)
	case expr.TsNorm:
		return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "Norm gradient requires a nonzero-denominator side condition not tracked by this core")
	case expr.TsLog:
		inner, _ := expr.T2SLogOperand(e)
		if det, ok := expr.T2SDeterminantOperand(inner); ok {
			return logDeterminantGradient(det, wrt)
		}
		return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "Log gradient only implemented for log(det(X))")
	case expr.TsNeg:
		child, err := T2S(e.Children()[0], wrt)
		if err != nil {
			return nil, err
		}
		return expr.TensorNeg(child), nil
	case expr.TsWithScalarAdd:
		s, t, _ := expr.T2SWithScalarAddParts(e)
		_ = s // a Scalar summand has zero tensor-gradient contribution.
		return T2S(t, wrt)
	case expr.TsWithScalarMul:
		s, t, _ := expr.T2SWithScalarMulParts(e)
		child, err := T2S(t, wrt)
		if err != nil {
			return nil, err
		}
		return expr.TensorScalarMul(s, child), nil
	case expr.TsAdd:
		terms, _ := expr.T2SAddTerms(e)
		parts := make([]expr.Tensor, 0, len(terms))
		for _, te := range terms {
			dTerm, err := T2S(te.Term, wrt)
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr.TensorScalarMul(te.Coeff, dTerm))
		}
		if len(parts) == 0 {
			return expr.TensorZero(dim, rank), nil
		}
		return expr.TensorAdd(parts...), nil
	case expr.TsMul:
		return mulGradient(e, wrt)
	default:
		return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "no gradient rule for %s", e.T2SKind())
	}
}

// traceGradient implements d(tr(X))/dX = I.
func traceGradient(x expr.Tensor, wrt expr.Tensor) (expr.Tensor, error) {
	if !expr.TensorEqual(x, wrt) {
		return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "Trace gradient only implemented for tr(wrt) itself")
	}
	return expr.TensorDelta(wrt.Dim()), nil
}

// determinantGradient implements d(det(X))/dX = det(X) * Inv(X)^T.
func determinantGradient(x expr.Tensor, wrt expr.Tensor) (expr.Tensor, error) {
	if !expr.TensorEqual(x, wrt) {
		return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "Determinant gradient only implemented for det(wrt) itself")
	}
	inv, err := expr.TensorInv(x)
	if err != nil {
		return nil, err
	}
	invT, err := expr.TensorBasisChange(inv, tensorspace.Permutation{2, 1})
	if err != nil {
		return nil, err
	}
	det, err := expr.T2SDeterminant(x)
	if err != nil {
		return nil, err
	}
	return expr.TensorScalarMul(expr.T2SToScalar(det), invT), nil
}

// logDeterminantGradient implements d(log(det(X)))/dX = Inv(X)^T,
// the determinant factor cancelling against the logarithm's 1/det(X).
func logDeterminantGradient(x expr.Tensor, wrt expr.Tensor) (expr.Tensor, error) {
	if !expr.TensorEqual(x, wrt) {
		return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "logdet gradient only implemented for log(det(wrt)) itself")
	}
	inv, err := expr.TensorInv(x)
	if err != nil {
		return nil, err
	}
	return expr.TensorBasisChange(inv, tensorspace.Permutation{2, 1})
}

// mulGradient applies the product rule to a Mul node's exponent-1
// factors: d(c * prod f_i)/dX = c * sum_i (d f_i/dX) * prod_{j!=i} f_j.
// A factor with a non-trivial exponent is out of scope (would need the
// T2S power rule composed with this gradient) and reports
// caserr.NotImplemented.
func mulGradient(e expr.T2S, wrt expr.Tensor) (expr.Tensor, error) {
	coeff, factors, _ := expr.T2SMulFactors(e)
	bases := make([]expr.T2S, len(factors))
	for i, f := range factors {
		if f.Exp.ScalarKind() != expr.SkOne {
			return nil, caserr.New(caserr.NotImplemented, "diff.T2S", "Mul gradient requires every factor to have exponent 1")
		}
		bases[i] = f.Base
	}
	dim, rank := wrt.Dim(), wrt.Rank()
	parts := make([]expr.Tensor, 0, len(bases))
	for i := range bases {
		dBase, err := T2S(bases[i], wrt)
		if err != nil {
			return nil, err
		}
		scale := coeff
		for j, b := range bases {
			if j != i {
				scale = expr.ScalarMul(scale, expr.T2SToScalar(b))
			}
		}
		parts = append(parts, expr.TensorScalarMul(scale, dBase))
	}
	if len(parts) == 0 {
		return expr.TensorZero(dim, rank), nil
	}
	return expr.TensorAdd(parts...), nil
}
