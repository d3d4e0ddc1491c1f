package diff

import (
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/expr"
)

// Tensor returns d(e)/d(wrt) for a tensor expression differentiated
// with respect to a tensor symbol, as a tensor of rank e.Rank() +
// wrt.Rank() (spec.md §4.7.2): the "identity operator"
// IdentityTensor(dim, 2*rank) stands in for the index-paired Kronecker
// product when e and wrt are structurally equal symbols. Linearity
// (Add, Neg, ScalarMul) is fully general; compound index-contracting
// nodes (InnerProduct, OuterProduct, Mul, Pow, Inv, BasisChange,
// Symmetry) require index bookkeeping this core does not attempt to
// generalize and report caserr.NotImplemented rather than guess.
func Tensor(e, wrt expr.Tensor) (expr.Tensor, error) {
	if e.Dim() != wrt.Dim() {
		return nil, caserr.New(caserr.ShapeMismatch, "diff.Tensor", "dim mismatch: %d vs %d", e.Dim(), wrt.Dim())
	}
	outRank := e.Rank() + wrt.Rank()
	switch e.TensorKind() {
	case expr.TkZero:
		return expr.TensorZero(e.Dim(), outRank), nil
	case expr.TkSymbol:
		if expr.TensorEqual(e, wrt) {
			return expr.MustTensorIdentity(e.Dim(), outRank), nil
		}
		return expr.TensorZero(e.Dim(), outRank), nil
	case expr.TkKroneckerDelta, expr.TkIdentity, expr.TkProjector:
		return expr.TensorZero(e.Dim(), outRank), nil
	case expr.TkNeg:
		child, err := Tensor(e.Children()[0], wrt)
		if err != nil {
			return nil, err
		}
		return expr.TensorNeg(child), nil
	case expr.TkScalarMul:
		s, t, _ := expr.TensorScalarMulParts(e)
		child, err := Tensor(t, wrt)
		if err != nil {
			return nil, err
		}
		return expr.TensorScalarMul(s, child), nil
	case expr.TkAdd:
		terms, _ := expr.TensorAddTerms(e)
		parts := make([]expr.Tensor, 0, len(terms))
		for _, te := range terms {
			dTerm, err := Tensor(te.Term, wrt)
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr.TensorScalarMul(te.Coeff, dTerm))
		}
		if len(parts) == 0 {
			return expr.TensorZero(e.Dim(), outRank), nil
		}
		return expr.TensorAdd(parts...), nil
	default:
		return nil, caserr.New(caserr.NotImplemented, "diff.Tensor", "no index-bookkeeping rule for %s", e.TensorKind())
	}
}
