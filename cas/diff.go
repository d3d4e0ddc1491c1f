package cas

import (
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/diff"
	"github.com/symtensor/tensorcas/expr"
)

// DiffScalar returns d(e)/d(wrt) for two scalar expressions (spec.md
// §4.7.1, §6.4's diff(expr, symbol)).
func DiffScalar(e, wrt expr.Scalar) expr.Scalar {
	return diff.Scalar(e, wrt)
}

// DiffTensor returns d(e)/d(wrt) for two tensor expressions (§4.7.2).
func DiffTensor(e, wrt expr.Tensor) (expr.Tensor, error) {
	return diff.Tensor(e, wrt)
}

// DiffT2S returns the gradient of a tensor-to-scalar invariant with
// respect to a tensor (§4.7.2's worked example, d(Trace(X))/dX).
func DiffT2S(e expr.T2S, wrt expr.Tensor) (expr.Tensor, error) {
	return diff.T2S(e, wrt)
}

// Diff looks up names in the context and differentiates, dispatching on
// the bound domain; eName and wrtName must be bound in the same domain
// except that a T2S expression may be differentiated with respect to a
// Tensor symbol (the gradient case).
func (c *Context) Diff(eName, wrtName string) (interface{}, error) {
	eb := c.Globals[eName]
	wb := c.Globals[wrtName]
	if eb == nil {
		return nil, notBound("Diff", eName)
	}
	if wb == nil {
		return nil, notBound("Diff", wrtName)
	}
	switch {
	case eb.Domain == DomainScalar && wb.Domain == DomainScalar:
		return DiffScalar(eb.S, wb.S), nil
	case eb.Domain == DomainTensor && wb.Domain == DomainTensor:
		return DiffTensor(eb.T, wb.T)
	case eb.Domain == DomainT2S && wb.Domain == DomainTensor:
		return DiffT2S(eb.V, wb.T)
	default:
		return nil, caserr.New(caserr.DomainMismatch, "Diff", "cannot differentiate %s %q with respect to %s %q", eb.Domain, eName, wb.Domain, wrtName)
	}
}
