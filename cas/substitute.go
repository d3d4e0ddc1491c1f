package cas

import (
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/expr"
)

// SubstituteScalar replaces every occurrence of target with repl in e
// (spec.md §6.4's substitute(expr, from, to), supplemented from
// original_source/numsim_cas.h per SPEC_FULL §3).
func SubstituteScalar(e, target, repl expr.Scalar) expr.Scalar {
	return expr.ScalarSubstitute(e, target, repl)
}

// SubstituteTensor replaces every occurrence of target with repl in e.
func SubstituteTensor(e, target, repl expr.Tensor) expr.Tensor {
	return expr.TensorSubstitute(e, target, repl)
}

// SubstituteT2STensor replaces every occurrence of the tensor target
// with repl within a tensor-to-scalar expression's tensor operands, with
// the same coverage as expr.T2SSubstituteTensor (occurrences beneath
// Pow and division nodes are not replaced).
func SubstituteT2STensor(e expr.T2S, target, repl expr.Tensor) expr.T2S {
	return expr.T2SSubstituteTensor(e, target, repl)
}

// Substitute rewrites the binding named eName by replacing every
// occurrence of the binding named targetName with the binding named
// replName, storing the result back under resultName. All three of
// eName/targetName/replName must share a domain, except that e may be
// a T2S expression substituted against a Tensor target/repl pair.
func (c *Context) Substitute(resultName, eName, targetName, replName string) error {
	eb, tb, rb := c.Globals[eName], c.Globals[targetName], c.Globals[replName]
	if eb == nil {
		return notBound("Substitute", eName)
	}
	if tb == nil {
		return notBound("Substitute", targetName)
	}
	if rb == nil {
		return notBound("Substitute", replName)
	}
	if tb.Domain != rb.Domain {
		return caserr.New(caserr.DomainMismatch, "Substitute", "target %q (%s) and replacement %q (%s) must share a domain", targetName, tb.Domain, replName, rb.Domain)
	}
	switch {
	case eb.Domain == DomainScalar && tb.Domain == DomainScalar:
		c.AssignScalar(resultName, SubstituteScalar(eb.S, tb.S, rb.S))
	case eb.Domain == DomainTensor && tb.Domain == DomainTensor:
		c.AssignTensor(resultName, SubstituteTensor(eb.T, tb.T, rb.T))
	case eb.Domain == DomainT2S && tb.Domain == DomainTensor:
		c.AssignT2S(resultName, SubstituteT2STensor(eb.V, tb.T, rb.T))
	default:
		return caserr.New(caserr.DomainMismatch, "Substitute", "cannot substitute into %s %q with a %s target", eb.Domain, eName, tb.Domain)
	}
	return nil
}
