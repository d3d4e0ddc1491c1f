package cas

import (
	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/expr"
)

// AssumeScalar records a numeric assumption on a bound scalar name,
// invalidating its inferred-tag cache (spec.md §4.4, §4.6's
// user-assumption invalidation rule).
func (c *Context) AssumeScalar(name string, tag assume.NumericTag) error {
	s, err := c.LookupScalar(name)
	if err != nil {
		return err
	}
	expr.AssumeScalar(s, tag)
	return nil
}

// RemoveScalarAssumption removes a previously-recorded numeric
// assumption on a bound scalar name.
func (c *Context) RemoveScalarAssumption(name string, tag assume.NumericTag) error {
	s, err := c.LookupScalar(name)
	if err != nil {
		return err
	}
	expr.RemoveScalarAssumption(s, tag)
	return nil
}

// AssumeTensorSpace records a tensor-space assumption on a bound
// tensor name (§4.8).
func (c *Context) AssumeTensorSpace(name string, sp assume.Space) error {
	t, err := c.LookupTensor(name)
	if err != nil {
		return err
	}
	expr.AssumeTensorSpace(t, sp)
	return nil
}

// RemoveTensorSpaceAssumption removes a tensor-space assumption on a
// bound tensor name.
func (c *Context) RemoveTensorSpaceAssumption(name string, sp assume.Space) error {
	t, err := c.LookupTensor(name)
	if err != nil {
		return err
	}
	expr.RemoveTensorSpaceAssumption(t, sp)
	return nil
}

// AssumeBatch applies a batch of numeric assumptions across several
// bound scalar names in one call (SPEC_FULL §0's "batch Assume"),
// stopping and reporting the first lookup failure.
func (c *Context) AssumeBatch(assumptions map[string]assume.NumericTag) error {
	for name, tag := range assumptions {
		if err := c.AssumeScalar(name, tag); err != nil {
			return err
		}
	}
	return nil
}
