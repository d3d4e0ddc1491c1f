package cas

import "github.com/symtensor/tensorcas/expr"

// IsPositive reports whether the named scalar is known positive.
func (c *Context) IsPositive(name string) (bool, error) {
	s, err := c.LookupScalar(name)
	if err != nil {
		return false, err
	}
	return expr.IsPositiveScalar(s), nil
}

// IsNonzero reports whether the named scalar is known nonzero.
func (c *Context) IsNonzero(name string) (bool, error) {
	s, err := c.LookupScalar(name)
	if err != nil {
		return false, err
	}
	return expr.IsNonzeroScalar(s), nil
}

// IsInteger reports whether the named scalar is known integral.
func (c *Context) IsInteger(name string) (bool, error) {
	s, err := c.LookupScalar(name)
	if err != nil {
		return false, err
	}
	return expr.IsIntegerScalar(s), nil
}

// IsSymmetric reports whether the named tensor is known symmetric.
func (c *Context) IsSymmetric(name string) (bool, error) {
	t, err := c.LookupTensor(name)
	if err != nil {
		return false, err
	}
	return expr.IsSymmetricTensor(t), nil
}

// IsSkew reports whether the named tensor is known skew-symmetric.
func (c *Context) IsSkew(name string) (bool, error) {
	t, err := c.LookupTensor(name)
	if err != nil {
		return false, err
	}
	return expr.IsSkewTensor(t), nil
}

// Kind returns a domain-neutral string naming the bound expression's
// node kind (spec.md §6.4's "kind" query), for display in a driver.
func (c *Context) Kind(name string) (string, error) {
	b := c.Globals[name]
	if b == nil {
		return "", notBound("Kind", name)
	}
	switch b.Domain {
	case DomainScalar:
		return b.S.ScalarKind().String(), nil
	case DomainTensor:
		return b.T.TensorKind().String(), nil
	case DomainT2S:
		return b.V.T2SKind().String(), nil
	default:
		return "", nil
	}
}

// String returns the bound expression's debug form (spec.md §6's
// ProgString-equivalent; the pretty-printer itself is out of scope,
// §1, §6.1).
func (c *Context) String(name string) (string, error) {
	b := c.Globals[name]
	if b == nil {
		return "", notBound("String", name)
	}
	switch b.Domain {
	case DomainScalar:
		return b.S.String(), nil
	case DomainTensor:
		return b.T.String(), nil
	case DomainT2S:
		return b.V.String(), nil
	default:
		return "", nil
	}
}
