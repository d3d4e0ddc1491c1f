// Package cas is the public, domain-spanning surface of the CAS core
// (spec.md §6.4): a Context binds names to expressions across all three
// domains and exposes Diff, Substitute, and batch Assume without the
// caller needing to know which domain a given handle belongs to.
// Mirrors the teacher's split between exec.Context (the thing a driver
// program holds onto) and value.Value (the algebra itself, here expr).
package cas

import (
	"github.com/symtensor/tensorcas/caserr"
	"github.com/symtensor/tensorcas/casconfig"
	"github.com/symtensor/tensorcas/expr"
)

// Domain identifies which of the three expression domains a Binding
// holds (spec.md §3.2).
type Domain int

const (
	DomainScalar Domain = iota
	DomainTensor
	DomainT2S
)

func (d Domain) String() string {
	switch d {
	case DomainScalar:
		return "Scalar"
	case DomainTensor:
		return "Tensor"
	case DomainT2S:
		return "TensorToScalar"
	default:
		return "Unknown"
	}
}

// Binding is a named expression in exactly one domain (the
// "symbol table" entry SPEC_FULL §0 assigns to Context), analogous to
// the teacher's value.Var but tagged by domain instead of dynamic type.
type Binding struct {
	Name   string
	Domain Domain
	S      expr.Scalar
	T      expr.Tensor
	V      expr.T2S
}

// Context holds the configuration and the global symbol table for one
// CAS session (spec.md §6.4's "library-level" API surface made
// stateful, the way exec.Context is ivy's stateful counterpart to the
// value package's pure algebra).
type Context struct {
	config  *casconfig.Config
	Globals map[string]*Binding
}

// NewContext returns a Context with an empty symbol table. Installs
// conf as expr's active tracing config, so Config.Debug("simplify")/
// Config.Debug("propagate") gate the trace lines the simplifier and
// propagator emit through expr's debugTrace (SPEC_FULL §1).
func NewContext(conf *casconfig.Config) *Context {
	if conf == nil {
		conf = casconfig.New()
	}
	expr.SetConfig(conf)
	return &Context{config: conf, Globals: map[string]*Binding{}}
}

// Config returns the context's configuration.
func (c *Context) Config() *casconfig.Config { return c.config }

// AssignScalar binds name to a Scalar expression, creating or
// overwriting the global entry.
func (c *Context) AssignScalar(name string, s expr.Scalar) {
	c.Globals[name] = &Binding{Name: name, Domain: DomainScalar, S: s}
}

// AssignTensor binds name to a Tensor expression.
func (c *Context) AssignTensor(name string, t expr.Tensor) {
	c.Globals[name] = &Binding{Name: name, Domain: DomainTensor, T: t}
}

// AssignT2S binds name to a tensor-to-scalar expression.
func (c *Context) AssignT2S(name string, v expr.T2S) {
	c.Globals[name] = &Binding{Name: name, Domain: DomainT2S, V: v}
}

// Lookup returns the named binding, or nil if undefined.
func (c *Context) Lookup(name string) *Binding {
	return c.Globals[name]
}

func notBound(op, name string) error {
	return caserr.New(caserr.InvalidExpression, op, "%q is not bound in this context", name)
}

// LookupScalar returns the named Scalar binding, erroring if the name
// is unbound or bound to a different domain (spec.md §7's
// DomainMismatch).
func (c *Context) LookupScalar(name string) (expr.Scalar, error) {
	b := c.Globals[name]
	if b == nil {
		return nil, notBound("LookupScalar", name)
	}
	if b.Domain != DomainScalar {
		return nil, caserr.New(caserr.DomainMismatch, "LookupScalar", "%q is bound as %s, not Scalar", name, b.Domain)
	}
	return b.S, nil
}

// LookupTensor returns the named Tensor binding.
func (c *Context) LookupTensor(name string) (expr.Tensor, error) {
	b := c.Globals[name]
	if b == nil {
		return nil, notBound("LookupTensor", name)
	}
	if b.Domain != DomainTensor {
		return nil, caserr.New(caserr.DomainMismatch, "LookupTensor", "%q is bound as %s, not Tensor", name, b.Domain)
	}
	return b.T, nil
}

// LookupT2S returns the named tensor-to-scalar binding.
func (c *Context) LookupT2S(name string) (expr.T2S, error) {
	b := c.Globals[name]
	if b == nil {
		return nil, notBound("LookupT2S", name)
	}
	if b.Domain != DomainT2S {
		return nil, caserr.New(caserr.DomainMismatch, "LookupT2S", "%q is bound as %s, not TensorToScalar", name, b.Domain)
	}
	return b.V, nil
}
