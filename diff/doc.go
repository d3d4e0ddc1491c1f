// Package diff implements the CAS core's symbolic differentiation
// engine (spec.md §4.7): linearity, the product and chain rules, the
// elementary-function derivative table, and the index bookkeeping that
// differentiating a tensor or a tensor-to-scalar invariant with respect
// to a tensor requires (§4.7.2). Every visitor re-enters the expr
// package's factories for each emitted subexpression, so the result of
// a Diff call is already in the simplifier's canonical form — the same
// "build through the factory, never construct a raw node" discipline
// expr's own node constructors follow (expr/scalar.go).
package diff
