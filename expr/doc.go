// Package expr implements the CAS core's expression trees: the three
// disjoint domains (Scalar, Tensor, TensorToScalar) of spec.md §3.2,
// their handles and invariants (§3.4, §3.5), the domain-aware
// simplifier (§4.5), and the lazy assumption propagator (§4.6).
//
// Every exported node type is reachable only through a factory
// function; the node interfaces (Scalar, Tensor, T2S) carry
// an unexported method so no type outside this package can implement
// them, the same "opaque handle" contract the teacher gives its own
// value.Value (robpike-ivy): construction is centralized so the
// invariants in spec.md §3.3 and §3.5 cannot be bypassed.
package expr
