package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// scalarCmp treats two Scalar handles as equal exactly when ScalarEqual
// does, so cmp.Diff can walk a tree of sealed, unexported node types
// without reflecting into their unexported fields.
var scalarCmp = cmp.Comparer(func(a, b Scalar) bool { return ScalarEqual(a, b) })

// tensorCmp is scalarCmp's Tensor-domain counterpart.
var tensorCmp = cmp.Comparer(func(a, b Tensor) bool { return TensorEqual(a, b) })

// TestPropertyScalarStructuralIdempotence is spec.md §8 P1 for the
// Scalar domain: an Add/Mul node decomposed via Children and fed back
// through its own factory reproduces itself structurally, since both
// n-ary containers are already canonical the moment the factory
// returns.
func TestPropertyScalarStructuralIdempotence(t *testing.T) {
	x, y, z := ScalarSymbol("x"), ScalarSymbol("y"), ScalarSymbol("z")
	sums := []Scalar{
		ScalarAdd(x, y, z),
		ScalarAdd(ScalarMul(c(2), x), ScalarMul(c(3), y)),
		ScalarAdd(c(5), x, ScalarSin(y)),
	}
	for _, e := range sums {
		rebuilt := ScalarAdd(e.Children()...)
		if diff := cmp.Diff(e, rebuilt, scalarCmp); diff != "" {
			t.Errorf("Add idempotence failed for %s (-original +rebuilt):\n%s", e.String(), diff)
		}
	}

	products := []Scalar{
		ScalarMul(x, y, z),
		ScalarMul(c(2), x, ScalarCos(y)),
	}
	for _, e := range products {
		rebuilt := ScalarMul(e.Children()...)
		if diff := cmp.Diff(e, rebuilt, scalarCmp); diff != "" {
			t.Errorf("Mul idempotence failed for %s (-original +rebuilt):\n%s", e.String(), diff)
		}
	}
}

// TestPropertyScalarCommutativity is P2: a+b == b+a and a*b == b*a as
// handles, for every pair drawn from a small generator set.
func TestPropertyScalarCommutativity(t *testing.T) {
	terms := []Scalar{ScalarSymbol("x"), ScalarSymbol("y"), c(2), ScalarSin(ScalarSymbol("z"))}
	for _, a := range terms {
		for _, b := range terms {
			if diff := cmp.Diff(ScalarAdd(a, b), ScalarAdd(b, a), scalarCmp); diff != "" {
				t.Errorf("Add not commutative for %s, %s (-ab +ba):\n%s", a.String(), b.String(), diff)
			}
			if diff := cmp.Diff(ScalarMul(a, b), ScalarMul(b, a), scalarCmp); diff != "" {
				t.Errorf("Mul not commutative for %s, %s (-ab +ba):\n%s", a.String(), b.String(), diff)
			}
		}
	}
}

// TestPropertyScalarAssociativityFlattens is P3: (a+b)+c == a+(b+c),
// and likewise for Mul, because both n-ary containers flatten nested
// same-kind children into one hash-keyed map rather than nesting them.
func TestPropertyScalarAssociativityFlattens(t *testing.T) {
	a, b, cc := ScalarSymbol("a"), ScalarSymbol("b"), ScalarSymbol("c")

	left := ScalarAdd(ScalarAdd(a, b), cc)
	right := ScalarAdd(a, ScalarAdd(b, cc))
	if diff := cmp.Diff(left, right, scalarCmp); diff != "" {
		t.Errorf("Add not associative (-left +right):\n%s", diff)
	}

	mLeft := ScalarMul(ScalarMul(a, b), cc)
	mRight := ScalarMul(a, ScalarMul(b, cc))
	if diff := cmp.Diff(mLeft, mRight, scalarCmp); diff != "" {
		t.Errorf("Mul not associative (-left +right):\n%s", diff)
	}
}

// TestPropertyTensorCommutativeAdd is P2 for the Tensor domain.
func TestPropertyTensorCommutativeAdd(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	B := TensorSymbol("B", 3, 2)
	if diff := cmp.Diff(TensorAdd(A, B), TensorAdd(B, A), tensorCmp); diff != "" {
		t.Errorf("Tensor Add not commutative (-ab +ba):\n%s", diff)
	}
}

// TestPropertyTensorAssociativityFlattens is P3 for the Tensor domain.
func TestPropertyTensorAssociativityFlattens(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	B := TensorSymbol("B", 3, 2)
	C := TensorSymbol("C", 3, 2)
	left := TensorAdd(TensorAdd(A, B), C)
	right := TensorAdd(A, TensorAdd(B, C))
	if diff := cmp.Diff(left, right, tensorCmp); diff != "" {
		t.Errorf("Tensor Add not associative (-left +right):\n%s", diff)
	}
}

// TestPropertyScalarAdditiveInverse is P4, reusing the same go-cmp
// machinery for a tree-shaped assertion rather than a single
// assert.Equal on a bool.
func TestPropertyScalarAdditiveInverse(t *testing.T) {
	x := ScalarMul(ScalarSymbol("x"), ScalarSin(ScalarSymbol("y")))
	require.NotNil(t, x)
	if diff := cmp.Diff(ScalarZero(), ScalarAdd(x, ScalarNeg(x)), scalarCmp); diff != "" {
		t.Errorf("e + (-e) != 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ScalarZero(), ScalarSub(x, x), scalarCmp); diff != "" {
		t.Errorf("e - e != 0 (-want +got):\n%s", diff)
	}
}
