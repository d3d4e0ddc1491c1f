package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/symtensor/tensorcas/expr"
)

// scalarCmp lets cmp.Diff walk Scalar trees via ScalarEqual instead of
// reflecting into expr's unexported node fields, the same approach
// expr's own property tests use.
var scalarCmp = cmp.Comparer(func(a, b expr.Scalar) bool { return expr.ScalarEqual(a, b) })

// TestPropertyDiffLinearity is spec.md §8 P8's linearity clause,
// checked with a structural-diff assertion (more informative on
// failure than assert.True(ScalarEqual(...)) alone) across several
// generated a+b pairs.
func TestPropertyDiffLinearity(t *testing.T) {
	x := expr.ScalarSymbol("x")
	pairs := [][2]expr.Scalar{
		{expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)), expr.ScalarSin(x)},
		{expr.ScalarMul(expr.ScalarConstantFromFraction(3, 1), x), expr.ScalarCos(x)},
		{expr.ScalarExp(x), x},
	}
	for _, p := range pairs {
		a, b := p[0], p[1]
		got := Scalar(expr.ScalarAdd(a, b), x)
		want := expr.ScalarAdd(Scalar(a, x), Scalar(b, x))
		if diff := cmp.Diff(want, got, scalarCmp); diff != "" {
			t.Errorf("d(%s + %s)/dx mismatch (-want +got):\n%s", a.String(), b.String(), diff)
		}
	}
}

// TestPropertyDiffLeibniz is P8's Leibniz clause over several
// generated products.
func TestPropertyDiffLeibniz(t *testing.T) {
	x := expr.ScalarSymbol("x")
	factorPairs := [][2]expr.Scalar{
		{x, expr.ScalarSin(x)},
		{expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)), expr.ScalarExp(x)},
	}
	for _, p := range factorPairs {
		u, v := p[0], p[1]
		got := Scalar(expr.ScalarMul(u, v), x)
		want := expr.ScalarAdd(expr.ScalarMul(Scalar(u, x), v), expr.ScalarMul(u, Scalar(v, x)))
		if diff := cmp.Diff(want, got, scalarCmp); diff != "" {
			t.Errorf("Leibniz mismatch for %s * %s (-want +got):\n%s", u.String(), v.String(), diff)
		}
	}
}

// TestPropertyDiffIndependentSymbolIsZero is P8's "d(y)/dx == 0 for
// independent symbols y" clause, across a small generator set.
func TestPropertyDiffIndependentSymbolIsZero(t *testing.T) {
	x := expr.ScalarSymbol("x")
	others := []expr.Scalar{expr.ScalarSymbol("y"), expr.ScalarSymbol("z"), expr.ScalarConstantFromFraction(5, 1)}
	for _, e := range others {
		if diff := cmp.Diff(expr.ScalarZero(), Scalar(e, x), scalarCmp); diff != "" {
			t.Errorf("d(%s)/dx expected 0 (-want +got):\n%s", e.String(), diff)
		}
	}
}
