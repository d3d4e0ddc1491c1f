package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/symtensor/tensorcas/expr"
)

func TestDiffConstantIsZero(t *testing.T) {
	x := expr.ScalarSymbol("x")
	assert.True(t, expr.ScalarEqual(Scalar(expr.ScalarConstantFromFraction(7, 1), x), expr.ScalarZero()))
}

func TestDiffSymbolSelf(t *testing.T) {
	x := expr.ScalarSymbol("x")
	y := expr.ScalarSymbol("y")
	assert.True(t, expr.ScalarEqual(Scalar(x, x), expr.ScalarOne()))
	assert.True(t, expr.ScalarEqual(Scalar(y, x), expr.ScalarZero()))
}

func TestDiffSumOfSquares(t *testing.T) {
	x := expr.ScalarSymbol("x")
	e := expr.ScalarAdd(expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)), x)
	got := Scalar(e, x)
	want := expr.ScalarAdd(expr.ScalarMul(expr.ScalarConstantFromFraction(2, 1), x), expr.ScalarOne())
	assert.True(t, expr.ScalarEqual(got, want))
}

func TestDiffProductRule(t *testing.T) {
	x := expr.ScalarSymbol("x")
	y := expr.ScalarSymbol("y")
	e := expr.ScalarMul(x, y)
	got := Scalar(e, x)
	assert.True(t, expr.ScalarEqual(got, y))
}

func TestDiffChainRuleSin(t *testing.T) {
	x := expr.ScalarSymbol("x")
	e := expr.ScalarSin(expr.ScalarMul(expr.ScalarConstantFromFraction(2, 1), x))
	got := Scalar(e, x)
	want := expr.ScalarMul(expr.ScalarConstantFromFraction(2, 1), expr.ScalarCos(expr.ScalarMul(expr.ScalarConstantFromFraction(2, 1), x)))
	assert.True(t, expr.ScalarEqual(got, want))
}

func TestDiffExpOfSelf(t *testing.T) {
	x := expr.ScalarSymbol("x")
	e := expr.ScalarExp(x)
	assert.True(t, expr.ScalarEqual(Scalar(e, x), e))
}

func TestDiffPowerRule(t *testing.T) {
	x := expr.ScalarSymbol("x")
	e := expr.ScalarPow(x, expr.ScalarConstantFromFraction(3, 1))
	got := Scalar(e, x)
	want := expr.ScalarMul(expr.ScalarConstantFromFraction(3, 1), expr.ScalarPow(x, expr.ScalarConstantFromFraction(2, 1)))
	assert.True(t, expr.ScalarEqual(got, want))
}
