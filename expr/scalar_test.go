package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/number"
)

func c(v int64) Scalar { return ScalarConstant(number.FromInt64(v)) }

func TestScalarAddCommutative(t *testing.T) {
	x := ScalarSymbol("x")
	y := ScalarSymbol("y")
	a := ScalarAdd(x, y)
	b := ScalarAdd(y, x)
	assert.True(t, ScalarEqual(a, b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestScalarMulCommutative(t *testing.T) {
	x := ScalarSymbol("x")
	y := ScalarSymbol("y")
	assert.True(t, ScalarEqual(ScalarMul(x, y), ScalarMul(y, x)))
}

func TestScalarAddAssociative(t *testing.T) {
	x, y, z := ScalarSymbol("x"), ScalarSymbol("y"), ScalarSymbol("z")
	left := ScalarAdd(ScalarAdd(x, y), z)
	right := ScalarAdd(x, ScalarAdd(y, z))
	assert.True(t, ScalarEqual(left, right))
}

func TestScalarAddIdentity(t *testing.T) {
	x := ScalarSymbol("x")
	assert.True(t, ScalarEqual(x, ScalarAdd(x, ScalarZero())))
}

func TestScalarMulIdentityAndAnnihilator(t *testing.T) {
	x := ScalarSymbol("x")
	assert.True(t, ScalarEqual(x, ScalarMul(x, ScalarOne())))
	assert.True(t, ScalarEqual(ScalarZero(), ScalarMul(x, ScalarZero())))
}

// S1: 2+3 folds to the constant leaf 5.
func TestScenarioConstantFolding(t *testing.T) {
	sum := ScalarAdd(c(2), c(3))
	assert.True(t, ScalarEqual(c(5), sum))
}

// S2: x + x + 3*x folds to 5*x (container coefficient collapse).
func TestScenarioLikeTermCollapse(t *testing.T) {
	x := ScalarSymbol("x")
	sum := ScalarAdd(x, x, ScalarMul(c(3), x))
	want := ScalarMul(c(5), x)
	assert.True(t, ScalarEqual(want, sum), "got %s want %s", sum, want)
}

// S3: x*x folds to Pow(x,2) via Mul's exponent bumping.
func TestScenarioRepeatedFactorBecomesPow(t *testing.T) {
	x := ScalarSymbol("x")
	got := ScalarMul(x, x)
	want := ScalarPow(x, c(2))
	assert.True(t, ScalarEqual(want, got), "got %s want %s", got, want)
}

func TestDoubleNegationFolds(t *testing.T) {
	x := ScalarSymbol("x")
	assert.True(t, ScalarEqual(x, ScalarNeg(ScalarNeg(x))))
}

func TestPowFoldingRules(t *testing.T) {
	x := ScalarSymbol("x")
	assert.True(t, ScalarEqual(ScalarOne(), ScalarPow(x, ScalarZero())))
	assert.True(t, ScalarEqual(ScalarOne(), ScalarPow(ScalarOne(), x)))
	assert.True(t, ScalarEqual(x, ScalarPow(x, ScalarOne())))
	assert.True(t, ScalarEqual(ScalarZero(), ScalarPow(ScalarZero(), c(3))))
}

func TestPowNestedCombinesExponents(t *testing.T) {
	x := ScalarSymbol("x")
	got := ScalarPow(ScalarPow(x, c(2)), c(3))
	want := ScalarPow(x, c(6))
	assert.True(t, ScalarEqual(want, got), "got %s want %s", got, want)
}

func TestDivByZeroErrors(t *testing.T) {
	x := ScalarSymbol("x")
	_, err := ScalarDiv(x, ScalarZero())
	require.Error(t, err)
}

func TestAssumptionPropagationExp(t *testing.T) {
	x := ScalarSymbol("x")
	e := ScalarExp(x)
	assert.True(t, IsPositiveScalar(e))
	assert.True(t, IsNonzeroScalar(e))
}

func TestAssumptionPropagationAbs(t *testing.T) {
	x := ScalarSymbol("x")
	AssumeScalar(x, assume.Nonzero)
	abs := ScalarAbs(x)
	assert.True(t, IsPositiveScalar(abs))
}

func TestAssumptionPropagationAddAllPositive(t *testing.T) {
	x := ScalarSymbol("x")
	y := ScalarSymbol("y")
	AssumeScalar(x, assume.Positive)
	AssumeScalar(y, assume.Positive)
	sum := ScalarAdd(x, y)
	assert.True(t, IsPositiveScalar(sum))
}

func TestAssumptionInvalidationOnReassume(t *testing.T) {
	x := ScalarSymbol("x")
	AssumeScalar(x, assume.Positive)
	assert.True(t, IsPositiveScalar(x))
	RemoveScalarAssumption(x, assume.Positive)
	assert.False(t, IsPositiveScalar(x))
}

func TestSqrtFoldsUnderNonnegativeAssumption(t *testing.T) {
	x := ScalarSymbol("x")
	AssumeScalar(x, assume.Nonnegative)
	got := ScalarSqrt(ScalarPow(x, c(2)))
	assert.True(t, ScalarEqual(x, got), "got %s", got)
}

func TestNamedTransparentToHashAndEquality(t *testing.T) {
	x := ScalarSymbol("x")
	named := ScalarNamed("energy", x)
	assert.Equal(t, x.Hash(), named.Hash())
	assert.True(t, ScalarEqual(x, named))
}
