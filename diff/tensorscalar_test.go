package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symtensor/tensorcas/expr"
	"github.com/symtensor/tensorcas/tensorspace"
)

func TestT2SDiffTraceIsKroneckerDelta(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	tr, err := expr.T2STrace(x)
	require.NoError(t, err)
	got, err := T2S(tr, x)
	require.NoError(t, err)
	assert.True(t, expr.TensorEqual(got, expr.TensorDelta(3)))
}

func TestT2SDiffTraceOfCompoundOperandNotImplemented(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	tr, err := expr.T2STrace(expr.TensorNeg(x))
	require.NoError(t, err)
	_, err = T2S(tr, x)
	assert.Error(t, err)
}

func TestT2SDiffDeterminant(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	det, err := expr.T2SDeterminant(x)
	require.NoError(t, err)
	got, err := T2S(det, x)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Dim())
	assert.Equal(t, 2, got.Rank())
}

func TestT2SDiffLogDeterminant(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	det, err := expr.T2SDeterminant(x)
	require.NoError(t, err)
	logdet, err := expr.T2SLog(det)
	require.NoError(t, err)
	got, err := T2S(logdet, x)
	require.NoError(t, err)
	inv, err := expr.TensorInv(x)
	require.NoError(t, err)
	want, err := expr.TensorBasisChange(inv, tensorspace.Permutation{2, 1})
	require.NoError(t, err)
	assert.True(t, expr.TensorEqual(got, want))
}

func TestT2SDiffLinearCombination(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	tr, err := expr.T2STrace(x)
	require.NoError(t, err)
	two := expr.ScalarConstantFromFraction(2, 1)
	sum, err := expr.T2SAdd(expr.T2SWithScalarMul(two, tr), tr)
	require.NoError(t, err)
	got, err := T2S(sum, x)
	require.NoError(t, err)
	want := expr.TensorScalarMul(expr.ScalarConstantFromFraction(3, 1), expr.TensorDelta(3))
	assert.True(t, expr.TensorEqual(got, want))
}
