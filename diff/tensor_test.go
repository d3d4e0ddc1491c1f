package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symtensor/tensorcas/expr"
)

func TestDiffTensorZero(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	got, err := Tensor(expr.TensorZero(3, 2), x)
	require.NoError(t, err)
	assert.True(t, expr.TensorEqual(got, expr.TensorZero(3, 4)))
}

func TestDiffTensorSelfIsIdentity(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	got, err := Tensor(x, x)
	require.NoError(t, err)
	assert.True(t, expr.TensorEqual(got, expr.MustTensorIdentity(3, 4)))
}

func TestDiffTensorUnrelatedSymbolIsZero(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	y := expr.TensorSymbol("Y", 3, 2)
	got, err := Tensor(y, x)
	require.NoError(t, err)
	assert.True(t, expr.TensorEqual(got, expr.TensorZero(3, 4)))
}

func TestDiffTensorLinearCombination(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	two := expr.ScalarConstantFromFraction(2, 1)
	e := expr.TensorAdd(expr.TensorScalarMul(two, x), expr.TensorNeg(x))
	got, err := Tensor(e, x)
	require.NoError(t, err)
	want := expr.TensorScalarMul(expr.ScalarOne(), expr.MustTensorIdentity(3, 4))
	assert.True(t, expr.TensorEqual(got, want))
}

func TestDiffTensorDimMismatchErrors(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	y := expr.TensorSymbol("Y", 4, 2)
	_, err := Tensor(y, x)
	assert.Error(t, err)
}

func TestDiffTensorInnerProductNotImplemented(t *testing.T) {
	x := expr.TensorSymbol("X", 3, 2)
	y := expr.TensorSymbol("Y", 3, 2)
	prod, err := expr.TensorInnerProduct(x, []int{2}, y, []int{1})
	require.NoError(t, err)
	_, err = Tensor(prod, x)
	assert.Error(t, err)
}
