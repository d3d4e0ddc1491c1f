package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceOfZeroAndIdentity(t *testing.T) {
	tr, err := T2STrace(TensorZero(3, 2))
	require.NoError(t, err)
	assert.True(t, T2SEqual(T2SZero(), tr))

	id, _ := TensorIdentity(4, 2)
	trID, err := T2STrace(id)
	require.NoError(t, err)
	assert.True(t, ScalarEqual(c(4), T2SToScalar(trID)))
}

func TestTraceRequiresRank2(t *testing.T) {
	x := TensorSymbol("x", 3, 3)
	_, err := T2STrace(x)
	require.Error(t, err)
}

func TestTraceDistributesOverAdd(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	B := TensorSymbol("B", 3, 2)
	trSum, err := T2STrace(TensorAdd(A, B))
	require.NoError(t, err)
	trA, _ := T2STrace(A)
	trB, _ := T2STrace(B)
	want, err := T2SAdd(trA, trB)
	require.NoError(t, err)
	assert.True(t, T2SEqual(want, trSum))
}

func TestDeterminantOfIdentityIsOne(t *testing.T) {
	id, _ := TensorIdentity(3, 2)
	det, err := T2SDeterminant(id)
	require.NoError(t, err)
	assert.True(t, T2SEqual(T2SOne(), det))
}

func TestT2SWithScalarMulFolding(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	tr, _ := T2STrace(A)
	assert.True(t, T2SEqual(tr, T2SWithScalarMul(ScalarOne(), tr)))
	assert.True(t, T2SEqual(T2SZero(), T2SWithScalarMul(ScalarZero(), tr)))
}

func TestT2SRoundTripToScalar(t *testing.T) {
	x := ScalarSymbol("x")
	wrapped := wrapScalarLeaf(x)
	assert.True(t, ScalarEqual(x, T2SToScalar(wrapped)))
}

func TestT2SMulAnnihilatesOnZero(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	tr, _ := T2STrace(A)
	got, err := T2SMul(tr, T2SZero())
	require.NoError(t, err)
	assert.True(t, T2SEqual(T2SZero(), got))
}

func TestT2SWithTensorDivByZeroErrors(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	_, err := T2SWithTensorDiv(A, TensorZero(3, 2))
	require.Error(t, err)
}
