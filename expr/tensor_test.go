package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symtensor/tensorcas/assume"
	"github.com/symtensor/tensorcas/tensorspace"
)

func TestTensorAddCommutativeAndIdentity(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	B := TensorSymbol("B", 3, 2)
	assert.True(t, TensorEqual(TensorAdd(A, B), TensorAdd(B, A)))
	assert.True(t, TensorEqual(A, TensorAdd(A, TensorZero(3, 2))))
}

func TestTensorAddShapeMismatchPanics(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	B := TensorSymbol("B", 3, 3)
	assert.Panics(t, func() { TensorAdd(A, B) })
}

func TestTensorScalarMulFolding(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	assert.True(t, TensorEqual(A, TensorScalarMul(ScalarOne(), A)))
	assert.True(t, TensorEqual(TensorZero(3, 2), TensorScalarMul(ScalarZero(), A)))
}

func TestTensorPowIdentityAndBase(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	p0, err := TensorPow(A, ScalarZero())
	require.NoError(t, err)
	id, _ := TensorIdentity(3, 2)
	assert.True(t, TensorEqual(id, p0))

	p1, err := TensorPow(A, ScalarOne())
	require.NoError(t, err)
	assert.True(t, TensorEqual(A, p1))
}

func TestTensorInverseOfIdentity(t *testing.T) {
	id, _ := TensorIdentity(3, 2)
	inv, err := TensorInv(id)
	require.NoError(t, err)
	assert.True(t, TensorEqual(id, inv))
}

func TestBasisChangeComposition(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	swap := tensorspace.Permutation{2, 1}
	once, err := TensorBasisChange(A, swap)
	require.NoError(t, err)
	// swapping twice returns the identity permutation, folding back to A.
	twice, err := TensorBasisChange(once, swap)
	require.NoError(t, err)
	assert.True(t, TensorEqual(A, twice))
}

// S4: assuming C symmetric, Symmetry(C) collapses to C itself. This test
// checks the predicate behind that collapse: the propagator's view of a
// user-declared symmetric tensor, which TensorSymmetry and the
// projector-elimination rule both consult.
func TestAssumeSymmetricTensor(t *testing.T) {
	C := TensorSymbol("C", 3, 2)
	AssumeTensorSpace(C, assume.Space{Perm: assume.SymmetricPerm})
	assert.True(t, IsSymmetricTensor(C))
	assert.False(t, IsSkewTensor(C))
}

func TestKroneckerDeltaIsSymmetricAndVolumetric(t *testing.T) {
	d := TensorDelta(4)
	assert.True(t, IsSymmetricTensor(d))
	assert.True(t, IsVolumetricTensor(d))
}

func TestInnerProductDeltaAbsorption(t *testing.T) {
	d := TensorDelta(3)
	x := TensorSymbol("x", 3, 2)
	got, err := TensorInnerProduct(d, []int{2}, x, []int{1})
	require.NoError(t, err)
	assert.True(t, TensorEqual(x, got))
}

func TestInnerProductZeroAnnihilates(t *testing.T) {
	z := TensorZero(3, 2)
	x := TensorSymbol("x", 3, 2)
	got, err := TensorInnerProduct(z, []int{2}, x, []int{1})
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rank())
}

func TestInnerProductIndexLengthMismatchErrors(t *testing.T) {
	x := TensorSymbol("x", 3, 2)
	y := TensorSymbol("y", 3, 2)
	_, err := TensorInnerProduct(x, []int{1}, y, []int{1, 2})
	require.Error(t, err)
}

func TestProjectorEliminationMatches(t *testing.T) {
	sym := TensorSymbol("S", 3, 2)
	AssumeTensorSpace(sym, assume.Space{Perm: assume.SymmetricPerm})
	proj := TensorProjector(tensorspace.Sym, 2, 3)
	got, err := TensorInnerProduct(proj, []int{3, 4}, sym, []int{1, 2})
	require.NoError(t, err)
	assert.True(t, TensorEqual(sym, got))
}

func TestProjectorEliminationAnnihilates(t *testing.T) {
	skew := TensorSymbol("K", 3, 2)
	AssumeTensorSpace(skew, assume.Space{Perm: assume.SkewPerm})
	proj := TensorProjector(tensorspace.Sym, 2, 3)
	got, err := TensorInnerProduct(proj, []int{3, 4}, skew, []int{1, 2})
	require.NoError(t, err)
	assert.True(t, TensorEqual(TensorZero(3, 2), got))
}

func TestTensorMulDropsIdentityFactor(t *testing.T) {
	A := TensorSymbol("A", 3, 2)
	id, _ := TensorIdentity(3, 2)
	got, err := TensorMul(id, A)
	require.NoError(t, err)
	assert.True(t, TensorEqual(A, got))
}

func TestSimpleOuterProductRankAdds(t *testing.T) {
	u := TensorSymbol("u", 3, 1)
	v := TensorSymbol("v", 3, 1)
	got, err := TensorSimpleOuterProduct(u, v)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Rank())
}
