package tensorspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symtensor/tensorcas/assume"
)

func TestComposeMatchesSequentialApplication(t *testing.T) {
	p := Permutation{2, 1, 3} // swap 1,2
	q := Permutation{1, 3, 2} // swap 2,3
	got := Compose(p, q)
	assert.Equal(t, Permutation{2, 3, 1}, got)
}

func TestIdentityUnwraps(t *testing.T) {
	assert.True(t, Identity(4).IsIdentity())
	assert.False(t, Permutation{2, 1, 3, 4}.IsIdentity())
}

func TestValidatePermutationRejectsDuplicate(t *testing.T) {
	err := Permutation{1, 1, 3}.Validate()
	require.Error(t, err)
}

func TestValidateIndicesRejectsOutOfRange(t *testing.T) {
	require.Error(t, ValidateIndices([]int{1, 5}, 2))
	require.Error(t, ValidateIndices([]int{1, 1}, 2))
	require.NoError(t, ValidateIndices([]int{1, 2}, 2))
}

func TestComplementPairs(t *testing.T) {
	assert.Equal(t, Skew, Complement(Sym))
	assert.Equal(t, Dev, Complement(Vol))
}

func TestProjectorAnnihilates(t *testing.T) {
	symSpace := assume.Space{Perm: assume.SymmetricPerm}
	assert.True(t, Skew.Annihilates(symSpace))
	assert.False(t, Sym.Annihilates(symSpace))
	assert.True(t, Sym.Matches(symSpace))
}
