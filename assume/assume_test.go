package assume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloseTransitive(t *testing.T) {
	closed := Close(Prime)
	for _, want := range []NumericTag{Integer, Positive, Nonzero, Rational, Real} {
		assert.True(t, closed&want != 0, "Prime should imply %s", want)
	}
}

func TestNumericSetAssumeInvalidatesInferred(t *testing.T) {
	var s NumericSet
	s.MergeInferred(Real)
	_, inferred := s.Snapshot()
	assert.True(t, inferred)

	s.Assume(Positive)
	tags, inferred := s.Snapshot()
	assert.False(t, inferred)
	assert.True(t, tags&Positive != 0)
	assert.True(t, tags&Nonnegative != 0, "Positive implies Nonnegative")
}

func TestJoinPerm(t *testing.T) {
	assert.Equal(t, AnyPerm, JoinPerm(SymmetricPerm, SkewPerm))
	assert.Equal(t, SymmetricPerm, JoinPerm(SymmetricPerm, SymmetricPerm))
	assert.Equal(t, AnyPerm, JoinPerm(AnyPerm, SymmetricPerm))
}

func TestSpaceSetMergeInferredDoesNotOverwrite(t *testing.T) {
	var s SpaceSet
	s.Assume(Space{Perm: SymmetricPerm})
	s.MergeInferred(Space{Perm: SkewPerm, Trace: DeviatoricTrace})
	sp, _ := s.Snapshot()
	assert.Equal(t, SymmetricPerm, sp.Perm, "user assumption must not be overwritten by inference")
	assert.Equal(t, DeviatoricTrace, sp.Trace)
}
