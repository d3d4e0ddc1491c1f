package number

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPromotion(t *testing.T) {
	tests := []struct {
		name string
		a, b Number
		want Kind
	}{
		{"int+int", FromInt64(2), FromInt64(3), IntegerKind},
		{"int+rat", FromInt64(1), mustRat(t, 1, 2), RationalKind},
		{"rat+real", mustRat(t, 1, 2), FromFloat64(0.5), RealKind},
		{"int+real", FromInt64(1), FromFloat64(2.5), RealKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Add(tt.a, tt.b)
			assert.Equal(t, tt.want, got.Kind())
		})
	}
}

func TestAddOverflowPromotesToReal(t *testing.T) {
	got := Add(FromInt64(math.MaxInt64), FromInt64(1))
	require.Equal(t, RealKind, got.Kind())
	assert.InDelta(t, float64(math.MaxInt64)+1, got.Float64(), 1)
}

func TestDivExactIntegerStaysInteger(t *testing.T) {
	got, err := Div(FromInt64(6), FromInt64(3))
	require.NoError(t, err)
	assert.Equal(t, IntegerKind, got.Kind())
	assert.True(t, Equal(got, FromInt64(2)))
}

func TestDivInexactIntegerPromotesToRational(t *testing.T) {
	got, err := Div(FromInt64(1), FromInt64(3))
	require.NoError(t, err)
	assert.Equal(t, RationalKind, got.Kind())
}

func TestDivByZero(t *testing.T) {
	_, err := Div(FromInt64(1), FromInt64(0))
	require.Error(t, err)
}

func TestRationalReducesToInteger(t *testing.T) {
	got, err := FromRat(6, 3)
	require.NoError(t, err)
	assert.Equal(t, IntegerKind, got.Kind())
	assert.True(t, Equal(got, FromInt64(2)))
}

func TestPowIntegerNonNegativeStaysInteger(t *testing.T) {
	got, err := Pow(FromInt64(2), FromInt64(10))
	require.NoError(t, err)
	assert.Equal(t, IntegerKind, got.Kind())
	assert.True(t, Equal(got, FromInt64(1024)))
}

func TestPowNegativeExponentDemotesToRational(t *testing.T) {
	got, err := Pow(FromInt64(2), FromInt64(-1))
	require.NoError(t, err)
	assert.Equal(t, RationalKind, got.Kind())
}

func TestPowZeroZeroIsOne(t *testing.T) {
	got, err := Pow(FromInt64(0), FromInt64(0))
	require.NoError(t, err)
	assert.True(t, got.IsOne())
}

func TestEqualCrossVariant(t *testing.T) {
	assert.True(t, Equal(FromInt64(2), mustRat(t, 4, 2)))
	assert.True(t, Equal(mustRat(t, 1, 2), FromFloat64(0.5)))
}

func mustRat(t *testing.T, num, den int64) Number {
	t.Helper()
	n, err := FromRat(num, den)
	require.NoError(t, err)
	return n
}
