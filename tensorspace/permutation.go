package tensorspace

import (
	"sort"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/symtensor/tensorcas/caserr"
)

// Permutation is a 1-based index permutation of a tensor's free
// indices, matching the public 1-based convention spec.md §9 settles
// on (the original mixes 0- and 1-based sequences internally; this
// core normalizes to 1-based everywhere outside the kernel boundary).
type Permutation []int

// Identity returns the identity permutation of rank n.
func Identity(n int) Permutation {
	p := make(Permutation, n)
	for i := range p {
		p[i] = i + 1
	}
	return p
}

// IsIdentity reports whether p is the identity permutation.
func (p Permutation) IsIdentity() bool {
	for i, v := range p {
		if v != i+1 {
			return false
		}
	}
	return true
}

// Validate checks that p is a permutation of 1..len(p).
func (p Permutation) Validate() error {
	seen := make([]bool, len(p)+1)
	for _, v := range p {
		if v < 1 || v > len(p) || seen[v] {
			return caserr.New(caserr.IndexError, "Permutation.Validate", "invalid permutation entry %d for rank %d", v, len(p))
		}
		seen[v] = true
	}
	return nil
}

// Compose returns the permutation equivalent to applying inner first,
// then outer: Compose(outer, inner)[i] = outer[inner[i]-1]. This
// backs §4.5.7's BasisChange(BasisChange(t, p), q) = BasisChange(t, p
// o q) composition law.
func Compose(outer, inner Permutation) Permutation {
	result := make(Permutation, len(inner))
	for i, v := range inner {
		result[i] = outer[v-1]
	}
	return result
}

// Equal reports structural equality of two permutations.
func Equal(a, b Permutation) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidateIndices checks that a contraction index sequence references
// valid, distinct 1-based positions on a rank-`rank` tensor, and that
// its length does not exceed what combin.Binomial reports as a
// feasible subset size for that rank (a contraction can name at most
// `rank` of a tensor's own indices).
func ValidateIndices(indices []int, rank int) error {
	if len(indices) > rank || combin.Binomial(rank, len(indices)) == 0 {
		return caserr.New(caserr.IndexError, "ValidateIndices", "index sequence of length %d infeasible for rank %d", len(indices), rank)
	}
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > rank {
			return caserr.New(caserr.IndexError, "ValidateIndices", "index %d out of range for rank %d", idx, rank)
		}
		if seen[idx] {
			return caserr.New(caserr.IndexError, "ValidateIndices", "duplicate index %d", idx)
		}
		seen[idx] = true
	}
	return nil
}

// SortedCopy returns a sorted copy of indices, used when an index
// sequence's order shouldn't affect rank bookkeeping (only its set
// membership matters, e.g. when removing contracted positions from a
// parent index list).
func SortedCopy(indices []int) []int {
	out := make([]int, len(indices))
	copy(out, indices)
	sort.Ints(out)
	return out
}

// RemainingIndices returns 1..rank with the contracted positions
// removed, in ascending order, the index set that survives a
// contraction on one side of an InnerProduct.
func RemainingIndices(rank int, contracted []int) []int {
	drop := make(map[int]bool, len(contracted))
	for _, c := range contracted {
		drop[c] = true
	}
	out := make([]int, 0, rank-len(contracted))
	for i := 1; i <= rank; i++ {
		if !drop[i] {
			out = append(out, i)
		}
	}
	return out
}
