// Package hashkey implements the CAS core's stable structural hash
// (spec.md §4.3): a deterministic, non-cryptographic combine function
// used to key n-ary containers and to order commutative children for
// printing. Collisions are expected and must always be confirmed by a
// structural equality check at the call site; this package only
// promises stability and a good distribution, not uniqueness.
package hashkey

import (
	"hash/maphash"
	"math"
	"sort"
)

// Hash is a cached content hash. The zero Hash is a valid (if
// unlikely) hash value, not a sentinel "unset" marker — callers track
// "unset" separately (e.g. via a *Hash or a bool).
type Hash uint64

var seed = maphash.MakeSeed()

const fnvOffset Hash = 14695981039346656037
const fnvPrime Hash = 1099511628211

// Tag mixes a per-variant constant into a fresh hash, the starting
// point for every node's content hash.
func Tag(variant uint32) Hash {
	h := fnvOffset
	h = mixUint64(h, uint64(variant))
	return h
}

// MixOrdered folds hs into h in the given order, for non-commutative
// compound nodes (Pow, InnerProduct, OuterProduct, BasisChange, ...).
func MixOrdered(h Hash, hs ...Hash) Hash {
	for _, c := range hs {
		h = mixUint64(h, uint64(c))
	}
	return h
}

// MixUnordered folds hs into h after sorting, for commutative
// containers (Add, Mul, SimpleOuterProduct) so that insertion order
// never affects the resulting hash.
func MixUnordered(h Hash, hs ...Hash) Hash {
	sorted := make([]Hash, len(hs))
	copy(sorted, hs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return MixOrdered(h, sorted...)
}

// String mixes a string's bytes into h (names, permutation signatures).
func String(h Hash, s string) Hash {
	var mh maphash.Hash
	mh.SetSeed(seed)
	_, _ = mh.WriteString(s)
	return mixUint64(h, mh.Sum64())
}

// Int mixes an integer field (dim, rank, index position) into h.
func Int(h Hash, v int) Hash { return mixUint64(h, uint64(int64(v))) }

// Float64 mixes a float field into h via its bit pattern, so that NaN
// payloads and signed zero distinguish hashes exactly as they would
// distinguish equality checks upstream.
func Float64(h Hash, v float64) Hash { return mixUint64(h, math.Float64bits(v)) }

func mixUint64(h Hash, v uint64) Hash {
	h ^= Hash(v)
	h *= fnvPrime
	return h
}
