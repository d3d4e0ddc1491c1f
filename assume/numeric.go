// Package assume implements the CAS core's assumption store: the
// numeric predicate lattice of spec.md §4.4 plus the tensor-space
// lattice of §4.8. Structurally this is the nearest thing the core has
// to the teacher's config.Config — a small, mutation-tracked side
// table attached to otherwise-immutable values — except here one
// instance is embedded per expression node rather than shared globally.
package assume

import "sync"

// NumericTag is one predicate from the scalar assumption vocabulary of
// spec.md §4.4, grounded on the original's assumptions.h tag structs
// (positive, negative, nonzero, ...).
type NumericTag uint32

const (
	Positive NumericTag = 1 << iota
	Negative
	Nonzero
	Nonnegative
	Nonpositive
	Integer
	Even
	Odd
	Rational
	Irrational
	Real
	Complex
	Prime
)

var allNumericTags = []NumericTag{
	Positive, Negative, Nonzero, Nonnegative, Nonpositive, Integer, Even,
	Odd, Rational, Irrational, Real, Complex, Prime,
}

func (t NumericTag) String() string {
	switch t {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	case Nonzero:
		return "nonzero"
	case Nonnegative:
		return "nonnegative"
	case Nonpositive:
		return "nonpositive"
	case Integer:
		return "integer"
	case Even:
		return "even"
	case Odd:
		return "odd"
	case Rational:
		return "rational"
	case Irrational:
		return "irrational"
	case Real:
		return "real"
	case Complex:
		return "complex"
	case Prime:
		return "prime"
	default:
		return "unknown"
	}
}

// implications lists the direct (non-transitive) implications of
// spec.md §4.4. Close computes the transitive closure.
var implications = map[NumericTag][]NumericTag{
	Positive:    {Nonnegative, Nonzero, Real},
	Negative:    {Nonpositive, Nonzero, Real},
	Nonnegative: {Real},
	Nonpositive: {Real},
	Integer:     {Rational, Real},
	Even:        {Integer, Rational, Real},
	Odd:         {Integer, Rational, Real},
	Prime:       {Integer, Positive, Nonzero, Rational, Real},
	Rational:    {Real},
}

// Close returns the transitive implication closure of a set of tags.
func Close(set NumericTag) NumericTag {
	for {
		next := set
		for tag, implied := range implications {
			if set&tag == 0 {
				continue
			}
			for _, im := range implied {
				next |= im
			}
		}
		if next == set {
			return set
		}
		set = next
	}
}

// NumericSet is a mutation-tracked set of NumericTags attached to one
// expression node. The zero value is an empty, non-inferred set.
//
// Per spec.md §5, the cache update and the "inferred" flag must be
// published atomically so concurrent readers never see a partially
// filled set; a mutex gives that without requiring eager fill at
// construction (the teacher's config.Config has no analogous shared
// mutable state, so this is grounded directly on spec.md §5 rather
// than on teacher code — no ecosystem lock-free structure in the pack
// fits a single small flag+bitmask pair better than sync.Mutex).
type NumericSet struct {
	mu       sync.Mutex
	tags     NumericTag
	inferred bool
}

// Assume adds tag and its implication closure, as a user-level
// assumption. Per the Open Question in spec.md §9, this invalidates
// the inferred flag: later propagator runs may re-derive more from the
// wider set and are idempotent when re-run.
func (s *NumericSet) Assume(tag NumericTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = Close(s.tags | tag)
	s.inferred = false
}

// Remove removes tag only (not its implications: removal is a narrow,
// explicit user action, never a cascading one) and invalidates the
// inferred flag.
func (s *NumericSet) Remove(tag NumericTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags &^= tag
	s.inferred = false
}

// Has reports whether tag (or something implying it) is set.
func (s *NumericSet) Has(tag NumericTag) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags&tag != 0
}

// Snapshot returns the current raw tag bitmask and whether propagation
// has already run and been cached.
func (s *NumericSet) Snapshot() (NumericTag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags, s.inferred
}

// MergeInferred grows the set monotonically with propagator-derived
// tags and marks it inferred. Never removes a tag: propagation is
// monotonic per spec.md §3.5.
func (s *NumericSet) MergeInferred(tags NumericTag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = Close(s.tags | tags)
	s.inferred = true
}

// MarkInferredEmpty records that propagation ran and derived nothing
// new, without needing a tag argument.
func (s *NumericSet) MarkInferredEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inferred = true
}
