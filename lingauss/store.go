package lingauss

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// MinVariance is the floor applied to every noise variance, both at Init and
// on Set. Grounds out degenerate M-step estimates before they can make a
// forward elimination singular.
const MinVariance = 1e-8

// DefaultVariance is the noise variance every group starts from at Init.
const DefaultVariance = 1.0

// ErrArityMismatch indicates a Set call whose weight vector length differs
// from the group's fixed parent count.
var ErrArityMismatch = errors.New("lingauss: weight arity mismatch")

// ErrUnknownGroup indicates a group id outside the store.
var ErrUnknownGroup = errors.New("lingauss: unknown group")

// Group is the parameter set of one equivalence class of unrolled nodes:
// one regression weight per parent (in the unrolled graph's parent order),
// an intercept, and a scalar noise variance.
type Group struct {
	Weights   []float64
	Intercept float64
	Variance  float64
}

// clone returns a deep copy of g.
func (g Group) clone() Group {
	g.Weights = append([]float64(nil), g.Weights...)

	return g
}

// Store holds one Group per group id. Build with NewStore; arities are
// immutable afterwards.
type Store struct {
	groups []Group
}

// NewStore allocates a store for the given per-group arities (one entry per
// group id, as produced by unroll.Graph.GroupArity; a negative arity marks a
// memberless group and gets no weights). All parameters start at zero with
// DefaultVariance.
func NewStore(arity []int) *Store {
	groups := make([]Group, len(arity))
	for id, k := range arity {
		if k < 0 {
			k = 0
		}
		groups[id] = Group{
			Weights:  make([]float64, k),
			Variance: DefaultVariance,
		}
	}

	return &Store{groups: groups}
}

// Init redraws every weight and intercept i.i.d. from a standard normal
// using src, and resets every variance to DefaultVariance. Each restart of
// the optimizer calls Init with its own independent stream.
func (s *Store) Init(src rand.Source) {
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	for id := range s.groups {
		g := &s.groups[id]
		for j := range g.Weights {
			g.Weights[j] = norm.Rand()
		}
		g.Intercept = norm.Rand()
		g.Variance = DefaultVariance
	}
}

// NumGroups returns the number of groups held.
func (s *Store) NumGroups() int { return len(s.groups) }

// Group returns a copy of the parameters of group id. Panics on an
// out-of-range id, mirroring slice semantics.
func (s *Store) Group(id int) Group { return s.groups[id].clone() }

// Set atomically replaces the parameters of group id. The M-step is the only
// intended caller. The variance is floored at MinVariance.
func (s *Store) Set(id int, g Group) error {
	if id < 0 || id >= len(s.groups) {
		return fmt.Errorf("%w: id=%d", ErrUnknownGroup, id)
	}
	if len(g.Weights) != len(s.groups[id].Weights) {
		return fmt.Errorf("%w: group %d has arity %d, got %d",
			ErrArityMismatch, id, len(s.groups[id].Weights), len(g.Weights))
	}
	if g.Variance < MinVariance {
		g.Variance = MinVariance
	}
	s.groups[id] = g.clone()

	return nil
}

// Clone returns a deep copy of the store. Training snapshots the winning
// restart's parameters this way.
func (s *Store) Clone() *Store {
	groups := make([]Group, len(s.groups))
	for id := range s.groups {
		groups[id] = s.groups[id].clone()
	}

	return &Store{groups: groups}
}
