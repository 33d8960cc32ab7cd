// Package template declares the Node, Edge, Role and Graph types, the
// sentinel errors of template construction, and the functional options
// accepted by New.
package template

import "errors"

var (
	// ErrNoNodes is returned when New is called with n < 1.
	ErrNoNodes = errors.New("template: node count must be at least 1")

	// ErrNodeOutOfRange indicates an edge endpoint, observed index, or name
	// list that references a node index outside [0, n).
	ErrNodeOutOfRange = errors.New("template: node index out of range")

	// ErrDuplicateEdge indicates the same (from, to) pair was declared twice
	// within the intra set or within the inter set.
	ErrDuplicateEdge = errors.New("template: duplicate edge")

	// ErrIntraCycle indicates the intra-slice edges contain a directed cycle;
	// the slice-internal structure must be a DAG.
	ErrIntraCycle = errors.New("template: intra-slice cycle")
)

// Role marks whether a template position is observable in the dataset.
type Role uint8

const (
	// Hidden positions are never observed; every cell of their column is
	// Missing by construction.
	Hidden Role = iota

	// Observed positions carry data, though individual cells may still be
	// Missing at specific times.
	Observed
)

// String returns "Hidden" or "Observed".
func (r Role) String() string {
	if r == Observed {
		return "Observed"
	}

	return "Hidden"
}

// Edge is a parent→child pair of template positions. For intra edges both
// endpoints live in the same slice; for inter edges From lives in slice t and
// To in slice t+1.
type Edge struct {
	From int
	To   int
}

// Node is one template position. Group ids are assigned by New and are
// immutable for the lifetime of the Graph.
type Node struct {
	// Index is the position of this node in [0, N).
	Index int

	// Name is a human-readable label ("cod", "sprat", ...). Defaults to the
	// decimal index unless WithNames overrides it.
	Name string

	// Role marks the node Observed or Hidden.
	Role Role

	// GroupSlice1 is the parameter group of the node's slice-1 instance.
	GroupSlice1 int

	// GroupSlice2 is the parameter group shared by all slice-≥2 instances.
	GroupSlice2 int
}

// Graph is a validated two-slice template. Construct with New; the zero
// value is not usable.
type Graph struct {
	nodes []Node
	intra []Edge
	inter []Edge

	// intraParents[i] lists the intra-slice parents of node i in edge
	// declaration order; interParents[i] likewise for inter edges.
	intraParents [][]int
	interParents [][]int

	// topo is a topological order of the intra-slice DAG, fixed at
	// construction.
	topo []int
}

// Option configures optional aspects of New.
type Option func(*options)

type options struct {
	names []string
}

// WithNames returns an Option that assigns human-readable node names.
// The slice must have exactly n entries; New fails with ErrNodeOutOfRange
// otherwise.
func WithNames(names []string) Option {
	return func(o *options) {
		o.names = names
	}
}
