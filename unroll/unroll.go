// Package unroll declares the unrolled-network types and the New expansion.
package unroll

import (
	"errors"
	"fmt"

	"github.com/luusitalo/BalticFoodwebModel/template"
)

// ErrBadHorizon is returned by New when the requested horizon is below 1.
var ErrBadHorizon = errors.New("unroll: horizon must be at least 1")

// Parent identifies one parent of an unrolled node. Lag 0 means the parent
// lives in the same slice as the child, Lag 1 in the immediately preceding
// slice. No other lags exist in a two-slice template.
type Parent struct {
	// Template is the parent's template position.
	Template int

	// Lag is 0 (intra) or 1 (inter).
	Lag int
}

// Node is one instantiated variable of the temporal network.
type Node struct {
	// Template is the template position this node instantiates.
	Template int

	// Slice is the 1-based time step of this node.
	Slice int

	// Group is the parameter group the node draws its conditional from:
	// the template position's slice-1 group when Slice == 1, its shared
	// slice-≥2 group otherwise.
	Group int

	// Parents lists the node's parents: intra parents first, then inter
	// parents, each set in template declaration order. Empty for roots.
	Parents []Parent
}

// Graph is the template unrolled over a fixed horizon.
type Graph struct {
	tpl     *template.Graph
	horizon int
	nodes   []Node
}

// New instantiates tpl across horizon slices. Slice 1 nodes receive intra
// parents only; every later slice receives intra parents plus inter parents
// from the previous slice. Fails with ErrBadHorizon when horizon < 1.
func New(tpl *template.Graph, horizon int) (*Graph, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: T=%d", ErrBadHorizon, horizon)
	}

	n := tpl.N()
	nodes := make([]Node, 0, horizon*n)
	for t := 1; t <= horizon; t++ {
		for i := 0; i < n; i++ {
			tn := tpl.Node(i)
			node := Node{
				Template: i,
				Slice:    t,
				Group:    tn.GroupSlice1,
			}
			for _, p := range tpl.IntraParents(i) {
				node.Parents = append(node.Parents, Parent{Template: p, Lag: 0})
			}
			if t > 1 {
				node.Group = tn.GroupSlice2
				for _, p := range tpl.InterParents(i) {
					node.Parents = append(node.Parents, Parent{Template: p, Lag: 1})
				}
			}
			nodes = append(nodes, node)
		}
	}

	return &Graph{tpl: tpl, horizon: horizon, nodes: nodes}, nil
}

// Template returns the template this graph was unrolled from.
func (g *Graph) Template() *template.Graph { return g.tpl }

// Horizon returns the number of slices T.
func (g *Graph) Horizon() int { return g.horizon }

// N returns the number of template positions per slice.
func (g *Graph) N() int { return g.tpl.N() }

// Len returns the total node count T·N.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the instantiated node at template position i, slice t
// (1-based). Panics on out-of-range arguments, mirroring slice semantics.
func (g *Graph) Node(i, t int) Node { return g.nodes[(t-1)*g.tpl.N()+i] }

// Nodes returns all instantiated nodes, slice-major: slice 1 first, template
// order within each slice. The returned slice must not be mutated.
func (g *Graph) Nodes() []Node { return g.nodes }

// NumEdges returns the total replicated edge count:
// |intra|·T + |inter|·(T−1).
func (g *Graph) NumEdges() int {
	total := 0
	for _, node := range g.nodes {
		total += len(node.Parents)
	}

	return total
}

// GroupArity returns the parent count (weight-vector length) of every
// parameter group, indexed by group id. Groups with no member node in this
// graph report -1; with a horizon ≥ 2 every group of the template has at
// least one member.
func (g *Graph) GroupArity() []int {
	arity := make([]int, g.tpl.NumGroups())
	for i := range arity {
		arity[i] = -1
	}
	for _, node := range g.nodes {
		arity[node.Group] = len(node.Parents)
	}

	return arity
}
