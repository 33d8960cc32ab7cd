package template

import (
	"fmt"
	"strconv"
)

// New validates the two-slice structure and returns an immutable Graph.
//
// Arguments:
//   - n: number of template positions (columns of the dataset).
//   - intra: parent→child edges within one slice; must form a DAG.
//   - inter: parent in slice t → child in slice t+1; temporal cycles are fine.
//   - observed: indices of Observed-role positions; the rest are Hidden.
//
// Group ids are assigned deterministically: position i owns group i for its
// slice-1 instance and group n+i for all its slice-≥2 instances. The store
// built from an unrolled graph therefore always holds exactly 2n groups.
//
// Complexity: O(n + E) time and memory (E = |intra| + |inter|).
func New(n int, intra, inter []Edge, observed []int, opts ...Option) (*Graph, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d", ErrNoNodes, n)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.names != nil && len(o.names) != n {
		return nil, fmt.Errorf("%w: %d names for %d nodes", ErrNodeOutOfRange, len(o.names), n)
	}

	// 1) Range-check and deduplicate both edge sets.
	if err := checkEdges("intra", intra, n); err != nil {
		return nil, err
	}
	if err := checkEdges("inter", inter, n); err != nil {
		return nil, err
	}

	// 2) Range-check the observed set and record roles.
	roles := make([]Role, n)
	for _, idx := range observed {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: observed index %d (n=%d)", ErrNodeOutOfRange, idx, n)
		}
		roles[idx] = Observed
	}

	// 3) Build per-node parent lists, preserving declaration order. The
	//    order is load-bearing: it fixes the layout of every parameter
	//    group's weight vector.
	intraParents := make([][]int, n)
	for _, e := range intra {
		intraParents[e.To] = append(intraParents[e.To], e.From)
	}
	interParents := make([][]int, n)
	for _, e := range inter {
		interParents[e.To] = append(interParents[e.To], e.From)
	}

	// 4) Verify the intra-slice structure is a DAG and fix a topological
	//    order (Kahn). Inter edges are exempt: they always point forward in
	//    time, so any cycle through them is unrolled away.
	topo, err := topoSort(n, intraParents)
	if err != nil {
		return nil, err
	}

	// 5) Materialize nodes with immutable group ids.
	nodes := make([]Node, n)
	for i := range nodes {
		name := strconv.Itoa(i)
		if o.names != nil {
			name = o.names[i]
		}
		nodes[i] = Node{
			Index:       i,
			Name:        name,
			Role:        roles[i],
			GroupSlice1: i,
			GroupSlice2: n + i,
		}
	}

	return &Graph{
		nodes:        nodes,
		intra:        append([]Edge(nil), intra...),
		inter:        append([]Edge(nil), inter...),
		intraParents: intraParents,
		interParents: interParents,
		topo:         topo,
	}, nil
}

// checkEdges rejects out-of-range endpoints and duplicate declarations.
func checkEdges(kind string, edges []Edge, n int) error {
	seen := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		if e.From < 0 || e.From >= n || e.To < 0 || e.To >= n {
			return fmt.Errorf("%w: %s edge %d→%d (n=%d)", ErrNodeOutOfRange, kind, e.From, e.To, n)
		}
		if _, dup := seen[e]; dup {
			return fmt.Errorf("%w: %s edge %d→%d", ErrDuplicateEdge, kind, e.From, e.To)
		}
		seen[e] = struct{}{}
	}

	return nil
}

// topoSort runs Kahn's algorithm over the intra-slice DAG. parents[i] lists
// the intra parents of i; the returned order places every parent before its
// children. Returns ErrIntraCycle when some nodes never reach in-degree zero.
func topoSort(n int, parents [][]int) ([]int, error) {
	// In-degree per node, and a child adjacency for decrementing.
	indeg := make([]int, n)
	children := make([][]int, n)
	for child, ps := range parents {
		indeg[child] = len(ps)
		for _, p := range ps {
			children[p] = append(children[p], child)
		}
	}

	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		order = append(order, v)
		for _, c := range children[v] {
			indeg[c]--
			if indeg[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if len(order) != n {
		// Name one node still on a cycle so the failure is reproducible.
		for i := 0; i < n; i++ {
			if indeg[i] > 0 {
				return nil, fmt.Errorf("%w: node %d", ErrIntraCycle, i)
			}
		}
	}

	return order, nil
}

// N returns the number of template positions.
func (g *Graph) N() int { return len(g.nodes) }

// Node returns the template position at index i. Panics if i is out of
// range, mirroring slice semantics.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Nodes returns a copy of all template positions in index order.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// IntraEdges returns a copy of the intra-slice edge set in declaration order.
func (g *Graph) IntraEdges() []Edge { return append([]Edge(nil), g.intra...) }

// InterEdges returns a copy of the cross-slice edge set in declaration order.
func (g *Graph) InterEdges() []Edge { return append([]Edge(nil), g.inter...) }

// IntraParents returns the intra-slice parents of node i in declaration
// order. The returned slice must not be mutated.
func (g *Graph) IntraParents(i int) []int { return g.intraParents[i] }

// InterParents returns the previous-slice parents of node i in declaration
// order. The returned slice must not be mutated.
func (g *Graph) InterParents(i int) []int { return g.interParents[i] }

// TopoOrder returns a topological order of the intra-slice DAG: every intra
// parent appears before its children. The order is fixed at construction.
func (g *Graph) TopoOrder() []int { return append([]int(nil), g.topo...) }

// NumGroups returns the total number of parameter groups (2·N: one slice-1
// group and one slice-≥2 group per position).
func (g *Graph) NumGroups() int { return 2 * len(g.nodes) }
