package template_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luusitalo/BalticFoodwebModel/template"
)

// TestNew_AssignsRolesAndNames verifies basic construction with observed
// indices and explicit names.
func TestNew_AssignsRolesAndNames(t *testing.T) {
	g, err := template.New(3,
		[]template.Edge{{From: 0, To: 1}, {From: 0, To: 2}},
		[]template.Edge{{From: 0, To: 0}},
		[]int{1, 2},
		template.WithNames([]string{"zoo", "herring", "sprat"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, g.N())
	assert.Equal(t, template.Hidden, g.Node(0).Role)
	assert.Equal(t, template.Observed, g.Node(1).Role)
	assert.Equal(t, template.Observed, g.Node(2).Role)
	assert.Equal(t, "zoo", g.Node(0).Name)
	assert.Equal(t, "sprat", g.Node(2).Name)
}

// TestNew_DefaultNamesAreIndices checks the decimal-index fallback.
func TestNew_DefaultNamesAreIndices(t *testing.T) {
	g, err := template.New(2, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "0", g.Node(0).Name)
	assert.Equal(t, "1", g.Node(1).Name)
}

// TestNew_GroupIDs verifies the equivalence-class invariant: every position
// owns two distinct groups, slice-1 ids are never shared with slice-≥2 ids,
// and ids are deterministic.
func TestNew_GroupIDs(t *testing.T) {
	g, err := template.New(3, nil, []template.Edge{{From: 1, To: 1}}, nil)
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := 0; i < g.N(); i++ {
		n := g.Node(i)
		assert.Equal(t, i, n.GroupSlice1)
		assert.Equal(t, g.N()+i, n.GroupSlice2)
		assert.NotEqual(t, n.GroupSlice1, n.GroupSlice2)
		assert.False(t, seen[n.GroupSlice1])
		assert.False(t, seen[n.GroupSlice2])
		seen[n.GroupSlice1] = true
		seen[n.GroupSlice2] = true
	}
	assert.Equal(t, 2*g.N(), g.NumGroups())
}

// TestNew_IntraCycle rejects a directed cycle within one slice.
func TestNew_IntraCycle(t *testing.T) {
	_, err := template.New(3,
		[]template.Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 0}},
		nil, nil)
	assert.ErrorIs(t, err, template.ErrIntraCycle)
}

// TestNew_InterCyclesPermitted allows temporal cycles, including
// self-persistence edges, in the inter set.
func TestNew_InterCyclesPermitted(t *testing.T) {
	_, err := template.New(2, nil,
		[]template.Edge{{From: 0, To: 0}, {From: 0, To: 1}, {From: 1, To: 0}},
		nil)
	assert.NoError(t, err)
}

// TestNew_Validation covers the remaining constructor failures.
func TestNew_Validation(t *testing.T) {
	_, err := template.New(0, nil, nil, nil)
	assert.ErrorIs(t, err, template.ErrNoNodes)

	_, err = template.New(2, []template.Edge{{From: 0, To: 2}}, nil, nil)
	assert.ErrorIs(t, err, template.ErrNodeOutOfRange)

	_, err = template.New(2, nil, []template.Edge{{From: -1, To: 0}}, nil)
	assert.ErrorIs(t, err, template.ErrNodeOutOfRange)

	_, err = template.New(2, nil, nil, []int{2})
	assert.ErrorIs(t, err, template.ErrNodeOutOfRange)

	_, err = template.New(2,
		[]template.Edge{{From: 0, To: 1}, {From: 0, To: 1}}, nil, nil)
	assert.ErrorIs(t, err, template.ErrDuplicateEdge)

	_, err = template.New(2, nil, nil, nil, template.WithNames([]string{"only-one"}))
	assert.ErrorIs(t, err, template.ErrNodeOutOfRange)

	// Sentinels stay distinguishable through wrapping.
	_, err = template.New(3,
		[]template.Edge{{From: 0, To: 1}, {From: 1, To: 0}}, nil, nil)
	assert.True(t, errors.Is(err, template.ErrIntraCycle))
	assert.False(t, errors.Is(err, template.ErrNodeOutOfRange))
}

// TestTopoOrder_ParentsFirst checks that every intra parent precedes its
// children in the construction-time order.
func TestTopoOrder_ParentsFirst(t *testing.T) {
	intra := []template.Edge{
		{From: 3, To: 1}, {From: 1, To: 0}, {From: 3, To: 2}, {From: 2, To: 0},
	}
	g, err := template.New(4, intra, nil, nil)
	require.NoError(t, err)

	pos := make(map[int]int)
	for rank, id := range g.TopoOrder() {
		pos[id] = rank
	}
	require.Len(t, pos, 4)
	for _, e := range intra {
		assert.Less(t, pos[e.From], pos[e.To],
			"parent %d must precede child %d", e.From, e.To)
	}
}

// TestParents_PreserveDeclarationOrder pins the weight-vector layout
// contract.
func TestParents_PreserveDeclarationOrder(t *testing.T) {
	g, err := template.New(4,
		[]template.Edge{{From: 2, To: 0}, {From: 1, To: 0}},
		[]template.Edge{{From: 3, To: 0}, {From: 1, To: 0}},
		nil)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 1}, g.IntraParents(0))
	assert.Equal(t, []int{3, 1}, g.InterParents(0))
}
