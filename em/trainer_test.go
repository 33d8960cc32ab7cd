package em_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
	"github.com/luusitalo/BalticFoodwebModel/em"
	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/smoother"
	"github.com/luusitalo/BalticFoodwebModel/template"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

// syntheticRun builds a small hidden-driver model and a dataset sampled
// from known parameters: a persistent hidden state 0 driving an observed
// node 1 within each slice.
func syntheticRun(t *testing.T, horizon int, seed uint64) (*unroll.Graph, *dataset.Dataset) {
	t.Helper()

	tpl, err := template.New(2,
		[]template.Edge{{From: 0, To: 1}},
		[]template.Edge{{From: 0, To: 0}},
		[]int{1})
	require.NoError(t, err)
	ug, err := unroll.New(tpl, horizon)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(seed, 0))
	rows := make([][]dataset.Cell, horizon)
	hidden := rng.NormFloat64()
	for step := 0; step < horizon; step++ {
		if step > 0 {
			hidden = 0.9*hidden + 0.3*rng.NormFloat64()
		}
		obs := 1.5*hidden + 0.2 + 0.1*rng.NormFloat64()
		cell := dataset.Present(obs)
		if step%7 == 3 { // sprinkle missing cells
			cell = dataset.Missing
		}
		rows[step] = []dataset.Cell{dataset.Missing, cell}
	}
	data, err := dataset.New(rows, 2)
	require.NoError(t, err)

	return ug, data
}

// TestRun_MonotoneTrace asserts EM monotonicity: within one run every
// logged iteration improves on the previous one, up to numeric tolerance.
func TestRun_MonotoneTrace(t *testing.T) {
	ug, data := syntheticRun(t, 40, 11)

	store := lingauss.NewStore(ug.GroupArity())
	store.Init(rand.NewPCG(3, 0))

	tr := em.New(ug, data, store, em.WithMaxIter(60), em.WithTolerance(1e-8))
	assert.Equal(t, em.Initializing, tr.State())

	res, err := tr.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, em.Converged, tr.State())
	require.GreaterOrEqual(t, len(res.Trace), 2)

	const epsilon = 1e-6
	for i := 1; i < len(res.Trace); i++ {
		assert.GreaterOrEqual(t, res.Trace[i], res.Trace[i-1]-epsilon,
			"iteration %d decreased the log-likelihood", i)
	}
	assert.Equal(t, res.Trace[len(res.Trace)-1], res.Final())
}

// TestRun_CapIsNotAnError: hitting the iteration cap completes the run with
// the did-not-converge flag, not an error.
func TestRun_CapIsNotAnError(t *testing.T) {
	ug, data := syntheticRun(t, 25, 5)
	store := lingauss.NewStore(ug.GroupArity())
	store.Init(rand.NewPCG(1, 0))

	tr := em.New(ug, data, store, em.WithMaxIter(2), em.WithTolerance(1e-15))
	res, err := tr.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, em.Converged, tr.State())
	assert.False(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
	assert.Len(t, res.Trace, 2)
}

// TestRun_SingularFails: perfectly collinear parents make the M-step's
// normal equations singular; the trainer moves to Failed and propagates the
// singularity with the iteration index.
func TestRun_SingularFails(t *testing.T) {
	tpl, err := template.New(3,
		[]template.Edge{{From: 0, To: 2}, {From: 1, To: 2}},
		nil,
		[]int{0, 1, 2})
	require.NoError(t, err)
	ug, err := unroll.New(tpl, 4)
	require.NoError(t, err)

	// Both parents constant: their columns are collinear with the
	// intercept column of the normal equations.
	rows := make([][]dataset.Cell, 4)
	for step := range rows {
		rows[step] = []dataset.Cell{
			dataset.Present(1.0), dataset.Present(1.0), dataset.Present(float64(step)),
		}
	}
	data, err := dataset.New(rows, 3)
	require.NoError(t, err)

	store := lingauss.NewStore(ug.GroupArity())
	store.Init(rand.NewPCG(2, 0))

	tr := em.New(ug, data, store)
	_, err = tr.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, smoother.ErrSingular)
	assert.Equal(t, em.Failed, tr.State())
	assert.Contains(t, err.Error(), "iteration 1")
}

// TestRun_ContextCancel stops the loop between iterations.
func TestRun_ContextCancel(t *testing.T) {
	ug, data := syntheticRun(t, 10, 9)
	store := lingauss.NewStore(ug.GroupArity())
	store.Init(rand.NewPCG(4, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := em.New(ug, data, store).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestOptions_IgnoreInvalid keeps the documented defaults for non-positive
// overrides.
func TestOptions_IgnoreInvalid(t *testing.T) {
	o := em.DefaultOptions()
	em.WithMaxIter(-1)(&o)
	em.WithTolerance(0)(&o)
	assert.Equal(t, em.DefaultMaxIter, o.MaxIter)
	assert.Equal(t, em.DefaultTolerance, o.Tolerance)
}
