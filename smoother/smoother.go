// Package smoother declares the Run entry point, the Result type, and the
// engine's sentinel errors.
package smoother

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

var (
	// ErrSingular indicates a local elimination step whose information
	// matrix was not invertible (collinear parents, degenerate covariance).
	// Recoverable: the multi-restart driver discards the restart and moves
	// on. Branch with errors.Is.
	ErrSingular = errors.New("smoother: singular elimination")

	// ErrShape indicates dataset dimensions that do not match the unrolled
	// graph (row count vs horizon, column count vs N).
	ErrShape = errors.New("smoother: dataset shape mismatch")
)

// Result is one full inference pass: the observed-data log-likelihood, the
// all-data posterior marginal of every node at every time step, and the
// per-group sufficient statistics for the M-step.
type Result struct {
	// LogLik is log p(observed data | parameters).
	LogLik float64

	// Means[t][i] and Vars[t][i] are the posterior marginal of template
	// position i at time step t (0-based). A Present cell reports its own
	// value with variance exactly 0.
	Means [][]float64
	Vars  [][]float64

	// Stats[g] aggregates the expected sufficient statistics of group g.
	Stats []GroupStats
}

// Run performs one exact inference pass over the unrolled network under the
// current parameters: forward predict/condition per slice, backward RTS
// smoothing, then moment aggregation per parameter group.
//
// Cost: O(T·N³) time, O(T·N²) memory. The joint T·N covariance is never
// formed.
func Run(ug *unroll.Graph, store *lingauss.Store, data *dataset.Dataset) (*Result, error) {
	if data.T() != ug.Horizon() {
		return nil, fmt.Errorf("%w: %d rows for horizon %d", ErrShape, data.T(), ug.Horizon())
	}
	if data.N() != ug.N() {
		return nil, fmt.Errorf("%w: %d columns for %d template positions", ErrShape, data.N(), ug.N())
	}

	first, rest := compile(ug, store)

	fw, err := forwardPass(first, rest, data)
	if err != nil {
		return nil, err
	}

	var sm *smoothed
	if ug.Horizon() == 1 {
		sm = &smoothed{slices: fw.filt, cross: make([]*mat.Dense, 1)}
	} else {
		sm, err = backwardPass(fw, rest)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{
		LogLik: fw.loglik,
		Means:  make([][]float64, data.T()),
		Vars:   make([][]float64, data.T()),
		Stats:  accumulate(ug, sm),
	}
	for t := 0; t < data.T(); t++ {
		res.Means[t] = make([]float64, data.N())
		res.Vars[t] = make([]float64, data.N())
		for i := 0; i < data.N(); i++ {
			if v, ok := data.At(t, i).Value(); ok {
				// Evidence is exact: restate it verbatim.
				res.Means[t][i] = v

				continue
			}
			res.Means[t][i] = sm.slices[t].mean.AtVec(i)
			res.Vars[t][i] = sm.slices[t].cov.At(i, i)
		}
	}

	return res, nil
}
