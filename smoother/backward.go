package smoother

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// smoothed carries the outcome of the backward pass: all-data marginals per
// slice and the lag-one cross-covariances the M-step needs for inter edges.
type smoothed struct {
	slices []belief    // p(x_t | y_{1:T}), index t−1
	cross  []*mat.Dense // cross[t−1] = Cov(x_t, x_{t+1} | y_{1:T}), nil for t = T
}

// backwardPass runs the Rauch-Tung-Striebel recursion over the filtered and
// predicted beliefs. rest.f is the shared transition of every slice ≥ 2;
// with a horizon of 1 the pass degenerates to the filtered belief.
func backwardPass(fw *forward, rest *sliceModel) (*smoothed, error) {
	horizon := len(fw.filt)
	n := fw.filt[0].mean.Len()
	sm := &smoothed{
		slices: make([]belief, horizon),
		cross:  make([]*mat.Dense, horizon),
	}
	sm.slices[horizon-1] = fw.filt[horizon-1]

	for t := horizon - 1; t >= 1; t-- {
		filt := fw.filt[t-1]  // p(x_t | y_{1:t})
		pred := fw.pred[t]    // p(x_{t+1} | y_{1:t})
		next := sm.slices[t]  // p(x_{t+1} | y_{1:T})

		// 1) Smoother gain G = P^f·Fᵀ·(P⁻)⁻¹, via Gᵀ = (P⁻)⁻¹·F·P^f.
		var chol mat.Cholesky
		if ok := chol.Factorize(pred.cov); !ok {
			return nil, fmt.Errorf("slice %d: %w: predictive covariance not positive definite", t+1, ErrSingular)
		}
		var fp mat.Dense
		fp.Mul(rest.f, filt.cov)
		gt := mat.NewDense(n, n, nil)
		if err := chol.SolveTo(gt, &fp); err != nil {
			return nil, fmt.Errorf("slice %d: %w: %v", t+1, ErrSingular, err)
		}
		g := mat.DenseCopyOf(gt.T())

		// 2) Mean: m^s = m^f + G·(m^s_{t+1} − m⁻_{t+1}).
		cur := newBelief(n)
		var dm mat.VecDense
		dm.SubVec(next.mean, pred.mean)
		cur.mean.MulVec(g, &dm)
		cur.mean.AddVec(filt.mean, cur.mean)

		// 3) Covariance: P^s = P^f + G·(P^s_{t+1} − P⁻_{t+1})·Gᵀ.
		var dp, gdp, gdpg mat.Dense
		dp.Sub(next.cov, pred.cov)
		gdp.Mul(g, &dp)
		gdpg.Mul(&gdp, g.T())
		cur.cov = symmetrize(&gdpg)
		cur.cov.AddSym(filt.cov, cur.cov)
		for i := 0; i < n; i++ {
			if v := cur.cov.At(i, i); v < 0 {
				if -v > varianceSlack {
					return nil, fmt.Errorf("slice %d: %w: negative smoothed variance %g", t, ErrSingular, v)
				}
				cur.cov.SetSym(i, i, 0)
			}
		}
		sm.slices[t-1] = cur

		// 4) Lag-one cross-covariance: Cov(x_t, x_{t+1}) = G·P^s_{t+1}.
		cross := mat.NewDense(n, n, nil)
		cross.Mul(g, next.cov)
		sm.cross[t-1] = cross
	}

	return sm, nil
}
