package smoother

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
)

const log2Pi = 1.8378770664093453 // ln(2π)

// belief is one slice's Gaussian state: mean and covariance of x_t given
// some prefix of the evidence.
type belief struct {
	mean *mat.VecDense
	cov  *mat.SymDense
}

func newBelief(n int) belief {
	return belief{mean: mat.NewVecDense(n, nil), cov: mat.NewSymDense(n, nil)}
}

// forward holds the per-slice quantities of the filtering pass that the
// backward smoother consumes.
type forward struct {
	pred   []belief // p(x_t | y_{1:t−1}), index t−1
	filt   []belief // p(x_t | y_{1:t}),   index t−1
	loglik float64
}

// forwardPass filters slice by slice: predict from the previous filtered
// belief, then condition exactly on the slice's present cells, accumulating
// the observed-data log-likelihood from each slice's predictive density.
func forwardPass(first, rest *sliceModel, data *dataset.Dataset) (*forward, error) {
	horizon := data.T()
	n := data.N()
	fw := &forward{
		pred: make([]belief, horizon),
		filt: make([]belief, horizon),
	}

	for t := 1; t <= horizon; t++ {
		// 1) Predict.
		pred := newBelief(n)
		if t == 1 {
			pred.mean.CopyVec(first.d)
			pred.cov.CopySym(first.q)
		} else {
			prev := fw.filt[t-2]
			pred.mean.MulVec(rest.f, prev.mean)
			pred.mean.AddVec(pred.mean, rest.d)

			var fp, fpf mat.Dense
			fp.Mul(rest.f, prev.cov)
			fpf.Mul(&fp, rest.f.T())
			pred.cov = symmetrize(&fpf)
			pred.cov.AddSym(pred.cov, rest.q)
		}
		fw.pred[t-1] = pred

		// 2) Collect the slice's evidence: indices and values of present cells.
		var obs []int
		var y []float64
		for i := 0; i < n; i++ {
			if v, ok := data.At(t-1, i).Value(); ok {
				obs = append(obs, i)
				y = append(y, v)
			}
		}

		// 3) Condition. A fully missing slice passes the prediction through.
		if len(obs) == 0 {
			fw.filt[t-1] = pred

			continue
		}
		filt, ll, err := condition(pred, obs, y)
		if err != nil {
			return nil, fmt.Errorf("slice %d: %w", t, err)
		}
		fw.filt[t-1] = filt
		fw.loglik += ll

	}

	return fw, nil
}

// condition folds exact evidence y over the index set obs into the Gaussian
// prior, returning the posterior belief and the log density of the evidence
// under the prior's marginal. Observed entries come out with mean exactly y
// and variance exactly 0.
func condition(prior belief, obs []int, y []float64) (belief, float64, error) {
	n := prior.mean.Len()
	k := len(obs)

	// 1) Marginal of the observed block, and its Cholesky factor. A failed
	//    factorization is the recoverable singularity of §ErrSingular.
	poo := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			poo.SetSym(a, b, prior.cov.At(obs[a], obs[b]))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(poo); !ok {
		return belief{}, 0, fmt.Errorf("%w: observed block %dx%d not positive definite", ErrSingular, k, k)
	}

	// 2) Innovation r = y − m_o and evidence log density.
	r := mat.NewVecDense(k, nil)
	for a := 0; a < k; a++ {
		r.SetVec(a, y[a]-prior.mean.AtVec(obs[a]))
	}
	alpha := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(alpha, r); err != nil {
		return belief{}, 0, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	ll := -0.5 * (float64(k)*log2Pi + chol.LogDet() + mat.Dot(r, alpha))

	// 3) Gain K = P[:,o]·Poo⁻¹, via Kᵀ = Poo⁻¹·P[o,:].
	pcols := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		for a := 0; a < k; a++ {
			pcols.Set(i, a, prior.cov.At(i, obs[a]))
		}
	}
	kt := mat.NewDense(k, n, nil)
	if err := chol.SolveTo(kt, pcols.T()); err != nil {
		return belief{}, 0, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	// 4) Posterior mean and covariance:
	//    m = m⁻ + K·r,  P = P⁻ − K·P[o,:].
	post := newBelief(n)
	post.mean.MulVec(kt.T(), r)
	post.mean.AddVec(prior.mean, post.mean)

	var kp mat.Dense
	kp.Mul(kt.T(), pcols.T())
	var pd mat.Dense
	pd.Sub(prior.cov, &kp)
	post.cov = symmetrize(&pd)

	// 5) Pin the conditioned coordinates: exact value, exact zero variance
	//    and covariance. The algebra already puts them within rounding of
	//    this; the contract demands equality.
	for a, i := range obs {
		post.mean.SetVec(i, y[a])
		for j := 0; j < n; j++ {
			post.cov.SetSym(min(i, j), max(i, j), 0)
		}
	}
	// 6) Clamp rounding-negative variances of the free coordinates.
	for i := 0; i < n; i++ {
		if v := post.cov.At(i, i); v < 0 {
			if math.Abs(v) > varianceSlack {
				return belief{}, 0, fmt.Errorf("%w: negative variance %g at coordinate %d", ErrSingular, v, i)
			}
			post.cov.SetSym(i, i, 0)
		}
	}

	return post, ll, nil
}

// varianceSlack bounds how negative a diagonal entry may go before it is
// treated as a genuine elimination failure rather than rounding noise.
const varianceSlack = 1e-6
