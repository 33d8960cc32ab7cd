package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

// sliceModel is one slice's conditional collapsed into state-space form:
//
//	x_t = F·x_{t−1} + d + w,   w ~ N(0, Q)
//
// For slice 1 there is no previous slice; F is nil and (d, Q) are the prior
// mean and covariance of x_1.
type sliceModel struct {
	f *mat.Dense    // N×N inter transition, nil for slice 1
	d *mat.VecDense // N intercept
	q *mat.SymDense // N×N process covariance, always positive definite
}

// compile builds the slice-1 prior and the shared slice-≥2 transition from
// the current parameters. Only two models exist regardless of the horizon:
// parameter tying makes every slice ≥2 identical.
func compile(ug *unroll.Graph, store *lingauss.Store) (first, rest *sliceModel) {
	first = compileSlice(ug, store, 1)
	if ug.Horizon() > 1 {
		rest = compileSlice(ug, store, 2)
	}

	return first, rest
}

// compileSlice assembles (B, A, c, Σ) for one slice and eliminates the
// intra-slice coupling B by forward substitution in topological order.
func compileSlice(ug *unroll.Graph, store *lingauss.Store, t int) *sliceModel {
	n := ug.N()
	tpl := ug.Template()

	// 1) Scatter each node's weight vector into the intra matrix B and the
	//    inter matrix A, following the unrolled parent order (intra first,
	//    then inter).
	b := mat.NewDense(n, n, nil)
	a := mat.NewDense(n, n, nil)
	c := mat.NewVecDense(n, nil)
	sigma := make([]float64, n)
	hasInter := false
	for i := 0; i < n; i++ {
		node := ug.Node(i, t)
		grp := store.Group(node.Group)
		for j, p := range node.Parents {
			switch p.Lag {
			case 0:
				b.Set(i, p.Template, grp.Weights[j])
			default:
				a.Set(i, p.Template, grp.Weights[j])
				hasInter = true
			}
		}
		c.SetVec(i, grp.Intercept)
		sigma[i] = grp.Variance
	}

	// 2) Solve (I−B)·S = I row by row in topological order. B is strictly
	//    triangular under the topo permutation, so each row of S is a
	//    finished combination of earlier rows — no general inversion, no
	//    fill-in surprises.
	s := mat.NewDense(n, n, nil)
	for _, i := range tpl.TopoOrder() {
		s.Set(i, i, 1)
		for _, p := range tpl.IntraParents(i) {
			w := b.At(i, p)
			if w == 0 {
				continue
			}
			for k := 0; k < n; k++ {
				s.Set(i, k, s.At(i, k)+w*s.At(p, k))
			}
		}
	}

	// 3) Push the elimination through the remaining terms:
	//    F = S·A, d = S·c, Q = S·diag(Σ)·Sᵀ.
	m := &sliceModel{d: mat.NewVecDense(n, nil)}
	m.d.MulVec(s, c)

	if hasInter || t > 1 {
		m.f = mat.NewDense(n, n, nil)
		m.f.Mul(s, a)
	}

	scaled := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			scaled.Set(i, k, s.At(i, k)*sigma[k])
		}
	}
	qd := mat.NewDense(n, n, nil)
	qd.Mul(scaled, s.T())
	m.q = symmetrize(qd)

	return m
}

// symmetrize copies a numerically near-symmetric product into a SymDense,
// averaging the off-diagonal pairs.
func symmetrize(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, a.At(i, i))
		for j := i + 1; j < n; j++ {
			s.SetSym(i, j, 0.5*(a.At(i, j)+a.At(j, i)))
		}
	}

	return s
}
