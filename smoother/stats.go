package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

// GroupStats aggregates the expected sufficient statistics of one parameter
// group across all its member nodes, in the augmented-parent basis
// ũ = (u₁, …, u_k, 1):
//
//	Suu = Σ E[ũũᵀ],  Sux = Σ E[ũ·x],  Sxx = Σ E[x²],  Count = #members.
//
// The M-step's normal equations read directly off these. Groups without a
// member in the unrolled graph (slice-≥2 groups under a horizon of 1) have
// a zero Count and nil matrices.
type GroupStats struct {
	Count int
	Suu   *mat.SymDense
	Sux   *mat.VecDense
	Sxx   float64
}

// accumulate walks every unrolled node and folds its local first and second
// moments into its group's statistics. All moments come from the smoothed
// slice marginals and the lag-one cross-covariances; nothing outside two
// consecutive slices is ever touched.
func accumulate(ug *unroll.Graph, sm *smoothed) []GroupStats {
	stats := make([]GroupStats, ug.Template().NumGroups())

	for _, node := range ug.Nodes() {
		t := node.Slice
		k := len(node.Parents)
		gs := &stats[node.Group]
		if gs.Suu == nil {
			gs.Suu = mat.NewSymDense(k+1, nil)
			gs.Sux = mat.NewVecDense(k+1, nil)
		}
		gs.Count++

		cur := sm.slices[t-1]
		muX := cur.mean.AtVec(node.Template)
		varX := cur.cov.At(node.Template, node.Template)
		gs.Sxx += varX + muX*muX

		// Constant pseudo-parent.
		gs.Suu.SetSym(k, k, gs.Suu.At(k, k)+1)
		gs.Sux.SetVec(k, gs.Sux.AtVec(k)+muX)

		for a := 0; a < k; a++ {
			pa := node.Parents[a]
			muA := parentMean(sm, t, pa)

			// E[u_a·x]: the child always lives in slice t.
			covAX := pairCov(sm, t, pa, unroll.Parent{Template: node.Template, Lag: 0})
			gs.Sux.SetVec(a, gs.Sux.AtVec(a)+covAX+muA*muX)
			gs.Suu.SetSym(a, k, gs.Suu.At(a, k)+muA)

			for b := a; b < k; b++ {
				pb := node.Parents[b]
				muB := parentMean(sm, t, pb)
				covAB := pairCov(sm, t, pa, pb)
				gs.Suu.SetSym(a, b, gs.Suu.At(a, b)+covAB+muA*muB)
			}
		}
	}

	return stats
}

// parentMean reads the smoothed mean of parent p of a child in slice t.
func parentMean(sm *smoothed, t int, p unroll.Parent) float64 {
	return sm.slices[t-1-p.Lag].mean.AtVec(p.Template)
}

// pairCov reads the smoothed covariance between two variables attached to a
// child in slice t: same-slice pairs from the slice marginal, mixed pairs
// from the lag-one cross block Cov(x_{t−1}, x_t).
func pairCov(sm *smoothed, t int, a, b unroll.Parent) float64 {
	switch {
	case a.Lag == b.Lag:
		return sm.slices[t-1-a.Lag].cov.At(a.Template, b.Template)
	case a.Lag == 1: // a in slice t−1, b in slice t
		return sm.cross[t-2].At(a.Template, b.Template)
	default: // b in slice t−1, a in slice t
		return sm.cross[t-2].At(b.Template, a.Template)
	}
}
