package em

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/smoother"
)

// maximize re-estimates every parameter group from its aggregated expected
// sufficient statistics by solving the weighted least-squares normal
// equations
//
//	Suu·b = Sux,   b = (w₁, …, w_k, intercept)
//
// and the matching noise variance
//
//	σ² = (Sxx − 2·bᵀSux + bᵀSuu·b) / Count.
//
// Suu is symmetric positive semidefinite; a failed Cholesky factorization
// (collinear parents) surfaces as smoother.ErrSingular with the group id,
// so the restart driver can treat it like any other singular elimination.
func maximize(store *lingauss.Store, stats []smoother.GroupStats) error {
	for id, gs := range stats {
		if gs.Count == 0 {
			continue // no member nodes under this horizon
		}
		k := gs.Sux.Len() - 1

		var chol mat.Cholesky
		if ok := chol.Factorize(gs.Suu); !ok {
			return fmt.Errorf("em: m-step group %d: %w: normal equations not positive definite",
				id, smoother.ErrSingular)
		}
		b := mat.NewVecDense(k+1, nil)
		if err := chol.SolveVecTo(b, gs.Sux); err != nil {
			return fmt.Errorf("em: m-step group %d: %w: %v", id, smoother.ErrSingular, err)
		}

		// σ² from the full quadratic form; the algebraically equivalent
		// (Sxx − bᵀSux)/Count loses positivity under rounding.
		var sb mat.VecDense
		sb.MulVec(gs.Suu, b)
		variance := (gs.Sxx - 2*mat.Dot(b, gs.Sux) + mat.Dot(b, &sb)) / float64(gs.Count)

		grp := lingauss.Group{
			Weights:   make([]float64, k),
			Intercept: b.AtVec(k),
			Variance:  variance,
		}
		for j := 0; j < k; j++ {
			grp.Weights[j] = b.AtVec(j)
		}
		if err := store.Set(id, grp); err != nil {
			return fmt.Errorf("em: m-step group %d: %w", id, err)
		}
	}

	return nil
}
