// Package smoother is the exact inference engine of the temporal network:
// a chain-structured forward/backward Gaussian recursion over slices.
//
// What:
//
//	Given the unrolled graph, the current parameter store, and a dataset
//	with missing cells, Run computes for every node at every time step its
//	posterior mean and variance given ALL observed data, the observed-data
//	log-likelihood, and the per-group expected sufficient statistics the
//	EM M-step consumes.
//
// How:
//
//	The joint of all T·N variables is multivariate Gaussian (every
//	conditional is linear-Gaussian on an acyclic structure), and the
//	network factors along the time axis: slice t depends only on slice t−1.
//	Each slice's intra-slice DAG is collapsed into state-space form by
//	solving the unit-triangular system (I−B)x = A·x_prev + c + e in
//	topological order, giving x_t = F·x_{t−1} + d + w with w ~ N(0, Q).
//	Inference is then a Kalman-style pass: forward predict/condition per
//	slice (observed cells are exact, noiseless evidence, handled by direct
//	Gaussian conditioning), backward Rauch-Tung-Striebel smoothing for the
//	all-data marginals and the lag-one cross-covariances.
//
//	This specialization replaces a general tree-decomposition engine on
//	purpose: for a chain-structured linear-Gaussian template it produces
//	the same exact posteriors with O(T·N³) time and O(T·N²) memory — the
//	dense T·N × T·N joint covariance is never materialized.
//
// Posterior contract:
//
//   - a Present cell yields its own value with variance exactly 0;
//   - a Missing cell yields a genuine posterior mean and a nonnegative
//     variance (strictly positive unless the cell is fully determined).
//
// Errors:
//
//   - ErrSingular  a local elimination (Cholesky of a predictive block)
//     failed; wrapped with the slice index. Recoverable at the restart
//     level — the caller discards the restart, never the batch.
//   - ErrShape     dataset dimensions do not match the unrolled graph.
package smoother
