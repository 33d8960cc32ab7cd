// Package balticfoodweb documents the layout of the BalticFoodwebModel
// repository: estimation of a latent-state, linear-Gaussian temporal network
// for a short, gappy ecological time series.
//
// The model is a two-slice template — a dependency pattern over N food-web
// variables, some always hidden, some partially observed — unrolled once per
// time step and fit by Expectation-Maximization with many random restarts.
// Inference is exact: because every conditional is linear-Gaussian and the
// network factors along the time axis, a Kalman-style forward/backward
// recursion over slices yields the same posteriors a general graphical-model
// engine would, at a fraction of the machinery.
//
// Packages, in dependency order:
//
//	template/  — two-slice structure: nodes, roles, intra/inter edges,
//	             DAG validation, immutable parameter-group ids
//	unroll/    — template × horizon → the full temporal network
//	dataset/   — T×N table of Present|Missing cells, CSV boundary
//	lingauss/  — per-group regression weights, intercept, noise variance
//	smoother/  — exact inference: forward conditioning, RTS smoothing,
//	             log-likelihood, expected sufficient statistics
//	em/        — the E/M training loop with its convergence state machine
//	fit/       — K parallel random restarts reduced to the best run
//	marginals/ — per-node posterior (mean, variance) series and export
//	config/    — YAML run descriptions
//	cmd/balticfit — the command-line entry point
package balticfoodweb
