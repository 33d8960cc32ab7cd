// Package em fits the linear-Gaussian temporal network by
// Expectation-Maximization: alternate exact inference (E-step, package
// smoother) with closed-form weighted least-squares re-estimation per
// parameter group (M-step) until the log-likelihood improvement falls below
// a tolerance or an iteration cap is reached.
//
// State machine:
//
//	Initializing → Iterating → Converged   (improvement < tolerance,
//	                                        or cap reached with the
//	                                        did-not-converge flag)
//	                         → Failed      (a singular elimination in the
//	                                        E- or M-step; propagated, never
//	                                        retried internally)
//
// Hitting the iteration cap is NOT an error: the run completes with
// Result.Converged == false and remains eligible for best-of-K selection.
//
// Within one run the log-likelihood trace is non-decreasing up to numeric
// tolerance — standard EM monotonicity, and a tested property of this
// package, not an aspiration.
package em
