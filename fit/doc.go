// Package fit drives multi-restart EM training: K independent random
// initializations, each trained to a terminal state, reduced to the single
// best run by final log-likelihood.
//
// Restarts are embarrassingly parallel and run on a bounded worker pool.
// Each restart owns a private parameter store and an independent PCG random
// stream derived from (seed, restart index), so results are reproducible
// under any worker count and any completion order. Completed runs are folded
// by one reducer loop — never a shared best-so-far variable mutated from
// several workers.
//
// A restart that fails with a singular elimination is recorded and skipped;
// the batch continues. Only when every restart fails does Run return
// ErrNoViableRun. Ties on the final log-likelihood resolve to the
// first-encountered run, i.e. the lowest restart index.
package fit
