// Package em declares the Trainer, its functional options, and the Result
// of one training run.
package em

import (
	"context"
	"fmt"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/smoother"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

// State labels the trainer's lifecycle.
type State uint8

const (
	// Initializing: constructed, Run not called yet.
	Initializing State = iota
	// Iterating: inside the E/M loop.
	Iterating
	// Converged: terminal; covers both genuine convergence and the
	// iteration cap (distinguished by Result.Converged).
	Converged
	// Failed: terminal; a singular elimination ended the run.
	Failed
)

// String returns the state's name.
func (s State) String() string {
	switch s {
	case Initializing:
		return "Initializing"
	case Iterating:
		return "Iterating"
	case Converged:
		return "Converged"
	default:
		return "Failed"
	}
}

// Defaults of the training loop.
const (
	DefaultMaxIter   = 500
	DefaultTolerance = 1e-6
)

// Option configures the Trainer.
type Option func(*Options)

// Options holds the training knobs. Zero-value fields are replaced by the
// documented defaults.
type Options struct {
	// MaxIter caps the number of EM iterations. Default 500.
	MaxIter int

	// Tolerance is the minimum per-iteration log-likelihood improvement;
	// below it the run converges. Default 1e-6.
	Tolerance float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{MaxIter: DefaultMaxIter, Tolerance: DefaultTolerance}
}

// WithMaxIter overrides the iteration cap. Non-positive values are ignored.
func WithMaxIter(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxIter = n
		}
	}
}

// WithTolerance overrides the convergence tolerance. Non-positive values
// are ignored.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		if tol > 0 {
			o.Tolerance = tol
		}
	}
}

// Result is one completed training run: the final parameter snapshot, the
// log-likelihood trace (one entry per iteration, non-decreasing up to
// numeric tolerance), and whether the run converged before the cap.
type Result struct {
	Store      *lingauss.Store
	Trace      []float64
	Converged  bool
	Iterations int
}

// Final returns the last log-likelihood of the trace.
func (r *Result) Final() float64 { return r.Trace[len(r.Trace)-1] }

// Trainer drives EM over one (graph, dataset, parameter store) triple.
// It mutates the store in place; pass a fresh store per restart.
type Trainer struct {
	ug    *unroll.Graph
	data  *dataset.Dataset
	store *lingauss.Store
	opts  Options
	state State
}

// New builds a Trainer in the Initializing state.
func New(ug *unroll.Graph, data *dataset.Dataset, store *lingauss.Store, opts ...Option) *Trainer {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Trainer{ug: ug, data: data, store: store, opts: o}
}

// State reports the trainer's current lifecycle state.
func (tr *Trainer) State() State { return tr.state }

// Run executes the EM loop to a terminal state. Each iteration performs one
// E-step (exact inference, which also yields the log-likelihood of the
// parameters entering the iteration), one closed-form M-step, and a
// convergence check on the trace. A singular elimination moves the trainer
// to Failed and surfaces the iteration index in the returned error.
func (tr *Trainer) Run(ctx context.Context) (*Result, error) {
	tr.state = Iterating
	trace := make([]float64, 0, tr.opts.MaxIter)

	for iter := 1; iter <= tr.opts.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			tr.state = Failed

			return nil, fmt.Errorf("em: iteration %d: %w", iter, err)
		}

		// E-step.
		inf, err := smoother.Run(tr.ug, tr.store, tr.data)
		if err != nil {
			tr.state = Failed

			return nil, fmt.Errorf("em: iteration %d: %w", iter, err)
		}

		// M-step.
		if err := maximize(tr.store, inf.Stats); err != nil {
			tr.state = Failed

			return nil, fmt.Errorf("em: iteration %d: %w", iter, err)
		}

		trace = append(trace, inf.LogLik)
		if iter > 1 && trace[iter-1]-trace[iter-2] < tr.opts.Tolerance {
			tr.state = Converged

			return &Result{
				Store:      tr.store.Clone(),
				Trace:      trace,
				Converged:  true,
				Iterations: iter,
			}, nil
		}
	}

	// Cap reached: still a completed run, flagged did-not-converge.
	tr.state = Converged

	return &Result{
		Store:      tr.store.Clone(),
		Trace:      trace,
		Converged:  false,
		Iterations: tr.opts.MaxIter,
	}, nil
}
