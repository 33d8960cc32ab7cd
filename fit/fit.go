// Package fit declares Run, its options, and the Best reduction result.
package fit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
	"github.com/luusitalo/BalticFoodwebModel/em"
	"github.com/luusitalo/BalticFoodwebModel/lingauss"
	"github.com/luusitalo/BalticFoodwebModel/unroll"
)

var (
	// ErrNoViableRun is returned when every restart failed. Individual
	// failures are recoverable; a unanimous batch failure is not.
	ErrNoViableRun = errors.New("fit: every restart failed")

	// ErrBadRestarts is returned for a restart count below 1.
	ErrBadRestarts = errors.New("fit: restart count must be at least 1")
)

// DefaultRestarts is the number of random restarts when none is configured.
const DefaultRestarts = 100

// Option configures Run.
type Option func(*Options)

// Options holds the restart-driver knobs.
type Options struct {
	// Restarts is the number of independent initializations K. Default 100.
	Restarts int

	// Workers bounds the number of concurrently training restarts.
	// Default: GOMAXPROCS.
	Workers int

	// Seed feeds the per-restart PCG streams. 0 means "seed from the wall
	// clock" and is meant for top-level production entry points only;
	// tests pass an explicit seed.
	Seed uint64

	// Logger receives per-restart progress. Nil discards.
	Logger *slog.Logger

	// EM is passed through to every restart's trainer.
	EM []em.Option
}

// WithRestarts overrides K. Validation happens in Run (ErrBadRestarts).
func WithRestarts(k int) Option {
	return func(o *Options) { o.Restarts = k }
}

// WithWorkers bounds the worker pool. Non-positive values are ignored.
func WithWorkers(w int) Option {
	return func(o *Options) {
		if w > 0 {
			o.Workers = w
		}
	}
}

// WithSeed fixes the base seed for reproducible batches.
func WithSeed(seed uint64) Option {
	return func(o *Options) { o.Seed = seed }
}

// WithLogger installs a progress logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithEM forwards trainer options (iteration cap, tolerance) to every
// restart.
func WithEM(opts ...em.Option) Option {
	return func(o *Options) { o.EM = opts }
}

// Summary records how one restart ended: either a terminal training result
// or the error that excluded it.
type Summary struct {
	Restart    int
	Final      float64
	Converged  bool
	Iterations int
	Err        error
}

// Best is the batch reduction: the winning run, its restart index, and the
// per-restart record needed to reproduce any failure.
type Best struct {
	Restart  int
	Result   *em.Result
	Restarts []Summary
}

// Run trains K restarts of EM on (ug, data) and returns the run with the
// maximum final log-likelihood. Ties resolve to the lowest restart index.
// Failed restarts are recorded in Best.Restarts and skipped; Run fails with
// ErrNoViableRun only if no restart survives.
func Run(ctx context.Context, ug *unroll.Graph, data *dataset.Dataset, opts ...Option) (*Best, error) {
	o := Options{
		Restarts: DefaultRestarts,
		Workers:  runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Restarts < 1 {
		return nil, fmt.Errorf("%w: K=%d", ErrBadRestarts, o.Restarts)
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	seed := o.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		logger.Info("seeding restarts from wall clock", "seed", seed)
	}

	type outcome struct {
		restart int
		result  *em.Result
		err     error
	}

	jobs := make(chan int)
	results := make(chan outcome)

	workers := o.Workers
	if workers > o.Restarts {
		workers = o.Restarts
	}
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				res, err := runOne(ctx, ug, data, seed, idx, o.EM)
				results <- outcome{restart: idx, result: res, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for i := 0; i < o.Restarts; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	// Single-owner reduction: fold completed runs into the best, keyed by
	// (final log-likelihood, lowest restart index). No shared mutation.
	best := &Best{Restart: -1, Restarts: make([]Summary, 0, o.Restarts)}
	for out := range results {
		if out.err != nil {
			logger.Warn("restart failed", "restart", out.restart, "err", out.err)
			best.Restarts = append(best.Restarts, Summary{Restart: out.restart, Err: out.err})

			continue
		}
		s := Summary{
			Restart:    out.restart,
			Final:      out.result.Final(),
			Converged:  out.result.Converged,
			Iterations: out.result.Iterations,
		}
		logger.Debug("restart complete",
			"restart", s.Restart, "loglik", s.Final,
			"converged", s.Converged, "iterations", s.Iterations)
		best.Restarts = append(best.Restarts, s)

		if best.Result == nil ||
			s.Final > best.Result.Final() ||
			(s.Final == best.Result.Final() && s.Restart < best.Restart) {
			best.Restart = s.Restart
			best.Result = out.result
		}
	}

	sort.Slice(best.Restarts, func(i, j int) bool {
		return best.Restarts[i].Restart < best.Restarts[j].Restart
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	if best.Result == nil {
		return nil, fmt.Errorf("%w: %d restarts", ErrNoViableRun, o.Restarts)
	}
	logger.Info("selected best restart",
		"restart", best.Restart, "loglik", best.Result.Final(),
		"converged", best.Result.Converged)

	return best, nil
}

// runOne trains a single restart with its own store and PCG stream.
func runOne(ctx context.Context, ug *unroll.Graph, data *dataset.Dataset, seed uint64, idx int, emOpts []em.Option) (*em.Result, error) {
	store := lingauss.NewStore(ug.GroupArity())
	store.Init(rand.NewPCG(seed, uint64(idx)))

	res, err := em.New(ug, data, store, emOpts...).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("restart %d: %w", idx, err)
	}

	return res, nil
}
