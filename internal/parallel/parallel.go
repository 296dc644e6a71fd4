// Package parallel runs fork-join passes over contiguous index ranges.
//
// Every pass splits [0, n) into one contiguous range per worker and runs the
// ranges on an errgroup. Worker w always receives the w-th range, so results
// stored per worker can be reassembled in range order afterwards. Workers
// never share mutable state; the first error cancels the pass context and is
// returned from For.
package parallel

import (
	"context"
	"fmt"

	skinerrors "github.com/tamirms/meshskin/errors"
	intbits "github.com/tamirms/meshskin/internal/bits"
	"golang.org/x/sync/errgroup"
)

// Func processes the half-open range [begin, end) as worker w.
type Func func(ctx context.Context, w int, begin, end int64) error

// Workers clamps a requested worker count to [1, n] (at least 1 for n == 0).
func Workers(requested int, n int64) int {
	if requested < 1 {
		requested = 1
	}
	if n < int64(requested) {
		if n < 1 {
			return 1
		}
		return int(n)
	}
	return requested
}

// For runs fn over [0, n) with the given number of workers. workers must
// already be clamped with Workers when the caller sizes per-worker state.
// A single worker runs on the calling goroutine.
func For(ctx context.Context, n int64, workers int, fn Func) error {
	if workers <= 1 {
		if err := Check(ctx); err != nil {
			return err
		}
		return fn(ctx, 0, 0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		begin, end := intbits.SplitRange(n, workers, w)
		g.Go(func() error {
			return fn(gctx, w, begin, end)
		})
	}
	return g.Wait()
}

// Check returns ErrAborted wrapping the context error if ctx is done.
func Check(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", skinerrors.ErrAborted, ctx.Err())
	default:
		return nil
	}
}

// Checker polls a context at a fixed iteration interval. It is owned by a
// single worker and is not safe for concurrent use.
type Checker struct {
	ctx      context.Context
	interval int64
	count    int64
}

// NewChecker returns a Checker for a range of length n.
func NewChecker(ctx context.Context, n int64) Checker {
	return Checker{ctx: ctx, interval: intbits.CheckInterval(n)}
}

// Tick counts one iteration and checks for cancellation when the interval
// elapses.
func (c *Checker) Tick() error {
	c.count++
	if c.count < c.interval {
		return nil
	}
	c.count = 0
	return Check(c.ctx)
}
