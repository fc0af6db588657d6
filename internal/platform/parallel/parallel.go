// Package parallel provides small fan-out helpers used on the scrape path.
package parallel

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Result holds a value or an error for partial success patterns.
type Result[T any] struct {
	Value T
	Err   error
}

// Partial executes functions concurrently and collects all results, even on
// partial failure. Unlike an errgroup, this does not cancel on first error:
// the aggregation pipeline wants every source's contribution, and a failed
// sub-fetch simply yields an errored Result the caller absorbs.
//
// Example:
//
//	results := parallel.Partial(ctx, fetchFuncs...)
//	for _, r := range results {
//	    if r.Err != nil {
//	        continue // best-effort: log and move on
//	    }
//	    quotes = append(quotes, r.Value...)
//	}
func Partial[T any](ctx context.Context, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))

	var wg sync.WaitGroup

	for i, fn := range fns {
		wg.Go(func() {
			value, err := fn(ctx)
			results[i] = Result[T]{Value: value, Err: err}
		})
	}

	wg.Wait()

	return results
}

// PartialLimit executes functions with bounded concurrency, collecting all
// results. At most limit functions run simultaneously. Errors are captured
// per-slot rather than propagated, so one failed function never stops the
// others.
func PartialLimit[T any](ctx context.Context, limit int, fns ...func(context.Context) (T, error)) []Result[T] {
	results := make([]Result[T], len(fns))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, fn := range fns {
		g.Go(func() error {
			value, err := fn(ctx)
			results[i] = Result[T]{Value: value, Err: err}

			return nil
		})
	}

	_ = g.Wait()

	return results
}
