// Package splits runs one task per dataset split on a bounded worker pool.
// Splits own disjoint subtrees, so tasks share no mutable state.
package splits

import (
	"context"

	"github.com/sourcegraph/conc/pool"

	"github.com/agentstation/labelsync/pkg/logging"
)

// Result is the outcome of one split's task.
type Result[T any] struct {
	Split string
	Value T
	Err   error
}

// Func processes a single split.
type Func[T any] func(ctx context.Context, split string) (T, error)

// Run calls fn once per split with at most workers tasks in flight and
// returns the results in split order. A failing split does not stop the
// others. Each task's context carries a logger tagged with its split.
func Run[T any](ctx context.Context, splits []string, workers int, fn Func[T]) []Result[T] {
	if workers < 1 {
		workers = 1
	}

	results := make([]Result[T], len(splits))
	p := pool.New().WithMaxGoroutines(workers)
	for i, split := range splits {
		p.Go(func() {
			value, err := fn(logging.WithSplit(ctx, split), split)
			results[i] = Result[T]{Split: split, Value: value, Err: err}
		})
	}
	p.Wait()
	return results
}

// Errors returns the non-nil errors of results, in split order.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
