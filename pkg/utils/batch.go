package utils

import (
	"context"
	"fmt"
	"sync"
)

// Result is the settled outcome of one task.
type Result[T any] struct {
	Value T
	Err   error
}

// SettleInBatches runs fn over items in consecutive batches of batchSize.
// Tasks inside a batch run concurrently and the next batch starts only once
// every task of the current one has returned. A failing or panicking task
// never cancels its siblings. Results keep the order of items.
//
// If ctx is done before a batch starts, the remaining items settle with ctx.Err().
func SettleInBatches[I, O any](ctx context.Context, items []I, batchSize int, fn func(ctx context.Context, index int, item I) (O, error)) []Result[O] {
	if batchSize < 1 {
		batchSize = 1
	}
	results := make([]Result[O], len(items))

	for start := 0; start < len(items); start += batchSize {
		end := min(start+batchSize, len(items))

		if err := ctx.Err(); err != nil {
			for i := start; i < len(items); i++ {
				results[i].Err = err
			}
			break
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() {
					if r := recover(); r != nil {
						results[i] = Result[O]{Err: fmt.Errorf("task %d panicked: %v", i, r)}
					}
				}()

				value, err := fn(ctx, i, items[i])
				results[i] = Result[O]{Value: value, Err: err}
			}(i)
		}
		wg.Wait()
	}

	return results
}

// Successes drops the failed results.
func Successes[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Value)
		}
	}
	return out
}
