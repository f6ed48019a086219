// Package fanout runs N independent lookups with at most K in flight,
// preserving input order in the results. It backs tools that expand one
// request into many per-entity calls, e.g. resolving every member of a
// channel into a user profile.
package fanout

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task produces a single value or fails.
type Task[T any] func(ctx context.Context) (T, error)

// Run executes the tasks with at most limit running concurrently. The result
// slice matches the input order regardless of completion order. A failed task
// yields a nil entry instead of aborting the batch; one unreachable entity
// must not block the rest. limit <= 0 means unbounded.
func Run[T any](ctx context.Context, limit int, tasks []Task[T]) []*T {
	results := make([]*T, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var sem *semaphore.Weighted
	if limit > 0 {
		sem = semaphore.NewWeighted(int64(limit))
	}

	var wg sync.WaitGroup
	for i, task := range tasks {
		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				break // context cancelled; remaining entries stay nil
			}
		}

		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}

			v, err := task(ctx)
			if err != nil {
				return
			}
			results[i] = &v
		}(i, task)
	}

	wg.Wait()
	return results
}
