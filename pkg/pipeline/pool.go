// Package pipeline holds the two bounded fan-out shapes used by the
// classification and extraction stages: a best-effort pool
// (one bad task never aborts the batch) and a fail-fast pool (the first
// unrecoverable failure cancels the rest). Grounded on the teacher's own
// WorkerPool (atomic counters, Start/Stop lifecycle) generalized to a
// one-shot batch rather than a long-lived queue consumer.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PoolStats mirrors the teacher's atomic-counter pattern for reporting how
// many tasks succeeded/failed in one fan-out.
type PoolStats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
}

// RunBestEffort fans work out over a bounded number of workers; a task
// failure is reported to onError but does not cancel siblings. Used by C5:
// one bad document must not abort the rest of the batch.
func RunBestEffort[T any](ctx context.Context, workers int, items []T, task func(ctx context.Context, item T) error, onError func(item T, err error)) PoolStats {
	if workers <= 0 {
		workers = 1
	}
	var stats PoolStats
	stats.Submitted = int64(len(items))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, item := range items {
		item := item
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := task(ctx, item); err != nil {
				atomic.AddInt64(&stats.Failed, 1)
				if onError != nil {
					onError(item, err)
				}
				return
			}
			atomic.AddInt64(&stats.Succeeded, 1)
		}()
	}
	wg.Wait()
	return stats
}

// RunFailFast fans work out over a bounded number of workers; the first
// task error cancels the shared context and every other pending task
// returns that error from Wait. Used by C6 per §4.5/§7.
func RunFailFast[T any](ctx context.Context, workers int, items []T, task func(ctx context.Context, item T) error) error {
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, item := range items {
		item := item
		g.Go(func() error {
			return task(gctx, item)
		})
	}
	return g.Wait()
}
