package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunBestEffortDoesNotAbortOnFailure(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	var failedMu sync.Mutex
	var failed []int

	stats := RunBestEffort(context.Background(), 2, items, func(ctx context.Context, item int) error {
		if item == 3 {
			return errors.New("boom")
		}
		return nil
	}, func(item int, err error) {
		failedMu.Lock()
		failed = append(failed, item)
		failedMu.Unlock()
	})

	if stats.Submitted != 5 {
		t.Fatalf("submitted = %d, want 5", stats.Submitted)
	}
	if stats.Succeeded != 4 {
		t.Fatalf("succeeded = %d, want 4", stats.Succeeded)
	}
	if stats.Failed != 1 {
		t.Fatalf("failed = %d, want 1", stats.Failed)
	}
	if len(failed) != 1 || failed[0] != 3 {
		t.Fatalf("onError callback = %v, want [3]", failed)
	}
}

func TestRunBestEffortRespectsWorkerCap(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}
	var current, peak int64

	RunBestEffort(context.Background(), 3, items, func(ctx context.Context, item int) error {
		n := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
				break
			}
		}
		defer atomic.AddInt64(&current, -1)
		return nil
	}, nil)

	if peak > 3 {
		t.Fatalf("observed %d concurrent tasks, want <= 3", peak)
	}
}

func TestRunFailFastCancelsSiblingsOnFirstError(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	sentinel := errors.New("unrecoverable")
	var ran int64

	err := RunFailFast(context.Background(), len(items), items, func(ctx context.Context, item int) error {
		atomic.AddInt64(&ran, 1)
		if item == 2 {
			return sentinel
		}
		<-ctx.Done()
		return ctx.Err()
	})

	if !errors.Is(err, sentinel) && err.Error() != sentinel.Error() {
		t.Fatalf("err = %v, want sentinel propagated", err)
	}
}

func TestRunFailFastSucceedsWhenAllTasksSucceed(t *testing.T) {
	items := []int{1, 2, 3}
	err := RunFailFast(context.Background(), 2, items, func(ctx context.Context, item int) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
