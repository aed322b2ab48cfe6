package task

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/slok/taskspipeline/internal/log"
)

const KindParallel = "ParallelTask"

// Parallel runs its children concurrently.
type Parallel struct {
	Base

	maxConcurrency int
}

// NewParallel returns a new parallel task. A maxConcurrency of 0 or less
// doesn't limit the number of children running at the same time.
func NewParallel(name string, maxConcurrency int, children []Task, logger log.Logger) *Parallel {
	t := &Parallel{maxConcurrency: maxConcurrency}
	t.init(name, KindParallel, children, logger)
	return t
}

// Run starts the enabled children in declaration order and waits for all of
// them. When the concurrency is bounded, children are admitted in order as
// soon as a running one finishes.
func (t *Parallel) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	// Weighted semaphore waiters are served in FIFO order, and we acquire from
	// a single loop, so admission follows the declaration order.
	var sem *semaphore.Weighted
	if t.maxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(t.maxConcurrency))
	}

	var wg sync.WaitGroup
	started := make([]Task, 0, len(t.children))
	for _, c := range t.children {
		if c.Status() == StatusDisabled || t.cancelledDuringRun(c) {
			continue
		}

		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
		}

		// Things may have changed while waiting for a slot.
		if ctx.Err() != nil || c.Status() == StatusDisabled || t.cancelledDuringRun(c) {
			if sem != nil {
				sem.Release(1)
			}
			if ctx.Err() != nil {
				break
			}
			continue
		}

		started = append(started, c)
		wg.Add(1)
		go func(c Task) {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}
			c.Run(ctx)
		}(c)
	}
	wg.Wait()

	if ctx.Err() != nil {
		t.finish(StatusCancelled)
		return
	}

	t.finish(aggregateStatus(t.children))
}

// aggregateStatus returns the status of a composite based on its children
// terminal statuses: errors win over cancellations.
func aggregateStatus(children []Task) Status {
	st := StatusCompleted
	for _, c := range children {
		switch c.Status() {
		case StatusError:
			return StatusError
		case StatusCancelled:
			st = StatusCancelled
		}
	}

	return st
}
