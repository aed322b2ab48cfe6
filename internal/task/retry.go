package task

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/taskspipeline/internal/log"
)

const KindRetry = "RetryTask"

// Retry runs its single child until it succeeds or the attempts are exhausted.
type Retry struct {
	Base

	maxRetries int
	delay      time.Duration
}

// NewRetry returns a new retry task wrapping child.
func NewRetry(name string, maxRetries int, delay time.Duration, child Task, logger log.Logger) *Retry {
	if maxRetries < 1 {
		maxRetries = 1
	}

	t := &Retry{maxRetries: maxRetries, delay: delay}
	t.init(name, KindRetry, []Task{child}, logger)
	return t
}

// Run attempts the child up to the configured retries, waiting the configured
// delay between attempts.
func (t *Retry) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	child := t.children[0]
	if child.Status() == StatusDisabled {
		t.finish(StatusCompleted)
		return
	}

	for i := 1; i <= t.maxRetries; i++ {
		if t.stopped(ctx) || t.cancelledDuringRun(child) {
			t.finish(StatusCancelled)
			return
		}

		t.setMessage(fmt.Sprintf("attempt %d out of %d", i, t.maxRetries))
		child.Run(ctx)

		st := child.Status()
		switch {
		case st.IsSuccessful():
			t.finish(StatusCompleted)
			return
		case st == StatusCancelled:
			t.finish(StatusCancelled)
			return
		}

		t.logger.Debugf("retry %q attempt %d of %d failed", t.name, i, t.maxRetries)
		if i < t.maxRetries && !sleep(ctx, t.delay) {
			t.finish(StatusCancelled)
			return
		}
	}

	t.finish(StatusError)
}
