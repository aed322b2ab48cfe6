package task

import (
	"context"

	"github.com/slok/taskspipeline/internal/log"
)

// Checker checks a condition of the environment, it's how extension kinds
// plug their logic into the task tree.
type Checker interface {
	// Check returns a message and whether the condition holds.
	Check(ctx context.Context) (message string, ok bool)
}

// CheckerFunc is a helper to use functions as Checkers.
type CheckerFunc func(ctx context.Context) (string, bool)

func (f CheckerFunc) Check(ctx context.Context) (string, bool) { return f(ctx) }

// Check is a leaf task that completes when its checker condition holds.
type Check struct {
	Base

	checker Checker
}

// NewCheck returns a new check task of the given kind.
func NewCheck(name, kind string, checker Checker, logger log.Logger) *Check {
	t := &Check{checker: checker}
	t.init(name, kind, nil, logger)
	return t
}

// Run runs the check once.
func (t *Check) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	msg, passed := t.checker.Check(ctx)
	if ctx.Err() != nil {
		t.finish(StatusCancelled)
		return
	}

	t.setMessage(msg)
	if !passed {
		t.finish(StatusError)
		return
	}
	t.finish(StatusCompleted)
}
