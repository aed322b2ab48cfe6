package task

import (
	"context"

	"github.com/slok/taskspipeline/internal/log"
)

const KindSequential = "SequentialTask"

// Sequential runs its children one after the other in declaration order.
type Sequential struct {
	Base
}

// NewSequential returns a new sequential task.
func NewSequential(name string, children []Task, logger log.Logger) *Sequential {
	t := &Sequential{}
	t.init(name, KindSequential, children, logger)
	return t
}

// Run runs the children in order, disabled children are skipped. The first
// child that doesn't succeed stops the run.
func (t *Sequential) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	for _, c := range t.children {
		if t.stopped(ctx) || t.cancelledDuringRun(c) {
			t.finish(StatusCancelled)
			return
		}

		if c.Status() == StatusDisabled {
			continue
		}

		c.Run(ctx)

		st := c.Status()
		switch {
		case st.IsSuccessful():
			continue
		case st == StatusCancelled:
			t.finish(StatusCancelled)
			return
		default:
			t.logger.Debugf("sequential %q stopped at child %q with status %s", t.name, c.Name(), st)
			t.finish(StatusError)
			return
		}
	}

	t.finish(StatusCompleted)
}
