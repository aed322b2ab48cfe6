package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
)

// Status represents the state of a task.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusRunning    Status = "RUNNING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusError      Status = "ERROR"
	StatusDisabled   Status = "DISABLED"
)

// IsTerminal reports whether the status is terminal (finished).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusError:
		return true
	default:
		return false
	}
}

// IsSuccessful reports whether a composite parent should consider the status
// a success. Disabled tasks succeed vacuously.
func (s Status) IsSuccessful() bool {
	return s == StatusCompleted || s == StatusDisabled
}

// Task is a node of the task tree.
//
// The set of implementations is closed: every task embeds Base, which is the
// only way of satisfying the unexported part of the interface.
type Task interface {
	Name() string
	Kind() string
	Status() Status
	Snapshot() Snapshot
	Children() []Task

	// Run executes the task and blocks until it reaches a terminal status.
	// Running a disabled or already running task is a no-op.
	Run(ctx context.Context)
	// Cancel cancels the task and all its descendants, it returns once all
	// of them have been marked as cancelled.
	Cancel()
	// Disable disables a task that is not running.
	Disable() error
	// Enable enables a disabled task.
	Enable() error

	base() *Base
}

// Snapshot is a read-only copy of a task state.
type Snapshot struct {
	Name    string
	Kind    string
	Status  Status
	Message string
	// StartTime and StopTime are zero when unset.
	StartTime time.Time
	StopTime  time.Time
}

// Elapsed returns the elapsed time of the task using now for the unset timestamps.
func (s Snapshot) Elapsed(now time.Time) time.Duration {
	start, stop := s.StartTime, s.StopTime
	if start.IsZero() {
		start = now
	}
	if stop.IsZero() {
		stop = now
	}
	if stop.Before(start) {
		return 0
	}

	return stop.Sub(start)
}

// Base has the state shared by all the task kinds.
type Base struct {
	name     string
	kind     string
	children []Task
	logger   log.Logger
	now      func() time.Time

	mu        sync.Mutex
	status    Status
	message   string
	startTime time.Time
	stopTime  time.Time
	runCancel context.CancelFunc
	// runs counts the runs that have begun.
	runs int
}

func (b *Base) init(name, kind string, children []Task, logger log.Logger) {
	if logger == nil {
		logger = log.Noop
	}

	b.name = name
	b.kind = kind
	b.children = children
	b.logger = logger
	b.now = time.Now
	b.status = StatusNotStarted
}

func (b *Base) base() *Base { return b }

// Name returns the task name.
func (b *Base) Name() string { return b.name }

// Kind returns the task kind.
func (b *Base) Kind() string { return b.kind }

// Children returns the task children in declaration order.
func (b *Base) Children() []Task { return b.children }

// Status returns the current task status.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Snapshot returns a consistent copy of the task state.
func (b *Base) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Name:      b.name,
		Kind:      b.kind,
		Status:    b.status,
		Message:   b.message,
		StartTime: b.startTime,
		StopTime:  b.stopTime,
	}
}

// Disable disables the task.
func (b *Base) Disable() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.status {
	case StatusDisabled:
		return nil
	case StatusRunning:
		return fmt.Errorf("task %q is running, cancel it first: %w", b.name, model.ErrNotValid)
	}

	b.status = StatusDisabled
	b.message = ""
	b.startTime = time.Time{}
	b.stopTime = time.Time{}
	b.logger.Debugf("task %q disabled", b.name)

	return nil
}

// Enable enables a disabled task, it goes back to not started.
func (b *Base) Enable() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.status != StatusDisabled {
		return fmt.Errorf("task %q is not disabled (current status: %s): %w", b.name, b.status, model.ErrNotValid)
	}

	b.status = StatusNotStarted
	b.message = ""
	b.startTime = time.Time{}
	b.stopTime = time.Time{}
	b.logger.Debugf("task %q enabled", b.name)

	return nil
}

// Cancel stops the task run, cancels the children depth-first in declaration
// order and finally marks the task as cancelled.
//
// A parent may start the task while the children are being cancelled, in that
// case the new run is stopped and the children are walked again. Nothing can
// start under a cancelled run context so the walk converges.
func (b *Base) Cancel() {
	for {
		// Stop the run context first so any child started concurrently with
		// this walk observes the cancellation.
		b.mu.Lock()
		runs := b.runs
		if b.runCancel != nil {
			b.runCancel()
		}
		b.mu.Unlock()

		for _, c := range b.children {
			c.Cancel()
		}

		if b.markCancelled(runs) {
			return
		}
	}
}

// markCancelled marks the task as cancelled unless a new run began after
// runs was read, it returns false in that case.
func (b *Base) markCancelled(runs int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.runs != runs {
		return false
	}

	if b.runCancel != nil {
		b.runCancel()
	}

	if b.status != StatusRunning && b.status != StatusNotStarted {
		return true
	}

	b.status = StatusCancelled
	b.stopTime = b.now()
	if b.startTime.IsZero() {
		b.startTime = b.stopTime
	}
	b.logger.Debugf("task %q cancelled", b.name)

	return true
}

type runStartKey struct{}

// begin transitions the task to running and returns the context the run must
// use. If the task can't run, it returns false.
func (b *Base) begin(ctx context.Context) (context.Context, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.status == StatusDisabled || b.status == StatusRunning {
		return ctx, false
	}

	// Cancelled after the parent run started, the parent run must not
	// start it again.
	if parentStart, ok := ctx.Value(runStartKey{}).(time.Time); ok && b.status == StatusCancelled && !b.stopTime.Before(parentStart) {
		return ctx, false
	}

	now := b.now()
	b.startTime = now
	b.stopTime = time.Time{}
	b.message = ""

	// An ancestor cancelled before we started.
	if ctx.Err() != nil {
		b.status = StatusCancelled
		b.stopTime = now
		return ctx, false
	}

	runCtx, cancel := context.WithCancel(context.WithValue(ctx, runStartKey{}, now))
	b.runCancel = cancel
	b.runs++
	b.status = StatusRunning
	b.logger.WithCtxValues(ctx).Debugf("task %q started", b.name)

	return runCtx, true
}

// finish sets the terminal status of a running task. Tasks that are not
// running anymore (e.g cancelled) are left untouched.
func (b *Base) finish(st Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.runCancel != nil {
		b.runCancel()
		b.runCancel = nil
	}

	if b.status != StatusRunning {
		return
	}

	b.status = st
	b.stopTime = b.now()
	b.logger.Debugf("task %q finished with status %s", b.name, st)
}

// fail sets the message and finishes the task with error status.
func (b *Base) fail(msg string) {
	b.setMessage(msg)
	b.finish(StatusError)
}

func (b *Base) setMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Terminal messages belong to the run that set them.
	if b.status != StatusRunning {
		return
	}
	b.message = msg
}

// stopped reports whether the current run must stop, either because its
// context is done or because the task is not running anymore.
func (b *Base) stopped(ctx context.Context) bool {
	return ctx.Err() != nil || b.Status() != StatusRunning
}

// sleep waits for d or until the context is done, it returns false when the
// wait was interrupted.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// cancelledDuringRun reports whether c was cancelled after this task started
// its current run. Those children are not started again by the same run.
func (b *Base) cancelledDuringRun(c Task) bool {
	cs := c.Snapshot()
	if cs.Status != StatusCancelled {
		return false
	}

	b.mu.Lock()
	start := b.startTime
	b.mu.Unlock()

	return !cs.StopTime.Before(start)
}
