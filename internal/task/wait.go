package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
)

const (
	KindWaitFor   = "WaitForTask"
	KindWaitUntil = "WaitUntilTask"

	defaultWaitTick = 100 * time.Millisecond
)

// Wait blocks until a target instant. The target is resolved when the run
// starts so clock based targets are always relative to the run.
type Wait struct {
	Base

	target func(now time.Time) (time.Time, error)
	tick   time.Duration
}

// NewWaitFor returns a task that waits for a duration.
func NewWaitFor(name string, d time.Duration, logger log.Logger) *Wait {
	t := &Wait{
		target: func(now time.Time) (time.Time, error) { return now.Add(d), nil },
		tick:   defaultWaitTick,
	}
	t.init(name, KindWaitFor, nil, logger)
	return t
}

// NewWaitUntil returns a task that waits until the instant described by until.
// It accepts clock times (`HH:MM` or `HH:MM:SS`) and full timestamps.
func NewWaitUntil(name string, until string, logger log.Logger) (*Wait, error) {
	// Validate early, the real target is resolved on each run.
	if _, err := ResolveInstant(until, time.Now()); err != nil {
		return nil, err
	}

	t := &Wait{
		target: func(now time.Time) (time.Time, error) { return ResolveInstant(until, now) },
		tick:   defaultWaitTick,
	}
	t.init(name, KindWaitUntil, nil, logger)
	return t, nil
}

// Run waits until the target instant, updating the message with the remaining
// time on every tick.
func (t *Wait) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	deadline, err := t.target(t.now())
	if err != nil {
		t.fail(err.Error())
		return
	}

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	for now := t.now(); now.Before(deadline); now = t.now() {
		if t.stopped(ctx) {
			t.finish(StatusCancelled)
			return
		}
		t.setMessage("remaining: " + formatRemaining(deadline.Sub(now)))

		select {
		case <-ctx.Done():
			t.finish(StatusCancelled)
			return
		case <-ticker.C:
		}
	}

	if ctx.Err() != nil {
		t.finish(StatusCancelled)
		return
	}

	t.finish(StatusCompleted)
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// ResolveInstant resolves s relative to now. Clock times (`HH:MM[:SS]`) are
// placed on today's date and rolled to the next day when already passed.
func ResolveInstant(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty instant: %w", model.ErrNotValid)
	}

	for _, layout := range clockLayouts {
		c, err := time.ParseInLocation(layout, s, now.Location())
		if err != nil {
			continue
		}

		t := time.Date(now.Year(), now.Month(), now.Day(), c.Hour(), c.Minute(), c.Second(), 0, now.Location())
		if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, now.Location())
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid instant %q, expected HH:MM[:SS] or a timestamp: %w", s, model.ErrNotValid)
}

// formatRemaining formats a duration as `H:MM:SS`, rounding up so a running
// wait never shows zero.
func formatRemaining(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
