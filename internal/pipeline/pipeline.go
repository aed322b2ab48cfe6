package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/task"
)

// Notifier knows how to notify the user about the pipeline.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Config is the configuration of the pipeline.
type Config struct {
	Title string
	Root  task.Task
	// SystemNotification enables notifying when a root run finishes.
	SystemNotification bool
	Notifier           Notifier
	Logger             log.Logger
}

func (c *Config) defaults() error {
	if c.Root == nil {
		return fmt.Errorf("root task is required")
	}

	if c.Title == "" {
		c.Title = model.DefaultTitle
	}

	if c.SystemNotification && c.Notifier == nil {
		return fmt.Errorf("notifier is required when system notifications are enabled")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "pipeline.Pipeline"})

	return nil
}

// Entry is a node of the task tree index.
type Entry struct {
	// Index is the 1-based depth-first position of the task.
	Index int
	Depth int
	// LastChild is true when the task is the last child of its parent.
	LastChild bool
	Task      task.Task

	parent int
	// end is the index of the last descendant (or itself on leaves).
	end int
}

// EntrySnapshot is the state of an entry at a point in time.
type EntrySnapshot struct {
	Index     int
	Depth     int
	LastChild bool
	task.Snapshot
	Elapsed time.Duration
	// EffectiveDisabled is true when the task or any of its ancestors is disabled.
	EffectiveDisabled bool
}

// Pipeline is the task tree with its index, it's the entrypoint for the
// controller operations and the renderer snapshots.
type Pipeline struct {
	title    string
	root     task.Task
	entries  []Entry
	byTask   map[task.Task]int
	notify   bool
	notifier Notifier
	logger   log.Logger

	mu     sync.Mutex
	active map[int]bool
	wg     sync.WaitGroup
}

// New returns a new pipeline indexing the task tree once.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	p := &Pipeline{
		title:    cfg.Title,
		root:     cfg.Root,
		byTask:   map[task.Task]int{},
		notify:   cfg.SystemNotification,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
		active:   map[int]bool{},
	}
	p.index(cfg.Root, 0, -1, true)

	return p, nil
}

func (p *Pipeline) index(t task.Task, depth, parent int, last bool) {
	pos := len(p.entries)
	p.entries = append(p.entries, Entry{
		Index:     pos + 1,
		Depth:     depth,
		LastChild: last,
		Task:      t,
		parent:    parent,
	})
	p.byTask[t] = pos

	children := t.Children()
	for i, c := range children {
		p.index(c, depth+1, pos, i == len(children)-1)
	}
	p.entries[pos].end = len(p.entries) - 1
}

// Title returns the pipeline title.
func (p *Pipeline) Title() string { return p.title }

// Root returns the root task.
func (p *Pipeline) Root() task.Task { return p.root }

// Entries returns the task tree index in depth-first order.
func (p *Pipeline) Entries() []Entry { return p.entries }

// SelectByIndex returns the task at the 1-based index.
func (p *Pipeline) SelectByIndex(i int) (task.Task, bool) {
	if i < 1 || i > len(p.entries) {
		return nil, false
	}

	return p.entries[i-1].Task, true
}

// Disable disables a task. Tasks with a running run in their subtree can't
// be disabled.
func (p *Pipeline) Disable(t task.Task) error {
	pos, err := p.position(t)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if i, ok := p.runningInSubtree(pos); ok {
		return fmt.Errorf("task %q is running: %w", p.entries[i].Task.Name(), model.ErrNotValid)
	}

	if err := t.Disable(); err != nil {
		return err
	}
	p.logger.Infof("task %q disabled", t.Name())

	return nil
}

// Enable enables a disabled task.
func (p *Pipeline) Enable(t task.Task) error {
	if _, err := p.position(t); err != nil {
		return err
	}

	if err := t.Enable(); err != nil {
		return err
	}
	p.logger.Infof("task %q enabled", t.Name())

	return nil
}

// Cancel cancels a task and its subtree, it returns once all of them have
// been marked as cancelled.
func (p *Pipeline) Cancel(t task.Task) error {
	if _, err := p.position(t); err != nil {
		return err
	}

	t.Cancel()
	p.logger.Infof("task %q cancelled", t.Name())

	return nil
}

// CancelAll cancels the whole tree.
func (p *Pipeline) CancelAll() {
	p.root.Cancel()
	p.logger.Infof("all tasks cancelled")
}

// Start runs the root task.
func (p *Pipeline) Start(ctx context.Context) error {
	return p.Run(ctx, p.root)
}

// Run runs a task subtree in the background. The run is rejected when the
// task is disabled, or when it or any of its ancestors or descendants is
// running.
func (p *Pipeline) Run(ctx context.Context, t task.Task) error {
	pos, err := p.position(t)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.effectiveDisabled(pos) {
		return fmt.Errorf("task %q is disabled: %w", t.Name(), model.ErrNotValid)
	}
	if i, ok := p.runningInSubtree(pos); ok {
		return fmt.Errorf("task %q is running: %w", p.entries[i].Task.Name(), model.ErrNotValid)
	}
	for i := p.entries[pos].parent; i >= 0; i = p.entries[i].parent {
		if p.isRunning(i) {
			return fmt.Errorf("ancestor task %q is running: %w", p.entries[i].Task.Name(), model.ErrNotValid)
		}
	}

	runID := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	ctx = p.logger.SetValuesOnCtx(ctx, log.Kv{"run-id": runID})
	logger := p.logger.WithCtxValues(ctx)

	p.active[pos] = true
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.active, pos)
			p.mu.Unlock()
		}()

		logger.Infof("running task %q", t.Name())
		t.Run(ctx)
		st := t.Status()
		logger.Infof("task %q run finished with status %s", t.Name(), st)

		if t == p.root {
			p.notifyFinished(ctx, st)
		}
	}()

	return nil
}

// Wait blocks until all the runs started by the pipeline have finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Running returns true while any run started by the pipeline is in progress.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.active) > 0
}

// Snapshot returns the state of every entry in index order.
func (p *Pipeline) Snapshot(now time.Time) []EntrySnapshot {
	res := make([]EntrySnapshot, 0, len(p.entries))
	disabled := make([]bool, len(p.entries))
	for i, e := range p.entries {
		s := e.Task.Snapshot()

		// Parents are always indexed before their children.
		disabled[i] = s.Status == task.StatusDisabled || (e.parent >= 0 && disabled[e.parent])

		res = append(res, EntrySnapshot{
			Index:             e.Index,
			Depth:             e.Depth,
			LastChild:         e.LastChild,
			Snapshot:          s,
			Elapsed:           s.Elapsed(now),
			EffectiveDisabled: disabled[i],
		})
	}

	return res
}

func (p *Pipeline) notifyFinished(ctx context.Context, st task.Status) {
	if !p.notify {
		return
	}

	msg := "All tasks completed"
	if st != task.StatusCompleted {
		msg = fmt.Sprintf("Tasks finished with status %s", st)
	}

	if err := p.notifier.Notify(ctx, p.title, msg); err != nil {
		p.logger.WithCtxValues(ctx).Warningf("could not send notification: %s", err)
	}
}

func (p *Pipeline) position(t task.Task) (int, error) {
	if t == nil {
		return 0, fmt.Errorf("task is required: %w", model.ErrNotValid)
	}

	pos, ok := p.byTask[t]
	if !ok {
		return 0, fmt.Errorf("task %q is not part of the pipeline: %w", t.Name(), model.ErrNotFound)
	}

	return pos, nil
}

// isRunning must be called with the lock held.
func (p *Pipeline) isRunning(pos int) bool {
	return p.active[pos] || p.entries[pos].Task.Status() == task.StatusRunning
}

// runningInSubtree must be called with the lock held.
func (p *Pipeline) runningInSubtree(pos int) (int, bool) {
	for i := pos; i <= p.entries[pos].end; i++ {
		if p.isRunning(i) {
			return i, true
		}
	}

	return 0, false
}

func (p *Pipeline) effectiveDisabled(pos int) bool {
	for i := pos; i >= 0; i = p.entries[i].parent {
		if p.entries[i].Task.Status() == task.StatusDisabled {
			return true
		}
	}

	return false
}
