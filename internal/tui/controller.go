package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/task"
)

// Mode is the controller input mode.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelectTask
	ModeCommand
)

const (
	feedbackTTL    = 5 * time.Second
	maxIndexDigits = 6
)

// Pipeline is the pipeline the dashboard controls and renders.
type Pipeline interface {
	Title() string
	Entries() []pipeline.Entry
	SelectByIndex(i int) (task.Task, bool)
	Disable(t task.Task) error
	Enable(t task.Task) error
	Cancel(t task.Task) error
	CancelAll()
	Start(ctx context.Context) error
	Run(ctx context.Context, t task.Task) error
	Snapshot(now time.Time) []pipeline.EntrySnapshot
}

// ControllerConfig is the configuration of the controller.
type ControllerConfig struct {
	Pipeline Pipeline
	Logger   log.Logger
	// Now is used for the feedback expiration, by default time.Now.
	Now func() time.Time
}

func (c *ControllerConfig) defaults() error {
	if c.Pipeline == nil {
		return fmt.Errorf("pipeline is required")
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tui.Controller"})

	return nil
}

// Controller translates key presses into pipeline operations. It's only used
// from the dashboard event loop so it doesn't need locking.
type Controller struct {
	pipeline Pipeline
	keys     keyMap
	now      func() time.Time
	logger   log.Logger

	mode       Mode
	input      string
	selected   int
	scroll     int
	feedback   string
	feedbackAt time.Time
}

// NewController returns a new controller in the none mode.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Controller{
		pipeline: cfg.Pipeline,
		keys:     defaultKeyMap(),
		now:      cfg.Now,
		logger:   cfg.Logger,
	}, nil
}

// HandleKey processes a key press, it returns true when the user asked to exit.
func (c *Controller) HandleKey(ctx context.Context, msg tea.KeyMsg) (exit bool) {
	if key.Matches(msg, c.keys.ForceQuit) {
		return true
	}

	switch c.mode {
	case ModeSelectTask:
		c.handleSelectTask(msg)
	case ModeCommand:
		c.handleCommand(ctx, msg)
	default:
		return c.handleNone(ctx, msg)
	}

	return false
}

func (c *Controller) handleNone(ctx context.Context, msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, c.keys.Quit):
		return true
	case key.Matches(msg, c.keys.Start):
		c.report("start", c.pipeline.Start(ctx))
	case key.Matches(msg, c.keys.CancelAll):
		c.pipeline.CancelAll()
		c.setFeedback("all tasks cancelled")
	case key.Matches(msg, c.keys.Select):
		c.mode = ModeSelectTask
		c.input = ""
		c.selected = 0
	case key.Matches(msg, c.keys.Up):
		if c.scroll > 0 {
			c.scroll--
		}
	case key.Matches(msg, c.keys.Down):
		if c.scroll < len(c.pipeline.Entries())-1 {
			c.scroll++
		}
	}

	return false
}

func (c *Controller) handleSelectTask(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, c.keys.Digit):
		if len(c.input) < maxIndexDigits {
			c.input += msg.String()
		}
	case key.Matches(msg, c.keys.Backspace):
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
	case key.Matches(msg, c.keys.Enter):
		i, err := strconv.Atoi(c.input)
		if _, ok := c.pipeline.SelectByIndex(i); err != nil || !ok {
			c.setFeedback(fmt.Sprintf("task %q not found", c.input))
			c.reset()
			return
		}
		c.selected = i
		c.mode = ModeCommand
	case key.Matches(msg, c.keys.Abort):
		c.reset()
	}
}

func (c *Controller) handleCommand(ctx context.Context, msg tea.KeyMsg) {
	t, ok := c.pipeline.SelectByIndex(c.selected)
	if !ok {
		c.reset()
		return
	}

	switch {
	case key.Matches(msg, c.keys.Disable):
		c.report("disable", c.pipeline.Disable(t))
	case key.Matches(msg, c.keys.Enable):
		c.report("enable", c.pipeline.Enable(t))
	case key.Matches(msg, c.keys.Cancel):
		c.report("cancel", c.pipeline.Cancel(t))
	case key.Matches(msg, c.keys.Run):
		c.report("run", c.pipeline.Run(ctx, t))
	case key.Matches(msg, c.keys.Abort):
	default:
		return
	}

	c.reset()
}

func (c *Controller) reset() {
	c.mode = ModeNone
	c.input = ""
	c.selected = 0
}

func (c *Controller) report(op string, err error) {
	if err != nil {
		c.logger.Warningf("%s failed: %s", op, err)
		c.setFeedback(fmt.Sprintf("%s failed: %s", op, err))
		return
	}

	c.logger.Debugf("%s succeeded", op)
	c.feedback = ""
}

func (c *Controller) setFeedback(msg string) {
	c.feedback = msg
	c.feedbackAt = c.now()
}

// Mode returns the current input mode.
func (c *Controller) Mode() Mode { return c.mode }

// Input returns the task index typed so far in the select task mode.
func (c *Controller) Input() string { return c.input }

// Selected returns the selected task index in command mode, 0 otherwise.
func (c *Controller) Selected() int { return c.selected }

// Scroll returns the first row to render.
func (c *Controller) Scroll() int { return c.scroll }

// Feedback returns the last operation feedback while it's not expired.
func (c *Controller) Feedback() string {
	if c.feedback == "" || c.now().Sub(c.feedbackAt) > feedbackTTL {
		return ""
	}

	return c.feedback
}

// Keys returns the key bindings of the current mode.
func (c *Controller) Keys() []key.Binding {
	return c.keys.bindings(c.mode)
}
