package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/slok/taskspipeline/internal/log"
)

const refreshInterval = 100 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type autostartMsg struct{}

// ModelConfig is the configuration of the dashboard model.
type ModelConfig struct {
	Pipeline Pipeline
	Palette  *Palette
	// Autostart starts the root task as soon as the dashboard is shown.
	Autostart bool
	Logger    log.Logger
	Now       func() time.Time
}

func (c *ModelConfig) defaults() error {
	if c.Pipeline == nil {
		return fmt.Errorf("pipeline is required")
	}

	if c.Palette == nil {
		p := DefaultPalette()
		c.Palette = &p
	}

	if c.Now == nil {
		c.Now = time.Now
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Model is the dashboard bubbletea model. The event loop is the only writer
// of the controller state, the renderer only reads pipeline snapshots.
type Model struct {
	ctx        context.Context
	pipeline   Pipeline
	controller *Controller
	renderer   *Renderer
	autostart  bool
	now        func() time.Time
	logger     log.Logger

	width  int
	height int
}

// NewModel returns a new dashboard model. ctx is used for the runs started
// from the dashboard.
func NewModel(ctx context.Context, cfg ModelConfig) (*Model, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctrl, err := NewController(ControllerConfig{
		Pipeline: cfg.Pipeline,
		Logger:   cfg.Logger,
		Now:      cfg.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create controller: %w", err)
	}

	return &Model{
		ctx:        ctx,
		pipeline:   cfg.Pipeline,
		controller: ctrl,
		renderer:   NewRenderer(*cfg.Palette, cfg.Pipeline.Entries()),
		autostart:  cfg.Autostart,
		now:        cfg.Now,
		logger:     cfg.Logger.WithValues(log.Kv{"svc": "tui.Model"}),
	}, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.autostart {
		cmds = append(cmds, func() tea.Msg { return autostartMsg{} })
	}

	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case autostartMsg:
		if err := m.pipeline.Start(m.ctx); err != nil {
			m.logger.Warningf("could not autostart pipeline: %s", err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.controller.HandleKey(m.ctx, msg) {
			m.logger.Debugf("exit requested")
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	return m.renderer.Render(View{
		Title:    m.pipeline.Title(),
		Mode:     m.controller.Mode(),
		Input:    m.controller.Input(),
		Selected: m.controller.Selected(),
		Scroll:   m.controller.Scroll(),
		Feedback: m.controller.Feedback(),
		Keys:     m.controller.Keys(),
		Entries:  m.pipeline.Snapshot(m.now()),
		Width:    m.width,
		Height:   m.height,
	})
}
