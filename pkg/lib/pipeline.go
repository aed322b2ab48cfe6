package lib

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/notify"
	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/storage"
	"github.com/slok/taskspipeline/internal/storage/io"
)

// Config configures the SDK client.
//
// All fields are optional and have sensible defaults.
type Config struct {
	// FS is the filesystem the pipeline files are loaded from, paths are
	// relative to its root.
	// Default: the OS filesystem, paths are resolved from the working directory.
	FS fs.FS

	// Logger receives structured log output from the SDK, pipeline
	// notifications included.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for running pipelines programmatically.
//
// Create a Client with [New]. A Client is safe for concurrent use.
type Client struct {
	repo   storage.PipelineRepository
	osFS   bool
	logger log.Logger
}

// New creates a new SDK client.
func New(cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	osFS := cfg.FS == nil
	if osFS {
		cfg.FS = os.DirFS("/")
	}

	return &Client{
		repo:   io.NewPipelineYAMLRepository(cfg.FS),
		osFS:   osFS,
		logger: cfg.Logger,
	}, nil
}

// LoadPipeline loads and validates a pipeline YAML file and builds its task tree.
//
// Returns [ErrNotValid] if the pipeline description is not valid.
func (c *Client) LoadPipeline(ctx context.Context, path string) (*Pipeline, error) {
	if c.osFS {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("could not resolve pipeline file path: %w", err)
		}
		path = strings.TrimPrefix(filepath.ToSlash(abs), "/")
	}

	cfg, err := c.repo.GetPipeline(ctx, path)
	if err != nil {
		return nil, mapError(fmt.Errorf("could not load pipeline: %w", err))
	}

	root, err := pipeline.BuildTaskTree(cfg, c.logger)
	if err != nil {
		return nil, mapError(err)
	}

	p, err := pipeline.New(pipeline.Config{
		Title:              cfg.Title,
		Root:               root,
		SystemNotification: cfg.SystemNotification,
		Notifier:           notify.NewLogger(c.logger),
		Logger:             c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create pipeline: %w", err)
	}

	return &Pipeline{p: p}, nil
}

// Pipeline is a loaded pipeline ready to run.
type Pipeline struct {
	p *pipeline.Pipeline
}

// Title returns the pipeline title.
func (p *Pipeline) Title() string { return p.p.Title() }

// Tasks returns the current state of all the tasks in depth-first order.
func (p *Pipeline) Tasks() []Task {
	return fromInternalEntries(p.p.Snapshot(time.Now()))
}

// DisableTask disables the task subtree at the 1-based index before running.
//
// Returns [ErrNotFound] if the index is out of range.
func (p *Pipeline) DisableTask(index int) error {
	t, ok := p.p.SelectByIndex(index)
	if !ok {
		return fmt.Errorf("task %d: %w", index, ErrNotFound)
	}

	return mapError(p.p.Disable(t))
}

// EnableTask enables a disabled task at the 1-based index.
//
// Returns [ErrNotFound] if the index is out of range.
func (p *Pipeline) EnableTask(index int) error {
	t, ok := p.p.SelectByIndex(index)
	if !ok {
		return fmt.Errorf("task %d: %w", index, ErrNotFound)
	}

	return mapError(p.p.Enable(t))
}

// Run runs the whole task tree and blocks until it finishes. Cancelling ctx
// cancels the run.
//
// Returns [ErrNotValid] if the pipeline is already running.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	if err := p.p.Start(ctx); err != nil {
		return RunResult{}, mapError(fmt.Errorf("could not start pipeline: %w", err))
	}

	done := make(chan struct{})
	go func() {
		p.p.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.p.CancelAll()
		<-done
	}

	return RunResult{
		Title:  p.p.Title(),
		Status: TaskStatus(p.p.Root().Status()),
		Tasks:  p.Tasks(),
	}, nil
}
