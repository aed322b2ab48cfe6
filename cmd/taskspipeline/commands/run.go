package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"

	"github.com/slok/taskspipeline/internal/conventions"
	"github.com/slok/taskspipeline/internal/log"
	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/notify"
	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/printer"
	"github.com/slok/taskspipeline/internal/task"
	"github.com/slok/taskspipeline/internal/tui"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	autostart bool
	noTUI     bool
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run the pipeline with the interactive dashboard.").Default()
	c.Cmd.Flag("autostart", "Start the root task as soon as the dashboard is shown.").BoolVar(&c.autostart)
	c.Cmd.Flag("no-tui", "Run the whole pipeline without the dashboard and print a summary.").BoolVar(&c.noTUI)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	cfg, err := loadPipelineConfig(ctx, c.rootCmd.PipelineFile)
	if err != nil {
		return err
	}

	// Without a terminal there is nothing to draw on.
	headless := c.noTUI
	if f, ok := c.rootCmd.Stdout.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		headless = true
	}

	if headless {
		return c.runHeadless(ctx, cfg)
	}

	return c.runDashboard(ctx, cfg)
}

func (c RunCommand) runHeadless(ctx context.Context, cfg model.PipelineConfig) error {
	logger := c.rootCmd.NewLogger(LoggerOptions{
		Out:     c.rootCmd.Stderr,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		NoColor: c.rootCmd.NoColor,
	})

	p, err := c.newPipeline(cfg, notify.NewLogger(logger), logger)
	if err != nil {
		return err
	}

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("could not start pipeline: %w", err)
	}

	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.CancelAll()
		<-done
	}

	if err := printer.NewTablePrinter(c.rootCmd.Stdout).PrintTasks(p.Snapshot(time.Now())); err != nil {
		return fmt.Errorf("could not print summary: %w", err)
	}

	if st := p.Root().Status(); st != task.StatusCompleted {
		return fmt.Errorf("pipeline finished with status %s", st)
	}

	return nil
}

func (c RunCommand) runDashboard(ctx context.Context, cfg model.PipelineConfig) error {
	// The dashboard owns the terminal, logs only go to a file.
	logger, closeLog, err := c.dashboardLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	notifier, err := notify.NewDesktop(notify.DesktopConfig{Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create notifier: %w", err)
	}

	p, err := c.newPipeline(cfg, notifier, logger)
	if err != nil {
		return err
	}

	palette := tui.DefaultPalette()
	if c.rootCmd.NoColor {
		palette = tui.NoColorPalette()
	}

	m, err := tui.NewModel(ctx, tui.ModelConfig{
		Pipeline:  p,
		Palette:   &palette,
		Autostart: c.autostart,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("could not create dashboard: %w", err)
	}

	var g run.Group

	// Dashboard.
	{
		prog := tea.NewProgram(m,
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithInput(c.rootCmd.Stdin),
			tea.WithOutput(c.rootCmd.Stdout),
		)

		g.Add(
			func() error {
				_, err := prog.Run()
				if err != nil && ctx.Err() == nil {
					return fmt.Errorf("dashboard failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				prog.Quit()
			},
		)
	}

	// Pipeline.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				<-ctx.Done()
				return nil
			},
			func(_ error) {
				cancel()
				p.CancelAll()
				p.Wait()
			},
		)
	}

	if err := g.Run(); err != nil {
		return err
	}

	logger.Infof("pipeline finished with status %s", p.Root().Status())

	return nil
}

func (c RunCommand) newPipeline(cfg model.PipelineConfig, notifier pipeline.Notifier, logger log.Logger) (*pipeline.Pipeline, error) {
	root, err := pipeline.BuildTaskTree(cfg, logger)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(pipeline.Config{
		Title:              cfg.Title,
		Root:               root,
		SystemNotification: cfg.SystemNotification,
		Notifier:           notifier,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create pipeline: %w", err)
	}

	return p, nil
}

// dashboardLogger returns a logger writing to the log file. Logging is
// enabled by the pipeline logging section or the log file flag.
func (c RunCommand) dashboardLogger(cfg model.PipelineConfig) (log.Logger, func(), error) {
	noop := func() {}
	if c.rootCmd.NoLog || (!cfg.Logging.Enabled && c.rootCmd.LogFile == "") {
		return log.Noop, noop, nil
	}

	pattern := c.rootCmd.LogFile
	if pattern == "" {
		pattern = cfg.Logging.File
	}
	if pattern == "" {
		pattern = conventions.DefaultLogPath()
	}
	logPath := conventions.ExpandTimePattern(pattern, time.Now())

	f, err := openLogFile(logPath)
	if err != nil {
		return nil, noop, err
	}

	logger := c.rootCmd.NewLogger(LoggerOptions{
		Out:     f,
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		NoColor: true,
	})

	return logger, func() { _ = f.Close() }, nil
}

func openLogFile(p string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	return f, nil
}
