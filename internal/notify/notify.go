package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/slok/taskspipeline/internal/log"
)

// Logger notifier only logs the notifications.
type Logger struct {
	logger log.Logger
}

// NewLogger returns a notifier that logs the notifications.
func NewLogger(logger log.Logger) *Logger {
	if logger == nil {
		logger = log.Noop
	}

	return &Logger{logger: logger.WithValues(log.Kv{"svc": "notify.Logger"})}
}

func (l *Logger) Notify(ctx context.Context, title, message string) error {
	l.logger.WithCtxValues(ctx).Infof("%s: %s", title, message)
	return nil
}

// CommandRunner runs a command with its arguments.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// DesktopConfig is the configuration of the desktop notifier.
type DesktopConfig struct {
	// GOOS selects the notification command, by default the running OS.
	GOOS string
	// LookPath resolves the notification command, by default exec.LookPath.
	LookPath func(file string) (string, error)
	// Run runs the notification command, by default with os/exec.
	Run    CommandRunner
	Logger log.Logger
}

func (c *DesktopConfig) defaults() error {
	if c.GOOS == "" {
		c.GOOS = runtime.GOOS
	}

	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}

	if c.Run == nil {
		c.Run = func(ctx context.Context, name string, args ...string) error {
			out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
			if err != nil {
				return fmt.Errorf("%w: %s", err, out)
			}
			return nil
		}
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "notify.Desktop"})

	return nil
}

// Desktop sends notifications to the desktop using the OS notification
// command (`notify-send` on linux, `osascript` on macOS).
type Desktop struct {
	goos     string
	lookPath func(file string) (string, error)
	run      CommandRunner
	logger   log.Logger
}

// NewDesktop returns a new desktop notifier.
func NewDesktop(cfg DesktopConfig) (*Desktop, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Desktop{
		goos:     cfg.GOOS,
		lookPath: cfg.LookPath,
		run:      cfg.Run,
		logger:   cfg.Logger,
	}, nil
}

// Notify sends the notification. When the OS has no notification command
// available the notification is only logged.
func (d *Desktop) Notify(ctx context.Context, title, message string) error {
	logger := d.logger.WithCtxValues(ctx)

	name, args := d.command(title, message)
	if name == "" {
		logger.Infof("desktop notifications not supported on %s: %s: %s", d.goos, title, message)
		return nil
	}

	path, err := d.lookPath(name)
	if err != nil {
		logger.Infof("%s not available, notification not sent: %s: %s", name, title, message)
		return nil
	}

	if err := d.run(ctx, path, args...); err != nil {
		return fmt.Errorf("could not send desktop notification: %w", err)
	}
	logger.Debugf("desktop notification sent")

	return nil
}

func (d *Desktop) command(title, message string) (string, []string) {
	switch d.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send", []string{title, message}
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(message), strconv.Quote(title))
		return "osascript", []string{"-e", script}
	}

	return "", nil
}
