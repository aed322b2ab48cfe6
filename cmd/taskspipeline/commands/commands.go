package commands

import (
	"context"
	"io"

	"github.com/alecthomas/kingpin/v2"
	"github.com/sirupsen/logrus"

	"github.com/slok/taskspipeline/internal/conventions"
	"github.com/slok/taskspipeline/internal/log"
	loglogrus "github.com/slok/taskspipeline/internal/log/logrus"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug        bool
	NoLog        bool
	NoColor      bool
	LoggerType   string
	LogFile      string
	PipelineFile string

	// Global instances.
	Version string
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger and dashboard color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("log-file", "Dashboard log file, accepts time patterns (%Y, %m, %d, %H, %M, %S). Overrides the pipeline logging file.").StringVar(&c.LogFile)
	app.Flag("file", "Path to the pipeline YAML file.").Short('f').Default(conventions.DefaultPipelineFile).StringVar(&c.PipelineFile)

	return c
}

// LoggerOptions are the options to create a logrus backed logger.
type LoggerOptions struct {
	Out io.Writer
	// Level is a logrus level name, when empty the debug flag decides.
	Level string
	// Format is the pipeline logging format (text, json), when empty the logger flag decides.
	Format  string
	NoColor bool
}

// NewLogger returns a new logger using the global flags and the options.
func (r RootCommand) NewLogger(opts LoggerOptions) log.Logger {
	if r.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = opts.Out
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if opts.Level != "" {
		if lvl, err := logrus.ParseLevel(opts.Level); err == nil {
			logrusLogEntry.Logger.SetLevel(lvl)
		}
	}
	if r.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	json := r.LoggerType == LoggerTypeJSON
	if opts.Format != "" {
		json = opts.Format == "json"
	}
	if json {
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !opts.NoColor,
			DisableColors: opts.NoColor,
		})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": r.Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}
