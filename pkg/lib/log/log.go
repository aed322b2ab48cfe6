// Package log provides the logging interface for the taskspipeline SDK.
//
// The SDK accepts any implementation of [Logger]. Use [Noop] to disable
// logging (this is the default when no logger is configured), or [NewLogrus]
// to log with a logrus entry:
//
//	l := logrus.New()
//	l.SetLevel(logrus.DebugLevel)
//	client, err := lib.New(lib.Config{Logger: log.NewLogrus(logrus.NewEntry(l))})
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/slok/taskspipeline/internal/log"
	loglogrus "github.com/slok/taskspipeline/internal/log/logrus"
)

// Logger is the interface that loggers must implement for the SDK.
//
// Each pipeline run adds a `run-id` value through the context, use
// WithCtxValues to keep it.
type Logger = log.Logger

// Kv is a helper type for structured logging key-value pairs.
type Kv = log.Kv

// Noop is a logger that discards all log output.
var Noop Logger = log.Noop

// NewLogrus returns a Logger backed by a logrus entry.
func NewLogrus(e *logrus.Entry) Logger {
	return loglogrus.NewLogrus(e)
}
