package task

import (
	"context"
	"regexp"
	"strings"

	"github.com/slok/taskspipeline/internal/log"
)

const KindRunProcess = "RunProcessTask"

// RunProcess runs an external command.
type RunProcess struct {
	Base

	cmd            string
	expectedOutput *regexp.Regexp
	env            map[string]string
	executor       Executor
}

// RunProcessConfig is the configuration of a run process task.
type RunProcessConfig struct {
	Cmd string
	// ExpectedOutput is optional, when set the command stdout must match it.
	ExpectedOutput *regexp.Regexp
	Env            map[string]string
	Executor       Executor
}

// NewRunProcess returns a new run process task.
func NewRunProcess(name string, cfg RunProcessConfig, logger log.Logger) *RunProcess {
	if cfg.Executor == nil {
		cfg.Executor = ShellExecutor{}
	}

	t := &RunProcess{
		cmd:            cfg.Cmd,
		expectedOutput: cfg.ExpectedOutput,
		env:            cfg.Env,
		executor:       cfg.Executor,
	}
	t.init(name, KindRunProcess, nil, logger)
	return t
}

// Run executes the command. Any output on the error stream fails the task.
func (t *RunProcess) Run(ctx context.Context) {
	ctx, ok := t.begin(ctx)
	if !ok {
		return
	}

	logger := t.logger.WithCtxValues(ctx)
	logger.Debugf("running command: %s", t.cmd)

	stdout, stderr, err := t.executor.Execute(ctx, t.cmd, t.env)
	if ctx.Err() != nil {
		t.finish(StatusCancelled)
		return
	}

	switch {
	case len(stderr) > 0:
		logger.Infof("command %q wrote to stderr", t.cmd)
		t.fail(strings.TrimSpace(string(stderr)))
	case err != nil:
		logger.Infof("command %q failed: %s", t.cmd, err)
		t.fail(err.Error())
	case t.expectedOutput != nil && len(stdout) == 0:
		t.fail("no output")
	case t.expectedOutput != nil && !t.expectedOutput.Match(stdout):
		t.fail("unexpected output")
	default:
		t.finish(StatusCompleted)
	}
}
