package task

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"sort"
)

// Executor knows how to execute external commands.
type Executor interface {
	// Execute runs cmd with the extra env and returns its standard output and
	// error streams. The error is only set when the command could not run or
	// exited with a non zero code.
	Execute(ctx context.Context, cmd string, env map[string]string) (stdout, stderr []byte, err error)
}

// ExecutorFunc is a helper to use functions as Executors.
type ExecutorFunc func(ctx context.Context, cmd string, env map[string]string) (stdout, stderr []byte, err error)

func (f ExecutorFunc) Execute(ctx context.Context, cmd string, env map[string]string) (stdout, stderr []byte, err error) {
	return f(ctx, cmd, env)
}

// ShellExecutor executes commands using the system shell.
type ShellExecutor struct {
	// Shell overrides the shell, by default `sh -c` (`cmd /C` on windows).
	Shell []string
}

func (s ShellExecutor) Execute(ctx context.Context, command string, env map[string]string) ([]byte, []byte, error) {
	shell := s.Shell
	if len(shell) == 0 {
		shell = defaultShell()
	}

	args := append(append([]string{}, shell[1:]...), command)
	cmd := exec.CommandContext(ctx, shell[0], args...)
	cmd.Env = os.Environ()
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+env[k])
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), stderr.Bytes(), fmt.Errorf("could not execute command: %w", err)
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// Dialer knows how to open network connections, net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}
