package tui_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/task"
)

func okExec() task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		return nil, nil, nil
	}
}

func blockExec() task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
}

func leaf(name string, exec task.ExecutorFunc) *task.RunProcess {
	return task.NewRunProcess(name, task.RunProcessConfig{Cmd: name, Executor: exec}, nil)
}

// newTestPipeline returns:
//
//	1 root
//	2 ├ a
//	3 └ b
func newTestPipeline(t *testing.T, a, b task.ExecutorFunc) *pipeline.Pipeline {
	root := task.NewSequential("root", []task.Task{leaf("a", a), leaf("b", b)}, nil)
	p, err := pipeline.New(pipeline.Config{Title: "Test", Root: root})
	require.NoError(t, err)
	return p
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}

	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}
