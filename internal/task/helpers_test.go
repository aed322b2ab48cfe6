package task_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/slok/taskspipeline/internal/task"
)

// fakeLeaf returns a run process task backed by a fake executor.
func fakeLeaf(name string, exec task.ExecutorFunc) *task.RunProcess {
	return task.NewRunProcess(name, task.RunProcessConfig{Cmd: name, Executor: exec}, nil)
}

func okExec() task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		return []byte("ok"), nil, nil
	}
}

func failExec() task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		return nil, []byte("boom"), nil
	}
}

// blockExec blocks until the run is cancelled.
func blockExec() task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
}

// sleepExec takes d to finish successfully.
func sleepExec(d time.Duration) task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(d):
			return []byte("ok"), nil, nil
		}
	}
}

// countExec counts the executions and fails the first `failures` ones.
type countExec struct {
	calls    atomic.Int32
	failures int32
}

func (c *countExec) exec() task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		n := c.calls.Add(1)
		if n <= c.failures {
			return nil, nil, errors.New("exit status 1")
		}
		return []byte("ok"), nil, nil
	}
}

// orderRecorder records the order in which commands start.
type orderRecorder struct {
	mu    sync.Mutex
	order []string
}

func (o *orderRecorder) exec(d time.Duration) task.ExecutorFunc {
	return func(ctx context.Context, cmd string, env map[string]string) ([]byte, []byte, error) {
		o.mu.Lock()
		o.order = append(o.order, cmd)
		o.mu.Unlock()
		return sleepExec(d)(ctx, cmd, env)
	}
}

func (o *orderRecorder) get() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string{}, o.order...)
}

// walk returns all the tasks of the tree in depth-first order.
func walk(t task.Task) []task.Task {
	res := []task.Task{t}
	for _, c := range t.Children() {
		res = append(res, walk(c)...)
	}
	return res
}
