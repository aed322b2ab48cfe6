package lib

import (
	"errors"
	"time"

	"github.com/slok/taskspipeline/internal/model"
	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/task"
)

var (
	// ErrNotFound is returned when a file or a task is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a pipeline description or an operation is not valid.
	ErrNotValid = errors.New("not valid")
)

// TaskStatus represents the state of a task.
//
// The typical lifecycle is:
//
//	NOT_STARTED -> RUNNING -> COMPLETED | ERROR | CANCELLED
//
// A task can be DISABLED while it is not running, disabled tasks are skipped.
type TaskStatus string

const (
	TaskStatusNotStarted TaskStatus = TaskStatus(task.StatusNotStarted)
	TaskStatusRunning    TaskStatus = TaskStatus(task.StatusRunning)
	TaskStatusCompleted  TaskStatus = TaskStatus(task.StatusCompleted)
	TaskStatusCancelled  TaskStatus = TaskStatus(task.StatusCancelled)
	TaskStatusError      TaskStatus = TaskStatus(task.StatusError)
	TaskStatusDisabled   TaskStatus = TaskStatus(task.StatusDisabled)
)

// Task is a read-only snapshot of a task of the pipeline tree.
type Task struct {
	// Index is the 1-based depth-first position of the task in the tree.
	Index int
	// Depth is the nesting level, the root task has depth 0.
	Depth int
	Name  string
	// Type is the task kind (e.g `SequentialTask`).
	Type    string
	Status  TaskStatus
	Message string
	// Disabled is true when the task or any of its ancestors is disabled.
	Disabled bool
	// StartedAt is when the task last started. Nil if never started.
	StartedAt *time.Time
	// StoppedAt is when the task last stopped. Nil if never stopped.
	StoppedAt *time.Time
	Elapsed   time.Duration
}

// RunResult is the result of a pipeline run.
type RunResult struct {
	Title string
	// Status is the root task status.
	Status TaskStatus
	// Tasks are all the tasks of the tree in depth-first order.
	Tasks []Task
}

// Succeeded returns true when the root task completed.
func (r RunResult) Succeeded() bool { return r.Status == TaskStatusCompleted }

func fromInternalEntries(entries []pipeline.EntrySnapshot) []Task {
	tasks := make([]Task, 0, len(entries))
	for _, e := range entries {
		t := Task{
			Index:    e.Index,
			Depth:    e.Depth,
			Name:     e.Name,
			Type:     e.Kind,
			Status:   TaskStatus(e.Status),
			Message:  e.Message,
			Disabled: e.EffectiveDisabled,
			Elapsed:  e.Elapsed,
		}

		if !e.StartTime.IsZero() {
			st := e.StartTime
			t.StartedAt = &st
		}
		if !e.StopTime.IsZero() {
			st := e.StopTime
			t.StoppedAt = &st
		}

		tasks = append(tasks, t)
	}

	return tasks
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return joinErrors(err, ErrNotFound)
	case errors.Is(err, model.ErrNotValid):
		return joinErrors(err, ErrNotValid)
	default:
		return err
	}
}

func joinErrors(original, sentinel error) error {
	return &mappedError{original: original, sentinel: sentinel}
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool {
	return target == e.sentinel
}

func (e *mappedError) Unwrap() error { return e.original }
