package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/taskspipeline/internal/pipeline"
)

// JSONPrinter prints pipeline information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskOutput represents a task of the tree index.
type taskOutput struct {
	Index          int        `json:"index"`
	Depth          int        `json:"depth"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	Disabled       bool       `json:"disabled"`
	Message        string     `json:"message,omitempty"`
	ElapsedSeconds float64    `json:"elapsed_seconds"`
	StartedAt      *time.Time `json:"started_at"`
	StoppedAt      *time.Time `json:"stopped_at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTasks prints the task tree index in JSON format.
func (j *JSONPrinter) PrintTasks(entries []pipeline.EntrySnapshot) error {
	items := make([]taskOutput, len(entries))
	for i, e := range entries {
		items[i] = taskOutput{
			Index:          e.Index,
			Depth:          e.Depth,
			Name:           e.Name,
			Type:           e.Kind,
			Status:         string(e.Status),
			Disabled:       e.EffectiveDisabled,
			Message:        e.Message,
			ElapsedSeconds: e.Elapsed.Seconds(),
		}

		if !e.StartTime.IsZero() {
			utcTime := e.StartTime.UTC()
			items[i].StartedAt = &utcTime
		}

		if !e.StopTime.IsZero() {
			utcTime := e.StopTime.UTC()
			items[i].StoppedAt = &utcTime
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	output := messageOutput{Message: msg}
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
