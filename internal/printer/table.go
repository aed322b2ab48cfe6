package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/task"
)

// TablePrinter prints pipeline information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTasks prints the task tree index in a table format.
func (t *TablePrinter) PrintTasks(entries []pipeline.EntrySnapshot) error {
	if len(entries) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header.
	fmt.Fprintln(tw, "INDEX\tTASK\tTYPE\tSTATUS\tELAPSED\tMESSAGE")

	// Print rows.
	prefixes := TreePrefixes(snapshotNodes(entries))
	for i, e := range entries {
		status := string(e.Status)
		if e.EffectiveDisabled && e.Status != task.StatusDisabled {
			status = string(task.StatusDisabled) + " (parent)"
		}

		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.Index,
			prefixes[i]+e.Name,
			e.Kind,
			status,
			FormatElapsed(e.Elapsed),
			e.Message,
		)
	}

	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}
