package printer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/printer"
	"github.com/slok/taskspipeline/internal/task"
)

func entriesFixture() []pipeline.EntrySnapshot {
	start := time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)
	stop := start.Add(65 * time.Second)

	return []pipeline.EntrySnapshot{
		{
			Index: 1, Depth: 0, LastChild: true,
			Snapshot: task.Snapshot{Name: "⭣ deploy", Kind: task.KindSequential, Status: task.StatusError, StartTime: start, StopTime: stop},
			Elapsed:  65 * time.Second,
		},
		{
			Index: 2, Depth: 1, LastChild: false,
			Snapshot: task.Snapshot{Name: "build", Kind: task.KindRunProcess, Status: task.StatusError, Message: "boom", StartTime: start, StopTime: stop},
			Elapsed:  65 * time.Second,
		},
		{
			Index: 3, Depth: 1, LastChild: true,
			Snapshot:          task.Snapshot{Name: "⮆", Kind: task.KindParallel, Status: task.StatusDisabled},
			EffectiveDisabled: true,
		},
		{
			Index: 4, Depth: 2, LastChild: true,
			Snapshot:          task.Snapshot{Name: "ping", Kind: task.KindPortConnectivity, Status: task.StatusNotStarted},
			EffectiveDisabled: true,
		},
	}
}

func TestTreePrefixes(t *testing.T) {
	tests := map[string]struct {
		nodes []printer.TreeNode
		exp   []string
	}{
		"A single root should not have prefix.": {
			nodes: []printer.TreeNode{{Depth: 0, LastChild: true}},
			exp:   []string{""},
		},

		"Nested children should continue the parent lines.": {
			nodes: []printer.TreeNode{
				{Depth: 0, LastChild: true},
				{Depth: 1, LastChild: false},
				{Depth: 2, LastChild: false},
				{Depth: 2, LastChild: true},
				{Depth: 1, LastChild: true},
				{Depth: 2, LastChild: false},
				{Depth: 3, LastChild: true},
				{Depth: 2, LastChild: true},
			},
			exp: []string{
				"",
				"├",
				"│├",
				"│└",
				"└",
				" ├",
				" │└",
				" └",
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.exp, printer.TreePrefixes(test.nodes))
		})
	}
}

func TestTablePrinterPrintTasks(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintTasks(entriesFixture())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "INDEX")
	assert.Contains(t, lines[1], "⭣ deploy")
	assert.Contains(t, lines[1], "0:01:05")
	assert.Contains(t, lines[2], "├build")
	assert.Contains(t, lines[2], "boom")
	assert.Contains(t, lines[3], "└⮆")
	assert.Contains(t, lines[4], " └ping")
	assert.Contains(t, lines[4], "DISABLED (parent)")
}

func TestJSONPrinterPrintTasks(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewJSONPrinter(&buf)

	err := p.PrintTasks(entriesFixture())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"name": "build"`)
	assert.Contains(t, out, `"type": "RunProcessTask"`)
	assert.Contains(t, out, `"elapsed_seconds": 65`)
	assert.Contains(t, out, `"started_at": "2026-01-30T10:00:00Z"`)
	assert.Contains(t, out, `"stopped_at": null`)
}

func TestTablePrinterPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	p := printer.NewTablePrinter(&buf)

	err := p.PrintMessage("ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", strings.TrimSpace(buf.String()))
}
