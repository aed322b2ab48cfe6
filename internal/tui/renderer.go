package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/slok/taskspipeline/internal/pipeline"
	"github.com/slok/taskspipeline/internal/printer"
	"github.com/slok/taskspipeline/internal/task"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// Title, blank line, blank line before the footer, status line and help line.
	chromeLines = 5
	statusWidth = len(task.StatusNotStarted)
	columnGap   = 2
)

// Palette has the styles used by the renderer.
type Palette struct {
	Title         lipgloss.Style
	Index         lipgloss.Style
	SelectedIndex lipgloss.Style
	Prefix        lipgloss.Style
	Name          lipgloss.Style
	Elapsed       lipgloss.Style
	Running       lipgloss.Style
	Completed     lipgloss.Style
	Cancelled     lipgloss.Style
	Error         lipgloss.Style
	Message       lipgloss.Style
	Disabled      lipgloss.Style
	Prompt        lipgloss.Style
	Feedback      lipgloss.Style
}

// DefaultPalette returns the default colored palette.
func DefaultPalette() Palette {
	return Palette{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		Index:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		SelectedIndex: lipgloss.NewStyle().Bold(true).Reverse(true),
		Prefix:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Name:          lipgloss.NewStyle(),
		Elapsed:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Running:       lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Completed:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		Cancelled:     lipgloss.NewStyle().Foreground(lipgloss.Color("205")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Message:       lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Disabled:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		Prompt:        lipgloss.NewStyle().Bold(true),
		Feedback:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// NoColorPalette returns a palette without colors.
func NoColorPalette() Palette {
	plain := lipgloss.NewStyle()
	return Palette{
		Title:         plain.Bold(true),
		Index:         plain,
		SelectedIndex: plain.Reverse(true),
		Prefix:        plain,
		Name:          plain,
		Elapsed:       plain,
		Running:       plain,
		Completed:     plain,
		Cancelled:     plain,
		Error:         plain,
		Message:       plain,
		Disabled:      plain,
		Prompt:        plain.Bold(true),
		Feedback:      plain,
	}
}

// View is everything the renderer needs to draw a frame.
type View struct {
	Title    string
	Mode     Mode
	Input    string
	Selected int
	Scroll   int
	Feedback string
	Keys     []key.Binding
	Entries  []pipeline.EntrySnapshot
	// Width and Height are the terminal size, zero values use defaults.
	Width  int
	Height int
}

// Renderer draws the dashboard frames.
type Renderer struct {
	palette  Palette
	prefixes []string
	help     help.Model
}

// NewRenderer returns a new renderer, the tree prefixes are computed once from
// the shape of the entries.
func NewRenderer(palette Palette, entries []pipeline.Entry) *Renderer {
	nodes := make([]printer.TreeNode, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, printer.TreeNode{Depth: e.Depth, LastChild: e.LastChild})
	}

	h := help.New()
	h.Styles.ShortKey = palette.Prompt
	h.Styles.ShortDesc = palette.Index
	h.Styles.ShortSeparator = palette.Index

	return &Renderer{
		palette:  palette,
		prefixes: printer.TreePrefixes(nodes),
		help:     h,
	}
}

// Render returns the frame for the view.
func (r *Renderer) Render(v View) string {
	width, height := v.Width, v.Height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}

	var b strings.Builder
	b.WriteString(ansi.Truncate(r.palette.Title.Render(v.Title), width, "…"))
	b.WriteString("\n\n")

	rows := r.rows(v, width)
	visible := max(height-chromeLines, 1)
	start := min(max(v.Scroll, 0), max(len(rows)-visible, 0))
	end := min(start+visible, len(rows))
	for _, row := range rows[start:end] {
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ansi.Truncate(r.statusLine(v), width, "…"))
	b.WriteString("\n")

	r.help.Width = width
	b.WriteString(r.help.ShortHelpView(v.Keys))

	return b.String()
}

func (r *Renderer) rows(v View, width int) []string {
	showIndex := v.Mode != ModeNone
	indexWidth := len(strconv.Itoa(len(v.Entries)))

	selected := v.Selected
	if v.Mode == ModeSelectTask {
		selected, _ = strconv.Atoi(v.Input)
	}

	nameWidth := 0
	for i, e := range v.Entries {
		nameWidth = max(nameWidth, ansi.StringWidth(r.prefix(i)+e.Name))
	}

	rows := make([]string, 0, len(v.Entries))
	for i, e := range v.Entries {
		var cols []string

		if showIndex {
			idx := fmt.Sprintf("%*d", indexWidth, e.Index)
			if e.Index == selected {
				idx = r.palette.SelectedIndex.Render(idx)
			} else {
				idx = r.palette.Index.Render(idx)
			}
			cols = append(cols, idx)
		}

		name := r.palette.Prefix.Render(r.prefix(i)) + r.palette.Name.Render(e.Name)
		name += strings.Repeat(" ", nameWidth-ansi.StringWidth(r.prefix(i)+e.Name))
		cols = append(cols, name)

		cols = append(cols, r.palette.Elapsed.Render(fmt.Sprintf("%8s", printer.FormatElapsed(e.Elapsed))))
		cols = append(cols, r.statusStyle(e.Status).Render(fmt.Sprintf("%-*s", statusWidth, statusText(e.Status))))

		msgStyle := r.palette.Message
		if e.Status == task.StatusError {
			msgStyle = r.palette.Error
		}
		cols = append(cols, msgStyle.Render(firstLine(e.Message)))

		row := ansi.Truncate(strings.Join(cols, strings.Repeat(" ", columnGap)), width, "…")
		if e.EffectiveDisabled {
			row = r.palette.Disabled.Render(ansi.Strip(row))
		}
		rows = append(rows, row)
	}

	return rows
}

func (r *Renderer) prefix(i int) string {
	if i >= len(r.prefixes) {
		return ""
	}
	return r.prefixes[i]
}

func (r *Renderer) statusLine(v View) string {
	var line string
	switch v.Mode {
	case ModeSelectTask:
		line = r.palette.Prompt.Render("select task:") + " " + v.Input + "_"
	case ModeCommand:
		line = r.palette.Prompt.Render(fmt.Sprintf("task %d:", v.Selected)) + " choose a command"
	}

	if v.Feedback != "" {
		if line != "" {
			line += "  "
		}
		line += r.palette.Feedback.Render(v.Feedback)
	}

	return line
}

func (r *Renderer) statusStyle(st task.Status) lipgloss.Style {
	switch st {
	case task.StatusRunning:
		return r.palette.Running
	case task.StatusCompleted:
		return r.palette.Completed
	case task.StatusCancelled:
		return r.palette.Cancelled
	case task.StatusError:
		return r.palette.Error
	default:
		return r.palette.Message
	}
}

// statusText returns the status column text, not started and disabled tasks
// have no status.
func statusText(st task.Status) string {
	switch st {
	case task.StatusNotStarted, task.StatusDisabled:
		return ""
	default:
		return string(st)
	}
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return strings.TrimSpace(s)
}
