package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	// None mode.
	Start     key.Binding
	CancelAll key.Binding
	Select    key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding

	// Select task mode.
	Digit     key.Binding
	Backspace key.Binding
	Enter     key.Binding

	// Command mode.
	Disable key.Binding
	Enable  key.Binding
	Cancel  key.Binding
	Run     key.Binding

	Abort     key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Start:     key.NewBinding(key.WithKeys("s", "S"), key.WithHelp("s", "start")),
		CancelAll: key.NewBinding(key.WithKeys("c", "C"), key.WithHelp("c", "cancel all")),
		Select:    key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "select task")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Quit:      key.NewBinding(key.WithKeys("x", "X", "q"), key.WithHelp("x/q", "exit")),

		Digit:     key.NewBinding(key.WithKeys("0", "1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("0-9", "task index")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "delete")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),

		Disable: key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "disable")),
		Enable:  key.NewBinding(key.WithKeys("e", "E"), key.WithHelp("e", "enable")),
		Cancel:  key.NewBinding(key.WithKeys("c", "C"), key.WithHelp("c", "cancel")),
		Run:     key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "run")),

		Abort:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// bindings returns the key bindings available in a mode, in help order.
func (k keyMap) bindings(m Mode) []key.Binding {
	switch m {
	case ModeSelectTask:
		return []key.Binding{k.Digit, k.Backspace, k.Enter, k.Abort}
	case ModeCommand:
		return []key.Binding{k.Disable, k.Enable, k.Cancel, k.Run, k.Abort}
	default:
		return []key.Binding{k.Start, k.CancelAll, k.Select, k.Up, k.Down, k.Quit}
	}
}
