package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Tab     key.Binding
	Enter   key.Binding
	Preview key.Binding
	Buy     key.Binding
	Class   key.Binding
	Board   key.Binding
	Login   key.Binding
	Logout  key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left pane")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right pane")),
	Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/select")),
	Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
	Buy:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "buy")),
	Class:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "switch class")),
	Board:   key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "switch board")),
	Login:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "login")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
}
