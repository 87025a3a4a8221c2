package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Prev      key.Binding
	Next      key.Binding
	EditYear  key.Binding
	EditMonth key.Binding
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Focus     key.Binding
	Enter     key.Binding
	Escape    key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Prev:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev month")),
	Next:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next month")),
	EditYear:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "year")),
	EditMonth: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "month")),
	Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "scroll")),
	Down:      key.NewBinding(key.WithKeys("j", "down")),
	Top:       key.NewBinding(key.WithKeys("g", "home")),
	Bottom:    key.NewBinding(key.WithKeys("G", "end")),
	Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "jump")),
	Escape:    key.NewBinding(key.WithKeys("esc")),
}

func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.EditYear, k.EditMonth, k.Up, k.Focus, k.Enter, k.Quit}
}
