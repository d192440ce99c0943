package tui

import "github.com/charmbracelet/bubbles/key"

// jump is how far ctrl+n and ctrl+p move the selection.
const jump = 4

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	JumpNext key.Binding
	JumpPrev key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Run      key.Binding
	Copy     key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("down", "ctrl+j", "tab"), key.WithHelp("↓/tab", "next")),
		Prev:     key.NewBinding(key.WithKeys("up", "ctrl+k", "shift+tab"), key.WithHelp("↑/S-tab", "previous")),
		JumpNext: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "down 4")),
		JumpPrev: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("C-p", "up 4")),
		PageDown: key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("C-d", "page down")),
		PageUp:   key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("C-u", "page up")),
		Run:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("C-y", "copy")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel")),
	}
}
