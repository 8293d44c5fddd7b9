package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings handled by the views. List navigation and
// filtering keys come from [list.Model] itself.
type keyMap struct {
	open    key.Binding
	back    key.Binding
	export  key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "export")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "playlists")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
