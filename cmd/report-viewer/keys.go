package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Prev     key.Binding
	Next     key.Binding
	Reload   key.Binding
	Generate key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move")),
		Prev:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "device")),
		Next:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "device")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpLine renders the short help shown under the table.
func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Up, k.Prev, k.Generate, k.Reload, k.Quit}
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
