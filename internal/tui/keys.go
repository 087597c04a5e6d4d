package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit       key.Binding
	Ruler      key.Binding
	Crosshairs key.Binding
	NextWidget key.Binding
	SliceUp    key.Binding
	SliceDown  key.Binding
	Delete     key.Binding
	Unfocus    key.Binding
	Save       key.Binding
	Load       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Ruler:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "ruler")),
		Crosshairs: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "crosshairs")),
		NextWidget: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus next")),
		SliceUp:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "slice +1")),
		SliceDown:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "slice -1")),
		Delete:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Unfocus:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "unfocus")),
		Save:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Load:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "load")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Ruler, k.Crosshairs, k.NextWidget, k.SliceUp, k.SliceDown, k.Delete, k.Save, k.Load, k.Quit}
}
