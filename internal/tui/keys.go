package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up, Down           key.Binding
	MoveUp, MoveDown   key.Binding
	MovePrev, MoveNext key.Binding
	AddChild           key.Binding
	AddSection         key.Binding
	AddBreak           key.Binding
	EditTitle          key.Binding
	EditDescription    key.Binding
	Delete             key.Binding
	Undo, Redo         key.Binding
	Collapse           key.Binding
	Preview            key.Binding
	Quit               key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:              key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k", "up")),
		Down:            key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j", "down")),
		MoveUp:          key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move up")),
		MoveDown:        key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move down")),
		MovePrev:        key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "topic to prev subsection")),
		MoveNext:        key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "topic to next subsection")),
		AddChild:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add child")),
		AddSection:      key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "add section")),
		AddBreak:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "add break")),
		EditTitle:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
		EditDescription: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "edit description")),
		Delete:          key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Undo:            key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:            key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		Collapse:        key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "collapse")),
		Preview:         key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Quit:            key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// shortHelp is the footer hint line.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.MoveDown, k.MoveUp, k.AddChild, k.EditTitle, k.Delete, k.Undo, k.Preview, k.Quit}
}
