package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the panel actions.
type keyMap struct {
	Episodic   key.Binding
	Profile    key.Binding
	NextPanel  key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Refresh    key.Binding
	RefreshAll key.Binding
	Register   key.Binding
	Unregister key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Episodic: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "episodic panel"),
		),
		Profile: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "profile panel"),
		),
		NextPanel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand/collapse"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh panel"),
		),
		RefreshAll: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh all"),
		),
		Register: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "register server"),
		),
		Unregister: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unregister server"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPanel, k.Toggle, k.Refresh, k.Register, k.Unregister, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Episodic, k.Profile, k.NextPanel, k.Up, k.Down, k.Toggle},
		{k.Refresh, k.RefreshAll, k.Register, k.Unregister, k.Help, k.Quit},
	}
}
