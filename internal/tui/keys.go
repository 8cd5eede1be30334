package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Platform     key.Binding
	AllPlatforms key.Binding
	Apply        key.Binding
	Cancel       key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

var keys = keyMap{
	Platform: key.NewBinding(
		key.WithKeys("p", "/"),
		key.WithHelp("p", "platform"),
	),
	AllPlatforms: key.NewBinding(
		key.WithKeys("a", "u"),
		key.WithHelp("a", "all platforms"),
	),
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// boardKeys and platformKeys implement help.KeyMap for the two focus states
type boardKeys struct{ keyMap }

func (k boardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Platform, k.AllPlatforms, k.Quit}
}

func (k boardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type platformKeys struct{ keyMap }

func (k platformKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Cancel, k.ForceQuit}
}

func (k platformKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
