package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	P1Up    key.Binding
	P1Down  key.Binding
	P1Left  key.Binding
	P1Right key.Binding
	P2Up    key.Binding
	P2Down  key.Binding
	P2Left  key.Binding
	P2Right key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		P1Up:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "p1 up")),
		P1Down:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "p1 down")),
		P1Left:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "p1 left")),
		P1Right: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "p1 right")),
		P2Up:    key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "p2 up")),
		P2Down:  key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "p2 down")),
		P2Left:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "p2 left")),
		P2Right: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "p2 right")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset round")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.P1Up, k.P1Down, k.P1Left, k.P1Right},
		{k.P2Up, k.P2Down, k.P2Left, k.P2Right},
		{k.Reset, k.Help, k.Quit},
	}
}
