package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	Enter          key.Binding
	Escape         key.Binding
	Filter         key.Binding
	PlayPause      key.Binding
	Resync         key.Binding
	TranscriptUp   key.Binding
	TranscriptDown key.Binding
	ChatUp         key.Binding
	ChatDown       key.Binding
	Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:             key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
		Down:           key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		Enter:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "jump")),
		Escape:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Filter:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter")),
		PlayPause:      key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "play/pause")),
		Resync:         key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "resync")),
		TranscriptUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "transcript up")),
		TranscriptDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "transcript down")),
		ChatUp:         key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "chat up")),
		ChatDown:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "chat down")),
		Quit:           key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// shortHelp lists the bindings shown in the footer.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Filter, k.PlayPause, k.Resync, k.TranscriptUp, k.ChatUp, k.Quit}
}
