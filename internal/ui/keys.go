package ui

import "github.com/charmbracelet/bubbles/key"

// GlobalKeyMap defines keys handled by the root model.
type GlobalKeyMap struct {
	Quit        key.Binding
	NewChat     key.Binding
	SwitchFocus key.Binding
	Cancel      key.Binding
}

var GlobalKeys = GlobalKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("Ctrl+C", "quit"),
	),
	NewChat: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("Ctrl+N", "new chat"),
	),
	SwitchFocus: key.NewBinding(
		key.WithKeys("tab", "shift+tab"),
		key.WithHelp("Tab", "input/actions"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("Ctrl+X", "stop agent"),
	),
}

// ChatKeyMap defines keys for the chat input and transcript.
type ChatKeyMap struct {
	Send     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
}

var ChatKeys = ChatKeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "send"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("PgUp", "scroll up"),
	),
	ScrollDn: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("PgDn", "scroll down"),
	),
}

// SuggestionKeyMap defines keys for the action suggestion row.
type SuggestionKeyMap struct {
	Prev     key.Binding
	Next     key.Binding
	Activate key.Binding
	Pick1    key.Binding
	Pick2    key.Binding
}

var SuggestionKeys = SuggestionKeyMap{
	Prev: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev action"),
	),
	Next: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next action"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("Enter", "run action"),
	),
	Pick1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "first action"),
	),
	Pick2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "second action"),
	),
}
