package ui

import tea "github.com/charmbracelet/bubbletea"

// Suggestion pairs a short display label with the instruction sent on click.
type Suggestion struct {
	Label string
	Value string
}

// SuggestionItem is a clickable suggestion pill.
type SuggestionItem struct {
	Suggestion Suggestion
	OnClick    func(value string) tea.Cmd
}

// Activate invokes the click handler with the suggestion's value.
func (s SuggestionItem) Activate() tea.Cmd {
	if s.OnClick == nil {
		return nil
	}
	return s.OnClick(s.Suggestion.Value)
}

func (s SuggestionItem) View(focused bool) string {
	if focused {
		return suggestionFocusedStyle.Render(s.Suggestion.Label)
	}
	return suggestionStyle.Render(s.Suggestion.Label)
}
