package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/shiptea/internal/analytics"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/i18n"
	"github.com/shhac/shiptea/internal/provider"
)

// SuggestionsClickFunc receives the instruction of a clicked suggestion.
type SuggestionsClickFunc func(instruction string) tea.Cmd

// ProviderSource lists the providers the user has linked.
type ProviderSource interface {
	Providers() []provider.ID
}

type reviewState int

const (
	stateNoReviewRequest reviewState = iota
	stateReviewRequestOpen
)

// ActionSuggestions offers push and review-request actions for the active
// conversation. Once a review request is created it only offers pushing to
// it, for the lifetime of the model.
type ActionSuggestions struct {
	onSuggestionsClick SuggestionsClickFunc
	providers          ProviderSource
	conversations      conversation.Source
	labels             i18n.Labeler
	tracker            analytics.Tracker

	state   reviewState
	cursor  int
	focused bool
	width   int
}

func NewActionSuggestions(
	onSuggestionsClick SuggestionsClickFunc,
	providers ProviderSource,
	conversations conversation.Source,
	labels i18n.Labeler,
	tracker analytics.Tracker,
) ActionSuggestions {
	return ActionSuggestions{
		onSuggestionsClick: onSuggestionsClick,
		providers:          providers,
		conversations:      conversations,
		labels:             labels,
		tracker:            tracker,
	}
}

// HasPullRequest reports whether a review request was created from this model.
func (a ActionSuggestions) HasPullRequest() bool {
	return a.state == stateReviewRequestOpen
}

// Available reports whether any suggestion would render right now.
func (a ActionSuggestions) Available() bool {
	return a.eligibleConversation() != nil
}

// eligibleConversation returns the active conversation when at least one
// provider is linked and a repository is selected, nil otherwise.
func (a ActionSuggestions) eligibleConversation() *conversation.Conversation {
	if a.providers == nil || len(a.providers.Providers()) == 0 {
		return nil
	}
	if a.conversations == nil {
		return nil
	}
	conv := a.conversations.ActiveConversation()
	if conv == nil || conv.SelectedRepository == "" {
		return nil
	}
	return conv
}

// Suggestions builds the items for the current state and inputs.
// It returns nil when no provider is linked or no repository is selected.
func (a *ActionSuggestions) Suggestions() []SuggestionItem {
	conv := a.eligibleConversation()
	if conv == nil {
		return nil
	}
	terms := provider.TermsFor(conv.GitProvider)

	if a.state == stateReviewRequestOpen {
		return []SuggestionItem{{
			Suggestion: Suggestion{Label: a.label(i18n.ActionPushChangesToPR), Value: terms.PushToPR},
			OnClick: func(value string) tea.Cmd {
				analytics.Fire(a.tracker, analytics.PushToPRClicked)
				return a.emit(value)
			},
		}}
	}

	return []SuggestionItem{
		{
			Suggestion: Suggestion{Label: a.label(i18n.ActionPushToBranch), Value: terms.PushToBranch},
			OnClick: func(value string) tea.Cmd {
				analytics.Fire(a.tracker, analytics.PushToBranchClicked)
				return a.emit(value)
			},
		},
		{
			Suggestion: Suggestion{Label: a.label(i18n.ActionPushCreatePR), Value: terms.CreatePR},
			OnClick: func(value string) tea.Cmd {
				analytics.Fire(a.tracker, analytics.CreatePRClicked)
				cmd := a.emit(value)
				a.state = stateReviewRequestOpen
				return cmd
			},
		},
	}
}

// Click activates the i-th suggestion. Out-of-range indexes are ignored.
func (a *ActionSuggestions) Click(i int) tea.Cmd {
	items := a.Suggestions()
	if i < 0 || i >= len(items) {
		return nil
	}
	cmd := items[i].Activate()
	a.clampCursor()
	return cmd
}

func (a *ActionSuggestions) emit(instruction string) tea.Cmd {
	if a.onSuggestionsClick == nil {
		return nil
	}
	return a.onSuggestionsClick(instruction)
}

func (a ActionSuggestions) label(k i18n.Key) string {
	if a.labels == nil {
		return string(k)
	}
	return a.labels.T(k)
}

func (a *ActionSuggestions) clampCursor() {
	n := len(a.Suggestions())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Cursor returns the index of the highlighted suggestion.
func (a ActionSuggestions) Cursor() int {
	return a.cursor
}

func (a *ActionSuggestions) SetFocused(focused bool) {
	a.focused = focused
	a.clampCursor()
}

func (a *ActionSuggestions) SetWidth(width int) {
	a.width = width
}

func (a ActionSuggestions) Update(msg tea.Msg) (ActionSuggestions, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !a.focused {
		return a, nil
	}

	switch {
	case key.Matches(keyMsg, SuggestionKeys.Prev):
		a.cursor--
		a.clampCursor()
	case key.Matches(keyMsg, SuggestionKeys.Next):
		a.cursor++
		a.clampCursor()
	case key.Matches(keyMsg, SuggestionKeys.Activate):
		return a, a.Click(a.cursor)
	case key.Matches(keyMsg, SuggestionKeys.Pick1):
		return a, a.Click(0)
	case key.Matches(keyMsg, SuggestionKeys.Pick2):
		return a, a.Click(1)
	}
	return a, nil
}

// View renders the suggestion row, or an empty string when nothing applies.
func (a ActionSuggestions) View() string {
	items := a.Suggestions()
	if len(items) == 0 {
		return ""
	}

	pills := make([]string, 0, len(items)*2)
	for i, item := range items {
		if i > 0 {
			pills = append(pills, " ")
		}
		pills = append(pills, item.View(a.focused && i == a.cursor))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, pills...)
	if a.width > 0 {
		return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, row)
	}
	return row
}
