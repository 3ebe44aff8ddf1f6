package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/provider"
)

// StatusBarModel renders the bottom status bar.
type StatusBarModel struct {
	width int
	help  help.Model

	suggestionsFocused bool
	waiting            bool

	conv      *conversation.Conversation
	linked    int
	agentMiss bool

	// Temporary flash message (e.g. "Chat cleared")
	statusMessage string
	// Monotonic counter: incremented on each SetTemporaryMessage call.
	// StatusBarClearMsg carries the seq at time of scheduling; if it doesn't
	// match current seq the clear is stale and ignored.
	messageSeq int
}

func NewStatusBarModel() StatusBarModel {
	h := help.New()
	h.ShortSeparator = "  "
	h.Styles.ShortKey = statusBarAccentStyle
	h.Styles.ShortDesc = statusBarStyle
	h.Styles.ShortSeparator = statusBarStyle
	return StatusBarModel{help: h}
}

func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
	m.help.Width = width / 2
}

// SetState records which part of the UI has focus.
func (m *StatusBarModel) SetState(suggestionsFocused, waiting bool) {
	m.suggestionsFocused = suggestionsFocused
	m.waiting = waiting
}

// SetContext updates the repository, branch and provider summary.
func (m *StatusBarModel) SetContext(conv *conversation.Conversation, linkedProviders int) {
	m.conv = conv
	m.linked = linkedProviders
}

// SetAgentMissing marks that no agent CLI could be found.
func (m *StatusBarModel) SetAgentMissing(missing bool) {
	m.agentMiss = missing
}

// SetTemporaryMessage shows a flash message in the status bar.
// Returns a tea.Cmd that will send a StatusBarClearMsg after the given duration,
// which the caller must include in the returned command batch.
func (m *StatusBarModel) SetTemporaryMessage(msg string, duration time.Duration) tea.Cmd {
	m.messageSeq++
	m.statusMessage = msg
	seq := m.messageSeq
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return StatusBarClearMsg{Seq: seq}
	})
}

// ClearIfSeqMatch clears the message only if the given seq matches the current one.
// Returns true if the message was cleared.
func (m *StatusBarModel) ClearIfSeqMatch(seq int) bool {
	if seq == m.messageSeq {
		m.statusMessage = ""
		return true
	}
	return false
}

func (m StatusBarModel) View() string {
	var left string
	if m.statusMessage != "" {
		left = statusBarAccentStyle.Render(" " + m.statusMessage)
	} else {
		left = statusBarStyle.Render(" ") + m.help.ShortHelpView(m.bindings())
	}
	right := statusBarStyle.Render(m.contextInfo())

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	bar := left + statusBarStyle.Render(strings.Repeat(" ", padding)) + right
	return statusBarStyle.Width(m.width).Render(bar)
}

func (m StatusBarModel) bindings() []key.Binding {
	if m.waiting {
		return []key.Binding{GlobalKeys.Cancel, ChatKeys.ScrollUp, GlobalKeys.Quit}
	}
	if m.suggestionsFocused {
		return []key.Binding{
			SuggestionKeys.Prev, SuggestionKeys.Next, SuggestionKeys.Activate,
			GlobalKeys.SwitchFocus, GlobalKeys.Quit,
		}
	}
	return []key.Binding{
		ChatKeys.Send, GlobalKeys.SwitchFocus, GlobalKeys.NewChat, GlobalKeys.Quit,
	}
}

func (m StatusBarModel) contextInfo() string {
	var parts []string
	if m.agentMiss {
		parts = append(parts, "no agent")
	}
	if m.conv != nil && m.conv.SelectedRepository != "" {
		name := provider.TermsFor(m.conv.GitProvider).DisplayName
		repo := m.conv.SelectedRepository
		if m.conv.SelectedBranch != "" {
			repo += "@" + m.conv.SelectedBranch
		}
		parts = append(parts, name, repo)
	}
	parts = append(parts, fmt.Sprintf("%d linked", m.linked))
	return " " + strings.Join(parts, " │ ") + " "
}
