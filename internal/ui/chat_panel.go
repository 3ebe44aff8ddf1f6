package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/shiptea/internal/analytics"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/i18n"
	"github.com/shhac/shiptea/internal/provider"
)

// chatFocus identifies which part of the chat panel receives keys.
type chatFocus int

const (
	focusInput chatFocus = iota
	focusSuggestions
)

// ChatPanelModel manages the transcript, the input line and the action
// suggestions shown between them.
type ChatPanelModel struct {
	viewport    viewport.Model
	textInput   textinput.Model
	suggestions ActionSuggestions
	transcript  transcript
	spinner     spinner.Model

	conversations conversation.Source
	labels        i18n.Labeler
	md            *MarkdownRenderer

	focus   chatFocus
	width   int
	height  int
	focused bool
	ready   bool
}

// sendInstruction turns a suggestion click into a chat turn.
func sendInstruction(instruction string) tea.Cmd {
	return func() tea.Msg { return ChatSendMsg{Message: instruction} }
}

func NewChatPanelModel(
	labels i18n.Labeler,
	providers ProviderSource,
	conversations conversation.Source,
	tracker analytics.Tracker,
	md *MarkdownRenderer,
) ChatPanelModel {
	ti := textinput.New()
	ti.Placeholder = labels.T(i18n.ChatInputPlaceholder)
	ti.CharLimit = 2000
	ti.Focus()

	if md == nil {
		md = NewMarkdownRenderer("")
	}

	return ChatPanelModel{
		textInput:     ti,
		suggestions:   NewActionSuggestions(sendInstruction, providers, conversations, labels, tracker),
		spinner:       newLoadingSpinner(),
		conversations: conversations,
		labels:        labels,
		md:            md,
		focused:       true,
	}
}

func (m ChatPanelModel) Update(msg tea.Msg) (ChatPanelModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		if !m.transcript.isWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.MouseMsg:
		if m.ready {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m ChatPanelModel) handleKey(msg tea.KeyMsg) (ChatPanelModel, tea.Cmd) {
	switch {
	case key.Matches(msg, GlobalKeys.SwitchFocus):
		if m.focus == focusInput && m.suggestions.Available() && !m.transcript.isWaiting {
			m.setFocus(focusSuggestions)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil
	case key.Matches(msg, ChatKeys.ScrollUp), key.Matches(msg, ChatKeys.ScrollDn):
		if !m.ready {
			return m, nil
		}
		if key.Matches(msg, ChatKeys.ScrollUp) {
			m.viewport.HalfViewUp()
		} else {
			m.viewport.HalfViewDown()
		}
		return m, nil
	}

	if m.focus == focusSuggestions {
		if m.transcript.isWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.suggestions, cmd = m.suggestions.Update(msg)
		if !m.suggestions.Available() {
			m.setFocus(focusInput)
		}
		m.layout()
		return m, cmd
	}

	if key.Matches(msg, ChatKeys.Send) {
		text := strings.TrimSpace(m.textInput.Value())
		if text == "" || m.transcript.isWaiting {
			return m, nil
		}
		m.textInput.Reset()
		return m, sendInstruction(text)
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *ChatPanelModel) setFocus(f chatFocus) {
	m.focus = f
	if f == focusSuggestions {
		m.textInput.Blur()
		m.suggestions.SetFocused(true)
		return
	}
	m.suggestions.SetFocused(false)
	m.textInput.Focus()
}

// SuggestionsFocused reports whether keys go to the suggestion row.
func (m ChatPanelModel) SuggestionsFocused() bool {
	return m.focus == focusSuggestions
}

// HasPullRequest reports whether a review request was created in this session.
func (m ChatPanelModel) HasPullRequest() bool {
	return m.suggestions.HasPullRequest()
}

// IsWaiting reports whether an agent turn is in flight.
func (m ChatPanelModel) IsWaiting() bool {
	return m.transcript.isWaiting
}

// MessageCount returns the number of messages in the transcript.
func (m ChatPanelModel) MessageCount() int {
	return len(m.transcript.messages)
}

func (m *ChatPanelModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	innerWidth := width - 4
	if innerWidth < 1 {
		innerWidth = 1
	}
	m.textInput.Width = innerWidth - 4
	m.suggestions.SetWidth(innerWidth)

	// one column for the scrollbar
	vpWidth := max(1, innerWidth-1)
	if !m.ready {
		m.viewport = viewport.New(vpWidth, 1)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
	}
	m.layout()
}

// Relayout recomputes the viewport height after the suggestion row may have
// appeared or disappeared.
func (m *ChatPanelModel) Relayout() {
	if m.focus == focusSuggestions && !m.suggestions.Available() {
		m.setFocus(focusInput)
	}
	m.layout()
}

func (m *ChatPanelModel) layout() {
	if !m.ready {
		return
	}
	// borders (2), header (1), input line (1)
	h := m.height - 4
	if row := m.suggestions.View(); row != "" {
		h -= lipgloss.Height(row)
	}
	if h < 1 {
		h = 1
	}
	m.viewport.Height = h
	m.refreshViewport()
}

func (m *ChatPanelModel) SetFocused(focused bool) {
	m.focused = focused
	if !focused {
		m.textInput.Blur()
		m.suggestions.SetFocused(false)
		return
	}
	m.setFocus(m.focus)
}

// StartTurn records the user's message and enters the waiting state.
// The returned command drives the busy spinner.
func (m *ChatPanelModel) StartTurn(message string) tea.Cmd {
	m.transcript.startTurn(message)
	if m.focus == focusSuggestions {
		m.setFocus(focusInput)
	}
	m.layout()
	m.viewport.GotoBottom()
	return m.spinner.Tick
}

// AppendStreamChunk appends a text chunk during streaming and refreshes the viewport.
func (m *ChatPanelModel) AppendStreamChunk(chunk string) {
	m.transcript.appendChunk(chunk, m.md, m.viewport.Width)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// AddResponse appends the agent's answer and clears the waiting state.
func (m *ChatPanelModel) AddResponse(content string) {
	m.transcript.finishTurn(content)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// SetChatError sets a chat error and clears the waiting state.
func (m *ChatPanelModel) SetChatError(err string) {
	m.transcript.fail(err)
	m.refreshViewport()
	m.viewport.GotoBottom()
}

// ClearChat resets the transcript. The review-request state is kept.
func (m *ChatPanelModel) ClearChat() {
	m.transcript.clear()
	m.refreshViewport()
}

func (m *ChatPanelModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcript.render(m.viewport.Width, m.md, m.labels))
}

func (m ChatPanelModel) View() string {
	parts := []string{m.renderHeader()}
	if m.ready {
		parts = append(parts, lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), renderScrollbar(m.viewport)))
	} else {
		parts = append(parts, "Loading...")
	}
	if row := m.suggestions.View(); row != "" {
		parts = append(parts, row)
	}
	parts = append(parts, m.renderInput())

	inner := lipgloss.JoinVertical(lipgloss.Left, parts...)
	style := panelStyle(m.focused, m.transcript.isWaiting, m.width-2, m.height-2)
	return style.Render(inner)
}

func (m ChatPanelModel) renderHeader() string {
	var conv *conversation.Conversation
	if m.conversations != nil {
		conv = m.conversations.ActiveConversation()
	}
	if conv == nil || conv.SelectedRepository == "" {
		return headerDimStyle.Render("no repository selected")
	}

	header := headerRepoStyle.Render(conv.SelectedRepository)
	if conv.SelectedBranch != "" {
		header += headerDimStyle.Render(" @ " + conv.SelectedBranch)
	}
	header += " " + headerProviderStyle.Render(provider.TermsFor(conv.GitProvider).DisplayName)
	if m.suggestions.HasPullRequest() {
		header += headerDimStyle.Render(" · " + provider.TermsFor(conv.GitProvider).Short + " open")
	}
	return header
}

func (m ChatPanelModel) renderInput() string {
	promptColor := lipgloss.Color("240")
	if m.focus == focusInput && m.focused {
		promptColor = lipgloss.Color("42")
	}
	prefix := lipgloss.NewStyle().Foreground(promptColor).Bold(true).Render("> ")

	if m.transcript.isWaiting {
		return prefix + m.spinner.View() + " " + chatThinkingStyle.Render(m.labels.T(i18n.ChatThinking))
	}
	return prefix + m.textInput.View()
}
