package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shhac/shiptea/internal/agent"
	"github.com/shhac/shiptea/internal/analytics"
	"github.com/shhac/shiptea/internal/i18n"
	"github.com/shhac/shiptea/internal/logger"
)

// AppOptions wires the root model to its collaborators.
type AppOptions struct {
	// Agent runs chat turns. Nil when no agent CLI was found.
	Agent         AgentService
	Conversations ConversationStore
	Providers     ProviderSource
	Labels        i18n.Labeler
	Tracker       analytics.Tracker
	// RepoDir is the checkout the agent runs in when no conversation is detected.
	RepoDir      string
	PollInterval time.Duration
	// VerifyProviders, when set, checks stored provider tokens at startup.
	VerifyProviders func(context.Context)
	// Notify, when set, announces finished agent turns.
	Notify        func(title, body string) error
	MarkdownStyle string
}

// App is the root Bubbletea model.
type App struct {
	chatPanel ChatPanelModel
	statusBar StatusBarModel

	agent         AgentService
	conversations ConversationStore
	providers     ProviderSource
	labels        i18n.Labeler
	verify        func(context.Context)
	notify        func(title, body string) error

	ctx          context.Context
	repoDir      string
	pollInterval time.Duration

	// Active agent turn (nil when idle). turn numbers each started turn;
	// stream messages from any other turn are dropped.
	streamChan   chatStreamChan
	streamCancel context.CancelFunc
	turn         int

	// Set when a finished turn awaits its notification. The notification
	// goes out once the post-turn conversation refresh lands.
	notifyPending bool
	notifyErr     error

	width  int
	height int
}

// NewApp creates the root model. ctx carries the logger and bounds all
// background work.
func NewApp(ctx context.Context, opts AppOptions) App {
	if opts.Tracker == nil {
		opts.Tracker = analytics.Nop{}
	}
	md := NewMarkdownRenderer(opts.MarkdownStyle)
	statusBar := NewStatusBarModel()
	statusBar.SetAgentMissing(opts.Agent == nil)

	return App{
		chatPanel:     NewChatPanelModel(opts.Labels, opts.Providers, opts.Conversations, opts.Tracker, md),
		statusBar:     statusBar,
		agent:         opts.Agent,
		conversations: opts.Conversations,
		providers:     opts.Providers,
		labels:        opts.Labels,
		verify:        opts.VerifyProviders,
		notify:        opts.Notify,
		ctx:           ctx,
		repoDir:       opts.RepoDir,
		pollInterval:  opts.PollInterval,
	}
}

func (m App) Init() tea.Cmd {
	cmds := []tea.Cmd{refreshConversationCmd(m.ctx, m.conversations), textinput.Blink}
	if m.pollInterval > 0 {
		cmds = append(cmds, pollTickCmd(m.pollInterval))
	}
	if m.verify != nil {
		cmds = append(cmds, verifyProvidersCmd(m.ctx, m.verify))
	}
	return tea.Batch(cmds...)
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatPanel.SetSize(msg.Width, msg.Height-1)
		m.statusBar.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			m.cancelStream()
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.NewChat):
			return m, func() tea.Msg { return ChatClearMsg{} }
		case key.Matches(msg, GlobalKeys.Cancel):
			if m.streamChan != nil {
				return m, func() tea.Msg { return ChatCancelMsg{} }
			}
			return m, nil
		}

	case ChatSendMsg:
		return m.handleChatSend(msg.Message)

	case ChatStreamChunkMsg:
		if m.streamChan == nil || msg.Turn != m.turn {
			return m, nil
		}
		m.chatPanel.AppendStreamChunk(msg.Content)
		return m, listenForStream(m.streamChan)

	case ChatResponseMsg:
		if m.streamChan == nil || msg.Turn != m.turn {
			return m, nil
		}
		m.cancelStream()
		if msg.Err != nil {
			logger.FromContext(m.ctx).Error(msg.Err, "agent turn failed")
			m.chatPanel.SetChatError(msg.Err.Error())
		} else {
			m.chatPanel.AddResponse(msg.Content)
		}
		m.syncStatus()
		if m.notify != nil {
			m.notifyPending = true
			m.notifyErr = msg.Err
		}
		// The agent may have switched branches.
		return m, refreshConversationCmd(m.ctx, m.conversations)

	case ChatCancelMsg:
		if m.streamChan == nil {
			return m, nil
		}
		m.cancelStream()
		m.chatPanel.SetChatError("cancelled")
		m.syncStatus()
		return m, m.statusBar.SetTemporaryMessage("Agent stopped", 2*time.Second)

	case ChatClearMsg:
		m.cancelStream()
		m.chatPanel.ClearChat()
		if m.agent != nil {
			m.agent.ClearSession(m.workDir())
		}
		m.syncStatus()
		return m, m.statusBar.SetTemporaryMessage("Chat cleared", 2*time.Second)

	case pollTickMsg:
		return m, tea.Batch(
			refreshConversationCmd(m.ctx, m.conversations),
			pollTickCmd(m.pollInterval),
		)

	case conversationRefreshedMsg:
		if msg.Err != nil {
			logger.FromContext(m.ctx).V(1).Info("conversation refresh failed", "error", msg.Err.Error())
		}
		m.chatPanel.Relayout()
		m.syncStatus()
		if !m.notifyPending {
			return m, nil
		}
		m.notifyPending = false
		cmd := notifyTurnDoneCmd(m.ctx, m.notify, msg.Conversation, m.notifyErr)
		m.notifyErr = nil
		return m, cmd

	case providersVerifiedMsg:
		m.chatPanel.Relayout()
		m.syncStatus()
		return m, nil

	case StatusBarClearMsg:
		m.statusBar.ClearIfSeqMatch(msg.Seq)
		return m, nil
	}

	var cmd tea.Cmd
	m.chatPanel, cmd = m.chatPanel.Update(msg)
	m.syncStatus()
	return m, cmd
}

// handleChatSend validates state and kicks off a streaming agent turn.
func (m App) handleChatSend(message string) (tea.Model, tea.Cmd) {
	if m.streamChan != nil {
		return m, m.statusBar.SetTemporaryMessage("Agent is busy", 2*time.Second)
	}
	if m.agent == nil {
		m.chatPanel.StartTurn(message)
		m.chatPanel.SetChatError(m.labels.T(i18n.ChatAgentMissing))
		m.syncStatus()
		return m, nil
	}

	input := agent.Input{RepoPath: m.workDir(), Message: message}
	if conv := m.conversations.ActiveConversation(); conv != nil {
		input.Repository = conv.SelectedRepository
		input.Branch = conv.SelectedBranch
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.turn++
	m.streamChan = streamAgentTurn(ctx, m.agent, input, m.turn)
	m.streamCancel = cancel
	spin := m.chatPanel.StartTurn(message)
	m.syncStatus()
	return m, tea.Batch(listenForStream(m.streamChan), spin)
}

func (m *App) cancelStream() {
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}
	m.streamChan = nil
}

func (m App) workDir() string {
	if conv := m.conversations.ActiveConversation(); conv != nil && conv.RepoPath != "" {
		return conv.RepoPath
	}
	return m.repoDir
}

func (m *App) syncStatus() {
	linked := 0
	if m.providers != nil {
		linked = len(m.providers.Providers())
	}
	m.statusBar.SetContext(m.conversations.ActiveConversation(), linked)
	m.statusBar.SetState(m.chatPanel.SuggestionsFocused(), m.chatPanel.IsWaiting())
}

func (m App) View() string {
	if m.width < 40 || m.height < 8 {
		msg := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Render("Terminal too small. Please resize to at least 40×8.")
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.chatPanel.View(), m.statusBar.View())
}
