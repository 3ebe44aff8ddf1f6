package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/zapr"
	"github.com/shhac/shiptea/internal/analytics"
	"github.com/shhac/shiptea/internal/i18n"
	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestApp(t *testing.T, svc AgentService, store *fakeStore, providers fakeProviders) (App, *analytics.Recorder) {
	t.Helper()
	rec := &analytics.Recorder{}
	app := NewApp(context.Background(), AppOptions{
		Agent:         svc,
		Conversations: store,
		Providers:     providers,
		Labels:        keyLabels{},
		Tracker:       rec,
		RepoDir:       "/fallback",
		PollInterval:  time.Second,
		MarkdownStyle: "notty",
	})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return model.(App), rec
}

// drain feeds stream messages back into the app until the turn ends.
func drain(t *testing.T, app App) App {
	t.Helper()
	for i := 0; i < 100 && app.streamChan != nil; i++ {
		msg := listenForStream(app.streamChan)()
		if msg == nil {
			break
		}
		model, _ := app.Update(msg)
		app = model.(App)
	}
	return app
}

func send(t *testing.T, app App, text string) App {
	t.Helper()
	model, _ := app.Update(ChatSendMsg{Message: text})
	return model.(App)
}

func TestApp_ChatTurnStreamsAndCompletes(t *testing.T) {
	svc := &fakeAgent{chunks: []string{"Work", "ing"}, reply: "Done."}
	store := &fakeStore{conv: repoConv(provider.GitHub)}
	app, _ := newTestApp(t, svc, store, fakeProviders{provider.GitHub})

	app = send(t, app, "add tests")
	require.True(t, app.chatPanel.IsWaiting())
	app = drain(t, app)

	assert.False(t, app.chatPanel.IsWaiting())
	assert.Equal(t, 2, app.chatPanel.MessageCount())
	assert.Nil(t, app.streamChan)

	turns := svc.turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "add tests", turns[0].Message)
	assert.Equal(t, "acme/widgets", turns[0].Repository)
	assert.Equal(t, "feature/login", turns[0].Branch)
	assert.Equal(t, "/tmp/widgets", turns[0].RepoPath)
}

func TestApp_AgentErrorShownInChat(t *testing.T) {
	svc := &fakeAgent{err: errors.New("context deadline exceeded")}
	app, _ := newTestApp(t, svc, &fakeStore{conv: repoConv(provider.GitHub)}, nil)

	app = drain(t, send(t, app, "hi"))
	assert.False(t, app.chatPanel.IsWaiting())
	assert.Equal(t, "context deadline exceeded", app.chatPanel.transcript.chatError)
}

func TestApp_MissingAgent(t *testing.T) {
	app, _ := newTestApp(t, nil, &fakeStore{}, nil)

	app = send(t, app, "hi")
	assert.False(t, app.chatPanel.IsWaiting())
	assert.Equal(t, "label:"+string(i18n.ChatAgentMissing), app.chatPanel.transcript.chatError)
	assert.Contains(t, app.statusBar.contextInfo(), "no agent")
}

func TestApp_SuggestionClickRunsAgentTurn(t *testing.T) {
	svc := &fakeAgent{reply: "Opened."}
	store := &fakeStore{conv: repoConv(provider.GitLab)}
	app, rec := newTestApp(t, svc, store, fakeProviders{provider.GitLab})

	model, _ := app.Update(keyPress("tab"))
	app = model.(App)
	require.True(t, app.chatPanel.SuggestionsFocused())

	model, cmd := app.Update(keyPress("2"))
	app = model.(App)
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, ChatSendMsg{}, msg)

	model, _ = app.Update(msg)
	app = drain(t, model.(App))

	turns := svc.turns()
	require.Len(t, turns, 1)
	assert.Equal(t, provider.TermsFor(provider.GitLab).CreatePR, turns[0].Message)
	assert.True(t, app.chatPanel.HasPullRequest())
	assert.Equal(t, []string{analytics.CreatePRClicked}, rec.Events())
}

func TestApp_BusyAgentRejectsSecondTurn(t *testing.T) {
	svc := &fakeAgent{reply: "ok", release: make(chan struct{})}
	app, _ := newTestApp(t, svc, &fakeStore{conv: repoConv(provider.GitHub)}, nil)

	app = send(t, app, "first")
	app = send(t, app, "second")
	close(svc.release)
	app = drain(t, app)

	turns := svc.turns()
	require.Len(t, turns, 1)
	assert.Equal(t, "first", turns[0].Message)
}

func TestApp_CancelStopsTurn(t *testing.T) {
	svc := &fakeAgent{release: make(chan struct{})}
	app, _ := newTestApp(t, svc, &fakeStore{conv: repoConv(provider.GitHub)}, nil)

	app = send(t, app, "long job")
	model, cmd := app.Update(keyPress("ctrl+x"))
	app = model.(App)
	require.NotNil(t, cmd)
	model, _ = app.Update(cmd())
	app = model.(App)

	assert.False(t, app.chatPanel.IsWaiting())
	assert.Nil(t, app.streamChan)
	assert.Nil(t, app.streamCancel)
}

func TestApp_ClearResetsAgentSession(t *testing.T) {
	svc := &fakeAgent{reply: "ok"}
	app, _ := newTestApp(t, svc, &fakeStore{conv: repoConv(provider.GitHub)}, nil)
	app = drain(t, send(t, app, "hi"))

	model, _ := app.Update(ChatClearMsg{})
	app = model.(App)
	assert.Equal(t, 0, app.chatPanel.MessageCount())
	assert.Equal(t, []string{"/tmp/widgets"}, svc.cleared)
}

func TestApp_ClearWithoutConversationUsesRepoDir(t *testing.T) {
	svc := &fakeAgent{}
	app, _ := newTestApp(t, svc, &fakeStore{}, nil)
	model, _ := app.Update(ChatClearMsg{})
	_ = model
	assert.Equal(t, []string{"/fallback"}, svc.cleared)
}

func TestApp_PollRefreshesConversation(t *testing.T) {
	store := &fakeStore{}
	app, _ := newTestApp(t, &fakeAgent{}, store, fakeProviders{provider.GitHub})

	_, cmd := app.Update(pollTickMsg{})
	require.NotNil(t, cmd)

	store.set(repoConv(provider.Bitbucket))
	msg := refreshConversationCmd(context.Background(), store)()
	model, _ := app.Update(msg)
	app = model.(App)

	assert.Equal(t, 1, store.refreshes)
	assert.True(t, app.chatPanel.suggestions.Available())
	assert.Contains(t, app.statusBar.contextInfo(), "Bitbucket")
}

func TestApp_Quit(t *testing.T) {
	app, _ := newTestApp(t, &fakeAgent{}, &fakeStore{}, nil)
	_, cmd := app.Update(keyPress("ctrl+c"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_ViewTooSmall(t *testing.T) {
	app, _ := newTestApp(t, &fakeAgent{}, &fakeStore{}, nil)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	assert.Contains(t, model.View(), "Terminal too small")
}

func TestApp_InitSchedulesWork(t *testing.T) {
	verified := make(chan struct{}, 1)
	app := NewApp(context.Background(), AppOptions{
		Conversations:   &fakeStore{},
		Labels:          keyLabels{},
		PollInterval:    time.Minute,
		VerifyProviders: func(context.Context) { verified <- struct{}{} },
	})
	assert.NotNil(t, app.Init())

	msg := verifyProvidersCmd(context.Background(), app.verify)()
	assert.Equal(t, providersVerifiedMsg{}, msg)
	<-verified
}

func TestApp_NotifiesAfterPostTurnRefresh(t *testing.T) {
	var titles, bodies []string
	svc := &fakeAgent{reply: "ok"}
	store := &fakeStore{conv: repoConv(provider.GitHub)}
	moved := repoConv(provider.GitHub)
	moved.SelectedBranch = "feature/login-tests"
	store.next = moved

	app := NewApp(context.Background(), AppOptions{
		Agent:         svc,
		Conversations: store,
		Labels:        keyLabels{},
		Notify: func(title, body string) error {
			titles = append(titles, title)
			bodies = append(bodies, body)
			return nil
		},
	})
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = send(t, model.(App), "hi")

	msg := listenForStream(app.streamChan)()
	require.IsType(t, ChatResponseMsg{}, msg)
	model, cmd := app.Update(msg)
	app = model.(App)
	require.NotNil(t, cmd)
	assert.Empty(t, titles, "no notification before the conversation is re-read")

	// The agent created a branch; the refresh picks it up.
	model, cmd = app.Update(cmd())
	app = model.(App)
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, []string{"shiptea: agent finished"}, titles)
	assert.Equal(t, []string{"acme/widgets @ feature/login-tests"}, bodies)

	// Later refreshes do not notify again.
	_, cmd = app.Update(conversationRefreshedMsg{Conversation: store.ActiveConversation()})
	assert.Nil(t, cmd)
	assert.Len(t, titles, 1)
}

func TestApp_NoNotifierNoNotification(t *testing.T) {
	app, _ := newTestApp(t, &fakeAgent{reply: "ok"}, &fakeStore{conv: repoConv(provider.GitHub)}, nil)
	app = drain(t, send(t, app, "hi"))

	_, cmd := app.Update(conversationRefreshedMsg{})
	assert.Nil(t, cmd)
	assert.Nil(t, notifyTurnDoneCmd(context.Background(), nil, nil, nil))
}

func TestNotifyTurnDoneCmd_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zapr.NewLogger(zap.New(core))
	ctx := logger.WithLogger(context.Background(), &log)

	cmd := notifyTurnDoneCmd(ctx, func(string, string) error {
		return errors.New("no notification daemon")
	}, repoConv(provider.GitHub), errors.New("exit status 1"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())

	entries := logs.FilterMessage("notification failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "no notification daemon", entries[0].ContextMap()["error"])
}

func TestApp_StaleTurnMessagesAreDropped(t *testing.T) {
	svc := &fakeAgent{reply: "second done", release: make(chan struct{})}
	app, _ := newTestApp(t, svc, &fakeStore{conv: repoConv(provider.GitHub)}, nil)

	app = send(t, app, "first")
	firstTurn := app.turn

	model, _ := app.Update(ChatCancelMsg{})
	app = model.(App)
	require.False(t, app.chatPanel.IsWaiting())

	app = send(t, app, "second")
	require.True(t, app.chatPanel.IsWaiting())
	require.NotEqual(t, firstTurn, app.turn)

	// A listener still parked on the first turn's channel delivers late.
	for _, stale := range []tea.Msg{
		ChatStreamChunkMsg{Turn: firstTurn, Content: "from the first turn"},
		ChatResponseMsg{Turn: firstTurn, Err: context.Canceled},
	} {
		var cmd tea.Cmd
		model, cmd = app.Update(stale)
		app = model.(App)
		assert.Nil(t, cmd)
	}
	assert.True(t, app.chatPanel.IsWaiting(), "second turn still running")
	assert.NotNil(t, app.streamChan)
	assert.NotNil(t, app.streamCancel)
	assert.Empty(t, app.chatPanel.transcript.stream.content)
	assert.Empty(t, app.chatPanel.transcript.chatError)

	close(svc.release)
	app = drain(t, app)

	assert.False(t, app.chatPanel.IsWaiting())
	assert.Empty(t, app.chatPanel.transcript.chatError)
	msgs := app.chatPanel.transcript.messages
	require.NotEmpty(t, msgs)
	assert.Equal(t, "second done", msgs[len(msgs)-1].Content)
}

func TestApp_StaleTurnAfterClearIsDropped(t *testing.T) {
	svc := &fakeAgent{reply: "ok", release: make(chan struct{})}
	app, _ := newTestApp(t, svc, &fakeStore{conv: repoConv(provider.GitHub)}, nil)

	app = send(t, app, "first")
	firstTurn := app.turn
	model, _ := app.Update(ChatClearMsg{})
	app = send(t, model.(App), "second")

	model, _ = app.Update(ChatResponseMsg{Turn: firstTurn, Err: context.Canceled})
	app = model.(App)
	assert.True(t, app.chatPanel.IsWaiting())

	close(svc.release)
	app = drain(t, app)
	assert.False(t, app.chatPanel.IsWaiting())
	assert.Equal(t, 2, app.chatPanel.MessageCount())
}
