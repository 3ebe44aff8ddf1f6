package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shhac/shiptea/internal/agent"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/logger"
)

// pollTickCmd returns a command that fires after the given interval to trigger background polling.
func pollTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// refreshConversationCmd re-reads the checkout's repository and branch.
func refreshConversationCmd(ctx context.Context, store ConversationStore) tea.Cmd {
	return func() tea.Msg {
		err := store.Refresh(ctx)
		return conversationRefreshedMsg{Conversation: store.ActiveConversation(), Err: err}
	}
}

// verifyProvidersCmd runs the provider token check off the UI goroutine.
func verifyProvidersCmd(ctx context.Context, verify func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		verify(ctx)
		return providersVerifiedMsg{}
	}
}

// streamAgentTurn runs one agent turn in a goroutine, forwarding chunks and
// the final response, stamped with turn, over the returned channel. The
// channel closes when the turn ends or ctx is cancelled.
func streamAgentTurn(ctx context.Context, svc AgentService, input agent.Input, turn int) chatStreamChan {
	ch := make(chatStreamChan)
	go func() {
		defer close(ch)
		response, err := svc.Send(ctx, input, func(text string) {
			select {
			case ch <- ChatStreamChunkMsg{Turn: turn, Content: text}:
			case <-ctx.Done():
			}
		})
		final := ChatResponseMsg{Turn: turn, Content: response, Err: err}
		select {
		case ch <- final:
		case <-ctx.Done():
		}
	}()
	return ch
}

// notifyTurnDoneCmd announces a finished agent turn. Notification failures
// are logged and otherwise ignored. Returns nil when notifications are off.
func notifyTurnDoneCmd(ctx context.Context, notify func(title, body string) error, conv *conversation.Conversation, err error) tea.Cmd {
	if notify == nil {
		return nil
	}
	title := "shiptea: agent finished"
	if err != nil {
		title = "shiptea: agent failed"
	}
	body := "Your request is done."
	if conv != nil && conv.SelectedRepository != "" {
		body = conv.SelectedRepository
		if conv.SelectedBranch != "" {
			body += " @ " + conv.SelectedBranch
		}
	}
	return func() tea.Msg {
		if nerr := notify(title, body); nerr != nil {
			logger.FromContext(ctx).V(1).Info("notification failed", "error", nerr.Error())
		}
		return nil
	}
}

// listenForStream returns a tea.Cmd that reads the next message from the streaming channel.
func listenForStream(ch chatStreamChan) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
