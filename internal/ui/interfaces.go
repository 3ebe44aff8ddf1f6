package ui

import (
	"context"

	"github.com/shhac/shiptea/internal/agent"
	"github.com/shhac/shiptea/internal/conversation"
)

// AgentService defines the agent operations used by the UI layer.
// *agent.Service satisfies this interface.
type AgentService interface {
	Send(ctx context.Context, input agent.Input, onChunk func(string)) (string, error)
	ClearSession(repoPath string)
}

// ConversationStore supplies and refreshes the active conversation.
// *conversation.Store satisfies this interface.
type ConversationStore interface {
	conversation.Source
	Refresh(ctx context.Context) error
}
