package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shhac/shiptea/internal/conversation"
)

// -- Chat --

// ChatSendMsg asks the root model to start an agent turn with Message.
// Typed input and suggestion clicks both arrive this way.
type ChatSendMsg struct {
	Message string
}

// ChatStreamChunkMsg carries a streaming text chunk from the agent.
// Turn identifies the agent turn that produced it.
type ChatStreamChunkMsg struct {
	Turn    int
	Content string
}

// ChatResponseMsg is sent when the agent finishes a turn.
type ChatResponseMsg struct {
	Turn    int
	Content string
	Err     error
}

// ChatClearMsg starts a fresh chat for the current checkout.
type ChatClearMsg struct{}

// ChatCancelMsg stops the running agent turn.
type ChatCancelMsg struct{}

// chatStreamChan carries streaming chunks and the final response from the agent.
type chatStreamChan chan tea.Msg

// -- Conversation --

// pollTickMsg triggers a background refresh of the active conversation.
type pollTickMsg struct{}

// conversationRefreshedMsg reports the outcome of a conversation refresh.
type conversationRefreshedMsg struct {
	Conversation *conversation.Conversation
	Err          error
}

// -- Providers --

// providersVerifiedMsg is sent once stored provider tokens were checked.
type providersVerifiedMsg struct{}

// -- Status bar --

// StatusBarClearMsg clears a temporary status message if Seq is still current.
type StatusBarClearMsg struct {
	Seq int
}
