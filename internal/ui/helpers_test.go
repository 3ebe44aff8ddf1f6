package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shhac/shiptea/internal/agent"
	"github.com/shhac/shiptea/internal/conversation"
	"github.com/shhac/shiptea/internal/i18n"
	"github.com/shhac/shiptea/internal/provider"
)

// keyLabels echoes keys so tests can see which key produced a label.
type keyLabels struct{}

func (keyLabels) T(k i18n.Key) string { return "label:" + string(k) }

type fakeProviders []provider.ID

func (f fakeProviders) Providers() []provider.ID { return f }

// fakeStore is a ConversationStore whose snapshot tests set directly.
// When next is set, Refresh swaps it in, as if the checkout had changed.
type fakeStore struct {
	mu         sync.Mutex
	conv       *conversation.Conversation
	next       *conversation.Conversation
	refreshErr error
	refreshes  int
}

func (s *fakeStore) ActiveConversation() *conversation.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv == nil {
		return nil
	}
	c := *s.conv
	return &c
}

func (s *fakeStore) Refresh(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshes++
	if s.next != nil {
		s.conv, s.next = s.next, nil
	}
	return s.refreshErr
}

func (s *fakeStore) set(c *conversation.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv = c
}

func repoConv(id provider.ID) *conversation.Conversation {
	return &conversation.Conversation{
		ID:                 "c1",
		GitProvider:        id,
		SelectedRepository: "acme/widgets",
		SelectedBranch:     "feature/login",
		RepoPath:           "/tmp/widgets",
	}
}

// fakeAgent records turns and replays scripted chunks. A non-nil release
// channel holds each turn until it is closed.
type fakeAgent struct {
	mu      sync.Mutex
	inputs  []agent.Input
	chunks  []string
	reply   string
	err     error
	cleared []string
	release chan struct{}
}

func (f *fakeAgent) Send(ctx context.Context, input agent.Input, onChunk func(string)) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.mu.Unlock()
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	for _, c := range f.chunks {
		onChunk(c)
	}
	return f.reply, f.err
}

func (f *fakeAgent) ClearSession(repoPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, repoPath)
}

func (f *fakeAgent) turns() []agent.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]agent.Input(nil), f.inputs...)
}

func suggestionsOf(items []SuggestionItem) []Suggestion {
	out := make([]Suggestion, len(items))
	for i, it := range items {
		out[i] = it.Suggestion
	}
	return out
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// typeText feeds s to a chat panel one rune at a time.
func typeText(m ChatPanelModel, s string) ChatPanelModel {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}
