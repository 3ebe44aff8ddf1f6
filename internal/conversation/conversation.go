// Package conversation describes the repository a chat session works against.
package conversation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shhac/shiptea/internal/git"
	"github.com/shhac/shiptea/internal/logger"
	"github.com/shhac/shiptea/internal/provider"
)

// Conversation is a snapshot of the active chat session's repository binding.
type Conversation struct {
	ID                 string
	GitProvider        provider.ID // empty when the provider is unknown
	SelectedRepository string      // "owner/name"; empty when none is selected
	SelectedBranch     string
	RepoPath           string
}

// Source exposes the active conversation. A nil result means there is none.
type Source interface {
	ActiveConversation() *Conversation
}

// Static is a fixed Source, mostly useful in tests.
type Static struct {
	Conversation *Conversation
}

func (s Static) ActiveConversation() *Conversation {
	return s.Conversation
}

// Detect builds a conversation from the git checkout at dir.
//
// A directory without a usable origin remote still yields a conversation,
// just without a repository. override, when set, replaces the provider
// inferred from the remote host.
func Detect(ctx context.Context, dir string, override provider.ID) (*Conversation, error) {
	log := logger.FromContext(ctx)

	root, err := git.RepoRoot(ctx, dir)
	if err != nil {
		return nil, err
	}
	c := &Conversation{RepoPath: root, GitProvider: override}

	if branch, err := git.CurrentBranch(ctx, root); err == nil {
		c.SelectedBranch = branch
	}

	rawURL, err := git.RemoteURL(ctx, root, "origin")
	if err != nil {
		log.V(1).Info("no origin remote", "repo", root, "error", err.Error())
		return c, nil
	}
	remote, err := git.ParseRemote(rawURL)
	if err != nil {
		log.Info("unparseable origin remote", "repo", root, "error", err.Error())
		return c, nil
	}
	c.SelectedRepository = remote.FullName()
	if c.GitProvider == "" {
		if id, ok := provider.FromHost(remote.Host); ok {
			c.GitProvider = id
		}
	}
	return c, nil
}

// Store holds the latest detected conversation for a checkout.
type Store struct {
	dir      string
	override provider.ID
	id       string

	mu      sync.RWMutex
	current *Conversation
}

// NewStore creates a Store for dir. Call Refresh to populate it.
func NewStore(dir string, override provider.ID) *Store {
	return &Store{dir: dir, override: override, id: uuid.NewString()}
}

// ActiveConversation returns a copy of the current snapshot.
func (s *Store) ActiveConversation() *Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// Refresh re-detects the conversation. On failure the previous snapshot is
// cleared, so a directory that stops being a repository hides the actions.
func (s *Store) Refresh(ctx context.Context) error {
	c, err := Detect(ctx, s.dir, s.override)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.current = nil
		return err
	}
	c.ID = s.id
	s.current = c
	return nil
}

// Set replaces the snapshot directly.
func (s *Store) Set(c *Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}
