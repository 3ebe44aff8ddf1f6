package agent

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shhac/shiptea/internal/logger"
)

// Options tunes how the agent CLI is invoked.
type Options struct {
	Timeout      time.Duration
	MaxTurns     int
	AllowedTools string
	MaxHistory   int // messages replayed into each prompt
}

// Service runs chat turns against the agent CLI, keeping history per checkout.
type Service struct {
	executor CommandExecutor
	opts     Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a Service.
func NewService(executor CommandExecutor, opts Options) *Service {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = 20
	}
	return &Service{
		executor: executor,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Input describes one chat turn.
type Input struct {
	RepoPath   string
	Repository string // "owner/name", may be empty
	Branch     string
	Message    string
}

// Send runs one turn and returns the agent's final answer. onChunk receives
// text deltas as they stream in; it may be nil.
func (s *Service) Send(ctx context.Context, input Input, onChunk func(string)) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	log := logger.FromContext(ctx).WithValues("repo", input.RepoPath)

	prompt := buildPrompt(s.History(input.RepoPath), input, s.opts.MaxHistory)
	args := []string{
		"-p", prompt,
		"--output-format", "stream-json",
		"--verbose",
		"--include-partial-messages",
		"--max-turns", strconv.Itoa(s.opts.MaxTurns),
	}
	if s.opts.AllowedTools != "" {
		args = append(args, "--allowedTools", s.opts.AllowedTools)
	}

	started := time.Now()
	event, err := runCLI(ctx, s.executor, args, ExecOptions{
		Dir: input.RepoPath,
		Env: filterEnv(os.Environ(), "CLAUDECODE"),
	}, streamDeltaVisitor(onChunk))
	if err != nil {
		log.Error(err, "agent turn failed", "elapsed", time.Since(started).String())
		return "", err
	}
	response, err := resultText(event)
	if err != nil {
		return "", err
	}
	log.Info("agent turn finished", "elapsed", time.Since(started).String(), "cost_usd", event.CostUSD)

	s.mu.Lock()
	session := s.sessionLocked(input.RepoPath)
	session.Messages = append(session.Messages,
		ChatMessage{Role: "user", Content: input.Message},
		ChatMessage{Role: "assistant", Content: response},
	)
	s.mu.Unlock()

	return response, nil
}

// History returns a copy of the messages exchanged for repoPath.
func (s *Service) History(repoPath string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[repoPath]
	if !ok {
		return nil
	}
	out := make([]ChatMessage, len(session.Messages))
	copy(out, session.Messages)
	return out
}

// ClearSession forgets the history for repoPath.
func (s *Service) ClearSession(repoPath string) {
	s.mu.Lock()
	delete(s.sessions, repoPath)
	s.mu.Unlock()
}

func (s *Service) sessionLocked(repoPath string) *Session {
	session, ok := s.sessions[repoPath]
	if !ok {
		session = &Session{}
		s.sessions[repoPath] = session
	}
	return session
}

func buildPrompt(history []ChatMessage, input Input, maxHistory int) string {
	var b strings.Builder

	b.WriteString("You are a coding agent working in a git repository checked out in the current directory.")
	if input.Repository != "" {
		fmt.Fprintf(&b, " The repository is %s.", input.Repository)
	}
	if input.Branch != "" {
		fmt.Fprintf(&b, " The current branch is %s.", input.Branch)
	}
	b.WriteString(" You may read and edit files and run shell commands, including git.\n")

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	for _, msg := range history {
		if msg.Role == "user" {
			fmt.Fprintf(&b, "\nUser: %s", msg.Content)
		} else {
			fmt.Fprintf(&b, "\nAssistant: %s", msg.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\n\nCarry out the request, then summarise what you did.", input.Message)
	return b.String()
}
