// Package analytics is the fire-and-forget event sink used by UI actions.
package analytics

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// Event names emitted by the action suggestions.
const (
	PushToBranchClicked = "push_to_branch_button_clicked"
	CreatePRClicked     = "create_pr_button_clicked"
	PushToPRClicked     = "push_to_pr_button_clicked"
)

// Tracker accepts named events. Implementations may fail; callers use Fire
// so a failing tracker never reaches UI code.
type Tracker interface {
	Capture(event string) error
}

// Fire captures event on t and swallows any error or panic.
func Fire(t Tracker, event string) {
	if t == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	_ = t.Capture(event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Capture(string) error { return nil }

// LogTracker records events as structured log lines tagged with a session id.
type LogTracker struct {
	log       logr.Logger
	sessionID string
}

// NewLogTracker creates a LogTracker with a fresh session id.
func NewLogTracker(log logr.Logger) *LogTracker {
	return &LogTracker{
		log:       log.WithName("analytics"),
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the id attached to every captured event.
func (t *LogTracker) SessionID() string {
	return t.sessionID
}

func (t *LogTracker) Capture(event string) error {
	t.log.Info("event captured", "event", event, "session", t.sessionID)
	return nil
}

// Recorder keeps captured events in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Capture(event string) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	return nil
}

// Events returns a copy of the captured events in order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}
