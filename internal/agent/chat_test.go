package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_SendRecordsHistory(t *testing.T) {
	exec := &mockExecutor{stdout: lines(textDeltaLine("ok"), resultLine("Pushed to feature/login."))}
	svc := NewService(exec, Options{MaxTurns: 7, AllowedTools: "Bash"})

	var chunks []string
	resp, err := svc.Send(context.Background(), Input{
		RepoPath:   "/work/widgets",
		Repository: "alice/widgets",
		Branch:     "feature/login",
		Message:    "Please push the latest changes to the existing pull request.",
	}, func(s string) { chunks = append(chunks, s) })

	require.NoError(t, err)
	assert.Equal(t, "Pushed to feature/login.", resp)
	assert.Equal(t, []string{"ok"}, chunks)
	assert.Equal(t, "/work/widgets", exec.lastOpts.Dir)
	assert.Contains(t, exec.lastArgs, "--max-turns")
	assert.Contains(t, exec.lastArgs, "7")
	assert.Contains(t, exec.lastArgs, "--allowedTools")

	history := svc.History("/work/widgets")
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Empty(t, svc.History("/elsewhere"))
}

func TestService_FailedTurnKeepsHistoryClean(t *testing.T) {
	exec := &mockExecutor{stdout: lines(textDeltaLine("partial"))}
	svc := NewService(exec, Options{MaxTurns: 1})

	_, err := svc.Send(context.Background(), Input{RepoPath: "/r", Message: "hi"}, nil)
	require.Error(t, err)
	assert.Empty(t, svc.History("/r"))
}

func TestService_ClearSession(t *testing.T) {
	exec := &mockExecutor{stdout: lines(resultLine("a"))}
	svc := NewService(exec, Options{MaxTurns: 1})

	_, err := svc.Send(context.Background(), Input{RepoPath: "/r", Message: "q"}, nil)
	require.NoError(t, err)
	svc.ClearSession("/r")
	assert.Empty(t, svc.History("/r"))
}

func TestBuildPrompt(t *testing.T) {
	history := []ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
		{Role: "assistant", Content: "fourth"},
	}

	t.Run("includes context and message", func(t *testing.T) {
		p := buildPrompt(history, Input{Repository: "team/api", Branch: "main", Message: "push it"}, 10)
		assert.Contains(t, p, "The repository is team/api.")
		assert.Contains(t, p, "The current branch is main.")
		assert.Contains(t, p, "User: first")
		assert.Contains(t, p, "Assistant: fourth")
		assert.Contains(t, p, "User: push it")
	})

	t.Run("trims oldest history", func(t *testing.T) {
		p := buildPrompt(history, Input{Message: "next"}, 2)
		assert.NotContains(t, p, "first")
		assert.NotContains(t, p, "second")
		assert.Contains(t, p, "third")
		assert.NotContains(t, p, "The repository is")
	})
}
