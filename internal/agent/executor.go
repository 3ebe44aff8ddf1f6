package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// CommandExecutor abstracts agent CLI subprocess execution.
// Tests inject fakes.
type CommandExecutor interface {
	Start(ctx context.Context, args []string, opts ExecOptions) (*Process, error)
}

// ExecOptions controls working directory and environment for the subprocess.
type ExecOptions struct {
	Dir string
	Env []string
}

// Process represents a running agent subprocess.
type Process struct {
	Stdout io.ReadCloser
	Stderr io.ReadCloser
	Wait   func() error
}

// CLIExecutor runs the real agent binary.
type CLIExecutor struct {
	Path string
}

// NewCLIExecutor creates an executor for the binary at path.
func NewCLIExecutor(path string) *CLIExecutor {
	return &CLIExecutor{Path: path}
}

// Start launches the agent CLI with the given arguments and options.
func (e *CLIExecutor) Start(ctx context.Context, args []string, opts ExecOptions) (*Process, error) {
	cmd := exec.CommandContext(ctx, e.Path, args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("agent CLI not found at %s: %w", e.Path, err)
		}
		return nil, fmt.Errorf("failed to start agent: %w", err)
	}

	return &Process{
		Stdout: stdout,
		Stderr: stderr,
		Wait:   cmd.Wait,
	}, nil
}

// EventVisitor is called for each parsed StreamEvent.
type EventVisitor func(event *StreamEvent)

// runCLI starts the agent, parses stream-json events from stdout and returns
// the final "result" event. Unparseable lines are skipped.
func runCLI(ctx context.Context, executor CommandExecutor, args []string, opts ExecOptions, visitor EventVisitor) (*StreamEvent, error) {
	proc, err := executor.Start(ctx, args, opts)
	if err != nil {
		return nil, err
	}

	var (
		stderrBuf  strings.Builder
		stderrDone sync.WaitGroup
	)
	stderrDone.Add(1)
	go func() {
		defer stderrDone.Done()
		scanner := bufio.NewScanner(proc.Stderr)
		scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
		for scanner.Scan() {
			stderrBuf.WriteString(scanner.Text())
			stderrBuf.WriteByte('\n')
		}
	}()

	var resultEvent *StreamEvent
	scanner := bufio.NewScanner(proc.Stdout)
	scanner.Buffer(make([]byte, 1024*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var event StreamEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		if visitor != nil {
			visitor(&event)
		}
		if event.Type == "result" {
			resultEvent = &event
		}
	}

	stderrDone.Wait()
	if err := proc.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("agent timed out: %w", ctx.Err())
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("agent exited with error: %w\nstderr: %s", err, truncate(stderrBuf.String(), 500))
	}

	if resultEvent == nil {
		return nil, fmt.Errorf("agent produced no result event")
	}
	return resultEvent, nil
}

// streamDeltaVisitor calls onChunk for text deltas from stream_event envelopes.
func streamDeltaVisitor(onChunk func(string)) EventVisitor {
	return func(event *StreamEvent) {
		if onChunk == nil || event.Type != "stream_event" || event.Event == nil {
			return
		}
		if event.Event.Type == "content_block_delta" && event.Event.Delta != nil &&
			event.Event.Delta.Type == "text_delta" && event.Event.Delta.Text != "" {
			onChunk(event.Event.Delta.Text)
		}
	}
}

// resultText extracts the final answer from a result event.
func resultText(event *StreamEvent) (string, error) {
	if event.IsError {
		return "", fmt.Errorf("agent reported an error: %v", event.Result)
	}
	switch r := event.Result.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(r), nil
	default:
		data, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to encode agent result: %w", err)
		}
		return string(data), nil
	}
}

// filterEnv returns env with the variable named remove dropped.
func filterEnv(env []string, remove string) []string {
	prefix := remove + "="
	filtered := make([]string, 0, len(env))
	for _, e := range env {
		if !strings.HasPrefix(e, prefix) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
