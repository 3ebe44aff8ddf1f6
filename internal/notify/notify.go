// Package notify sends desktop notifications when long agent turns finish.
package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier delivers OS-level notifications. On macOS it uses osascript, on
// Linux notify-send, and elsewhere it rings the terminal bell.
type Notifier struct {
	App  string
	GOOS string

	// run executes a command; swapped out in tests.
	run  func(name string, args ...string) error
	bell io.Writer
}

// New returns a Notifier for the current platform.
func New(app string) *Notifier {
	return &Notifier{
		App:  app,
		GOOS: runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		bell: os.Stdout,
	}
}

// Send shows a notification. Callers usually ignore the error.
func (n *Notifier) Send(title, body string) error {
	switch n.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %s with title %s`,
			escapeAppleScript(body), escapeAppleScript(title))
		return n.run("osascript", "-e", script)
	case "linux":
		return n.run("notify-send", "-a", n.App, title, body)
	default:
		_, err := fmt.Fprint(n.bell, "\a")
		return err
	}
}

// escapeAppleScript returns a quoted AppleScript string with internal
// quotes and backslashes escaped.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
