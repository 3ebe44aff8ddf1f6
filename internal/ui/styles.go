package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Panel border colors
var (
	focusedBorderColor   = lipgloss.Color("62")  // bright purple/blue
	unfocusedBorderColor = lipgloss.Color("240") // dim gray
	busyBorderColor      = lipgloss.Color("214") // orange while the agent works
)

// Status bar
var (
	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252"))
	statusBarAccentStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(lipgloss.Color("62")).
				Bold(true)
)

// Chat styles
var (
	chatUserStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)
	chatAgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
	chatThinkingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Italic(true)
	chatErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

// Suggestion pills
var (
	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	suggestionFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("62")).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1)
)

// Header line above the transcript
var (
	headerRepoStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	headerProviderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	headerDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func panelStyle(focused, busy bool, width, height int) lipgloss.Style {
	borderColor := unfocusedBorderColor
	if focused {
		borderColor = focusedBorderColor
	}
	if busy {
		borderColor = busyBorderColor
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Width(width).
		Height(height)
}

// newLoadingSpinner creates a consistently styled spinner for loading states.
func newLoadingSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	return s
}

// renderEmptyState renders a consistent empty state message with optional action hint.
func renderEmptyState(message, hint string) string {
	msg := lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Padding(1, 2).
		Render("· " + message)
	if hint == "" {
		return msg
	}
	h := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		Padding(0, 2).
		Render(hint)
	return lipgloss.JoinVertical(lipgloss.Left, msg, h)
}

// formatUserError converts raw error strings into user-friendly messages.
func formatUserError(err string) string {
	lower := strings.ToLower(err)
	switch {
	case strings.Contains(lower, "agent cli not found"):
		return "Agent CLI not found.\nInstall it or set agent.path in your config."
	case strings.Contains(lower, "timed out") || strings.Contains(lower, "deadline exceeded"):
		return "The agent timed out.\nRaise agent.timeout_ms or try a smaller request."
	case strings.Contains(lower, "authentication failed") || strings.Contains(lower, "permission denied (publickey)"):
		return "Git could not authenticate with the remote.\nCheck your provider token or SSH key."
	case strings.Contains(lower, "no such host") || strings.Contains(lower, "connection refused"):
		return "Network error.\nCheck your internet connection."
	case strings.Contains(lower, "max turns") || strings.Contains(lower, "max_turns"):
		return "The agent ran out of turns.\nRaise agent.max_turns or split the request."
	default:
		return err
	}
}
