package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// MarkdownRenderer caches a glamour renderer per wrap width.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// NewMarkdownRenderer returns a renderer using the named glamour style.
// An empty style picks one from the terminal background.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style}
}

// Render renders markdown for the terminal, falling back to plain word
// wrapping when glamour fails.
func (mr *MarkdownRenderer) Render(markdown string, width int) string {
	if width < 10 {
		width = 10
	}
	r := mr.rendererFor(width)
	if r == nil {
		return wordWrap(markdown, width)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return wordWrap(markdown, width)
	}
	return strings.TrimSpace(out)
}

func (mr *MarkdownRenderer) rendererFor(width int) *glamour.TermRenderer {
	if mr.renderer != nil && mr.width == width {
		return mr.renderer
	}
	styleOpt := glamour.WithAutoStyle()
	if mr.style != "" {
		styleOpt = glamour.WithStandardStyle(mr.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	mr.renderer = r
	mr.width = width
	return r
}

// wordWrap wraps text to fit within the given width.
func wordWrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if lipgloss.Width(line) <= width {
			out = append(out, line)
			continue
		}
		current := ""
		for _, word := range strings.Fields(line) {
			switch {
			case current == "":
				current = word
			case lipgloss.Width(current+" "+word) <= width:
				current += " " + word
			default:
				out = append(out, current)
				current = word
			}
		}
		if current != "" {
			out = append(out, current)
		}
	}
	return strings.Join(out, "\n")
}
