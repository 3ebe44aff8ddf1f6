package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

var (
	scrollbarThumbStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	scrollbarTrackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderScrollbar builds a 1-char-wide vertical scrollbar column for vp.
// The thumb shows the visible portion; blank rows are returned when all
// content fits.
func renderScrollbar(vp viewport.Model) string {
	height := vp.Height
	if height <= 0 {
		return ""
	}
	totalLines := vp.TotalLineCount()
	if totalLines <= height {
		return strings.TrimSuffix(strings.Repeat(" \n", height), "\n")
	}

	thumbSize := max(1, height*height/totalLines)
	thumbStart := vp.YOffset * height / totalLines
	if thumbStart+thumbSize > height {
		thumbStart = height - thumbSize
	}

	rows := make([]string, height)
	for i := range rows {
		if i >= thumbStart && i < thumbStart+thumbSize {
			rows[i] = scrollbarThumbStyle.Render("┃")
		} else {
			rows[i] = scrollbarTrackStyle.Render("│")
		}
	}
	return strings.Join(rows, "\n")
}
