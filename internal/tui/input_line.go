package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine pads a text input's view onto an input-colored strip of exactly width cells.
func renderInputLine(width int, inputView string) string {
	if width < 4 {
		width = 4
	}

	// An input must stay on one visual line; a stray newline would wrap the whole row.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		width,
		lipgloss.Left,
		inputView,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		// Terminate styling so the cut does not bleed into the next cell.
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}

// choiceLabel renders a cycled picker value, e.g. "‹ contacted ›".
func choiceLabel(v string, focused bool) string {
	s := "‹ " + v + " ›"
	if focused {
		return lipgloss.NewStyle().Background(colorAccent).Foreground(colorAccentFg).Render(s)
	}
	return s
}
