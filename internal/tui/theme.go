package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The console must stay readable on light and dark terminal backgrounds, so colors are
// adaptive and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted         lipgloss.TerminalColor = ac("240", "243")
	colorChromeMutedFg lipgloss.TerminalColor = ac("240", "245")
	colorSelectedBg    lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg    lipgloss.TerminalColor = ac("235", "255")
	colorInputBg       lipgloss.TerminalColor = ac("254", "234")
	colorAccent        lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg      lipgloss.TerminalColor = ac("255", "235")
	colorPanelBorder   lipgloss.TerminalColor = ac("250", "243")
	colorError         lipgloss.TerminalColor = ac("160", "203")
	colorSuccess       lipgloss.TerminalColor = ac("28", "78")

	colorBandHot    lipgloss.TerminalColor = ac("160", "203")
	colorBandHigh   lipgloss.TerminalColor = ac("130", "215")
	colorBandMedium lipgloss.TerminalColor = ac("136", "228")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

// scoreBandStyle colors the Hot/High/Medium/Low badge.
func scoreBandStyle(band string) lipgloss.Style {
	switch band {
	case "Hot":
		return lipgloss.NewStyle().Foreground(colorBandHot).Bold(true)
	case "High":
		return lipgloss.NewStyle().Foreground(colorBandHigh)
	case "Medium":
		return lipgloss.NewStyle().Foreground(colorBandMedium)
	default:
		return styleMuted()
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive console.
//
// termenv.EnvColorProfile also honors CLICOLOR, which can switch colors off inside a TUI;
// only NO_COLOR is respected here, otherwise the terminal's capabilities win.
func applyColorProfilePreference(getenv func(string) string) {
	if strings.TrimSpace(getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Some terminals under-report; trust COLORTERM/TERM when they claim more.
	term := strings.ToLower(strings.TrimSpace(getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) LEADCONSOLE_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference(getenv func(string) string) {
	switch strings.ToLower(strings.TrimSpace(getenv("LEADCONSOLE_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
