package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	detailPanelMinWidth = 36
	detailPanelMaxWidth = 56
)

func (m appModel) View() string {
	parts := []string{m.tabsView()}
	if m.mode == modeFilter {
		bar := m.leadFilters
		if m.tab == tabOpportunities {
			bar = m.oppFilters
		}
		parts = append(parts, bar.view(m.width))
	}

	body := m.gridView()
	if m.detailOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", m.detailView())
	}
	parts = append(parts, "", body, "")

	if m.minibufferText != "" {
		st := lipgloss.NewStyle().Foreground(colorSuccess)
		if m.minibufferErr {
			st = styleError()
		}
		parts = append(parts, st.Render(m.minibufferText))
	}
	if m.mode == modeEdit {
		parts = append(parts, m.help.View(m.editKeys))
	} else {
		parts = append(parts, m.help.View(m.keys))
	}
	return strings.Join(parts, "\n")
}

func (m appModel) tabsView() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(colorChromeMutedFg).Padding(0, 1)
	labels := []string{"Leads", "Opportunities"}
	out := make([]string, len(labels))
	for i, l := range labels {
		if tab(i) == m.tab {
			out[i] = active.Render(l)
		} else {
			out[i] = inactive.Render(l)
		}
	}
	return strings.Join(out, " ")
}

func (m appModel) gridView() string {
	if m.tab == tabLeads {
		return m.leads.View()
	}
	return m.opps.View()
}

func (m appModel) detailWidth() int {
	if m.width <= 0 {
		return detailPanelMinWidth
	}
	return min(max(m.width/3, detailPanelMinWidth), detailPanelMaxWidth)
}

// detailView is the side panel for the open record.
func (m appModel) detailView() string {
	w := m.detailWidth()
	var md string
	if m.tab == tabLeads {
		l, ok := m.leads.Detail()
		if !ok {
			return ""
		}
		md = leadSummaryMarkdown(l)
	} else {
		o, ok := m.opps.Detail()
		if !ok {
			return ""
		}
		md = opportunitySummaryMarkdown(o)
	}
	hint := styleMuted().Render("e edit · esc close")
	if m.tab == tabLeads {
		hint = styleMuted().Render("e edit · c convert · esc close")
	}
	content := renderMarkdown(md, w-4) + "\n\n" + hint
	return lipgloss.NewStyle().
		Width(w).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPanelBorder).
		Padding(0, 1).
		Render(content)
}
