package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"leadconsole/internal/query"
	"leadconsole/internal/store"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"})
	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#262626"}).
			Foreground(lipgloss.AdaptiveColor{Light: "235", Dark: "255"})
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	currentStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// PageWindow lists the page links to show; 0 stands for an ellipsis. Up to seven pages are
// listed in full, otherwise the first and last page frame a window around the current one.
func PageWindow(page, totalPages int) []int {
	if totalPages <= 0 {
		return nil
	}
	if totalPages <= 7 {
		out := make([]int, totalPages)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	if page <= 4 {
		return []int{1, 2, 3, 4, 5, 0, totalPages}
	}
	if page >= totalPages-3 {
		return []int{1, 0, totalPages - 4, totalPages - 3, totalPages - 2, totalPages - 1, totalPages}
	}
	return []int{1, 0, page - 1, page, page + 1, 0, totalPages}
}

// ShowingRange returns the 1-based first and last row numbers on the current page.
func ShowingRange(page, pageSize, total int) (int, int) {
	if total <= 0 {
		return 0, 0
	}
	if page-1 >= query.TotalPages(total, pageSize) {
		return total, total
	}
	start := (page - 1) * pageSize
	to := total
	if pageSize < total-start {
		to = start + pageSize
	}
	return start + 1, to
}

// Cell fits s into exactly w columns, truncating with an ellipsis.
func Cell(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) > w {
		if w <= 1 {
			return "…"
		}
		s = xansi.Truncate(s, w, "…")
	}
	return s + strings.Repeat(" ", w-xansi.StringWidth(s))
}

func (m *Model[T]) widths() []int {
	out := make([]int, len(m.cfg.Columns))
	for i, c := range m.cfg.Columns {
		w := c.Width
		if w <= 0 {
			w = max(xansi.StringWidth(c.Title), 8)
		}
		out[i] = w
	}
	return out
}

func (m *Model[T]) sortArrow() string {
	switch m.sorting {
	case store.SortAsc:
		return " ↑"
	case store.SortDesc:
		return " ↓"
	default:
		return " ↕"
	}
}

func (m *Model[T]) headerView(widths []int) string {
	titles := make([]string, len(m.cfg.Columns))
	filters := make([]string, len(m.cfg.Columns))
	anyFilter := false
	for i, c := range m.cfg.Columns {
		title := c.Title
		if c.Sortable {
			title += m.sortArrow()
		}
		titles[i] = Cell(title, widths[i])
		if c.Filter != "" {
			anyFilter = true
			v := m.FilterValue(c.Filter)
			if v == "" {
				if root := m.cfg.RootFilter[c.Filter]; root != "" {
					v = root
				}
			}
			filters[i] = Cell("["+v+"]", widths[i])
		} else {
			filters[i] = Cell("", widths[i])
		}
	}
	lines := []string{headerStyle.Render(strings.Join(titles, " "))}
	if anyFilter {
		lines = append(lines, filterStyle.Render(strings.Join(filters, " ")))
	}
	return strings.Join(lines, "\n")
}

func (m *Model[T]) rowView(row T, selected bool, widths []int) string {
	if m.cfg.RowView != nil {
		if s, ok := m.cfg.RowView(row, selected, widths); ok {
			return s
		}
	}
	cells := make([]string, len(m.cfg.Columns))
	for i, c := range m.cfg.Columns {
		v := ""
		if c.Value != nil {
			v = c.Value(row)
		}
		cells[i] = Cell(v, widths[i])
	}
	line := strings.Join(cells, " ")
	if selected {
		return selectedStyle.Render(line)
	}
	return line
}

func (m *Model[T]) bodyView(widths []int) string {
	switch m.state {
	case StateLoading:
		return mutedStyle.Render("Loading…")
	case StateError:
		msg := "query failed"
		if m.err != nil {
			msg = m.err.Error()
		}
		return errorStyle.Render("Error: "+msg) + "\n" + mutedStyle.Render("press r to retry")
	case StateEmpty:
		return mutedStyle.Render(m.cfg.NoDataMessage)
	}
	lines := make([]string, 0, len(m.items))
	for i, it := range m.items {
		lines = append(lines, m.rowView(it, i == m.cursor, widths))
	}
	return strings.Join(lines, "\n")
}

// FooterView renders "Showing a to b of n results" and the page links.
func (m *Model[T]) FooterView() string {
	if m.state == StateLoading || m.state == StateError || m.total == 0 {
		return ""
	}
	from, to := ShowingRange(m.page, m.cfg.PageSize, m.total)
	summary := fmt.Sprintf("Showing %d to %d of %d results", from, to, m.total)

	var links []string
	for _, p := range PageWindow(m.page, m.TotalPages()) {
		switch {
		case p == 0:
			links = append(links, "…")
		case p == m.page:
			links = append(links, currentStyle.Render(strconv.Itoa(p)))
		default:
			links = append(links, strconv.Itoa(p))
		}
	}
	return summary + "   " + mutedStyle.Render("‹") + " " + strings.Join(links, " ") + " " + mutedStyle.Render("›")
}

func (m *Model[T]) View() string {
	widths := m.widths()
	parts := []string{m.headerView(widths), m.bodyView(widths)}
	if f := m.FooterView(); f != "" {
		parts = append(parts, "", f)
	}
	return strings.Join(parts, "\n")
}
