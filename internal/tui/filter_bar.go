package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// filterBar edits a grid's free-text filters. Every keystroke is handed to the grid, which
// debounces it.
type filterBar struct {
	fields []string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newFilterBar(fields, labels []string) *filterBar {
	inputs := make([]textinput.Model, len(fields))
	for i := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 80
		ti.Width = 18
		inputs[i] = ti
	}
	return &filterBar{fields: fields, labels: labels, inputs: inputs}
}

// open loads the grid's current filter values and focuses the first field.
func (f *filterBar) open(value func(field string) string) tea.Cmd {
	for i, field := range f.fields {
		f.inputs[i].SetValue(value(field))
		f.inputs[i].CursorEnd()
		f.inputs[i].Blur()
	}
	f.focus = 0
	return f.inputs[0].Focus()
}

func (f *filterBar) close() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

func (f *filterBar) cycle(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	n := len(f.inputs)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.inputs[f.focus].Focus()
}

// update feeds a key to the focused input. changed reports whether its value moved.
func (f *filterBar) update(msg tea.KeyMsg) (field, value string, changed bool, cmd tea.Cmd) {
	before := f.inputs[f.focus].Value()
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	after := f.inputs[f.focus].Value()
	return f.fields[f.focus], after, after != before, cmd
}

func (f *filterBar) view(width int) string {
	parts := make([]string, 0, len(f.fields))
	for i := range f.fields {
		label := f.labels[i] + ":"
		if i == f.focus {
			label = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render(label)
		} else {
			label = styleMuted().Render(label)
		}
		parts = append(parts, label+" "+renderInputLine(20, f.inputs[i].View()))
	}
	line := strings.Join(parts, "  ")
	return lipgloss.NewStyle().MaxWidth(max(width, 20)).Render(line)
}
