package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"leadconsole/internal/grid"
	"leadconsole/internal/model"
	"leadconsole/internal/mutate"
	"leadconsole/internal/statusutil"
	"leadconsole/internal/store"
)

const leadsDataKey = "leads"

// Column positions in leadColumns.
const (
	leadColName = iota
	leadColCompany
	leadColEmail
	leadColStatus
	leadColScore
	leadColConverted
)

func leadColumns() []grid.Column[model.Lead] {
	return []grid.Column[model.Lead]{
		leadColName:    {Title: "Name", Width: 22, Filter: "name", Value: func(l model.Lead) string { return l.Name }},
		leadColCompany: {Title: "Company", Width: 22, Filter: "company", Value: func(l model.Lead) string { return l.Company }},
		leadColEmail:   {Title: "Email", Width: 30, Filter: "email", Value: func(l model.Lead) string { return l.Email }},
		leadColStatus:  {Title: "Status", Width: 13, Filter: "status", Value: func(l model.Lead) string { return string(l.Status) }},
		leadColScore:   {Title: "Score", Width: 14, Sortable: true, Value: scoreLabel},
		leadColConverted: {Title: "Converted", Width: 9, Value: func(l model.Lead) string {
			if l.Status == model.LeadStatusConverted {
				return "✓"
			}
			return ""
		}},
	}
}

func scoreLabel(l model.Lead) string {
	band := statusutil.ScoreBand(l.Score)
	return scoreBandStyle(band).Render(band) + " (" + strconv.Itoa(l.Score) + ")"
}

func leadKey(l model.Lead) string { return strconv.Itoa(l.ID) }

// leadStatusFilterOptions are the values "f" cycles through. Converted leads live on as
// opportunities, so they are not offered.
func leadStatusFilterOptions() []string {
	out := []string{statusutil.AllStatuses}
	for _, st := range statusutil.EditableLeadStatuses() {
		out = append(out, string(st))
	}
	return out
}

type leadField int

const (
	leadFieldEmail leadField = iota
	leadFieldStatus
)

// leadEditor edits a lead's email and status in place.
type leadEditor struct {
	*rowEditor[int, model.Lead]
	field leadField
	email textinput.Model
}

func newLeadEditor(leads *store.LeadStore) *leadEditor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 120
	return &leadEditor{
		rowEditor: newRowEditor(func(l model.Lead) int { return l.ID }, mutate.ValidateLeadEdit, mutate.LeadCommitter(leads)),
		email:     ti,
	}
}

func (e *leadEditor) start(row model.Lead) tea.Cmd {
	e.begin(row)
	e.field = leadFieldEmail
	e.email.SetValue(row.Email)
	e.email.CursorEnd()
	return e.email.Focus()
}

func (e *leadEditor) stop() {
	e.email.Blur()
}

func (e *leadEditor) handleKey(ctx context.Context, msg tea.KeyMsg, keys editKeyMap) (editOutcome, tea.Cmd, error) {
	s, ok := e.session()
	if !ok {
		return editCancelled, nil, nil
	}
	switch {
	case key.Matches(msg, keys.Cancel):
		e.cancel()
		e.stop()
		return editCancelled, nil, nil
	case key.Matches(msg, keys.Save):
		out, err := e.save(ctx)
		if out != editRejected {
			e.stop()
		}
		return out, nil, err
	case key.Matches(msg, keys.NextField):
		if e.field == leadFieldEmail {
			e.field = leadFieldStatus
			e.email.Blur()
			return editContinue, nil, nil
		}
		e.field = leadFieldEmail
		return editContinue, e.email.Focus(), nil
	}

	if e.field == leadFieldStatus {
		delta := 0
		switch {
		case key.Matches(msg, keys.Prev):
			delta = -1
		case key.Matches(msg, keys.Next):
			delta = 1
		}
		if delta != 0 && s.Original().Status != model.LeadStatusConverted {
			s.Update(func(l *model.Lead) { l.Status = statusutil.NextLeadStatus(l.Status, delta) })
		}
		return editContinue, nil, nil
	}

	var cmd tea.Cmd
	e.email, cmd = e.email.Update(msg)
	v := e.email.Value()
	s.Update(func(l *model.Lead) { l.Email = v })
	return editContinue, cmd, nil
}

// rowView renders the row being edited; other rows fall back to the grid's default.
func (e *leadEditor) rowView(row model.Lead, _ bool, widths []int) (string, bool) {
	if !e.editing(row) {
		return "", false
	}
	s, _ := e.session()
	d := s.Draft()

	status := string(d.Status)
	if s.Original().Status == model.LeadStatusConverted {
		status += " (locked)"
	} else {
		status = choiceLabel(status, e.field == leadFieldStatus)
	}
	cells := []string{
		grid.Cell(d.Name, widths[leadColName]),
		grid.Cell(d.Company, widths[leadColCompany]),
		renderInputLine(widths[leadColEmail], e.email.View()),
		grid.Cell(status, widths[leadColStatus]),
		grid.Cell(scoreLabel(d), widths[leadColScore]),
		grid.Cell("", widths[leadColConverted]),
	}
	line := editingRowStyle().Render(strings.Join(cells, " "))
	if err := s.Err(); err != nil {
		line += "\n" + styleError().Render("  "+editErrorText(err))
	}
	return line, true
}

func editingRowStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
}

// editErrorText is the user-facing message for a rejected draft.
func editErrorText(err error) string {
	var ve mutate.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func leadSummaryMarkdown(l model.Lead) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", l.Name)
	fmt.Fprintf(&b, "- **Company:** %s\n", orDash(l.Company))
	fmt.Fprintf(&b, "- **Email:** %s\n", orDash(l.Email))
	fmt.Fprintf(&b, "- **Status:** %s\n", l.Status)
	fmt.Fprintf(&b, "- **Score:** %d (%s)\n", l.Score, statusutil.ScoreBand(l.Score))
	if strings.TrimSpace(l.Source) != "" {
		fmt.Fprintf(&b, "- **Source:** %s\n", l.Source)
	}
	if l.Status == model.LeadStatusConverted {
		b.WriteString("\n_Converted to an opportunity._\n")
	}
	return b.String()
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
