package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"leadconsole/internal/grid"
	"leadconsole/internal/model"
	"leadconsole/internal/mutate"
	"leadconsole/internal/statusutil"
	"leadconsole/internal/store"
)

const opportunitiesDataKey = "opportunities"

const (
	oppColName = iota
	oppColAccount
	oppColAmount
	oppColStage
)

func opportunityColumns() []grid.Column[model.Opportunity] {
	return []grid.Column[model.Opportunity]{
		oppColName:    {Title: "Name", Width: 24, Filter: "name", Value: func(o model.Opportunity) string { return o.Name }},
		oppColAccount: {Title: "Account", Width: 24, Filter: "accountName", Value: func(o model.Opportunity) string { return o.AccountName }},
		oppColAmount:  {Title: "Amount", Width: 14, Sortable: true, Value: func(o model.Opportunity) string { return statusutil.FormatAmount(o.Amount) }},
		oppColStage:   {Title: "Stage", Width: 16, Filter: "stage", Value: func(o model.Opportunity) string { return string(o.Stage) }},
	}
}

func opportunityKey(o model.Opportunity) string { return o.ID }

func stageFilterOptions() []string {
	out := []string{statusutil.AllStatuses}
	for _, st := range model.Stages {
		out = append(out, string(st))
	}
	return out
}

type oppField int

const (
	oppFieldStage oppField = iota
	oppFieldAmount
)

// opportunityEditor edits an opportunity's stage and amount in place.
type opportunityEditor struct {
	*rowEditor[string, model.Opportunity]
	field  oppField
	amount textinput.Model
}

func newOpportunityEditor(opps *store.OpportunityStore) *opportunityEditor {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "N/A"
	ti.CharLimit = 20
	return &opportunityEditor{
		rowEditor: newRowEditor(opportunityKey, mutate.ValidateOpportunityEdit, mutate.OpportunityCommitter(opps)),
		amount:    ti,
	}
}

func amountInputValue(a *float64) string {
	if a == nil {
		return ""
	}
	return strconv.FormatFloat(*a, 'f', -1, 64)
}

func (e *opportunityEditor) start(row model.Opportunity) tea.Cmd {
	e.begin(row)
	e.field = oppFieldStage
	e.amount.SetValue(amountInputValue(row.Amount))
	e.amount.CursorEnd()
	e.amount.Blur()
	return nil
}

func (e *opportunityEditor) stop() {
	e.amount.Blur()
}

func (e *opportunityEditor) handleKey(ctx context.Context, msg tea.KeyMsg, keys editKeyMap) (editOutcome, tea.Cmd, error) {
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
		// The amount is only parsed on save so partial input ("1,2") can be typed freely.
		amount, err := mutate.ParseAmount(e.amount.Value())
		if err != nil {
			return editRejected, nil, err
		}
		s.Update(func(o *model.Opportunity) { o.Amount = amount })
		out, err := e.save(ctx)
		if out != editRejected {
			e.stop()
		}
		return out, nil, err
	case key.Matches(msg, keys.NextField):
		if e.field == oppFieldStage {
			e.field = oppFieldAmount
			return editContinue, e.amount.Focus(), nil
		}
		e.field = oppFieldStage
		e.amount.Blur()
		return editContinue, nil, nil
	}

	if e.field == oppFieldStage {
		delta := 0
		switch {
		case key.Matches(msg, keys.Prev):
			delta = -1
		case key.Matches(msg, keys.Next):
			delta = 1
		}
		if delta != 0 {
			s.Update(func(o *model.Opportunity) { o.Stage = statusutil.NextStage(o.Stage, delta) })
		}
		return editContinue, nil, nil
	}

	var cmd tea.Cmd
	e.amount, cmd = e.amount.Update(msg)
	return editContinue, cmd, nil
}

func (e *opportunityEditor) rowView(row model.Opportunity, _ bool, widths []int) (string, bool) {
	if !e.editing(row) {
		return "", false
	}
	s, _ := e.session()
	d := s.Draft()
	cells := []string{
		grid.Cell(d.Name, widths[oppColName]),
		grid.Cell(d.AccountName, widths[oppColAccount]),
		renderInputLine(widths[oppColAmount], e.amount.View()),
		grid.Cell(choiceLabel(string(d.Stage), e.field == oppFieldStage), widths[oppColStage]),
	}
	line := editingRowStyle().Render(strings.Join(cells, " "))
	if err := s.Err(); err != nil {
		line += "\n" + styleError().Render("  "+editErrorText(err))
	}
	return line, true
}

func opportunitySummaryMarkdown(o model.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", o.Name)
	fmt.Fprintf(&b, "- **Account:** %s\n", orDash(o.AccountName))
	fmt.Fprintf(&b, "- **Stage:** %s\n", o.Stage)
	fmt.Fprintf(&b, "- **Amount:** %s\n", statusutil.FormatAmount(o.Amount))
	fmt.Fprintf(&b, "- **ID:** `%s`\n", o.ID)
	return b.String()
}
