package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"leadconsole/internal/gateway"
	"leadconsole/internal/grid"
	"leadconsole/internal/model"
	"leadconsole/internal/mutate"
	"leadconsole/internal/query"
	"leadconsole/internal/statusutil"
	"leadconsole/internal/store"
)

type tab int

const (
	tabLeads tab = iota
	tabOpportunities
)

type mode int

const (
	modeTable mode = iota
	modeFilter
	modeEdit
)

const minibufferAutoClearAfter = 4 * time.Second

type minibufferClearMsg struct{ seq int }

type appModel struct {
	ctx context.Context
	st  *store.Store
	log *zap.Logger

	keys     keyMap
	editKeys editKeyMap
	help     help.Model
	tick     grid.TickFunc

	width  int
	height int

	tab        tab
	mode       mode
	detailOpen bool

	leads       *grid.Model[model.Lead]
	opps        *grid.Model[model.Opportunity]
	leadFilters *filterBar
	oppFilters  *filterBar
	leadEdit    *leadEditor
	oppEdit     *opportunityEditor

	minibufferText string
	minibufferErr  bool
	minibufferSeq  int
}

func newAppModel(opts Options) appModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	latency := opts.Latency
	if latency == nil {
		latency = gateway.DefaultLatency
	}
	tick := opts.Tick
	if tick == nil {
		tick = tea.Tick
	}
	st := opts.Store

	leadGW := gateway.New(leadsDataKey, st.Leads(), query.LeadSchema, latency)
	leadGW.Log = log
	oppGW := gateway.New(opportunitiesDataKey, st.Opportunities(), query.OpportunitySchema, latency)
	oppGW.Log = log

	m := appModel{
		ctx:         context.Background(),
		st:          st,
		log:         log.With(zap.String("module", "tui")),
		keys:        defaultKeyMap(),
		editKeys:    defaultEditKeyMap(),
		help:        help.New(),
		tick:        tick,
		leadFilters: newFilterBar([]string{"name", "company", "email"}, []string{"Name", "Company", "Email"}),
		oppFilters:  newFilterBar([]string{"name", "accountName"}, []string{"Name", "Account"}),
		leadEdit:    newLeadEditor(st.Leads()),
		oppEdit:     newOpportunityEditor(st.Opportunities()),
	}
	m.leads = grid.New(grid.Config[model.Lead]{
		DataKey:       leadsDataKey,
		Columns:       leadColumns(),
		SortKey:       "score",
		PageSize:      opts.LeadsPerPage,
		Fetch:         leadGW.Query,
		Key:           leadKey,
		RootFilter:    opts.LeadRootFilter,
		States:        st,
		Debounce:      opts.Debounce,
		Logger:        log,
		NoDataMessage: "No leads found.",
		RowView:       m.leadEdit.rowView,
		Tick:          tick,
	})
	m.opps = grid.New(grid.Config[model.Opportunity]{
		DataKey:       opportunitiesDataKey,
		Columns:       opportunityColumns(),
		SortKey:       "amount",
		PageSize:      opts.OpportunitiesPerPage,
		Fetch:         oppGW.Query,
		Key:           opportunityKey,
		RootFilter:    opts.OpportunityRootFilter,
		States:        st,
		Debounce:      opts.Debounce,
		Logger:        log,
		NoDataMessage: "No opportunities found.",
		RowView:       m.oppEdit.rowView,
		Tick:          tick,
	})
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.leads.Init(), m.opps.Init())
}

func (m *appModel) showMinibuffer(text string, isErr bool) tea.Cmd {
	m.minibufferText = text
	m.minibufferErr = isErr
	m.minibufferSeq++
	seq := m.minibufferSeq
	return m.tick(minibufferAutoClearAfter, func(time.Time) tea.Msg { return minibufferClearMsg{seq: seq} })
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case minibufferClearMsg:
		if msg.seq == m.minibufferSeq {
			m.minibufferText = ""
			m.minibufferErr = false
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeEdit:
			return m.updateEdit(msg)
		default:
			return m.updateTable(msg)
		}
	}

	// Grid messages (debounce ticks, query results) carry their data key; each grid
	// ignores the other's.
	return m, tea.Batch(m.leads.Update(msg), m.opps.Update(msg))
}

func (m appModel) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.SwitchTab):
		if m.tab == tabLeads {
			m.tab = tabOpportunities
		} else {
			m.tab = tabLeads
		}
		m.detailOpen = false
		return m, nil
	case key.Matches(msg, m.keys.Close):
		if m.detailOpen {
			m.closeDetail()
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		if m.tab == tabLeads {
			return m, m.leads.PrevPage()
		}
		return m, m.opps.PrevPage()
	case key.Matches(msg, m.keys.NextPage):
		if m.tab == tabLeads {
			return m, m.leads.NextPage()
		}
		return m, m.opps.NextPage()
	case key.Matches(msg, m.keys.GoToPage):
		n, _ := strconv.Atoi(msg.String())
		return m, m.goToPage(n)
	case key.Matches(msg, m.keys.FirstPage):
		return m, m.goToPage(1)
	case key.Matches(msg, m.keys.LastPage):
		return m, m.goToPage(-1)
	case key.Matches(msg, m.keys.Sort):
		if m.tab == tabLeads {
			return m, m.leads.CycleSort()
		}
		return m, m.opps.CycleSort()
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		if m.tab == tabLeads {
			return m, m.leadFilters.open(m.leads.FilterValue)
		}
		return m, m.oppFilters.open(m.opps.FilterValue)
	case key.Matches(msg, m.keys.EnumFilter):
		return m, m.cycleEnumFilter()
	case key.Matches(msg, m.keys.Retry):
		return m, m.reload()
	case key.Matches(msg, m.keys.ClearState):
		m.detailOpen = false
		if m.tab == tabLeads {
			m.leads.CloseDetail()
			return m, tea.Batch(m.leads.ClearState(), m.showMinibuffer("Lead view reset", false))
		}
		m.opps.CloseDetail()
		return m, tea.Batch(m.opps.ClearState(), m.showMinibuffer("Opportunity view reset", false))
	case key.Matches(msg, m.keys.Detail):
		m.openDetail()
		return m, nil
	case key.Matches(msg, m.keys.Edit):
		return m, m.beginEdit()
	case key.Matches(msg, m.keys.Convert):
		return m, m.convertSelected()
	}
	return m, nil
}

func (m *appModel) moveCursor(delta int) {
	if m.tab == tabLeads {
		m.leads.MoveCursor(delta)
	} else {
		m.opps.MoveCursor(delta)
	}
}

// goToPage jumps the active grid to page n; a negative n counts from the last page.
func (m *appModel) goToPage(n int) tea.Cmd {
	if m.tab == tabLeads {
		if n < 0 {
			n = m.leads.TotalPages() + 1 + n
		}
		return m.leads.GoToPage(n)
	}
	if n < 0 {
		n = m.opps.TotalPages() + 1 + n
	}
	return m.opps.GoToPage(n)
}

func (m *appModel) reload() tea.Cmd {
	if m.tab == tabLeads {
		if m.leads.State() == grid.StateError {
			return m.leads.Retry()
		}
		return m.leads.Requery()
	}
	if m.opps.State() == grid.StateError {
		return m.opps.Retry()
	}
	return m.opps.Requery()
}

// cycleEnumFilter steps the status (leads) or stage (opportunities) select; "all" clears it.
func (m *appModel) cycleEnumFilter() tea.Cmd {
	if m.tab == tabLeads {
		next := nextOption(leadStatusFilterOptions(), m.leads.FilterValue("status"))
		return m.leads.SetFilter("status", enumFilterValue(next))
	}
	next := nextOption(stageFilterOptions(), m.opps.FilterValue("stage"))
	return m.opps.SetFilter("stage", enumFilterValue(next))
}

func nextOption(opts []string, cur string) string {
	if cur == "" {
		cur = statusutil.AllStatuses
	}
	for i, o := range opts {
		if strings.EqualFold(o, cur) {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func enumFilterValue(v string) string {
	if v == statusutil.AllStatuses {
		return ""
	}
	return v
}

func (m appModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	bar := m.leadFilters
	if m.tab == tabOpportunities {
		bar = m.oppFilters
	}
	switch msg.String() {
	case "esc", "enter":
		bar.close()
		m.mode = modeTable
		return m, nil
	case "tab":
		return m, bar.cycle(1)
	case "shift+tab":
		return m, bar.cycle(-1)
	case "ctrl+c":
		return m, tea.Quit
	}
	field, value, changed, cmd := bar.update(msg)
	if !changed {
		return m, cmd
	}
	if m.tab == tabLeads {
		return m, tea.Batch(cmd, m.leads.FilterInput(field, value))
	}
	return m, tea.Batch(cmd, m.opps.FilterInput(field, value))
}

func (m *appModel) openDetail() {
	if m.tab == tabLeads {
		m.detailOpen = m.leads.OpenDetail()
		return
	}
	m.detailOpen = m.opps.OpenDetail()
}

func (m *appModel) closeDetail() {
	m.detailOpen = false
	m.leads.CloseDetail()
	m.opps.CloseDetail()
}

// leadTarget is the lead an edit or convert applies to: the open detail record, else the selection.
func (m *appModel) leadTarget() (model.Lead, bool) {
	if m.detailOpen {
		if l, ok := m.leads.Detail(); ok {
			return l, true
		}
	}
	return m.leads.Selected()
}

func (m *appModel) opportunityTarget() (model.Opportunity, bool) {
	if m.detailOpen {
		if o, ok := m.opps.Detail(); ok {
			return o, true
		}
	}
	return m.opps.Selected()
}

func (m *appModel) beginEdit() tea.Cmd {
	if m.tab == tabLeads {
		l, ok := m.leadTarget()
		if !ok {
			return nil
		}
		m.mode = modeEdit
		return m.leadEdit.start(l)
	}
	o, ok := m.opportunityTarget()
	if !ok {
		return nil
	}
	m.mode = modeEdit
	return m.oppEdit.start(o)
}

func (m appModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	var (
		out editOutcome
		cmd tea.Cmd
		err error
	)
	if m.tab == tabLeads {
		out, cmd, err = m.leadEdit.handleKey(m.ctx, msg, m.editKeys)
	} else {
		out, cmd, err = m.oppEdit.handleKey(m.ctx, msg, m.editKeys)
	}

	switch out {
	case editContinue:
		return m, cmd
	case editRejected:
		return m, tea.Batch(cmd, m.showMinibuffer(editErrorText(err), true))
	case editCancelled:
		m.mode = modeTable
		return m, cmd
	}

	m.mode = modeTable
	flash := "Saved"
	if out == editMissing {
		flash = "That record no longer exists"
	}
	return m, tea.Batch(cmd, m.requeryCurrent(), m.showMinibuffer(flash, out == editMissing))
}

func (m *appModel) requeryCurrent() tea.Cmd {
	if m.tab == tabLeads {
		return m.leads.Requery()
	}
	return m.opps.Requery()
}

// convertSelected turns the target lead into an opportunity and refreshes both grids.
func (m *appModel) convertSelected() tea.Cmd {
	if m.tab != tabLeads {
		return nil
	}
	l, ok := m.leadTarget()
	if !ok {
		return nil
	}
	res, err := mutate.ConvertLead(m.ctx, m.st, l.ID)
	if err != nil {
		m.log.Info("convert lead failed", zap.Int("lead", l.ID), zap.Error(err))
		text := "Convert failed: " + err.Error()
		if errors.Is(err, mutate.ErrAlreadyConverted) {
			text = l.Name + " is already converted"
		}
		return m.showMinibuffer(text, true)
	}
	m.log.Info("lead converted", zap.Int("lead", l.ID), zap.String("opportunity", res.Opportunity.ID))
	return tea.Batch(
		m.leads.Requery(),
		m.opps.Requery(),
		m.showMinibuffer(fmt.Sprintf("Converted %s → opportunity %s", res.Lead.Name, res.Opportunity.ID), false),
	)
}
