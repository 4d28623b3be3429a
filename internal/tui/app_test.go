package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"leadconsole/internal/gateway"
	"leadconsole/internal/grid"
	"leadconsole/internal/model"
	"leadconsole/internal/store"
)

// immediateTick fires at once so debounced filters commit on the next drain.
func immediateTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

func newTestApp(t *testing.T) (appModel, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemoryKV(), nil)
	t.Cleanup(func() { _ = st.Close() })
	m := newAppModel(Options{
		Store:                st,
		Latency:              gateway.Fixed(0),
		LeadsPerPage:         10,
		OpportunitiesPerPage: 10,
		Tick:                 immediateTick,
	})
	m = drain(t, m, m.Init())
	return m, st
}

// runCmd executes cmd, giving up on commands that block (cursor blink timers).
func runCmd(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(50 * time.Millisecond):
		return nil, false
	}
}

// drain runs cmd and everything it produces through Update until nothing is left.
// Minibuffer auto-clear ticks are dropped so flashes stay visible to assertions.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatalf("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := runCmd(c)
		if !ok || msg == nil {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		case tea.QuitMsg, minibufferClearMsg:
			continue
		}
		mm, next := m.Update(msg)
		m = mm.(appModel)
		queue = append(queue, next)
	}
	return m
}

func press(t *testing.T, m appModel, k tea.KeyMsg) appModel {
	t.Helper()
	mm, cmd := m.Update(k)
	return drain(t, mm.(appModel), cmd)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func typeText(t *testing.T, m appModel, s string) appModel {
	t.Helper()
	for _, r := range s {
		m = press(t, m, runes(string(r)))
	}
	return m
}

func filterToAmanda(t *testing.T, m appModel) appModel {
	t.Helper()
	m = press(t, m, runes("/"))
	m = typeText(t, m, "amanda")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.leads.Total() != 1 {
		t.Fatalf("expected one lead for amanda, got %d", m.leads.Total())
	}
	return m
}

func findLead(t *testing.T, st *store.Store, id int) model.Lead {
	t.Helper()
	l, ok, err := st.Leads().Find(context.Background(), id)
	if err != nil || !ok {
		t.Fatalf("find lead %d: ok=%v err=%v", id, ok, err)
	}
	return l
}

func TestApp_InitLoadsBothGrids(t *testing.T) {
	m, _ := newTestApp(t)

	if got := m.leads.State(); got != grid.StateIdle {
		t.Fatalf("leads state: %v", got)
	}
	if m.leads.Total() != 30 || len(m.leads.Items()) != 10 {
		t.Fatalf("leads: total=%d page=%d", m.leads.Total(), len(m.leads.Items()))
	}
	if m.opps.Total() != 12 {
		t.Fatalf("opportunities total: %d", m.opps.Total())
	}
	if v := m.View(); !strings.Contains(v, "Showing 1 to 10 of 30 results") {
		t.Fatalf("footer missing from view:\n%s", v)
	}
}

func TestApp_FilterTypingCommitsAndPersists(t *testing.T) {
	m, st := newTestApp(t)
	m = filterToAmanda(t, m)

	if m.mode != modeTable {
		t.Fatalf("enter should leave filter mode")
	}
	if got := m.leads.Items()[0].Name; got != "Amanda Foster" {
		t.Fatalf("unexpected lead %q", got)
	}
	vs, ok, err := st.LoadViewState(context.Background(), leadsDataKey)
	if err != nil || !ok {
		t.Fatalf("view state not saved: ok=%v err=%v", ok, err)
	}
	if vs.Filters["name"] != "amanda" || vs.Page != 1 {
		t.Fatalf("unexpected view state: %+v", vs)
	}
}

func TestApp_StatusFilterCyclesBackToAll(t *testing.T) {
	m, _ := newTestApp(t)

	m = press(t, m, runes("f"))
	if got := m.leads.Filters()["status"]; got != "new" {
		t.Fatalf("expected status=new, got %q", got)
	}
	for _, l := range m.leads.Items() {
		if l.Status != model.LeadStatusNew {
			t.Fatalf("lead %d has status %s", l.ID, l.Status)
		}
	}
	// new -> contacted -> qualified -> disqualified -> all
	for range 4 {
		m = press(t, m, runes("f"))
	}
	if _, ok := m.leads.Filters()["status"]; ok {
		t.Fatalf("expected status filter cleared, got %v", m.leads.Filters())
	}
	if m.leads.Total() != 30 {
		t.Fatalf("expected all leads, got %d", m.leads.Total())
	}
}

func TestApp_InvalidEmailKeepsEditing(t *testing.T) {
	m, st := newTestApp(t)
	m = filterToAmanda(t, m)

	m = press(t, m, runes("e"))
	if m.mode != modeEdit {
		t.Fatalf("expected edit mode")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, "not-an-email")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeEdit {
		t.Fatalf("invalid save should stay in edit mode")
	}
	if m.minibufferText != "Please enter a valid email address." {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
	if !strings.Contains(m.View(), "Please enter a valid email address.") {
		t.Fatalf("row should show the validation error")
	}
	if got := findLead(t, st, 7).Email; got != "amanda.foster@cloudtech.com" {
		t.Fatalf("store changed: %q", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeTable || m.leadEdit.active {
		t.Fatalf("esc should cancel the edit")
	}
	if got := findLead(t, st, 7).Email; got != "amanda.foster@cloudtech.com" {
		t.Fatalf("cancel wrote to the store: %q", got)
	}
}

func TestApp_EditLeadSavesEmailAndStatus(t *testing.T) {
	m, st := newTestApp(t)
	m = filterToAmanda(t, m)

	m = press(t, m, runes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, "amanda@cloudtech.io")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeTable {
		t.Fatalf("expected table mode after save")
	}
	if m.minibufferText != "Saved" {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
	l := findLead(t, st, 7)
	if l.Email != "amanda@cloudtech.io" || l.Status != model.LeadStatusDisqualified {
		t.Fatalf("unexpected lead after save: %+v", l)
	}
	if got := m.leads.Items()[0].Email; got != "amanda@cloudtech.io" {
		t.Fatalf("grid not requeried: %q", got)
	}
}

func TestApp_ConvertLead(t *testing.T) {
	m, st := newTestApp(t)
	m = filterToAmanda(t, m)

	m = press(t, m, runes("c"))
	if !strings.HasPrefix(m.minibufferText, "Converted Amanda Foster") {
		t.Fatalf("unexpected message %q", m.minibufferText)
	}
	if got := findLead(t, st, 7).Status; got != model.LeadStatusConverted {
		t.Fatalf("lead status: %s", got)
	}
	if m.opps.Total() != 13 {
		t.Fatalf("opportunities grid not refreshed: total=%d", m.opps.Total())
	}

	m = press(t, m, runes("c"))
	if !m.minibufferErr || !strings.Contains(m.minibufferText, "already converted") {
		t.Fatalf("expected already-converted error, got %q", m.minibufferText)
	}
	if m.opps.Total() != 13 {
		t.Fatalf("second convert must not add an opportunity")
	}
}

func TestApp_EditOpportunityStageAndAmount(t *testing.T) {
	m, st := newTestApp(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.tab != tabOpportunities {
		t.Fatalf("tab did not switch")
	}
	first, ok := m.opps.Selected()
	if !ok {
		t.Fatalf("no opportunity selected")
	}

	m = press(t, m, runes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, "2,500")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	o, ok, err := st.Opportunities().Find(context.Background(), first.ID)
	if err != nil || !ok {
		t.Fatalf("find: ok=%v err=%v", ok, err)
	}
	if o.Amount == nil || *o.Amount != 2500 {
		t.Fatalf("unexpected amount %v", o.Amount)
	}
	if o.Stage == first.Stage {
		t.Fatalf("stage did not change from %s", first.Stage)
	}
}

func TestApp_NegativeAmountRejected(t *testing.T) {
	m, st := newTestApp(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	first, _ := m.opps.Selected()

	m = press(t, m, runes("e"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	m = typeText(t, m, "-5")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeEdit {
		t.Fatalf("negative amount should keep the row in edit mode")
	}
	o, _, _ := st.Opportunities().Find(context.Background(), first.ID)
	if o.Amount == nil || first.Amount == nil || *o.Amount != *first.Amount {
		t.Fatalf("store changed: %v", o.Amount)
	}
}

func TestApp_DetailPanelOpensAndCloses(t *testing.T) {
	m, _ := newTestApp(t)
	sel, _ := m.leads.Selected()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.detailOpen {
		t.Fatalf("expected detail panel")
	}
	if v := m.View(); !strings.Contains(v, sel.Name) || !strings.Contains(v, "c convert") {
		t.Fatalf("detail panel missing lead:\n%s", v)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.detailOpen {
		t.Fatalf("esc should close the panel")
	}
	if _, ok := m.leads.Detail(); ok {
		t.Fatalf("grid detail should be cleared")
	}
}

func TestApp_ClearStateResetsView(t *testing.T) {
	m, st := newTestApp(t)
	m = press(t, m, runes("s"))
	m = press(t, m, runes("]"))
	if m.leads.Page() != 2 || m.leads.Sorting() != store.SortDesc {
		t.Fatalf("setup: page=%d sort=%s", m.leads.Page(), m.leads.Sorting())
	}

	m = press(t, m, runes("X"))
	if m.leads.Page() != 1 || m.leads.Sorting() != store.SortUnsorted {
		t.Fatalf("not reset: page=%d sort=%s", m.leads.Page(), m.leads.Sorting())
	}
	if _, ok, _ := st.LoadViewState(context.Background(), leadsDataKey); ok {
		t.Fatalf("persisted view state should be gone")
	}
}

func TestApp_PageJumpKeys(t *testing.T) {
	m, _ := newTestApp(t)

	m = press(t, m, runes("3"))
	if m.leads.Page() != 3 {
		t.Fatalf("3: page=%d", m.leads.Page())
	}
	if v := m.View(); !strings.Contains(v, "Showing 21 to 30 of 30 results") {
		t.Fatalf("footer after jump:\n%s", v)
	}
	m = press(t, m, runes("9"))
	if m.leads.Page() != 3 {
		t.Fatalf("9 is past the last page, moved to %d", m.leads.Page())
	}
	m = press(t, m, runes("g"))
	if m.leads.Page() != 1 {
		t.Fatalf("g: page=%d", m.leads.Page())
	}
	m = press(t, m, runes("G"))
	if m.leads.Page() != 3 {
		t.Fatalf("G: page=%d", m.leads.Page())
	}

	// Opportunities: 12 rows over two pages; the leads grid stays put.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, runes("G"))
	if m.opps.Page() != 2 || len(m.opps.Items()) != 2 {
		t.Fatalf("opportunities G: page=%d items=%d", m.opps.Page(), len(m.opps.Items()))
	}
	if m.leads.Page() != 3 {
		t.Fatalf("leads page changed to %d", m.leads.Page())
	}
}

func TestNextOption(t *testing.T) {
	opts := leadStatusFilterOptions()
	if got := nextOption(opts, ""); got != "new" {
		t.Fatalf("from all: %q", got)
	}
	if got := nextOption(opts, "disqualified"); got != "all" {
		t.Fatalf("wrap: %q", got)
	}
	if got := nextOption(opts, "bogus"); got != "all" {
		t.Fatalf("unknown: %q", got)
	}
}
