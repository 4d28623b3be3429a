package grid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"leadconsole/internal/model"
	"leadconsole/internal/query"
	"leadconsole/internal/store"
)

type fakeSource struct {
	mu    sync.Mutex
	leads []model.Lead
	calls []query.Options
	fail  error
}

func (f *fakeSource) fetch(_ context.Context, opts query.Options) (query.Result[model.Lead], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	if f.fail != nil {
		return query.Result[model.Lead]{}, f.fail
	}
	return query.Run(f.leads, query.LeadSchema, opts)
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seedLeads(n int) []model.Lead {
	out := make([]model.Lead, 0, n)
	for i := 1; i <= n; i++ {
		company := "Acme"
		if i%2 == 0 {
			company = "TechCorp"
		}
		out = append(out, model.Lead{
			ID: i, Name: fmt.Sprintf("Lead %d", i), Company: company,
			Email: fmt.Sprintf("l%d@example.com", i), Score: i * 10, Status: model.LeadStatusNew,
		})
	}
	return out
}

// immediateTick fires the debounce callback as soon as the command runs.
func immediateTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Time{}) }
}

func newTestGrid(t *testing.T, src *fakeSource, states StateStore) *Model[model.Lead] {
	t.Helper()
	return New(Config[model.Lead]{
		DataKey:  "leads",
		SortKey:  "score",
		PageSize: 10,
		Fetch:    src.fetch,
		Key:      func(l model.Lead) string { return fmt.Sprint(l.ID) },
		States:   states,
		Tick:     immediateTick,
		Columns: []Column[model.Lead]{
			{Title: "Name", Width: 16, Value: func(l model.Lead) string { return l.Name }, Filter: "name"},
			{Title: "Company", Width: 12, Value: func(l model.Lead) string { return l.Company }, Filter: "company"},
			{Title: "Score", Width: 8, Value: func(l model.Lead) string { return fmt.Sprint(l.Score) }, Sortable: true},
		},
	})
}

// deliver runs cmd and feeds its message back into the grid, returning the follow-up command.
func deliver(m *Model[model.Lead], cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return m.Update(cmd())
}

// settle runs commands until the grid stops producing them.
func settle(t *testing.T, m *Model[model.Lead], cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 10, "command chain did not settle")
		cmd = deliver(m, cmd)
	}
}

func TestGrid_Init_LoadsFirstPage(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	m := newTestGrid(t, src, nil)
	require.Equal(t, StateLoading, m.State())

	settle(t, m, m.Init())
	require.Equal(t, StateIdle, m.State())
	require.Len(t, m.Items(), 10)
	require.Equal(t, 25, m.Total())
	require.Equal(t, 3, m.TotalPages())
	require.Contains(t, m.View(), "Showing 1 to 10 of 25 results")
}

func TestGrid_FilterInput_DebouncesToOneQueryWithFinalValue(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())
	before := src.callCount()

	tick1 := m.FilterInput("name", "Lead 1")
	tick2 := m.FilterInput("name", "Lead 12")
	require.Equal(t, "Lead 12", m.FilterValue("name"))
	require.Equal(t, before, src.callCount(), "typing must not query before the debounce elapses")

	// The first tick belongs to a superseded keystroke and commits nothing.
	require.Nil(t, deliver(m, tick1))
	settle(t, m, deliver(m, tick2))

	require.Equal(t, before+1, src.callCount())
	last := src.calls[len(src.calls)-1]
	require.Equal(t, "Lead 12", last.Filters["name"])
	require.Equal(t, 1, m.Total())
	require.Equal(t, 1, m.Page())
}

func TestGrid_DropsOutOfOrderResponses(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())

	first := m.SetFilter("company", "Acme")
	second := m.SetFilter("company", "TechCorp")

	// The later request resolves first; the earlier response arrives afterwards and is dropped.
	require.Nil(t, m.Update(second()))
	require.Nil(t, m.Update(first()))

	require.Equal(t, StateIdle, m.State())
	for _, l := range m.Items() {
		require.Equal(t, "TechCorp", l.Company)
	}
}

func TestGrid_IgnoresOtherGridsMessages(t *testing.T) {
	src := &fakeSource{leads: seedLeads(5)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())

	foreign := fetchedMsg[model.Lead]{dataKey: "opportunities", seq: m.requestSeq, err: errors.New("nope")}
	require.Nil(t, m.Update(foreign))
	require.Equal(t, StateIdle, m.State())
}

func TestGrid_CycleSort(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())
	settle(t, m, m.GoToPage(2))
	require.Equal(t, 2, m.Page())

	settle(t, m, m.CycleSort())
	require.Equal(t, store.SortDesc, m.Sorting())
	require.Equal(t, 1, m.Page(), "sorting resets the page")
	require.Equal(t, 250, m.Items()[0].Score)
	require.Contains(t, m.View(), "Score ↓")

	settle(t, m, m.CycleSort())
	require.Equal(t, store.SortAsc, m.Sorting())
	require.Equal(t, 10, m.Items()[0].Score)

	settle(t, m, m.CycleSort())
	require.Equal(t, store.SortUnsorted, m.Sorting())
	require.Nil(t, m.Request().Sorting)
}

func TestGrid_PageBounds(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())

	require.Nil(t, m.PrevPage(), "page 0 is out of range")
	require.Nil(t, m.GoToPage(4), "page 4 of 3 is out of range")
	require.Nil(t, m.GoToPage(1), "already on page 1")

	settle(t, m, m.GoToPage(3))
	require.Equal(t, 3, m.Page())
	require.Len(t, m.Items(), 5)
	require.Contains(t, m.View(), "Showing 21 to 25 of 25 results")
	require.Nil(t, m.NextPage())
}

func TestGrid_RootFilterShowsThroughClearedUserFilter(t *testing.T) {
	src := &fakeSource{leads: seedLeads(10)}
	m := newTestGrid(t, src, nil)
	m.cfg.RootFilter = map[string]string{"company": "TechCorp"}
	settle(t, m, m.Init())
	require.Equal(t, "TechCorp", m.Request().Filters["company"])

	settle(t, m, m.SetFilter("company", "Acme"))
	require.Equal(t, "Acme", m.Request().Filters["company"], "user filter wins on collision")

	settle(t, m, m.SetFilter("company", ""))
	require.Equal(t, "TechCorp", m.Request().Filters["company"])
	_, hasUser := m.Filters()["company"]
	require.False(t, hasUser)
}

func TestGrid_ViewStatePersistsAndRestores(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	st := store.New(store.NewMemoryKV(), nil)
	ctx := context.Background()

	m := newTestGrid(t, src, st)
	settle(t, m, m.Init())
	settle(t, m, m.CycleSort())
	settle(t, m, m.SetFilter("company", "Acme"))
	settle(t, m, m.GoToPage(2))

	saved, ok, err := st.LoadViewState(ctx, "leads")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, &store.ViewState{
		Version: 1,
		Filters: map[string]string{"company": "Acme"},
		Sorting: store.SortDesc,
		Page:    2,
	}, saved)

	// A second grid over the same storage key starts where the first left off.
	m2 := newTestGrid(t, src, st)
	settle(t, m2, m2.Init())
	require.Equal(t, m.Request(), m2.Request())
	require.Equal(t, "Acme", m2.FilterValue("company"))

	settle(t, m2, m2.ClearState())
	_, ok, err = st.LoadViewState(ctx, "leads")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, m2.Page())
	require.Empty(t, m2.Filters())
}

func TestGrid_RestoredPagePastTheEndClampsToLastPage(t *testing.T) {
	ctx := context.Background()
	// Saved while there were more rows (or edited by hand); the data now fits on one page.
	for _, page := range []int{3, math.MaxInt} {
		st := store.New(store.NewMemoryKV(), nil)
		require.NoError(t, st.SaveViewState(ctx, "leads", &store.ViewState{Version: 1, Page: page}))

		src := &fakeSource{leads: seedLeads(5)}
		m := newTestGrid(t, src, st)
		settle(t, m, m.Init())

		require.Equal(t, 1, m.Page(), "restored page %d", page)
		require.Equal(t, StateIdle, m.State())
		require.Len(t, m.Items(), 5)
		require.Equal(t, 2, src.callCount(), "one fetch for the stale page, one for the clamped page")
		require.Contains(t, m.View(), "Showing 1 to 5 of 5 results")

		saved, ok, err := st.LoadViewState(ctx, "leads")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 1, saved.Page)
	}
}

func TestGrid_PrevPageFromPastTheEnd(t *testing.T) {
	src := &fakeSource{leads: seedLeads(25)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())
	settle(t, m, m.GoToPage(3))

	// Rows vanish between requests; the stale page must still lead somewhere.
	src.mu.Lock()
	src.leads = src.leads[:12]
	src.mu.Unlock()
	m.total = 12
	require.Equal(t, 2, m.TotalPages())

	settle(t, m, m.PrevPage())
	require.Equal(t, 2, m.Page())
	require.Len(t, m.Items(), 2)
}

func TestGrid_ErrorStateAndRetry(t *testing.T) {
	src := &fakeSource{leads: seedLeads(3), fail: errors.New("backend unavailable")}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())

	require.Equal(t, StateError, m.State())
	require.EqualError(t, m.Err(), "backend unavailable")
	require.Contains(t, m.View(), "press r to retry")

	src.fail = nil
	settle(t, m, m.Retry())
	require.Equal(t, StateIdle, m.State())
	require.Nil(t, m.Retry(), "retry only applies to the error state")
}

func TestGrid_EmptyState(t *testing.T) {
	src := &fakeSource{leads: seedLeads(3)}
	m := newTestGrid(t, src, nil)
	m.cfg.NoDataMessage = "No leads found."
	settle(t, m, m.Init())
	settle(t, m, m.SetFilter("name", "nobody"))

	require.Equal(t, StateEmpty, m.State())
	require.Contains(t, m.View(), "No leads found.")
	_, ok := m.Selected()
	require.False(t, ok)
}

func TestGrid_SelectionAndDetailFollowRefresh(t *testing.T) {
	src := &fakeSource{leads: seedLeads(5)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())

	m.MoveCursor(2)
	m.MoveCursor(10)
	require.Equal(t, 4, m.Cursor())
	m.MoveCursor(-1)
	sel, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, 4, sel.ID)

	require.True(t, m.OpenDetail())
	src.leads[3].Name = "Renamed"
	settle(t, m, m.Requery())
	d, ok := m.Detail()
	require.True(t, ok)
	require.Equal(t, "Renamed", d.Name)

	m.CloseDetail()
	_, ok = m.Detail()
	require.False(t, ok)
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		page, total int
		want        []int
	}{
		{1, 0, nil},
		{2, 5, []int{1, 2, 3, 4, 5}},
		{3, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{4, 12, []int{1, 2, 3, 4, 5, 0, 12}},
		{9, 12, []int{1, 0, 8, 9, 10, 11, 12}},
		{6, 12, []int{1, 0, 5, 6, 7, 0, 12}},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, PageWindow(tc.page, tc.total), "page %d of %d", tc.page, tc.total)
	}
}

func TestShowingRange(t *testing.T) {
	from, to := ShowingRange(3, 10, 25)
	require.Equal(t, 21, from)
	require.Equal(t, 25, to)
	from, to = ShowingRange(1, 10, 0)
	require.Zero(t, from)
	require.Zero(t, to)
	from, to = ShowingRange(math.MaxInt, 10, 25)
	require.Equal(t, 25, from)
	require.Equal(t, 25, to)
	from, to = ShowingRange(1, math.MaxInt, 25)
	require.Equal(t, 1, from)
	require.Equal(t, 25, to)
}

func TestGrid_ViewRendersFilterValues(t *testing.T) {
	src := &fakeSource{leads: seedLeads(3)}
	m := newTestGrid(t, src, nil)
	settle(t, m, m.Init())
	_ = m.FilterInput("name", "lea")

	v := m.View()
	require.True(t, strings.Contains(v, "[lea]"), "pending filter text is shown: %q", v)
}
