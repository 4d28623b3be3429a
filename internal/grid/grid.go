// Package grid is a reusable Bubble Tea table over an asynchronous, paginated source.
//
// A grid owns its view state (filters, sort direction, page), persists it after every
// change, debounces filter input, and discards query responses that are no longer the
// latest one it asked for.
package grid

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"leadconsole/internal/query"
	"leadconsole/internal/store"
)

const (
	DefaultDebounce = 750 * time.Millisecond
	DefaultPageSize = 10
)

type State int

const (
	StateLoading State = iota
	StateIdle
	StateEmpty
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateEmpty:
		return "empty"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchFunc runs one query. It is called off the event loop.
type FetchFunc[T any] func(ctx context.Context, opts query.Options) (query.Result[T], error)

// StateStore persists view state per data key. *store.Store implements it.
type StateStore interface {
	LoadViewState(ctx context.Context, dataKey string) (*store.ViewState, bool, error)
	SaveViewState(ctx context.Context, dataKey string, st *store.ViewState) error
	ClearViewState(ctx context.Context, dataKey string) error
}

type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
	// Filter is the filter field edited from this column's header, if any.
	Filter string
	// Sortable marks the column holding the grid's sort key.
	Sortable bool
}

type Config[T any] struct {
	DataKey  string
	Columns  []Column[T]
	SortKey  string
	PageSize int
	Fetch    FetchFunc[T]
	// Key identifies a row across refreshes (selection, detail panel).
	Key        func(T) string
	RootFilter map[string]string
	States     StateStore
	Debounce   time.Duration
	Logger     *zap.Logger
	// NoDataMessage is shown when a query matches nothing.
	NoDataMessage string
	// RowView may replace the default rendering of a row (e.g. while it is being edited).
	RowView func(row T, selected bool, widths []int) (string, bool)
	// Tick defaults to tea.Tick.
	Tick TickFunc
}

type Model[T any] struct {
	cfg Config[T]
	log *zap.Logger
	ctx context.Context

	filters map[string]string
	inputs  map[string]string
	sorting string
	page    int

	state State
	items []T
	total int
	err   error

	cursor     int
	detail     *T
	requestSeq int
	debouncers map[string]*debouncer
}

func New[T any](cfg Config[T]) *Model[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Tick == nil {
		cfg.Tick = tea.Tick
	}
	if strings.TrimSpace(cfg.NoDataMessage) == "" {
		cfg.NoDataMessage = "No results found."
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Model[T]{
		cfg:        cfg,
		log:        log.With(zap.String("module", "grid"), zap.String("dataKey", cfg.DataKey)),
		ctx:        context.Background(),
		filters:    map[string]string{},
		inputs:     map[string]string{},
		sorting:    store.SortUnsorted,
		page:       1,
		state:      StateLoading,
		debouncers: map[string]*debouncer{},
	}
}

// Init restores persisted view state and issues the first query.
func (m *Model[T]) Init() tea.Cmd {
	m.restore()
	return m.fetch()
}

func (m *Model[T]) restore() {
	if m.cfg.States == nil {
		return
	}
	st, ok, err := m.cfg.States.LoadViewState(m.ctx, m.cfg.DataKey)
	if err != nil {
		m.log.Warn("load view state failed; using defaults", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	m.filters = map[string]string{}
	m.inputs = map[string]string{}
	for k, v := range st.Filters {
		m.filters[k] = v
		m.inputs[k] = v
	}
	m.sorting = st.Sorting
	m.page = st.Page
}

func (m *Model[T]) snapshot() *store.ViewState {
	st := store.DefaultViewState()
	for k, v := range m.filters {
		st.Filters[k] = v
	}
	st.Sorting = m.sorting
	st.Page = m.page
	return st
}

// persist saves the view state. Failures are logged and otherwise ignored.
func (m *Model[T]) persist() {
	if m.cfg.States == nil {
		return
	}
	if err := m.cfg.States.SaveViewState(m.ctx, m.cfg.DataKey, m.snapshot()); err != nil {
		m.log.Warn("save view state failed", zap.Error(err))
	}
}

// FilterInput records a keystroke's worth of filter text and (re)starts that field's debounce.
// Only the last value typed before the debounce elapses is committed.
func (m *Model[T]) FilterInput(field, value string) tea.Cmd {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	m.inputs[field] = value
	d := m.debouncers[field]
	if d == nil {
		d = &debouncer{}
		m.debouncers[field] = d
	}
	seq := d.Reset(value)
	dataKey := m.cfg.DataKey
	return m.cfg.Tick(m.cfg.Debounce, func(time.Time) tea.Msg {
		return filterTickMsg{dataKey: dataKey, field: field, seq: seq}
	})
}

// SetFilter commits a filter value immediately (select-style inputs).
func (m *Model[T]) SetFilter(field, value string) tea.Cmd {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	if d := m.debouncers[field]; d != nil {
		d.Cancel()
	}
	m.inputs[field] = value
	return m.commitFilter(field, value)
}

func (m *Model[T]) commitFilter(field, value string) tea.Cmd {
	if strings.TrimSpace(value) == "" {
		// Clearing a user filter lets the root filter for the field show through.
		delete(m.filters, field)
	} else {
		m.filters[field] = value
	}
	m.page = 1
	m.persist()
	return m.fetch()
}

// CycleSort steps unsorted -> desc -> asc -> unsorted.
func (m *Model[T]) CycleSort() tea.Cmd {
	switch m.sorting {
	case store.SortDesc:
		m.sorting = store.SortAsc
	case store.SortAsc:
		m.sorting = store.SortUnsorted
	default:
		m.sorting = store.SortDesc
	}
	m.page = 1
	m.persist()
	return m.fetch()
}

func (m *Model[T]) NextPage() tea.Cmd { return m.GoToPage(m.page + 1) }
func (m *Model[T]) PrevPage() tea.Cmd { return m.GoToPage(min(m.page-1, m.TotalPages())) }

// GoToPage moves to page n. Pages outside [1, TotalPages] (and the current page) are ignored.
func (m *Model[T]) GoToPage(n int) tea.Cmd {
	if n < 1 || n > m.TotalPages() || n == m.page {
		return nil
	}
	m.page = n
	m.cursor = 0
	m.persist()
	return m.fetch()
}

// Requery re-issues the current query, e.g. after a row was saved.
func (m *Model[T]) Requery() tea.Cmd { return m.fetch() }

func (m *Model[T]) Retry() tea.Cmd {
	if m.state != StateError {
		return nil
	}
	return m.fetch()
}

// ClearState forgets the persisted snapshot and starts over from defaults.
func (m *Model[T]) ClearState() tea.Cmd {
	if m.cfg.States != nil {
		if err := m.cfg.States.ClearViewState(m.ctx, m.cfg.DataKey); err != nil {
			m.log.Warn("clear view state failed", zap.Error(err))
		}
	}
	for _, d := range m.debouncers {
		d.Cancel()
	}
	m.filters = map[string]string{}
	m.inputs = map[string]string{}
	m.sorting = store.SortUnsorted
	m.page = 1
	m.cursor = 0
	return m.fetch()
}

// Request is the query the grid would issue now: root filters overlaid by user filters,
// sorting unless unsorted, and the current page.
func (m *Model[T]) Request() query.Options {
	filters := make(map[string]string, len(m.cfg.RootFilter)+len(m.filters))
	for k, v := range m.cfg.RootFilter {
		filters[k] = v
	}
	for k, v := range m.filters {
		filters[k] = v
	}
	opts := query.Options{
		Filters:    filters,
		Pagination: &query.Pagination{Page: m.page, Limit: m.cfg.PageSize},
	}
	if m.sorting != store.SortUnsorted && m.cfg.SortKey != "" {
		opts.Sorting = map[string]query.Direction{m.cfg.SortKey: query.Direction(m.sorting)}
	}
	return opts
}

func (m *Model[T]) fetch() tea.Cmd {
	m.requestSeq++
	seq := m.requestSeq
	m.state = StateLoading
	m.err = nil

	opts := m.Request()
	fetch := m.cfg.Fetch
	ctx := m.ctx
	dataKey := m.cfg.DataKey
	if fetch == nil {
		return nil
	}
	return func() tea.Msg {
		res, err := fetch(ctx, opts)
		return fetchedMsg[T]{dataKey: dataKey, seq: seq, res: res, err: err}
	}
}

// Update consumes this grid's own messages and ignores everything else.
func (m *Model[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case filterTickMsg:
		if msg.dataKey != m.cfg.DataKey {
			return nil
		}
		d := m.debouncers[msg.field]
		if d == nil {
			return nil
		}
		value, ok := d.Fire(msg.seq)
		if !ok {
			return nil
		}
		return m.commitFilter(msg.field, value)

	case fetchedMsg[T]:
		if msg.dataKey != m.cfg.DataKey {
			return nil
		}
		if msg.seq != m.requestSeq {
			m.log.Debug("dropping stale response", zap.Int("seq", msg.seq), zap.Int("latest", m.requestSeq))
			return nil
		}
		return m.applyResult(msg.res, msg.err)
	}
	return nil
}

func (m *Model[T]) applyResult(res query.Result[T], err error) tea.Cmd {
	if err != nil {
		m.state = StateError
		m.err = err
		m.log.Warn("query failed", zap.Error(err))
		return nil
	}
	m.items = res.Items
	m.total = res.Total
	m.err = nil
	// The data shrank under a saved page: land on the last page that still has rows.
	if last := m.TotalPages(); last > 0 && m.page > last {
		m.log.Debug("page past the end, clamping", zap.Int("page", m.page), zap.Int("last", last))
		m.page = last
		m.cursor = 0
		m.persist()
		return m.fetch()
	}
	if len(res.Items) == 0 {
		m.state = StateEmpty
	} else {
		m.state = StateIdle
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(len(m.items)-1, 0)
	}
	m.refreshDetail()
	return nil
}

func (m *Model[T]) refreshDetail() {
	if m.detail == nil || m.cfg.Key == nil {
		return
	}
	want := m.cfg.Key(*m.detail)
	for _, it := range m.items {
		if m.cfg.Key(it) == want {
			v := it
			m.detail = &v
			return
		}
	}
}

func (m *Model[T]) DataKey() string { return m.cfg.DataKey }
func (m *Model[T]) State() State    { return m.state }
func (m *Model[T]) Err() error      { return m.err }
func (m *Model[T]) Items() []T      { return m.items }
func (m *Model[T]) Total() int      { return m.total }
func (m *Model[T]) Page() int       { return m.page }
func (m *Model[T]) PageSize() int   { return m.cfg.PageSize }
func (m *Model[T]) Sorting() string { return m.sorting }
func (m *Model[T]) Columns() []Column[T] {
	return m.cfg.Columns
}

func (m *Model[T]) TotalPages() int { return query.TotalPages(m.total, m.cfg.PageSize) }

// Filters returns the committed user filters (without the root filter).
func (m *Model[T]) Filters() map[string]string {
	out := make(map[string]string, len(m.filters))
	for k, v := range m.filters {
		out[k] = v
	}
	return out
}

// FilterValue is what the filter input for field currently shows (possibly not yet committed).
func (m *Model[T]) FilterValue(field string) string {
	if v, ok := m.inputs[field]; ok {
		return v
	}
	return m.filters[field]
}

func (m *Model[T]) Cursor() int { return m.cursor }

func (m *Model[T]) MoveCursor(delta int) {
	if len(m.items) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)
}

func (m *Model[T]) Selected() (T, bool) {
	var zero T
	if m.state != StateIdle || m.cursor < 0 || m.cursor >= len(m.items) {
		return zero, false
	}
	return m.items[m.cursor], true
}

func (m *Model[T]) OpenDetail() bool {
	it, ok := m.Selected()
	if !ok {
		return false
	}
	m.detail = &it
	return true
}

func (m *Model[T]) CloseDetail() { m.detail = nil }

func (m *Model[T]) Detail() (T, bool) {
	var zero T
	if m.detail == nil {
		return zero, false
	}
	return *m.detail, true
}
