package store

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

const viewStateKeyPrefix = "tableState-"

const (
	SortUnsorted = "unsorted"
	SortAsc      = "asc"
	SortDesc     = "desc"
)

// ViewState is one grid's persisted filters, sort direction and page.
//
// It is "best effort": a missing or unreadable snapshot means the grid starts from defaults.
type ViewState struct {
	Version int               `json:"version"`
	Filters map[string]string `json:"filters"`
	// Sorting is one of: asc|desc|unsorted
	Sorting string `json:"sorting"`
	Page    int    `json:"page"`
}

func DefaultViewState() *ViewState {
	return &ViewState{Version: 1, Filters: map[string]string{}, Sorting: SortUnsorted, Page: 1}
}

func ViewStateKey(dataKey string) string {
	return viewStateKeyPrefix + strings.TrimSpace(dataKey)
}

func (v *ViewState) normalize() {
	if v.Version == 0 {
		v.Version = 1
	}
	if v.Filters == nil {
		v.Filters = map[string]string{}
	}
	switch v.Sorting {
	case SortAsc, SortDesc, SortUnsorted:
	default:
		v.Sorting = SortUnsorted
	}
	if v.Page < 1 {
		v.Page = 1
	}
}

// LoadViewState returns the saved snapshot for dataKey. ok is false when none exists or the
// stored value cannot be decoded.
func (s *Store) LoadViewState(ctx context.Context, dataKey string) (*ViewState, bool, error) {
	raw, ok, err := s.KV.Get(ctx, ViewStateKey(dataKey))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	var st ViewState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		s.log.Warn("view state is corrupt; ignoring", zap.String("dataKey", dataKey), zap.Error(err))
		return nil, false, nil
	}
	st.normalize()
	return &st, true, nil
}

func (s *Store) SaveViewState(ctx context.Context, dataKey string, st *ViewState) error {
	if st == nil {
		return nil
	}
	cp := *st
	cp.Filters = make(map[string]string, len(st.Filters))
	for k, v := range st.Filters {
		cp.Filters[k] = v
	}
	cp.normalize()
	b, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return s.KV.Set(ctx, ViewStateKey(dataKey), string(b))
}

func (s *Store) ClearViewState(ctx context.Context, dataKey string) error {
	return s.KV.Delete(ctx, ViewStateKey(dataKey))
}
