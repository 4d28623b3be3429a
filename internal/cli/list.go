package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"leadconsole/internal/gateway"
	"leadconsole/internal/query"
	"leadconsole/internal/statusutil"
)

// listFlags are the query options shared by the list commands.
type listFlags struct {
	sort    string
	page    int
	limit   int
	all     bool
	latency time.Duration
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort direction (asc|desc)")
	cmd.Flags().IntVar(&f.page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Page size (default: per-page setting from config)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Return every match (no pagination)")
	cmd.Flags().DurationVar(&f.latency, "latency", 0, "Simulated round-trip delay")
}

func (f *listFlags) options(filters map[string]string, sortField string, defaultLimit int) (query.Options, error) {
	opts := query.Options{Filters: map[string]string{}}
	for k, v := range filters {
		if strings.TrimSpace(v) != "" {
			opts.Filters[k] = v
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.sort)) {
	case "":
	case string(query.Asc):
		opts.Sorting = map[string]query.Direction{sortField: query.Asc}
	case string(query.Desc):
		opts.Sorting = map[string]query.Direction{sortField: query.Desc}
	default:
		return query.Options{}, fmt.Errorf("invalid --sort: %q (expected asc|desc)", f.sort)
	}
	if f.all {
		return opts, nil
	}
	limit := f.limit
	if limit == 0 {
		limit = defaultLimit
	}
	opts.Pagination = &query.Pagination{Page: f.page, Limit: limit}
	return opts, nil
}

func (f *listFlags) gatewayLatency() gateway.Latency {
	return gateway.Fixed(f.latency)
}

// statusFilter maps a --status value to a filter; "all" (or empty) means no filter.
func statusFilter(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, statusutil.AllStatuses) {
		return "", nil
	}
	st, err := statusutil.NormalizeLeadStatus(v)
	if err != nil {
		return "", err
	}
	return string(st), nil
}

func stageFilter(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, statusutil.AllStatuses) {
		return "", nil
	}
	st, err := statusutil.ParseStage(v)
	if err != nil {
		return "", err
	}
	return string(st), nil
}

var errNothingToUpdate = errors.New("nothing to update: pass at least one field flag")
