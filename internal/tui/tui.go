// Package tui is the interactive lead console: a leads grid and an opportunities grid over
// the simulated query gateway, with inline editing and lead conversion.
package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"leadconsole/internal/gateway"
	"leadconsole/internal/grid"
	"leadconsole/internal/store"
)

type Options struct {
	Store *store.Store
	// Latency defaults to gateway.DefaultLatency.
	Latency              gateway.Latency
	Debounce             time.Duration
	LeadsPerPage         int
	OpportunitiesPerPage int
	// Root filters always apply; a user filter on the same field replaces them.
	LeadRootFilter        map[string]string
	OpportunityRootFilter map[string]string
	Logger                *zap.Logger
	// Tick replaces tea.Tick (tests).
	Tick grid.TickFunc
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference(os.Getenv)
	applyColorProfilePreference(os.Getenv)

	m := newAppModel(opts)
	m.ctx = ctx
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
