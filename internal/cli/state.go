package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"leadconsole/internal/store"
)

func parseGridKey(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case leadsDataKey, "lead":
		return leadsDataKey, nil
	case opportunitiesDataKey, "opportunity", "opps":
		return opportunitiesDataKey, nil
	default:
		return "", fmt.Errorf("unknown grid: %q (expected leads|opportunities)", s)
	}
}

func newStateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset a grid's saved view (filters, sort, page)",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <leads|opportunities>",
		Short: "Show the saved view state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseGridKey(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			vs, ok, err := st.LoadViewState(cmd.Context(), key)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				vs = store.DefaultViewState()
			}
			return writeOut(cmd, app, map[string]any{
				"data": vs,
				"meta": map[string]any{"key": store.ViewStateKey(key), "saved": ok},
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear <leads|opportunities>",
		Short: "Forget the saved view state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseGridKey(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.ClearViewState(cmd.Context(), key); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": store.ViewStateKey(key), "cleared": true}})
		},
	})
	return cmd
}

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Manage the stored records",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the seed leads and opportunities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := st.ResetData(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			leads, err := st.Leads().Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			opps, err := st.Opportunities().Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"leads":         len(leads),
				"opportunities": len(opps),
			}})
		},
	})
	return cmd
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings and the files they came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{
				"data": app.cfg,
				"meta": map[string]any{
					"global":  app.sources.Global,
					"project": app.sources.Project,
					"dotenv":  app.sources.DotEnv,
				},
			})
		},
	})
	return cmd
}
