package cli

import (
	"github.com/spf13/cobra"

	"leadconsole/internal/gateway"
	"leadconsole/internal/model"
	"leadconsole/internal/mutate"
	"leadconsole/internal/query"
	"leadconsole/internal/statusutil"
)

const opportunitiesDataKey = "opportunities"

func newOpportunitiesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "opportunities",
		Aliases: []string{"opps", "opportunity"},
		Short:   "Query and edit opportunities",
	}
	cmd.AddCommand(newOpportunitiesListCmd(app))
	cmd.AddCommand(newOpportunitiesShowCmd(app))
	cmd.AddCommand(newOpportunitiesCreateCmd(app))
	cmd.AddCommand(newOpportunitiesUpdateCmd(app))
	cmd.AddCommand(newOpportunitiesDeleteCmd(app))
	return cmd
}

func newOpportunitiesListCmd(app *App) *cobra.Command {
	var (
		name, account, stage string
		lf                   listFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List opportunities (name/account are case-insensitive patterns; --stage is exact)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			sf, err := stageFilter(stage)
			if err != nil {
				return writeErr(cmd, err)
			}
			opts, err := lf.options(map[string]string{
				"name":        name,
				"accountName": account,
				"stage":       sf,
			}, "amount", app.cfg.OpportunitiesPerPage)
			if err != nil {
				return writeErr(cmd, err)
			}

			gw := gateway.New(opportunitiesDataKey, st.Opportunities(), query.OpportunitySchema, lf.gatewayLatency())
			gw.Log = app.logger()
			res, err := gw.Query(cmd.Context(), opts)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, gateway.NewResponse(opportunitiesDataKey, res))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Filter by name")
	cmd.Flags().StringVar(&account, "account", "", "Filter by account name")
	cmd.Flags().StringVar(&stage, "stage", "", "Filter by stage (e.g. \"Proposal Sent\" or proposal-sent; all = no filter)")
	lf.register(cmd)
	return cmd
}

func newOpportunitiesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show <opportunity-id>",
		Short:   "Show an opportunity",
		Aliases: []string{"get"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			o, ok, err := st.Opportunities().Find(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "opportunity", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": o})
		},
	}
}

func newOpportunitiesCreateCmd(app *App) *cobra.Command {
	var name, account, stage, amount string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an opportunity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o := model.Opportunity{Name: name, AccountName: account}
			if stage != "" {
				s, err := statusutil.ParseStage(stage)
				if err != nil {
					return writeErr(cmd, err)
				}
				o.Stage = s
			}
			a, err := parseAmountFlag(amount)
			if err != nil {
				return writeErr(cmd, err)
			}
			o.Amount = a

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			created, err := st.Opportunities().Create(cmd.Context(), o)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&account, "account", "", "Account name")
	cmd.Flags().StringVar(&stage, "stage", "", "Stage (default: Prospecting)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in dollars (empty = unknown)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// parseAmountFlag parses --amount; nil means unknown.
func parseAmountFlag(v string) (*float64, error) {
	a, err := mutate.ParseAmount(v)
	if err != nil {
		return nil, err
	}
	if a != nil && *a < 0 {
		return nil, mutate.ValidationError{Field: "amount", Message: "Amount cannot be negative."}
	}
	return a, nil
}

func newOpportunitiesUpdateCmd(app *App) *cobra.Command {
	var name, account, stage, amount string
	cmd := &cobra.Command{
		Use:   "update <opportunity-id>",
		Short: "Update opportunity fields (--amount n/a clears the amount)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p model.OpportunityPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("account") {
				p.AccountName = &account
			}
			if flags.Changed("stage") {
				s, err := statusutil.ParseStage(stage)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Stage = &s
			}
			if flags.Changed("amount") {
				a, err := parseAmountFlag(amount)
				if err != nil {
					return writeErr(cmd, err)
				}
				if a == nil {
					p.ClearAmount = true
				} else {
					p.Amount = a
				}
			}
			if p.IsEmpty() {
				return writeErr(cmd, errNothingToUpdate)
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			o, ok, err := st.Opportunities().Update(cmd.Context(), args[0], p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "opportunity", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": o})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&account, "account", "", "Account name")
	cmd.Flags().StringVar(&stage, "stage", "", "Stage")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in dollars (n/a or empty = unknown)")
	return cmd
}

func newOpportunitiesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <opportunity-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an opportunity",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			ok, err := st.Opportunities().Remove(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "opportunity", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "deleted": true}})
		},
	}
}
