package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"leadconsole/internal/gateway"
	"leadconsole/internal/model"
	"leadconsole/internal/mutate"
	"leadconsole/internal/query"
	"leadconsole/internal/statusutil"
)

const leadsDataKey = "leads"

func newLeadsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leads",
		Aliases: []string{"lead"},
		Short:   "Query and edit leads",
	}
	cmd.AddCommand(newLeadsListCmd(app))
	cmd.AddCommand(newLeadsShowCmd(app))
	cmd.AddCommand(newLeadsCreateCmd(app))
	cmd.AddCommand(newLeadsUpdateCmd(app))
	cmd.AddCommand(newLeadsConvertCmd(app))
	cmd.AddCommand(newLeadsDeleteCmd(app))
	return cmd
}

func parseLeadID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid lead id: %q", s)
	}
	return id, nil
}

func newLeadsListCmd(app *App) *cobra.Command {
	var (
		name, company, email, status string
		lf                           listFlags
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads (filters are case-insensitive patterns; --status is exact)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			sf, err := statusFilter(status)
			if err != nil {
				return writeErr(cmd, err)
			}
			opts, err := lf.options(map[string]string{
				"name":    name,
				"company": company,
				"email":   email,
				"status":  sf,
			}, "score", app.cfg.LeadsPerPage)
			if err != nil {
				return writeErr(cmd, err)
			}

			gw := gateway.New(leadsDataKey, st.Leads(), query.LeadSchema, lf.gatewayLatency())
			gw.Log = app.logger()
			res, err := gw.Query(cmd.Context(), opts)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, gateway.NewResponse(leadsDataKey, res))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Filter by name")
	cmd.Flags().StringVar(&company, "company", "", "Filter by company")
	cmd.Flags().StringVar(&email, "email", "", "Filter by email")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (new|contacted|qualified|converted|disqualified|all)")
	lf.register(cmd)
	return cmd
}

func newLeadsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show <lead-id>",
		Short:   "Show a lead",
		Aliases: []string{"get"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeadID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			l, ok, err := st.Leads().Find(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "lead", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": l})
		},
	}
}

func newLeadsCreateCmd(app *App) *cobra.Command {
	var (
		l      model.Lead
		status string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a lead",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				s, err := statusOption(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				l.Status = s
			}
			if l.Email != "" {
				if err := mutate.ValidateEmail(l.Email); err != nil {
					return writeErr(cmd, err)
				}
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			created, err := st.Leads().Create(cmd.Context(), l)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}
	cmd.Flags().StringVar(&l.Name, "name", "", "Name (required)")
	cmd.Flags().StringVar(&l.Company, "company", "", "Company")
	cmd.Flags().StringVar(&l.Email, "email", "", "Email")
	cmd.Flags().StringVar(&l.Source, "source", "", "Lead source")
	cmd.Flags().IntVar(&l.Score, "score", 0, "Score")
	cmd.Flags().StringVar(&status, "status", "", "Status (default: new)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// statusOption parses a status a command may set directly. Conversion has its own command.
func statusOption(v string) (model.LeadStatus, error) {
	st, err := statusutil.NormalizeLeadStatus(v)
	if err != nil {
		return "", err
	}
	if st == model.LeadStatusConverted {
		return "", errors.New("use `leadconsole leads convert <id>` to convert a lead")
	}
	return st, nil
}

func newLeadsUpdateCmd(app *App) *cobra.Command {
	var (
		name, company, email, source, status string
		score                                int
	)
	cmd := &cobra.Command{
		Use:   "update <lead-id>",
		Short: "Update lead fields (only the flags you pass change)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeadID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			var p model.LeadPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				p.Name = &name
			}
			if flags.Changed("company") {
				p.Company = &company
			}
			if flags.Changed("email") {
				if err := mutate.ValidateEmail(email); err != nil {
					return writeErr(cmd, err)
				}
				v := strings.TrimSpace(email)
				p.Email = &v
			}
			if flags.Changed("source") {
				p.Source = &source
			}
			if flags.Changed("score") {
				p.Score = &score
			}
			if flags.Changed("status") {
				s, err := statusOption(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				p.Status = &s
			}
			if p.IsEmpty() {
				return writeErr(cmd, errNothingToUpdate)
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if p.Status != nil {
				cur, ok, err := st.Leads().Find(cmd.Context(), id)
				if err != nil {
					return writeErr(cmd, err)
				}
				if ok && cur.Status == model.LeadStatusConverted && *p.Status != cur.Status {
					return writeErr(cmd, mutate.ValidationError{Field: "status", Message: "a converted lead's status cannot change"})
				}
			}
			l, ok, err := st.Leads().Update(cmd.Context(), id, p)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "lead", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": l})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&company, "company", "", "Company")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().StringVar(&source, "source", "", "Lead source")
	cmd.Flags().IntVar(&score, "score", 0, "Score")
	cmd.Flags().StringVar(&status, "status", "", "Status (new|contacted|qualified|disqualified)")
	return cmd
}

func newLeadsConvertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <lead-id>",
		Short: "Convert a lead into an opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeadID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := mutate.ConvertLead(cmd.Context(), st, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"lead":        res.Lead,
				"opportunity": res.Opportunity,
			}})
		},
	}
}

func newLeadsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <lead-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a lead",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseLeadID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			ok, err := st.Leads().Remove(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "lead", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "deleted": true}})
		},
	}
}
