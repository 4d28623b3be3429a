package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leadconsole/internal/config"
	"leadconsole/internal/format"
	"leadconsole/internal/gateway"
	"leadconsole/internal/logging"
	"leadconsole/internal/store"
	"leadconsole/internal/tui"
)

type App struct {
	Dir        string
	Backend    string
	RedisURL   string
	ConfigPath string
	PrettyJSON bool
	Format     string
	Debug      bool

	// Env and WorkDir feed config resolution; they default to the process environment
	// and working directory.
	Env     []string
	WorkDir string

	cfg      config.Config
	sources  config.Sources
	log      *zap.Logger
	closeLog func() error
	st       *store.Store
}

// Execute runs the command line in args. The store and log file are released even when the
// command fails (cobra skips PersistentPostRunE on error).
func Execute(ctx context.Context, args []string) error {
	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if cerr := app.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "leadconsole",
		Short:        "Lead triage console (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  leadconsole

  # Scriptable commands
  leadconsole leads list --status qualified --sort desc
  leadconsole leads convert 7

  # Direct lookup (shortcut for: leadconsole leads show 7)
  leadconsole 7
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive console.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app, tui.Options{})
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", "", "Data directory (default: data_dir from config, else ~/.leadconsole)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Storage backend (sqlite|file|memory|redis)")
	cmd.PersistentFlags().StringVar(&app.RedisURL, "redis-url", "", "Redis URL for the redis backend")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("LEADCONSOLE_CONFIG", ""), "Config file (JSONC); replaces the project .leadconsole.json")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("LEADCONSOLE_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Debug-level logging (needs a log file)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newLeadsCmd(app))
	cmd.AddCommand(newOpportunitiesCmd(app))
	cmd.AddCommand(newStateCmd(app))
	cmd.AddCommand(newDataCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// init resolves configuration and the logger. The store is opened lazily.
func (app *App) init(cmd *cobra.Command) error {
	if _, err := format.Parse(app.Format); err != nil {
		return writeErr(cmd, err)
	}
	env := app.Env
	if env == nil {
		env = os.Environ()
	}
	workDir := app.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return writeErr(cmd, err)
		}
		workDir = wd
	}
	cfg, sources, err := config.Load(config.LoadOptions{WorkDir: workDir, ConfigPath: app.ConfigPath, Env: env})
	if err != nil {
		return writeErr(cmd, err)
	}
	if v := strings.TrimSpace(app.Dir); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(app.Backend); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(app.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg
	app.sources = sources

	log, closeLog, err := logging.New(logging.Options{Path: cfg.LogFile, Debug: app.Debug})
	if err != nil {
		return writeErr(cmd, fmt.Errorf("open log file: %w", err))
	}
	app.log = log
	app.closeLog = closeLog
	return nil
}

func (app *App) close() error {
	var firstErr error
	if app.st != nil {
		if err := app.st.Close(); err != nil {
			firstErr = err
		}
		app.st = nil
	}
	if app.closeLog != nil {
		if err := app.closeLog(); err != nil && firstErr == nil {
			firstErr = err
		}
		app.closeLog = nil
	}
	return firstErr
}

func (app *App) logger() *zap.Logger {
	if app.log == nil {
		return zap.NewNop()
	}
	return app.log
}

func (app *App) openStore(ctx context.Context) (*store.Store, error) {
	if app.st != nil {
		return app.st, nil
	}
	backend, err := store.ParseBackend(app.cfg.Backend)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, store.Options{
		Backend:  backend,
		Dir:      app.cfg.DataDir,
		RedisURL: app.cfg.RedisURL,
		Logger:   app.logger(),
	})
	if err != nil {
		return nil, err
	}
	app.st = st
	return st, nil
}

func newTUICmd(app *App) *cobra.Command {
	var status, stage string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tui.Options{}
			if f, err := statusFilter(status); err != nil {
				return writeErr(cmd, err)
			} else if f != "" {
				opts.LeadRootFilter = map[string]string{"status": f}
			}
			if f, err := stageFilter(stage); err != nil {
				return writeErr(cmd, err)
			} else if f != "" {
				opts.OpportunityRootFilter = map[string]string{"stage": f}
			}
			return runTUI(cmd, app, opts)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Always filter leads by this status")
	cmd.Flags().StringVar(&stage, "stage", "", "Always filter opportunities by this stage")
	return cmd
}

func runTUI(cmd *cobra.Command, app *App, opts tui.Options) error {
	st, err := app.openStore(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	lo, hi := app.cfg.Latency()
	opts.Store = st
	opts.Latency = gateway.Jitter{Min: lo, Max: hi}
	opts.Debounce = app.cfg.Debounce()
	opts.LeadsPerPage = app.cfg.LeadsPerPage
	opts.OpportunitiesPerPage = app.cfg.OpportunitiesPerPage
	opts.Logger = app.logger()
	return tui.Run(cmd.Context(), opts)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
