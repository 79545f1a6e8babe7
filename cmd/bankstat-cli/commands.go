package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"bankstat/internal/cli"
	"bankstat/internal/config"
	"bankstat/internal/log"
	"bankstat/internal/report"
	"bankstat/internal/services"
	"bankstat/internal/statement/file"
	"bankstat/internal/storage"

	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags. Empty values keep the environment
// configuration.
type rootOptions struct {
	backend    string
	statement  string
	db         string
	reportsDir string
	logLevel   string
	demo       bool
}

// outputOptions control where a report goes.
type outputOptions struct {
	save bool
	out  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "bankstat-cli",
		Short: "Summarize bank statement operations",
		Long: `bankstat reads a bank statement export and prints JSON reports:
per-card spend and cashback, category breakdowns over rolling windows,
monthly cashback and per-category spending.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cli.LoadEnvFile()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.backend, "backend", "", "statement source: file, sqlite, sheets or memory")
	pf.StringVar(&opts.statement, "statement", "", "path of the .xlsx or .csv statement")
	pf.StringVar(&opts.db, "db", "", "path of the SQLite database")
	pf.StringVar(&opts.reportsDir, "reports-dir", "", "directory for saved reports")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.demo, "demo", false, "use a built-in sample statement")

	root.AddCommand(
		newDashboardCmd(opts),
		newEventsCmd(opts),
		newCashbackCmd(opts),
		newSpendingCmd(opts),
		newImportCmd(opts),
		newRequestCmd(opts),
	)
	return root
}

// config applies the flag overrides to the environment configuration. Logs go
// to stderr so that stdout carries only the report.
func (o *rootOptions) config(stderr io.Writer) (*config.Config, *log.Logger, error) {
	cfg := config.Load()
	if o.backend != "" {
		cfg.DataBackend = o.backend
	}
	if o.statement != "" {
		cfg.StatementPath = o.statement
	}
	if o.db != "" {
		cfg.SQLiteDBPath = o.db
	}
	if o.reportsDir != "" {
		cfg.ReportsDir = o.reportsDir
	}
	level := slog.LevelWarn
	if o.logLevel != "" {
		if err := level.UnmarshalText([]byte(o.logLevel)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q", o.logLevel)
		}
	}
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentCLI,
		Handler:   slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	})
	log.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (o *rootOptions) bootstrap(cmd *cobra.Command, publish bool) (*cli.App, error) {
	cfg, logger, err := o.config(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	bo := cli.Options{Publish: publish}
	if o.demo {
		bo.Seed = demoStatement()
	}
	return cli.Bootstrap(cmd.Context(), cfg, logger, bo)
}

func addOutputFlags(cmd *cobra.Command, out *outputOptions) {
	cmd.Flags().BoolVar(&out.save, "save", false, "save the report as JSON under the reports directory")
	cmd.Flags().StringVar(&out.out, "out", "", "file name for the saved report (implies --save)")
}

// runReport builds the named report and either prints it or saves it.
func runReport(cmd *cobra.Command, opts *rootOptions, out *outputOptions, name string, p services.Params) error {
	ctx := cmd.Context()
	app, err := opts.bootstrap(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	if out.save || out.out != "" {
		res, err := app.Reports.BuildAndSave(ctx, name, p, out.out)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s report to %s\n", name, res.Path)
		return nil
	}

	res, err := app.Reports.Build(ctx, name, p)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res.Payload)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	var (
		out outputOptions
		at  string
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Greeting, card totals, latest operations and market data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, &out, report.NameDashboard, services.Params{Anchor: at})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", `anchor "YYYY-MM-DD HH:MM:SS" (default now)`)
	addOutputFlags(cmd, &out)
	return cmd
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var (
		out    outputOptions
		at     string
		window string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Expense and income breakdown over a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, &out, report.NameEvents, services.Params{Anchor: at, Window: window})
		},
	}
	cmd.Flags().StringVar(&at, "date", "", `anchor "YYYY-MM-DD HH:MM:SS" (default now)`)
	cmd.Flags().StringVar(&window, "range", "M", "window: W, M, Y or ALL")
	addOutputFlags(cmd, &out)
	return cmd
}

func newCashbackCmd(opts *rootOptions) *cobra.Command {
	var (
		out         outputOptions
		year, month int
	)
	cmd := &cobra.Command{
		Use:   "cashback",
		Short: "Cashback per category for one month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, &out, report.NameCashback, services.Params{Year: year, Month: month})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "year (default current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default current)")
	addOutputFlags(cmd, &out)
	return cmd
}

func newSpendingCmd(opts *rootOptions) *cobra.Command {
	var (
		out      outputOptions
		category string
		date     string
	)
	cmd := &cobra.Command{
		Use:   "spending",
		Short: "Operations of one category in the three months up to a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, &out, report.NameSpending, services.Params{Category: category, Date: date})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category name (required)")
	cmd.Flags().StringVar(&date, "date", "", "end date dd.mm.yyyy (default today)")
	_ = cmd.MarkFlagRequired("category")
	addOutputFlags(cmd, &out)
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <statement.xlsx|statement.csv>",
		Short: "Stage a statement file in the SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, logger, err := opts.config(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			txs, err := file.New(args[0]).Load(ctx)
			if err != nil {
				return err
			}

			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := repo.Import(ctx, txs)
			if err != nil {
				return err
			}
			logger.Info("Statement imported", log.FieldOperation, log.OpImport, log.FieldRecords, n)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d operations into %s\n", n, cfg.SQLiteDBPath)
			return nil
		},
	}
}

func newRequestCmd(opts *rootOptions) *cobra.Command {
	var (
		p        services.Params
		filename string
	)
	cmd := &cobra.Command{
		Use:       "request <dashboard|events|cashback|spending>",
		Short:     "Queue a report for the worker",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{report.NameDashboard, report.NameEvents, report.NameCashback, report.NameSpending},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := opts.bootstrap(cmd, true)
			if err != nil {
				return err
			}
			defer app.Close()

			id, err := app.Reports.RequestReport(ctx, args[0], p, filename)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "queued %s report %s\n", args[0], id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Anchor, "at", "", "anchor for dashboard and events")
	f.StringVar(&p.Window, "range", "", "window for events")
	f.StringVar(&p.Date, "date", "", "end date for spending")
	f.StringVar(&p.Category, "category", "", "category for spending")
	f.IntVar(&p.Year, "year", 0, "year for cashback")
	f.IntVar(&p.Month, "month", 0, "month for cashback")
	f.StringVar(&filename, "out", "", "file name the worker saves to")
	return cmd
}
