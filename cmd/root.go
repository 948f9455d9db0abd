package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/partman-wizard/partman-wizard/internal/config"
	"github.com/partman-wizard/partman-wizard/internal/lock"
	"github.com/partman-wizard/partman-wizard/internal/logging"
	"github.com/partman-wizard/partman-wizard/internal/postgres"
	"github.com/partman-wizard/partman-wizard/internal/wizard"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "partman-wizard",
	Short: "partman-wizard - convert a PostgreSQL table into a pg_partman partitioned table",
	Long: `partman-wizard walks you through converting an existing PostgreSQL table
into a range-partitioned table managed by the pg_partman extension.

It connects, enables pg_partman if needed, asks for the table, the partition
column, the interval and the new table name, then creates the partitioned
table and optionally copies the data across.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := run(cmd.Context())
		if err != nil {
			return err
		}
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func Execute() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("partman-wizard %s (commit %s, built %s)\n", version, commit, date))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// run performs one wizard session and returns the process exit code.
func run(ctx context.Context) (code int, err error) {
	cfg, err := config.Load(config.DefaultDotenvPath)
	if err != nil {
		return 1, err
	}

	logger, logFile, err := logging.Setup(cfg.Logging.Level, cfg.Logging.Directory)
	if err != nil {
		return 1, err
	}
	defer func() { err = multierr.Append(err, logFile.Close()) }()

	if err := lock.Acquire(cfg.LockPath); err != nil {
		return 1, err
	}
	defer func() { err = multierr.Append(err, lock.Release(cfg.LockPath)) }()

	opts := postgres.Options{Schema: cfg.Schema, PartmanSchema: cfg.PartmanSchema}
	w := wizard.New(wizard.Config{
		Prompter: wizard.NewTerminalPrompter(nil, nil),
		Connect: func(ctx context.Context, connString string) (wizard.Database, error) {
			catalog, err := postgres.Connect(ctx, connString, opts)
			if err != nil {
				return nil, err
			}
			return catalog, nil
		},
		TrialConnect:      postgres.TrialConnect,
		ResolveSecret:     config.ResolveValue,
		DefaultConnString: cfg.DatabaseURL,
		PartmanSchema:     cfg.PartmanSchema,
		StatePath:         cfg.StatePath,
		Logger:            logger,
	})

	defer func() {
		if db := w.Database(); db != nil {
			// ctx may already be cancelled by an interrupt.
			err = multierr.Append(err, db.Close(context.WithoutCancel(ctx)))
		}
	}()

	logger.Info("starting wizard", "version", version, "schema", cfg.Schema)
	outcome, runErr := w.Run(ctx)
	if runErr != nil {
		if errors.Is(runErr, wizard.ErrCancelled) {
			logger.Info("wizard cancelled")
			return 1, nil
		}
		logger.Error("wizard failed", "error", runErr)
		return 1, runErr
	}

	return outcome.ExitCode(), nil
}
