package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"DataPipeline/internal/app"
	"DataPipeline/internal/config"
	"DataPipeline/internal/domain"
	"DataPipeline/internal/logging"
)

// errValidationFailed marks a completed validation with a FAIL verdict.
var errValidationFailed = errors.New("validation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(execute(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	schemaPath string
	logLevel   string
}

// session holds what every subcommand needs once flags are parsed.
type session struct {
	app    *app.Application
	logger *slog.Logger
	close  func() error
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var (
		opts options
		sess session
	)

	root := &cobra.Command{
		Use:           "datapipeline",
		Short:         "Validate a tabular dataset and derive engineered features from it",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd.Context(), opts)
			if err != nil {
				return err
			}
			sess = s
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return sess.shutdown()
		},
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (env DATAPIPELINE_CONFIG)")
	root.PersistentFlags().StringVar(&opts.schemaPath, "schema", "", "path to schema.yaml (env DATAPIPELINE_SCHEMA)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "error|warn|info|debug, overrides config")

	root.AddCommand(
		&cobra.Command{
			Use:   "ingest",
			Short: "Download the raw dataset files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				files, err := sess.app.Ingest(cmd.Context())
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Run file, column, quality and range checks and write the status report",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				outcome, err := sess.app.Validate(cmd.Context())
				if outcome.Report != nil {
					if perr := printReport(cmd.OutOrStdout(), outcome); perr != nil {
						return errors.Join(err, perr)
					}
				}
				if err != nil {
					return err
				}
				if !outcome.Passed {
					return fmt.Errorf("%w: %w", errValidationFailed, outcome.Report.Err())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "transform",
			Short: "Encode, score and prune the dataset and write the artifacts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				result, err := sess.app.Transform(cmd.Context())
				if err != nil {
					return err
				}
				return printTransform(cmd.OutOrStdout(), result)
			},
		},
		&cobra.Command{
			Use:   "run",
			Short: "Ingest, validate and transform; transformation only runs after a passing validation",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				summary, err := sess.app.Run(cmd.Context())
				if summary.Validation.Report != nil {
					if perr := printReport(cmd.OutOrStdout(), summary.Validation); perr != nil {
						return errors.Join(err, perr)
					}
				}
				if err != nil {
					return err
				}
				return printTransform(cmd.OutOrStdout(), summary.Transform)
			},
		},
		&cobra.Command{
			Use:   "lookups RUN_ID COLUMN...",
			Short: "Print the encoder lookups stored for a run",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				tables, err := sess.app.Lookups(cmd.Context(), args[0], args[1:])
				if err != nil {
					return err
				}
				return printLookups(cmd.OutOrStdout(), tables)
			},
		},
		&cobra.Command{
			Use:   "schedule",
			Short: "Re-run the full pipeline at the configured interval until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return sess.app.Schedule(cmd.Context())
			},
		},
	)

	if err := root.ExecuteContext(ctx); err != nil {
		if sess.logger != nil {
			sess.logger.Error("command failed", "error", err, "kind", domain.Classify(err))
		}
		_ = sess.shutdown()
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func open(ctx context.Context, opts options) (session, error) {
	cfg, err := config.Load(config.Path(opts.configPath))
	if err != nil {
		return session{}, err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	logger, closeLog, err := logging.Open(cfg.Logging.Level, cfg.Logging.Dir, time.Now())
	if err != nil {
		return session{}, err
	}

	schema, err := config.LoadSchema(config.SchemaPath(opts.schemaPath))
	if err != nil {
		_ = closeLog()
		return session{}, err
	}

	application, err := app.New(ctx, cfg, schema, logger)
	if err != nil {
		_ = closeLog()
		return session{}, err
	}

	return session{
		app:    application,
		logger: logger,
		close: func() error {
			return errors.Join(application.Close(), closeLog())
		},
	}, nil
}

func (s *session) shutdown() error {
	if s.close == nil {
		return nil
	}
	closeFn := s.close
	s.close = nil
	return closeFn()
}
