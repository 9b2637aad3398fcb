package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/boxscore-sync/internal/config"
	"github.com/pfrederiksen/boxscore-sync/internal/logger"
	"github.com/pfrederiksen/boxscore-sync/internal/pipeline"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// runner is the part of *pipeline.Pipeline the command drives.
type runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
	Metrics() logger.Snapshot
}

// newRunner is swapped out in tests.
var newRunner = func(ctx context.Context, cfg config.Config) (runner, error) {
	return pipeline.New(ctx, cfg)
}

type options struct {
	urls     []string
	dryRun   bool
	format   string
	verbose  bool
	logLevel string
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "boxscore-sync",
		Short: "Sync NCAA baseball box scores with player IDs into a Google Sheet",
		Long: `Scrapes batting box scores from stats.ncaa.org game pages, attaches
player IDs from the TruMedia lookup API, and replaces the contents of the
first sheet of a Google spreadsheet with the merged table.

Configuration is read from the environment (TRUMEDIA_MASTER_TOKEN,
GOOGLE_CREDS_PATH, GOOGLE_SHEET_ID, GAME_URLS, ...). Flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.urls, "url", nil, "Game box score URL (repeatable, overrides GAME_URLS)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Scrape and merge but do not write to the spreadsheet")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging and print the merged table")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")

	return cmd
}

// runSync is the main command logic
func runSync(cmd *cobra.Command, opts *options) error {
	format := OutputFormat(strings.ToLower(opts.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", opts.format)
	}

	logLevel := opts.logLevel
	if opts.verbose && logLevel == "" {
		logLevel = string(logger.LevelDebug)
	}

	cfg, err := config.Load(config.Overrides{
		GameURLs: opts.urls,
		LogLevel: logLevel,
		DryRun:   opts.dryRun,
	})
	if err != nil {
		return err
	}

	logger.SetDefault(logger.New(cfg.LogLevel, cmd.ErrOrStderr()))
	defer logger.Default().Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Debug("Starting sync", logger.Fields{
		"games":   len(cfg.GameURLs),
		"dry_run": cfg.DryRun,
	})

	p, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx)
	if err != nil {
		logger.Error("Sync failed", nil, err)
		return err
	}

	fields := p.Metrics().Fields()
	fields["rows_written"] = result.Summary.RowsWritten
	fields["dry_run"] = result.Summary.DryRun
	logger.Info("Sync complete", fields)

	// the merged table always prints on a dry run since nothing else shows it
	showTable := opts.verbose || cfg.DryRun
	if err := WriteOutput(cmd.OutOrStdout(), result, format, showTable); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
