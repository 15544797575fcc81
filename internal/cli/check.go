package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Parumezan/toxidoc/internal/config"
	"github.com/Parumezan/toxidoc/internal/coverage"
	"github.com/Parumezan/toxidoc/internal/watcher"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	formatFlag           string
	onlyUndocumentedFlag bool
	detailsFlag          bool
	noSaveFlag           bool
	quietFlag            bool
	watchFlag            bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report documentation coverage and update the snapshot",
	Long: `Check collects the header files under the given paths (or the configured
source paths), extracts their documentable entities and compares them with the
snapshot saved by the previous run.

Every entity is listed with its state (Unchanged, Modified, Added or Removed)
and whether it is documented. The command exits with status 1 while anything is
undocumented, or while coverage is below --min-coverage when that is set.

Settings are resolved from, highest first: flags, TOXIDOC_* environment
variables, the settings saved in the snapshot, .toxidoc.yaml, built-in defaults.

Examples:
  # Check the current directory
  toxidoc check

  # Check two include trees and print JSON
  toxidoc check include src --format json

  # Re-check whenever a header changes
  toxidoc check --watch
`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addSettingFlags(checkCmd.Flags())
	checkCmd.Flags().StringVar(&formatFlag, "format", "text", "report format: text or json")
	checkCmd.Flags().BoolVar(&onlyUndocumentedFlag, "only-undocumented", false, "list only undocumented entities")
	checkCmd.Flags().BoolVar(&detailsFlag, "details", false, "describe every undocumented entity in full (text format)")
	checkCmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "do not update the snapshot")
	checkCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress and informational logs")
	checkCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-check whenever a header changes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(quietFlag)

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	p := newPipeline(cfg, logger, NewCLIProgressReporter(cmd.ErrOrStderr(), logger, quietFlag || formatFlag == "json"), out)
	opts := checkOptions{
		format:           formatFlag,
		onlyUndocumented: onlyUndocumentedFlag,
		details:          detailsFlag,
		noSave:           noSaveFlag,
		styles:           coverage.StylesFor(out),
	}

	outcome, err := p.check(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("check cancelled")
		}
		return err
	}

	if watchFlag {
		return watchAndCheck(ctx, p, opts, cfg, logger)
	}

	if outcome.exitCode != 0 {
		return &ExitError{Code: outcome.exitCode}
	}
	return nil
}

// watchAndCheck re-runs the check after every debounced batch of header changes
// until the context is cancelled.
func watchAndCheck(ctx context.Context, p *pipeline, opts checkOptions, cfg *config.Config, logger *logrus.Logger) error {
	discovery, err := p.discovery()
	if err != nil {
		return err
	}

	fw, err := watcher.NewFileWatcher(watcher.Options{
		Roots:     cfg.SourcePaths,
		Matcher:   discovery,
		Recursive: cfg.Recursive,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watch mode: %w", err)
	}
	defer fw.Stop()

	// The callback runs on the watch loop, so events arriving during a check
	// are buffered and batched into the next one.
	err = fw.Start(ctx, func(files []string) {
		logger.WithField("files", len(files)).Info("headers changed, checking again")
		if _, err := p.check(ctx, opts); err != nil && ctx.Err() == nil {
			logger.WithField("error", err).Error("check failed")
		}
	})
	if err != nil {
		return err
	}

	logger.Info("watching for header changes (Ctrl+C to stop)")
	<-ctx.Done()
	logger.Info("watch mode stopped")
	return nil
}
