package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Parumezan/toxidoc/internal/snapshot"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var forceInitFlag bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [paths...]",
	Short: "Write a baseline snapshot for the project",
	Long: `Init extracts the current entities and writes them, with the resolved settings,
as the first snapshot. Later checks report changes relative to this baseline.

An existing snapshot is left alone unless --force is given.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	addSettingFlags(initCmd.Flags())
	initCmd.Flags().BoolVarP(&forceInitFlag, "force", "f", false, "overwrite an existing snapshot")
	initCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress and informational logs")
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(quietFlag)

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	p := newPipeline(cfg, logger, NewCLIProgressReporter(cmd.ErrOrStderr(), logger, quietFlag), cmd.OutOrStdout())
	entities, err := p.baseline(ctx, forceInitFlag)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s with %s entities\n", cfg.Snapshot, formatNumber(entities))
	return nil
}

// baseline writes the current entities as a fresh snapshot and returns how many were saved.
func (p *pipeline) baseline(ctx context.Context, force bool) (int, error) {
	store, err := snapshot.NewStore(p.cfg.Snapshot, p.logger)
	if err != nil {
		return 0, err
	}
	if store.Exists() && !force {
		return 0, fmt.Errorf("snapshot %s already exists (use --force to overwrite)", store.Path())
	}

	result, err := p.extract(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range result.Failures {
		p.logger.WithFields(logrus.Fields{
			"file":  f.Path,
			"error": f.Err,
		}).Warn("skipped file")
	}

	if err := store.Save(p.snapshotOf(result.Entities), p.now()); err != nil {
		return 0, err
	}
	return len(result.Entities), nil
}
