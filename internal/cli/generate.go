package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Parumezan/toxidoc/internal/docgen"
	"github.com/spf13/cobra"
)

var dryRunFlag bool

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Insert doc-comment skeletons above undocumented entities",
	Long: `Generate writes a skeleton comment above every entity that has neither a brief
nor any doc comment:

  /**
   * @brief
   *
   * @arg name
   *
   * @return type
   */

Classes also get an @class line. The block is indented to the entity's column.
Fill in the briefs, then run 'toxidoc check' again.

Examples:
  # Show what would be inserted
  toxidoc generate --dry-run

  # Insert skeletons into the headers under include/
  toxidoc generate include
`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	addSettingFlags(generateCmd.Flags())
	generateCmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "n", false, "print the insertions without writing files")
	generateCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "disable progress and informational logs")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(quietFlag)

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	p := newPipeline(cfg, logger, NewCLIProgressReporter(cmd.ErrOrStderr(), logger, quietFlag || dryRunFlag), cmd.OutOrStdout())
	result, err := p.generate(ctx, dryRunFlag)
	if err != nil {
		return err
	}

	verb := "Inserted"
	if dryRunFlag {
		verb = "Would insert"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s skeletons in %d files\n", verb, formatNumber(result.Insertions), result.Files)
	return nil
}

// generate extracts the current entities and writes skeletons for the undocumented ones.
func (p *pipeline) generate(ctx context.Context, dryRun bool) (*docgen.Result, error) {
	result, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	gen := &docgen.Generator{DryRun: dryRun, Out: p.out, Logger: p.logger}
	return gen.Apply(ctx, docgen.Plan(result.Entities))
}
