package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Parumezan/toxidoc/internal/coverage"
	"github.com/Parumezan/toxidoc/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyRunID string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded coverage runs",
	Long: `History lists the runs recorded by 'toxidoc check', newest first.
Use --run to show the per-file coverage of a single run.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list (0 = all)")
	historyCmd.Flags().StringVar(&historyRunID, "run", "", "show the files of one run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}

	db, err := storage.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	reader := storage.NewRunReader(db)
	if historyRunID != "" {
		run, err := reader.GetRun(historyRunID)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s not found", historyRunID)
		}
		printRun(cmd.OutOrStdout(), run)
		return nil
	}

	runs, err := reader.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	printRuns(cmd.OutOrStdout(), runs)
	return nil
}

func printRuns(w io.Writer, runs []*storage.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet")
		return
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		result := "PASS"
		if !run.Passed {
			result = "FAIL"
		}
		rows = append(rows, []string{
			run.RunID,
			run.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d/%d (%.1f%%)", run.Documented, run.Total, run.Percent()),
			strconv.Itoa(run.Undocumented),
			strconv.Itoa(run.Added),
			strconv.Itoa(run.Modified),
			strconv.Itoa(run.Removed),
			result,
		})
	}
	fmt.Fprintln(w, newTable(w, "RUN", "STARTED", "COVERAGE", "UNDOCUMENTED", "ADDED", "MODIFIED", "REMOVED", "RESULT").Rows(rows...))
}

func printRun(w io.Writer, run *storage.RunRecord) {
	fmt.Fprintf(w, "Run %s\n", run.RunID)
	fmt.Fprintf(w, "Started:  %s (%.1fs)\n", run.StartedAt.Local().Format(time.DateTime), run.Duration.Seconds())
	fmt.Fprintf(w, "Snapshot: %s\n", run.SnapshotPath)
	fmt.Fprintf(w, "Coverage: %d/%d (%.1f%%)\n", run.Documented, run.Total, run.Percent())
	fmt.Fprintf(w, "States:   Unchanged: %d  Modified: %d  Added: %d  Removed: %d\n",
		run.Unchanged, run.Modified, run.Added, run.Removed)
	if run.FailedFiles > 0 {
		fmt.Fprintf(w, "Skipped:  %d file(s)\n", run.FailedFiles)
	}
	if len(run.Files) == 0 {
		return
	}

	t := newTable(w, "FILE", "DOCUMENTED", "TOTAL")
	for _, f := range run.Files {
		t.Row(f.FilePath, strconv.Itoa(f.Documented), strconv.Itoa(f.Total))
	}
	fmt.Fprintf(w, "\n%s\n", t)
}

// newTable returns a bordered table whose header is styled like the report title.
func newTable(w io.Writer, headers ...string) *table.Table {
	styles := coverage.StylesFor(w)
	cell := lipgloss.NewStyle().Padding(0, 1)
	header := styles.Title.Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
