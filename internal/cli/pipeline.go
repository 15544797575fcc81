package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Parumezan/toxidoc/internal/config"
	"github.com/Parumezan/toxidoc/internal/coverage"
	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/indexer"
	"github.com/Parumezan/toxidoc/internal/indexer/parsers"
	"github.com/Parumezan/toxidoc/internal/snapshot"
	"github.com/Parumezan/toxidoc/internal/storage"
	"github.com/sirupsen/logrus"
)

// Pipeline:
// 1. Load the previous snapshot (missing or broken degrades to empty)
// 2. Collect and extract the headers into overload-indexed entities
// 3. Reconcile against the previous entities, unless there are none
// 4. Evaluate coverage and render the report
// 5. Save the snapshot and record the run in the history

// pipeline runs the coverage workflow for one resolved configuration.
type pipeline struct {
	cfg      *config.Config
	logger   *logrus.Logger
	progress indexer.ProgressReporter
	out      io.Writer
	now      func() time.Time
}

// checkOptions are the check-only switches that are not configuration.
type checkOptions struct {
	format           string
	onlyUndocumented bool
	details          bool
	noSave           bool
	styles           *coverage.Styles
}

// runOutcome is what one check run produced.
type runOutcome struct {
	report   *coverage.Report
	result   *indexer.RunResult
	merged   []entity.Entity
	runID    string
	exitCode int
}

func newPipeline(cfg *config.Config, logger *logrus.Logger, progress indexer.ProgressReporter, out io.Writer) *pipeline {
	if progress == nil {
		progress = &indexer.NoOpProgressReporter{}
	}
	return &pipeline{cfg: cfg, logger: logger, progress: progress, out: out, now: time.Now}
}

// discovery builds the file collector for the configured paths.
func (p *pipeline) discovery() (*indexer.FileDiscovery, error) {
	return indexer.NewFileDiscovery(indexer.DiscoveryOptions{
		Extensions:  p.cfg.HeaderExtensions,
		ExcludeDirs: p.cfg.ExcludeDirs,
		Recursive:   p.cfg.Recursive,
		Logger:      p.logger,
	})
}

// extract collects the headers and extracts their entities.
func (p *pipeline) extract(ctx context.Context) (*indexer.RunResult, error) {
	frontend, err := parsers.NewFrontend(p.cfg.Language, p.cfg.Strict)
	if err != nil {
		return nil, err
	}

	profiles, err := indexer.LoadAnnotationProfiles(p.cfg.AnnotationProfiles)
	if err != nil {
		return nil, err
	}

	discovery, err := p.discovery()
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	extractor := indexer.NewExtractor(
		frontend,
		indexer.NewClassifier(profiles...),
		indexer.NewFilter(p.cfg.TypesBlacklist, p.cfg.WordsBlacklist),
	)
	ix := indexer.New(discovery, extractor, indexer.Options{
		Workers:  p.cfg.Workers,
		Progress: p.progress,
		Logger:   p.logger,
	})
	return ix.Run(ctx, p.cfg.SourcePaths)
}

// loadPrevious reads the previous snapshot, logging why it could not be used.
func (p *pipeline) loadPrevious(store *snapshot.Store) *snapshot.Snapshot {
	if !store.Exists() {
		p.logger.WithField("file", store.Path()).Info("no snapshot yet, starting fresh")
		return snapshot.Empty()
	}
	prev, err := store.LoadOrEmpty()
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"file":  store.Path(),
			"error": err,
		}).Warn("ignoring unreadable snapshot")
	}
	return prev
}

// snapshotOf builds the snapshot to persist for merged.
func (p *pipeline) snapshotOf(merged []entity.Entity) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ExcludeDirs:      p.cfg.ExcludeDirs,
		HeaderExtensions: p.cfg.HeaderExtensions,
		WordsBlacklist:   p.cfg.WordsBlacklist,
		TypesBlacklist:   p.cfg.TypesBlacklist,
		SourcePaths:      p.cfg.SourcePaths,
		Entities:         merged,
	}
}

// check runs the whole workflow once and returns the coverage exit code.
func (p *pipeline) check(ctx context.Context, opts checkOptions) (*runOutcome, error) {
	started := p.now()

	renderer, err := coverage.NewRenderer(opts.format, opts.styles, coverage.TextOptions{
		OnlyUndocumented: opts.onlyUndocumented,
		Details:          opts.details,
	})
	if err != nil {
		return nil, err
	}

	store, err := snapshot.NewStore(p.cfg.Snapshot, p.logger)
	if err != nil {
		return nil, err
	}
	prev := p.loadPrevious(store)

	result, err := p.extract(ctx)
	if err != nil {
		return nil, err
	}

	merged := result.Entities
	if len(prev.Entities) > 0 {
		merged = snapshot.Reconcile(prev.Entities, result.Entities)
	}

	report := coverage.Evaluate(merged)
	report.MinCoverage = p.cfg.MinCoverage

	meta := coverage.Meta{
		SnapshotPath: store.Path(),
		LastSaved:    prev.LastSavedTime(),
		Failures:     failuresOf(result),
		Duration:     result.Duration,
	}
	if err := renderer.Render(p.out, report, meta); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if !opts.noSave {
		if err := store.Save(p.snapshotOf(merged), p.now()); err != nil {
			return nil, err
		}
	}

	outcome := &runOutcome{
		report:   report,
		result:   result,
		merged:   merged,
		exitCode: report.ExitCode(),
	}
	outcome.runID = p.record(started, store.Path(), report, result)
	return outcome, nil
}

// record stores the run in the history. History problems never fail a run.
func (p *pipeline) record(started time.Time, snapshotPath string, report *coverage.Report, result *indexer.RunResult) string {
	if !p.cfg.History.Enabled {
		return ""
	}

	db, err := storage.Open(p.cfg.History.Path)
	if err != nil {
		p.logger.WithField("error", err).Warn("run history unavailable")
		return ""
	}
	defer db.Close()

	run := runRecordOf(started, snapshotPath, report, result)
	writer := storage.NewRunWriter(db)
	runID, err := writer.WriteRun(run)
	if err != nil {
		p.logger.WithField("error", err).Warn("failed to record run")
		return ""
	}
	if keep := p.cfg.History.Keep; keep > 0 {
		if pruned, err := writer.Prune(keep); err != nil {
			p.logger.WithField("error", err).Warn("failed to prune run history")
		} else if pruned > 0 {
			p.logger.WithField("runs", pruned).Debug("pruned run history")
		}
	}
	p.logger.WithField("run_id", runID).Debug("recorded run")
	return runID
}

// runRecordOf converts a report into its history row.
func runRecordOf(started time.Time, snapshotPath string, report *coverage.Report, result *indexer.RunResult) *storage.RunRecord {
	run := &storage.RunRecord{
		StartedAt:    started,
		SnapshotPath: snapshotPath,
		Total:        report.Total,
		Documented:   report.Documented,
		Undocumented: report.Undocumented,
		Unchanged:    report.Counts.Unchanged,
		Modified:     report.Counts.Modified,
		Added:        report.Counts.Added,
		Removed:      report.Counts.Removed,
		FailedFiles:  len(result.Failures),
		Duration:     result.Duration,
		Passed:       report.Passed(),
	}
	for _, f := range report.Files {
		run.Files = append(run.Files, &storage.RunFile{
			FilePath:   f.Path,
			Documented: f.Documented,
			Total:      f.Total,
		})
	}
	return run
}

func failuresOf(result *indexer.RunResult) []coverage.Failure {
	failures := make([]coverage.Failure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, coverage.Failure{Path: f.Path, Message: f.Err.Error()})
	}
	return failures
}
