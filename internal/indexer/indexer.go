package indexer

import (
	"context"
	"errors"
	"io"
	"runtime"
	"time"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/indexer/parsers"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pipeline:
// 1. FileDiscovery collects header files from the source paths
// 2. Extractor parses each file and classifies, filters and builds its entities
// 3. Files are extracted in parallel, each into its own slot so order is kept
// 4. AssignOverloads numbers the concatenated entity list once

// FileFailure records a file that could not be extracted.
type FileFailure struct {
	Path string
	Err  error
}

func (f FileFailure) Error() string {
	return f.Path + ": " + f.Err.Error()
}

// RunResult is the outcome of one extraction run.
type RunResult struct {
	// Entities in file order, then source order within each file, overload-indexed.
	Entities []entity.Entity

	// Files that were collected, including failed ones.
	Files []string

	// Failures lists skipped files. They do not fail the run.
	Failures []FileFailure

	Duration time.Duration
}

// Options configures an Indexer.
type Options struct {
	// Workers bounds parallel extraction. Zero means runtime.NumCPU().
	Workers  int
	Progress ProgressReporter
	Logger   *logrus.Logger
}

// Indexer runs discovery and extraction over a set of source paths.
type Indexer struct {
	discovery *FileDiscovery
	extractor *Extractor
	workers   int
	progress  ProgressReporter
	logger    *logrus.Logger
}

// New creates an indexer.
func New(discovery *FileDiscovery, extractor *Extractor, opts Options) *Indexer {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Indexer{
		discovery: discovery,
		extractor: extractor,
		workers:   workers,
		progress:  progress,
		logger:    logger,
	}
}

// Run collects headers under sourcePaths and extracts their entities.
func (ix *Indexer) Run(ctx context.Context, sourcePaths []string) (*RunResult, error) {
	ix.progress.OnDiscoveryStart()
	files, err := ix.discovery.Discover(sourcePaths)
	if err != nil {
		return nil, err
	}
	ix.progress.OnDiscoveryComplete(len(files))
	ix.logger.WithField("files", len(files)).Debug("collected header files")

	return ix.Extract(ctx, files)
}

// Extract extracts entities from an explicit file list.
//
// A file that fails to parse is recorded in Failures and skipped; the other files
// are unaffected. An unavailable frontend or a cancelled context aborts the run.
func (ix *Indexer) Extract(ctx context.Context, files []string) (*RunResult, error) {
	start := time.Now()
	ix.progress.OnFileProcessingStart(len(files))

	slots := make([][]entity.Entity, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)
	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			entities, err := ix.extractor.ExtractFile(gctx, file)
			switch {
			case err == nil:
				slots[i] = entities
				ix.logger.WithFields(logrus.Fields{
					"file":     file,
					"entities": len(entities),
				}).Debug("extracted file")
			case errors.Is(err, parsers.ErrFrontendUnavailable):
				return err
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				failures[i] = err
				ix.logger.WithFields(logrus.Fields{
					"file":  file,
					"error": err,
				}).Warn("skipping file")
			}
			ix.progress.OnFileProcessed(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RunResult{
		Entities: []entity.Entity{},
		Files:    files,
	}
	for i, entities := range slots {
		result.Entities = append(result.Entities, entities...)
		if failures[i] != nil {
			result.Failures = append(result.Failures, FileFailure{Path: files[i], Err: failures[i]})
		}
	}
	AssignOverloads(result.Entities)
	result.Duration = time.Since(start)

	ix.progress.OnComplete(result)
	return result, nil
}
