package indexer

// ProgressReporter provides callbacks for reporting extraction progress.
// Implementations can display progress bars, log messages, or remain silent.
// OnFileProcessed may be called from several goroutines at once.
type ProgressReporter interface {
	// OnDiscoveryStart is called when header collection begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when header collection finishes.
	OnDiscoveryComplete(headerFiles int)

	// OnFileProcessingStart is called before extracting files.
	OnFileProcessingStart(totalFiles int)

	// OnFileProcessed is called after each file is extracted or skipped.
	OnFileProcessed(fileName string)

	// OnComplete is called when extraction completes successfully.
	OnComplete(result *RunResult)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                    {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(headerFiles int)  {}
func (n *NoOpProgressReporter) OnFileProcessingStart(totalFiles int) {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string)      {}
func (n *NoOpProgressReporter) OnComplete(result *RunResult)         {}
