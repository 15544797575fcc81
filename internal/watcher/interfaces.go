package watcher

import "context"

// FileWatcher monitors header files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching the source paths, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// PathMatcher decides which files and directories are watched.
// *indexer.FileDiscovery satisfies it, so watch mode follows the same rules as collection.
type PathMatcher interface {
	IsHeader(path string) bool
	ExcludesDir(relDir string) bool
}
