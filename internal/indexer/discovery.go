package indexer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// DiscoveryOptions controls which header files are collected.
type DiscoveryOptions struct {
	// Extensions such as ".h"; matched case-insensitively.
	Extensions []string

	// ExcludeDirs are directory base names ("build") or glob patterns over the
	// slash-separated path ("vendor/**", "**/generated").
	ExcludeDirs []string

	// Recursive descends into subdirectories of a directory path.
	Recursive bool

	// Logger receives warnings for paths that cannot be read. Nil discards them.
	Logger *logrus.Logger
}

// FileDiscovery collects header files from a list of files and directories.
type FileDiscovery struct {
	extensions      map[string]bool
	excludeNames    map[string]bool
	excludePatterns []compiledPattern
	recursive       bool
	logger          *logrus.Logger
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(opts DiscoveryOptions) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		extensions:   make(map[string]bool),
		excludeNames: make(map[string]bool),
		recursive:    opts.Recursive,
		logger:       opts.Logger,
	}
	if fd.logger == nil {
		fd.logger = logrus.New()
		fd.logger.SetOutput(io.Discard)
	}

	for _, ext := range opts.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		fd.extensions[ext] = true
	}

	for _, dir := range opts.ExcludeDirs {
		dir = strings.Trim(filepath.ToSlash(strings.TrimSpace(dir)), "/")
		if dir == "" {
			continue
		}
		if !strings.ContainsAny(dir, "*?[{/") {
			fd.excludeNames[dir] = true
			continue
		}
		g, err := glob.Compile(dir, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", dir, err)
		}
		fd.excludePatterns = append(fd.excludePatterns, compiledPattern{pattern: dir, glob: g})

		// "**/gen" should also match "gen" directly below the root
		if simplified, ok := strings.CutPrefix(dir, "**/"); ok {
			if sg, err := glob.Compile(simplified, '/'); err == nil {
				fd.excludePatterns = append(fd.excludePatterns, compiledPattern{pattern: simplified, glob: sg})
			}
		}
	}

	return fd, nil
}

// Discover walks the given paths and returns matching header files, sorted and
// de-duplicated. Paths keep the form they were given in (relative paths stay
// relative) with forward slashes, so identities are stable across runs.
//
// A source path that does not exist, or a file or directory that cannot be read,
// is logged and skipped; the remaining paths are still collected.
func (fd *FileDiscovery) Discover(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.ToSlash(filepath.Clean(path))
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			fd.logger.WithFields(logrus.Fields{
				"file":  root,
				"error": err,
			}).Warn("skipping source path")
			continue
		}

		if !info.IsDir() {
			if fd.IsHeader(root) {
				add(root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				fd.logger.WithFields(logrus.Fields{
					"file":  path,
					"error": err,
				}).Warn("skipping unreadable path")
				if d != nil && d.IsDir() && path != root {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if !fd.recursive {
					return filepath.SkipDir
				}
				relPath, err := filepath.Rel(root, path)
				if err != nil {
					return err
				}
				if fd.shouldIgnore(d.Name(), filepath.ToSlash(relPath)) {
					return filepath.SkipDir
				}
				return nil
			}

			if fd.IsHeader(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}

	slices.Sort(files)
	return files, nil
}

// IsHeader reports whether a path has one of the configured header extensions.
func (fd *FileDiscovery) IsHeader(path string) bool {
	return fd.extensions[strings.ToLower(filepath.Ext(path))]
}

// IsExcluded reports whether any directory component of path (relative to the
// watched root) is excluded.
func (fd *FileDiscovery) IsExcluded(relPath string) bool {
	return fd.ExcludesDir(filepath.Dir(relPath))
}

// ExcludesDir reports whether a directory, or any of its parents up to the
// root, is excluded. relDir is relative to the root.
func (fd *FileDiscovery) ExcludesDir(relDir string) bool {
	dir := filepath.ToSlash(filepath.Clean(relDir))
	for dir != "." && dir != "/" && dir != "" {
		if fd.shouldIgnore(filepath.Base(dir), dir) {
			return true
		}
		dir = filepath.ToSlash(filepath.Dir(dir))
	}
	return false
}

// shouldIgnore checks if a directory matches an exclude name or pattern.
func (fd *FileDiscovery) shouldIgnore(name, relPath string) bool {
	if fd.excludeNames[name] {
		return true
	}

	for _, cp := range fd.excludePatterns {
		if cp.glob.Match(relPath) {
			return true
		}
		// "vendor/**" should also exclude the "vendor" directory itself
		if cp.glob.Match(relPath + "/**") {
			return true
		}
	}
	return false
}
