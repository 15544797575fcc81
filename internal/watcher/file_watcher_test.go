package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Parumezan/toxidoc/internal/indexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher fails on a missing source path
// - A header change fires the callback after the debounce period
// - Rapid changes are coalesced and de-duplicated into one sorted batch
// - Non-header files and excluded directories are ignored
// - Directories created after start are watched recursively
// - Explicit file roots are watched through their directory
// - Pause accumulates changes, Resume fires them immediately
// - Stop is idempotent and safe before Start

const testDebounce = 50 * time.Millisecond

func newMatcher(t *testing.T) *indexer.FileDiscovery {
	t.Helper()
	fd, err := indexer.NewFileDiscovery(indexer.DiscoveryOptions{
		Extensions:  []string{".h", ".hpp"},
		ExcludeDirs: []string{"build"},
		Recursive:   true,
	})
	require.NoError(t, err)
	return fd
}

func startWatcher(t *testing.T, roots ...string) (FileWatcher, <-chan []string) {
	t.Helper()

	w, err := NewFileWatcher(Options{
		Roots:     roots,
		Matcher:   newMatcher(t),
		Recursive: true,
		Debounce:  testDebounce,
	})
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	batches := make(chan []string, 10)
	require.NoError(t, w.Start(context.Background(), func(files []string) {
		batches <- files
	}))
	return w, batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case files := <-batches:
		return files
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for callback")
		return nil
	}
}

func assertNoBatch(t *testing.T, batches <-chan []string) {
	t.Helper()
	select {
	case files := <-batches:
		t.Fatalf("unexpected callback with %v", files)
	case <-time.After(6 * testDebounce):
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewFileWatcher_MissingRoot(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(Options{
		Roots:   []string{filepath.Join(t.TempDir(), "missing")},
		Matcher: newMatcher(t),
	})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestFileWatcher_HeaderChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "api.h")
	write(t, header, "int a;\n")

	_, batches := startWatcher(t, dir)

	write(t, header, "int b;\n")
	assert.Equal(t, []string{header}, waitBatch(t, batches))
}

func TestFileWatcher_BatchesAndDeduplicates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.h")
	b := filepath.Join(dir, "b.hpp")

	_, batches := startWatcher(t, dir)

	write(t, b, "1")
	write(t, a, "1")
	write(t, a, "2")
	write(t, b, "2")

	assert.Equal(t, []string{a, b}, waitBatch(t, batches))
}

func TestFileWatcher_IgnoresNonHeadersAndExcludedDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "build"), 0755))

	_, batches := startWatcher(t, dir)

	write(t, filepath.Join(dir, "impl.cpp"), "x")
	write(t, filepath.Join(dir, "notes.txt"), "x")
	write(t, filepath.Join(dir, "build", "gen.h"), "x")

	assertNoBatch(t, batches)
}

func TestFileWatcher_NewDirectoryIsWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, batches := startWatcher(t, dir)

	sub := filepath.Join(dir, "include")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher time to register the new directory
	time.Sleep(4 * testDebounce)

	header := filepath.Join(sub, "new.h")
	write(t, header, "x")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case files := <-batches:
			if assert.NotEmpty(t, files) && files[len(files)-1] == header {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory was not reported")
		}
	}
}

func TestFileWatcher_ExplicitFileRoot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.h")
	other := filepath.Join(dir, "other.h")
	write(t, watched, "x")

	_, batches := startWatcher(t, watched)

	write(t, other, "x")
	write(t, watched, "y")

	assert.Equal(t, []string{watched}, waitBatch(t, batches))
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	header := filepath.Join(dir, "api.h")

	w, batches := startWatcher(t, dir)
	w.Pause()

	write(t, header, "x")
	assertNoBatch(t, batches)

	w.Resume()
	assert.Equal(t, []string{header}, waitBatch(t, batches))
}

func TestFileWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(Options{Roots: []string{t.TempDir()}, Matcher: newMatcher(t)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Stop())
		}()
	}
	wg.Wait()
}
