package cli

// Test Plan for the check pipeline:
// - A first run reports every entity Unchanged, saves the snapshot and records the run
// - A second run reports Modified, Added and Removed against the saved snapshot
// - --no-save leaves the snapshot untouched
// - A broken snapshot degrades to a fresh run
// - A source directory deleted after a run is skipped and its entities reported Removed
// - min_coverage replaces the all-documented pass condition
// - init refuses to overwrite a snapshot unless forced
// - init warns about each skipped file together with its error
// - generate inserts skeletons only above undocumented entities
// - Snapshot settings are layered under flags when loading configuration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Parumezan/toxidoc/internal/config"
	"github.com/Parumezan/toxidoc/internal/coverage"
	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/snapshot"
	"github.com/Parumezan/toxidoc/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headerV1 = `#pragma once

/// Opens a device.
int dev_open(const char *name);

int dev_close(int fd);

int dev_legacy(void);
`

const headerV2 = `#pragma once

/// Opens a device.
int dev_open(const char *name);

/// Closes a device.
int dev_close(int fd);

int dev_reset(int fd);
`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupProject writes api.h into a fresh source tree and returns a config for it.
func setupProject(t *testing.T, header string) (*config.Config, string) {
	t.Helper()

	root := t.TempDir()
	src := filepath.Join(root, "include")
	require.NoError(t, os.MkdirAll(src, 0755))
	headerPath := filepath.Join(src, "api.h")
	require.NoError(t, os.WriteFile(headerPath, []byte(header), 0644))

	cfg := config.Default()
	cfg.Snapshot = filepath.Join(root, "toxiconf.json")
	cfg.SourcePaths = []string{src}
	cfg.Language = "c"
	cfg.Workers = 2
	cfg.History.Path = filepath.Join(root, ".toxidoc", "history.db")
	return cfg, headerPath
}

func textOptions() checkOptions {
	return checkOptions{format: "text", styles: coverage.PlainStyles()}
}

func statesByName(entities []entity.Entity) map[string]entity.State {
	states := make(map[string]entity.State)
	for _, e := range entities {
		states[e.Name] = e.State
	}
	return states
}

func TestPipeline_CheckTwice(t *testing.T) {
	t.Parallel()

	cfg, headerPath := setupProject(t, headerV1)
	ctx := context.Background()

	var out bytes.Buffer
	p := newPipeline(cfg, quietLogger(), nil, &out)
	clock := time.Unix(1700000000, 0)
	p.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := p.check(ctx, textOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, first.exitCode)
	assert.Equal(t, map[string]entity.State{
		"dev_open":   entity.StateUnchanged,
		"dev_close":  entity.StateUnchanged,
		"dev_legacy": entity.StateUnchanged,
	}, statesByName(first.merged))
	assert.Contains(t, out.String(), "Documented: 1/3")
	assert.Contains(t, out.String(), "last saved never")
	assert.NotEmpty(t, first.runID)

	store, err := snapshot.NewStore(cfg.Snapshot, nil)
	require.NoError(t, err)
	saved, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, saved.Entities, 3)
	assert.Equal(t, int64(1700000002), saved.LastSaved)
	assert.Equal(t, cfg.SourcePaths, saved.SourcePaths)

	require.NoError(t, os.WriteFile(headerPath, []byte(headerV2), 0644))
	out.Reset()

	second, err := p.check(ctx, textOptions())
	require.NoError(t, err)
	assert.Equal(t, map[string]entity.State{
		"dev_open":   entity.StateUnchanged,
		"dev_close":  entity.StateModified,
		"dev_reset":  entity.StateAdded,
		"dev_legacy": entity.StateRemoved,
	}, statesByName(second.merged))
	assert.Equal(t, entity.StateRemoved, second.merged[0].State, "removed entities come first")
	assert.Equal(t, 3, second.report.Total)
	assert.Equal(t, 1, second.report.Undocumented)
	assert.Contains(t, out.String(), "Removed\n")
	assert.NotContains(t, out.String(), "last saved never")

	saved, err = store.Load()
	require.NoError(t, err)
	assert.Len(t, saved.Entities, 3, "removed entities are not persisted")
	for _, e := range saved.Entities {
		assert.NotEqual(t, "dev_legacy", e.Name)
		assert.Equal(t, entity.StateUnchanged, e.State, "a loaded snapshot is a baseline")
	}

	db, err := storage.Open(cfg.History.Path)
	require.NoError(t, err)
	defer db.Close()
	runs, err := storage.NewRunReader(db).ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 1, runs[0].Removed)
}

func TestPipeline_NoSave(t *testing.T) {
	t.Parallel()

	cfg, _ := setupProject(t, headerV1)
	cfg.History.Enabled = false

	p := newPipeline(cfg, quietLogger(), nil, io.Discard)
	opts := textOptions()
	opts.noSave = true

	_, err := p.check(context.Background(), opts)
	require.NoError(t, err)
	assert.NoFileExists(t, cfg.Snapshot)
	assert.NoFileExists(t, cfg.History.Path)
}

func TestPipeline_BrokenSnapshotStartsFresh(t *testing.T) {
	t.Parallel()

	cfg, _ := setupProject(t, headerV1)
	require.NoError(t, os.WriteFile(cfg.Snapshot, []byte("{not json"), 0644))

	var out bytes.Buffer
	p := newPipeline(cfg, quietLogger(), nil, &out)
	outcome, err := p.check(context.Background(), checkOptions{format: "json"})
	require.NoError(t, err)

	for _, e := range outcome.merged {
		assert.Equal(t, entity.StateUnchanged, e.State)
	}

	var report map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, float64(3), report["total"])

	store, err := snapshot.NewStore(cfg.Snapshot, nil)
	require.NoError(t, err)
	_, err = store.Load()
	assert.NoError(t, err, "the broken snapshot is replaced")
}

func TestPipeline_DeletedSourcePathIsSkipped(t *testing.T) {
	t.Parallel()

	cfg, headerPath := setupProject(t, headerV1)
	extra := filepath.Join(filepath.Dir(filepath.Dir(headerPath)), "extra")
	require.NoError(t, os.MkdirAll(extra, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(extra, "extra.h"), []byte("int extra_fn(void);\n"), 0644))
	cfg.SourcePaths = append(cfg.SourcePaths, extra)
	cfg.History.Enabled = false

	p := newPipeline(cfg, quietLogger(), nil, io.Discard)
	first, err := p.check(context.Background(), textOptions())
	require.NoError(t, err)
	assert.Equal(t, 4, first.report.Total)

	require.NoError(t, os.RemoveAll(extra))

	second, err := p.check(context.Background(), textOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, second.report.Total)
	assert.Equal(t, entity.StateRemoved, statesByName(second.merged)["extra_fn"])
}

func TestPipeline_MinCoverage(t *testing.T) {
	t.Parallel()

	cfg, _ := setupProject(t, headerV2)
	cfg.History.Enabled = false
	threshold := 60.0
	cfg.MinCoverage = &threshold

	p := newPipeline(cfg, quietLogger(), nil, io.Discard)
	outcome, err := p.check(context.Background(), textOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.report.Undocumented)
	assert.Equal(t, 0, outcome.exitCode, "2/3 documented passes a 60 percent threshold")
}

func TestPipeline_UnknownFormat(t *testing.T) {
	t.Parallel()

	cfg, _ := setupProject(t, headerV1)
	p := newPipeline(cfg, quietLogger(), nil, io.Discard)
	_, err := p.check(context.Background(), checkOptions{format: "xml"})
	assert.Error(t, err)
	assert.NoFileExists(t, cfg.Snapshot)
}

func TestPipeline_Baseline(t *testing.T) {
	t.Parallel()

	cfg, _ := setupProject(t, headerV1)
	p := newPipeline(cfg, quietLogger(), nil, io.Discard)

	count, err := p.baseline(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.FileExists(t, cfg.Snapshot)

	_, err = p.baseline(context.Background(), false)
	assert.Error(t, err)

	_, err = p.baseline(context.Background(), true)
	assert.NoError(t, err)
}

func TestPipeline_BaselineWarnsAboutSkippedFiles(t *testing.T) {
	t.Parallel()

	cfg, headerPath := setupProject(t, headerV1)
	cfg.Strict = true
	broken := filepath.Join(filepath.Dir(headerPath), "broken.h")
	require.NoError(t, os.WriteFile(broken, []byte("int broken(;\n"), 0644))

	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})

	p := newPipeline(cfg, logger, nil, io.Discard)
	count, err := p.baseline(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var warning string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "skipped file") {
			warning = line
		}
	}
	require.NotEmpty(t, warning)
	assert.Contains(t, warning, "broken.h")
	assert.Contains(t, warning, "error=")
}

func TestPipeline_Generate(t *testing.T) {
	t.Parallel()

	cfg, headerPath := setupProject(t, headerV1)
	var out bytes.Buffer
	p := newPipeline(cfg, quietLogger(), nil, &out)

	dry, err := p.generate(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, dry.Insertions)
	assert.Contains(t, out.String(), "Function dev_close")
	assert.Contains(t, out.String(), "+  * @arg fd")

	data, err := os.ReadFile(headerPath)
	require.NoError(t, err)
	assert.Equal(t, headerV1, string(data))

	_, err = p.generate(context.Background(), false)
	require.NoError(t, err)

	data, err = os.ReadFile(headerPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/**\n * @brief\n *\n * @arg fd\n *\n * @return int\n */\nint dev_close(int fd);")
	assert.Contains(t, string(data), "/**\n * @brief\n *\n * @return int\n */\nint dev_legacy(void);")
	assert.Equal(t, 1, strings.Count(string(data), "/// Opens a device."))

	// Every entity now carries a comment, so nothing is left to generate
	again, err := p.generate(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Insertions)
}

func TestSnapshotSettings(t *testing.T) {
	t.Parallel()

	cfg, _ := setupProject(t, headerV1)
	cfg.WordsBlacklist = []string{"_legacy"}
	p := newPipeline(cfg, quietLogger(), nil, io.Discard)
	_, err := p.baseline(context.Background(), false)
	require.NoError(t, err)

	settings := snapshotSettings(cfg.Snapshot)
	assert.Equal(t, []string{"_legacy"}, settings["words_blacklist"])
	assert.Equal(t, cfg.SourcePaths, settings["source_paths"])
	assert.NotContains(t, settings, "types_blacklist")

	assert.Nil(t, snapshotSettings(filepath.Join(t.TempDir(), "missing.json")))
	assert.Nil(t, snapshotSettings("toxiconf.xml"))
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}
