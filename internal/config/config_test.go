package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns a valid configuration
// - Load() uses defaults when no config file exists
// - Load() reads .toxidoc.yaml from the root directory
// - An explicit config file must exist
// - Snapshot settings override the config file, environment overrides snapshot settings
// - Only flags set on the command line are bound, and they win over everything
// - min_coverage stays nil unless configured
// - Malformed YAML and invalid values are errors
// - Validate() reports every problem with its sentinel

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "toxiconf.json", cfg.Snapshot)
	assert.Equal(t, []string{"."}, cfg.SourcePaths)
	assert.Contains(t, cfg.HeaderExtensions, ".hpp")
	assert.Contains(t, cfg.ExcludeDirs, "build")
	assert.True(t, cfg.Recursive)
	assert.Equal(t, "cpp", cfg.Language)
	assert.Nil(t, cfg.MinCoverage)
	assert.True(t, cfg.History.Enabled)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, defaults.Snapshot, cfg.Snapshot)
	assert.Equal(t, defaults.HeaderExtensions, cfg.HeaderExtensions)
	assert.Equal(t, defaults.ExcludeDirs, cfg.ExcludeDirs)
	assert.Equal(t, defaults.History, cfg.History)
	assert.Nil(t, cfg.MinCoverage)
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
snapshot: docs/coverage.yaml
source_paths: [include, src]
words_blacklist: [_impl]
types_blacklist: [Macro]
language: c
min_coverage: 85.5
history:
  enabled: false
`)

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, "docs/coverage.yaml", cfg.Snapshot)
	assert.Equal(t, []string{"include", "src"}, cfg.SourcePaths)
	assert.Equal(t, []string{"_impl"}, cfg.WordsBlacklist)
	assert.Equal(t, []string{"Macro"}, cfg.TypesBlacklist)
	assert.Equal(t, "c", cfg.Language)
	require.NotNil(t, cfg.MinCoverage)
	assert.Equal(t, 85.5, *cfg.MinCoverage)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, ".toxidoc/history.db", cfg.History.Path, "unset nested keys keep defaults")
	assert.Equal(t, Default().HeaderExtensions, cfg.HeaderExtensions)
}

func TestLoad_ExplicitConfigFileMustExist(t *testing.T) {
	t.Parallel()

	_, err := NewLoader(t.TempDir(), WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))).Load()
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "snapshot: [unterminated\n")

	_, err := NewLoader(dir).Load()
	assert.Error(t, err)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "language: rust\nworkers: -2\n")

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
}

func TestLoad_SnapshotSettingsOverrideConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "snapshot: custom.json\nexclude_dirs: [from_file]\nwords_blacklist: [from_file]\n")

	var askedFor string
	source := func(path string) map[string]any {
		askedFor = path
		return map[string]any{
			"exclude_dirs":      []string{"from_snapshot"},
			"header_extensions": []string{".hpp"},
		}
	}

	cfg, err := NewLoader(dir, WithSnapshotSettings(source)).Load()
	require.NoError(t, err)

	assert.Equal(t, "custom.json", askedFor)
	assert.Equal(t, []string{"from_snapshot"}, cfg.ExcludeDirs)
	assert.Equal(t, []string{".hpp"}, cfg.HeaderExtensions)
	assert.Equal(t, []string{"from_file"}, cfg.WordsBlacklist)
}

func TestLoad_EnvironmentAndFlags(t *testing.T) {
	// Not parallel: t.Setenv
	dir := t.TempDir()
	writeConfig(t, dir, "language: c\nworkers: 2\n")
	t.Setenv("TOXIDOC_WORKERS", "4")
	t.Setenv("TOXIDOC_MIN_COVERAGE", "90")
	t.Setenv("TOXIDOC_HISTORY_ENABLED", "false")
	t.Setenv("TOXIDOC_EXCLUDE_DIRS", "out,gen")

	source := func(string) map[string]any {
		return map[string]any{"exclude_dirs": []string{"from_snapshot"}}
	}

	flags := pflag.NewFlagSet("check", pflag.ContinueOnError)
	flags.Int("workers", 0, "")
	flags.String("language", "cpp", "")
	flags.Bool("strict", false, "")
	require.NoError(t, flags.Parse([]string{"--workers=8"}))

	keys := map[string]string{"workers": "workers", "language": "language", "strict": "strict"}
	cfg, err := NewLoader(dir, WithFlags(flags, keys), WithSnapshotSettings(source)).Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers, "a set flag wins over env")
	assert.Equal(t, "c", cfg.Language, "an unset flag does not override the config file")
	assert.False(t, cfg.Strict)
	require.NotNil(t, cfg.MinCoverage)
	assert.Equal(t, 90.0, *cfg.MinCoverage)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, []string{"out", "gen"}, cfg.ExcludeDirs, "env wins over snapshot settings")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"empty snapshot", func(c *Config) { c.Snapshot = " " }, ErrEmptySnapshot},
		{"no source paths", func(c *Config) { c.SourcePaths = nil }, ErrNoSourcePaths},
		{"extension without dot", func(c *Config) { c.HeaderExtensions = []string{"h"} }, ErrInvalidExtension},
		{"bare dot", func(c *Config) { c.HeaderExtensions = []string{"."} }, ErrInvalidExtension},
		{"unknown language", func(c *Config) { c.Language = "objc" }, ErrInvalidLanguage},
		{"unknown kind", func(c *Config) { c.TypesBlacklist = []string{"Slot"} }, ErrInvalidKind},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidWorkers},
		{"coverage above 100", func(c *Config) { v := 101.0; c.MinCoverage = &v }, ErrInvalidMinCoverage},
		{"coverage below 0", func(c *Config) { v := -1.0; c.MinCoverage = &v }, ErrInvalidMinCoverage},
		{"history without path", func(c *Config) { c.History.Path = "" }, ErrInvalidHistory},
		{"negative keep", func(c *Config) { c.History.Keep = -1 }, ErrInvalidHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.ErrorIs(t, Validate(cfg), tt.want)
		})
	}

	t.Run("valid edge values", func(t *testing.T) {
		cfg := Default()
		zero, full := 0.0, 100.0
		cfg.MinCoverage = &zero
		require.NoError(t, Validate(cfg))
		cfg.MinCoverage = &full
		cfg.Language = "C"
		cfg.TypesBlacklist = []string{"Macro", " Namespace "}
		cfg.History = HistoryConfig{Enabled: false}
		require.NoError(t, Validate(cfg))
	})
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Language = "go"
	cfg.Workers = -3
	cfg.TypesBlacklist = []string{"Slot"}

	err := Validate(cfg)
	require.Error(t, err)
	for _, sentinel := range []error{ErrInvalidLanguage, ErrInvalidWorkers, ErrInvalidKind} {
		assert.True(t, errors.Is(err, sentinel), "missing %v", sentinel)
	}
	assert.Contains(t, err.Error(), "validation failed:")
}
