package cli

import (
	"github.com/Parumezan/toxidoc/internal/config"
	"github.com/Parumezan/toxidoc/internal/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// settingFlagKeys maps the configuration flags shared by check, init and generate
// to their config keys.
var settingFlagKeys = map[string]string{
	"snapshot":          "snapshot",
	"recursive":         "recursive",
	"header-extensions": "header_extensions",
	"exclude-dirs":      "exclude_dirs",
	"words-blacklist":   "words_blacklist",
	"types-blacklist":   "types_blacklist",
	"profile":           "annotation_profiles",
	"language":          "language",
	"strict":            "strict",
	"workers":           "workers",
	"min-coverage":      "min_coverage",
}

// addSettingFlags registers the configuration flags on a command.
// Defaults shown here only document the built-in values; unset flags never override.
func addSettingFlags(flags *pflag.FlagSet) {
	defaults := config.Default()
	flags.StringP("snapshot", "s", defaults.Snapshot, "snapshot file (.json, .yaml or .toml)")
	flags.BoolP("recursive", "r", defaults.Recursive, "descend into subdirectories")
	flags.StringSliceP("header-extensions", "H", defaults.HeaderExtensions, "header file extensions")
	flags.StringSliceP("exclude-dirs", "e", defaults.ExcludeDirs, "directory names or glob patterns to skip")
	flags.StringSlice("words-blacklist", nil, "skip entities whose name contains one of these")
	flags.StringSlice("types-blacklist", nil, "skip entities of these kinds (e.g. Macro,Namespace)")
	flags.StringSlice("profile", nil, "annotation profile YAML file (repeatable)")
	flags.String("language", defaults.Language, "header language: cpp or c")
	flags.Bool("strict", false, "skip files with syntax errors")
	flags.Int("workers", 0, "parallel parsers (0 = one per CPU)")
	flags.Float64("min-coverage", 0, "pass when coverage reaches this percent instead of requiring 100%")
}

// loadConfig resolves the configuration for cmd. Positional args replace the source paths.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	opts := []config.Option{
		config.WithFlags(cmd.Flags(), settingFlagKeys),
		config.WithSnapshotSettings(snapshotSettings),
	}
	if cfgFile != "" {
		opts = append(opts, config.WithConfigFile(cfgFile))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.SourcePaths = args
	}
	return cfg, nil
}

// snapshotSettings reads the settings persisted in the snapshot at path, if any.
func snapshotSettings(path string) map[string]any {
	store, err := snapshot.NewStore(path, nil)
	if err != nil || !store.Exists() {
		return nil
	}
	snap, err := store.Load()
	if err != nil {
		return nil
	}
	return snap.Settings()
}
