package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigFile is looked up in the root directory when no config file is given.
const DefaultConfigFile = ".toxidoc.yaml"

// SettingsSource returns the settings stored in the snapshot at path, keyed like
// the config file. It is consulted once the snapshot path is known.
type SettingsSource func(snapshotPath string) map[string]any

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load resolves the configuration.
	// Priority: defaults → config file → snapshot settings → environment → flags (flags win)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
	flags      *pflag.FlagSet
	flagKeys   map[string]string
	settings   SettingsSource
}

// Option configures a Loader.
type Option func(*loader)

// WithConfigFile uses an explicit config file, which must then exist.
func WithConfigFile(path string) Option {
	return func(l *loader) { l.configFile = path }
}

// WithFlags binds the flags that were set on the command line. keys maps a flag
// name to its config key; unmapped flags are ignored.
func WithFlags(flags *pflag.FlagSet, keys map[string]string) Option {
	return func(l *loader) {
		l.flags = flags
		l.flagKeys = keys
	}
}

// WithSnapshotSettings layers the snapshot's persisted settings over the config file.
func WithSnapshotSettings(source SettingsSource) Option {
	return func(l *loader) { l.settings = source }
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string, opts ...Option) Loader {
	l := &loader{rootDir: rootDir}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, ".yaml"))
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	// Enable environment variable overrides (e.g., TOXIDOC_HISTORY_ENABLED)
	v.SetEnvPrefix("TOXIDOC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file that is missing surfaces as a PathError, not ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if l.flags != nil {
		var bindErr error
		l.flags.Visit(func(f *pflag.Flag) {
			key, ok := l.flagKeys[f.Name]
			if !ok || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", bindErr)
		}
	}

	if l.settings != nil {
		if settings := l.settings(v.GetString("snapshot")); len(settings) > 0 {
			if err := v.MergeConfigMap(settings); err != nil {
				return nil, fmt.Errorf("failed to merge snapshot settings: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// configKeys lists every key that can come from the environment.
var configKeys = []string{
	"snapshot",
	"source_paths",
	"header_extensions",
	"exclude_dirs",
	"words_blacklist",
	"types_blacklist",
	"recursive",
	"language",
	"annotation_profiles",
	"strict",
	"workers",
	"min_coverage",
	"history.enabled",
	"history.path",
	"history.keep",
}

// setDefaults configures viper with default values.
// min_coverage has no default so an unset threshold stays nil.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("snapshot", defaults.Snapshot)
	v.SetDefault("source_paths", defaults.SourcePaths)
	v.SetDefault("header_extensions", defaults.HeaderExtensions)
	v.SetDefault("exclude_dirs", defaults.ExcludeDirs)
	v.SetDefault("words_blacklist", defaults.WordsBlacklist)
	v.SetDefault("types_blacklist", defaults.TypesBlacklist)
	v.SetDefault("recursive", defaults.Recursive)
	v.SetDefault("language", defaults.Language)
	v.SetDefault("annotation_profiles", []string{})
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("workers", defaults.Workers)

	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.path", defaults.History.Path)
	v.SetDefault("history.keep", defaults.History.Keep)
}

// LoadConfig is a convenience function that loads config from the working directory.
func LoadConfig(opts ...Option) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, opts...).Load()
}
