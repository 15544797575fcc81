package config

// Config represents the complete toxidoc configuration.
// It can be loaded from .toxidoc.yaml, the snapshot's own settings, environment
// variables and command-line flags.
type Config struct {
	Snapshot           string        `yaml:"snapshot" mapstructure:"snapshot"`                       // Snapshot file, codec chosen by extension
	SourcePaths        []string      `yaml:"source_paths" mapstructure:"source_paths"`               // Files or directories to scan
	HeaderExtensions   []string      `yaml:"header_extensions" mapstructure:"header_extensions"`     // With leading dot
	ExcludeDirs        []string      `yaml:"exclude_dirs" mapstructure:"exclude_dirs"`               // Base names or glob patterns
	WordsBlacklist     []string      `yaml:"words_blacklist" mapstructure:"words_blacklist"`         // Substrings of rejected names
	TypesBlacklist     []string      `yaml:"types_blacklist" mapstructure:"types_blacklist"`         // Rejected kind names
	Recursive          bool          `yaml:"recursive" mapstructure:"recursive"`                     // Descend into subdirectories
	Language           string        `yaml:"language" mapstructure:"language"`                       // "cpp" or "c"
	AnnotationProfiles []string      `yaml:"annotation_profiles" mapstructure:"annotation_profiles"` // Profile YAML files, in priority order
	Strict             bool          `yaml:"strict" mapstructure:"strict"`                           // Skip files with syntax errors
	Workers            int           `yaml:"workers" mapstructure:"workers"`                         // 0 means one per CPU
	MinCoverage        *float64      `yaml:"min_coverage" mapstructure:"min_coverage"`               // Percent; nil requires full coverage
	History            HistoryConfig `yaml:"history" mapstructure:"history"`
}

// HistoryConfig controls the sqlite run history.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
	Keep    int    `yaml:"keep" mapstructure:"keep"` // Runs kept after each record, 0 keeps all
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Snapshot:         "toxiconf.json",
		SourcePaths:      []string{"."},
		HeaderExtensions: []string{".h", ".hpp", ".hh", ".hxx", ".ipp", ".tpp", ".inl"},
		ExcludeDirs:      []string{"build", ".git", "third_party", "external"},
		WordsBlacklist:   []string{},
		TypesBlacklist:   []string{},
		Recursive:        true,
		Language:         "cpp",
		History: HistoryConfig{
			Enabled: true,
			Path:    ".toxidoc/history.db",
			Keep:    100,
		},
	}
}
