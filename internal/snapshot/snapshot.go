// Package snapshot persists the entity set of a run and reconciles it with the next one.
package snapshot

import (
	"time"

	"github.com/Parumezan/toxidoc/internal/entity"
)

// Snapshot is the persisted result of a previous run: the run's settings and its
// merged entity set.
type Snapshot struct {
	LastSaved        int64           `json:"last_saved_timestamp" yaml:"last_saved_timestamp" toml:"last_saved_timestamp"`
	ExcludeDirs      []string        `json:"exclude_dirs" yaml:"exclude_dirs" toml:"exclude_dirs"`
	HeaderExtensions []string        `json:"header_extensions" yaml:"header_extensions" toml:"header_extensions"`
	WordsBlacklist   []string        `json:"words_blacklist" yaml:"words_blacklist" toml:"words_blacklist"`
	TypesBlacklist   []string        `json:"types_blacklist" yaml:"types_blacklist" toml:"types_blacklist"`
	SourcePaths      []string        `json:"source_paths" yaml:"source_paths" toml:"source_paths"`
	Entities         []entity.Entity `json:"entities" yaml:"entities" toml:"entities"`
}

// Empty returns a snapshot with no settings and no entities.
func Empty() *Snapshot {
	return &Snapshot{
		ExcludeDirs:      []string{},
		HeaderExtensions: []string{},
		WordsBlacklist:   []string{},
		TypesBlacklist:   []string{},
		SourcePaths:      []string{},
		Entities:         []entity.Entity{},
	}
}

// LastSavedTime returns the save time, or the zero time for a snapshot never saved.
func (s *Snapshot) LastSavedTime() time.Time {
	if s.LastSaved == 0 {
		return time.Time{}
	}
	return time.Unix(s.LastSaved, 0)
}

// Settings returns the persisted settings as a flat map keyed like the file, for
// layering under command-line flags. Empty lists are omitted.
func (s *Snapshot) Settings() map[string]any {
	settings := make(map[string]any)
	set := func(key string, values []string) {
		if len(values) > 0 {
			settings[key] = values
		}
	}
	set("exclude_dirs", s.ExcludeDirs)
	set("header_extensions", s.HeaderExtensions)
	set("words_blacklist", s.WordsBlacklist)
	set("types_blacklist", s.TypesBlacklist)
	set("source_paths", s.SourcePaths)
	return settings
}
