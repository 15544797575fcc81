package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/fsutil"
	"github.com/sirupsen/logrus"
)

var (
	// ErrSnapshotLoad indicates the previous snapshot is missing, unreadable or
	// malformed. Callers continue from an empty snapshot.
	ErrSnapshotLoad = errors.New("snapshot load failed")

	// ErrSnapshotSave indicates the new snapshot could not be written. It fails the run.
	ErrSnapshotSave = errors.New("snapshot save failed")
)

// Store reads and writes a snapshot file.
type Store struct {
	path   string
	codec  Codec
	logger *logrus.Logger
}

// NewStore creates a store for path, choosing the format from its extension.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Store{path: path, codec: codec, logger: logger}, nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the snapshot file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the snapshot. Errors wrap ErrSnapshotLoad. Entities come back as a
// baseline (see Baseline) and nil lists are replaced by empty ones.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotLoad, err)
	}

	snap := Empty()
	if err := s.codec.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("%w: %s: invalid %s: %w", ErrSnapshotLoad, s.path, s.codec.Name(), err)
	}
	normalize(snap)
	snap.Entities = Baseline(snap.Entities)

	s.logger.WithFields(logrus.Fields{
		"file":     s.path,
		"entities": len(snap.Entities),
	}).Debug("loaded snapshot")
	return snap, nil
}

// LoadOrEmpty reads the snapshot, degrading to an empty one when it cannot be
// loaded. The load error is returned alongside for reporting.
func (s *Store) LoadOrEmpty() (*Snapshot, error) {
	snap, err := s.Load()
	if err != nil {
		return Empty(), err
	}
	return snap, nil
}

// Save writes snap atomically, stamped with now. Removed entities are never
// written. snap itself is not modified. Errors wrap ErrSnapshotSave.
func (s *Store) Save(snap *Snapshot, now time.Time) error {
	out := *snap
	out.LastSaved = now.Unix()
	out.Entities = Persistable(snap.Entities)
	normalize(&out)

	data, err := s.codec.Marshal(&out)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", ErrSnapshotSave, s.codec.Name(), err)
	}

	if err := fsutil.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotSave, err)
	}

	s.logger.WithFields(logrus.Fields{
		"file":     s.path,
		"entities": len(out.Entities),
	}).Debug("saved snapshot")
	return nil
}

func normalize(snap *Snapshot) {
	for _, list := range []*[]string{
		&snap.ExcludeDirs,
		&snap.HeaderExtensions,
		&snap.WordsBlacklist,
		&snap.TypesBlacklist,
		&snap.SourcePaths,
	} {
		if *list == nil {
			*list = []string{}
		}
	}
	if snap.Entities == nil {
		snap.Entities = []entity.Entity{}
	}
	for i := range snap.Entities {
		if snap.Entities[i].Arguments == nil {
			snap.Entities[i].Arguments = []string{}
		}
	}
}
