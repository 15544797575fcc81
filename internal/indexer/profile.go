package indexer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Parumezan/toxidoc/internal/entity"
	"gopkg.in/yaml.v3"
)

// ErrInvalidProfile indicates an annotation profile file could not be used.
var ErrInvalidProfile = errors.New("invalid annotation profile")

// AnnotationProfile maps framework-specific markers on a declaration to the kind the
// declaration really has. Frameworks built on macros (Qt's Q_INVOKABLE, export
// macros, clang annotate attributes) hide the true kind from the parser.
type AnnotationProfile struct {
	Name    string
	Markers map[string]entity.Kind
}

// profileFile is the on-disk form of a profile:
//
//	name: qt
//	markers:
//	  Q_INVOKABLE: Method
//	  qt_invokable: Method
type profileFile struct {
	Name    string            `yaml:"name"`
	Markers map[string]string `yaml:"markers"`
}

// NewAnnotationProfile creates an empty profile.
func NewAnnotationProfile(name string) *AnnotationProfile {
	return &AnnotationProfile{
		Name:    name,
		Markers: make(map[string]entity.Kind),
	}
}

// Map registers a marker. Mapping to entity.KindUnknown suppresses declarations
// carrying the marker.
func (p *AnnotationProfile) Map(marker string, kind entity.Kind) *AnnotationProfile {
	p.Markers[marker] = kind
	return p
}

// Lookup returns the kind mapped to a marker.
func (p *AnnotationProfile) Lookup(marker string) (entity.Kind, bool) {
	kind, ok := p.Markers[marker]
	return kind, ok
}

// ParseAnnotationProfile decodes a YAML profile. source names the input in errors.
func ParseAnnotationProfile(r io.Reader, source string) (*AnnotationProfile, error) {
	var raw profileFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", ErrInvalidProfile, source)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProfile, source, err)
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: %s: missing name", ErrInvalidProfile, source)
	}
	if len(raw.Markers) == 0 {
		return nil, fmt.Errorf("%w: %s: no markers", ErrInvalidProfile, source)
	}

	profile := NewAnnotationProfile(name)
	for marker, kindName := range raw.Markers {
		kind, ok := entity.ParseKind(kindName)
		if !ok {
			return nil, fmt.Errorf("%w: %s: marker %q maps to unknown kind %q (valid: %s)",
				ErrInvalidProfile, source, marker, kindName, strings.Join(entity.KindNames(), ", "))
		}
		profile.Map(marker, kind)
	}
	return profile, nil
}

// LoadAnnotationProfile reads a YAML profile from disk.
func LoadAnnotationProfile(path string) (*AnnotationProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProfile, err)
	}
	return ParseAnnotationProfile(bytes.NewReader(data), path)
}

// LoadAnnotationProfiles reads profiles in order. The order decides which profile
// wins when several map the same marker.
func LoadAnnotationProfiles(paths []string) ([]*AnnotationProfile, error) {
	profiles := make([]*AnnotationProfile, 0, len(paths))
	for _, path := range paths {
		profile, err := LoadAnnotationProfile(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}
