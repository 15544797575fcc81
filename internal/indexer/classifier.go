package indexer

import (
	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/indexer/parsers"
)

// nativeKinds maps the frontend's declaration kinds to entity kinds.
// Anything absent (fields, unions, typedefs) classifies as Unknown.
var nativeKinds = map[parsers.DeclKind]entity.Kind{
	parsers.DeclFunction:         entity.KindFunction,
	parsers.DeclCXXMethod:        entity.KindMethod,
	parsers.DeclConstructor:      entity.KindConstructor,
	parsers.DeclDestructor:       entity.KindDestructor,
	parsers.DeclFunctionTemplate: entity.KindFunctionTemplate,
	parsers.DeclClass:            entity.KindClass,
	parsers.DeclClassTemplate:    entity.KindClass,
	parsers.DeclStruct:           entity.KindStruct,
	parsers.DeclEnum:             entity.KindEnum,
	parsers.DeclVar:              entity.KindVariable,
	parsers.DeclNamespace:        entity.KindNamespace,
	parsers.DeclMacroDefinition:  entity.KindMacro,
}

// Classifier turns declaration events into entity kinds.
type Classifier struct {
	profiles []*AnnotationProfile
}

// NewClassifier creates a classifier consulting the given profiles in order.
func NewClassifier(profiles ...*AnnotationProfile) *Classifier {
	return &Classifier{profiles: profiles}
}

// Classify returns the entity kind for an event. ok is false when the event must be
// dropped: it lies outside the file being processed or its kind is Unknown.
//
// A profile marker wins over the native kind. Profiles are consulted in order and,
// within a profile, attributes in the order the frontend reported them.
func (c *Classifier) Classify(ev parsers.Event) (kind entity.Kind, ok bool) {
	if !ev.InMainFile {
		return entity.KindUnknown, false
	}

	if kind, found := c.override(ev.Attributes); found {
		return kind, kind != entity.KindUnknown
	}

	kind, found := nativeKinds[ev.Kind]
	if !found {
		return entity.KindUnknown, false
	}
	return kind, true
}

func (c *Classifier) override(attributes []string) (entity.Kind, bool) {
	if len(attributes) == 0 {
		return entity.KindUnknown, false
	}
	for _, profile := range c.profiles {
		for _, attr := range attributes {
			if kind, ok := profile.Lookup(attr); ok {
				return kind, true
			}
		}
	}
	return entity.KindUnknown, false
}
