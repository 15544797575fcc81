package indexer

import (
	"slices"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/indexer/parsers"
)

// BuildEntity assembles an accepted event into an entity of the given kind. Arguments
// and return type are only kept for function-like kinds. The overload index is left
// unset for AssignOverloads.
func BuildEntity(filePath string, ev parsers.Event, kind entity.Kind) entity.Entity {
	e := entity.Entity{
		FilePath:      filePath,
		Name:          ev.Name,
		Kind:          kind,
		OverloadIndex: entity.UnsetOverload,
		StartLine:     ev.Extent.StartLine,
		StartColumn:   ev.Extent.StartColumn,
		EndLine:       ev.Extent.EndLine,
		EndColumn:     ev.Extent.EndColumn,
		Arguments:     []string{},
		RawComment:    ev.RawComment,
		BriefComment:  ev.BriefComment,
		State:         entity.StateUnchanged,
	}
	if kind.IsFunctionLike() {
		if ev.Arguments != nil {
			e.Arguments = slices.Clone(ev.Arguments)
		}
		e.ReturnType = ev.ReturnType
	}
	return e
}
