package docgen

import (
	"fmt"
	"strings"

	"github.com/Parumezan/toxidoc/internal/entity"
)

// NeedsSkeleton reports whether e has neither a brief nor any raw comment.
func NeedsSkeleton(e entity.Entity) bool {
	return e.State != entity.StateRemoved && !e.IsDocumented() && e.RawComment == ""
}

// Skeleton returns the doc-comment block for e, one line per element, without indentation.
func Skeleton(e entity.Entity) []string {
	lines := []string{"/**", " * @brief"}

	if e.Kind == entity.KindClass {
		lines = append(lines, " *", fmt.Sprintf(" * @class %s", e.Name))
	}

	var args []string
	for _, arg := range e.Arguments {
		if arg != "" {
			args = append(args, fmt.Sprintf(" * @arg %s", arg))
		}
	}
	if len(args) > 0 {
		lines = append(lines, " *")
		lines = append(lines, args...)
	}

	if returnsValue(e.ReturnType) {
		lines = append(lines, " *", fmt.Sprintf(" * @return %s", e.ReturnType))
	}

	return append(lines, " */")
}

func returnsValue(returnType string) bool {
	t := strings.TrimSpace(returnType)
	return t != "" && t != "void"
}
