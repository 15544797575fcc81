package indexer

import (
	"context"
	"path/filepath"

	"github.com/Parumezan/toxidoc/internal/entity"
	"github.com/Parumezan/toxidoc/internal/indexer/parsers"
)

// Extractor turns one header file into entities: parse, classify, filter, build.
type Extractor struct {
	frontend   parsers.Frontend
	classifier *Classifier
	filter     *Filter
}

// NewExtractor creates an extractor.
func NewExtractor(frontend parsers.Frontend, classifier *Classifier, filter *Filter) *Extractor {
	return &Extractor{
		frontend:   frontend,
		classifier: classifier,
		filter:     filter,
	}
}

// ExtractFile extracts the entities of a single file in source order. Overload
// indices are left unset. A parse error yields no entities.
func (x *Extractor) ExtractFile(ctx context.Context, path string) ([]entity.Entity, error) {
	unit, err := x.frontend.Parse(ctx, path)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	filePath := filepath.ToSlash(path)
	entities := []entity.Entity{}
	for ev := range unit.Events() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		kind, ok := x.classifier.Classify(ev)
		if !ok {
			continue
		}
		if !x.filter.Accept(kind, ev.Name) {
			continue
		}
		entities = append(entities, BuildEntity(filePath, ev, kind))
	}
	return entities, nil
}
