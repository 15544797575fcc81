package indexer

import "github.com/Parumezan/toxidoc/internal/entity"

type overloadGroup struct {
	filePath string
	name     string
	kind     entity.Kind
}

// AssignOverloads numbers entities sharing a file, name and kind 0..n-1 in slice
// order. It runs once over a whole run's entities, after every file is extracted,
// and overwrites any index already present.
func AssignOverloads(entities []entity.Entity) {
	next := make(map[overloadGroup]int)
	for i := range entities {
		e := &entities[i]
		group := overloadGroup{filePath: e.FilePath, name: e.Name, kind: e.Kind}
		e.OverloadIndex = next[group]
		next[group]++
	}
}
