package indexer

import (
	"strings"

	"github.com/Parumezan/toxidoc/internal/entity"
)

// Filter rejects classified declarations by kind or by name.
type Filter struct {
	kinds map[string]bool
	words []string
}

// NewFilter creates a filter. typesBlacklist holds canonical kind names compared
// for equality; wordsBlacklist holds substrings matched case-sensitively against
// the declaration name. Empty entries are ignored.
func NewFilter(typesBlacklist, wordsBlacklist []string) *Filter {
	f := &Filter{kinds: make(map[string]bool, len(typesBlacklist))}
	for _, t := range typesBlacklist {
		if t = strings.TrimSpace(t); t != "" {
			f.kinds[t] = true
		}
	}
	for _, w := range wordsBlacklist {
		if w != "" {
			f.words = append(f.words, w)
		}
	}
	return f
}

// Accept reports whether a declaration of the given kind and name should become an entity.
func (f *Filter) Accept(kind entity.Kind, name string) bool {
	if f.kinds[kind.String()] {
		return false
	}
	for _, w := range f.words {
		if strings.Contains(name, w) {
			return false
		}
	}
	return true
}
