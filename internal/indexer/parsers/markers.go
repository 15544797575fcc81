package parsers

import (
	"regexp"
	"strings"
)

var (
	annotateMarker  = regexp.MustCompile(`annotate\s*\(\s*"((?:[^"\\]|\\.)*)"`)
	attributeMarker = regexp.MustCompile(`\[\[(.*?)\]\]`)
	gnuAttribute    = regexp.MustCompile(`__attribute__\s*\(\(.*?\)\)`)
	stringLiteral   = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	macroMarker     = regexp.MustCompile(`\b[A-Z][A-Z0-9_]+\b`)
)

// extractMarkers finds the textual markers in the source preceding a declaration's
// name: annotate("...") strings, [[attribute]] names and ALL_CAPS macro tokens
// such as export or Qt invokable macros. Order of first appearance is kept and
// duplicates are dropped.
func extractMarkers(region string) []string {
	if strings.TrimSpace(region) == "" {
		return nil
	}

	var markers []string
	seen := make(map[string]bool)
	add := func(m string) {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		markers = append(markers, m)
	}

	for _, m := range annotateMarker.FindAllStringSubmatch(region, -1) {
		add(m[1])
	}

	for _, m := range attributeMarker.FindAllStringSubmatch(region, -1) {
		body := m[1]
		if after, ok := strings.CutPrefix(strings.TrimSpace(body), "using "); ok {
			if _, rest, found := strings.Cut(after, ":"); found {
				body = rest
			}
		}
		for _, item := range splitTopLevel(body) {
			name, _, _ := strings.Cut(item, "(")
			if strings.TrimSpace(name) == "clang::annotate" {
				continue
			}
			add(name)
		}
	}

	rest := attributeMarker.ReplaceAllString(region, " ")
	rest = gnuAttribute.ReplaceAllString(rest, " ")
	rest = stringLiteral.ReplaceAllString(rest, " ")
	for _, m := range macroMarker.FindAllString(rest, -1) {
		add(m)
	}

	return markers
}

// splitTopLevel splits an attribute list on commas outside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
