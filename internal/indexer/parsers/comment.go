package parsers

import (
	"regexp"
	"strings"
)

var (
	// briefCommand matches \brief, @brief and their \short aliases at the start of a line.
	briefCommand = regexp.MustCompile(`^[@\\](brief|short)\b\s*`)

	// anyCommand matches a documentation command such as @param or \return.
	anyCommand = regexp.MustCompile(`(^|\s)[@\\][A-Za-z]+\b`)
)

// isDocComment reports whether a comment uses one of the documentation forms
// (/** */, /*! */, /// or //!).
func isDocComment(text string) bool {
	switch {
	case strings.HasPrefix(text, "/**"):
		return text != "/**/" && !strings.HasPrefix(text, "/***/")
	case strings.HasPrefix(text, "/*!"):
		return true
	case strings.HasPrefix(text, "///"):
		return !strings.HasPrefix(text, "////")
	case strings.HasPrefix(text, "//!"):
		return true
	}
	return false
}

// isTrailingDocComment reports whether a comment documents the declaration before it.
func isTrailingDocComment(text string) bool {
	for _, prefix := range []string{"///<", "//!<", "/**<", "/*!<"} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// CommentLines strips comment markers and decoration from a raw documentation
// comment and returns its text lines. Decorative lines come back empty.
func CommentLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))

		for _, prefix := range []string{"///<", "//!<", "/**<", "/*!<", "///", "//!", "/**", "/*!", "/*", "//"} {
			if strings.HasPrefix(line, prefix) {
				line = line[len(prefix):]
				break
			}
		}
		line = strings.TrimSuffix(strings.TrimSpace(line), "*/")
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") {
			line = strings.TrimSpace(strings.TrimLeft(line, "*"))
		}
		if strings.Trim(line, "*/-=# ") == "" {
			line = ""
		}
		lines = append(lines, line)
	}
	return lines
}

// briefComment extracts the brief description of a documentation comment: the text
// of an explicit \brief command, or else the first paragraph. Either ends at a
// blank line or at the next command. An empty \brief gives an empty brief.
func briefComment(raw string) string {
	if raw == "" {
		return ""
	}
	lines := CommentLines(raw)

	start := -1
	explicit := false
	for i, line := range lines {
		if loc := briefCommand.FindStringIndex(line); loc != nil {
			lines[i] = line[loc[1]:]
			start = i
			explicit = true
			break
		}
	}
	if start < 0 {
		for i, line := range lines {
			if line != "" {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return ""
	}

	var words []string
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			if explicit && i == start {
				continue
			}
			break
		}
		if loc := anyCommand.FindStringIndex(line); loc != nil {
			words = append(words, line[:loc[0]])
			break
		}
		words = append(words, line)
	}
	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}
