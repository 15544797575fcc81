package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDocComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"/** Javadoc. */", true},
		{"/*! Qt style. */", true},
		{"/// Triple slash.", true},
		{"//! Bang.", true},
		{"///< Trailing.", true},
		{"// Plain.", false},
		{"/* Plain block. */", false},
		{"/**/", false},
		{"//// Banner.", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isDocComment(tt.text), tt.text)
	}
}

func TestBriefComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"single line", "/// Opens a file.", "Opens a file."},
		{"javadoc first paragraph", "/**\n * Opens a file.\n * Fails if missing.\n *\n * Details.\n */", "Opens a file. Fails if missing."},
		{"explicit brief", "/**\n * @brief Opens a file.\n *\n * More text.\n */", "Opens a file."},
		{"backslash brief", "/*! \\brief Closes it. */", "Closes it."},
		{"short alias", "/// @short Short one.", "Short one."},
		{"brief on next line", "/**\n * @brief\n * Next line.\n */", "Next line."},
		{"empty brief", "/** @brief */", ""},
		{"stops at command", "/**\n * Computes.\n * @return value\n */", "Computes."},
		{"stops at inline command", "/// Sums values. @param a first", "Sums values."},
		{"merged line comments", "/// First line\n/// second line.", "First line second line."},
		{"decorative borders", "/*************\n * Boxed.\n *************/", "Boxed."},
		{"trailing member", "///< Number of sides.", "Number of sides."},
		{"only commands", "/** @param x the x */", ""},
		{"email is not a command", "/// Mail admin@example.com now.", "Mail admin@example.com now."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, briefComment(tt.raw))
		})
	}
}

func TestCommentLines(t *testing.T) {
	t.Parallel()

	lines := CommentLines("/**\n * Line one.\n *\n * Line two.\n */")
	assert.Equal(t, []string{"", "Line one.", "", "Line two.", ""}, lines)
}
