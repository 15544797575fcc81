package parsers

import (
	"context"
	"fmt"
	"iter"
	"os"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// Supported grammars.
const (
	LanguageC   = "c"
	LanguageCpp = "cpp"
)

// TreeSitterFrontend parses C and C++ headers with tree-sitter.
type TreeSitterFrontend struct {
	language *sitter.Language
	lang     string
	strict   bool
}

// NewFrontend creates a tree-sitter frontend for the given grammar ("cpp" when empty).
// In strict mode a file containing syntax errors is reported as a parse failure
// instead of being extracted on a best-effort basis.
func NewFrontend(lang string, strict bool) (*TreeSitterFrontend, error) {
	var ptr unsafe.Pointer
	switch lang {
	case LanguageCpp, "":
		lang = LanguageCpp
		ptr = cpp.Language()
	case LanguageC:
		ptr = c.Language()
	default:
		return nil, fmt.Errorf("%w: unsupported language %q", ErrFrontendUnavailable, lang)
	}

	language := sitter.NewLanguage(ptr)
	if language == nil {
		return nil, fmt.Errorf("%w: failed to load %s grammar", ErrFrontendUnavailable, lang)
	}

	// Probe once so an ABI mismatch surfaces here and not on every file
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrontendUnavailable, err)
	}

	return &TreeSitterFrontend{
		language: language,
		lang:     lang,
		strict:   strict,
	}, nil
}

// Language returns the grammar name in use.
func (f *TreeSitterFrontend) Language() string {
	return f.lang
}

// Parse reads and parses a header file. The returned unit must be closed.
func (f *TreeSitterFrontend) Parse(ctx context.Context, filePath string) (Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParseFailure, filePath, err)
	}

	// Parsers are not safe for concurrent use, one per file
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(f.language); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFrontendUnavailable, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s: parser returned no tree", ErrParseFailure, filePath)
	}

	if f.strict && tree.RootNode().HasError() {
		pos := firstErrorPosition(tree.RootNode())
		tree.Close()
		return nil, fmt.Errorf("%w: %s:%d:%d: syntax error", ErrParseFailure, filePath, pos.Row+1, pos.Column+1)
	}

	return &treeSitterUnit{
		tree:   tree,
		source: source,
		path:   filePath,
	}, nil
}

type treeSitterUnit struct {
	tree   *sitter.Tree
	source []byte
	path   string
}

// Events walks the syntax tree lazily. Stopping the iteration stops the walk.
func (u *treeSitterUnit) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		w := &declWalker{
			source: u.source,
			path:   u.path,
			yield:  yield,
		}
		w.walk(u.tree.RootNode(), scope{})
	}
}

func (u *treeSitterUnit) Close() {
	u.tree.Close()
}

// firstErrorPosition finds the first ERROR or MISSING node in document order.
func firstErrorPosition(root *sitter.Node) sitter.Point {
	pos := root.StartPosition()
	found := false
	walkTree(root, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.IsError() || n.IsMissing() {
			pos = n.StartPosition()
			found = true
			return false
		}
		return n.HasError()
	})
	return pos
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// lastRow is the row of the last character of a node. Preprocessor nodes swallow
// their trailing newline, which would otherwise push them onto the next row.
func lastRow(node *sitter.Node) int {
	end := node.EndPosition()
	if end.Column == 0 && end.Row > node.StartPosition().Row {
		return int(end.Row) - 1
	}
	return int(end.Row)
}

// extentOf converts tree-sitter's 0-based points into a 1-based extent.
func extentOf(start, end *sitter.Node) Extent {
	s := start.StartPosition()
	e := end.EndPosition()
	return Extent{
		StartLine:   int(s.Row) + 1,
		StartColumn: int(s.Column) + 1,
		EndLine:     int(e.Row) + 1,
		EndColumn:   int(e.Column) + 1,
	}
}
