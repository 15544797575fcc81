package parsers

import (
	"regexp"
	"slices"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// scope is the lexical context of a declaration.
type scope struct {
	className string // enclosing record name, empty at namespace level
	inRecord  bool
	guard     string // include guard macro of the enclosing #ifndef
}

// declWalker turns a C/C++ syntax tree into declaration events.
type declWalker struct {
	source []byte
	path   string
	yield  func(Event) bool
}

var guardCondition = regexp.MustCompile(`^!\s*defined\s*\(?\s*([A-Za-z_]\w*)`)

// walk visits node and returns false once the consumer stopped the iteration.
func (w *declWalker) walk(node *sitter.Node, sc scope) bool {
	switch node.Kind() {
	case "comment", "friend_declaration", "compound_statement", "alias_declaration",
		"using_declaration", "static_assert_declaration", "concept_definition":
		return true
	case "function_definition":
		return w.function(node, node, sc, false)
	case "declaration", "field_declaration":
		return w.declaration(node, node, sc, false)
	case "template_declaration":
		return w.template(node, node, sc)
	case "class_specifier", "struct_specifier", "union_specifier":
		return w.record(node, node, sc, false, "")
	case "enum_specifier":
		return w.enum(node, node)
	case "namespace_definition":
		return w.namespace(node, sc)
	case "type_definition":
		return w.typedef(node, sc)
	case "preproc_def", "preproc_function_def":
		return w.macro(node, sc)
	case "preproc_ifdef":
		if first := node.Child(0); first != nil && first.Kind() == "#ifndef" {
			sc.guard = extractNodeText(node.ChildByFieldName("name"), w.source)
		}
	case "preproc_if":
		cond := strings.TrimSpace(extractNodeText(node.ChildByFieldName("condition"), w.source))
		if m := guardCondition.FindStringSubmatch(cond); m != nil {
			sc.guard = m[1]
		}
	}
	return w.walkChildren(node, sc)
}

func (w *declWalker) walkChildren(node *sitter.Node, sc scope) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if !w.walk(node.NamedChild(uint(i)), sc) {
			return false
		}
	}
	return true
}

// walkType reports records and enums defined inline in a declaration's type
// (struct S {...} s;). They take the declaration's comment and start position.
func (w *declWalker) walkType(node, outer *sitter.Node, sc scope, alias string) bool {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return true
	}
	switch typeNode.Kind() {
	case "class_specifier", "struct_specifier", "union_specifier":
		return w.record(typeNode, outer, sc, false, alias)
	case "enum_specifier":
		return w.enum(typeNode, outer)
	}
	return true
}

// typedef reports the record a typedef defines. An anonymous record takes the
// typedef name (typedef struct {...} point_t;).
func (w *declWalker) typedef(node *sitter.Node, sc scope) bool {
	alias := ""
	if decls := declarators(node); len(decls) > 0 {
		if nameNode, _ := declaratorName(decls[0], w.source); nameNode != nil {
			alias = extractNodeText(nameNode, w.source)
		}
	}
	return w.walkType(node, node, sc, alias)
}

func (w *declWalker) emit(ev Event, outer, nameNode *sitter.Node) bool {
	ev.File = w.path
	ev.InMainFile = true
	ev.RawComment = w.docComment(outer)
	ev.BriefComment = briefComment(ev.RawComment)
	if nameNode != nil {
		ev.Attributes = extractMarkers(w.markerRegion(outer, nameNode))
	}
	return w.yield(ev)
}

// template handles template_declaration, reporting the templated item with the
// extent and comment of the whole template.
func (w *declWalker) template(node, outer *sitter.Node, sc scope) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		var ok bool
		switch child.Kind() {
		case "function_definition":
			ok = w.function(child, outer, sc, true)
		case "declaration", "field_declaration":
			ok = w.declaration(child, outer, sc, true)
		case "class_specifier", "struct_specifier", "union_specifier":
			ok = w.record(child, outer, sc, true, "")
		case "template_declaration":
			ok = w.template(child, outer, sc)
		default:
			continue
		}
		if !ok {
			return false
		}
	}
	return true
}

func (w *declWalker) function(node, outer *sitter.Node, sc scope, templated bool) bool {
	fn := functionDeclarator(node.ChildByFieldName("declarator"))
	if fn == nil {
		return true
	}
	return w.functionEvent(node, outer, fn, sc, templated)
}

func (w *declWalker) declaration(node, outer *sitter.Node, sc scope, templated bool) bool {
	if !w.walkType(node, outer, sc, "") {
		return false
	}

	for _, decl := range declarators(node) {
		var ok bool
		if fn := functionDeclarator(decl); fn != nil {
			ok = w.functionEvent(node, outer, fn, sc, templated)
		} else {
			ok = w.variableEvent(node, outer, decl, sc)
		}
		if !ok {
			return false
		}
	}
	return true
}

func (w *declWalker) functionEvent(node, outer, fn *sitter.Node, sc scope, templated bool) bool {
	nameNode, qualifier := declaratorName(fn.ChildByFieldName("declarator"), w.source)
	if nameNode == nil {
		return true
	}
	name := extractNodeText(nameNode, w.source)

	kind := DeclFunction
	switch {
	case nameNode.Kind() == "destructor_name":
		kind = DeclDestructor
	case isConstructor(node, name, qualifier, sc):
		kind = DeclConstructor
	case sc.inRecord || qualifier != "":
		kind = DeclCXXMethod
	}

	ev := Event{
		Name:      name,
		Extent:    extentOf(outer, node),
		Arguments: w.parameterNames(fn.ChildByFieldName("parameters")),
	}
	if kind != DeclConstructor && kind != DeclDestructor {
		ev.ReturnType = w.returnType(node, node.ChildByFieldName("declarator"))
	}
	if templated {
		kind = DeclFunctionTemplate
	}
	ev.Kind = kind
	return w.emit(ev, outer, nameNode)
}

func (w *declWalker) variableEvent(node, outer, decl *sitter.Node, sc scope) bool {
	nameNode, _ := declaratorName(decl, w.source)
	if nameNode == nil {
		return true
	}

	kind := DeclVar
	if node.Kind() == "field_declaration" && !isStatic(node, w.source) {
		kind = DeclField
	}
	if sc.inRecord && node.Kind() == "declaration" && !isStatic(node, w.source) {
		kind = DeclField
	}

	ev := Event{
		Kind:   kind,
		Name:   extractNodeText(nameNode, w.source),
		Extent: extentOf(outer, node),
	}
	return w.emit(ev, outer, nameNode)
}

func (w *declWalker) record(node, outer *sitter.Node, sc scope, templated bool, alias string) bool {
	body := node.ChildByFieldName("body")
	if body == nil {
		// Forward declaration or elaborated type reference
		return true
	}

	nameNode := node.ChildByFieldName("name")
	name := extractNodeText(nameNode, w.source)
	if nameNode == nil && alias != "" {
		name = alias
	}
	if name != "" {
		var kind DeclKind
		switch node.Kind() {
		case "class_specifier":
			kind = DeclClass
			if templated {
				kind = DeclClassTemplate
			}
		case "struct_specifier":
			kind = DeclStruct
		default:
			kind = DeclUnion
		}
		ev := Event{
			Kind:   kind,
			Name:   name,
			Extent: extentOf(outer, node),
		}
		markerEnd := nameNode
		if markerEnd == nil {
			markerEnd = body
		}
		if !w.emit(ev, outer, markerEnd) {
			return false
		}
	}

	inner := scope{className: name, inRecord: true, guard: sc.guard}
	if name == "" {
		// Members of an anonymous record belong to the enclosing one
		inner.className = sc.className
	}
	return w.walkChildren(body, inner)
}

func (w *declWalker) enum(node, outer *sitter.Node) bool {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || node.ChildByFieldName("body") == nil {
		return true
	}
	ev := Event{
		Kind:   DeclEnum,
		Name:   extractNodeText(nameNode, w.source),
		Extent: extentOf(outer, node),
	}
	return w.emit(ev, outer, nameNode)
}

func (w *declWalker) namespace(node *sitter.Node, sc scope) bool {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		ev := Event{
			Kind:   DeclNamespace,
			Name:   extractNodeText(nameNode, w.source),
			Extent: extentOf(node, node),
		}
		if !w.emit(ev, node, nameNode) {
			return false
		}
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return true
	}
	return w.walkChildren(body, scope{guard: sc.guard})
}

func (w *declWalker) macro(node *sitter.Node, sc scope) bool {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return true
	}
	name := extractNodeText(nameNode, w.source)
	value := node.ChildByFieldName("value")

	if node.Kind() == "preproc_def" && value == nil && name == sc.guard {
		return true
	}

	// The node includes the trailing newline, end on the last token instead
	end := nameNode
	if params := node.ChildByFieldName("parameters"); params != nil {
		end = params
	}
	if value != nil {
		end = value
	}

	ev := Event{
		Kind:   DeclMacroDefinition,
		Name:   name,
		Extent: extentOf(node, end),
	}
	return w.emit(ev, node, nil)
}

// declarators returns the declarator children of a declaration, skipping its type,
// specifiers and any default member initializer.
func declarators(node *sitter.Node) []*sitter.Node {
	typeNode := node.ChildByFieldName("type")
	var result []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		kind := child.Kind()
		if kind == "=" || kind == "bitfield_clause" || kind == "initializer_list" {
			break
		}
		if typeNode != nil && child.StartByte() == typeNode.StartByte() && child.EndByte() == typeNode.EndByte() {
			continue
		}
		switch kind {
		case "identifier", "field_identifier", "function_declarator", "pointer_declarator",
			"reference_declarator", "init_declarator", "array_declarator", "parenthesized_declarator",
			"attributed_declarator", "qualified_identifier", "operator_name", "destructor_name",
			"template_function", "type_identifier":
			result = append(result, child)
		}
	}
	return result
}

// innerDeclarator unwraps one level of declarator nesting.
func innerDeclarator(node *sitter.Node) *sitter.Node {
	if inner := node.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
		child := node.NamedChild(uint(i))
		if child.Kind() != "attribute_declaration" && child.Kind() != "type_qualifier" {
			return child
		}
	}
	return nil
}

// functionDeclarator finds the function_declarator a declarator wraps, if any.
// Function pointers (int (*fp)(int)) are variables and yield nil.
func functionDeclarator(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "function_declarator":
			if inner := node.ChildByFieldName("declarator"); inner != nil && inner.Kind() == "parenthesized_declarator" {
				return nil
			}
			return node
		case "pointer_declarator", "reference_declarator", "attributed_declarator":
			node = innerDeclarator(node)
		default:
			return nil
		}
	}
	return nil
}

// declaratorName resolves the name node of a declarator and, for qualified names,
// the scope text before the final "::".
func declaratorName(node *sitter.Node, source []byte) (*sitter.Node, string) {
	qualifier := ""
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "destructor_name", "operator_name", "operator_cast", "type_identifier":
			return node, qualifier
		case "qualified_identifier":
			if scopeNode := node.ChildByFieldName("scope"); scopeNode != nil {
				qualifier = lastScopeSegment(extractNodeText(scopeNode, source))
			}
			node = node.ChildByFieldName("name")
		case "template_function":
			node = node.ChildByFieldName("name")
		case "pointer_declarator", "reference_declarator", "init_declarator", "array_declarator",
			"function_declarator", "parenthesized_declarator", "attributed_declarator":
			node = innerDeclarator(node)
		default:
			return nil, qualifier
		}
	}
	return nil, qualifier
}

// lastScopeSegment returns the innermost name of a scope, without template arguments.
func lastScopeSegment(text string) string {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	stripped := b.String()
	if i := strings.LastIndex(stripped, "::"); i >= 0 {
		stripped = stripped[i+2:]
	}
	return strings.TrimSpace(stripped)
}

// isConstructor reports whether a function without return type is named after
// its class, either inside the class body or through a qualified definition.
func isConstructor(node *sitter.Node, name, qualifier string, sc scope) bool {
	if node.ChildByFieldName("type") != nil {
		return false
	}
	if qualifier != "" {
		return name == qualifier
	}
	return sc.inRecord && name == lastScopeSegment(sc.className)
}

func isStatic(node *sitter.Node, source []byte) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child.Kind() == "storage_class_specifier" && extractNodeText(child, source) == "static" {
			return true
		}
	}
	return false
}

// parameterNames lists parameter names in order. Unnamed parameters yield an empty
// string, a lone (void) yields no parameters and variadic parameters are skipped.
func (w *declWalker) parameterNames(params *sitter.Node) []string {
	if params == nil {
		return nil
	}

	var names []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(uint(i))
		switch param.Kind() {
		case "parameter_declaration", "optional_parameter_declaration":
		default:
			continue
		}

		decl := param.ChildByFieldName("declarator")
		if decl == nil {
			if extractNodeText(param.ChildByFieldName("type"), w.source) == "void" {
				continue
			}
			names = append(names, "")
			continue
		}
		nameNode, _ := declaratorName(decl, w.source)
		names = append(names, extractNodeText(nameNode, w.source))
	}
	return names
}

// returnType spells the return type from the leading qualifiers, the type specifier
// and the pointer and reference operators wrapping the function declarator.
func (w *declWalker) returnType(node, decl *sitter.Node) string {
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}

	var parts []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child.Kind() == "type_qualifier" && child.StartByte() < typeNode.StartByte() {
			parts = append(parts, extractNodeText(child, w.source))
		}
	}
	parts = append(parts, strings.Join(strings.Fields(extractNodeText(typeNode, w.source)), " "))
	base := strings.Join(parts, " ")

	var ops strings.Builder
loop:
	for d := decl; d != nil && d.Kind() != "function_declarator"; d = innerDeclarator(d) {
		switch d.Kind() {
		case "pointer_declarator":
			ops.WriteString("*")
			if q := findChildByType(d, "type_qualifier"); q != nil {
				ops.WriteString(extractNodeText(q, w.source))
			}
		case "reference_declarator":
			if op := d.Child(0); op != nil {
				ops.WriteString(extractNodeText(op, w.source))
			}
		case "attributed_declarator":
		default:
			break loop
		}
	}
	if ops.Len() == 0 {
		return base
	}
	return base + " " + ops.String()
}

// docComment collects the documentation comment attached to a declaration: the run
// of doc-style comments directly above it, or a trailing ///< comment on its last line.
func (w *declWalker) docComment(node *sitter.Node) string {
	var parts []string
	nextRow := int(node.StartPosition().Row)
	for prev := node.PrevSibling(); prev != nil && prev.Kind() == "comment"; prev = prev.PrevSibling() {
		text := extractNodeText(prev, w.source)
		if !isDocComment(text) || isTrailingDocComment(text) {
			break
		}
		if nextRow-lastRow(prev) > 1 {
			break
		}
		// A comment sharing a row with preceding code belongs to that code
		if before := prev.PrevSibling(); before != nil && before.IsNamed() && before.Kind() != "comment" &&
			lastRow(before) == int(prev.StartPosition().Row) {
			break
		}
		parts = append(parts, text)
		nextRow = int(prev.StartPosition().Row)
	}

	if len(parts) == 0 {
		return w.trailingComment(node)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "\n")
}

func (w *declWalker) trailingComment(node *sitter.Node) string {
	next := node.NextSibling()
	if next == nil || next.Kind() != "comment" || int(next.StartPosition().Row) != lastRow(node) {
		return ""
	}
	text := extractNodeText(next, w.source)
	if !isTrailingDocComment(text) {
		return ""
	}
	return text
}

// markerRegion returns the source between the start of a declaration and its name,
// where export macros and attributes live. A directly preceding ERROR node is
// included since unknown macros often make the parser split the declaration.
func (w *declWalker) markerRegion(outer, nameNode *sitter.Node) string {
	start := outer.StartByte()
	if prev := outer.PrevSibling(); prev != nil && prev.Kind() == "ERROR" &&
		lastRow(prev) >= int(outer.StartPosition().Row)-1 {
		start = prev.StartByte()
	}
	end := nameNode.StartByte()
	if end <= start {
		return ""
	}
	return string(w.source[start:end])
}
