package parsers

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrFrontendUnavailable indicates the parser could not be initialised at all.
	// It is fatal for a whole run.
	ErrFrontendUnavailable = errors.New("frontend unavailable")

	// ErrParseFailure indicates a single file could not be parsed. The file is skipped.
	ErrParseFailure = errors.New("parse failure")
)

// DeclKind is the frontend's native declaration kind, before classification.
type DeclKind int

const (
	DeclOther DeclKind = iota
	DeclFunction
	DeclCXXMethod
	DeclConstructor
	DeclDestructor
	DeclFunctionTemplate
	DeclClass
	DeclClassTemplate
	DeclStruct
	DeclUnion
	DeclEnum
	DeclVar
	DeclField
	DeclNamespace
	DeclMacroDefinition
	DeclTypedef
)

var declKindNames = [...]string{
	DeclOther:            "Other",
	DeclFunction:         "FunctionDecl",
	DeclCXXMethod:        "CXXMethod",
	DeclConstructor:      "Constructor",
	DeclDestructor:       "Destructor",
	DeclFunctionTemplate: "FunctionTemplate",
	DeclClass:            "ClassDecl",
	DeclClassTemplate:    "ClassTemplate",
	DeclStruct:           "StructDecl",
	DeclUnion:            "UnionDecl",
	DeclEnum:             "EnumDecl",
	DeclVar:              "VarDecl",
	DeclField:            "FieldDecl",
	DeclNamespace:        "Namespace",
	DeclMacroDefinition:  "MacroDefinition",
	DeclTypedef:          "TypedefDecl",
}

func (k DeclKind) String() string {
	if k < 0 || int(k) >= len(declKindNames) {
		return declKindNames[DeclOther]
	}
	return declKindNames[k]
}

// IsFunctionLike reports whether the declaration has a parameter list.
func (k DeclKind) IsFunctionLike() bool {
	switch k {
	case DeclFunction, DeclCXXMethod, DeclConstructor, DeclDestructor, DeclFunctionTemplate:
		return true
	}
	return false
}

// Extent is a 1-based source range. The end column points just past the last character.
type Extent struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Event is one declaration reported by the frontend.
type Event struct {
	Kind         DeclKind
	Name         string
	File         string
	InMainFile   bool // false for declarations pulled in from other files
	Extent       Extent
	RawComment   string
	BriefComment string
	Arguments    []string // only for function-like kinds
	ReturnType   string   // only for function-like kinds
	Attributes   []string // textual markers attached to the declaration
}

// Unit is a parsed file. Events are produced lazily in source order, parents before
// their members.
type Unit interface {
	Events() iter.Seq[Event]
	Close()
}

// Frontend turns a header file into a sequence of declaration events.
type Frontend interface {
	// Parse parses the file at path. A returned error wraps ErrParseFailure.
	Parse(ctx context.Context, path string) (Unit, error)
}
