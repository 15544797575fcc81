// Package entity defines the documentable declaration model shared by extraction,
// snapshot reconciliation and coverage evaluation.
package entity

import (
	"fmt"
	"slices"
	"strings"
)

// UnsetOverload marks an entity whose overload index has not been assigned yet.
const UnsetOverload = -1

// Key identifies an entity across runs. Location and comment text are deliberately
// absent so that moving a declaration never changes its identity.
type Key struct {
	FilePath      string
	Name          string
	Kind          Kind
	OverloadIndex int
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.FilePath, k.Name, k.Kind, k.OverloadIndex)
}

// Entity is a documentable declaration extracted from a header file.
type Entity struct {
	// Identity
	FilePath      string `json:"file_path" yaml:"file_path" toml:"file_path"`
	Name          string `json:"name" yaml:"name" toml:"name"`
	Kind          Kind   `json:"type" yaml:"type" toml:"type"`
	OverloadIndex int    `json:"overload_index" yaml:"overload_index" toml:"overload_index"`

	// Structure, re-derived on every extraction
	StartLine    int      `json:"start_line" yaml:"start_line" toml:"start_line"`
	StartColumn  int      `json:"start_column" yaml:"start_column" toml:"start_column"`
	EndLine      int      `json:"end_line" yaml:"end_line" toml:"end_line"`
	EndColumn    int      `json:"end_column" yaml:"end_column" toml:"end_column"`
	Arguments    []string `json:"arguments" yaml:"arguments" toml:"arguments"`
	ReturnType   string   `json:"return_type" yaml:"return_type" toml:"return_type"`
	RawComment   string   `json:"raw_comment" yaml:"raw_comment" toml:"raw_comment"`
	BriefComment string   `json:"debrief" yaml:"debrief" toml:"debrief"`

	State State `json:"state" yaml:"state" toml:"state"`
}

// Key returns the identity key of the entity.
func (e *Entity) Key() Key {
	return Key{
		FilePath:      e.FilePath,
		Name:          e.Name,
		Kind:          e.Kind,
		OverloadIndex: e.OverloadIndex,
	}
}

// IsDocumented reports whether the entity carries a non-empty brief comment.
func (e *Entity) IsDocumented() bool {
	return e.BriefComment != ""
}

// Clone returns a deep copy of the entity.
func (e Entity) Clone() Entity {
	e.Arguments = slices.Clone(e.Arguments)
	return e
}

// Update overwrites e's structural and comment fields with other's values.
//
// Only a change to the file path, name, kind, raw comment, brief comment or argument
// list counts as a modification; a pure relocation does not. An Unchanged entity that
// was modified becomes Modified; any other state is kept as is. The return value
// reports whether a tracked field changed.
func (e *Entity) Update(other *Entity) bool {
	modified := false
	track := func(changed bool) {
		if changed {
			modified = true
		}
	}

	track(e.FilePath != other.FilePath)
	e.FilePath = other.FilePath
	track(e.Name != other.Name)
	e.Name = other.Name
	track(e.Kind != other.Kind)
	e.Kind = other.Kind

	e.StartLine = other.StartLine
	e.StartColumn = other.StartColumn
	e.EndLine = other.EndLine
	e.EndColumn = other.EndColumn
	e.ReturnType = other.ReturnType

	track(e.RawComment != other.RawComment)
	e.RawComment = other.RawComment
	track(e.BriefComment != other.BriefComment)
	e.BriefComment = other.BriefComment
	track(!slices.Equal(e.Arguments, other.Arguments))
	e.Arguments = slices.Clone(other.Arguments)

	if modified && e.State == StateUnchanged {
		e.State = StateModified
	}
	return modified
}

// Location renders the entity start position as path:line:column.
func (e *Entity) Location() string {
	return fmt.Sprintf("%s:%d:%d", e.FilePath, e.StartLine, e.StartColumn)
}

// String renders a multi-line human readable description of the entity.
func (e *Entity) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", e.Location())
	fmt.Fprintf(&b, "Type: %s\n", e.Kind)
	fmt.Fprintf(&b, "Object Name: %s\n", e.Name)
	fmt.Fprintf(&b, "Overload Index: %d\n", e.OverloadIndex)
	for i, arg := range e.Arguments {
		fmt.Fprintf(&b, "Argument %d: %s\n", i, arg)
	}
	if e.ReturnType != "" {
		fmt.Fprintf(&b, "Return Type: %s\n", e.ReturnType)
	}
	fmt.Fprintf(&b, "Raw Comment: %s\n", e.RawComment)
	fmt.Fprintf(&b, "Debrief: %s\n", e.BriefComment)
	fmt.Fprintf(&b, "State: %s\n", e.State)
	return b.String()
}
