package entity

import "fmt"

// Kind is the closed set of documentable declaration kinds.
type Kind int

const (
	KindUnknown Kind = iota
	KindFunction
	KindConstructor
	KindMethod
	KindDestructor
	KindFunctionTemplate
	KindClass
	KindStruct
	KindEnum
	KindVariable
	KindNamespace
	KindMacro
)

// kindNames holds the canonical spelling of each kind. These strings are what
// types_blacklist entries and persisted snapshots refer to.
var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindFunction:         "Function",
	KindConstructor:      "Constructor",
	KindMethod:           "Method",
	KindDestructor:       "Destructor",
	KindFunctionTemplate: "FunctionTemplate",
	KindClass:            "Class",
	KindStruct:           "Struct",
	KindEnum:             "Enum",
	KindVariable:         "Variable",
	KindNamespace:        "Namespace",
	KindMacro:            "Macro",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = k
	}
	return m
}()

// String returns the canonical name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// IsFunctionLike reports whether entities of this kind carry arguments and a return type.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunction, KindMethod, KindConstructor, KindDestructor, KindFunctionTemplate:
		return true
	}
	return false
}

// ParseKind maps a canonical name back to its Kind.
// Unrecognised names yield KindUnknown and false.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// KindNames returns the canonical names of every kind except Unknown, in declaration order.
func KindNames() []string {
	names := make([]string, 0, len(kindNames)-1)
	for k := KindFunction; k <= KindMacro; k++ {
		names = append(names, kindNames[k])
	}
	return names
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is lenient: unknown names decode to KindUnknown so an old snapshot
// never fails to load because of a renamed kind.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, _ := ParseKind(string(text))
	*k = parsed
	return nil
}

// State is the lifecycle state of an entity relative to the previous snapshot.
type State int

const (
	StateUnchanged State = iota
	StateModified
	StateAdded
	StateRemoved
)

var stateNames = [...]string{
	StateUnchanged: "Unchanged",
	StateModified:  "Modified",
	StateAdded:     "Added",
	StateRemoved:   "Removed",
}

func (s State) String() string {
	if s < StateUnchanged || s > StateRemoved {
		return "Unknown"
	}
	return stateNames[s]
}

// ParseState maps a state name to its State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return StateUnchanged, fmt.Errorf("unknown lifecycle state %q", name)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*s = StateUnchanged
		return nil
	}
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
