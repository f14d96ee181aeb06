package fir

import (
	"vela/internal/source"
)

// Modality mirrors the source-level openness of a declaration.
type Modality uint8

const (
	ModalityFinal Modality = iota
	ModalityOpen
	ModalityAbstract
	ModalitySealed
)

func (m Modality) String() string {
	switch m {
	case ModalityFinal:
		return "final"
	case ModalityOpen:
		return "open"
	case ModalityAbstract:
		return "abstract"
	case ModalitySealed:
		return "sealed"
	default:
		return "invalid"
	}
}

// Visibility gates who may reference a declaration.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityInternal
	VisibilityProtected
	VisibilityPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityInternal:
		return "internal"
	case VisibilityProtected:
		return "protected"
	case VisibilityPrivate:
		return "private"
	default:
		return "invalid"
	}
}

// Origin records how a declaration came to exist. It determines how later
// passes may rewrite it: source declarations are fair game, stubs are
// read-only, synthetic members must survive DCE when ABI-relevant.
type Origin uint8

const (
	OriginSource Origin = iota
	OriginFakeOverride
	OriginBridge
	OriginDelegate
	OriginBuiltin
	OriginStub       // loaded from the classpath, body-less
	OriginEnumSynth  // enum values/valueOf companions
	OriginErrorDecl  // placeholder for an unresolved reference
)

func (o Origin) String() string {
	switch o {
	case OriginSource:
		return "source"
	case OriginFakeOverride:
		return "fake-override"
	case OriginBridge:
		return "bridge"
	case OriginDelegate:
		return "delegate"
	case OriginBuiltin:
		return "builtin"
	case OriginStub:
		return "stub"
	case OriginEnumSynth:
		return "enum-synthetic"
	case OriginErrorDecl:
		return "error"
	default:
		return "invalid"
	}
}

// Name is the identity of a declaration: owning module plus dot-separated
// qualified path within it.
type Name struct {
	Module string
	Path   string
}

func (n Name) String() string {
	if n.Module == "" {
		return n.Path
	}
	return n.Module + "/" + n.Path
}

// Child derives a nested declaration's name.
func (n Name) Child(simple string) Name {
	if n.Path == "" {
		return Name{Module: n.Module, Path: simple}
	}
	return Name{Module: n.Module, Path: n.Path + "." + simple}
}

// Simple returns the last path segment.
func (n Name) Simple() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] == '.' {
			return n.Path[i+1:]
		}
	}
	return n.Path
}

// Decl is the common interface over every typed declaration record.
type Decl interface {
	DeclName() Name
	DeclSymbol() SymbolID
	DeclOrigin() Origin
	DeclSpan() source.Span
}

// DeclBase carries the fields shared by every declaration kind.
// The symbol is minted before the body is populated (see Symbols.Bind).
type DeclBase struct {
	Name        Name
	Symbol      SymbolID
	Origin      Origin
	Modality    Modality
	Visibility  Visibility
	Span        source.Span
	Annotations []string
}

func (b *DeclBase) DeclName() Name        { return b.Name }
func (b *DeclBase) DeclSymbol() SymbolID  { return b.Symbol }
func (b *DeclBase) DeclOrigin() Origin    { return b.Origin }
func (b *DeclBase) DeclSpan() source.Span { return b.Span }

// ClassKind separates the classifier flavors sharing the Class record.
type ClassKind uint8

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
	ClassKindEnum
)

func (k ClassKind) String() string {
	switch k {
	case ClassKindClass:
		return "class"
	case ClassKindInterface:
		return "interface"
	case ClassKindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// DelegateEntry records "implements Iface by field": the class forwards
// the interface's members to the named field.
type DelegateEntry struct {
	Interface Type
	Field     string
}

// Class is a classifier declaration. Members form the ownership tree: a
// class owns its nested declarations.
type Class struct {
	DeclBase
	Kind       ClassKind
	TypeParams []*TypeParameter
	Supertypes []Type
	Members    []Decl
	Delegates  []DelegateEntry
	Entries    []*EnumEntry // enum classes only, declared order
}

// Param is a value parameter of a callable.
type Param struct {
	Name string
	Type Type
	Span source.Span
}

// Function is a callable declaration. Overrides lists the symbols of every
// overridden member this one replaces (possibly from several supertypes).
type Function struct {
	DeclBase
	TypeParams []*TypeParameter
	Params     []Param
	Return     Type
	Body       *Expr // Block expression; nil for abstract members and stubs
	Overrides  []SymbolID
	Owner      SymbolID // owning class, NoSymbolID for top-level
}

// Property is a stored or inherited value member.
type Property struct {
	DeclBase
	Type      Type
	Mutable   bool
	Overrides []SymbolID
	Owner     SymbolID
}

// Constructor creates instances of its owning class.
type Constructor struct {
	DeclBase
	Params []Param
	Body   *Expr
	Owner  SymbolID
}

// TypeAlias names an abbreviation for a type.
type TypeAlias struct {
	DeclBase
	TypeParams []*TypeParameter
	Aliased    Type
}

// EnumEntry is one constant of an enum class.
type EnumEntry struct {
	DeclBase
	Ordinal int
	Owner   SymbolID
}
