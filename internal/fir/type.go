package fir

import (
	"strings"

	"vela/internal/source"
)

// TypeParameter is declared by a class or callable. Identity is pointer
// identity: a nested callable redeclaring "T" gets a distinct object, so
// substitution keyed by pointer can never capture a shadowing parameter.
type TypeParameter struct {
	Name   string
	Owner  SymbolID
	Index  int
	Bounds []Type
	Span   source.Span
}

// TypeKind discriminates the closed set of type shapes.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota
	TypeClass            // class symbol + type arguments + nullability
	TypeParamRef
	TypeError // placeholder for an unresolved reference
)

// Type is a value: copy freely, compare with Equal. Every type in a fully
// resolved declaration is either a closed class type or a reference to an
// enclosing declaration's parameter.
type Type struct {
	Kind     TypeKind
	Class    SymbolID
	Args     []Type
	Nullable bool
	Param    *TypeParameter
}

// ClassType builds an applied class type.
func ClassType(class SymbolID, args ...Type) Type {
	return Type{Kind: TypeClass, Class: class, Args: args}
}

// ParamRef references a type parameter of an enclosing declaration.
func ParamRef(p *TypeParameter) Type {
	return Type{Kind: TypeParamRef, Param: p}
}

// ErrorType is substituted at the point of an unresolved reference so
// downstream passes can proceed without null checks everywhere.
func ErrorType() Type {
	return Type{Kind: TypeError}
}

func (t Type) IsError() bool {
	return t.Kind == TypeError
}

// WithNullable returns a copy with the nullability flag set.
func (t Type) WithNullable(nullable bool) Type {
	t.Nullable = nullable
	return t
}

// Equal is structural equality; parameter references compare by identity.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Nullable != o.Nullable {
		return false
	}
	switch t.Kind {
	case TypeClass:
		if t.Class != o.Class || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equal(o.Args[i]) {
				return false
			}
		}
		return true
	case TypeParamRef:
		return t.Param == o.Param
	default:
		return true
	}
}

// Format renders the type for diagnostics and dumps.
func (t Type) Format(symbols *Symbols) string {
	var sb strings.Builder
	t.format(symbols, &sb)
	return sb.String()
}

func (t Type) format(symbols *Symbols, sb *strings.Builder) {
	switch t.Kind {
	case TypeClass:
		if decl := symbols.Decl(t.Class); decl != nil {
			sb.WriteString(decl.DeclName().Simple())
		} else {
			sb.WriteString("<unbound>")
		}
		if len(t.Args) > 0 {
			sb.WriteByte('<')
			for i, a := range t.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				a.format(symbols, sb)
			}
			sb.WriteByte('>')
		}
	case TypeParamRef:
		sb.WriteString(t.Param.Name)
	case TypeError:
		sb.WriteString("<error>")
	default:
		sb.WriteString("<invalid>")
	}
	if t.Nullable {
		sb.WriteByte('?')
	}
}

// Erased returns the class symbol a type erases to. Parameter references
// erase to their first bound's class; an unbounded parameter erases to the
// provided top type (Any).
func (t Type) Erased(top SymbolID) SymbolID {
	switch t.Kind {
	case TypeClass:
		return t.Class
	case TypeParamRef:
		if t.Param != nil {
			for _, b := range t.Param.Bounds {
				if erased := b.Erased(top); erased.IsValid() {
					return erased
				}
			}
		}
		return top
	default:
		return NoSymbolID
	}
}
