// Package scopes answers the central query of name resolution: what
// members does class C expose, as seen from use site U. Scopes are
// composed, not copied: a subclass scope layers its declared members over
// its supertypes' substituted scopes, with intersection logic collapsing
// multiply-inherited members into single override points.
package scopes

import (
	"strconv"

	"vela/internal/fir"
)

// Member is one entry of a composed scope: a callable viewed from the use
// site, with substitution already applied to its signature.
type Member struct {
	Name   string
	Symbol fir.SymbolID // canonical representative declaration
	Params []fir.Type   // parameter types as seen from the use site
	Return fir.Type     // return type as seen from the use site

	// Property marks a property entry; properties and callables never
	// intersect, even when a function takes no arguments.
	Property bool

	// FromOwnClass marks members declared (or delegated) by the scope's
	// class itself; they sort before inherited members.
	FromOwnClass bool

	// Delegated marks entries forwarding to an interface implementation
	// held in a field.
	Delegated bool
	Field     string

	// Overridden lists every original symbol this entry collapsed:
	// intersection of identical erased signatures across supertypes keeps
	// one entry and remembers all contributors.
	Overridden []fir.SymbolID

	// Conflict marks an intersection whose return types could not be
	// unified; Return is the error type and a diagnostic was emitted.
	Conflict bool
}

// TypeScope is the composed member scope of one class at one use site.
// Member order is deterministic: own members in declaration order, then
// inherited members grouped by supertype in declared supertype order.
type TypeScope struct {
	Class    fir.SymbolID
	members  []*Member
	byName   map[string][]*Member
	Complete bool // false when a supertype could not be resolved
}

func newTypeScope(class fir.SymbolID) *TypeScope {
	return &TypeScope{
		Class:    class,
		byName:   make(map[string][]*Member),
		Complete: true,
	}
}

func (s *TypeScope) add(m *Member) {
	s.members = append(s.members, m)
	s.byName[m.Name] = append(s.byName[m.Name], m)
}

// Members returns all entries in their stable order. Callers must not
// modify the slice.
func (s *TypeScope) Members() []*Member {
	return s.members
}

// Lookup returns the overload set for name, own-class entries first.
func (s *TypeScope) Lookup(name string) []*Member {
	return s.byName[name]
}

// Len is the number of entries.
func (s *TypeScope) Len() int {
	return len(s.members)
}

// erasedSig is the key the intersection logic collapses on: member kind
// and name plus the erased class of every parameter. The kind keeps a
// property x and a zero-argument function x() apart even though both
// erase to an empty parameter list.
type erasedSig struct {
	property bool
	name     string
	params   string
}

func (p *Provider) erased(m *Member) erasedSig {
	key := ""
	for _, t := range m.Params {
		key += strconv.Itoa(int(t.Erased(p.top))) + ","
	}
	return erasedSig{property: m.Property, name: m.Name, params: key}
}
