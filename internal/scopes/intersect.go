package scopes

import (
	"vela/internal/diag"
	"vela/internal/fir"
)

// mergeInherited folds one inherited member into the scope under
// construction. Members with identical erased signatures collapse into a
// single entry tracking every original symbol; return types participate
// in the covariant tie-break (the most specific type wins). Unrelated
// return types poison the entry and emit ResOverrideConflict; the entry
// stays queryable so sibling resolution proceeds.
func (p *Provider) mergeInherited(class *fir.Class, scope *TypeScope, m *Member) {
	existing := p.findErased(scope, m)
	if existing == nil {
		inherited := &Member{
			Name:       m.Name,
			Symbol:     m.Symbol,
			Params:     m.Params,
			Return:     m.Return,
			Property:   m.Property,
			Overridden: append([]fir.SymbolID{m.Symbol}, m.Overridden...),
		}
		scope.add(inherited)
		return
	}

	for _, sym := range append([]fir.SymbolID{m.Symbol}, m.Overridden...) {
		if !containsSym(existing.Overridden, sym) {
			existing.Overridden = append(existing.Overridden, sym)
		}
	}

	if existing.FromOwnClass || existing.Conflict {
		// own-class declarations win outright; conflicts stay poisoned
		return
	}
	switch {
	case existing.Return.Equal(m.Return):
		// nothing to pick
	case p.isSubtype(existing.Return, m.Return):
		// existing is already the narrower type
	case p.isSubtype(m.Return, existing.Return):
		existing.Symbol = m.Symbol
		existing.Return = m.Return
	default:
		existing.Conflict = true
		existing.Return = fir.ErrorType()
		diag.Errorf(p.reporter, diag.ResOverrideConflict, class.Span,
			"member {0} inherited into {1} with unrelated return types",
			m.Name, class.Name.String())
	}
}

// Subtype reports whether a <: b in this provider's session. Lowering
// passes use it to decide statically answerable type operators.
func (p *Provider) Subtype(a, b fir.Type) bool {
	return p.isSubtype(a, b)
}

// isSubtype reports whether a <: b. The walk follows a's supertype edges
// applying the edge substitutions, so Box<String> <: Collection<String>
// resolves through generic supertypes. Nullability: a non-null type is a
// subtype of its nullable form, never the reverse.
func (p *Provider) isSubtype(a, b fir.Type) bool {
	if a.Nullable && !b.Nullable {
		return false
	}
	a = a.WithNullable(false)
	b = b.WithNullable(false)
	if a.Equal(b) {
		return true
	}
	if b.Kind == fir.TypeClass && b.Class == p.top && len(b.Args) == 0 {
		return true // everything erases under Any
	}
	switch a.Kind {
	case fir.TypeParamRef:
		if a.Param == nil {
			return false
		}
		for _, bound := range a.Param.Bounds {
			if p.isSubtype(bound, b) {
				return true
			}
		}
		return false
	case fir.TypeClass:
		cls := p.session.Symbols.Class(a.Class)
		if cls == nil {
			return false
		}
		subst := fir.NewSubstitution(cls.TypeParams, a.Args)
		for _, st := range cls.Supertypes {
			applied := subst.Apply(st)
			if applied.Equal(b) || p.isSubtype(applied, b) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func containsSym(syms []fir.SymbolID, sym fir.SymbolID) bool {
	for _, s := range syms {
		if s == sym {
			return true
		}
	}
	return false
}
