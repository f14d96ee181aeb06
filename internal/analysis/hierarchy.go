// Package analysis hosts the call-graph-based analyses: devirtualization,
// escape analysis, and dead-code elimination. Each consumes the read-only
// call graph and data-flow facts and produces a result artifact for later
// phases; none of them mutates the graph.
package analysis

import (
	"sort"

	"vela/internal/fir"
)

// Overriders indexes the override relation of a module: for a member M,
// who overrides M directly, and which concrete implementations answer a
// virtual call on M.
type Overriders struct {
	symbols *fir.Symbols
	direct  map[fir.SymbolID][]fir.SymbolID
}

func BuildOverriders(module *fir.Module, symbols *fir.Symbols) *Overriders {
	ov := &Overriders{
		symbols: symbols,
		direct:  make(map[fir.SymbolID][]fir.SymbolID),
	}
	for _, class := range module.Classes {
		for _, f := range class.MemberFunctions() {
			for _, overridden := range f.Overrides {
				ov.direct[overridden] = append(ov.direct[overridden], f.Symbol)
			}
		}
	}
	for _, syms := range ov.direct {
		sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	}
	return ov
}

// DirectOverriders returns the members directly overriding m.
func (ov *Overriders) DirectOverriders(m fir.SymbolID) []fir.SymbolID {
	return ov.direct[m]
}

// Implementations returns every concrete target a virtual call on m may
// dispatch to, in deterministic order. Fake overrides contribute their
// subtree but are not targets themselves; they resolve to the inherited
// implementation, which the walk reaches through the base member.
func (ov *Overriders) Implementations(m fir.SymbolID) []fir.SymbolID {
	seen := make(map[fir.SymbolID]bool)
	var out []fir.SymbolID
	var walk func(sym fir.SymbolID)
	walk = func(sym fir.SymbolID) {
		if seen[sym] {
			return
		}
		seen[sym] = true
		if fn := ov.symbols.Function(sym); fn != nil {
			if fn.Modality != fir.ModalityAbstract && fn.DeclOrigin() != fir.OriginFakeOverride {
				out = append(out, sym)
			}
		}
		for _, sub := range ov.direct[sym] {
			walk(sub)
		}
	}
	walk(m)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HierarchyClosed reports whether the owner hierarchy of member m cannot
// gain unknown external subclasses: the owning class is final or sealed.
func (ov *Overriders) HierarchyClosed(m fir.SymbolID) bool {
	fn := ov.symbols.Function(m)
	if fn == nil {
		return false
	}
	owner := ov.symbols.Class(fn.Owner)
	if owner == nil {
		return false
	}
	return owner.Modality == fir.ModalityFinal || owner.Modality == fir.ModalitySealed
}
