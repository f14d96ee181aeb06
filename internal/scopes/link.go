package scopes

import (
	"strconv"

	"vela/internal/fir"
)

// LinkOverrides performs override checking and fake-override synthesis
// for a source class: own members that shadow inherited entries get their
// Overrides lists wired, and inherited-but-not-redeclared members are
// materialized as fake-override declarations so every visible member has a
// concrete record to attach metadata to. Idempotent per provider.
func (p *Provider) LinkOverrides(class *fir.Class) {
	p.linkMu.Lock()
	if p.linked[class.Symbol] {
		p.linkMu.Unlock()
		return
	}
	p.linked[class.Symbol] = true
	p.linkMu.Unlock()

	scope := p.UseSiteScope(class)
	for _, m := range scope.Members() {
		if m.FromOwnClass {
			if m.Delegated || len(m.Overridden) == 0 {
				continue
			}
			if fn := p.session.Symbols.Function(m.Symbol); fn != nil && fn.Owner == class.Symbol {
				fn.Overrides = mergeSyms(fn.Overrides, m.Overridden)
			}
			continue
		}
		if p.hasMemberSymbol(class, m.Symbol) {
			continue // representative already owned here (builtin finalization)
		}
		fake := &fir.Function{
			DeclBase: fir.DeclBase{
				Name:     class.Name.Child(m.Name),
				Origin:   fir.OriginFakeOverride,
				Modality: fir.ModalityOpen,
				Span:     class.Span,
			},
			Return:    m.Return,
			Overrides: m.Overridden,
			Owner:     class.Symbol,
		}
		fake.Params = make([]fir.Param, len(m.Params))
		for i, t := range m.Params {
			fake.Params[i] = fir.Param{Name: "p" + strconv.Itoa(i), Type: t}
		}
		sym := p.session.Symbols.New()
		fake.Symbol = sym
		p.session.Symbols.Bind(sym, fake)
		class.Members = append(class.Members, fake)
	}
}

func (p *Provider) hasMemberSymbol(class *fir.Class, sym fir.SymbolID) bool {
	if fn := p.session.Symbols.Function(sym); fn != nil {
		return fn.Owner == class.Symbol
	}
	return false
}

func mergeSyms(into, from []fir.SymbolID) []fir.SymbolID {
	for _, s := range from {
		if !containsSym(into, s) {
			into = append(into, s)
		}
	}
	return into
}
