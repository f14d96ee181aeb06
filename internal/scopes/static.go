package scopes

import (
	"vela/internal/builtins"
	"vela/internal/fir"
)

// StaticScopeForCallables exposes the synthetic static members of an enum
// class, values(): Array<E> and valueOf(String): E, distinctly from the
// instance scope. Returns nil for non-enum classes.
func (p *Provider) StaticScopeForCallables(class *fir.Class) *TypeScope {
	if class.Kind != fir.ClassKindEnum {
		return nil
	}
	holder, _ := p.static.LoadOrStore(class.Symbol, &lazyScope{})
	ls := holder.(*lazyScope)
	ls.once.Do(func() {
		ls.scope = p.buildStaticScope(class)
	})
	return ls.scope
}

func (p *Provider) buildStaticScope(class *fir.Class) *TypeScope {
	scope := newTypeScope(class.Symbol)
	selfT := fir.ClassType(class.Symbol)

	values := p.newStaticFun(class, "values", p.builtins.Type(builtins.NameArray, selfT))
	scope.add(&Member{
		Name:         "values",
		Symbol:       values.Symbol,
		Return:       values.Return,
		FromOwnClass: true,
	})

	valueOf := p.newStaticFun(class, "valueOf", selfT,
		fir.Param{Name: "name", Type: p.builtins.Type(builtins.NameString)})
	scope.add(&Member{
		Name:         "valueOf",
		Symbol:       valueOf.Symbol,
		Params:       []fir.Type{valueOf.Params[0].Type},
		Return:       valueOf.Return,
		FromOwnClass: true,
	})

	return scope
}

// newStaticFun mints the synthetic declaration backing a static entry and
// records it as a class member so DCE's ABI keep-list can see it.
func (p *Provider) newStaticFun(class *fir.Class, name string, ret fir.Type, params ...fir.Param) *fir.Function {
	f := &fir.Function{
		DeclBase: fir.DeclBase{
			Name:     class.Name.Child(name),
			Origin:   fir.OriginEnumSynth,
			Modality: fir.ModalityFinal,
		},
		Params: params,
		Return: ret,
		Owner:  class.Symbol,
	}
	sym := p.session.Symbols.New()
	f.Symbol = sym
	p.session.Symbols.Bind(sym, f)
	class.Members = append(class.Members, f)
	return f
}
