package builtins

import (
	"fmt"

	"vela/internal/fir"
)

// Finalize fixes the class's supertype linkage by materializing fake
// overrides: inherited-but-not-redeclared members become explicit override
// records. It runs exactly once per class; later calls are no-ops. The
// finalizing set breaks self-referential hierarchies (Enum<E : Enum<E>>).
func (s *Synthesizer) Finalize(c *fir.Class) error {
	e, ok := s.entries[c.Name.Path]
	if !ok || e.class != c {
		return fmt.Errorf("builtins: %s is not a builtin class", c.Name)
	}
	if e.state == StateFinalized {
		return nil
	}
	if s.finalizing[c.Symbol] {
		return nil
	}
	s.finalizing[c.Symbol] = true
	defer delete(s.finalizing, c.Symbol)

	if e.state == StatePending {
		s.ensureContents(e)
	}

	for _, st := range c.Supertypes {
		super := s.session.Symbols.Class(st.Class)
		if super == nil {
			continue
		}
		if superEntry, isBuiltin := s.entries[super.Name.Path]; isBuiltin && superEntry.class == super {
			if err := s.Finalize(super); err != nil {
				return err
			}
		}
		subst := fir.NewSubstitution(super.TypeParams, st.Args)
		for _, inherited := range super.MemberFunctions() {
			s.inherit(c, inherited, subst)
		}
	}

	e.state = StateFinalized
	return nil
}

// inherit merges one supertype member into c: link an explicit override,
// extend an existing fake override, or materialize a new one.
func (s *Synthesizer) inherit(c *fir.Class, inherited *fir.Function, subst *fir.Substitution) {
	name := inherited.Name.Simple()
	params := make([]fir.Type, len(inherited.Params))
	for i, p := range inherited.Params {
		params[i] = subst.Apply(p.Type)
	}

	for _, member := range c.MemberFunctions() {
		if member.Name.Simple() != name || len(member.Params) != len(params) {
			continue
		}
		if !paramsMatch(member.Params, params) {
			continue
		}
		if !containsSym(member.Overrides, inherited.Symbol) {
			member.Overrides = append(member.Overrides, inherited.Symbol)
		}
		return
	}

	fake := &fir.Function{
		DeclBase: fir.DeclBase{
			Name:       c.Name.Child(name),
			Origin:     fir.OriginFakeOverride,
			Modality:   inherited.Modality,
			Visibility: inherited.Visibility,
		},
		Return:    subst.Apply(inherited.Return),
		Overrides: []fir.SymbolID{inherited.Symbol},
		Owner:     c.Symbol,
	}
	fake.Params = make([]fir.Param, len(inherited.Params))
	for i, p := range inherited.Params {
		fake.Params[i] = fir.Param{Name: p.Name, Type: params[i]}
	}
	sym := s.session.Symbols.New()
	fake.Symbol = sym
	s.session.Symbols.Bind(sym, fake)
	c.Members = append(c.Members, fake)
}

func paramsMatch(params []fir.Param, types []fir.Type) bool {
	for i := range params {
		if !params[i].Type.Equal(types[i]) {
			return false
		}
	}
	return true
}

func containsSym(syms []fir.SymbolID, sym fir.SymbolID) bool {
	for _, s := range syms {
		if s == sym {
			return true
		}
	}
	return false
}
