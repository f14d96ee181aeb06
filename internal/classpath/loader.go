package classpath

import (
	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/source"
)

// Index resolves dependency classes by simple name. It satisfies the
// declaration builder's Resolver contract.
type Index struct {
	classes map[string]*fir.Class
}

func (x *Index) ResolveClass(name string) (fir.SymbolID, bool) {
	if c, ok := x.classes[name]; ok {
		return c.Symbol, true
	}
	return fir.NoSymbolID, false
}

// Class returns the materialized stub class, or nil.
func (x *Index) Class(name string) *fir.Class {
	return x.classes[name]
}

// Len reports how many classes the index holds.
func (x *Index) Len() int {
	return len(x.classes)
}

// Loader materializes stub sets into a session as body-less declarations.
type Loader struct {
	session  *fir.Session
	builtins *builtins.Synthesizer
	reporter diag.Reporter
	index    *Index
}

func NewLoader(session *fir.Session, blt *builtins.Synthesizer, reporter diag.Reporter) *Loader {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Loader{
		session:  session,
		builtins: blt,
		reporter: reporter,
		index:    &Index{classes: make(map[string]*fir.Class)},
	}
}

// Index returns the accumulated resolver view over every loaded set.
func (l *Loader) Index() *Index {
	return l.index
}

// Load materializes one dependency's stubs. Classes are declared first so
// member types can reference any class of the same set; a type reference
// that resolves nowhere degrades to the error type with a broken-stub
// diagnostic, and loading continues.
func (l *Loader) Load(set *StubSet) {
	declared := make([]*fir.Class, len(set.Classes))
	for i, sc := range set.Classes {
		c := &fir.Class{
			DeclBase: fir.DeclBase{
				Name:     fir.Name{Module: set.Module, Path: sc.Name},
				Origin:   fir.OriginStub,
				Modality: fir.Modality(sc.Modality),
			},
			Kind: fir.ClassKind(sc.Kind),
		}
		l.session.NewClassSymbol(c)
		l.index.classes[sc.Name] = c
		declared[i] = c
	}
	for i, sc := range set.Classes {
		l.fill(declared[i], &sc)
	}
}

func (l *Loader) fill(c *fir.Class, sc *StubClass) {
	params := make(map[string]*fir.TypeParameter, len(sc.TypeParams))
	for i, tp := range sc.TypeParams {
		p := &fir.TypeParameter{Name: tp.Name, Owner: c.Symbol, Index: i}
		c.TypeParams = append(c.TypeParams, p)
		params[tp.Name] = p
	}
	// bounds after all params exist: F-bounds reference the param itself
	for i, tp := range sc.TypeParams {
		for _, b := range tp.Bounds {
			c.TypeParams[i].Bounds = append(c.TypeParams[i].Bounds, l.resolve(c, params, b))
		}
	}
	for _, st := range sc.Supertypes {
		c.Supertypes = append(c.Supertypes, l.resolve(c, params, st))
	}
	for _, sf := range sc.Functions {
		f := &fir.Function{
			DeclBase: fir.DeclBase{
				Name:     c.Name.Child(sf.Name),
				Origin:   fir.OriginStub,
				Modality: fir.Modality(sf.Modality),
			},
			Return: l.resolve(c, params, sf.Return),
			Owner:  c.Symbol,
		}
		sym := l.session.Symbols.New()
		f.Symbol = sym
		l.session.Symbols.Bind(sym, f)
		for _, p := range sf.Params {
			f.Params = append(f.Params, fir.Param{Name: p.Name, Type: l.resolve(c, params, p.Type)})
		}
		c.Members = append(c.Members, f)
	}
	for _, sp := range sc.Properties {
		p := &fir.Property{
			DeclBase: fir.DeclBase{
				Name:   c.Name.Child(sp.Name),
				Origin: fir.OriginStub,
			},
			Type:    l.resolve(c, params, sp.Type),
			Mutable: sp.Mutable,
			Owner:   c.Symbol,
		}
		sym := l.session.Symbols.New()
		p.Symbol = sym
		l.session.Symbols.Bind(sym, p)
		c.Members = append(c.Members, p)
	}
}

func (l *Loader) resolve(owner *fir.Class, params map[string]*fir.TypeParameter, st StubType) fir.Type {
	if st.Name == "" && st.Param == "" {
		// Void functions serialize the zero return type.
		return l.builtins.Type(builtins.NameUnit)
	}
	if st.Param != "" {
		if p, ok := params[st.Param]; ok {
			return fir.ParamRef(p).WithNullable(st.Nullable)
		}
		diag.Errorf(l.reporter, diag.PathBrokenStub, source.Span{},
			"stub {0} references unknown type parameter {1}",
			owner.Name.String(), st.Param)
		return fir.ErrorType()
	}
	var args []fir.Type
	for _, a := range st.Args {
		args = append(args, l.resolve(owner, params, a))
	}
	if c, ok := l.index.classes[st.Name]; ok {
		return fir.ClassType(c.Symbol, args...).WithNullable(st.Nullable)
	}
	if c, err := l.builtins.ClassFor(st.Name); err == nil {
		return fir.ClassType(c.Symbol, args...).WithNullable(st.Nullable)
	}
	diag.Errorf(l.reporter, diag.PathBrokenStub, source.Span{},
		"stub {0} references unresolvable type {1}", owner.Name.String(), st.Name)
	return fir.ErrorType()
}
