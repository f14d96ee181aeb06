package scopes

import (
	"sync"

	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
)

// Provider builds and caches use-site scopes for one session. Caches are
// compute-once-under-lock: the first request for a (class, session) pair
// builds the scope inside a sync.Once, later reads hit the map without
// re-locking the build path. Discarding the provider discards every cache.
type Provider struct {
	session  *fir.Session
	builtins *builtins.Synthesizer
	reporter diag.Reporter
	top      fir.SymbolID // Any, the erasure fallback

	useSite     sync.Map // fir.SymbolID -> *lazyScope
	substituted sync.Map // substKey -> *lazyScope
	static      sync.Map // fir.SymbolID -> *lazyScope

	linkMu sync.Mutex
	linked map[fir.SymbolID]bool
}

type lazyScope struct {
	once  sync.Once
	scope *TypeScope
}

type substKey struct {
	class        fir.SymbolID
	subst        string
	expectActual bool
}

func NewProvider(session *fir.Session, blt *builtins.Synthesizer, reporter diag.Reporter) *Provider {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Provider{
		session:  session,
		builtins: blt,
		reporter: reporter,
		top:      blt.AnyClass().Symbol,
		linked:   make(map[fir.SymbolID]bool),
	}
}

// Top is the erasure fallback class (Any).
func (p *Provider) Top() fir.SymbolID { return p.top }

// UseSiteScope returns the composed scope for class, building it on first
// request. It never fails: unresolvable supertypes degrade the scope to a
// reduced member set with Complete=false and a diagnostic.
func (p *Provider) UseSiteScope(class *fir.Class) *TypeScope {
	holder, _ := p.useSite.LoadOrStore(class.Symbol, &lazyScope{})
	ls := holder.(*lazyScope)
	ls.once.Do(func() {
		ls.scope = p.buildUseSiteScope(class)
	})
	return ls.scope
}

// ScopeForSubstitutedSupertype builds the supertype's scope with type
// arguments applied to every member signature, viewed from useSite.
// Returns nil for non-class or unresolvable types. An identity
// substitution short-circuits to the plain scope without a cache entry.
func (p *Provider) ScopeForSubstitutedSupertype(st fir.Type, useSite *fir.Class) *TypeScope {
	return p.substitutedScope(st, useSite, false)
}

// ScopeForSubstitutedSupertypeExpectActual is the expect/actual variant;
// it caches separately since member visibility differs between the two
// resolution modes.
func (p *Provider) ScopeForSubstitutedSupertypeExpectActual(st fir.Type, useSite *fir.Class) *TypeScope {
	return p.substitutedScope(st, useSite, true)
}

func (p *Provider) substitutedScope(st fir.Type, useSite *fir.Class, expectActual bool) *TypeScope {
	if st.Kind != fir.TypeClass {
		return nil
	}
	super := p.session.Symbols.Class(st.Class)
	if super == nil {
		return nil
	}
	subst := fir.NewSubstitution(super.TypeParams, st.Args)
	if subst.IsIdentity() {
		return p.UseSiteScope(super)
	}
	key := substKey{class: st.Class, subst: subst.Key(p.session.Symbols), expectActual: expectActual}
	holder, _ := p.substituted.LoadOrStore(key, &lazyScope{})
	ls := holder.(*lazyScope)
	ls.once.Do(func() {
		ls.scope = p.applySubst(p.UseSiteScope(super), subst)
	})
	return ls.scope
}

func (p *Provider) applySubst(base *TypeScope, subst *fir.Substitution) *TypeScope {
	out := newTypeScope(base.Class)
	out.Complete = base.Complete
	for _, m := range base.Members() {
		applied := &Member{
			Name:         m.Name,
			Symbol:       m.Symbol,
			Params:       subst.ApplyAll(m.Params),
			Return:       subst.Apply(m.Return),
			Property:     m.Property,
			FromOwnClass: m.FromOwnClass,
			Delegated:    m.Delegated,
			Field:        m.Field,
			Overridden:   m.Overridden,
			Conflict:     m.Conflict,
		}
		out.add(applied)
	}
	return out
}

// buildUseSiteScope composes: own declared members (decorated for
// delegate fields), then each direct supertype's substituted scope,
// interfaces first in declared order, merged via intersection.
func (p *Provider) buildUseSiteScope(class *fir.Class) *TypeScope {
	scope := newTypeScope(class.Symbol)

	for _, member := range class.Members {
		switch d := member.(type) {
		case *fir.Function:
			params := make([]fir.Type, len(d.Params))
			for i, prm := range d.Params {
				params[i] = prm.Type
			}
			scope.add(&Member{
				Name:         d.Name.Simple(),
				Symbol:       d.Symbol,
				Params:       params,
				Return:       d.Return,
				FromOwnClass: true,
				Overridden:   d.Overrides,
			})
		case *fir.Property:
			scope.add(&Member{
				Name:         d.Name.Simple(),
				Symbol:       d.Symbol,
				Return:       d.Type,
				Property:     true,
				FromOwnClass: true,
				Overridden:   d.Overrides,
			})
		}
	}

	// Delegated interface members count as own-class entries: the class
	// answers for them even though the implementation lives in a field.
	for _, del := range class.Delegates {
		ifaceScope := p.ScopeForSubstitutedSupertype(del.Interface, class)
		if ifaceScope == nil {
			scope.Complete = false
			p.reportUnresolvedSupertype(class, del.Interface)
			continue
		}
		for _, m := range ifaceScope.Members() {
			if p.findErased(scope, m) != nil {
				continue // explicit member beats the delegate
			}
			scope.add(&Member{
				Name:         m.Name,
				Symbol:       m.Symbol,
				Params:       m.Params,
				Return:       m.Return,
				Property:     m.Property,
				FromOwnClass: true,
				Delegated:    true,
				Field:        del.Field,
				Overridden:   append([]fir.SymbolID{m.Symbol}, m.Overridden...),
			})
		}
	}

	for _, st := range supertypesInterfacesFirst(p.session.Symbols, class.Supertypes) {
		superScope := p.ScopeForSubstitutedSupertype(st, class)
		if superScope == nil {
			scope.Complete = false
			p.reportUnresolvedSupertype(class, st)
			continue
		}
		if !superScope.Complete {
			scope.Complete = false
		}
		for _, m := range superScope.Members() {
			p.mergeInherited(class, scope, m)
		}
	}

	return scope
}

// supertypesInterfacesFirst stably partitions the declared supertype list.
func supertypesInterfacesFirst(symbols *fir.Symbols, supertypes []fir.Type) []fir.Type {
	out := make([]fir.Type, 0, len(supertypes))
	for _, st := range supertypes {
		if c := symbols.Class(st.Class); c != nil && c.Kind == fir.ClassKindInterface {
			out = append(out, st)
		}
	}
	for _, st := range supertypes {
		c := symbols.Class(st.Class)
		if c == nil || c.Kind != fir.ClassKindInterface {
			out = append(out, st)
		}
	}
	return out
}

func (p *Provider) reportUnresolvedSupertype(class *fir.Class, st fir.Type) {
	name := "<error>"
	if st.Kind == fir.TypeClass {
		name = st.Format(p.session.Symbols)
	}
	diag.Errorf(p.reporter, diag.ResUnresolvedSupertype, class.Span,
		"supertype {0} of {1} could not be resolved; members are incomplete",
		name, class.Name.String())
}

func (p *Provider) findErased(scope *TypeScope, m *Member) *Member {
	sig := p.erased(m)
	for _, existing := range scope.Lookup(m.Name) {
		if p.erased(existing) == sig {
			return existing
		}
	}
	return nil
}
