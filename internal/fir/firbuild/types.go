package firbuild

import (
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/syntax"
)

// typeEnv scopes type-parameter names: a function's parameters shadow its
// class's.
type typeEnv struct {
	parent *typeEnv
	params map[string]*fir.TypeParameter
}

func newTypeEnv(parent *typeEnv) *typeEnv {
	return &typeEnv{parent: parent, params: make(map[string]*fir.TypeParameter)}
}

func (e *typeEnv) lookup(name string) *fir.TypeParameter {
	for env := e; env != nil; env = env.parent {
		if p, ok := env.params[name]; ok {
			return p
		}
	}
	return nil
}

// typeParams converts a type-parameter list, registering each parameter in
// env so later refs in the same declaration resolve. Bounds may reference
// earlier parameters of the same list.
func (b *Builder) typeParams(list *syntax.Node, owner fir.SymbolID, env *typeEnv) []*fir.TypeParameter {
	var out []*fir.TypeParameter
	for i, tp := range list.ChildrenOf(syntax.KindTypeParam) {
		name := tp.FirstChild(syntax.KindName)
		if name == nil {
			b.unexpected(tp)
			continue
		}
		p := &fir.TypeParameter{
			Name:  name.Text(),
			Owner: owner,
			Index: i,
			Span:  tp.Span(),
		}
		env.params[p.Name] = p
		out = append(out, p)
		for _, bound := range tp.ChildrenOf(syntax.KindTypeRef) {
			p.Bounds = append(p.Bounds, b.resolveType(bound, env))
		}
	}
	return out
}

// resolveType turns a type reference into a fir.Type. Resolution order:
// enclosing type parameters, module classes, builtins, external resolver.
// Anything else degrades to the error type with a diagnostic; the caller
// keeps building.
func (b *Builder) resolveType(ref *syntax.Node, env *typeEnv) fir.Type {
	name := ref.FirstChild(syntax.KindName)
	if name == nil {
		b.unexpected(ref)
		return fir.ErrorType()
	}
	nullable := ref.Text() == "?"

	if env != nil {
		if p := env.lookup(name.Text()); p != nil {
			return fir.ParamRef(p).WithNullable(nullable)
		}
	}

	var args []fir.Type
	if list := ref.FirstChild(syntax.KindTypeArgList); list != nil {
		for _, arg := range list.ChildrenOf(syntax.KindTypeRef) {
			args = append(args, b.resolveType(arg, env))
		}
	}

	if c, ok := b.classes[name.Text()]; ok {
		return fir.ClassType(c.Symbol, args...).WithNullable(nullable)
	}
	if c, err := b.builtins.ClassFor(name.Text()); err == nil {
		return fir.ClassType(c.Symbol, args...).WithNullable(nullable)
	}
	if b.resolver != nil {
		if sym, ok := b.resolver.ResolveClass(name.Text()); ok {
			return fir.ClassType(sym, args...).WithNullable(nullable)
		}
	}
	diag.Errorf(b.reporter, diag.ResUnresolvedReference, ref.Span(),
		"unresolved type {0}", name.Text())
	return fir.ErrorType()
}
