package firbuild

import (
	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/syntax"
)

// buildBody converts a body's statement list. Expressions keep whatever
// static type falls out of declarations; full inference is not this
// layer's job.
func (b *Builder) buildBody(f *fir.Function, body *syntax.Node, env *typeEnv) *fir.Expr {
	exprs := make([]*fir.Expr, 0, body.NumChildren())
	for _, stmt := range body.Children() {
		exprs = append(exprs, b.buildExpr(f, stmt, env))
	}
	return fir.NewBlock(body.Span(), exprs...)
}

func (b *Builder) buildExpr(f *fir.Function, n *syntax.Node, env *typeEnv) *fir.Expr {
	switch n.Kind() {
	case syntax.KindBlock, syntax.KindBody:
		return b.buildBody(f, n, env)
	case syntax.KindLiteral:
		return &fir.Expr{Kind: fir.ExprLiteral, Span: n.Span(),
			Data: fir.LiteralData{Text: n.Text()}}
	case syntax.KindNameRef:
		return b.buildNameRef(f, n)
	case syntax.KindReturn:
		var value *fir.Expr
		if n.NumChildren() > 0 {
			value = b.buildExpr(f, n.Child(0), env)
		}
		return &fir.Expr{Kind: fir.ExprReturn, Span: n.Span(),
			Data: fir.ReturnData{Value: value}}
	case syntax.KindCall:
		return b.buildCall(f, n, env)
	case syntax.KindNew:
		return b.buildNew(f, n, env)
	case syntax.KindFieldAccess:
		return b.buildFieldLoad(f, n, env)
	case syntax.KindAssign:
		return b.buildAssign(f, n, env)
	case syntax.KindIsCheck, syntax.KindAsCast:
		return b.buildTypeOp(f, n, env)
	default:
		b.unexpected(n)
		return &fir.Expr{Kind: fir.ExprInvalid, Span: n.Span(), Type: fir.ErrorType()}
	}
}

func (b *Builder) buildNameRef(f *fir.Function, n *syntax.Node) *fir.Expr {
	for i, p := range f.Params {
		if p.Name == n.Text() {
			return &fir.Expr{Kind: fir.ExprParamRef, Span: n.Span(), Type: p.Type,
				Data: fir.ParamRefData{Index: i}}
		}
	}
	return &fir.Expr{Kind: fir.ExprVarRef, Span: n.Span(),
		Data: fir.VarRefData{Name: n.Text()}}
}

// buildCall resolves a callee by simple name: a member of the enclosing
// class first, then a top-level function. Open members dispatch virtually.
func (b *Builder) buildCall(f *fir.Function, n *syntax.Node, env *typeEnv) *fir.Expr {
	if n.NumChildren() == 0 || n.Child(0).Kind() != syntax.KindNameRef {
		b.unexpected(n)
		return &fir.Expr{Kind: fir.ExprInvalid, Span: n.Span(), Type: fir.ErrorType()}
	}
	callee := n.Child(0).Text()
	args := make([]*fir.Expr, 0, n.NumChildren()-1)
	for i := 1; i < n.NumChildren(); i++ {
		args = append(args, b.buildExpr(f, n.Child(i), env))
	}

	data := fir.CallData{Args: args}
	var retType fir.Type
	if target := b.memberCallee(f.Owner, callee); target != nil {
		data.Target = target.Symbol
		if target.Modality == fir.ModalityOpen || target.Modality == fir.ModalityAbstract {
			data.Dispatch = fir.DispatchVirtual
		}
		retType = target.Return
	} else if top, ok := b.funcs[callee]; ok {
		data.Target = top.Symbol
		retType = top.Return
	} else {
		diag.Errorf(b.reporter, diag.ResUnresolvedReference, n.Span(),
			"unresolved callable {0}", callee)
		retType = fir.ErrorType()
	}
	return &fir.Expr{Kind: fir.ExprCall, Span: n.Span(), Type: retType, Data: data}
}

func (b *Builder) memberCallee(owner fir.SymbolID, name string) *fir.Function {
	if !owner.IsValid() {
		return nil
	}
	c := b.session.Symbols.Class(owner)
	if c == nil {
		return nil
	}
	for _, m := range c.MemberFunctions() {
		if m.Name.Simple() == name {
			return m
		}
	}
	return nil
}

func (b *Builder) buildNew(f *fir.Function, n *syntax.Node, env *typeEnv) *fir.Expr {
	ref := n.FirstChild(syntax.KindTypeRef)
	if ref == nil {
		b.unexpected(n)
		return &fir.Expr{Kind: fir.ExprInvalid, Span: n.Span(), Type: fir.ErrorType()}
	}
	t := b.resolveType(ref, env)
	data := fir.NewData{}
	if t.Kind == fir.TypeClass {
		data.Class = t.Class
		data.Ctor = b.primaryCtor(t.Class)
	}
	for _, arg := range n.Children() {
		if arg.Kind() != syntax.KindTypeRef {
			data.Args = append(data.Args, b.buildExpr(f, arg, env))
		}
	}
	return &fir.Expr{Kind: fir.ExprNew, Span: n.Span(), Type: t, Data: data}
}

func (b *Builder) primaryCtor(class fir.SymbolID) fir.SymbolID {
	c := b.session.Symbols.Class(class)
	if c == nil {
		return fir.NoSymbolID
	}
	for _, m := range c.Members {
		if ctor, ok := m.(*fir.Constructor); ok {
			return ctor.Symbol
		}
	}
	return fir.NoSymbolID
}

func (b *Builder) buildFieldLoad(f *fir.Function, n *syntax.Node, env *typeEnv) *fir.Expr {
	if n.NumChildren() < 2 {
		b.unexpected(n)
		return &fir.Expr{Kind: fir.ExprInvalid, Span: n.Span(), Type: fir.ErrorType()}
	}
	recv := b.buildExpr(f, n.Child(0), env)
	field := n.Child(1)
	data := fir.FieldLoadData{Recv: recv}
	var t fir.Type
	if prop := b.propertyOn(recv.Type, field.Text()); prop != nil {
		data.Field = prop.Symbol
		t = prop.Type
	}
	return &fir.Expr{Kind: fir.ExprFieldLoad, Span: n.Span(), Type: t, Data: data}
}

func (b *Builder) buildAssign(f *fir.Function, n *syntax.Node, env *typeEnv) *fir.Expr {
	if n.NumChildren() < 2 || n.Child(0).Kind() != syntax.KindFieldAccess {
		b.unexpected(n)
		return &fir.Expr{Kind: fir.ExprInvalid, Span: n.Span(), Type: fir.ErrorType()}
	}
	lhs := n.Child(0)
	recv := b.buildExpr(f, lhs.Child(0), env)
	value := b.buildExpr(f, n.Child(1), env)
	data := fir.FieldStoreData{Recv: recv, Value: value}
	if lhs.NumChildren() > 1 {
		if prop := b.propertyOn(recv.Type, lhs.Child(1).Text()); prop != nil {
			data.Field = prop.Symbol
		}
	}
	return &fir.Expr{Kind: fir.ExprFieldStore, Span: n.Span(), Data: data}
}

func (b *Builder) propertyOn(recv fir.Type, name string) *fir.Property {
	if recv.Kind != fir.TypeClass {
		return nil
	}
	c := b.session.Symbols.Class(recv.Class)
	if c == nil {
		return nil
	}
	for _, m := range c.Members {
		if p, ok := m.(*fir.Property); ok && p.Name.Simple() == name {
			return p
		}
	}
	return nil
}

func (b *Builder) buildTypeOp(f *fir.Function, n *syntax.Node, env *typeEnv) *fir.Expr {
	if n.NumChildren() < 2 || n.Child(1).Kind() != syntax.KindTypeRef {
		b.unexpected(n)
		return &fir.Expr{Kind: fir.ExprInvalid, Span: n.Span(), Type: fir.ErrorType()}
	}
	value := b.buildExpr(f, n.Child(0), env)
	target := b.resolveType(n.Child(1), env)
	kind := fir.ExprIsCheck
	t := b.builtins.Type(builtins.NameBoolean)
	if n.Kind() == syntax.KindAsCast {
		kind = fir.ExprAsCast
		t = target
	}
	return &fir.Expr{Kind: kind, Span: n.Span(), Type: t,
		Data: fir.TypeOpData{Value: value, Target: target}}
}
