package firbuild

import (
	"testing"

	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/source"
	"vela/internal/syntax"
)

type testWorld struct {
	session  *fir.Session
	builtins *builtins.Synthesizer
	bag      *diag.Bag
	module   *fir.Module
	builder  *Builder
}

func newWorld(t *testing.T) *testWorld {
	t.Helper()
	session := fir.NewSession()
	blt := builtins.NewSynthesizer(session)
	bag := diag.NewBag(50)
	module := &fir.Module{Name: "demo"}
	return &testWorld{
		session:  session,
		builtins: blt,
		bag:      bag,
		module:   module,
		builder:  NewBuilder(session, blt, diag.BagReporter{Bag: bag}, nil, module),
	}
}

func (w *testWorld) convert(t *testing.T, files ...*syntax.Node) {
	t.Helper()
	for _, f := range files {
		w.builder.Declare(f)
	}
	for _, f := range files {
		w.builder.Build(f)
	}
}

func (w *testWorld) classNamed(t *testing.T, name string) *fir.Class {
	t.Helper()
	c := w.module.FindClass(name)
	if c == nil {
		t.Fatalf("class %s not built", name)
	}
	return c
}

func memberFun(t *testing.T, c *fir.Class, name string) *fir.Function {
	t.Helper()
	for _, m := range c.MemberFunctions() {
		if m.Name.Simple() == name {
			return m
		}
	}
	t.Fatalf("%s has no member %s", c.Name.String(), name)
	return nil
}

var zero = source.Span{}

func funDecl(name string, children ...*syntax.Node) *syntax.Node {
	all := append([]*syntax.Node{syntax.Name(zero, name)}, children...)
	return syntax.New(syntax.KindFunDecl, zero, "", all...)
}

func classDecl(kind syntax.Kind, name string, children ...*syntax.Node) *syntax.Node {
	all := append([]*syntax.Node{syntax.Name(zero, name)}, children...)
	return syntax.New(kind, zero, "", all...)
}

func body(stmts ...*syntax.Node) *syntax.Node {
	return syntax.New(syntax.KindBody, zero, "", stmts...)
}

func supers(refs ...*syntax.Node) *syntax.Node {
	return syntax.New(syntax.KindSupertypeList, zero, "", refs...)
}

func params(ps ...*syntax.Node) *syntax.Node {
	return syntax.New(syntax.KindParamList, zero, "", ps...)
}

func TestBuildsClassHierarchyAcrossFiles(t *testing.T) {
	w := newWorld(t)
	base := syntax.File(zero,
		classDecl(syntax.KindClassDecl, "Animal",
			syntax.Modifiers(zero, "open"),
			body(funDecl("speak",
				syntax.Modifiers(zero, "open"),
				params(),
				syntax.TypeRef(zero, "String"),
				body(syntax.New(syntax.KindReturn, zero, "",
					syntax.New(syntax.KindLiteral, zero, "\"...\""))),
			)),
		))
	// Dog references Animal from the other file
	derived := syntax.File(zero,
		classDecl(syntax.KindClassDecl, "Dog",
			supers(syntax.TypeRef(zero, "Animal")),
			body(funDecl("speak",
				syntax.Modifiers(zero, "override"),
				params(),
				syntax.TypeRef(zero, "String"),
				body(syntax.New(syntax.KindReturn, zero, "",
					syntax.New(syntax.KindLiteral, zero, "\"woof\""))),
			)),
		))
	w.convert(t, derived, base) // order must not matter

	animal := w.classNamed(t, "Animal")
	dog := w.classNamed(t, "Dog")
	if animal.Modality != fir.ModalityOpen {
		t.Fatalf("Animal modality = %v", animal.Modality)
	}
	if len(dog.Supertypes) != 1 || dog.Supertypes[0].Class != animal.Symbol {
		t.Fatalf("Dog supertypes = %v", dog.Supertypes)
	}

	speak := memberFun(t, animal, "speak")
	if speak.Modality != fir.ModalityOpen {
		t.Fatalf("speak modality = %v", speak.Modality)
	}
	if speak.Body == nil || speak.Body.Kind != fir.ExprBlock {
		t.Fatalf("speak body missing")
	}
	if speak.Return.Class != w.builtins.MustClass(builtins.NameString).Symbol {
		t.Fatalf("speak return = %s", speak.Return.Format(w.session.Symbols))
	}
	if got := w.session.Symbols.Decl(speak.Symbol); got != speak {
		t.Fatalf("speak symbol binds to %v", got)
	}
	if w.bag.HasErrors() {
		t.Fatalf("clean input produced: %v", w.bag.Items())
	}
}

func TestGenericClassBindsTypeParams(t *testing.T) {
	w := newWorld(t)
	file := syntax.File(zero,
		classDecl(syntax.KindClassDecl, "Box",
			syntax.New(syntax.KindTypeParamList, zero, "",
				syntax.New(syntax.KindTypeParam, zero, "", syntax.Name(zero, "T"))),
			body(funDecl("get", params(), syntax.TypeRef(zero, "T"))),
		))
	w.convert(t, file)

	box := w.classNamed(t, "Box")
	if len(box.TypeParams) != 1 || box.TypeParams[0].Owner != box.Symbol {
		t.Fatalf("type params = %v", box.TypeParams)
	}
	get := memberFun(t, box, "get")
	if get.Return.Kind != fir.TypeParamRef || get.Return.Param != box.TypeParams[0] {
		t.Fatalf("get return does not reference the class parameter")
	}
}

func TestUnresolvedSupertypeDegrades(t *testing.T) {
	w := newWorld(t)
	file := syntax.File(zero,
		classDecl(syntax.KindClassDecl, "A",
			supers(syntax.TypeRef(zero, "Vanished"))),
		classDecl(syntax.KindClassDecl, "B"),
	)
	w.convert(t, file)

	a := w.classNamed(t, "A")
	if len(a.Supertypes) != 1 || !a.Supertypes[0].IsError() {
		t.Fatalf("unresolved supertype = %v", a.Supertypes)
	}
	w.classNamed(t, "B") // sibling still built
	found := false
	for _, item := range w.bag.Items() {
		if item.Code == diag.ResUnresolvedReference {
			found = true
		}
	}
	if !found {
		t.Fatalf("no unresolved-reference diagnostic")
	}
}

func TestDuplicateMemberReported(t *testing.T) {
	w := newWorld(t)
	file := syntax.File(zero,
		classDecl(syntax.KindClassDecl, "A",
			body(
				funDecl("f", params(syntax.Param(zero, "x", syntax.TypeRef(zero, "Int")))),
				funDecl("f", params(syntax.Param(zero, "x", syntax.TypeRef(zero, "Int")))),
			)))
	w.convert(t, file)

	a := w.classNamed(t, "A")
	if n := len(a.MemberFunctions()); n != 1 {
		t.Fatalf("kept %d members, want 1", n)
	}
	found := false
	for _, item := range w.bag.Items() {
		if item.Code == diag.BuildDuplicateMember {
			found = true
		}
	}
	if !found {
		t.Fatalf("no duplicate-member diagnostic")
	}
}

func TestEnumEntriesOrdered(t *testing.T) {
	w := newWorld(t)
	entry := func(name string) *syntax.Node {
		return syntax.New(syntax.KindEnumEntry, zero, "", syntax.Name(zero, name))
	}
	file := syntax.File(zero,
		classDecl(syntax.KindEnumDecl, "Color",
			body(entry("RED"), entry("GREEN"), entry("BLUE"))))
	w.convert(t, file)

	color := w.classNamed(t, "Color")
	if color.Kind != fir.ClassKindEnum {
		t.Fatalf("Color kind = %v", color.Kind)
	}
	if len(color.Entries) != 3 {
		t.Fatalf("entries = %d", len(color.Entries))
	}
	for i, e := range color.Entries {
		if e.Ordinal != i {
			t.Fatalf("entry %s ordinal = %d", e.Name.Simple(), e.Ordinal)
		}
	}
	if color.Entries[2].Name.Simple() != "BLUE" {
		t.Fatalf("entry order not preserved")
	}
}

func TestDelegateSpecRecorded(t *testing.T) {
	w := newWorld(t)
	file := syntax.File(zero,
		classDecl(syntax.KindInterfaceDecl, "Printer",
			body(funDecl("print", params()))),
		classDecl(syntax.KindClassDecl, "Console",
			syntax.New(syntax.KindDelegateSpec, zero, "",
				syntax.TypeRef(zero, "Printer"), syntax.Name(zero, "impl")),
		))
	w.convert(t, file)

	console := w.classNamed(t, "Console")
	printer := w.classNamed(t, "Printer")
	if len(console.Delegates) != 1 || console.Delegates[0].Field != "impl" {
		t.Fatalf("delegates = %v", console.Delegates)
	}
	if len(console.Supertypes) != 1 || console.Supertypes[0].Class != printer.Symbol {
		t.Fatalf("delegation did not imply the supertype edge")
	}
}

func TestBodyCallResolution(t *testing.T) {
	w := newWorld(t)
	call := func(name string, args ...*syntax.Node) *syntax.Node {
		all := append([]*syntax.Node{syntax.New(syntax.KindNameRef, zero, name)}, args...)
		return syntax.New(syntax.KindCall, zero, "", all...)
	}
	file := syntax.File(zero,
		funDecl("helper", params(), body()),
		classDecl(syntax.KindClassDecl, "A",
			syntax.Modifiers(zero, "open"),
			body(
				funDecl("hook", syntax.Modifiers(zero, "open"), params(), body()),
				funDecl("work",
					params(syntax.Param(zero, "x", syntax.TypeRef(zero, "Int"))),
					body(
						call("hook"),
						call("helper"),
						call("missing"),
						syntax.New(syntax.KindNameRef, zero, "x"),
					)),
			)))
	w.convert(t, file)

	a := w.classNamed(t, "A")
	work := memberFun(t, a, "work")
	block := work.Body.Data.(fir.BlockData)

	hookCall := block.Exprs[0].Data.(fir.CallData)
	if hookCall.Target != memberFun(t, a, "hook").Symbol || hookCall.Dispatch != fir.DispatchVirtual {
		t.Fatalf("open member call not virtual: %+v", hookCall)
	}
	helperCall := block.Exprs[1].Data.(fir.CallData)
	if !helperCall.Target.IsValid() || helperCall.Dispatch != fir.DispatchDirect {
		t.Fatalf("top-level call not direct: %+v", helperCall)
	}
	missingCall := block.Exprs[2].Data.(fir.CallData)
	if missingCall.Target.IsValid() {
		t.Fatalf("unresolved callee got a target")
	}
	found := false
	for _, item := range w.bag.Items() {
		if item.Code == diag.ResUnresolvedReference {
			found = true
		}
	}
	if !found {
		t.Fatalf("unresolved callee produced no diagnostic")
	}
	paramRef := block.Exprs[3]
	if paramRef.Kind != fir.ExprParamRef || paramRef.Data.(fir.ParamRefData).Index != 0 {
		t.Fatalf("parameter name did not resolve to a param ref")
	}
}

func TestUnknownModifierReported(t *testing.T) {
	w := newWorld(t)
	file := syntax.File(zero,
		classDecl(syntax.KindClassDecl, "A",
			syntax.Modifiers(zero, "open", "frobnicated")))
	w.convert(t, file)

	found := false
	for _, item := range w.bag.Items() {
		if item.Code == diag.BuildBadModality {
			found = true
		}
	}
	if !found {
		t.Fatalf("unknown modifier accepted silently")
	}
	if w.classNamed(t, "A").Modality != fir.ModalityOpen {
		t.Fatalf("good modifier dropped with the bad one")
	}
}
