package analysis

import (
	"testing"

	"vela/internal/callgraph"
	"vela/internal/fir"
	"vela/internal/source"
)

type world struct {
	session *fir.Session
	module  *fir.Module
}

func newWorld() *world {
	return &world{session: fir.NewSession(), module: &fir.Module{Name: "demo"}}
}

func (w *world) class(path string, modality fir.Modality, supertypes ...fir.Type) *fir.Class {
	c := &fir.Class{
		DeclBase: fir.DeclBase{
			Name:     fir.Name{Module: "demo", Path: path},
			Modality: modality,
		},
		Supertypes: supertypes,
	}
	w.session.NewClassSymbol(c)
	w.module.Classes = append(w.module.Classes, c)
	return c
}

func (w *world) method(c *fir.Class, name string, modality fir.Modality, body *fir.Expr, overrides ...fir.SymbolID) *fir.Function {
	f := &fir.Function{
		DeclBase: fir.DeclBase{
			Name:     c.Name.Child(name),
			Modality: modality,
		},
		Body:      body,
		Overrides: overrides,
		Owner:     c.Symbol,
	}
	sym := w.session.Symbols.New()
	f.Symbol = sym
	w.session.Symbols.Bind(sym, f)
	c.Members = append(c.Members, f)
	return f
}

func (w *world) topFun(name string, body *fir.Expr, params int) *fir.Function {
	f := &fir.Function{
		DeclBase: fir.DeclBase{Name: fir.Name{Module: "demo", Path: name}},
		Body:     body,
	}
	for i := range params {
		f.Params = append(f.Params, fir.Param{Name: "p" + string(rune('0'+i))})
	}
	sym := w.session.Symbols.New()
	f.Symbol = sym
	w.session.Symbols.Bind(sym, f)
	w.module.Functions = append(w.module.Functions, f)
	return f
}

func block(exprs ...*fir.Expr) *fir.Expr {
	return fir.NewBlock(source.Span{}, exprs...)
}

func vcall(target fir.SymbolID, args ...*fir.Expr) *fir.Expr {
	return &fir.Expr{Kind: fir.ExprCall, Data: fir.CallData{Target: target, Dispatch: fir.DispatchVirtual, Args: args}}
}

func dcall(target fir.SymbolID, args ...*fir.Expr) *fir.Expr {
	return &fir.Expr{Kind: fir.ExprCall, Data: fir.CallData{Target: target, Dispatch: fir.DispatchDirect, Args: args}}
}

// sealedHierarchy builds: sealed Base { open f() } ; A : Base { f() } ;
// B : Base { f() } and a caller with one virtual site on Base.f.
func sealedHierarchy(w *world) (site *fir.Expr, baseF, aF, bF *fir.Function) {
	base := w.class("Base", fir.ModalitySealed)
	baseF = w.method(base, "f", fir.ModalityAbstract, nil)
	a := w.class("A", fir.ModalityFinal, fir.ClassType(base.Symbol))
	aF = w.method(a, "f", fir.ModalityFinal, block(), baseF.Symbol)
	b := w.class("B", fir.ModalityFinal, fir.ClassType(base.Symbol))
	bF = w.method(b, "f", fir.ModalityFinal, block(), baseF.Symbol)

	site = vcall(baseF.Symbol)
	w.topFun("main", block(site), 0)
	return site, baseF, aF, bF
}

func TestDevirtualizeSealedClosedWorld(t *testing.T) {
	w := newWorld()
	site, _, aF, bF := sealedHierarchy(w)

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := Devirtualize(graph, ov, DevirtConfig{World: WorldClosed, UnfoldFactor: 4})

	targets, ok := res.Resolved(site)
	if !ok {
		t.Fatalf("sealed two-subclass hierarchy left the site virtual")
	}
	if len(targets) != 2 {
		t.Fatalf("resolved to %d targets, want 2", len(targets))
	}
	if targets[0] != aF.Symbol || targets[1] != bF.Symbol {
		t.Fatalf("targets = %v, want [%v %v]", targets, aF.Symbol, bF.Symbol)
	}
}

func TestDevirtualizeUnfoldFactorGivesUp(t *testing.T) {
	w := newWorld()
	site, _, _, _ := sealedHierarchy(w)

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := Devirtualize(graph, ov, DevirtConfig{World: WorldClosed, UnfoldFactor: 1})

	if _, ok := res.Resolved(site); ok {
		t.Fatalf("two candidates resolved under unfold factor 1")
	}
}

func TestDevirtualizeOpenWorldNeedsClosedHierarchy(t *testing.T) {
	w := newWorld()
	// open Base with a single concrete impl: open world must not trust it
	base := w.class("Base", fir.ModalityOpen)
	baseF := w.method(base, "f", fir.ModalityOpen, block())
	site := vcall(baseF.Symbol)
	w.topFun("main", block(site), 0)

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)

	open := Devirtualize(graph, ov, DevirtConfig{World: WorldOpen})
	if _, ok := open.Resolved(site); ok {
		t.Fatalf("open-world devirtualized an extensible hierarchy")
	}

	closed := Devirtualize(graph, ov, DevirtConfig{World: WorldClosed, UnfoldFactor: 4})
	if targets, ok := closed.Resolved(site); !ok || len(targets) != 1 {
		t.Fatalf("closed world failed on a single-impl hierarchy: %v", targets)
	}
}

func TestDevirtualizeOpenWorldSealedSingleTarget(t *testing.T) {
	w := newWorld()
	base := w.class("Base", fir.ModalitySealed)
	baseF := w.method(base, "f", fir.ModalityOpen, block())
	site := vcall(baseF.Symbol)
	w.topFun("main", block(site), 0)

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := Devirtualize(graph, ov, DevirtConfig{World: WorldOpen})
	if targets, ok := res.Resolved(site); !ok || len(targets) != 1 || targets[0] != baseF.Symbol {
		t.Fatalf("sealed single-target site not resolved in open world: %v", targets)
	}
}

func TestEscapeClassification(t *testing.T) {
	w := newWorld()

	stackAlloc := &fir.Expr{Kind: fir.ExprNew, Data: fir.NewData{}}
	retAlloc := &fir.Expr{Kind: fir.ExprNew, Data: fir.NewData{}}
	storedAlloc := &fir.Expr{Kind: fir.ExprNew, Data: fir.NewData{}}

	w.topFun("subject", block(
		&fir.Expr{Kind: fir.ExprFieldStore, Data: fir.FieldStoreData{Value: storedAlloc}},
		stackAlloc,
		&fir.Expr{Kind: fir.ExprReturn, Data: fir.ReturnData{Value: retAlloc}},
	), 0)

	df := callgraph.BuildDataFlow(w.module)
	res := AnalyzeEscapes(df, 0)
	if !res.Converged {
		t.Fatalf("tiny module did not converge")
	}
	if res.Alloc[stackAlloc] != LifetimeStack {
		t.Fatalf("discarded alloc = %v", res.Alloc[stackAlloc])
	}
	if res.Alloc[retAlloc] != LifetimeLocalHeap {
		t.Fatalf("returned alloc = %v", res.Alloc[retAlloc])
	}
	if res.Alloc[storedAlloc] != LifetimeGlobalHeap {
		t.Fatalf("stored alloc = %v", res.Alloc[storedAlloc])
	}
}

func TestEscapeInterprocedural(t *testing.T) {
	w := newWorld()

	// leak(p0) stores its parameter into a field
	leak := w.topFun("leak", block(
		&fir.Expr{Kind: fir.ExprFieldStore, Data: fir.FieldStoreData{
			Value: &fir.Expr{Kind: fir.ExprParamRef, Data: fir.ParamRefData{Index: 0}},
		}},
	), 1)

	// forward(p0) passes its parameter to leak; escape must propagate
	forward := w.topFun("forward", block(
		dcall(leak.Symbol, &fir.Expr{Kind: fir.ExprParamRef, Data: fir.ParamRefData{Index: 0}}),
	), 1)

	alloc := &fir.Expr{Kind: fir.ExprNew, Data: fir.NewData{}}
	w.topFun("subject", block(dcall(forward.Symbol, alloc)), 0)

	res := AnalyzeEscapes(callgraph.BuildDataFlow(w.module), 0)
	if res.Alloc[alloc] != LifetimeGlobalHeap {
		t.Fatalf("two-hop escape missed: %v", res.Alloc[alloc])
	}
}

func TestEscapeRecursiveCycleConverges(t *testing.T) {
	w := newWorld()

	// ping(p0) -> pong(p0) -> ping(p0): a data-flow cycle
	pingSym := w.session.Symbols.New()
	pong := w.topFun("pong", block(
		dcall(pingSym, &fir.Expr{Kind: fir.ExprParamRef, Data: fir.ParamRefData{Index: 0}}),
	), 1)
	ping := &fir.Function{
		DeclBase: fir.DeclBase{Name: fir.Name{Module: "demo", Path: "ping"}},
		Params:   []fir.Param{{Name: "p0"}},
		Body: block(
			dcall(pong.Symbol, &fir.Expr{Kind: fir.ExprParamRef, Data: fir.ParamRefData{Index: 0}}),
		),
	}
	ping.Symbol = pingSym
	w.session.Symbols.Bind(pingSym, ping)
	w.module.Functions = append(w.module.Functions, ping)

	alloc := &fir.Expr{Kind: fir.ExprNew, Data: fir.NewData{}}
	w.topFun("subject", block(dcall(ping.Symbol, alloc)), 0)

	res := AnalyzeEscapes(callgraph.BuildDataFlow(w.module), 0)
	if !res.Converged {
		t.Fatalf("cycle did not converge in %d iterations", res.Iterations)
	}
	if res.Alloc[alloc] != LifetimeStack {
		t.Fatalf("non-escaping cycle classified %v", res.Alloc[alloc])
	}
}

func TestDCEExecutableRoots(t *testing.T) {
	w := newWorld()
	dead := w.topFun("dead", block(), 0)
	live := w.topFun("live", block(), 0)
	main := w.topFun("main", block(dcall(live.Symbol)), 0)
	w.module.Entry = main.Symbol

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := EliminateDeadCode(w.module, w.session.Symbols, graph, ov, DCEConfig{Policy: RootExecutable})

	if res.Reachable[dead.Symbol] {
		t.Fatalf("dead function marked reachable")
	}
	if len(w.module.Functions) != 2 {
		t.Fatalf("functions after DCE = %d, want 2", len(w.module.Functions))
	}
	for _, f := range w.module.Functions {
		if f.Symbol == dead.Symbol {
			t.Fatalf("dead function survived")
		}
	}
}

func TestDCELibraryKeepsPublic(t *testing.T) {
	w := newWorld()
	pub := w.topFun("api", block(), 0)
	priv := w.topFun("helper", block(), 0)
	priv.Visibility = fir.VisibilityPrivate

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := EliminateDeadCode(w.module, w.session.Symbols, graph, ov, DCEConfig{Policy: RootLibrary})

	if !res.Reachable[pub.Symbol] {
		t.Fatalf("public function not rooted")
	}
	if res.Reachable[priv.Symbol] {
		t.Fatalf("private unreferenced function survived library DCE")
	}
}

func TestDCEKeepListNeverOverridden(t *testing.T) {
	w := newWorld()
	abi := w.topFun("abiStub", block(), 0)
	main := w.topFun("main", block(), 0)
	w.module.Entry = main.Symbol

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := EliminateDeadCode(w.module, w.session.Symbols, graph, ov, DCEConfig{
		Policy: RootExecutable,
		Keep:   []fir.SymbolID{abi.Symbol},
	})

	if !res.Reachable[abi.Symbol] {
		t.Fatalf("keep-list entry eliminated")
	}
}

func TestDCEVirtualSiteKeepsOverrides(t *testing.T) {
	w := newWorld()
	site, baseF, aF, bF := sealedHierarchy(w)
	_ = site
	main := w.module.Functions[0] // sealedHierarchy's caller
	w.module.Entry = main.Symbol

	graph := callgraph.Build(w.module)
	ov := BuildOverriders(w.module, w.session.Symbols)
	res := EliminateDeadCode(w.module, w.session.Symbols, graph, ov, DCEConfig{Policy: RootExecutable})

	for _, sym := range []fir.SymbolID{baseF.Symbol, aF.Symbol, bF.Symbol} {
		if !res.Reachable[sym] {
			t.Fatalf("virtual dispatch target %v eliminated", sym)
		}
	}
}
