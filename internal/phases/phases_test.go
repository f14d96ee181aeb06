package phases

import (
	"errors"
	"testing"

	"vela/internal/diag"
	"vela/internal/fir"
)

func newCtx(bag *diag.Bag) *Context {
	session := fir.NewSession()
	module := &fir.Module{Name: "demo"}
	var reporter diag.Reporter = diag.NopReporter{}
	if bag != nil {
		reporter = diag.BagReporter{Bag: bag}
	}
	return NewContext(session, module, reporter)
}

func phase(name string, run func(ctx *Context) error, prereqs ...string) *Phase {
	if run == nil {
		run = func(*Context) error { return nil }
	}
	return &Phase{Name: name, Prereqs: prereqs, Run: run}
}

func TestRegisterRejectsDuplicatesAndSelfEdges(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(phase("a", nil)); err != nil {
		t.Fatalf("register a: %v", err)
	}
	if err := r.Register(phase("a", nil)); err == nil {
		t.Fatalf("duplicate name accepted")
	}
	if err := r.Register(phase("b", nil, "b")); err == nil {
		t.Fatalf("self prerequisite accepted")
	}
	if err := r.Register(phase("c", nil, "a", "a")); err == nil {
		t.Fatalf("repeated prerequisite accepted")
	}
}

func TestRegisterDetectsCycle(t *testing.T) {
	r := NewRegistry()
	// a depends on b, registered first: b is unknown, so no cycle yet
	if err := r.Register(phase("a", nil, "b")); err != nil {
		t.Fatalf("forward prerequisite rejected: %v", err)
	}
	// b depending on a closes a->b->a
	if err := r.Register(phase("b", nil, "a")); err == nil {
		t.Fatalf("prerequisite cycle accepted")
	}
	if r.Lookup("b") != nil {
		t.Fatalf("rejected phase stayed registered")
	}
}

// Running [b, a] where b requires a must fail during validation, before
// any phase body touches the module.
func TestOrderViolationBeforeMutation(t *testing.T) {
	bag := diag.NewBag(10)
	ctx := newCtx(bag)
	mutations := 0
	r := NewRegistry()
	r.MustRegister(phase("a", func(*Context) error { mutations++; return nil }))
	r.MustRegister(phase("b", func(*Context) error { mutations++; return nil }, "a"))

	if err := r.RunOrder([]string{"b", "a"}, ctx); err == nil {
		t.Fatalf("inverted order accepted")
	}
	if mutations != 0 {
		t.Fatalf("%d phases ran despite invalid order", mutations)
	}
	if !bag.HasErrors() {
		t.Fatalf("order violation produced no diagnostic")
	}

	if err := r.RunOrder([]string{"a", "b"}, ctx); err != nil {
		t.Fatalf("valid order failed: %v", err)
	}
	if mutations != 2 {
		t.Fatalf("valid order ran %d phases, want 2", mutations)
	}
}

func TestUnknownPhaseInOrder(t *testing.T) {
	ctx := newCtx(nil)
	r := NewRegistry()
	r.MustRegister(phase("a", nil))
	if err := r.RunOrder([]string{"a", "ghost"}, ctx); err == nil {
		t.Fatalf("unknown phase name accepted")
	}
}

func TestArtifactsFlowBetweenPhases(t *testing.T) {
	ctx := newCtx(nil)
	var got any
	r := NewRegistry()
	r.MustRegister(phase("produce", func(c *Context) error {
		c.StoreArtifact("graph", 42)
		return nil
	}))
	r.MustRegister(phase("consume", func(c *Context) error {
		v, ok := c.Artifact("graph")
		if !ok {
			return errors.New("artifact missing")
		}
		got = v
		return nil
	}, "produce"))

	if err := r.RunOrder([]string{"produce", "consume"}, ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != 42 {
		t.Fatalf("artifact = %v", got)
	}
}

func TestSkippedOptionalPrereqIsFatal(t *testing.T) {
	bag := diag.NewBag(10)
	ctx := newCtx(bag)
	ctx.SetEnabled("opt", false)
	ran := false
	r := NewRegistry()
	r.MustRegister(&Phase{Name: "opt", Optional: true, Run: func(*Context) error { return nil }})
	r.MustRegister(phase("dep", func(*Context) error { ran = true; return nil }, "opt"))

	if err := r.RunOrder([]string{"opt", "dep"}, ctx); err == nil {
		t.Fatalf("dependent of a skipped phase ran without error")
	}
	if ran {
		t.Fatalf("dependent phase executed despite incomplete prerequisite")
	}
	if ctx.Status("opt") != StatusSkipped {
		t.Fatalf("opt status = %v", ctx.Status("opt"))
	}
}

func TestPanicBecomesAbortWithContext(t *testing.T) {
	bag := diag.NewBag(10)
	ctx := newCtx(bag)
	r := NewRegistry()
	r.MustRegister(phase("boom", func(c *Context) error {
		c.SetCurrentDecl("demo.Broken.f")
		panic("virtual call where none should remain")
	}))

	if err := r.RunOrder([]string{"boom"}, ctx); err == nil {
		t.Fatalf("panicking phase reported success")
	}
	var abort *diag.Diagnostic
	for i, item := range bag.Items() {
		if item.Code == diag.PhaseAborted {
			abort = &bag.Items()[i]
		}
	}
	if abort == nil {
		t.Fatalf("no abort diagnostic recorded")
	}
	if abort.Phase != "boom" || abort.Decl != "demo.Broken.f" {
		t.Fatalf("abort context = %q/%q", abort.Phase, abort.Decl)
	}
}

func TestDisposalRunsAfterOptionalFailureOnly(t *testing.T) {
	mkReg := func(optionalFailure bool, disposed *bool) *Registry {
		r := NewRegistry()
		r.MustRegister(&Phase{
			Name:     "work",
			Optional: optionalFailure,
			Run:      func(*Context) error { return errors.New("broken") },
		})
		r.MustRegister(&Phase{
			Name: "dispose",
			Kind: KindDisposal,
			Run:  func(*Context) error { *disposed = true; return nil },
		})
		return r
	}

	disposed := false
	r := mkReg(true, &disposed)
	if err := r.RunOrder([]string{"work", "dispose"}, newCtx(nil)); err == nil {
		t.Fatalf("optional failure not propagated")
	}
	if !disposed {
		t.Fatalf("disposal skipped after optional failure")
	}

	disposed = false
	r = mkReg(false, &disposed)
	if err := r.RunOrder([]string{"work", "dispose"}, newCtx(nil)); err == nil {
		t.Fatalf("mandatory failure not propagated")
	}
	if disposed {
		t.Fatalf("disposal ran after mandatory failure")
	}
}

func TestPhaseRunsOncePerUnit(t *testing.T) {
	ctx := newCtx(nil)
	runs := 0
	r := NewRegistry()
	r.MustRegister(phase("a", func(*Context) error { runs++; return nil }))

	if err := r.RunOrder([]string{"a"}, ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := r.RunOrder([]string{"a"}, ctx); err == nil {
		t.Fatalf("second run over the same unit accepted")
	}
	if runs != 1 {
		t.Fatalf("phase body ran %d times", runs)
	}
}

func TestScheduleBatchesIndependentPhases(t *testing.T) {
	noop := func(*Context) error { return nil }
	r := NewRegistry()
	// b and a share no edges; both feed c; d follows c.
	r.MustRegister(phase("b", noop))
	r.MustRegister(phase("a", noop))
	r.MustRegister(phase("c", noop, "a", "b"))
	r.MustRegister(phase("d", noop, "c"))

	topo := r.Schedule()
	if topo.Cyclic {
		t.Fatalf("unexpected cycle: %v", topo.Cycles)
	}
	wantBatches := [][]string{{"a", "b"}, {"c"}, {"d"}}
	if len(topo.Batches) != len(wantBatches) {
		t.Fatalf("batches = %v", topo.Batches)
	}
	for i, want := range wantBatches {
		got := topo.Batches[i]
		if len(got) != len(want) {
			t.Fatalf("batch %d = %v, want %v", i, got, want)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("batch %d = %v, want %v", i, got, want)
			}
		}
	}
	if err := r.ValidateOrder(topo.Order); err != nil {
		t.Fatalf("computed schedule rejected: %v", err)
	}
}

func TestScheduleIsRegistrationOrderIndependent(t *testing.T) {
	noop := func(*Context) error { return nil }
	build := func(names []string) *Topo {
		r := NewRegistry()
		for _, n := range names {
			r.MustRegister(phase(n, noop))
		}
		return r.Schedule()
	}
	first := build([]string{"x", "y", "z"})
	second := build([]string{"z", "x", "y"})
	for i := range first.Order {
		if first.Order[i] != second.Order[i] {
			t.Fatalf("schedule depends on registration order: %v vs %v", first.Order, second.Order)
		}
	}
}
