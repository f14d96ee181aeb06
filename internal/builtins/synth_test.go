package builtins

import (
	"testing"

	"vela/internal/fir"
)

func memberNamed(t *testing.T, c *fir.Class, name string) *fir.Function {
	t.Helper()
	var found *fir.Function
	for _, f := range c.MemberFunctions() {
		if f.Name.Simple() == name {
			if found != nil {
				t.Fatalf("%s has two members named %s", c.Name, name)
			}
			found = f
		}
	}
	if found == nil {
		t.Fatalf("%s has no member %s", c.Name, name)
	}
	return found
}

func TestHandlesIdentityStable(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	a := s.MustClass(NameArray)
	b := s.MustClass(NameArray)
	if a != b || a.Symbol != b.Symbol {
		t.Fatalf("two requests for Array returned distinct handles")
	}
	if s.State(NameArray) != StatePending {
		t.Fatalf("unfinalized class state = %v", s.State(NameArray))
	}
}

func TestUnknownNameRejected(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	if _, err := s.ClassFor("Widget"); err == nil {
		t.Fatalf("unknown well-known name accepted")
	}
	if _, err := s.ClassFor("Function99"); err == nil {
		t.Fatalf("arity beyond the cap accepted")
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	first, err := s.Members(NameArray)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	again, err := s.Members(NameArray)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(first) != len(again) {
		t.Fatalf("second finalization changed the member set: %d vs %d", len(first), len(again))
	}
	if s.State(NameArray) != StateFinalized {
		t.Fatalf("state after Members = %v", s.State(NameArray))
	}
}

func TestFakeOverridesInherited(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	if _, err := s.Members(NameInt); err != nil {
		t.Fatalf("members: %v", err)
	}
	intCls := s.MustClass(NameInt)

	equals := memberNamed(t, intCls, "equals")
	if equals.DeclOrigin() != fir.OriginFakeOverride {
		t.Fatalf("equals origin = %v", equals.DeclOrigin())
	}
	if len(equals.Overrides) == 0 {
		t.Fatalf("fake override lost its overridden symbol")
	}

	// compareTo is declared on Int and must be linked to
	// Comparable<Int>.compareTo rather than duplicated.
	compareTo := memberNamed(t, intCls, "compareTo")
	if compareTo.DeclOrigin() != fir.OriginBuiltin {
		t.Fatalf("declared compareTo replaced by a fake override")
	}
	cmp := s.MustClass(NameComparable)
	super := memberNamed(t, cmp, "compareTo")
	if !containsSym(compareTo.Overrides, super.Symbol) {
		t.Fatalf("compareTo not linked to Comparable.compareTo")
	}
}

func TestDiamondInheritanceCollapses(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	if _, err := s.Members(NameMutableList); err != nil {
		t.Fatalf("members: %v", err)
	}
	ml := s.MustClass(NameMutableList)

	// contains reaches MutableList through both List and MutableCollection;
	// it must collapse into a single fake override tracking both paths.
	contains := memberNamed(t, ml, "contains")
	if contains.DeclOrigin() != fir.OriginFakeOverride {
		t.Fatalf("contains origin = %v", contains.DeclOrigin())
	}
	if len(contains.Overrides) < 2 {
		t.Fatalf("diamond paths not merged: overrides = %v", contains.Overrides)
	}

	// the element type must be MutableList's own parameter
	elem := contains.Params[0].Type
	if elem.Kind != fir.TypeParamRef || elem.Param != ml.TypeParams[0] {
		t.Fatalf("contains element type not substituted: %+v", elem)
	}
}

func TestEnumSelfReferentialBound(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	if _, err := s.Members(NameEnum); err != nil {
		t.Fatalf("members: %v", err)
	}
	enum := s.MustClass(NameEnum)
	if len(enum.TypeParams) != 1 {
		t.Fatalf("Enum type params = %d", len(enum.TypeParams))
	}
	bound := enum.TypeParams[0].Bounds[0]
	if bound.Class != enum.Symbol {
		t.Fatalf("E bound does not reference Enum itself")
	}
	if s.State(NameEnum) != StateFinalized {
		t.Fatalf("self-referential hierarchy did not finalize")
	}
}

func TestFunctionTypes(t *testing.T) {
	s := NewSynthesizer(fir.NewSession())
	if _, err := s.Members(FunctionName(2)); err != nil {
		t.Fatalf("members: %v", err)
	}
	f2 := s.MustClass(FunctionName(2))
	invoke := memberNamed(t, f2, "invoke")
	if len(invoke.Params) != 2 {
		t.Fatalf("Function2.invoke arity = %d", len(invoke.Params))
	}
	if invoke.Return.Param != f2.TypeParams[2] {
		t.Fatalf("invoke return is not R")
	}
}

func TestFinalizationOrderIndependent(t *testing.T) {
	countMembers := func(order []string) map[string]int {
		s := NewSynthesizer(fir.NewSession())
		for _, name := range order {
			if _, err := s.Members(name); err != nil {
				t.Fatalf("members(%s): %v", name, err)
			}
		}
		out := make(map[string]int, len(order))
		for _, name := range order {
			members, _ := s.Members(name)
			out[name] = len(members)
		}
		return out
	}

	forward := countMembers([]string{NameAny, NameCollection, NameList, NameMutableList})
	reverse := countMembers([]string{NameMutableList, NameList, NameCollection, NameAny})
	for name, n := range forward {
		if reverse[name] != n {
			t.Fatalf("%s member count depends on finalization order: %d vs %d", name, n, reverse[name])
		}
	}
}

func TestEveryCatalogueNameSynthesizes(t *testing.T) {
	names := []string{
		NameAny, NameNothing, NameUnit, NameBoolean, NameNumber,
		NameInt, NameLong, NameDouble, NameString, NameArray,
		NameComparable, NameIterable, NameCollection,
		NameMutableCollection, NameList, NameMutableList, NameEnum,
	}
	s := NewSynthesizer(fir.NewSession())
	for _, name := range names {
		if generators[name] == nil {
			t.Fatalf("no generator registered for %s", name)
		}
		c, err := s.ClassFor(name)
		if err != nil {
			t.Fatalf("ClassFor(%s): %v", name, err)
		}
		if c.Name.Simple() != name {
			t.Fatalf("ClassFor(%s) returned %s", name, c.Name)
		}
	}
}
