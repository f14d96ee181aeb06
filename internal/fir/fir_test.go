package fir

import (
	"testing"

	"vela/internal/source"
)

func newClass(t *testing.T, s *Session, path string) *Class {
	t.Helper()
	c := &Class{DeclBase: DeclBase{Name: Name{Module: "demo", Path: path}}}
	s.NewClassSymbol(c)
	return c
}

func TestSymbolBindIdempotent(t *testing.T) {
	s := NewSession()
	c := newClass(t, s, "Box")

	// rebinding the same declaration is a no-op
	s.Symbols.Bind(c.Symbol, c)
	if got := s.Symbols.Class(c.Symbol); got != c {
		t.Fatalf("symbol resolves to %v", got)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("rebinding to a different declaration did not panic")
		}
	}()
	s.Symbols.Bind(c.Symbol, newClass(t, s, "Other"))
}

func TestSymbolEquality(t *testing.T) {
	s := NewSession()
	c := newClass(t, s, "Box")
	a, b := c.Symbol, c.DeclSymbol()
	if a != b {
		t.Fatalf("two handles to one declaration differ: %v vs %v", a, b)
	}
	if s.Symbols.Decl(NoSymbolID) != nil {
		t.Fatalf("NoSymbolID resolved to a declaration")
	}
}

func TestTypeEquality(t *testing.T) {
	s := NewSession()
	box := newClass(t, s, "Box")
	str := newClass(t, s, "String")

	a := ClassType(box.Symbol, ClassType(str.Symbol))
	b := ClassType(box.Symbol, ClassType(str.Symbol))
	if !a.Equal(b) {
		t.Fatalf("structurally equal types compare unequal")
	}
	if a.Equal(a.WithNullable(true)) {
		t.Fatalf("nullability ignored in comparison")
	}

	p1 := &TypeParameter{Name: "T"}
	p2 := &TypeParameter{Name: "T"}
	if ParamRef(p1).Equal(ParamRef(p2)) {
		t.Fatalf("distinct parameters with one spelling compare equal")
	}
}

func TestTypeErasure(t *testing.T) {
	s := NewSession()
	anyCls := newClass(t, s, "Any")
	num := newClass(t, s, "Number")

	unbounded := &TypeParameter{Name: "T"}
	if got := ParamRef(unbounded).Erased(anyCls.Symbol); got != anyCls.Symbol {
		t.Fatalf("unbounded parameter erased to %v", got)
	}

	bounded := &TypeParameter{Name: "N", Bounds: []Type{ClassType(num.Symbol)}}
	if got := ParamRef(bounded).Erased(anyCls.Symbol); got != num.Symbol {
		t.Fatalf("bounded parameter erased to %v, want Number", got)
	}
}

type renameVars struct{}

func (renameVars) TransformExpr(e *Expr) *Expr {
	if e.Kind != ExprVarRef {
		return e
	}
	return &Expr{Kind: ExprVarRef, Span: e.Span, Type: e.Type, Data: VarRefData{Name: "renamed"}}
}

func TestTransformReturnsReplacement(t *testing.T) {
	varRef := &Expr{Kind: ExprVarRef, Data: VarRefData{Name: "x"}}
	ret := &Expr{Kind: ExprReturn, Data: ReturnData{Value: varRef}}
	block := NewBlock(source.Span{}, ret)

	out := Transform(block, renameVars{})
	if out == block {
		t.Fatalf("changed tree returned the original root")
	}
	// original tree untouched
	if varRef.Data.(VarRefData).Name != "x" {
		t.Fatalf("transform mutated the input tree")
	}
	outRet := out.Data.(BlockData).Exprs[0]
	if outRet.Data.(ReturnData).Value.Data.(VarRefData).Name != "renamed" {
		t.Fatalf("replacement not applied")
	}

	// identity transform shares the tree
	same := Transform(block, identity{})
	if same != block {
		t.Fatalf("identity transform rebuilt the tree")
	}
}

type identity struct{}

func (identity) TransformExpr(e *Expr) *Expr { return e }

func TestNameDerivation(t *testing.T) {
	n := Name{Module: "demo", Path: "outer"}
	child := n.Child("Inner")
	if child.Path != "outer.Inner" {
		t.Fatalf("child path = %q", child.Path)
	}
	if child.Simple() != "Inner" {
		t.Fatalf("simple = %q", child.Simple())
	}
	if child.String() != "demo/outer.Inner" {
		t.Fatalf("string = %q", child.String())
	}
}
