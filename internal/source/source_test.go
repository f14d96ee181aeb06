package source

import (
	"testing"
)

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()
	a := in.Intern("contains")
	b := in.Intern("remove")
	if a == b {
		t.Fatalf("distinct strings share an ID: %v", a)
	}
	if again := in.Intern("contains"); again != a {
		t.Fatalf("re-interning changed the ID: %v vs %v", again, a)
	}
	if got := in.MustLookup(a); got != "contains" {
		t.Fatalf("lookup returned %q", got)
	}
	if in.Has(StringID(1000)) {
		t.Fatalf("Has accepted an unallocated ID")
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("box.vl", []byte("class Box\n  fun get\n"))
	start, end := fs.Resolve(Span{File: id, Start: 12, End: 19})
	if start.Line != 2 || start.Col != 3 {
		t.Fatalf("start = %+v, want 2:3", start)
	}
	if end.Line != 2 || end.Col != 10 {
		t.Fatalf("end = %+v, want 2:10", end)
	}
	if line := fs.Get(id).GetLine(2); line != "  fun get" {
		t.Fatalf("GetLine(2) = %q", line)
	}
	if line := fs.Get(id).GetLine(9); line != "" {
		t.Fatalf("GetLine out of range = %q", line)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Fatalf("cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover mutated the span: %v", got)
	}
}
