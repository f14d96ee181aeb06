package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"vela/internal/diag"
	"vela/internal/source"
)

func sampleSet(t *testing.T) (*source.FileSet, source.Span) {
	t.Helper()
	fs := source.NewFileSet()
	content := "class A : Base {\n    fun f() {}\n}\n"
	id := fs.AddVirtual("a.vela", []byte(content))
	// Span covers "Base" on line 1.
	return fs, source.Span{File: id, Start: 10, End: 14}
}

func TestPrettyBasicFormat(t *testing.T) {
	fs, span := sampleSet(t)
	items := []diag.Diagnostic{{
		Severity:   diag.SevError,
		Code:       diag.ResUnresolvedSupertype,
		MessageKey: "unresolved supertype {0}",
		Args:       []string{"Base"},
		Primary:    span,
	}}

	var buf bytes.Buffer
	if err := WritePretty(&buf, fs, items, PrettyOpts{}); err != nil {
		t.Fatalf("WritePretty: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 output lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasSuffix(lines[0], "a.vela:1:11: ERROR VL3002: unresolved supertype Base") {
		t.Fatalf("bad header line: %q", lines[0])
	}
	if lines[1] != "    class A : Base {" {
		t.Fatalf("bad excerpt line: %q", lines[1])
	}
	if lines[2] != "              ^~~~" {
		t.Fatalf("bad caret line: %q", lines[2])
	}
}

func TestPrettyNotesAndMax(t *testing.T) {
	fs, span := sampleSet(t)
	items := []diag.Diagnostic{
		{
			Severity:   diag.SevError,
			Code:       diag.BuildDuplicateMember,
			MessageKey: "duplicate member {0}",
			Args:       []string{"f"},
			Primary:    span,
			Notes: []diag.Note{{
				Span: span,
				Key:  "previous declaration here",
			}},
		},
		{
			Severity:   diag.SevWarning,
			Code:       diag.LowResidualVirtualCall,
			MessageKey: "virtual call survives lowering",
			Primary:    span,
		},
	}

	var buf bytes.Buffer
	opts := PrettyOpts{ShowNotes: true, Max: 1}
	if err := WritePretty(&buf, fs, items, opts); err != nil {
		t.Fatalf("WritePretty: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "note: previous declaration here") {
		t.Fatalf("note missing:\n%s", out)
	}
	if !strings.Contains(out, "... and 1 more") {
		t.Fatalf("overflow marker missing:\n%s", out)
	}
	if strings.Contains(out, "VL6002") {
		t.Fatalf("diagnostic past cap was printed:\n%s", out)
	}
}

func TestPrettyZeroWidthSpanGetsSingleCaret(t *testing.T) {
	fs, _ := sampleSet(t)
	id, _ := fs.GetLatest("a.vela")
	items := []diag.Diagnostic{{
		Severity:   diag.SevError,
		Code:       diag.BuildUnexpectedNode,
		MessageKey: "unexpected node",
		Primary:    source.Span{File: id, Start: 6, End: 6},
	}}

	var buf bytes.Buffer
	if err := WritePretty(&buf, fs, items, PrettyOpts{}); err != nil {
		t.Fatalf("WritePretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\n          ^\n") {
		t.Fatalf("expected single caret:\n%s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	fs, span := sampleSet(t)
	items := []diag.Diagnostic{{
		Severity:   diag.SevError,
		Code:       diag.PhaseAborted,
		MessageKey: "phase {0} aborted",
		Args:       []string{"devirt-apply"},
		Primary:    span,
		Phase:      "devirt-apply",
		Decl:       "demo.A.f",
	}}

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, IncludeNotes: true}
	if err := WriteJSON(&buf, fs, items, opts); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded []jsonDiagnostic
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(decoded))
	}
	got := decoded[0]
	if got.Code != "VL5005" || got.Severity != "ERROR" {
		t.Fatalf("bad code/severity: %+v", got)
	}
	if got.Message != "phase devirt-apply aborted" {
		t.Fatalf("bad message: %q", got.Message)
	}
	if got.Start == nil || got.Start.Line != 1 || got.Start.Col != 11 {
		t.Fatalf("bad start position: %+v", got.Start)
	}
	if got.Phase != "devirt-apply" || got.Decl != "demo.A.f" {
		t.Fatalf("phase/decl lost: %+v", got)
	}
}
