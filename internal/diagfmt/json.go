package diagfmt

import (
	"encoding/json"
	"io"

	"vela/internal/diag"
	"vela/internal/source"
)

type jsonPos struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

type jsonNote struct {
	Message string   `json:"message"`
	File    string   `json:"file,omitempty"`
	Start   *jsonPos `json:"start,omitempty"`
}

type jsonDiagnostic struct {
	Severity string     `json:"severity"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	File     string     `json:"file"`
	Start    *jsonPos   `json:"start,omitempty"`
	End      *jsonPos   `json:"end,omitempty"`
	Phase    string     `json:"phase,omitempty"`
	Decl     string     `json:"decl,omitempty"`
	Notes    []jsonNote `json:"notes,omitempty"`
}

// WriteJSON renders diagnostics as a JSON array, one object per
// diagnostic, for editor and CI integration.
func WriteJSON(w io.Writer, fs *source.FileSet, items []diag.Diagnostic, opts JSONOpts) error {
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	out := make([]jsonDiagnostic, 0, len(items))
	for i := range items {
		d := &items[i]
		jd := jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			Message:  diag.Render(d.MessageKey, d.Args),
			File:     fs.Get(d.Primary.File).Path,
			Phase:    d.Phase,
			Decl:     d.Decl,
		}
		if opts.IncludePositions {
			start, end := fs.Resolve(d.Primary)
			jd.Start = &jsonPos{Line: start.Line, Col: start.Col}
			jd.End = &jsonPos{Line: end.Line, Col: end.Col}
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				jn := jsonNote{
					Message: diag.Render(n.Key, n.Args),
					File:    fs.Get(n.Span.File).Path,
				}
				if opts.IncludePositions {
					start, _ := fs.Resolve(n.Span)
					jn.Start = &jsonPos{Line: start.Line, Col: start.Col}
				}
				jd.Notes = append(jd.Notes, jn)
			}
		}
		out = append(out, jd)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
