package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"vela/internal/diag"
	"vela/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan, color.Bold)
	locColor  = color.New(color.Bold)
	noteColor = color.New(color.FgBlue)
)

// WritePretty renders diagnostics as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	    <source line>
//	    ^~~~~
//
// followed by indented notes when opts.ShowNotes is set. Diagnostics are
// expected to be pre-sorted (diag.Bag.Sort); this function does not reorder.
func WritePretty(w io.Writer, fs *source.FileSet, items []diag.Diagnostic, opts PrettyOpts) error {
	if opts.Max > 0 && len(items) > opts.Max {
		omitted := len(items) - opts.Max
		items = items[:opts.Max]
		defer fmt.Fprintf(w, "... and %d more\n", omitted)
	}
	for i := range items {
		if err := writeOne(w, fs, &items[i], opts); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(w io.Writer, fs *source.FileSet, d *diag.Diagnostic, opts PrettyOpts) error {
	start, end := fs.Resolve(d.Primary)
	file := fs.Get(d.Primary.File)

	loc := fmt.Sprintf("%s:%d:%d", displayPath(fs, file.Path, opts.PathMode), start.Line, start.Col)
	msg := diag.Render(d.MessageKey, d.Args)

	if opts.Color {
		_, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
			locColor.Sprint(loc),
			severityColor(d.Severity).Sprint(d.Severity.String()),
			d.Code, msg)
		if err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", loc, d.Severity, d.Code, msg); err != nil {
			return err
		}
	}

	if err := writeExcerpt(w, file, start, end, d.Severity, opts); err != nil {
		return err
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nStart, _ := fs.Resolve(n.Span)
			nFile := fs.Get(n.Span.File)
			nLoc := fmt.Sprintf("%s:%d:%d", displayPath(fs, nFile.Path, opts.PathMode), nStart.Line, nStart.Col)
			text := diag.Render(n.Key, n.Args)
			if opts.Color {
				if _, err := fmt.Fprintf(w, "    %s: %s\n", noteColor.Sprint("note"), text+" ("+nLoc+")"); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprintf(w, "    note: %s (%s)\n", text, nLoc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// writeExcerpt prints the source line and a caret underline. Multi-line
// spans are underlined on the first line only.
func writeExcerpt(w io.Writer, file *source.File, start, end source.LineCol, sev diag.Severity, opts PrettyOpts) error {
	line := file.GetLine(start.Line)
	if line == "" {
		return nil
	}
	display := strings.ReplaceAll(line, "\t", "    ")
	if opts.Width > 0 && runewidth.StringWidth(display) > opts.Width {
		display = runewidth.Truncate(display, opts.Width, "...")
	}
	if _, err := fmt.Fprintf(w, "    %s\n", display); err != nil {
		return err
	}

	// Columns are byte-based; recompute display widths so the caret lands
	// under the right rune even with tabs and wide characters.
	prefix := sliceBytes(line, 0, int(start.Col)-1)
	prefix = strings.ReplaceAll(prefix, "\t", "    ")
	pad := runewidth.StringWidth(prefix)

	spanEnd := int(end.Col) - 1
	if end.Line != start.Line || spanEnd <= int(start.Col)-1 {
		spanEnd = int(start.Col)
	}
	marked := sliceBytes(line, int(start.Col)-1, spanEnd)
	marked = strings.ReplaceAll(marked, "\t", "    ")
	width := runewidth.StringWidth(marked)
	if width < 1 {
		width = 1
	}
	if opts.Width > 0 && pad+width > opts.Width {
		if pad >= opts.Width {
			return nil
		}
		width = opts.Width - pad
	}

	caret := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		caret = severityColor(sev).Sprint(caret)
	}
	_, err := fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", pad), caret)
	return err
}

func sliceBytes(s string, lo, hi int) string {
	if lo < 0 {
		lo = 0
	}
	if hi > len(s) {
		hi = len(s)
	}
	if lo >= hi {
		return ""
	}
	return s[lo:hi]
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return errColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

func displayPath(fs *source.FileSet, path string, mode PathMode) string {
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	default:
		if base := fs.BaseDir(); base != "" {
			if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
				return rel
			}
		}
		return path
	}
}
