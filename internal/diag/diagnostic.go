package diag

import (
	"strconv"
	"strings"

	"vela/internal/source"
)

// Note attaches secondary context to a diagnostic (e.g. "previous
// declaration here"). Each note must add information, not restate the
// message.
type Note struct {
	Span source.Span
	Key  string
	Args []string
}

// Diagnostic is the structured record every phase emits. MessageKey plus
// Args are resolved to text by the rendering layer only.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	MessageKey string
	Args       []string
	Primary    source.Span
	Notes      []Note

	// Phase and Decl identify the pipeline stage and the qualified name of
	// the declaration being processed when the diagnostic was produced.
	// Empty outside phase execution.
	Phase string
	Decl  string
}

// Render substitutes {0}, {1}, ... placeholders in key with args. It exists
// for tests and the diagfmt layer; the core never calls it.
func Render(key string, args []string) string {
	out := key
	for i, a := range args {
		out = strings.ReplaceAll(out, "{"+strconv.Itoa(i)+"}", a)
	}
	return out
}
