// Package diagfmt renders structured diagnostics for humans and tools.
// The core pipeline only emits diag.Diagnostic values; everything about
// presentation (color, caret lines, JSON) lives here.
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to the file set's base directory
	// when possible.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeBasename
)

// PrettyOpts configures human-readable output.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	Width     int // maximum rendered line width, 0 for unlimited
	ShowNotes bool
	Max       int // print at most this many diagnostics, 0 for all
}

// JSONOpts configures machine-readable output.
type JSONOpts struct {
	IncludePositions bool
	IncludeNotes     bool
	Max              int
}
