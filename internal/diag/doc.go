// Package diag defines the structured diagnostic model shared by every
// compiler phase.
//
// The core never formats human-readable text: a Diagnostic carries a
// severity, a stable numeric code, a message key with substitution
// arguments, and source spans. Rendering lives in internal/diagfmt; the
// phases only talk to a Reporter.
//
// Producers use Reporter implementations (BagReporter to accumulate,
// NopReporter to discard, MultiReporter to fan out). Bag provides the
// deterministic sort and dedup used before diagnostics are rendered or
// compared in tests.
package diag
