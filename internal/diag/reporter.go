package diag

import "vela/internal/source"

// Reporter is the minimal contract phases use to emit diagnostics.
// Implementations: BagReporter (accumulate), NopReporter (discard),
// MultiReporter (fan-out).
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores every reported diagnostic into a Bag.
type BagReporter struct {
	Bag *Bag
}

func (r BagReporter) Report(d Diagnostic) {
	r.Bag.Add(d)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans a diagnostic out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		r.Report(d)
	}
}

// Errorf is a shorthand for reporting an error diagnostic.
func Errorf(r Reporter, code Code, primary source.Span, key string, args ...string) {
	r.Report(Diagnostic{
		Severity:   SevError,
		Code:       code,
		MessageKey: key,
		Args:       args,
		Primary:    primary,
	})
}

// Warnf is a shorthand for reporting a warning diagnostic.
func Warnf(r Reporter, code Code, primary source.Span, key string, args ...string) {
	r.Report(Diagnostic{
		Severity:   SevWarning,
		Code:       code,
		MessageKey: key,
		Args:       args,
		Primary:    primary,
	})
}
