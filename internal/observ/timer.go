// Package observ aggregates pipeline timings for the --timings report.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Sample is one timed span of pipeline work.
type Sample struct {
	Name string
	Dur  time.Duration
	Note string
}

// Timer collects samples across the compilation and renders a report.
type Timer struct {
	samples []Sample
}

func NewTimer() *Timer { return &Timer{samples: make([]Sample, 0, 16)} }

// Begin starts a span; call the returned func when the span ends.
func (t *Timer) Begin(name string) func(note string) {
	start := time.Now()
	return func(note string) {
		t.samples = append(t.samples, Sample{Name: name, Dur: time.Since(start), Note: note})
	}
}

// Add records an externally measured span, e.g. a phase duration from the
// scheduler.
func (t *Timer) Add(name string, dur time.Duration) {
	t.samples = append(t.samples, Sample{Name: name, Dur: dur})
}

// Samples returns the recorded spans in order.
func (t *Timer) Samples() []Sample {
	return t.samples
}

// Summary renders the human-readable timing table.
func (t *Timer) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	var total time.Duration
	for _, s := range t.samples {
		total += s.Dur
		fmt.Fprintf(&sb, "  %-24s %8.2f ms", s.Name, millis(s.Dur))
		if s.Note != "" {
			sb.WriteString("  // " + s.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-24s %8.2f ms\n", "total", millis(total))
	return sb.String()
}

// SpanReport is the serializable form of one sample.
type SpanReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the aggregate for machine consumers.
type Report struct {
	TotalMS float64      `json:"total_ms"`
	Spans   []SpanReport `json:"spans"`
}

func (t *Timer) Report() Report {
	if len(t.samples) == 0 {
		return Report{}
	}
	out := Report{Spans: make([]SpanReport, len(t.samples))}
	var total time.Duration
	for i, s := range t.samples {
		total += s.Dur
		out.Spans[i] = SpanReport{Name: s.Name, DurationMS: millis(s.Dur), Note: s.Note}
	}
	out.TotalMS = millis(total)
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
