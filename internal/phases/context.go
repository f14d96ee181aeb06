package phases

import (
	"time"

	"vela/internal/diag"
	"vela/internal/fir"
)

// Status is the per-unit lifecycle of one phase.
type Status uint8

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Timing records how long one phase ran.
type Timing struct {
	Phase   string
	Elapsed time.Duration
}

// Context is the mutable state threaded through one unit's pipeline: the
// module under transformation plus artifacts produced by earlier phases
// for later ones to consume.
type Context struct {
	Session  *fir.Session
	Module   *fir.Module
	Reporter diag.Reporter

	Timings []Timing

	enabled   map[string]bool
	artifacts map[string]any
	status    map[string]Status
	current   string
}

func NewContext(session *fir.Session, module *fir.Module, reporter diag.Reporter) *Context {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Context{
		Session:   session,
		Module:    module,
		Reporter:  reporter,
		artifacts: make(map[string]any),
		status:    make(map[string]Status),
	}
}

// SetEnabled turns an optional phase on or off. Phases not mentioned
// default to enabled; mandatory phases ignore this entirely.
func (c *Context) SetEnabled(name string, on bool) {
	if c.enabled == nil {
		c.enabled = make(map[string]bool)
	}
	c.enabled[name] = on
}

func (c *Context) phaseEnabled(name string) bool {
	if c.enabled == nil {
		return true
	}
	on, mentioned := c.enabled[name]
	return !mentioned || on
}

// StoreArtifact publishes a computed result (call graph, devirtualization
// targets) for later phases.
func (c *Context) StoreArtifact(key string, v any) {
	c.artifacts[key] = v
}

// Artifact retrieves a previously stored result.
func (c *Context) Artifact(key string) (any, bool) {
	v, ok := c.artifacts[key]
	return v, ok
}

// SetCurrentDecl notes the declaration a phase is processing so an abort
// can name it in the diagnostic. Clear with an empty string.
func (c *Context) SetCurrentDecl(name string) {
	c.current = name
}

func (c *Context) CurrentDecl() string {
	return c.current
}

// Status reports the lifecycle state of a phase within this unit.
func (c *Context) Status(phase string) Status {
	return c.status[phase]
}
