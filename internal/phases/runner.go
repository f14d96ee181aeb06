package phases

import (
	"fmt"
	"time"

	"vela/internal/diag"
	"vela/internal/source"
)

// RunOrder executes phases strictly in the given order over one unit's
// context. The order is validated against the prerequisite graph first,
// so an invalid configuration can never leave the IR half-rewritten.
//
// A phase runs at most once per context. A failing phase aborts the
// pipeline for this unit; disposal phases at the end of the list still
// run when the failure came from an optional phase, but not when a
// mandatory phase failed.
func (r *Registry) RunOrder(order []string, ctx *Context) error {
	if err := r.ValidateOrder(order); err != nil {
		diag.Errorf(ctx.Reporter, diag.PhaseOrderViolation, source.Span{},
			"invalid phase order: {0}", err.Error())
		return fmt.Errorf("phase order: %w", err)
	}

	var failed error
	mandatoryFailed := false
	for _, name := range order {
		p := r.phases[name]
		if failed != nil && p.Kind != KindDisposal {
			continue
		}
		if failed != nil && mandatoryFailed {
			break // fail-fast: not even disposal after a mandatory failure
		}
		if p.Optional && p.Kind != KindDisposal && !ctx.phaseEnabled(name) {
			ctx.status[name] = StatusSkipped
			continue
		}
		if err := r.checkPrereqs(p, ctx); err != nil {
			diag.Errorf(ctx.Reporter, diag.PhaseOrderViolation, source.Span{},
				"phase {0}: {1}", name, err.Error())
			return fmt.Errorf("phase %s: %w", name, err)
		}
		if err := runOne(p, ctx); err != nil {
			ctx.status[name] = StatusFailed
			reportAbort(ctx, name, err)
			failed = fmt.Errorf("phase %s: %w", name, err)
			mandatoryFailed = !p.Optional
		}
	}
	return failed
}

// checkPrereqs demands every prerequisite completed. A prerequisite that
// was disabled by configuration while a dependent stayed enabled is a
// configuration error, the same class of mistake as a bad order.
func (r *Registry) checkPrereqs(p *Phase, ctx *Context) error {
	if p.Kind == KindDisposal {
		return nil // disposal runs regardless of skipped optional phases
	}
	for _, pre := range p.Prereqs {
		if ctx.status[pre] != StatusCompleted {
			return fmt.Errorf("prerequisite %q did not complete (status %s)",
				pre, ctx.status[pre])
		}
	}
	return nil
}

func runOne(p *Phase, ctx *Context) (err error) {
	if ctx.status[p.Name] == StatusCompleted {
		return fmt.Errorf("already ran in this unit")
	}
	ctx.status[p.Name] = StatusRunning
	ctx.SetCurrentDecl("")
	start := time.Now()
	defer func() {
		ctx.Timings = append(ctx.Timings, Timing{Phase: p.Name, Elapsed: time.Since(start)})
		if r := recover(); r != nil {
			// invariant violations inside a phase surface as aborts with
			// context, never as a silent crash of the whole process
			err = fmt.Errorf("invariant violation: %v", r)
		}
	}()
	if err := p.Run(ctx); err != nil {
		return err
	}
	ctx.status[p.Name] = StatusCompleted
	return nil
}

func reportAbort(ctx *Context, phase string, err error) {
	ctx.Reporter.Report(diag.Diagnostic{
		Severity:   diag.SevError,
		Code:       diag.PhaseAborted,
		MessageKey: "phase {0} aborted: {1}",
		Args:       []string{phase, err.Error()},
		Phase:      phase,
		Decl:       ctx.CurrentDecl(),
	})
}
