package lower

import (
	"vela/internal/analysis"
	"vela/internal/diag"
	"vela/internal/fir"
)

// DevirtApplyResult reports how many virtual sites were rewritten and how
// many stayed virtual.
type DevirtApplyResult struct {
	Rewritten int
	Residual  int
}

// ApplyDevirtualization rewrites virtual call sites the analysis resolved.
// A single-target site becomes a direct call. A multi-target site unfolds
// into a chain of receiver type checks with one direct call per candidate;
// the last candidate needs no check because the analysis proved the set
// exhaustive. Sites are mutated in place so analysis results keyed by node
// identity stay valid for the whole pass.
func ApplyDevirtualization(session *fir.Session, res *analysis.DevirtResult, module *fir.Module) *DevirtApplyResult {
	out := &DevirtApplyResult{}
	module.EachCallable(func(d fir.Decl) {
		fn, ok := d.(*fir.Function)
		if !ok || fn.Body == nil {
			return
		}
		fir.Walk(fn.Body, func(e *fir.Expr) bool {
			call, ok := e.Data.(fir.CallData)
			if !ok || call.Dispatch != fir.DispatchVirtual {
				return true
			}
			targets, resolved := res.Resolved(e)
			if !resolved || len(targets) == 0 {
				out.Residual++
				return true
			}
			rewriteSite(session, e, call, targets)
			out.Rewritten++
			return true
		})
	})
	return out
}

func rewriteSite(session *fir.Session, e *fir.Expr, call fir.CallData, targets []fir.SymbolID) {
	direct := func(target fir.SymbolID) *fir.Expr {
		return &fir.Expr{Kind: fir.ExprCall, Span: e.Span, Type: e.Type, Data: fir.CallData{
			Target:   target,
			Dispatch: fir.DispatchDirect,
			Recv:     call.Recv,
			Args:     call.Args,
		}}
	}
	if len(targets) == 1 {
		call.Target = targets[0]
		call.Dispatch = fir.DispatchDirect
		e.Data = call
		return
	}
	// unfold: check the receiver's class per candidate, last one unguarded
	chain := direct(targets[len(targets)-1])
	for i := len(targets) - 2; i >= 0; i-- {
		owner := ownerType(session, targets[i])
		chain = &fir.Expr{Kind: fir.ExprIf, Span: e.Span, Type: e.Type, Data: fir.IfData{
			Cond: &fir.Expr{Kind: fir.ExprIsCheck, Span: e.Span,
				Data: fir.TypeOpData{Value: call.Recv, Target: owner}},
			Then: direct(targets[i]),
			Else: chain,
		}}
	}
	e.Kind = chain.Kind
	e.Data = chain.Data
}

func ownerType(session *fir.Session, target fir.SymbolID) fir.Type {
	fn := session.Symbols.Function(target)
	if fn == nil || !fn.Owner.IsValid() {
		return fir.ErrorType()
	}
	return fir.ClassType(fn.Owner)
}

// CheckNoResidualVirtualCalls asserts the post-devirtualization invariant
// for builds that demand a closed world: any virtual dispatch left in a
// body at this point is a pipeline bug, not a user error.
func CheckNoResidualVirtualCalls(reporter diag.Reporter, symbols *fir.Symbols, module *fir.Module) int {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	residual := 0
	module.EachCallable(func(d fir.Decl) {
		fn, ok := d.(*fir.Function)
		if !ok || fn.Body == nil {
			return
		}
		fir.Walk(fn.Body, func(e *fir.Expr) bool {
			call, ok := e.Data.(fir.CallData)
			if ok && call.Dispatch == fir.DispatchVirtual {
				residual++
				diag.Errorf(reporter, diag.LowResidualVirtualCall, e.Span,
					"virtual dispatch to {0} survived devirtualization in {1}",
					targetName(symbols, call.Target), fn.Name.String())
			}
			return true
		})
	})
	return residual
}

func targetName(symbols *fir.Symbols, target fir.SymbolID) string {
	if decl := symbols.Decl(target); decl != nil {
		return decl.DeclName().String()
	}
	return "<unbound>"
}
