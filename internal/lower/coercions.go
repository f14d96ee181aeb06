package lower

import (
	"vela/internal/fir"
)

// CoercionResult counts coercion nodes removed by the cleanup.
type CoercionResult struct {
	Removed int
}

// CleanupCoercions drops coercion nodes that adapt a value to the type it
// already has. Earlier passes insert coercions liberally; this runs late
// so the code generator only sees coercions that do work.
func CleanupCoercions(module *fir.Module) *CoercionResult {
	tr := &coercionCleaner{result: &CoercionResult{}}
	module.EachCallable(func(d fir.Decl) {
		if fn, ok := d.(*fir.Function); ok && fn.Body != nil {
			fn.Body = fir.Transform(fn.Body, tr)
		}
	})
	return tr.result
}

type coercionCleaner struct {
	result *CoercionResult
}

func (tr *coercionCleaner) TransformExpr(e *fir.Expr) *fir.Expr {
	data, ok := e.Data.(fir.CoerceData)
	if !ok || data.Value == nil {
		return e
	}
	if data.To.Kind == fir.TypeInvalid || data.Value.Type.Equal(data.To) {
		tr.result.Removed++
		return data.Value
	}
	return e
}
