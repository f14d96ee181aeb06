package lower

import (
	"vela/internal/builtins"
	"vela/internal/fir"
)

// ReturnsResult counts the explicit returns the pass inserted.
type ReturnsResult struct {
	Inserted int
}

// InsertReturns normalizes every callable body so it ends in an explicit
// return: a value-returning body has its trailing expression wrapped, a
// unit body gets an empty return appended. Bodies already ending in a
// return are untouched, so the pass is idempotent.
func InsertReturns(blt *builtins.Synthesizer, module *fir.Module) *ReturnsResult {
	unit := blt.MustClass(builtins.NameUnit).Symbol
	res := &ReturnsResult{}
	module.EachCallable(func(d fir.Decl) {
		fn, ok := d.(*fir.Function)
		if !ok || fn.Body == nil {
			return
		}
		fn.Body = normalizeReturns(fn, unit, res)
	})
	return res
}

func normalizeReturns(fn *fir.Function, unit fir.SymbolID, res *ReturnsResult) *fir.Expr {
	body := fn.Body
	if body.Kind != fir.ExprBlock {
		body = fir.NewBlock(body.Span, body)
	}
	data := body.Data.(fir.BlockData)
	if n := len(data.Exprs); n > 0 && data.Exprs[n-1].Kind == fir.ExprReturn {
		return body
	}
	res.Inserted++
	exprs := append([]*fir.Expr(nil), data.Exprs...)
	if returnsUnit(fn, unit) || len(exprs) == 0 {
		exprs = append(exprs, &fir.Expr{
			Kind: fir.ExprReturn,
			Span: body.Span,
			Data: fir.ReturnData{},
		})
	} else {
		last := exprs[len(exprs)-1]
		exprs[len(exprs)-1] = &fir.Expr{
			Kind: fir.ExprReturn,
			Span: last.Span,
			Data: fir.ReturnData{Value: last},
		}
	}
	return &fir.Expr{Kind: fir.ExprBlock, Span: body.Span, Type: body.Type,
		Data: fir.BlockData{Exprs: exprs}}
}

func returnsUnit(fn *fir.Function, unit fir.SymbolID) bool {
	if fn.Return.Kind == fir.TypeInvalid {
		return true // no declared return reads as unit
	}
	return fn.Return.Kind == fir.TypeClass && fn.Return.Class == unit
}
