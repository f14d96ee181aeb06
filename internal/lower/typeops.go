package lower

import (
	"vela/internal/builtins"
	"vela/internal/fir"
	"vela/internal/scopes"
)

// TypeOpResult counts what the type-operator lowering decided statically.
type TypeOpResult struct {
	FoldedChecks int
	DroppedCasts int
}

// LowerTypeOperators folds type operators that are statically answerable:
// an is-check whose operand type already satisfies the target becomes the
// literal true, and a cast to a supertype of the operand's static type is
// dropped entirely. Operators that need a runtime answer are left for the
// code generator. Checks are only folded positively; proving a check false
// would need whole-hierarchy reasoning this pass does not do.
func LowerTypeOperators(provider *scopes.Provider, blt *builtins.Synthesizer, module *fir.Module) *TypeOpResult {
	tr := &typeOpRewriter{
		provider: provider,
		boolType: blt.Type(builtins.NameBoolean),
		result:   &TypeOpResult{},
	}
	module.EachCallable(func(d fir.Decl) {
		if fn, ok := d.(*fir.Function); ok && fn.Body != nil {
			fn.Body = fir.Transform(fn.Body, tr)
		}
	})
	return tr.result
}

type typeOpRewriter struct {
	provider *scopes.Provider
	boolType fir.Type
	result   *TypeOpResult
}

func (tr *typeOpRewriter) TransformExpr(e *fir.Expr) *fir.Expr {
	data, ok := e.Data.(fir.TypeOpData)
	if !ok || data.Value == nil {
		return e
	}
	operand := data.Value.Type
	if operand.Kind == fir.TypeInvalid || operand.IsError() || data.Target.IsError() {
		return e
	}
	switch e.Kind {
	case fir.ExprIsCheck:
		if tr.provider.Subtype(operand, data.Target) {
			tr.result.FoldedChecks++
			return &fir.Expr{Kind: fir.ExprLiteral, Span: e.Span, Type: tr.boolType,
				Data: fir.LiteralData{Text: "true"}}
		}
	case fir.ExprAsCast:
		if tr.provider.Subtype(operand, data.Target) {
			tr.result.DroppedCasts++
			return data.Value
		}
	}
	return e
}
