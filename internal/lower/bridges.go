// Package lower holds the IR-to-IR rewriting passes that run after
// resolution and analysis: bridge generation, type-operator folding,
// returns insertion, and coercion cleanup. Each pass is a plain function
// over the module so it can be scheduled and tested in isolation.
package lower

import (
	"strconv"
	"strings"

	"vela/internal/builtins"
	"vela/internal/diag"
	"vela/internal/fir"
	"vela/internal/scopes"
)

// BridgeResult reports what one bridge pass produced.
type BridgeResult struct {
	Generated []*fir.Function
}

// specialBridge marks a well-known collection member whose erased form
// must type-check its argument at runtime instead of blindly casting.
// The set is a closed table, not a general mechanism.
type specialBridge struct {
	defaultText string // literal returned when the check fails
}

var specialBridges = map[string]specialBridge{
	"contains":    {defaultText: "false"},
	"remove":      {defaultText: "false"},
	"indexOf":     {defaultText: "-1"},
	"lastIndexOf": {defaultText: "-1"},
}

// GenerateBridges synthesizes forwarding methods for every member whose
// erased signature differs from an overridden member's erased signature.
// A signature already claimed in the class, by a final superclass member,
// or by a bridge generated earlier in the same pass is never claimed
// again, which makes the pass idempotent.
func GenerateBridges(session *fir.Session, provider *scopes.Provider, reporter diag.Reporter, module *fir.Module) *BridgeResult {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	b := &bridger{
		session:  session,
		top:      provider.Top(),
		reporter: reporter,
		result:   &BridgeResult{},
	}
	for _, class := range module.Classes {
		b.bridgeClass(class)
	}
	return b.result
}

type bridger struct {
	session  *fir.Session
	top      fir.SymbolID
	reporter diag.Reporter
	result   *BridgeResult
}

func (b *bridger) bridgeClass(class *fir.Class) {
	claimed := make(map[string]*fir.Function)
	for _, m := range class.MemberFunctions() {
		claimed[b.erasedKey(m)] = m
	}
	final := b.finalSuperSignatures(class)

	// snapshot: bridges appended below must not themselves be bridged
	members := class.MemberFunctions()
	for _, fn := range members {
		if fn.Origin == fir.OriginBridge {
			continue
		}
		ownKey := b.erasedKey(fn)
		for _, overridden := range b.overriddenClosure(fn) {
			super := b.session.Symbols.Function(overridden)
			if super == nil {
				continue
			}
			key := b.erasedKey(super)
			if key == ownKey {
				continue
			}
			if prev, ok := claimed[key]; ok {
				// a source member or an earlier bridge already answers
				// this signature; two bridges fighting for it from
				// distinct implementations is a pipeline bug
				if prev.Origin == fir.OriginBridge && b.bridgeTarget(prev) != fn.Symbol {
					diag.Errorf(b.reporter, diag.LowBridgeClash, fn.Span,
						"bridge signature {0} in {1} claimed twice",
						key, class.Name.String())
				}
				continue
			}
			if final[key] {
				continue
			}
			bridge := b.build(class, fn, super)
			claimed[key] = bridge
			class.Members = append(class.Members, bridge)
			b.result.Generated = append(b.result.Generated, bridge)
		}
	}
}

// overriddenClosure walks the Overrides lists transitively so a bridge is
// generated against a grandparent's erased signature too.
func (b *bridger) overriddenClosure(fn *fir.Function) []fir.SymbolID {
	var out []fir.SymbolID
	seen := make(map[fir.SymbolID]bool)
	stack := append([]fir.SymbolID(nil), fn.Overrides...)
	for len(stack) > 0 {
		sym := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
		if super := b.session.Symbols.Function(sym); super != nil {
			stack = append(stack, super.Overrides...)
		}
	}
	return out
}

// finalSuperSignatures collects erased signatures of final members along
// the supertype closure. Generating a member at such a signature would be
// an illegal override, so they are blacklisted up front.
func (b *bridger) finalSuperSignatures(class *fir.Class) map[string]bool {
	sigs := make(map[string]bool)
	seen := map[fir.SymbolID]bool{class.Symbol: true}
	stack := b.superClasses(class, nil)
	for len(stack) > 0 {
		sym := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[sym] {
			continue
		}
		seen[sym] = true
		super := b.session.Symbols.Class(sym)
		if super == nil {
			continue
		}
		for _, m := range super.MemberFunctions() {
			if m.Modality == fir.ModalityFinal {
				sigs[b.erasedKey(m)] = true
			}
		}
		stack = b.superClasses(super, stack)
	}
	return sigs
}

func (b *bridger) superClasses(class *fir.Class, stack []fir.SymbolID) []fir.SymbolID {
	for _, st := range class.Supertypes {
		if st.Kind == fir.TypeClass {
			stack = append(stack, st.Class)
		}
	}
	return stack
}

func (b *bridger) erasedKey(fn *fir.Function) string {
	var sb strings.Builder
	sb.WriteString(fn.Name.Simple())
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(p.Type.Erased(b.top)), 10))
	}
	sb.WriteByte(')')
	// the erased return participates: covariant-return overrides need a
	// bridge at the wider signature
	sb.WriteString(strconv.FormatUint(uint64(fn.Return.Erased(b.top)), 10))
	return sb.String()
}

// build makes the forwarding method at super's erased signature that
// delegates to impl, casting each argument down to impl's parameter type.
// Well-known collection members get a runtime type check guarding the
// delegation, with a fixed default when the check fails.
func (b *bridger) build(class *fir.Class, impl, super *fir.Function) *fir.Function {
	retType := b.erasedType(super.Return)
	bridge := &fir.Function{
		DeclBase: fir.DeclBase{
			Name:       class.Name.Child(impl.Name.Simple()),
			Span:       impl.Span,
			Modality:   fir.ModalityFinal,
			Visibility: impl.Visibility,
			Origin:     fir.OriginBridge,
		},
		Return:    retType,
		Overrides: []fir.SymbolID{super.Symbol},
		Owner:     class.Symbol,
	}
	special, isSpecial := specialBridges[impl.Name.Simple()]
	if isSpecial && !b.coreOwned(super) {
		isSpecial = false
	}

	args := make([]*fir.Expr, len(impl.Params))
	var checks []*fir.Expr
	for i, sp := range super.Params {
		pType := b.erasedType(sp.Type)
		bridge.Params = append(bridge.Params, fir.Param{
			Name: sp.Name,
			Type: pType,
			Span: impl.Span,
		})
		ref := &fir.Expr{Kind: fir.ExprParamRef, Span: impl.Span, Type: pType, Data: fir.ParamRefData{Index: i}}
		implType := pType
		if i < len(impl.Params) {
			implType = impl.Params[i].Type
		}
		if implType.Equal(pType) {
			args[i] = ref
			continue
		}
		args[i] = &fir.Expr{Kind: fir.ExprAsCast, Span: impl.Span, Type: implType,
			Data: fir.TypeOpData{Value: ref, Target: implType}}
		if isSpecial {
			checks = append(checks, &fir.Expr{Kind: fir.ExprIsCheck, Span: impl.Span,
				Data: fir.TypeOpData{Value: ref, Target: implType}})
		}
	}

	delegate := &fir.Expr{Kind: fir.ExprReturn, Span: impl.Span, Data: fir.ReturnData{
		Value: &fir.Expr{Kind: fir.ExprCall, Span: impl.Span, Type: impl.Return, Data: fir.CallData{
			Target:   impl.Symbol,
			Dispatch: fir.DispatchDirect,
			Args:     args,
		}},
	}}

	body := delegate
	for i := len(checks) - 1; i >= 0; i-- {
		body = &fir.Expr{Kind: fir.ExprIf, Span: impl.Span, Data: fir.IfData{
			Cond: checks[i],
			Then: body,
			Else: &fir.Expr{Kind: fir.ExprReturn, Span: impl.Span, Data: fir.ReturnData{
				Value: &fir.Expr{Kind: fir.ExprLiteral, Span: impl.Span, Type: retType,
					Data: fir.LiteralData{Text: special.defaultText}},
			}},
		}}
	}
	bridge.Body = fir.NewBlock(impl.Span, body)

	sym := b.session.Symbols.New()
	bridge.Symbol = sym
	b.session.Symbols.Bind(sym, bridge)
	return bridge
}

func (b *bridger) erasedType(t fir.Type) fir.Type {
	erased := t.Erased(b.top)
	if !erased.IsValid() {
		return fir.ErrorType()
	}
	nullable := t.Nullable
	if t.Kind == fir.TypeParamRef && (t.Param == nil || len(t.Param.Bounds) == 0) {
		nullable = true // unbounded parameters erase to the nullable top
	}
	return fir.ClassType(erased).WithNullable(nullable)
}

// coreOwned reports whether the overridden member lives in the core
// collection library; the special-bridge table only applies there.
func (b *bridger) coreOwned(super *fir.Function) bool {
	owner := b.session.Symbols.Class(super.Owner)
	return owner != nil && owner.Name.Module == builtins.CoreModule
}

// bridgeTarget extracts the delegation target out of a generated bridge.
func (b *bridger) bridgeTarget(bridge *fir.Function) fir.SymbolID {
	var target fir.SymbolID
	fir.Walk(bridge.Body, func(e *fir.Expr) bool {
		if call, ok := e.Data.(fir.CallData); ok && !target.IsValid() {
			target = call.Target
		}
		return true
	})
	return target
}
