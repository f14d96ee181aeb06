package fir

import (
	"vela/internal/source"
)

// ExprKind discriminates the closed set of body node shapes. Bodies are
// deliberately small: the middle end only needs enough structure for call
// graph construction, escape analysis, and the lowering passes.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprBlock
	ExprCall
	ExprNew
	ExprVarRef
	ExprParamRef
	ExprFieldLoad
	ExprFieldStore
	ExprReturn
	ExprIsCheck
	ExprAsCast
	ExprCoerce
	ExprLiteral
	ExprIf
)

func (k ExprKind) String() string {
	switch k {
	case ExprBlock:
		return "block"
	case ExprCall:
		return "call"
	case ExprNew:
		return "new"
	case ExprVarRef:
		return "var"
	case ExprParamRef:
		return "param"
	case ExprFieldLoad:
		return "field-load"
	case ExprFieldStore:
		return "field-store"
	case ExprReturn:
		return "return"
	case ExprIsCheck:
		return "is"
	case ExprAsCast:
		return "as"
	case ExprCoerce:
		return "coerce"
	case ExprLiteral:
		return "literal"
	case ExprIf:
		return "if"
	default:
		return "invalid"
	}
}

// Dispatch tags how a call site binds its target.
type Dispatch uint8

const (
	DispatchDirect Dispatch = iota
	DispatchVirtual
)

func (d Dispatch) String() string {
	if d == DispatchVirtual {
		return "virtual"
	}
	return "direct"
}

// Expr is one body node. Data holds the kind-specific payload; Type is the
// node's static type after resolution.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Type Type
	Data any
}

// BlockData sequences child expressions; the block's value is the last one.
type BlockData struct {
	Exprs []*Expr
}

// CallData is a call site. Target is the statically resolved member; for
// DispatchVirtual the runtime target may be any override of it.
type CallData struct {
	Target   SymbolID
	Dispatch Dispatch
	Recv     *Expr // nil for top-level calls
	Args     []*Expr
}

// NewData is an allocation site.
type NewData struct {
	Class SymbolID
	Ctor  SymbolID
	Args  []*Expr
}

// VarRefData references a local by name (locals are not symbol-bearing).
type VarRefData struct {
	Name string
}

// ParamRefData references the enclosing callable's parameter by index.
type ParamRefData struct {
	Index int
}

// FieldLoadData reads a property.
type FieldLoadData struct {
	Recv  *Expr
	Field SymbolID
}

// FieldStoreData writes a property. A store into a field is an escape
// point for the stored value.
type FieldStoreData struct {
	Recv  *Expr
	Field SymbolID
	Value *Expr
}

// ReturnData returns Value (nil for unit returns) from the enclosing
// callable.
type ReturnData struct {
	Value *Expr
}

// TypeOpData serves both is-checks and as-casts.
type TypeOpData struct {
	Value  *Expr
	Target Type
}

// CoerceData adapts Value to the To type (boxing, widening). Redundant
// coercions are cleaned up by a dedicated lowering.
type CoerceData struct {
	Value *Expr
	To    Type
}

// LiteralData carries the source spelling; the middle end never interprets
// literal values.
type LiteralData struct {
	Text string
}

// IfData branches on Cond. Else may be nil.
type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

// NewBlock builds a block expression.
func NewBlock(span source.Span, exprs ...*Expr) *Expr {
	return &Expr{Kind: ExprBlock, Span: span, Data: BlockData{Exprs: exprs}}
}
