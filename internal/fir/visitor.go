package fir

// Transformer rewrites a body tree. Implementations return a replacement
// node (possibly the input itself); Transform rebuilds parents whose
// children changed, so shared subtrees are never mutated through aliases.
type Transformer interface {
	TransformExpr(e *Expr) *Expr
}

// Transform applies tr bottom-up over e and returns the replacement root.
// A nil input stays nil.
func Transform(e *Expr, tr Transformer) *Expr {
	if e == nil {
		return nil
	}
	rebuilt := rebuildChildren(e, tr)
	return tr.TransformExpr(rebuilt)
}

func rebuildChildren(e *Expr, tr Transformer) *Expr {
	switch data := e.Data.(type) {
	case BlockData:
		exprs, changed := transformSlice(data.Exprs, tr)
		if !changed {
			return e
		}
		return replace(e, BlockData{Exprs: exprs})
	case CallData:
		recv := Transform(data.Recv, tr)
		args, argsChanged := transformSlice(data.Args, tr)
		if recv == data.Recv && !argsChanged {
			return e
		}
		data.Recv = recv
		data.Args = args
		return replace(e, data)
	case NewData:
		args, changed := transformSlice(data.Args, tr)
		if !changed {
			return e
		}
		data.Args = args
		return replace(e, data)
	case FieldLoadData:
		recv := Transform(data.Recv, tr)
		if recv == data.Recv {
			return e
		}
		data.Recv = recv
		return replace(e, data)
	case FieldStoreData:
		recv := Transform(data.Recv, tr)
		value := Transform(data.Value, tr)
		if recv == data.Recv && value == data.Value {
			return e
		}
		data.Recv = recv
		data.Value = value
		return replace(e, data)
	case ReturnData:
		value := Transform(data.Value, tr)
		if value == data.Value {
			return e
		}
		data.Value = value
		return replace(e, data)
	case TypeOpData:
		value := Transform(data.Value, tr)
		if value == data.Value {
			return e
		}
		data.Value = value
		return replace(e, data)
	case CoerceData:
		value := Transform(data.Value, tr)
		if value == data.Value {
			return e
		}
		data.Value = value
		return replace(e, data)
	case IfData:
		cond := Transform(data.Cond, tr)
		then := Transform(data.Then, tr)
		els := Transform(data.Else, tr)
		if cond == data.Cond && then == data.Then && els == data.Else {
			return e
		}
		data.Cond = cond
		data.Then = then
		data.Else = els
		return replace(e, data)
	default:
		return e
	}
}

func transformSlice(exprs []*Expr, tr Transformer) ([]*Expr, bool) {
	changed := false
	out := exprs
	for i, child := range exprs {
		repl := Transform(child, tr)
		if repl == child {
			continue
		}
		if !changed {
			out = make([]*Expr, len(exprs))
			copy(out, exprs)
			changed = true
		}
		out[i] = repl
	}
	return out, changed
}

func replace(e *Expr, data any) *Expr {
	return &Expr{Kind: e.Kind, Span: e.Span, Type: e.Type, Data: data}
}

// Walk calls fn for every node of the tree, parents before children.
// Returning false prunes the subtree.
func Walk(e *Expr, fn func(*Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch data := e.Data.(type) {
	case BlockData:
		for _, c := range data.Exprs {
			Walk(c, fn)
		}
	case CallData:
		Walk(data.Recv, fn)
		for _, a := range data.Args {
			Walk(a, fn)
		}
	case NewData:
		for _, a := range data.Args {
			Walk(a, fn)
		}
	case FieldLoadData:
		Walk(data.Recv, fn)
	case FieldStoreData:
		Walk(data.Recv, fn)
		Walk(data.Value, fn)
	case ReturnData:
		Walk(data.Value, fn)
	case TypeOpData:
		Walk(data.Value, fn)
	case CoerceData:
		Walk(data.Value, fn)
	case IfData:
		Walk(data.Cond, fn)
		Walk(data.Then, fn)
		Walk(data.Else, fn)
	}
}
