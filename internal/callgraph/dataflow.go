package callgraph

import (
	"vela/internal/fir"
)

// ArgFlow records a value flowing into a callee's parameter.
type ArgFlow struct {
	Target  fir.SymbolID
	Virtual bool
	Index   int
}

// SinkSet accumulates where a tracked value ends up inside one callable.
type SinkSet struct {
	Returned      bool
	StoredToField bool
	Flows         []ArgFlow
	Unknown       bool // flowed somewhere the walk cannot follow
}

func (s *SinkSet) merge(o SinkSet) {
	s.Returned = s.Returned || o.Returned
	s.StoredToField = s.StoredToField || o.StoredToField
	s.Unknown = s.Unknown || o.Unknown
	s.Flows = append(s.Flows, o.Flows...)
}

// Facts are the per-callable data-flow facts: for each allocation site
// and each parameter, the set of sinks its value reaches locally.
// Interprocedural propagation happens in the escape analysis.
type Facts struct {
	Callable   fir.SymbolID
	AllocSinks map[*fir.Expr]*SinkSet
	ParamSinks []*SinkSet
}

// DataFlow holds facts for every callable with a body.
type DataFlow struct {
	ByCallable map[fir.SymbolID]*Facts
}

// BuildDataFlow computes local facts for the whole module.
func BuildDataFlow(module *fir.Module) *DataFlow {
	df := &DataFlow{ByCallable: make(map[fir.SymbolID]*Facts)}
	module.EachCallable(func(d fir.Decl) {
		switch c := d.(type) {
		case *fir.Function:
			if c.Body != nil {
				df.ByCallable[c.Symbol] = buildFacts(c.Symbol, len(c.Params), c.Body)
			}
		case *fir.Constructor:
			if c.Body != nil {
				df.ByCallable[c.Symbol] = buildFacts(c.Symbol, len(c.Params), c.Body)
			}
		}
	})
	return df
}

// dest describes the destination of the value currently being walked.
type dest struct {
	kind destKind
	flow ArgFlow
}

type destKind uint8

const (
	destDiscard destKind = iota
	destReturn
	destField
	destArg
)

func buildFacts(callable fir.SymbolID, paramCount int, body *fir.Expr) *Facts {
	f := &Facts{
		Callable:   callable,
		AllocSinks: make(map[*fir.Expr]*SinkSet),
		ParamSinks: make([]*SinkSet, paramCount),
	}
	for i := range f.ParamSinks {
		f.ParamSinks[i] = &SinkSet{}
	}
	// Bodies are expressions; the block's value is its last child, so the
	// whole body flows to the return destination.
	f.walkValue(body, dest{kind: destReturn})
	return f
}

func (f *Facts) record(sink *SinkSet, d dest) {
	switch d.kind {
	case destReturn:
		sink.Returned = true
	case destField:
		sink.StoredToField = true
	case destArg:
		if d.flow.Virtual || !d.flow.Target.IsValid() {
			sink.Unknown = true
			return
		}
		sink.Flows = append(sink.Flows, d.flow)
	}
}

// walkValue follows e's value into d, recursing into operands with their
// own destinations. Type operators and coercions are transparent for the
// underlying value; an is-check produces a fresh Boolean and discards it.
func (f *Facts) walkValue(e *fir.Expr, d dest) {
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case fir.BlockData:
		for i, child := range data.Exprs {
			if i == len(data.Exprs)-1 {
				f.walkValue(child, d)
			} else {
				f.walkValue(child, dest{kind: destDiscard})
			}
		}
	case fir.NewData:
		sink, ok := f.AllocSinks[e]
		if !ok {
			sink = &SinkSet{}
			f.AllocSinks[e] = sink
		}
		f.record(sink, d)
		for i, arg := range data.Args {
			f.walkValue(arg, dest{kind: destArg, flow: ArgFlow{Target: data.Ctor, Index: i}})
		}
	case fir.ParamRefData:
		if data.Index >= 0 && data.Index < len(f.ParamSinks) {
			f.record(f.ParamSinks[data.Index], d)
		}
	case fir.CallData:
		// receiver escape through `this` stores is out of analysis scope;
		// the receiver itself is treated as consumed by the dispatch
		f.walkValue(data.Recv, dest{kind: destDiscard})
		for i, arg := range data.Args {
			f.walkValue(arg, dest{kind: destArg, flow: ArgFlow{
				Target:  data.Target,
				Virtual: data.Dispatch == fir.DispatchVirtual,
				Index:   i,
			}})
		}
	case fir.ReturnData:
		f.walkValue(data.Value, dest{kind: destReturn})
	case fir.FieldStoreData:
		f.walkValue(data.Recv, dest{kind: destDiscard})
		f.walkValue(data.Value, dest{kind: destField})
	case fir.FieldLoadData:
		f.walkValue(data.Recv, dest{kind: destDiscard})
	case fir.TypeOpData:
		if e.Kind == fir.ExprAsCast {
			f.walkValue(data.Value, d)
		} else {
			f.walkValue(data.Value, dest{kind: destDiscard})
		}
	case fir.CoerceData:
		f.walkValue(data.Value, d)
	case fir.IfData:
		f.walkValue(data.Cond, dest{kind: destDiscard})
		f.walkValue(data.Then, d)
		f.walkValue(data.Else, d)
	}
}
