package analysis

import (
	"sort"

	"vela/internal/callgraph"
	"vela/internal/fir"
)

// Lifetime classifies an allocation site.
type Lifetime uint8

const (
	// LifetimeStack: the object never leaves its frame.
	LifetimeStack Lifetime = iota
	// LifetimeLocalHeap: escapes its frame through a return, but stays
	// bounded by the caller's context.
	LifetimeLocalHeap
	// LifetimeGlobalHeap: stored into a field or lost through an
	// untrackable call; lifetime unbounded.
	LifetimeGlobalHeap
)

func (l Lifetime) String() string {
	switch l {
	case LifetimeStack:
		return "stack"
	case LifetimeLocalHeap:
		return "local-heap"
	default:
		return "global-heap"
	}
}

// EscapeResult is the artifact later lowerings read.
type EscapeResult struct {
	Alloc      map[*fir.Expr]Lifetime
	Iterations int
	Converged  bool
}

// escape states form the small lattice the fixed point runs over.
type escState uint8

const (
	escNone escState = iota
	escReturn
	escGlobal
)

type paramKey struct {
	callable fir.SymbolID
	index    int
}

// AnalyzeEscapes classifies every allocation site of the module. The
// interprocedural part (a parameter escaping inside its callee makes the
// argument escape at the call site) runs as a worklist fixed point, so
// recursive call cycles terminate; maxIters additionally bounds the loop
// (0 picks a default proportional to the parameter count).
func AnalyzeEscapes(df *callgraph.DataFlow, maxIters int) *EscapeResult {
	states := make(map[paramKey]escState)

	// Seed from local facts.
	callables := make([]fir.SymbolID, 0, len(df.ByCallable))
	for sym := range df.ByCallable {
		callables = append(callables, sym)
	}
	sort.Slice(callables, func(i, j int) bool { return callables[i] < callables[j] })

	var work []paramKey
	for _, sym := range callables {
		facts := df.ByCallable[sym]
		for i, sink := range facts.ParamSinks {
			key := paramKey{callable: sym, index: i}
			states[key] = seedState(sink)
			work = append(work, key)
		}
	}
	if maxIters <= 0 {
		maxIters = 8 * (len(states) + 1)
	}

	// Reverse flow index: who feeds this parameter.
	feeders := make(map[paramKey][]paramKey)
	for _, sym := range callables {
		facts := df.ByCallable[sym]
		for i, sink := range facts.ParamSinks {
			from := paramKey{callable: sym, index: i}
			for _, flow := range sink.Flows {
				to := paramKey{callable: flow.Target, index: flow.Index}
				feeders[to] = append(feeders[to], from)
			}
		}
	}

	result := &EscapeResult{Alloc: make(map[*fir.Expr]Lifetime), Converged: true}
	iterations := 0
	for len(work) > 0 {
		if iterations >= maxIters {
			result.Converged = false
			break
		}
		iterations++
		key := work[len(work)-1]
		work = work[:len(work)-1]

		state := states[key]
		for _, from := range feeders[key] {
			// A parameter flowing into an escaping parameter escapes too;
			// return-escape downgrades to return-escape, not global.
			propagated := transfer(state)
			if propagated > states[from] {
				states[from] = propagated
				work = append(work, from)
			}
		}
	}
	result.Iterations = iterations

	for _, sym := range callables {
		facts := df.ByCallable[sym]
		for alloc, sink := range facts.AllocSinks {
			result.Alloc[alloc] = classify(sink, states, df, result.Converged)
		}
	}
	return result
}

func seedState(sink *callgraph.SinkSet) escState {
	switch {
	case sink.StoredToField || sink.Unknown:
		return escGlobal
	case sink.Returned:
		return escReturn
	default:
		return escNone
	}
}

// transfer maps a callee parameter's state to the effect on the caller's
// value: global stays global; a returned parameter hands the value back,
// which for the argument means outliving the callee frame only.
func transfer(s escState) escState {
	if s == escGlobal {
		return escGlobal
	}
	if s == escReturn {
		return escReturn
	}
	return escNone
}

func classify(sink *callgraph.SinkSet, states map[paramKey]escState, df *callgraph.DataFlow, converged bool) Lifetime {
	if !converged {
		return LifetimeGlobalHeap // be safe when the fixed point was cut off
	}
	if sink.StoredToField || sink.Unknown {
		return LifetimeGlobalHeap
	}
	lifetime := LifetimeStack
	if sink.Returned {
		lifetime = LifetimeLocalHeap
	}
	for _, flow := range sink.Flows {
		if _, known := df.ByCallable[flow.Target]; !known {
			return LifetimeGlobalHeap // external callee, assume the worst
		}
		switch states[paramKey{callable: flow.Target, index: flow.Index}] {
		case escGlobal:
			return LifetimeGlobalHeap
		case escReturn:
			if lifetime < LifetimeLocalHeap {
				lifetime = LifetimeLocalHeap
			}
		}
	}
	return lifetime
}
