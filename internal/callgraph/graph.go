// Package callgraph builds the interprocedural call graph and the
// per-callable data-flow facts consumed by devirtualization, escape
// analysis, and dead-code elimination. The graph is built once after all
// declarations resolve and is read-only afterwards: analyses that refine
// it (devirtualization) produce new mappings instead of mutating nodes.
package callgraph

import (
	"sort"

	"vela/internal/fir"
)

// Site is one outgoing call site of a callable.
type Site struct {
	Caller  fir.SymbolID
	Expr    *fir.Expr // the call or allocation expression
	Target  fir.SymbolID
	Virtual bool
}

// Node wraps a callable declaration with its outgoing call sites.
// External marks body-less callables (stubs, abstract members).
type Node struct {
	Callable fir.SymbolID
	External bool
	Sites    []*Site
}

// Graph maps every callable of a module to its node. Iteration order is
// deterministic (sorted by symbol).
type Graph struct {
	nodes map[fir.SymbolID]*Node
	order []fir.SymbolID
}

func (g *Graph) Node(sym fir.SymbolID) *Node {
	return g.nodes[sym]
}

func (g *Graph) Len() int {
	return len(g.order)
}

// EachNode visits nodes in deterministic order.
func (g *Graph) EachNode(fn func(*Node)) {
	for _, sym := range g.order {
		fn(g.nodes[sym])
	}
}

// Build walks every callable of the module. Allocation sites count as
// direct call sites on the constructor so reachability sees them.
func Build(module *fir.Module) *Graph {
	g := &Graph{nodes: make(map[fir.SymbolID]*Node)}

	add := func(sym fir.SymbolID, body *fir.Expr) {
		if !sym.IsValid() {
			return
		}
		node := &Node{Callable: sym, External: body == nil}
		fir.Walk(body, func(e *fir.Expr) bool {
			switch data := e.Data.(type) {
			case fir.CallData:
				node.Sites = append(node.Sites, &Site{
					Caller:  sym,
					Expr:    e,
					Target:  data.Target,
					Virtual: data.Dispatch == fir.DispatchVirtual,
				})
			case fir.NewData:
				if data.Ctor.IsValid() {
					node.Sites = append(node.Sites, &Site{
						Caller: sym,
						Expr:   e,
						Target: data.Ctor,
					})
				}
			}
			return true
		})
		g.nodes[sym] = node
		g.order = append(g.order, sym)
	}

	module.EachCallable(func(d fir.Decl) {
		switch c := d.(type) {
		case *fir.Function:
			add(c.Symbol, c.Body)
		case *fir.Constructor:
			add(c.Symbol, c.Body)
		}
	})

	sort.Slice(g.order, func(i, j int) bool { return g.order[i] < g.order[j] })
	return g
}
