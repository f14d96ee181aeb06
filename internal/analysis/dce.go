package analysis

import (
	"sort"
	"strings"

	"vela/internal/builtins"
	"vela/internal/callgraph"
	"vela/internal/fir"
)

// RootPolicy selects the DCE root set.
type RootPolicy uint8

const (
	// RootExecutable: only the entry point is a root.
	RootExecutable RootPolicy = iota
	// RootLibrary: every non-private declaration is a root.
	RootLibrary
)

func (p RootPolicy) String() string {
	if p == RootLibrary {
		return "library"
	}
	return "executable"
}

// DCEConfig carries the root policy and the explicit ABI keep-list:
// symbols retained regardless of reachability, which the analysis never
// overrides.
type DCEConfig struct {
	Policy RootPolicy
	Keep   []fir.SymbolID
}

// DCEResult records what was removed and what survived.
type DCEResult struct {
	Reachable map[fir.SymbolID]bool
	Removed   []fir.SymbolID
}

// EliminateDeadCode marks callables transitively reachable from the root
// set and removes unreachable functions from their owning class or file.
// ABI-entangled members are always retained: the configured keep-list,
// enum values/valueOf companions, and SAM invoke overrides.
func EliminateDeadCode(module *fir.Module, symbols *fir.Symbols, graph *callgraph.Graph, overriders *Overriders, cfg DCEConfig) *DCEResult {
	reachable := make(map[fir.SymbolID]bool)
	var work []fir.SymbolID

	push := func(sym fir.SymbolID) {
		if sym.IsValid() && !reachable[sym] {
			reachable[sym] = true
			work = append(work, sym)
		}
	}

	switch cfg.Policy {
	case RootLibrary:
		module.EachCallable(func(d fir.Decl) {
			if visibilityOf(d) != fir.VisibilityPrivate {
				push(d.DeclSymbol())
			}
		})
	default:
		push(module.Entry)
	}
	for _, sym := range cfg.Keep {
		push(sym)
	}
	module.EachCallable(func(d fir.Decl) {
		if alwaysRetained(symbols, d) {
			push(d.DeclSymbol())
		}
	})

	for len(work) > 0 {
		sym := work[len(work)-1]
		work = work[:len(work)-1]
		node := graph.Node(sym)
		if node == nil {
			continue
		}
		for _, site := range node.Sites {
			push(site.Target)
			if site.Virtual {
				// a virtual site keeps every possible override alive
				for _, impl := range overriders.Implementations(site.Target) {
					push(impl)
				}
			}
		}
	}

	result := &DCEResult{Reachable: reachable}
	for _, class := range module.Classes {
		for _, f := range class.MemberFunctions() {
			if !reachable[f.Symbol] {
				class.RemoveMember(f.Symbol)
				result.Removed = append(result.Removed, f.Symbol)
			}
		}
	}
	kept := module.Functions[:0]
	for _, f := range module.Functions {
		if reachable[f.Symbol] {
			kept = append(kept, f)
		} else {
			result.Removed = append(result.Removed, f.Symbol)
		}
	}
	module.Functions = kept

	sort.Slice(result.Removed, func(i, j int) bool { return result.Removed[i] < result.Removed[j] })
	return result
}

func visibilityOf(d fir.Decl) fir.Visibility {
	switch c := d.(type) {
	case *fir.Function:
		return c.Visibility
	case *fir.Constructor:
		return c.Visibility
	default:
		return fir.VisibilityPublic
	}
}

// alwaysRetained implements the built-in part of the ABI keep-list.
func alwaysRetained(symbols *fir.Symbols, d fir.Decl) bool {
	if d.DeclOrigin() == fir.OriginEnumSynth {
		return true
	}
	fn, ok := d.(*fir.Function)
	if !ok {
		return false
	}
	// SAM invoke overrides: the functional-interface calling convention
	// reaches them without a visible call site.
	if fn.Name.Simple() != "invoke" {
		return false
	}
	for _, overridden := range fn.Overrides {
		super := symbols.Function(overridden)
		if super == nil {
			continue
		}
		owner := symbols.Class(super.Owner)
		if owner == nil {
			continue
		}
		if owner.Name.Module == builtins.CoreModule && strings.HasPrefix(owner.Name.Path, "Function") {
			return true
		}
	}
	return false
}
