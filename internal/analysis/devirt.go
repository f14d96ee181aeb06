package analysis

import (
	"vela/internal/callgraph"
	"vela/internal/fir"
)

// WorldModel selects the subclassing assumptions of devirtualization.
type WorldModel uint8

const (
	// WorldClosed: whole program, every subclass is visible.
	WorldClosed WorldModel = iota
	// WorldOpen: library output, unknown external subclasses may exist.
	WorldOpen
)

func (w WorldModel) String() string {
	if w == WorldOpen {
		return "open"
	}
	return "closed"
}

// DevirtConfig carries the knobs. UnfoldFactor bounds how many concrete
// targets a site may resolve to before the analysis gives up and leaves
// the call virtual; it only applies in the closed world.
type DevirtConfig struct {
	World        WorldModel
	UnfoldFactor int
}

// DevirtResult maps resolved call sites to their possible concrete
// targets. Sites absent from the map remain virtual: refinement is
// monotonic, never a rewrite of the graph itself.
type DevirtResult struct {
	Targets map[*fir.Expr][]fir.SymbolID
}

// Resolved returns the target set for a site, if the site was resolved.
func (r *DevirtResult) Resolved(site *fir.Expr) ([]fir.SymbolID, bool) {
	targets, ok := r.Targets[site]
	return targets, ok
}

// Devirtualize computes, per virtual call site, the set of concrete
// targets reachable from it. A site resolves when the candidate count is
// within tolerance: up to UnfoldFactor in the closed world, exactly one
// in the open world and only for hierarchies that cannot be extended
// externally.
func Devirtualize(graph *callgraph.Graph, overriders *Overriders, cfg DevirtConfig) *DevirtResult {
	limit := cfg.UnfoldFactor
	if limit < 1 {
		limit = 1
	}
	result := &DevirtResult{Targets: make(map[*fir.Expr][]fir.SymbolID)}

	graph.EachNode(func(node *callgraph.Node) {
		for _, site := range node.Sites {
			if !site.Virtual || !site.Target.IsValid() {
				continue
			}
			candidates := overriders.Implementations(site.Target)
			if len(candidates) == 0 {
				continue // nothing concrete known; leave virtual
			}
			switch cfg.World {
			case WorldOpen:
				if len(candidates) == 1 && overriders.HierarchyClosed(site.Target) {
					result.Targets[site.Expr] = candidates
				}
			default:
				if len(candidates) <= limit {
					result.Targets[site.Expr] = candidates
				}
			}
		}
	})
	return result
}
