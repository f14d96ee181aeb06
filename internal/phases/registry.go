// Package phases schedules the analysis and lowering passes. Phases are
// registered with prerequisite edges into a static DAG, then executed in
// an explicit master order that is validated against the DAG before any
// IR is touched. Scheduling mistakes are configuration errors raised at
// registration or validation time, never mid-pipeline.
package phases

import (
	"fmt"
)

// Kind separates the phase shapes the runner knows how to drive.
type Kind uint8

const (
	// KindModule transforms or analyzes the whole module.
	KindModule Kind = iota
	// KindDisposal releases resources at the end of the list. Disposal
	// phases run even when optional phases were skipped, but not after a
	// mandatory phase failed.
	KindDisposal
)

// Phase is one named unit of pipeline work.
type Phase struct {
	Name     string
	Desc     string
	Kind     Kind
	Optional bool
	Prereqs  []string
	Run      func(ctx *Context) error
}

// Registry is the static phase graph for one build configuration.
type Registry struct {
	phases map[string]*Phase
	names  []string // registration order
}

func NewRegistry() *Registry {
	return &Registry{phases: make(map[string]*Phase)}
}

// Register adds a phase. Duplicate names, duplicate prerequisite entries,
// and prerequisite cycles are all rejected here: the graph is fixed per
// build, so a bad graph is a bug in the pipeline definition.
func (r *Registry) Register(p *Phase) error {
	if p.Name == "" {
		return fmt.Errorf("phase with empty name")
	}
	if _, dup := r.phases[p.Name]; dup {
		return fmt.Errorf("phase %q registered twice", p.Name)
	}
	seen := make(map[string]bool, len(p.Prereqs))
	for _, pre := range p.Prereqs {
		if pre == p.Name {
			return fmt.Errorf("phase %q lists itself as prerequisite", p.Name)
		}
		if seen[pre] {
			return fmt.Errorf("phase %q lists prerequisite %q twice", p.Name, pre)
		}
		seen[pre] = true
	}
	r.phases[p.Name] = p
	r.names = append(r.names, p.Name)
	if cycle := r.findCycle(p.Name); cycle != "" {
		delete(r.phases, p.Name)
		r.names = r.names[:len(r.names)-1]
		return fmt.Errorf("phase %q closes a prerequisite cycle through %q", p.Name, cycle)
	}
	return nil
}

// MustRegister is Register for statically known pipeline definitions.
func (r *Registry) MustRegister(p *Phase) {
	if err := r.Register(p); err != nil {
		panic("phases: " + err.Error())
	}
}

// Lookup returns the named phase, or nil.
func (r *Registry) Lookup(name string) *Phase {
	return r.phases[name]
}

// Names returns phase names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// findCycle runs a DFS from the newly added phase over prerequisite
// edges. Prerequisites not registered yet cannot be on a cycle involving
// the new phase, so they terminate the walk.
func (r *Registry) findCycle(start string) string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int)
	var visit func(name string) string
	visit = func(name string) string {
		color[name] = grey
		p := r.phases[name]
		if p != nil {
			for _, pre := range p.Prereqs {
				switch color[pre] {
				case grey:
					return pre
				case white:
					if _, known := r.phases[pre]; !known {
						continue
					}
					if hit := visit(pre); hit != "" {
						return hit
					}
				}
			}
		}
		color[name] = black
		return ""
	}
	return visit(start)
}

// ValidateOrder checks an explicit master order against the registry:
// every name must be registered, no name may repeat, and every phase's
// registered prerequisites must appear earlier in the order (a skipped
// optional prerequisite is caught at run time, not here, because whether
// it runs depends on configuration). The check runs before any phase
// executes, so an invalid order never mutates IR.
func (r *Registry) ValidateOrder(order []string) error {
	position := make(map[string]int, len(order))
	for i, name := range order {
		if _, known := r.phases[name]; !known {
			return fmt.Errorf("unknown phase %q in order", name)
		}
		if _, dup := position[name]; dup {
			return fmt.Errorf("phase %q appears twice in order", name)
		}
		position[name] = i
	}
	for i, name := range order {
		for _, pre := range r.phases[name].Prereqs {
			at, present := position[pre]
			if !present {
				return fmt.Errorf("phase %q requires %q which is not in the order", name, pre)
			}
			if at >= i {
				return fmt.Errorf("phase %q ordered before its prerequisite %q", name, pre)
			}
		}
	}
	return nil
}
