package phases

import "slices"

// Topo is a batched topological schedule over the registered phases.
// Order is the flattened linear schedule; Batches groups phases whose
// prerequisites are all satisfied by earlier batches, so phases within a
// batch have no ordering constraints between them.
type Topo struct {
	Order   []string
	Batches [][]string
	Cyclic  bool
	Cycles  []string
}

// Schedule computes a deterministic Kahn toposort of every registered
// phase. Names inside a batch are sorted, so the schedule depends only on
// the registered set, never on registration order. Cycles cannot normally
// occur (Register rejects them) but a Topo still reports them defensively
// rather than looping.
func (r *Registry) Schedule() *Topo {
	indeg := make(map[string]int, len(r.names))
	dependents := make(map[string][]string, len(r.names))
	for _, name := range r.names {
		p := r.phases[name]
		indeg[name] = len(p.Prereqs)
		for _, pre := range p.Prereqs {
			dependents[pre] = append(dependents[pre], name)
		}
	}

	topo := &Topo{Order: make([]string, 0, len(r.names))}

	var current []string
	for name, d := range indeg {
		if d == 0 {
			current = append(current, name)
		}
	}
	slices.Sort(current)

	for len(current) > 0 {
		batch := make([]string, len(current))
		copy(batch, current)
		topo.Batches = append(topo.Batches, batch)

		var next []string
		for _, name := range batch {
			topo.Order = append(topo.Order, name)
			for _, dep := range dependents[name] {
				indeg[dep]--
				if indeg[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != len(r.names) {
		topo.Cyclic = true
		for name, d := range indeg {
			if d > 0 {
				topo.Cycles = append(topo.Cycles, name)
			}
		}
		slices.Sort(topo.Cycles)
	}
	return topo
}
