package fir

import "strconv"

// Substitution maps type parameters to applied types. Keys are parameter
// identities, so a nested declaration that binds a fresh parameter with
// the same spelling is never rewritten: capture avoidance falls out of
// pointer identity instead of renaming.
type Substitution struct {
	mapping map[*TypeParameter]Type
}

// NewSubstitution pairs params with args positionally. Surplus params stay
// unmapped (they substitute to themselves); surplus args are dropped.
func NewSubstitution(params []*TypeParameter, args []Type) *Substitution {
	n := min(len(params), len(args))
	if n == 0 {
		return &Substitution{}
	}
	mapping := make(map[*TypeParameter]Type, n)
	for i := range n {
		mapping[params[i]] = args[i]
	}
	return &Substitution{mapping: mapping}
}

// IdentitySubstitution maps nothing. Callers short-circuit on it to avoid
// building substituted scopes that would equal the originals.
func IdentitySubstitution() *Substitution {
	return &Substitution{}
}

func (s *Substitution) IsIdentity() bool {
	return s == nil || len(s.mapping) == 0
}

// Apply rewrites t under the substitution. Nullability is sticky: T? with
// T -> String yields String?.
func (s *Substitution) Apply(t Type) Type {
	if s.IsIdentity() {
		return t
	}
	switch t.Kind {
	case TypeParamRef:
		repl, ok := s.mapping[t.Param]
		if !ok {
			return t
		}
		if t.Nullable {
			repl = repl.WithNullable(true)
		}
		return repl
	case TypeClass:
		if len(t.Args) == 0 {
			return t
		}
		changed := false
		args := t.Args
		for i, a := range t.Args {
			applied := s.Apply(a)
			if applied.Equal(a) {
				continue
			}
			if !changed {
				args = make([]Type, len(t.Args))
				copy(args, t.Args)
				changed = true
			}
			args[i] = applied
		}
		if !changed {
			return t
		}
		t.Args = args
		return t
	default:
		return t
	}
}

// ApplyAll maps Apply over a slice, reusing it when nothing changed.
func (s *Substitution) ApplyAll(types []Type) []Type {
	if s.IsIdentity() {
		return types
	}
	changed := false
	out := types
	for i, t := range types {
		applied := s.Apply(t)
		if applied.Equal(t) {
			continue
		}
		if !changed {
			out = make([]Type, len(types))
			copy(out, types)
			changed = true
		}
		out[i] = applied
	}
	return out
}

// Key renders a stable cache key for the substitution, ordered by
// parameter owner and index so equal substitutions key identically.
func (s *Substitution) Key(symbols *Symbols) string {
	if s.IsIdentity() {
		return ""
	}
	type pair struct {
		p *TypeParameter
		t Type
	}
	pairs := make([]pair, 0, len(s.mapping))
	for p, t := range s.mapping {
		pairs = append(pairs, pair{p, t})
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && less(pairs[j].p, pairs[j-1].p); j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	key := ""
	for _, pr := range pairs {
		key += pr.p.Name + "#" + strconv.Itoa(int(pr.p.Owner)) + "." + strconv.Itoa(pr.p.Index) + "=" + pr.t.Format(symbols) + ";"
	}
	return key
}

func less(a, b *TypeParameter) bool {
	if a.Owner != b.Owner {
		return a.Owner < b.Owner
	}
	return a.Index < b.Index
}
