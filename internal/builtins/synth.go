// Package builtins lazily materializes the platform's built-in types as
// typed declarations: numbers, String, Array, the collection interfaces,
// function types of every arity. Every later stage asks here for a
// "well-known type"; nothing else is allowed to mint core declarations.
package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"vela/internal/fir"
)

// State tracks the lifecycle of one builtin class.
type State uint8

const (
	// StateUnrequested: nobody asked yet; no entry exists in this state.
	StateUnrequested State = iota
	// StatePending: the handle exists, contents are not yet generated.
	StatePending
	// StateSynthesized: members and supertypes generated, fake overrides
	// not yet computed.
	StateSynthesized
	// StateLoaded: class came from an existing library, not synthesized.
	StateLoaded
	// StateFinalized: fake overrides fixed; the class is complete.
	StateFinalized
)

type entry struct {
	state State
	class *fir.Class
}

// Synthesizer owns the builtin catalogue for one session. Handles are
// identity-stable: asking for the same name twice returns the same class.
type Synthesizer struct {
	session    *fir.Session
	entries    map[string]*entry
	finalizing map[fir.SymbolID]bool
}

func NewSynthesizer(session *fir.Session) *Synthesizer {
	return &Synthesizer{
		session:    session,
		entries:    make(map[string]*entry, 32),
		finalizing: make(map[fir.SymbolID]bool),
	}
}

// ClassFor returns the handle for a well-known name, allocating an
// identity-stable shell on first request. The handle is usable before
// contents are generated, which is what lets mutually recursive builtins
// (Comparable<T> referencing Int referencing Comparable<Int>) resolve.
func (s *Synthesizer) ClassFor(name string) (*fir.Class, error) {
	if e, ok := s.entries[name]; ok {
		return e.class, nil
	}
	if _, known := generators[name]; !known && functionArity(name) < 0 {
		return nil, fmt.Errorf("builtins: unknown well-known name %q", name)
	}
	c := &fir.Class{
		DeclBase: fir.DeclBase{
			Name:     fir.Name{Module: CoreModule, Path: name},
			Origin:   fir.OriginBuiltin,
			Modality: fir.ModalityOpen,
		},
	}
	s.session.NewClassSymbol(c)
	s.entries[name] = &entry{state: StatePending, class: c}
	return c, nil
}

// MustClass is ClassFor for names the caller knows are in the catalogue.
func (s *Synthesizer) MustClass(name string) *fir.Class {
	c, err := s.ClassFor(name)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadExisting registers a class loaded from an existing library under a
// well-known name instead of synthesizing it. Rejected once the name was
// already requested.
func (s *Synthesizer) LoadExisting(name string, c *fir.Class) error {
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("builtins: %q already materialized", name)
	}
	s.entries[name] = &entry{state: StateLoaded, class: c}
	return nil
}

// Type returns an applied class type for a well-known name.
func (s *Synthesizer) Type(name string, args ...fir.Type) fir.Type {
	return fir.ClassType(s.MustClass(name).Symbol, args...)
}

// AnyClass is the top type; every other builtin ultimately inherits it.
func (s *Synthesizer) AnyClass() *fir.Class { return s.MustClass(NameAny) }

// Members returns the class's complete member list, populating contents
// and finalizing fake overrides on first call.
func (s *Synthesizer) Members(name string) ([]fir.Decl, error) {
	c, err := s.ClassFor(name)
	if err != nil {
		return nil, err
	}
	if err := s.Finalize(c); err != nil {
		return nil, err
	}
	return c.Members, nil
}

// State reports the lifecycle state for a well-known name.
func (s *Synthesizer) State(name string) State {
	e, ok := s.entries[name]
	if !ok {
		return StateUnrequested
	}
	return e.state
}

// ensureContents runs the generator for a pending entry.
func (s *Synthesizer) ensureContents(e *entry) {
	if e.state != StatePending {
		return
	}
	name := e.class.Name.Path
	gen, ok := generators[name]
	if !ok {
		if arity := functionArity(name); arity >= 0 {
			gen = functionGenerator(arity)
		}
	}
	// Mark synthesized before running so a generator that reaches its own
	// class through a cycle sees a stable state.
	e.state = StateSynthesized
	gen(s, e.class)
}

// functionArity parses "FunctionN" names; -1 for anything else.
func functionArity(name string) int {
	rest, ok := strings.CutPrefix(name, "Function")
	if !ok || rest == "" {
		return -1
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || n > MaxFunctionArity {
		return -1
	}
	return n
}

// newFun mints a member function with a bound symbol, appends it to the
// class, and returns it. The symbol exists before the body (always nil for
// builtins) so references resolve during generation of other classes.
func (s *Synthesizer) newFun(c *fir.Class, name string, ret fir.Type, params ...fir.Param) *fir.Function {
	f := &fir.Function{
		DeclBase: fir.DeclBase{
			Name:     c.Name.Child(name),
			Origin:   fir.OriginBuiltin,
			Modality: fir.ModalityOpen,
		},
		Params: params,
		Return: ret,
		Owner:  c.Symbol,
	}
	sym := s.session.Symbols.New()
	f.Symbol = sym
	s.session.Symbols.Bind(sym, f)
	c.Members = append(c.Members, f)
	return f
}

func param(name string, t fir.Type) fir.Param {
	return fir.Param{Name: name, Type: t}
}
