package fir

// Module is the mutable unit the phase pipeline operates on. Phases
// rewrite it in place; nothing snapshots or rolls back.
type Module struct {
	Name      string
	Classes   []*Class
	Functions []*Function // top-level functions
	Entry     SymbolID    // entry point, NoSymbolID for library output
}

// Session owns everything shared across one compilation: the symbol arena,
// the string interner backing names, and the per-session caches that
// components hang off it. It is never stored in a process-wide variable,
// so concurrent compilations stay isolated.
type Session struct {
	Symbols *Symbols
}

func NewSession() *Session {
	return &Session{
		Symbols: NewSymbols(256),
	}
}

// NewClassSymbol mints a symbol and binds it to a fresh class shell in one
// step, the usual pattern when building declarations top-down.
func (s *Session) NewClassSymbol(c *Class) SymbolID {
	sym := s.Symbols.New()
	c.Symbol = sym
	s.Symbols.Bind(sym, c)
	return sym
}

// EachCallable visits every function and constructor of the module,
// class members included, in declaration order.
func (m *Module) EachCallable(fn func(Decl)) {
	for _, f := range m.Functions {
		fn(f)
	}
	for _, c := range m.Classes {
		for _, member := range c.Members {
			switch member.(type) {
			case *Function, *Constructor:
				fn(member)
			}
		}
	}
}

// FindClass returns the class with the given qualified path, or nil.
func (m *Module) FindClass(path string) *Class {
	for _, c := range m.Classes {
		if c.Name.Path == path {
			return c
		}
	}
	return nil
}

// RemoveMember deletes member from its owning class, preserving order.
// Used by DCE; returns false when the member was not found.
func (c *Class) RemoveMember(sym SymbolID) bool {
	for i, member := range c.Members {
		if member.DeclSymbol() == sym {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			return true
		}
	}
	return false
}

// MemberFunctions returns the function members in declaration order.
func (c *Class) MemberFunctions() []*Function {
	var out []*Function
	for _, m := range c.Members {
		if f, ok := m.(*Function); ok {
			out = append(out, f)
		}
	}
	return out
}
