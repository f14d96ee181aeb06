package fir

import (
	"fmt"

	"fortio.org/safecast"
)

// Symbols is the session-owned arena associating SymbolIDs with
// declarations. A symbol is minted before the declaration body is
// populated, so forward references during resolution always have a handle
// to hang on to.
type Symbols struct {
	decls []Decl // decls[0] reserved for NoSymbolID
}

func NewSymbols(capacity uint) *Symbols {
	capU32, err := safecast.Conv[uint32](capacity)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	s := &Symbols{decls: make([]Decl, 1, capU32+1)}
	return s
}

// New mints an unbound symbol.
func (s *Symbols) New() SymbolID {
	lenDecls, err := safecast.Conv[uint32](len(s.decls))
	if err != nil {
		panic(fmt.Errorf("symbol count overflow: %w", err))
	}
	s.decls = append(s.decls, nil)
	return SymbolID(lenDecls)
}

// Bind associates sym with decl. Binding is idempotent: re-binding to the
// same declaration is a no-op, re-binding to a different one is an
// internal invariant violation.
func (s *Symbols) Bind(sym SymbolID, decl Decl) {
	if !sym.IsValid() || int(sym) >= len(s.decls) {
		panic(fmt.Errorf("fir: binding invalid symbol %d", sym))
	}
	if existing := s.decls[sym]; existing != nil {
		if existing != decl {
			panic(fmt.Errorf("fir: symbol %d rebound to a different declaration", sym))
		}
		return
	}
	s.decls[sym] = decl
}

// Decl resolves sym to its declaration, nil while still unbound.
func (s *Symbols) Decl(sym SymbolID) Decl {
	if !sym.IsValid() || int(sym) >= len(s.decls) {
		return nil
	}
	return s.decls[sym]
}

// Class resolves sym to a class declaration, nil for anything else.
func (s *Symbols) Class(sym SymbolID) *Class {
	c, _ := s.Decl(sym).(*Class)
	return c
}

// Function resolves sym to a function declaration, nil for anything else.
func (s *Symbols) Function(sym SymbolID) *Function {
	f, _ := s.Decl(sym).(*Function)
	return f
}

func (s *Symbols) Len() int {
	return len(s.decls) - 1
}
