package fir

// SymbolID identifies a declaration inside a session's symbol arena.
// Two IDs are equal iff they reference the same declaration.
type SymbolID uint32

// NoSymbolID marks the absence of a symbol reference.
const NoSymbolID SymbolID = 0

// IsValid reports whether the ID refers to an allocated symbol.
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
