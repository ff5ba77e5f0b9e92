// Package symtab holds the scope chain used by the checker. Scopes nest like
// the blocks and parameter lists they represent; each one owns the symbols
// declared directly in it.
package symtab

import (
	"fmt"
	"strings"

	"simplecc/pkg/types"
)

// Symbol is a named binding. Offset is zero for file-scope storage and a
// frame-pointer-relative displacement for parameters and locals.
type Symbol struct {
	Name    string
	Type    types.Type
	Defined bool
	Offset  int
}

func (s *Symbol) IsGlobal() bool { return s.Offset == 0 }

func (s *Symbol) String() string {
	return fmt.Sprintf("%s: %s (offset %d)", s.Name, s.Type, s.Offset)
}

// Scope is one level of the chain. Symbols keep declaration order so the
// frame allocator can assign offsets deterministically.
type Scope struct {
	enclosing *Scope
	symbols   []*Symbol
	depth     int
	closed    bool
}

// Open creates a scope nested in parent. A nil parent creates a root scope.
func Open(parent *Scope) *Scope {
	s := &Scope{enclosing: parent}
	if parent != nil {
		s.depth = parent.depth + 1
	}
	return s
}

// Close ends the scope's lexical lifetime and returns its enclosing scope.
// Symbols stay reachable through syntax-tree references.
func (s *Scope) Close() *Scope {
	if s.closed {
		panic("symtab: scope closed twice")
	}
	s.closed = true
	return s.enclosing
}

func (s *Scope) Enclosing() *Scope { return s.enclosing }
func (s *Scope) Depth() int        { return s.depth }
func (s *Scope) IsRoot() bool      { return s.enclosing == nil }
func (s *Scope) Closed() bool      { return s.closed }

// Symbols returns the scope's own symbols in declaration order.
func (s *Scope) Symbols() []*Symbol {
	out := make([]*Symbol, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Insert appends a new symbol. Duplicate policy belongs to the caller.
func (s *Scope) Insert(name string, typ types.Type) *Symbol {
	sym := &Symbol{Name: name, Type: typ}
	s.symbols = append(s.symbols, sym)
	return sym
}

// Find searches this scope only.
func (s *Scope) Find(name string) *Symbol {
	for _, sym := range s.symbols {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Lookup searches this scope and then every enclosing scope.
func (s *Scope) Lookup(name string) *Symbol {
	for sc := s; sc != nil; sc = sc.enclosing {
		if sym := sc.Find(name); sym != nil {
			return sym
		}
	}
	return nil
}

// LookupEnclosing searches the enclosing scopes only, skipping s itself.
func (s *Scope) LookupEnclosing(name string) *Symbol {
	if s.enclosing == nil {
		return nil
	}
	return s.enclosing.Lookup(name)
}

// String returns a dump of the chain from s outward.
func (s *Scope) String() string {
	var sb strings.Builder
	for sc := s; sc != nil; sc = sc.enclosing {
		fmt.Fprintf(&sb, "Scope %d:\n", sc.depth)
		if len(sc.symbols) == 0 {
			sb.WriteString("  (empty)\n")
		}
		for _, sym := range sc.symbols {
			fmt.Fprintf(&sb, "  %-20s  %s", sym.Name, sym.Type)
			if sym.Offset != 0 {
				fmt.Fprintf(&sb, "  Offset: %d", sym.Offset)
			}
			if sym.Defined {
				sb.WriteString("  (defined)")
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
