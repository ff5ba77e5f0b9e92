package codegen

import (
	"simplecc/pkg/ast"
	"simplecc/pkg/symtab"
)

const (
	// ParamOffset is the frame offset of the first parameter, past the saved
	// frame pointer and the return address.
	ParamOffset = 8

	// SizeofArg is the stack slot used by every argument.
	SizeofArg = 4
)

// Allocate assigns frame offsets to the parameters and locals of fn and
// returns the lowest offset used, which is zero or negative.
//
// Parameters take one 4-byte slot each upward from ParamOffset. Locals of
// the body scope, then of nested blocks in pre-order, are placed downward
// from zero, each aligned to its type.
func Allocate(fn *ast.Function) int {
	offset := ParamOffset
	for _, p := range fn.Params {
		p.Offset = offset
		offset += SizeofArg
	}

	offset = 0
	isParam := make(map[*symtab.Symbol]bool, len(fn.Params))
	for _, p := range fn.Params {
		isParam[p] = true
	}

	var walk func(s ast.Stmt)
	walk = func(s ast.Stmt) {
		switch n := s.(type) {
		case *ast.Block:
			for _, sym := range n.Scope.Symbols() {
				if isParam[sym] {
					continue
				}
				offset = allocateLocal(sym, offset)
			}
			for _, st := range n.Stmts {
				walk(st)
			}
		case *ast.While:
			walk(n.Body)
		case *ast.For:
			walk(n.Body)
		case *ast.If:
			walk(n.Then)
			if n.Else != nil {
				walk(n.Else)
			}
		}
	}
	walk(fn.Body)

	return offset
}

func allocateLocal(sym *symtab.Symbol, offset int) int {
	size := sym.Type.Size()
	if size == 0 {
		return offset
	}
	offset = alignDown(offset-size, sym.Type.Alignment())
	sym.Offset = offset
	return offset
}

// alignDown rounds a non-positive offset down to a multiple of align.
func alignDown(offset, align int) int {
	if r := offset % align; r != 0 {
		offset -= align + r
	}
	return offset
}
