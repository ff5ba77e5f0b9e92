package codegen

import (
	"fmt"

	"simplecc/pkg/ast"
)

// intern returns the label of a string literal, adding it to the pool the
// first time the lexeme is seen.
func (g *Generator) intern(lexeme string) string {
	if l, ok := g.pool[lexeme]; ok {
		return l
	}
	l := g.newLabel()
	g.pool[lexeme] = l
	g.literals = append(g.literals, pooled{label: l, lexeme: lexeme})
	return l
}

// globals writes the data segment: one .comm per global variable, then the
// string pool.
func (g *Generator) globals(prog *ast.Program) {
	if len(prog.Globals) > 0 {
		g.out.WriteString("\t.data\n")
	}
	for _, sym := range prog.Globals {
		fmt.Fprintf(&g.out, "\t.comm\t%s, %d, %d\n", g.global(sym.Name), sym.Type.Size(), sym.Type.Alignment())
	}
	for _, s := range g.literals {
		fmt.Fprintf(&g.out, "%s:\t.asciz\t%s\n", s.label, s.lexeme)
	}
}
