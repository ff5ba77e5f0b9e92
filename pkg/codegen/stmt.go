package codegen

import (
	"fmt"

	"simplecc/pkg/ast"
)

func (g *Generator) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		for _, st := range n.Stmts {
			g.stmt(st)
		}

	case *ast.Assignment:
		g.assign(n)

	case *ast.ExprStmt:
		g.value(n.Expr)

	case *ast.Return:
		op := g.value(n.Expr)
		g.load(n.Expr, op, "%eax")
		g.emit("jmp", g.fn.exit)

	case *ast.If:
		elseLabel, exit := g.newLabel(), g.newLabel()
		g.test(n.Cond, elseLabel)
		g.stmt(n.Then)
		g.emit("jmp", exit)
		g.label(elseLabel)
		if n.Else != nil {
			g.stmt(n.Else)
		}
		g.label(exit)

	case *ast.While:
		loop, exit := g.newLabel(), g.newLabel()
		g.label(loop)
		g.test(n.Cond, exit)
		g.stmt(n.Body)
		g.emit("jmp", loop)
		g.label(exit)

	case *ast.For:
		loop, exit := g.newLabel(), g.newLabel()
		g.stmt(n.Init)
		g.label(loop)
		g.test(n.Cond, exit)
		g.stmt(n.Body)
		g.stmt(n.Incr)
		g.emit("jmp", loop)
		g.label(exit)

	default:
		panic(fmt.Sprintf("codegen: unexpected statement %T", s))
	}
}

// test evaluates cond and jumps to target when it is false.
func (g *Generator) test(cond ast.Expr, target string) {
	op := g.value(cond)
	g.load(cond, op, "%eax")
	g.emit("cmpl", "$0", "%eax")
	g.emit("je", target)
}

func (g *Generator) assign(n *ast.Assignment) {
	dst, indirect := g.address(n.Left)
	src := g.value(n.Right)
	g.load(n.Right, src, "%eax")

	byteStore := n.Left.Type().Size() == 1
	if indirect {
		g.emit("movl", dst, "%ecx")
		dst = "(%ecx)"
	}
	if byteStore {
		g.emit("movb", "%al", dst)
	} else {
		g.emit("movl", "%eax", dst)
	}
}
