package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented rendering of prog, one node per line, with each
// expression's type and an L marker on lvalues.
func Dump(w io.Writer, prog *Program) {
	for _, g := range prog.Globals {
		fmt.Fprintf(w, "global %s: %s\n", g.Name, g.Type)
	}
	for _, fn := range prog.Functions {
		fmt.Fprintf(w, "function %s: %s\n", fn.Name(), fn.Symbol.Type)
		for _, p := range fn.Params {
			fmt.Fprintf(w, "  param %s: %s\n", p.Name, p.Type)
		}
		dumpStmt(w, fn.Body, 1)
	}
}

func dumpStmt(w io.Writer, s Stmt, depth int) {
	pad := strings.Repeat("  ", depth)
	switch n := s.(type) {
	case *Block:
		fmt.Fprintf(w, "%sblock\n", pad)
		for _, sym := range n.Scope.Symbols() {
			fmt.Fprintf(w, "%s  decl %s: %s\n", pad, sym.Name, sym.Type)
		}
		for _, st := range n.Stmts {
			dumpStmt(w, st, depth+1)
		}
	case *Assignment:
		fmt.Fprintf(w, "%sassign\n", pad)
		dumpExpr(w, n.Left, depth+1)
		dumpExpr(w, n.Right, depth+1)
	case *ExprStmt:
		fmt.Fprintf(w, "%sexpr\n", pad)
		dumpExpr(w, n.Expr, depth+1)
	case *Return:
		fmt.Fprintf(w, "%sreturn\n", pad)
		dumpExpr(w, n.Expr, depth+1)
	case *While:
		fmt.Fprintf(w, "%swhile\n", pad)
		dumpExpr(w, n.Cond, depth+1)
		dumpStmt(w, n.Body, depth+1)
	case *For:
		fmt.Fprintf(w, "%sfor\n", pad)
		dumpStmt(w, n.Init, depth+1)
		dumpExpr(w, n.Cond, depth+1)
		dumpStmt(w, n.Incr, depth+1)
		dumpStmt(w, n.Body, depth+1)
	case *If:
		fmt.Fprintf(w, "%sif\n", pad)
		dumpExpr(w, n.Cond, depth+1)
		dumpStmt(w, n.Then, depth+1)
		if n.Else != nil {
			fmt.Fprintf(w, "%selse\n", pad)
			dumpStmt(w, n.Else, depth+1)
		}
	default:
		fmt.Fprintf(w, "%s%s\n", pad, s)
	}
}

func dumpExpr(w io.Writer, e Expr, depth int) {
	pad := strings.Repeat("  ", depth)
	mark := ""
	if e.Lvalue() {
		mark = " L"
	}

	switch n := e.(type) {
	case *Unary:
		fmt.Fprintf(w, "%sunary %s: %s%s\n", pad, n.Op, n.Type(), mark)
		dumpExpr(w, n.Operand, depth+1)
	case *Binary:
		fmt.Fprintf(w, "%sbinary %s: %s%s\n", pad, n.Op, n.Type(), mark)
		dumpExpr(w, n.Left, depth+1)
		dumpExpr(w, n.Right, depth+1)
	case *Logical:
		fmt.Fprintf(w, "%slogical %s: %s%s\n", pad, n.Op, n.Type(), mark)
		dumpExpr(w, n.Left, depth+1)
		dumpExpr(w, n.Right, depth+1)
	case *Call:
		fmt.Fprintf(w, "%scall %s: %s\n", pad, n.Symbol.Name, n.Type())
		for _, a := range n.Args {
			dumpExpr(w, a, depth+1)
		}
	default:
		fmt.Fprintf(w, "%s%s: %s%s\n", pad, e, e.Type(), mark)
	}
}
