package codegen

import (
	"fmt"
	"strings"

	"simplecc/pkg/ast"
	"simplecc/pkg/types"
)

// location returns the memory operand of a variable.
func (g *Generator) location(id *ast.Identifier) string {
	if id.Symbol.IsGlobal() {
		return g.global(id.Symbol.Name)
	}
	return fmt.Sprintf("%d(%%ebp)", id.Symbol.Offset)
}

func isImmediate(op string) bool { return strings.HasPrefix(op, "$") }

// load moves the value of e, already generated into op, into reg. Char
// values are sign-extended.
func (g *Generator) load(e ast.Expr, op, reg string) {
	t := e.Type()
	if t.IsScalar() && t.Size() == 1 && !isImmediate(op) {
		g.emit("movsbl", op, reg)
		return
	}
	g.emit("movl", op, reg)
}

// store writes %eax into a temporary and returns it.
func (g *Generator) store() string {
	t := g.temp()
	g.emit("movl", "%eax", t)
	return t
}

// value generates e and returns an operand holding its value.
func (g *Generator) value(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Number:
		return fmt.Sprintf("$%d", n.Value)

	case *ast.String:
		return "$" + g.intern(n.Lexeme)

	case *ast.Identifier:
		loc := g.location(n)
		if !n.Type().IsArray() {
			return loc
		}
		if n.Symbol.IsGlobal() {
			return "$" + loc
		}
		g.emit("leal", loc, "%eax")
		return g.store()

	case *ast.Call:
		return g.call(n)

	case *ast.Unary:
		return g.unary(n)

	case *ast.Binary:
		return g.binary(n)

	case *ast.Logical:
		return g.logical(n)
	}
	panic(fmt.Sprintf("codegen: unexpected expression %T", e))
}

// address generates e as an assignment target. When indirect is true the
// operand holds a pointer and the store must go through it.
func (g *Generator) address(e ast.Expr) (op string, indirect bool) {
	switch n := e.(type) {
	case *ast.Identifier:
		return g.location(n), false
	case *ast.Unary:
		if n.Op == ast.Dereference {
			return g.value(n.Operand), true
		}
	}
	return g.value(e), false
}

func (g *Generator) unary(n *ast.Unary) string {
	switch n.Op {
	case ast.Sizeof:
		return fmt.Sprintf("$%d", n.Operand.Type().Size())

	case ast.Address:
		op, indirect := g.address(n.Operand)
		if indirect {
			return op
		}
		g.emit("leal", op, "%eax")
		return g.store()

	case ast.Dereference:
		ptr := g.value(n.Operand)
		g.emit("movl", ptr, "%eax")
		if n.Type().Size() == 1 {
			g.emit("movsbl", "(%eax)", "%eax")
		} else {
			g.emit("movl", "(%eax)", "%eax")
		}
		return g.store()

	case ast.Negate:
		op := g.value(n.Operand)
		g.load(n.Operand, op, "%eax")
		g.emit("negl", "%eax")
		return g.store()

	case ast.Not:
		op := g.value(n.Operand)
		g.load(n.Operand, op, "%eax")
		g.emit("cmpl", "$0", "%eax")
		g.emit("sete", "%al")
		g.emit("movzbl", "%al", "%eax")
		return g.store()
	}
	panic(fmt.Sprintf("codegen: unexpected unary operator %s", n.Op))
}

var setcc = map[ast.Op]string{
	ast.LessThan:       "setl",
	ast.GreaterThan:    "setg",
	ast.LessOrEqual:    "setle",
	ast.GreaterOrEqual: "setge",
	ast.Equal:          "sete",
	ast.NotEqual:       "setne",
}

// elementSize returns the size of what a pointer-valued t points to.
func elementSize(t types.Type) int {
	return t.Promote().Dereference().Size()
}

func (g *Generator) binary(n *ast.Binary) string {
	left := g.value(n.Left)
	right := g.value(n.Right)
	g.load(n.Left, left, "%eax")
	g.load(n.Right, right, "%ecx")

	switch n.Op {
	case ast.Add:
		if n.Type().IsPointer() {
			if n.Left.Type().IsPointer() {
				g.scale("%ecx", elementSize(n.Type()))
			} else {
				g.scale("%eax", elementSize(n.Type()))
			}
		}
		g.emit("addl", "%ecx", "%eax")

	case ast.Subtract:
		switch {
		case n.Left.Type().IsPointer() && n.Right.Type().IsPointer():
			g.emit("subl", "%ecx", "%eax")
			if size := elementSize(n.Left.Type()); size > 1 {
				g.emit("movl", fmt.Sprintf("$%d", size), "%ecx")
				g.emit("cltd")
				g.emit("idivl", "%ecx")
			}
		case n.Left.Type().IsPointer():
			g.scale("%ecx", elementSize(n.Type()))
			g.emit("subl", "%ecx", "%eax")
		default:
			g.emit("subl", "%ecx", "%eax")
		}

	case ast.Multiply:
		g.emit("imull", "%ecx", "%eax")

	case ast.Divide:
		g.emit("cltd")
		g.emit("idivl", "%ecx")

	case ast.Remainder:
		g.emit("cltd")
		g.emit("idivl", "%ecx")
		g.emit("movl", "%edx", "%eax")

	default:
		set, ok := setcc[n.Op]
		if !ok {
			panic(fmt.Sprintf("codegen: unexpected binary operator %s", n.Op))
		}
		g.emit("cmpl", "%ecx", "%eax")
		g.emit(set, "%al")
		g.emit("movzbl", "%al", "%eax")
	}
	return g.store()
}

// scale multiplies reg by an element size.
func (g *Generator) scale(reg string, size int) {
	if size > 1 {
		g.emit("imull", fmt.Sprintf("$%d", size), reg)
	}
}

// logical evaluates the right operand only when the left one does not
// decide the result.
func (g *Generator) logical(n *ast.Logical) string {
	skip := g.newLabel()
	result := g.temp()

	jump := "je"
	if n.Op == ast.LogicalOr {
		jump = "jne"
	}

	left := g.value(n.Left)
	g.load(n.Left, left, "%eax")
	g.emit("cmpl", "$0", "%eax")
	g.emit(jump, skip)

	right := g.value(n.Right)
	g.load(n.Right, right, "%eax")
	g.emit("cmpl", "$0", "%eax")

	g.label(skip)
	g.emit("setne", "%al")
	g.emit("movzbl", "%al", "%eax")
	g.emit("movl", "%eax", result)
	return result
}

// snapshot evaluates e into an operand that later code cannot change: an
// immediate or the temporary e was just stored in. Anything else, such as a
// variable's own slot, is copied into a fresh temporary.
func (g *Generator) snapshot(e ast.Expr) string {
	mark := g.fn.temp
	op := g.value(e)
	if isImmediate(op) || (g.fn.temp < mark && op == g.slot(g.fn.temp)) {
		return op
	}
	g.load(e, op, "%eax")
	return g.store()
}

func (g *Generator) call(n *ast.Call) string {
	callee := g.global(n.Symbol.Name)

	if g.cfg.Convention == Aligned {
		g.trackArgs(len(n.Args))
		ops := make([]string, len(n.Args))
		for i := len(n.Args) - 1; i >= 0; i-- {
			ops[i] = g.snapshot(n.Args[i])
		}
		for i := len(n.Args) - 1; i >= 0; i-- {
			g.load(n.Args[i], ops[i], "%eax")
			g.emit("movl", "%eax", fmt.Sprintf("%d(%%esp)", i*SizeofArg))
		}
		g.emit("call", callee)
		return g.store()
	}

	for i := len(n.Args) - 1; i >= 0; i-- {
		op := g.value(n.Args[i])
		if isImmediate(op) {
			g.emit("pushl", op)
			continue
		}
		g.load(n.Args[i], op, "%eax")
		g.emit("pushl", "%eax")
	}
	g.emit("call", callee)
	if bytes := len(n.Args) * SizeofArg; bytes > 0 {
		g.emit("addl", fmt.Sprintf("$%d", bytes), "%esp")
	}
	return g.store()
}
