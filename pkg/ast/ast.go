// Package ast defines the checked syntax tree handed from the parser to the
// code generator. Every expression carries its resolved type and whether it
// denotes a storage location.
package ast

import (
	"fmt"
	"strings"

	"simplecc/pkg/symtab"
	"simplecc/pkg/types"
)

// Op is the operator of a Unary, Binary or Logical node.
type Op int

const (
	Not Op = iota
	Negate
	Dereference
	Address
	Sizeof

	Multiply
	Divide
	Remainder
	Add
	Subtract
	LessThan
	GreaterThan
	LessOrEqual
	GreaterOrEqual
	Equal
	NotEqual

	LogicalAnd
	LogicalOr
)

var opSymbols = [...]string{
	Not:            "!",
	Negate:         "-",
	Dereference:    "*",
	Address:        "&",
	Sizeof:         "sizeof",
	Multiply:       "*",
	Divide:         "/",
	Remainder:      "%",
	Add:            "+",
	Subtract:       "-",
	LessThan:       "<",
	GreaterThan:    ">",
	LessOrEqual:    "<=",
	GreaterOrEqual: ">=",
	Equal:          "==",
	NotEqual:       "!=",
	LogicalAnd:     "&&",
	LogicalOr:      "||",
}

func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	Type() types.Type
	Lvalue() bool
	String() string
}

// Annotation is the checker's result for an expression.
type Annotation struct {
	Typ      types.Type
	IsLvalue bool
}

func (a Annotation) Type() types.Type { return a.Typ }
func (a Annotation) Lvalue() bool     { return a.IsLvalue }

// Number is an integer literal.
type Number struct {
	Annotation
	Value int32
}

// String is a string literal. Lexeme keeps the quotes and escapes exactly as
// written so it can be emitted verbatim into an .asciz directive.
type String struct {
	Annotation
	Lexeme string
}

// Identifier is a use of a declared name.
type Identifier struct {
	Annotation
	Symbol *symtab.Symbol
}

// Call is name(args).
type Call struct {
	Annotation
	Symbol *symtab.Symbol
	Args   []Expr
}

// Unary is one of ! - * & sizeof applied to Operand.
type Unary struct {
	Annotation
	Op      Op
	Operand Expr
}

// Binary is an arithmetic or comparison operator. Pointer arithmetic is
// expressed here too: the node's type tells the generator to scale.
//
//	p + 1
//	^ ^ ^
//	| | Right
//	| Op
//	Left
type Binary struct {
	Annotation
	Op    Op
	Left  Expr
	Right Expr
}

// Logical is && or ||. It is separate from Binary because its right operand
// must be evaluated conditionally.
type Logical struct {
	Annotation
	Op    Op
	Left  Expr
	Right Expr
}

func (*Number) exprNode()     {}
func (*String) exprNode()     {}
func (*Identifier) exprNode() {}
func (*Call) exprNode()       {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Logical) exprNode()    {}

func (n *Number) String() string     { return fmt.Sprintf("%d", n.Value) }
func (s *String) String() string     { return s.Lexeme }
func (i *Identifier) String() string { return i.Symbol.Name }

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Symbol.Name, strings.Join(args, ", "))
}

func (u *Unary) String() string {
	if u.Op == Sizeof {
		return fmt.Sprintf("(sizeof %s)", u.Operand)
	}
	return fmt.Sprintf("(%s%s)", u.Op, u.Operand)
}

func (b *Binary) String() string  { return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right) }
func (l *Logical) String() string { return fmt.Sprintf("(%s %s %s)", l.Left, l.Op, l.Right) }

//  Statement nodes

// Stmt is implemented by every node that does not produce a value.
type Stmt interface {
	stmtNode()
	String() string
}

// Block is { declarations statements }. Scope holds the declarations; for a
// function body it also holds the parameters, which come first.
type Block struct {
	Scope *symtab.Scope
	Stmts []Stmt
}

// Assignment is Left = Right; assignment is a statement, not an expression.
type Assignment struct {
	Left  Expr
	Right Expr
}

// ExprStmt is an expression evaluated for its side effects.
type ExprStmt struct {
	Expr Expr
}

type Return struct {
	Expr Expr
}

type While struct {
	Cond Expr
	Body Stmt
}

// For is for (Init; Cond; Incr) Body. Init and Incr are assignments or
// expression statements.
type For struct {
	Init Stmt
	Cond Expr
	Incr Stmt
	Body Stmt
}

// If has an optional Else.
type If struct {
	Cond Expr
	Then Stmt
	Else Stmt
}

func (*Block) stmtNode()      {}
func (*Assignment) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*Return) stmtNode()     {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*If) stmtNode()         {}

func (b *Block) String() string      { return fmt.Sprintf("Block(len=%d)", len(b.Stmts)) }
func (a *Assignment) String() string { return fmt.Sprintf("Assignment(%s = %s)", a.Left, a.Right) }
func (e *ExprStmt) String() string   { return fmt.Sprintf("ExprStmt(%s)", e.Expr) }
func (r *Return) String() string     { return fmt.Sprintf("Return(%s)", r.Expr) }
func (w *While) String() string      { return fmt.Sprintf("While(%s do %s)", w.Cond, w.Body) }

func (f *For) String() string {
	return fmt.Sprintf("For(init=%s, cond=%s, incr=%s, body=%s)", f.Init, f.Cond, f.Incr, f.Body)
}

func (i *If) String() string {
	if i.Else != nil {
		return fmt.Sprintf("If(%s then %s else %s)", i.Cond, i.Then, i.Else)
	}
	return fmt.Sprintf("If(%s then %s)", i.Cond, i.Then)
}

//  Top level

// Function is a checked function definition. Params are the leading symbols
// of Body.Scope.
type Function struct {
	Symbol *symtab.Symbol
	Params []*symtab.Symbol
	Body   *Block
}

func (f *Function) Name() string { return f.Symbol.Name }

func (f *Function) String() string {
	return fmt.Sprintf("Function(%s %s, params=%d, body=%s)", f.Symbol.Type, f.Symbol.Name, len(f.Params), f.Body)
}

// Program is one translation unit.
type Program struct {
	Functions []*Function
	Globals   []*symtab.Symbol
}
