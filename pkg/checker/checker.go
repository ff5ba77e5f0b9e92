// Package checker implements the semantic rules of Simple C. The parser calls
// into a Checker as it reduces each declaration and expression; every rule
// returns a result type and reports at most one diagnostic. An Error operand
// is absorbed silently so one mistake produces one message.
package checker

import (
	"simplecc/pkg/diag"
	"simplecc/pkg/symtab"
	"simplecc/pkg/types"
)

// LookupMode selects how identifier uses are resolved.
type LookupMode int

const (
	// FullChain searches the current scope and then its ancestors.
	FullChain LookupMode = iota
	// EnclosingOnly skips the current scope and searches its ancestors.
	EnclosingOnly
)

func (m LookupMode) String() string {
	if m == EnclosingOnly {
		return "enclosing"
	}
	return "full"
}

type Config struct {
	Lookup LookupMode
}

func DefaultConfig() Config {
	return Config{Lookup: FullChain}
}

// Checker holds the scope stack and the diagnostic reporter for one
// translation unit.
type Checker struct {
	cfg      Config
	reporter *diag.Reporter
	root     *symtab.Scope
	top      *symtab.Scope
	line     int
}

// New returns a Checker reporting to r. The root scope is opened by the
// first call to OpenScope.
func New(cfg Config, r *diag.Reporter) *Checker {
	return &Checker{cfg: cfg, reporter: r, line: 1}
}

// SetLine records the source line attached to subsequent diagnostics.
func (c *Checker) SetLine(line int) { c.line = line }

func (c *Checker) Line() int                { return c.line }
func (c *Checker) Reporter() *diag.Reporter { return c.reporter }
func (c *Checker) Root() *symtab.Scope      { return c.root }
func (c *Checker) Scope() *symtab.Scope     { return c.top }

func (c *Checker) report(kind diag.Kind, arg string) {
	c.reporter.Report(c.line, kind, arg)
}

//  Scopes

// OpenScope pushes a new scope. The first scope opened becomes the root.
func (c *Checker) OpenScope() *symtab.Scope {
	c.top = symtab.Open(c.top)
	if c.root == nil {
		c.root = c.top
	}
	return c.top
}

// CloseScope pops the current scope and returns it.
func (c *Checker) CloseScope() *symtab.Scope {
	if c.top == nil {
		panic("checker: CloseScope without an open scope")
	}
	old := c.top
	c.top = old.Close()
	return old
}

//  Declarations

// DeclareFunction binds name in the root scope. A redeclaration with an
// identical type is accepted and the existing symbol kept.
func (c *Checker) DeclareFunction(name string, typ types.Type) *symtab.Symbol {
	sym := c.root.Find(name)
	if sym == nil {
		return c.root.Insert(name, typ)
	}
	if !typ.Equal(sym.Type) {
		c.report(diag.ConflictingTypes, name)
	}
	return sym
}

func (c *Checker) DefineFunction(name string, typ types.Type) *symtab.Symbol {
	sym := c.DeclareFunction(name, typ)
	if sym.Defined {
		c.report(diag.Redefinition, name)
	}
	sym.Defined = true
	return sym
}

// DeclareVariable binds name in the current scope. Only a second
// declaration in the same scope is an error; shadowing is not.
func (c *Checker) DeclareVariable(name string, typ types.Type) *symtab.Symbol {
	sym := c.top.Find(name)
	switch {
	case sym == nil:
		return c.top.Insert(name, c.checkVoidObject(name, typ))
	case c.top != c.root:
		c.report(diag.Redeclaration, name)
	case !typ.Equal(sym.Type):
		c.report(diag.ConflictingTypes, name)
	}
	return sym
}

func (c *Checker) checkVoidObject(name string, typ types.Type) types.Type {
	if typ.Specifier() != types.Void || typ.IsFunction() || typ.Indirection() > 0 {
		return typ
	}
	c.report(diag.VoidObject, name)
	return types.Error
}

func (c *Checker) lookup(name string) *symtab.Symbol {
	if c.cfg.Lookup == EnclosingOnly {
		return c.top.LookupEnclosing(name)
	}
	return c.top.Lookup(name)
}

// CheckIdentifier resolves a use of name. An undeclared name is reported
// once and then bound to the error type in the current scope.
func (c *Checker) CheckIdentifier(name string) *symtab.Symbol {
	sym := c.lookup(name)
	if sym == nil {
		c.report(diag.Undeclared, name)
		sym = c.top.Insert(name, types.Error)
	}
	return sym
}

// CheckFunction resolves the callee of a call. An unknown name is implicitly
// declared as "int name()".
func (c *Checker) CheckFunction(name string) *symtab.Symbol {
	sym := c.lookup(name)
	if sym == nil {
		sym = c.DeclareFunction(name, types.NewImplicitFunction(types.Int, 0))
	}
	return sym
}

// Globals returns the root scope's variables in declaration order.
func (c *Checker) Globals() []*symtab.Symbol {
	if c.root == nil {
		return nil
	}
	var out []*symtab.Symbol
	for _, sym := range c.root.Symbols() {
		if !sym.Type.IsFunction() {
			out = append(out, sym)
		}
	}
	return out
}

//  Expressions

func (c *Checker) invalidOperands(op string) types.Type {
	c.report(diag.InvalidOperands, op)
	return types.Error
}

func (c *Checker) invalidOperand(op string) types.Type {
	c.report(diag.InvalidOperand, op)
	return types.Error
}

// CheckLogical checks && and ||.
func (c *Checker) CheckLogical(left, right types.Type, op string) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	if left.IsPredicate() && right.IsPredicate() {
		return types.Integer
	}
	return c.invalidOperands(op)
}

// CheckEquality checks == and !=.
func (c *Checker) CheckEquality(left, right types.Type, op string) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	if left.IsCompatibleWith(right) {
		return types.Integer
	}
	return c.invalidOperands(op)
}

// CheckRelational checks < > <= >=.
func (c *Checker) CheckRelational(left, right types.Type, op string) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	if left.IsPredicate() && right.IsPredicate() && left.Promote().Equal(right.Promote()) {
		return types.Integer
	}
	return c.invalidOperands(op)
}

func isInteger(t types.Type) bool { return t.Promote().Equal(types.Integer) }

// isArithmeticPointer reports whether t promotes to a pointer that can be
// offset, which excludes void pointers.
func isArithmeticPointer(t types.Type) bool {
	p := t.Promote()
	return p.IsPointer() && !p.IsVoidPointer()
}

func (c *Checker) CheckAdditive(left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	switch {
	case isInteger(left) && isInteger(right):
		return types.Integer
	case isInteger(left) && isArithmeticPointer(right):
		return right.Promote()
	case isArithmeticPointer(left) && isInteger(right):
		return left.Promote()
	}
	return c.invalidOperands("+")
}

func (c *Checker) CheckSubtractive(left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	switch {
	case isInteger(left) && isInteger(right):
		return types.Integer
	case isArithmeticPointer(left) && isInteger(right):
		return left.Promote()
	case isArithmeticPointer(left) && left.Promote().Equal(right.Promote()):
		return types.Integer
	}
	return c.invalidOperands("-")
}

// CheckMultiplicative checks * / %.
func (c *Checker) CheckMultiplicative(left, right types.Type, op string) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	if isInteger(left) && isInteger(right) {
		return types.Integer
	}
	return c.invalidOperands(op)
}

func (c *Checker) CheckNot(operand types.Type) types.Type {
	if operand.IsError() {
		return types.Error
	}
	if operand.IsPredicate() {
		return types.Integer
	}
	return c.invalidOperand("!")
}

// CheckNegate accepts int operands only; pointers cannot be negated.
func (c *Checker) CheckNegate(operand types.Type) types.Type {
	if operand.IsError() {
		return types.Error
	}
	if operand.Equal(types.Integer) {
		return types.Integer
	}
	return c.invalidOperand("-")
}

// CheckDereference returns the element type. The result is an lvalue.
func (c *Checker) CheckDereference(operand types.Type) types.Type {
	if operand.IsError() {
		return types.Error
	}
	if isArithmeticPointer(operand) {
		return operand.Dereference()
	}
	return c.invalidOperand("*")
}

// CheckAddress requires an lvalue operand. The result is not an lvalue.
func (c *Checker) CheckAddress(operand types.Type, lvalue bool) types.Type {
	if operand.IsError() {
		return types.Error
	}
	if lvalue {
		return operand.AddressOf()
	}
	c.report(diag.LvalueRequired, "")
	return types.Error
}

func (c *Checker) CheckSizeof(operand types.Type) types.Type {
	if operand.IsError() {
		return types.Error
	}
	if operand.IsPredicate() {
		return types.Integer
	}
	return c.invalidOperand("sizeof")
}

// CheckIndex checks left[right] and returns the element type. The result is
// an lvalue.
func (c *Checker) CheckIndex(left, right types.Type) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	if isArithmeticPointer(left) && isInteger(right) {
		return left.Dereference()
	}
	return c.invalidOperands("[]")
}

// CheckCall checks a call to a value of type fn with the given argument
// types and returns the call's result type.
func (c *Checker) CheckCall(fn types.Type, args []types.Type) types.Type {
	if fn.IsError() {
		return types.Error
	}
	if !fn.IsFunction() {
		c.report(diag.NotAFunction, "")
		return types.Error
	}

	for _, arg := range args {
		if arg.IsError() {
			return types.Error
		}
	}
	for _, arg := range args {
		if !arg.IsPredicate() {
			c.report(diag.InvalidArguments, "")
			return types.Error
		}
	}

	params, known := fn.Parameters()
	if !known {
		return fn.Result()
	}
	if len(params) != len(args) {
		c.report(diag.InvalidArguments, "")
		return types.Error
	}
	for i := range params {
		if !params[i].IsCompatibleWith(args[i]) {
			c.report(diag.InvalidArguments, "")
			return types.Error
		}
	}
	return fn.Result()
}

// CheckAssignment checks left = right and returns the left type.
func (c *Checker) CheckAssignment(left, right types.Type, lvalue bool) types.Type {
	if left.IsError() || right.IsError() {
		return types.Error
	}
	if !lvalue {
		c.report(diag.LvalueRequired, "")
		return types.Error
	}
	if left.IsCompatibleWith(right) {
		return left
	}
	return c.invalidOperands("=")
}

// CheckReturn checks a return of expr from a function of type fn.
func (c *Checker) CheckReturn(expr, fn types.Type) types.Type {
	if expr.IsError() || fn.IsError() {
		return types.Error
	}
	if expr.IsCompatibleWith(fn.Result()) {
		return expr
	}
	c.report(diag.InvalidReturn, "")
	return types.Error
}

// CheckTest checks the condition of an if, while or for.
func (c *Checker) CheckTest(expr types.Type) types.Type {
	if expr.IsError() {
		return types.Error
	}
	if expr.IsPredicate() {
		return expr
	}
	c.report(diag.InvalidTestExpression, "")
	return types.Error
}
