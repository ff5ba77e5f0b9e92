package ast

import (
	"bytes"
	"strings"
	"testing"

	"simplecc/pkg/symtab"
	"simplecc/pkg/types"
)

func TestExprString(t *testing.T) {
	root := symtab.Open(nil)
	x := root.Insert("x", types.Integer)
	f := root.Insert("f", types.NewImplicitFunction(types.Int, 0))

	id := &Identifier{Annotation: Annotation{Typ: types.Integer, IsLvalue: true}, Symbol: x}
	one := &Number{Annotation: Annotation{Typ: types.Integer}, Value: 1}

	tests := []struct {
		expr Expr
		want string
	}{
		{one, "1"},
		{id, "x"},
		{&Binary{Op: Add, Left: id, Right: one}, "(x + 1)"},
		{&Logical{Op: LogicalOr, Left: id, Right: one}, "(x || 1)"},
		{&Unary{Op: Address, Operand: id}, "(&x)"},
		{&Unary{Op: Sizeof, Operand: id}, "(sizeof x)"},
		{&Call{Symbol: f, Args: []Expr{id, one}}, "f(x, 1)"},
		{&String{Lexeme: `"hi\n"`}, `"hi\n"`},
	}

	for _, tt := range tests {
		if got := tt.expr.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAnnotation(t *testing.T) {
	deref := &Unary{
		Annotation: Annotation{Typ: types.NewScalar(types.Char, 0), IsLvalue: true},
		Op:         Dereference,
	}
	if !deref.Lvalue() {
		t.Error("dereference should be an lvalue")
	}
	if !deref.Type().Equal(types.NewScalar(types.Char, 0)) {
		t.Errorf("unexpected type %s", deref.Type())
	}
}

func TestDump(t *testing.T) {
	root := symtab.Open(nil)
	g := root.Insert("g", types.NewArray(types.Int, 0, 4))
	fsym := root.Insert("main", types.NewFunction(types.Int, 0, nil))
	body := symtab.Open(root)
	x := body.Insert("x", types.Integer)
	body.Close()

	xref := &Identifier{Annotation: Annotation{Typ: types.Integer, IsLvalue: true}, Symbol: x}
	prog := &Program{
		Globals: []*symtab.Symbol{g},
		Functions: []*Function{{
			Symbol: fsym,
			Body: &Block{Scope: body, Stmts: []Stmt{
				&Assignment{Left: xref, Right: &Number{Annotation: Annotation{Typ: types.Integer}, Value: 3}},
				&Return{Expr: xref},
			}},
		}},
	}

	var buf bytes.Buffer
	Dump(&buf, prog)
	out := buf.String()

	for _, want := range []string{
		"global g: int[4]",
		"function main: int(void)",
		"decl x: int",
		"assign",
		"x: int L",
		"3: int",
		"return",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
