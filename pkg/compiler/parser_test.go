package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"simplecc/pkg/ast"
	"simplecc/pkg/checker"
	"simplecc/pkg/diag"
)

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, s)
	}
}

// parse runs src through the front end and returns the tree together with
// the reporter that collected its diagnostics.
func parse(t *testing.T, src string, mode checker.LookupMode) (*ast.Program, *diag.Reporter, error) {
	t.Helper()
	r := diag.NewReporter(nil)
	c := checker.New(checker.Config{Lookup: mode}, r)
	prog, err := Parse(Lex(src, r), c)
	return prog, r, err
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantEOF bool
	}{
		{"Missing paren", "int main( { }", "line 1: syntax error at '{'", false},
		{"Missing semicolon at EOF", "int x", "line 1: syntax error at end of file", true},
		{"Initializer not supported", "int x = 1;", "line 1: syntax error at '='", false},
		{"Number overflow", "int a[2147483648];", "line 1: syntax error at '2147483648'", false},
		{"Most negative literal", "int f(void) { return -2147483648; }", "line 1: syntax error at '2147483648'", false},
		{"Zero-length global array", "int a[0];", "line 1: syntax error at '0'", false},
		{"Zero-length array after comma", "int b, a[0];", "line 1: syntax error at '0'", false},
		{"Zero-length local array", "int main(void) {\n  int a[00];\n  return 0;\n}", "line 2: syntax error at '00'", false},
		{"Unclosed block", "int main(void) {\n  return 0;\n", "line 3: syntax error at end of file", true},
		{"Bad statement", "int main(void) {\n  return ;\n}", "line 2: syntax error at ';'", false},
		{"Lone bar", "int main(void) { return 1 | 2; }", "line 1: syntax error at '|'", false},
		{"Declaration after statement", "int main(void) { f(); int x; }", "line 1: syntax error at 'int'", false},
		{"Missing specifier", "main() {}", "line 1: syntax error at 'main'", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parse(t, tt.input, checker.FullChain)
			var se *diag.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *diag.SyntaxError, got %v", err)
			}
			be.Equal(t, se.Error(), tt.want)
			be.Equal(t, se.AtEOF, tt.wantEOF)
		})
	}
}

func TestParseDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []diag.Kind
		first string
	}{
		{
			name:  "Clean program",
			input: "int g; int main(void) { g = 1; return g; }",
			kinds: []diag.Kind{},
		},
		{
			name:  "Undeclared reported once",
			input: "int main(void) {\n  x = 1;\n  x = 2;\n  return 0;\n}",
			kinds: []diag.Kind{diag.Undeclared},
			first: "line 2: 'x' undeclared",
		},
		{
			name:  "Redeclared local",
			input: "int main(void) { int a; char a; return 0; }",
			kinds: []diag.Kind{diag.Redeclaration},
			first: "line 1: redeclaration of 'a'",
		},
		{
			name:  "Conflicting global",
			input: "int a;\nchar a;",
			kinds: []diag.Kind{diag.ConflictingTypes},
			first: "line 2: conflicting types for 'a'",
		},
		{
			name:  "Redefined function",
			input: "int f(void) { return 0; }\nint f(void) { return 1; }",
			kinds: []diag.Kind{diag.Redefinition},
			first: "line 2: redefinition of 'f'",
		},
		{
			name:  "Void object",
			input: "void v;",
			kinds: []diag.Kind{diag.VoidObject},
			first: "line 1: 'v' has type void",
		},
		{
			name:  "Return pointer from int function",
			input: "int f(void) { int *p; return p; }",
			kinds: []diag.Kind{diag.InvalidReturn},
			first: "line 1: invalid return type",
		},
		{
			name:  "Test expression",
			input: "int f(void) { int a[2]; void *p; if (p) return 1; return 0; }",
			kinds: []diag.Kind{},
		},
		{
			name:  "Binary operator named",
			input: "int f(void) { int *p; int *q; return p + q; }",
			kinds: []diag.Kind{diag.InvalidOperands},
			first: "line 1: invalid operands to binary +",
		},
		{
			name:  "Unary operator named",
			input: "int f(void) { int *p; return -p; }",
			kinds: []diag.Kind{diag.InvalidOperand},
			first: "line 1: invalid operand to unary -",
		},
		{
			name:  "Lvalue required",
			input: "int f(void) { int a[4]; a = 0; return &3; }",
			kinds: []diag.Kind{diag.LvalueRequired, diag.LvalueRequired},
			first: "line 1: lvalue required in expression",
		},
		{
			name:  "Not a function",
			input: "int x; int f(void) { return x(); }",
			kinds: []diag.Kind{diag.NotAFunction},
			first: "line 1: called object is not a function",
		},
		{
			name:  "Argument count",
			input: "int g(int a); int f(void) { return g(1, 2); }",
			kinds: []diag.Kind{diag.InvalidArguments},
			first: "line 1: invalid arguments to called function",
		},
		{
			name:  "Implicit declaration accepts any arguments",
			input: "int f(void) { return printf(\"%d\\n\", 3); }",
			kinds: []diag.Kind{},
		},
		{
			name:  "Error absorbed",
			input: "int f(void) { return -(y + 1) * 2; }",
			kinds: []diag.Kind{diag.Undeclared},
		},
		{
			name:  "Malformed string",
			input: "int f(void) { char *s; s = \"abc\n; return 0; }",
			kinds: []diag.Kind{diag.MalformedString},
			first: "line 1: malformed string literal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r, err := parse(t, tt.input, checker.FullChain)
			be.Err(t, err, nil)
			got := r.Kinds()
			if len(got) != len(tt.kinds) {
				t.Fatalf("kinds = %v, want %v", got, tt.kinds)
			}
			for i := range got {
				be.Equal(t, got[i], tt.kinds[i])
			}
			if tt.first != "" {
				be.Equal(t, r.Diagnostics()[0].String(), tt.first)
			}
		})
	}
}

func TestParseLookupModes(t *testing.T) {
	src := "int main(void) { int x; x = 1; return x; }"

	_, r, err := parse(t, src, checker.FullChain)
	be.Err(t, err, nil)
	be.Equal(t, r.Count(), 0)

	// Only the enclosing scopes are searched, so a local declared in the
	// current block is not visible to its own statements. The placeholder
	// lands in the current scope too, so each use is reported.
	_, r, err = parse(t, src, checker.EnclosingOnly)
	be.Err(t, err, nil)
	be.Equal(t, r.Kinds(), []diag.Kind{diag.Undeclared, diag.Undeclared})

	nested := "int main(void) { int x; { x = 1; } return 0; }"
	_, r, err = parse(t, nested, checker.EnclosingOnly)
	be.Err(t, err, nil)
	be.Equal(t, r.Count(), 0)
}

func TestParseAnnotations(t *testing.T) {
	src := `
int g[10];
int main(void) {
	int *p;
	char c;
	p = g;
	g[2] = 3;
	c = *"hi";
	return *p + sizeof c;
}`
	prog, r, err := parse(t, src, checker.FullChain)
	be.Err(t, err, nil)
	be.Equal(t, r.Count(), 0)

	be.Equal(t, len(prog.Globals), 1)
	be.Equal(t, prog.Globals[0].Name, "g")
	be.Equal(t, prog.Globals[0].Type.String(), "int[10]")

	be.Equal(t, len(prog.Functions), 1)
	fn := prog.Functions[0]
	be.Equal(t, fn.Name(), "main")
	be.Equal(t, len(fn.Params), 0)
	be.Equal(t, len(fn.Body.Stmts), 4)

	// p = g: the array is an rvalue of array type, p is a scalar lvalue.
	a := fn.Body.Stmts[0].(*ast.Assignment)
	be.True(t, a.Left.Lvalue())
	be.True(t, !a.Right.Lvalue())
	be.Equal(t, a.Right.Type().String(), "int[10]")

	// g[2] is *(g + 2), an lvalue of the element type.
	idx := fn.Body.Stmts[1].(*ast.Assignment).Left.(*ast.Unary)
	be.Equal(t, idx.Op, ast.Dereference)
	be.True(t, idx.Lvalue())
	be.Equal(t, idx.Type().String(), "int")
	sum := idx.Operand.(*ast.Binary)
	be.Equal(t, sum.Op, ast.Add)
	be.Equal(t, sum.Type().String(), "int *")

	str := fn.Body.Stmts[2].(*ast.Assignment).Right.(*ast.Unary).Operand.(*ast.String)
	be.Equal(t, str.Type().String(), "char[3]")

	ret := fn.Body.Stmts[3].(*ast.Return)
	be.Equal(t, ret.Expr.String(), "((*p) + (sizeof c))")
	be.Equal(t, ret.Expr.Type().String(), "int")
}

func TestParseParameterLists(t *testing.T) {
	r := diag.NewReporter(nil)
	c := checker.New(checker.DefaultConfig(), r)
	_, err := Parse(Lex("int f(); int g(void); char *h(int a, char *b);", r), c)
	be.Err(t, err, nil)
	be.Equal(t, r.Count(), 0)

	root := c.Root()
	be.True(t, !root.Find("f").Type.HasKnownParameters())
	be.True(t, root.Find("g").Type.HasKnownParameters())
	be.Equal(t, root.Find("g").Type.String(), "int(void)")
	be.Equal(t, root.Find("h").Type.String(), "char *(int, char *)")
}

func TestParseFunctionScopes(t *testing.T) {
	src := "int f(int a, char b) { int x; { int y; } return a; }"
	prog, r, err := parse(t, src, checker.FullChain)
	be.Err(t, err, nil)
	be.Equal(t, r.Count(), 0)

	fn := prog.Functions[0]
	be.Equal(t, len(fn.Params), 2)
	be.Equal(t, fn.Params[0].Name, "a")
	be.Equal(t, fn.Params[1].Name, "b")

	// Parameters and body declarations share a scope.
	syms := fn.Body.Scope.Symbols()
	be.Equal(t, len(syms), 3)
	be.Equal(t, syms[2].Name, "x")

	inner := fn.Body.Stmts[0].(*ast.Block)
	be.Equal(t, inner.Scope.Symbols()[0].Name, "y")
	be.True(t, fn.Symbol.Defined)
}

func TestStringLength(t *testing.T) {
	tests := []struct {
		lexeme string
		want   int
	}{
		{`""`, 0},
		{`"abc"`, 3},
		{`"a\nb"`, 3},
		{`"\\\""`, 2},
	}
	for _, tt := range tests {
		be.Equal(t, stringLength(tt.lexeme), tt.want)
	}
}

func TestDumpOfParsedProgram(t *testing.T) {
	prog, _, err := parse(t, "int g; int main(void) { int x; x = g; return x; }", checker.FullChain)
	be.Err(t, err, nil)

	var sb strings.Builder
	ast.Dump(&sb, prog)
	out := sb.String()
	assertContains(t, out, "global g: int")
	assertContains(t, out, "function main: int(void)")
	assertContains(t, out, "decl x: int")
	assertContains(t, out, "x: int L")
}
