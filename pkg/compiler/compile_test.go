package compiler

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"simplecc/pkg/codegen"
	"simplecc/pkg/diag"
)

func TestCompileSuccess(t *testing.T) {
	src := `
int counter;
char *greeting;

int add(int a, int b) {
	return a + b;
}

int main(void) {
	int i;
	greeting = "hello";
	for (i = 0; i < 3; i = i + 1) {
		counter = add(counter, i);
	}
	return counter;
}
`
	opts := DefaultOptions()
	opts.Verify = true
	res, err := Compile(src, opts)
	be.Err(t, err, nil)
	be.Equal(t, len(res.Diagnostics), 0)

	assertContains(t, res.Assembly, "add:\n")
	assertContains(t, res.Assembly, "main:\n")
	assertContains(t, res.Assembly, "\tcall\tadd\n")
	assertContains(t, res.Assembly, "\t.comm\tcounter, 4, 4\n")
	assertContains(t, res.Assembly, "\t.comm\tgreeting, 4, 4\n")
	assertContains(t, res.Assembly, "\t.asciz\t\"hello\"\n")

	be.Equal(t, len(res.Frames), 2)
	be.Equal(t, res.Frames[0].Name, "add")
	be.Equal(t, res.Frames[1].Name, "main")

	be.True(t, res.Listing != nil)
	be.Equal(t, res.Listing.Globals, []string{"add", "main"})
	be.Equal(t, res.Listing.Sizes["main.size"], res.Frames[1].Size)
	be.Equal(t, res.Listing.Comms["counter"].Size, 4)

	be.True(t, res.Scope != nil)
	be.True(t, res.Scope.Find("add") != nil)
}

func TestCompileSemanticErrors(t *testing.T) {
	src := "int main(void) {\n  int *p;\n  return p * 2 + y;\n}\n"

	var stderr bytes.Buffer
	opts := DefaultOptions()
	opts.Diagnostics = &stderr
	res, err := Compile(src, opts)

	be.True(t, errors.Is(err, ErrSemantic))
	be.Equal(t, err.Error(), "semantic errors: 2 error(s)")
	be.Equal(t, res.Assembly, "")
	be.True(t, res.Program != nil)

	be.Equal(t, len(res.Diagnostics), 2)
	be.Equal(t, res.Diagnostics[0].Kind, diag.InvalidOperands)
	be.Equal(t, res.Diagnostics[1].Kind, diag.Undeclared)

	out := stderr.String()
	assertContains(t, out, "line 3: invalid operands to binary *\n")
	assertContains(t, out, "line 3: 'y' undeclared\n")
}

func TestCompileSyntaxError(t *testing.T) {
	var stderr bytes.Buffer
	opts := DefaultOptions()
	opts.Diagnostics = &stderr

	res, err := Compile("int main(void) {\n  return 1\n}\n", opts)
	var se *diag.SyntaxError
	be.True(t, errors.As(err, &se))
	be.Equal(t, se.Line, 3)
	be.Equal(t, err.Error(), "line 3: syntax error at '}'")
	be.True(t, res.Program == nil)
	be.Equal(t, stderr.Len(), 0)
}

func TestCompileMalformedStringStopsGeneration(t *testing.T) {
	_, err := Compile("int main(void) { char *s; s = \"abc\n; return 0; }", DefaultOptions())
	be.True(t, errors.Is(err, ErrSemantic))
}

func TestCompileAlignedConvention(t *testing.T) {
	src := `
int f(int a, int b, int c);
int main(void) {
	return f(1, 2, 3);
}
`
	opts := DefaultOptions()
	opts.Codegen.Convention = codegen.Aligned
	opts.Verify = true
	res, err := Compile(src, opts)
	be.Err(t, err, nil)

	be.Equal(t, res.Frames[0].MaxArgs, 3)
	be.Equal(t, (res.Frames[0].Size+8)%16, 0)
	be.True(t, !strings.Contains(res.Assembly, "pushl\t$"))
	assertContains(t, res.Assembly, "\tmovl\t%eax, 8(%esp)\n")
	assertContains(t, res.Assembly, "\tmovl\t%eax, 0(%esp)\n")
}

func TestCompileGlobalPrefix(t *testing.T) {
	src := "int g; int main(void) { g = 2; return puts(\"x\"); }"
	opts := DefaultOptions()
	opts.Codegen.GlobalPrefix = "_"
	opts.Verify = true
	res, err := Compile(src, opts)
	be.Err(t, err, nil)

	assertContains(t, res.Assembly, "_main:\n")
	assertContains(t, res.Assembly, "\t.globl\t_main\n")
	assertContains(t, res.Assembly, "\tmovl\t%eax, _g\n")
	assertContains(t, res.Assembly, "\tcall\t_puts\n")
	assertContains(t, res.Assembly, "\t.comm\t_g, 4, 4\n")
	// Frame sizes keep the unprefixed name.
	assertContains(t, res.Assembly, "\t.set\tmain.size, ")
}

func TestCompileEmptyUnit(t *testing.T) {
	res, err := Compile("", DefaultOptions())
	be.Err(t, err, nil)
	be.Equal(t, res.Assembly, "")
	be.Equal(t, len(res.Frames), 0)
}
