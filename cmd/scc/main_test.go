package main

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, s)
	}
}

const program = `
int total;

int square(int n) {
	return n * n;
}

int main(void) {
	int i;
	for (i = 0; i < 4; i = i + 1)
		total = total + square(i);
	return total;
}
`

func runWith(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	logger := log.New(&errOut, "scc: ", 0)
	code = run(args, strings.NewReader(stdin), &out, logger)
	return code, out.String(), errOut.String()
}

func TestRunStdinToStdout(t *testing.T) {
	code, out, errOut := runWith(t, program)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	assertContains(t, out, "square:\n")
	assertContains(t, out, "main:\n")
	assertContains(t, out, "\tcall\tsquare\n")
	assertContains(t, out, "\t.comm\ttotal, 4, 4\n")
	if errOut != "" {
		t.Errorf("unexpected stderr: %s", errOut)
	}
}

func TestRunFileToDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	if err := os.WriteFile(src, []byte(program), 0o644); err != nil {
		t.Fatal(err)
	}

	code, out, errOut := runWith(t, "", "-verify", src)
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "prog.s"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	assertContains(t, string(data), "\t.set\tmain.size, ")
	assertContains(t, errOut, "scc: 2 functions, ")
}

func TestRunExplicitOutput(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.asm")

	code, _, errOut := runWith(t, program, "-o", dest, "-aligned", "-prefix", "_")
	if code != 0 {
		t.Fatalf("exit %d, stderr:\n%s", code, errOut)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, string(data), "_main:\n")
	assertContains(t, string(data), "\tmovl\t%eax, 0(%esp)\n")
}

func TestRunDiagnostics(t *testing.T) {
	src := "int main(void) {\n  x = 1;\n  return x;\n}\n"
	code, out, errOut := runWith(t, src)
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if out != "" {
		t.Errorf("expected no assembly, got %q", out)
	}
	assertContains(t, errOut, "line 2: 'x' undeclared\n")
	assertContains(t, errOut, "scc: semantic errors: 1 error(s)\n")
}

func TestRunSyntaxError(t *testing.T) {
	code, _, errOut := runWith(t, "int main(void) { return 1 }")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if errOut != "line 1: syntax error at '}'\n" {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestRunLookupFlag(t *testing.T) {
	src := "int main(void) { int x; x = 1; return 0; }"
	if code, _, errOut := runWith(t, src, "-lookup", "full"); code != 0 {
		t.Fatalf("full: exit %d, stderr:\n%s", code, errOut)
	}
	code, _, errOut := runWith(t, src, "-lookup", "enclosing")
	if code != 1 {
		t.Fatalf("enclosing: exit %d, want 1", code)
	}
	assertContains(t, errOut, "'x' undeclared")

	code, _, errOut = runWith(t, src, "-lookup", "nearest")
	if code != 2 {
		t.Fatalf("exit %d, want 2", code)
	}
	assertContains(t, errOut, `unknown lookup mode "nearest"`)
}

func TestRunDump(t *testing.T) {
	code, out, errOut := runWith(t, program, "-dump", "-o", "-")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	assertContains(t, errOut, "global total: int\n")
	assertContains(t, errOut, "function square: int(int)\n")
	assertContains(t, errOut, "Scope 0:\n")
	assertContains(t, errOut, "(defined)")

	// The assembly on stdout stays clean.
	assertContains(t, out, "main:\n")
	if strings.Contains(out, "Scope 0:") || strings.Contains(out, "function square") {
		t.Errorf("dump leaked into the assembly:\n%s", out)
	}
}

func TestRunUsageErrors(t *testing.T) {
	if code, _, _ := runWith(t, "", "a.c", "b.c"); code != 2 {
		t.Errorf("two inputs: exit %d, want 2", code)
	}
	if code, _, _ := runWith(t, "", "-nosuchflag"); code != 2 {
		t.Errorf("bad flag: exit %d, want 2", code)
	}
	code, _, errOut := runWith(t, "", filepath.Join(t.TempDir(), "missing.c"))
	if code != 1 {
		t.Errorf("missing file: exit %d, want 1", code)
	}
	assertContains(t, errOut, "failed to read input file")
}
