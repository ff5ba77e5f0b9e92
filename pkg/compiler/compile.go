package compiler

import (
	"errors"
	"fmt"
	"io"

	"simplecc/pkg/asm"
	"simplecc/pkg/ast"
	"simplecc/pkg/checker"
	"simplecc/pkg/codegen"
	"simplecc/pkg/diag"
	"simplecc/pkg/symtab"
)

// ErrSemantic is returned when the translation unit parsed but produced
// diagnostics.
var ErrSemantic = errors.New("semantic errors")

type Options struct {
	Checker checker.Config
	Codegen codegen.Config
	// Diagnostics receives each diagnostic as it is reported. Nil discards.
	Diagnostics io.Writer
	// Verify runs the listing checker over the generated assembly.
	Verify bool
}

func DefaultOptions() Options {
	return Options{Checker: checker.DefaultConfig(), Codegen: codegen.DefaultConfig()}
}

type Result struct {
	Assembly    string
	Program     *ast.Program
	Scope       *symtab.Scope // root scope, for dumps
	Frames      []codegen.Frame
	Listing     *asm.Listing // set when Options.Verify is true
	Diagnostics []diag.Diagnostic
}

// Compile lexes, parses, checks and generates src. A syntax error is
// returned as a *diag.SyntaxError; semantic diagnostics yield ErrSemantic
// with the tree still available in the result.
func Compile(src string, opts Options) (Result, error) {
	reporter := diag.NewReporter(opts.Diagnostics)

	tokens := Lex(src, reporter)

	c := checker.New(opts.Checker, reporter)
	prog, err := Parse(tokens, c)
	if err != nil {
		return Result{Diagnostics: reporter.Diagnostics()}, err
	}

	res := Result{Program: prog, Scope: c.Root(), Diagnostics: reporter.Diagnostics()}

	g := codegen.New(opts.Codegen)
	frames, err := g.Generate(prog, reporter)
	if errors.Is(err, codegen.ErrHasErrors) {
		return res, fmt.Errorf("%w: %d error(s)", ErrSemantic, reporter.Count())
	}
	if err != nil {
		return res, fmt.Errorf("codegen error: %w", err)
	}
	res.Frames = frames
	res.Assembly = g.String()

	if opts.Verify {
		listing, err := asm.Check(res.Assembly)
		if err != nil {
			return res, fmt.Errorf("listing check: %w", err)
		}
		res.Listing = listing
	}
	return res, nil
}
