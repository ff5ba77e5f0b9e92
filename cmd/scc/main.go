// Command scc compiles a Simple C translation unit to 32-bit x86 assembly.
//
//	scc [-o out.s] [-aligned] [-align N] [-prefix _] [-lookup full|enclosing] [-verify] [-dump] [file.c]
//
// Without a file the source is read from stdin and the assembly written to
// stdout. With a file the assembly goes next to it with a .s extension
// unless -o says otherwise; "-o -" selects stdout. The -dump output and all
// diagnostics go to stderr.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"simplecc/pkg/ast"
	"simplecc/pkg/checker"
	"simplecc/pkg/codegen"
	"simplecc/pkg/compiler"
	"simplecc/pkg/diag"
	"simplecc/pkg/utils"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("scc: ")
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, log.Default()))
}

func parseLookup(s string) (checker.LookupMode, error) {
	switch s {
	case "full":
		return checker.FullChain, nil
	case "enclosing":
		return checker.EnclosingOnly, nil
	}
	return 0, fmt.Errorf("unknown lookup mode %q (want full or enclosing)", s)
}

// run is main without the process exit. It returns 0 on success, 1 when the
// source does not compile and 2 on a usage error.
func run(args []string, stdin io.Reader, stdout io.Writer, logger *log.Logger) int {
	stderr := logger.Writer()

	fs := flag.NewFlagSet("scc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outPath := fs.String("o", "", "output assembly file path (default: input with .s extension, or stdout)")
	aligned := fs.Bool("aligned", false, "keep the stack aligned at calls instead of pushing arguments")
	align := fs.Int("align", 0, "frame alignment in bytes (default 4, or 16 with -aligned)")
	prefix := fs.String("prefix", "", "prefix for global symbol names, e.g. _")
	lookup := fs.String("lookup", "full", "identifier lookup: full or enclosing")
	verify := fs.Bool("verify", false, "check the generated listing before writing it")
	dump := fs.Bool("dump", false, "print the checked tree and the global scope")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	mode, err := parseLookup(*lookup)
	if err != nil {
		logger.Print(err)
		return 2
	}
	if fs.NArg() > 1 {
		logger.Print("at most one input file")
		fs.Usage()
		return 2
	}

	inPath := ""
	var src []byte
	if fs.NArg() == 1 {
		fullPath, _, err := utils.GetPathInfo(fs.Arg(0))
		if err != nil {
			logger.Printf("failed to resolve %q: %v", fs.Arg(0), err)
			return 1
		}
		inPath = fullPath
		src, err = os.ReadFile(inPath)
		if err != nil {
			logger.Printf("failed to read input file %q: %v", fs.Arg(0), err)
			return 1
		}
	} else {
		src, err = io.ReadAll(stdin)
		if err != nil {
			logger.Printf("failed to read stdin: %v", err)
			return 1
		}
	}

	opts := compiler.DefaultOptions()
	opts.Checker.Lookup = mode
	opts.Codegen.StackAlignment = *align
	opts.Codegen.GlobalPrefix = *prefix
	if *aligned {
		opts.Codegen.Convention = codegen.Aligned
	}
	opts.Diagnostics = stderr
	opts.Verify = *verify

	res, err := compiler.Compile(string(src), opts)
	if *dump && res.Program != nil {
		ast.Dump(stderr, res.Program)
		fmt.Fprint(stderr, res.Scope)
	}

	var se *diag.SyntaxError
	switch {
	case errors.As(err, &se):
		fmt.Fprintln(stderr, se)
		return 1
	case err != nil:
		logger.Print(err)
		return 1
	}

	dest := *outPath
	if dest == "" {
		dest = "-"
		if inPath != "" {
			dest = utils.OutputPath(inPath, ".s")
		}
	}
	if dest == "-" {
		fmt.Fprint(stdout, res.Assembly)
		return 0
	}
	if err := utils.WriteFile(dest, inPath, []byte(res.Assembly)); err != nil {
		logger.Printf("failed to write %q: %v", dest, err)
		return 1
	}
	if res.Listing != nil {
		logger.Printf("%d functions, %d instructions -> %s", len(res.Frames), res.Listing.Instructions, dest)
	}
	return 0
}
