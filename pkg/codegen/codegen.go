// Package codegen translates a checked syntax tree into 32-bit x86 assembly
// in AT&T syntax.
//
// Every intermediate result is stored in a fresh stack temporary, so no
// register allocation is needed. A function's frame size is known only after
// its body has been generated; the body is therefore written to a buffer
// first and the prologue, body and epilogue are emitted afterwards.
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"modernc.org/mathutil"

	"simplecc/pkg/ast"
)

// ErrHasErrors is returned when generation is requested for a translation
// unit that produced diagnostics.
var ErrHasErrors = errors.New("codegen: translation unit has errors")

// Convention selects how arguments reach the callee.
type Convention int

const (
	// Unaligned pushes arguments right to left and pops them after the call.
	Unaligned Convention = iota
	// Aligned moves arguments into an area reserved at the bottom of the
	// frame, keeping the stack pointer aligned at every call.
	Aligned
)

func (c Convention) String() string {
	if c == Aligned {
		return "aligned"
	}
	return "unaligned"
}

type Config struct {
	Convention Convention
	// StackAlignment is the frame alignment in bytes. Zero selects 4 for
	// Unaligned and 16 for Aligned.
	StackAlignment int
	// GlobalPrefix is prepended to every global and function name.
	GlobalPrefix string
}

func DefaultConfig() Config {
	return Config{Convention: Unaligned}
}

func (c Config) alignment() int {
	if c.StackAlignment > 0 {
		return c.StackAlignment
	}
	if c.Convention == Aligned {
		return 16
	}
	return 4
}

// ErrorCounter reports how many diagnostics a front end produced.
type ErrorCounter interface {
	Count() int
}

// Generator holds the state that spans a whole translation unit: the label
// counter and the string pool.
type Generator struct {
	cfg      Config
	out      strings.Builder
	labels   int
	literals []pooled
	pool     map[string]string // lexeme -> label

	fn *frame
}

type pooled struct {
	label  string
	lexeme string
}

// frame is the per-function state, reset for every function.
type frame struct {
	body    strings.Builder
	temp    int
	maxArgs int
	exit    string
}

// Frame records the layout chosen for one function.
type Frame struct {
	Name    string
	Locals  int
	Size    int
	MaxArgs int
}

func New(cfg Config) *Generator {
	return &Generator{cfg: cfg, pool: make(map[string]string)}
}

// Generate emits the assembly for prog with a fresh Generator.
func Generate(prog *ast.Program, errs ErrorCounter, cfg Config) (string, error) {
	g := New(cfg)
	if _, err := g.Generate(prog, errs); err != nil {
		return "", err
	}
	return g.String(), nil
}

// Generate generates every function and then the globals segment, and
// returns the frame layouts in function order. It refuses to run when errs
// reports any diagnostics.
func (g *Generator) Generate(prog *ast.Program, errs ErrorCounter) ([]Frame, error) {
	if errs != nil && errs.Count() > 0 {
		return nil, fmt.Errorf("%w (%d)", ErrHasErrors, errs.Count())
	}
	frames := make([]Frame, 0, len(prog.Functions))
	for _, fn := range prog.Functions {
		f, err := g.Function(fn)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	g.globals(prog)
	return frames, nil
}

func (g *Generator) String() string { return g.out.String() }

func (g *Generator) newLabel() string {
	l := fmt.Sprintf(".L%d", g.labels)
	g.labels++
	return l
}

func (g *Generator) global(name string) string { return g.cfg.GlobalPrefix + name }

// emit writes one instruction into the current function body.
func (g *Generator) emit(op string, args ...string) {
	if len(args) == 0 {
		fmt.Fprintf(&g.fn.body, "\t%s\n", op)
		return
	}
	fmt.Fprintf(&g.fn.body, "\t%s\t%s\n", op, strings.Join(args, ", "))
}

func (g *Generator) label(l string) {
	fmt.Fprintf(&g.fn.body, "%s:\n", l)
}

// temp allocates a fresh 4-byte slot below every slot handed out so far.
func (g *Generator) temp() string {
	g.fn.temp -= 4
	return g.slot(g.fn.temp)
}

func (g *Generator) slot(offset int) string {
	return fmt.Sprintf("%d(%%ebp)", offset)
}

// Function generates fn and appends it to the output.
func (g *Generator) Function(fn *ast.Function) (Frame, error) {
	locals := Allocate(fn)
	g.fn = &frame{temp: locals, exit: g.newLabel()}
	defer func() { g.fn = nil }()

	g.stmt(fn.Body)

	offset := g.fn.temp
	if g.cfg.Convention == Aligned {
		offset -= g.fn.maxArgs * SizeofArg
	}
	align := g.cfg.alignment()
	for (offset-ParamOffset)%align != 0 {
		offset--
	}

	size, err := safecast.Conv[uint32](-offset)
	if err != nil {
		return Frame{}, fmt.Errorf("codegen: frame of %s: %w", fn.Name(), err)
	}

	name := fn.Name()
	fmt.Fprintf(&g.out, "%s:\n", g.global(name))
	fmt.Fprintf(&g.out, "\tpushl\t%%ebp\n")
	fmt.Fprintf(&g.out, "\tmovl\t%%esp, %%ebp\n")
	fmt.Fprintf(&g.out, "\tsubl\t$%s.size, %%esp\n", name)
	g.out.WriteString(g.fn.body.String())
	fmt.Fprintf(&g.out, "%s:\n", g.fn.exit)
	fmt.Fprintf(&g.out, "\tmovl\t%%ebp, %%esp\n")
	fmt.Fprintf(&g.out, "\tpopl\t%%ebp\n")
	fmt.Fprintf(&g.out, "\tret\n\n")
	fmt.Fprintf(&g.out, "\t.globl\t%s\n", g.global(name))
	fmt.Fprintf(&g.out, "\t.set\t%s.size, %d\n\n", name, size)

	return Frame{Name: name, Locals: -locals, Size: int(size), MaxArgs: g.fn.maxArgs}, nil
}

func (g *Generator) trackArgs(n int) {
	g.fn.maxArgs = mathutil.Max(g.fn.maxArgs, n)
}
