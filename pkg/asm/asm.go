// Package asm checks the assembly listings produced by the code generator.
// It is not an assembler: it parses the AT&T-syntax text in two passes,
// collecting labels and symbol bindings first and then resolving every
// reference, and reports the first inconsistency it finds.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// arity is the operand count of each instruction the generator emits.
var arity = map[string]int{
	"movl":   2,
	"movb":   2,
	"movsbl": 2,
	"movzbl": 2,
	"leal":   2,
	"addl":   2,
	"subl":   2,
	"imull":  2,
	"cmpl":   2,
	"idivl":  1,
	"negl":   1,
	"pushl":  1,
	"popl":   1,
	"call":   1,
	"jmp":    1,
	"je":     1,
	"jne":    1,
	"sete":   1,
	"setne":  1,
	"setl":   1,
	"setg":   1,
	"setle":  1,
	"setge":  1,
	"cltd":   0,
	"ret":    0,
}

var directiveArity = map[string]int{
	".data":  0,
	".text":  0,
	".globl": 1,
	".set":   2,
	".comm":  3,
	".asciz": 1,
}

// Comm is one .comm declaration.
type Comm struct {
	Size  int
	Align int
}

// Listing is what Check learned about a well-formed listing.
type Listing struct {
	Labels       map[string]int    // label -> 1-based line
	Sizes        map[string]int    // symbol bound by .set -> value
	Globals      []string          // names exported by .globl, in order
	Comms        map[string]Comm   // names declared by .comm
	Strings      map[string]string // label -> .asciz operand, quotes kept
	Instructions int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
}

// Checker runs the two passes over one listing.
type Checker struct {
	listing *Listing
}

func NewChecker() *Checker {
	return &Checker{listing: &Listing{
		Labels:  make(map[string]int),
		Sizes:   make(map[string]int),
		Comms:   make(map[string]Comm),
		Strings: make(map[string]string),
	}}
}

// Check verifies code and returns its listing summary.
func Check(code string) (*Listing, error) {
	return NewChecker().Check(code)
}

func (c *Checker) Check(code string) (*Listing, error) {
	lines := strings.Split(code, "\n")

	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}

	if err := c.pass1(parsed); err != nil {
		return nil, err
	}
	if err := c.pass2(parsed); err != nil {
		return nil, err
	}
	return c.listing, nil
}

// pass1 records label definitions and .set bindings.
func (c *Checker) pass1(lines []parsedLine) error {
	l := c.listing
	for _, p := range lines {
		for _, lbl := range p.labels {
			if prev, exists := l.Labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d (first defined on line %d)", lbl, p.lineNo, prev)
			}
			l.Labels[lbl] = p.lineNo
		}

		if p.mnemonic == "" {
			continue
		}

		if strings.HasPrefix(p.mnemonic, ".") {
			if err := c.directive(p); err != nil {
				return err
			}
			continue
		}

		n, ok := arity[p.mnemonic]
		if !ok {
			return fmt.Errorf("unknown instruction on line %d: %s", p.lineNo, p.mnemonic)
		}
		if len(p.operands) != n {
			return fmt.Errorf("%s expects %d operand(s) on line %d", p.mnemonic, n, p.lineNo)
		}
		l.Instructions++
	}
	return nil
}

func (c *Checker) directive(p parsedLine) error {
	n, ok := directiveArity[p.mnemonic]
	if !ok {
		return fmt.Errorf("unknown directive on line %d: %s", p.lineNo, p.mnemonic)
	}
	if len(p.operands) != n {
		return fmt.Errorf("%s expects %d operand(s) on line %d", p.mnemonic, n, p.lineNo)
	}

	l := c.listing
	switch p.mnemonic {
	case ".set":
		v, err := strconv.Atoi(p.operands[1])
		if err != nil {
			return fmt.Errorf("invalid .set value on line %d: %s", p.lineNo, p.operands[1])
		}
		if _, exists := l.Sizes[p.operands[0]]; exists {
			return fmt.Errorf("symbol '%s' set twice on line %d", p.operands[0], p.lineNo)
		}
		l.Sizes[p.operands[0]] = v

	case ".comm":
		size, err1 := strconv.Atoi(p.operands[1])
		align, err2 := strconv.Atoi(p.operands[2])
		if err1 != nil || err2 != nil || size <= 0 || align <= 0 {
			return fmt.Errorf("invalid .comm on line %d", p.lineNo)
		}
		if _, exists := l.Comms[p.operands[0]]; exists {
			return fmt.Errorf("duplicate .comm '%s' on line %d", p.operands[0], p.lineNo)
		}
		l.Comms[p.operands[0]] = Comm{Size: size, Align: align}

	case ".asciz":
		if len(p.labels) == 0 {
			return fmt.Errorf("unlabelled string on line %d", p.lineNo)
		}
		for _, lbl := range p.labels {
			l.Strings[lbl] = p.operands[0]
		}
	}
	return nil
}

// pass2 resolves jump targets, frame-size references and exported names.
func (c *Checker) pass2(lines []parsedLine) error {
	l := c.listing
	for _, p := range lines {
		switch {
		case p.mnemonic == "jmp" || p.mnemonic == "je" || p.mnemonic == "jne":
			if _, ok := l.Labels[p.operands[0]]; !ok {
				return fmt.Errorf("undefined label '%s' on line %d", p.operands[0], p.lineNo)
			}

		case p.mnemonic == ".globl":
			name := p.operands[0]
			if _, ok := l.Labels[name]; !ok {
				return fmt.Errorf(".globl of undefined label '%s' on line %d", name, p.lineNo)
			}
			l.Globals = append(l.Globals, name)

		case p.mnemonic != "" && !strings.HasPrefix(p.mnemonic, "."):
			for _, op := range p.operands {
				if err := c.checkOperand(op, p.lineNo); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// checkOperand verifies that immediate symbol references such as
// "$main.size" or "$.L3" are bound.
func (c *Checker) checkOperand(op string, lineNo int) error {
	if !strings.HasPrefix(op, "$") {
		return nil
	}
	sym := op[1:]
	if _, err := strconv.Atoi(sym); err == nil {
		return nil
	}
	if strings.HasSuffix(sym, ".size") {
		if _, ok := c.listing.Sizes[sym]; !ok {
			return fmt.Errorf("unbound frame size '%s' on line %d", sym, lineNo)
		}
		return nil
	}
	if strings.HasPrefix(sym, ".L") {
		if _, ok := c.listing.Labels[sym]; !ok {
			return fmt.Errorf("undefined label '%s' on line %d", sym, lineNo)
		}
	}
	return nil
}

// parseLine splits one line into labels, a mnemonic and operands. An
// .asciz operand is kept verbatim.
func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}
		before := line[:colon]
		if strings.ContainsAny(before, " \t\"") {
			break
		}
		if !isIdentifier(before) {
			return p, fmt.Errorf("invalid label '%s' on line %d", before, lineNo)
		}
		p.labels = append(p.labels, before)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(line)
	p.mnemonic = fields[0]
	rest := strings.TrimSpace(line[len(fields[0]):])
	if rest == "" {
		return p, nil
	}

	if p.mnemonic == ".asciz" {
		if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
			return p, fmt.Errorf("invalid string literal on line %d", lineNo)
		}
		p.operands = []string{rest}
		return p, nil
	}

	p.operands = splitOperands(rest)
	return p, nil
}

// splitOperands splits on commas outside parentheses.
func splitOperands(s string) []string {
	var ops []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				ops = append(ops, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(ops, strings.TrimSpace(s[start:]))
}

// stripComments removes a '#' comment that is not inside a string literal.
func stripComments(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// isIdentifier accepts assembler symbol names, which may contain dots.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' && r != '.' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}

	return true
}
