// Package diag reports compiler diagnostics in the "line N: message" format
// and counts them so the driver can decide the exit status.
package diag

import (
	"fmt"
	"io"
	"strings"
)

// Kind identifies a recoverable semantic (or lexical) error.
type Kind int

const (
	ConflictingTypes Kind = iota
	Redefinition
	Redeclaration
	Undeclared
	VoidObject
	InvalidReturn
	InvalidTestExpression
	LvalueRequired
	InvalidOperands
	InvalidOperand
	NotAFunction
	InvalidArguments
	MalformedString
)

// messages is indexed by Kind. A %s verb, when present, takes the offending
// identifier or operator.
var messages = [...]string{
	ConflictingTypes:      "conflicting types for '%s'",
	Redefinition:          "redefinition of '%s'",
	Redeclaration:         "redeclaration of '%s'",
	Undeclared:            "'%s' undeclared",
	VoidObject:            "'%s' has type void",
	InvalidReturn:         "invalid return type",
	InvalidTestExpression: "invalid type for test expression",
	LvalueRequired:        "lvalue required in expression",
	InvalidOperands:       "invalid operands to binary %s",
	InvalidOperand:        "invalid operand to unary %s",
	NotAFunction:          "called object is not a function",
	InvalidArguments:      "invalid arguments to called function",
	MalformedString:       "malformed string literal",
}

var kindNames = [...]string{
	ConflictingTypes:      "ConflictingTypes",
	Redefinition:          "Redefinition",
	Redeclaration:         "Redeclaration",
	Undeclared:            "Undeclared",
	VoidObject:            "VoidObject",
	InvalidReturn:         "InvalidReturn",
	InvalidTestExpression: "InvalidTestExpression",
	LvalueRequired:        "LvalueRequired",
	InvalidOperands:       "InvalidOperands",
	InvalidOperand:        "InvalidOperand",
	NotAFunction:          "NotAFunction",
	InvalidArguments:      "InvalidArguments",
	MalformedString:       "MalformedString",
}

var _ = [1]int{}[len(messages)-len(kindNames)]

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Format renders the message for k with arg substituted.
func (k Kind) Format(arg string) string {
	msg := messages[k]
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, arg)
	}
	return msg
}

// Diagnostic is one reported error.
type Diagnostic struct {
	Line int
	Kind Kind
	Arg  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Kind.Format(d.Arg))
}

// Reporter collects diagnostics and echoes each one to an optional writer as
// it is reported.
type Reporter struct {
	out   io.Writer
	items []Diagnostic
}

// NewReporter returns a Reporter that writes to out. A nil out only records.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

func (r *Reporter) Report(line int, kind Kind, arg string) {
	d := Diagnostic{Line: line, Kind: kind, Arg: arg}
	r.items = append(r.items, d)
	if r.out != nil {
		fmt.Fprintln(r.out, d)
	}
}

func (r *Reporter) Count() int { return len(r.items) }

func (r *Reporter) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Kinds returns the kinds in report order. Handy in tests.
func (r *Reporter) Kinds() []Kind {
	kinds := make([]Kind, len(r.items))
	for i, d := range r.items {
		kinds[i] = d.Kind
	}
	return kinds
}

// SyntaxError aborts compilation. Near is the offending lexeme; an empty Near
// with AtEOF set means the input ended early.
type SyntaxError struct {
	Line  int
	Near  string
	AtEOF bool
}

func (e *SyntaxError) Error() string {
	if e.AtEOF {
		return fmt.Sprintf("line %d: syntax error at end of file", e.Line)
	}
	return fmt.Sprintf("line %d: syntax error at '%s'", e.Line, e.Near)
}
