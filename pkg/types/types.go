// Package types implements the static types of Simple C and the algebra the
// checker and code generator rely on: equality, promotion, and the predicate
// and compatibility rules.
package types

import (
	"fmt"
	"strings"
)

// Specifier is the base type tag of a declaration.
type Specifier int

const (
	Int Specifier = iota
	Char
	Void
)

func (s Specifier) String() string {
	switch s {
	case Int:
		return "int"
	case Char:
		return "char"
	case Void:
		return "void"
	}
	return fmt.Sprintf("Specifier(%d)", int(s))
}

// Kind distinguishes the variants of Type.
type Kind int

const (
	KindError Kind = iota
	KindScalar
	KindArray
	KindFunction
)

// Type is an immutable value. The zero value is the error type.
//
//	int x;          Scalar{Int, 0}
//	char *s;        Scalar{Char, 1}
//	int a[10];      Array{Int, 0, 10}
//	int f(void);    Function{Int, 0, []}
//	int g();        Function{Int, 0, unknown}
type Type struct {
	kind        Kind
	specifier   Specifier
	indirection int
	length      int
	params      []Type
	known       bool // params is a declared list (possibly empty)
}

var (
	Error   = Type{}
	Integer = NewScalar(Int, 0)
)

func NewScalar(spec Specifier, indirection int) Type {
	return Type{kind: KindScalar, specifier: spec, indirection: indirection}
}

func NewArray(spec Specifier, indirection int, length int) Type {
	return Type{kind: KindArray, specifier: spec, indirection: indirection, length: length}
}

// NewFunction returns a function type with a declared parameter list. A nil
// or empty params slice means the function explicitly takes no arguments.
func NewFunction(spec Specifier, indirection int, params []Type) Type {
	owned := make([]Type, len(params))
	copy(owned, params)
	return Type{kind: KindFunction, specifier: spec, indirection: indirection, params: owned, known: true}
}

// NewImplicitFunction returns a function type whose arguments are unknown,
// as produced by an implicit declaration or an empty declarator "f()".
func NewImplicitFunction(spec Specifier, indirection int) Type {
	return Type{kind: KindFunction, specifier: spec, indirection: indirection}
}

func (t Type) Kind() Kind               { return t.kind }
func (t Type) Specifier() Specifier     { return t.specifier }
func (t Type) Indirection() int         { return t.indirection }
func (t Type) IsError() bool            { return t.kind == KindError }
func (t Type) IsScalar() bool           { return t.kind == KindScalar }
func (t Type) IsArray() bool            { return t.kind == KindArray }
func (t Type) IsFunction() bool         { return t.kind == KindFunction }
func (t Type) HasKnownParameters() bool { return t.kind == KindFunction && t.known }

// Length returns the element count of an array type.
func (t Type) Length() int {
	if t.kind != KindArray {
		panic("types: Length of non-array type " + t.String())
	}
	return t.length
}

// Parameters returns a copy of the parameter list of a function type and
// whether the list is known.
func (t Type) Parameters() ([]Type, bool) {
	if t.kind != KindFunction {
		panic("types: Parameters of non-function type " + t.String())
	}
	if !t.known {
		return nil, false
	}
	out := make([]Type, len(t.params))
	copy(out, t.params)
	return out, true
}

// Equal reports structural equality. Two error types are always equal and an
// error type is never equal to anything else.
func (t Type) Equal(u Type) bool {
	if t.kind != u.kind {
		return false
	}
	if t.kind == KindError {
		return true
	}
	if t.specifier != u.specifier || t.indirection != u.indirection {
		return false
	}
	switch t.kind {
	case KindScalar:
		return true
	case KindArray:
		return t.length == u.length
	}

	if t.known != u.known {
		return false
	}
	if len(t.params) != len(u.params) {
		return false
	}
	for i := range t.params {
		if !t.params[i].Equal(u.params[i]) {
			return false
		}
	}
	return true
}

// Promote widens char to int and decays an array to a pointer to its
// element. Every other type is returned unchanged.
func (t Type) Promote() Type {
	if t.kind == KindScalar && t.specifier == Char && t.indirection == 0 {
		return Integer
	}
	if t.kind == KindArray {
		return NewScalar(t.specifier, t.indirection+1)
	}
	return t
}

func (t Type) IsPointer() bool {
	p := t.Promote()
	return p.kind == KindScalar && p.indirection > 0
}

func (t Type) IsVoidPointer() bool {
	return t.kind == KindScalar && t.specifier == Void && t.indirection == 1
}

// IsPredicate reports whether t can be used as a truth value.
func (t Type) IsPredicate() bool {
	p := t.Promote()
	return p.Equal(Integer) || p.IsPointer()
}

// IsCompatibleWith reports whether a value of type u may be used where t is
// expected. Distinct non-void pointer types are never compatible; a void
// pointer is compatible with any pointer in either direction.
func (t Type) IsCompatibleWith(u Type) bool {
	tp, up := t.Promote(), u.Promote()

	if tp.IsPredicate() && up.IsPredicate() && tp.Equal(up) {
		return true
	}
	if tp.IsPointer() && up.IsPointer() {
		return tp.IsVoidPointer() || up.IsVoidPointer()
	}
	return false
}

// Dereference returns the type obtained by removing one level of
// indirection from the promoted type.
func (t Type) Dereference() Type {
	p := t.Promote()
	return NewScalar(p.specifier, p.indirection-1)
}

func (t Type) AddressOf() Type {
	return NewScalar(t.specifier, t.indirection+1)
}

// Result strips array and function-ness, keeping specifier and indirection.
// It is the type of a call to a function of type t.
func (t Type) Result() Type {
	return NewScalar(t.specifier, t.indirection)
}

// Size returns the storage size in bytes.
func (t Type) Size() int {
	switch t.kind {
	case KindScalar:
		return scalarSize(t.specifier, t.indirection)
	case KindArray:
		return t.length * scalarSize(t.specifier, t.indirection)
	}
	return 0
}

// Alignment returns the storage alignment in bytes. Arrays align like their
// element.
func (t Type) Alignment() int {
	switch t.kind {
	case KindScalar, KindArray:
		if n := scalarSize(t.specifier, t.indirection); n > 0 {
			return n
		}
	}
	return 1
}

func scalarSize(spec Specifier, indirection int) int {
	if indirection > 0 {
		return 4
	}
	switch spec {
	case Int:
		return 4
	case Char:
		return 1
	}
	return 0
}

func (t Type) String() string {
	if t.kind == KindError {
		return "error"
	}

	var sb strings.Builder
	sb.WriteString(t.specifier.String())
	if t.indirection > 0 {
		sb.WriteByte(' ')
		sb.WriteString(strings.Repeat("*", t.indirection))
	}

	switch t.kind {
	case KindArray:
		fmt.Fprintf(&sb, "[%d]", t.length)
	case KindFunction:
		sb.WriteByte('(')
		if t.known {
			if len(t.params) == 0 {
				sb.WriteString("void")
			}
			for i, p := range t.params {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p.String())
			}
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
