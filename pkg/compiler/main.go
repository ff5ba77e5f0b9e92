// Package compiler provides the Simple C front end: a lexer, a
// recursive-descent parser that runs the semantic checks inline, and the
// pipeline that hands the checked tree to the code generator.
//
// Pipeline: C source → Lex → Parse (+ check) → Generate → x86 assembly text
package compiler
