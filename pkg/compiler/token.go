package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input
	ILLEGAL                  // a character no token starts with, or a lone '|'

	// Literals
	IDENTIFIER // variable / function name
	NUMBER     // decimal integer literal
	STRING     // string literal, quotes included

	// Keywords. Only int, char, void, if, else, while, for, return and
	// sizeof appear in the grammar; the rest are reserved.
	AUTO
	BREAK
	CASE
	CHAR
	CONST
	CONTINUE
	DEFAULT
	DO
	DOUBLE
	ELSE
	ENUM
	EXTERN
	FLOAT
	FOR
	GOTO
	IF
	INT
	LONG
	REGISTER
	RETURN
	SHORT
	SIGNED
	SIZEOF
	STATIC
	STRUCT
	SWITCH
	TYPEDEF
	UNION
	UNSIGNED
	VOID
	VOLATILE
	WHILE

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // .
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :

	// Operators
	PLUS        // +
	MINUS       // -
	STAR        // *
	SLASH       // /
	PERCENT     // %
	AND         // &
	NOT         // !
	AND_LOGICAL // &&
	OR_LOGICAL  // ||
	PLUS_PLUS   // ++
	MINUS_MINUS // --
	ARROW       // ->

	ASSIGN     // =
	EQUALS     // ==
	NOT_EQ     // !=
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:         "EOF",
	ILLEGAL:     "ILLEGAL",
	IDENTIFIER:  "IDENTIFIER",
	NUMBER:      "NUMBER",
	STRING:      "STRING",
	AUTO:        "AUTO",
	BREAK:       "BREAK",
	CASE:        "CASE",
	CHAR:        "CHAR",
	CONST:       "CONST",
	CONTINUE:    "CONTINUE",
	DEFAULT:     "DEFAULT",
	DO:          "DO",
	DOUBLE:      "DOUBLE",
	ELSE:        "ELSE",
	ENUM:        "ENUM",
	EXTERN:      "EXTERN",
	FLOAT:       "FLOAT",
	FOR:         "FOR",
	GOTO:        "GOTO",
	IF:          "IF",
	INT:         "INT",
	LONG:        "LONG",
	REGISTER:    "REGISTER",
	RETURN:      "RETURN",
	SHORT:       "SHORT",
	SIGNED:      "SIGNED",
	SIZEOF:      "SIZEOF",
	STATIC:      "STATIC",
	STRUCT:      "STRUCT",
	SWITCH:      "SWITCH",
	TYPEDEF:     "TYPEDEF",
	UNION:       "UNION",
	UNSIGNED:    "UNSIGNED",
	VOID:        "VOID",
	VOLATILE:    "VOLATILE",
	WHILE:       "WHILE",
	LBRACE:      "LBRACE",
	RBRACE:      "RBRACE",
	LPAREN:      "LPAREN",
	RPAREN:      "RPAREN",
	LBRACKET:    "LBRACKET",
	RBRACKET:    "RBRACKET",
	DOT:         "DOT",
	SEMICOLON:   "SEMICOLON",
	COMMA:       "COMMA",
	COLON:       "COLON",
	PLUS:        "PLUS",
	MINUS:       "MINUS",
	STAR:        "STAR",
	SLASH:       "SLASH",
	PERCENT:     "PERCENT",
	AND:         "AND",
	NOT:         "NOT",
	AND_LOGICAL: "AND_LOGICAL",
	OR_LOGICAL:  "OR_LOGICAL",
	PLUS_PLUS:   "PLUS_PLUS",
	MINUS_MINUS: "MINUS_MINUS",
	ARROW:       "ARROW",
	ASSIGN:      "ASSIGN",
	EQUALS:      "EQUALS",
	NOT_EQ:      "NOT_EQ",
	LESS:        "LESS",
	GREATER:     "GREATER",
	LESS_EQ:     "LESS_EQ",
	GREATER_EQ:  "GREATER_EQ",
}

var _ = [1]int{}[len(tokenNames)-int(GREATER_EQ)-1]

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
