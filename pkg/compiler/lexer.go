package compiler

import (
	"unicode"

	"simplecc/pkg/diag"
)

// keywords maps source text to its keyword TokenType. Every C89 keyword is
// reserved even though most of them have no meaning in Simple C.
var keywords = map[string]TokenType{
	"auto":     AUTO,
	"break":    BREAK,
	"case":     CASE,
	"char":     CHAR,
	"const":    CONST,
	"continue": CONTINUE,
	"default":  DEFAULT,
	"do":       DO,
	"double":   DOUBLE,
	"else":     ELSE,
	"enum":     ENUM,
	"extern":   EXTERN,
	"float":    FLOAT,
	"for":      FOR,
	"goto":     GOTO,
	"if":       IF,
	"int":      INT,
	"long":     LONG,
	"register": REGISTER,
	"return":   RETURN,
	"short":    SHORT,
	"signed":   SIGNED,
	"sizeof":   SIZEOF,
	"static":   STATIC,
	"struct":   STRUCT,
	"switch":   SWITCH,
	"typedef":  TYPEDEF,
	"union":    UNION,
	"unsigned": UNSIGNED,
	"void":     VOID,
	"volatile": VOLATILE,
	"while":    WHILE,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src      []rune
	pos      int // index of the next rune to consume
	line     int // current 1-based source line
	reporter *diag.Reporter
}

func newLexer(src string, r *diag.Reporter) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1, reporter: r}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) atEOF() bool { return l.pos >= len(l.src) }

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
// The opening "/*" must already have been consumed. An unterminated comment
// runs to the end of the input.
func (l *Lexer) skipBlockComment() {
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peek2() == '/' {
			l.advance() // *
			l.advance() // /
			return
		}
		l.advance()
	}
}

// scanIdent collects a full identifier or keyword token.
// The first character (letter or '_') must still be at l.peek().
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !isLetter(r) && !isDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanNumber collects a decimal literal. Range checking is left to the
// parser so the error can name the offending token.
func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.peek()) {
		l.advance()
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// scanString collects a string literal, keeping the quotes and escapes as
// written. A literal that reaches a newline or the end of the input is
// reported as malformed and returned as is.
func (l *Lexer) scanString() Token {
	line := l.line
	start := l.pos
	l.advance() // opening "

	for {
		if l.atEOF() || l.peek() == '\n' {
			l.reporter.Report(l.line, diag.MalformedString, "")
			return Token{Type: STRING, Lexeme: string(l.src[start:l.pos]) + `"`, Line: line}
		}
		r := l.advance()
		if r == '\\' && !l.atEOF() && l.peek() != '\n' {
			l.advance()
			continue
		}
		if r == '"' {
			break
		}
	}
	return Token{Type: STRING, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// two returns the two-rune token tt if the next rune is want, and single
// otherwise. The first rune has already been consumed.
func (l *Lexer) two(want rune, tt TokenType, single TokenType, line int) Token {
	first := string(l.src[l.pos-1])
	if l.peek() == want {
		l.advance()
		return Token{tt, first + string(want), line}
	}
	return Token{single, first, line}
}

// nextToken skips whitespace and comments and returns the next Token.
func (l *Lexer) nextToken() Token {
	for {
		l.skipWhitespace()
		if l.atEOF() {
			return Token{Type: EOF, Lexeme: "", Line: l.line}
		}
		if l.peek() == '/' && l.peek2() == '*' {
			l.advance()
			l.advance()
			l.skipBlockComment()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if isLetter(ch) || ch == '_' {
		return l.scanIdent()
	}
	if isDigit(ch) {
		return l.scanNumber()
	}
	if ch == '"' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '{':
		return Token{LBRACE, "{", line}
	case '}':
		return Token{RBRACE, "}", line}
	case '(':
		return Token{LPAREN, "(", line}
	case ')':
		return Token{RPAREN, ")", line}
	case '[':
		return Token{LBRACKET, "[", line}
	case ']':
		return Token{RBRACKET, "]", line}
	case '.':
		return Token{DOT, ".", line}
	case ';':
		return Token{SEMICOLON, ";", line}
	case ',':
		return Token{COMMA, ",", line}
	case ':':
		return Token{COLON, ":", line}
	case '*':
		return Token{STAR, "*", line}
	case '/':
		return Token{SLASH, "/", line}
	case '%':
		return Token{PERCENT, "%", line}

	case '+':
		return l.two('+', PLUS_PLUS, PLUS, line)
	case '-':
		if l.peek() == '>' {
			l.advance()
			return Token{ARROW, "->", line}
		}
		return l.two('-', MINUS_MINUS, MINUS, line)
	case '&':
		return l.two('&', AND_LOGICAL, AND, line)
	case '|':
		return l.two('|', OR_LOGICAL, ILLEGAL, line)
	case '!':
		return l.two('=', NOT_EQ, NOT, line)
	case '<':
		return l.two('=', LESS_EQ, LESS, line)
	case '>':
		return l.two('=', GREATER_EQ, GREATER, line)
	case '=':
		return l.two('=', EQUALS, ASSIGN, line)
	}
	return Token{ILLEGAL, string(ch), line}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// Malformed string literals are reported to r, which may be nil.
func Lex(src string, r *diag.Reporter) []Token {
	if r == nil {
		r = diag.NewReporter(nil)
	}
	l := newLexer(src, r)
	var tokens []Token
	for {
		tok := l.nextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

// Simple C identifiers and numbers are ASCII only.
func isLetter(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
