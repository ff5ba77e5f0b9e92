package compiler

import (
	"strconv"

	"fortio.org/safecast"

	"simplecc/pkg/ast"
	"simplecc/pkg/checker"
	"simplecc/pkg/diag"
	"simplecc/pkg/types"
)

// Parser consumes the flat token slice produced by the Lexer, runs the
// semantic checks as each construct is reduced, and builds an annotated
// syntax tree.
//
// Grammar:
//
//	translation-unit = { top-level }
//	top-level        = specifier pointers IDENTIFIER
//	                   ( "[" NUMBER "]" rest | "(" parameters ")" ( block | rest ) | rest )
//	rest             = { "," global-declarator } ";"
//	parameters       = "void" | empty | parameter { "," parameter }
//	parameter        = specifier pointers IDENTIFIER
//	block            = "{" { declaration } { statement } "}"
//	declaration      = specifier declarator { "," declarator } ";"
//	declarator       = pointers IDENTIFIER [ "[" NUMBER "]" ]
//	statement        = block | "return" expression ";"
//	                 | "while" "(" expression ")" statement
//	                 | "for" "(" assignment ";" expression ";" assignment ")" statement
//	                 | "if" "(" expression ")" statement [ "else" statement ]
//	                 | assignment ";"
//	assignment       = expression [ "=" expression ]
//	expression       = logical-and { "||" logical-and }
//	logical-and      = equality { "&&" equality }
//	equality         = relational { ( "==" | "!=" ) relational }
//	relational       = additive { ( "<" | ">" | "<=" | ">=" ) additive }
//	additive         = multiplicative { ( "+" | "-" ) multiplicative }
//	multiplicative   = prefix { ( "*" | "/" | "%" ) prefix }
//	prefix           = ( "!" | "-" | "*" | "&" | "sizeof" ) prefix | postfix
//	postfix          = primary { "[" expression "]" }
//	primary          = "(" expression ")" | IDENTIFIER "(" [ expression { "," expression } ] ")"
//	                 | IDENTIFIER | STRING | NUMBER
type Parser struct {
	tokens   []Token
	pos      int
	checker  *checker.Checker
	function types.Type // type of the function being defined
	program  ast.Program
}

func NewParser(tokens []Token, c *checker.Checker) *Parser {
	return &Parser{tokens: tokens, checker: c}
}

// syntaxError reports the current token as unexpected.
func (p *Parser) syntaxError() error {
	tok := p.peek()
	if tok.Type == EOF {
		return &diag.SyntaxError{Line: tok.Line, AtEOF: true}
	}
	return &diag.SyntaxError{Line: tok.Line, Near: tok.Lexeme}
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		line := 1
		if n := len(p.tokens); n > 0 {
			line = p.tokens[n-1].Line
		}
		return Token{Type: EOF, Line: line}
	}
	return p.tokens[p.pos]
}

// advance consumes and returns the current token. Diagnostics raised while
// reducing what was just consumed carry the line of the lookahead.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.checker.SetLine(p.peek().Line)
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns a
// syntax error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	if p.peek().Type != tt {
		return Token{}, p.syntaxError()
	}
	return p.advance(), nil
}

func (p *Parser) at(tt TokenType) bool { return p.peek().Type == tt }

// number consumes a NUMBER token that must fit in a 32-bit int.
func (p *Parser) number() (int32, error) {
	if !p.at(NUMBER) {
		return 0, p.syntaxError()
	}
	v, err := strconv.ParseUint(p.peek().Lexeme, 10, 64)
	if err != nil {
		return 0, p.syntaxError()
	}
	n, err := safecast.Conv[int32](v)
	if err != nil {
		return 0, p.syntaxError()
	}
	p.advance()
	return n, nil
}

// arrayLength consumes the length of an array declarator, which must be
// positive.
func (p *Parser) arrayLength() (int, error) {
	if p.at(NUMBER) {
		if v, err := strconv.ParseUint(p.peek().Lexeme, 10, 64); err == nil && v == 0 {
			return 0, p.syntaxError()
		}
	}
	n, err := p.number()
	return int(n), err
}

//  Declarations

func isSpecifier(tt TokenType) bool { return tt == INT || tt == CHAR || tt == VOID }

func (p *Parser) specifier() (types.Specifier, error) {
	switch p.peek().Type {
	case INT:
		p.advance()
		return types.Int, nil
	case CHAR:
		p.advance()
		return types.Char, nil
	case VOID:
		p.advance()
		return types.Void, nil
	}
	return 0, p.syntaxError()
}

func (p *Parser) pointers() int {
	n := 0
	for p.at(STAR) {
		p.advance()
		n++
	}
	return n
}

// declarator parses a local "pointers name [ '[' num ']' ]" and declares it.
func (p *Parser) declarator(spec types.Specifier) error {
	ind := p.pointers()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}
	if !p.at(LBRACKET) {
		p.checker.DeclareVariable(name.Lexeme, types.NewScalar(spec, ind))
		return nil
	}
	p.advance()
	n, err := p.arrayLength()
	if err != nil {
		return err
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return err
	}
	p.checker.DeclareVariable(name.Lexeme, types.NewArray(spec, ind, n))
	return nil
}

func (p *Parser) declarations() error {
	for isSpecifier(p.peek().Type) {
		spec, err := p.specifier()
		if err != nil {
			return err
		}
		if err := p.declarator(spec); err != nil {
			return err
		}
		for p.at(COMMA) {
			p.advance()
			if err := p.declarator(spec); err != nil {
				return err
			}
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return err
		}
	}
	return nil
}

// parameters opens the parameter scope and parses the list up to, but not
// including, the closing parenthesis. known is false for "()".
func (p *Parser) parameters() (params []types.Type, known bool, err error) {
	p.checker.OpenScope()

	if p.at(RPAREN) {
		return nil, false, nil
	}
	if p.at(VOID) && p.peekAt(1).Type == RPAREN {
		p.advance()
		return nil, true, nil
	}

	for {
		spec, err := p.specifier()
		if err != nil {
			return nil, false, err
		}
		ind := p.pointers()
		name, err := p.expect(IDENTIFIER)
		if err != nil {
			return nil, false, err
		}
		t := types.NewScalar(spec, ind)
		p.checker.DeclareVariable(name.Lexeme, t)
		params = append(params, t)

		if !p.at(COMMA) {
			return params, true, nil
		}
		p.advance()
	}
}

func (p *Parser) peekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+offset]
}

func functionType(spec types.Specifier, ind int, params []types.Type, known bool) types.Type {
	if !known {
		return types.NewImplicitFunction(spec, ind)
	}
	return types.NewFunction(spec, ind, params)
}

// globalDeclarator parses one declarator after the first in a top-level
// declaration list.
func (p *Parser) globalDeclarator(spec types.Specifier) error {
	ind := p.pointers()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}

	switch p.peek().Type {
	case LBRACKET:
		p.advance()
		n, err := p.arrayLength()
		if err != nil {
			return err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return err
		}
		p.checker.DeclareVariable(name.Lexeme, types.NewArray(spec, ind, n))

	case LPAREN:
		p.advance()
		params, known, err := p.parameters()
		if err != nil {
			return err
		}
		p.checker.CloseScope()
		if _, err := p.expect(RPAREN); err != nil {
			return err
		}
		p.checker.DeclareFunction(name.Lexeme, functionType(spec, ind, params, known))

	default:
		p.checker.DeclareVariable(name.Lexeme, types.NewScalar(spec, ind))
	}
	return nil
}

func (p *Parser) remainingDeclarators(spec types.Specifier) error {
	for p.at(COMMA) {
		p.advance()
		if err := p.globalDeclarator(spec); err != nil {
			return err
		}
	}
	_, err := p.expect(SEMICOLON)
	return err
}

// topLevel parses a global declaration or a function definition.
func (p *Parser) topLevel() error {
	spec, err := p.specifier()
	if err != nil {
		return err
	}
	ind := p.pointers()
	name, err := p.expect(IDENTIFIER)
	if err != nil {
		return err
	}

	switch p.peek().Type {
	case LBRACKET:
		p.advance()
		n, err := p.arrayLength()
		if err != nil {
			return err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return err
		}
		p.checker.DeclareVariable(name.Lexeme, types.NewArray(spec, ind, n))
		return p.remainingDeclarators(spec)

	case LPAREN:
		p.advance()
		params, known, err := p.parameters()
		if err != nil {
			return err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return err
		}
		typ := functionType(spec, ind, params, known)

		if p.at(LBRACE) {
			return p.functionDefinition(name.Lexeme, typ)
		}
		p.checker.CloseScope()
		p.checker.DeclareFunction(name.Lexeme, typ)
		return p.remainingDeclarators(spec)
	}

	p.checker.DeclareVariable(name.Lexeme, types.NewScalar(spec, ind))
	return p.remainingDeclarators(spec)
}

// functionDefinition parses the body of a function. The parameter scope is
// still open and becomes the body's scope.
func (p *Parser) functionDefinition(name string, typ types.Type) error {
	sym := p.checker.DefineFunction(name, typ)
	scope := p.checker.Scope()
	params := scope.Symbols()

	p.function = typ
	p.advance() // {
	if err := p.declarations(); err != nil {
		return err
	}
	stmts, err := p.statements()
	if err != nil {
		return err
	}
	p.checker.CloseScope()
	if _, err := p.expect(RBRACE); err != nil {
		return err
	}

	p.program.Functions = append(p.program.Functions, &ast.Function{
		Symbol: sym,
		Params: params,
		Body:   &ast.Block{Scope: scope, Stmts: stmts},
	})
	return nil
}

//  Statements

func (p *Parser) statements() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.at(RBRACE) {
		s, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	return stmts, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch p.peek().Type {
	case LBRACE:
		p.advance()
		scope := p.checker.OpenScope()
		if err := p.declarations(); err != nil {
			return nil, err
		}
		stmts, err := p.statements()
		if err != nil {
			return nil, err
		}
		p.checker.CloseScope()
		if _, err := p.expect(RBRACE); err != nil {
			return nil, err
		}
		return &ast.Block{Scope: scope, Stmts: stmts}, nil

	case RETURN:
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		p.checker.CheckReturn(e.Type(), p.function)
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.Return{Expr: e}, nil

	case WHILE:
		p.advance()
		cond, err := p.condition()
		if err != nil {
			return nil, err
		}
		body, err := p.statement()
		if err != nil {
			return nil, err
		}
		return &ast.While{Cond: cond, Body: body}, nil

	case FOR:
		return p.forStatement()

	case IF:
		p.advance()
		cond, err := p.condition()
		if err != nil {
			return nil, err
		}
		then, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmt := &ast.If{Cond: cond, Then: then}
		if p.at(ELSE) {
			p.advance()
			if stmt.Else, err = p.statement(); err != nil {
				return nil, err
			}
		}
		return stmt, nil
	}

	s, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return s, nil
}

// condition parses "( expression )" and checks it as a test expression.
func (p *Parser) condition() (ast.Expr, error) {
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	e, err := p.testExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) testExpression() (ast.Expr, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.checker.CheckTest(e.Type())
	return e, nil
}

func (p *Parser) forStatement() (ast.Stmt, error) {
	p.advance() // for
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	init, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	cond, err := p.testExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	incr, err := p.assignment()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.For{Init: init, Cond: cond, Incr: incr, Body: body}, nil
}

// assignment parses "expression [ = expression ]".
func (p *Parser) assignment() (ast.Stmt, error) {
	left, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.at(ASSIGN) {
		return &ast.ExprStmt{Expr: left}, nil
	}
	p.advance()
	right, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.checker.CheckAssignment(left.Type(), right.Type(), left.Lvalue())
	return &ast.Assignment{Left: left, Right: right}, nil
}

// Parse runs the whole translation unit through the parser and checker. The
// checker's root scope is opened and closed here.
func Parse(tokens []Token, c *checker.Checker) (*ast.Program, error) {
	p := NewParser(tokens, c)
	c.OpenScope()
	if len(tokens) > 0 {
		c.SetLine(tokens[0].Line)
	}
	for !p.at(EOF) {
		if err := p.topLevel(); err != nil {
			return nil, err
		}
	}
	p.program.Globals = c.Globals()
	c.CloseScope()
	return &p.program, nil
}
