package compiler

import (
	"simplecc/pkg/ast"
	"simplecc/pkg/types"
)

func rvalue(t types.Type) ast.Annotation { return ast.Annotation{Typ: t} }
func lvalue(t types.Type) ast.Annotation { return ast.Annotation{Typ: t, IsLvalue: true} }

// expression is the entry point for expression parsing: a logical-or.
func (p *Parser) expression() (ast.Expr, error) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.at(OR_LOGICAL) {
		p.advance()
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		t := p.checker.CheckLogical(left.Type(), right.Type(), "||")
		left = &ast.Logical{Annotation: rvalue(t), Op: ast.LogicalOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) logicalAnd() (ast.Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.at(AND_LOGICAL) {
		p.advance()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		t := p.checker.CheckLogical(left.Type(), right.Type(), "&&")
		left = &ast.Logical{Annotation: rvalue(t), Op: ast.LogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

var binaryOps = map[TokenType]ast.Op{
	EQUALS:     ast.Equal,
	NOT_EQ:     ast.NotEqual,
	LESS:       ast.LessThan,
	GREATER:    ast.GreaterThan,
	LESS_EQ:    ast.LessOrEqual,
	GREATER_EQ: ast.GreaterOrEqual,
	PLUS:       ast.Add,
	MINUS:      ast.Subtract,
	STAR:       ast.Multiply,
	SLASH:      ast.Divide,
	PERCENT:    ast.Remainder,
}

// binaryLevel parses one left-associative precedence level. next parses the
// operands and check computes the result type.
func (p *Parser) binaryLevel(ops []TokenType, next func() (ast.Expr, error), check func(op ast.Op, l, r types.Type) types.Type) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		tt := p.peek().Type
		found := false
		for _, o := range ops {
			if o == tt {
				found = true
				break
			}
		}
		if !found {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		op := binaryOps[tt]
		t := check(op, left.Type(), right.Type())
		left = &ast.Binary{Annotation: rvalue(t), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) equality() (ast.Expr, error) {
	return p.binaryLevel([]TokenType{EQUALS, NOT_EQ}, p.relational,
		func(op ast.Op, l, r types.Type) types.Type { return p.checker.CheckEquality(l, r, op.String()) })
}

func (p *Parser) relational() (ast.Expr, error) {
	return p.binaryLevel([]TokenType{LESS, GREATER, LESS_EQ, GREATER_EQ}, p.additive,
		func(op ast.Op, l, r types.Type) types.Type { return p.checker.CheckRelational(l, r, op.String()) })
}

func (p *Parser) additive() (ast.Expr, error) {
	return p.binaryLevel([]TokenType{PLUS, MINUS}, p.multiplicative,
		func(op ast.Op, l, r types.Type) types.Type {
			if op == ast.Add {
				return p.checker.CheckAdditive(l, r)
			}
			return p.checker.CheckSubtractive(l, r)
		})
}

func (p *Parser) multiplicative() (ast.Expr, error) {
	return p.binaryLevel([]TokenType{STAR, SLASH, PERCENT}, p.prefix,
		func(op ast.Op, l, r types.Type) types.Type { return p.checker.CheckMultiplicative(l, r, op.String()) })
}

// prefix handles ! - * & sizeof.
func (p *Parser) prefix() (ast.Expr, error) {
	var op ast.Op
	switch p.peek().Type {
	case NOT:
		op = ast.Not
	case MINUS:
		op = ast.Negate
	case STAR:
		op = ast.Dereference
	case AND:
		op = ast.Address
	case SIZEOF:
		op = ast.Sizeof
	default:
		return p.postfix()
	}
	p.advance()

	operand, err := p.prefix()
	if err != nil {
		return nil, err
	}

	ann := rvalue(types.Error)
	switch op {
	case ast.Not:
		ann = rvalue(p.checker.CheckNot(operand.Type()))
	case ast.Negate:
		ann = rvalue(p.checker.CheckNegate(operand.Type()))
	case ast.Dereference:
		ann = lvalue(p.checker.CheckDereference(operand.Type()))
	case ast.Address:
		ann = rvalue(p.checker.CheckAddress(operand.Type(), operand.Lvalue()))
	case ast.Sizeof:
		ann = rvalue(p.checker.CheckSizeof(operand.Type()))
	}
	return &ast.Unary{Annotation: ann, Op: op, Operand: operand}, nil
}

// postfix handles a[i], which is represented as *(a + i).
func (p *Parser) postfix() (ast.Expr, error) {
	left, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.at(LBRACKET) {
		p.advance()
		index, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RBRACKET); err != nil {
			return nil, err
		}

		elem := p.checker.CheckIndex(left.Type(), index.Type())
		ptr := types.Error
		if !elem.IsError() {
			ptr = left.Type().Promote()
		}
		sum := &ast.Binary{Annotation: rvalue(ptr), Op: ast.Add, Left: left, Right: index}
		left = &ast.Unary{Annotation: lvalue(elem), Op: ast.Dereference, Operand: sum}
	}
	return left, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case LPAREN:
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return e, nil

	case STRING:
		p.advance()
		t := types.NewArray(types.Char, 0, stringLength(tok.Lexeme)+1)
		return &ast.String{Annotation: rvalue(t), Lexeme: tok.Lexeme}, nil

	case NUMBER:
		n, err := p.number()
		if err != nil {
			return nil, err
		}
		return &ast.Number{Annotation: rvalue(types.Integer), Value: n}, nil

	case IDENTIFIER:
		p.advance()
		if p.at(LPAREN) {
			return p.call(tok.Lexeme)
		}
		sym := p.checker.CheckIdentifier(tok.Lexeme)
		ann := rvalue(sym.Type)
		if sym.Type.IsScalar() {
			ann = lvalue(sym.Type)
		}
		return &ast.Identifier{Annotation: ann, Symbol: sym}, nil
	}
	return nil, p.syntaxError()
}

// call parses the argument list of name(...). The opening parenthesis is
// the current token.
func (p *Parser) call(name string) (ast.Expr, error) {
	p.advance() // (
	var args []ast.Expr
	if !p.at(RPAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.at(COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}

	sym := p.checker.CheckFunction(name)
	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.Type()
	}
	t := p.checker.CheckCall(sym.Type, argTypes)
	return &ast.Call{Annotation: rvalue(t), Symbol: sym, Args: args}, nil
}

// stringLength returns the number of characters a quoted literal denotes,
// counting each escape sequence as one.
func stringLength(lexeme string) int {
	body := []rune(lexeme)
	if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	n := 0
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' {
			i++
		}
		n++
	}
	return n
}
