package parser

import (
	"fmt"

	"github.com/nooga/explicate/pkg/lexer"
)

// parseStatement is entered with curToken on the first token of the
// statement and leaves curToken on its last token.
func (p *Parser) parseStatement() Statement {
	debugPrint("parseStatement: cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
	switch p.curToken.Type {
	case lexer.VAR, lexer.LET, lexer.CONST:
		decl := p.parseVariableDeclaration(false)
		p.expectSemicolon()
		return decl
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.SEMICOLON:
		return &EmptyStatement{Token: p.curToken}
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.WITH:
		return p.parseWithStatement()
	case lexer.DEBUGGER:
		stmt := &DebuggerStatement{Token: p.curToken}
		p.expectSemicolon()
		return stmt
	case lexer.CLASS, lexer.IMPORT, lexer.EXPORT, lexer.ENUM, lexer.EXTENDS:
		p.addError(p.curToken, fmt.Sprintf("unexpected reserved word '%s'", p.curToken.Literal))
		return nil
	case lexer.IDENT:
		if p.peekTokenIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	p.expectSemicolon()
	return stmt
}

// parseSubStatement parses the body of if, loops and labels. A function
// declaration there is wrapped in a block of its own.
func (p *Parser) parseSubStatement() Statement {
	switch p.curToken.Type {
	case lexer.LET, lexer.CONST:
		p.addError(p.curToken, "lexical declaration cannot appear in a single-statement context")
	}
	stmt := p.parseStatement()
	if fd, ok := stmt.(*FunctionDeclaration); ok {
		return &BlockStatement{Token: fd.Token, Statements: []Statement{fd}}
	}
	return stmt
}

func (p *Parser) parseBlockStatement() *BlockStatement {
	block := &BlockStatement{Token: p.curToken}
	block.Statements = p.parseStatementsUntil(lexer.RBRACE)
	return block
}

// parseStatementsUntil parses statements after curToken up to the closing
// token, leaving curToken on it.
func (p *Parser) parseStatementsUntil(end lexer.TokenType) []Statement {
	stmts := []Statement{}
	p.nextToken()
	for !p.curTokenIs(end) {
		if p.curTokenIs(lexer.EOF) {
			p.addError(p.curToken, fmt.Sprintf("unexpected end of input, expected '%s'", end))
			return stmts
		}
		if stmt := p.parseStatement(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	return stmts
}

// parseVariableDeclaration parses the declarator list without the trailing
// semicolon. In a for head, const may omit its initializer.
func (p *Parser) parseVariableDeclaration(forHead bool) *VariableDeclaration {
	decl := &VariableDeclaration{Token: p.curToken}
	switch p.curToken.Type {
	case lexer.LET:
		decl.Kind = DeclareLet
	case lexer.CONST:
		decl.Kind = DeclareConst
	default:
		decl.Kind = DeclareVar
	}

	for {
		p.nextToken()
		d := &VariableDeclarator{Token: p.curToken}
		switch p.curToken.Type {
		case lexer.IDENT:
			d.Target = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		case lexer.LBRACKET:
			d.Target = p.parseArrayLiteral()
		case lexer.LBRACE:
			d.Target = p.parseObjectLiteral()
		default:
			p.unexpected(p.curToken)
			return decl
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			d.Value = p.parseExpression(COMMA)
		} else if !forHead || !(p.peekTokenIs(lexer.IN) || p.peekIsContextual("of")) {
			if decl.Kind == DeclareConst {
				p.addError(d.Token, "missing initializer in const declaration")
			} else if _, ok := d.Target.(*Identifier); !ok {
				p.addError(d.Token, "missing initializer in destructuring declaration")
			}
		}
		decl.Declarators = append(decl.Declarators, d)
		if !p.peekTokenIs(lexer.COMMA) {
			return decl
		}
		p.nextToken()
	}
}

func (p *Parser) parseFunctionDeclaration() Statement {
	decl := &FunctionDeclaration{Token: p.curToken}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	fn := &FunctionLiteral{Token: decl.Token, Name: &Identifier{Token: p.curToken, Value: p.curToken.Literal}}
	if !p.parseFunctionRest(fn) {
		return nil
	}
	decl.Function = fn
	return decl
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Consequence = p.parseSubStatement()
	if stmt.Consequence == nil {
		return nil
	}
	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternative = p.parseSubStatement()
		if stmt.Alternative == nil {
			return nil
		}
	}
	return stmt
}

// parseLoopBody parses a loop body with break and continue enabled.
func (p *Parser) parseLoopBody() Statement {
	p.jumps.iteration++
	p.jumps.breakable++
	body := p.parseSubStatement()
	p.jumps.iteration--
	p.jumps.breakable--
	return body
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseLoopBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseDoWhileStatement() Statement {
	stmt := &DoWhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Body = p.parseLoopBody()
	if stmt.Body == nil {
		return nil
	}
	if !p.expectPeek(lexer.WHILE) || !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	// The semicolon after do-while is always optional.
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseForStatement() Statement {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()

	var init Node
	switch p.curToken.Type {
	case lexer.SEMICOLON:
	case lexer.VAR, lexer.LET, lexer.CONST:
		p.noIn = true
		decl := p.parseVariableDeclaration(true)
		p.noIn = false
		init = decl
	default:
		p.noIn = true
		init = p.parseExpression(LOWEST)
		p.noIn = false
		if init == nil {
			return nil
		}
	}

	if init != nil && (p.peekTokenIs(lexer.IN) || p.peekIsContextual("of")) {
		return p.parseForInOf(tok, init)
	}

	if init != nil && !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	stmt := &ForStatement{Token: tok, Init: init}
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		stmt.Condition = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseLoopBody()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseForInOf(tok lexer.Token, left Node) Statement {
	switch l := left.(type) {
	case *VariableDeclaration:
		if len(l.Declarators) != 1 {
			p.addError(l.Token, "invalid left-hand side in for-in loop: must have a single binding")
			return nil
		}
		if l.Declarators[0].Value != nil {
			p.addError(l.Token, "for-in loop variable declaration may not have an initializer")
			return nil
		}
	case Expression:
		if !isAssignmentTarget(l, true) {
			p.addError(l.Tok(), "invalid left-hand side in for-in loop")
			return nil
		}
	}

	of := p.peekIsContextual("of")
	p.nextToken()
	p.nextToken()
	var right Expression
	if of {
		right = p.parseExpression(COMMA)
	} else {
		right = p.parseExpression(LOWEST)
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	body := p.parseLoopBody()
	if body == nil {
		return nil
	}
	if of {
		return &ForOfStatement{Token: tok, Left: left, Right: right, Body: body}
	}
	return &ForInStatement{Token: tok, Left: left, Right: right, Body: body}
}

// parseJumpLabel reads the optional label of break/continue. A label must be
// on the same line as the keyword.
func (p *Parser) parseJumpLabel() *Identifier {
	if p.peekTokenIs(lexer.IDENT) && !p.peekToken.NewlineBefore {
		p.nextToken()
		return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	return nil
}

func (p *Parser) findLabel(name string) (labelEntry, bool) {
	for i := len(p.jumps.labels) - 1; i >= 0; i-- {
		if p.jumps.labels[i].name == name {
			return p.jumps.labels[i], true
		}
	}
	return labelEntry{}, false
}

func (p *Parser) parseBreakStatement() Statement {
	stmt := &BreakStatement{Token: p.curToken}
	stmt.Label = p.parseJumpLabel()
	if stmt.Label != nil {
		if _, ok := p.findLabel(stmt.Label.Value); !ok {
			p.addError(stmt.Label.Token, fmt.Sprintf("undefined label '%s'", stmt.Label.Value))
		}
	} else if p.jumps.breakable == 0 {
		p.addError(stmt.Token, "illegal break statement")
	}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() Statement {
	stmt := &ContinueStatement{Token: p.curToken}
	stmt.Label = p.parseJumpLabel()
	if stmt.Label != nil {
		entry, ok := p.findLabel(stmt.Label.Value)
		switch {
		case !ok:
			p.addError(stmt.Label.Token, fmt.Sprintf("undefined label '%s'", stmt.Label.Value))
		case !entry.iteration:
			p.addError(stmt.Label.Token, fmt.Sprintf("illegal continue statement: '%s' does not denote an iteration statement", stmt.Label.Value))
		}
	} else if p.jumps.iteration == 0 {
		p.addError(stmt.Token, "illegal continue statement: no surrounding iteration statement")
	}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}
	if !p.jumps.function {
		p.addError(stmt.Token, "illegal return statement")
	}
	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) || p.peekToken.NewlineBefore {
		p.expectSemicolon()
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() Statement {
	stmt := &ThrowStatement{Token: p.curToken}
	if p.peekToken.NewlineBefore {
		p.addError(p.peekToken, "illegal newline after throw")
		return nil
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() Statement {
	stmt := &TryStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	if p.peekTokenIs(lexer.CATCH) {
		p.nextToken()
		clause := &CatchClause{Token: p.curToken}
		if p.peekTokenIs(lexer.LPAREN) {
			p.nextToken()
			p.nextToken()
			switch p.curToken.Type {
			case lexer.IDENT:
				clause.Parameter = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			case lexer.LBRACKET:
				clause.Parameter = p.parseArrayLiteral()
			case lexer.LBRACE:
				clause.Parameter = p.parseObjectLiteral()
			default:
				p.unexpected(p.curToken)
				return nil
			}
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		clause.Body = p.parseBlockStatement()
		stmt.Catch = clause
	}

	if p.peekTokenIs(lexer.FINALLY) {
		p.nextToken()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
	}

	if stmt.Catch == nil && stmt.Finally == nil {
		p.addError(p.peekToken, "missing catch or finally after try")
		return nil
	}
	return stmt
}

func (p *Parser) parseSwitchStatement() Statement {
	stmt := &SwitchStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) || !p.expectPeek(lexer.LBRACE) {
		return nil
	}

	p.jumps.breakable++
	defer func() { p.jumps.breakable-- }()

	p.nextToken()
	seenDefault := false
	for !p.curTokenIs(lexer.RBRACE) {
		clause := &SwitchCase{Token: p.curToken}
		switch p.curToken.Type {
		case lexer.CASE:
			p.nextToken()
			clause.Test = p.parseExpression(LOWEST)
		case lexer.DEFAULT:
			if seenDefault {
				p.addError(p.curToken, "more than one default clause in switch statement")
			}
			seenDefault = true
		default:
			p.unexpected(p.curToken)
			return nil
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		for !p.curTokenIs(lexer.CASE) && !p.curTokenIs(lexer.DEFAULT) && !p.curTokenIs(lexer.RBRACE) {
			if p.curTokenIs(lexer.EOF) {
				p.addError(p.curToken, "unexpected end of input, expected '}'")
				return nil
			}
			if s := p.parseStatement(); s != nil {
				clause.Body = append(clause.Body, s)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, clause)
	}
	return stmt
}

func (p *Parser) parseWithStatement() Statement {
	stmt := &WithStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Object = p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Body = p.parseSubStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseLabeledStatement consumes a chain of labels `a: b: stmt`. Every label
// in the chain denotes an iteration statement when stmt is a loop.
func (p *Parser) parseLabeledStatement() Statement {
	var chain []*LabeledStatement
	for p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.COLON) {
		label := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if _, dup := p.findLabel(label.Value); dup {
			p.addError(label.Token, fmt.Sprintf("label '%s' has already been declared", label.Value))
		}
		for _, l := range chain {
			if l.Label.Value == label.Value {
				p.addError(label.Token, fmt.Sprintf("label '%s' has already been declared", label.Value))
			}
		}
		chain = append(chain, &LabeledStatement{Token: p.curToken, Label: label})
		p.nextToken()
		p.nextToken()
	}

	iteration := p.curTokenIs(lexer.FOR) || p.curTokenIs(lexer.WHILE) || p.curTokenIs(lexer.DO)
	saved := len(p.jumps.labels)
	for _, l := range chain {
		p.jumps.labels = append(p.jumps.labels, labelEntry{name: l.Label.Value, iteration: iteration})
	}
	// A labeled block may be left with break even outside loops.
	body := p.parseSubStatement()
	p.jumps.labels = p.jumps.labels[:saved]
	if body == nil {
		return nil
	}

	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].Statement = body
		body = chain[i]
	}
	return body
}
