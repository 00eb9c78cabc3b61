package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/nooga/explicate/pkg/lexer"
)

func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(prec=%d): cur='%s' (%s)", precedence, p.curToken.Literal, p.curToken.Type)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.unexpected(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

// -- Prefix Parse Functions --

func (p *Parser) parseIdentifier() Expression {
	ident := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(lexer.ARROW) && !p.peekToken.NewlineBefore {
		p.nextToken()
		return p.parseArrowFunctionBody(ident.Token, []Expression{ident})
	}
	return ident
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := &NumberLiteral{Token: p.curToken}
	text := p.curToken.Literal

	base := 0
	digits := text
	if len(text) > 1 && text[0] == '0' {
		switch text[1] {
		case 'x', 'X':
			base, digits = 16, text[2:]
		case 'o', 'O':
			base, digits = 8, text[2:]
		case 'b', 'B':
			base, digits = 2, text[2:]
		default:
			// Legacy octal literal such as 017; 019 is decimal.
			if strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '7' }) < 0 {
				base, digits = 8, text[1:]
			}
		}
	}

	if base != 0 {
		n, ok := new(big.Int).SetString(digits, base)
		if !ok {
			p.addError(p.curToken, fmt.Sprintf("invalid number literal %q", text))
			return nil
		}
		lit.Value, _ = new(big.Float).SetInt(n).Float64()
		return lit
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			p.addError(p.curToken, fmt.Sprintf("invalid number literal %q", text))
			return nil
		}
	}
	lit.Value = v
	return lit
}

func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{
		Token: p.curToken,
		Value: p.curToken.Literal,
		Raw:   p.l.Slice(p.curToken.StartPos, p.curToken.EndPos),
	}
}

// parseRegexLiteral splits /pattern/flags and checks the pattern with an
// ECMAScript-mode regexp2 compile, so malformed literals are early errors.
func (p *Parser) parseRegexLiteral() Expression {
	text := p.curToken.Literal
	end := strings.LastIndexByte(text, '/')
	lit := &RegexLiteral{Token: p.curToken, Pattern: text[1:end], Flags: text[end+1:]}
	if err := ValidateRegExp(lit.Pattern, lit.Flags); err != nil {
		p.addError(p.curToken, fmt.Sprintf("invalid regular expression /%s/%s: %v", lit.Pattern, lit.Flags, err))
		return nil
	}
	return lit
}

// ValidateRegExp reports whether pattern and flags form a valid RegExp
// literal. Patterns with the u or v flag only have their flags checked, as
// regexp2 has no Unicode-sets mode.
func ValidateRegExp(pattern, flags string) error {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	unicodeMode := false
	for i, f := range flags {
		if strings.IndexRune(flags[:i], f) >= 0 {
			return fmt.Errorf("duplicate flag '%c'", f)
		}
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 'g', 'y', 's', 'd':
		case 'u', 'v':
			unicodeMode = true
		default:
			return fmt.Errorf("invalid flag '%c'", f)
		}
	}
	if unicodeMode {
		return nil
	}
	_, err := regexp2.Compile(pattern, opts)
	return err
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() Expression {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parseThisExpression() Expression {
	return &ThisExpression{Token: p.curToken}
}

func (p *Parser) parseSuperExpression() Expression {
	return &SuperExpression{Token: p.curToken}
}

func (p *Parser) parseSpreadElement() Expression {
	spread := &SpreadElement{Token: p.curToken}
	p.nextToken()
	spread.Argument = p.parseExpression(COMMA)
	if spread.Argument == nil {
		return nil
	}
	return spread
}

// parsePrefixExpression handles ! - + ~ typeof void delete.
func (p *Parser) parsePrefixExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixUpdateExpression() Expression {
	expr := &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Prefix: true}
	p.nextToken()
	expr.Argument = p.parseExpression(PREFIX)
	if expr.Argument == nil {
		return nil
	}
	if !isAssignmentTarget(expr.Argument, false) {
		p.addError(expr.Token, "invalid left-hand side expression in prefix operation")
		return nil
	}
	return expr
}

func (p *Parser) parseFunctionLiteral() Expression {
	fn := &FunctionLiteral{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) {
		p.nextToken()
		fn.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}
	if !p.parseFunctionRest(fn) {
		return nil
	}
	return fn
}

// parseFunctionRest parses the parameter list and body of fn; curToken is
// the token before '('.
func (p *Parser) parseFunctionRest(fn *FunctionLiteral) bool {
	if p.peekTokenIs(lexer.ASTERISK) {
		p.addError(p.peekToken, "generator functions are not supported")
		return false
	}
	if !p.expectPeek(lexer.LPAREN) {
		return false
	}
	params, ok := p.parseParameters()
	if !ok {
		return false
	}
	fn.Parameters = params
	if !p.expectPeek(lexer.LBRACE) {
		return false
	}
	p.withFunctionContext(func() {
		fn.Body = p.parseBlockStatement()
	})
	fn.Strict = p.hasUseStrict(fn.Body.Statements)
	return true
}

// parseParameters is entered on '(' and leaves curToken on ')'.
func (p *Parser) parseParameters() ([]Expression, bool) {
	params := []Expression{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, true
	}
	for {
		p.nextToken()
		var param Expression
		switch p.curToken.Type {
		case lexer.IDENT:
			param = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		case lexer.LBRACKET:
			param = p.parseArrayLiteral()
		case lexer.LBRACE:
			param = p.parseObjectLiteral()
		case lexer.SPREAD:
			rest := &RestElement{Token: p.curToken}
			if !p.expectPeek(lexer.IDENT) {
				return nil, false
			}
			rest.Argument = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
			param = rest
		default:
			p.unexpected(p.curToken)
			return nil, false
		}
		if param == nil {
			return nil, false
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			tok := p.curToken
			p.nextToken()
			param = &AssignmentExpression{Token: tok, Operator: "=", Left: param, Value: p.parseExpression(COMMA)}
		}
		params = append(params, param)
		if p.peekTokenIs(lexer.RPAREN) {
			p.nextToken()
			return params, true
		}
		if !p.expectPeek(lexer.COMMA) {
			return nil, false
		}
	}
}

// parseGroupedExpression parses `( expr )` or the parameter list of an
// arrow function.
func (p *Parser) parseGroupedExpression() Expression {
	tok := p.curToken
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		if !p.expectPeek(lexer.ARROW) {
			return nil
		}
		return p.parseArrowFunctionBody(tok, nil)
	}

	savedNoIn := p.noIn
	p.noIn = false
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	p.noIn = savedNoIn
	if expr == nil || !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	if p.peekTokenIs(lexer.ARROW) && !p.peekToken.NewlineBefore {
		p.nextToken()
		var params []Expression
		if seq, ok := expr.(*SequenceExpression); ok {
			params = seq.Expressions
		} else {
			params = []Expression{expr}
		}
		for i, param := range params {
			if spread, ok := param.(*SpreadElement); ok {
				params[i] = &RestElement{Token: spread.Token, Argument: spread.Argument}
			}
		}
		return p.parseArrowFunctionBody(tok, params)
	}
	return expr
}

// parseArrowFunctionBody is entered on '=>'.
func (p *Parser) parseArrowFunctionBody(tok lexer.Token, params []Expression) Expression {
	arrow := &ArrowFunctionLiteral{Token: tok, Parameters: params}
	p.nextToken()
	if p.curTokenIs(lexer.LBRACE) {
		p.withFunctionContext(func() {
			arrow.Body = p.parseBlockStatement()
		})
		return arrow
	}
	var body Expression
	p.withFunctionContext(func() {
		body = p.parseExpression(COMMA)
	})
	if body == nil {
		return nil
	}
	arrow.Body = body
	return arrow
}

func (p *Parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{Token: p.curToken, Elements: []Expression{}}
	savedNoIn := p.noIn
	p.noIn = false
	defer func() { p.noIn = savedNoIn }()

	for {
		if p.peekTokenIs(lexer.RBRACKET) {
			p.nextToken()
			return array
		}
		if p.peekTokenIs(lexer.COMMA) {
			array.Elements = append(array.Elements, nil)
			p.nextToken()
			continue
		}
		p.nextToken()
		el := p.parseExpression(COMMA)
		if el == nil {
			return nil
		}
		array.Elements = append(array.Elements, el)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return array
	}
}

func (p *Parser) parseObjectLiteral() Expression {
	obj := &ObjectLiteral{Token: p.curToken, Properties: []*Property{}}
	savedNoIn := p.noIn
	p.noIn = false
	defer func() { p.noIn = savedNoIn }()

	for {
		if p.peekTokenIs(lexer.RBRACE) {
			p.nextToken()
			return obj
		}
		p.nextToken()
		prop := p.parseProperty()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(lexer.RBRACE) {
			return nil
		}
		return obj
	}
}

// isPropertyNameStart reports whether tok can begin a property key.
func isPropertyNameStart(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.IDENT, lexer.STRING, lexer.NUMBER, lexer.LBRACKET:
		return true
	}
	return lexer.IsKeyword(tok.Type)
}

func (p *Parser) parseProperty() *Property {
	prop := &Property{Token: p.curToken}

	if p.curTokenIs(lexer.SPREAD) {
		prop.Value = p.parseSpreadElement()
		if prop.Value == nil {
			return nil
		}
		return prop
	}

	if p.curTokenIs(lexer.IDENT) && (p.curToken.Literal == "get" || p.curToken.Literal == "set") && isPropertyNameStart(p.peekToken) {
		if p.curToken.Literal == "get" {
			prop.Kind = PropertyGet
		} else {
			prop.Kind = PropertySet
		}
		p.nextToken()
		if !p.parsePropertyKey(prop) {
			return nil
		}
		fn := &FunctionLiteral{Token: prop.Token}
		if !p.parseFunctionRest(fn) {
			return nil
		}
		prop.Value = fn
		return prop
	}

	if !p.parsePropertyKey(prop) {
		return nil
	}

	switch {
	case p.peekTokenIs(lexer.COLON):
		p.nextToken()
		p.nextToken()
		prop.Value = p.parseExpression(COMMA)
		if prop.Value == nil {
			return nil
		}
	case p.peekTokenIs(lexer.LPAREN):
		fn := &FunctionLiteral{Token: prop.Token}
		if !p.parseFunctionRest(fn) {
			return nil
		}
		prop.Method = true
		prop.Value = fn
	default:
		ident, ok := prop.Key.(*Identifier)
		if !ok || prop.Computed || ident.Token.Type != lexer.IDENT {
			p.unexpected(p.peekToken)
			return nil
		}
		prop.Shorthand = true
		prop.Value = &Identifier{Token: ident.Token, Value: ident.Value}
	}
	return prop
}

func (p *Parser) parsePropertyKey(prop *Property) bool {
	switch {
	case p.curTokenIs(lexer.IDENT) || lexer.IsKeyword(p.curToken.Type):
		prop.Key = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	case p.curTokenIs(lexer.STRING):
		prop.Key = p.parseStringLiteral()
	case p.curTokenIs(lexer.NUMBER):
		prop.Key = p.parseNumberLiteral()
	case p.curTokenIs(lexer.LBRACKET):
		p.nextToken()
		prop.Computed = true
		prop.Key = p.parseExpression(COMMA)
		if prop.Key == nil || !p.expectPeek(lexer.RBRACKET) {
			return false
		}
	default:
		p.unexpected(p.curToken)
		return false
	}
	return prop.Key != nil
}

// parseNewExpression parses `new C(args)` and `new C`. The constructor is a
// member expression without calls.
func (p *Parser) parseNewExpression() Expression {
	expr := &NewExpression{Token: p.curToken, Arguments: []Expression{}}
	p.nextToken()

	var callee Expression
	if p.curTokenIs(lexer.NEW) {
		callee = p.parseNewExpression()
	} else {
		prefix := p.prefixParseFns[p.curToken.Type]
		if prefix == nil {
			p.unexpected(p.curToken)
			return nil
		}
		callee = prefix()
	}
	for callee != nil && (p.peekTokenIs(lexer.DOT) || p.peekTokenIs(lexer.LBRACKET)) {
		p.nextToken()
		if p.curTokenIs(lexer.DOT) {
			callee = p.parseMemberExpression(callee)
		} else {
			callee = p.parseIndexExpression(callee)
		}
	}
	if callee == nil {
		return nil
	}
	expr.Constructor = callee

	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		args := p.parseExpressionList(lexer.RPAREN)
		if args == nil {
			return nil
		}
		expr.Arguments = args
	}
	return expr
}

// -- Infix Parse Functions --

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := &InfixExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	precedence := p.curPrecedence()
	if p.curTokenIs(lexer.EXPONENT) {
		precedence--
	}
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseCommaExpression(left Expression) Expression {
	seq, ok := left.(*SequenceExpression)
	if !ok {
		seq = &SequenceExpression{Token: p.curToken, Expressions: []Expression{left}}
	}
	p.nextToken()
	right := p.parseExpression(COMMA)
	if right == nil {
		return nil
	}
	seq.Expressions = append(seq.Expressions, right)
	return seq
}

func (p *Parser) parseTernaryExpression(condition Expression) Expression {
	expr := &TernaryExpression{Token: p.curToken, Condition: condition}
	savedNoIn := p.noIn
	p.noIn = false
	p.nextToken()
	expr.Consequence = p.parseExpression(COMMA)
	p.noIn = savedNoIn
	if expr.Consequence == nil || !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	expr.Alternative = p.parseExpression(COMMA)
	if expr.Alternative == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expr := &AssignmentExpression{Token: p.curToken, Operator: p.curToken.Literal, Left: left}
	if !isAssignmentTarget(left, expr.Operator == "=") {
		p.addError(expr.Token, "invalid left-hand side in assignment")
		return nil
	}
	p.nextToken()
	expr.Value = p.parseExpression(COMMA)
	if expr.Value == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePostfixUpdateExpression(left Expression) Expression {
	if !isAssignmentTarget(left, false) {
		p.addError(p.curToken, "invalid left-hand side expression in postfix operation")
		return nil
	}
	return &UpdateExpression{Token: p.curToken, Operator: p.curToken.Literal, Argument: left}
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	expr := &CallExpression{Token: p.curToken, Function: function}
	expr.Arguments = p.parseExpressionList(lexer.RPAREN)
	if expr.Arguments == nil {
		return nil
	}
	return expr
}

// parseExpressionList is entered on the opening token and leaves curToken on
// end. It returns nil on error and an empty slice for an empty list.
func (p *Parser) parseExpressionList(end lexer.TokenType) []Expression {
	list := []Expression{}
	savedNoIn := p.noIn
	p.noIn = false
	defer func() { p.noIn = savedNoIn }()

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	for {
		p.nextToken()
		arg := p.parseExpression(COMMA)
		if arg == nil {
			return nil
		}
		list = append(list, arg)
		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			if p.peekTokenIs(end) {
				p.nextToken()
				return list
			}
			continue
		}
		if !p.expectPeek(end) {
			return nil
		}
		return list
	}
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	expr := &IndexExpression{Token: p.curToken, Object: left}
	savedNoIn := p.noIn
	p.noIn = false
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	p.noIn = savedNoIn
	if expr.Index == nil || !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return expr
}

// parseMemberExpression accepts reserved words as property names.
func (p *Parser) parseMemberExpression(left Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: left}
	p.nextToken()
	if !p.curTokenIs(lexer.IDENT) && !lexer.IsKeyword(p.curToken.Type) {
		p.unexpected(p.curToken)
		return nil
	}
	expr.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}

// isAssignmentTarget reports whether expr may appear on the left of an
// assignment. Array and object literals are destructuring patterns and are
// only accepted for plain `=`.
func isAssignmentTarget(expr Expression, allowPattern bool) bool {
	switch expr.(type) {
	case *Identifier, *MemberExpression, *IndexExpression:
		return true
	case *ArrayLiteral, *ObjectLiteral:
		return allowPattern
	}
	return false
}
