package parser

import (
	"fmt"

	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/source"
)

const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// Parser takes a lexer and builds an AST.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile
	errors []errors.Error

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	// noIn disables the `in` operator while parsing a for statement head.
	noIn bool
	// jumps tracks labels and enclosing loops of the current function for
	// the early errors of break, continue and return.
	jumps *jumpContext
	// incomplete is set when an error was raised at end of input.
	incomplete bool
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type labelEntry struct {
	name      string
	iteration bool
}

type jumpContext struct {
	labels    []labelEntry
	iteration int
	breakable int
	function  bool
}

// Precedence levels for operators
const (
	_ int = iota
	LOWEST
	COMMA       // ,
	ASSIGNMENT  // = += -= ...
	TERNARY     // ?:
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	BITWISE_OR  // |
	BITWISE_XOR // ^
	BITWISE_AND // &
	EQUALS      // == != === !==
	LESSGREATER // < > <= >= instanceof in
	SHIFT       // << >> >>>
	SUM         // + -
	PRODUCT     // * / %
	POWER       // ** (right-associative)
	PREFIX      // -X !X ++X
	POSTFIX     // X++ X--
	CALL        // f(X)
	INDEX       // a[i]
	MEMBER      // a.b
)

var precedences = map[lexer.TokenType]int{
	lexer.COMMA: COMMA,

	lexer.ASSIGN:          ASSIGNMENT,
	lexer.PLUS_ASSIGN:     ASSIGNMENT,
	lexer.MINUS_ASSIGN:    ASSIGNMENT,
	lexer.ASTERISK_ASSIGN: ASSIGNMENT,
	lexer.EXPONENT_ASSIGN: ASSIGNMENT,
	lexer.SLASH_ASSIGN:    ASSIGNMENT,
	lexer.PERCENT_ASSIGN:  ASSIGNMENT,
	lexer.LSHIFT_ASSIGN:   ASSIGNMENT,
	lexer.RSHIFT_ASSIGN:   ASSIGNMENT,
	lexer.URSHIFT_ASSIGN:  ASSIGNMENT,
	lexer.AND_ASSIGN:      ASSIGNMENT,
	lexer.OR_ASSIGN:       ASSIGNMENT,
	lexer.XOR_ASSIGN:      ASSIGNMENT,

	lexer.QUESTION:    TERNARY,
	lexer.LOGICAL_OR:  LOGICAL_OR,
	lexer.LOGICAL_AND: LOGICAL_AND,
	lexer.BIT_OR:      BITWISE_OR,
	lexer.BIT_XOR:     BITWISE_XOR,
	lexer.BIT_AND:     BITWISE_AND,

	lexer.EQ:        EQUALS,
	lexer.NOT_EQ:    EQUALS,
	lexer.STRICT_EQ: EQUALS,
	lexer.STRICT_NE: EQUALS,

	lexer.LT:         LESSGREATER,
	lexer.GT:         LESSGREATER,
	lexer.LE:         LESSGREATER,
	lexer.GE:         LESSGREATER,
	lexer.INSTANCEOF: LESSGREATER,
	lexer.IN:         LESSGREATER,

	lexer.LEFT_SHIFT:  SHIFT,
	lexer.RIGHT_SHIFT: SHIFT,
	lexer.URSHIFT:     SHIFT,

	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.ASTERISK: PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.EXPONENT: POWER,

	lexer.INC: POSTFIX,
	lexer.DEC: POSTFIX,

	lexer.LPAREN:   CALL,
	lexer.LBRACKET: INDEX,
	lexer.DOT:      MEMBER,
}

// NewParser creates a new Parser.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.GetSource(),
		jumps:  &jumpContext{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.REGEX_LITERAL, p.parseRegexLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.THIS, p.parseThisExpression)
	p.registerPrefix(lexer.SUPER, p.parseSuperExpression)
	p.registerPrefix(lexer.FUNCTION, p.parseFunctionLiteral)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.SPREAD, p.parseSpreadElement)
	p.registerPrefix(lexer.INC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixUpdateExpression)
	for _, op := range []lexer.TokenType{lexer.BANG, lexer.MINUS, lexer.PLUS, lexer.TILDE, lexer.TYPEOF, lexer.VOID, lexer.DELETE} {
		p.registerPrefix(op, p.parsePrefixExpression)
	}

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for tok, prec := range precedences {
		switch prec {
		case ASSIGNMENT:
			p.registerInfix(tok, p.parseAssignmentExpression)
		case COMMA:
			p.registerInfix(tok, p.parseCommaExpression)
		case TERNARY:
			p.registerInfix(tok, p.parseTernaryExpression)
		case POSTFIX:
			p.registerInfix(tok, p.parsePostfixUpdateExpression)
		case CALL:
			p.registerInfix(tok, p.parseCallExpression)
		case INDEX:
			p.registerInfix(tok, p.parseIndexExpression)
		case MEMBER:
			p.registerInfix(tok, p.parseMemberExpression)
		default:
			p.registerInfix(tok, p.parseInfixExpression)
		}
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the list of parsing errors.
func (p *Parser) Errors() []errors.Error {
	return p.errors
}

// Incomplete reports whether parsing failed because the input ended early.
// The REPL uses it to ask for another line.
func (p *Parser) Incomplete() bool {
	return p.incomplete
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

// ParseProgram parses the entire input and returns the root Program node and any errors.
func (p *Parser) ParseProgram() (*Program, []errors.Error) {
	program := &Program{Source: p.source}
	if p.source != nil && p.source.Module {
		program.Module = true
	}

	for !p.curTokenIs(lexer.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	program.Strict = program.Module || p.hasUseStrict(program.Statements)
	return program, p.errors
}

// hasUseStrict inspects the directive prologue of a program or function body.
func (p *Parser) hasUseStrict(stmts []Statement) bool {
	for _, stmt := range stmts {
		es, ok := stmt.(*ExpressionStatement)
		if !ok {
			return false
		}
		str, ok := es.Expression.(*StringLiteral)
		if !ok {
			return false
		}
		if len(str.Raw) >= 2 && str.Raw[1:len(str.Raw)-1] == "use strict" {
			return true
		}
	}
	return false
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

// peekIsContextual matches an identifier used as a contextual keyword such as `of` or `get`.
func (p *Parser) peekIsContextual(word string) bool {
	return p.peekToken.Type == lexer.IDENT && p.peekToken.Literal == word
}

// expectPeek checks the type of the next token and advances if it matches.
// If it doesn't match, it adds an error.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// expectSemicolon applies automatic semicolon insertion at the end of a statement.
func (p *Parser) expectSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) || p.peekToken.NewlineBefore {
		return
	}
	p.unexpected(p.peekToken)
}

// --- Error Handling ---

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekTokenIs(lexer.ILLEGAL) {
		p.addError(p.peekToken, p.peekToken.Literal)
		return
	}
	msg := fmt.Sprintf("expected next token to be %s, got %s instead", t, describe(p.peekToken))
	p.addError(p.peekToken, msg)
}

func (p *Parser) unexpected(tok lexer.Token) {
	if tok.Type == lexer.ILLEGAL {
		p.addError(tok, tok.Literal)
		return
	}
	p.addError(tok, "unexpected "+describe(tok))
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of input"
	case lexer.IDENT:
		return fmt.Sprintf("identifier '%s'", tok.Literal)
	case lexer.NUMBER:
		return "number"
	case lexer.STRING:
		return "string"
	}
	return fmt.Sprintf("token '%s'", tok.Literal)
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	const maxErrors = 100
	if tok.Type == lexer.EOF {
		p.incomplete = true
	}
	if len(p.errors) >= maxErrors {
		return
	}
	p.errors = append(p.errors, &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.source,
		},
		Msg: msg,
	})
}

// --- Precedence Helper ---

func (p *Parser) peekPrecedence() int {
	switch {
	case p.noIn && p.peekTokenIs(lexer.IN):
		return LOWEST
	case (p.peekTokenIs(lexer.INC) || p.peekTokenIs(lexer.DEC)) && p.peekToken.NewlineBefore:
		// a\n++b is two statements
		return LOWEST
	}
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// withFunctionContext runs fn with fresh label and loop tracking, as a
// function body does not see the labels of its surroundings.
func (p *Parser) withFunctionContext(fn func()) {
	saved, savedNoIn := p.jumps, p.noIn
	p.jumps = &jumpContext{function: true}
	p.noIn = false
	fn()
	p.jumps, p.noIn = saved, savedNoIn
}

// PositionOf returns the source position of a node's leading token.
func PositionOf(node Node, src *source.SourceFile) errors.Position {
	tok := node.Tok()
	return errors.Position{
		Line:     tok.Line,
		Column:   tok.Column,
		StartPos: tok.StartPos,
		EndPos:   tok.EndPos,
		Source:   src,
	}
}
