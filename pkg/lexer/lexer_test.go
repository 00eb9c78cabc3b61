package lexer

import (
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `var five = 5;
const ten = 10.5;

let add = function(x, y) {
  return x + y;
};
a >>>= b !== c;
o.p = i++ ** 2;
// comment
/* block
comment */ for (k in o) {}`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
		expectedLine    int
	}{
		{VAR, "var", 1},
		{IDENT, "five", 1},
		{ASSIGN, "=", 1},
		{NUMBER, "5", 1},
		{SEMICOLON, ";", 1},
		{CONST, "const", 2},
		{IDENT, "ten", 2},
		{ASSIGN, "=", 2},
		{NUMBER, "10.5", 2},
		{SEMICOLON, ";", 2},
		{LET, "let", 4},
		{IDENT, "add", 4},
		{ASSIGN, "=", 4},
		{FUNCTION, "function", 4},
		{LPAREN, "(", 4},
		{IDENT, "x", 4},
		{COMMA, ",", 4},
		{IDENT, "y", 4},
		{RPAREN, ")", 4},
		{LBRACE, "{", 4},
		{RETURN, "return", 5},
		{IDENT, "x", 5},
		{PLUS, "+", 5},
		{IDENT, "y", 5},
		{SEMICOLON, ";", 5},
		{RBRACE, "}", 6},
		{SEMICOLON, ";", 6},
		{IDENT, "a", 7},
		{URSHIFT_ASSIGN, ">>>=", 7},
		{IDENT, "b", 7},
		{STRICT_NE, "!==", 7},
		{IDENT, "c", 7},
		{SEMICOLON, ";", 7},
		{IDENT, "o", 8},
		{DOT, ".", 8},
		{IDENT, "p", 8},
		{ASSIGN, "=", 8},
		{IDENT, "i", 8},
		{INC, "++", 8},
		{EXPONENT, "**", 8},
		{NUMBER, "2", 8},
		{SEMICOLON, ";", 8},
		{FOR, "for", 11},
		{LPAREN, "(", 11},
		{IDENT, "k", 11},
		{IN, "in", 11},
		{IDENT, "o", 11},
		{RPAREN, ")", 11},
		{LBRACE, "{", 11},
		{RBRACE, "}", 11},
		{EOF, "", 11},
	}

	l := NewLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal: %q, line: %d)",
				i, tt.expectedType, tok.Type, tok.Literal, tok.Line)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q (type: %q, line: %d)",
				i, tt.expectedLiteral, tok.Literal, tok.Type, tok.Line)
		}
		if tok.Line != tt.expectedLine {
			t.Errorf("tests[%d] - line wrong. expected=%d, got=%d (type: %q)", i, tt.expectedLine, tok.Line, tok.Type)
		}
	}
}

func TestRegexLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
		literals []string
	}{
		{"simple", "/hello/", []TokenType{REGEX_LITERAL, EOF}, []string{"/hello/", ""}},
		{"flags", "/world/gi", []TokenType{REGEX_LITERAL, EOF}, []string{"/world/gi", ""}},
		{"slash in class", "/[/]+/", []TokenType{REGEX_LITERAL, EOF}, []string{"/[/]+/", ""}},
		{"escaped slash", `/a\/b/`, []TokenType{REGEX_LITERAL, EOF}, []string{`/a\/b/`, ""}},
		{"assignment", "x = /t/i;", []TokenType{IDENT, ASSIGN, REGEX_LITERAL, SEMICOLON, EOF}, []string{"x", "=", "/t/i", ";", ""}},
		{"division", "5 / 2", []TokenType{NUMBER, SLASH, NUMBER, EOF}, []string{"5", "/", "2", ""}},
		{"division after ident", "a / b / c", []TokenType{IDENT, SLASH, IDENT, SLASH, IDENT, EOF}, []string{"a", "/", "b", "/", "c", ""}},
		{"after paren", "(/p/)", []TokenType{LPAREN, REGEX_LITERAL, RPAREN, EOF}, []string{"(", "/p/", ")", ""}},
		{"after return", "return /p/", []TokenType{RETURN, REGEX_LITERAL, EOF}, []string{"return", "/p/", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.input)
			for i, want := range tt.expected {
				tok := l.NextToken()
				if tok.Type != want {
					t.Fatalf("token %d: expected type %q, got %q (%q)", i, want, tok.Type, tok.Literal)
				}
				if tok.Literal != tt.literals[i] {
					t.Fatalf("token %d: expected literal %q, got %q", i, tt.literals[i], tok.Literal)
				}
			}
		})
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "a\nb"},
		{`'it\'s'`, "it's"},
		{`"\x41B\u{43}"`, "ABC"},
		{"\"\U0001F600\"", "\U0001F600"},
		{`"\101"`, "A"},
		{`"\0"`, "\x00"},
		{`"\q"`, "q"},
		{"\"line\\\ncont\"", "linecont"},
		{"\"h\u00e9llo\"", "h\u00e9llo"},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != STRING {
			t.Fatalf("%s: expected STRING, got %q (%q)", tt.input, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected TokenType
		literal  string
	}{
		{"0x1F", NUMBER, "0x1F"},
		{"0b101", NUMBER, "0b101"},
		{"0o17", NUMBER, "0o17"},
		{".5", NUMBER, ".5"},
		{"1e21", NUMBER, "1e21"},
		{"2.5E-3", NUMBER, "2.5E-3"},
		{"017", NUMBER, "017"},
		{"0x", ILLEGAL, "missing digits after numeric prefix"},
		{"1e", ILLEGAL, "missing exponent digits in numeric literal"},
		{"3in", ILLEGAL, "identifier starts immediately after numeric literal"},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != tt.expected || tok.Literal != tt.literal {
			t.Errorf("%s: expected %s %q, got %s %q", tt.input, tt.expected, tt.literal, tok.Type, tok.Literal)
		}
	}
}

func TestNewlineBefore(t *testing.T) {
	l := NewLexer("a\nb /* x\n */ c d\u2028e")
	expected := []bool{false, true, true, false, true}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.NewlineBefore != want {
			t.Errorf("token %d (%q): expected NewlineBefore=%v", i, tok.Literal, want)
		}
	}
}

func TestColumnsCountRunes(t *testing.T) {
	l := NewLexer("\"\u00e9\" x")
	l.NextToken()
	tok := l.NextToken()
	if tok.Column != 5 {
		t.Errorf("expected column 5, got %d", tok.Column)
	}
}
