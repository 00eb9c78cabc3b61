package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/nooga/explicate/pkg/source"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // Lexeme; for STRING the cooked value
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number (rune index) where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
	// NewlineBefore is set when a line terminator separates this token from
	// the previous one. The parser uses it for automatic semicolon insertion.
	NewlineBefore bool
}

// --- Token Types ---
const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT         TokenType = "IDENT"
	NUMBER        TokenType = "NUMBER"
	STRING        TokenType = "STRING"
	REGEX_LITERAL TokenType = "REGEX_LITERAL"

	// Operators
	ASSIGN      TokenType = "="
	PLUS        TokenType = "+"
	MINUS       TokenType = "-"
	BANG        TokenType = "!"
	TILDE       TokenType = "~"
	ASTERISK    TokenType = "*"
	EXPONENT    TokenType = "**"
	SLASH       TokenType = "/"
	PERCENT     TokenType = "%"
	LT          TokenType = "<"
	GT          TokenType = ">"
	LE          TokenType = "<="
	GE          TokenType = ">="
	EQ          TokenType = "=="
	NOT_EQ      TokenType = "!="
	STRICT_EQ   TokenType = "==="
	STRICT_NE   TokenType = "!=="
	BIT_AND     TokenType = "&"
	BIT_OR      TokenType = "|"
	BIT_XOR     TokenType = "^"
	LEFT_SHIFT  TokenType = "<<"
	RIGHT_SHIFT TokenType = ">>"
	URSHIFT     TokenType = ">>>"
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"
	INC         TokenType = "++"
	DEC         TokenType = "--"
	QUESTION    TokenType = "?"
	DOT         TokenType = "."
	SPREAD      TokenType = "..."
	ARROW       TokenType = "=>"

	// Compound assignment
	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	EXPONENT_ASSIGN TokenType = "**="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="
	LSHIFT_ASSIGN   TokenType = "<<="
	RSHIFT_ASSIGN   TokenType = ">>="
	URSHIFT_ASSIGN  TokenType = ">>>="
	AND_ASSIGN      TokenType = "&="
	OR_ASSIGN       TokenType = "|="
	XOR_ASSIGN      TokenType = "^="

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	VAR        TokenType = "VAR"
	LET        TokenType = "LET"
	CONST      TokenType = "CONST"
	FUNCTION   TokenType = "FUNCTION"
	RETURN     TokenType = "RETURN"
	IF         TokenType = "IF"
	ELSE       TokenType = "ELSE"
	WHILE      TokenType = "WHILE"
	DO         TokenType = "DO"
	FOR        TokenType = "FOR"
	IN         TokenType = "IN"
	BREAK      TokenType = "BREAK"
	CONTINUE   TokenType = "CONTINUE"
	SWITCH     TokenType = "SWITCH"
	CASE       TokenType = "CASE"
	DEFAULT    TokenType = "DEFAULT"
	TRY        TokenType = "TRY"
	CATCH      TokenType = "CATCH"
	FINALLY    TokenType = "FINALLY"
	THROW      TokenType = "THROW"
	NEW        TokenType = "NEW"
	DELETE     TokenType = "DELETE"
	TYPEOF     TokenType = "TYPEOF"
	VOID       TokenType = "VOID"
	INSTANCEOF TokenType = "INSTANCEOF"
	THIS       TokenType = "THIS"
	NULL       TokenType = "NULL"
	TRUE       TokenType = "TRUE"
	FALSE      TokenType = "FALSE"
	WITH       TokenType = "WITH"
	DEBUGGER   TokenType = "DEBUGGER"
	SUPER      TokenType = "SUPER"

	// Reserved words the parser rejects.
	CLASS   TokenType = "CLASS"
	EXTENDS TokenType = "EXTENDS"
	IMPORT  TokenType = "IMPORT"
	EXPORT  TokenType = "EXPORT"
	ENUM    TokenType = "ENUM"
)

var keywords = map[string]TokenType{
	"var":        VAR,
	"let":        LET,
	"const":      CONST,
	"function":   FUNCTION,
	"return":     RETURN,
	"if":         IF,
	"else":       ELSE,
	"while":      WHILE,
	"do":         DO,
	"for":        FOR,
	"in":         IN,
	"break":      BREAK,
	"continue":   CONTINUE,
	"switch":     SWITCH,
	"case":       CASE,
	"default":    DEFAULT,
	"try":        TRY,
	"catch":      CATCH,
	"finally":    FINALLY,
	"throw":      THROW,
	"new":        NEW,
	"delete":     DELETE,
	"typeof":     TYPEOF,
	"void":       VOID,
	"instanceof": INSTANCEOF,
	"this":       THIS,
	"null":       NULL,
	"true":       TRUE,
	"false":      FALSE,
	"with":       WITH,
	"debugger":   DEBUGGER,
	"super":      SUPER,
	"class":      CLASS,
	"extends":    EXTENDS,
	"import":     IMPORT,
	"export":     EXPORT,
	"enum":       ENUM,
}

// punctuators is ordered longest first so the first prefix match wins.
var punctuators = []TokenType{
	URSHIFT_ASSIGN,
	STRICT_EQ, STRICT_NE, URSHIFT, SPREAD, EXPONENT_ASSIGN, LSHIFT_ASSIGN, RSHIFT_ASSIGN,
	EQ, NOT_EQ, LE, GE, LOGICAL_AND, LOGICAL_OR, INC, DEC, ARROW, EXPONENT,
	LEFT_SHIFT, RIGHT_SHIFT, PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN,
	PERCENT_ASSIGN, AND_ASSIGN, OR_ASSIGN, XOR_ASSIGN,
	ASSIGN, PLUS, MINUS, BANG, TILDE, ASTERISK, SLASH, PERCENT, LT, GT, BIT_AND, BIT_OR,
	BIT_XOR, QUESTION, DOT, COMMA, SEMICOLON, COLON, LPAREN, RPAREN, LBRACE, RBRACE,
	LBRACKET, RBRACKET,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// IsKeyword reports whether t is a reserved word. Reserved words are valid
// property names after '.' and as object literal keys.
func IsKeyword(t TokenType) bool {
	for _, kw := range keywords {
		if kw == t {
			return true
		}
	}
	return false
}

const debugLexer = false

func debugPrintf(format string, args ...interface{}) {
	if debugLexer {
		fmt.Printf("[Lexer] "+format, args...)
	}
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	position     int  // byte offset of ch
	readPosition int  // byte offset after ch
	ch           byte // current byte under examination
	line         int
	column       int

	// prev is the type of the last token returned, used to decide whether a
	// '/' starts a regular expression or is the division operator.
	prev TokenType

	source *source.SourceFile
}

// NewLexer creates a new Lexer over anonymous input.
func NewLexer(input string) *Lexer {
	return NewLexerWithSource(source.NewEvalSource(input))
}

// NewLexerWithSource creates a Lexer whose tokens are reported against src.
func NewLexerWithSource(src *source.SourceFile) *Lexer {
	l := &Lexer{input: src.Content, line: 1, prev: SEMICOLON, source: src}
	l.readChar()
	return l
}

// GetSource returns the file being scanned.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.source
}

// Slice returns the raw input between two byte offsets.
func (l *Lexer) Slice(start, end int) string {
	if start < 0 || end > len(l.input) || start > end {
		return ""
	}
	return l.input[start:end]
}

// readChar advances one byte, keeping line and column (in runes) current.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	if l.ch&0xC0 != 0x80 {
		l.column++
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// currentRune decodes the rune starting at the current position.
func (l *Lexer) currentRune() (rune, int) {
	if l.atEOF() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.input[l.position:])
}

func (l *Lexer) advanceRune() {
	_, size := l.currentRune()
	for i := 0; i < size; i++ {
		l.readChar()
	}
}

// skipTrivia consumes whitespace and comments. It reports whether a line
// terminator was crossed and returns an error message for an unterminated
// block comment.
func (l *Lexer) skipTrivia() (newline bool, errMsg string) {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\v', '\f':
			l.readChar()
		case '\n', '\r':
			newline = true
			l.readChar()
		case '/':
			switch l.peekChar() {
			case '/':
				l.skipLineComment()
			case '*':
				crossed, ok := l.skipBlockComment()
				if !ok {
					return newline, "unterminated multiline comment"
				}
				newline = newline || crossed
			default:
				return newline, ""
			}
		default:
			if l.ch < utf8.RuneSelf {
				return newline, ""
			}
			r, _ := l.currentRune()
			switch {
			case r == 0x2028 || r == 0x2029:
				newline = true
			case r == 0xFEFF || r == 0xA0 || unicode.Is(unicode.Zs, r):
			default:
				return newline, ""
			}
			l.advanceRune()
		}
	}
	return newline, ""
}

func (l *Lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' && l.ch != '\r' {
		if r, _ := l.currentRune(); r == 0x2028 || r == 0x2029 {
			return
		}
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() (newline bool, ok bool) {
	l.readChar() // '/'
	l.readChar() // '*'
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return newline, true
		}
		if l.ch == '\n' || l.ch == '\r' {
			newline = true
		}
		l.readChar()
	}
	return newline, false
}

// regexAllowed reports whether a '/' in the current context starts a
// regular expression literal.
func (l *Lexer) regexAllowed() bool {
	switch l.prev {
	case IDENT, NUMBER, STRING, REGEX_LITERAL, RPAREN, RBRACKET, THIS, NULL, TRUE, FALSE, SUPER, INC, DEC:
		return false
	}
	return true
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	l.prev = tok.Type
	debugPrintf("%s %q at %d:%d\n", tok.Type, tok.Literal, tok.Line, tok.Column)
	return tok
}

func (l *Lexer) scan() Token {
	newline, errMsg := l.skipTrivia()

	startLine := l.line
	startCol := l.column
	startPos := l.position

	mk := func(t TokenType, literal string) Token {
		return Token{Type: t, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position, NewlineBefore: newline}
	}

	if errMsg != "" {
		return mk(ILLEGAL, errMsg)
	}
	if l.atEOF() {
		return mk(EOF, "")
	}

	switch {
	case l.ch == '"' || l.ch == '\'':
		value, msg := l.readString(l.ch)
		if msg != "" {
			return mk(ILLEGAL, msg)
		}
		return mk(STRING, value)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		literal, msg := l.readNumber()
		if msg != "" {
			return mk(ILLEGAL, msg)
		}
		return mk(NUMBER, literal)
	case l.ch == '/' && l.regexAllowed():
		literal, msg := l.readRegex()
		if msg != "" {
			return mk(ILLEGAL, msg)
		}
		return mk(REGEX_LITERAL, literal)
	case isIdentifierStart(l):
		ident := l.readIdentifier()
		return mk(LookupIdent(ident), ident)
	}

	rest := l.input[l.position:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, string(p)) {
			for i := 0; i < len(p); i++ {
				l.readChar()
			}
			return mk(p, string(p))
		}
	}

	r, _ := l.currentRune()
	l.advanceRune()
	return mk(ILLEGAL, fmt.Sprintf("unexpected character %q", r))
}

func isIdentifierStart(l *Lexer) bool {
	if l.ch < utf8.RuneSelf {
		return isLetter(l.ch)
	}
	r, _ := l.currentRune()
	return unicode.IsLetter(r)
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEOF() {
		if l.ch < utf8.RuneSelf {
			if !isLetter(l.ch) && !isDigit(l.ch) {
				break
			}
			l.readChar()
			continue
		}
		r, _ := l.currentRune()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r) && !unicode.Is(unicode.Pc, r) {
			break
		}
		l.advanceRune()
	}
	return l.input[start:l.position]
}

// readNumber scans a numeric literal and returns its source text. The parser
// converts the text to a value.
func (l *Lexer) readNumber() (string, string) {
	start := l.position
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			base := 16
			switch l.peekChar() {
			case 'o', 'O':
				base = 8
			case 'b', 'B':
				base = 2
			}
			l.readChar()
			l.readChar()
			digits := l.position
			for isDigitForBase(l.ch, base) {
				l.readChar()
			}
			if l.position == digits {
				return "", "missing digits after numeric prefix"
			}
			return l.input[start:l.position], l.checkNumberEnd()
		}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if !isDigit(l.ch) {
			return "", "missing exponent digits in numeric literal"
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position], l.checkNumberEnd()
}

// checkNumberEnd rejects literals immediately followed by an identifier, as in 3in.
func (l *Lexer) checkNumberEnd() string {
	if !l.atEOF() && (isIdentifierStart(l) || isDigit(l.ch)) {
		return "identifier starts immediately after numeric literal"
	}
	return ""
}

// readString scans a quoted string and returns its cooked value.
func (l *Lexer) readString(quote byte) (string, string) {
	var out strings.Builder
	l.readChar() // opening quote
	for {
		switch {
		case l.atEOF() || l.ch == '\n' || l.ch == '\r':
			return "", "unterminated string literal"
		case l.ch == quote:
			l.readChar()
			return out.String(), ""
		case l.ch == '\\':
			l.readChar()
			if msg := l.readEscape(&out); msg != "" {
				return "", msg
			}
		default:
			start := l.position
			l.advanceRune()
			out.WriteString(l.input[start:l.position])
		}
	}
}

// readEscape decodes the escape sequence after a backslash.
func (l *Lexer) readEscape(out *strings.Builder) string {
	ch := l.ch
	switch ch {
	case 'n':
		out.WriteByte('\n')
	case 't':
		out.WriteByte('\t')
	case 'r':
		out.WriteByte('\r')
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case 'v':
		out.WriteByte('\v')
	case '\r':
		l.readChar()
		if l.ch == '\n' {
			l.readChar()
		}
		return ""
	case '\n':
	case 'x':
		l.readChar()
		v, ok := l.readHex(2)
		if !ok {
			return "invalid hexadecimal escape sequence"
		}
		out.WriteRune(rune(v))
		return ""
	case 'u':
		l.readChar()
		r, msg := l.readUnicodeEscape()
		if msg != "" {
			return msg
		}
		// A high surrogate followed by \uDC00-\uDFFF combines into one code point.
		if utf16.IsSurrogate(r) && r < 0xDC00 && l.ch == '\\' && l.peekChar() == 'u' {
			save := *l
			l.readChar()
			l.readChar()
			lo, msg := l.readUnicodeEscape()
			if msg == "" && lo >= 0xDC00 && lo <= 0xDFFF {
				out.WriteRune(utf16.DecodeRune(r, lo))
				return ""
			}
			*l = save
		}
		out.WriteRune(r)
		return ""
	case '0', '1', '2', '3', '4', '5', '6', '7':
		// Legacy octal escape, \0 when not followed by a digit.
		v := 0
		for i := 0; i < 3 && l.ch >= '0' && l.ch <= '7'; i++ {
			next := v*8 + int(l.ch-'0')
			if next > 0xFF {
				break
			}
			v = next
			l.readChar()
		}
		out.WriteRune(rune(v))
		return ""
	default:
		if l.atEOF() {
			return "unterminated string literal"
		}
		start := l.position
		l.advanceRune()
		r, _ := utf8.DecodeRuneInString(l.input[start:l.position])
		if r != 0x2028 && r != 0x2029 {
			out.WriteString(l.input[start:l.position])
		}
		return ""
	}
	l.readChar()
	return ""
}

func (l *Lexer) readUnicodeEscape() (rune, string) {
	if l.ch == '{' {
		l.readChar()
		v := 0
		digits := 0
		for isHexDigit(l.ch) {
			v = v*16 + hexValue(l.ch)
			if v > unicode.MaxRune {
				return 0, "undefined Unicode code-point"
			}
			digits++
			l.readChar()
		}
		if l.ch != '}' || digits == 0 {
			return 0, "invalid Unicode escape sequence"
		}
		l.readChar()
		return rune(v), ""
	}
	v, ok := l.readHex(4)
	if !ok {
		return 0, "invalid Unicode escape sequence"
	}
	return rune(v), ""
}

func (l *Lexer) readHex(n int) (int, bool) {
	v := 0
	for i := 0; i < n; i++ {
		if !isHexDigit(l.ch) {
			return 0, false
		}
		v = v*16 + hexValue(l.ch)
		l.readChar()
	}
	return v, true
}

// readRegex scans /body/flags and returns the whole lexeme.
func (l *Lexer) readRegex() (string, string) {
	start := l.position
	l.readChar() // opening '/'
	inClass := false
	for {
		if l.atEOF() || l.ch == '\n' || l.ch == '\r' {
			return "", "unterminated regular expression literal"
		}
		switch l.ch {
		case '\\':
			l.readChar()
			if l.atEOF() || l.ch == '\n' || l.ch == '\r' {
				return "", "unterminated regular expression literal"
			}
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				l.readChar()
				for !l.atEOF() && (isLetter(l.ch) || isDigit(l.ch)) {
					l.readChar()
				}
				return l.input[start:l.position], ""
			}
		}
		l.advanceRune()
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func hexValue(ch byte) int {
	switch {
	case isDigit(ch):
		return int(ch - '0')
	case 'a' <= ch && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

func isDigitForBase(ch byte, base int) bool {
	switch base {
	case 2:
		return ch == '0' || ch == '1'
	case 8:
		return '0' <= ch && ch <= '7'
	case 16:
		return isHexDigit(ch)
	default:
		return isDigit(ch)
	}
}
