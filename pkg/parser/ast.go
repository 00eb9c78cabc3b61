package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/source"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
	// Tok returns the token the node starts at, used for error positions.
	Tok() lexer.Token
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	Statements []Statement
	Strict     bool // "use strict" directive prologue, or module goal
	Module     bool
	Source     *source.SourceFile
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Tok() lexer.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return lexer.Token{Line: 1, Column: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

// --- Statement Nodes ---

// DeclarationKind distinguishes var, let and const declarations.
type DeclarationKind int

const (
	DeclareVar DeclarationKind = iota
	DeclareLet
	DeclareConst
)

func (k DeclarationKind) String() string {
	switch k {
	case DeclareLet:
		return "let"
	case DeclareConst:
		return "const"
	default:
		return "var"
	}
}

// VariableDeclaration is `var|let|const a = 1, b;`.
type VariableDeclaration struct {
	Token       lexer.Token
	Kind        DeclarationKind
	Declarators []*VariableDeclarator
}

func (vd *VariableDeclaration) statementNode()       {}
func (vd *VariableDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VariableDeclaration) Tok() lexer.Token     { return vd.Token }
func (vd *VariableDeclaration) String() string {
	parts := make([]string, len(vd.Declarators))
	for i, d := range vd.Declarators {
		parts[i] = d.String()
	}
	return vd.Kind.String() + " " + strings.Join(parts, ", ") + ";"
}

// VariableDeclarator is one binding of a declaration. Target is an
// *Identifier or, for destructuring, an *ArrayLiteral or *ObjectLiteral.
type VariableDeclarator struct {
	Token  lexer.Token
	Target Expression
	Value  Expression // nil when there is no initializer
}

func (d *VariableDeclarator) TokenLiteral() string { return d.Token.Literal }
func (d *VariableDeclarator) Tok() lexer.Token     { return d.Token }
func (d *VariableDeclarator) String() string {
	if d.Value == nil {
		return d.Target.String()
	}
	return d.Target.String() + " = " + d.Value.String()
}

// FunctionDeclaration wraps a named function literal in statement position.
type FunctionDeclaration struct {
	Token    lexer.Token
	Function *FunctionLiteral
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Tok() lexer.Token     { return fd.Token }
func (fd *FunctionDeclaration) String() string       { return fd.Function.String() }

type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Tok() lexer.Token     { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String() + ";"
	}
	return ";"
}

type BlockStatement struct {
	Token      lexer.Token // '{'
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Tok() lexer.Token     { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

type EmptyStatement struct {
	Token lexer.Token
}

func (es *EmptyStatement) statementNode()       {}
func (es *EmptyStatement) TokenLiteral() string { return es.Token.Literal }
func (es *EmptyStatement) Tok() lexer.Token     { return es.Token }
func (es *EmptyStatement) String() string       { return ";" }

type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Statement
	Alternative Statement // nil without else
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Tok() lexer.Token     { return is.Token }
func (is *IfStatement) String() string {
	s := "if (" + is.Condition.String() + ") " + is.Consequence.String()
	if is.Alternative != nil {
		s += " else " + is.Alternative.String()
	}
	return s
}

type WhileStatement struct {
	Token     lexer.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Tok() lexer.Token     { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type DoWhileStatement struct {
	Token     lexer.Token
	Body      Statement
	Condition Expression
}

func (dw *DoWhileStatement) statementNode()       {}
func (dw *DoWhileStatement) TokenLiteral() string { return dw.Token.Literal }
func (dw *DoWhileStatement) Tok() lexer.Token     { return dw.Token }
func (dw *DoWhileStatement) String() string {
	return "do " + dw.Body.String() + " while (" + dw.Condition.String() + ");"
}

// ForStatement is the three-clause for loop. Init is a *VariableDeclaration,
// an Expression or nil.
type ForStatement struct {
	Token     lexer.Token
	Init      Node
	Condition Expression
	Update    Expression
	Body      Statement
}

func (fs *ForStatement) statementNode()       {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Tok() lexer.Token     { return fs.Token }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if fs.Init != nil {
		out.WriteString(strings.TrimSuffix(fs.Init.String(), ";"))
	}
	out.WriteString("; ")
	if fs.Condition != nil {
		out.WriteString(fs.Condition.String())
	}
	out.WriteString("; ")
	if fs.Update != nil {
		out.WriteString(fs.Update.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

// ForInStatement is `for (left in right) body`. Left is a single-declarator
// *VariableDeclaration or an assignment target expression.
type ForInStatement struct {
	Token lexer.Token
	Left  Node
	Right Expression
	Body  Statement
}

func (fi *ForInStatement) statementNode()       {}
func (fi *ForInStatement) TokenLiteral() string { return fi.Token.Literal }
func (fi *ForInStatement) Tok() lexer.Token     { return fi.Token }
func (fi *ForInStatement) String() string {
	return "for (" + strings.TrimSuffix(fi.Left.String(), ";") + " in " + fi.Right.String() + ") " + fi.Body.String()
}

type ForOfStatement struct {
	Token lexer.Token
	Left  Node
	Right Expression
	Body  Statement
}

func (fo *ForOfStatement) statementNode()       {}
func (fo *ForOfStatement) TokenLiteral() string { return fo.Token.Literal }
func (fo *ForOfStatement) Tok() lexer.Token     { return fo.Token }
func (fo *ForOfStatement) String() string {
	return "for (" + strings.TrimSuffix(fo.Left.String(), ";") + " of " + fo.Right.String() + ") " + fo.Body.String()
}

type BreakStatement struct {
	Token lexer.Token
	Label *Identifier
}

func (bs *BreakStatement) statementNode()       {}
func (bs *BreakStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BreakStatement) Tok() lexer.Token     { return bs.Token }
func (bs *BreakStatement) String() string {
	if bs.Label != nil {
		return "break " + bs.Label.Value + ";"
	}
	return "break;"
}

type ContinueStatement struct {
	Token lexer.Token
	Label *Identifier
}

func (cs *ContinueStatement) statementNode()       {}
func (cs *ContinueStatement) TokenLiteral() string { return cs.Token.Literal }
func (cs *ContinueStatement) Tok() lexer.Token     { return cs.Token }
func (cs *ContinueStatement) String() string {
	if cs.Label != nil {
		return "continue " + cs.Label.Value + ";"
	}
	return "continue;"
}

type ReturnStatement struct {
	Token       lexer.Token
	ReturnValue Expression // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Tok() lexer.Token     { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue != nil {
		return "return " + rs.ReturnValue.String() + ";"
	}
	return "return;"
}

type ThrowStatement struct {
	Token lexer.Token
	Value Expression
}

func (ts *ThrowStatement) statementNode()       {}
func (ts *ThrowStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *ThrowStatement) Tok() lexer.Token     { return ts.Token }
func (ts *ThrowStatement) String() string       { return "throw " + ts.Value.String() + ";" }

// TryStatement has a catch clause, a finally block, or both.
type TryStatement struct {
	Token   lexer.Token
	Body    *BlockStatement
	Catch   *CatchClause
	Finally *BlockStatement
}

func (ts *TryStatement) statementNode()       {}
func (ts *TryStatement) TokenLiteral() string { return ts.Token.Literal }
func (ts *TryStatement) Tok() lexer.Token     { return ts.Token }
func (ts *TryStatement) String() string {
	s := "try " + ts.Body.String()
	if ts.Catch != nil {
		s += " " + ts.Catch.String()
	}
	if ts.Finally != nil {
		s += " finally " + ts.Finally.String()
	}
	return s
}

// CatchClause binds Parameter (nil for `catch {}`) in Body.
type CatchClause struct {
	Token     lexer.Token
	Parameter Expression
	Body      *BlockStatement
}

func (cc *CatchClause) TokenLiteral() string { return cc.Token.Literal }
func (cc *CatchClause) Tok() lexer.Token     { return cc.Token }
func (cc *CatchClause) String() string {
	if cc.Parameter == nil {
		return "catch " + cc.Body.String()
	}
	return "catch (" + cc.Parameter.String() + ") " + cc.Body.String()
}

type SwitchStatement struct {
	Token        lexer.Token
	Discriminant Expression
	Cases        []*SwitchCase
}

func (ss *SwitchStatement) statementNode()       {}
func (ss *SwitchStatement) TokenLiteral() string { return ss.Token.Literal }
func (ss *SwitchStatement) Tok() lexer.Token     { return ss.Token }
func (ss *SwitchStatement) String() string {
	var out bytes.Buffer
	out.WriteString("switch (" + ss.Discriminant.String() + ") { ")
	for _, c := range ss.Cases {
		out.WriteString(c.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

// SwitchCase is one clause; Test is nil for default.
type SwitchCase struct {
	Token lexer.Token
	Test  Expression
	Body  []Statement
}

func (sc *SwitchCase) TokenLiteral() string { return sc.Token.Literal }
func (sc *SwitchCase) Tok() lexer.Token     { return sc.Token }
func (sc *SwitchCase) String() string {
	var out bytes.Buffer
	if sc.Test == nil {
		out.WriteString("default:")
	} else {
		out.WriteString("case " + sc.Test.String() + ":")
	}
	for _, s := range sc.Body {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	return out.String()
}

type LabeledStatement struct {
	Token     lexer.Token
	Label     *Identifier
	Statement Statement
}

func (ls *LabeledStatement) statementNode()       {}
func (ls *LabeledStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LabeledStatement) Tok() lexer.Token     { return ls.Token }
func (ls *LabeledStatement) String() string {
	return ls.Label.Value + ": " + ls.Statement.String()
}

type WithStatement struct {
	Token  lexer.Token
	Object Expression
	Body   Statement
}

func (ws *WithStatement) statementNode()       {}
func (ws *WithStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WithStatement) Tok() lexer.Token     { return ws.Token }
func (ws *WithStatement) String() string {
	return "with (" + ws.Object.String() + ") " + ws.Body.String()
}

type DebuggerStatement struct {
	Token lexer.Token
}

func (ds *DebuggerStatement) statementNode()       {}
func (ds *DebuggerStatement) TokenLiteral() string { return ds.Token.Literal }
func (ds *DebuggerStatement) Tok() lexer.Token     { return ds.Token }
func (ds *DebuggerStatement) String() string       { return "debugger;" }

// --- Expression Nodes ---

type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Tok() lexer.Token     { return i.Token }
func (i *Identifier) String() string       { return i.Value }

type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) Tok() lexer.Token     { return n.Token }
func (n *NumberLiteral) String() string       { return n.Token.Literal }

type StringLiteral struct {
	Token lexer.Token
	Value string
	Raw   string // source text including quotes
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) Tok() lexer.Token     { return s.Token }
func (s *StringLiteral) String() string       { return strconv.Quote(s.Value) }

type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) Tok() lexer.Token     { return b.Token }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }

type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) Tok() lexer.Token     { return nl.Token }
func (nl *NullLiteral) String() string       { return "null" }

type RegexLiteral struct {
	Token   lexer.Token
	Pattern string
	Flags   string
}

func (rl *RegexLiteral) expressionNode()      {}
func (rl *RegexLiteral) TokenLiteral() string { return rl.Token.Literal }
func (rl *RegexLiteral) Tok() lexer.Token     { return rl.Token }
func (rl *RegexLiteral) String() string       { return "/" + rl.Pattern + "/" + rl.Flags }

type ThisExpression struct {
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) Tok() lexer.Token     { return te.Token }
func (te *ThisExpression) String() string       { return "this" }

type SuperExpression struct {
	Token lexer.Token
}

func (se *SuperExpression) expressionNode()      {}
func (se *SuperExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SuperExpression) Tok() lexer.Token     { return se.Token }
func (se *SuperExpression) String() string       { return "super" }

// ArrayLiteral elements are nil for holes.
type ArrayLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) Tok() lexer.Token     { return al.Token }
func (al *ArrayLiteral) String() string {
	parts := make([]string, len(al.Elements))
	for i, e := range al.Elements {
		if e != nil {
			parts[i] = e.String()
		}
	}
	s := "[" + strings.Join(parts, ", ")
	if n := len(al.Elements); n > 0 && al.Elements[n-1] == nil {
		s += ","
	}
	return s + "]"
}

// PropertyKind distinguishes data properties from accessors.
type PropertyKind int

const (
	PropertyInit PropertyKind = iota
	PropertyGet
	PropertySet
)

// Property is one member of an object literal. Key is an *Identifier,
// *StringLiteral or *NumberLiteral, or any expression when Computed.
// A spread member has Kind PropertyInit, nil Key and a *SpreadElement Value.
type Property struct {
	Token     lexer.Token
	Kind      PropertyKind
	Key       Expression
	Computed  bool
	Shorthand bool
	Method    bool
	Value     Expression
}

func (pr *Property) TokenLiteral() string { return pr.Token.Literal }
func (pr *Property) Tok() lexer.Token     { return pr.Token }
func (pr *Property) String() string {
	if pr.Key == nil {
		return pr.Value.String()
	}
	key := pr.Key.String()
	if pr.Computed {
		key = "[" + key + "]"
	}
	switch {
	case pr.Kind == PropertyGet:
		return "get " + key + "()"
	case pr.Kind == PropertySet:
		return "set " + key + "()"
	case pr.Shorthand:
		return key
	}
	return key + ": " + pr.Value.String()
}

type ObjectLiteral struct {
	Token      lexer.Token
	Properties []*Property
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) Tok() lexer.Token     { return ol.Token }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Properties))
	for i, p := range ol.Properties {
		parts[i] = p.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FunctionLiteral is a function expression, or the function of a
// FunctionDeclaration. Parameters are *Identifier, or patterns, defaults
// (*AssignmentExpression) and *RestElement which the lowering rejects.
type FunctionLiteral struct {
	Token      lexer.Token
	Name       *Identifier
	Parameters []Expression
	Body       *BlockStatement
	Strict     bool // body starts with a "use strict" directive
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Tok() lexer.Token     { return fl.Token }
func (fl *FunctionLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("function")
	if fl.Name != nil {
		out.WriteString(" " + fl.Name.Value)
	}
	out.WriteString("(")
	out.WriteString(joinExpressions(fl.Parameters))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	return out.String()
}

// ArrowFunctionLiteral Body is a *BlockStatement or an Expression.
type ArrowFunctionLiteral struct {
	Token      lexer.Token
	Parameters []Expression
	Body       Node
}

func (af *ArrowFunctionLiteral) expressionNode()      {}
func (af *ArrowFunctionLiteral) TokenLiteral() string { return af.Token.Literal }
func (af *ArrowFunctionLiteral) Tok() lexer.Token     { return af.Token }
func (af *ArrowFunctionLiteral) String() string {
	return "(" + joinExpressions(af.Parameters) + ") => " + af.Body.String()
}

// RestElement is `...x` in a parameter list or pattern.
type RestElement struct {
	Token    lexer.Token
	Argument Expression
}

func (re *RestElement) expressionNode()      {}
func (re *RestElement) TokenLiteral() string { return re.Token.Literal }
func (re *RestElement) Tok() lexer.Token     { return re.Token }
func (re *RestElement) String() string       { return "..." + re.Argument.String() }

// SpreadElement is `...x` in call arguments, array and object literals.
type SpreadElement struct {
	Token    lexer.Token
	Argument Expression
}

func (se *SpreadElement) expressionNode()      {}
func (se *SpreadElement) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadElement) Tok() lexer.Token     { return se.Token }
func (se *SpreadElement) String() string       { return "..." + se.Argument.String() }

// PrefixExpression covers ! - + ~ typeof void delete.
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Tok() lexer.Token     { return pe.Token }
func (pe *PrefixExpression) String() string {
	op := pe.Operator
	if len(op) > 1 {
		op += " "
	}
	return "(" + op + pe.Right.String() + ")"
}

// UpdateExpression is ++x, --x, x++ or x--.
type UpdateExpression struct {
	Token    lexer.Token
	Operator string
	Prefix   bool
	Argument Expression
}

func (ue *UpdateExpression) expressionNode()      {}
func (ue *UpdateExpression) TokenLiteral() string { return ue.Token.Literal }
func (ue *UpdateExpression) Tok() lexer.Token     { return ue.Token }
func (ue *UpdateExpression) String() string {
	if ue.Prefix {
		return "(" + ue.Operator + ue.Argument.String() + ")"
	}
	return "(" + ue.Argument.String() + ue.Operator + ")"
}

// InfixExpression covers every binary operator including && and ||.
type InfixExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Tok() lexer.Token     { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// AssignmentExpression is `left op value` for = and the compound operators.
type AssignmentExpression struct {
	Token    lexer.Token
	Operator string
	Left     Expression
	Value    Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) Tok() lexer.Token     { return ae.Token }
func (ae *AssignmentExpression) String() string {
	return "(" + ae.Left.String() + " " + ae.Operator + " " + ae.Value.String() + ")"
}

type TernaryExpression struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()      {}
func (te *TernaryExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TernaryExpression) Tok() lexer.Token     { return te.Token }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

type CallExpression struct {
	Token     lexer.Token // '('
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Tok() lexer.Token     { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}

type NewExpression struct {
	Token       lexer.Token
	Constructor Expression
	Arguments   []Expression
}

func (ne *NewExpression) expressionNode()      {}
func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) Tok() lexer.Token     { return ne.Token }
func (ne *NewExpression) String() string {
	return "new " + ne.Constructor.String() + "(" + joinExpressions(ne.Arguments) + ")"
}

// MemberExpression is `object.property`.
type MemberExpression struct {
	Token    lexer.Token // '.'
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) Tok() lexer.Token     { return me.Token }
func (me *MemberExpression) String() string {
	return me.Object.String() + "." + me.Property.Value
}

// IndexExpression is `object[index]`.
type IndexExpression struct {
	Token  lexer.Token // '['
	Object Expression
	Index  Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) Tok() lexer.Token     { return ie.Token }
func (ie *IndexExpression) String() string {
	return ie.Object.String() + "[" + ie.Index.String() + "]"
}

// SequenceExpression is the comma operator.
type SequenceExpression struct {
	Token       lexer.Token
	Expressions []Expression
}

func (se *SequenceExpression) expressionNode()      {}
func (se *SequenceExpression) TokenLiteral() string { return se.Token.Literal }
func (se *SequenceExpression) Tok() lexer.Token     { return se.Token }
func (se *SequenceExpression) String() string {
	return "(" + joinExpressions(se.Expressions) + ")"
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		if e != nil {
			parts[i] = e.String()
		}
	}
	return strings.Join(parts, ", ")
}
