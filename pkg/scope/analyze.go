package scope

import (
	"fmt"

	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/parser"
)

const debugScope = false

func debugPrintf(format string, args ...interface{}) {
	if debugScope {
		fmt.Printf("[Scope] "+format+"\n", args...)
	}
}

type analyzer struct {
	lookup  *Lookup
	current *Scope
	pending []*Reference
	// block-level function declarations awaiting the Annex B var binding
	annexB []annexCandidate
	errors []errors.Error
}

type annexCandidate struct {
	decl  *parser.FunctionDeclaration
	block *Scope
}

// Analyze builds the scope tree of program, resolves every reference and
// reports the early errors that depend on bindings.
func Analyze(program *parser.Program) (*Lookup, []errors.Error) {
	a := &analyzer{
		lookup: &Lookup{
			program:    program,
			scopes:     make(map[parser.Node]*Scope),
			declared:   make(map[*parser.Identifier]*Variable),
			referenced: make(map[*parser.Identifier]*Variable),
			functions:  make(map[*parser.FunctionDeclaration]functionBinding),
		},
	}
	if program.Module {
		a.lookup.global = newScope(GlobalScope, nil, nil, true)
		a.current = newScope(ModuleScope, program, a.lookup.global, true)
	} else {
		a.lookup.global = newScope(GlobalScope, program, nil, program.Strict)
		a.current = a.lookup.global
	}
	a.lookup.scopes[program] = a.current

	a.hoistFunctions(program.Statements)
	a.statements(program.Statements)
	a.bindAnnexB()
	a.resolve()
	return a.lookup, a.errors
}

func (a *analyzer) errorAt(node parser.Node, format string, args ...interface{}) {
	a.errors = append(a.errors, &errors.SyntaxError{
		Position: parser.PositionOf(node, a.lookup.program.Source),
		Msg:      fmt.Sprintf(format, args...),
	})
}

func (a *analyzer) push(kind Kind, node parser.Node, strict bool) *Scope {
	s := newScope(kind, node, a.current, strict || a.current.Strict)
	if node != nil {
		a.lookup.scopes[node] = s
	}
	a.current = s
	return s
}

func (a *analyzer) pop() { a.current = a.current.Parent }

// --- Declarations ---

func (a *analyzer) declareIn(s *Scope, id *parser.Identifier, kind DeclarationKind) *Variable {
	v := s.declare(id.Value)
	v.Declarations = append(v.Declarations, Declaration{Kind: kind, Node: id})
	if _, seen := a.lookup.declared[id]; !seen {
		a.lookup.declared[id] = v
	}
	debugPrintf("declare %s as %s in %s scope", id.Value, kind, s.Kind)
	return v
}

func (a *analyzer) declareVar(id *parser.Identifier) *Variable {
	for s := a.current; ; s = s.Parent {
		if v := s.byName[id.Value]; v != nil && hasLexical(v, s) {
			a.errorAt(id, "Identifier '%s' has already been declared", id.Value)
		}
		s.varNames[id.Value] = true
		if s.IsVariableScope() {
			v := a.declareIn(s, id, DeclaredVar)
			if s.Kind == FunctionScope && id.Value == "arguments" && !s.arrow && onlyVars(v) {
				s.arguments = v
			}
			return v
		}
	}
}

func (a *analyzer) declareLexical(id *parser.Identifier, kind DeclarationKind) *Variable {
	s := a.current
	if v := s.byName[id.Value]; (v != nil && len(v.Declarations) > 0) || s.varNames[id.Value] {
		a.errorAt(id, "Identifier '%s' has already been declared", id.Value)
	}
	if s.arguments != nil && id.Value == "arguments" {
		s.arguments = nil
	}
	return a.declareIn(s, id, kind)
}

// hasLexical reports whether v has a declaration that a var of the same name
// may not coexist with in scope s.
func hasLexical(v *Variable, s *Scope) bool {
	for _, d := range v.Declarations {
		if d.Kind.IsLexical() {
			return true
		}
		if d.Kind == DeclaredFunction && !s.IsVariableScope() {
			return true
		}
	}
	return false
}

func onlyVars(v *Variable) bool {
	for _, d := range v.Declarations {
		if d.Kind != DeclaredVar {
			return false
		}
	}
	return true
}

func (a *analyzer) declarePattern(target parser.Expression, declare func(*parser.Identifier)) {
	switch t := target.(type) {
	case *parser.Identifier:
		declare(t)
	case *parser.ArrayLiteral:
		for _, el := range t.Elements {
			if el != nil {
				a.declarePattern(el, declare)
			}
		}
	case *parser.ObjectLiteral:
		for _, p := range t.Properties {
			if p.Computed && p.Key != nil {
				a.expression(p.Key)
			}
			a.declarePattern(p.Value, declare)
		}
	case *parser.RestElement:
		a.declarePattern(t.Argument, declare)
	case *parser.SpreadElement:
		a.declarePattern(t.Argument, declare)
	case *parser.AssignmentExpression:
		a.declarePattern(t.Left, declare)
		a.expression(t.Value)
	}
}

// hoistFunctions declares the function declarations that appear directly in
// a statement list, so they are visible before the list is walked.
func (a *analyzer) hoistFunctions(stmts []parser.Statement) {
	for _, stmt := range stmts {
		decl, ok := stmt.(*parser.FunctionDeclaration)
		if !ok || decl.Function.Name == nil {
			continue
		}
		a.hoistFunction(decl)
	}
}

func (a *analyzer) hoistFunction(decl *parser.FunctionDeclaration) {
	id := decl.Function.Name
	s := a.current
	if s.IsVariableScope() {
		if v := s.byName[id.Value]; v != nil && hasLexical(v, s) {
			a.errorAt(id, "Identifier '%s' has already been declared", id.Value)
		}
		v := a.declareIn(s, id, DeclaredFunction)
		if s.arguments != nil && id.Value == "arguments" {
			s.arguments = nil
		}
		a.lookup.functions[decl] = functionBinding{hoisted: v}
		return
	}
	if v := s.byName[id.Value]; v != nil {
		duplicateFunction := onlyFunctions(v) && !s.Strict
		if !duplicateFunction {
			a.errorAt(id, "Identifier '%s' has already been declared", id.Value)
		}
	} else if s.varNames[id.Value] {
		a.errorAt(id, "Identifier '%s' has already been declared", id.Value)
	}
	v := a.declareIn(s, id, DeclaredFunction)
	a.lookup.functions[decl] = functionBinding{blockScoped: v}
	if !s.Strict {
		a.annexB = append(a.annexB, annexCandidate{decl: decl, block: s})
	}
}

func onlyFunctions(v *Variable) bool {
	for _, d := range v.Declarations {
		if d.Kind != DeclaredFunction {
			return false
		}
	}
	return true
}

// bindAnnexB gives sloppy block-level function declarations their hoisted
// var binding, unless a lexical declaration or a parameter of the same name
// sits between the block and the enclosing function.
func (a *analyzer) bindAnnexB() {
	for _, c := range a.annexB {
		id := c.decl.Function.Name
		target := c.block.VariableScope()
		blocked := false
		for s := c.block.Parent; s != nil && !blocked; s = s.Parent {
			if v := s.byName[id.Value]; v != nil {
				for _, d := range v.Declarations {
					if d.Kind.IsLexical() || d.Kind == DeclaredParameter || d.Kind == DeclaredCatchParameter {
						blocked = true
					}
					if d.Kind == DeclaredFunction && !s.IsVariableScope() {
						blocked = true
					}
				}
			}
			if s == target {
				break
			}
		}
		if blocked {
			continue
		}
		v := target.declare(id.Value)
		v.Declarations = append(v.Declarations, Declaration{Kind: DeclaredVar, Node: id})
		b := a.lookup.functions[c.decl]
		b.hoisted = v
		a.lookup.functions[c.decl] = b
		debugPrintf("annex B binding for %s in %s scope", id.Value, target.Kind)
	}
}

// --- References ---

func (a *analyzer) reference(id *parser.Identifier, access Access) {
	a.pending = append(a.pending, &Reference{Node: id, Access: access, Scope: a.current})
}

func (a *analyzer) resolve() {
	for _, ref := range a.pending {
		name := ref.Node.Value
		var found *Variable
		for s := ref.Scope; s != nil; s = s.Parent {
			if v := s.byName[name]; v != nil && (len(v.Declarations) > 0 || s == a.lookup.global) {
				found = v
				break
			}
			if name == "arguments" && s.Kind == FunctionScope && !s.arrow {
				if s.arguments == nil {
					s.arguments = s.declare(name)
				}
				found = s.arguments
				break
			}
		}
		if found == nil {
			found = a.lookup.global.declare(name)
		}
		found.References = append(found.References, ref)
		a.lookup.referenced[ref.Node] = found
		for s := ref.Scope; s != nil && s != found.Scope; s = s.Parent {
			s.Through = append(s.Through, ref)
		}
	}
}

// --- Statements ---

func (a *analyzer) statements(stmts []parser.Statement) {
	for _, stmt := range stmts {
		a.statement(stmt)
	}
}

func (a *analyzer) statement(stmt parser.Statement) {
	switch s := stmt.(type) {
	case nil:
	case *parser.ExpressionStatement:
		a.expression(s.Expression)
	case *parser.VariableDeclaration:
		a.variableDeclaration(s)
	case *parser.FunctionDeclaration:
		if _, hoisted := a.lookup.functions[s]; !hoisted && s.Function.Name != nil {
			a.hoistFunction(s)
		}
		a.function(s.Function, false)
	case *parser.BlockStatement:
		a.push(BlockScope, s, false)
		a.hoistFunctions(s.Statements)
		a.statements(s.Statements)
		a.pop()
	case *parser.EmptyStatement, *parser.DebuggerStatement:
	case *parser.IfStatement:
		a.expression(s.Condition)
		a.statement(s.Consequence)
		a.statement(s.Alternative)
	case *parser.WhileStatement:
		a.expression(s.Condition)
		a.statement(s.Body)
	case *parser.DoWhileStatement:
		a.statement(s.Body)
		a.expression(s.Condition)
	case *parser.ForStatement:
		a.push(BlockScope, s, false)
		switch init := s.Init.(type) {
		case nil:
		case *parser.VariableDeclaration:
			a.variableDeclaration(init)
		case parser.Expression:
			a.expression(init)
		}
		a.expression(s.Condition)
		a.expression(s.Update)
		a.statement(s.Body)
		a.pop()
	case *parser.ForInStatement:
		a.forInOf(s, s.Left, s.Right, s.Body)
	case *parser.ForOfStatement:
		a.forInOf(s, s.Left, s.Right, s.Body)
	case *parser.BreakStatement, *parser.ContinueStatement:
	case *parser.ReturnStatement:
		a.expression(s.ReturnValue)
	case *parser.ThrowStatement:
		a.expression(s.Value)
	case *parser.TryStatement:
		a.statement(s.Body)
		if s.Catch != nil {
			a.push(CatchScope, s.Catch, false)
			if s.Catch.Parameter != nil {
				a.declarePattern(s.Catch.Parameter, func(id *parser.Identifier) {
					if v := a.current.byName[id.Value]; v != nil {
						a.errorAt(id, "Identifier '%s' has already been declared", id.Value)
					}
					a.declareIn(a.current, id, DeclaredCatchParameter)
				})
			}
			a.statement(s.Catch.Body)
			a.pop()
		}
		if s.Finally != nil {
			a.statement(s.Finally)
		}
	case *parser.SwitchStatement:
		a.expression(s.Discriminant)
		a.push(BlockScope, s, false)
		for _, c := range s.Cases {
			a.hoistFunctions(c.Body)
		}
		for _, c := range s.Cases {
			a.expression(c.Test)
			a.statements(c.Body)
		}
		a.pop()
	case *parser.LabeledStatement:
		a.statement(s.Statement)
	case *parser.WithStatement:
		if a.current.Strict {
			a.errorAt(s, "Strict mode code may not include a with statement")
		}
		a.expression(s.Object)
		a.push(WithScope, s, false)
		a.statement(s.Body)
		a.pop()
	default:
		debugPrintf("unhandled statement %T", stmt)
	}
}

func (a *analyzer) variableDeclaration(decl *parser.VariableDeclaration) {
	for _, d := range decl.Declarators {
		switch decl.Kind {
		case parser.DeclareVar:
			a.declarePattern(d.Target, func(id *parser.Identifier) { a.declareVar(id) })
		case parser.DeclareLet:
			a.declarePattern(d.Target, func(id *parser.Identifier) { a.declareLexical(id, DeclaredLet) })
		case parser.DeclareConst:
			a.declarePattern(d.Target, func(id *parser.Identifier) { a.declareLexical(id, DeclaredConst) })
		}
		a.expression(d.Value)
	}
}

func (a *analyzer) forInOf(node parser.Node, left parser.Node, right parser.Expression, body parser.Statement) {
	a.push(BlockScope, node, false)
	switch l := left.(type) {
	case *parser.VariableDeclaration:
		a.variableDeclaration(l)
	case parser.Expression:
		a.target(l, Write)
	}
	a.expression(right)
	a.statement(body)
	a.pop()
}

// --- Functions ---

func (a *analyzer) function(fn *parser.FunctionLiteral, expression bool) {
	if expression && fn.Name != nil {
		a.push(FunctionNameScope, nil, fn.Strict)
		a.declareIn(a.current, fn.Name, DeclaredFunctionName)
	}
	a.push(FunctionScope, fn, fn.Strict)
	a.lookup.scopes[fn.Body] = a.current
	a.parameters(fn.Parameters)
	a.hoistFunctions(fn.Body.Statements)
	a.statements(fn.Body.Statements)
	a.pop()
	if expression && fn.Name != nil {
		a.pop()
	}
}

func (a *analyzer) arrow(fn *parser.ArrowFunctionLiteral) {
	s := a.push(FunctionScope, fn, false)
	s.arrow = true
	a.parameters(fn.Parameters)
	switch body := fn.Body.(type) {
	case *parser.BlockStatement:
		a.lookup.scopes[body] = s
		a.hoistFunctions(body.Statements)
		a.statements(body.Statements)
	case parser.Expression:
		a.expression(body)
	}
	a.pop()
}

func (a *analyzer) parameters(params []parser.Expression) {
	for _, p := range params {
		a.declarePattern(p, func(id *parser.Identifier) {
			a.declareIn(a.current, id, DeclaredParameter)
		})
	}
}

// --- Expressions ---

// target records the identifiers an assignment writes.
func (a *analyzer) target(expr parser.Expression, access Access) {
	switch t := expr.(type) {
	case *parser.Identifier:
		a.reference(t, access)
	case *parser.ArrayLiteral:
		for _, el := range t.Elements {
			if el != nil {
				a.target(el, access)
			}
		}
	case *parser.ObjectLiteral:
		for _, p := range t.Properties {
			if p.Computed && p.Key != nil {
				a.expression(p.Key)
			}
			a.target(p.Value, access)
		}
	case *parser.RestElement:
		a.target(t.Argument, access)
	case *parser.SpreadElement:
		a.target(t.Argument, access)
	case *parser.AssignmentExpression:
		a.target(t.Left, access)
		a.expression(t.Value)
	default:
		a.expression(expr)
	}
}

func (a *analyzer) expression(expr parser.Expression) {
	switch e := expr.(type) {
	case nil:
	case *parser.Identifier:
		a.reference(e, Read)
	case *parser.NumberLiteral, *parser.StringLiteral, *parser.BooleanLiteral,
		*parser.NullLiteral, *parser.RegexLiteral, *parser.ThisExpression, *parser.SuperExpression:
	case *parser.ArrayLiteral:
		for _, el := range e.Elements {
			a.expression(el)
		}
	case *parser.ObjectLiteral:
		for _, p := range e.Properties {
			if p.Computed {
				a.expression(p.Key)
			}
			a.expression(p.Value)
		}
	case *parser.FunctionLiteral:
		a.function(e, true)
	case *parser.ArrowFunctionLiteral:
		a.arrow(e)
	case *parser.SpreadElement:
		a.expression(e.Argument)
	case *parser.RestElement:
		a.expression(e.Argument)
	case *parser.PrefixExpression:
		if id, ok := e.Right.(*parser.Identifier); ok && e.Operator == "delete" {
			if a.current.Strict {
				a.errorAt(e, "Delete of an unqualified identifier in strict mode.")
			}
			a.reference(id, Delete)
			return
		}
		a.expression(e.Right)
	case *parser.UpdateExpression:
		a.target(e.Argument, ReadWrite)
	case *parser.InfixExpression:
		a.expression(e.Left)
		a.expression(e.Right)
	case *parser.AssignmentExpression:
		if e.Operator == "=" {
			a.target(e.Left, Write)
		} else {
			a.target(e.Left, ReadWrite)
		}
		a.expression(e.Value)
	case *parser.TernaryExpression:
		a.expression(e.Condition)
		a.expression(e.Consequence)
		a.expression(e.Alternative)
	case *parser.CallExpression:
		if id, ok := e.Function.(*parser.Identifier); ok && id.Value == "eval" {
			a.current.HasDirectEval = true
		}
		a.expression(e.Function)
		for _, arg := range e.Arguments {
			a.expression(arg)
		}
	case *parser.NewExpression:
		a.expression(e.Constructor)
		for _, arg := range e.Arguments {
			a.expression(arg)
		}
	case *parser.MemberExpression:
		a.expression(e.Object)
	case *parser.IndexExpression:
		a.expression(e.Object)
		a.expression(e.Index)
	case *parser.SequenceExpression:
		for _, sub := range e.Expressions {
			a.expression(sub)
		}
	default:
		debugPrintf("unhandled expression %T", expr)
	}
}
