// Package jumps resolves break, continue and return statements to the
// statement they leave and records the try constructs crossed on the way.
package jumps

import (
	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/parser"
)

// Jump is the resolved destination of one jump statement. Target is the
// loop, switch or labeled body a break or continue leaves, or the function
// body block a return leaves (the program for a top-level return).
// Crossings are listed innermost first, in the order the jump passes them.
// This is the reverse of building the list by prepending a marker at each
// enclosing try as it is exited, which yields outermost first.
type Jump struct {
	Target    parser.Node
	Crossings []asg.Crossing
}

// FinallyCount returns how many finally bodies run before the jump lands.
func (j Jump) FinallyCount() int {
	n := 0
	for _, c := range j.Crossings {
		if c == asg.CrossTryFinally {
			n++
		}
	}
	return n
}

// Table maps jump statements to their resolution.
type Table struct {
	jumps map[parser.Statement]Jump
}

// Lookup returns the resolution of a break, continue or return statement.
func (t *Table) Lookup(stmt parser.Statement) (Jump, bool) {
	j, ok := t.jumps[stmt]
	return j, ok
}

// Len returns the number of resolved jump statements.
func (t *Table) Len() int { return len(t.jumps) }

type pending struct {
	stmt      parser.Statement
	label     string
	crossings []asg.Crossing
}

// state is the set of jumps of a subtree that are not resolved yet.
type state struct {
	breaks    []pending
	continues []pending
	returns   []pending
}

func (s state) concat(o state) state {
	return state{
		breaks:    append(s.breaks, o.breaks...),
		continues: append(s.continues, o.continues...),
		returns:   append(s.returns, o.returns...),
	}
}

func (s state) cross(c asg.Crossing) state {
	mark := func(ps []pending) {
		for i := range ps {
			ps[i].crossings = append(ps[i].crossings, c)
		}
	}
	mark(s.breaks)
	mark(s.continues)
	mark(s.returns)
	return s
}

type analyzer struct {
	table *Table
}

// Analyze folds program bottom up and returns the jump table. A break or
// continue left unresolved at a function or program boundary is an
// invariant violation and panics.
func Analyze(program *parser.Program) *Table {
	a := &analyzer{table: &Table{jumps: make(map[parser.Statement]Jump)}}
	st := a.statements(program.Statements)
	a.resolve(st.returns, func(pending) bool { return true }, program)
	a.checkResolved(st, "program")
	return a.table
}

func (a *analyzer) checkResolved(st state, where string) {
	if len(st.breaks) > 0 {
		errors.Invariantf("unresolved break %s after folding %s", st.breaks[0].stmt.String(), where)
	}
	if len(st.continues) > 0 {
		errors.Invariantf("unresolved continue %s after folding %s", st.continues[0].stmt.String(), where)
	}
}

// resolve records every pending jump accepted by match and returns the rest.
func (a *analyzer) resolve(ps []pending, match func(pending) bool, target parser.Node) []pending {
	var rest []pending
	for _, p := range ps {
		if match(p) {
			a.table.jumps[p.stmt] = Jump{Target: target, Crossings: p.crossings}
			continue
		}
		rest = append(rest, p)
	}
	return rest
}

func unlabeled(p pending) bool { return p.label == "" }

func (a *analyzer) loop(loop parser.Statement, body state) state {
	body.breaks = a.resolve(body.breaks, unlabeled, loop)
	body.continues = a.resolve(body.continues, unlabeled, loop)
	return body
}

func (a *analyzer) statements(stmts []parser.Statement) state {
	var st state
	for _, stmt := range stmts {
		st = st.concat(a.statement(stmt))
	}
	return st
}

func (a *analyzer) statement(stmt parser.Statement) state {
	switch s := stmt.(type) {
	case nil:
		return state{}
	case *parser.BreakStatement:
		return state{breaks: []pending{{stmt: s, label: labelName(s.Label)}}}
	case *parser.ContinueStatement:
		return state{continues: []pending{{stmt: s, label: labelName(s.Label)}}}
	case *parser.ReturnStatement:
		a.expression(s.ReturnValue)
		return state{returns: []pending{{stmt: s}}}
	case *parser.BlockStatement:
		return a.statements(s.Statements)
	case *parser.ExpressionStatement:
		a.expression(s.Expression)
	case *parser.VariableDeclaration:
		for _, d := range s.Declarators {
			a.expression(d.Value)
		}
	case *parser.FunctionDeclaration:
		a.function(s.Function)
	case *parser.IfStatement:
		a.expression(s.Condition)
		return a.statement(s.Consequence).concat(a.statement(s.Alternative))
	case *parser.WhileStatement:
		a.expression(s.Condition)
		return a.loop(s, a.statement(s.Body))
	case *parser.DoWhileStatement:
		a.expression(s.Condition)
		return a.loop(s, a.statement(s.Body))
	case *parser.ForStatement:
		switch init := s.Init.(type) {
		case parser.Statement:
			a.statement(init)
		case parser.Expression:
			a.expression(init)
		}
		a.expression(s.Condition)
		a.expression(s.Update)
		return a.loop(s, a.statement(s.Body))
	case *parser.ForInStatement:
		a.forHead(s.Left)
		a.expression(s.Right)
		return a.loop(s, a.statement(s.Body))
	case *parser.ForOfStatement:
		a.forHead(s.Left)
		a.expression(s.Right)
		return a.loop(s, a.statement(s.Body))
	case *parser.SwitchStatement:
		a.expression(s.Discriminant)
		var st state
		for _, c := range s.Cases {
			a.expression(c.Test)
			st = st.concat(a.statements(c.Body))
		}
		st.breaks = a.resolve(st.breaks, unlabeled, s)
		return st
	case *parser.LabeledStatement:
		name := s.Label.Value
		st := a.statement(s.Statement)
		target := unwrapLabels(s.Statement)
		sameLabel := func(p pending) bool { return p.label == name }
		st.breaks = a.resolve(st.breaks, sameLabel, target)
		st.continues = a.resolve(st.continues, sameLabel, target)
		return st
	case *parser.TryStatement:
		body := a.statement(s.Body)
		if s.Catch != nil {
			body = body.cross(asg.CrossTryCatch)
		}
		if s.Finally != nil {
			body = body.cross(asg.CrossTryFinally)
		}
		if s.Catch != nil {
			handler := a.statement(s.Catch.Body)
			if s.Finally != nil {
				handler = handler.cross(asg.CrossTryFinally)
			}
			body = body.concat(handler)
		}
		if s.Finally != nil {
			body = body.concat(a.statement(s.Finally).cross(asg.CrossFinally))
		}
		return body
	case *parser.ThrowStatement:
		a.expression(s.Value)
	case *parser.WithStatement:
		a.expression(s.Object)
		return a.statement(s.Body)
	}
	return state{}
}

func (a *analyzer) forHead(left parser.Node) {
	switch l := left.(type) {
	case parser.Statement:
		a.statement(l)
	case parser.Expression:
		a.expression(l)
	}
}

func labelName(id *parser.Identifier) string {
	if id == nil {
		return ""
	}
	return id.Value
}

func unwrapLabels(stmt parser.Statement) parser.Statement {
	for {
		l, ok := stmt.(*parser.LabeledStatement)
		if !ok {
			return stmt
		}
		stmt = l.Statement
	}
}

func (a *analyzer) function(fn *parser.FunctionLiteral) {
	st := a.statements(fn.Body.Statements)
	a.resolve(st.returns, func(pending) bool { return true }, fn.Body)
	a.checkResolved(st, "function body")
}

// expression finds the function literals nested in expr; jumps never cross
// a function boundary so each one is folded on its own.
func (a *analyzer) expression(expr parser.Expression) {
	switch e := expr.(type) {
	case nil:
	case *parser.FunctionLiteral:
		a.function(e)
	case *parser.ArrowFunctionLiteral:
		for _, p := range e.Parameters {
			a.expression(p)
		}
		switch body := e.Body.(type) {
		case *parser.BlockStatement:
			st := a.statements(body.Statements)
			a.resolve(st.returns, func(pending) bool { return true }, body)
			a.checkResolved(st, "arrow function body")
		case parser.Expression:
			a.expression(body)
		}
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
	case *parser.SpreadElement:
		a.expression(e.Argument)
	case *parser.RestElement:
		a.expression(e.Argument)
	case *parser.PrefixExpression:
		a.expression(e.Right)
	case *parser.UpdateExpression:
		a.expression(e.Argument)
	case *parser.InfixExpression:
		a.expression(e.Left)
		a.expression(e.Right)
	case *parser.AssignmentExpression:
		a.expression(e.Left)
		a.expression(e.Value)
	case *parser.TernaryExpression:
		a.expression(e.Condition)
		a.expression(e.Consequence)
		a.expression(e.Alternative)
	case *parser.CallExpression:
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
	}
}
