package explicator

import (
	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/scope"
)

// block lowers a statement list. Function declarations are hoisted to the
// front.
func (e *Explicator) block(stmts []parser.Statement) *asg.Block {
	children := e.hoist(stmts)
	for _, stmt := range stmts {
		children = append(children, e.statement(stmt)...)
	}
	return &asg.Block{Children: children}
}

// statementBlock lowers a statement in a position that requires a block.
func (e *Explicator) statementBlock(stmt parser.Statement) *asg.Block {
	switch s := stmt.(type) {
	case nil:
		return &asg.Block{}
	case *parser.BlockStatement:
		return e.block(s.Statements)
	}
	return &asg.Block{Children: e.statement(stmt)}
}

func (e *Explicator) statement(stmt parser.Statement) []asg.Node {
	switch s := stmt.(type) {
	case *parser.ExpressionStatement:
		return nodes(e.effect(s.Expression))
	case *parser.VariableDeclaration:
		return e.variableDeclaration(s)
	case *parser.FunctionDeclaration:
		return e.functionDeclarationSite(s)
	case *parser.BlockStatement:
		return []asg.Node{e.block(s.Statements)}
	case *parser.EmptyStatement, *parser.DebuggerStatement:
		return nil
	case *parser.IfStatement:
		return []asg.Node{&asg.IfElse{
			Test:       e.expression(s.Condition),
			Consequent: e.statementBlock(s.Consequence),
			Alternate:  e.statementBlock(s.Alternative),
		}}
	case *parser.WhileStatement:
		return e.whileStatement(s)
	case *parser.DoWhileStatement:
		return e.doWhileStatement(s)
	case *parser.ForStatement:
		return e.forStatement(s)
	case *parser.ForInStatement:
		return e.forInStatement(s)
	case *parser.SwitchStatement:
		return e.switchStatement(s)
	case *parser.TryStatement:
		return []asg.Node{e.tryStatement(s)}
	case *parser.ThrowStatement:
		return []asg.Node{&asg.Throw{Expression: e.expression(s.Value)}}
	case *parser.ReturnStatement:
		return []asg.Node{e.returnStatement(s)}
	case *parser.BreakStatement:
		return []asg.Node{e.jump(s, false)}
	case *parser.ContinueStatement:
		return []asg.Node{e.jump(s, true)}
	case *parser.LabeledStatement:
		return e.labeledStatement(s)
	case *parser.WithStatement:
		return []asg.Node{&asg.Halt{Reason: "with statement"}}
	default:
		e.unsupported(stmt, "")
		return nil
	}
}

// --- declarations ---

func (e *Explicator) variableDeclaration(decl *parser.VariableDeclaration) []asg.Node {
	var out []asg.Node
	for _, d := range decl.Declarators {
		id, ok := d.Target.(*parser.Identifier)
		if !ok {
			e.unsupported(d.Target, "destructuring pattern")
		}
		v := e.declared(id)
		var value asg.NodeWithValue
		switch {
		case d.Value != nil:
			value = e.expression(d.Value)
		case decl.Kind == parser.DeclareLet:
			value = &asg.LiteralUndefined{}
		default:
			continue
		}
		out = append(out, &asg.VariableAssignment{Reference: e.variableReference(v), Value: value, Strict: e.strict})
	}
	return out
}

// --- loops ---

// loopTargets allocates and registers the targets of a loop before its body
// is lowered.
func (e *Explicator) loopTargets(loop parser.Statement) targets {
	t := targets{
		outer: &asg.BreakTarget{Name: e.label},
		inner: &asg.BreakTarget{},
	}
	e.label = ""
	e.targets[loop] = t
	return t
}

// exitUnless breaks to target when test is falsy.
func exitUnless(test asg.NodeWithValue, target *asg.BreakTarget) *asg.IfElse {
	return &asg.IfElse{
		Test:       test,
		Consequent: &asg.Block{},
		Alternate:  &asg.Block{Children: []asg.Node{&asg.Break{Target: target}}},
	}
}

func (e *Explicator) whileStatement(s *parser.WhileStatement) []asg.Node {
	t := e.loopTargets(s)
	body := &asg.Block{Children: []asg.Node{
		exitUnless(e.expression(s.Condition), t.outer),
		e.statementBlock(s.Body),
		t.inner,
	}}
	return []asg.Node{&asg.Block{Children: []asg.Node{&asg.Loop{Body: body}, t.outer}}}
}

func (e *Explicator) doWhileStatement(s *parser.DoWhileStatement) []asg.Node {
	t := e.loopTargets(s)
	body := &asg.Block{Children: []asg.Node{
		e.statementBlock(s.Body),
		t.inner,
		exitUnless(e.expression(s.Condition), t.outer),
	}}
	return []asg.Node{&asg.Block{Children: []asg.Node{&asg.Loop{Body: body}, t.outer}}}
}

func (e *Explicator) forStatement(s *parser.ForStatement) []asg.Node {
	t := e.loopTargets(s)
	var children []asg.Node
	switch init := s.Init.(type) {
	case nil:
	case *parser.VariableDeclaration:
		e.rejectCapturedLoopBindings(s, init)
		children = append(children, e.variableDeclaration(init)...)
	case parser.Expression:
		children = append(children, nodes(e.effect(init))...)
	default:
		e.unsupported(init, "for statement initializer")
	}

	var body []asg.Node
	if s.Condition != nil {
		body = append(body, exitUnless(e.expression(s.Condition), t.outer))
	}
	body = append(body, e.statementBlock(s.Body), t.inner)
	if s.Update != nil {
		body = append(body, nodes(e.effect(s.Update))...)
	}
	children = append(children, &asg.Loop{Body: &asg.Block{Children: body}}, t.outer)
	return []asg.Node{&asg.Block{Children: children}}
}

// rejectCapturedLoopBindings refuses let and const loop bindings that a
// closure refers to, since every iteration would need a fresh binding.
func (e *Explicator) rejectCapturedLoopBindings(loop parser.Statement, decl *parser.VariableDeclaration) {
	if decl.Kind == parser.DeclareVar {
		return
	}
	for _, d := range decl.Declarators {
		if id, ok := d.Target.(*parser.Identifier); ok && capturedByClosure(e.declared(id)) {
			e.unsupported(loop, "loop binding '"+id.Value+"' captured by a closure")
		}
	}
}

// forInStatement iterates over a snapshot of the enumerable keys, skipping
// keys deleted during iteration.
func (e *Explicator) forInStatement(s *parser.ForInStatement) []asg.Node {
	t := e.loopTargets(s)
	object := e.newTemporary()
	keys := e.newTemporary()
	index := e.newTemporary()
	key := e.newTemporary()

	children := []asg.Node{
		e.assignTemporary(object, e.expression(s.Right)),
		e.assignTemporary(keys, &asg.Keys{Object: temporary(object)}),
		e.assignTemporary(index, &asg.LiteralNumber{Value: 0}),
	}

	var bind asg.Node
	switch left := s.Left.(type) {
	case *parser.VariableDeclaration:
		e.rejectCapturedLoopBindings(s, left)
		if len(left.Declarators) != 1 {
			e.unsupported(left, "for-in binding list")
		}
		id, ok := left.Declarators[0].Target.(*parser.Identifier)
		if !ok {
			e.unsupported(left.Declarators[0].Target, "destructuring pattern")
		}
		bind = &asg.VariableAssignment{
			Reference: e.variableReference(e.declared(id)),
			Value:     temporary(key),
			Strict:    e.strict,
		}
	case parser.Expression:
		bind = discard(e.assign(left, func() asg.NodeWithValue { return temporary(key) }))
	default:
		e.unsupported(s.Left, "for-in target")
	}

	body := &asg.Block{Children: []asg.Node{
		exitUnless(&asg.RelationalComparison{
			Operator: "<",
			Left:     temporary(index),
			Right:    &asg.MemberAccess{Object: temporary(keys), Key: &asg.LiteralString{Value: "length"}},
		}, t.outer),
		e.assignTemporary(key, &asg.MemberAccess{
			Object: temporary(keys),
			Key:    &asg.TypeCoercionString{Expression: temporary(index)},
		}),
		e.assignTemporary(index, &asg.FloatMath{Operator: "+", Left: temporary(index), Right: &asg.LiteralNumber{Value: 1}}),
		&asg.IfElse{
			Test:       &asg.In{Key: temporary(key), Object: temporary(object)},
			Consequent: &asg.Block{Children: nodes(bind, e.statementBlock(s.Body))},
			Alternate:  &asg.Block{},
		},
		t.inner,
	}}
	children = append(children, &asg.Loop{Body: body}, t.outer)
	return []asg.Node{&asg.Block{Children: children}}
}

// --- switch ---

func (e *Explicator) switchStatement(s *parser.SwitchStatement) []asg.Node {
	outer := &asg.BreakTarget{Name: e.label}
	e.label = ""
	e.targets[s] = targets{outer: outer}

	discriminant := e.newTemporary()
	children := []asg.Node{e.assignTemporary(discriminant, e.expression(s.Discriminant))}

	var caseBodies []parser.Statement
	for _, c := range s.Cases {
		caseBodies = append(caseBodies, c.Body...)
	}
	children = append(children, e.hoist(caseBodies)...)

	sw := &asg.SwitchStatement{Discriminant: temporary(discriminant)}
	for _, c := range s.Cases {
		body := &asg.Block{}
		for _, stmt := range c.Body {
			body.Children = append(body.Children, e.statement(stmt)...)
		}
		switch {
		case c.Test == nil:
			sw.DefaultCase = body
		case sw.DefaultCase == nil:
			sw.PreDefaultCases = append(sw.PreDefaultCases, &asg.SwitchCase{Test: e.expression(c.Test), Body: body})
		default:
			sw.PostDefaultCases = append(sw.PostDefaultCases, &asg.SwitchCase{Test: e.expression(c.Test), Body: body})
		}
	}
	children = append(children, sw, outer)
	return []asg.Node{&asg.Block{Children: children}}
}

// --- try ---

func (e *Explicator) tryStatement(s *parser.TryStatement) asg.Node {
	body := e.block(s.Body.Statements)
	if s.Catch != nil {
		var catchVariable *scope.Variable
		switch param := s.Catch.Parameter.(type) {
		case nil:
		case *parser.Identifier:
			catchVariable = e.declared(param)
		default:
			e.unsupported(param, "destructuring pattern")
		}
		tryCatch := &asg.TryCatch{
			TryBody:       body,
			CatchVariable: catchVariable,
			CatchBody:     e.block(s.Catch.Body.Statements),
		}
		if s.Finally == nil {
			return tryCatch
		}
		body = &asg.Block{Children: []asg.Node{tryCatch}}
	}
	return &asg.TryFinally{TryBody: body, FinallyBody: e.block(s.Finally.Statements)}
}

// --- jumps ---

func (e *Explicator) returnStatement(s *parser.ReturnStatement) *asg.Return {
	j, ok := e.jumps.Lookup(s)
	if !ok {
		errors.Invariantf("return at %d:%d has no jump entry", s.Token.Line, s.Token.Column)
	}
	var value asg.NodeWithValue = &asg.LiteralUndefined{}
	if s.ReturnValue != nil {
		value = e.expression(s.ReturnValue)
	}
	return &asg.Return{Expression: value, Crossings: j.Crossings}
}

func (e *Explicator) jump(stmt parser.Statement, isContinue bool) *asg.Break {
	j, ok := e.jumps.Lookup(stmt)
	if !ok {
		errors.Invariantf("%s has no jump entry", stmt.String())
	}
	t, ok := e.targets[j.Target]
	if !ok {
		errors.Invariantf("%s jumps to a statement with no break target", stmt.String())
	}
	target := t.outer
	if isContinue {
		target = t.inner
		if target == nil {
			errors.Invariantf("%s does not denote an iteration statement", stmt.String())
		}
	}
	return &asg.Break{Target: target, Crossings: j.Crossings}
}

func (e *Explicator) labeledStatement(s *parser.LabeledStatement) []asg.Node {
	body := s.Statement
	name := s.Label.Value
	for {
		inner, ok := body.(*parser.LabeledStatement)
		if !ok {
			break
		}
		body = inner.Statement
		name = inner.Label.Value
	}
	switch body.(type) {
	case *parser.WhileStatement, *parser.DoWhileStatement, *parser.ForStatement,
		*parser.ForInStatement, *parser.SwitchStatement:
		e.label = name
		return e.statement(body)
	case *parser.ForOfStatement:
		e.unsupported(body, "")
	}
	outer := &asg.BreakTarget{Name: name}
	e.targets[body] = targets{outer: outer}
	return []asg.Node{&asg.Block{Children: append(e.statement(body), outer)}}
}
