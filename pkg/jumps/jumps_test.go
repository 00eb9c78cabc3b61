package jumps

import (
	"reflect"
	"testing"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/parser"
)

func parse(t *testing.T, input string) *parser.Program {
	t.Helper()
	program, errs := parser.NewParser(lexer.NewLexer(input)).ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", input, errs)
	}
	return program
}

// collect returns every jump statement of program in source order.
func collect(stmts []parser.Statement) []parser.Statement {
	var out []parser.Statement
	var walk func(parser.Statement)
	walk = func(stmt parser.Statement) {
		switch s := stmt.(type) {
		case *parser.BreakStatement, *parser.ContinueStatement, *parser.ReturnStatement:
			out = append(out, s)
		case *parser.BlockStatement:
			for _, c := range s.Statements {
				walk(c)
			}
		case *parser.WhileStatement:
			walk(s.Body)
		case *parser.DoWhileStatement:
			walk(s.Body)
		case *parser.ForStatement:
			walk(s.Body)
		case *parser.ForInStatement:
			walk(s.Body)
		case *parser.LabeledStatement:
			walk(s.Statement)
		case *parser.IfStatement:
			walk(s.Consequence)
			if s.Alternative != nil {
				walk(s.Alternative)
			}
		case *parser.SwitchStatement:
			for _, c := range s.Cases {
				for _, b := range c.Body {
					walk(b)
				}
			}
		case *parser.TryStatement:
			walk(s.Body)
			if s.Catch != nil {
				walk(s.Catch.Body)
			}
			if s.Finally != nil {
				walk(s.Finally)
			}
		case *parser.FunctionDeclaration:
			walk(s.Function.Body)
		}
	}
	for _, s := range stmts {
		walk(s)
	}
	return out
}

func TestUnlabeledTargets(t *testing.T) {
	program := parse(t, "while (a) { break; } for (;;) { continue; } switch (x) { case 1: break; }")
	table := Analyze(program)
	jumps := collect(program.Statements)
	if len(jumps) != 3 || table.Len() != 3 {
		t.Fatalf("expected 3 jumps, found %d (table %d)", len(jumps), table.Len())
	}
	for i, want := range program.Statements {
		j, ok := table.Lookup(jumps[i])
		if !ok {
			t.Fatalf("jump %d not resolved", i)
		}
		if j.Target != want {
			t.Errorf("jump %d: target %T, want %T", i, j.Target, want)
		}
		if len(j.Crossings) != 0 {
			t.Errorf("jump %d: unexpected crossings %v", i, j.Crossings)
		}
	}
}

func TestBreakInSwitchInsideLoop(t *testing.T) {
	program := parse(t, "while (a) { switch (x) { case 1: continue; default: break; } }")
	table := Analyze(program)
	loop := program.Statements[0].(*parser.WhileStatement)
	sw := loop.Body.(*parser.BlockStatement).Statements[0]
	jumps := collect(program.Statements)
	cont, _ := table.Lookup(jumps[0])
	brk, _ := table.Lookup(jumps[1])
	if cont.Target != loop {
		t.Errorf("continue should target the loop, got %T", cont.Target)
	}
	if brk.Target != sw {
		t.Errorf("break should target the switch, got %T", brk.Target)
	}
}

func TestLabelsResolveToBody(t *testing.T) {
	program := parse(t, "a: b: while (x) { while (y) { continue a; break b; } } c: { break c; }")
	table := Analyze(program)
	outer := program.Statements[0].(*parser.LabeledStatement).Statement.(*parser.LabeledStatement).Statement
	block := program.Statements[1].(*parser.LabeledStatement).Statement
	jumps := collect(program.Statements)
	for i, want := range []parser.Node{outer, outer, block} {
		j, ok := table.Lookup(jumps[i])
		if !ok || j.Target != want {
			t.Errorf("jump %d: target %T, want %T", i, j.Target, want)
		}
	}
}

func TestSharedLabelTarget(t *testing.T) {
	program := parse(t, "l: { if (a) break l; if (b) break l; break l; }")
	table := Analyze(program)
	jumps := collect(program.Statements)
	if len(jumps) != 3 {
		t.Fatalf("expected 3 breaks, got %d", len(jumps))
	}
	first, _ := table.Lookup(jumps[0])
	for _, j := range jumps[1:] {
		got, _ := table.Lookup(j)
		if got.Target != first.Target {
			t.Error("all breaks of one label must share a target")
		}
	}
}

func TestCrossings(t *testing.T) {
	tests := []struct {
		input string
		want  []asg.Crossing
	}{
		{"while (1) { try { break; } catch (e) {} }", []asg.Crossing{asg.CrossTryCatch}},
		{"while (1) { try { break; } finally {} }", []asg.Crossing{asg.CrossTryFinally}},
		{"while (1) { try { break; } catch (e) {} finally {} }", []asg.Crossing{asg.CrossTryCatch, asg.CrossTryFinally}},
		{"while (1) { try {} catch (e) { break; } finally {} }", []asg.Crossing{asg.CrossTryFinally}},
		{"while (1) { try {} catch (e) { break; } }", nil},
		{"while (1) { try {} finally { break; } }", []asg.Crossing{asg.CrossFinally}},
		{
			"while (1) { try { try { break; } finally {} } finally {} }",
			[]asg.Crossing{asg.CrossTryFinally, asg.CrossTryFinally},
		},
		{
			"while (1) { try { try {} finally { break; } } catch (e) {} }",
			[]asg.Crossing{asg.CrossFinally, asg.CrossTryCatch},
		},
		{"try { while (1) { break; } } finally {}", nil},
	}
	for _, tt := range tests {
		program := parse(t, tt.input)
		table := Analyze(program)
		jumps := collect(program.Statements)
		j, ok := table.Lookup(jumps[0])
		if !ok {
			t.Fatalf("%q: jump not resolved", tt.input)
		}
		if !reflect.DeepEqual(j.Crossings, tt.want) {
			t.Errorf("%q: crossings %v, want %v", tt.input, j.Crossings, tt.want)
		}
	}
}

func TestReturnTargetsFunctionBody(t *testing.T) {
	program := parse(t, "function f() { try { return 1; } finally { g(); } } x = function () { return; };")
	table := Analyze(program)
	fn := program.Statements[0].(*parser.FunctionDeclaration).Function
	jumps := collect(program.Statements)
	j, ok := table.Lookup(jumps[0])
	if !ok {
		t.Fatal("return not resolved")
	}
	if j.Target != fn.Body {
		t.Errorf("return should target the function body, got %T", j.Target)
	}
	if j.FinallyCount() != 1 {
		t.Errorf("FinallyCount = %d, want 1", j.FinallyCount())
	}

	expr := program.Statements[1].(*parser.ExpressionStatement).Expression.(*parser.AssignmentExpression)
	inner := expr.Value.(*parser.FunctionLiteral)
	ret := inner.Body.Statements[0]
	j, ok = table.Lookup(ret)
	if !ok || j.Target != inner.Body {
		t.Error("return inside a function expression should target its body")
	}
}

func TestUnresolvedBreakPanics(t *testing.T) {
	// The parser rejects a stray break, so build the tree by hand.
	program := &parser.Program{Statements: []parser.Statement{&parser.BreakStatement{}}}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an unresolved break")
		}
	}()
	Analyze(program)
}
