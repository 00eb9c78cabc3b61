package explicator

import (
	"strings"
	"testing"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/jumps"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/scope"
	"github.com/nooga/explicate/pkg/source"
)

func lower(t *testing.T, input string, module bool) (*asg.Semantics, error) {
	t.Helper()
	src := &source.SourceFile{Name: "test.js", Content: input, Module: module}
	program, errs := parser.NewParser(lexer.NewLexerWithSource(src)).ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", input, errs)
	}
	lookup, errs := scope.Analyze(program)
	if len(errs) > 0 {
		t.Fatalf("analyze %q: %v", input, errs)
	}
	return Explicate(program, lookup, jumps.Analyze(program))
}

func mustLower(t *testing.T, input string) *asg.Semantics {
	t.Helper()
	sem, err := lower(t, input, false)
	if err != nil {
		t.Fatalf("explicate %q: %v", input, err)
	}
	return sem
}

func TestLowering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"global assignment",
			"a = 0;",
			`(Block (VariableAssignment (GlobalReference a) (LiteralNumber 0)))`,
		},
		{
			"const assignment throws",
			"const x = 1; x = 2;",
			`(Block (VariableAssignment (LocalReference x) (LiteralNumber 1)) ` +
				`(Block (LiteralNumber 2) (Throw (New (GlobalReference TypeError)))))`,
		},
		{
			"call with literal argument",
			"f(!0);",
			`(Block (Call _ (GlobalReference f) (Not (LiteralNumber 0))))`,
		},
		{
			"try catch finally",
			"try { a; } catch (e) { b; } finally { c; }",
			`(Block (TryFinally (Block (TryCatch (Block (GlobalReference a)) e (Block (GlobalReference b)))) ` +
				`(Block (GlobalReference c))))`,
		},
		{
			"for in",
			"for (x in o) { body(); }",
			`(Block (Block (VariableAssignment (TemporaryReference $0) (GlobalReference o)) ` +
				`(VariableAssignment (TemporaryReference $1) (Keys (TemporaryReference $0))) ` +
				`(VariableAssignment (TemporaryReference $2) (LiteralNumber 0)) ` +
				`(Loop (Block ` +
				`(IfElse (RelationalComparison < (TemporaryReference $2) (MemberAccess (TemporaryReference $1) (LiteralString "length"))) (Block) (Block (Break #0))) ` +
				`(VariableAssignment (TemporaryReference $3) (MemberAccess (TemporaryReference $1) (TypeCoercionString (TemporaryReference $2)))) ` +
				`(VariableAssignment (TemporaryReference $2) (FloatMath + (TemporaryReference $2) (LiteralNumber 1))) ` +
				`(IfElse (In (TemporaryReference $3) (TemporaryReference $0)) ` +
				`(Block (VariableAssignment (GlobalReference x) (TemporaryReference $3)) (Block (Call _ (GlobalReference body)))) (Block)) ` +
				`(BreakTarget #1))) ` +
				`(BreakTarget #0)))`,
		},
		{
			"member assignment order",
			"a[f()] = g();",
			`(Block (BlockWithValue (Block ` +
				`(VariableAssignment (TemporaryReference $0) (GlobalReference a)) ` +
				`(VariableAssignment (TemporaryReference $1) (Call _ (GlobalReference f))) ` +
				`(RequireObjectCoercible (TemporaryReference $0)) ` +
				`(VariableAssignment (TemporaryReference $2) (TypeCoercionString (TemporaryReference $1)))) ` +
				`(MemberAssignment (TemporaryReference $0) (TemporaryReference $2) (Call _ (GlobalReference g)))))`,
		},
		{
			"static member assignment",
			"o.p = 1;",
			`(Block (BlockWithValue (Block ` +
				`(VariableAssignment (TemporaryReference $0) (GlobalReference o)) ` +
				`(RequireObjectCoercible (TemporaryReference $0))) ` +
				`(MemberAssignment (TemporaryReference $0) (LiteralString "p") (LiteralNumber 1))))`,
		},
		{
			"method call",
			"o.m(1);",
			`(Block (BlockWithValue (Block (VariableAssignment (TemporaryReference $0) (GlobalReference o))) ` +
				`(Call (TemporaryReference $0) (MemberAccess (TemporaryReference $0) (LiteralString "m")) (LiteralNumber 1))))`,
		},
		{
			"update as statement",
			"x++;",
			`(Block (VariableAssignment (GlobalReference x) (FloatMath + (TypeCoercionNumber (GlobalReference x)) (LiteralNumber 1))))`,
		},
		{
			"postfix update value",
			"y = x++;",
			`(Block (VariableAssignment (GlobalReference y) (BlockWithValue (Block ` +
				`(VariableAssignment (TemporaryReference $0) (TypeCoercionNumber (GlobalReference x))) ` +
				`(VariableAssignment (GlobalReference x) (FloatMath + (TemporaryReference $0) (LiteralNumber 1)))) ` +
				`(TemporaryReference $0))))`,
		},
		{
			"while with continue",
			"while (a) { continue; }",
			`(Block (Block (Loop (Block (IfElse (GlobalReference a) (Block) (Block (Break #0))) ` +
				`(Block (Break #1)) (BreakTarget #1))) (BreakTarget #0)))`,
		},
		{
			"do while",
			"do { a(); } while (b);",
			`(Block (Block (Loop (Block (Block (Call _ (GlobalReference a))) (BreakTarget #0) ` +
				`(IfElse (GlobalReference b) (Block) (Block (Break #1))))) (BreakTarget #1)))`,
		},
		{
			"switch",
			"switch (x) { case 1: a(); break; default: b(); case 2: c(); }",
			`(Block (Block (VariableAssignment (TemporaryReference $0) (GlobalReference x)) ` +
				`(SwitchStatement (TemporaryReference $0) ` +
				`(SwitchCase (LiteralNumber 1) (Block (Call _ (GlobalReference a)) (Break #0))) ` +
				`(default (Block (Call _ (GlobalReference b)))) ` +
				`(SwitchCase (LiteralNumber 2) (Block (Call _ (GlobalReference c))))) ` +
				`(BreakTarget #0)))`,
		},
		{
			"labeled loop",
			"outer: for (;;) { break outer; }",
			`(Block (Block (Loop (Block (Block (Break #0)) (BreakTarget #1))) (BreakTarget #0 outer)))`,
		},
		{
			"conditional",
			"y = a ? 1 : 2;",
			`(Block (VariableAssignment (GlobalReference y) (BlockWithValue (Block ` +
				`(IfElse (GlobalReference a) ` +
				`(Block (VariableAssignment (TemporaryReference $0) (LiteralNumber 1))) ` +
				`(Block (VariableAssignment (TemporaryReference $0) (LiteralNumber 2))))) ` +
				`(TemporaryReference $0))))`,
		},
		{
			"array with holes",
			"x = [1, , 2];",
			`(Block (VariableAssignment (GlobalReference x) (BlockWithValue (Block ` +
				`(VariableAssignment (TemporaryReference $0) (LiteralEmptyArray)) ` +
				`(MemberDefinition (TemporaryReference $0) (LiteralString "0") (StaticValue (LiteralNumber 1))) ` +
				`(MemberDefinition (TemporaryReference $0) (LiteralString "2") (StaticValue (LiteralNumber 2))) ` +
				`(MemberAssignment (TemporaryReference $0) (LiteralString "length") (LiteralNumber 3))) ` +
				`(TemporaryReference $0))))`,
		},
		{
			"object with computed key",
			"x = {a: 1, [k]: 2};",
			`(Block (VariableAssignment (GlobalReference x) (BlockWithValue (Block ` +
				`(VariableAssignment (TemporaryReference $0) (LiteralEmptyObject)) ` +
				`(MemberDefinition (TemporaryReference $0) (LiteralString "a") (StaticValue (LiteralNumber 1))) ` +
				`(VariableAssignment (TemporaryReference $1) (TypeCoercionString (GlobalReference k))) ` +
				`(MemberDefinition (TemporaryReference $0) (TemporaryReference $1) (StaticValue (LiteralNumber 2)))) ` +
				`(TemporaryReference $0))))`,
		},
		{
			"global operators",
			"typeof x; delete x; delete o.p;",
			`(Block (TypeofGlobal x) (DeleteGlobalProperty x) (BlockWithValue (Block ` +
				`(VariableAssignment (TemporaryReference $0) (GlobalReference o)) ` +
				`(RequireObjectCoercible (TemporaryReference $0))) ` +
				`(MemberDelete (TemporaryReference $0) (LiteralString "p"))))`,
		},
		{
			"well known globals",
			"f(undefined, NaN, Infinity);",
			`(Block (Call _ (GlobalReference f) (LiteralUndefined) (LiteralNumber NaN) (LiteralInfinity)))`,
		},
		{
			"block level function",
			"{ function f() {} }",
			`(Block (Block (VariableAssignment (LocalReference f) (LiteralFunction (params) (locals) (captured) (Block))) ` +
				`(VariableAssignment (GlobalReference f) (LocalReference f))))`,
		},
		{
			"with halts",
			"with (o) { x; }",
			`(Block (Halt "with statement"))`,
		},
		{
			"direct eval halts",
			"eval('1');",
			`(Block (Block (Halt "direct eval")))`,
		},
		{
			"pure statements vanish",
			"1; 'a'; let z; z;",
			`(Block (VariableAssignment (LocalReference z) (LiteralUndefined)) (LocalReference z))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem := mustLower(t, tt.input)
			if got := asg.Format(sem.Root); got != tt.want {
				t.Errorf("%s\n got %s\nwant %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestStrictAssignments(t *testing.T) {
	sem := mustLower(t, "'use strict'; const x = 1; x = 2;")
	want := `(Block (VariableAssignment strict (LocalReference x) (LiteralNumber 1)) ` +
		`(Block (LiteralNumber 2) (Throw (New (GlobalReference TypeError)))))`
	if got := asg.Format(sem.Root); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}

	tests := []struct {
		input string
		body  string
	}{
		{"var f = function g() { g = 1; };", `(Block)`},
		{"'use strict'; var f = function g() { g = 1; };", `(Block (Block (LiteralNumber 1) (Throw (New (GlobalReference TypeError)))))`},
	}
	for _, tt := range tests {
		sem := mustLower(t, tt.input)
		assign := sem.Root.Children[0].(*asg.VariableAssignment)
		fn := assign.Value.(*asg.LiteralFunction)
		if fn.Name == nil || fn.Name.Name != "g" {
			t.Fatalf("%s: function name = %v", tt.input, fn.Name)
		}
		if got := asg.Format(fn.Body); got != tt.body {
			t.Errorf("%s\n got %s\nwant %s", tt.input, got, tt.body)
		}
	}
}

func TestLabeledBreaksShareTarget(t *testing.T) {
	sem := mustLower(t, "l: { if (a) break l; if (b) break l; break l; }")
	want := `(Block (Block (Block ` +
		`(IfElse (GlobalReference a) (Block (Break #0)) (Block)) ` +
		`(IfElse (GlobalReference b) (Block (Break #0)) (Block)) ` +
		`(Break #0)) (BreakTarget #0 l)))`
	if got := asg.Format(sem.Root); got != want {
		t.Fatalf("got %s\nwant %s", got, want)
	}

	labeled := sem.Root.Children[0].(*asg.Block)
	target := labeled.Children[1].(*asg.BreakTarget)
	body := labeled.Children[0].(*asg.Block)
	breaks := []*asg.Break{
		body.Children[0].(*asg.IfElse).Consequent.Children[0].(*asg.Break),
		body.Children[1].(*asg.IfElse).Consequent.Children[0].(*asg.Break),
		body.Children[2].(*asg.Break),
	}
	for i, b := range breaks {
		if b.Target != target {
			t.Errorf("break %d does not share the labeled target", i)
		}
	}
}

func TestReturnCrossings(t *testing.T) {
	sem := mustLower(t, "function f() { try { return 1; } finally { g(); } }")
	fn := sem.Root.Children[0].(*asg.VariableAssignment).Value.(*asg.LiteralFunction)
	want := `(Block (TryFinally (Block (Return (LiteralNumber 1) TryFinally)) (Block (Call _ (GlobalReference g)))))`
	if got := asg.Format(fn.Body); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
	ret := fn.Body.Children[0].(*asg.TryFinally).TryBody.Children[0].(*asg.Return)
	if ret.FinallyCount() != 1 {
		t.Errorf("FinallyCount = %d, want 1", ret.FinallyCount())
	}
	if sem.FunctionScopes[fn] == nil {
		t.Error("function scope was not recorded")
	}
}

func TestBreakCrossings(t *testing.T) {
	sem := mustLower(t, "for (;;) { try { break; } catch (e) {} }")
	want := `(Block (Block (Loop (Block (Block (TryCatch (Block (Break #0 TryCatch)) e (Block))) (BreakTarget #1))) (BreakTarget #0)))`
	if got := asg.Format(sem.Root); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestFunctionVariables(t *testing.T) {
	sem := mustLower(t, "function f(a) { var b; return function () { return a + b + a; }; }")
	fn := sem.Root.Children[0].(*asg.VariableAssignment).Value.(*asg.LiteralFunction)
	if fn.Name != nil {
		t.Errorf("declaration has a function name binding %v", fn.Name)
	}
	if got := names(fn.Parameters); got != "a" {
		t.Errorf("parameters = %s, want a", got)
	}
	if got := names(fn.Locals); got != "b" {
		t.Errorf("locals = %s, want b", got)
	}
	inner := fn.Body.Children[0].(*asg.Return).Expression.(*asg.LiteralFunction)
	if got := names(inner.Captured); got != "a,b,a" {
		t.Errorf("captured = %s, want a,b,a", got)
	}
	if inner.Captured[0] != fn.Parameters[0] {
		t.Error("captured variable is not the parameter")
	}
}

func TestArgumentsObject(t *testing.T) {
	sem := mustLower(t, "function f() { return arguments; }")
	fn := sem.Root.Children[0].(*asg.VariableAssignment).Value.(*asg.LiteralFunction)
	if fn.Arguments == nil {
		t.Fatal("function has no arguments variable")
	}
	ret := fn.Body.Children[0].(*asg.Return)
	ref, ok := ret.Expression.(*asg.LocalReference)
	if !ok || ref.Variable != fn.Arguments {
		t.Errorf("return value = %s", asg.Format(ret.Expression))
	}
}

func TestSemanticsVariables(t *testing.T) {
	sem := mustLower(t, "var a; let b; function c() {} for (k in o) {}")
	if got := strings.Join(sem.TopLevelVarNames, ","); got != "c,a" {
		t.Errorf("TopLevelVarNames = %s, want c,a", got)
	}
	// b plus the four for-in temporaries.
	if len(sem.Locals) != 5 || sem.Locals[0].Name != "b" {
		t.Errorf("locals = %s", names(sem.Locals))
	}
	for _, v := range sem.Locals[1:] {
		if !v.Synthetic {
			t.Errorf("%s is not a temporary", v.Name)
		}
	}

	sem, err := lower(t, "var a = 1;", true)
	if err != nil {
		t.Fatal(err)
	}
	if sem.TopLevelVarNames != nil {
		t.Errorf("module has top level var names %v", sem.TopLevelVarNames)
	}
	if got := asg.Format(sem.Root); got != `(Block (VariableAssignment strict (LocalReference a) (LiteralNumber 1)))` {
		t.Errorf("module root = %s", got)
	}
}

func TestUnsupported(t *testing.T) {
	tests := []struct {
		input     string
		construct string
	}{
		{"f = (x) => x;", "ArrowFunctionLiteral"},
		{"var [a, b] = c;", "ArrayLiteral"},
		{"for (x of y) {}", "ForOfStatement"},
		{"f(...a);", "SpreadElement"},
		{"x = {__proto__: null};", "Property"},
		{"function f({a}) {}", "ObjectLiteral"},
		{"for (let i = 0; i < 3; i++) { fs.push(function () { return i; }); }", "ForStatement"},
	}
	for _, tt := range tests {
		_, err := lower(t, tt.input, false)
		if err == nil {
			t.Errorf("%s: expected an error", tt.input)
			continue
		}
		unsupported, ok := err.(*errors.UnsupportedError)
		if !ok {
			t.Errorf("%s: error %T is not an UnsupportedError", tt.input, err)
			continue
		}
		if unsupported.Construct != tt.construct {
			t.Errorf("%s: construct = %s, want %s", tt.input, unsupported.Construct, tt.construct)
		}
		if unsupported.Position.Line != 1 {
			t.Errorf("%s: line = %d, want 1", tt.input, unsupported.Position.Line)
		}
	}
}

func TestLetLoopWithoutClosure(t *testing.T) {
	sem := mustLower(t, "for (let i = 0; i < 2; i++) {}")
	want := `(Block (Block (VariableAssignment (LocalReference i) (LiteralNumber 0)) ` +
		`(Loop (Block (IfElse (RelationalComparison < (LocalReference i) (LiteralNumber 2)) (Block) (Block (Break #0))) ` +
		`(Block) (BreakTarget #1) ` +
		`(VariableAssignment (LocalReference i) (FloatMath + (TypeCoercionNumber (LocalReference i)) (LiteralNumber 1))))) ` +
		`(BreakTarget #0)))`
	if got := asg.Format(sem.Root); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func names(vs []*scope.Variable) string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name
	}
	return strings.Join(out, ",")
}
