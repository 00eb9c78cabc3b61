package constfold

import (
	"math"
	"testing"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/explicator"
	"github.com/nooga/explicate/pkg/jumps"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/reduce"
	"github.com/nooga/explicate/pkg/scope"
)

func lower(t *testing.T, input string) *asg.Semantics {
	t.Helper()
	program, errs := parser.NewParser(lexer.NewLexer(input)).ParseProgram()
	if len(errs) > 0 {
		t.Fatalf("parse %q: %v", input, errs)
	}
	lookup, errs := scope.Analyze(program)
	if len(errs) > 0 {
		t.Fatalf("analyze %q: %v", input, errs)
	}
	sem, err := explicator.Explicate(program, lookup, jumps.Analyze(program))
	if err != nil {
		t.Fatalf("explicate %q: %v", input, err)
	}
	return sem
}

func num(f float64) *asg.LiteralNumber { return &asg.LiteralNumber{Value: f} }
func str(s string) *asg.LiteralString  { return &asg.LiteralString{Value: s} }
func global(name string) *asg.GlobalReference {
	return &asg.GlobalReference{Name: name}
}

func TestFoldPrograms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"f(!0);", `(Block (Call _ (GlobalReference f) (LiteralBoolean true)))`},
		{"f(2.0 + 11.33);", `(Block (Call _ (GlobalReference f) (LiteralNumber 13.33)))`},
		{"f('a' + 1 + 2);", `(Block (Call _ (GlobalReference f) (LiteralString "a12")))`},
		{"f(1 + 2 + 'a');", `(Block (Call _ (GlobalReference f) (LiteralString "3a")))`},
		{"f(-1 >>> 0);", `(Block (Call _ (GlobalReference f) (LiteralNumber 4294967295)))`},
		{"if (1 === 1) { a(); } else { b(); }", `(Block (Block (Call _ (GlobalReference a))))`},
		{"if ('') { a(); } else { b(); }", `(Block (Block (Call _ (GlobalReference b))))`},
		{"if (x) { a(); }", `(Block (IfElse (GlobalReference x) (Block (Call _ (GlobalReference a))) (Block)))`},
		{"f(void 0, typeof x);", `(Block (Call _ (GlobalReference f) (VoidOp (LiteralNumber 0)) (TypeofGlobal x)))`},
		{"a[f()] = g();", `(Block (BlockWithValue (Block ` +
			`(VariableAssignment (TemporaryReference $0) (GlobalReference a)) ` +
			`(VariableAssignment (TemporaryReference $1) (Call _ (GlobalReference f))) ` +
			`(RequireObjectCoercible (TemporaryReference $0)) ` +
			`(VariableAssignment (TemporaryReference $2) (TypeCoercionString (TemporaryReference $1)))) ` +
			`(MemberAssignment (TemporaryReference $0) (TemporaryReference $2) (Call _ (GlobalReference g)))))`},
		{"a[1 + 1] = 2 * 3;", `(Block (BlockWithValue (Block ` +
			`(VariableAssignment (TemporaryReference $0) (GlobalReference a)) ` +
			`(VariableAssignment (TemporaryReference $1) (LiteralNumber 2)) ` +
			`(RequireObjectCoercible (TemporaryReference $0)) ` +
			`(VariableAssignment (TemporaryReference $2) (TypeCoercionString (TemporaryReference $1)))) ` +
			`(MemberAssignment (TemporaryReference $0) (TemporaryReference $2) (LiteralNumber 6))))`},
	}
	for _, tt := range tests {
		sem := lower(t, tt.input)
		before := asg.Format(sem.Root)
		folded := Fold(sem)
		if got := asg.Format(folded.Root); got != tt.want {
			t.Errorf("%s\n got %s\nwant %s", tt.input, got, tt.want)
		}
		if after := asg.Format(sem.Root); after != before {
			t.Errorf("%s: folding modified the input graph", tt.input)
		}
	}
}

func TestFoldNodes(t *testing.T) {
	tests := []struct {
		name string
		node asg.NodeWithValue
		want string
	}{
		{"triple not", &asg.Not{Expression: &asg.Not{Expression: &asg.Not{Expression: global("x")}}}, `(Not (GlobalReference x))`},
		{"quadruple not", &asg.Not{Expression: &asg.Not{Expression: &asg.Not{Expression: &asg.Not{Expression: global("x")}}}}, `(Not (Not (GlobalReference x)))`},
		{"double not", &asg.Not{Expression: &asg.Not{Expression: global("x")}}, `(Not (Not (GlobalReference x)))`},
		{"not literal", &asg.Not{Expression: str("")}, `(LiteralBoolean true)`},
		{"string concat", &asg.FloatMath{Operator: "+", Left: str("1"), Right: num(2)}, `(LiteralString "12")`},
		{"boolean add", &asg.FloatMath{Operator: "+", Left: num(1), Right: &asg.LiteralBoolean{Value: true}}, `(LiteralNumber 2)`},
		{"null plus undefined", &asg.FloatMath{Operator: "+", Left: &asg.LiteralNull{}, Right: &asg.LiteralUndefined{}}, `(LiteralNumber NaN)`},
		{"string times", &asg.FloatMath{Operator: "*", Left: str("3"), Right: num(4)}, `(LiteralNumber 12)`},
		{"divide by zero", &asg.FloatMath{Operator: "/", Left: num(1), Right: num(0)}, `(LiteralNumber Infinity)`},
		{"remainder", &asg.FloatMath{Operator: "%", Left: num(-7), Right: num(3)}, `(LiteralNumber -1)`},
		{"power", &asg.FloatMath{Operator: "**", Left: num(2), Right: num(10)}, `(LiteralNumber 1024)`},
		{"one to infinity", &asg.FloatMath{Operator: "**", Left: num(1), Right: &asg.LiteralInfinity{}}, `(LiteralNumber NaN)`},
		{"unknown operand", &asg.FloatMath{Operator: "+", Left: global("x"), Right: num(1)}, `(FloatMath + (GlobalReference x) (LiteralNumber 1))`},
		{"shift left", &asg.IntMath{Operator: "<<", Left: num(1), Right: num(31)}, `(LiteralNumber -2147483648)`},
		{"shift count masked", &asg.IntMath{Operator: "<<", Left: num(1), Right: num(33)}, `(LiteralNumber 2)`},
		{"signed shift", &asg.IntMath{Operator: ">>", Left: &asg.Negation{Expression: num(8)}, Right: num(1)}, `(LiteralNumber -4)`},
		{"unsigned shift", &asg.IntMath{Operator: ">>>", Left: &asg.Negation{Expression: num(1)}, Right: num(28)}, `(LiteralNumber 15)`},
		{"and", &asg.IntMath{Operator: "&", Left: num(5), Right: num(3)}, `(LiteralNumber 1)`},
		{"or", &asg.IntMath{Operator: "|", Left: num(5), Right: num(3)}, `(LiteralNumber 7)`},
		{"xor", &asg.IntMath{Operator: "^", Left: num(5), Right: num(3)}, `(LiteralNumber 6)`},
		{"or wraps", &asg.IntMath{Operator: "|", Left: num(4294967296 + 5), Right: num(0)}, `(LiteralNumber 5)`},
		{"bitwise not", &asg.BitwiseNot{Expression: num(0)}, `(LiteralNumber -1)`},
		{"negate infinity", &asg.Negation{Expression: &asg.LiteralInfinity{}}, `(LiteralNumber -Infinity)`},
		{"to number", &asg.TypeCoercionNumber{Expression: str("0x10")}, `(LiteralNumber 16)`},
		{"to string", &asg.TypeCoercionString{Expression: num(1e21)}, `(LiteralString "1e+21")`},
		{"to string of object", &asg.TypeCoercionString{Expression: &asg.LiteralEmptyObject{}}, `(TypeCoercionString (LiteralEmptyObject))`},
		{"and falsy", &asg.Logic{Operator: "&&", Left: num(0), Right: global("g")}, `(LiteralNumber 0)`},
		{"and truthy", &asg.Logic{Operator: "&&", Left: num(1), Right: global("g")}, `(BlockWithValue (Block (LiteralNumber 1)) (GlobalReference g))`},
		{"or truthy", &asg.Logic{Operator: "||", Left: str("x"), Right: global("g")}, `(LiteralString "x")`},
		{"or falsy", &asg.Logic{Operator: "||", Left: str(""), Right: global("g")}, `(BlockWithValue (Block (LiteralString "")) (GlobalReference g))`},
		{"logic unknown", &asg.Logic{Operator: "||", Left: global("f"), Right: num(1)}, `(Logic || (GlobalReference f) (LiteralNumber 1))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asg.Format(FoldNode(tt.node)); got != tt.want {
				t.Errorf("got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		name  string
		node  asg.NodeWithValue
		value bool
		known bool
	}{
		{"empty string", str(""), false, true},
		{"string", str("0"), true, true},
		{"zero", num(0), false, true},
		{"nan", num(math.NaN()), false, true},
		{"infinity", &asg.LiteralInfinity{}, true, true},
		{"null", &asg.LiteralNull{}, false, true},
		{"object", &asg.LiteralEmptyObject{}, true, true},
		{"not", &asg.Not{Expression: num(0)}, true, true},
		{"equal literals", &asg.Equality{Operator: "==", Left: num(1), Right: num(1)}, true, true},
		{"strictly unequal", &asg.Equality{Operator: "!==", Left: str("a"), Right: str("b")}, true, true},
		{"nan never equal", &asg.Equality{Operator: "===", Left: num(math.NaN()), Right: num(math.NaN())}, false, false},
		{"null loosely undefined", &asg.Equality{Operator: "==", Left: &asg.LiteralNull{}, Right: &asg.LiteralUndefined{}}, true, true},
		{"loose across types", &asg.Equality{Operator: "==", Left: num(1), Right: str("1")}, false, false},
		{"strict across types", &asg.Equality{Operator: "===", Left: num(1), Right: str("1")}, false, true},
		{"equality of references", &asg.Equality{Operator: "===", Left: global("a"), Right: global("a")}, false, false},
		{"logic and", &asg.Logic{Operator: "&&", Left: num(1), Right: num(0)}, false, true},
		{"logic or", &asg.Logic{Operator: "||", Left: num(0), Right: str("x")}, true, true},
		{"logic unknown", &asg.Logic{Operator: "||", Left: num(1), Right: global("x")}, false, false},
		{"reference", global("x"), false, false},
		{"call", &asg.Call{Callee: global("f")}, false, false},
	}
	for _, tt := range tests {
		value, known := Truthiness(tt.node)
		if known != tt.known || (known && value != tt.value) {
			t.Errorf("%s: Truthiness = (%t, %t), want (%t, %t)", tt.name, value, known, tt.value, tt.known)
		}
	}
}

func TestFoldPreservesSharing(t *testing.T) {
	sem := lower(t, "l: { if (a) break l; if (1) break l; break l; }")
	folded := Fold(sem)

	targets := reduce.FindAll(folded.Root, "BreakTarget")
	if len(targets) != 1 {
		t.Fatalf("found %d break targets, want 1", len(targets))
	}
	breaks := reduce.FindAll(folded.Root, "Break")
	if len(breaks) != 3 {
		t.Fatalf("found %d breaks, want 3", len(breaks))
	}
	for _, b := range breaks {
		if b.(*asg.Break).Target != targets[0] {
			t.Error("break does not reference the shared target")
		}
	}
	distinct, naive := reduce.CountDistinct(folded.Root), reduce.CountNaive(folded.Root)
	if distinct > naive {
		t.Errorf("distinct count %d exceeds naive count %d", distinct, naive)
	}
	if distinct == naive {
		t.Errorf("shared target was counted once per reference")
	}
}

func TestFoldRekeysFunctionScopes(t *testing.T) {
	sem := lower(t, "var f = function () { return 1 + 1; }; if (0) { g = function () {}; }")
	folded := Fold(sem)
	if len(folded.FunctionScopes) != 1 {
		t.Fatalf("got %d function scopes, want 1", len(folded.FunctionScopes))
	}
	fn := folded.Root.Children[0].(*asg.VariableAssignment).Value.(*asg.LiteralFunction)
	if folded.FunctionScopes[fn] == nil {
		t.Error("surviving function lost its scope")
	}
	if got := asg.Format(fn.Body); got != `(Block (Return (LiteralNumber 2)))` {
		t.Errorf("function body = %s", got)
	}
}
