package asg

import (
	"math"
	"testing"

	"github.com/nooga/explicate/pkg/scope"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{&LiteralNumber{Value: 1}, "LiteralNumber"},
		{&Block{}, "Block"},
		{&BreakTarget{}, "BreakTarget"},
		{nil, "nil"},
	}
	for _, tt := range tests {
		if got := KindOf(tt.node); got != tt.want {
			t.Errorf("KindOf(%T) = %q, want %q", tt.node, got, tt.want)
		}
	}
}

func TestEmptyNodesAreDistinct(t *testing.T) {
	a, b := &LiteralUndefined{}, &LiteralUndefined{}
	if a == b {
		t.Fatal("two allocations of an empty node must not share identity")
	}
	t1, t2 := &Void{}, &Void{}
	if t1 == t2 {
		t.Fatal("two Void nodes must not share identity")
	}
}

func TestFinallyCount(t *testing.T) {
	b := &Break{Target: &BreakTarget{}, Crossings: []Crossing{CrossTryCatch, CrossTryFinally, CrossFinally, CrossTryFinally}}
	if got := b.FinallyCount(); got != 2 {
		t.Errorf("FinallyCount = %d, want 2", got)
	}
	r := &Return{Expression: &LiteralUndefined{}}
	if got := r.FinallyCount(); got != 0 {
		t.Errorf("FinallyCount = %d, want 0", got)
	}
}

func TestFormat(t *testing.T) {
	tmp := scope.NewTemporary("t")
	target := &BreakTarget{}
	root := &Block{Children: []Node{
		&VariableAssignment{Reference: &GlobalReference{Name: "a"}, Value: &LiteralNumber{Value: 0}},
		&VariableAssignment{Reference: &TemporaryReference{Variable: tmp}, Value: &LiteralString{Value: "x"}, Strict: true},
		&Loop{Body: &Block{Children: []Node{
			&Break{Target: target, Crossings: []Crossing{CrossTryFinally}},
		}}},
		target,
		&Call{Callee: &GlobalReference{Name: "f"}, Arguments: []NodeWithValue{&Not{Expression: &LiteralNumber{Value: 0}}}},
	}}
	want := `(Block (VariableAssignment (GlobalReference a) (LiteralNumber 0)) ` +
		`(VariableAssignment strict (TemporaryReference $0) (LiteralString "x")) ` +
		`(Loop (Block (Break #0 TryFinally))) (BreakTarget #0) ` +
		`(Call _ (GlobalReference f) (Not (LiteralNumber 0))))`
	if got := Format(root); got != want {
		t.Errorf("Format:\n got %s\nwant %s", got, want)
	}
}

func TestFormatNumbers(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{13.33, "(LiteralNumber 13.33)"},
		{-0.5, "(LiteralNumber -0.5)"},
		{math.NaN(), "(LiteralNumber NaN)"},
		{math.Inf(-1), "(LiteralNumber -Infinity)"},
		{4294967295, "(LiteralNumber 4294967295)"},
		{-2147483648, "(LiteralNumber -2147483648)"},
		{1e21, "(LiteralNumber 1e+21)"},
		{1e-7, "(LiteralNumber 1e-07)"},
	}
	for _, tt := range tests {
		if got := Format(&LiteralNumber{Value: tt.value}); got != tt.want {
			t.Errorf("Format(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestFormatSwitchAndTry(t *testing.T) {
	catchVar := &scope.Variable{Name: "e"}
	sw := &SwitchStatement{
		Discriminant:     &LiteralNumber{Value: 1},
		PreDefaultCases:  []*SwitchCase{{Test: &LiteralNumber{Value: 1}, Body: &Block{}}},
		DefaultCase:      &Block{},
		PostDefaultCases: nil,
	}
	try := &TryFinally{
		TryBody:     &Block{Children: []Node{&TryCatch{TryBody: &Block{}, CatchVariable: catchVar, CatchBody: &Block{}}}},
		FinallyBody: &Block{},
	}
	want := `(SwitchStatement (LiteralNumber 1) (SwitchCase (LiteralNumber 1) (Block)) (default (Block)))`
	if got := Format(sw); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
	want = `(TryFinally (Block (TryCatch (Block) e (Block))) (Block))`
	if got := Format(try); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}
