package reduce

import (
	"testing"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/explicator"
	"github.com/nooga/explicate/pkg/jumps"
	"github.com/nooga/explicate/pkg/lexer"
	"github.com/nooga/explicate/pkg/parser"
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

// labeledBlock builds `l: { if (a) break l; break l; }` with one shared
// target.
func labeledBlock() (*asg.Block, *asg.BreakTarget) {
	target := &asg.BreakTarget{Name: "l"}
	body := &asg.Block{Children: []asg.Node{
		&asg.IfElse{
			Test:       &asg.GlobalReference{Name: "a"},
			Consequent: &asg.Block{Children: []asg.Node{&asg.Break{Target: target}}},
			Alternate:  &asg.Block{},
		},
		&asg.Break{Target: target},
	}}
	return &asg.Block{Children: []asg.Node{body, target}}, target
}

func kinds(ns []asg.Node) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = asg.KindOf(n)
	}
	return out
}

func TestChildren(t *testing.T) {
	tests := []struct {
		node asg.Node
		want []string
	}{
		{
			&asg.BlockWithValue{Head: &asg.Block{}, Result: &asg.LiteralNumber{Value: 1}},
			[]string{"Block", "LiteralNumber"},
		},
		{
			&asg.Call{Callee: &asg.GlobalReference{Name: "f"}, Arguments: []asg.NodeWithValue{&asg.This{}, &asg.LiteralNull{}}},
			[]string{"GlobalReference", "This", "LiteralNull"},
		},
		{
			&asg.Call{Context: &asg.This{}, Callee: &asg.GlobalReference{Name: "f"}},
			[]string{"This", "GlobalReference"},
		},
		{
			&asg.SwitchStatement{
				Discriminant:     &asg.LiteralNumber{},
				PreDefaultCases:  []*asg.SwitchCase{{Test: &asg.LiteralNumber{}, Body: &asg.Block{}}},
				PostDefaultCases: []*asg.SwitchCase{{Test: &asg.LiteralNumber{}, Body: &asg.Block{}}},
			},
			[]string{"LiteralNumber", "SwitchCase", "SwitchCase"},
		},
		{
			&asg.TryCatch{TryBody: &asg.Block{}, CatchBody: &asg.Block{}},
			[]string{"Block", "Block"},
		},
		{
			&asg.MemberDefinition{
				Object:   &asg.TemporaryReference{},
				Key:      &asg.LiteralString{Value: "k"},
				Property: &asg.Getter{Function: &asg.LiteralFunction{Body: &asg.Block{}}},
			},
			[]string{"TemporaryReference", "LiteralString", "Getter"},
		},
		{&asg.Break{Target: &asg.BreakTarget{}}, []string{"BreakTarget"}},
		{&asg.GlobalReference{Name: "x"}, []string{}},
	}
	for _, tt := range tests {
		got := kinds(Children(tt.node))
		if len(got) != len(tt.want) {
			t.Errorf("Children(%s) = %v, want %v", asg.KindOf(tt.node), got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Children(%s) = %v, want %v", asg.KindOf(tt.node), got, tt.want)
				break
			}
		}
	}
}

func TestFoldVisitsSharedNodesOnce(t *testing.T) {
	root, target := labeledBlock()
	visits := make(map[asg.Node]int)
	total := Fold(root, Sum, func(n asg.Node, children int) int {
		visits[n]++
		return children + 1
	})
	for n, count := range visits {
		if count != 1 {
			t.Errorf("%s visited %d times", asg.KindOf(n), count)
		}
	}
	if visits[target] != 1 {
		t.Errorf("target visited %d times", visits[target])
	}
	// The memoized result of the target is reused by each reference, so the
	// sum counts it three times while the visit count does not.
	if total != CountNaive(root) {
		t.Errorf("folded sum = %d, naive count = %d", total, CountNaive(root))
	}
}

func TestCounts(t *testing.T) {
	root, _ := labeledBlock()
	// root, body, if, test, consequent, break, alternate, break, target
	if got := CountDistinct(root); got != 9 {
		t.Errorf("CountDistinct = %d, want 9", got)
	}
	// The target is reached from both breaks and from root.
	if got := CountNaive(root); got != 11 {
		t.Errorf("CountNaive = %d, want 11", got)
	}
}

func TestFindAll(t *testing.T) {
	root, target := labeledBlock()
	targets := FindAll(root, "BreakTarget")
	if len(targets) != 1 || targets[0] != target {
		t.Errorf("FindAll(BreakTarget) = %v", targets)
	}
	if got := len(FindAll(root, "Break")); got != 2 {
		t.Errorf("found %d breaks, want 2", got)
	}
	halts := Collect(root, func(n asg.Node) bool { _, ok := n.(*asg.Halt); return ok })
	if len(halts) != 0 {
		t.Errorf("found %d halts", len(halts))
	}
}

func TestIdentityRebuild(t *testing.T) {
	root, target := labeledBlock()
	r := NewRebuilder(nil)
	out := r.Node(root).(*asg.Block)

	if asg.Format(out) != asg.Format(root) {
		t.Fatalf("rebuild changed the graph:\n got %s\nwant %s", asg.Format(out), asg.Format(root))
	}
	if out == root {
		t.Fatal("rebuild returned the original root")
	}
	rebuilt, ok := r.Lookup(target)
	if !ok {
		t.Fatal("target was not rebuilt")
	}
	if rebuilt == asg.Node(target) {
		t.Error("target was not copied")
	}

	body := out.Children[0].(*asg.Block)
	first := body.Children[0].(*asg.IfElse).Consequent.Children[0].(*asg.Break)
	second := body.Children[1].(*asg.Break)
	if first.Target != rebuilt || second.Target != rebuilt || out.Children[1] != rebuilt {
		t.Error("rebuilt breaks do not share the rebuilt target")
	}
	if CountDistinct(out) != CountDistinct(root) {
		t.Errorf("distinct count changed: %d != %d", CountDistinct(out), CountDistinct(root))
	}
}

func TestIdentityRebuildOfLoweredPrograms(t *testing.T) {
	inputs := []string{
		"outer: for (var i = 0; i < 3; i++) { try { if (i) continue outer; break; } finally { f(); } }",
		"function g(a) { l: while (a) { try { return a; } catch (e) { break l; } finally { h(); } } } g(1);",
		"for (k in o) { switch (k) { case 'a': break; default: continue; } }",
		"x = { a: 1, get b() { return 2; } }; y = [1, , 3]; z = c ? d : e; a[f()] = g();",
	}
	for _, input := range inputs {
		sem := lower(t, input)
		r := NewRebuilder(nil)
		out := r.Node(sem.Root)

		if asg.Format(out) != asg.Format(sem.Root) {
			t.Errorf("%s: rebuild changed the graph:\n got %s\nwant %s", input, asg.Format(out), asg.Format(sem.Root))
		}
		if CountDistinct(out) != CountDistinct(sem.Root) || CountNaive(out) != CountNaive(sem.Root) {
			t.Errorf("%s: counts changed: distinct %d/%d naive %d/%d", input,
				CountDistinct(out), CountDistinct(sem.Root), CountNaive(out), CountNaive(sem.Root))
		}

		originals := make(map[asg.Node]bool)
		for _, n := range Collect(sem.Root, func(asg.Node) bool { return true }) {
			originals[n] = true
			if rebuilt, ok := r.Lookup(n); !ok || rebuilt == n {
				t.Errorf("%s: %s was not copied", input, asg.KindOf(n))
			}
		}
		for _, n := range Collect(out, func(asg.Node) bool { return true }) {
			if originals[n] {
				t.Errorf("%s: rebuilt graph reuses an original %s", input, asg.KindOf(n))
			}
		}

		for _, bt := range FindAll(sem.Root, "BreakTarget") {
			rebuilt, _ := r.Lookup(bt)
			for _, b := range FindAll(sem.Root, "Break") {
				if b.(*asg.Break).Target != bt {
					continue
				}
				nb, _ := r.Lookup(b)
				if nb.(*asg.Break).Target != rebuilt {
					t.Errorf("%s: rebuilt break does not share the rebuilt target", input)
				}
			}
		}
	}
}

func TestRebuildTransform(t *testing.T) {
	root := &asg.Block{Children: []asg.Node{
		&asg.Call{Callee: &asg.GlobalReference{Name: "f"}, Arguments: []asg.NodeWithValue{&asg.LiteralNumber{Value: 1}}},
		&asg.LiteralNumber{Value: 1},
		&asg.Void{},
	}}
	out := Rebuild(root, func(n asg.Node) asg.Node {
		switch n := n.(type) {
		case *asg.LiteralNumber:
			return &asg.LiteralNumber{Value: n.Value + 1}
		case *asg.Void:
			return nil
		}
		return n
	})
	want := `(Block (Call _ (GlobalReference f) (LiteralNumber 2)) (LiteralNumber 2))`
	if got := asg.Format(out); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRebuildWrapsBlockReplacements(t *testing.T) {
	root := &asg.IfElse{
		Test:       &asg.GlobalReference{Name: "a"},
		Consequent: &asg.Block{},
		Alternate:  &asg.Block{},
	}
	out := Rebuild(root, func(n asg.Node) asg.Node {
		if b, ok := n.(*asg.Block); ok && len(b.Children) == 0 {
			return &asg.Halt{Reason: "empty"}
		}
		return n
	})
	want := `(IfElse (GlobalReference a) (Block (Halt "empty")) (Block (Halt "empty")))`
	if got := asg.Format(out); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRebuildRejectsValueReplacedByStatement(t *testing.T) {
	defer func() {
		if _, ok := recover().(*errors.InvariantError); !ok {
			t.Error("expected an invariant panic")
		}
	}()
	root := &asg.Throw{Expression: &asg.LiteralNumber{Value: 1}}
	Rebuild(root, func(n asg.Node) asg.Node {
		if _, ok := n.(*asg.LiteralNumber); ok {
			return &asg.Block{}
		}
		return n
	})
}

func TestCyclePanics(t *testing.T) {
	defer func() {
		if _, ok := recover().(*errors.InvariantError); !ok {
			t.Error("expected an invariant panic")
		}
	}()
	b := &asg.Block{}
	b.Children = []asg.Node{b}
	CountDistinct(b)
}

func TestRebuildSemantics(t *testing.T) {
	fn := &asg.LiteralFunction{Body: &asg.Block{}}
	dead := &asg.LiteralFunction{Body: &asg.Block{}}
	fnScope := &scope.Scope{Kind: scope.FunctionScope}
	sem := &asg.Semantics{
		Root: &asg.Block{Children: []asg.Node{
			&asg.VariableAssignment{Reference: &asg.GlobalReference{Name: "f"}, Value: fn},
			&asg.IfElse{
				Test:       &asg.LiteralBoolean{Value: false},
				Consequent: &asg.Block{Children: []asg.Node{&asg.Call{Callee: dead}}},
				Alternate:  &asg.Block{},
			},
		}},
		TopLevelVarNames: []string{"f"},
		FunctionScopes:   map[*asg.LiteralFunction]*scope.Scope{fn: fnScope, dead: fnScope},
	}
	out := RebuildSemantics(sem, func(n asg.Node) asg.Node {
		if ie, ok := n.(*asg.IfElse); ok {
			return ie.Alternate
		}
		return n
	})
	if len(out.FunctionScopes) != 1 {
		t.Fatalf("got %d function scopes, want 1", len(out.FunctionScopes))
	}
	rebuilt := out.Root.Children[0].(*asg.VariableAssignment).Value.(*asg.LiteralFunction)
	if rebuilt == fn {
		t.Error("function was not rebuilt")
	}
	if out.FunctionScopes[rebuilt] != fnScope {
		t.Error("function scope was not re-keyed")
	}
	if len(out.TopLevelVarNames) != 1 || out.TopLevelVarNames[0] != "f" {
		t.Errorf("TopLevelVarNames = %v", out.TopLevelVarNames)
	}
}
