package reduce

import (
	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/scope"
)

// Transform maps a freshly rebuilt node to its replacement. It may return
// its argument unchanged.
type Transform func(asg.Node) asg.Node

// Rebuilder reconstructs a graph bottom-up. Every node is copied once with
// rebuilt children and then passed through the transform; the result is
// memoized by the identity of the original node, so a shared node maps to
// the same replacement at every reference.
type Rebuilder struct {
	transform Transform
	memo      map[asg.Node]asg.Node
	visiting  map[asg.Node]bool
}

// NewRebuilder returns a Rebuilder applying transform. A nil transform
// rebuilds an identical copy.
func NewRebuilder(transform Transform) *Rebuilder {
	if transform == nil {
		transform = func(n asg.Node) asg.Node { return n }
	}
	return &Rebuilder{
		transform: transform,
		memo:      make(map[asg.Node]asg.Node),
		visiting:  make(map[asg.Node]bool),
	}
}

// Rebuild rebuilds the graph under root with transform.
func Rebuild(root asg.Node, transform Transform) asg.Node {
	return NewRebuilder(transform).Node(root)
}

// RebuildSemantics rebuilds the root block of sem. Function scopes are
// re-keyed to the rebuilt function literals; functions that did not survive
// the transform are dropped.
func RebuildSemantics(sem *asg.Semantics, transform Transform) *asg.Semantics {
	r := NewRebuilder(transform)
	out := &asg.Semantics{
		Root:             r.block(sem.Root),
		Locals:           append([]*scope.Variable(nil), sem.Locals...),
		TopLevelVarNames: append([]string(nil), sem.TopLevelVarNames...),
		FunctionScopes:   make(map[*asg.LiteralFunction]*scope.Scope, len(sem.FunctionScopes)),
	}
	live := make(map[asg.Node]bool)
	for _, fn := range FindAll(out.Root, "LiteralFunction") {
		live[fn] = true
	}
	for fn, s := range sem.FunctionScopes {
		if rebuilt, ok := r.memo[fn].(*asg.LiteralFunction); ok && live[rebuilt] {
			out.FunctionScopes[rebuilt] = s
		}
	}
	return out
}

// Lookup returns the replacement computed for the original node n.
func (r *Rebuilder) Lookup(n asg.Node) (asg.Node, bool) {
	out, ok := r.memo[n]
	return out, ok
}

// Node rebuilds n.
func (r *Rebuilder) Node(n asg.Node) asg.Node {
	if isNil(n) {
		return nil
	}
	if out, ok := r.memo[n]; ok {
		return out
	}
	if r.visiting[n] {
		errors.Invariantf("cycle through %s", asg.KindOf(n))
	}
	r.visiting[n] = true
	out := r.transform(r.copy(n))
	delete(r.visiting, n)
	r.memo[n] = out
	return out
}

// --- typed rebuilding of fields ---

func (r *Rebuilder) value(n asg.NodeWithValue) asg.NodeWithValue {
	if n == nil {
		return nil
	}
	out := r.Node(n)
	v, ok := out.(asg.NodeWithValue)
	if !ok {
		errors.Invariantf("%s replaced by %s in a value position", asg.KindOf(n), asg.KindOf(out))
	}
	return v
}

func (r *Rebuilder) values(ns []asg.NodeWithValue) []asg.NodeWithValue {
	if ns == nil {
		return nil
	}
	out := make([]asg.NodeWithValue, len(ns))
	for i, n := range ns {
		out[i] = r.value(n)
	}
	return out
}

func (r *Rebuilder) reference(n asg.VariableReference) asg.VariableReference {
	out := r.Node(n)
	ref, ok := out.(asg.VariableReference)
	if !ok {
		errors.Invariantf("%s replaced by %s as an assignment target", asg.KindOf(n), asg.KindOf(out))
	}
	return ref
}

// block rebuilds a block-valued field. A replacement that is not a block is
// wrapped in one.
func (r *Rebuilder) block(b *asg.Block) *asg.Block {
	if b == nil {
		return nil
	}
	switch out := r.Node(b).(type) {
	case *asg.Block:
		return out
	case nil:
		return &asg.Block{}
	default:
		return &asg.Block{Children: []asg.Node{out}}
	}
}

func (r *Rebuilder) function(fn *asg.LiteralFunction) *asg.LiteralFunction {
	if fn == nil {
		return nil
	}
	out, ok := r.Node(fn).(*asg.LiteralFunction)
	if !ok {
		errors.Invariantf("function literal replaced in an accessor")
	}
	return out
}

func (r *Rebuilder) target(t *asg.BreakTarget) *asg.BreakTarget {
	out, ok := r.Node(t).(*asg.BreakTarget)
	if !ok {
		errors.Invariantf("break target replaced by a different kind of node")
	}
	return out
}

func (r *Rebuilder) switchCases(cs []*asg.SwitchCase) []*asg.SwitchCase {
	if cs == nil {
		return nil
	}
	out := make([]*asg.SwitchCase, len(cs))
	for i, c := range cs {
		sc, ok := r.Node(c).(*asg.SwitchCase)
		if !ok {
			errors.Invariantf("switch case replaced by a different kind of node")
		}
		out[i] = sc
	}
	return out
}

// copy returns a new node of the same kind as n with rebuilt children.
// Children are rebuilt in the order Children lists them.
func (r *Rebuilder) copy(n asg.Node) asg.Node {
	switch n := n.(type) {
	case *asg.LiteralBoolean:
		return &asg.LiteralBoolean{Value: n.Value}
	case *asg.LiteralNumber:
		return &asg.LiteralNumber{Value: n.Value}
	case *asg.LiteralString:
		return &asg.LiteralString{Value: n.Value}
	case *asg.LiteralNull:
		return &asg.LiteralNull{}
	case *asg.LiteralUndefined:
		return &asg.LiteralUndefined{}
	case *asg.LiteralInfinity:
		return &asg.LiteralInfinity{}
	case *asg.LiteralEmptyArray:
		return &asg.LiteralEmptyArray{}
	case *asg.LiteralEmptyObject:
		return &asg.LiteralEmptyObject{}
	case *asg.LiteralRegExp:
		return &asg.LiteralRegExp{Pattern: n.Pattern, Flags: n.Flags}
	case *asg.LiteralSymbol:
		return &asg.LiteralSymbol{Description: n.Description}
	case *asg.LiteralFunction:
		c := *n
		c.Body = r.block(n.Body)
		return &c
	case *asg.GlobalReference:
		return &asg.GlobalReference{Name: n.Name}
	case *asg.LocalReference:
		return &asg.LocalReference{Variable: n.Variable}
	case *asg.TemporaryReference:
		return &asg.TemporaryReference{Variable: n.Variable}
	case *asg.This:
		return &asg.This{}
	case *asg.Equality:
		left := r.value(n.Left)
		return &asg.Equality{Operator: n.Operator, Left: left, Right: r.value(n.Right)}
	case *asg.FloatMath:
		left := r.value(n.Left)
		return &asg.FloatMath{Operator: n.Operator, Left: left, Right: r.value(n.Right)}
	case *asg.IntMath:
		left := r.value(n.Left)
		return &asg.IntMath{Operator: n.Operator, Left: left, Right: r.value(n.Right)}
	case *asg.Logic:
		left := r.value(n.Left)
		return &asg.Logic{Operator: n.Operator, Left: left, Right: r.value(n.Right)}
	case *asg.RelationalComparison:
		left := r.value(n.Left)
		return &asg.RelationalComparison{Operator: n.Operator, Left: left, Right: r.value(n.Right)}
	case *asg.In:
		key := r.value(n.Key)
		return &asg.In{Key: key, Object: r.value(n.Object)}
	case *asg.InstanceOf:
		object := r.value(n.Object)
		return &asg.InstanceOf{Object: object, Constructor: r.value(n.Constructor)}
	case *asg.Negation:
		return &asg.Negation{Expression: r.value(n.Expression)}
	case *asg.Not:
		return &asg.Not{Expression: r.value(n.Expression)}
	case *asg.BitwiseNot:
		return &asg.BitwiseNot{Expression: r.value(n.Expression)}
	case *asg.Typeof:
		return &asg.Typeof{Expression: r.value(n.Expression)}
	case *asg.VoidOp:
		return &asg.VoidOp{Expression: r.value(n.Expression)}
	case *asg.VariableAssignment:
		ref := r.reference(n.Reference)
		return &asg.VariableAssignment{Reference: ref, Value: r.value(n.Value), Strict: n.Strict}
	case *asg.MemberAccess:
		object := r.value(n.Object)
		return &asg.MemberAccess{Object: object, Key: r.value(n.Key)}
	case *asg.MemberAssignment:
		object := r.value(n.Object)
		key := r.value(n.Key)
		return &asg.MemberAssignment{Object: object, Key: key, Value: r.value(n.Value), Strict: n.Strict}
	case *asg.MemberCall:
		object := r.value(n.Object)
		key := r.value(n.Key)
		return &asg.MemberCall{Object: object, Key: key, Arguments: r.values(n.Arguments)}
	case *asg.MemberDelete:
		object := r.value(n.Object)
		return &asg.MemberDelete{Object: object, Key: r.value(n.Key), Strict: n.Strict}
	case *asg.MemberDefinition:
		object := r.value(n.Object)
		key := r.value(n.Key)
		property, ok := r.Node(n.Property).(asg.Property)
		if !ok {
			errors.Invariantf("property of a member definition replaced by a non-property")
		}
		return &asg.MemberDefinition{Object: object, Key: key, Property: property}
	case *asg.StaticValue:
		return &asg.StaticValue{Value: r.value(n.Value)}
	case *asg.Getter:
		return &asg.Getter{Function: r.function(n.Function)}
	case *asg.Setter:
		return &asg.Setter{Function: r.function(n.Function)}
	case *asg.Call:
		context := r.value(n.Context)
		callee := r.value(n.Callee)
		return &asg.Call{Context: context, Callee: callee, Arguments: r.values(n.Arguments)}
	case *asg.New:
		callee := r.value(n.Callee)
		return &asg.New{Callee: callee, Arguments: r.values(n.Arguments)}
	case *asg.TypeCoercionNumber:
		return &asg.TypeCoercionNumber{Expression: r.value(n.Expression)}
	case *asg.TypeCoercionString:
		return &asg.TypeCoercionString{Expression: r.value(n.Expression)}
	case *asg.RequireObjectCoercible:
		return &asg.RequireObjectCoercible{Expression: r.value(n.Expression)}
	case *asg.DeleteGlobalProperty:
		return &asg.DeleteGlobalProperty{Name: n.Name}
	case *asg.TypeofGlobal:
		return &asg.TypeofGlobal{Name: n.Name}
	case *asg.Keys:
		return &asg.Keys{Object: r.value(n.Object)}
	case *asg.Block:
		children := make([]asg.Node, 0, len(n.Children))
		for _, c := range n.Children {
			if out := r.Node(c); out != nil {
				children = append(children, out)
			}
		}
		return &asg.Block{Children: children}
	case *asg.BlockWithValue:
		head := r.block(n.Head)
		return &asg.BlockWithValue{Head: head, Result: r.value(n.Result)}
	case *asg.Loop:
		return &asg.Loop{Body: r.block(n.Body)}
	case *asg.IfElse:
		test := r.value(n.Test)
		consequent := r.block(n.Consequent)
		return &asg.IfElse{Test: test, Consequent: consequent, Alternate: r.block(n.Alternate)}
	case *asg.SwitchCase:
		test := r.value(n.Test)
		return &asg.SwitchCase{Test: test, Body: r.block(n.Body)}
	case *asg.SwitchStatement:
		discriminant := r.value(n.Discriminant)
		pre := r.switchCases(n.PreDefaultCases)
		def := r.block(n.DefaultCase)
		return &asg.SwitchStatement{
			Discriminant:     discriminant,
			PreDefaultCases:  pre,
			DefaultCase:      def,
			PostDefaultCases: r.switchCases(n.PostDefaultCases),
		}
	case *asg.TryCatch:
		try := r.block(n.TryBody)
		return &asg.TryCatch{TryBody: try, CatchVariable: n.CatchVariable, CatchBody: r.block(n.CatchBody)}
	case *asg.TryFinally:
		try := r.block(n.TryBody)
		return &asg.TryFinally{TryBody: try, FinallyBody: r.block(n.FinallyBody)}
	case *asg.Throw:
		return &asg.Throw{Expression: r.value(n.Expression)}
	case *asg.Return:
		return &asg.Return{Expression: r.value(n.Expression), Crossings: n.Crossings}
	case *asg.Void:
		return &asg.Void{}
	case *asg.Halt:
		return &asg.Halt{Reason: n.Reason}
	case *asg.BreakTarget:
		return &asg.BreakTarget{Name: n.Name}
	case *asg.Break:
		return &asg.Break{Target: r.target(n.Target), Crossings: n.Crossings}
	}
	errors.Invariantf("cannot rebuild %s", asg.KindOf(n))
	return nil
}
