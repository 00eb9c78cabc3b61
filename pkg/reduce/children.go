// Package reduce traverses the semantic graph once per node identity.
//
// The graph is a DAG: a BreakTarget is referenced from every Break that
// jumps to it as well as from the block it resolves in. Fold and Rebuild
// memoize on node identity, so a shared node is visited once and every
// reference to it sees the same result.
package reduce

import "github.com/nooga/explicate/pkg/asg"

// Children returns the direct children of n in evaluation order. nil
// optional children (a Call without context, a TryCatch without a catch
// variable) are omitted.
func Children(n asg.Node) []asg.Node {
	var out []asg.Node
	add := func(c asg.Node) {
		if !isNil(c) {
			out = append(out, c)
		}
	}
	addValues := func(cs []asg.NodeWithValue) {
		for _, c := range cs {
			add(c)
		}
	}

	switch n := n.(type) {
	case *asg.LiteralFunction:
		add(n.Body)
	case *asg.Equality:
		add(n.Left)
		add(n.Right)
	case *asg.FloatMath:
		add(n.Left)
		add(n.Right)
	case *asg.IntMath:
		add(n.Left)
		add(n.Right)
	case *asg.Logic:
		add(n.Left)
		add(n.Right)
	case *asg.RelationalComparison:
		add(n.Left)
		add(n.Right)
	case *asg.In:
		add(n.Key)
		add(n.Object)
	case *asg.InstanceOf:
		add(n.Object)
		add(n.Constructor)
	case *asg.Negation:
		add(n.Expression)
	case *asg.Not:
		add(n.Expression)
	case *asg.BitwiseNot:
		add(n.Expression)
	case *asg.Typeof:
		add(n.Expression)
	case *asg.VoidOp:
		add(n.Expression)
	case *asg.VariableAssignment:
		add(n.Reference)
		add(n.Value)
	case *asg.MemberAccess:
		add(n.Object)
		add(n.Key)
	case *asg.MemberAssignment:
		add(n.Object)
		add(n.Key)
		add(n.Value)
	case *asg.MemberCall:
		add(n.Object)
		add(n.Key)
		addValues(n.Arguments)
	case *asg.MemberDelete:
		add(n.Object)
		add(n.Key)
	case *asg.MemberDefinition:
		add(n.Object)
		add(n.Key)
		add(n.Property)
	case *asg.StaticValue:
		add(n.Value)
	case *asg.Getter:
		add(n.Function)
	case *asg.Setter:
		add(n.Function)
	case *asg.Call:
		add(n.Context)
		add(n.Callee)
		addValues(n.Arguments)
	case *asg.New:
		add(n.Callee)
		addValues(n.Arguments)
	case *asg.TypeCoercionNumber:
		add(n.Expression)
	case *asg.TypeCoercionString:
		add(n.Expression)
	case *asg.RequireObjectCoercible:
		add(n.Expression)
	case *asg.Keys:
		add(n.Object)
	case *asg.Block:
		for _, c := range n.Children {
			add(c)
		}
	case *asg.BlockWithValue:
		add(n.Head)
		add(n.Result)
	case *asg.Loop:
		add(n.Body)
	case *asg.IfElse:
		add(n.Test)
		add(n.Consequent)
		add(n.Alternate)
	case *asg.SwitchCase:
		add(n.Test)
		add(n.Body)
	case *asg.SwitchStatement:
		add(n.Discriminant)
		for _, c := range n.PreDefaultCases {
			add(c)
		}
		add(n.DefaultCase)
		for _, c := range n.PostDefaultCases {
			add(c)
		}
	case *asg.TryCatch:
		add(n.TryBody)
		add(n.CatchBody)
	case *asg.TryFinally:
		add(n.TryBody)
		add(n.FinallyBody)
	case *asg.Throw:
		add(n.Expression)
	case *asg.Return:
		add(n.Expression)
	case *asg.Break:
		add(n.Target)
	}
	return out
}

// isNil reports whether c is nil or a typed nil pointer of a known
// optional field.
func isNil(c asg.Node) bool {
	switch c := c.(type) {
	case nil:
		return true
	case *asg.Block:
		return c == nil
	case *asg.BreakTarget:
		return c == nil
	case *asg.LiteralFunction:
		return c == nil
	case *asg.SwitchCase:
		return c == nil
	}
	return false
}
