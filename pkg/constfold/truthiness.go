package constfold

import (
	"math"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/ecma"
)

// Truthiness returns the boolean a node coerces to when it can be known
// without evaluating anything with side effects. Literals, logical nots,
// equality between literals and logic over resolvable operands are
// resolved; everything else is unknown.
func Truthiness(n asg.NodeWithValue) (value, known bool) {
	switch n := n.(type) {
	case *asg.Not:
		v, ok := Truthiness(n.Expression)
		return !v, ok
	case *asg.Equality:
		return literalEquality(n)
	case *asg.Logic:
		l, lok := Truthiness(n.Left)
		r, rok := Truthiness(n.Right)
		if !lok || !rok {
			return false, false
		}
		if n.Operator == "&&" {
			return l && r, true
		}
		return l || r, true
	}
	return ecma.ToBoolean(n)
}

// literalEquality resolves an equality between two primitive literals.
// Loose equality across types is left alone, except null == undefined.
func literalEquality(n *asg.Equality) (bool, bool) {
	if !ecma.IsPrimitiveLiteral(n.Left) || !ecma.IsPrimitiveLiteral(n.Right) {
		return false, false
	}
	negate := n.Operator == "!=" || n.Operator == "!=="
	strict := n.Operator == "===" || n.Operator == "!=="

	lt, _ := ecma.Type(n.Left)
	rt, _ := ecma.Type(n.Right)
	var equal bool
	switch {
	case lt == rt:
		if lt == ecma.Number {
			l, _ := ecma.ToNumber(n.Left)
			r, _ := ecma.ToNumber(n.Right)
			if math.IsNaN(l) || math.IsNaN(r) {
				return false, false
			}
			equal = l == r
		} else {
			l, _ := ecma.ToString(n.Left)
			r, _ := ecma.ToString(n.Right)
			equal = l == r
		}
	case strict:
		equal = false
	case (lt == ecma.Null || lt == ecma.Undefined) && (rt == ecma.Null || rt == ecma.Undefined):
		equal = true
	default:
		return false, false
	}
	return equal != negate, true
}
