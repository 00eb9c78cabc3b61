// Package constfold evaluates operations on literal operands ahead of time
// and prunes branches whose test is known.
package constfold

import (
	"fmt"
	"math"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/ecma"
	"github.com/nooga/explicate/pkg/reduce"
)

const debugConstFold = false

func debugPrintf(format string, args ...interface{}) {
	if debugConstFold {
		fmt.Printf("[ConstFold] "+format+"\n", args...)
	}
}

// Fold returns a folded copy of sem. The input graph is left untouched.
func Fold(sem *asg.Semantics) *asg.Semantics {
	return reduce.RebuildSemantics(sem, fold)
}

// FoldNode returns a folded copy of the graph under n.
func FoldNode(n asg.Node) asg.Node {
	return reduce.Rebuild(n, fold)
}

// fold rewrites one node whose children are already folded.
func fold(n asg.Node) asg.Node {
	switch n := n.(type) {
	case *asg.Not:
		if v, ok := Truthiness(n.Expression); ok {
			return &asg.LiteralBoolean{Value: !v}
		}
		if inner, ok := n.Expression.(*asg.Not); ok {
			if innermost, ok := inner.Expression.(*asg.Not); ok {
				return innermost
			}
		}
	case *asg.IfElse:
		if v, ok := Truthiness(n.Test); ok {
			debugPrintf("if: test is always %t", v)
			if v {
				return n.Consequent
			}
			return n.Alternate
		}
	case *asg.Logic:
		v, ok := Truthiness(n.Left)
		if !ok {
			break
		}
		if v == (n.Operator == "||") {
			return n.Left
		}
		return &asg.BlockWithValue{Head: &asg.Block{Children: []asg.Node{n.Left}}, Result: n.Right}
	case *asg.FloatMath:
		if r, ok := floatMath(n); ok {
			return r
		}
	case *asg.IntMath:
		if r, ok := intMath(n); ok {
			return r
		}
	case *asg.Negation:
		switch e := n.Expression.(type) {
		case *asg.LiteralNumber:
			return &asg.LiteralNumber{Value: -e.Value}
		case *asg.LiteralInfinity:
			return &asg.LiteralNumber{Value: math.Inf(-1)}
		}
	case *asg.BitwiseNot:
		if i, ok := ecma.ToInt32(n.Expression); ok {
			return &asg.LiteralNumber{Value: float64(^i)}
		}
	case *asg.TypeCoercionNumber:
		if f, ok := ecma.ToNumber(n.Expression); ok {
			return &asg.LiteralNumber{Value: f}
		}
	case *asg.TypeCoercionString:
		if s, ok := ecma.ToString(n.Expression); ok {
			return &asg.LiteralString{Value: s}
		}
	}
	return n
}

func floatMath(n *asg.FloatMath) (asg.NodeWithValue, bool) {
	if !ecma.IsPrimitiveLiteral(n.Left) || !ecma.IsPrimitiveLiteral(n.Right) {
		return nil, false
	}
	if n.Operator == "+" {
		lt, _ := ecma.Type(n.Left)
		rt, _ := ecma.Type(n.Right)
		if lt == ecma.String || rt == ecma.String {
			l, _ := ecma.ToString(n.Left)
			r, _ := ecma.ToString(n.Right)
			return &asg.LiteralString{Value: l + r}, true
		}
	}
	l, _ := ecma.ToNumber(n.Left)
	r, _ := ecma.ToNumber(n.Right)
	var f float64
	switch n.Operator {
	case "+":
		f = l + r
	case "-":
		f = l - r
	case "*":
		f = l * r
	case "/":
		f = l / r
	case "%":
		f = math.Mod(l, r)
	case "**":
		f = pow(l, r)
	default:
		return nil, false
	}
	return &asg.LiteralNumber{Value: f}, true
}

// pow is Math.pow, which differs from math.Pow for a base of magnitude one
// and an infinite or NaN exponent.
func pow(base, exp float64) float64 {
	if math.IsNaN(exp) || (math.Abs(base) == 1 && math.IsInf(exp, 0)) {
		return math.NaN()
	}
	return math.Pow(base, exp)
}

func intMath(n *asg.IntMath) (asg.NodeWithValue, bool) {
	if !ecma.IsPrimitiveLiteral(n.Left) || !ecma.IsPrimitiveLiteral(n.Right) {
		return nil, false
	}
	l, _ := ecma.ToInt32(n.Left)
	r, _ := ecma.ToInt32(n.Right)
	shift := uint32(r) & 31
	var f float64
	switch n.Operator {
	case "&":
		f = float64(l & r)
	case "|":
		f = float64(l | r)
	case "^":
		f = float64(l ^ r)
	case "<<":
		f = float64(l << shift)
	case ">>":
		f = float64(l >> shift)
	case ">>>":
		u, _ := ecma.ToUint32(n.Left)
		f = float64(u >> shift)
	default:
		return nil, false
	}
	return &asg.LiteralNumber{Value: f}, true
}
