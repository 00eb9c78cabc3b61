package explicator

import (
	"math"
	"strconv"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/ecma"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/scope"
)

// effect lowers an expression whose value is discarded.
func (e *Explicator) effect(expr parser.Expression) asg.Node {
	switch ex := expr.(type) {
	case *parser.UpdateExpression:
		return discard(e.update(ex, false))
	case *parser.SequenceExpression:
		var children []asg.Node
		for _, sub := range ex.Expressions {
			children = append(children, nodes(e.effect(sub))...)
		}
		return &asg.Block{Children: children}
	}
	return discard(e.expression(expr))
}

func (e *Explicator) expressions(exprs []parser.Expression) []asg.NodeWithValue {
	out := make([]asg.NodeWithValue, 0, len(exprs))
	for _, expr := range exprs {
		if spread, ok := expr.(*parser.SpreadElement); ok {
			e.unsupported(spread, "")
		}
		out = append(out, e.expression(expr))
	}
	return out
}

func (e *Explicator) expression(expr parser.Expression) asg.NodeWithValue {
	switch ex := expr.(type) {
	case *parser.Identifier:
		return e.identifier(ex)
	case *parser.NumberLiteral:
		return &asg.LiteralNumber{Value: ex.Value}
	case *parser.StringLiteral:
		return &asg.LiteralString{Value: ex.Value}
	case *parser.BooleanLiteral:
		return &asg.LiteralBoolean{Value: ex.Value}
	case *parser.NullLiteral:
		return &asg.LiteralNull{}
	case *parser.RegexLiteral:
		return &asg.LiteralRegExp{Pattern: ex.Pattern, Flags: ex.Flags}
	case *parser.ThisExpression:
		return &asg.This{}
	case *parser.ArrayLiteral:
		return e.arrayLiteral(ex)
	case *parser.ObjectLiteral:
		return e.objectLiteral(ex)
	case *parser.FunctionLiteral:
		return e.function(ex, true)
	case *parser.PrefixExpression:
		return e.prefix(ex)
	case *parser.UpdateExpression:
		return e.update(ex, true)
	case *parser.InfixExpression:
		left := e.expression(ex.Left)
		return e.binary(ex, ex.Operator, left, e.expression(ex.Right))
	case *parser.AssignmentExpression:
		return e.assignment(ex)
	case *parser.TernaryExpression:
		return e.conditional(ex)
	case *parser.CallExpression:
		return e.call(ex)
	case *parser.NewExpression:
		callee := e.expression(ex.Constructor)
		return &asg.New{Callee: callee, Arguments: e.expressions(ex.Arguments)}
	case *parser.MemberExpression:
		return &asg.MemberAccess{Object: e.expression(ex.Object), Key: &asg.LiteralString{Value: ex.Property.Value}}
	case *parser.IndexExpression:
		object := e.expression(ex.Object)
		return &asg.MemberAccess{Object: object, Key: e.propertyKey(ex.Index)}
	case *parser.SequenceExpression:
		last := len(ex.Expressions) - 1
		var head []asg.Node
		for _, sub := range ex.Expressions[:last] {
			head = append(head, nodes(e.effect(sub))...)
		}
		return sequence(head, e.expression(ex.Expressions[last]))
	default:
		e.unsupported(expr, "")
		return nil
	}
}

func (e *Explicator) identifier(id *parser.Identifier) asg.NodeWithValue {
	v := e.referenced(id)
	if !e.lookup.IsGlobal(v) {
		return &asg.LocalReference{Variable: v}
	}
	switch id.Value {
	case "undefined":
		return &asg.LiteralUndefined{}
	case "NaN":
		return &asg.LiteralNumber{Value: math.NaN()}
	case "Infinity":
		return &asg.LiteralInfinity{}
	}
	return &asg.GlobalReference{Name: id.Value}
}

// staticKey returns the property name of a string or number literal key.
func staticKey(expr parser.Expression) (string, bool) {
	switch k := expr.(type) {
	case *parser.StringLiteral:
		return k.Value, true
	case *parser.NumberLiteral:
		return ecma.NumberToString(k.Value), true
	}
	return "", false
}

// propertyKey lowers a computed key read in place by a member access.
func (e *Explicator) propertyKey(expr parser.Expression) asg.NodeWithValue {
	if key, ok := staticKey(expr); ok {
		return &asg.LiteralString{Value: key}
	}
	return e.expression(expr)
}

// binary builds the operation node for a binary operator. node is only
// used for error reporting.
func (e *Explicator) binary(node parser.Node, op string, left, right asg.NodeWithValue) asg.NodeWithValue {
	switch op {
	case "==", "!=", "===", "!==":
		return &asg.Equality{Operator: op, Left: left, Right: right}
	case "+", "-", "*", "/", "%", "**":
		return &asg.FloatMath{Operator: op, Left: left, Right: right}
	case "|", "^", "&", "<<", ">>", ">>>":
		return &asg.IntMath{Operator: op, Left: left, Right: right}
	case "&&", "||":
		return &asg.Logic{Operator: op, Left: left, Right: right}
	case "<", ">", "<=", ">=":
		return &asg.RelationalComparison{Operator: op, Left: left, Right: right}
	case "in":
		return &asg.In{Key: left, Object: right}
	case "instanceof":
		return &asg.InstanceOf{Object: left, Constructor: right}
	}
	e.unsupported(node, "operator "+op)
	return nil
}

func (e *Explicator) prefix(ex *parser.PrefixExpression) asg.NodeWithValue {
	switch ex.Operator {
	case "!":
		return &asg.Not{Expression: e.expression(ex.Right)}
	case "-":
		return &asg.Negation{Expression: e.expression(ex.Right)}
	case "+":
		return &asg.TypeCoercionNumber{Expression: e.expression(ex.Right)}
	case "~":
		return &asg.BitwiseNot{Expression: e.expression(ex.Right)}
	case "void":
		return &asg.VoidOp{Expression: e.expression(ex.Right)}
	case "typeof":
		if id, ok := ex.Right.(*parser.Identifier); ok {
			if v := e.referenced(id); e.lookup.IsGlobal(v) {
				return &asg.TypeofGlobal{Name: id.Value}
			}
		}
		return &asg.Typeof{Expression: e.expression(ex.Right)}
	case "delete":
		return e.delete(ex)
	}
	e.unsupported(ex, "operator "+ex.Operator)
	return nil
}

func (e *Explicator) delete(ex *parser.PrefixExpression) asg.NodeWithValue {
	switch target := ex.Right.(type) {
	case *parser.Identifier:
		if v := e.referenced(target); e.lookup.IsGlobal(v) {
			return &asg.DeleteGlobalProperty{Name: target.Value}
		}
		return &asg.LiteralBoolean{Value: false}
	case *parser.MemberExpression, *parser.IndexExpression:
		head, object, key := e.memberTarget(target)
		return sequence(head, &asg.MemberDelete{Object: object, Key: key, Strict: e.strict})
	}
	return sequence(nodes(e.effect(ex.Right)), &asg.LiteralBoolean{Value: true})
}

// conditional assigns the value of the taken branch to a temporary.
func (e *Explicator) conditional(ex *parser.TernaryExpression) asg.NodeWithValue {
	test := e.expression(ex.Condition)
	result := e.newTemporary()
	ifElse := &asg.IfElse{
		Test:       test,
		Consequent: &asg.Block{Children: []asg.Node{e.assignTemporary(result, e.expression(ex.Consequence))}},
		Alternate:  &asg.Block{Children: []asg.Node{e.assignTemporary(result, e.expression(ex.Alternative))}},
	}
	return sequence([]asg.Node{ifElse}, temporary(result))
}

func (e *Explicator) call(ex *parser.CallExpression) asg.NodeWithValue {
	switch callee := ex.Function.(type) {
	case *parser.Identifier:
		if callee.Value == "eval" && e.lookup.IsGlobal(e.referenced(callee)) {
			return sequence([]asg.Node{&asg.Halt{Reason: "direct eval"}}, &asg.LiteralUndefined{})
		}
	case *parser.SuperExpression:
		e.unsupported(callee, "")
	case *parser.MemberExpression:
		return e.let(e.expression(callee.Object), func(receiver *scope.Variable) asg.NodeWithValue {
			return &asg.Call{
				Context:   temporary(receiver),
				Callee:    &asg.MemberAccess{Object: temporary(receiver), Key: &asg.LiteralString{Value: callee.Property.Value}},
				Arguments: e.expressions(ex.Arguments),
			}
		})
	case *parser.IndexExpression:
		return e.let(e.expression(callee.Object), func(receiver *scope.Variable) asg.NodeWithValue {
			key := e.propertyKey(callee.Index)
			return &asg.Call{
				Context:   temporary(receiver),
				Callee:    &asg.MemberAccess{Object: temporary(receiver), Key: key},
				Arguments: e.expressions(ex.Arguments),
			}
		})
	}
	callee := e.expression(ex.Function)
	return &asg.Call{Callee: callee, Arguments: e.expressions(ex.Arguments)}
}

func (e *Explicator) arrayLiteral(ex *parser.ArrayLiteral) asg.NodeWithValue {
	array := e.newTemporary()
	head := []asg.Node{e.assignTemporary(array, &asg.LiteralEmptyArray{})}
	holes := false
	for i, el := range ex.Elements {
		switch el := el.(type) {
		case nil:
			holes = true
		case *parser.SpreadElement:
			e.unsupported(el, "")
		default:
			head = append(head, &asg.MemberDefinition{
				Object:   temporary(array),
				Key:      &asg.LiteralString{Value: strconv.Itoa(i)},
				Property: &asg.StaticValue{Value: e.expression(el)},
			})
		}
	}
	if holes {
		head = append(head, &asg.MemberAssignment{
			Object: temporary(array),
			Key:    &asg.LiteralString{Value: "length"},
			Value:  &asg.LiteralNumber{Value: float64(len(ex.Elements))},
			Strict: e.strict,
		})
	}
	return sequence(head, temporary(array))
}

func (e *Explicator) objectLiteral(ex *parser.ObjectLiteral) asg.NodeWithValue {
	object := e.newTemporary()
	head := []asg.Node{e.assignTemporary(object, &asg.LiteralEmptyObject{})}
	for _, prop := range ex.Properties {
		if prop.Key == nil {
			e.unsupported(prop.Value, "")
		}
		var key asg.NodeWithValue
		switch k := prop.Key.(type) {
		case *parser.Identifier:
			if !prop.Computed {
				key = &asg.LiteralString{Value: k.Value}
			}
		}
		if key == nil {
			if name, ok := staticKey(prop.Key); ok {
				key = &asg.LiteralString{Value: name}
			}
		}
		if key == nil {
			tmp := e.newTemporary()
			head = append(head, e.assignTemporary(tmp, &asg.TypeCoercionString{Expression: e.expression(prop.Key)}))
			key = temporary(tmp)
		}
		if name, ok := key.(*asg.LiteralString); ok && name.Value == "__proto__" &&
			!prop.Computed && !prop.Shorthand && !prop.Method && prop.Kind == parser.PropertyInit {
			e.unsupported(prop, "__proto__ in an object literal")
		}

		var property asg.Property
		switch prop.Kind {
		case parser.PropertyGet, parser.PropertySet:
			fn, ok := prop.Value.(*parser.FunctionLiteral)
			if !ok {
				e.unsupported(prop.Value, "accessor body")
			}
			if prop.Kind == parser.PropertyGet {
				property = &asg.Getter{Function: e.function(fn, false)}
			} else {
				property = &asg.Setter{Function: e.function(fn, false)}
			}
		default:
			property = &asg.StaticValue{Value: e.expression(prop.Value)}
		}
		head = append(head, &asg.MemberDefinition{Object: temporary(object), Key: key, Property: property})
	}
	return sequence(head, temporary(object))
}
