package explicator

import (
	"strings"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/parser"
)

func (e *Explicator) assignment(ex *parser.AssignmentExpression) asg.NodeWithValue {
	if ex.Operator == "=" {
		return e.assign(ex.Left, func() asg.NodeWithValue { return e.expression(ex.Value) })
	}
	op := strings.TrimSuffix(ex.Operator, "=")
	switch target := ex.Left.(type) {
	case *parser.Identifier:
		current := e.identifier(target)
		return e.assignVariable(target, e.binary(ex, op, current, e.expression(ex.Value)))
	case *parser.MemberExpression, *parser.IndexExpression:
		head, object, key := e.memberTarget(target)
		current := &asg.MemberAccess{Object: object, Key: key}
		value := e.binary(ex, op, current, e.expression(ex.Value))
		return sequence(head, &asg.MemberAssignment{Object: cloneRef(object), Key: cloneRef(key), Value: value, Strict: e.strict})
	}
	e.unsupported(ex.Left, "destructuring assignment")
	return nil
}

// assign writes the value produced by value to target. value is lowered
// after the parts of the target that are evaluated before it.
func (e *Explicator) assign(target parser.Expression, value func() asg.NodeWithValue) asg.NodeWithValue {
	switch t := target.(type) {
	case *parser.Identifier:
		return e.assignVariable(t, value())
	case *parser.MemberExpression, *parser.IndexExpression:
		head, object, key := e.memberTarget(t)
		return sequence(head, &asg.MemberAssignment{Object: object, Key: key, Value: value(), Strict: e.strict})
	}
	e.unsupported(target, "destructuring assignment")
	return nil
}

// assignVariable writes value to the variable id refers to. Writing a
// const always throws a TypeError; writing the own name of a function
// expression is dropped in sloppy code and throws in strict code. value is
// evaluated in every case.
func (e *Explicator) assignVariable(id *parser.Identifier, value asg.NodeWithValue) asg.NodeWithValue {
	v := e.referenced(id)
	switch {
	case v.IsConst(), v.IsFunctionName() && e.strict:
		return sequence([]asg.Node{value, throwTypeError()}, &asg.LiteralUndefined{})
	case v.IsFunctionName():
		return value
	}
	return &asg.VariableAssignment{Reference: e.variableReference(v), Value: value, Strict: e.strict}
}

// memberTarget evaluates the object and key of a member expression used as
// a write target: object, key, RequireObjectCoercible(object), then
// ToString(key). The returned object and key are references to the
// temporaries holding them, or a literal for a static key.
func (e *Explicator) memberTarget(target parser.Expression) (head []asg.Node, object, key asg.NodeWithValue) {
	var objectExpr parser.Expression
	var computed parser.Expression
	switch t := target.(type) {
	case *parser.MemberExpression:
		objectExpr = t.Object
		key = &asg.LiteralString{Value: t.Property.Value}
	case *parser.IndexExpression:
		objectExpr = t.Object
		if name, ok := staticKey(t.Index); ok {
			key = &asg.LiteralString{Value: name}
		} else {
			computed = t.Index
		}
	default:
		e.unsupported(target, "member target")
	}

	obj := e.newTemporary()
	head = append(head, e.assignTemporary(obj, e.expression(objectExpr)))
	var rawKey = key
	if computed != nil {
		k := e.newTemporary()
		head = append(head, e.assignTemporary(k, e.expression(computed)))
		rawKey = temporary(k)
	}
	head = append(head, &asg.RequireObjectCoercible{Expression: temporary(obj)})
	if computed != nil {
		k := e.newTemporary()
		head = append(head, e.assignTemporary(k, &asg.TypeCoercionString{Expression: rawKey}))
		key = temporary(k)
	}
	return head, temporary(obj), key
}

// cloneRef returns a fresh node for a temporary reference or a static key,
// so that each use site of a temporary is its own node.
func cloneRef(n asg.NodeWithValue) asg.NodeWithValue {
	switch r := n.(type) {
	case *asg.TemporaryReference:
		return temporary(r.Variable)
	case *asg.LiteralString:
		return &asg.LiteralString{Value: r.Value}
	}
	return n
}

// update lowers ++ and --. The old value is kept in a temporary only for a
// postfix form whose value is used.
func (e *Explicator) update(ex *parser.UpdateExpression, valueUsed bool) asg.NodeWithValue {
	op := "+"
	if ex.Operator == "--" {
		op = "-"
	}
	step := func(old asg.NodeWithValue) asg.NodeWithValue {
		return &asg.FloatMath{Operator: op, Left: old, Right: &asg.LiteralNumber{Value: 1}}
	}
	keepOld := valueUsed && !ex.Prefix

	switch target := ex.Argument.(type) {
	case *parser.Identifier:
		current := &asg.TypeCoercionNumber{Expression: e.identifier(target)}
		if !keepOld {
			return e.assignVariable(target, step(current))
		}
		old := e.newTemporary()
		return sequence([]asg.Node{
			e.assignTemporary(old, current),
			e.assignVariable(target, step(temporary(old))),
		}, temporary(old))
	case *parser.MemberExpression, *parser.IndexExpression:
		head, object, key := e.memberTarget(target)
		current := &asg.TypeCoercionNumber{Expression: &asg.MemberAccess{Object: object, Key: key}}
		if !keepOld {
			return sequence(head, &asg.MemberAssignment{
				Object: cloneRef(object), Key: cloneRef(key), Value: step(current), Strict: e.strict,
			})
		}
		old := e.newTemporary()
		head = append(head,
			e.assignTemporary(old, current),
			&asg.MemberAssignment{Object: cloneRef(object), Key: cloneRef(key), Value: step(temporary(old)), Strict: e.strict},
		)
		return sequence(head, temporary(old))
	}
	e.unsupported(ex.Argument, "update target")
	return nil
}
