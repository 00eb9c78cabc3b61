// Package ecma implements the ECMA-262 abstract operations constant folding
// needs. The node-level operations are partial: they return ok=false when a
// node's value cannot be known without running the program.
package ecma

import (
	"math"
	"strconv"

	"github.com/nooga/explicate/pkg/asg"
)

// ValueType is an ECMAScript language type.
type ValueType int

const (
	Undefined ValueType = iota
	Null
	Boolean
	Number
	String
	Symbol
	Object
)

var typeNames = [...]string{
	Undefined: "Undefined",
	Null:      "Null",
	Boolean:   "Boolean",
	Number:    "Number",
	String:    "String",
	Symbol:    "Symbol",
	Object:    "Object",
}

func (t ValueType) String() string { return typeNames[t] }

// Type returns the language type the node evaluates to when it is known
// without evaluation.
func Type(n asg.NodeWithValue) (ValueType, bool) {
	switch n := n.(type) {
	case *asg.LiteralUndefined, *asg.VoidOp:
		return Undefined, true
	case *asg.LiteralNull:
		return Null, true
	case *asg.LiteralBoolean, *asg.Not, *asg.Equality, *asg.RelationalComparison,
		*asg.In, *asg.InstanceOf, *asg.DeleteGlobalProperty:
		return Boolean, true
	case *asg.LiteralNumber, *asg.LiteralInfinity, *asg.TypeCoercionNumber,
		*asg.IntMath, *asg.BitwiseNot, *asg.Negation:
		return Number, true
	case *asg.LiteralString, *asg.TypeCoercionString, *asg.Typeof, *asg.TypeofGlobal:
		return String, true
	case *asg.LiteralSymbol:
		return Symbol, true
	case *asg.LiteralEmptyArray, *asg.LiteralEmptyObject, *asg.LiteralRegExp,
		*asg.LiteralFunction, *asg.New, *asg.Keys:
		return Object, true
	case *asg.FloatMath:
		if n.Operator != "+" {
			return Number, true
		}
		lt, lok := Type(n.Left)
		rt, rok := Type(n.Right)
		if (lok && lt == String) || (rok && rt == String) {
			return String, true
		}
		if lok && rok && lt != Object && rt != Object {
			return Number, true
		}
	case *asg.BlockWithValue:
		return Type(n.Result)
	}
	return 0, false
}

// IsPrimitiveLiteral reports whether n is a literal of a primitive type.
func IsPrimitiveLiteral(n asg.Node) bool {
	switch n.(type) {
	case *asg.LiteralUndefined, *asg.LiteralNull, *asg.LiteralBoolean,
		*asg.LiteralNumber, *asg.LiteralInfinity, *asg.LiteralString:
		return true
	}
	return false
}

// ToPrimitive returns the primitive literal the node converts to. Objects are
// never resolved since their conversion runs user-visible methods.
func ToPrimitive(n asg.NodeWithValue) (asg.NodeWithValue, bool) {
	if IsPrimitiveLiteral(n) {
		return n, true
	}
	return nil, false
}

// ToBoolean returns the truthiness of a literal.
func ToBoolean(n asg.NodeWithValue) (bool, bool) {
	switch n := n.(type) {
	case *asg.LiteralUndefined, *asg.LiteralNull:
		return false, true
	case *asg.LiteralBoolean:
		return n.Value, true
	case *asg.LiteralNumber:
		return n.Value != 0 && !math.IsNaN(n.Value), true
	case *asg.LiteralInfinity:
		return true, true
	case *asg.LiteralString:
		return n.Value != "", true
	case *asg.LiteralSymbol, *asg.LiteralEmptyArray, *asg.LiteralEmptyObject,
		*asg.LiteralRegExp, *asg.LiteralFunction:
		return true, true
	}
	return false, false
}

// ToString converts a primitive literal to its string value.
func ToString(n asg.NodeWithValue) (string, bool) {
	prim, ok := ToPrimitive(n)
	if !ok {
		return "", false
	}
	switch p := prim.(type) {
	case *asg.LiteralUndefined:
		return "undefined", true
	case *asg.LiteralNull:
		return "null", true
	case *asg.LiteralBoolean:
		return strconv.FormatBool(p.Value), true
	case *asg.LiteralNumber:
		return NumberToString(p.Value), true
	case *asg.LiteralInfinity:
		return "Infinity", true
	case *asg.LiteralString:
		return p.Value, true
	}
	return "", false
}

// ToNumber converts a primitive literal to a number.
func ToNumber(n asg.NodeWithValue) (float64, bool) {
	prim, ok := ToPrimitive(n)
	if !ok {
		return 0, false
	}
	switch p := prim.(type) {
	case *asg.LiteralUndefined:
		return math.NaN(), true
	case *asg.LiteralNull:
		return 0, true
	case *asg.LiteralBoolean:
		if p.Value {
			return 1, true
		}
		return 0, true
	case *asg.LiteralNumber:
		return p.Value, true
	case *asg.LiteralInfinity:
		return math.Inf(1), true
	case *asg.LiteralString:
		return StringToNumber(p.Value), true
	}
	return 0, false
}

// ToInt32 converts a primitive literal to a signed 32-bit integer.
func ToInt32(n asg.NodeWithValue) (int32, bool) {
	f, ok := ToNumber(n)
	if !ok {
		return 0, false
	}
	return Int32(f), true
}

// ToUint32 converts a primitive literal to an unsigned 32-bit integer.
func ToUint32(n asg.NodeWithValue) (uint32, bool) {
	f, ok := ToNumber(n)
	if !ok {
		return 0, false
	}
	return Uint32(f), true
}
