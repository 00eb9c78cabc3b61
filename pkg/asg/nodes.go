package asg

import (
	"strings"

	"github.com/nooga/explicate/pkg/scope"
)

// Node is any element of the semantic graph. Node identity is pointer
// identity: two structurally equal nodes are still distinct nodes.
type Node interface {
	node()
}

// NodeWithValue is a node that evaluates to a runtime value.
type NodeWithValue interface {
	Node
	value()
}

// VariableReference is a node naming a binding that can be assigned.
type VariableReference interface {
	NodeWithValue
	reference()
}

// Property is the payload of a MemberDefinition.
type Property interface {
	Node
	property()
}

// KindOf returns the variant name of n, e.g. "LiteralNumber".
func KindOf(n Node) string {
	if n == nil {
		return "nil"
	}
	return strings.TrimPrefix(typeName(n), "*asg.")
}

// --- Literals ---

type LiteralBoolean struct{ Value bool }
type LiteralNumber struct{ Value float64 }
type LiteralString struct{ Value string }
type LiteralNull struct{ _ byte }
type LiteralUndefined struct{ _ byte }
type LiteralInfinity struct{ _ byte }
type LiteralEmptyArray struct{ _ byte }
type LiteralEmptyObject struct{ _ byte }

type LiteralRegExp struct {
	Pattern string
	Flags   string
}

type LiteralSymbol struct{ Description string }

// LiteralFunction is a closure. Name is set for named function expressions,
// Arguments only when the body refers to the arguments object.
type LiteralFunction struct {
	Name       *scope.Variable
	Arguments  *scope.Variable
	Parameters []*scope.Variable
	// Locals are the function's own declared variables and temporaries.
	Locals []*scope.Variable
	// Captured lists every enclosing non-global variable the body refers
	// to, once per reference.
	Captured []*scope.Variable
	Body     *Block
	Strict   bool
}

// --- References ---

// GlobalReference is resolved by name on the global object at run time.
type GlobalReference struct{ Name string }

type LocalReference struct{ Variable *scope.Variable }

// TemporaryReference names a variable introduced to fix evaluation order.
type TemporaryReference struct{ Variable *scope.Variable }

type This struct{ _ byte }

// --- Operations ---

type Equality struct {
	Operator    string // == != === !==
	Left, Right NodeWithValue
}

// FloatMath covers + - * / % **. Addition keeps full ECMAScript semantics,
// string concatenation included.
type FloatMath struct {
	Operator    string
	Left, Right NodeWithValue
}

type IntMath struct {
	Operator    string // | ^ & << >> >>>
	Left, Right NodeWithValue
}

type Logic struct {
	Operator    string // && ||
	Left, Right NodeWithValue
}

type RelationalComparison struct {
	Operator    string // < > <= >=
	Left, Right NodeWithValue
}

type In struct {
	Key, Object NodeWithValue
}

type InstanceOf struct {
	Object, Constructor NodeWithValue
}

type Negation struct{ Expression NodeWithValue }
type Not struct{ Expression NodeWithValue }
type BitwiseNot struct{ Expression NodeWithValue }
type Typeof struct{ Expression NodeWithValue }
type VoidOp struct{ Expression NodeWithValue }

// --- Assignment and members ---

type VariableAssignment struct {
	Reference VariableReference
	Value     NodeWithValue
	Strict    bool
}

type MemberAccess struct {
	Object, Key NodeWithValue
}

type MemberAssignment struct {
	Object, Key, Value NodeWithValue
	Strict             bool
}

type MemberCall struct {
	Object, Key NodeWithValue
	Arguments   []NodeWithValue
}

type MemberDelete struct {
	Object, Key NodeWithValue
	Strict      bool
}

// MemberDefinition defines an own property during object literal
// construction.
type MemberDefinition struct {
	Object, Key NodeWithValue
	Property    Property
}

type StaticValue struct{ Value NodeWithValue }
type Getter struct{ Function *LiteralFunction }
type Setter struct{ Function *LiteralFunction }

// --- Calls ---

// Call invokes Callee. Context, when set, is the this value.
type Call struct {
	Context   NodeWithValue
	Callee    NodeWithValue
	Arguments []NodeWithValue
}

type New struct {
	Callee    NodeWithValue
	Arguments []NodeWithValue
}

// --- Coercions and global operations ---

type TypeCoercionNumber struct{ Expression NodeWithValue }
type TypeCoercionString struct{ Expression NodeWithValue }
type RequireObjectCoercible struct{ Expression NodeWithValue }

type DeleteGlobalProperty struct{ Name string }
type TypeofGlobal struct{ Name string }

// Keys evaluates to the array of enumerable string keys of Object,
// prototype chain included.
type Keys struct{ Object NodeWithValue }

// --- Control ---

type Block struct{ Children []Node }

// BlockWithValue runs Head and then evaluates to Result.
type BlockWithValue struct {
	Head   *Block
	Result NodeWithValue
}

// Loop repeats Body until a Break leaves it.
type Loop struct{ Body *Block }

type IfElse struct {
	Test       NodeWithValue
	Consequent *Block
	Alternate  *Block
}

type SwitchCase struct {
	Test NodeWithValue
	Body *Block
}

type SwitchStatement struct {
	Discriminant     NodeWithValue
	PreDefaultCases  []*SwitchCase
	DefaultCase      *Block // nil without a default clause
	PostDefaultCases []*SwitchCase
}

// TryCatch binds the thrown value to CatchVariable, which is nil for an
// optional catch binding.
type TryCatch struct {
	TryBody       *Block
	CatchVariable *scope.Variable
	CatchBody     *Block
}

type TryFinally struct {
	TryBody     *Block
	FinallyBody *Block
}

type Throw struct{ Expression NodeWithValue }

type Return struct {
	Expression NodeWithValue
	Crossings  []Crossing
}

type Void struct{ _ byte }

// Halt marks a construct whose semantics are not represented. Consumers
// must abort or treat the program conservatively when they reach it.
type Halt struct{ Reason string }

// BreakTarget is the destination of Break nodes. It carries no behaviour;
// it appears once in a Block and is shared by every Break that jumps to it.
type BreakTarget struct{ Name string }

type Break struct {
	Target    *BreakTarget
	Crossings []Crossing
}

// FinallyCount returns the number of finally bodies that run before the
// jump lands.
func (b *Break) FinallyCount() int { return finallyCount(b.Crossings) }

// FinallyCount returns the number of finally bodies that run before the
// function returns.
func (r *Return) FinallyCount() int { return finallyCount(r.Crossings) }

// --- markers ---

func (*LiteralBoolean) node()         {}
func (*LiteralNumber) node()          {}
func (*LiteralString) node()          {}
func (*LiteralNull) node()            {}
func (*LiteralUndefined) node()       {}
func (*LiteralInfinity) node()        {}
func (*LiteralEmptyArray) node()      {}
func (*LiteralEmptyObject) node()     {}
func (*LiteralRegExp) node()          {}
func (*LiteralSymbol) node()          {}
func (*LiteralFunction) node()        {}
func (*GlobalReference) node()        {}
func (*LocalReference) node()         {}
func (*TemporaryReference) node()     {}
func (*This) node()                   {}
func (*Equality) node()               {}
func (*FloatMath) node()              {}
func (*IntMath) node()                {}
func (*Logic) node()                  {}
func (*RelationalComparison) node()   {}
func (*In) node()                     {}
func (*InstanceOf) node()             {}
func (*Negation) node()               {}
func (*Not) node()                    {}
func (*BitwiseNot) node()             {}
func (*Typeof) node()                 {}
func (*VoidOp) node()                 {}
func (*VariableAssignment) node()     {}
func (*MemberAccess) node()           {}
func (*MemberAssignment) node()       {}
func (*MemberCall) node()             {}
func (*MemberDelete) node()           {}
func (*MemberDefinition) node()       {}
func (*StaticValue) node()            {}
func (*Getter) node()                 {}
func (*Setter) node()                 {}
func (*Call) node()                   {}
func (*New) node()                    {}
func (*TypeCoercionNumber) node()     {}
func (*TypeCoercionString) node()     {}
func (*RequireObjectCoercible) node() {}
func (*DeleteGlobalProperty) node()   {}
func (*TypeofGlobal) node()           {}
func (*Keys) node()                   {}
func (*Block) node()                  {}
func (*BlockWithValue) node()         {}
func (*Loop) node()                   {}
func (*IfElse) node()                 {}
func (*SwitchCase) node()             {}
func (*SwitchStatement) node()        {}
func (*TryCatch) node()               {}
func (*TryFinally) node()             {}
func (*Throw) node()                  {}
func (*Return) node()                 {}
func (*Void) node()                   {}
func (*Halt) node()                   {}
func (*BreakTarget) node()            {}
func (*Break) node()                  {}

func (*LiteralBoolean) value()         {}
func (*LiteralNumber) value()          {}
func (*LiteralString) value()          {}
func (*LiteralNull) value()            {}
func (*LiteralUndefined) value()       {}
func (*LiteralInfinity) value()        {}
func (*LiteralEmptyArray) value()      {}
func (*LiteralEmptyObject) value()     {}
func (*LiteralRegExp) value()          {}
func (*LiteralSymbol) value()          {}
func (*LiteralFunction) value()        {}
func (*GlobalReference) value()        {}
func (*LocalReference) value()         {}
func (*TemporaryReference) value()     {}
func (*This) value()                   {}
func (*Equality) value()               {}
func (*FloatMath) value()              {}
func (*IntMath) value()                {}
func (*Logic) value()                  {}
func (*RelationalComparison) value()   {}
func (*In) value()                     {}
func (*InstanceOf) value()             {}
func (*Negation) value()               {}
func (*Not) value()                    {}
func (*BitwiseNot) value()             {}
func (*Typeof) value()                 {}
func (*VoidOp) value()                 {}
func (*VariableAssignment) value()     {}
func (*MemberAccess) value()           {}
func (*MemberAssignment) value()       {}
func (*MemberCall) value()             {}
func (*MemberDelete) value()           {}
func (*Call) value()                   {}
func (*New) value()                    {}
func (*TypeCoercionNumber) value()     {}
func (*TypeCoercionString) value()     {}
func (*RequireObjectCoercible) value() {}
func (*DeleteGlobalProperty) value()   {}
func (*TypeofGlobal) value()           {}
func (*Keys) value()                   {}
func (*BlockWithValue) value()         {}

func (*GlobalReference) reference()    {}
func (*LocalReference) reference()     {}
func (*TemporaryReference) reference() {}

func (*StaticValue) property() {}
func (*Getter) property()      {}
func (*Setter) property()      {}
