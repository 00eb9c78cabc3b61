// Package explicator lowers a parsed and scope-resolved program into the
// abstract semantic graph. Every implicit step of evaluation (hoisting,
// property key coercion, object coercibility checks, short circuiting,
// finally crossing) becomes an explicit node, in evaluation order.
package explicator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
	"github.com/nooga/explicate/pkg/jumps"
	"github.com/nooga/explicate/pkg/parser"
	"github.com/nooga/explicate/pkg/scope"
)

const debugExplicator = false

func debugPrintf(format string, args ...interface{}) {
	if debugExplicator {
		fmt.Printf("[Explicator] "+format+"\n", args...)
	}
}

// targets are the break and continue destinations of one loop, switch or
// labeled statement. inner is nil for anything but loops.
type targets struct {
	outer *asg.BreakTarget
	inner *asg.BreakTarget
}

// Explicator holds the state of lowering one program.
type Explicator struct {
	program *parser.Program
	lookup  *scope.Lookup
	jumps   *jumps.Table

	targets map[parser.Node]targets
	// temps collects the temporaries of the function being lowered.
	temps     []*scope.Variable
	tempCount int
	strict    bool
	// label names the targets of the loop or switch lowered next.
	label string

	functionScopes map[*asg.LiteralFunction]*scope.Scope
}

// bailout carries an unsupported-construct error up the lowering recursion.
type bailout struct {
	err *errors.UnsupportedError
}

// Explicate lowers program. It returns an *errors.UnsupportedError when the
// program uses a construct the lowering does not handle. Violated
// invariants of the jump table or scope lookup panic.
func Explicate(program *parser.Program, lookup *scope.Lookup, table *jumps.Table) (sem *asg.Semantics, err error) {
	e := &Explicator{
		program:        program,
		lookup:         lookup,
		jumps:          table,
		targets:        make(map[parser.Node]targets),
		functionScopes: make(map[*asg.LiteralFunction]*scope.Scope),
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			sem, err = nil, b.err
		}
	}()
	return e.explicateProgram(), nil
}

func (e *Explicator) explicateProgram() *asg.Semantics {
	programScope := e.lookup.ScopeFor(e.program)
	if programScope == nil {
		errors.Invariantf("program has no scope")
	}
	e.strict = programScope.Strict

	var root *asg.Block
	temps := e.withTemporaries(func() {
		root = e.block(e.program.Statements)
	})
	locals := append(e.lookup.Locals(programScope), temps...)
	debugPrintf("program: %d locals, %d temporaries", len(locals), len(temps))

	return &asg.Semantics{
		Root:             root,
		Locals:           locals,
		TopLevelVarNames: e.lookup.TopLevelVarNames(),
		FunctionScopes:   e.functionScopes,
	}
}

// withTemporaries runs lower with a fresh temporary list and returns the
// temporaries it created.
func (e *Explicator) withTemporaries(lower func()) (temps []*scope.Variable) {
	outer := e.temps
	e.temps = nil
	defer func() {
		temps = e.temps
		e.temps = outer
	}()
	lower()
	return
}

func (e *Explicator) newTemporary() *scope.Variable {
	v := scope.NewTemporary("$" + strconv.Itoa(e.tempCount))
	e.tempCount++
	e.temps = append(e.temps, v)
	return v
}

func temporary(v *scope.Variable) *asg.TemporaryReference {
	return &asg.TemporaryReference{Variable: v}
}

// unsupported aborts lowering at node.
func (e *Explicator) unsupported(node parser.Node, detail string) {
	panic(bailout{err: &errors.UnsupportedError{
		Position:  parser.PositionOf(node, e.program.Source),
		Construct: nodeKind(node),
		Detail:    detail,
	}})
}

func nodeKind(node parser.Node) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", node), "*parser.")
}

// --- sequencing helpers ---

// sequence evaluates head and then result. Nested sequences are flattened.
func sequence(head []asg.Node, result asg.NodeWithValue) asg.NodeWithValue {
	if len(head) == 0 {
		return result
	}
	if inner, ok := result.(*asg.BlockWithValue); ok {
		children := make([]asg.Node, 0, len(head)+len(inner.Head.Children))
		children = append(children, head...)
		children = append(children, inner.Head.Children...)
		return &asg.BlockWithValue{Head: &asg.Block{Children: children}, Result: inner.Result}
	}
	return &asg.BlockWithValue{Head: &asg.Block{Children: head}, Result: result}
}

// let evaluates value into a fresh temporary and lowers body against it.
func (e *Explicator) let(value asg.NodeWithValue, body func(tmp *scope.Variable) asg.NodeWithValue) asg.NodeWithValue {
	tmp := e.newTemporary()
	return sequence([]asg.Node{e.assignTemporary(tmp, value)}, body(tmp))
}

func (e *Explicator) assignTemporary(tmp *scope.Variable, value asg.NodeWithValue) *asg.VariableAssignment {
	return &asg.VariableAssignment{Reference: temporary(tmp), Value: value, Strict: e.strict}
}

// discard turns a value computed only for its effects into a statement. A
// sequence whose result has no effects reduces to its head, and a value
// with no effects to nothing.
func discard(n asg.NodeWithValue) asg.Node {
	if isPure(n) {
		return nil
	}
	if bwv, ok := n.(*asg.BlockWithValue); ok && isPure(bwv.Result) {
		return bwv.Head
	}
	return n
}

// nodes collects the non-nil nodes of ns.
func nodes(ns ...asg.Node) []asg.Node {
	out := make([]asg.Node, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func isPure(n asg.NodeWithValue) bool {
	switch n.(type) {
	case *asg.LiteralUndefined, *asg.LiteralNull, *asg.LiteralBoolean, *asg.LiteralNumber,
		*asg.LiteralString, *asg.LiteralInfinity, *asg.TemporaryReference, *asg.This:
		return true
	}
	return false
}

// throwTypeError builds `throw new TypeError()`.
func throwTypeError() *asg.Throw {
	return &asg.Throw{Expression: &asg.New{Callee: &asg.GlobalReference{Name: "TypeError"}}}
}

// --- variables ---

// variableReference names v as an assignment target or a read.
func (e *Explicator) variableReference(v *scope.Variable) asg.VariableReference {
	if e.lookup.IsGlobal(v) {
		return &asg.GlobalReference{Name: v.Name}
	}
	return &asg.LocalReference{Variable: v}
}

func (e *Explicator) referenced(id *parser.Identifier) *scope.Variable {
	v := e.lookup.VariableReferencedBy(id)
	if v == nil {
		errors.Invariantf("identifier %s at %d:%d was not resolved", id.Value, id.Token.Line, id.Token.Column)
	}
	return v
}

func (e *Explicator) declared(id *parser.Identifier) *scope.Variable {
	v := e.lookup.VariableDeclaredBy(id)
	if v == nil {
		errors.Invariantf("binding %s at %d:%d was not declared", id.Value, id.Token.Line, id.Token.Column)
	}
	return v
}

// capturedByClosure reports whether a function nested in v's scope refers
// to v.
func capturedByClosure(v *scope.Variable) bool {
	for _, ref := range v.References {
		for s := ref.Scope; s != nil && s != v.Scope; s = s.Parent {
			if s.Kind == scope.FunctionScope {
				return true
			}
		}
	}
	return false
}
