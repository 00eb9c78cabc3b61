package explicator

import (
	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/parser"
)

// hoist lowers the function declarations of a statement list and binds
// each one before any statement of the list runs. Declarations nested in a
// block bind the block-scoped variable; the rest bind the hoisted one.
func (e *Explicator) hoist(stmts []parser.Statement) []asg.Node {
	var out []asg.Node
	for _, stmt := range stmts {
		for {
			l, ok := stmt.(*parser.LabeledStatement)
			if !ok {
				break
			}
			stmt = l.Statement
		}
		decl, ok := stmt.(*parser.FunctionDeclaration)
		if !ok {
			continue
		}
		hoisted, blockScoped := e.lookup.VariablesForFunctionDeclaration(decl)
		binding := blockScoped
		if binding == nil {
			binding = hoisted
		}
		if binding == nil {
			e.unsupported(decl, "function declaration without a binding")
		}
		out = append(out, &asg.VariableAssignment{
			Reference: e.variableReference(binding),
			Value:     e.function(decl.Function, false),
			Strict:    e.strict,
		})
	}
	return out
}

// functionDeclarationSite lowers a function declaration where it appears in
// its statement list. Its value was bound by hoist; sloppy block-level
// declarations also copy the block binding to the function-level one here.
func (e *Explicator) functionDeclarationSite(decl *parser.FunctionDeclaration) []asg.Node {
	hoisted, blockScoped := e.lookup.VariablesForFunctionDeclaration(decl)
	if hoisted == nil || blockScoped == nil {
		return nil
	}
	return []asg.Node{&asg.VariableAssignment{
		Reference: e.variableReference(hoisted),
		Value:     &asg.LocalReference{Variable: blockScoped},
		Strict:    e.strict,
	}}
}

// function lowers a function literal with its own temporaries.
func (e *Explicator) function(fn *parser.FunctionLiteral, expression bool) *asg.LiteralFunction {
	fnScope := e.lookup.ScopeFor(fn)
	lf := &asg.LiteralFunction{Strict: fnScope.Strict}

	if expression && fn.Name != nil {
		lf.Name = e.declared(fn.Name)
	}
	lf.Arguments = e.lookup.Arguments(fn)
	for _, param := range fn.Parameters {
		id, ok := param.(*parser.Identifier)
		if !ok {
			e.unsupported(param, "parameter must be a plain identifier")
		}
		lf.Parameters = append(lf.Parameters, e.declared(id))
	}

	outerStrict, outerLabel := e.strict, e.label
	e.strict, e.label = fnScope.Strict, ""
	temps := e.withTemporaries(func() {
		lf.Body = e.block(fn.Body.Statements)
	})
	e.strict, e.label = outerStrict, outerLabel

	lf.Locals = append(e.lookup.Locals(fnScope), temps...)
	for _, ref := range fnScope.Through {
		if v := e.referenced(ref.Node); !e.lookup.IsGlobal(v) {
			lf.Captured = append(lf.Captured, v)
		}
	}
	e.functionScopes[lf] = fnScope
	debugPrintf("function: %d params, %d locals, %d captured", len(lf.Parameters), len(lf.Locals), len(lf.Captured))
	return lf
}
