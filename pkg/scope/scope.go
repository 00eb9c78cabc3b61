package scope

import (
	"fmt"

	"github.com/nooga/explicate/pkg/parser"
)

// Kind classifies a scope.
type Kind int

const (
	GlobalScope Kind = iota
	ModuleScope
	FunctionScope
	// FunctionNameScope holds the own name of a named function expression.
	FunctionNameScope
	BlockScope
	CatchScope
	WithScope
)

var kindNames = [...]string{
	GlobalScope:       "global",
	ModuleScope:       "module",
	FunctionScope:     "function",
	FunctionNameScope: "function-name",
	BlockScope:        "block",
	CatchScope:        "catch",
	WithScope:         "with",
}

func (k Kind) String() string { return kindNames[k] }

// DeclarationKind tells how a binding was introduced.
type DeclarationKind int

const (
	DeclaredVar DeclarationKind = iota
	DeclaredLet
	DeclaredConst
	DeclaredFunction
	DeclaredFunctionName
	DeclaredParameter
	DeclaredCatchParameter
)

var declarationNames = [...]string{
	DeclaredVar:            "var",
	DeclaredLet:            "let",
	DeclaredConst:          "const",
	DeclaredFunction:       "function",
	DeclaredFunctionName:   "function-name",
	DeclaredParameter:      "parameter",
	DeclaredCatchParameter: "catch-parameter",
}

func (k DeclarationKind) String() string { return declarationNames[k] }

// IsLexical reports whether the declaration is block scoped.
func (k DeclarationKind) IsLexical() bool {
	return k == DeclaredLet || k == DeclaredConst
}

// Declaration is one binding occurrence of a variable.
type Declaration struct {
	Kind DeclarationKind
	Node *parser.Identifier
}

// Access describes what a reference does with its variable.
type Access int

const (
	Read Access = iota
	Write
	ReadWrite
	Delete
)

// Reference is one use of a name in expression or assignment-target position.
type Reference struct {
	Node   *parser.Identifier
	Access Access
	// Scope is the innermost scope enclosing the use.
	Scope *Scope
}

// Variable ties together every declaration and reference of one binding.
type Variable struct {
	Name         string
	Declarations []Declaration
	References   []*Reference
	// Scope is the declaring scope. Nil for synthetic temporaries.
	Scope *Scope
	// Synthetic marks variables introduced by lowering rather than source.
	Synthetic bool
}

// NewTemporary creates a synthetic variable that belongs to no scope.
func NewTemporary(name string) *Variable {
	return &Variable{Name: name, Synthetic: true}
}

// IsConst reports whether every declaration of v is a const declaration.
func (v *Variable) IsConst() bool {
	if len(v.Declarations) == 0 {
		return false
	}
	for _, d := range v.Declarations {
		if d.Kind != DeclaredConst {
			return false
		}
	}
	return true
}

// IsFunctionName reports whether v is the own name of a function expression.
func (v *Variable) IsFunctionName() bool {
	return v.Scope != nil && v.Scope.Kind == FunctionNameScope
}

func (v *Variable) String() string {
	if v.Scope == nil {
		return fmt.Sprintf("%s<temp>", v.Name)
	}
	return fmt.Sprintf("%s<%s>", v.Name, v.Scope.Kind)
}

// Scope is a node of the lexical scope tree.
type Scope struct {
	Kind Kind
	// Node is the syntax node that opened the scope; nil for the global scope
	// of a module.
	Node     parser.Node
	Parent   *Scope
	Children []*Scope
	// Variables are listed in declaration order.
	Variables []*Variable
	// Through holds the references made inside this scope (or its
	// descendants) that resolve to a variable declared outside of it.
	Through []*Reference
	Strict  bool
	// HasDirectEval is set when a call to an identifier named eval occurs
	// directly in this scope.
	HasDirectEval bool

	byName    map[string]*Variable
	varNames  map[string]bool
	arguments *Variable
	arrow     bool
}

func newScope(kind Kind, node parser.Node, parent *Scope, strict bool) *Scope {
	s := &Scope{
		Kind:     kind,
		Node:     node,
		Parent:   parent,
		Strict:   strict,
		byName:   make(map[string]*Variable),
		varNames: make(map[string]bool),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Lookup returns the variable named name declared directly in s.
func (s *Scope) Lookup(name string) *Variable {
	return s.byName[name]
}

// IsVariableScope reports whether var declarations stop at s.
func (s *Scope) IsVariableScope() bool {
	return s.Kind == GlobalScope || s.Kind == ModuleScope || s.Kind == FunctionScope
}

// VariableScope returns the closest enclosing scope that var declarations
// hoist to.
func (s *Scope) VariableScope() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.IsVariableScope() {
			return cur
		}
	}
	return nil
}

func (s *Scope) declare(name string) *Variable {
	if v, ok := s.byName[name]; ok {
		return v
	}
	v := &Variable{Name: name, Scope: s}
	s.byName[name] = v
	s.Variables = append(s.Variables, v)
	return v
}

// Lookup answers the questions lowering asks about bindings.
type Lookup struct {
	global     *Scope
	program    *parser.Program
	scopes     map[parser.Node]*Scope
	declared   map[*parser.Identifier]*Variable
	referenced map[*parser.Identifier]*Variable
	functions  map[*parser.FunctionDeclaration]functionBinding
}

type functionBinding struct {
	hoisted     *Variable
	blockScoped *Variable
}

// Global returns the root of the scope tree.
func (l *Lookup) Global() *Scope { return l.global }

// Program returns the analysed program.
func (l *Lookup) Program() *parser.Program { return l.program }

// ScopeFor returns the scope opened by node. A function body block maps to
// its function scope.
func (l *Lookup) ScopeFor(node parser.Node) *Scope {
	return l.scopes[node]
}

// VariableDeclaredBy returns the variable bound by a binding identifier.
func (l *Lookup) VariableDeclaredBy(id *parser.Identifier) *Variable {
	return l.declared[id]
}

// VariableReferencedBy returns the variable a use of a name resolves to.
func (l *Lookup) VariableReferencedBy(id *parser.Identifier) *Variable {
	return l.referenced[id]
}

// IsGlobal reports whether v lives on the global object: an undeclared name,
// or a var or function declared at the top level of a script.
func (l *Lookup) IsGlobal(v *Variable) bool {
	if v == nil || v.Scope != l.global {
		return false
	}
	for _, d := range v.Declarations {
		if d.Kind.IsLexical() {
			return false
		}
	}
	return true
}

// VariablesForFunctionDeclaration returns the bindings a function
// declaration initialises. A top-level declaration only has a hoisted
// binding. A declaration nested in a block has a block-scoped binding and,
// in sloppy code, a hoisted var binding the value is copied to when the
// declaration is evaluated.
func (l *Lookup) VariablesForFunctionDeclaration(decl *parser.FunctionDeclaration) (hoisted, blockScoped *Variable) {
	b := l.functions[decl]
	return b.hoisted, b.blockScoped
}

// Arguments returns the variable holding fn's arguments object, or nil when
// the function never refers to it.
func (l *Lookup) Arguments(fn *parser.FunctionLiteral) *Variable {
	s := l.scopes[fn]
	if s == nil {
		return nil
	}
	return s.arguments
}

// TopLevelVarNames lists the names a script's var and function declarations
// create on the global object, in declaration order.
func (l *Lookup) TopLevelVarNames() []string {
	if l.program.Module {
		return nil
	}
	var names []string
	for _, v := range l.global.Variables {
		for _, d := range v.Declarations {
			if d.Kind == DeclaredVar || d.Kind == DeclaredFunction {
				names = append(names, v.Name)
				break
			}
		}
	}
	return names
}

// Locals returns the variables declared in s and its nested block scopes,
// stopping at nested functions. Parameters, the arguments object, and the
// global object's properties are excluded.
func (l *Lookup) Locals(s *Scope) []*Variable {
	var out []*Variable
	var walk func(*Scope)
	walk = func(cur *Scope) {
		for _, v := range cur.Variables {
			if v == cur.arguments || l.IsGlobal(v) || isParameter(v) || len(v.Declarations) == 0 {
				continue
			}
			out = append(out, v)
		}
		for _, c := range cur.Children {
			if c.Kind == FunctionScope || c.Kind == FunctionNameScope {
				continue
			}
			walk(c)
		}
	}
	walk(s)
	return out
}

func isParameter(v *Variable) bool {
	for _, d := range v.Declarations {
		if d.Kind == DeclaredParameter {
			return true
		}
	}
	return false
}
