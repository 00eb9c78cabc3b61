package asg

import (
	"math"
	"strconv"
	"strings"

	"github.com/nooga/explicate/pkg/scope"
)

// Format renders n as a single-line S-expression. Temporaries print as $0,
// $1, ... and break targets as #0, #1, ... in order of first appearance, so
// the output is deterministic.
func Format(n Node) string {
	p := newPrinter()
	p.node(n)
	return p.sb.String()
}

// FormatSemantics renders the root block preceded by the program's locals.
func FormatSemantics(sem *Semantics) string {
	p := newPrinter()
	p.open("Semantics")
	p.variables("locals", sem.Locals)
	p.sb.WriteByte(' ')
	p.node(sem.Root)
	p.close()
	return p.sb.String()
}

type printer struct {
	sb      strings.Builder
	temps   map[*scope.Variable]int
	targets map[*BreakTarget]int
}

func newPrinter() *printer {
	return &printer{
		temps:   make(map[*scope.Variable]int),
		targets: make(map[*BreakTarget]int),
	}
}

func (p *printer) open(kind string) {
	p.sb.WriteByte('(')
	p.sb.WriteString(kind)
}

func (p *printer) close() { p.sb.WriteByte(')') }

func (p *printer) atom(s string) {
	p.sb.WriteByte(' ')
	p.sb.WriteString(s)
}

func (p *printer) child(n Node) {
	p.sb.WriteByte(' ')
	p.node(n)
}

func (p *printer) values(ns []NodeWithValue) {
	for _, n := range ns {
		p.child(n)
	}
}

func (p *printer) variable(v *scope.Variable) string {
	if v == nil {
		return "_"
	}
	if !v.Synthetic {
		return v.Name
	}
	id, ok := p.temps[v]
	if !ok {
		id = len(p.temps)
		p.temps[v] = id
	}
	return "$" + strconv.Itoa(id)
}

func (p *printer) variables(label string, vs []*scope.Variable) {
	p.sb.WriteString(" (")
	p.sb.WriteString(label)
	for _, v := range vs {
		p.atom(p.variable(v))
	}
	p.close()
}

func (p *printer) target(t *BreakTarget) string {
	id, ok := p.targets[t]
	if !ok {
		id = len(p.targets)
		p.targets[t] = id
	}
	return "#" + strconv.Itoa(id)
}

func (p *printer) crossings(cs []Crossing) {
	for _, c := range cs {
		p.atom(c.String())
	}
}

func (p *printer) strict(strict bool) {
	if strict {
		p.atom("strict")
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func (p *printer) node(n Node) {
	if n == nil {
		p.sb.WriteString("_")
		return
	}
	kind := KindOf(n)
	p.open(kind)
	defer p.close()

	switch n := n.(type) {
	case *LiteralBoolean:
		p.atom(strconv.FormatBool(n.Value))
	case *LiteralNumber:
		p.atom(formatNumber(n.Value))
	case *LiteralString:
		p.atom(strconv.Quote(n.Value))
	case *LiteralNull, *LiteralUndefined, *LiteralInfinity, *LiteralEmptyArray,
		*LiteralEmptyObject, *This, *Void:
	case *LiteralRegExp:
		p.atom("/" + n.Pattern + "/" + n.Flags)
	case *LiteralSymbol:
		p.atom(strconv.Quote(n.Description))
	case *LiteralFunction:
		if n.Name != nil {
			p.atom(p.variable(n.Name))
		}
		p.strict(n.Strict)
		if n.Arguments != nil {
			p.variables("arguments", []*scope.Variable{n.Arguments})
		}
		p.variables("params", n.Parameters)
		p.variables("locals", n.Locals)
		p.variables("captured", n.Captured)
		p.child(n.Body)
	case *GlobalReference:
		p.atom(n.Name)
	case *LocalReference:
		p.atom(p.variable(n.Variable))
	case *TemporaryReference:
		p.atom(p.variable(n.Variable))
	case *Equality:
		p.atom(n.Operator)
		p.child(n.Left)
		p.child(n.Right)
	case *FloatMath:
		p.atom(n.Operator)
		p.child(n.Left)
		p.child(n.Right)
	case *IntMath:
		p.atom(n.Operator)
		p.child(n.Left)
		p.child(n.Right)
	case *Logic:
		p.atom(n.Operator)
		p.child(n.Left)
		p.child(n.Right)
	case *RelationalComparison:
		p.atom(n.Operator)
		p.child(n.Left)
		p.child(n.Right)
	case *In:
		p.child(n.Key)
		p.child(n.Object)
	case *InstanceOf:
		p.child(n.Object)
		p.child(n.Constructor)
	case *Negation:
		p.child(n.Expression)
	case *Not:
		p.child(n.Expression)
	case *BitwiseNot:
		p.child(n.Expression)
	case *Typeof:
		p.child(n.Expression)
	case *VoidOp:
		p.child(n.Expression)
	case *VariableAssignment:
		p.strict(n.Strict)
		p.child(n.Reference)
		p.child(n.Value)
	case *MemberAccess:
		p.child(n.Object)
		p.child(n.Key)
	case *MemberAssignment:
		p.strict(n.Strict)
		p.child(n.Object)
		p.child(n.Key)
		p.child(n.Value)
	case *MemberCall:
		p.child(n.Object)
		p.child(n.Key)
		p.values(n.Arguments)
	case *MemberDelete:
		p.strict(n.Strict)
		p.child(n.Object)
		p.child(n.Key)
	case *MemberDefinition:
		p.child(n.Object)
		p.child(n.Key)
		p.child(n.Property)
	case *StaticValue:
		p.child(n.Value)
	case *Getter:
		p.child(n.Function)
	case *Setter:
		p.child(n.Function)
	case *Call:
		p.child(n.Context)
		p.child(n.Callee)
		p.values(n.Arguments)
	case *New:
		p.child(n.Callee)
		p.values(n.Arguments)
	case *TypeCoercionNumber:
		p.child(n.Expression)
	case *TypeCoercionString:
		p.child(n.Expression)
	case *RequireObjectCoercible:
		p.child(n.Expression)
	case *DeleteGlobalProperty:
		p.atom(n.Name)
	case *TypeofGlobal:
		p.atom(n.Name)
	case *Keys:
		p.child(n.Object)
	case *Block:
		for _, c := range n.Children {
			p.child(c)
		}
	case *BlockWithValue:
		p.child(n.Head)
		p.child(n.Result)
	case *Loop:
		p.child(n.Body)
	case *IfElse:
		p.child(n.Test)
		p.child(n.Consequent)
		p.child(n.Alternate)
	case *SwitchCase:
		p.child(n.Test)
		p.child(n.Body)
	case *SwitchStatement:
		p.child(n.Discriminant)
		for _, c := range n.PreDefaultCases {
			p.child(c)
		}
		if n.DefaultCase != nil {
			p.sb.WriteString(" (default")
			p.child(n.DefaultCase)
			p.close()
		}
		for _, c := range n.PostDefaultCases {
			p.child(c)
		}
	case *TryCatch:
		p.child(n.TryBody)
		p.atom(p.variable(n.CatchVariable))
		p.child(n.CatchBody)
	case *TryFinally:
		p.child(n.TryBody)
		p.child(n.FinallyBody)
	case *Throw:
		p.child(n.Expression)
	case *Return:
		p.child(n.Expression)
		p.crossings(n.Crossings)
	case *Halt:
		p.atom(strconv.Quote(n.Reason))
	case *BreakTarget:
		p.atom(p.target(n))
		if n.Name != "" {
			p.atom(n.Name)
		}
	case *Break:
		p.atom(p.target(n.Target))
		p.crossings(n.Crossings)
	}
}
