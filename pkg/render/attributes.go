package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/nooga/explicate/pkg/asg"
)

type attribute struct {
	key   string
	value string
}

// attributes lists the scalar payload of a node. Children are not
// included.
func (n *Names) attributes(node asg.Node) []attribute {
	var out []attribute
	add := func(key, value string) { out = append(out, attribute{key, value}) }
	strict := func(s bool) {
		if s {
			add("strict", "true")
		}
	}

	switch node := node.(type) {
	case *asg.LiteralBoolean:
		add("value", strconv.FormatBool(node.Value))
	case *asg.LiteralNumber:
		add("value", number(node.Value))
	case *asg.LiteralString:
		add("value", node.Value)
	case *asg.LiteralRegExp:
		add("pattern", node.Pattern)
		add("flags", node.Flags)
	case *asg.LiteralSymbol:
		add("description", node.Description)
	case *asg.LiteralFunction:
		if node.Name != nil {
			add("name", n.Variable(node.Name))
		}
		if node.Arguments != nil {
			add("arguments", n.Variable(node.Arguments))
		}
		add("params", strings.Join(n.variableList(node.Parameters), " "))
		add("locals", strings.Join(n.variableList(node.Locals), " "))
		add("captured", strings.Join(n.variableList(node.Captured), " "))
		strict(node.Strict)
	case *asg.GlobalReference:
		add("name", node.Name)
	case *asg.LocalReference:
		add("variable", n.Variable(node.Variable))
	case *asg.TemporaryReference:
		add("variable", n.Variable(node.Variable))
	case *asg.Equality:
		add("operator", node.Operator)
	case *asg.FloatMath:
		add("operator", node.Operator)
	case *asg.IntMath:
		add("operator", node.Operator)
	case *asg.Logic:
		add("operator", node.Operator)
	case *asg.RelationalComparison:
		add("operator", node.Operator)
	case *asg.VariableAssignment:
		strict(node.Strict)
	case *asg.MemberAssignment:
		strict(node.Strict)
	case *asg.MemberDelete:
		strict(node.Strict)
	case *asg.DeleteGlobalProperty:
		add("name", node.Name)
	case *asg.TypeofGlobal:
		add("name", node.Name)
	case *asg.TryCatch:
		if node.CatchVariable != nil {
			add("catch", n.Variable(node.CatchVariable))
		}
	case *asg.SwitchStatement:
		add("cases", strconv.Itoa(len(node.PreDefaultCases))+"/"+strconv.Itoa(len(node.PostDefaultCases)))
		if node.DefaultCase != nil {
			add("default", "true")
		}
	case *asg.Return:
		add("crossings", crossings(node.Crossings))
	case *asg.Halt:
		add("reason", node.Reason)
	case *asg.BreakTarget:
		if node.Name != "" {
			add("label", node.Name)
		}
	case *asg.Break:
		add("crossings", crossings(node.Crossings))
	}
	return out
}

func crossings(cs []asg.Crossing) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func number(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
