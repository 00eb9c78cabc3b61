package asg

import (
	"fmt"

	"github.com/nooga/explicate/pkg/scope"
)

// Crossing records one try construct a jump leaves on its way to the target.
type Crossing int

const (
	// CrossTryCatch leaves the protected block of a try with a catch clause.
	CrossTryCatch Crossing = iota
	// CrossTryFinally leaves the protected block (or the catch body) of a try
	// with a finally clause; the finally body runs.
	CrossTryFinally
	// CrossFinally leaves a finally body.
	CrossFinally
)

func (c Crossing) String() string {
	switch c {
	case CrossTryCatch:
		return "TryCatch"
	case CrossTryFinally:
		return "TryFinally"
	case CrossFinally:
		return "Finally"
	default:
		return fmt.Sprintf("Crossing(%d)", int(c))
	}
}

func finallyCount(crossings []Crossing) int {
	n := 0
	for _, c := range crossings {
		if c == CrossTryFinally {
			n++
		}
	}
	return n
}

// Semantics is the result of lowering one program.
type Semantics struct {
	Root *Block
	// Locals holds the program's non-global variables and every
	// temporary created at top level.
	Locals []*scope.Variable
	// TopLevelVarNames are the global object properties a script's var and
	// function declarations create.
	TopLevelVarNames []string
	FunctionScopes   map[*LiteralFunction]*scope.Scope
}

func typeName(n Node) string { return fmt.Sprintf("%T", n) }
