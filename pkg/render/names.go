// Package render writes a semantic graph for people to read: Graphviz DOT
// for pictures, YAML for diffs. Both share one naming scheme so a node or
// variable has the same name in every output.
package render

import (
	"strconv"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/reduce"
	"github.com/nooga/explicate/pkg/scope"
)

// Names assigns stable names to the nodes and variables of one graph.
// Nodes are numbered n0, n1, ... in post-order. Source variables keep their
// name, suffixed with a counter when two distinct variables share it;
// temporaries are $0, $1, ... A generated name never repeats a name
// already given out.
type Names struct {
	nodes     map[asg.Node]string
	order     []asg.Node
	refs      map[asg.Node]int
	variables map[*scope.Variable]string
	used      map[string]bool
	suffixes  map[string]int
	temps     int
}

// NewNames walks sem once and names everything in it.
func NewNames(sem *asg.Semantics) *Names {
	n := &Names{
		nodes:     make(map[asg.Node]string),
		refs:      make(map[asg.Node]int),
		variables: make(map[*scope.Variable]string),
		used:      make(map[string]bool),
		suffixes:  make(map[string]int),
	}
	for _, v := range sem.Locals {
		n.Variable(v)
	}
	n.order = reduce.Collect(sem.Root, func(asg.Node) bool { return true })
	for i, node := range n.order {
		n.nodes[node] = "n" + strconv.Itoa(i)
		for _, c := range reduce.Children(node) {
			n.refs[c]++
		}
		n.nameVariables(node)
	}
	return n
}

func (n *Names) nameVariables(node asg.Node) {
	switch node := node.(type) {
	case *asg.LiteralFunction:
		for _, v := range []*scope.Variable{node.Name, node.Arguments} {
			if v != nil {
				n.Variable(v)
			}
		}
		for _, list := range [][]*scope.Variable{node.Parameters, node.Locals, node.Captured} {
			for _, v := range list {
				n.Variable(v)
			}
		}
	case *asg.LocalReference:
		n.Variable(node.Variable)
	case *asg.TemporaryReference:
		n.Variable(node.Variable)
	case *asg.TryCatch:
		if node.CatchVariable != nil {
			n.Variable(node.CatchVariable)
		}
	}
}

// Node returns the name of a node of the graph, or "" for a node that is
// not part of it.
func (n *Names) Node(node asg.Node) string { return n.nodes[node] }

// Nodes returns every node of the graph in naming order.
func (n *Names) Nodes() []asg.Node { return n.order }

// Shared reports whether node is referenced from more than one place.
func (n *Names) Shared(node asg.Node) bool { return n.refs[node] > 1 }

// Variable returns the name of v, assigning one on first use.
func (n *Names) Variable(v *scope.Variable) string {
	if name, ok := n.variables[v]; ok {
		return name
	}
	var name string
	if v.Synthetic {
		name = n.temporary()
		for n.used[name] {
			name = n.temporary()
		}
	} else {
		name = v.Name
		for n.used[name] {
			n.suffixes[v.Name]++
			name = v.Name + "_" + strconv.Itoa(n.suffixes[v.Name])
		}
	}
	n.used[name] = true
	n.variables[v] = name
	return name
}

func (n *Names) temporary() string {
	name := "$" + strconv.Itoa(n.temps)
	n.temps++
	return name
}

func (n *Names) variableList(vs []*scope.Variable) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = n.Variable(v)
	}
	return out
}
