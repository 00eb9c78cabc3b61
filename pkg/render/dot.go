package render

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/reduce"
)

// DOT writes sem as a Graphviz digraph. Edges run from a node to its
// children in evaluation order; a Break's edge to its target is dashed.
func DOT(w io.Writer, sem *asg.Semantics) error {
	names := NewNames(sem)
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "digraph asg {")
	fmt.Fprintln(bw, "  node [shape=box, fontname=\"monospace\"];")
	fmt.Fprintf(bw, "  locals [shape=note, label=%s];\n",
		strconv.Quote("locals: "+strings.Join(names.variableList(sem.Locals), " ")))

	for _, node := range names.Nodes() {
		label := asg.KindOf(node)
		for _, a := range names.attributes(node) {
			label += "\\n" + a.key + ": " + escapeLabel(a.value)
		}
		style := ""
		if names.Shared(node) {
			style = ", style=bold"
		}
		fmt.Fprintf(bw, "  %s [label=\"%s\"%s];\n", names.Node(node), label, style)
	}
	for _, node := range names.Nodes() {
		_, isBreak := node.(*asg.Break)
		for i, c := range reduce.Children(node) {
			attrs := "label=" + strconv.Itoa(i)
			if isBreak {
				attrs = "style=dashed"
			}
			fmt.Fprintf(bw, "  %s -> %s [%s];\n", names.Node(node), names.Node(c), attrs)
		}
	}
	fmt.Fprintf(bw, "  locals -> %s [style=dotted];\n", names.Node(sem.Root))
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// escapeLabel quotes a value for use inside a double-quoted DOT label.
func escapeLabel(s string) string {
	q := strconv.Quote(s)
	return q[1 : len(q)-1]
}
