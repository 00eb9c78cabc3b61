package render

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/reduce"
)

// YAML writes sem as a YAML document. A node referenced from more than one
// place is written once with an anchor and aliased at its other
// references, so the document keeps the sharing of the graph.
func YAML(w io.Writer, sem *asg.Semantics) error {
	names := NewNames(sem)
	b := &yamlBuilder{names: names, built: make(map[asg.Node]*yaml.Node)}

	doc := mapping()
	put(doc, "locals", sequence(names.variableList(sem.Locals)))
	if sem.TopLevelVarNames != nil {
		put(doc, "topLevelVarNames", sequence(sem.TopLevelVarNames))
	}
	put(doc, "root", b.node(sem.Root))

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

type yamlBuilder struct {
	names *Names
	built map[asg.Node]*yaml.Node
}

func (b *yamlBuilder) node(n asg.Node) *yaml.Node {
	if prev, ok := b.built[n]; ok {
		return &yaml.Node{Kind: yaml.AliasNode, Value: prev.Anchor, Alias: prev}
	}
	out := mapping()
	if b.names.Shared(n) {
		out.Anchor = b.names.Node(n)
	}
	b.built[n] = out

	put(out, "kind", scalar(asg.KindOf(n)))
	for _, a := range b.names.attributes(n) {
		put(out, a.key, scalar(a.value))
	}
	children := reduce.Children(n)
	if len(children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, c := range children {
			seq.Content = append(seq.Content, b.node(c))
		}
		put(out, "children", seq)
	}
	return out
}

func mapping() *yaml.Node { return &yaml.Node{Kind: yaml.MappingNode} }

func scalar(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: s}
	if s == "" || strings.TrimSpace(s) != s {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

func sequence(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, s := range items {
		n.Content = append(n.Content, scalar(s))
	}
	return n
}

func put(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, scalar(key), value)
}
