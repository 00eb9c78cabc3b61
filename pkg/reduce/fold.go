package reduce

import (
	"github.com/nooga/explicate/pkg/asg"
	"github.com/nooga/explicate/pkg/errors"
)

// Monoid combines partial results. Combine must be associative and
// Identity its neutral element.
type Monoid[T any] struct {
	Identity T
	Combine  func(a, b T) T
}

// Fold reduces the graph under root bottom-up. visit receives a node and
// the combination of its children's results; it runs once per node
// identity, and later references to the node reuse the first result.
func Fold[T any](root asg.Node, m Monoid[T], visit func(n asg.Node, children T) T) T {
	f := &folder[T]{
		monoid:   m,
		visit:    visit,
		memo:     make(map[asg.Node]T),
		visiting: make(map[asg.Node]bool),
	}
	return f.fold(root)
}

type folder[T any] struct {
	monoid   Monoid[T]
	visit    func(asg.Node, T) T
	memo     map[asg.Node]T
	visiting map[asg.Node]bool
}

func (f *folder[T]) fold(n asg.Node) T {
	if r, ok := f.memo[n]; ok {
		return r
	}
	if f.visiting[n] {
		errors.Invariantf("cycle through %s", asg.KindOf(n))
	}
	f.visiting[n] = true
	acc := f.monoid.Identity
	for _, c := range Children(n) {
		acc = f.monoid.Combine(acc, f.fold(c))
	}
	r := f.visit(n, acc)
	delete(f.visiting, n)
	f.memo[n] = r
	return r
}

// Sum is the monoid of integers under addition.
var Sum = Monoid[int]{Identity: 0, Combine: func(a, b int) int { return a + b }}

// CountDistinct returns the number of distinct nodes reachable from root.
func CountDistinct(root asg.Node) int {
	count := 0
	Fold(root, Monoid[struct{}]{Combine: func(struct{}, struct{}) struct{} { return struct{}{} }},
		func(asg.Node, struct{}) struct{} {
			count++
			return struct{}{}
		})
	return count
}

// CountNaive counts nodes without memoization, so a shared node is counted
// once per path that reaches it.
func CountNaive(root asg.Node) int {
	n := 1
	for _, c := range Children(root) {
		n += CountNaive(c)
	}
	return n
}

// Collect returns every distinct node reachable from root for which keep
// returns true, in post-order.
func Collect(root asg.Node, keep func(asg.Node) bool) []asg.Node {
	var out []asg.Node
	Fold(root, Monoid[struct{}]{Combine: func(struct{}, struct{}) struct{} { return struct{}{} }},
		func(n asg.Node, _ struct{}) struct{} {
			if keep(n) {
				out = append(out, n)
			}
			return struct{}{}
		})
	return out
}

// FindAll returns the distinct nodes of the given kind, as named by
// asg.KindOf.
func FindAll(root asg.Node, kind string) []asg.Node {
	return Collect(root, func(n asg.Node) bool { return asg.KindOf(n) == kind })
}
