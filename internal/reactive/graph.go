// Package reactive wires dashboard inputs to derived views through an
// explicit dependency graph. Nodes are pure functions of their declared
// inputs; they are recomputed lazily after an upstream value changes.
package reactive

import (
	"fmt"
	"reflect"
)

// Func computes a node value from its dependency values, in declaration order.
type Func func(args []any) any

type node struct {
	name       string
	deps       []*node
	dependents []*node
	fn         Func

	value    any
	valid    bool
	computes int
}

// Graph is a directed acyclic graph of inputs and derived nodes. Dependencies
// must exist before a node naming them is declared, so cycles cannot be built.
// A Graph is not safe for concurrent use; each render cycle owns its own.
type Graph struct {
	nodes map[string]*node
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// Input declares a source node holding v.
func (g *Graph) Input(name string, v any) {
	g.mustBeNew(name)
	g.nodes[name] = &node{name: name, value: v, valid: true}
}

// Derive declares a node computed by fn from deps.
func (g *Graph) Derive(name string, deps []string, fn Func) {
	g.mustBeNew(name)
	n := &node{name: name, fn: fn}
	for _, d := range deps {
		dn, ok := g.nodes[d]
		if !ok {
			panic(fmt.Sprintf("reactive: node %q depends on undeclared %q", name, d))
		}
		n.deps = append(n.deps, dn)
		dn.dependents = append(dn.dependents, n)
	}
	g.nodes[name] = n
}

func (g *Graph) mustBeNew(name string) {
	if _, ok := g.nodes[name]; ok {
		panic(fmt.Sprintf("reactive: node %q declared twice", name))
	}
}

// Set replaces an input value. Dependents are invalidated only when the value
// actually changed.
func (g *Graph) Set(name string, v any) error {
	n, ok := g.nodes[name]
	if !ok {
		return fmt.Errorf("reactive: unknown node %q", name)
	}
	if n.fn != nil {
		return fmt.Errorf("reactive: %q is derived and cannot be set", name)
	}
	if reflect.DeepEqual(n.value, v) {
		return nil
	}
	n.value = v
	invalidate(n)
	return nil
}

func invalidate(n *node) {
	for _, d := range n.dependents {
		if d.valid {
			d.valid = false
			invalidate(d)
		}
	}
}

// Get returns the current value of a node, recomputing stale dependencies first.
func (g *Graph) Get(name string) (any, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("reactive: unknown node %q", name)
	}
	return pull(n), nil
}

func pull(n *node) any {
	if n.valid {
		return n.value
	}
	args := make([]any, len(n.deps))
	for i, d := range n.deps {
		args[i] = pull(d)
	}
	n.value = n.fn(args)
	n.valid = true
	n.computes++
	return n.value
}

// Recomputations reports how many times a derived node has been computed.
func (g *Graph) Recomputations(name string) int {
	if n, ok := g.nodes[name]; ok {
		return n.computes
	}
	return 0
}
