package rewrite

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/panbanda/es6class/pkg/matcher"
)

// hierarchy links the classes declared in one file by inheritance. Edges
// run from parent to child; superclasses declared elsewhere are not nodes.
type hierarchy struct {
	g       *simple.DirectedGraph
	parents map[int64]bool
}

func newHierarchy(matches []*matcher.Match) *hierarchy {
	h := &hierarchy{
		g:       simple.NewDirectedGraph(),
		parents: make(map[int64]bool),
	}

	byName := make(map[string]int64, len(matches)*2)
	for i, m := range matches {
		id := int64(i)
		h.g.AddNode(simple.Node(id))
		if !m.Class.NameBound {
			byName[m.Class.Name] = id
		}
		byName[m.Class.LocalName()] = id
	}

	for i, m := range matches {
		if !m.Class.IsChild() {
			continue
		}
		parent, ok := byName[m.Class.SuperclassName]
		if !ok || parent == int64(i) {
			continue
		}
		h.g.SetEdge(simple.Edge{F: simple.Node(parent), T: simple.Node(int64(i))})
		h.parents[int64(i)] = true
	}

	return h
}

// anchors returns the in-file roots that must define the initialization
// method because a descendant chains into it. has reports whether a class
// defines the method itself. ok is false when the graph has a cycle.
func (h *hierarchy) anchors(has func(int) bool) (roots []int, ok bool) {
	order, err := topo.Sort(h.g)
	if err != nil {
		return nil, false
	}

	// Children before parents.
	need := make(map[int64]bool, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i].ID()
		n := has(int(id))
		for _, child := range graph.NodesOf(h.g.From(id)) {
			n = n || need[child.ID()]
		}
		need[id] = n
	}

	for _, node := range order {
		id := node.ID()
		if h.parents[id] || has(int(id)) || !need[id] {
			continue
		}
		roots = append(roots, int(id))
	}
	return roots, true
}
