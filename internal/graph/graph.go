// Package graph implements the directed permission graph backing a hub's
// manager. Nodes are channel names; an edge A->B records that some
// subscriber listening on A is allowed to dispatch into B, labelled with
// that subscriber's display name.
//
// Adjacency is kept in insertion-ordered maps so that traversal order,
// and therefore every diagnostic produced from it, is deterministic.
package graph

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Step is a single hop along a path: the channel the hop leaves from and
// the display name of the subscriber whose edge is being followed.
type Step struct {
	Channel string
	Via     string
}

// Edge is a committed permission edge for introspection.
type Edge struct {
	From string
	To   string
	Via  string
}

// Graph is a directed graph with labelled edges. The zero value is not
// usable; construct with New.
type Graph struct {
	adjacency *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, string]]
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		adjacency: orderedmap.New[string, *orderedmap.OrderedMap[string, string]](),
	}
}

// AddEdge records the edge from->to labelled via. If the edge already
// exists the original label wins; the first subscriber that contributed
// the permission is the one diagnostics should name.
func (g *Graph) AddEdge(from, to, via string) {
	targets, ok := g.adjacency.Get(from)
	if !ok {
		targets = orderedmap.New[string, string]()
		g.adjacency.Set(from, targets)
	}
	if _, ok := targets.Get(to); !ok {
		targets.Set(to, via)
	}
}

// HasEdge reports whether the edge from->to is committed.
func (g *Graph) HasEdge(from, to string) bool {
	targets, ok := g.adjacency.Get(from)
	if !ok {
		return false
	}
	_, ok = targets.Get(to)
	return ok
}

// Len returns the number of committed edges.
func (g *Graph) Len() int {
	n := 0
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		n += pair.Value.Len()
	}
	return n
}

// Edges returns every committed edge in insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		for target := pair.Value.Oldest(); target != nil; target = target.Next() {
			edges = append(edges, Edge{From: pair.Key, To: target.Key, Via: target.Value})
		}
	}
	return edges
}

type hop struct {
	channel string
	via     string
	prev    *hop
}

// PathTo searches for a path from one channel to another over committed
// edges, breadth first, and returns it as a sequence of steps. Each step
// names the channel it departs from and the subscriber whose edge it
// follows. A from == to query returns an empty, non-nil path: the trivial
// path exists. It returns nil when no path exists.
func (g *Graph) PathTo(from, to string) []Step {
	if from == to {
		return []Step{}
	}

	visited := map[string]bool{from: true}
	queue := []*hop{{channel: from}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		targets, ok := g.adjacency.Get(current.channel)
		if !ok {
			continue
		}
		for target := targets.Oldest(); target != nil; target = target.Next() {
			if visited[target.Key] {
				continue
			}
			next := &hop{channel: target.Key, via: target.Value, prev: current}
			if target.Key == to {
				return unwind(next)
			}
			visited[target.Key] = true
			queue = append(queue, next)
		}
	}
	return nil
}

// unwind walks the hop chain back to the origin and emits steps in
// forward order. The step for a hop names the channel it departed from,
// so the final hop's destination never appears as a step.
func unwind(last *hop) []Step {
	var reversed []Step
	for h := last; h.prev != nil; h = h.prev {
		reversed = append(reversed, Step{Channel: h.prev.channel, Via: h.via})
	}
	steps := make([]Step, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		steps = append(steps, reversed[i])
	}
	return steps
}
