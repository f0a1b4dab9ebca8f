// Package graph builds the dependency graph between components of a system.
//
// An edge runs from producer to consumer whenever an output name of one
// component equals an input name of another. The graph is immutable once
// built and safe for concurrent read access.
package graph

import (
	"sort"

	"github.com/intentlab-dev/iopc/pkg/intent"
)

// Edge is one dependency, labeled with the port name that links the pair.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Port string `json:"port"`
}

type edgeIndex struct {
	from int
	to   int
	port string
}

// Graph is the component dependency graph of a single system.
type Graph struct {
	nodes []string // declaration order
	index map[string]int

	edges []edgeIndex // sorted by (from, to, port)

	out   [][]int // deduped successor indices, ascending
	in    [][]int // deduped predecessor indices, ascending
	indeg []int
}

// Build derives the dependency graph from a parsed system. Duplicate
// component names keep their first declaration; the validator reports the
// duplication itself.
func Build(sys *intent.SystemSpec) *Graph {
	components := sys.UniqueComponents()
	g := &Graph{index: make(map[string]int, len(components))}
	for _, c := range components {
		g.index[c.Name] = len(g.nodes)
		g.nodes = append(g.nodes, c.Name)
	}

	producers := make(map[string][]int) // port name to producer indices
	for _, c := range components {
		ci := g.index[c.Name]
		for _, out := range c.Outputs {
			producers[out.Name] = append(producers[out.Name], ci)
		}
	}

	seen := make(map[edgeIndex]struct{})
	for _, c := range components {
		ci := g.index[c.Name]
		for _, in := range c.Inputs {
			for _, pi := range producers[in.Name] {
				e := edgeIndex{from: pi, to: ci, port: in.Name}
				if _, dup := seen[e]; dup {
					continue
				}
				seen[e] = struct{}{}
				g.edges = append(g.edges, e)
			}
		}
	}

	sort.Slice(g.edges, func(i, j int) bool {
		a, b := g.edges[i], g.edges[j]
		if a.from != b.from {
			return a.from < b.from
		}
		if a.to != b.to {
			return a.to < b.to
		}
		return a.port < b.port
	})

	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	g.indeg = make([]int, len(g.nodes))
	adj := make(map[[2]int]struct{})
	for _, e := range g.edges {
		pair := [2]int{e.from, e.to}
		if _, dup := adj[pair]; dup {
			continue
		}
		adj[pair] = struct{}{}
		g.out[e.from] = append(g.out[e.from], e.to)
		g.in[e.to] = append(g.in[e.to], e.from)
		g.indeg[e.to]++
	}
	for i := range g.out {
		sort.Ints(g.out[i])
		sort.Ints(g.in[i])
	}
	return g
}

// Nodes returns the component names in declaration order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the labeled dependency edges in canonical order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, Edge{From: g.nodes[e.from], To: g.nodes[e.to], Port: e.port})
	}
	return out
}

// HasNode reports whether the graph contains the named component.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Dependencies returns the names of components the given one consumes from,
// in declaration order.
func (g *Graph) Dependencies(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.in[i]))
	for _, p := range g.in[i] {
		out = append(out, g.nodes[p])
	}
	return out
}

// Dependents returns the names of components consuming the given one's
// outputs, in declaration order.
func (g *Graph) Dependents(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.out[i]))
	for _, s := range g.out[i] {
		out = append(out, g.nodes[s])
	}
	return out
}

// Len returns the node count.
func (g *Graph) Len() int { return len(g.nodes) }
