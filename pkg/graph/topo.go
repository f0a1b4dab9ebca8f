package graph

import (
	"container/heap"
	"sort"
)

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns a deterministic topological ordering of component
// names. The second result is false when the graph is cyclic.
//
// Determinism: the ready queue is a min-heap by declaration index.
func (g *Graph) TopologicalOrder() ([]string, bool) {
	indeg := make([]int, len(g.indeg))
	copy(indeg, g.indeg)

	ready := &intMinHeap{}
	heap.Init(ready)
	for i := range indeg {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]string, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, g.nodes[n])
		for _, m := range g.out[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	if len(out) != len(g.nodes) {
		return nil, false
	}
	return out, true
}

// Cycles returns one closed walk per strongly connected component that
// contains a cycle. Each walk begins and ends at the lexicographically
// smallest member. Walks are sorted by their starting name.
func (g *Graph) Cycles() [][]string {
	sccs := g.stronglyConnected()

	var walks [][]string
	for _, scc := range sccs {
		if len(scc) == 1 && !g.hasSelfEdge(scc[0]) {
			continue
		}
		walks = append(walks, g.cycleWalk(scc))
	}
	sort.Slice(walks, func(i, j int) bool { return walks[i][0] < walks[j][0] })
	return walks
}

func (g *Graph) hasSelfEdge(n int) bool {
	for _, m := range g.out[n] {
		if m == n {
			return true
		}
	}
	return false
}

// stronglyConnected runs Tarjan's algorithm over the adjacency lists.
func (g *Graph) stronglyConnected() [][]int {
	const unvisited = -1

	n := len(g.nodes)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = unvisited
	}

	var (
		counter int
		stack   []int
		sccs    [][]int
	)

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.out[v] {
			if index[w] == unvisited {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && index[w] < lowlink[v] {
				lowlink[v] = index[w]
			}
		}

		if lowlink[v] == index[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == unvisited {
			strongconnect(v)
		}
	}
	return sccs
}

// cycleWalk extracts a closed walk inside one cyclic strongly connected
// component, starting at its lexicographically smallest member. Neighbors
// are tried in name order, backtracking when a branch dead-ends, so the
// witness is stable across runs.
func (g *Graph) cycleWalk(scc []int) []string {
	inSCC := make(map[int]bool, len(scc))
	for _, n := range scc {
		inSCC[n] = true
	}

	start := scc[0]
	for _, n := range scc[1:] {
		if g.nodes[n] < g.nodes[start] {
			start = n
		}
	}

	path := []int{start}
	visited := map[int]bool{start: true}

	var dfs func(u int) bool
	dfs = func(u int) bool {
		next := make([]int, 0, len(g.out[u]))
		for _, v := range g.out[u] {
			if inSCC[v] {
				next = append(next, v)
			}
		}
		sort.Slice(next, func(i, j int) bool { return g.nodes[next[i]] < g.nodes[next[j]] })

		for _, v := range next {
			if v == start && len(path) > 1 {
				return true
			}
			if v == start && g.hasSelfEdge(start) && len(path) == 1 {
				return true
			}
			if visited[v] {
				continue
			}
			visited[v] = true
			path = append(path, v)
			if dfs(v) {
				return true
			}
			path = path[:len(path)-1]
			visited[v] = false
		}
		return false
	}
	dfs(start)

	walk := make([]string, 0, len(path)+1)
	for _, n := range path {
		walk = append(walk, g.nodes[n])
	}
	walk = append(walk, g.nodes[start])
	return walk
}
