package transform

import "github.com/gclm/flowgraph/pkg/dag"

// FindCycles returns the back-edges of g: edges that close a directed cycle.
// The graph is not modified. An empty result means g is acyclic.
//
// The search is a depth-first walk with white/gray/black coloring, started
// from the sources and then from every node still unvisited, always in
// insertion order, so the reported edges are deterministic.
func FindCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var back []dag.Edge

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.Children(id) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				back = append(back, dag.Edge{From: id, To: child})
			}
		}
		color[id] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return back
}

// BreakCycles removes the edges reported by FindCycles and returns how many
// were removed.
func BreakCycles(g *dag.DAG) int {
	back := FindCycles(g)
	for _, e := range back {
		g.RemoveEdge(e.From, e.To)
	}
	return len(back)
}
