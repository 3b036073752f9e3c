package transform

import "github.com/gclm/flowgraph/pkg/dag"

// RedundantEdges reports dependencies implied by other dependencies: an edge
// u→v is redundant when v is also reachable from u through another node. In
// a workflow this is a phase listing both a dependency and something that
// dependency already waits on. The graph is not modified.
//
// Reachability is computed with one depth-first search per node, which is
// O(V·E) and fine for workflow-sized graphs.
func RedundantEdges(g *dag.DAG) []dag.Edge {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	index := dag.PosMap(dag.NodeIDs(nodes))
	adjacency := make([][]int, len(nodes))
	for _, e := range g.Edges() {
		adjacency[index[e.From]] = append(adjacency[index[e.From]], index[e.To])
	}
	reach := reachability(adjacency)

	var out []dag.Edge
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		for _, mid := range adjacency[src] {
			if mid != dst && reach[mid][dst] {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// TransitiveReduction removes every edge reported by RedundantEdges.
func TransitiveReduction(g *dag.DAG) int {
	redundant := RedundantEdges(g)
	for _, e := range redundant {
		g.RemoveEdge(e.From, e.To)
	}
	return len(redundant)
}

func reachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reach := make([][]bool, n)
	for i := range reach {
		reach[i] = make([]bool, n)
	}

	var dfs func(source, current int)
	dfs = func(source, current int) {
		if reach[source][current] {
			return
		}
		reach[source][current] = true
		for _, next := range adjacency[current] {
			dfs(source, next)
		}
	}
	for i := range reach {
		dfs(i, i)
	}
	return reach
}
