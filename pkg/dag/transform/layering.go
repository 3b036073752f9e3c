package transform

import "github.com/gclm/flowgraph/pkg/workflow"

// Layer is an ordered list of node refs sharing one topological depth.
type Layer []string

// Result is the outcome of [AssignLayers].
type Result struct {
	// Layers in placement order. Every input node appears exactly once.
	Layers []Layer

	// Unresolved lists the refs placed in the terminal layer because their
	// dependencies could never all be satisfied (a cycle, a dependency on a
	// ref that is not in the workflow, or a dependency on such a node).
	// It is empty when the graph layered cleanly.
	Unresolved []string

	// Indices parallels Layers: Indices[i][j] is the position in the input
	// list of the node drawn as Layers[i][j]. It tells apart nodes that
	// share a ref.
	Indices [][]int
}

// Depth returns the number of layers.
func (r Result) Depth() int { return len(r.Layers) }

// Rows maps each ref to its layer index. When refs are duplicated the last
// occurrence wins.
func (r Result) Rows() map[string]int {
	rows := make(map[string]int)
	for i, l := range r.Layers {
		for _, ref := range l {
			rows[ref] = i
		}
	}
	return rows
}

// AssignLayers groups nodes into layers so that every node comes after all of
// its dependencies.
//
// A node's pending count starts at len(DependsOn). Each round places every
// unplaced node whose pending count is zero, in input order, then recounts
// each remaining node's dependencies that have not been placed yet. When a
// round finds nothing to place, all remaining nodes form one final layer.
// This always terminates: cycles and references to unknown refs end up in
// that terminal layer instead of producing an error.
//
// Nodes are tracked by position, so a duplicated ref appears once per
// occurrence and is never dropped.
func AssignLayers(nodes []workflow.Node) Result {
	var res Result

	pending := make([]int, len(nodes))
	for i, n := range nodes {
		pending[i] = len(n.DependsOn)
	}
	placed := make([]bool, len(nodes))
	visited := make(map[string]bool, len(nodes))
	remaining := len(nodes)

	for remaining > 0 {
		var ready []int
		for i := range nodes {
			if !placed[i] && pending[i] == 0 {
				ready = append(ready, i)
			}
		}

		if len(ready) == 0 {
			var rest Layer
			var idx []int
			for i, n := range nodes {
				if !placed[i] {
					rest = append(rest, n.Ref)
					idx = append(idx, i)
				}
			}
			res.Layers = append(res.Layers, rest)
			res.Indices = append(res.Indices, idx)
			res.Unresolved = append([]string(nil), rest...)
			break
		}

		layer := make(Layer, len(ready))
		for j, i := range ready {
			placed[i] = true
			visited[nodes[i].Ref] = true
			layer[j] = nodes[i].Ref
		}
		res.Layers = append(res.Layers, layer)
		res.Indices = append(res.Indices, ready)
		remaining -= len(ready)

		for i, n := range nodes {
			if placed[i] {
				continue
			}
			count := 0
			for _, dep := range n.DependsOn {
				if !visited[dep] {
					count++
				}
			}
			pending[i] = count
		}
	}
	return res
}
