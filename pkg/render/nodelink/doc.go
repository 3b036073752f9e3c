// Package nodelink renders workflow graphs as Graphviz node-link diagrams.
//
// The layered SVG in [github.com/gclm/flowgraph/pkg/render/svg] places nodes
// with a fixed grid. This package hands the same graph to Graphviz instead,
// which routes edges around nodes and is easier to read for wide workflows.
//
//	g := graph.FromWorkflow(nodes, res, binding)
//	dot := nodelink.ToDOT(g, nodelink.Options{Direction: nodelink.LeftToRight})
//	out, err := nodelink.RenderSVG(ctx, dot)
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz as
// WebAssembly, so no system install is needed.
package nodelink
