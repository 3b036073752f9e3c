// Package render groups the output backends for workflow graphs.
//
//   - [svg] draws the layered or linear layout as a self-contained SVG with
//     status colors. This is the dashboard's default view.
//   - [nodelink] emits Graphviz DOT and renders it to SVG or PNG.
//
// Both backends share one status palette, so a node looks the same in
// either view.
//
// [svg]: github.com/gclm/flowgraph/pkg/render/svg
// [nodelink]: github.com/gclm/flowgraph/pkg/render/nodelink
package render
