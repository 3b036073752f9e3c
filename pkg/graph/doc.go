// Package graph holds the serialized forms of workflow graphs and layouts.
//
// [Graph] is a node-link description of a workflow (nodes with their layer
// row and status, edges from dependency to dependent). [Layout] describes a
// finished drawing: canvas size, node boxes, edges and a status summary. Both
// are what the server returns for format=json and what the CLI writes with
// --format json.
//
// [FromWorkflow] turns a workflow and its layering into a [dag.DAG], which
// is the input of the Graphviz exporter and of the cycle diagnostics.
//
// All conversions keep input order, so serializing the same workflow twice
// yields identical bytes.
//
// [dag.DAG]: github.com/gclm/flowgraph/pkg/dag.DAG
package graph
