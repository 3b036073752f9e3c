// Package dag provides a small layered directed graph used to describe a
// workflow once its nodes have been assigned to layers.
//
// # Overview
//
// A workflow is a list of phases, each naming the phases it depends on. After
// layering (see the [transform] subpackage) every phase has a row, and the
// dependency relation becomes a set of edges that point from a dependency to
// its dependent. This package stores that structure so it can be validated,
// queried, and exported to other renderers such as Graphviz.
//
// Edges are stored From dependency To dependent:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "design", Row: 0})
//	g.AddNode(dag.Node{ID: "build", Row: 1})
//	g.AddEdge(dag.Edge{From: "design", To: "build"})
//
// # Ordering
//
// All listing methods return nodes in insertion order rather than map order,
// so layouts and exports derived from a DAG are byte-for-byte reproducible.
//
// # Dangling references
//
// A DAG can only hold edges between known nodes. Dependencies on refs that
// are not part of the workflow are dropped when converting a workflow into a
// DAG; they still influence layering, which works on the raw node list.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// [transform]: github.com/gclm/flowgraph/pkg/dag/transform
package dag
