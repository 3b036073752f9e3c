// Package transform assigns workflow phases to layers and analyzes the
// dependency graph that results.
//
// # Layering
//
// [AssignLayers] works on the raw node list, not on a [dag.DAG], so that
// references to unknown refs and duplicate refs keep their effect. It places
// nodes in rounds: a node is ready once every dependency it names has been
// placed in an earlier round, and all ready nodes form the next layer in
// definition order.
//
// When a round finds nothing ready, every node still waiting goes into one
// final layer and is listed in [Result.Unresolved]. That covers cycles and
// dependencies on refs that do not exist. Layering never fails.
//
//	res := transform.AssignLayers(wf.Nodes)
//	for i, layer := range res.Layers {
//		fmt.Println(i, layer)
//	}
//
// # Analysis
//
// The remaining functions operate on a [dag.DAG] built from a layered
// workflow and back the inspect command:
//
//   - [FindCycles] reports one closing edge per dependency cycle, and
//     [BreakCycles] removes those edges.
//   - [RedundantEdges] reports dependencies already implied through another
//     phase, and [TransitiveReduction] removes them.
//
// inspect --reduce applies both removals before printing the graph.
//
// [dag.DAG]: github.com/gclm/flowgraph/pkg/dag.DAG
package transform
