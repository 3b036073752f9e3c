package pipeline

import (
	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Plan is everything the renderers need for the graph path. It is computed
// from a snapshot of its inputs and holds no references to them.
type Plan struct {
	Workflow workflow.Workflow
	Nodes    []workflow.Node
	Layers   transform.Result
	Layout   layout.Layout
	Binding  status.Binding
}

// Prepare normalizes the workflow's nodes, layers them, assigns coordinates
// under profile p and binds the phase statuses. It never fails: cycles and
// dangling dependencies end up in the terminal layer.
func Prepare(wf workflow.Workflow, phases []workflow.PhaseStatus, p layout.Profile) Plan {
	nodes := workflow.Normalize(wf.Nodes)
	wf.Nodes = nodes
	res := transform.AssignLayers(nodes)
	return Plan{
		Workflow: wf,
		Nodes:    nodes,
		Layers:   res,
		Layout:   layout.Place(res, p),
		Binding:  status.Bind(nodes, phases),
	}
}

// phaseNodes turns a flat phase list into edge-free nodes so the graph
// renderers can draw it.
func phaseNodes(phases []workflow.PhaseStatus) []workflow.Node {
	nodes := make([]workflow.Node, len(phases))
	for i, ph := range phases {
		nodes[i] = workflow.Node{
			Ref:         ph.PhaseName,
			DisplayName: ph.DisplayName,
			Agent:       ph.AgentName,
			Model:       ph.ModelName,
		}
	}
	return nodes
}
