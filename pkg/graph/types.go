package graph

import (
	"github.com/gclm/flowgraph/pkg/dag"
	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Visualization types.
const (
	VizTypeLayered  = "layered"
	VizTypeLinear   = "linear"
	VizTypeNodelink = "nodelink"
)

// Node metadata keys set by FromWorkflow.
const (
	MetaLabel  = "label"
	MetaAgent  = "agent"
	MetaModel  = "model"
	MetaStatus = "status"
)

// Graph is the JSON form of a workflow graph.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is the serialized form of a workflow node.
type Node struct {
	ID     string         `json:"id" bson:"id"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`
	Agent  string         `json:"agent,omitempty" bson:"agent,omitempty"`
	Model  string         `json:"model,omitempty" bson:"model,omitempty"`
	Status string         `json:"status,omitempty" bson:"status,omitempty"`
	Row    int            `json:"row" bson:"row"`
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge points from a dependency to its dependent.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// FromWorkflow builds a DAG from a workflow and its layering. Each node gets
// the row it was layered into and its label, agent, model and bound status
// as metadata. A nil binding leaves every node pending.
//
// A DAG needs unique, non-empty IDs, so only the first node with a given ref
// is kept and nodes with an empty ref are skipped. Dependencies on refs that
// are not in the workflow are dropped, as are repeated entries.
func FromWorkflow(nodes []workflow.Node, res transform.Result, b status.Binding) *dag.DAG {
	rows := res.Rows()
	g := dag.New()
	for _, n := range nodes {
		_ = g.AddNode(dag.Node{
			ID:  n.Ref,
			Row: rows[n.Ref],
			Meta: dag.Metadata{
				MetaLabel:  n.Label(),
				MetaAgent:  n.Agent,
				MetaModel:  n.Model,
				MetaStatus: string(b.Of(n.Ref)),
			},
		})
	}

	seen := make(map[Edge]bool)
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			e := Edge{From: dep, To: n.Ref}
			if seen[e] {
				continue
			}
			if err := g.AddEdge(dag.Edge{From: dep, To: n.Ref}); err == nil {
				seen[e] = true
			}
		}
	}
	return g
}

// FromDAG converts a DAG to its serialized form, keeping insertion order.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromDAG(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To}
	}
	return out
}

func nodeFromDAG(n *dag.Node) Node {
	node := Node{
		ID:     n.ID,
		Row:    n.Row,
		Label:  n.Meta.String(MetaLabel),
		Agent:  n.Meta.String(MetaAgent),
		Model:  n.Meta.String(MetaModel),
		Status: n.Meta.String(MetaStatus),
	}
	for k, v := range n.Meta {
		switch k {
		case MetaLabel, MetaAgent, MetaModel, MetaStatus:
			continue
		}
		if node.Meta == nil {
			node.Meta = make(map[string]any)
		}
		node.Meta[k] = v
	}
	return node
}
