package graph

import (
	"encoding/json"
	"fmt"

	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Layout is the JSON form of a computed drawing. VizType tells which fields
// are populated:
//
//	layered:  Layers, Unresolved, Nodes (with rows), Edges
//	linear:   Nodes only, in phase order
//	nodelink: DOT
//
// Width, Height, Size and Summary are shared.
type Layout struct {
	VizType  string  `json:"viz_type" bson:"viz_type"`
	Workflow string  `json:"workflow,omitempty" bson:"workflow,omitempty"`
	Title    string  `json:"title,omitempty" bson:"title,omitempty"`
	Size     string  `json:"size" bson:"size"`
	Width    float64 `json:"width" bson:"width"`
	Height   float64 `json:"height" bson:"height"`

	Layers     [][]string   `json:"layers,omitempty" bson:"layers,omitempty"`
	Unresolved []string     `json:"unresolved,omitempty" bson:"unresolved,omitempty"`
	Nodes      []PlacedNode `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges      []Edge       `json:"edges,omitempty" bson:"edges,omitempty"`

	Summary *status.Summary `json:"summary,omitempty" bson:"summary,omitempty"`

	DOT string `json:"dot,omitempty" bson:"dot,omitempty"`
}

// PlacedNode is a node with its drawing box.
type PlacedNode struct {
	Node   `bson:",inline"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// NewLayered describes a layered drawing. Nodes follow workflow order, each
// at its own slot, and edges follow the same rule as the SVG renderer: one
// per dependency entry on another ref whose both ends were placed.
func NewLayered(wf workflow.Workflow, res transform.Result, l layout.Layout, b status.Binding) Layout {
	out := Layout{
		VizType:    VizTypeLayered,
		Workflow:   wf.WorkflowType,
		Title:      wf.Title(),
		Size:       l.Profile.Name,
		Width:      l.Width,
		Height:     l.Height,
		Unresolved: res.Unresolved,
	}
	for _, layer := range res.Layers {
		out.Layers = append(out.Layers, []string(layer))
	}

	rows := res.Rows()
	pos, placed := l.NodePositions(wf.Nodes)
	for i, n := range wf.Nodes {
		if !placed[i] {
			continue
		}
		out.Nodes = append(out.Nodes, PlacedNode{
			Node: Node{
				ID:     n.Ref,
				Label:  n.Label(),
				Agent:  n.Agent,
				Model:  n.Model,
				Status: string(b.Of(n.Ref)),
				Row:    rows[n.Ref],
			},
			X: pos[i].X, Y: pos[i].Y,
			Width: l.Profile.NodeWidth, Height: l.Profile.NodeHeight,
		})
		for _, dep := range n.DependsOn {
			if dep == n.Ref {
				continue
			}
			if _, ok := l.Positions[dep]; ok {
				out.Edges = append(out.Edges, Edge{From: dep, To: n.Ref})
			}
		}
	}

	sum := status.Summarize(wf.Nodes, b)
	out.Summary = &sum
	return out
}

// NewLinear describes a single-row drawing of phases.
func NewLinear(phases []workflow.PhaseStatus, l layout.Layout) Layout {
	out := Layout{
		VizType: VizTypeLinear,
		Size:    l.Profile.Name,
		Width:   l.Width,
		Height:  l.Height,
	}
	for i, ph := range phases {
		if i >= len(l.Placements) {
			break
		}
		pos := l.Placements[i].Position
		out.Nodes = append(out.Nodes, PlacedNode{
			Node: Node{
				ID:     ph.PhaseName,
				Label:  ph.Label(),
				Agent:  ph.AgentName,
				Model:  ph.ModelName,
				Status: string(workflow.ParseStatus(string(ph.Status))),
			},
			X: pos.X, Y: pos.Y,
			Width: l.Profile.NodeWidth, Height: l.Profile.NodeHeight,
		})
	}
	sum := status.SummarizeRecords(phases)
	out.Summary = &sum
	return out
}

// MarshalLayout serializes a Layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes a Layout and checks that the fields its
// VizType needs are present.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	switch l.VizType {
	case VizTypeLayered, VizTypeLinear:
	case VizTypeNodelink:
		if l.DOT == "" {
			return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
		}
	default:
		return Layout{}, fmt.Errorf("unknown viz_type %q", l.VizType)
	}
	return l, nil
}
