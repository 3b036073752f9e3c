package graph

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/gclm/flowgraph/pkg/dag"
	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

func sample() workflow.Workflow {
	return workflow.Workflow{
		Name:         "feature",
		DisplayName:  "Feature",
		WorkflowType: "feature",
		Nodes: []workflow.Node{
			{Ref: "plan", DisplayName: "Plan", Agent: "architect"},
			{Ref: "code", Agent: "worker", DependsOn: []string{"plan", "plan"}},
			{Ref: "docs", Agent: "llmdoc", DependsOn: []string{"plan", "ghost"}},
			{Ref: "code", Agent: "duplicate"},
		},
	}
}

func TestFromWorkflow(t *testing.T) {
	wf := sample()
	res := transform.AssignLayers(wf.Nodes)
	b := status.Bind(wf.Nodes, []workflow.PhaseStatus{{PhaseName: "plan", Status: workflow.Completed}})
	g := FromWorkflow(wf.Nodes, res, b)

	if got := dag.NodeIDs(g.Nodes()); !reflect.DeepEqual(got, []string{"plan", "code", "docs"}) {
		t.Errorf("nodes = %v", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
	n, _ := g.Node("plan")
	if n.Meta.String(MetaStatus) != "completed" || n.Meta.String(MetaLabel) != "Plan" {
		t.Errorf("plan meta = %v", n.Meta)
	}
	code, _ := g.Node("code")
	if code.Row != res.Rows()["code"] {
		t.Errorf("code row = %d, want %d", code.Row, res.Rows()["code"])
	}
}

func TestFromWorkflowNilBinding(t *testing.T) {
	nodes := []workflow.Node{{Ref: "a"}}
	g := FromWorkflow(nodes, transform.AssignLayers(nodes), nil)
	n, _ := g.Node("a")
	if got := n.Meta.String(MetaStatus); got != "pending" {
		t.Errorf("status = %q, want pending", got)
	}
}

func TestWriteGraph(t *testing.T) {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "a", Meta: dag.Metadata{MetaLabel: "Alpha", "extra": "x"}})
	_ = g.AddNode(dag.Node{ID: "b", Row: 1, Meta: dag.Metadata{MetaAgent: "worker"}})
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	var gj Graph
	if err := json.Unmarshal(buf.Bytes(), &gj); err != nil {
		t.Fatalf("output is not a graph: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(gj, FromDAG(g)) {
		t.Errorf("decoded %+v, want %+v", gj, FromDAG(g))
	}
	if gj.Nodes[0].Label != "Alpha" || gj.Nodes[0].Meta["extra"] != "x" {
		t.Errorf("node a = %+v", gj.Nodes[0])
	}
	if _, ok := gj.Nodes[0].Meta[MetaLabel]; ok {
		t.Error("label duplicated into meta")
	}
	if gj.Nodes[1].Agent != "worker" || gj.Nodes[1].Row != 1 {
		t.Errorf("node b = %+v", gj.Nodes[1])
	}
}

func TestNewLayered(t *testing.T) {
	wf := sample()
	nodes := workflow.Normalize(wf.Nodes)
	res := transform.AssignLayers(nodes)
	l := layout.Place(res, layout.Compact)
	out := NewLayered(wf, res, l, status.Bind(nodes, nil))

	if out.VizType != VizTypeLayered || out.Size != "compact" || out.Title != "Feature" {
		t.Errorf("header = %s/%s/%s", out.VizType, out.Size, out.Title)
	}
	if len(out.Nodes) != 4 {
		t.Errorf("len(Nodes) = %d, want 4", len(out.Nodes))
	}
	// code lists plan twice; docs has a dangling dep
	if len(out.Edges) != 3 {
		t.Errorf("len(Edges) = %d, want 3", len(out.Edges))
	}
	// The second "code" has no dependencies, so it sits in layer 0 while
	// the first one waits for plan.
	if worker, dup := out.Nodes[1], out.Nodes[3]; worker.Agent != "worker" || worker.Y != 60 || dup.Agent != "duplicate" || dup.Y != 0 {
		t.Errorf("duplicate refs: %+v and %+v", worker, dup)
	}
	if !reflect.DeepEqual(out.Unresolved, []string{"docs"}) {
		t.Errorf("Unresolved = %v", out.Unresolved)
	}
	if out.Summary == nil || out.Summary.Total != 4 {
		t.Errorf("Summary = %+v", out.Summary)
	}

	data, err := MarshalLayout(out)
	if err != nil {
		t.Fatalf("MarshalLayout: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	first := raw["nodes"].([]any)[0].(map[string]any)
	if first["id"] != "plan" || first["width"] != 80.0 {
		t.Errorf("first node = %v", first)
	}
}

func TestNewLinear(t *testing.T) {
	phases := []workflow.PhaseStatus{
		{PhaseName: "a", Status: workflow.Completed},
		{PhaseName: "b", Status: "nope"},
	}
	l := layout.Linear([]string{"a", "b"}, layout.Normal)
	out := NewLinear(phases, l)
	if out.VizType != VizTypeLinear || len(out.Nodes) != 2 {
		t.Fatalf("NewLinear() = %+v", out)
	}
	if out.Nodes[1].Status != "pending" || out.Nodes[1].X != 240 {
		t.Errorf("node b = %+v", out.Nodes[1])
	}
}

func TestUnmarshalLayout(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"layered", `{"viz_type":"layered","size":"normal"}`, false},
		{"nodelink without dot", `{"viz_type":"nodelink"}`, true},
		{"nodelink", `{"viz_type":"nodelink","dot":"digraph G {}"}`, false},
		{"unknown", `{"viz_type":"radial"}`, true},
		{"garbage", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
