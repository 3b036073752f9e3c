package svg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

func fanOut() []workflow.Node {
	return []workflow.Node{
		{Ref: "a", Agent: "investigator"},
		{Ref: "b", DisplayName: "Build", Agent: "worker", DependsOn: []string{"a"}},
		{Ref: "c", Agent: "code-reviewer", DependsOn: []string{"a"}},
	}
}

func renderGraph(nodes []workflow.Node, p layout.Profile, recs []workflow.PhaseStatus) []byte {
	l := layout.Place(transform.AssignLayers(nodes), p)
	return Graph(nodes, l, status.Bind(nodes, recs))
}

func TestGraphEmpty(t *testing.T) {
	got := Graph(nil, layout.Layout{}, nil)
	if string(got) != EmptyGraph {
		t.Errorf("Graph(nil) = %q, want %q", got, EmptyGraph)
	}
}

func TestGraphRoot(t *testing.T) {
	out := string(renderGraph(fanOut(), layout.Normal, nil))
	for _, want := range []string{
		`width="100%"`,
		`height="210"`,
		`viewBox="0 0 380 210"`,
		`preserveAspectRatio="xMidYMid meet"`,
		`<marker id="arrowhead"`,
		`<polygon points="0 0, 10 3.5, 0 7" fill="#94a3b8"/>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("output not closed with </svg>")
	}
}

func TestGraphEdges(t *testing.T) {
	out := string(renderGraph(fanOut(), layout.Normal, nil))

	// a at (95,0), b at (0,90), c at (190,90)
	for _, want := range []string{
		`d="M 235 30 C 117.5 30, 117.5 120, 0 120"`,
		`d="M 235 30 C 212.5 30, 212.5 120, 190 120"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing edge %s", want)
		}
	}
	if n := strings.Count(out, "<path "); n != 2 {
		t.Errorf("edge count = %d, want 2", n)
	}

	lastEdge := strings.LastIndex(out, "<path ")
	firstNode := strings.Index(out, `class="graph-node"`)
	if lastEdge > firstNode {
		t.Error("an edge is drawn after a node")
	}
}

func TestGraphSkipsEdgesToUnplacedRefs(t *testing.T) {
	nodes := []workflow.Node{{Ref: "a"}, {Ref: "b", DependsOn: []string{"a", "ghost"}}}
	out := string(renderGraph(nodes, layout.Compact, nil))
	if n := strings.Count(out, "<path "); n != 1 {
		t.Errorf("edge count = %d, want 1", n)
	}
	if n := strings.Count(out, `class="graph-node"`); n != 2 {
		t.Errorf("node count = %d, want 2", n)
	}
}

func TestGraphCycleStillDrawsEveryNode(t *testing.T) {
	nodes := []workflow.Node{{Ref: "a", DependsOn: []string{"b"}}, {Ref: "b", DependsOn: []string{"a"}}}
	out := string(renderGraph(nodes, layout.Normal, nil))
	for _, ref := range []string{`data-ref="a"`, `data-ref="b"`} {
		if !strings.Contains(out, ref) {
			t.Errorf("output missing %s", ref)
		}
	}
}

func TestGraphStatusColors(t *testing.T) {
	recs := []workflow.PhaseStatus{
		{PhaseName: "a", Status: workflow.Completed},
		{PhaseName: "Build", Status: workflow.Running},
	}
	out := string(renderGraph(fanOut(), layout.Normal, recs))
	for _, want := range []string{
		`data-ref="a" data-status="completed"`,
		`data-ref="b" data-status="running"`,
		`data-ref="c" data-status="pending"`,
		`fill="#ffffff" stroke="#10b981"`,
		`fill="#dbeafe" stroke="#3b82f6"`,
		`fill="#ffffff" stroke="#94a3b8"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestGraphLabels(t *testing.T) {
	nodes := []workflow.Node{{
		Ref:         "x",
		DisplayName: "Security <review> & audit",
		Agent:       "security-guidance",
	}}
	out := string(renderGraph(nodes, layout.Normal, nil))
	if !strings.Contains(out, `>Security &lt;re</text>`) {
		t.Errorf("primary label not truncated then escaped:\n%s", out)
	}
	if !strings.Contains(out, ">🛡️ security-g</text>") {
		t.Errorf("secondary label wrong:\n%s", out)
	}
	if !strings.Contains(out, `y="20"`) || !strings.Contains(out, `y="50"`) {
		t.Error("label baselines not at fontSize+8 and nodeHeight-10")
	}
}

func TestGraphIdempotent(t *testing.T) {
	nodes := fanOut()
	recs := []workflow.PhaseStatus{{PhaseName: "b", Status: workflow.Failed}}
	first := renderGraph(nodes, layout.Compact, recs)
	for i := 0; i < 5; i++ {
		if got := renderGraph(nodes, layout.Compact, recs); !bytes.Equal(got, first) {
			t.Fatalf("render %d differs", i)
		}
	}
}

func TestGraphDuplicateRefs(t *testing.T) {
	nodes := []workflow.Node{
		{Ref: "a", DisplayName: "First"},
		{Ref: "a", DisplayName: "Second"},
	}
	res := transform.AssignLayers(nodes)

	for name, l := range map[string]layout.Layout{
		"placed":   layout.Place(res, layout.Normal),
		"computed": layout.Compute(res.Layers, layout.Normal),
	} {
		t.Run(name, func(t *testing.T) {
			out := string(Graph(nodes, l, nil))
			for _, want := range []string{
				"translate(0, 0)\">\n      <title>First (",
				"translate(190, 0)\">\n      <title>Second (",
			} {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestGraphDuplicateRefsAcrossLayers(t *testing.T) {
	nodes := []workflow.Node{
		{Ref: "a", DisplayName: "Blocked", DependsOn: []string{"x"}},
		{Ref: "a", DisplayName: "Ready"},
		{Ref: "b", DependsOn: []string{"a"}},
	}
	out := renderGraph(nodes, layout.Normal, nil)

	// Ready is layer 0, b layer 1, Blocked the terminal layer.
	for _, want := range []string{
		"translate(0, 0)\">\n      <title>Ready (",
		"translate(0, 180)\">\n      <title>Blocked (",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGraphSkipsSelfDependency(t *testing.T) {
	nodes := []workflow.Node{
		{Ref: "a", DependsOn: []string{"a"}},
		{Ref: "b", DependsOn: []string{"a"}},
	}
	out := string(renderGraph(nodes, layout.Compact, nil))
	if n := strings.Count(out, "<path "); n != 1 {
		t.Errorf("got %d edges, want only b's edge from a:\n%s", n, out)
	}
	if strings.Contains(out, `d="M 80 20 C 40 20, 40 20, 0 20"`) {
		t.Error("self dependency drawn across its own node")
	}
}

func TestGraphOptions(t *testing.T) {
	nodes := fanOut()
	l := layout.Compute(transform.AssignLayers(nodes).Layers, layout.Compact)
	out := string(Graph(nodes, l, nil, WithClass("mini"), WithTitle("Feature & fix")))
	if !strings.Contains(out, `class="mini"`) {
		t.Error("WithClass not applied")
	}
	if !strings.Contains(out, "<title>Feature &amp; fix</title>") {
		t.Error("WithTitle not applied")
	}
}

func TestFallbackEmpty(t *testing.T) {
	if got := string(Fallback(nil, layout.Normal)); got != EmptyPhases {
		t.Errorf("Fallback(nil) = %q, want %q", got, EmptyPhases)
	}
}

func TestFallback(t *testing.T) {
	phases := []workflow.PhaseStatus{
		{PhaseName: "plan", AgentName: "architect", Status: workflow.Completed},
		{PhaseName: "code", DisplayName: "Coding", AgentName: "worker", Status: "running"},
	}
	out := string(Fallback(phases, layout.Compact))
	for _, want := range []string{
		`viewBox="0 0 250 80"`,
		`transform="translate(30, 20)"`,
		`transform="translate(140, 20)"`,
		`>Coding</text>`,
		`stroke="#10b981"`,
		`fill="#dbeafe" stroke="#3b82f6"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if strings.Contains(out, "<path ") {
		t.Error("fallback drew an edge")
	}
}

func TestFallbackDuplicatePhaseNames(t *testing.T) {
	phases := []workflow.PhaseStatus{{PhaseName: "p"}, {PhaseName: "p"}}
	out := string(Fallback(phases, layout.Compact))
	if !strings.Contains(out, "translate(30, 20)") || !strings.Contains(out, "translate(140, 20)") {
		t.Error("duplicate phase names should each get their own slot")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 12, "short"},
		{"exactlytwelv", 12, "exactlytwelv"},
		{"implementation", 12, "implementati"},
		{"设计评审阶段的任务说明书", 4, "设计评审"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestPalette(t *testing.T) {
	tests := []struct {
		s      workflow.Status
		stroke string
		fill   string
	}{
		{workflow.Pending, "#94a3b8", "#ffffff"},
		{workflow.Created, "#94a3b8", "#ffffff"},
		{workflow.Running, "#3b82f6", "#dbeafe"},
		{workflow.Completed, "#10b981", "#ffffff"},
		{workflow.Failed, "#ef4444", "#ffffff"},
		{workflow.Cancelled, "#6b7280", "#ffffff"},
		{"mystery", "#94a3b8", "#ffffff"},
	}
	for _, tt := range tests {
		if got := StrokeColor(tt.s); got != tt.stroke {
			t.Errorf("StrokeColor(%s) = %s, want %s", tt.s, got, tt.stroke)
		}
		if got := FillColor(tt.s); got != tt.fill {
			t.Errorf("FillColor(%s) = %s, want %s", tt.s, got, tt.fill)
		}
	}
}
