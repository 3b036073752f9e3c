package svg

import (
	"bytes"
	"fmt"

	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

const (
	// EmptyGraph is returned instead of a drawing when there are no nodes.
	EmptyGraph = `<p class="empty">no nodes</p>`
	// EmptyPhases is returned instead of a drawing when there are no phases.
	EmptyPhases = `<p class="empty">no phases</p>`
)

const defaultClass = "workflow-graph"

type Option func(*renderer)

// WithClass sets the class attribute of the root element.
func WithClass(class string) Option { return func(r *renderer) { r.class = class } }

// WithTitle adds a <title> to the drawing.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

type renderer struct {
	class string
	title string
}

func newRenderer(opts ...Option) renderer {
	r := renderer{class: defaultClass}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// glyph is everything needed to draw one node.
type glyph struct {
	ref    string
	label  string
	agent  string
	status workflow.Status
	pos    layout.Position
}

// Graph draws a laid-out workflow. Edges come from each node's DependsOn and
// are drawn only when both ends were placed; they run from the right edge of
// the dependency to the left edge of the dependent. A node listing itself
// gets no edge. All edges are emitted before any node. Node status comes
// from b, defaulting to pending.
//
// Each node is drawn in its own slot, also when refs repeat. An edge to a
// repeated ref starts at its last slot.
//
// Graph returns EmptyGraph when nodes is empty.
func Graph(nodes []workflow.Node, l layout.Layout, b status.Binding, opts ...Option) []byte {
	if len(nodes) == 0 {
		return []byte(EmptyGraph)
	}
	r := newRenderer(opts...)
	p := l.Profile
	pos, placed := l.NodePositions(nodes)

	var buf bytes.Buffer
	r.open(&buf, l.Width, l.Height)

	buf.WriteString("  <g class=\"graph-edges\">\n")
	for i, n := range nodes {
		if !placed[i] {
			continue
		}
		for _, dep := range n.DependsOn {
			if dep == n.Ref {
				continue
			}
			if from, ok := l.Positions[dep]; ok {
				writeEdge(&buf, from, pos[i], p)
			}
		}
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("  <g class=\"graph-nodes\">\n")
	for i, n := range nodes {
		if !placed[i] {
			continue
		}
		writeNode(&buf, glyph{
			ref:    n.Ref,
			label:  n.Label(),
			agent:  n.Agent,
			status: b.Of(n.Ref),
			pos:    pos[i],
		}, p)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// Fallback draws phases in a single row without edges, each with its own
// status. It is used when the workflow structure is unavailable.
//
// Fallback returns EmptyPhases when phases is empty.
func Fallback(phases []workflow.PhaseStatus, p layout.Profile, opts ...Option) []byte {
	if len(phases) == 0 {
		return []byte(EmptyPhases)
	}
	r := newRenderer(opts...)

	refs := make([]string, len(phases))
	for i, ph := range phases {
		refs[i] = ph.PhaseName
	}
	l := layout.Linear(refs, p)

	var buf bytes.Buffer
	r.open(&buf, l.Width, l.Height)
	buf.WriteString("  <g class=\"graph-nodes\">\n")
	for i, ph := range phases {
		writeNode(&buf, glyph{
			ref:    ph.PhaseName,
			label:  ph.Label(),
			agent:  ph.AgentName,
			status: ph.Status,
			pos:    l.Placements[i].Position,
		}, p)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r renderer) open(buf *bytes.Buffer, w, h float64) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" width="100%%" height="%s" viewBox="0 0 %s %s" preserveAspectRatio="xMidYMid meet">`+"\n",
		EscapeXML(r.class), num(h), num(w), num(h))
	if r.title != "" {
		fmt.Fprintf(buf, "  <title>%s</title>\n", EscapeXML(r.title))
	}
	buf.WriteString("  <defs>\n")
	buf.WriteString(`    <marker id="arrowhead" markerWidth="10" markerHeight="7" refX="9" refY="3.5" orient="auto">` + "\n")
	fmt.Fprintf(buf, `      <polygon points="0 0, 10 3.5, 0 7" fill="%s"/>`+"\n", colorEdge)
	buf.WriteString("    </marker>\n")
	buf.WriteString("  </defs>\n")
}

func writeEdge(buf *bytes.Buffer, from, to layout.Position, p layout.Profile) {
	fx := from.X + p.NodeWidth
	fy := from.Y + p.NodeHeight/2
	tx := to.X
	ty := to.Y + p.NodeHeight/2
	mx := (fx + tx) / 2
	fmt.Fprintf(buf, `    <path d="M %s %s C %s %s, %s %s, %s %s" fill="none" stroke="%s" stroke-width="1.5" marker-end="url(#arrowhead)"/>`+"\n",
		num(fx), num(fy), num(mx), num(fy), num(mx), num(ty), num(tx), num(ty), colorEdge)
}

func writeNode(buf *bytes.Buffer, g glyph, p layout.Profile) {
	s := workflow.ParseStatus(string(g.status))
	cx := p.NodeWidth / 2

	fmt.Fprintf(buf, `    <g class="graph-node" data-ref="%s" data-status="%s" transform="translate(%s, %s)">`+"\n",
		EscapeXML(g.ref), s, num(g.pos.X), num(g.pos.Y))
	fmt.Fprintf(buf, "      <title>%s (%s)</title>\n", EscapeXML(g.label), s.Label())
	fmt.Fprintf(buf, `      <rect x="0" y="0" width="%s" height="%s" rx="6" ry="6" fill="%s" stroke="%s" stroke-width="2"/>`+"\n",
		num(p.NodeWidth), num(p.NodeHeight), FillColor(s), StrokeColor(s))
	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" font-size="%s" font-weight="500" fill="%s">%s</text>`+"\n",
		num(cx), num(p.FontSize+8), num(p.FontSize), colorLabel, EscapeXML(Truncate(g.label, labelLimit)))
	fmt.Fprintf(buf, `      <text x="%s" y="%s" text-anchor="middle" font-size="%s" fill="%s">%s %s</text>`+"\n",
		num(cx), num(p.NodeHeight-10), num(p.FontSize-2), colorSecondary,
		workflow.AgentIcon(g.agent), EscapeXML(Truncate(g.agent, agentLimit)))
	buf.WriteString("    </g>\n")
}
