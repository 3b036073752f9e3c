package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/gclm/flowgraph/pkg/dag"
	"github.com/gclm/flowgraph/pkg/graph"
	"github.com/gclm/flowgraph/pkg/render/svg"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Direction values for Options.Direction.
const (
	LeftToRight = "LR"
	TopToBottom = "TB"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Direction is the Graphviz rankdir. Defaults to LeftToRight so the
	// diagram reads like the layered view.
	Direction string

	// Detailed adds the agent, model and layer to node labels.
	Detailed bool
}

// ToDOT converts a workflow graph built by [graph.FromWorkflow] to Graphviz
// DOT. Node outlines follow the same status colors as the layered SVG.
func ToDOT(g *dag.DAG, opts Options) string {
	dir := opts.Direction
	if dir != TopToBottom {
		dir = LeftToRight
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.7];\n", svg.StrokeColor(workflow.Pending))
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		st := workflow.Status(n.Meta.String(graph.MetaStatus))
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(*n, opts.Detailed)),
			fmt.Sprintf("color=%q", svg.StrokeColor(st)),
			fmt.Sprintf("fillcolor=%q", svg.FillColor(st)),
		}
		if workflow.ParseStatus(string(st)) == workflow.Cancelled {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	label := n.Meta.String(graph.MetaLabel)
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("layer: %d", n.Row)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == graph.MetaLabel {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

// RenderSVG lays out and renders DOT source to SVG in-process.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out and renders DOT source to PNG in-process.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox swaps Graphviz's point-sized root element for one that
// scales with its container, like the layered SVG does.
func normalizeViewBox(out []byte) []byte {
	match := viewBoxRe.FindSubmatch(out)
	if match == nil {
		return out
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return out
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" class="workflow-graph" width="100%%" viewBox="0 0 %.2f %.2f" preserveAspectRatio="xMidYMid meet">`, w, h)
	return svgTagRe.ReplaceAll(out, []byte(root))
}
