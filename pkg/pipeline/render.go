package pipeline

import (
	"context"

	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/graph"
	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/render/nodelink"
	"github.com/gclm/flowgraph/pkg/render/svg"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Render draws a prepared plan in the format named by opts. opts must have
// been validated.
func Render(ctx context.Context, plan Plan, opts Options) ([]byte, error) {
	switch opts.Format {
	case FormatSVG:
		var svgOpts []svg.Option
		if title := plan.Workflow.Title(); title != "" {
			svgOpts = append(svgOpts, svg.WithTitle(title))
		}
		return svg.Graph(plan.Nodes, plan.Layout, plan.Binding, svgOpts...), nil
	case FormatJSON:
		return graph.MarshalLayout(graph.NewLayered(plan.Workflow, plan.Layers, plan.Layout, plan.Binding))
	case FormatDOT, FormatPNG:
		g := graph.FromWorkflow(plan.Nodes, plan.Layers, plan.Binding)
		return renderDOT(ctx, nodelink.ToDOT(g, dotOptions(opts)), opts.Format)
	}
	return nil, ValidateFormat(opts.Format)
}

// RenderFallback draws phases in a single row with no edges, each node
// styled by its own status.
func RenderFallback(ctx context.Context, phases []workflow.PhaseStatus, opts Options) ([]byte, error) {
	p := opts.Profile()
	switch opts.Format {
	case FormatSVG:
		return svg.Fallback(phases, p), nil
	case FormatJSON:
		refs := make([]string, len(phases))
		for i, ph := range phases {
			refs[i] = ph.PhaseName
		}
		return graph.MarshalLayout(graph.NewLinear(phases, layout.Linear(refs, p)))
	case FormatDOT, FormatPNG:
		nodes := phaseNodes(phases)
		g := graph.FromWorkflow(nodes, transform.Result{}, status.Bind(nodes, phases))
		dopts := dotOptions(opts)
		dopts.Direction = nodelink.LeftToRight
		return renderDOT(ctx, nodelink.ToDOT(g, dopts), opts.Format)
	}
	return nil, ValidateFormat(opts.Format)
}

func dotOptions(opts Options) nodelink.Options {
	return nodelink.Options{Direction: opts.Direction, Detailed: opts.Detailed}
}

func renderDOT(ctx context.Context, dot, format string) ([]byte, error) {
	if format == FormatDOT {
		return []byte(dot), nil
	}
	data, err := nodelink.RenderPNG(ctx, dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed, "render %s: empty output", format)
	}
	return data, nil
}
