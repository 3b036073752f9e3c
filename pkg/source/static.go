package source

import (
	"context"

	"github.com/gclm/flowgraph/pkg/workflow"
)

// Static serves a fixed set of workflows. Err, when set, is returned from
// every lookup.
type Static struct {
	Workflows []workflow.Workflow
	Err       error
}

func (s Static) Name() string { return "static" }

func (s Static) Workflow(ctx context.Context, workflowType string) (workflow.Workflow, error) {
	if s.Err != nil {
		return workflow.Workflow{}, s.Err
	}
	if err := ctx.Err(); err != nil {
		return workflow.Workflow{}, err
	}
	for _, wf := range s.Workflows {
		if matches(wf, workflowType) {
			return wf, nil
		}
	}
	return workflow.Workflow{}, notFound(workflowType, "static set")
}
