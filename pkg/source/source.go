// Package source looks up workflow definitions by workflow type.
//
// The dashboard only knows a task's workflow type; the node list lives
// elsewhere. A [Source] resolves one to the other:
//
//   - [DirSource] reads definition files from a local directory.
//   - [HTTPSource] calls the task engine's REST API.
//   - [MongoSource] reads definitions stored in MongoDB.
//   - [Static] serves an in-memory set, mainly for tests.
//
// [Cached] wraps any of them with a [cache.Cache]. [Fetch] is the single
// entry point callers use: it validates the type and reports timings to the
// registered observability hooks.
//
// A failed lookup is not fatal upstream: the render pipeline falls back to
// a linear phase diagram.
package source

import (
	"context"
	"time"

	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/observability"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Source resolves a workflow type to its definition.
type Source interface {
	// Workflow returns the definition registered for workflowType. A
	// missing definition is an error with code ErrCodeWorkflowNotFound.
	Workflow(ctx context.Context, workflowType string) (workflow.Workflow, error)

	// Name identifies the source in logs and cache keys.
	Name() string
}

// Fetch validates workflowType and looks it up in src.
func Fetch(ctx context.Context, src Source, workflowType string) (workflow.Workflow, error) {
	if src == nil {
		return workflow.Workflow{}, errors.New(errors.ErrCodeSourceUnavailable, "no workflow source configured")
	}
	if err := errors.ValidateWorkflowType(workflowType); err != nil {
		return workflow.Workflow{}, err
	}

	hooks := observability.Source()
	hooks.OnFetchStart(ctx, src.Name(), workflowType)
	start := time.Now()
	wf, err := src.Workflow(ctx, workflowType)
	hooks.OnFetchComplete(ctx, src.Name(), workflowType, time.Since(start), err)
	return wf, err
}

func notFound(workflowType, where string) error {
	return errors.New(errors.ErrCodeWorkflowNotFound, "no workflow of type %q in %s", workflowType, where)
}

// matches reports whether wf answers to workflowType. Definitions without an
// explicit type are matched by name.
func matches(wf workflow.Workflow, workflowType string) bool {
	if wf.WorkflowType != "" {
		return wf.WorkflowType == workflowType
	}
	return wf.Name == workflowType
}
