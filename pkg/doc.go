// Package pkg holds the flowgraph libraries: everything needed to turn a
// workflow definition and the phase statuses of a running task into a
// layered drawing.
//
// # Overview
//
// The packages fall into three groups:
//
//  1. Core: [workflow] (definitions, statuses), [dag/transform] (layering),
//     [layout] (coordinates), [status] (status overlay) and [render/svg]
//     (drawing, including the single-row fallback). These are pure and do
//     no I/O.
//  2. Adapters: [io] (YAML, JSON and TOML files), [source] (workflow lookup
//     by type from a directory, an HTTP API or MongoDB), [cache] (file,
//     Redis) and [render/nodelink] (Graphviz).
//  3. Orchestration: [pipeline] runs the stages, with [errors] and
//     [observability] shared by the CLI and the server.
//
// # Data flow
//
//	workflow.Workflow + []workflow.PhaseStatus
//	         ↓
//	    workflow.Normalize
//	         ↓
//	    transform.AssignLayers   (cycles end up in a terminal layer)
//	         ↓
//	    layout.Compute           (compact or normal profile)
//	         ↓
//	    status.Bind
//	         ↓
//	    svg.Graph / nodelink / graph.NewLayered
//
// When a task's workflow cannot be looked up, the phases go to
// svg.Fallback instead.
//
// # Quick start
//
//	wf, _ := io.ImportWorkflow("feature.yaml")
//	phases, _ := io.ImportPhases("task-42.json")
//
//	plan := pipeline.Prepare(wf, phases, layout.Normal)
//	data, _ := pipeline.Render(ctx, plan, pipeline.Options{Format: pipeline.FormatSVG})
//
// Or through a [pipeline.Runner], which adds caching and source lookups.
package pkg
