package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gclm/flowgraph/pkg/cache"
	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/observability"
	"github.com/gclm/flowgraph/pkg/source"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// Artifact kinds used in cache keys.
const (
	KindGraph    = "graph"
	KindFallback = "fallback"
)

const keyTypeArtifact = "artifact"

// Runner encapsulates pipeline execution with caching and workflow lookup.
//
// The Runner is stateless apart from its collaborators: it stores no
// results between calls, and multiple goroutines may share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Source source.Source
	Logger *log.Logger

	// ArtifactTTL is how long rendered artifacts are kept. Zero keeps them
	// until the cache evicts them.
	ArtifactTTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default keyer and a nil source makes every RenderTask fall
// back.
func NewRunner(c cache.Cache, keyer cache.Keyer, src source.Source, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Source:      src,
		Logger:      logger,
		ArtifactTTL: cache.ArtifactTTL,
	}
}

// RenderWorkflow renders the graph path for a workflow definition with the
// given phase statuses. An empty node list renders the "no nodes"
// placeholder in SVG output.
func (r *Runner) RenderWorkflow(ctx context.Context, wf workflow.Workflow, phases []workflow.PhaseStatus, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	plan := Prepare(wf, phases, opts.Profile())
	res := &Result{
		Format:      opts.Format,
		ContentType: ContentType(opts.Format),
		Unresolved:  plan.Layers.Unresolved,
		Stats: Stats{
			Nodes:      len(plan.Nodes),
			Layers:     plan.Layers.Depth(),
			LayoutTime: time.Since(start),
		},
	}
	observability.Pipeline().OnLayoutComplete(ctx, wf.WorkflowType, res.Stats.Nodes, res.Stats.Layers, len(res.Unresolved), res.Stats.LayoutTime)

	opts.Logger.Debug("computed layout",
		"workflow", wf.Name,
		"nodes", res.Stats.Nodes,
		"layers", res.Stats.Layers,
		"duration", res.Stats.LayoutTime)
	if len(res.Unresolved) > 0 {
		opts.Logger.Debug("unresolved dependencies", "workflow", wf.Name, "refs", res.Unresolved)
	}

	renderStart := time.Now()
	data, hit, err := r.cached(ctx, KindGraph, opts, func() ([]byte, error) {
		return Render(ctx, plan, opts)
	}, wf, phases)
	if err != nil {
		return nil, err
	}
	res.Data, res.CacheHit = data, hit
	res.Stats.RenderTime = time.Since(renderStart)
	return res, nil
}

// RenderTask renders the diagram for a running task that only knows its
// workflow type. Zero phases render the "no phases" placeholder without a
// lookup. If the workflow cannot be fetched the phases are drawn as a
// single row and Result.Fallback is set; invalid workflow types and
// cancelled contexts are returned as errors instead.
func (r *Runner) RenderTask(ctx context.Context, workflowType string, phases []workflow.PhaseStatus, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	if len(phases) == 0 {
		return r.renderFallback(ctx, phases, opts)
	}

	wf, err := source.Fetch(ctx, r.Source, workflowType)
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidWorkflowType) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		opts.Logger.Warn("workflow lookup failed, rendering phase list",
			"workflow_type", workflowType,
			"phases", len(phases),
			"err", err)
		observability.Pipeline().OnFallback(ctx, workflowType, len(phases), err)

		res, ferr := r.renderFallback(ctx, phases, opts)
		if ferr != nil {
			return nil, ferr
		}
		res.Fallback = true
		res.FallbackReason = errors.UserMessage(err)
		return res, nil
	}
	return r.RenderWorkflow(ctx, wf, phases, opts)
}

func (r *Runner) renderFallback(ctx context.Context, phases []workflow.PhaseStatus, opts Options) (*Result, error) {
	start := time.Now()
	data, hit, err := r.cached(ctx, KindFallback, opts, func() ([]byte, error) {
		return RenderFallback(ctx, phases, opts)
	}, phases)
	if err != nil {
		return nil, err
	}
	return &Result{
		Format:      opts.Format,
		ContentType: ContentType(opts.Format),
		Data:        data,
		CacheHit:    hit,
		Stats: Stats{
			Nodes:      len(phases),
			Layers:     min(len(phases), 1),
			RenderTime: time.Since(start),
		},
	}, nil
}

// cached returns the artifact for (kind, opts, inputs) from the cache or
// renders and stores it. Cache failures are logged and never fail the
// render.
func (r *Runner) cached(ctx context.Context, kind string, opts Options, render func() ([]byte, error), inputs ...any) ([]byte, bool, error) {
	hooks := observability.Cache()
	pipe := observability.Pipeline()

	hash, err := cache.ContentHash(append(inputs, opts)...)
	if err != nil {
		opts.Logger.Debug("skipping artifact cache", "err", err)
		hash = ""
	}
	key := ""
	if hash != "" {
		key = r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(kind))
	}

	if key != "" && !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		switch {
		case err != nil:
			opts.Logger.Warn("artifact cache read failed", "err", err)
		case hit:
			hooks.OnCacheHit(ctx, keyTypeArtifact)
			return data, true, nil
		default:
			hooks.OnCacheMiss(ctx, keyTypeArtifact)
		}
	}

	start := time.Now()
	data, err := render()
	pipe.OnRenderComplete(ctx, opts.Format, len(data), time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", opts.Format)
		}
		return nil, false, err
	}

	if key != "" {
		if err := r.Cache.Set(ctx, key, data, r.ArtifactTTL); err != nil {
			opts.Logger.Warn("artifact cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			return fmt.Errorf("close cache: %w", err)
		}
	}
	return nil
}

// applyLogger sets the runner's logger on options if none was given.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
