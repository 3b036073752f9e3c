package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gclm/flowgraph/pkg/cache"
	"github.com/gclm/flowgraph/pkg/observability"
	"github.com/gclm/flowgraph/pkg/workflow"
)

const keyTypeWorkflow = "workflow"

// Cached serves definitions from Cache before asking Source. Only
// successful lookups are stored, so an unreachable upstream is retried on
// the next call. Cache errors are logged and otherwise ignored.
type Cached struct {
	Source Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewCached wraps src with c using the default keyer and [cache.WorkflowTTL].
func NewCached(src Source, c cache.Cache) *Cached {
	return &Cached{Source: src, Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: cache.WorkflowTTL}
}

func (c *Cached) Name() string { return c.Source.Name() }

func (c *Cached) Workflow(ctx context.Context, workflowType string) (workflow.Workflow, error) {
	key := c.keyer().WorkflowKey(c.Source.Name(), workflowType)
	hooks := observability.Cache()

	if data, ok, err := c.Cache.Get(ctx, key); err != nil {
		c.logger().Warn("workflow cache read failed", "key", key, "err", err)
	} else if ok {
		var wf workflow.Workflow
		if err := json.Unmarshal(data, &wf); err == nil {
			hooks.OnCacheHit(ctx, keyTypeWorkflow)
			return wf, nil
		}
		c.logger().Warn("discarding corrupt cache entry", "key", key)
	}
	hooks.OnCacheMiss(ctx, keyTypeWorkflow)

	wf, err := c.Source.Workflow(ctx, workflowType)
	if err != nil {
		return workflow.Workflow{}, err
	}

	data, err := json.Marshal(wf)
	if err == nil {
		if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
			c.logger().Warn("workflow cache write failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeWorkflow, len(data))
		}
	}
	return wf, nil
}

func (c *Cached) keyer() cache.Keyer {
	if c.Keyer != nil {
		return c.Keyer
	}
	return cache.NewDefaultKeyer()
}

func (c *Cached) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}
