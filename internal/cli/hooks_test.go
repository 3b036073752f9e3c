package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.DebugLevel)}
	ctx := context.Background()

	h.OnLayoutComplete(ctx, "feature", 4, 3, 0, time.Millisecond)
	h.OnRenderComplete(ctx, "svg", 2048, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "png", 0, 0, errors.New("graphviz unavailable"))
	h.OnFallback(ctx, "bugfix", 2, errors.New("not found"))
	h.OnCacheHit(ctx, "render")
	h.OnCacheMiss(ctx, "workflow")
	h.OnCacheSet(ctx, "render", 2048)
	h.OnFetchStart(ctx, "dir:workflows", "feature")
	h.OnFetchComplete(ctx, "dir:workflows", "feature", time.Millisecond, nil)
	h.OnFetchComplete(ctx, "http:api", "bugfix", time.Second, errors.New("timeout"))

	got := buf.String()
	for _, want := range []string{
		"layout", "workflow=feature", "layers=3",
		"render failed", "graphviz unavailable",
		"fallback", "phases=2",
		"cache hit", "cache miss", "cache set",
		"fetching workflow", "fetched workflow", "fetch failed",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log output missing %q:\n%s", want, got)
		}
	}
}

func TestLogHooksSilentAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := logHooks{logger: newLogger(&buf, log.InfoLevel)}
	h.OnCacheHit(context.Background(), "render")
	if buf.Len() != 0 {
		t.Errorf("hooks should only log at debug level, got %q", buf.String())
	}
}
