package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/gclm/flowgraph/pkg/pipeline"
	"github.com/gclm/flowgraph/pkg/render/svg"
	"github.com/gclm/flowgraph/pkg/source"
	"github.com/gclm/flowgraph/pkg/workflow"
)

func newTestServer(t *testing.T, src source.Source) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, src, logger)
	ts := httptest.NewServer(New(runner, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

var testSource = source.Static{Workflows: []workflow.Workflow{{
	Name:         "feature-dev",
	WorkflowType: "feature",
	Nodes: []workflow.Node{
		{Ref: "plan", Agent: "architect"},
		{Ref: "build", DependsOn: []string{"plan"}},
	},
}}}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(data)
}

func decodeError(t *testing.T, body string) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("error body is not JSON: %q", body)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	resp, body := do(t, ts, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("body = %s", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r2, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	r2.Body.Close()
	if got := r2.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want the incoming one", got)
	}
}

func TestGetWorkflow(t *testing.T) {
	ts := newTestServer(t, testSource)

	resp, body := do(t, ts, http.MethodGet, "/api/v1/graph/workflows/feature?size=compact", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(body, `data-ref="build" data-status="pending"`) {
		t.Errorf("unexpected SVG: %s", body)
	}

	resp, body = do(t, ts, http.MethodGet, "/api/v1/graph/workflows/feature?format=dot", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"plan" -> "build";`) {
		t.Errorf("dot: %d %s", resp.StatusCode, body)
	}

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/graph/workflows/hotfix", 404, "WORKFLOW_NOT_FOUND"},
		{"/api/v1/graph/workflows/feature?size=huge", 400, "INVALID_SIZE"},
		{"/api/v1/graph/workflows/feature?format=gif", 400, "INVALID_FORMAT"},
		{"/api/v1/graph/workflows/a..b", 400, "INVALID_WORKFLOW_TYPE"},
		{"/api/v1/nope", 404, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := do(t, ts, http.MethodGet, tt.path, "")
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if e := decodeError(t, body); e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestGetWorkflowSourceDown(t *testing.T) {
	ts := newTestServer(t, source.Static{Err: stderrors.New("connection refused")})
	resp, body := do(t, ts, http.MethodGet, "/api/v1/graph/workflows/feature", "")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d (%s)", resp.StatusCode, body)
	}
	if e := decodeError(t, body); e.Code != "SOURCE_UNAVAILABLE" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestPostRender(t *testing.T) {
	ts := newTestServer(t, nil)

	body := `{
		"workflow": {"name": "w", "nodes": [{"ref": "a"}, {"ref": "b", "dependsOn": ["a"]}, {"ref": "c", "dependsOn": ["a"]}]},
		"phases": [{"phaseName": "a", "status": "completed"}]
	}`
	resp, out := do(t, ts, http.MethodPost, "/api/v1/graph/render", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, out)
	}
	if !strings.Contains(out, `data-ref="a" data-status="completed"`) || !strings.Contains(out, `data-ref="b" data-status="pending"`) {
		t.Errorf("unexpected SVG: %s", out)
	}
	if resp.Header.Get(HeaderFallback) != "false" {
		t.Errorf("%s = %q", HeaderFallback, resp.Header.Get(HeaderFallback))
	}

	resp, out = do(t, ts, http.MethodPost, "/api/v1/graph/render", `{"workflow": {"name": "w", "nodes": []}}`)
	if resp.StatusCode != http.StatusOK || out != svg.EmptyGraph {
		t.Errorf("empty workflow: %d %q", resp.StatusCode, out)
	}

	resp, _ = do(t, ts, http.MethodPost, "/api/v1/graph/render", `{"workflow": {"nodes": [{"ref": "a", "dependsOn": ["b"]}, {"ref": "b", "dependsOn": ["a"]}]}}`)
	if resp.StatusCode != http.StatusOK || resp.Header.Get(HeaderUnresolved) != "2" {
		t.Errorf("cycle: status %d, unresolved %q", resp.StatusCode, resp.Header.Get(HeaderUnresolved))
	}

	tests := []struct {
		name string
		body string
	}{
		{"missing workflow", `{"phases": []}`},
		{"bad size", `{"workflow": {"nodes": []}, "size": "huge"}`},
		{"bad format", `{"workflow": {"nodes": []}, "format": "gif"}`},
		{"malformed", `{"workflow": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := do(t, ts, http.MethodPost, "/api/v1/graph/render", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d (%s)", resp.StatusCode, out)
			}
			if e := decodeError(t, out); e.Code != "INVALID_INPUT" || e.Message == "" {
				t.Errorf("error = %+v", e)
			}
		})
	}
}

func TestPostTask(t *testing.T) {
	phases := `[{"phaseName": "plan", "status": "completed"}, {"phaseName": "build", "status": "running"}]`

	ts := newTestServer(t, testSource)
	resp, out := do(t, ts, http.MethodPost, "/api/v1/graph/tasks", `{"workflowType": "feature", "phases": `+phases+`}`)
	if resp.StatusCode != http.StatusOK || resp.Header.Get(HeaderFallback) != "false" {
		t.Fatalf("graph path: %d fallback=%q", resp.StatusCode, resp.Header.Get(HeaderFallback))
	}
	if !strings.Contains(out, `class="graph-edges"`) {
		t.Error("graph path should draw edges")
	}

	down := newTestServer(t, source.Static{Err: stderrors.New("connection refused")})
	resp, out = do(t, down, http.MethodPost, "/api/v1/graph/tasks", `{"workflowType": "feature", "phases": `+phases+`}`)
	if resp.StatusCode != http.StatusOK || resp.Header.Get(HeaderFallback) != "true" {
		t.Fatalf("fallback: %d fallback=%q", resp.StatusCode, resp.Header.Get(HeaderFallback))
	}
	if strings.Contains(out, `class="graph-edges"`) || !strings.Contains(out, `data-ref="build" data-status="running"`) {
		t.Errorf("unexpected fallback SVG: %s", out)
	}

	resp, out = do(t, down, http.MethodPost, "/api/v1/graph/tasks", `{"workflowType": "feature", "phases": []}`)
	if resp.StatusCode != http.StatusOK || out != svg.EmptyPhases {
		t.Errorf("no phases: %d %q", resp.StatusCode, out)
	}

	resp, out = do(t, ts, http.MethodPost, "/api/v1/graph/tasks", `{"phases": []}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing type: %d %s", resp.StatusCode, out)
	}
}
