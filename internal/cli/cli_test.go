package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/graph"
	"github.com/gclm/flowgraph/pkg/workflow"
)

const featureYAML = `name: feature
display_name: Feature Development
workflow_type: feature
nodes:
  - ref: discovery
    display_name: Discovery
    agent: investigator
  - ref: design
    display_name: Design
    agent: architect
    depends_on: [discovery]
  - ref: build
    display_name: Build
    agent: worker
    depends_on: [design]
  - ref: review
    display_name: Review
    agent: code-reviewer
    depends_on: [design]
`

const phasesJSON = `[
  {"phaseName": "discovery", "status": "completed"},
  {"phaseName": "design", "status": "running"}
]`

const cyclicYAML = `name: broken
nodes:
  - ref: a
    depends_on: [b]
  - ref: b
    depends_on: [a]
  - ref: c
    depends_on: [missing]
`

// writeFile writes content to name under dir and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with args in an isolated XDG
// environment and returns everything written to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(&buf)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	have := make(map[string]bool)
	for _, cmd := range root.Commands() {
		have[cmd.Name()] = true
	}
	for _, name := range []string{"cache", "completion", "inspect", "layers", "render", "serve", "task", "watch"} {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestVersion(t *testing.T) {
	stdout, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(stdout, "flowgraph ") {
		t.Errorf("version output = %q, want flowgraph prefix", stdout)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "feature.yaml", featureYAML)
	phases := writeFile(t, dir, "task.json", phasesJSON)
	output := filepath.Join(dir, "out", "task.svg")

	stdout, err := runCLI(t, "render", input, "--phases", phases, "-o", output, "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	svg := string(data)
	for _, want := range []string{
		`class="workflow-graph"`,
		`data-ref="discovery" data-status="completed"`,
		`data-ref="design" data-status="running"`,
		`data-ref="review" data-status="pending"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s", want)
		}
	}
	if !strings.Contains(stdout, "Rendered Feature Development") {
		t.Errorf("stdout = %q, want success line", stdout)
	}
	if !strings.Contains(stdout, "4 nodes") || !strings.Contains(stdout, "3 layers") {
		t.Errorf("stdout = %q, want stats", stdout)
	}
}

func TestRenderCommandStdout(t *testing.T) {
	input := writeFile(t, t.TempDir(), "feature.yaml", featureYAML)

	stdout, err := runCLI(t, "render", input, "-f", "dot", "-o", "-", "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(stdout, "digraph G {") {
		t.Errorf("stdout should be DOT only, got %q", stdout)
	}
	if !strings.Contains(stdout, `"discovery" -> "design";`) {
		t.Errorf("DOT missing edge: %s", stdout)
	}
}

func TestRenderCommandDerivesOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "feature.yaml", featureYAML)

	if _, err := runCLI(t, "render", input, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "feature.svg")); err != nil {
		t.Errorf("expected feature.svg next to the input: %v", err)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	input := writeFile(t, t.TempDir(), "feature.yaml", featureYAML)

	_, err := runCLI(t, "render", input, "--size", "huge", "--no-cache")
	if !errors.Is(err, errors.ErrCodeInvalidSize) {
		t.Errorf("bad size: got %v, want INVALID_SIZE", err)
	}

	_, err = runCLI(t, "render", input, "--format", "pdf", "--no-cache")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: got %v, want INVALID_FORMAT", err)
	}

	if _, err := runCLI(t, "render", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing input should fail")
	}
}

func TestRenderCommandUnresolved(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "broken.yaml", cyclicYAML)

	stdout, err := runCLI(t, "render", input, "-o", filepath.Join(dir, "broken.svg"), "--no-cache")
	if err != nil {
		t.Fatalf("cyclic workflows must still render: %v", err)
	}
	if !strings.Contains(stdout, "3 phases could not be layered: a, b, c") {
		t.Errorf("stdout = %q, want unresolved warning", stdout)
	}
}

func TestTaskCommandDirSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "workflows/feature.yaml", featureYAML)
	phases := writeFile(t, dir, "task.json", phasesJSON)
	config := writeFile(t, dir, "config.toml", `
[source]
kind = "dir"
dir = "`+filepath.ToSlash(filepath.Join(dir, "workflows"))+`"

[cache]
backend = "none"
`)
	output := filepath.Join(dir, "task.svg")

	stdout, err := runCLI(t, "--config", config, "task", phases, "--type", "feature", "-o", output)
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if !strings.Contains(stdout, "Rendered feature task") {
		t.Errorf("stdout = %q, want graph path", stdout)
	}
	if !strings.Contains(stdout, "1/2 phases completed (50%)") {
		t.Errorf("stdout = %q, want progress", stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	// review has no status record, so it can only come from the definition.
	if !strings.Contains(string(data), `data-ref="review"`) {
		t.Error("graph path should draw every node of the definition")
	}
}

func TestTaskCommandFallback(t *testing.T) {
	dir := t.TempDir()
	phases := writeFile(t, dir, "task.json", phasesJSON)
	config := writeFile(t, dir, "config.toml", `
[source]
kind = "none"

[cache]
backend = "none"
`)
	output := filepath.Join(dir, "task.svg")

	stdout, err := runCLI(t, "--config", config, "task", phases, "--type", "feature", "-o", output)
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if !strings.Contains(stdout, `Workflow "feature" unavailable, drew 2 phases in a row`) {
		t.Errorf("stdout = %q, want fallback warning", stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, `data-ref="design"`) || strings.Contains(svg, `data-ref="review"`) {
		t.Errorf("fallback should draw exactly the phases: %s", svg)
	}
}

func TestTaskCommandRequiresType(t *testing.T) {
	phases := writeFile(t, t.TempDir(), "task.json", phasesJSON)
	if _, err := runCLI(t, "task", phases); err == nil {
		t.Error("task without --type should fail")
	}
}

func TestLayersCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "feature.yaml", featureYAML)
	phases := writeFile(t, dir, "task.json", phasesJSON)

	stdout, err := runCLI(t, "layers", input, "--phases", phases)
	if err != nil {
		t.Fatalf("layers: %v", err)
	}
	for _, want := range []string{
		"Feature Development",
		"Discovery",
		"Build, ",
		"investigator",
		"code-reviewer",
		"4 phases in 3 layers",
		"1/4 completed (25%)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("layers output missing %q:\n%s", want, stdout)
		}
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	clean := writeFile(t, dir, "feature.yaml", featureYAML)
	broken := writeFile(t, dir, "broken.yaml", cyclicYAML)

	stdout, err := runCLI(t, "inspect", clean)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(stdout, "no problems found") {
		t.Errorf("clean workflow output = %q", stdout)
	}

	stdout, err = runCLI(t, "inspect", broken)
	if err != nil {
		t.Fatalf("inspect without --strict should not fail: %v", err)
	}
	for _, want := range []string{
		`node "c" depends on unknown ref "missing"`,
		"dependency cycle",
		"3 phases in the final layer: a, b, c",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("inspect output missing %q:\n%s", want, stdout)
		}
	}

	_, err = runCLI(t, "inspect", broken, "--strict")
	if !errors.Is(err, errors.ErrCodeInvalidWorkflow) {
		t.Errorf("--strict: got %v, want INVALID_WORKFLOW", err)
	}
}

func TestInspectRedundantDependency(t *testing.T) {
	input := writeFile(t, t.TempDir(), "redundant.yaml", `name: redundant
nodes:
  - ref: a
  - ref: b
    depends_on: [a]
  - ref: c
    depends_on: [a, b]
`)
	stdout, err := runCLI(t, "inspect", input, "--strict")
	if err != nil {
		t.Fatalf("redundant dependencies are not problems: %v", err)
	}
	if !strings.Contains(stdout, `"c" already depends on "a" through another phase`) {
		t.Errorf("output = %q", stdout)
	}
}

func TestInspectJSON(t *testing.T) {
	input := writeFile(t, t.TempDir(), "broken.yaml", cyclicYAML)
	stdout, err := runCLI(t, "inspect", input, "--json")
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}

	var r report
	if err := json.Unmarshal([]byte(stdout), &r); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if r.Workflow != "broken" {
		t.Errorf("Workflow = %q", r.Workflow)
	}
	if !reflect.DeepEqual(r.Cycles, []graph.Edge{{From: "b", To: "a"}}) {
		t.Errorf("Cycles = %v", r.Cycles)
	}
	if !reflect.DeepEqual(r.Unresolved, []string{"a", "b", "c"}) {
		t.Errorf("Unresolved = %v", r.Unresolved)
	}
	if !reflect.DeepEqual(r.Final, []string{"c"}) {
		t.Errorf("Final = %v", r.Final)
	}
	if len(r.Issues) != 1 || r.Issues[0].Kind != workflow.IssueDanglingDep {
		t.Errorf("Issues = %+v", r.Issues)
	}
	if r.Redundant == nil || len(r.Redundant) != 0 {
		t.Errorf("Redundant = %#v, want empty list", r.Redundant)
	}
	if !strings.Contains(stdout, `"redundant": []`) {
		t.Errorf("empty findings should encode as []:\n%s", stdout)
	}
}

func TestInspectReduce(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		want    []graph.Edge
	}{
		{"implied dependency", `name: redundant
nodes:
  - ref: a
  - ref: b
    depends_on: [a]
  - ref: c
    depends_on: [a, b]
`, []graph.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}}},
		{"cycle", cyclicYAML, []graph.Edge{{From: "a", To: "b"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "-")+".yaml", tt.content)
			stdout, err := runCLI(t, "inspect", input, "--reduce")
			if err != nil {
				t.Fatalf("inspect --reduce: %v", err)
			}
			var g graph.Graph
			if err := json.Unmarshal([]byte(stdout), &g); err != nil {
				t.Fatalf("output is not a graph: %v\n%s", err, stdout)
			}
			if !reflect.DeepEqual(g.Edges, tt.want) {
				t.Errorf("Edges = %v, want %v", g.Edges, tt.want)
			}
			if len(g.Nodes) != 3 {
				t.Errorf("len(Nodes) = %d, want 3", len(g.Nodes))
			}
		})
	}

	input := writeFile(t, dir, "both.yaml", cyclicYAML)
	if _, err := runCLI(t, "inspect", input, "--reduce", "--json"); err == nil {
		t.Error("--reduce and --json together should fail")
	}
}

func TestInspectNormalize(t *testing.T) {
	input := writeFile(t, t.TempDir(), "padded.yaml", `name: padded
nodes:
  - ref: " a "
  - ref: b
    depends_on: [" a"]
`)
	stdout, err := runCLI(t, "inspect", input, "--normalize", "json")
	if err != nil {
		t.Fatalf("inspect --normalize: %v", err)
	}
	if !strings.Contains(stdout, `"ref": "a"`) || !strings.Contains(stdout, `"a"`) || strings.Contains(stdout, `" a"`) {
		t.Errorf("normalized output = %s", stdout)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := t.TempDir()
	cacheRoot := filepath.Join(dir, "cache")
	writeFile(t, cacheRoot, "ab/cdef.json", `{}`)
	config := writeFile(t, dir, "config.toml", `
[cache]
dir = "`+filepath.ToSlash(cacheRoot)+`"
`)

	stdout, err := runCLI(t, "--config", config, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(stdout) != filepath.ToSlash(cacheRoot) && strings.TrimSpace(stdout) != cacheRoot {
		t.Errorf("cache path = %q, want %q", stdout, cacheRoot)
	}

	stdout, err = runCLI(t, "--config", config, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if !strings.Contains(stdout, "Cleared 1 cached entries") {
		t.Errorf("cache clear output = %q", stdout)
	}
	entries, err := os.ReadDir(cacheRoot)
	if err != nil {
		t.Fatalf("cache dir should still exist: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear", len(entries))
	}
}

func TestCompletionCommand(t *testing.T) {
	stdout, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(stdout, "flowgraph") {
		t.Error("bash completion should mention the program name")
	}

	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unsupported shell should fail")
	}
}

func TestConfigFlagMissingFile(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "cache", "path")
	if err == nil {
		t.Error("an explicit config file that does not exist should fail")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, input, format, want string
	}{
		{"", "feature.yaml", "svg", "feature.svg"},
		{"", "dir/feature.yaml", "png", "dir/feature.png"},
		{"", "feature.json", "json", "feature.graph.json"},
		{"out.svg", "feature.yaml", "svg", "out.svg"},
		{"-", "feature.yaml", "svg", "-"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.input, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.output, tt.input, tt.format, got, tt.want)
		}
	}
}
