package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gclm/flowgraph/pkg/dag"
	"github.com/gclm/flowgraph/pkg/dag/transform"
	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/graph"
	fgio "github.com/gclm/flowgraph/pkg/io"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// report is the outcome of inspecting one workflow.
type report struct {
	Workflow   string           `json:"workflow"`
	Issues     []workflow.Issue `json:"issues"`
	Cycles     []graph.Edge     `json:"cycles"`
	Redundant  []graph.Edge     `json:"redundant"`
	Unresolved []string         `json:"unresolved"`
	// Final lists the phases no other phase waits on.
	Final []string `json:"final"`
}

// Problems counts findings that affect the drawing. Redundant dependencies
// are reported but do not count.
func (r report) Problems() int {
	return len(r.Issues) + len(r.Cycles) + len(r.Unresolved)
}

func inspectWorkflow(wf workflow.Workflow) report {
	nodes := workflow.Normalize(wf.Nodes)
	res := transform.AssignLayers(nodes)
	g := graph.FromWorkflow(nodes, res, nil)
	return report{
		Workflow:   wf.Title(),
		Issues:     orEmpty(workflow.Inspect(nodes)),
		Cycles:     edgesOf(transform.FindCycles(g)),
		Redundant:  edgesOf(transform.RedundantEdges(g)),
		Unresolved: orEmpty(res.Unresolved),
		Final:      orEmpty(dag.NodeIDs(g.Sinks())),
	}
}

// reduceWorkflow builds the dependency graph of wf without the edges that
// close a cycle or repeat a dependency already implied through another
// phase.
func reduceWorkflow(wf workflow.Workflow) *dag.DAG {
	nodes := workflow.Normalize(wf.Nodes)
	g := graph.FromWorkflow(nodes, transform.AssignLayers(nodes), nil)
	transform.BreakCycles(g)
	transform.TransitiveReduction(g)
	return g
}

func edgesOf(es []dag.Edge) []graph.Edge {
	out := make([]graph.Edge, len(es))
	for i, e := range es {
		out[i] = graph.Edge{From: e.From, To: e.To}
	}
	return out
}

// orEmpty keeps JSON output as [] instead of null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type inspectOpts struct {
	strict    bool
	jsonOut   bool
	reduce    bool
	normalize string
}

// inspectCommand creates the inspect command for structural diagnostics.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect [workflow-file]",
		Short: "Report structural problems in a workflow definition",
		Long: `Report structural problems in a workflow definition: empty, duplicate or
self-referencing refs, dependencies on unknown refs, dependency cycles and
dependencies already implied by other dependencies.

Problems never stop a workflow from rendering; affected phases end up in
the final layer. Use --strict to fail instead, e.g. in CI.

--json prints the report as JSON. --reduce prints the dependency graph as
JSON with cycle-closing and implied dependencies removed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := fgio.ImportWorkflow(args[0])
			if err != nil {
				return err
			}

			if opts.normalize != "" {
				f, err := fgio.ParseFormat(opts.normalize)
				if err != nil {
					return err
				}
				wf.Nodes = workflow.Normalize(wf.Nodes)
				return fgio.WriteWorkflow(cmd.OutOrStdout(), wf, f)
			}

			if opts.reduce {
				return graph.WriteGraph(reduceWorkflow(wf), cmd.OutOrStdout())
			}

			r := inspectWorkflow(wf)
			if opts.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(r); err != nil {
					return err
				}
			} else {
				writeReport(cmd.OutOrStdout(), r)
			}
			if opts.strict && r.Problems() > 0 {
				return errors.New(errors.ErrCodeInvalidWorkflow, "%s: %d structural problems", args[0], r.Problems())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when problems are found")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.reduce, "reduce", false, "print the reduced dependency graph as JSON instead of a report")
	cmd.Flags().StringVar(&opts.normalize, "normalize", "", "print the normalized definition in this format (yaml, json, toml) instead of a report")
	cmd.MarkFlagsMutuallyExclusive("json", "reduce", "normalize")
	return cmd
}

func writeReport(w io.Writer, r report) {
	fmt.Fprintln(w, StyleTitle.Render(r.Workflow))

	if r.Problems() == 0 && len(r.Redundant) == 0 {
		fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" no problems found")
		return
	}

	for _, issue := range r.Issues {
		fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+issue.String())
	}
	for _, e := range r.Cycles {
		fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf("dependency cycle closes at %q → %q", e.From, e.To))
	}
	for _, e := range r.Redundant {
		fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf("%q already depends on %q through another phase", e.To, e.From))
	}
	if len(r.Unresolved) > 0 {
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%s %d phases in the final layer: %s", iconWarning, len(r.Unresolved), strings.Join(r.Unresolved, ", "))))
	}
}
