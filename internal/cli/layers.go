package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gclm/flowgraph/pkg/dag/transform"
	fgio "github.com/gclm/flowgraph/pkg/io"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// layersCommand creates the layers command, which prints the layering of a
// workflow as a table.
func (c *CLI) layersCommand() *cobra.Command {
	var phasesPath string

	cmd := &cobra.Command{
		Use:   "layers [workflow-file]",
		Short: "Print the layers of a workflow",
		Long: `Print the layers a workflow is drawn in, one row per layer, followed by
the number of phases per agent. With --phases each phase shows its status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := fgio.ImportWorkflow(args[0])
			if err != nil {
				return err
			}
			phases, err := loadPhases(phasesPath)
			if err != nil {
				return err
			}
			writeLayers(cmd.OutOrStdout(), wf, phases, phasesPath != "")
			return nil
		},
	}

	cmd.Flags().StringVarP(&phasesPath, "phases", "p", "", "phase status file (JSON or YAML)")
	return cmd
}

// writeLayers prints the layer table, the agent table and a summary line.
func writeLayers(w io.Writer, wf workflow.Workflow, phases []workflow.PhaseStatus, withStatus bool) {
	nodes := workflow.Normalize(wf.Nodes)
	res := transform.AssignLayers(nodes)
	binding := status.Bind(nodes, phases)

	byRef := make(map[string]workflow.Node, len(nodes))
	for _, n := range nodes {
		if _, ok := byRef[n.Ref]; !ok {
			byRef[n.Ref] = n
		}
	}

	fmt.Fprintln(w, StyleTitle.Render(wf.Title()))
	if len(nodes) == 0 {
		fmt.Fprintln(w, StyleDim.Render("no nodes"))
		return
	}

	unresolved := len(res.Unresolved) > 0
	layers := newTable("Layer", "Phases", "Count")
	for i, layer := range res.Layers {
		label := strconv.Itoa(i)
		if unresolved && i == len(res.Layers)-1 {
			label += " " + StyleWarning.Render(iconWarning)
		}
		names := make([]string, len(layer))
		for j, ref := range layer {
			name := byRef[ref].Label()
			if withStatus {
				name = renderStatus(binding.Of(ref), name)
			}
			names[j] = name
		}
		layers.Row(label, strings.Join(names, ", "), strconv.Itoa(len(layer)))
	}
	fmt.Fprintln(w, layers.Render())

	agents := newTable("Agent", "", "Phases")
	for _, ac := range workflow.AgentCounts(nodes) {
		agents.Row(ac.Agent, workflow.AgentIcon(ac.Agent), strconv.Itoa(ac.Count))
	}
	fmt.Fprintln(w, agents.Render())

	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d phases in %d layers", len(nodes), res.Depth())))
	if unresolved {
		fmt.Fprintln(w, StyleWarning.Render(fmt.Sprintf("%s unresolved: %s", iconWarning, strings.Join(res.Unresolved, ", "))))
	}
	if withStatus {
		sum := status.Summarize(nodes, binding)
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d/%d completed (%.0f%%)", sum.Completed(), sum.Total, sum.Progress()*100)))
	}
}
