package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gclm/flowgraph/pkg/status"
)

type taskOpts struct {
	renderFlags
	workflowType string
	output       string
}

// taskCommand creates the task command, which draws a running task from its
// phase statuses alone.
func (c *CLI) taskCommand() *cobra.Command {
	var opts taskOpts

	cmd := &cobra.Command{
		Use:   "task [phases-file]",
		Short: "Render a running task from its phase statuses",
		Long: `Render a running task from a phase status file.

The workflow definition is looked up by --type in the source configured in
config.toml ([source] kind = "dir", "http" or "mongo"). When the lookup
fails the phases are drawn left to right in a single row instead, so the
task's status is always visible.`,
		Example: `  flowgraph task task-42.json --type feature
  flowgraph task task-42.json --type feature --size compact -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTask(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.renderFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.workflowType, "type", "t", "", "workflow type of the task (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or - for stdout (default: input name with format extension)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (c *CLI) runTask(ctx context.Context, stdout io.Writer, input string, opts taskOpts) error {
	phases, err := loadPhases(input)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded %d phase records from %s", len(phases), input)

	runner, cleanup, err := c.newRunner(ctx, opts.noCache, true)
	if err != nil {
		return err
	}
	defer cleanup()

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Looking up workflow %q", opts.workflowType))
	spin.Start()
	prog := newProgress(c.Logger)
	res, err := runner.RenderTask(ctx, opts.workflowType, phases, opts.options(c.Config.Render))
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered task %s", filepath.Base(input)))

	path := outputPath(opts.output, input, res.Format)
	if err := writeArtifact(stdout, path, res.Data); err != nil {
		return err
	}
	if path == stdoutPath {
		return nil
	}

	sum := status.SummarizeRecords(phases)
	if res.Fallback {
		printWarning("Workflow %q unavailable, drew %d phases in a row", opts.workflowType, len(phases))
		printDetail("%s", res.FallbackReason)
	} else {
		printSuccess("Rendered %s task", opts.workflowType)
	}
	printFile(path)
	printStats(res.Stats.Nodes, res.Stats.Layers, res.CacheHit)
	if sum.Total > 0 {
		printDetail("%d/%d phases completed (%.0f%%)", sum.Completed(), sum.Total, sum.Progress()*100)
	}
	if len(res.Unresolved) > 0 {
		printWarning("%d phases could not be layered: %s", len(res.Unresolved), strings.Join(res.Unresolved, ", "))
	}
	return nil
}
