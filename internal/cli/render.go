package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	fgio "github.com/gclm/flowgraph/pkg/io"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// stdoutPath as an output path writes the artifact to stdout.
const stdoutPath = "-"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	renderFlags
	output string // output file; "-" for stdout, empty to derive from the input
	phases string // optional phase status file
}

// renderCommand creates the render command for drawing a workflow
// definition.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [workflow-file]",
		Short: "Render a workflow definition as a layered graph",
		Long: `Render a workflow definition (YAML, JSON or TOML) as a layered graph.

Every phase is drawn after the phases it depends on. Phases whose
dependencies can never be satisfied (cycles, unknown refs) are drawn in a
final layer and reported as unresolved. With --phases, each phase is
colored by its status in the given phase status file.`,
		Example: `  flowgraph render feature.yaml
  flowgraph render feature.yaml --phases task-42.json --size compact -o task-42.svg
  flowgraph render feature.yaml -f dot -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.renderFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, or - for stdout (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.phases, "phases", "p", "", "phase status file (JSON or YAML)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, input string, opts renderOpts) error {
	c.Logger.Infof("Rendering %s", input)

	wf, err := fgio.ImportWorkflow(input)
	if err != nil {
		return err
	}
	phases, err := loadPhases(opts.phases)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded workflow %q: %d nodes, %d phase records", wf.Title(), len(wf.Nodes), len(phases))

	runner, cleanup, err := c.newRunner(ctx, opts.noCache, false)
	if err != nil {
		return err
	}
	defer cleanup()

	prog := newProgress(c.Logger)
	res, err := runner.RenderWorkflow(ctx, wf, phases, opts.options(c.Config.Render))
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", filepath.Base(input)))

	path := outputPath(opts.output, input, res.Format)
	if err := writeArtifact(stdout, path, res.Data); err != nil {
		return err
	}
	if path == stdoutPath {
		return nil
	}

	printSuccess("Rendered %s", wf.Title())
	printFile(path)
	printStats(res.Stats.Nodes, res.Stats.Layers, res.CacheHit)
	if len(res.Unresolved) > 0 {
		printWarning("%d phases could not be layered: %s", len(res.Unresolved), strings.Join(res.Unresolved, ", "))
		printDetail("Run 'flowgraph inspect %s' for details", input)
	}
	return nil
}

// loadPhases reads a phase status file. An empty path means no statuses.
func loadPhases(path string) ([]workflow.PhaseStatus, error) {
	if path == "" {
		return nil, nil
	}
	return fgio.ImportPhases(path)
}

// outputPath returns where an artifact of format goes. An empty output
// derives the path from input by swapping its extension, without ever
// pointing back at the input itself.
func outputPath(output, input, format string) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if path := base + "." + format; path != input {
		return path
	}
	return base + ".graph." + format
}

// writeArtifact writes data to path, or to stdout when path is "-".
func writeArtifact(stdout io.Writer, path string, data []byte) error {
	if path == stdoutPath {
		_, err := stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
