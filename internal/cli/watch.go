package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	fgio "github.com/gclm/flowgraph/pkg/io"
	"github.com/gclm/flowgraph/pkg/layout"
	"github.com/gclm/flowgraph/pkg/pipeline"
	"github.com/gclm/flowgraph/pkg/status"
	"github.com/gclm/flowgraph/pkg/workflow"
)

const defaultWatchInterval = 2 * time.Second

var (
	watchLayerStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(5)
	watchErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	watchFooterStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// watchModel - live layer view
// =============================================================================

// snapshot is the outcome of one refresh: the phase file is read again and
// the workflow laid out from scratch, so consecutive snapshots share
// nothing.
type snapshot struct {
	plan    pipeline.Plan
	summary status.Summary
	at      time.Time
	err     error
	manual  bool
	laidOut bool
}

type tickMsg time.Time

// watchModel is the bubbletea model behind "flowgraph watch".
type watchModel struct {
	wf       workflow.Workflow
	interval time.Duration

	// load returns the current phase statuses.
	load func() ([]workflow.PhaseStatus, error)

	// publish, when set, is called with every successful refresh, e.g. to
	// rewrite an SVG next to the workflow file.
	publish func(phases []workflow.PhaseStatus) error

	last snapshot
}

func newWatchModel(wf workflow.Workflow, interval time.Duration, load func() ([]workflow.PhaseStatus, error)) watchModel {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	return watchModel{wf: wf, interval: interval, load: load}
}

func (m watchModel) Init() tea.Cmd {
	return m.refresh(false)
}

// refresh reads the phases and lays the workflow out again.
func (m watchModel) refresh(manual bool) tea.Cmd {
	wf, load, publish := m.wf, m.load, m.publish
	return func() tea.Msg {
		snap := snapshot{at: time.Now(), manual: manual}
		phases, err := load()
		if err != nil {
			snap.err = err
			return snap
		}
		snap.plan = pipeline.Prepare(wf, phases, layout.Compact)
		snap.summary = status.Summarize(snap.plan.Nodes, snap.plan.Binding)
		snap.laidOut = true
		if publish != nil {
			snap.err = publish(phases)
		}
		return snap
	}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, m.refresh(true)
		}
	case tickMsg:
		return m, m.refresh(false)
	case snapshot:
		if !msg.laidOut && m.last.laidOut {
			// Keep showing the last good layout under the error.
			msg.plan, msg.summary, msg.laidOut = m.last.plan, m.last.summary, true
		}
		m.last = msg
		if msg.manual {
			return m, nil
		}
		return m, m.tick()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.wf.Title()))
	b.WriteString("\n\n")

	plan := m.last.plan
	switch {
	case m.last.at.IsZero():
		b.WriteString(StyleDim.Render("loading..."))
		b.WriteString("\n")
	case !m.last.laidOut:
	case len(plan.Nodes) == 0:
		b.WriteString(StyleDim.Render("no nodes"))
		b.WriteString("\n")
	default:
		writeLayerRows(&b, plan)
	}

	if m.last.err != nil {
		b.WriteString("\n")
		b.WriteString(watchErrorStyle.Render(iconError + " " + m.last.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(watchFooterStyle.Render(m.footer()))
	return b.String()
}

func writeLayerRows(b *strings.Builder, plan pipeline.Plan) {
	labels := make(map[string]string, len(plan.Nodes))
	for _, n := range plan.Nodes {
		if _, ok := labels[n.Ref]; !ok {
			labels[n.Ref] = n.Label()
		}
	}

	last := len(plan.Layers.Layers) - 1
	for i, layer := range plan.Layers.Layers {
		name := fmt.Sprintf("L%d", i)
		if i == last && len(plan.Layers.Unresolved) > 0 {
			name += iconWarning
		}
		chips := make([]string, len(layer))
		for j, ref := range layer {
			chips[j] = renderStatus(plan.Binding.Of(ref), labels[ref])
		}
		b.WriteString(watchLayerStyle.Render(name))
		b.WriteString(strings.Join(chips, "   "))
		b.WriteString("\n")
	}
}

func (m watchModel) footer() string {
	var parts []string
	if sum := m.last.summary; sum.Total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d completed (%.0f%%)", sum.Completed(), sum.Total, sum.Progress()*100))
		if n := sum.Counts[workflow.Running]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d running", n))
		}
		if n := sum.Counts[workflow.Failed]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d failed", n))
		}
	}
	if !m.last.at.IsZero() {
		parts = append(parts, "updated "+m.last.at.Format("15:04:05"))
	}
	parts = append(parts, "r refresh  q quit")
	return strings.Join(parts, " · ")
}

// =============================================================================
// Command
// =============================================================================

type watchOpts struct {
	renderFlags
	phases   string
	interval time.Duration
	output   string
	once     bool
}

// watchCommand creates the watch command, which redraws a workflow whenever
// its phase status file is re-read.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch [workflow-file]",
		Short: "Watch a task's progress through its workflow",
		Long: `Show the layers of a workflow with the live status of each phase.

The phase status file is read again on every tick, and each read is laid
out from scratch. With --output the rendered artifact is rewritten on every
tick as well, e.g. for a browser tab that reloads it.`,
		Example: `  flowgraph watch feature.yaml --phases task-42.json
  flowgraph watch feature.yaml --phases task-42.json --interval 5s -o task-42.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.renderFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.phases, "phases", "p", "", "phase status file to poll (required)")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", defaultWatchInterval, "poll interval")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "also write the rendered artifact here on every tick")
	cmd.Flags().BoolVar(&opts.once, "once", false, "print a single snapshot and exit")
	_ = cmd.MarkFlagRequired("phases")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, stdout io.Writer, input string, opts watchOpts) error {
	wf, err := fgio.ImportWorkflow(input)
	if err != nil {
		return err
	}

	m := newWatchModel(wf, opts.interval, func() ([]workflow.PhaseStatus, error) {
		return loadPhases(opts.phases)
	})

	if opts.output != "" {
		runner, cleanup, err := c.newRunner(ctx, opts.noCache, false)
		if err != nil {
			return err
		}
		defer cleanup()
		ropts := opts.options(c.Config.Render)
		m.publish = func(phases []workflow.PhaseStatus) error {
			res, err := runner.RenderWorkflow(ctx, wf, phases, ropts)
			if err != nil {
				return err
			}
			return writeArtifact(stdout, opts.output, res.Data)
		}
	}

	if opts.once {
		next, _ := m.Update(m.refresh(false)())
		fmt.Fprintln(stdout, next.(watchModel).View())
		return next.(watchModel).last.err
	}

	c.Logger.Debug("watching", "workflow", input, "phases", opts.phases, "interval", m.interval)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
