// Package status overlays runtime phase status onto workflow nodes.
package status

import "github.com/gclm/flowgraph/pkg/workflow"

// Binding maps node refs to the status they are drawn with.
type Binding map[string]workflow.Status

// Of returns the bound status of ref, or Pending when ref is not bound.
func (b Binding) Of(ref string) workflow.Status {
	if s, ok := b[ref]; ok {
		return s
	}
	return workflow.Pending
}

// Bind resolves a status for every node. A record matches a node when its
// PhaseName equals the node's Ref, or failing that, the node's DisplayName.
// Nodes without a matching record are Pending. When several records share a
// PhaseName the last one wins.
func Bind(nodes []workflow.Node, records []workflow.PhaseStatus) Binding {
	byPhase := make(map[string]workflow.Status, len(records))
	for _, r := range records {
		byPhase[r.PhaseName] = workflow.ParseStatus(string(r.Status))
	}

	out := make(Binding, len(nodes))
	for _, n := range nodes {
		if s, ok := byPhase[n.Ref]; ok {
			out[n.Ref] = s
		} else if s, ok := byPhase[n.DisplayName]; ok && n.DisplayName != "" {
			out[n.Ref] = s
		} else {
			out[n.Ref] = workflow.Pending
		}
	}
	return out
}

// Summary counts phases per status.
type Summary struct {
	Total  int                     `json:"total"`
	Counts map[workflow.Status]int `json:"counts"`
}

// Completed returns the number of completed phases.
func (s Summary) Completed() int { return s.Counts[workflow.Completed] }

// Progress returns the completed fraction in [0, 1], or 0 when empty.
func (s Summary) Progress() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed()) / float64(s.Total)
}

// Summarize counts the bound status of every node, once per node.
func Summarize(nodes []workflow.Node, b Binding) Summary {
	sum := Summary{Counts: make(map[workflow.Status]int)}
	for _, n := range nodes {
		sum.Counts[b.Of(n.Ref)]++
		sum.Total++
	}
	return sum
}

// SummarizeRecords counts the status of each record directly. It is used
// when no workflow structure is available.
func SummarizeRecords(records []workflow.PhaseStatus) Summary {
	sum := Summary{Counts: make(map[workflow.Status]int)}
	for _, r := range records {
		sum.Counts[workflow.ParseStatus(string(r.Status))]++
		sum.Total++
	}
	return sum
}
