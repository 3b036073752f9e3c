package status

import (
	"reflect"
	"testing"

	"github.com/gclm/flowgraph/pkg/workflow"
)

func TestBind(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []workflow.Node
		records []workflow.PhaseStatus
		want    Binding
	}{
		{
			name:    "unmatched node is pending",
			nodes:   []workflow.Node{{Ref: "a"}, {Ref: "b"}},
			records: []workflow.PhaseStatus{{PhaseName: "a", Status: workflow.Completed}},
			want:    Binding{"a": workflow.Completed, "b": workflow.Pending},
		},
		{
			name:    "match by display name",
			nodes:   []workflow.Node{{Ref: "impl", DisplayName: "Implement"}},
			records: []workflow.PhaseStatus{{PhaseName: "Implement", Status: workflow.Running}},
			want:    Binding{"impl": workflow.Running},
		},
		{
			name:  "ref match wins over display name",
			nodes: []workflow.Node{{Ref: "impl", DisplayName: "Implement"}},
			records: []workflow.PhaseStatus{
				{PhaseName: "Implement", Status: workflow.Failed},
				{PhaseName: "impl", Status: workflow.Completed},
			},
			want: Binding{"impl": workflow.Completed},
		},
		{
			name:  "last record wins",
			nodes: []workflow.Node{{Ref: "a"}},
			records: []workflow.PhaseStatus{
				{PhaseName: "a", Status: workflow.Running},
				{PhaseName: "a", Status: workflow.Failed},
			},
			want: Binding{"a": workflow.Failed},
		},
		{
			name:    "unknown status string is pending",
			nodes:   []workflow.Node{{Ref: "a"}},
			records: []workflow.PhaseStatus{{PhaseName: "a", Status: "exploded"}},
			want:    Binding{"a": workflow.Pending},
		},
		{
			name:    "empty display name never matches",
			nodes:   []workflow.Node{{Ref: "a"}},
			records: []workflow.PhaseStatus{{PhaseName: "", Status: workflow.Completed}},
			want:    Binding{"a": workflow.Pending},
		},
		{
			name:  "no records",
			nodes: []workflow.Node{{Ref: "a"}},
			want:  Binding{"a": workflow.Pending},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bind(tt.nodes, tt.records); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Bind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBindingOf(t *testing.T) {
	b := Binding{"a": workflow.Running}
	if got := b.Of("a"); got != workflow.Running {
		t.Errorf("Of(a) = %v", got)
	}
	if got := b.Of("zz"); got != workflow.Pending {
		t.Errorf("Of(zz) = %v, want pending", got)
	}
}

func TestSummarize(t *testing.T) {
	nodes := []workflow.Node{{Ref: "a"}, {Ref: "b"}, {Ref: "c"}, {Ref: "d"}}
	b := Binding{"a": workflow.Completed, "b": workflow.Completed, "c": workflow.Running}
	sum := Summarize(nodes, b)
	if sum.Total != 4 || sum.Completed() != 2 || sum.Counts[workflow.Pending] != 1 {
		t.Errorf("Summarize() = %+v", sum)
	}
	if got := sum.Progress(); got != 0.5 {
		t.Errorf("Progress() = %v, want 0.5", got)
	}
	if got := (Summary{}).Progress(); got != 0 {
		t.Errorf("empty Progress() = %v, want 0", got)
	}
}

func TestSummarizeRecords(t *testing.T) {
	recs := []workflow.PhaseStatus{
		{PhaseName: "a", Status: workflow.Failed},
		{PhaseName: "b", Status: "weird"},
	}
	sum := SummarizeRecords(recs)
	if sum.Total != 2 || sum.Counts[workflow.Failed] != 1 || sum.Counts[workflow.Pending] != 1 {
		t.Errorf("SummarizeRecords() = %+v", sum)
	}
}
