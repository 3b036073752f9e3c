package workflow

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Normalize returns a deep copy of nodes with surrounding whitespace removed
// from refs and dependency entries. The input slice is never modified and the
// result shares no memory with it. Node order, duplicate refs and dangling
// dependencies are preserved unchanged.
func Normalize(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Ref = strings.TrimSpace(n.Ref)
		n.DisplayName = strings.TrimSpace(n.DisplayName)
		n.Agent = strings.TrimSpace(n.Agent)
		if n.DependsOn != nil {
			deps := make([]string, len(n.DependsOn))
			for j, d := range n.DependsOn {
				deps[j] = strings.TrimSpace(d)
			}
			n.DependsOn = deps
		}
		if n.Config != nil {
			n.Config = maps.Clone(n.Config)
		}
		out[i] = n
	}
	return out
}

// IssueKind classifies a structural problem found by Inspect.
type IssueKind string

const (
	IssueEmptyRef     IssueKind = "empty-ref"
	IssueDuplicateRef IssueKind = "duplicate-ref"
	IssueDanglingDep  IssueKind = "dangling-dependency"
	IssueSelfDep      IssueKind = "self-dependency"
	IssueDuplicateDep IssueKind = "duplicate-dependency"
)

// Issue is a structural diagnostic. Issues never block layering or rendering;
// they only explain why a node may end up in the terminal layer.
type Issue struct {
	Kind  IssueKind `json:"kind"`
	Index int       `json:"index"`
	Ref   string    `json:"ref"`
	Dep   string    `json:"dep,omitempty"`
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueEmptyRef:
		return fmt.Sprintf("node #%d has an empty ref", i.Index)
	case IssueDuplicateRef:
		return fmt.Sprintf("node #%d reuses ref %q", i.Index, i.Ref)
	case IssueDanglingDep:
		return fmt.Sprintf("node %q depends on unknown ref %q", i.Ref, i.Dep)
	case IssueSelfDep:
		return fmt.Sprintf("node %q depends on itself", i.Ref)
	case IssueDuplicateDep:
		return fmt.Sprintf("node %q lists dependency %q more than once", i.Ref, i.Dep)
	}
	return string(i.Kind)
}

// Inspect reports structural issues in nodes, in node order.
func Inspect(nodes []Node) []Issue {
	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.Ref] = true
	}

	var issues []Issue
	seen := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		if n.Ref == "" {
			issues = append(issues, Issue{Kind: IssueEmptyRef, Index: i})
		} else if seen[n.Ref] {
			issues = append(issues, Issue{Kind: IssueDuplicateRef, Index: i, Ref: n.Ref})
		}
		seen[n.Ref] = true

		for j, d := range n.DependsOn {
			switch {
			case d == n.Ref:
				issues = append(issues, Issue{Kind: IssueSelfDep, Index: i, Ref: n.Ref, Dep: d})
			case !known[d]:
				issues = append(issues, Issue{Kind: IssueDanglingDep, Index: i, Ref: n.Ref, Dep: d})
			case slices.Contains(n.DependsOn[:j], d):
				issues = append(issues, Issue{Kind: IssueDuplicateDep, Index: i, Ref: n.Ref, Dep: d})
			}
		}
	}
	return issues
}

// Refs returns the refs of nodes in order.
func Refs(nodes []Node) []string {
	refs := make([]string, len(nodes))
	for i, n := range nodes {
		refs[i] = n.Ref
	}
	return refs
}
