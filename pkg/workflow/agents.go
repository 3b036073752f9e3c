package workflow

import "sort"

var agentIcons = map[string]string{
	"investigator":      "🔍",
	"architect":         "🏗️",
	"worker":            "🔧",
	"tdd-guide":         "🧪",
	"code-simplifier":   "✨",
	"security-guidance": "🛡️",
	"code-reviewer":     "👀",
	"llmdoc":            "📚",
	"spec-guide":        "📋",
	"unknown":           "❓",
}

// DefaultAgentIcon is used for agents without a dedicated icon.
const DefaultAgentIcon = "🤖"

// AgentIcon returns the glyph shown next to an agent name.
func AgentIcon(agent string) string {
	if icon, ok := agentIcons[agent]; ok {
		return icon
	}
	return DefaultAgentIcon
}

// AgentCount is the number of nodes assigned to one agent.
type AgentCount struct {
	Agent string
	Count int
}

// AgentCounts tallies nodes per agent, most used first. Nodes without an
// agent are counted under "unknown". Ties are broken by agent name.
func AgentCounts(nodes []Node) []AgentCount {
	counts := make(map[string]int)
	for _, n := range nodes {
		agent := n.Agent
		if agent == "" {
			agent = "unknown"
		}
		counts[agent]++
	}
	out := make([]AgentCount, 0, len(counts))
	for agent, c := range counts {
		out = append(out, AgentCount{Agent: agent, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Agent < out[j].Agent
	})
	return out
}
