package svg

import "github.com/gclm/flowgraph/pkg/workflow"

const (
	colorNeutral = "#94a3b8"
	colorAccent  = "#3b82f6"
	colorTint    = "#dbeafe"
	colorSuccess = "#10b981"
	colorError   = "#ef4444"
	colorMuted   = "#6b7280"
	colorWhite   = "#ffffff"

	colorLabel     = "#1e293b"
	colorSecondary = "#64748b"
	colorEdge      = colorNeutral
)

// StrokeColor returns the outline color of a node in status s.
func StrokeColor(s workflow.Status) string {
	switch workflow.ParseStatus(string(s)) {
	case workflow.Running:
		return colorAccent
	case workflow.Completed:
		return colorSuccess
	case workflow.Failed:
		return colorError
	case workflow.Cancelled:
		return colorMuted
	default:
		return colorNeutral
	}
}

// FillColor returns the body color of a node in status s. Only running
// nodes are tinted.
func FillColor(s workflow.Status) string {
	if workflow.ParseStatus(string(s)) == workflow.Running {
		return colorTint
	}
	return colorWhite
}
