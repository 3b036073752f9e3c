package cache

import "fmt"

// ArtifactKeyOpts are the render options that distinguish artifacts built
// from the same inputs.
type ArtifactKeyOpts struct {
	Kind   string // "graph" or "fallback"
	Size   string
	Format string
}

// Keyer derives cache keys.
type Keyer interface {
	// WorkflowKey names a workflow definition fetched from a source.
	WorkflowKey(source, workflowType string) string

	// ArtifactKey names a rendered artifact. contentHash must cover every
	// input that affects the output.
	ArtifactKey(contentHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "kind:...".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) WorkflowKey(source, workflowType string) string {
	return hashKey("workflow", source, workflowType)
}

func (DefaultKeyer) ArtifactKey(contentHash string, opts ArtifactKeyOpts) string {
	return fmt.Sprintf("artifact:%s:%s:%s:%s", opts.Kind, opts.Size, opts.Format, contentHash)
}

var _ Keyer = DefaultKeyer{}
