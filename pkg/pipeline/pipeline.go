// Package pipeline runs the normalize → layer → lay out → bind → render
// sequence that turns a workflow and its phase statuses into a drawing.
//
// The CLI and the HTTP server both go through a [Runner] so they produce
// byte-identical output for identical inputs.
//
// # Paths
//
// [Runner.RenderWorkflow] takes a workflow definition the caller already
// has and always renders the graph path.
//
// [Runner.RenderTask] only knows the workflow type of a running task. It
// asks the runner's [source.Source] for the definition; if that lookup
// fails the phases are drawn in a single row instead, so the caller still
// gets a usable picture. The choice is made once per call.
//
//	runner := pipeline.NewRunner(cache, nil, src, logger)
//	res, err := runner.RenderTask(ctx, "feature", phases, pipeline.Options{Size: "compact"})
//	if err != nil {
//	    return err
//	}
//	w.Header().Set("Content-Type", res.ContentType)
//	w.Write(res.Data)
//
// The individual stages ([Prepare], [Render], [RenderFallback]) are pure
// and can be used without a runner.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gclm/flowgraph/pkg/cache"
	"github.com/gclm/flowgraph/pkg/errors"
	"github.com/gclm/flowgraph/pkg/layout"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
)

// Defaults shared by the CLI, the server and the config file.
const (
	DefaultSize   = layout.SizeNormal
	DefaultFormat = FormatSVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
}

var contentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
	FormatPNG:  "image/png",
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	if ct, ok := contentTypes[format]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json, dot, png)", format)
	}
	return nil
}

// ValidateSize checks that size names a layout profile.
func ValidateSize(size string) error {
	if _, err := layout.LookupProfile(size); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSize, err, "invalid size: %q (must be one of: compact, normal)", size)
	}
	return nil
}

// Options controls a single render. The zero value renders a normal-size
// SVG.
type Options struct {
	Size   string `json:"size,omitempty"`
	Format string `json:"format,omitempty"`

	// Direction and Detailed only affect dot and png output.
	Direction string `json:"direction,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`

	// Refresh bypasses the artifact cache for reads. The result is still
	// written back.
	Refresh bool `json:"-"`

	Logger *log.Logger `json:"-"`

	profile   layout.Profile
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Size == "" {
		o.Size = DefaultSize
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := ValidateSize(o.Size); err != nil {
		return err
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.profile, _ = layout.LookupProfile(o.Size)
	o.Size = o.profile.Name
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Profile returns the layout profile selected by Size. It is only valid
// after ValidateAndSetDefaults.
func (o *Options) Profile() layout.Profile { return o.profile }

// ArtifactKeyOpts returns cache key options for an artifact of kind
// "graph" or "fallback".
func (o *Options) ArtifactKeyOpts(kind string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Kind: kind, Size: o.Size, Format: o.Format}
}

// Result is one rendered artifact.
type Result struct {
	Format      string
	ContentType string
	Data        []byte

	// Fallback is set when the workflow lookup failed and the phases were
	// drawn as a single row. FallbackReason holds the lookup error.
	Fallback       bool
	FallbackReason string

	// Unresolved lists the refs placed in the terminal layer because their
	// dependencies could never be satisfied.
	Unresolved []string

	CacheHit bool
	Stats    Stats
}

// Stats contains timing and size information.
type Stats struct {
	Nodes      int
	Layers     int
	LayoutTime time.Duration
	RenderTime time.Duration
}
