// Package buildinfo holds version information stamped in at build time:
//
//	go build -ldflags "-X github.com/gclm/flowgraph/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/gclm/flowgraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/gclm/flowgraph/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/flowgraph
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
