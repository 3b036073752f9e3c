package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gclm/flowgraph/pkg/errors"
	fgio "github.com/gclm/flowgraph/pkg/io"
	"github.com/gclm/flowgraph/pkg/workflow"
)

// DirSource reads workflow definitions from the files directly inside Dir.
// Files are scanned in name order on every lookup, so edits are picked up
// without a restart. Files that fail to parse are skipped with a warning.
type DirSource struct {
	Dir    string
	Logger *log.Logger
}

// NewDirSource returns a DirSource for dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (s *DirSource) Name() string { return "dir:" + s.Dir }

func (s *DirSource) Workflow(ctx context.Context, workflowType string) (workflow.Workflow, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return workflow.Workflow{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "workflow directory %s", s.Dir)
		}
		return workflow.Workflow{}, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "read %s", s.Dir)
	}

	var byName []workflow.Workflow
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return workflow.Workflow{}, err
		}
		if e.IsDir() || !isDefinition(e.Name()) {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		wf, err := fgio.ImportWorkflow(path)
		if err != nil {
			s.logger().Warn("skipping workflow file", "path", path, "err", err)
			continue
		}
		if wf.WorkflowType == workflowType {
			return wf, nil
		}
		if wf.Name == workflowType {
			byName = append(byName, wf)
		}
	}
	if len(byName) > 0 {
		return byName[0], nil
	}
	return workflow.Workflow{}, notFound(workflowType, s.Dir)
}

// List returns every definition in Dir, in file name order.
func (s *DirSource) List(ctx context.Context) ([]workflow.Workflow, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Dir, err)
	}
	var out []workflow.Workflow
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !isDefinition(e.Name()) {
			continue
		}
		wf, err := fgio.ImportWorkflow(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			s.logger().Warn("skipping workflow file", "path", e.Name(), "err", err)
			continue
		}
		out = append(out, wf)
	}
	return out, nil
}

func (s *DirSource) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

func isDefinition(name string) bool {
	return slices.Contains(fgio.Extensions, strings.ToLower(filepath.Ext(name)))
}
