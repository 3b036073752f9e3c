package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/gclm/flowgraph/pkg/workflow"
)

// ReadWorkflow decodes a workflow definition from r.
//
// YAML and TOML definitions use snake_case keys (display_name, depends_on,
// workflow_type, timeout). JSON uses camelCase keys and may be wrapped in an
// API envelope:
//
//	{"workflow": {"name": "feature", "nodes": [...]}}
//
// Node lists are returned as written; see [workflow.Normalize] for cleanup.
// ReadWorkflow does not close r.
func ReadWorkflow(r io.Reader, f Format) (workflow.Workflow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("read: %w", err)
	}
	return decodeWorkflow(data, f)
}

// ImportWorkflow reads a workflow file, choosing the format from its
// extension.
func ImportWorkflow(path string) (workflow.Workflow, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return workflow.Workflow{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("open %s: %w", path, err)
	}
	wf, err := decodeWorkflow(data, f)
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// WriteWorkflow encodes wf to w in format f.
func WriteWorkflow(w io.Writer, wf workflow.Workflow, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(wf); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(wf); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(wf); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func decodeWorkflow(data []byte, f Format) (workflow.Workflow, error) {
	var wf workflow.Workflow
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return wf, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&wf); err != nil {
			return wf, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON:
		var env struct {
			Workflow *workflow.Workflow `json:"workflow"`
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return wf, fmt.Errorf("decode json: %w", err)
		}
		if env.Workflow != nil {
			return *env.Workflow, nil
		}
		if err := json.Unmarshal(data, &wf); err != nil {
			return wf, fmt.Errorf("decode json: %w", err)
		}
	default:
		return wf, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return wf, nil
}
