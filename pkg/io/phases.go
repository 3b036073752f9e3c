package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gclm/flowgraph/pkg/workflow"
)

// ReadPhases decodes a phase status list from r. The list may be a bare
// array or an object with a "phases" array, as returned by the task API.
// Unknown status strings decode as pending. TOML is not supported.
func ReadPhases(r io.Reader, f Format) ([]workflow.PhaseStatus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return decodePhases(data, f)
}

// ImportPhases reads a phase status file, choosing the format from its
// extension.
func ImportPhases(path string) ([]workflow.PhaseStatus, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	phases, err := decodePhases(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return phases, nil
}

type phaseEnvelope struct {
	Phases []workflow.PhaseStatus `json:"phases" yaml:"phases"`
}

func decodePhases(data []byte, f Format) ([]workflow.PhaseStatus, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	var (
		phases []workflow.PhaseStatus
		env    phaseEnvelope
	)
	switch f {
	case FormatJSON:
		if trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &phases); err != nil {
				return nil, fmt.Errorf("decode json: %w", err)
			}
			return phases, nil
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return env.Phases, nil
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
			if err := node.Decode(&phases); err != nil {
				return nil, fmt.Errorf("decode yaml: %w", err)
			}
			return phases, nil
		}
		if err := node.Decode(&env); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return env.Phases, nil
	}
	return nil, fmt.Errorf("%w: phases cannot be read as %q", ErrUnknownFormat, f)
}
