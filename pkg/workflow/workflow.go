package workflow

import "encoding/json"

// Node is a single phase definition inside a workflow.
//
// Ref is intended to be unique within a workflow but nothing enforces it:
// every consumer in this module tolerates duplicate refs and DependsOn
// entries that point at refs absent from the node list.
type Node struct {
	Ref            string         `json:"ref" yaml:"ref" toml:"ref" bson:"ref"`
	DisplayName    string         `json:"displayName,omitempty" yaml:"display_name" toml:"display_name" bson:"displayName,omitempty"`
	Agent          string         `json:"agent,omitempty" yaml:"agent" toml:"agent" bson:"agent,omitempty"`
	Model          string         `json:"model,omitempty" yaml:"model" toml:"model" bson:"model,omitempty"`
	TimeoutSeconds int            `json:"timeoutSeconds,omitempty" yaml:"timeout" toml:"timeout" bson:"timeoutSeconds,omitempty"`
	Required       bool           `json:"required" yaml:"required" toml:"required" bson:"required"`
	DependsOn      []string       `json:"dependsOn,omitempty" yaml:"depends_on,omitempty" toml:"depends_on" bson:"dependsOn,omitempty"`
	ParallelGroup  string         `json:"parallelGroup,omitempty" yaml:"parallel_group,omitempty" toml:"parallel_group" bson:"parallelGroup,omitempty"`
	Config         map[string]any `json:"config,omitempty" yaml:"config,omitempty" toml:"config" bson:"config,omitempty"`
}

// UnmarshalJSON also accepts "timeout", the key the task engine API sends,
// for TimeoutSeconds. "timeoutSeconds" wins when both are present.
func (n *Node) UnmarshalJSON(data []byte) error {
	type plain Node
	aux := struct {
		*plain
		TimeoutSeconds *int `json:"timeoutSeconds"`
		Timeout        *int `json:"timeout"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.TimeoutSeconds != nil:
		n.TimeoutSeconds = *aux.TimeoutSeconds
	case aux.Timeout != nil:
		n.TimeoutSeconds = *aux.Timeout
	}
	return nil
}

// Label returns the display name, or the ref when no display name is set.
func (n Node) Label() string {
	if n.DisplayName != "" {
		return n.DisplayName
	}
	return n.Ref
}

// Workflow is a declarative workflow definition: a named, typed list of nodes.
type Workflow struct {
	Name         string `json:"name" yaml:"name" toml:"name" bson:"name"`
	DisplayName  string `json:"displayName,omitempty" yaml:"display_name" toml:"display_name" bson:"displayName,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty" toml:"description" bson:"description,omitempty"`
	WorkflowType string `json:"workflowType,omitempty" yaml:"workflow_type" toml:"workflow_type" bson:"workflowType,omitempty"`
	Version      string `json:"version,omitempty" yaml:"version" toml:"version" bson:"version,omitempty"`
	Nodes        []Node `json:"nodes" yaml:"nodes" toml:"nodes" bson:"nodes"`
}

// Title returns the display name, falling back to the workflow name.
func (w Workflow) Title() string {
	if w.DisplayName != "" {
		return w.DisplayName
	}
	return w.Name
}

// PhaseStatus is one runtime status record for a phase of a running task.
// Records are supplied fresh for every render and never retained.
type PhaseStatus struct {
	PhaseName   string `json:"phaseName" yaml:"phase_name"`
	DisplayName string `json:"displayName,omitempty" yaml:"display_name,omitempty"`
	AgentName   string `json:"agentName,omitempty" yaml:"agent_name,omitempty"`
	ModelName   string `json:"modelName,omitempty" yaml:"model_name,omitempty"`
	Status      Status `json:"status" yaml:"status"`
	OutputText  string `json:"outputText,omitempty" yaml:"output_text,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Label returns the display name, or the phase name when no display name is set.
func (p PhaseStatus) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.PhaseName
}
