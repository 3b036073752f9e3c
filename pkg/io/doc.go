// Package io reads workflow definitions and phase status lists from files
// and streams.
//
// # Workflow definitions
//
// Definitions can be YAML, JSON or TOML. YAML and TOML use the snake_case
// keys of hand-written definition files:
//
//	name: feature
//	display_name: Feature development
//	workflow_type: feature
//	nodes:
//	  - ref: investigate
//	    agent: investigator
//	  - ref: implement
//	    agent: worker
//	    depends_on: [investigate]
//
// JSON uses the camelCase keys of the task API (displayName, dependsOn,
// workflowType) and may be wrapped as {"workflow": {...}}.
//
// # Phase status lists
//
// Phase lists are JSON or YAML, either a bare array or {"phases": [...]}:
//
//	[{"phaseName": "investigate", "status": "completed"},
//	 {"phaseName": "implement", "status": "running"}]
//
// Unknown status values decode as pending.
package io
