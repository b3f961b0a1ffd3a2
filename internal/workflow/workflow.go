// Package workflow defines the workflow document contract shared with the
// visual editor: nodes, edges, metadata and the per-run runtime options.
// The engine treats a Definition as immutable once it has been validated;
// anything that needs to keep one across a goroutine boundary takes a Clone.
package workflow

// FormatVersion identifies the workflow document schema understood by this
// backend.
const FormatVersion = "datapizza.workflow/v1"

// NodeKind enumerates the node categories the editor can produce.
type NodeKind string

const (
	KindInput  NodeKind = "input"
	KindTask   NodeKind = "task"
	KindOutput NodeKind = "output"
)

// Author is the optional author record embedded in workflow metadata.
type Author struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Metadata describes a workflow independently from its graph.
type Metadata struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Author      *Author  `json:"author,omitempty" yaml:"author,omitempty"`
	ExternalID  string   `json:"externalId,omitempty" yaml:"externalId,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Point is a position on the editor canvas. The engine never interprets it.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Connector references one end of an edge.
type Connector struct {
	NodeID string `json:"nodeId" yaml:"nodeId"`
	PortID string `json:"portId,omitempty" yaml:"portId,omitempty"`
}

// Node is a single vertex of the workflow graph. Data carries the free-form
// node configuration, including the optional "capability" reference and
// "parameters" map consumed by the executor.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Kind     NodeKind       `json:"kind" yaml:"kind"`
	Label    string         `json:"label" yaml:"label"`
	Position Point          `json:"position" yaml:"position"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Edge declares a data dependency: Target consumes Source's result.
type Edge struct {
	ID       string         `json:"id" yaml:"id"`
	Source   Connector      `json:"source" yaml:"source"`
	Target   Connector      `json:"target" yaml:"target"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Definition is the full workflow document.
type Definition struct {
	Version    string         `json:"version" yaml:"version"`
	Metadata   Metadata       `json:"metadata" yaml:"metadata"`
	Nodes      []Node         `json:"nodes" yaml:"nodes"`
	Edges      []Edge         `json:"edges" yaml:"edges"`
	Extensions map[string]any `json:"extensions,omitempty" yaml:"extensions,omitempty"`
}

// RuntimeOptions influence how a single run resolves capabilities. They are
// consumed at the executor boundary and never interpreted by the scheduler.
type RuntimeOptions struct {
	Environment          string            `json:"environment,omitempty" yaml:"environment,omitempty"`
	ComponentSearchPaths []string          `json:"componentSearchPaths,omitempty" yaml:"componentSearchPaths,omitempty"`
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty" yaml:"environmentVariables,omitempty"`
	Credentials          map[string]string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	ConfigOverrides      map[string]any    `json:"configOverrides,omitempty" yaml:"configOverrides,omitempty"`
}

// ResolutionEnv is the concrete capability-resolution environment for one
// run: the merge of the server's runtime profiles with the per-request
// options. It replaces the process-global search-path and env mutation of
// earlier designs with a value threaded through the call.
type ResolutionEnv struct {
	SearchPaths []string
	Env         map[string]string
	Credentials map[string]string
	Overrides   map[string]any
}

// ExecutionRequest is the envelope accepted by the execution endpoints.
type ExecutionRequest struct {
	Workflow *Definition     `json:"workflow" yaml:"workflow"`
	Options  *RuntimeOptions `json:"options,omitempty" yaml:"options,omitempty"`
}
