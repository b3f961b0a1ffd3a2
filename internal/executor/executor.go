// Package executor drives workflow runs: the local engine executes the
// graph node by node in schedule order, the remote engine forwards the
// whole graph to a peer service. Both report progress through the same
// event stream consumed by the run store.
package executor

import (
	"context"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// Executor runs one workflow end to end, emitting step and log events as
// it goes. Implementations must not retain def or opts beyond the call.
type Executor interface {
	Run(ctx context.Context, def *workflow.Definition, opts *workflow.RuntimeOptions, events chan<- Event) (*Result, error)
}

// RunStatus is the binary top-level outcome of a run.
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusFailure RunStatus = "failure"
)

// StepStatus is the per-node execution state.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// WorkflowScope is the pseudo node id used for failures that concern the
// whole graph rather than a single node, such as an unschedulable graph.
const WorkflowScope = "__workflow__"

// Step is the final execution record of one node.
type Step struct {
	NodeID  string     `json:"nodeId"`
	Status  StepStatus `json:"status"`
	Details string     `json:"details,omitempty"`
}

// Result is the outcome of one execution attempt.
type Result struct {
	RunID   string         `json:"runId"`
	Status  RunStatus      `json:"status"`
	Steps   []Step         `json:"steps"`
	Outputs map[string]any `json:"outputs"`
}
