package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/schedule"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/telemetry"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// Local executes a workflow inside this process: compile the schedule, then
// resolve, bind, invoke and normalize each node in order. Nodes of one run
// always execute serially; the first failure halts the remaining nodes,
// since downstream nodes could not receive valid inputs once an ancestor
// failed.
type Local struct {
	registry    *capability.Registry
	nodeTimeout time.Duration
	resolveEnv  EnvResolver
	telemetry   *telemetry.Emitter
}

// EnvResolver merges the options of one run into the capability-resolution
// environment for that run. Retried runs replay their stored options, so
// the environment must be derived at run time, not frozen into the
// executor.
type EnvResolver func(opts *workflow.RuntimeOptions) *workflow.ResolutionEnv

// NewLocal builds a local executor. resolveEnv may be nil when no
// resolution environment applies.
func NewLocal(registry *capability.Registry, nodeTimeout time.Duration, resolveEnv EnvResolver, emitter *telemetry.Emitter) *Local {
	return &Local{
		registry:    registry,
		nodeTimeout: nodeTimeout,
		resolveEnv:  resolveEnv,
		telemetry:   emitter,
	}
}

// nodeFailure pairs a node-scoped error with its classification for
// telemetry. All node failures are fatal to the run.
type nodeFailure struct {
	kind string
	err  error
}

// Run implements Executor.
func (e *Local) Run(ctx context.Context, def *workflow.Definition, opts *workflow.RuntimeOptions, events chan<- Event) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("workflow", def.Metadata.Name)
	em := emitter{events: events}
	runID := newRunID()
	started := time.Now()

	if e.resolveEnv != nil {
		if env := e.resolveEnv(opts); env != nil {
			ctx = capability.WithResolutionEnv(ctx, env)
		}
	}
	e.telemetry.RunStarted(ctx, "local")

	order, incoming, err := schedule.Compile(def)
	if err != nil {
		logger.Error("Workflow graph is unschedulable.", "error", err)
		em.step(WorkflowScope, StepFailed, err.Error())
		em.log(LevelError, "", err.Error())
		e.telemetry.RunFailed(ctx, "local", "graph_unschedulable")
		return &Result{
			RunID:   runID,
			Status:  StatusFailure,
			Steps:   []Step{{NodeID: WorkflowScope, Status: StepFailed, Details: err.Error()}},
			Outputs: map[string]any{},
		}, nil
	}

	nodes := make(map[string]workflow.Node, len(def.Nodes))
	for _, node := range def.Nodes {
		nodes[node.ID] = node
	}

	results := make(map[string]any, len(order))
	steps := make([]Step, 0, len(order))
	failed := false

	for _, nodeID := range order {
		node := nodes[nodeID]
		em.step(nodeID, StepRunning, "")
		em.log(LevelInfo, nodeID, fmt.Sprintf("Executing node '%s'", node.Label))
		e.telemetry.StepStarted(ctx, nodeID, string(node.Kind))
		stepStarted := time.Now()

		output, failure := e.runNode(ctx, node, incoming[nodeID], results)
		if failure != nil {
			details := failure.err.Error()
			logger.Error("Node execution failed.", "node", nodeID, "error", failure.err)
			em.step(nodeID, StepFailed, details)
			em.log(LevelError, nodeID, details)
			e.telemetry.StepFailed(ctx, nodeID, string(node.Kind), failure.kind, time.Since(stepStarted))
			steps = append(steps, Step{NodeID: nodeID, Status: StepFailed, Details: details})
			failed = true
			break
		}

		results[nodeID] = output
		em.step(nodeID, StepCompleted, "")
		em.log(LevelInfo, nodeID, fmt.Sprintf("Node '%s' completed", node.Label))
		e.telemetry.StepCompleted(ctx, nodeID, string(node.Kind), time.Since(stepStarted))
		steps = append(steps, Step{NodeID: nodeID, Status: StepCompleted})
	}

	status := StatusSuccess
	if failed {
		status = StatusFailure
	}
	e.telemetry.RunCompleted(ctx, "local", string(status), time.Since(started))

	return &Result{
		RunID:  runID,
		Status: status,
		Steps:  steps,
		Outputs: map[string]any{
			"results":     results,
			"completedAt": time.Now().UTC().Format(time.RFC3339),
			"nodeCount":   len(def.Nodes),
			"edgeCount":   len(def.Edges),
		},
	}, nil
}

// runNode executes one node: extract the capability reference, parse
// parameters, gather upstream inputs, resolve, bind, invoke under the
// deadline and normalize the output.
func (e *Local) runNode(ctx context.Context, node workflow.Node, upstream []string, results map[string]any) (any, *nodeFailure) {
	ref, failure := capabilityReference(node)
	if failure != nil {
		return nil, failure
	}

	var rawParams any
	if node.Data != nil {
		rawParams = node.Data["parameters"]
	}
	params, err := capability.NormalizeParameters(rawParams)
	if err != nil {
		return nil, &nodeFailure{kind: "invalid_parameters", err: err}
	}

	inputs := make(map[string]any, len(upstream))
	var missing []string
	for _, upstreamID := range upstream {
		value, ok := results[upstreamID]
		if !ok {
			missing = append(missing, upstreamID)
			continue
		}
		inputs[upstreamID] = value
	}
	if len(missing) > 0 {
		return nil, &nodeFailure{
			kind: "missing_upstream_results",
			err:  fmt.Errorf("missing results from upstream nodes: %s", strings.Join(missing, ", ")),
		}
	}

	entry, err := e.registry.Resolve(ref)
	if err != nil {
		return nil, &nodeFailure{kind: "capability_load_error", err: err}
	}

	args, err := capability.BindArguments(entry, params, inputs)
	if err != nil {
		return nil, &nodeFailure{kind: "unexpected_parameters", err: err}
	}

	output, err := capability.Invoke(ctx, entry, args, e.nodeTimeout)
	if err != nil {
		return nil, &nodeFailure{kind: invocationErrorKind(err), err: err}
	}

	return capability.Normalize(output), nil
}

func capabilityReference(node workflow.Node) (string, *nodeFailure) {
	missing := &nodeFailure{
		kind: "missing_capability_reference",
		err:  fmt.Errorf("node '%s' does not define a capability reference", node.ID),
	}
	if node.Data == nil {
		return "", missing
	}
	ref, ok := node.Data["capability"].(string)
	if !ok || strings.TrimSpace(ref) == "" {
		return "", missing
	}
	return ref, nil
}

func invocationErrorKind(err error) string {
	var timeoutErr *capability.TimeoutError
	var unexpectedErr *capability.UnexpectedError
	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &unexpectedErr):
		return "unexpected_capability_error"
	case errors.Is(err, capability.ErrNotInvocable):
		return "not_invocable"
	default:
		return "invocation_error"
	}
}

func newRunID() string {
	return "run_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
