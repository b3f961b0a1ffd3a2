package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"resty.dev/v3"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/telemetry"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// RemoteErrorKind classifies remote execution failures.
type RemoteErrorKind string

const (
	RemoteTimeout        RemoteErrorKind = "timeout"
	RemoteStatus         RemoteErrorKind = "status"
	RemoteTransport      RemoteErrorKind = "transport"
	RemoteInvalidPayload RemoteErrorKind = "invalid_payload"
)

// RemoteError is the single failure type for delegated runs. Transport
// outcomes are folded into it so callers only handle one error shape.
type RemoteError struct {
	Kind    RemoteErrorKind
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Remote forwards a whole workflow to a peer execution service with one
// request and trusts the result it returns, including remote-reported
// per-step failures.
type Remote struct {
	client    *resty.Client
	url       string
	timeout   time.Duration
	telemetry *telemetry.Emitter
}

// NewRemote builds a remote executor for the given endpoint.
func NewRemote(url string, timeout time.Duration, headers map[string]string, emitter *telemetry.Emitter) *Remote {
	client := resty.New().SetTimeout(timeout)
	for name, value := range headers {
		client.SetHeader(name, value)
	}
	return &Remote{
		client:    client,
		url:       url,
		timeout:   timeout,
		telemetry: emitter,
	}
}

// Close releases the underlying HTTP client.
func (e *Remote) Close() error {
	return e.client.Close()
}

// Run implements Executor by serializing the graph plus options into a
// single request. Per-step outcomes reported by the peer are synced into
// the run record by the store when the result lands.
func (e *Remote) Run(ctx context.Context, def *workflow.Definition, opts *workflow.RuntimeOptions, events chan<- Event) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("workflow", def.Metadata.Name, "endpoint", e.url)
	em := emitter{events: events}
	started := time.Now()

	e.telemetry.RunStarted(ctx, "remote")
	em.log(LevelInfo, "", fmt.Sprintf("Forwarding workflow to remote executor at %s", e.url))

	res, err := e.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(workflow.ExecutionRequest{Workflow: def, Options: opts}).
		Post(e.url)
	if err != nil {
		remoteErr := classifyTransportError(err, e.timeout)
		logger.Error("Remote execution request failed.", "error", err)
		em.log(LevelError, "", remoteErr.Message)
		e.telemetry.RunFailed(ctx, "remote", string(remoteErr.Kind))
		return nil, remoteErr
	}

	if !res.IsSuccess() {
		remoteErr := &RemoteError{
			Kind:    RemoteStatus,
			Message: fmt.Sprintf("remote executor responded with HTTP status %d", res.StatusCode()),
		}
		logger.Error("Remote execution rejected.", "status", res.StatusCode())
		em.log(LevelError, "", remoteErr.Message)
		e.telemetry.RunFailed(ctx, "remote", string(remoteErr.Kind))
		return nil, remoteErr
	}

	var result Result
	if err := json.Unmarshal(res.Bytes(), &result); err != nil {
		remoteErr := &RemoteError{
			Kind:    RemoteInvalidPayload,
			Message: fmt.Sprintf("remote executor returned an unparseable payload: %v", err),
		}
		em.log(LevelError, "", remoteErr.Message)
		e.telemetry.RunFailed(ctx, "remote", string(remoteErr.Kind))
		return nil, remoteErr
	}

	em.log(LevelInfo, "", "Remote execution completed")
	e.telemetry.RunCompleted(ctx, "remote", string(result.Status), time.Since(started))
	return &result, nil
}

func classifyTransportError(err error, timeout time.Duration) *RemoteError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &RemoteError{
			Kind:    RemoteTimeout,
			Message: fmt.Sprintf("remote execution timed out after %s", timeout),
		}
	}
	return &RemoteError{
		Kind:    RemoteTransport,
		Message: fmt.Sprintf("remote execution transport failure: %v", err),
	}
}
