// Package telemetry emits named semantic events describing workflow
// execution. The engine only produces events; exporting, batching and
// storage belong to whatever Sink the host wires in. The default sink
// renders events as structured log lines.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
)

// Event is one semantic occurrence with its attributes.
type Event struct {
	Name  string
	Attrs []slog.Attr
}

// Sink receives semantic events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// LogSink renders events as structured log lines via the context logger.
type LogSink struct{}

// Emit implements Sink.
func (LogSink) Emit(ctx context.Context, event Event) {
	args := make([]any, 0, len(event.Attrs))
	for _, attr := range event.Attrs {
		args = append(args, attr)
	}
	ctxlog.FromContext(ctx).Info(event.Name, args...)
}

// Emitter provides typed helpers over a Sink. A nil *Emitter is valid and
// drops every event, so call sites never need to guard.
type Emitter struct {
	sink Sink
}

// NewEmitter wraps the given sink. A nil sink falls back to LogSink.
func NewEmitter(sink Sink) *Emitter {
	if sink == nil {
		sink = LogSink{}
	}
	return &Emitter{sink: sink}
}

func (e *Emitter) emit(ctx context.Context, name string, attrs ...slog.Attr) {
	if e == nil {
		return
	}
	e.sink.Emit(ctx, Event{Name: name, Attrs: attrs})
}

// RunStarted records the beginning of a workflow run.
func (e *Emitter) RunStarted(ctx context.Context, mode string) {
	e.emit(ctx, "workflow_run_started", slog.String("mode", mode))
}

// RunCompleted records a finished run with its final status.
func (e *Emitter) RunCompleted(ctx context.Context, mode, status string, duration time.Duration) {
	e.emit(ctx, "workflow_run_completed",
		slog.String("mode", mode),
		slog.String("status", status),
		slog.Duration("duration", duration),
	)
}

// RunFailed records a run aborted by an engine-level error.
func (e *Emitter) RunFailed(ctx context.Context, mode, errType string) {
	e.emit(ctx, "workflow_run_failed",
		slog.String("mode", mode),
		slog.String("error_type", errType),
	)
}

// StepStarted records a node beginning execution.
func (e *Emitter) StepStarted(ctx context.Context, nodeID, kind string) {
	e.emit(ctx, "workflow_step_started",
		slog.String("node_id", nodeID),
		slog.String("node_kind", kind),
	)
}

// StepCompleted records a node that finished successfully.
func (e *Emitter) StepCompleted(ctx context.Context, nodeID, kind string, duration time.Duration) {
	e.emit(ctx, "workflow_step_completed",
		slog.String("node_id", nodeID),
		slog.String("node_kind", kind),
		slog.Duration("duration", duration),
	)
}

// StepFailed records a node failure with its error classification.
func (e *Emitter) StepFailed(ctx context.Context, nodeID, kind, errType string, duration time.Duration) {
	e.emit(ctx, "workflow_step_failed",
		slog.String("node_id", nodeID),
		slog.String("node_kind", kind),
		slog.String("error_type", errType),
		slog.Duration("duration", duration),
	)
}
