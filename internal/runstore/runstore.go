// Package runstore tracks workflow executions in memory so clients can
// poll them. It owns run identity, per-step status, the append-only log
// stream and the archive/retry operations.
//
// Concurrency model: the store's mutex is the only synchronization point
// and is held for O(1) bookkeeping only, never across I/O. Each run's
// executor reports through an event channel consumed by one dedicated
// goroutine, so a run record always has a single writer.
package runstore

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/executor"
)

// ErrNotFound is reported for operations on unknown run ids. Reads never
// silently return empty data.
var ErrNotFound = errors.New("no such run")

// Status is the run-level state. A run starts running and settles into
// exactly one of success or failure.
type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// StepView is the aggregated per-node information exposed when polling.
type StepView struct {
	NodeID      string              `json:"nodeId"`
	Status      executor.StepStatus `json:"status"`
	Details     string              `json:"details,omitempty"`
	StartedAt   string              `json:"startedAt,omitempty"`
	CompletedAt string              `json:"completedAt,omitempty"`
}

// Summary is the lightweight run representation for history timelines.
type Summary struct {
	RunID        string `json:"runId"`
	Status       Status `json:"status"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
	WorkflowName string `json:"workflowName"`
	Archived     bool   `json:"archived"`
}

// StatusView is the detailed payload returned when polling one run.
type StatusView struct {
	Summary
	Steps  []StepView       `json:"steps"`
	Result *executor.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// LogEntry is a single captured log line.
type LogEntry struct {
	ID        string            `json:"id"`
	Sequence  int               `json:"sequence"`
	Timestamp string            `json:"timestamp"`
	Message   string            `json:"message"`
	Level     executor.LogLevel `json:"level"`
	NodeID    string            `json:"nodeId,omitempty"`
}

// LogPage is a chunk of run logs plus the cursor for the next poll.
type LogPage struct {
	RunID      string     `json:"runId"`
	Logs       []LogEntry `json:"logs"`
	NextCursor int        `json:"nextCursor"`
}

func newRunID() string {
	return "run_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func newLogID() string {
	return "log_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
