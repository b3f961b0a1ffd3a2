package runstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/executor"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// scriptedExecutor replays a fixed event sequence and result, optionally
// blocking until released so tests can observe the running state.
type scriptedExecutor struct {
	mu      sync.Mutex
	events  []executor.Event
	result  *executor.Result
	err     error
	block   chan struct{}
	calls   int
	lastDef *workflow.Definition
}

func (f *scriptedExecutor) Run(ctx context.Context, def *workflow.Definition, opts *workflow.RuntimeOptions, events chan<- executor.Event) (*executor.Result, error) {
	f.mu.Lock()
	f.calls++
	f.lastDef = def
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	for _, event := range f.events {
		events <- event
	}
	return f.result, f.err
}

func (f *scriptedExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func storeDef() *workflow.Definition {
	return &workflow.Definition{
		Metadata: workflow.Metadata{Name: "stored-flow"},
		Nodes: []workflow.Node{
			{ID: "a", Kind: workflow.KindTask, Label: "a"},
			{ID: "b", Kind: workflow.KindTask, Label: "b"},
		},
		Edges: []workflow.Edge{
			{ID: "e1", Source: workflow.Connector{NodeID: "a"}, Target: workflow.Connector{NodeID: "b"}},
		},
	}
}

func stepEvent(nodeID string, status executor.StepStatus, details string) executor.Event {
	return executor.Event{
		Type:      executor.EventStep,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		Status:    status,
		Details:   details,
	}
}

func logEvent(nodeID, message string) executor.Event {
	return executor.Event{
		Type:      executor.EventLog,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		Level:     executor.LevelInfo,
		Message:   message,
	}
}

func successExecutor() *scriptedExecutor {
	return &scriptedExecutor{
		events: []executor.Event{
			stepEvent("a", executor.StepRunning, ""),
			logEvent("a", "working"),
			stepEvent("a", executor.StepCompleted, ""),
			stepEvent("b", executor.StepRunning, ""),
			stepEvent("b", executor.StepCompleted, ""),
		},
		result: &executor.Result{
			RunID:  "run_inner001",
			Status: executor.StatusSuccess,
			Steps: []executor.Step{
				{NodeID: "a", Status: executor.StepCompleted},
				{NodeID: "b", Status: executor.StepCompleted},
			},
			Outputs: map[string]any{"results": map[string]any{}},
		},
	}
}

func waitForStatus(t *testing.T, s *Store, runID string, want Status) StatusView {
	t.Helper()
	var view StatusView
	require.Eventually(t, func() bool {
		var err error
		view, err = s.Status(runID)
		require.NoError(t, err)
		return view.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return view
}

func TestStart(t *testing.T) {
	t.Run("returns a running snapshot with pending steps", func(t *testing.T) {
		s := New(nil)
		exec := &scriptedExecutor{result: successExecutor().result, block: make(chan struct{})}
		defer close(exec.block)

		view := s.Start(storeDef(), nil, exec)

		assert.Regexp(t, `^run_[0-9a-f]{8}$`, view.RunID)
		assert.Equal(t, StatusRunning, view.Status)
		assert.Equal(t, "stored-flow", view.WorkflowName)
		require.Len(t, view.Steps, 2)
		assert.Equal(t, "a", view.Steps[0].NodeID)
		assert.Equal(t, executor.StepPending, view.Steps[0].Status)
		assert.Equal(t, executor.StepPending, view.Steps[1].Status)
	})

	t.Run("run settles into success with synced steps", func(t *testing.T) {
		s := New(nil)
		view := s.Start(storeDef(), nil, successExecutor())

		final := waitForStatus(t, s, view.RunID, StatusSuccess)
		require.NotNil(t, final.Result)
		assert.Equal(t, executor.StatusSuccess, final.Result.Status)
		require.Len(t, final.Steps, 2)
		for _, step := range final.Steps {
			assert.Equal(t, executor.StepCompleted, step.Status)
			assert.NotEmpty(t, step.CompletedAt)
		}
		assert.Empty(t, final.Error)
	})

	t.Run("caller mutations after Start do not leak into the run", func(t *testing.T) {
		s := New(nil)
		def := storeDef()
		exec := &scriptedExecutor{result: successExecutor().result}

		view := s.Start(def, nil, exec)
		def.Metadata.Name = "mutated"

		got, err := s.Status(view.RunID)
		require.NoError(t, err)
		assert.Equal(t, "stored-flow", got.WorkflowName)
	})

	t.Run("failed step populates the run error", func(t *testing.T) {
		s := New(nil)
		exec := &scriptedExecutor{
			events: []executor.Event{
				stepEvent("a", executor.StepRunning, ""),
				stepEvent("a", executor.StepFailed, "node exploded"),
			},
			result: &executor.Result{
				RunID:  "run_inner002",
				Status: executor.StatusFailure,
				Steps:  []executor.Step{{NodeID: "a", Status: executor.StepFailed, Details: "node exploded"}},
			},
		}

		view := s.Start(storeDef(), nil, exec)
		final := waitForStatus(t, s, view.RunID, StatusFailure)
		assert.Equal(t, "node exploded", final.Error)
		assert.Equal(t, executor.StepFailed, final.Steps[0].Status)
		assert.Equal(t, "node exploded", final.Steps[0].Details)
		// the unreached node keeps its seeded pending state
		assert.Equal(t, executor.StepPending, final.Steps[1].Status)
	})

	t.Run("executor error fails the run", func(t *testing.T) {
		s := New(nil)
		exec := &scriptedExecutor{err: assert.AnError}

		view := s.Start(storeDef(), nil, exec)
		final := waitForStatus(t, s, view.RunID, StatusFailure)
		assert.Equal(t, assert.AnError.Error(), final.Error)
	})
}

func TestStatusAndList(t *testing.T) {
	t.Run("unknown run", func(t *testing.T) {
		s := New(nil)
		_, err := s.Status("run_missing1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list sorts newest first and hides archived by default", func(t *testing.T) {
		s := New(nil)
		first := s.Start(storeDef(), nil, successExecutor())
		waitForStatus(t, s, first.RunID, StatusSuccess)
		time.Sleep(2 * time.Millisecond)
		second := s.Start(storeDef(), nil, successExecutor())
		waitForStatus(t, s, second.RunID, StatusSuccess)

		runs := s.List(false)
		require.Len(t, runs, 2)
		assert.Equal(t, second.RunID, runs[0].RunID)
		assert.Equal(t, first.RunID, runs[1].RunID)

		_, err := s.Archive(first.RunID)
		require.NoError(t, err)

		runs = s.List(false)
		require.Len(t, runs, 1)
		assert.Equal(t, second.RunID, runs[0].RunID)

		runs = s.List(true)
		require.Len(t, runs, 2)
		assert.True(t, runs[1].Archived)
	})
}

func TestLogs(t *testing.T) {
	t.Run("cursor returns strictly newer entries", func(t *testing.T) {
		s := New(nil)
		view := s.Start(storeDef(), nil, successExecutor())
		waitForStatus(t, s, view.RunID, StatusSuccess)

		page, err := s.Logs(view.RunID, 0)
		require.NoError(t, err)
		require.NotEmpty(t, page.Logs)

		// Sequences ascend without gaps and the cursor points at the top.
		for i, entry := range page.Logs {
			assert.Equal(t, i+1, entry.Sequence)
			assert.Regexp(t, `^log_[0-9a-f]{10}$`, entry.ID)
		}
		assert.Equal(t, page.Logs[len(page.Logs)-1].Sequence, page.NextCursor)

		// Polling from the cursor yields nothing new.
		next, err := s.Logs(view.RunID, page.NextCursor)
		require.NoError(t, err)
		assert.Empty(t, next.Logs)
		assert.Equal(t, page.NextCursor, next.NextCursor)

		// A mid-stream cursor returns only the tail.
		mid, err := s.Logs(view.RunID, 2)
		require.NoError(t, err)
		require.NotEmpty(t, mid.Logs)
		assert.Equal(t, 3, mid.Logs[0].Sequence)
	})

	t.Run("first and last entries frame the run", func(t *testing.T) {
		s := New(nil)
		view := s.Start(storeDef(), nil, successExecutor())
		waitForStatus(t, s, view.RunID, StatusSuccess)

		page, err := s.Logs(view.RunID, 0)
		require.NoError(t, err)
		assert.Equal(t, "Workflow execution started", page.Logs[0].Message)
		assert.Equal(t, "Workflow execution completed successfully", page.Logs[len(page.Logs)-1].Message)
	})

	t.Run("unknown run", func(t *testing.T) {
		s := New(nil)
		_, err := s.Logs("run_missing1", 0)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRetry(t *testing.T) {
	t.Run("reuses the stored snapshot in a fresh run", func(t *testing.T) {
		s := New(nil)
		exec := successExecutor()
		view := s.Start(storeDef(), nil, exec)
		waitForStatus(t, s, view.RunID, StatusSuccess)

		retryExec := successExecutor()
		retried, err := s.Retry(view.RunID, retryExec)
		require.NoError(t, err)
		assert.NotEqual(t, view.RunID, retried.RunID)
		assert.Equal(t, "stored-flow", retried.WorkflowName)

		waitForStatus(t, s, retried.RunID, StatusSuccess)
		assert.Equal(t, 1, retryExec.callCount())
		assert.Len(t, s.List(false), 2)
	})

	t.Run("unknown run", func(t *testing.T) {
		s := New(nil)
		_, err := s.Retry("run_missing1", successExecutor())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestArchive(t *testing.T) {
	t.Run("archived runs remain pollable", func(t *testing.T) {
		s := New(nil)
		view := s.Start(storeDef(), nil, successExecutor())
		waitForStatus(t, s, view.RunID, StatusSuccess)

		summary, err := s.Archive(view.RunID)
		require.NoError(t, err)
		assert.True(t, summary.Archived)

		status, err := s.Status(view.RunID)
		require.NoError(t, err)
		assert.True(t, status.Archived)

		_, err = s.Logs(view.RunID, 0)
		assert.NoError(t, err)
	})

	t.Run("unknown run", func(t *testing.T) {
		s := New(nil)
		_, err := s.Archive("run_missing1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
