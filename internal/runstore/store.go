package runstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/executor"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// stepState is the mutable per-node record inside a run.
type stepState struct {
	nodeID      string
	status      executor.StepStatus
	details     string
	startedAt   string
	completedAt string
}

// run is the record of one execution attempt. The definition and options
// snapshots are immutable after Start; everything else is guarded by the
// store mutex.
type run struct {
	id        string
	def       *workflow.Definition
	opts      *workflow.RuntimeOptions
	name      string
	status    Status
	createdAt time.Time
	updatedAt time.Time
	archived  bool
	result    *executor.Result
	errMsg    string
	stepOrder []string
	steps     map[string]*stepState
	logs      []LogEntry
	nextSeq   int
}

// Store is the run lifecycle manager.
type Store struct {
	mu     sync.Mutex
	runs   map[string]*run
	logger *slog.Logger
}

// New creates an empty run store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		runs:   make(map[string]*run),
		logger: logger.With("component", "workflow_run_store"),
	}
}

// Start registers a new run and launches the executor on its own
// goroutine, returning the run's initial status immediately. The
// definition and options are deep-copied so the caller may keep mutating
// its own copies safely.
func (s *Store) Start(def *workflow.Definition, opts *workflow.RuntimeOptions, exec executor.Executor) StatusView {
	snapshot := def.Clone()
	optsSnapshot := opts.Clone()
	now := time.Now()

	r := &run{
		id:        newRunID(),
		def:       snapshot,
		opts:      optsSnapshot,
		name:      snapshot.Metadata.Name,
		status:    StatusRunning,
		createdAt: now,
		updatedAt: now,
		steps:     make(map[string]*stepState, len(snapshot.Nodes)),
		stepOrder: make([]string, 0, len(snapshot.Nodes)),
	}
	for _, node := range snapshot.Nodes {
		r.steps[node.ID] = &stepState{nodeID: node.ID, status: executor.StepPending}
		r.stepOrder = append(r.stepOrder, node.ID)
	}

	s.mu.Lock()
	s.runs[r.id] = r
	view := r.statusView()
	s.mu.Unlock()

	go s.executeRun(r.id, snapshot, optsSnapshot, exec)

	s.logger.Info("workflow_run_enqueued", "run_id", r.id, "workflow", r.name)
	return view
}

// Retry starts a new run reusing the stored graph and options snapshot.
func (s *Store) Retry(runID string, exec executor.Executor) (StatusView, error) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		return StatusView{}, ErrNotFound
	}
	def, opts := r.def, r.opts
	s.mu.Unlock()

	return s.Start(def, opts, exec), nil
}

// Archive marks the run archived. It stays in storage and remains
// pollable; it only disappears from default listings.
func (s *Store) Archive(runID string) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return Summary{}, ErrNotFound
	}
	r.archived = true
	r.updatedAt = time.Now()
	s.logger.Info("workflow_run_archived", "run_id", runID)
	return r.summary(), nil
}

// Status returns the full snapshot of one run.
func (s *Store) Status(runID string) (StatusView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return StatusView{}, ErrNotFound
	}
	return r.statusView(), nil
}

// List returns run summaries sorted newest first.
func (s *Store) List(includeArchived bool) []Summary {
	s.mu.Lock()
	summaries := make([]Summary, 0, len(s.runs))
	order := make(map[string]time.Time, len(s.runs))
	for _, r := range s.runs {
		if r.archived && !includeArchived {
			continue
		}
		summaries = append(summaries, r.summary())
		order[r.id] = r.createdAt
	}
	s.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool {
		a, b := order[summaries[i].RunID], order[summaries[j].RunID]
		if !a.Equal(b) {
			return a.After(b)
		}
		return summaries[i].RunID > summaries[j].RunID
	})
	return summaries
}

// Logs returns the entries with sequence strictly greater than the cursor,
// in ascending sequence order, plus the highest sequence assigned so far.
func (s *Store) Logs(runID string, after int) (LogPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return LogPage{}, ErrNotFound
	}

	page := LogPage{RunID: runID, NextCursor: r.nextSeq, Logs: []LogEntry{}}
	for _, entry := range r.logs {
		if entry.Sequence > after {
			page.Logs = append(page.Logs, entry)
		}
	}
	return page, nil
}

// executeRun drives one run to completion in the background. Events from
// the executor are consumed by a single goroutine so the run record has
// exactly one writer.
func (s *Store) executeRun(runID string, def *workflow.Definition, opts *workflow.RuntimeOptions, exec executor.Executor) {
	ctx := ctxlog.WithLogger(context.Background(), s.logger.With("run_id", runID))

	events := make(chan executor.Event, 64)
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		for event := range events {
			s.applyEvent(runID, event)
		}
	}()

	s.appendLog(runID, executor.LevelInfo, "", "Workflow execution started", time.Now())

	result, err := exec.Run(ctx, def, opts, events)
	close(events)
	<-consumed

	if err != nil {
		s.logger.Error("workflow_run_unexpected_failure", "run_id", runID, "error", err)
		s.failRun(runID, err.Error())
		return
	}
	s.finalizeRun(runID, result)
}

func (s *Store) applyEvent(runID string, event executor.Event) {
	switch event.Type {
	case executor.EventStep:
		s.updateStep(runID, event)
	case executor.EventLog:
		s.appendLog(runID, event.Level, event.NodeID, event.Message, event.Timestamp)
	}
}

func (s *Store) updateStep(runID string, event executor.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return
	}
	step, ok := r.steps[event.NodeID]
	if !ok {
		step = &stepState{nodeID: event.NodeID}
		r.steps[event.NodeID] = step
		r.stepOrder = append(r.stepOrder, event.NodeID)
	}

	step.status = event.Status
	if event.Details != "" {
		step.details = event.Details
	}
	timestamp := formatTime(event.Timestamp)
	if event.Status == executor.StepRunning && step.startedAt == "" {
		step.startedAt = timestamp
	}
	if event.Status == executor.StepCompleted || event.Status == executor.StepFailed {
		if step.completedAt == "" {
			step.completedAt = timestamp
		}
		if event.Status == executor.StepFailed && r.errMsg == "" && event.Details != "" {
			r.errMsg = event.Details
		}
	}
	r.updatedAt = time.Now()
}

func (s *Store) appendLog(runID string, level executor.LogLevel, nodeID, message string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[runID]
	if !ok {
		return
	}
	r.nextSeq++
	r.logs = append(r.logs, LogEntry{
		ID:        newLogID(),
		Sequence:  r.nextSeq,
		Timestamp: formatTime(at),
		Message:   message,
		Level:     level,
		NodeID:    nodeID,
	})
	r.updatedAt = time.Now()
}

func (s *Store) finalizeRun(runID string, result *executor.Result) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		return
	}
	r.result = result
	r.status = Status(result.Status)
	r.updatedAt = time.Now()
	for _, step := range result.Steps {
		r.syncStep(step)
	}
	if r.status == StatusFailure && r.errMsg == "" {
		r.errMsg = "Workflow finished with errors"
	}
	status := r.status
	s.mu.Unlock()

	if status == StatusSuccess {
		s.appendLog(runID, executor.LevelInfo, "", "Workflow execution completed successfully", time.Now())
	} else {
		s.appendLog(runID, executor.LevelError, "", "Workflow execution finished with errors", time.Now())
	}
}

func (s *Store) failRun(runID string, message string) {
	s.mu.Lock()
	r, ok := s.runs[runID]
	if !ok {
		s.mu.Unlock()
		return
	}
	r.status = StatusFailure
	r.errMsg = message
	r.updatedAt = time.Now()
	s.mu.Unlock()

	s.appendLog(runID, executor.LevelError, "", message, time.Now())
}

// syncStep folds a final step result into the run record. Called with the
// store mutex held.
func (r *run) syncStep(step executor.Step) {
	state, ok := r.steps[step.NodeID]
	if !ok {
		state = &stepState{nodeID: step.NodeID}
		r.steps[step.NodeID] = state
		r.stepOrder = append(r.stepOrder, step.NodeID)
	}
	state.status = step.Status
	if step.Details != "" {
		state.details = step.Details
	}
	if (step.Status == executor.StepCompleted || step.Status == executor.StepFailed) && state.completedAt == "" {
		state.completedAt = formatTime(time.Now())
	}
	if step.Status == executor.StepFailed && r.errMsg == "" && step.Details != "" {
		r.errMsg = step.Details
	}
}

// summary renders the run as a Summary. Called with the store mutex held.
func (r *run) summary() Summary {
	return Summary{
		RunID:        r.id,
		Status:       r.status,
		CreatedAt:    formatTime(r.createdAt),
		UpdatedAt:    formatTime(r.updatedAt),
		WorkflowName: r.name,
		Archived:     r.archived,
	}
}

// statusView renders the full run snapshot. Called with the store mutex held.
func (r *run) statusView() StatusView {
	view := StatusView{
		Summary: r.summary(),
		Steps:   make([]StepView, 0, len(r.stepOrder)),
		Result:  r.result,
		Error:   r.errMsg,
	}
	for _, nodeID := range r.stepOrder {
		step := r.steps[nodeID]
		view.Steps = append(view.Steps, StepView{
			NodeID:      step.nodeID,
			Status:      step.status,
			Details:     step.details,
			StartedAt:   step.startedAt,
			CompletedAt: step.completedAt,
		})
	}
	return view
}
