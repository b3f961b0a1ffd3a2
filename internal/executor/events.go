package executor

import "time"

// EventType discriminates the two event streams an executor produces.
type EventType string

const (
	EventStep EventType = "step"
	EventLog  EventType = "log"
)

// LogLevel classifies log events.
type LogLevel string

const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// Event is one progress report sent from an executor to the run store. The
// store consumes the channel on a single dedicated goroutine per run, which
// keeps the single-writer-per-run invariant without broad locking.
type Event struct {
	Type      EventType
	Timestamp time.Time

	// Step events.
	NodeID  string
	Status  StepStatus
	Details string

	// Log events.
	Level   LogLevel
	Message string
}

// emitter wraps the event channel with convenience constructors so the
// drive loop reads naturally.
type emitter struct {
	events chan<- Event
}

func (e emitter) step(nodeID string, status StepStatus, details string) {
	if e.events == nil {
		return
	}
	e.events <- Event{
		Type:      EventStep,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		Status:    status,
		Details:   details,
	}
}

func (e emitter) log(level LogLevel, nodeID, message string) {
	if e.events == nil {
		return
	}
	e.events <- Event{
		Type:      EventLog,
		Timestamp: time.Now().UTC(),
		NodeID:    nodeID,
		Level:     level,
		Message:   message,
	}
}
