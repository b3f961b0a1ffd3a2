// Package delay pauses a workflow branch for a fixed duration, mostly
// useful for demos and timeout testing.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
)

// Module implements the capability.Module interface for this package.
type Module struct{}

// Sleep blocks for the requested duration or until the invocation deadline
// cuts it short.
func Sleep(ctx context.Context, args map[string]any) (any, error) {
	duration, err := parseDuration(args["duration"])
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return map[string]any{"slept": duration.String()}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func parseDuration(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid 'duration' parameter: %w", err)
		}
		return d, nil
	case float64:
		// JSON numbers are seconds.
		return time.Duration(v * float64(time.Second)), nil
	case int:
		return time.Duration(v) * time.Second, nil
	case nil:
		return 0, fmt.Errorf("delay capability requires a 'duration' parameter")
	default:
		return 0, fmt.Errorf("invalid 'duration' parameter: expected a duration string or seconds")
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *capability.Registry) {
	r.Register("datapizza.modules.delay.Sleep", &capability.Entry{
		Slots: []string{"duration"},
		Fn:    capability.Handler(Sleep),
	})
}
