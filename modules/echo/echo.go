// Package echo provides the simplest built-in capability: it reflects its
// arguments back, which makes it useful for wiring and smoke tests.
package echo

import (
	"context"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
)

// Module implements the capability.Module interface for this package.
type Module struct{}

// Echo returns its message and any extra parameters unchanged.
func Echo(ctx context.Context, args map[string]any) (any, error) {
	out := map[string]any{}
	if message, ok := args["message"]; ok {
		out["echo"] = message
	}
	if params, ok := args["parameters"].(map[string]any); ok && len(params) > 0 {
		out["parameters"] = params
	}
	return out, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *capability.Registry) {
	r.Register("datapizza.modules.echo.Echo", &capability.Entry{
		Slots: []string{"message", "parameters"},
		Fn:    capability.Handler(Echo),
	})
}
