// Package template renders Go text templates over upstream results and
// node parameters.
package template

import (
	"context"
	"fmt"
	"strings"
	texttemplate "text/template"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
)

// Module implements the capability.Module interface for this package.
type Module struct{}

// renderer is the stateful form of the capability. It is registered as a
// factory so every invocation gets a fresh instance.
type renderer struct{}

// Invoke renders the 'template' argument with the node's inputs and
// parameters as template data.
func (renderer) Invoke(ctx context.Context, args map[string]any) (any, error) {
	source, ok := args["template"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("template capability requires a non-empty 'template' string parameter")
	}

	data := map[string]any{}
	if inputs, ok := args["inputs"].(map[string]any); ok {
		data["inputs"] = inputs
	}
	if params, ok := args["parameters"].(map[string]any); ok {
		data["parameters"] = params
	}

	tmpl, err := texttemplate.New("node").Option("missingkey=zero").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template execution failed: %w", err)
	}
	return map[string]any{"rendered": buf.String()}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *capability.Registry) {
	r.Register("datapizza.modules.template.Render", &capability.Entry{
		Slots: []string{"template", "inputs", "parameters"},
		Fn:    func() capability.Invocable { return renderer{} },
	})
}
