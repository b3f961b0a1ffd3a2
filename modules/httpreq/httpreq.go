// Package httpreq exposes an outbound HTTP request capability. Credentials
// from the run's resolution environment are attached as bearer auth when
// present.
package httpreq

import (
	"context"
	"fmt"
	"strings"

	"resty.dev/v3"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
)

// Module implements the capability.Module interface for this package. The
// resty client is shared across invocations.
type Module struct {
	client *resty.Client
}

// New builds the module with its own HTTP client.
func New() *Module {
	return &Module{client: resty.New()}
}

// Close releases the underlying HTTP client.
func (m *Module) Close() error {
	return m.client.Close()
}

// Request performs one HTTP call described by the bound arguments.
func (m *Module) Request(ctx context.Context, args map[string]any) (any, error) {
	url, ok := args["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("http capability requires a non-empty 'url' parameter")
	}

	method := "GET"
	if raw, ok := args["method"].(string); ok && raw != "" {
		method = strings.ToUpper(raw)
	}

	req := m.client.R().SetContext(ctx)
	if headers, ok := args["headers"].(map[string]any); ok {
		for name, value := range headers {
			req.SetHeader(name, fmt.Sprint(value))
		}
	}
	if body, ok := args["body"]; ok && body != nil {
		req.SetHeader("Content-Type", "application/json")
		req.SetBody(body)
	}
	if env := capability.ResolutionEnvFromContext(ctx); env != nil {
		if token, ok := env.Credentials["api_token"]; ok && token != "" {
			req.SetAuthToken(token)
		}
	}

	res, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	return map[string]any{
		"statusCode": res.StatusCode(),
		"body":       res.String(),
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *capability.Registry) {
	r.Register("datapizza.modules.http.Request", &capability.Entry{
		Slots: []string{"url", "method", "headers", "body"},
		Fn:    capability.Handler(m.Request),
	})
}
