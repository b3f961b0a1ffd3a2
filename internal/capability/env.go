package capability

import (
	"context"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// envKey is an unexported type to prevent collisions with context keys
// from other packages.
type envKey struct{}

var resolutionEnvKey = envKey{}

// WithResolutionEnv returns a context carrying the run's capability
// resolution environment. Handlers read credentials and configuration
// overrides from it instead of from process globals, keeping concurrent
// runs independent.
func WithResolutionEnv(ctx context.Context, env *workflow.ResolutionEnv) context.Context {
	return context.WithValue(ctx, resolutionEnvKey, env)
}

// ResolutionEnvFromContext extracts the run's resolution environment, or
// nil when none was attached.
func ResolutionEnvFromContext(ctx context.Context) *workflow.ResolutionEnv {
	if env, ok := ctx.Value(resolutionEnvKey).(*workflow.ResolutionEnv); ok {
		return env
	}
	return nil
}
