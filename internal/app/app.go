package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/executor"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/runstore"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/telemetry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *capability.Registry
	runtime   *RuntimeConfig
	telemetry *telemetry.Emitter
	runs      *runstore.Store

	remoteOnce sync.Once
	remote     *executor.Remote
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, cfg *Config, modules ...capability.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Create and populate the registry with Go capability handlers.
	reg := capability.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules()
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All capability modules registered.", "count", len(modules))

	// Cross-check the registered handlers against their manifests.
	if cfg.ModulesPath != "" {
		manifests, err := capability.LoadManifests(ctx, cfg.ModulesPath)
		if err != nil {
			// A failure to load manifests is a fatal startup error.
			panic(fmt.Errorf("failed to load capability manifests: %w", err))
		}
		if err := reg.ValidateManifests(ctx, manifests); err != nil {
			// This is a programmer error (mismatch between code and manifests).
			panic(err)
		}
		logger.Debug("Capability manifest validation passed.", "manifests", len(manifests))
	}

	runtime := &RuntimeConfig{Profiles: make(map[string]Profile)}
	if cfg.ConfigPath != "" {
		loaded, err := LoadRuntimeConfig(ctx, cfg.ConfigPath)
		if err != nil {
			panic(fmt.Errorf("failed to load runtime configuration: %w", err))
		}
		runtime = loaded
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		registry:  reg,
		runtime:   runtime,
		telemetry: telemetry.NewEmitter(nil),
		runs:      runstore.New(logger),
	}
}

// Registry returns the application's capability registry. This is primarily
// for testing.
func (a *App) Registry() *capability.Registry {
	return a.registry
}

// Runtime returns the application's runtime configuration. This is primarily
// for testing.
func (a *App) Runtime() *RuntimeConfig {
	return a.runtime
}

// resolveExecutor builds the executor for one request. Local executors
// resolve the environment from the options of each run, so retried runs
// replay their stored options; the remote client is shared and reused.
func (a *App) resolveExecutor() executor.Executor {
	if a.config.ExecutorMode == ExecutorRemote {
		a.remoteOnce.Do(func() {
			a.remote = executor.NewRemote(a.config.RemoteURL, a.config.RemoteTimeout, nil, a.telemetry)
		})
		return a.remote
	}
	return executor.NewLocal(a.registry, a.config.NodeTimeout, a.runtime.Resolve, a.telemetry)
}
