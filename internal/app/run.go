package app

import (
	"context"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
)

// Run executes the main application logic based on the provided
// configuration: one-shot file execution when a workflow path is set,
// otherwise the HTTP server.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	defer func() {
		if a.remote != nil {
			a.remote.Close()
		}
	}()

	if a.config.WorkflowPath != "" {
		return a.RunFile(ctx, a.config.WorkflowPath)
	}

	srv := a.newServer()
	a.logger.Info("🚀 Backend listening.", "addr", a.config.ListenAddr, "executor", a.config.ExecutorMode)
	return srv.Listen(a.config.ListenAddr)
}
