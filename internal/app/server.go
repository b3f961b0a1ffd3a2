package app

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/executor"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/runstore"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// newServer wires every HTTP route onto a fiber application.
func (a *App) newServer() *fiber.App {
	srv := fiber.New(fiber.Config{AppName: "datapizza-backend"})

	srv.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":         "datapizza-visual-editor-backend",
			"workflowVersion": workflow.FormatVersion,
			"capabilities":    a.registry.References(),
		})
	})

	srv.Post("/workflow/import", a.handleNormalize)
	srv.Post("/workflow/export", a.handleNormalize)
	srv.Post("/workflow/validate", a.handleValidate)
	srv.Post("/workflow/execute", a.handleExecute)

	srv.Post("/workflow/runs", a.handleStartRun)
	srv.Get("/workflow/runs", a.handleListRuns)
	srv.Get("/workflow/runs/:id", a.handleRunStatus)
	srv.Get("/workflow/runs/:id/logs", a.handleRunLogs)
	srv.Post("/workflow/runs/:id/retry", a.handleRetryRun)
	srv.Post("/workflow/runs/:id/archive", a.handleArchiveRun)

	return srv
}

// handleNormalize parses and validates a workflow document, echoing the
// normalized form back. Import and export share this contract.
func (a *App) handleNormalize(c fiber.Ctx) error {
	def, issues, err := workflow.ParseDefinition(c.Body())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"valid":  false,
			"issues": []string{err.Error()},
		})
	}
	if len(issues) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"valid":  false,
			"issues": issues,
		})
	}
	return c.JSON(def)
}

func (a *App) handleValidate(c fiber.Ctx) error {
	_, issues, err := workflow.ParseDefinition(c.Body())
	if err != nil {
		return c.JSON(fiber.Map{"valid": false, "issues": []string{err.Error()}})
	}
	if len(issues) > 0 {
		return c.JSON(fiber.Map{"valid": false, "issues": issues})
	}
	return c.JSON(fiber.Map{"valid": true, "issues": []string{}})
}

// handleExecute runs a workflow synchronously and returns the execution
// result directly.
func (a *App) handleExecute(c fiber.Ctx) error {
	def, opts, issues, err := workflow.ParseExecutionRequest(c.Body())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"valid":  false,
			"issues": []string{err.Error()},
		})
	}
	if len(issues) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"valid":  false,
			"issues": issues,
		})
	}

	exec := a.resolveExecutor()
	result, err := exec.Run(c.Context(), def, opts, nil)
	if err != nil {
		var remoteErr *executor.RemoteError
		if errors.As(err, &remoteErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": remoteErr.Message})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if opts != nil {
		runtime := map[string]any{}
		if existing, ok := result.Outputs["runtime"].(map[string]any); ok {
			runtime = existing
		}
		if opts.Environment != "" {
			runtime["environment"] = opts.Environment
		}
		if len(opts.ConfigOverrides) > 0 {
			runtime["configOverrides"] = opts.ConfigOverrides
		}
		if len(runtime) > 0 {
			if result.Outputs == nil {
				result.Outputs = map[string]any{}
			}
			result.Outputs["runtime"] = runtime
		}
	}

	return c.JSON(result)
}

// handleStartRun enqueues an asynchronous run and returns its initial
// status immediately.
func (a *App) handleStartRun(c fiber.Ctx) error {
	def, opts, issues, err := workflow.ParseExecutionRequest(c.Body())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"valid":  false,
			"issues": []string{err.Error()},
		})
	}
	if len(issues) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"valid":  false,
			"issues": issues,
		})
	}

	view := a.runs.Start(def, opts, a.resolveExecutor())
	return c.JSON(view)
}

func (a *App) handleListRuns(c fiber.Ctx) error {
	includeArchived := c.Query("include_archived") == "true"
	return c.JSON(a.runs.List(includeArchived))
}

func (a *App) handleRunStatus(c fiber.Ctx) error {
	view, err := a.runs.Status(c.Params("id"))
	if err != nil {
		return a.runError(c, c.Params("id"), err)
	}
	return c.JSON(view)
}

func (a *App) handleRunLogs(c fiber.Ctx) error {
	after := 0
	if raw := c.Query("after"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "query parameter 'after' must be an integer",
			})
		}
		after = parsed
	}

	page, err := a.runs.Logs(c.Params("id"), after)
	if err != nil {
		return a.runError(c, c.Params("id"), err)
	}
	return c.JSON(page)
}

func (a *App) handleRetryRun(c fiber.Ctx) error {
	view, err := a.runs.Retry(c.Params("id"), a.resolveExecutor())
	if err != nil {
		return a.runError(c, c.Params("id"), err)
	}
	return c.JSON(view)
}

func (a *App) handleArchiveRun(c fiber.Ctx) error {
	summary, err := a.runs.Archive(c.Params("id"))
	if err != nil {
		return a.runError(c, c.Params("id"), err)
	}
	return c.JSON(summary)
}

func (a *App) runError(c fiber.Ctx, runID string, err error) error {
	if errors.Is(err, runstore.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Run '" + runID + "' not found",
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
