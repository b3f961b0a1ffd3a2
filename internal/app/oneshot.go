package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/executor"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// RunFile executes a single workflow document from disk and writes the
// execution result as JSON to the application's output writer. A run that
// finishes with failures is reported as an error so the process exits
// non-zero.
func (a *App) RunFile(ctx context.Context, path string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("One-shot execution started.", "path", path)

	def, issues, err := workflow.LoadFile(path)
	if err != nil {
		return err
	}
	if len(issues) > 0 {
		return fmt.Errorf("workflow file %s is invalid:\n- %s", path, strings.Join(issues, "\n- "))
	}

	exec := a.resolveExecutor()
	result, err := exec.Run(ctx, def, nil, nil)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding execution result: %w", err)
	}
	fmt.Fprintln(a.outW, string(encoded))

	if result.Status != executor.StatusSuccess {
		return fmt.Errorf("workflow run %s finished with status %s", result.RunID, result.Status)
	}
	a.logger.Debug("One-shot execution finished.", "run_id", result.RunID)
	return nil
}
