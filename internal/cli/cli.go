// Package cli translates command-line arguments into an application
// configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("datapizza-backend", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
Datapizza visual editor backend - compiles and executes workflow graphs.

Usage:
  datapizza-backend [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Optional path to a workflow document (.yaml or .json). When given, the
    workflow is executed once and the result printed, without the server.

Options:
`)
		flagSet.PrintDefaults()
	}

	listenFlag := flagSet.String("listen", ":8080", "Address for the HTTP server to listen on.")
	workflowFlag := flagSet.String("workflow", "", "Path to a workflow document for one-shot execution.")
	wFlag := flagSet.String("w", "", "Path to a workflow document for one-shot execution (shorthand).")
	configFlag := flagSet.String("config", "", "Path to runtime environment profiles (.hcl file or directory).")
	modulesPathFlag := flagSet.String("modules-path", "modules", "Path to the directory containing capability manifests.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	executorFlag := flagSet.String("executor", "local", "Executor mode. Options: 'local' or 'remote'.")
	remoteURLFlag := flagSet.String("remote-url", "", "URL of the remote executor service (required for 'remote').")
	remoteTimeoutFlag := flagSet.Duration("remote-timeout", 30*time.Second, "Timeout for remote executor requests.")
	nodeTimeoutFlag := flagSet.Duration("node-timeout", 30*time.Second, "Timeout for a single capability invocation.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	workflowPath := ""
	if *workflowFlag != "" {
		workflowPath = *workflowFlag
	} else if *wFlag != "" {
		workflowPath = *wFlag
	} else if flagSet.NArg() > 0 {
		workflowPath = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		ListenAddr:    *listenFlag,
		ConfigPath:    *configFlag,
		ModulesPath:   *modulesPathFlag,
		WorkflowPath:  workflowPath,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
		ExecutorMode:  strings.ToLower(*executorFlag),
		RemoteURL:     *remoteURLFlag,
		RemoteTimeout: *remoteTimeoutFlag,
		NodeTimeout:   *nodeTimeoutFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
