package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseDefinition decodes a workflow document from JSON and validates it.
func ParseDefinition(data []byte) (*Definition, []string, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, nil, fmt.Errorf("invalid workflow document: %w", err)
	}
	if issues := def.Validate(); len(issues) > 0 {
		return nil, issues, nil
	}
	return &def, nil, nil
}

// ParseExecutionRequest accepts both the enveloped request contract
// ({workflow, options}) and a legacy bare workflow document.
func ParseExecutionRequest(data []byte) (*Definition, *RuntimeOptions, []string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid execution request: %w", err)
	}

	_, hasWorkflow := probe["workflow"]
	_, hasOptions := probe["options"]
	if !hasWorkflow && !hasOptions {
		def, issues, err := ParseDefinition(data)
		return def, nil, issues, err
	}

	var req ExecutionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid execution request: %w", err)
	}
	if req.Workflow == nil {
		return nil, nil, []string{"workflow: field is required"}, nil
	}
	if issues := req.Workflow.Validate(); len(issues) > 0 {
		return nil, nil, issues, nil
	}
	return req.Workflow, req.Options, nil, nil
}

// LoadFile reads a workflow document from disk. YAML and JSON are accepted;
// the format is chosen by file extension, defaulting to YAML.
func LoadFile(path string) (*Definition, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading workflow file: %w", err)
	}

	var def Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, nil, fmt.Errorf("invalid workflow file %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, nil, fmt.Errorf("invalid workflow file %s: %w", path, err)
		}
	}

	if issues := def.Validate(); len(issues) > 0 {
		return nil, issues, nil
	}
	return &def, nil, nil
}
