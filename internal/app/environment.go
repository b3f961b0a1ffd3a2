package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/fsutil"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// Profile is one named runtime configuration: extra capability search
// paths, environment variables and credential material.
type Profile struct {
	SearchPaths []string
	Env         map[string]string
	Credentials map[string]string
}

// RuntimeConfig holds the server's base profile plus every named
// environment profile declared in the configuration files.
type RuntimeConfig struct {
	Defaults Profile
	Profiles map[string]Profile
}

type profileBlock struct {
	SearchPaths []string          `hcl:"search_paths,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Credentials map[string]string `hcl:"credentials,optional"`
}

type environmentBlock struct {
	Name        string            `hcl:"name,label"`
	SearchPaths []string          `hcl:"search_paths,optional"`
	Env         map[string]string `hcl:"env,optional"`
	Credentials map[string]string `hcl:"credentials,optional"`
}

type runtimeRoot struct {
	Defaults     *profileBlock       `hcl:"defaults,block"`
	Environments []*environmentBlock `hcl:"environment,block"`
	Remain       hcl.Body            `hcl:",remain"`
}

// LoadRuntimeConfig reads every .hcl file under the given paths and merges
// their defaults and environment blocks into one runtime configuration.
func LoadRuntimeConfig(ctx context.Context, paths ...string) (*RuntimeConfig, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindHCLFiles(paths...)
	if err != nil {
		return nil, err
	}

	cfg := &RuntimeConfig{Profiles: make(map[string]Profile)}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse runtime config file %s: %w", file, diags)
		}
		var root runtimeRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode runtime config file %s: %w", file, diags)
		}

		if root.Defaults != nil {
			cfg.Defaults.SearchPaths = append(cfg.Defaults.SearchPaths, root.Defaults.SearchPaths...)
			cfg.Defaults.Env = mergeStringMaps(cfg.Defaults.Env, root.Defaults.Env)
			cfg.Defaults.Credentials = mergeStringMaps(cfg.Defaults.Credentials, root.Defaults.Credentials)
		}
		for _, env := range root.Environments {
			if _, exists := cfg.Profiles[env.Name]; exists {
				return nil, fmt.Errorf("runtime environment '%s' declared more than once", env.Name)
			}
			cfg.Profiles[env.Name] = Profile{
				SearchPaths: env.SearchPaths,
				Env:         env.Env,
				Credentials: env.Credentials,
			}
		}
	}

	logger.Debug("Runtime configuration loaded.", "files", len(files), "environments", len(cfg.Profiles))
	return cfg, nil
}

// Resolve merges the base profile, the profile named by the options, and
// the per-request overrides into the concrete resolution environment for
// one run. The receiver is never mutated: runs stay independent under
// concurrency.
func (c *RuntimeConfig) Resolve(opts *workflow.RuntimeOptions) *workflow.ResolutionEnv {
	env := &workflow.ResolutionEnv{
		SearchPaths: append([]string(nil), c.Defaults.SearchPaths...),
		Env:         mergeStringMaps(nil, c.Defaults.Env),
		Credentials: mergeStringMaps(nil, c.Defaults.Credentials),
	}

	if opts == nil {
		return env
	}

	if opts.Environment != "" {
		if profile, ok := c.Profiles[opts.Environment]; ok {
			env.SearchPaths = append(env.SearchPaths, profile.SearchPaths...)
			env.Env = mergeStringMaps(env.Env, profile.Env)
			env.Credentials = mergeStringMaps(env.Credentials, profile.Credentials)
		}
	}

	env.SearchPaths = append(env.SearchPaths, opts.ComponentSearchPaths...)
	env.Env = mergeStringMaps(env.Env, opts.EnvironmentVariables)
	env.Credentials = mergeStringMaps(env.Credentials, opts.Credentials)
	if len(opts.ConfigOverrides) > 0 {
		env.Overrides = make(map[string]any, len(opts.ConfigOverrides))
		for key, value := range opts.ConfigOverrides {
			env.Overrides[key] = value
		}
	}
	return env
}

func mergeStringMaps(base, extra map[string]string) map[string]string {
	if base == nil && extra == nil {
		return nil
	}
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
