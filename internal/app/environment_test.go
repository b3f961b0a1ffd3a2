package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

func writeRuntimeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadRuntimeConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and environments decode", func(t *testing.T) {
		dir := t.TempDir()
		writeRuntimeConfig(t, dir, "runtime.hcl", `
defaults {
  search_paths = ["/opt/datapizza/components"]
  env = {
    REGION = "eu-west-1"
  }
}

environment "staging" {
  search_paths = ["/opt/staging"]
  env = {
    REGION = "eu-central-1"
  }
  credentials = {
    api_token = "staging-token"
  }
}

environment "production" {
  credentials = {
    api_token = "prod-token"
  }
}
`)
		cfg, err := LoadRuntimeConfig(ctx, dir)
		require.NoError(t, err)

		assert.Equal(t, []string{"/opt/datapizza/components"}, cfg.Defaults.SearchPaths)
		assert.Equal(t, "eu-west-1", cfg.Defaults.Env["REGION"])
		require.Len(t, cfg.Profiles, 2)
		assert.Equal(t, "staging-token", cfg.Profiles["staging"].Credentials["api_token"])
	})

	t.Run("duplicate environment name rejected", func(t *testing.T) {
		dir := t.TempDir()
		writeRuntimeConfig(t, dir, "a.hcl", `environment "dup" {}`)
		writeRuntimeConfig(t, dir, "b.hcl", `environment "dup" {}`)

		_, err := LoadRuntimeConfig(ctx, dir)
		assert.ErrorContains(t, err, "runtime environment 'dup' declared more than once")
	})

	t.Run("missing path yields an empty config", func(t *testing.T) {
		cfg, err := LoadRuntimeConfig(ctx, filepath.Join(t.TempDir(), "absent"))
		require.NoError(t, err)
		assert.Empty(t, cfg.Profiles)
	})
}

func TestRuntimeConfigResolve(t *testing.T) {
	cfg := &RuntimeConfig{
		Defaults: Profile{
			SearchPaths: []string{"/base"},
			Env:         map[string]string{"REGION": "eu-west-1", "TIER": "base"},
			Credentials: map[string]string{"api_token": "base-token"},
		},
		Profiles: map[string]Profile{
			"staging": {
				SearchPaths: []string{"/staging"},
				Env:         map[string]string{"REGION": "eu-central-1"},
				Credentials: map[string]string{"api_token": "staging-token"},
			},
		},
	}

	t.Run("nil options resolve to the defaults", func(t *testing.T) {
		env := cfg.Resolve(nil)
		assert.Equal(t, []string{"/base"}, env.SearchPaths)
		assert.Equal(t, "base-token", env.Credentials["api_token"])
	})

	t.Run("profile layers over the defaults", func(t *testing.T) {
		env := cfg.Resolve(&workflow.RuntimeOptions{Environment: "staging"})
		assert.Equal(t, []string{"/base", "/staging"}, env.SearchPaths)
		assert.Equal(t, "eu-central-1", env.Env["REGION"])
		assert.Equal(t, "base", env.Env["TIER"])
		assert.Equal(t, "staging-token", env.Credentials["api_token"])
	})

	t.Run("request options win over everything", func(t *testing.T) {
		env := cfg.Resolve(&workflow.RuntimeOptions{
			Environment:          "staging",
			ComponentSearchPaths: []string{"/request"},
			EnvironmentVariables: map[string]string{"REGION": "us-east-1"},
			Credentials:          map[string]string{"api_token": "request-token"},
			ConfigOverrides:      map[string]any{"retries": 5},
		})
		assert.Equal(t, []string{"/base", "/staging", "/request"}, env.SearchPaths)
		assert.Equal(t, "us-east-1", env.Env["REGION"])
		assert.Equal(t, "request-token", env.Credentials["api_token"])
		assert.Equal(t, 5, env.Overrides["retries"])
	})

	t.Run("unknown profile is ignored", func(t *testing.T) {
		env := cfg.Resolve(&workflow.RuntimeOptions{Environment: "ghost"})
		assert.Equal(t, []string{"/base"}, env.SearchPaths)
	})

	t.Run("resolving never mutates the receiver", func(t *testing.T) {
		cfg.Resolve(&workflow.RuntimeOptions{
			Environment:          "staging",
			EnvironmentVariables: map[string]string{"REGION": "mutated"},
		})
		assert.Equal(t, "eu-west-1", cfg.Defaults.Env["REGION"])
		assert.Equal(t, "eu-central-1", cfg.Profiles["staging"].Env["REGION"])
	})
}
