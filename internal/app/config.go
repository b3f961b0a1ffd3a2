package app

import (
	"errors"
	"fmt"
	"time"
)

// Executor modes supported by the server.
const (
	ExecutorLocal  = "local"
	ExecutorRemote = "remote"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ListenAddr   string
	ConfigPath   string // runtime environment profiles, hcl files
	ModulesPath  string // capability manifests, hcl files
	WorkflowPath string // one-shot mode: execute this workflow and exit

	LogFormat string
	LogLevel  string

	ExecutorMode  string
	RemoteURL     string
	RemoteTimeout time.Duration
	NodeTimeout   time.Duration
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.ExecutorMode == "" {
		cfg.ExecutorMode = ExecutorLocal
	}
	switch cfg.ExecutorMode {
	case ExecutorLocal:
		// nothing extra to validate
	case ExecutorRemote:
		if cfg.RemoteURL == "" {
			return nil, errors.New("RemoteURL is required when the executor mode is 'remote'")
		}
	default:
		return nil, fmt.Errorf("invalid executor mode '%s': must be 'local' or 'remote'", cfg.ExecutorMode)
	}
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = 30 * time.Second
	}
	if cfg.NodeTimeout <= 0 {
		cfg.NodeTimeout = 30 * time.Second
	}

	return &cfg, nil
}
