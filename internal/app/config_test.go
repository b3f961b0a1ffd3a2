package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		cfg, err := NewConfig(Config{})
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.ListenAddr)
		assert.Equal(t, ExecutorLocal, cfg.ExecutorMode)
		assert.Equal(t, 30*time.Second, cfg.RemoteTimeout)
		assert.Equal(t, 30*time.Second, cfg.NodeTimeout)
	})

	t.Run("remote mode requires a url", func(t *testing.T) {
		_, err := NewConfig(Config{ExecutorMode: ExecutorRemote})
		assert.ErrorContains(t, err, "RemoteURL is required")

		cfg, err := NewConfig(Config{ExecutorMode: ExecutorRemote, RemoteURL: "http://peer/execute"})
		require.NoError(t, err)
		assert.Equal(t, ExecutorRemote, cfg.ExecutorMode)
	})

	t.Run("unknown mode rejected", func(t *testing.T) {
		_, err := NewConfig(Config{ExecutorMode: "mock"})
		assert.ErrorContains(t, err, "invalid executor mode 'mock'")
	})

	t.Run("explicit values survive", func(t *testing.T) {
		cfg, err := NewConfig(Config{
			ListenAddr:  ":9000",
			NodeTimeout: 5 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, 5*time.Second, cfg.NodeTimeout)
	})
}
