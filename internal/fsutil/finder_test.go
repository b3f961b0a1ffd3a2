package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# test"), 0o644))
}

func TestFindHCLFiles(t *testing.T) {
	t.Run("walks directories recursively", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "top.hcl"))
		touch(t, filepath.Join(dir, "nested", "inner.hcl"))
		touch(t, filepath.Join(dir, "nested", "notes.txt"))

		files, err := FindHCLFiles(dir)
		require.NoError(t, err)
		assert.Len(t, files, 2)
		for _, f := range files {
			assert.Equal(t, ".hcl", filepath.Ext(f))
		}
	})

	t.Run("accepts single files and dedupes", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "only.hcl")
		touch(t, file)

		files, err := FindHCLFiles(file, file, dir)
		require.NoError(t, err)
		assert.Equal(t, []string{file}, files)
	})

	t.Run("ignores non-hcl single files", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "readme.md")
		touch(t, file)

		files, err := FindHCLFiles(file)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("missing and empty paths are skipped", func(t *testing.T) {
		files, err := FindHCLFiles("", filepath.Join(t.TempDir(), "ghost"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
