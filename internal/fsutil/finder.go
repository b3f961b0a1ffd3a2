// Package fsutil contains small filesystem helpers shared by the
// configuration loaders.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindHCLFiles walks all given paths and returns every .hcl file found,
// deduplicated, in walk order. Paths that do not exist are skipped: a
// configured-but-absent directory is not an error.
func FindHCLFiles(paths ...string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, dup := seen[p]; !dup {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}

		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}
