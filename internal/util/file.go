// Package util provides small filesystem helpers.
package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to path using a temp file and rename, so a
// reader never sees a partially written file.
//
// On Windows os.Rename fails when the destination exists, so an existing
// file is moved aside first and restored if the rename fails.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	bakPath := path + ".bak"
	originalExists := false
	if _, err := os.Stat(path); err == nil {
		originalExists = true
		if err := os.Rename(path, bakPath); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("backup existing file: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if originalExists {
			_ = os.Rename(bakPath, path)
		}
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	if originalExists {
		_ = os.Remove(bakPath)
	}
	return nil
}
