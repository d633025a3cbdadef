package repository

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/franbe7/XLBALL/internal/constants"
)

// SnapshotWriter is the durable write primitive behind a flush.
type SnapshotWriter interface {
	WriteSnapshot(path string, data []byte) error
}

// FileWriter replaces the target file through a temp file and rename, so a
// reader never sees a partially written snapshot.
type FileWriter struct{}

func (FileWriter) WriteSnapshot(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, constants.SnapshotFileMode); err != nil {
		return fmt.Errorf("failed to chmod temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
