// Package fsutil bootstraps directories and writes files by atomic replace.
package fsutil

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	permDir  = 0o755
	permFile = 0o644
	bufSize  = 64 * 1024
)

// EnsureDirs creates every directory (and parents) that does not exist yet.
func EnsureDirs(logger *slog.Logger, dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, permDir); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		if logger != nil {
			logger.Debug("created directory", "path", dir)
		}
	}
	return nil
}

// WriteFile renders into a temp file next to path and renames it over path,
// so readers never observe a half-written file. Parent directories are created.
func WriteFile(ctx context.Context, path string, render func(w io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, permDir); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	bw := bufio.NewWriterSize(tmp, bufSize)
	if err := render(bw); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	_ = os.Chmod(tmpPath, permFile)

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
