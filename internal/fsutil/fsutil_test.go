package fsutil

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileOverwritesAndCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "status.txt")
	ctx := context.Background()

	require.NoError(t, WriteFile(ctx, path, func(w io.Writer) error {
		_, err := io.WriteString(w, "first version that is long")
		return err
	}))
	require.NoError(t, WriteFile(ctx, path, func(w io.Writer) error {
		_, err := io.WriteString(w, "second")
		return err
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))
}

func TestWriteFileKeepsOldContentOnRenderError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := WriteFile(context.Background(), path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be removed")
}

func TestWriteFileHonorsCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WriteFile(ctx, filepath.Join(t.TempDir(), "x"), func(io.Writer) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestEnsureDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	a := filepath.Join(root, "artifacts", "lookups")
	b := filepath.Join(root, "logs")
	require.NoError(t, EnsureDirs(nil, a, "", b, a))

	for _, d := range []string{a, b} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
