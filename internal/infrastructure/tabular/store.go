package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/format"
	"DataPipeline/internal/fsutil"
	"DataPipeline/internal/ports"
)

// FileStore loads and writes dataset files, picking the codec by extension.
type FileStore struct {
	registry *format.Registry
	logger   *slog.Logger
}

var (
	_ ports.DatasetLoader = (*FileStore)(nil)
	_ ports.DatasetWriter = (*FileStore)(nil)
)

// NewFileStore wires a registry; nil means CSV and JSON records.
func NewFileStore(reg *format.Registry, logger *slog.Logger) *FileStore {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{registry: reg, logger: logger.With("component", "tabular")}
}

// DefaultRegistry holds the CSV and JSON records codecs.
func DefaultRegistry() *format.Registry {
	return format.NewRegistry(NewCSV(), NewJSONRecords())
}

// Load reads the file at path.
func (s *FileStore) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	codec, err := s.registry.ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: data file not found: %s", domain.ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := codec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.logger.Info("dataset loaded", "path", path, "rows", ds.Len(), "columns", len(ds.Columns()))
	return ds, nil
}

// WriteDataset replaces the file at path with the serialized dataset.
func (s *FileStore) WriteDataset(ctx context.Context, path string, ds *domain.Dataset) error {
	codec, err := s.registry.ForPath(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := fsutil.WriteFile(ctx, path, func(w io.Writer) error {
		return codec.Encode(w, ds)
	}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Debug("dataset written", "path", path, "format", codec.Name(), "rows", ds.Len())
	return nil
}
