package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/ports"
)

// IngestionSettings names the files to acquire and where they land.
type IngestionSettings struct {
	LocalDir string
	Files    []string
	JSONCopy string
}

// IngestionDeps wires acquisition. Without a Source the files are expected
// to be present already.
type IngestionDeps struct {
	Source ports.DatasetSource
	Loader ports.DatasetLoader
	Writer ports.DatasetWriter
	Logger *slog.Logger
}

// IngestionPipeline downloads the raw files and optionally stores a JSON
// records copy of the first one.
type IngestionPipeline struct {
	settings IngestionSettings
	source   ports.DatasetSource
	loader   ports.DatasetLoader
	writer   ports.DatasetWriter
	logger   *slog.Logger
}

// NewIngestionPipeline constructs the stage.
func NewIngestionPipeline(settings IngestionSettings, deps IngestionDeps) *IngestionPipeline {
	return &IngestionPipeline{
		settings: settings,
		source:   deps.Source,
		loader:   deps.Loader,
		writer:   deps.Writer,
		logger:   orDiscard(deps.Logger),
	}
}

// Run acquires the files and returns the local paths that were written.
func (p *IngestionPipeline) Run(ctx context.Context, runID string) ([]string, error) {
	logger := p.logger.With("run_id", runID, "stage", domain.StageIngestion)

	var saved []string
	if p.source == nil {
		logger.Info("no source configured, using local files", "dir", p.settings.LocalDir)
	} else {
		var err error
		saved, err = p.source.Fetch(ctx, p.settings.LocalDir, p.settings.Files)
		if err != nil {
			logger.Error("data ingestion failed", "error", err)
			return nil, fmt.Errorf("fetch dataset: %w", err)
		}
		logger.Info("data ingestion completed", "files", saved)
	}

	if p.settings.JSONCopy == "" || len(p.settings.Files) == 0 {
		return saved, nil
	}
	if p.loader == nil || p.writer == nil {
		return saved, fmt.Errorf("%w: json copy needs a loader and a writer", domain.ErrConfiguration)
	}

	src := filepath.Join(p.settings.LocalDir, p.settings.Files[0])
	ds, err := p.loader.Load(ctx, src)
	if err != nil {
		return saved, fmt.Errorf("load for json copy: %w", err)
	}
	dest := filepath.Join(p.settings.LocalDir, p.settings.JSONCopy)
	if err := p.writer.WriteDataset(ctx, dest, ds); err != nil {
		return saved, fmt.Errorf("write json copy: %w", err)
	}
	logger.Info("json copy saved", "path", dest, "rows", ds.Len())
	return append(saved, dest), nil
}
