package ports

import (
	"context"
	"time"

	"DataPipeline/internal/domain"
)

// DatasetSource acquires raw dataset files into a local directory.
type DatasetSource interface {
	Fetch(ctx context.Context, destDir string, files []string) ([]string, error)
}

// DatasetLoader reads a dataset file. Absent files yield domain.ErrMissingFile.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*domain.Dataset, error)
}

// DatasetWriter serializes a dataset to a file.
type DatasetWriter interface {
	WriteDataset(ctx context.Context, path string, ds *domain.Dataset) error
}

// StatusWriter persists the human-readable validation status.
type StatusWriter interface {
	WriteStatus(ctx context.Context, report *domain.ValidationReport, message string) error
}

// SummaryWriter persists the dataset profile.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, summary domain.Summary) error
}

// ArtifactWriter persists the transformed dataset and its encoder tables.
type ArtifactWriter interface {
	Write(ctx context.Context, ds *domain.Dataset, tables domain.EncoderSet) error
}

// RunRepository keeps validation verdicts and encoder lookups per run.
type RunRepository interface {
	SaveValidation(ctx context.Context, runID string, report *domain.ValidationReport) error
	SaveEncoders(ctx context.Context, runID string, tables domain.EncoderSet) error
}

// Notifier publishes status reports to chat or other channels.
type Notifier interface {
	PublishReport(ctx context.Context, text string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
