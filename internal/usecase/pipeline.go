package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"DataPipeline/internal/domain"
)

// RunnerDeps wires the stages of a full run. Ingestion is optional.
type RunnerDeps struct {
	Ingestion      *IngestionPipeline
	Validation     *ValidationPipeline
	Transformation *TransformationPipeline
	NewRunID       func() string
	Logger         *slog.Logger
}

// RunSummary reports what a full run did.
type RunSummary struct {
	Run        domain.RunInfo
	Ingested   []string
	Validation ValidationOutcome
	Transform  TransformResult
}

// Runner chains ingestion, validation and transformation. A failed
// validation stops the run before anything is transformed.
type Runner struct {
	ingestion      *IngestionPipeline
	validation     *ValidationPipeline
	transformation *TransformationPipeline
	newRunID       func() string
	logger         *slog.Logger
}

// NewRunner constructs the full-run orchestration.
func NewRunner(deps RunnerDeps) *Runner {
	r := &Runner{
		ingestion:      deps.Ingestion,
		validation:     deps.Validation,
		transformation: deps.Transformation,
		newRunID:       deps.NewRunID,
		logger:         orDiscard(deps.Logger),
	}
	if r.newRunID == nil {
		r.newRunID = uuid.NewString
	}
	return r
}

// NewRunID returns a fresh run identifier.
func (r *Runner) NewRunID() string { return r.newRunID() }

// Run executes every stage under one run id.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{Run: domain.RunInfo{ID: r.newRunID(), StartedAt: time.Now()}}
	logger := r.logger.With("run_id", summary.Run.ID)
	logger.Info("pipeline run started")

	if r.validation == nil || r.transformation == nil {
		return summary, fmt.Errorf("%w: runner needs validation and transformation", domain.ErrConfiguration)
	}

	if r.ingestion != nil {
		summary.Run.Stage = domain.StageIngestion
		ingested, err := r.ingestion.Run(ctx, summary.Run.ID)
		if err != nil {
			return summary, fmt.Errorf("ingestion: %w", err)
		}
		summary.Ingested = ingested
	}

	summary.Run.Stage = domain.StageValidation
	outcome, err := r.validation.Run(ctx, summary.Run.ID)
	summary.Validation = outcome
	if err != nil {
		return summary, fmt.Errorf("validation: %w", err)
	}
	if !outcome.Passed {
		logger.Error("validation gate closed, skipping transformation", "message", outcome.Message)
		return summary, fmt.Errorf("validation gate: %w", outcome.Report.Err())
	}

	summary.Run.Stage = domain.StageTransformation
	result, err := r.transformation.Run(ctx, summary.Run.ID)
	summary.Transform = result
	if err != nil {
		return summary, fmt.Errorf("transformation: %w", err)
	}

	logger.Info("pipeline run completed", "elapsed", time.Since(summary.Run.StartedAt).String())
	return summary, nil
}
