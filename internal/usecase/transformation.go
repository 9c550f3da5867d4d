package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/ports"
	"DataPipeline/internal/transform"
)

// TransformationSettings selects the input file and the feature steps.
type TransformationSettings struct {
	DataPath               string
	CategoricalColumns     []string
	EncodeAllStringColumns bool
	DropColumns            []string
	TargetColumns          []string
}

// TransformationDeps wires the engines and adapters of the stage.
// Repository is optional.
type TransformationDeps struct {
	Loader     ports.DatasetLoader
	Encoder    *transform.Encoder
	Capper     *transform.Capper
	Scorer     *transform.MoodScorer
	Pruner     *transform.Pruner
	Artifacts  ports.ArtifactWriter
	Repository ports.RunRepository
	Logger     *slog.Logger
}

// TransformResult is the outcome of a transformation run.
type TransformResult struct {
	RunID       string
	Dataset     *domain.Dataset
	Tables      domain.EncoderSet
	Dropped     []string
	Diagnostics domain.Diagnostics
}

// TransformationPipeline runs encode, cap, score, prune and target check,
// then writes the artifacts. Any failure before the write aborts the run
// and nothing is written.
type TransformationPipeline struct {
	settings   TransformationSettings
	loader     ports.DatasetLoader
	encoder    *transform.Encoder
	capper     *transform.Capper
	scorer     *transform.MoodScorer
	pruner     *transform.Pruner
	artifacts  ports.ArtifactWriter
	repository ports.RunRepository
	logger     *slog.Logger
}

// NewTransformationPipeline constructs the stage; nil engines get defaults.
func NewTransformationPipeline(settings TransformationSettings, deps TransformationDeps) *TransformationPipeline {
	logger := orDiscard(deps.Logger)
	p := &TransformationPipeline{
		settings:   settings,
		loader:     deps.Loader,
		encoder:    deps.Encoder,
		capper:     deps.Capper,
		scorer:     deps.Scorer,
		pruner:     deps.Pruner,
		artifacts:  deps.Artifacts,
		repository: deps.Repository,
		logger:     logger,
	}
	if p.encoder == nil {
		p.encoder = transform.NewEncoder(logger)
	}
	if p.capper == nil {
		p.capper = transform.NewCapper(transform.DefaultCaps, logger)
	}
	if p.scorer == nil {
		p.scorer = transform.NewMoodScorer(logger)
	}
	if p.pruner == nil {
		p.pruner = transform.NewPruner(transform.AlwaysDrop, logger)
	}
	return p
}

// Run executes the stage for one run id.
func (p *TransformationPipeline) Run(ctx context.Context, runID string) (TransformResult, error) {
	if p.loader == nil || p.artifacts == nil {
		return TransformResult{}, fmt.Errorf("%w: transformation pipeline is not wired", domain.ErrConfiguration)
	}
	logger := p.logger.With("run_id", runID, "stage", domain.StageTransformation)
	logger.Info("starting data transformation", "path", p.settings.DataPath)

	result, err := p.derive(ctx, logger, runID)
	if err != nil {
		logger.Error("data transformation failed", "error", err, "kind", domain.Classify(err))
		return TransformResult{}, err
	}

	if err := p.artifacts.Write(ctx, result.Dataset, result.Tables); err != nil {
		logger.Error("artifacts not saved", "error", err)
		return TransformResult{}, fmt.Errorf("save artifacts: %w", err)
	}

	if p.repository != nil {
		if err := p.repository.SaveEncoders(ctx, runID, result.Tables); err != nil {
			logger.Warn("encoder lookups not persisted", "error", err)
		}
	}

	logger.Info("data transformation completed",
		"rows", result.Dataset.Len(),
		"columns", len(result.Dataset.Columns()),
		"encoders", result.Tables.Len(),
		"dropped", result.Dropped,
		"warnings", result.Diagnostics.Messages())
	return result, nil
}

func (p *TransformationPipeline) derive(ctx context.Context, logger *slog.Logger, runID string) (TransformResult, error) {
	result := TransformResult{RunID: runID}

	ds, err := p.loader.Load(ctx, p.settings.DataPath)
	if err != nil {
		return result, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", "rows", ds.Len(), "columns", len(ds.Columns()))

	columns := p.settings.CategoricalColumns
	if p.settings.EncodeAllStringColumns {
		columns = transform.StringColumns(ds)
	}
	encoded, err := p.encoder.FitTransform(ds, columns)
	if err != nil {
		return result, fmt.Errorf("encode: %w", err)
	}
	result.Tables = encoded.Tables
	result.Diagnostics = append(result.Diagnostics, encoded.Diagnostics...)
	if err := ctx.Err(); err != nil {
		return result, err
	}

	capped, err := p.capper.Apply(encoded.Dataset)
	if err != nil {
		return result, fmt.Errorf("cap: %w", err)
	}
	result.Diagnostics = append(result.Diagnostics, capped.Diagnostics...)

	scored, err := p.scorer.Derive(capped.Dataset)
	if err != nil {
		return result, fmt.Errorf("derive mood score: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	pruned := p.pruner.Drop(scored, p.settings.DropColumns)
	result.Dataset = pruned.Dataset
	result.Dropped = pruned.Dropped
	result.Diagnostics = append(result.Diagnostics, pruned.Diagnostics...)

	for _, target := range transform.MissingTargets(result.Dataset, p.settings.TargetColumns) {
		msg := fmt.Sprintf("Target column %s not found", target)
		logger.Warn(msg)
		result.Diagnostics.Add("target", msg)
	}

	return result, ctx.Err()
}
