package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/ports"
	"DataPipeline/internal/validation"
)

// Status messages written under the verdict line.
const (
	MessageFilesFailed = "File validation failed"
	MessageAllPassed   = "All validations completed successfully"
	MessageSomeFailed  = "Some validation categories failed"
)

// ValidationSettings locates the dataset to validate.
type ValidationSettings struct {
	DataDir       string
	DataFile      string
	RequiredFiles []string
}

// ValidationDeps wires the driven adapters of the validation stage.
// Summary, Repository and Notifier are optional.
type ValidationDeps struct {
	Engine     *validation.Engine
	Loader     ports.DatasetLoader
	Status     ports.StatusWriter
	Summary    ports.SummaryWriter
	Repository ports.RunRepository
	Notifier   ports.Notifier
	Logger     *slog.Logger
}

// ValidationOutcome is the verdict of one validation run.
type ValidationOutcome struct {
	RunID   string
	Report  *domain.ValidationReport
	Message string
	Passed  bool
}

// ValidationPipeline gates on file presence, then runs the column, quality
// and range categories and persists the status report.
type ValidationPipeline struct {
	settings   ValidationSettings
	engine     *validation.Engine
	loader     ports.DatasetLoader
	status     ports.StatusWriter
	summary    ports.SummaryWriter
	repository ports.RunRepository
	notifier   ports.Notifier
	logger     *slog.Logger
}

// NewValidationPipeline constructs the validation stage.
func NewValidationPipeline(settings ValidationSettings, deps ValidationDeps) *ValidationPipeline {
	return &ValidationPipeline{
		settings:   settings,
		engine:     deps.Engine,
		loader:     deps.Loader,
		status:     deps.Status,
		summary:    deps.Summary,
		repository: deps.Repository,
		notifier:   deps.Notifier,
		logger:     orDiscard(deps.Logger),
	}
}

// Run validates the configured dataset. A failed verdict is not an error;
// errors mean the stage could not complete (unloadable data, status not saved).
func (p *ValidationPipeline) Run(ctx context.Context, runID string) (ValidationOutcome, error) {
	if p.engine == nil || p.loader == nil || p.status == nil {
		return ValidationOutcome{}, fmt.Errorf("%w: validation pipeline is not wired", domain.ErrConfiguration)
	}
	logger := p.logger.With("run_id", runID, "stage", domain.StageValidation)
	logger.Info("starting data validation", "dir", p.settings.DataDir, "file", p.settings.DataFile)

	report := domain.NewValidationReport()
	outcome := ValidationOutcome{RunID: runID, Report: report}

	fileResult := p.engine.CheckFilesExist(p.settings.RequiredFiles, p.settings.DataDir)
	report.Record(domain.CategoryFile, fileResult)
	if !fileResult.Status {
		outcome.Message = MessageFilesFailed
		logger.Error("file validation failed", "reason", fileResult.Message)
		return outcome, p.finish(ctx, logger, outcome)
	}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	path := filepath.Join(p.settings.DataDir, p.settings.DataFile)
	ds, err := p.loader.Load(ctx, path)
	if err != nil {
		report.Record(domain.CategoryColumn, domain.Fail(fmt.Sprintf("Error loading data: %v", err)))
		outcome.Message = MessageSomeFailed
		logger.Error("load dataset failed", "path", path, "error", err, "kind", domain.Classify(err))
		if finishErr := p.finish(ctx, logger, outcome); finishErr != nil {
			return outcome, fmt.Errorf("load dataset: %w (status: %v)", err, finishErr)
		}
		return outcome, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("dataset loaded", "rows", ds.Len(), "columns", len(ds.Columns()))

	p.engine.Validate(ds, report)

	if p.summary != nil {
		if err := p.summary.WriteSummary(ctx, domain.Summarize(ds)); err != nil {
			logger.Warn("data summary not saved", "error", err)
		}
	}

	outcome.Passed = report.OverallStatus()
	if outcome.Passed {
		outcome.Message = MessageAllPassed
		logger.Info("all validations passed")
	} else {
		outcome.Message = MessageSomeFailed
		logger.Warn("some validations failed", "error", report.Err())
	}

	return outcome, p.finish(ctx, logger, outcome)
}

// finish saves the status report and fans it out to the optional sinks.
// Only the status file is mandatory.
func (p *ValidationPipeline) finish(ctx context.Context, logger *slog.Logger, outcome ValidationOutcome) error {
	for _, c := range outcome.Report.Recorded() {
		res, _ := outcome.Report.Result(c)
		logger.Info("validation result", "category", c, "status", res.Status, "message", res.Message)
	}

	if err := p.status.WriteStatus(ctx, outcome.Report, outcome.Message); err != nil {
		logger.Error("status report not saved", "error", err)
		return fmt.Errorf("save status: %w", err)
	}

	if p.repository != nil {
		if err := p.repository.SaveValidation(ctx, outcome.RunID, outcome.Report); err != nil {
			logger.Warn("validation results not persisted", "error", err)
		}
	}

	if p.notifier != nil && !outcome.Report.OverallStatus() {
		if err := p.notifier.PublishReport(ctx, outcome.Report.Render(outcome.Message)); err != nil {
			logger.Warn("validation report not published", "error", err)
		}
	}
	return nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
