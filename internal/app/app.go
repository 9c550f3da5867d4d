package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"DataPipeline/internal/config"
	"DataPipeline/internal/domain"
	"DataPipeline/internal/fsutil"
	"DataPipeline/internal/infrastructure/acquire"
	"DataPipeline/internal/infrastructure/artifacts"
	"DataPipeline/internal/infrastructure/report"
	"DataPipeline/internal/infrastructure/scheduler"
	"DataPipeline/internal/infrastructure/storage"
	"DataPipeline/internal/infrastructure/tabular"
	"DataPipeline/internal/infrastructure/telegram"
	"DataPipeline/internal/logging"
	"DataPipeline/internal/ports"
	"DataPipeline/internal/transform"
	"DataPipeline/internal/usecase"
	"DataPipeline/internal/validation"
)

const stopTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg            config.Config
	logger         *slog.Logger
	db             *sql.DB
	runs           *storage.PostgresRepository
	ingestion      *usecase.IngestionPipeline
	validation     *usecase.ValidationPipeline
	transformation *usecase.TransformationPipeline
	runner         *usecase.Runner
	scheduler      *usecase.Scheduler
}

// New builds the application: directories, adapters and pipelines.
// Postgres and Telegram are only wired when configured.
func New(ctx context.Context, cfg config.Config, schema domain.SchemaSpec, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	if err := fsutil.EnsureDirs(baseLogger.With("component", "bootstrap"),
		cfg.ArtifactsRoot,
		cfg.Ingestion.RootDir,
		cfg.Ingestion.LocalDataPath,
		cfg.Validation.RootDir,
		cfg.Transformation.RootDir,
		cfg.Transformation.TransformedDataPath,
		cfg.Transformation.LookupsDir,
	); err != nil {
		return nil, fmt.Errorf("bootstrap directories: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger}
	store := tabular.NewFileStore(nil, baseLogger)

	var repo ports.RunRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		pg := storage.NewPostgresRepository(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.runs = pg
		repo = pg
		baseLogger.Info("run store enabled", "driver", "postgres")
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	var source ports.DatasetSource
	if cfg.Ingestion.SourceURL != "" {
		source = acquire.NewHTTPSource(cfg.Ingestion.SourceURL, nil, baseLogger.With("component", "source"))
	}

	a.ingestion = usecase.NewIngestionPipeline(usecase.IngestionSettings{
		LocalDir: cfg.Ingestion.LocalDataPath,
		Files:    cfg.Ingestion.Files,
		JSONCopy: cfg.Ingestion.JSONCopy,
	}, usecase.IngestionDeps{
		Source: source,
		Loader: store,
		Writer: store,
		Logger: baseLogger.With("component", "ingestion"),
	})

	a.validation = usecase.NewValidationPipeline(usecase.ValidationSettings{
		DataDir:       cfg.Validation.UnzipDir,
		DataFile:      cfg.Validation.DataFile,
		RequiredFiles: cfg.Validation.AllRequiredFiles,
	}, usecase.ValidationDeps{
		Engine:     validation.NewEngine(schema, baseLogger.With("component", "validation")),
		Loader:     store,
		Status:     report.NewStatusFile(cfg.Validation.StatusFile, baseLogger),
		Summary:    report.NewSummaryFile(cfg.Validation.SummaryFile, baseLogger),
		Repository: repo,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "validation_pipeline"),
	})

	tLogger := baseLogger.With("component", "transformation")
	a.transformation = usecase.NewTransformationPipeline(usecase.TransformationSettings{
		DataPath:               cfg.Transformation.DataFilePath(),
		CategoricalColumns:     cfg.Transformation.CategoricalColumns,
		EncodeAllStringColumns: cfg.Transformation.EncodeAllStringColumns,
		DropColumns:            cfg.Transformation.DropColumns,
		TargetColumns:          cfg.Transformation.TargetColumns,
	}, usecase.TransformationDeps{
		Loader:     store,
		Encoder:    transform.NewEncoder(tLogger),
		Capper:     transform.NewCapper(caps(cfg.Transformation.Caps), tLogger),
		Scorer:     transform.NewMoodScorer(tLogger),
		Pruner:     transform.NewPruner(transform.AlwaysDrop, tLogger),
		Artifacts:  artifacts.NewWriter(cfg.Transformation.TransformedDataPath, cfg.Transformation.LookupsDir, store, baseLogger),
		Repository: repo,
		Logger:     tLogger,
	})

	a.runner = usecase.NewRunner(usecase.RunnerDeps{
		Ingestion:      a.ingestion,
		Validation:     a.validation,
		Transformation: a.transformation,
		NewRunID:       uuid.NewString,
		Logger:         baseLogger.With("component", "runner"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Every(), cfg.Scheduler.Location())
	a.scheduler = usecase.NewScheduler(driver, a.runner, baseLogger.With("component", "scheduler"))

	return a, nil
}

// caps orders the configured bounds by column so runs are reproducible.
func caps(limits map[string]float64) []transform.Cap {
	columns := make([]string, 0, len(limits))
	for c := range limits {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	out := make([]transform.Cap, 0, len(columns))
	for _, c := range columns {
		out = append(out, transform.Cap{Column: c, Max: limits[c]})
	}
	return out
}

// Ingest acquires the raw files.
func (a *Application) Ingest(ctx context.Context) ([]string, error) {
	return a.ingestion.Run(ctx, a.runner.NewRunID())
}

// Validate runs the validation stage on its own.
func (a *Application) Validate(ctx context.Context) (usecase.ValidationOutcome, error) {
	return a.validation.Run(ctx, a.runner.NewRunID())
}

// Transform runs the transformation stage on its own.
func (a *Application) Transform(ctx context.Context) (usecase.TransformResult, error) {
	return a.transformation.Run(ctx, a.runner.NewRunID())
}

// Run performs one full pipeline execution.
func (a *Application) Run(ctx context.Context) (usecase.RunSummary, error) {
	return a.runner.Run(ctx)
}

// Schedule re-runs the full pipeline until ctx is cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	a.logger.Info("scheduler started", "every", a.cfg.Scheduler.Every().String(), "timezone", a.cfg.Scheduler.Location().String())
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := a.scheduler.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	a.logger.Info("scheduler stopped")
	return nil
}

// Lookups reads back the encoder tables persisted for a run.
func (a *Application) Lookups(ctx context.Context, runID string, columns []string) (domain.EncoderSet, error) {
	if a.runs == nil {
		return domain.EncoderSet{}, fmt.Errorf("%w: database.dsn is not set, no run store to read", domain.ErrConfiguration)
	}
	return a.runs.LoadEncoders(ctx, runID, columns)
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
