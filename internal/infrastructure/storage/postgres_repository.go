package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/ports"
)

// Schema creates the tables used by the repository.
const Schema = `CREATE TABLE IF NOT EXISTS validation_results (
    run_id     TEXT NOT NULL,
    category   TEXT NOT NULL,
    status     BOOLEAN NOT NULL,
    message    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (run_id, category)
);
CREATE TABLE IF NOT EXISTS encoder_lookups (
    run_id      TEXT NOT NULL,
    column_name TEXT NOT NULL,
    code        INTEGER NOT NULL,
    value       TEXT NOT NULL,
    PRIMARY KEY (run_id, column_name, code)
);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository keeps validation verdicts and encoder lookups per run.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.RunRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates missing tables.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveValidation upserts one row per recorded category.
func (r *PostgresRepository) SaveValidation(ctx context.Context, runID string, report *domain.ValidationReport) error {
	if r.db == nil || report == nil || report.Len() == 0 {
		return nil
	}

	query, args, err := validationUpsert(runID, report).ToSql()
	if err != nil {
		return fmt.Errorf("build validation upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert validation: %w", err)
	}
	return nil
}

// SaveEncoders upserts every (column, code, value) triple of the tables.
func (r *PostgresRepository) SaveEncoders(ctx context.Context, runID string, tables domain.EncoderSet) error {
	if r.db == nil || tables.Len() == 0 {
		return nil
	}

	query, args, err := encoderUpsert(runID, tables).ToSql()
	if err != nil {
		return fmt.Errorf("build encoder upsert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert encoders: %w", err)
	}
	return nil
}

// LoadEncoders rebuilds the stored tables of a run for the given columns.
// Tables come back ordered by column name.
func (r *PostgresRepository) LoadEncoders(ctx context.Context, runID string, columns []string) (domain.EncoderSet, error) {
	var set domain.EncoderSet
	if r.db == nil || len(columns) == 0 {
		return set, nil
	}

	query, args, err := encoderSelect(runID, columns).ToSql()
	if err != nil {
		return set, fmt.Errorf("build encoder select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return set, fmt.Errorf("query encoders: %w", err)
	}

	var (
		current string
		values  []string
	)
	flush := func() error {
		if current == "" {
			return nil
		}
		table := domain.FitEncoderTable(current, values)
		for code, v := range values {
			if got, _ := table.Code(v); got != code {
				return fmt.Errorf("column %s: stored codes are not in sorted order", current)
			}
		}
		set.Add(table)
		return nil
	}

	for rows.Next() {
		var (
			column string
			code   int
			value  string
		)
		if err := rows.Scan(&column, &code, &value); err != nil {
			_ = rows.Close()
			return set, fmt.Errorf("scan encoder row: %w", err)
		}
		if column != current {
			if err := flush(); err != nil {
				_ = rows.Close()
				return set, err
			}
			current, values = column, nil
		}
		if code != len(values) {
			_ = rows.Close()
			return set, fmt.Errorf("column %s: code %d out of sequence", column, code)
		}
		values = append(values, value)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return set, fmt.Errorf("rows iteration: %w", rowsErr)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return set, fmt.Errorf("close rows: %w", closeErr)
	}
	if err := flush(); err != nil {
		return set, err
	}
	return set, nil
}

func validationUpsert(runID string, report *domain.ValidationReport) sq.InsertBuilder {
	b := psql.Insert("validation_results").Columns("run_id", "category", "status", "message")
	for _, c := range report.Recorded() {
		res, _ := report.Result(c)
		b = b.Values(runID, string(c), res.Status, res.Message)
	}
	return b.Suffix(`ON CONFLICT (run_id, category) DO UPDATE
              SET status = EXCLUDED.status,
                  message = EXCLUDED.message,
                  updated_at = NOW()`)
}

func encoderUpsert(runID string, tables domain.EncoderSet) sq.InsertBuilder {
	b := psql.Insert("encoder_lookups").Columns("run_id", "column_name", "code", "value")
	for _, t := range tables.Tables() {
		for code, value := range t.Classes() {
			b = b.Values(runID, t.Column(), code, value)
		}
	}
	return b.Suffix(`ON CONFLICT (run_id, column_name, code) DO UPDATE
              SET value = EXCLUDED.value`)
}

func encoderSelect(runID string, columns []string) sq.SelectBuilder {
	return psql.Select("column_name", "code", "value").
		From("encoder_lookups").
		Where(sq.Eq{"run_id": runID}).
		Where("column_name = ANY(?)", pq.Array(columns)).
		OrderBy("column_name", "code")
}
