package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DataPipeline/internal/domain"
)

func TestValidationUpsertSQL(t *testing.T) {
	t.Parallel()

	rep := domain.NewValidationReport()
	rep.Record(domain.CategoryQuality, domain.Fail("Quality issues: Found 1 duplicate rows"))
	rep.Record(domain.CategoryFile, domain.Pass("All required files found"))

	query, args, err := validationUpsert("run-1", rep).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "INSERT INTO validation_results (run_id,category,status,message) VALUES ($1,$2,$3,$4),($5,$6,$7,$8)"), query)
	assert.Contains(t, query, "ON CONFLICT (run_id, category) DO UPDATE")
	assert.Equal(t, []any{
		"run-1", "FILE_VALIDATION", true, "All required files found",
		"run-1", "QUALITY_VALIDATION", false, "Quality issues: Found 1 duplicate rows",
	}, args)
}

func TestEncoderUpsertSQL(t *testing.T) {
	t.Parallel()

	var set domain.EncoderSet
	set.Add(domain.FitEncoderTable("Gender", []string{"Male", "Female"}))

	query, args, err := encoderUpsert("run-2", set).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO encoder_lookups (run_id,column_name,code,value)")
	assert.Contains(t, query, "ON CONFLICT (run_id, column_name, code)")
	assert.Equal(t, []any{"run-2", "Gender", 0, "Female", "run-2", "Gender", 1, "Male"}, args)
}

func TestEncoderSelectSQL(t *testing.T) {
	t.Parallel()

	query, args, err := encoderSelect("run-3", []string{"Gender", "Stress_Level"}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT column_name, code, value FROM encoder_lookups WHERE run_id = $1 AND column_name = ANY($2) ORDER BY column_name, code", query)
	require.Len(t, args, 2)
	assert.Equal(t, "run-3", args[0])
}

func TestRepositoryWithoutDatabaseIsNoop(t *testing.T) {
	t.Parallel()

	repo := NewPostgresRepository(nil)
	ctx := context.Background()

	rep := domain.NewValidationReport()
	rep.Record(domain.CategoryFile, domain.Pass("ok"))
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.SaveValidation(ctx, "r", rep))

	var set domain.EncoderSet
	set.Add(domain.FitEncoderTable("Gender", []string{"Male"}))
	require.NoError(t, repo.SaveEncoders(ctx, "r", set))

	loaded, err := repo.LoadEncoders(ctx, "r", []string{"Gender"})
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
