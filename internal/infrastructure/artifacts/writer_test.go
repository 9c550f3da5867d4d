package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/infrastructure/tabular"
)

func sampleOutput(t *testing.T) (*domain.Dataset, domain.EncoderSet) {
	t.Helper()

	ds, err := domain.NewDataset([]string{"Gender", "Gender_encoded", "Mood_Score"}, [][]domain.Value{
		{domain.String("Male"), domain.Int(1), domain.Float(55.5)},
		{domain.String("Female"), domain.Int(0), domain.Float(40)},
		{domain.String("Unknown"), domain.Int(2), domain.Missing()},
	})
	require.NoError(t, err)

	var set domain.EncoderSet
	set.Add(domain.FitEncoderTable("Gender", []string{"Male", "Female", "Unknown", "Male"}))
	set.Add(domain.FitEncoderTable("Stress_Level", []string{"Low", "High"}))
	return ds, set
}

func TestWriterEmitsEveryArtifact(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dataDir := filepath.Join(root, "data_transformation", "transformed")
	lookupsDir := filepath.Join(root, "data_transformation", "lookups")
	w := NewWriter(dataDir, lookupsDir, tabular.NewFileStore(nil, nil), nil)

	ds, set := sampleOutput(t)
	require.NoError(t, w.Write(context.Background(), ds, set))

	for _, p := range []string{
		filepath.Join(dataDir, TransformedCSV),
		filepath.Join(dataDir, TransformedJSON),
		filepath.Join(dataDir, LabelEncoders),
		filepath.Join(lookupsDir, ColumnEncodings),
		filepath.Join(lookupsDir, "Gender_mapping.csv"),
		filepath.Join(lookupsDir, "Gender_mapping.json"),
		filepath.Join(lookupsDir, "Stress_Level_mapping.csv"),
		filepath.Join(lookupsDir, "Stress_Level_mapping.json"),
	} {
		_, err := os.Stat(p)
		require.NoError(t, err, p)
	}

	raw, err := os.ReadFile(filepath.Join(dataDir, LabelEncoders))
	require.NoError(t, err)
	var encoders map[string]struct {
		Classes  []string `json:"classes"`
		NClasses int      `json:"n_classes"`
	}
	require.NoError(t, json.Unmarshal(raw, &encoders))
	assert.Equal(t, []string{"Female", "Male", "Unknown"}, encoders["Gender"].Classes)
	assert.Equal(t, 3, encoders["Gender"].NClasses)
	assert.Less(t, strings.Index(string(raw), "Gender"), strings.Index(string(raw), "Stress_Level"))

	raw, err = os.ReadFile(filepath.Join(lookupsDir, ColumnEncodings))
	require.NoError(t, err)
	var lookups map[string]struct {
		OriginalValues []string          `json:"original_values"`
		EncodedValues  []int             `json:"encoded_values"`
		Mapping        map[string]int    `json:"mapping"`
		ReverseMapping map[string]string `json:"reverse_mapping"`
	}
	require.NoError(t, json.Unmarshal(raw, &lookups))
	gender := lookups["Gender"]
	assert.Equal(t, []int{0, 1, 2}, gender.EncodedValues)
	assert.Equal(t, map[string]int{"Female": 0, "Male": 1, "Unknown": 2}, gender.Mapping)
	assert.Equal(t, map[string]string{"0": "Female", "1": "Male", "2": "Unknown"}, gender.ReverseMapping)

	raw, err = os.ReadFile(filepath.Join(lookupsDir, "Stress_Level_mapping.csv"))
	require.NoError(t, err)
	assert.Equal(t, "original_value,encoded_value\nHigh,0\nLow,1\n", string(raw))

	raw, err = os.ReadFile(filepath.Join(dataDir, TransformedJSON))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Mood_Score": null`)
}

type failingDatasets struct{ err error }

func (f failingDatasets) WriteDataset(context.Context, string, *domain.Dataset) error { return f.err }

func TestWriterAttemptsEveryWriteAndJoinsFailures(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	boom := errors.New("disk full")
	w := NewWriter(filepath.Join(root, "data"), filepath.Join(root, "lookups"), failingDatasets{err: boom}, nil)

	ds, set := sampleOutput(t)
	err := w.Write(context.Background(), ds, set)
	require.ErrorIs(t, err, boom)

	_, statErr := os.Stat(filepath.Join(root, "lookups", ColumnEncodings))
	assert.NoError(t, statErr, "lookup documents are written despite dataset failures")
	_, statErr = os.Stat(filepath.Join(root, "data", LabelEncoders))
	assert.NoError(t, statErr)
}

func TestWriterWithoutEncoders(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := NewWriter(root, filepath.Join(root, "lookups"), tabular.NewFileStore(nil, nil), nil)
	ds, _ := sampleOutput(t)
	require.NoError(t, w.Write(context.Background(), ds, domain.EncoderSet{}))

	raw, err := os.ReadFile(filepath.Join(root, LabelEncoders))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(raw))
}

func TestFileSafe(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a_b_c", fileSafe(`a/b\c`))
}
