package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DataPipeline/internal/domain"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
artifacts_root: out
logging:
  level: debug
data_validation:
  unzip_dir: raw
  all_required_files: [a.csv, b.json]
data_transformation:
  categorical_columns: [Gender, Region]
  drop_columns: []
scheduler:
  interval: 12h
  timezone: Europe/Berlin
`)
	t.Setenv(databaseDSNEnv, "postgres://env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.ArtifactsRoot)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "raw", cfg.Validation.UnzipDir)
	assert.Equal(t, []string{"a.csv", "b.json"}, cfg.Validation.AllRequiredFiles)
	assert.Equal(t, "status.txt", filepath.Base(cfg.Validation.StatusFile))
	assert.Equal(t, []string{"Gender", "Region"}, cfg.Transformation.CategoricalColumns)
	assert.False(t, cfg.Transformation.EncodeAllStringColumns)
	assert.Empty(t, cfg.Transformation.DropColumns)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, 12*time.Hour, cfg.Scheduler.Every())
	assert.Equal(t, "Europe/Berlin", cfg.Scheduler.Location().String())
}

func TestLoadPlacesSummaryNextToStatusFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, "config.yaml", "data_validation:\n  status_file: "+filepath.Join(dir, "checks", "status.txt")+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "checks", "data_summary.json"), cfg.Validation.SummaryFile)

	explicit := writeFile(t, "explicit.yaml", "data_validation:\n  summary_file: profile.json\n")
	cfg, err = Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "profile.json", cfg.Validation.SummaryFile)
}

func TestLoadDefaultsWhenDefaultPathMissing(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(defaultConfigPath)
	require.NoError(t, err)
	assert.True(t, cfg.Transformation.EncodeAllStringColumns)
	assert.Equal(t, float64(6), cfg.Transformation.Caps["Physical_Activity_Hours"])
}

func TestLoadFailures(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"unknown key":    "artifact_root: x\n",
		"bad interval":   "scheduler:\n  interval: soon\n",
		"bad timezone":   "scheduler:\n  timezone: Mars/Olympus\n",
		"no categorical": "data_transformation:\n  encode_all_string_columns: false\n  categorical_columns: []\n",
		"negative cap":   "data_transformation:\n  caps:\n    Sleep_Hours: -1\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", body))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadExplicitMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestPathPrefersFlagThenEnv(t *testing.T) {
	t.Setenv(configPathEnv, "env.yaml")
	assert.Equal(t, "flag.yaml", Path("flag.yaml"))
	assert.Equal(t, "env.yaml", Path(""))
}

func TestParseSchemaKeepsOrderAndRanges(t *testing.T) {
	t.Parallel()

	spec, err := ParseSchema([]byte(`
COLUMNS:
  User_ID: object
  Age: int
  Sleep_Hours: float
RANGES:
  age:
    max: 99
  hours:
    columns: [Sleep_Hours]
    max: 16
`))
	require.NoError(t, err)

	cols := spec.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, "User_ID", cols[0].Name)
	assert.Equal(t, "Sleep_Hours", cols[2].Name)
	typ, ok := spec.TypeOf("Age")
	assert.True(t, ok)
	assert.Equal(t, "int", typ)

	rules := spec.Ranges()
	assert.Equal(t, "Age", rules.AgeColumn)
	assert.Equal(t, domain.Bounds{Min: 0, Max: 99}, rules.Age)
	assert.Equal(t, []string{"Sleep_Hours"}, rules.HourColumns)
	assert.Equal(t, domain.Bounds{Min: 0, Max: 16}, rules.Hours)
}

func TestParseSchemaDefaultsRanges(t *testing.T) {
	t.Parallel()

	spec, err := ParseSchema([]byte("COLUMNS:\n  Age: int\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRangeRules(), spec.Ranges())
}

func TestParseSchemaFailures(t *testing.T) {
	t.Parallel()

	for name, body := range map[string]string{
		"empty":       "   \n",
		"no columns":  "RANGES: {}\n",
		"list":        "COLUMNS: [Age, Gender]\n",
		"empty map":   "COLUMNS: {}\n",
		"bad bounds":  "COLUMNS:\n  Age: int\nRANGES:\n  age:\n    min: 10\n    max: 5\n",
		"nested type": "COLUMNS:\n  Age:\n    type: int\n",
	} {
		_, err := ParseSchema([]byte(body))
		assert.ErrorIs(t, err, domain.ErrConfiguration, name)
	}
}

func TestLoadSchemaMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadSchema(filepath.Join(t.TempDir(), "schema.yaml"))
	require.ErrorIs(t, err, domain.ErrConfiguration)
}
