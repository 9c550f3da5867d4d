package validation

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DataPipeline/internal/domain"
)

func testSchema() domain.SchemaSpec {
	return domain.NewSchemaSpec([]domain.ColumnSpec{
		{Name: "Age", Type: "int"},
		{Name: "Gender", Type: "object"},
	}, domain.DefaultRangeRules())
}

func mustDataset(t *testing.T, columns []string, rows ...[]domain.Value) *domain.Dataset {
	t.Helper()
	ds, err := domain.NewDataset(columns, rows)
	require.NoError(t, err)
	return ds
}

func TestCheckFilesExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present.csv"), []byte("a\n1\n"), 0o644))

	engine := NewEngine(testSchema(), nil)

	res := engine.CheckFilesExist([]string{"present.csv"}, dir)
	assert.True(t, res.Status)
	assert.Equal(t, "All required files found", res.Message)

	res = engine.CheckFilesExist([]string{"present.csv", "absent.csv", "other.json"}, dir)
	assert.False(t, res.Status)
	assert.Equal(t, "Missing files: [absent.csv, other.json]", res.Message)
}

func TestCheckFilesExistStatError(t *testing.T) {
	t.Parallel()

	engine := NewEngine(testSchema(), nil).WithStat(func(string) (fs.FileInfo, error) {
		return nil, errors.New("permission denied")
	})

	res := engine.CheckFilesExist([]string{"data.csv"}, "/data")
	assert.False(t, res.Status)
	assert.True(t, strings.HasPrefix(res.Message, "Error during file validation:"), res.Message)
}

func TestCheckColumnsMissingAge(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Gender"}, []domain.Value{domain.String("Male")})
	res := NewEngine(testSchema(), nil).CheckColumns(ds)

	assert.False(t, res.Status)
	assert.Equal(t, "Missing columns: [Age]", res.Message)
}

func TestCheckColumnsTypeMismatch(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Age", "Gender"},
		[]domain.Value{domain.String("twenty"), domain.String("Male")},
	)
	res := NewEngine(testSchema(), nil).CheckColumns(ds)

	assert.False(t, res.Status)
	assert.Equal(t, "Type mismatches: [Age: expected int, got object]", res.Message)
}

func TestCheckColumnsNormalizesBothSides(t *testing.T) {
	t.Parallel()

	schema := domain.NewSchemaSpec([]domain.ColumnSpec{
		{Name: "Age", Type: "int64"},
		{Name: "Score", Type: "float32"},
		{Name: "Gender", Type: "string"},
	}, domain.DefaultRangeRules())

	ds := mustDataset(t, []string{"Age", "Score", "Gender"},
		[]domain.Value{domain.Int(30), domain.Float(1.5), domain.String("Male")},
	)
	res := NewEngine(schema, nil).CheckColumns(ds)
	assert.True(t, res.Status, res.Message)
}

func TestCheckQualityCollectsAllIssues(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Age", "Gender"},
		[]domain.Value{domain.Int(30), domain.Missing()},
		[]domain.Value{domain.Int(30), domain.Missing()},
	)
	res := NewEngine(testSchema(), nil).CheckQuality(ds)

	assert.False(t, res.Status)
	assert.Equal(t, "Quality issues: Missing values in columns: [Gender]; Found 1 duplicate rows", res.Message)
}

func TestCheckQualityEmpty(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Age", "Gender"})
	res := NewEngine(testSchema(), nil).CheckQuality(ds)

	assert.False(t, res.Status)
	assert.Contains(t, res.Message, "DataFrame is empty")
}

func TestCheckRangesSleepHours(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Sleep_Hours"},
		[]domain.Value{domain.Int(-5)},
		[]domain.Value{domain.Int(10)},
		[]domain.Value{domain.Int(30)},
	)
	res := NewEngine(testSchema(), nil).CheckRanges(ds)

	assert.False(t, res.Status)
	assert.Equal(t, "Range issues: Sleep_Hours range (-5.00-30.00) exceeds 0-24 hours", res.Message)
}

func TestCheckRangesCollectsAgeAndHours(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Age", "Gaming_Hours", "Screen_Time_Hours"},
		[]domain.Value{domain.Int(150), domain.Float(25.5), domain.Float(3)},
		[]domain.Value{domain.Int(20), domain.Float(1), domain.Float(4)},
	)
	res := NewEngine(testSchema(), nil).CheckRanges(ds)

	assert.False(t, res.Status)
	assert.Equal(t,
		"Range issues: Age range (20-150) seems unrealistic; Gaming_Hours range (1.00-25.50) exceeds 0-24 hours",
		res.Message)
}

func TestCheckRangesFormatsFloatAgeWithDecimal(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Age"},
		[]domain.Value{domain.Float(130)},
		[]domain.Value{domain.Float(18.5)},
	)
	res := NewEngine(testSchema(), nil).CheckRanges(ds)

	assert.False(t, res.Status)
	assert.Equal(t, "Range issues: Age range (18.5-130.0) seems unrealistic", res.Message)
}

func TestCheckRangesSkipsAbsentColumns(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Gender"}, []domain.Value{domain.String("Male")})
	res := NewEngine(testSchema(), nil).CheckRanges(ds)

	assert.True(t, res.Status)
	assert.Equal(t, "Data range validation passed", res.Message)
}

func TestCheckRangesNonNumericIsLocalError(t *testing.T) {
	t.Parallel()

	ds := mustDataset(t, []string{"Age"}, []domain.Value{domain.String("old")})
	engine := NewEngine(testSchema(), nil)

	report := domain.NewValidationReport()
	engine.Validate(ds, report)

	rng, _ := report.Result(domain.CategoryRange)
	assert.False(t, rng.Status)
	assert.True(t, strings.HasPrefix(rng.Message, "Error during range validation:"), rng.Message)

	quality, _ := report.Result(domain.CategoryQuality)
	assert.True(t, quality.Status, "sibling categories still run")
	assert.Equal(t, 3, report.Len())
}

func TestCheckRecoversFromNilDataset(t *testing.T) {
	t.Parallel()

	res := NewEngine(testSchema(), nil).CheckQuality(nil)
	assert.False(t, res.Status)
	assert.Equal(t, "Error during quality validation: dataset is nil", res.Message)
}
