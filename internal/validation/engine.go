// Package validation runs the fixed check categories against a loaded dataset.
package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"DataPipeline/internal/domain"
)

// StatFunc reports file metadata; os.Stat in production.
type StatFunc func(name string) (fs.FileInfo, error)

// Engine evaluates validation categories. It holds no per-run state.
type Engine struct {
	schema domain.SchemaSpec
	logger *slog.Logger
	stat   StatFunc
}

// NewEngine wires the schema and logger.
func NewEngine(schema domain.SchemaSpec, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{schema: schema, logger: logger, stat: os.Stat}
}

// WithStat swaps the file-existence probe.
func (e *Engine) WithStat(stat StatFunc) *Engine {
	clone := *e
	clone.stat = stat
	return &clone
}

// CheckFilesExist fails when any required file is absent from dir.
func (e *Engine) CheckFilesExist(names []string, dir string) domain.ValidationResult {
	return e.guard("file", func() (domain.ValidationResult, error) {
		e.logger.Info("validating data files", "dir", dir, "required", len(names))

		var missing []string
		for _, name := range names {
			_, err := e.stat(filepath.Join(dir, name))
			switch {
			case err == nil:
			case errors.Is(err, fs.ErrNotExist):
				missing = append(missing, name)
			default:
				return domain.ValidationResult{}, fmt.Errorf("stat %s: %w", name, err)
			}
		}

		if len(missing) > 0 {
			e.logger.Error("missing files", "files", missing)
			return domain.Fail("Missing files: " + listOf(missing)), nil
		}
		e.logger.Info("all required files found")
		return domain.Pass("All required files found"), nil
	})
}

// CheckColumns verifies presence first and only then compares dtypes.
func (e *Engine) CheckColumns(ds *domain.Dataset) domain.ValidationResult {
	return e.guard("column", func() (domain.ValidationResult, error) {
		if ds == nil {
			return domain.ValidationResult{}, errors.New("dataset is nil")
		}
		e.logger.Info("validating data columns against schema")

		expected := e.schema.Columns()
		var missing []string
		for _, col := range expected {
			if !ds.Has(col.Name) {
				missing = append(missing, col.Name)
			}
		}
		if len(missing) > 0 {
			e.logger.Error("missing columns", "columns", missing)
			return domain.Fail("Missing columns: " + listOf(missing)), nil
		}

		var mismatches []string
		for _, col := range expected {
			actual, _ := ds.DType(col.Name)
			if domain.NormalizeType(actual) != domain.NormalizeType(col.Type) {
				mismatches = append(mismatches,
					fmt.Sprintf("%s: expected %s, got %s", col.Name, col.Type, actual))
			}
		}
		if len(mismatches) > 0 {
			e.logger.Error("type mismatches found", "mismatches", mismatches)
			return domain.Fail("Type mismatches: " + listOf(mismatches)), nil
		}

		e.logger.Info("all columns validated successfully")
		return domain.Pass("All columns validated successfully"), nil
	})
}

// CheckQuality collects missing values, duplicate rows and emptiness together.
func (e *Engine) CheckQuality(ds *domain.Dataset) domain.ValidationResult {
	return e.guard("quality", func() (domain.ValidationResult, error) {
		if ds == nil {
			return domain.ValidationResult{}, errors.New("dataset is nil")
		}
		e.logger.Info("validating data quality")

		var issues []string

		columns := ds.Columns()
		var withMissing []string
		for i, n := range ds.MissingCounts() {
			if n > 0 {
				withMissing = append(withMissing, columns[i])
			}
		}
		if len(withMissing) > 0 {
			issues = append(issues, "Missing values in columns: "+listOf(withMissing))
		}

		if dups := ds.DuplicateRows(); dups > 0 {
			issues = append(issues, fmt.Sprintf("Found %d duplicate rows", dups))
		}

		if ds.Empty() {
			issues = append(issues, "DataFrame is empty")
		}

		if len(issues) > 0 {
			e.logger.Warn("data quality issues found", "issues", issues)
			return domain.Fail("Quality issues: " + strings.Join(issues, "; ")), nil
		}
		e.logger.Info("data quality validation passed")
		return domain.Pass("Data quality validation passed"), nil
	})
}

// CheckRanges compares column extremes with the schema bounds.
// Columns absent from the dataset are skipped.
func (e *Engine) CheckRanges(ds *domain.Dataset) domain.ValidationResult {
	return e.guard("range", func() (domain.ValidationResult, error) {
		if ds == nil {
			return domain.ValidationResult{}, errors.New("dataset is nil")
		}
		e.logger.Info("validating data ranges")

		rules := e.schema.Ranges()
		var issues []string

		if rules.AgeColumn != "" {
			lo, hi, ok, err := extremes(ds, rules.AgeColumn)
			if err != nil {
				return domain.ValidationResult{}, err
			}
			if ok && !rules.Age.Contains(lo, hi) {
				format := plain
				if dtype, _ := ds.DType(rules.AgeColumn); dtype == domain.DTypeFloat {
					format = decimal
				}
				issues = append(issues, fmt.Sprintf("%s range (%s-%s) seems unrealistic",
					rules.AgeColumn, format(lo), format(hi)))
			}
		}

		for _, col := range rules.HourColumns {
			lo, hi, ok, err := extremes(ds, col)
			if err != nil {
				return domain.ValidationResult{}, err
			}
			if ok && !rules.Hours.Contains(lo, hi) {
				issues = append(issues, fmt.Sprintf("%s range (%.2f-%.2f) exceeds %s-%s hours",
					col, lo, hi, plain(rules.Hours.Min), plain(rules.Hours.Max)))
			}
		}

		if len(issues) > 0 {
			e.logger.Warn("range validation issues", "issues", issues)
			return domain.Fail("Range issues: " + strings.Join(issues, "; ")), nil
		}
		e.logger.Info("data range validation passed")
		return domain.Pass("Data range validation passed"), nil
	})
}

// Validate runs the column, quality and range categories into report.
// The file category is gated separately by the caller.
func (e *Engine) Validate(ds *domain.Dataset, report *domain.ValidationReport) {
	report.Record(domain.CategoryColumn, e.CheckColumns(ds))
	report.Record(domain.CategoryQuality, e.CheckQuality(ds))
	report.Record(domain.CategoryRange, e.CheckRanges(ds))
}

// guard turns errors and panics of one check into a failed result for that
// category only.
func (e *Engine) guard(kind string, check func() (domain.ValidationResult, error)) (res domain.ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("validation check panicked", "category", kind, "panic", r)
			res = domain.Fail(fmt.Sprintf("Error during %s validation: %v", kind, r))
		}
	}()

	res, err := check()
	if err != nil {
		e.logger.Error("validation check failed", "category", kind, "error", err)
		return domain.Fail(fmt.Sprintf("Error during %s validation: %v", kind, err))
	}
	return res
}

// extremes returns min and max of the numeric cells of a column. ok is
// false when the column is absent or holds no numbers.
func extremes(ds *domain.Dataset, column string) (lo, hi float64, ok bool, err error) {
	values, present := ds.Column(column)
	if !present {
		return 0, 0, false, nil
	}
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		n, numeric := v.Number()
		if !numeric {
			return 0, 0, false, fmt.Errorf("column %s row %d: non-numeric value %q", column, i, v.Text())
		}
		if !ok {
			lo, hi, ok = n, n, true
			continue
		}
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	return lo, hi, ok, nil
}

func listOf(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

func plain(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// decimal keeps at least one fractional digit: 130 prints as 130.0.
func decimal(f float64) string {
	s := plain(f)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
