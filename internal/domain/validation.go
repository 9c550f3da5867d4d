package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Category names one independent validation group.
type Category string

const (
	CategoryFile    Category = "FILE_VALIDATION"
	CategoryColumn  Category = "COLUMN_VALIDATION"
	CategoryQuality Category = "QUALITY_VALIDATION"
	CategoryRange   Category = "RANGE_VALIDATION"
)

// Categories lists every category in report order.
var Categories = []Category{CategoryFile, CategoryColumn, CategoryQuality, CategoryRange}

// ValidationResult is the verdict of one category.
type ValidationResult struct {
	Status  bool   `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// Pass builds a passing result.
func Pass(message string) ValidationResult {
	return ValidationResult{Status: true, Message: message}
}

// Fail builds a failing result.
func Fail(message string) ValidationResult {
	return ValidationResult{Status: false, Message: message}
}

// ValidationReport collects the results of a single validation run.
type ValidationReport struct {
	results map[Category]ValidationResult
}

// NewValidationReport starts an empty report.
func NewValidationReport() *ValidationReport {
	return &ValidationReport{results: map[Category]ValidationResult{}}
}

// Record stores (or replaces) the result of a category.
func (r *ValidationReport) Record(category Category, result ValidationResult) {
	if r.results == nil {
		r.results = map[Category]ValidationResult{}
	}
	r.results[category] = result
}

// Result returns the recorded result of a category.
func (r *ValidationReport) Result(category Category) (ValidationResult, bool) {
	res, ok := r.results[category]
	return res, ok
}

// Len is the number of recorded categories.
func (r *ValidationReport) Len() int { return len(r.results) }

// Recorded lists recorded categories in report order.
func (r *ValidationReport) Recorded() []Category {
	out := make([]Category, 0, len(r.results))
	for _, c := range Categories {
		if _, ok := r.results[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// OverallStatus is the conjunction of every recorded result.
// A report with nothing recorded fails.
func (r *ValidationReport) OverallStatus() bool {
	if r == nil || len(r.results) == 0 {
		return false
	}
	for _, res := range r.results {
		if !res.Status {
			return false
		}
	}
	return true
}

var categoryErrors = map[Category]error{
	CategoryFile:    ErrMissingFile,
	CategoryColumn:  ErrSchemaMismatch,
	CategoryQuality: ErrQualityViolation,
	CategoryRange:   ErrRangeViolation,
}

// Err joins one wrapped sentinel per failed category, or returns nil when
// the report passes. An empty report yields ErrMissingFile since no
// category could run.
func (r *ValidationReport) Err() error {
	if r.OverallStatus() {
		return nil
	}
	if r == nil || len(r.results) == 0 {
		return fmt.Errorf("%w: no validation results recorded", ErrMissingFile)
	}
	var errs []error
	for _, c := range r.Recorded() {
		res := r.results[c]
		if res.Status {
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w: %s", c, categoryErrors[c], res.Message))
	}
	return errors.Join(errs...)
}

const (
	passedHeader = "VALIDATION PASSED"
	failedHeader = "VALIDATION FAILED"
	passMark     = "✅"
	failMark     = "❌"
)

// Render formats the status report: verdict line, optional message, a
// blank line, then one line per recorded category in report order.
func (r *ValidationReport) Render(message string) string {
	var b strings.Builder
	if r.OverallStatus() {
		b.WriteString(passedHeader)
	} else {
		b.WriteString(failedHeader)
	}
	b.WriteByte('\n')
	if message != "" {
		b.WriteString(message)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	for _, c := range r.Recorded() {
		res := r.results[c]
		mark := failMark
		if res.Status {
			mark = passMark
		}
		fmt.Fprintf(&b, "%s %s: %s\n", mark, c, res.Message)
	}
	return b.String()
}
