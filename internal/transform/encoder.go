// Package transform holds the pure feature-engineering steps. Every step
// takes a dataset and returns a new one; inputs are never modified.
package transform

import (
	"fmt"
	"log/slog"

	"DataPipeline/internal/domain"
)

// EncodeResult is the outcome of label encoding.
type EncodeResult struct {
	Dataset     *domain.Dataset
	Tables      domain.EncoderSet
	Diagnostics domain.Diagnostics
}

// Encoder label-encodes categorical columns with sorted-value codes.
type Encoder struct {
	logger *slog.Logger
}

// NewEncoder wires a logger.
func NewEncoder(logger *slog.Logger) *Encoder {
	return &Encoder{logger: orDiscard(logger)}
}

// StringColumns lists the object-typed columns, for encode-all mode.
func StringColumns(ds *domain.Dataset) []string {
	var out []string
	for _, c := range ds.Columns() {
		if dtype, _ := ds.DType(c); dtype == domain.DTypeObject {
			out = append(out, c)
		}
	}
	return out
}

// FitTransform fits one table per column and appends <column>_encoded.
// Missing cells become "Unknown" in the source column too. Columns not
// present in ds are skipped with a diagnostic.
func (e *Encoder) FitTransform(ds *domain.Dataset, columns []string) (EncodeResult, error) {
	result := EncodeResult{Dataset: ds}
	e.logger.Info("encoding columns", "count", len(columns), "columns", columns)

	for _, column := range columns {
		values, ok := result.Dataset.Column(column)
		if !ok {
			msg := fmt.Sprintf("Column %s not found in dataset", column)
			e.logger.Warn(msg)
			result.Diagnostics.Add("encode", msg)
			continue
		}

		filled := make([]domain.Value, len(values))
		labels := make([]string, len(values))
		for i, v := range values {
			if v.IsMissing() {
				v = domain.String(domain.UnknownValue)
			}
			filled[i] = v
			labels[i] = v.Text()
		}

		table := domain.FitEncoderTable(column, labels)
		codes, err := table.Encode(labels)
		if err != nil {
			return EncodeResult{}, fmt.Errorf("encode %s: %w", column, err)
		}

		encoded := make([]domain.Value, len(codes))
		for i, c := range codes {
			encoded[i] = domain.Int(int64(c))
		}

		next, err := result.Dataset.WithColumn(column, filled)
		if err != nil {
			return EncodeResult{}, fmt.Errorf("fill %s: %w", column, err)
		}
		next, err = next.WithColumn(domain.EncodedColumn(column), encoded)
		if err != nil {
			return EncodeResult{}, fmt.Errorf("add %s: %w", domain.EncodedColumn(column), err)
		}

		result.Dataset = next
		result.Tables.Add(table)
		e.logger.Info("encoded column", "column", column, "target", domain.EncodedColumn(column), "classes", table.Len())
	}

	return result, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
