package domain

import (
	"fmt"
	"strings"
)

// Runtime dtype names, matching what a dataframe loader reports.
const (
	DTypeInt    = "int64"
	DTypeFloat  = "float64"
	DTypeObject = "object"
)

// Dataset is an immutable table: ordered columns and rows of Values.
// Every operation that changes the table returns a new Dataset.
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// NewDataset validates that every row has one cell per column.
func NewDataset(columns []string, rows [][]Value) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}

	copied := make([][]Value, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
		copied[i] = append([]Value(nil), row...)
	}

	return &Dataset{
		columns: append([]string(nil), columns...),
		index:   index,
		rows:    copied,
	}, nil
}

// Columns returns a copy of the column names in order.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Len is the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Empty reports a dataset without rows.
func (d *Dataset) Empty() bool { return len(d.rows) == 0 }

// Has reports whether the column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column's cells.
func (d *Dataset) Column(name string) ([]Value, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []Value {
	return append([]Value(nil), d.rows[i]...)
}

// Cell returns a single value.
func (d *Dataset) Cell(row int, column string) (Value, bool) {
	idx, ok := d.index[column]
	if !ok || row < 0 || row >= len(d.rows) {
		return Value{}, false
	}
	return d.rows[row][idx], true
}

// WithColumn returns a new dataset where the named column holds values.
// An existing column is replaced in place; a new one is appended.
func (d *Dataset) WithColumn(name string, values []Value) (*Dataset, error) {
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("column %q has %d values, want %d", name, len(values), len(d.rows))
	}

	columns := d.Columns()
	idx, exists := d.index[name]
	if !exists {
		columns = append(columns, name)
		idx = len(columns) - 1
	}

	rows := make([][]Value, len(d.rows))
	for i, row := range d.rows {
		next := make([]Value, len(columns))
		copy(next, row)
		next[idx] = values[i]
		rows[i] = next
	}

	return NewDataset(columns, rows)
}

// Without returns a new dataset lacking the named columns. Unknown names are ignored.
func (d *Dataset) Without(names ...string) *Dataset {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	keep := make([]int, 0, len(d.columns))
	columns := make([]string, 0, len(d.columns))
	for i, c := range d.columns {
		if !drop[c] {
			keep = append(keep, i)
			columns = append(columns, c)
		}
	}

	rows := make([][]Value, len(d.rows))
	for i, row := range d.rows {
		next := make([]Value, len(keep))
		for j, k := range keep {
			next[j] = row[k]
		}
		rows[i] = next
	}

	out, _ := NewDataset(columns, rows)
	return out
}

// DType infers the runtime type of a column from its cells.
func (d *Dataset) DType(name string) (string, bool) {
	values, ok := d.Column(name)
	if !ok {
		return "", false
	}
	return InferDType(values), true
}

// InferDType applies the loader typing rules: integers without gaps are
// int64, numbers (or integers with gaps, or nothing at all) are float64,
// anything else is object.
func InferDType(values []Value) string {
	hasFloat, hasMissing, hasInt := false, false, false
	for _, v := range values {
		switch v.Kind() {
		case KindString:
			return DTypeObject
		case KindFloat:
			hasFloat = true
		case KindInt:
			hasInt = true
		case KindMissing:
			hasMissing = true
		}
	}
	if hasInt && !hasFloat && !hasMissing {
		return DTypeInt
	}
	return DTypeFloat
}

// MissingCounts returns the number of missing cells per column, in column order.
func (d *Dataset) MissingCounts() []int {
	counts := make([]int, len(d.columns))
	for _, row := range d.rows {
		for j, v := range row {
			if v.IsMissing() {
				counts[j]++
			}
		}
	}
	return counts
}

// DuplicateRows counts rows identical to an earlier row.
func (d *Dataset) DuplicateRows() int {
	seen := make(map[string]struct{}, len(d.rows))
	dups := 0
	var b strings.Builder
	for _, row := range d.rows {
		b.Reset()
		for _, v := range row {
			b.WriteString(v.key())
			b.WriteByte(0x1f)
		}
		k := b.String()
		if _, ok := seen[k]; ok {
			dups++
			continue
		}
		seen[k] = struct{}{}
	}
	return dups
}
