package domain

import (
	"fmt"
	"sort"
)

// UnknownValue replaces missing categorical cells before encoding.
const UnknownValue = "Unknown"

// EncodedSuffix names the companion column of an encoded column.
const EncodedSuffix = "_encoded"

// EncodedColumn returns the companion column name.
func EncodedColumn(column string) string { return column + EncodedSuffix }

// EncoderTable maps the distinct values of one column to dense codes.
// Codes follow the sorted order of the values.
type EncoderTable struct {
	column  string
	classes []string
	codes   map[string]int
}

// FitEncoderTable sorts the distinct values and assigns codes 0..k-1.
func FitEncoderTable(column string, values []string) *EncoderTable {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	classes := make([]string, 0, len(distinct))
	for v := range distinct {
		classes = append(classes, v)
	}
	sort.Strings(classes)

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &EncoderTable{column: column, classes: classes, codes: codes}
}

// Column is the source column name.
func (t *EncoderTable) Column() string { return t.column }

// Classes returns the values ordered by code.
func (t *EncoderTable) Classes() []string { return append([]string(nil), t.classes...) }

// Len is the number of classes.
func (t *EncoderTable) Len() int { return len(t.classes) }

// Code maps a value to its code.
func (t *EncoderTable) Code(value string) (int, bool) {
	c, ok := t.codes[value]
	return c, ok
}

// Value maps a code back to its value.
func (t *EncoderTable) Value(code int) (string, bool) {
	if code < 0 || code >= len(t.classes) {
		return "", false
	}
	return t.classes[code], true
}

// Encode maps values to codes, failing on a value unseen at fit time.
func (t *EncoderTable) Encode(values []string) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		c, ok := t.codes[v]
		if !ok {
			return nil, fmt.Errorf("column %s: unknown label %q", t.column, v)
		}
		out[i] = c
	}
	return out, nil
}

// Decode maps codes back to values.
func (t *EncoderTable) Decode(codes []int) ([]string, error) {
	out := make([]string, len(codes))
	for i, c := range codes {
		v, ok := t.Value(c)
		if !ok {
			return nil, fmt.Errorf("column %s: unknown code %d", t.column, c)
		}
		out[i] = v
	}
	return out, nil
}

// EncoderSet keeps the tables of a run in encoding order.
type EncoderSet struct {
	tables []*EncoderTable
}

// Add appends a table, replacing one for the same column.
func (s *EncoderSet) Add(t *EncoderTable) {
	for i, existing := range s.tables {
		if existing.column == t.column {
			s.tables[i] = t
			return
		}
	}
	s.tables = append(s.tables, t)
}

// Get looks a table up by column.
func (s EncoderSet) Get(column string) (*EncoderTable, bool) {
	for _, t := range s.tables {
		if t.column == column {
			return t, true
		}
	}
	return nil, false
}

// Tables returns the tables in encoding order.
func (s EncoderSet) Tables() []*EncoderTable {
	return append([]*EncoderTable(nil), s.tables...)
}

// Len is the number of tables.
func (s EncoderSet) Len() int { return len(s.tables) }
