package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/format"
)

// MissingMarkers are the cell texts read as missing values.
var MissingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// CSV reads and writes comma separated files with a header row.
type CSV struct {
	missing map[string]struct{}
}

var _ format.Codec = (*CSV)(nil)

// NewCSV builds the codec with the default missing markers.
func NewCSV() *CSV {
	missing := make(map[string]struct{}, len(MissingMarkers))
	for _, m := range MissingMarkers {
		missing[m] = struct{}{}
	}
	return &CSV{missing: missing}
}

func (c *CSV) Name() string { return "csv" }

func (c *CSV) Extensions() []string { return []string{".csv"} }

// Decode reads the header and infers one type per column: integers when
// every present cell is an integer, floats when every present cell is a
// number, strings otherwise.
func (c *CSV) Decode(r io.Reader) (*domain.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv rows: %w", err)
	}

	rows := make([][]domain.Value, len(records))
	for i := range rows {
		rows[i] = make([]domain.Value, len(header))
	}

	for col := range header {
		kind := c.columnKind(records, col)
		for i, rec := range records {
			rows[i][col] = c.cell(rec[col], kind)
		}
	}

	return domain.NewDataset(header, rows)
}

func (c *CSV) columnKind(records [][]string, col int) domain.Kind {
	kind := domain.KindMissing
	for _, rec := range records {
		text := rec[col]
		if c.isMissing(text) {
			continue
		}
		if _, err := strconv.ParseInt(text, 10, 64); err == nil {
			if kind == domain.KindMissing {
				kind = domain.KindInt
			}
			continue
		}
		if _, err := strconv.ParseFloat(text, 64); err == nil {
			kind = domain.KindFloat
			continue
		}
		return domain.KindString
	}
	return kind
}

func (c *CSV) cell(text string, kind domain.Kind) domain.Value {
	if c.isMissing(text) {
		return domain.Missing()
	}
	switch kind {
	case domain.KindInt:
		i, _ := strconv.ParseInt(text, 10, 64)
		return domain.Int(i)
	case domain.KindFloat:
		f, _ := strconv.ParseFloat(text, 64)
		return domain.Float(f)
	default:
		return domain.String(text)
	}
}

func (c *CSV) isMissing(text string) bool {
	_, ok := c.missing[strings.TrimSpace(text)]
	return ok
}

// Encode writes the header and one line per row. Missing cells are empty.
func (c *CSV) Encode(w io.Writer, ds *domain.Dataset) error {
	writer := csv.NewWriter(w)
	columns := ds.Columns()
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}

	record := make([]string, len(columns))
	for i := 0; i < ds.Len(); i++ {
		for j, v := range ds.Row(i) {
			record[j] = v.Text()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
