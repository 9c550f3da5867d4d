package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/format"
)

// JSONRecords reads and writes a dataset as an array of objects, one per row.
type JSONRecords struct {
	indent string
}

var _ format.Codec = (*JSONRecords)(nil)

// NewJSONRecords builds the codec writing two-space indented output.
func NewJSONRecords() *JSONRecords {
	return &JSONRecords{indent: "  "}
}

func (j *JSONRecords) Name() string { return "json" }

func (j *JSONRecords) Extensions() []string { return []string{".json"} }

// Decode keeps columns in first-seen key order. Keys absent from a row are
// missing cells; integer columns that also hold fractions become floats.
func (j *JSONRecords) Decode(r io.Reader) (*domain.Dataset, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var (
		columns []string
		index   = map[string]int{}
		records []map[int]domain.Value
	)

	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		rec := map[int]domain.Value{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", len(records), err)
			}
			key, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("record %d: unexpected key %v", len(records), tok)
			}
			idx, seen := index[key]
			if !seen {
				idx = len(columns)
				index[key] = idx
				columns = append(columns, key)
			}
			val, err := readScalar(dec)
			if err != nil {
				return nil, fmt.Errorf("record %d field %q: %w", len(records), key, err)
			}
			rec[idx] = val
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	rows := make([][]domain.Value, len(records))
	for i, rec := range records {
		row := make([]domain.Value, len(columns))
		for idx, v := range rec {
			row[idx] = v
		}
		rows[i] = row
	}
	widenMixedNumbers(rows, len(columns))

	return domain.NewDataset(columns, rows)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("json: unexpected end of input, want %q", want)
	}
	if err != nil {
		return fmt.Errorf("json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("json: got %v, want %q", tok, want)
	}
	return nil
}

func readScalar(dec *json.Decoder) (domain.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.Value{}, err
	}
	switch v := tok.(type) {
	case nil:
		return domain.Missing(), nil
	case string:
		return domain.String(v), nil
	case bool:
		return domain.String(strconv.FormatBool(v)), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return domain.Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Float(f), nil
	default:
		return domain.Value{}, fmt.Errorf("nested values are not supported")
	}
}

func widenMixedNumbers(rows [][]domain.Value, width int) {
	for col := 0; col < width; col++ {
		hasFloat := false
		for _, row := range rows {
			if row[col].Kind() == domain.KindFloat {
				hasFloat = true
				break
			}
		}
		if !hasFloat {
			continue
		}
		for _, row := range rows {
			if i, ok := row[col].IntValue(); ok {
				row[col] = domain.Float(float64(i))
			}
		}
	}
}

// Encode writes an indented array of objects with keys in column order.
// Missing and non-finite numbers are written as null.
func (j *JSONRecords) Encode(w io.Writer, ds *domain.Dataset) error {
	if ds.Len() == 0 {
		_, err := io.WriteString(w, "[]\n")
		return err
	}

	keys := make([][]byte, 0, len(ds.Columns()))
	for _, c := range ds.Columns() {
		k, err := marshalString(c)
		if err != nil {
			return err
		}
		keys = append(keys, k)
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i := 0; i < ds.Len(); i++ {
		buf.WriteString(j.indent + "{\n")
		row := ds.Row(i)
		for c, v := range row {
			buf.WriteString(j.indent + j.indent)
			buf.Write(keys[c])
			buf.WriteString(": ")
			raw, err := marshalValue(v)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			buf.Write(raw)
			if c < len(row)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(j.indent + "}")
		if i < ds.Len()-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		buf.Reset()
	}
	_, err := io.WriteString(w, "]\n")
	return err
}

func marshalValue(v domain.Value) ([]byte, error) {
	switch v.Kind() {
	case domain.KindString:
		s, _ := v.Str()
		return marshalString(s)
	case domain.KindInt:
		i, _ := v.IntValue()
		return strconv.AppendInt(nil, i, 10), nil
	case domain.KindFloat:
		f, _ := v.Number()
		if math.IsInf(f, 0) {
			return []byte("null"), nil
		}
		return []byte(domain.FormatFloat(f)), nil
	default:
		return []byte("null"), nil
	}
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
