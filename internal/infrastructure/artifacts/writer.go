// Package artifacts writes the transformed dataset and its encoder lookups.
package artifacts

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/fsutil"
	"DataPipeline/internal/ports"
)

// File names under the configured directories.
const (
	TransformedCSV    = "transformed_data.csv"
	TransformedJSON   = "transformed_data.json"
	LabelEncoders     = "label_encoders.json"
	ColumnEncodings   = "column_encodings.json"
	mappingCSVSuffix  = "_mapping.csv"
	mappingJSONSuffix = "_mapping.json"
)

// Writer persists transformation output. Every file is written on its own;
// failures are collected and returned together.
type Writer struct {
	dataDir    string
	lookupsDir string
	datasets   ports.DatasetWriter
	logger     *slog.Logger
}

var _ ports.ArtifactWriter = (*Writer)(nil)

// NewWriter targets dataDir for the dataset and encoder metadata and
// lookupsDir for the lookup documents.
func NewWriter(dataDir, lookupsDir string, datasets ports.DatasetWriter, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{
		dataDir:    dataDir,
		lookupsDir: lookupsDir,
		datasets:   datasets,
		logger:     logger.With("component", "artifacts"),
	}
}

// Write emits every artifact for the dataset and tables.
func (w *Writer) Write(ctx context.Context, ds *domain.Dataset, tables domain.EncoderSet) error {
	var errs []error
	record := func(name string, err error) {
		if err != nil {
			w.logger.Error("artifact write failed", "artifact", name, "error", err)
			errs = append(errs, err)
			return
		}
		w.logger.Debug("artifact written", "artifact", name)
	}

	record(TransformedCSV, w.datasets.WriteDataset(ctx, filepath.Join(w.dataDir, TransformedCSV), ds))
	record(TransformedJSON, w.datasets.WriteDataset(ctx, filepath.Join(w.dataDir, TransformedJSON), ds))
	record(LabelEncoders, writeJSON(ctx, filepath.Join(w.dataDir, LabelEncoders), labelEncoders(tables)))
	record(ColumnEncodings, writeJSON(ctx, filepath.Join(w.lookupsDir, ColumnEncodings), columnEncodings(tables)))

	for _, t := range tables.Tables() {
		base := fileSafe(t.Column())
		csvPath := filepath.Join(w.lookupsDir, base+mappingCSVSuffix)
		record(filepath.Base(csvPath), writeMappingCSV(ctx, csvPath, t))

		jsonPath := filepath.Join(w.lookupsDir, base+mappingJSONSuffix)
		record(filepath.Base(jsonPath), writeJSON(ctx, jsonPath, object{
			{"mapping", mapping(t)},
			{"reverse_mapping", reverseMapping(t)},
		}))
	}

	if len(errs) > 0 {
		return fmt.Errorf("write artifacts: %w", errors.Join(errs...))
	}
	w.logger.Info("artifacts saved", "data_dir", w.dataDir, "lookups_dir", w.lookupsDir, "encoders", tables.Len())
	return nil
}

func labelEncoders(tables domain.EncoderSet) object {
	out := make(object, 0, tables.Len())
	for _, t := range tables.Tables() {
		out = append(out, field{t.Column(), object{
			{"classes", t.Classes()},
			{"n_classes", t.Len()},
		}})
	}
	return out
}

func columnEncodings(tables domain.EncoderSet) object {
	out := make(object, 0, tables.Len())
	for _, t := range tables.Tables() {
		codes := make([]int, t.Len())
		for i := range codes {
			codes[i] = i
		}
		out = append(out, field{t.Column(), object{
			{"original_values", t.Classes()},
			{"encoded_values", codes},
			{"mapping", mapping(t)},
			{"reverse_mapping", reverseMapping(t)},
		}})
	}
	return out
}

func mapping(t *domain.EncoderTable) object {
	out := make(object, 0, t.Len())
	for code, value := range t.Classes() {
		out = append(out, field{value, code})
	}
	return out
}

func reverseMapping(t *domain.EncoderTable) object {
	out := make(object, 0, t.Len())
	for code, value := range t.Classes() {
		out = append(out, field{strconv.Itoa(code), value})
	}
	return out
}

func writeMappingCSV(ctx context.Context, path string, t *domain.EncoderTable) error {
	return fsutil.WriteFile(ctx, path, func(out io.Writer) error {
		cw := csv.NewWriter(out)
		if err := cw.Write([]string{"original_value", "encoded_value"}); err != nil {
			return err
		}
		for code, value := range t.Classes() {
			if err := cw.Write([]string{value, strconv.Itoa(code)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func writeJSON(ctx context.Context, path string, v any) error {
	var raw bytes.Buffer
	enc := json.NewEncoder(&raw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return fsutil.WriteFile(ctx, path, func(out io.Writer) error {
		_, err := out.Write(raw.Bytes())
		return err
	})
}

func fileSafe(column string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(column)
}

// object is a JSON object that keeps its key order.
type object []field

type field struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
