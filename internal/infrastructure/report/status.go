// Package report persists validation verdicts and dataset profiles to disk.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"DataPipeline/internal/domain"
	"DataPipeline/internal/fsutil"
	"DataPipeline/internal/ports"
)

// StatusFile writes the human-readable status report.
type StatusFile struct {
	path   string
	logger *slog.Logger
}

var _ ports.StatusWriter = (*StatusFile)(nil)

// NewStatusFile targets the given path; parent directories are created on write.
func NewStatusFile(path string, logger *slog.Logger) *StatusFile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StatusFile{path: path, logger: logger.With("component", "status_report")}
}

// Path is the destination file.
func (s *StatusFile) Path() string { return s.path }

// WriteStatus overwrites the destination with the rendered report.
func (s *StatusFile) WriteStatus(ctx context.Context, rep *domain.ValidationReport, message string) error {
	text := rep.Render(message)
	if err := fsutil.WriteFile(ctx, s.path, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	}); err != nil {
		return fmt.Errorf("write status %s: %w", s.path, err)
	}
	s.logger.Info("validation status saved", "path", s.path, "passed", rep.OverallStatus())
	return nil
}

// SummaryFile writes the dataset profile as indented JSON.
type SummaryFile struct {
	path   string
	logger *slog.Logger
}

var _ ports.SummaryWriter = (*SummaryFile)(nil)

// NewSummaryFile targets the given path.
func NewSummaryFile(path string, logger *slog.Logger) *SummaryFile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SummaryFile{path: path, logger: logger.With("component", "summary_report")}
}

func (s *SummaryFile) WriteSummary(ctx context.Context, summary domain.Summary) error {
	if err := fsutil.WriteFile(ctx, s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(summary)
	}); err != nil {
		return fmt.Errorf("write summary %s: %w", s.path, err)
	}
	s.logger.Debug("data summary saved", "path", s.path)
	return nil
}
