package transform

import (
	"fmt"
	"log/slog"

	"DataPipeline/internal/domain"
)

// AlwaysDrop lists columns superseded by engineered features.
var AlwaysDrop = []string{"Technology_Usage_Hours"}

// PruneResult is the outcome of dropping columns.
type PruneResult struct {
	Dataset     *domain.Dataset
	Dropped     []string
	Diagnostics domain.Diagnostics
}

// Pruner removes non-feature columns.
type Pruner struct {
	always []string
	logger *slog.Logger
}

// NewPruner wires the always-drop list.
func NewPruner(always []string, logger *slog.Logger) *Pruner {
	return &Pruner{always: append([]string(nil), always...), logger: orDiscard(logger)}
}

// Drop removes the union of configured, always-drop and extra names.
// Names not present only produce a diagnostic.
func (p *Pruner) Drop(ds *domain.Dataset, configured []string, extra ...string) PruneResult {
	result := PruneResult{Dataset: ds}

	seen := map[string]bool{}
	var names []string
	for _, group := range [][]string{configured, p.always, extra} {
		for _, n := range group {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}

	for _, n := range names {
		if ds.Has(n) {
			result.Dropped = append(result.Dropped, n)
			p.logger.Info("dropping column", "column", n)
			continue
		}
		msg := fmt.Sprintf("Column %s not found in dataset", n)
		p.logger.Warn(msg)
		result.Diagnostics.Add("drop", msg)
	}

	if len(result.Dropped) > 0 {
		result.Dataset = ds.Without(result.Dropped...)
		p.logger.Info("dropped columns", "count", len(result.Dropped), "columns", result.Dropped)
	}
	return result
}

// MissingTargets returns configured targets that are absent.
func MissingTargets(ds *domain.Dataset, targets []string) []string {
	var missing []string
	for _, t := range targets {
		if !ds.Has(t) {
			missing = append(missing, t)
		}
	}
	return missing
}
