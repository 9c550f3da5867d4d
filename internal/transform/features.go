package transform

import (
	"fmt"
	"log/slog"
	"math"

	"DataPipeline/internal/domain"
)

// MoodScoreColumn is the derived composite column.
const MoodScoreColumn = "Mood_Score"

// Factor is one weighted input of the mood score.
type Factor struct {
	Name   string
	Weight float64
}

// MoodFactors are applied in this order so the float sum is reproducible.
var MoodFactors = []Factor{
	{Name: "Sleep_Quality", Weight: 0.15},
	{Name: "Exercise_Frequency", Weight: 0.10},
	{Name: "Diet_Quality", Weight: 0.10},
	{Name: "Work_Life_Balance", Weight: 0.15},
	{Name: "Financial_Stress", Weight: -0.15},
	{Name: "Life_Satisfaction", Weight: 0.20},
	{Name: "Future_Outlook", Weight: 0.15},
}

// MoodScorer derives Mood_Score, an engineered heuristic in [0, 100] built
// from normalized encoded factors. It is not a learned score.
type MoodScorer struct {
	factors []Factor
	logger  *slog.Logger
}

// NewMoodScorer uses MoodFactors.
func NewMoodScorer(logger *slog.Logger) *MoodScorer {
	return &MoodScorer{factors: MoodFactors, logger: orDiscard(logger)}
}

// Derive adds (or replaces) Mood_Score. Each present factor contributes
// code/max(code)*weight; factors that are absent or whose max code is 0
// contribute nothing. The sum is shifted by +1, scaled by 50 and clamped.
func (m *MoodScorer) Derive(ds *domain.Dataset) (*domain.Dataset, error) {
	sums := make([]float64, ds.Len())

	for _, f := range m.factors {
		column := domain.EncodedColumn(f.Name)
		values, ok := ds.Column(column)
		if !ok {
			continue
		}

		codes := make([]float64, len(values))
		maxCode := 0.0
		for i, v := range values {
			n, numeric := v.Number()
			if !numeric {
				return nil, fmt.Errorf("mood score: column %s row %d is not numeric", column, i)
			}
			codes[i] = n
			if n > maxCode {
				maxCode = n
			}
		}
		if maxCode <= 0 {
			continue
		}

		for i, c := range codes {
			sums[i] += c / maxCode * f.Weight
		}
	}

	scores := make([]domain.Value, len(sums))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, s := range sums {
		score := clamp((s+1)*50, 0, 100)
		scores[i] = domain.Float(score)
		lo, hi = math.Min(lo, score), math.Max(hi, score)
	}

	out, err := ds.WithColumn(MoodScoreColumn, scores)
	if err != nil {
		return nil, fmt.Errorf("mood score: %w", err)
	}
	if len(sums) > 0 {
		m.logger.Info("mood score created", "min", fmt.Sprintf("%.2f", lo), "max", fmt.Sprintf("%.2f", hi))
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// CapResult is the outcome of capping.
type CapResult struct {
	Dataset     *domain.Dataset
	Diagnostics domain.Diagnostics
}

// Cap is an upper bound for one column.
type Cap struct {
	Column string
	Max    float64
}

// DefaultCaps clips physical activity at six hours.
var DefaultCaps = []Cap{{Column: "Physical_Activity_Hours", Max: 6}}

// Capper clips numeric columns to an upper bound.
type Capper struct {
	caps   []Cap
	logger *slog.Logger
}

// NewCapper keeps the given order.
func NewCapper(caps []Cap, logger *slog.Logger) *Capper {
	return &Capper{caps: append([]Cap(nil), caps...), logger: orDiscard(logger)}
}

// Apply clips each configured column. Integer cells stay integers when the
// bound is integral.
func (c *Capper) Apply(ds *domain.Dataset) (CapResult, error) {
	result := CapResult{Dataset: ds}

	for _, cp := range c.caps {
		values, ok := result.Dataset.Column(cp.Column)
		if !ok {
			msg := fmt.Sprintf("%s column not found", cp.Column)
			c.logger.Warn(msg)
			result.Diagnostics.Add("cap", msg)
			continue
		}

		integral := cp.Max == math.Trunc(cp.Max)
		capped := make([]domain.Value, len(values))
		for i, v := range values {
			n, numeric := v.Number()
			switch {
			case v.IsMissing():
				capped[i] = v
			case !numeric:
				return CapResult{}, fmt.Errorf("cap %s: row %d is not numeric", cp.Column, i)
			case n <= cp.Max:
				capped[i] = v
			case v.Kind() == domain.KindInt && integral:
				capped[i] = domain.Int(int64(cp.Max))
			default:
				capped[i] = domain.Float(cp.Max)
			}
		}

		next, err := result.Dataset.WithColumn(cp.Column, capped)
		if err != nil {
			return CapResult{}, fmt.Errorf("cap %s: %w", cp.Column, err)
		}
		result.Dataset = next
		c.logger.Info("capped column", "column", cp.Column, "max", cp.Max)
	}

	return result, nil
}
