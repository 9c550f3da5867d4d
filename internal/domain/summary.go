package domain

import (
	"math"
	"sort"
)

// NumericStats describes a numeric column.
type NumericStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	P25   float64 `json:"25%"`
	P50   float64 `json:"50%"`
	P75   float64 `json:"75%"`
	Max   float64 `json:"max"`
}

// Summary is a profile of a dataset written next to the status report.
type Summary struct {
	Shape         [2]int                  `json:"shape"`
	Columns       []string                `json:"columns"`
	DTypes        map[string]string       `json:"dtypes"`
	MissingValues map[string]int          `json:"missing_values"`
	Duplicates    int                     `json:"duplicates"`
	NumericStats  map[string]NumericStats `json:"numerical_stats,omitempty"`
}

// Summarize profiles the dataset.
func Summarize(ds *Dataset) Summary {
	columns := ds.Columns()
	missing := ds.MissingCounts()
	s := Summary{
		Shape:         [2]int{ds.Len(), len(columns)},
		Columns:       columns,
		DTypes:        make(map[string]string, len(columns)),
		MissingValues: make(map[string]int, len(columns)),
		Duplicates:    ds.DuplicateRows(),
		NumericStats:  map[string]NumericStats{},
	}

	for i, name := range columns {
		values, _ := ds.Column(name)
		dtype := InferDType(values)
		s.DTypes[name] = dtype
		s.MissingValues[name] = missing[i]
		if dtype == DTypeObject {
			continue
		}
		if stats, ok := describe(values); ok {
			s.NumericStats[name] = stats
		}
	}

	return s
}

func describe(values []Value) (NumericStats, bool) {
	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := v.Number(); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return NumericStats{}, false
	}
	sort.Float64s(nums)

	var sum float64
	for _, n := range nums {
		sum += n
	}
	mean := sum / float64(len(nums))

	var std float64
	if len(nums) > 1 {
		var sq float64
		for _, n := range nums {
			sq += (n - mean) * (n - mean)
		}
		std = math.Sqrt(sq / float64(len(nums)-1))
	}

	return NumericStats{
		Count: len(nums),
		Mean:  mean,
		Std:   std,
		Min:   nums[0],
		P25:   quantile(nums, 0.25),
		P50:   quantile(nums, 0.50),
		P75:   quantile(nums, 0.75),
		Max:   nums[len(nums)-1],
	}, true
}

// quantile uses linear interpolation over sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
