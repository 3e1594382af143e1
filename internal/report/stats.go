package report

import (
	"math"
	"slices"

	"golang.org/x/perf/benchmath"
)

// confidence is the confidence level of reported median intervals.
const confidence = 0.95

// updateRunningStat updates a single running statistic using Welford's online algorithm.
func updateRunningStat(rs *RunningStat, value float64) {
	rs.Count++
	if rs.Count == 1 {
		rs.Min = value
		rs.Max = value
	} else {
		if value < rs.Min {
			rs.Min = value
		}
		if value > rs.Max {
			rs.Max = value
		}
	}

	delta := value - rs.Mean
	rs.Mean += delta / float64(rs.Count)
	delta2 := value - rs.Mean
	rs.M2 += delta * delta2
}

// Summarize computes moments with a running stat and a distribution-free
// median confidence interval. Interval bounds that cannot be established from
// too few values are left nil.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	var rs RunningStat
	for _, v := range values {
		updateRunningStat(&rs, v)
	}

	sample := benchmath.NewSample(slices.Clone(values), &benchmath.DefaultThresholds)
	s := benchmath.AssumeNothing.Summary(sample, confidence)

	return Summary{
		N:          len(values),
		Min:        rs.Min,
		Max:        rs.Max,
		Mean:       rs.Mean,
		StdDev:     rs.StdDev(),
		Median:     s.Center,
		Lo:         finite(s.Lo),
		Hi:         finite(s.Hi),
		Confidence: s.Confidence,
	}
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
