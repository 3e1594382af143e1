package report

import (
	"sort"

	"golang.org/x/perf/benchmath"
)

// Comparison contrasts one metric of two tool configurations on the same
// benchmark, Go version, hardware and instance.
type Comparison struct {
	Benchmark string  `json:"benchmark"`
	GoVersion string  `json:"go_version"`
	Hardware  string  `json:"hardware"`
	Instance  string  `json:"instance"`
	Metric    string  `json:"metric"`
	Baseline  Summary `json:"baseline"`
	Candidate Summary `json:"candidate"`
	// Ratio is the candidate median over the baseline median.
	Ratio float64 `json:"ratio"`
	// Delta is the benchstat-style percentage change, "~" when not significant.
	Delta string  `json:"delta"`
	P     float64 `json:"p"`
}

// Compare matches the series of baseline and candidate by benchmark, Go
// version, hardware and instance and compares metric with a Mann-Whitney U
// test.
func Compare(series []Series, baseline, candidate Selector, metric string) []Comparison {
	baseline = baseline.resolve(series)
	candidate = candidate.resolve(series)

	type site struct {
		Benchmark, GoVersion, Hardware, Instance string
	}
	siteOf := func(k Key) site { return site{k.Benchmark, k.GoVersion, k.Hardware, k.Instance} }

	base := make(map[site][]float64)
	for _, s := range series {
		if baseline.matches(s.Key) {
			if values := s.Metrics[metric]; len(values) > 0 {
				base[siteOf(s.Key)] = values
			}
		}
	}

	var out []Comparison
	for _, s := range series {
		if !candidate.matches(s.Key) {
			continue
		}
		old, ok := base[siteOf(s.Key)]
		values := s.Metrics[metric]
		if !ok || len(values) == 0 {
			continue
		}

		oldSample := benchmath.NewSample(append([]float64(nil), old...), &benchmath.DefaultThresholds)
		newSample := benchmath.NewSample(append([]float64(nil), values...), &benchmath.DefaultThresholds)
		cmp := benchmath.AssumeNothing.Compare(oldSample, newSample)

		c := Comparison{
			Benchmark: s.Benchmark,
			GoVersion: s.GoVersion,
			Hardware:  s.Hardware,
			Instance:  s.Instance,
			Metric:    metric,
			Baseline:  Summarize(old),
			Candidate: Summarize(values),
			P:         cmp.P,
		}
		c.Delta = cmp.FormatDelta(c.Baseline.Median, c.Candidate.Median)
		if c.Baseline.Median != 0 {
			c.Ratio = c.Candidate.Median / c.Baseline.Median
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Benchmark != b.Benchmark {
			return a.Benchmark < b.Benchmark
		}
		if a.Hardware != b.Hardware {
			return a.Hardware < b.Hardware
		}
		return a.Instance < b.Instance
	})
	return out
}
