package report

import (
	"sort"

	"github.com/mwiater/redqueen/internal/fixture"
)

// Analyze groups records per benchmark, summarizes every series and, when
// reference names a tool, expresses every configuration relative to it.
func Analyze(records []fixture.Export, reference Selector) Analysis {
	series := Group(records)

	byBenchmark := make(map[string][]Series)
	var names []string
	for _, s := range series {
		if _, ok := byBenchmark[s.Benchmark]; !ok {
			names = append(names, s.Benchmark)
		}
		byBenchmark[s.Benchmark] = append(byBenchmark[s.Benchmark], s)
	}
	sort.Strings(names)

	analysis := Analysis{Records: len(records)}
	for _, name := range names {
		group := byBenchmark[name]
		ba := BenchmarkAnalysis{Name: name}
		for _, s := range group {
			summary := SeriesSummary{Key: s.Key, Metrics: make(map[string]Summary, len(s.Metrics))}
			for metric, values := range s.Metrics {
				summary.Metrics[metric] = Summarize(values)
			}
			ba.Series = append(ba.Series, summary)
		}
		if reference.Tool != "" {
			ref := reference.resolve(group)
			ba.Reference = ref.String()
			ba.Ratios = ratios(group, ref)
		}
		analysis.Benchmarks = append(analysis.Benchmarks, ba)
	}
	return analysis
}

// ratios divides every value by the reference median of the same Go version,
// hardware and instance. Sites without reference data are skipped.
func ratios(group []Series, ref Selector) []Ratio {
	type site struct {
		GoVersion, Hardware, Instance, Metric string
	}
	refMedian := make(map[site]float64)
	for _, s := range group {
		if !ref.matches(s.Key) {
			continue
		}
		for metric, values := range s.Metrics {
			if m := median(values); len(values) > 0 && m != 0 {
				refMedian[site{s.GoVersion, s.Hardware, s.Instance, metric}] = m
			}
		}
	}

	type config struct {
		Tool, ToolVersion, Algorithm, Metric string
	}
	collected := make(map[config][]float64)
	seen := make(map[config]bool)
	var order []config
	for _, s := range group {
		metrics := make([]string, 0, len(s.Metrics))
		for metric := range s.Metrics {
			metrics = append(metrics, metric)
		}
		sort.Strings(metrics)
		for _, metric := range metrics {
			m, ok := refMedian[site{s.GoVersion, s.Hardware, s.Instance, metric}]
			if !ok {
				continue
			}
			c := config{s.Tool, s.ToolVersion, s.Algorithm, metric}
			if !seen[c] {
				seen[c] = true
				order = append(order, c)
			}
			for _, v := range s.Metrics[metric] {
				collected[c] = append(collected[c], v/m)
			}
		}
	}

	out := make([]Ratio, 0, len(order))
	for _, c := range order {
		values := collected[c]
		out = append(out, Ratio{
			Tool:        c.Tool,
			ToolVersion: c.ToolVersion,
			Algorithm:   c.Algorithm,
			Metric:      c.Metric,
			Values:      values,
			Summary:     Summarize(values),
		})
	}
	return out
}
