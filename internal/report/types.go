// internal/report/types.go
package report

import "math"

// RunningStat holds the necessary values for online calculation of mean, variance, and stddev.
type RunningStat struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"-"` // Sum of squares of differences from the current mean
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// StdDev returns the sample standard deviation.
func (rs RunningStat) StdDev() float64 {
	if rs.Count < 2 {
		return 0
	}
	return math.Sqrt(rs.M2 / float64(rs.Count-1))
}

// Key identifies one measured series. Later records with the same key replace
// earlier ones.
type Key struct {
	Benchmark   string `json:"benchmark"`
	GoVersion   string `json:"go_version"`
	Tool        string `json:"tool"`
	ToolVersion string `json:"tool_version"`
	Algorithm   string `json:"algorithm"`
	Hardware    string `json:"hardware"`
	Instance    string `json:"instance"`
}

// Series is the raw data of one key: the timing metric plus every quality metric.
type Series struct {
	Key
	Metrics map[string][]float64 `json:"metrics"`
}

// Summary describes the distribution of one metric.
type Summary struct {
	N          int      `json:"n"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Mean       float64  `json:"mean"`
	StdDev     float64  `json:"stddev"`
	Median     float64  `json:"median"`
	Lo         *float64 `json:"lo,omitempty"`
	Hi         *float64 `json:"hi,omitempty"`
	Confidence float64  `json:"confidence"`
}

// SeriesSummary is a Series reduced to per-metric summaries.
type SeriesSummary struct {
	Key
	Metrics map[string]Summary `json:"metrics"`
}

// Ratio is the distribution of one tool's values divided by the reference
// median of the same hardware and instance.
type Ratio struct {
	Tool        string    `json:"tool"`
	ToolVersion string    `json:"tool_version"`
	Algorithm   string    `json:"algorithm"`
	Metric      string    `json:"metric"`
	Values      []float64 `json:"values"`
	Summary     Summary   `json:"summary"`
}

// BenchmarkAnalysis groups everything known about one benchmark suite.
type BenchmarkAnalysis struct {
	Name      string          `json:"name"`
	Reference string          `json:"reference,omitempty"`
	Series    []SeriesSummary `json:"series"`
	Ratios    []Ratio         `json:"ratios,omitempty"`
}

// Analysis is the document the HTML report is rendered from.
type Analysis struct {
	Records    int                 `json:"records"`
	Benchmarks []BenchmarkAnalysis `json:"benchmarks"`
}
