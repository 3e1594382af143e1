// internal/fixture/record.go
package fixture

import (
	"fmt"
	"runtime"
	"slices"
	"sort"
	"strings"
)

// DefaultAlgorithm is the algorithm label of a record that never sets one.
const DefaultAlgorithm = "default"

// Quality maps a metric name to the value measured for a single call.
type Quality map[string]float64

// Record accumulates the timings and quality metrics of one benchmark.
//
// The identity fields are set by the caller before the fixture runs. Timings
// and quality series only grow, through Update, and stay index aligned.
type Record struct {
	ID                  string
	Name                string
	Tool                string
	ToolVersion         string
	Algorithm           string
	HardwareDescription string
	GoVersion           string

	timings []float64
	metrics []string
	quality map[string][]float64
}

// NewRecord returns an empty record for the benchmark id. The tool is derived
// from the id with ToolFromName.
func NewRecord(id string) *Record {
	return &Record{
		ID:        id,
		Tool:      ToolFromName(id),
		Algorithm: DefaultAlgorithm,
		GoVersion: runtime.Version(),
		quality:   make(map[string][]float64),
	}
}

// Update appends one call's duration in seconds and its quality metrics.
// Every update after the first must report the same metric names as the first
// one; otherwise the record is left unchanged and ErrQualityMismatch is returned.
func (r *Record) Update(seconds float64, q Quality) error {
	names := make([]string, 0, len(q))
	for name := range q {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(r.timings) > 0 && !slices.Equal(names, r.metrics) {
		return fmt.Errorf("%w: got [%s], want [%s]", ErrQualityMismatch,
			strings.Join(names, ", "), strings.Join(r.metrics, ", "))
	}
	if len(r.timings) == 0 {
		r.metrics = names
	}
	if r.quality == nil {
		r.quality = make(map[string][]float64, len(names))
	}

	r.timings = append(r.timings, seconds)
	for _, name := range names {
		r.quality[name] = append(r.quality[name], q[name])
	}
	return nil
}

// Rounds is the number of recorded timings.
func (r *Record) Rounds() int { return len(r.timings) }

// Min returns the fastest recorded timing, or 0 for an empty record.
func (r *Record) Min() float64 {
	if len(r.timings) == 0 {
		return 0
	}
	return slices.Min(r.timings)
}

// Max returns the slowest recorded timing, or 0 for an empty record.
func (r *Record) Max() float64 {
	if len(r.timings) == 0 {
		return 0
	}
	return slices.Max(r.timings)
}

// Mean returns the arithmetic mean of the timings, or 0 for an empty record.
func (r *Record) Mean() float64 {
	if len(r.timings) == 0 {
		return 0
	}
	// Compensated sum.
	var sum, c float64
	for _, t := range r.timings {
		y := t - c
		s := sum + y
		c = (s - sum) - y
		sum = s
	}
	return sum / float64(len(r.timings))
}

// Timings returns a copy of the recorded timings in seconds.
func (r *Record) Timings() []float64 { return slices.Clone(r.timings) }

// Metrics returns the recorded quality metric names in sorted order.
func (r *Record) Metrics() []string { return slices.Clone(r.metrics) }

// Quality returns a copy of the series recorded for a metric.
func (r *Record) Quality(name string) []float64 { return slices.Clone(r.quality[name]) }

// Export is the serializable form of a Record.
type Export struct {
	ID                  string      `json:"id"`
	Name                *string     `json:"name"`
	Tool                string      `json:"tool"`
	ToolVersion         string      `json:"tool_version"`
	Algorithm           string      `json:"algorithm"`
	HardwareDescription *string     `json:"hardware_description"`
	GoVersion           string      `json:"go_version,omitempty"`
	RunID               string      `json:"run_id,omitempty"`
	Stats               ExportStats `json:"stats"`
}

// ExportStats carries the raw measurements of an Export.
type ExportStats struct {
	Timings []float64            `json:"timings"`
	Quality map[string][]float64 `json:"quality"`
}

// Export snapshots the record. Empty names and hardware descriptions are
// exported as null.
func (r *Record) Export() Export {
	quality := make(map[string][]float64, len(r.metrics))
	for _, name := range r.metrics {
		quality[name] = slices.Clone(r.quality[name])
	}
	timings := slices.Clone(r.timings)
	if timings == nil {
		timings = []float64{}
	}
	return Export{
		ID:                  r.ID,
		Name:                optional(r.Name),
		Tool:                r.Tool,
		ToolVersion:         r.ToolVersion,
		Algorithm:           r.Algorithm,
		HardwareDescription: optional(r.HardwareDescription),
		GoVersion:           r.GoVersion,
		Stats: ExportStats{
			Timings: timings,
			Quality: quality,
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToolFromName derives the tool label from a benchmark name of the form
// "<suite>/bench_<tool>[params]". The suite prefix, up to the last '/' before
// the parameters, is dropped. A name without an underscore yields the text
// left after that.
func ToolFromName(fullname string) string {
	name := fullname
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return name
	}
	return parts[1]
}
