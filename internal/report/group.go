package report

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/mwiater/redqueen/internal/fixture"
)

// TimeMetric is the metric name the timings of a record are reported under.
const TimeMetric = "time"

// Group turns records into series keyed by benchmark, Go version, tool, tool
// version, algorithm, hardware and instance. When two records share a key the
// later one wins. The result is sorted by key.
func Group(records []fixture.Export) []Series {
	byKey := make(map[Key]Series, len(records))
	for _, rec := range records {
		key := keyOf(rec)
		metrics := map[string][]float64{TimeMetric: rec.Stats.Timings}
		for name, values := range rec.Stats.Quality {
			if name == TimeMetric {
				continue
			}
			metrics[name] = values
		}
		byKey[key] = Series{Key: key, Metrics: metrics}
	}

	series := make([]Series, 0, len(byKey))
	for _, s := range byKey {
		series = append(series, s)
	}
	sort.Slice(series, func(i, j int) bool { return lessKey(series[i].Key, series[j].Key) })
	return series
}

func keyOf(rec fixture.Export) Key {
	return Key{
		Benchmark:   benchmarkOf(rec.ID),
		GoVersion:   goMinor(rec.GoVersion),
		Tool:        rec.Tool,
		ToolVersion: rec.ToolVersion,
		Algorithm:   rec.Algorithm,
		Hardware:    deref(rec.HardwareDescription),
		Instance:    instanceOf(rec),
	}
}

// benchmarkOf returns the suite prefix of an id ("compression/bench_x[...]"
// -> "compression"), or the function name when the id has no suite.
func benchmarkOf(id string) string {
	name := id
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i]
	}
	return name
}

// instanceOf prefers the record name and falls back to the id parameters.
func instanceOf(rec fixture.Export) string {
	if rec.Name != nil && *rec.Name != "" {
		return *rec.Name
	}
	open := strings.Index(rec.ID, "[")
	if open >= 0 && strings.HasSuffix(rec.ID, "]") {
		return rec.ID[open+1 : len(rec.ID)-1]
	}
	return rec.ID
}

// goMinor truncates "go1.22.3" to "go1.22".
func goMinor(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 3 {
		return v
	}
	return parts[0] + "." + parts[1]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func lessKey(a, b Key) bool {
	for _, c := range []int{
		strings.Compare(a.Benchmark, b.Benchmark),
		compareVersions(a.GoVersion, b.GoVersion),
		strings.Compare(a.Tool, b.Tool),
		compareVersions(a.ToolVersion, b.ToolVersion),
		strings.Compare(a.Algorithm, b.Algorithm),
		strings.Compare(a.Hardware, b.Hardware),
		strings.Compare(a.Instance, b.Instance),
	} {
		if c != 0 {
			return c < 0
		}
	}
	return false
}

// compareVersions orders module versions ("v1.9.3" < "v1.18.0") and Go
// releases ("go1.9" < "go1.22") numerically. Labels that are not versions
// compare as text and sort after versions.
func compareVersions(a, b string) int {
	va, vb := canonicalVersion(a), canonicalVersion(b)
	switch {
	case va != "" && vb != "":
		if c := semver.Compare(va, vb); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case va != "":
		return -1
	case vb != "":
		return 1
	}
	return strings.Compare(a, b)
}

func canonicalVersion(v string) string {
	if rest, ok := strings.CutPrefix(v, "go"); ok {
		v = "v" + rest
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// Selector picks the series of one tool configuration.
type Selector struct {
	Tool        string
	ToolVersion string
	Algorithm   string
}

// ParseSelector parses "tool[@version][/algorithm]". An empty algorithm means
// the default one and an empty version means the newest version present.
func ParseSelector(s string) Selector {
	s = strings.TrimSpace(s)
	var sel Selector
	if i := strings.Index(s, "/"); i >= 0 {
		sel.Algorithm = s[i+1:]
		s = s[:i]
	}
	if i := strings.Index(s, "@"); i >= 0 {
		sel.ToolVersion = s[i+1:]
		s = s[:i]
	}
	sel.Tool = s
	return sel
}

func (s Selector) String() string {
	out := s.Tool
	if s.ToolVersion != "" {
		out += "@" + s.ToolVersion
	}
	return out + "/" + s.algorithm()
}

func (s Selector) algorithm() string {
	if s.Algorithm == "" {
		return fixture.DefaultAlgorithm
	}
	return s.Algorithm
}

// resolve fills in the newest tool version found in series.
func (s Selector) resolve(series []Series) Selector {
	if s.ToolVersion != "" {
		return s
	}
	for _, sr := range series {
		if sr.Tool == s.Tool && (s.ToolVersion == "" || compareVersions(sr.ToolVersion, s.ToolVersion) > 0) {
			s.ToolVersion = sr.ToolVersion
		}
	}
	return s
}

func (s Selector) matches(k Key) bool {
	return k.Tool == s.Tool && k.ToolVersion == s.ToolVersion && k.Algorithm == s.algorithm()
}
