// internal/suite/suite.go
package suite

import (
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"slices"
	"sort"

	"github.com/mwiater/redqueen/internal/fixture"
)

// ErrUnknownSuite is returned when a selection names a suite that is not registered.
var ErrUnknownSuite = errors.New("unknown suite")

// ErrUnknownTool is returned when a selection names a tool its suite does not have.
var ErrUnknownTool = errors.New("unknown tool")

// Case is one prepared measurement: an operation over a fixed input and the
// gauge that scores its result.
type Case struct {
	Op    func() (int, error)
	Gauge fixture.Gauge[int]
	// Close releases encoder state, if any.
	Close func()
}

// Bench is one tool of a suite, measured once per variant and input.
type Bench struct {
	Tool string
	// Module is the Go module providing the tool. Empty means the standard library.
	Module   string
	Variants []string
	Prepare  func(variant string, in Input) (Case, error)
}

// Function returns the benchmark function name, "bench_<tool>".
func (b Bench) Function() string { return "bench_" + b.Tool }

// Suite groups the benches that run against the same inputs.
type Suite struct {
	Name        string
	Description string
	// Inputs builds the generated inputs for sizes.
	Inputs func(sizes []int) ([]Input, error)
	// DirFilter reports whether a file of an input directory is usable.
	DirFilter func(name string) bool
	Benches   []Bench
}

// Tools lists the tool names of the suite.
func (s Suite) Tools() []string {
	tools := make([]string, 0, len(s.Benches))
	for _, b := range s.Benches {
		tools = append(tools, b.Tool)
	}
	return tools
}

var registry = map[string]Suite{}

func register(s Suite) {
	if _, dup := registry[s.Name]; dup {
		panic("suite: duplicate suite " + s.Name)
	}
	registry[s.Name] = s
}

// Suites returns every registered suite sorted by name.
func Suites() []Suite {
	out := make([]Suite, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the suite registered under name.
func Lookup(name string) (Suite, bool) {
	s, ok := registry[name]
	return s, ok
}

// Selection chooses a suite, optionally restricted to some tools, and the
// inputs it runs against. An InputDir replaces the generated inputs.
type Selection struct {
	Suite    string
	Tools    []string
	Sizes    []int
	InputDir string
}

// Job is one fixture run: a bench, one of its variants and one input.
type Job struct {
	Suite   string
	Bench   Bench
	Variant string
	Input   Input
}

// ID returns "<suite>/bench_<tool>[<variant>-<input>]".
func (j Job) ID() string {
	return fmt.Sprintf("%s/%s[%s-%s]", j.Suite, j.Bench.Function(), j.Variant, j.Input.Name)
}

// Plan expands selections into jobs in suite, tool, variant, input order. No
// selections means every suite with default sizes.
func Plan(selections []Selection) ([]Job, error) {
	if len(selections) == 0 {
		for _, s := range Suites() {
			selections = append(selections, Selection{Suite: s.Name})
		}
	}

	var jobs []Job
	for _, sel := range selections {
		s, ok := Lookup(sel.Suite)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, sel.Suite)
		}
		for _, tool := range sel.Tools {
			if !slices.Contains(s.Tools(), tool) {
				return nil, fmt.Errorf("%w: %q in suite %s", ErrUnknownTool, tool, s.Name)
			}
		}

		inputs, err := inputsFor(s, sel)
		if err != nil {
			return nil, fmt.Errorf("suite %s: %w", s.Name, err)
		}

		for _, b := range s.Benches {
			if len(sel.Tools) > 0 && !slices.Contains(sel.Tools, b.Tool) {
				continue
			}
			for _, variant := range b.Variants {
				for _, in := range inputs {
					jobs = append(jobs, Job{Suite: s.Name, Bench: b, Variant: variant, Input: in})
				}
			}
		}
	}
	return jobs, nil
}

func inputsFor(s Suite, sel Selection) ([]Input, error) {
	if sel.InputDir != "" {
		return LoadDir(sel.InputDir, s.DirFilter)
	}
	sizes := sel.Sizes
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	return s.Inputs(sizes)
}

// ToolVersion returns the version of module linked into the running binary,
// or the Go version for standard library tools.
func ToolVersion(module string) string {
	if module == "" {
		return runtime.Version()
	}
	if info, ok := readBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path != module {
				continue
			}
			if dep.Replace != nil && dep.Replace.Version != "" {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return "unknown"
}

var readBuildInfo = debug.ReadBuildInfo

// Hardware describes the machine the benchmarks run on.
func Hardware() string {
	return fmt.Sprintf("%s/%s (%d CPU)", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
}
