package suite

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/redqueen/internal/fixture"
)

func TestGenerateIsDeterministic(t *testing.T) {
	for _, kind := range []string{KindText, KindRandom, KindRepeat} {
		a, err := Generate(kind, 1000)
		require.NoError(t, err)
		b, err := Generate(kind, 1000)
		require.NoError(t, err)
		assert.Len(t, a, 1000, kind)
		assert.Equal(t, a, b, kind)
	}

	text, _ := Generate(KindText, 256)
	random, _ := Generate(KindRandom, 256)
	assert.NotEqual(t, text, random)

	empty, err := Generate(KindText, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGenerateRejectsBadArguments(t *testing.T) {
	_, err := Generate("binary", 10)
	assert.Error(t, err)
	_, err = Generate(KindText, -1)
	assert.Error(t, err)
}

func TestGenerateDocument(t *testing.T) {
	doc, err := GenerateDocument(2048)
	require.NoError(t, err)
	assert.True(t, json.Valid(doc))
	assert.GreaterOrEqual(t, len(doc), 2048)

	again, err := GenerateDocument(2048)
	require.NoError(t, err)
	assert.Equal(t, doc, again)

	tiny, err := GenerateDocument(0)
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(tiny, &items))
	assert.Len(t, items, 1)
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "100B", SizeLabel(100))
	assert.Equal(t, "4KiB", SizeLabel(4096))
	assert.Equal(t, "1500B", SizeLabel(1500))
	assert.Equal(t, "1MiB", SizeLabel(1<<20))
	assert.Equal(t, "0B", SizeLabel(0))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`[1]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	all, err := LoadDir(dir, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	codec, _ := Lookup("codec")
	jsonOnly, err := LoadDir(dir, codec.DirFilter)
	require.NoError(t, err)
	require.Len(t, jsonOnly, 2)
	assert.Equal(t, "a.json", jsonOnly[0].Name)
	assert.Equal(t, []byte(`[1]`), jsonOnly[1].Data)

	_, err = LoadDir(t.TempDir(), nil)
	assert.Error(t, err)
	_, err = LoadDir(filepath.Join(dir, "missing"), nil)
	assert.Error(t, err)
}

func TestSuitesAreRegistered(t *testing.T) {
	var names []string
	for _, s := range Suites() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"codec", "compression"}, names)

	compression, ok := Lookup("compression")
	require.True(t, ok)
	assert.Equal(t, []string{"snappy", "zstd", "s2", "flate"}, compression.Tools())
}

func TestPlanSelection(t *testing.T) {
	jobs, err := Plan([]Selection{{Suite: "compression", Tools: []string{"zstd"}, Sizes: []int{64}}})
	require.NoError(t, err)

	require.Len(t, jobs, 12)
	assert.Equal(t, "compression/bench_zstd[fastest-text-64B]", jobs[0].ID())
	assert.Equal(t, "compression/bench_zstd[best-repeat-64B]", jobs[11].ID())
	for _, job := range jobs {
		assert.Equal(t, "zstd", fixture.ToolFromName(job.ID()))
	}
}

func TestPlanDefaultsToEverySuite(t *testing.T) {
	jobs, err := Plan(nil)
	require.NoError(t, err)

	perSuite := map[string]int{}
	for _, job := range jobs {
		perSuite[job.Suite]++
	}
	// compression: 11 variants x 9 inputs, codec: 4 tools x 3 documents.
	assert.Equal(t, map[string]int{"compression": 99, "codec": 12}, perSuite)
}

func TestPlanUsesInputDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corpus.bin"), []byte("abcabcabc"), 0o644))

	jobs, err := Plan([]Selection{{Suite: "compression", Tools: []string{"snappy"}, InputDir: dir}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "compression/bench_snappy[default-corpus.bin]", jobs[0].ID())
}

func TestPlanRejectsUnknownNames(t *testing.T) {
	_, err := Plan([]Selection{{Suite: "vision"}})
	assert.ErrorIs(t, err, ErrUnknownSuite)

	_, err = Plan([]Selection{{Suite: "codec", Tools: []string{"yaml"}}})
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestCompressionCases(t *testing.T) {
	in, err := Generate(KindRepeat, 4096)
	require.NoError(t, err)
	input := Input{Name: "repeat-4KiB", Data: in}

	s, _ := Lookup("compression")
	for _, b := range s.Benches {
		for _, variant := range b.Variants {
			t.Run(b.Tool+"/"+variant, func(t *testing.T) {
				c, err := b.Prepare(variant, input)
				require.NoError(t, err)
				if c.Close != nil {
					defer c.Close()
				}

				n, err := c.Op()
				require.NoError(t, err)
				assert.Positive(t, n)

				q, err := c.Gauge(n)
				require.NoError(t, err)
				assert.Equal(t, float64(n), q["bytes"])
				assert.Greater(t, q["ratio"], 1.0)

				again, err := c.Op()
				require.NoError(t, err)
				assert.Equal(t, n, again)
			})
		}
	}
}

func TestCompressionRejectsUnknownVariant(t *testing.T) {
	s, _ := Lookup("compression")
	for _, b := range s.Benches {
		if b.Tool == "snappy" {
			continue
		}
		_, err := b.Prepare("turbo", Input{Name: "x", Data: []byte("x")})
		assert.Error(t, err, b.Tool)
	}
}

func TestDecodersAgree(t *testing.T) {
	doc, err := GenerateDocument(4096)
	require.NoError(t, err)
	input := Input{Name: "doc", Data: doc}

	s, _ := Lookup("codec")
	counts := map[string]int{}
	for _, b := range s.Benches {
		c, err := b.Prepare(fixture.DefaultAlgorithm, input)
		require.NoError(t, err, b.Tool)
		n, err := c.Op()
		require.NoError(t, err, b.Tool)
		counts[b.Tool] = n

		q, err := c.Gauge(n)
		require.NoError(t, err)
		assert.Equal(t, float64(len(doc)), q["bytes"])
	}
	for tool, n := range counts {
		assert.Equal(t, counts["stdjson"], n, tool)
	}
}

func TestDecoderRejectsInvalidDocument(t *testing.T) {
	s, _ := Lookup("codec")
	_, err := s.Benches[0].Prepare(fixture.DefaultAlgorithm, Input{Name: "bad", Data: []byte(`{"a":`)})
	assert.Error(t, err)
}

func TestCountValues(t *testing.T) {
	var v any
	require.NoError(t, json.Unmarshal([]byte(`{"a":[1,2],"b":null}`), &v))
	assert.Equal(t, 5, countValues(v))
	assert.Equal(t, 1, countValues("x"))
}

func TestToolVersion(t *testing.T) {
	original := readBuildInfo
	t.Cleanup(func() { readBuildInfo = original })
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Deps: []*debug.Module{
			{Path: "github.com/golang/snappy", Version: "v0.0.4"},
			{Path: "github.com/klauspost/compress", Version: "v1.17.0", Replace: &debug.Module{Path: "../compress", Version: "v1.18.0"}},
		}}, true
	}

	assert.Equal(t, "v0.0.4", ToolVersion("github.com/golang/snappy"))
	assert.Equal(t, "v1.18.0", ToolVersion("github.com/klauspost/compress"))
	assert.Equal(t, "unknown", ToolVersion("github.com/goccy/go-json"))
	assert.Equal(t, runtime.Version(), ToolVersion(""))
}

func TestHardware(t *testing.T) {
	assert.True(t, strings.HasPrefix(Hardware(), runtime.GOOS+"/"+runtime.GOARCH+" ("))
}

func fastOptions() []fixture.Option {
	return []fixture.Option{fixture.WithMaxTime(2 * time.Millisecond)}
}

func TestRunnerRecordsEveryJob(t *testing.T) {
	// GIVEN a runner restricted to a single codec job
	logger, _ := test.NewNullLogger()
	var started, finished int
	r := &Runner{
		Options:  fastOptions(),
		Log:      logger,
		OnStart:  func(_ Job, index, total int) { started++; assert.Equal(t, 1, total) },
		OnFinish: func(_ Job, _ *fixture.Record, err error) { finished++; assert.NoError(t, err) },
	}

	// WHEN it runs
	var records []*fixture.Record
	err := r.Run(context.Background(), []Selection{{Suite: "codec", Tools: []string{"stdjson"}, Sizes: []int{256}}},
		func(rec *fixture.Record) error {
			records = append(records, rec)
			return nil
		})

	// THEN the record carries the job identity and aligned quality series
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, "codec/bench_stdjson[default-doc-256B]", rec.ID)
	assert.Equal(t, "stdjson", rec.Tool)
	assert.Equal(t, "doc-256B", rec.Name)
	assert.Equal(t, fixture.DefaultAlgorithm, rec.Algorithm)
	assert.Equal(t, runtime.Version(), rec.ToolVersion)
	assert.Equal(t, Hardware(), rec.HardwareDescription)
	assert.Positive(t, rec.Rounds())
	assert.Len(t, rec.Quality("fields"), rec.Rounds())
	assert.Equal(t, 1, started)
	assert.Equal(t, 1, finished)
}

func TestRunnerContinuesAfterFailedJob(t *testing.T) {
	// GIVEN a suite whose first tool cannot be prepared
	boom := errors.New("boom")
	register(Suite{
		Name:   "scratch",
		Inputs: func(sizes []int) ([]Input, error) { return []Input{{Name: "one", Data: []byte("1")}}, nil },
		Benches: []Bench{
			{Tool: "broken", Variants: []string{"a"}, Prepare: func(string, Input) (Case, error) { return Case{}, boom }},
			{Tool: "noop", Variants: []string{"a"}, Prepare: func(string, Input) (Case, error) {
				return Case{
					Op: func() (int, error) {
						time.Sleep(50 * time.Microsecond)
						return 1, nil
					},
					Gauge: func(int) (fixture.Quality, error) { return fixture.Quality{}, nil },
				}, nil
			}},
		},
	})
	t.Cleanup(func() { delete(registry, "scratch") })

	logger, hook := test.NewNullLogger()
	r := &Runner{Options: fastOptions(), Log: logger}

	// WHEN it runs
	var ids []string
	err := r.Run(context.Background(), []Selection{{Suite: "scratch"}}, func(rec *fixture.Record) error {
		ids = append(ids, rec.ID)
		return nil
	})

	// THEN the healthy job is recorded and the failure is reported
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "scratch/bench_broken[a-one]")
	assert.Equal(t, []string{"scratch/bench_noop[a-one]"}, ids)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "benchmark failed", hook.LastEntry().Message)
}

func TestRunnerStopsOnSinkError(t *testing.T) {
	boom := errors.New("disk full")
	calls := 0
	r := &Runner{Options: fastOptions()}

	err := r.Run(context.Background(), []Selection{{Suite: "codec", Tools: []string{"stdjson", "gojson"}, Sizes: []int{128}}},
		func(*fixture.Record) error {
			calls++
			return boom
		})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRunnerHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Runner{Options: fastOptions()}

	err := r.Run(ctx, []Selection{{Suite: "codec", Sizes: []int{128}}}, func(*fixture.Record) error {
		t.Fatal("sink must not be called")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
