package results

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(t *testing.T, id string, timings ...float64) fixture.Export {
	t.Helper()
	rec := fixture.NewRecord(id)
	rec.ToolVersion = "v1.0.0"
	for _, timing := range timings {
		require.NoError(t, rec.Update(timing, fixture.Quality{"ratio": 2}))
	}
	return rec.Export()
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "compression_bench_zstd-best-text", Slugify("compression/bench_zstd[best-text]"))
	assert.Equal(t, "codec_doc", Slugify("Codec:Doc"))
	assert.Equal(t, "a-b", Slugify("--A   B--"))
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, sampleRecord(t, "codec/bench_sonnet[default-small]", 0.1, 0.2))
	require.NoError(t, err)
	path, err := Write(dir, sampleRecord(t, "codec/bench_gojson[default-small]", 0.3))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "codec_bench_gojson-default-small.json"), path)

	records, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "codec/bench_gojson[default-small]", records[0].ID)
	assert.Equal(t, "gojson", records[0].Tool)
	assert.Equal(t, []float64{0.1, 0.2}, records[1].Stats.Timings)
	assert.Equal(t, []float64{2, 2}, records[1].Stats.Quality["ratio"])
}

func TestWriteReplacesEarlierResult(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(dir, sampleRecord(t, "bench_snappy[default-text]", 0.1))
	require.NoError(t, err)
	_, err = Write(dir, sampleRecord(t, "bench_snappy[default-text]", 0.5, 0.6))
	require.NoError(t, err)

	records, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []float64{0.5, 0.6}, records[0].Stats.Timings)
}

func TestWriteRejectsSlugCollision(t *testing.T) {
	// GIVEN a stored result for an input file named a.json
	dir := t.TempDir()
	first := sampleRecord(t, "codec/bench_gojson[default-a.json]", 0.1)
	path, err := Write(dir, first)
	require.NoError(t, err)

	// WHEN a different input that slugs to the same name is written
	_, err = Write(dir, sampleRecord(t, "codec/bench_gojson[default-a-json]", 0.2))

	// THEN the write is refused and the first result is intact
	require.ErrorIs(t, err, ErrNameCollision)
	stored, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
}

func TestLoadMissingDir(t *testing.T) {
	records, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadRejectsInvalidRecord(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{"id": "x", "stats": {"timings": ["slow"]}}`), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestValidate(t *testing.T) {
	valid := `{"id":"bench_a","name":null,"tool":"a","tool_version":"1","algorithm":"default","stats":{"timings":[0.1],"quality":{"x":[1]}}}`
	require.NoError(t, Validate([]byte(valid)))

	negative := `{"id":"bench_a","name":null,"tool":"a","tool_version":"1","algorithm":"default","stats":{"timings":[-1],"quality":{}}}`
	assert.Error(t, Validate([]byte(negative)))

	missing := `{"id":"bench_a","tool":"a"}`
	assert.Error(t, Validate([]byte(missing)))
}
