// internal/results/results.go
// Package results persists benchmark records as one JSON file per benchmark.
package results

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/mwiater/redqueen/internal/fixture"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"
)

//go:embed record.schema.json
var recordSchema []byte

// ErrNameCollision is returned by Write when the file name of a record is
// already taken by a different benchmark id.
var ErrNameCollision = errors.New("result file name already used by another benchmark")

var (
	schemaLoader = gojsonschema.NewBytesLoader(recordSchema)
	slugInvalid  = regexp.MustCompile(`[^a-z0-9_]+`)
	slugDashes   = regexp.MustCompile(`-+`)
)

// Slugify converts a string into a "slug" format,
// including replacing colons (:) and slashes (/) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(":", "_", "/", "_").Replace(s)
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")
	return s
}

// FileName returns the file name a record with the given id is written to.
func FileName(id string) string {
	return Slugify(id) + ".json"
}

// Write stores the record in dir, replacing any earlier result of the same
// benchmark, and returns the file path. Ids that slug to the same file name
// as a different stored id are rejected with ErrNameCollision.
func Write(dir string, rec fixture.Export) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding result %s: %w", rec.ID, err)
	}
	if err := Validate(data); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(rec.ID))
	if existing, ok := storedID(path); ok && existing != rec.ID {
		return "", fmt.Errorf("%w: %q and %q both map to %s", ErrNameCollision, existing, rec.ID, filepath.Base(path))
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("error writing result file: %w", err)
	}
	return path, nil
}

// storedID returns the id of the record already at path, if any.
func storedID(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var head struct {
		ID string `json:"id"`
	}
	if json.Unmarshal(data, &head) != nil {
		return "", false
	}
	return head.ID, true
}

// Validate checks a raw record document against the record schema.
func Validate(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("record validation failed: %s", strings.Join(errs, ", "))
}

// ReadFile reads and validates a single result file.
func ReadFile(path string) (fixture.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture.Export{}, err
	}
	if err := Validate(data); err != nil {
		return fixture.Export{}, fmt.Errorf("%s: %w", path, err)
	}
	var rec fixture.Export
	if err := json.Unmarshal(data, &rec); err != nil {
		return fixture.Export{}, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Load reads every *.json result in dir concurrently and returns the records
// sorted by id. A missing directory yields no records.
func Load(dir string) ([]fixture.Export, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	sort.Strings(paths)

	records := make([]fixture.Export, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			rec, err := ReadFile(path)
			if err != nil {
				return err
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}
