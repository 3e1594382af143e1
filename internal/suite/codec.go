package suite

import (
	"encoding/json"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	"github.com/sugawarayuuta/sonnet"

	"github.com/mwiater/redqueen/internal/fixture"
)

func init() {
	register(Suite{
		Name:        "codec",
		Description: "JSON decoding of generated documents into generic values",
		Inputs:      codecInputs,
		DirFilter:   func(name string) bool { return strings.HasSuffix(name, ".json") },
		Benches: []Bench{
			{Tool: "sonnet", Module: "github.com/sugawarayuuta/sonnet", Variants: []string{fixture.DefaultAlgorithm}, Prepare: decoderCase(sonnet.Unmarshal)},
			{Tool: "gojson", Module: "github.com/goccy/go-json", Variants: []string{fixture.DefaultAlgorithm}, Prepare: decoderCase(gojson.Unmarshal)},
			{Tool: "jsoniter", Module: "github.com/json-iterator/go", Variants: []string{fixture.DefaultAlgorithm}, Prepare: decoderCase(jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal)},
			{Tool: "stdjson", Variants: []string{fixture.DefaultAlgorithm}, Prepare: decoderCase(json.Unmarshal)},
		},
	})
}

func codecInputs(sizes []int) ([]Input, error) {
	inputs := make([]Input, 0, len(sizes))
	for _, size := range sizes {
		doc, err := GenerateDocument(size)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Name: "doc-" + SizeLabel(size), Data: doc})
	}
	return inputs, nil
}

func decoderCase(unmarshal func([]byte, any) error) func(string, Input) (Case, error) {
	return func(variant string, in Input) (Case, error) {
		if variant != fixture.DefaultAlgorithm {
			return Case{}, fmt.Errorf("unknown decoder variant %q", variant)
		}
		op := func() (int, error) {
			var v any
			if err := unmarshal(in.Data, &v); err != nil {
				return 0, err
			}
			return countValues(v), nil
		}
		if _, err := op(); err != nil {
			return Case{}, fmt.Errorf("decoding %s: %w", in.Name, err)
		}
		size := float64(len(in.Data))
		return Case{
			Op: op,
			Gauge: func(fields int) (fixture.Quality, error) {
				return fixture.Quality{"fields": float64(fields), "bytes": size}, nil
			},
		}, nil
	}
}

// countValues counts every value of a decoded document, containers included.
func countValues(v any) int {
	switch t := v.(type) {
	case map[string]any:
		n := 1
		for _, child := range t {
			n += countValues(child)
		}
		return n
	case []any:
		n := 1
		for _, child := range t {
			n += countValues(child)
		}
		return n
	default:
		return 1
	}
}
