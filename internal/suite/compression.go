package suite

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/mwiater/redqueen/internal/fixture"
)

func init() {
	register(Suite{
		Name:        "compression",
		Description: "block compression of text, random and repetitive corpora",
		Inputs:      compressionInputs,
		Benches: []Bench{
			{Tool: "snappy", Module: "github.com/golang/snappy", Variants: []string{fixture.DefaultAlgorithm}, Prepare: prepareSnappy},
			{Tool: "zstd", Module: "github.com/klauspost/compress", Variants: []string{"fastest", "default", "better", "best"}, Prepare: prepareZstd},
			{Tool: "s2", Module: "github.com/klauspost/compress", Variants: []string{"default", "better", "best"}, Prepare: prepareS2},
			{Tool: "flate", Module: "github.com/klauspost/compress", Variants: []string{"1", "6", "9"}, Prepare: prepareFlate},
		},
	})
}

func compressionInputs(sizes []int) ([]Input, error) {
	var inputs []Input
	for _, kind := range []string{KindText, KindRandom, KindRepeat} {
		for _, size := range sizes {
			data, err := Generate(kind, size)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, Input{Name: kind + "-" + SizeLabel(size), Data: data})
		}
	}
	return inputs, nil
}

// compressionCase wraps an encoder into a case. The encoder is run once and
// its output decoded to check the round trip before any timing happens.
func compressionCase(in Input, encode func() ([]byte, error), decode func([]byte) ([]byte, error), closeFn func()) (Case, error) {
	out, err := encode()
	if err != nil {
		return Case{}, err
	}
	back, err := decode(out)
	if err != nil {
		return Case{}, fmt.Errorf("decoding %s: %w", in.Name, err)
	}
	if !bytes.Equal(back, in.Data) {
		return Case{}, fmt.Errorf("round trip of %s does not reproduce the input", in.Name)
	}

	size := float64(len(in.Data))
	return Case{
		Op: func() (int, error) {
			out, err := encode()
			return len(out), err
		},
		Gauge: func(n int) (fixture.Quality, error) {
			if n == 0 {
				return nil, fmt.Errorf("empty output for %s", in.Name)
			}
			return fixture.Quality{"ratio": size / float64(n), "bytes": float64(n)}, nil
		},
		Close: closeFn,
	}, nil
}

func prepareSnappy(_ string, in Input) (Case, error) {
	dst := make([]byte, snappy.MaxEncodedLen(len(in.Data)))
	return compressionCase(in,
		func() ([]byte, error) { return snappy.Encode(dst, in.Data), nil },
		func(b []byte) ([]byte, error) { return snappy.Decode(nil, b) },
		nil)
}

var zstdLevels = map[string]zstd.EncoderLevel{
	"fastest": zstd.SpeedFastest,
	"default": zstd.SpeedDefault,
	"better":  zstd.SpeedBetterCompression,
	"best":    zstd.SpeedBestCompression,
}

func prepareZstd(variant string, in Input) (Case, error) {
	level, ok := zstdLevels[variant]
	if !ok {
		return Case{}, fmt.Errorf("unknown zstd level %q", variant)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return Case{}, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		_ = enc.Close()
		return Case{}, err
	}
	dst := make([]byte, 0, len(in.Data)+len(in.Data)/8+64)
	c, err := compressionCase(in,
		func() ([]byte, error) { return enc.EncodeAll(in.Data, dst[:0]), nil },
		func(b []byte) ([]byte, error) { return dec.DecodeAll(b, nil) },
		func() {
			_ = enc.Close()
			dec.Close()
		})
	if err != nil {
		_ = enc.Close()
		dec.Close()
	}
	return c, err
}

func prepareS2(variant string, in Input) (Case, error) {
	var encode func(dst, src []byte) []byte
	switch variant {
	case "default":
		encode = s2.Encode
	case "better":
		encode = s2.EncodeBetter
	case "best":
		encode = s2.EncodeBest
	default:
		return Case{}, fmt.Errorf("unknown s2 mode %q", variant)
	}
	dst := make([]byte, s2.MaxEncodedLen(len(in.Data)))
	return compressionCase(in,
		func() ([]byte, error) { return encode(dst, in.Data), nil },
		func(b []byte) ([]byte, error) { return s2.Decode(nil, b) },
		nil)
}

func prepareFlate(variant string, in Input) (Case, error) {
	level, err := strconv.Atoi(variant)
	if err != nil {
		return Case{}, fmt.Errorf("invalid flate level %q: %w", variant, err)
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return Case{}, err
	}
	return compressionCase(in,
		func() ([]byte, error) {
			buf.Reset()
			w.Reset(&buf)
			if _, err := w.Write(in.Data); err != nil {
				return nil, err
			}
			if err := w.Close(); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
		func(b []byte) ([]byte, error) {
			r := flate.NewReader(bytes.NewReader(b))
			defer r.Close()
			return io.ReadAll(r)
		},
		nil)
}
