package suite

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSizes are the generated input sizes in bytes.
var DefaultSizes = []int{4 << 10, 64 << 10, 1 << 20}

// Input is a named benchmark payload.
type Input struct {
	Name string
	Data []byte
}

// Corpus kinds of the compression suite.
const (
	KindText   = "text"
	KindRandom = "random"
	KindRepeat = "repeat"
)

var words = strings.Fields(`the quick brown fox jumps over lazy dog queen red race
	running place keep same benchmark measure time round batch call value
	tool compress decode stream block frame level ratio input output`)

// Generate returns a deterministic payload of exactly size bytes. The same
// kind and size always produce the same bytes.
func Generate(kind string, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative input size %d", size)
	}
	rng := rand.New(rand.NewPCG(uint64(size), 0x5eed))
	buf := make([]byte, 0, size)
	switch kind {
	case KindText:
		for len(buf) < size {
			buf = append(buf, words[rng.IntN(len(words))]...)
			if rng.IntN(12) == 0 {
				buf = append(buf, ".\n"...)
			} else {
				buf = append(buf, ' ')
			}
		}
	case KindRandom:
		for len(buf) < size {
			v := rng.Uint64()
			for i := 0; i < 8 && len(buf) < size; i++ {
				buf = append(buf, byte(v>>(8*i)))
			}
		}
	case KindRepeat:
		pattern := []byte("redqueen-")
		for len(buf) < size {
			buf = append(buf, pattern...)
		}
	default:
		return nil, fmt.Errorf("unknown input kind %q", kind)
	}
	return buf[:size], nil
}

// GenerateDocument returns a JSON array of records whose encoding is at least
// size bytes long. Generation is deterministic.
func GenerateDocument(size int) ([]byte, error) {
	type item struct {
		ID     int      `json:"id"`
		Name   string   `json:"name"`
		Active bool     `json:"active"`
		Score  float64  `json:"score"`
		Tags   []string `json:"tags"`
		Parent *int     `json:"parent"`
	}
	rng := rand.New(rand.NewPCG(uint64(size), 0xd0c))
	var items []item
	encoded := 1
	for i := 0; encoded < size || len(items) == 0; i++ {
		it := item{
			ID:     i,
			Name:   words[rng.IntN(len(words))] + "-" + words[rng.IntN(len(words))],
			Active: rng.IntN(2) == 0,
			Score:  float64(rng.IntN(100000)) / 100,
			Tags:   []string{words[rng.IntN(len(words))], words[rng.IntN(len(words))]},
		}
		if i > 0 && rng.IntN(3) == 0 {
			parent := rng.IntN(i)
			it.Parent = &parent
		}
		one, err := json.Marshal(it)
		if err != nil {
			return nil, err
		}
		encoded += len(one) + 1
		items = append(items, it)
	}
	return json.Marshal(items)
}

// LoadDir reads every regular file of dir accepted by keep (all files when
// keep is nil) as an input named after the file.
func LoadDir(dir string, keep func(name string) bool) ([]Input, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read input directory %s: %w", dir, err)
	}
	var inputs []Input
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if keep != nil && !keep(entry.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, Input{Name: entry.Name(), Data: data})
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no usable inputs in %s", dir)
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })
	return inputs, nil
}

// SizeLabel renders a byte count as "4KiB", "1MiB" or "100B".
func SizeLabel(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKiB", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
