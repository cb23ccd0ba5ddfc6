package linguistics

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed baseline.yaml
var defaultBaselineYAML []byte

// Baseline supplies general-language n-gram frequencies. Implementations must
// be safe for concurrent reads.
type Baseline interface {
	// RatePerThousand returns how often ngram is expected per 1000 n-grams of
	// the same order. ok is false when the phrase is unknown.
	RatePerThousand(ngram string) (rate float64, ok bool)
	// FallbackRate is used for phrases the table does not know.
	FallbackRate() float64
}

// baselineFile is the on-disk layout of a frequency table.
//
// Example:
//
//	fallback_rate: 0.05
//	ngrams:
//	  "a lot of": 3.5
type baselineFile struct {
	FallbackRate float64            `yaml:"fallback_rate"`
	NGrams       map[string]float64 `yaml:"ngrams"`
}

// TableBaseline is a Baseline backed by an in-memory table.
type TableBaseline struct {
	rates    map[string]float64
	fallback float64
}

// RatePerThousand implements Baseline.
func (b *TableBaseline) RatePerThousand(ngram string) (float64, bool) {
	rate, ok := b.rates[ngram]
	return rate, ok
}

// FallbackRate implements Baseline.
func (b *TableBaseline) FallbackRate() float64 {
	return b.fallback
}

// Len returns the number of phrases in the table.
func (b *TableBaseline) Len() int {
	return len(b.rates)
}

// LoadBaseline parses a YAML frequency table.
func LoadBaseline(r io.Reader) (*TableBaseline, error) {
	var f baselineFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("linguistics: decode baseline yaml: %w", err)
	}
	if f.FallbackRate <= 0 {
		return nil, fmt.Errorf("linguistics: baseline fallback_rate must be positive")
	}

	rates := make(map[string]float64, len(f.NGrams))
	for phrase, rate := range f.NGrams {
		if rate <= 0 {
			return nil, fmt.Errorf("linguistics: baseline rate for %q must be positive", phrase)
		}
		rates[strings.ToLower(strings.Join(strings.Fields(phrase), " "))] = rate
	}
	return &TableBaseline{rates: rates, fallback: f.FallbackRate}, nil
}

var (
	defaultBaseline     *TableBaseline
	defaultBaselineOnce sync.Once
)

// DefaultBaseline returns the embedded English table.
func DefaultBaseline() *TableBaseline {
	defaultBaselineOnce.Do(func() {
		b, err := LoadBaseline(bytes.NewReader(defaultBaselineYAML))
		if err != nil {
			panic(fmt.Sprintf("embedded baseline is invalid: %v", err))
		}
		defaultBaseline = b
	})
	return defaultBaseline
}
