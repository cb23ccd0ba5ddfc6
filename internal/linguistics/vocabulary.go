package linguistics

import (
	"sort"
	"strings"

	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
)

const (
	minPhraseOrder = 2
	maxPhraseOrder = 4
)

// frequentWords ranks content words by count, ties alphabetical.
func (e *Extractor) frequentWords(d *document) []types.WordFrequency {
	counts := make(map[string]int)
	for _, tok := range d.tokens {
		if lexicon.IsContent(tok) {
			counts[tok]++
		}
	}
	return RankWords(counts, e.cfg.VocabularyRetain)
}

// RankWords orders a count map by count descending then word, keeping at most limit.
func RankWords(counts map[string]int, limit int) []types.WordFrequency {
	out := make([]types.WordFrequency, 0, len(counts))
	for w, c := range counts {
		out = append(out, types.WordFrequency{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

type phraseCandidate struct {
	phrase string
	order  int
	count  int
	ratio  float64
}

// signaturePhrases finds recurring 2-4 word phrases used far more often than
// the baseline predicts. Phrases never cross sentence boundaries.
func (e *Extractor) signaturePhrases(d *document) []string {
	counts := make(map[string]int)
	orders := make(map[string]int)
	totals := make(map[int]int)

	for _, s := range d.sentences {
		for n := minPhraseOrder; n <= maxPhraseOrder; n++ {
			for i := 0; i+n <= len(s.Tokens); i++ {
				gram := s.Tokens[i : i+n]
				totals[n]++
				if allFunctionWords(gram) {
					continue
				}
				key := strings.Join(gram, " ")
				counts[key]++
				orders[key] = n
			}
		}
	}

	var candidates []phraseCandidate
	for phrase, c := range counts {
		if c < e.cfg.MinPhraseCount {
			continue
		}
		n := orders[phrase]
		observed := float64(c) * 1000 / float64(totals[n])
		expected, ok := e.baseline.RatePerThousand(phrase)
		if !ok {
			expected = e.baseline.FallbackRate()
		}
		ratio := observed / expected
		if ratio < e.cfg.SignatureRatio {
			continue
		}
		candidates = append(candidates, phraseCandidate{phrase: phrase, order: n, count: c, ratio: ratio})
	}

	// Longer phrases first so shorter ones they absorb can be dropped.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].order != candidates[j].order {
			return candidates[i].order > candidates[j].order
		}
		return candidates[i].phrase < candidates[j].phrase
	})
	var kept []phraseCandidate
	for _, c := range candidates {
		if absorbed(c, kept) {
			continue
		}
		kept = append(kept, c)
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].count != kept[j].count {
			return kept[i].count > kept[j].count
		}
		if kept[i].order != kept[j].order {
			return kept[i].order > kept[j].order
		}
		return kept[i].phrase < kept[j].phrase
	})
	if len(kept) > e.cfg.MaxPhrases {
		kept = kept[:e.cfg.MaxPhrases]
	}

	out := make([]string, 0, len(kept))
	for _, c := range kept {
		out = append(out, c.phrase)
	}
	return out
}

func absorbed(c phraseCandidate, longer []phraseCandidate) bool {
	padded := " " + c.phrase + " "
	for _, l := range longer {
		if l.order > c.order && l.count == c.count && strings.Contains(" "+l.phrase+" ", padded) {
			return true
		}
	}
	return false
}

func allFunctionWords(gram []string) bool {
	for _, tok := range gram {
		if !lexicon.IsStopword(tok) && !lexicon.IsFiller(tok) {
			return false
		}
	}
	return true
}
