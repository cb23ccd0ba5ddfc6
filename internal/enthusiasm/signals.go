package enthusiasm

import (
	"strings"

	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
)

// Indicator thresholds on the raw signals.
const (
	paceIncreaseRatio = 1.15
	denseSpeechMin    = 0.6
	repetitionMin     = 0.2
	emphasisScale     = 5.0
)

type segmentSignals struct {
	paceRatio    float64
	pace         float64
	density      float64
	emphasis     float64
	emphasisHits int
	repetition   float64
}

func (s segmentSignals) energy() float64 {
	return weightPace*s.pace + weightDensity*s.density + weightEmphasis*s.emphasis + weightRepetition*s.repetition
}

func (s segmentSignals) indicators() []types.Indicator {
	out := []types.Indicator{}
	if s.paceRatio >= paceIncreaseRatio {
		out = append(out, types.IndicatorPaceIncrease)
	}
	if s.density >= denseSpeechMin {
		out = append(out, types.IndicatorDenseSpeech)
	}
	if s.emphasisHits > 0 {
		out = append(out, types.IndicatorEmphasisWords)
	}
	if s.repetition >= repetitionMin {
		out = append(out, types.IndicatorRepetition)
	}
	return out
}

func scoreSegment(words []types.WordTimestamp, sessionWPS float64) types.EnergySegment {
	sig := measure(words, sessionWPS)
	return types.EnergySegment{
		StartTime:   words[0].Start,
		EndTime:     words[len(words)-1].End,
		Text:        segmentText(words),
		EnergyScore: round3(clamp01(sig.energy())),
		Indicators:  sig.indicators(),
	}
}

func measure(words []types.WordTimestamp, sessionWPS float64) segmentSignals {
	var sig segmentSignals

	duration := words[len(words)-1].End - words[0].Start
	if duration > 0 && sessionWPS > 0 {
		sig.paceRatio = (float64(len(words)) / duration) / sessionWPS
		sig.pace = clamp01(sig.paceRatio - 0.5)
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		tok := lexicon.Normalize(w.Word)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
		if lexicon.IsEmphasis(tok) || strings.HasSuffix(strings.TrimSpace(w.Word), "!") {
			sig.emphasisHits++
		}
	}
	if len(tokens) == 0 {
		return sig
	}
	n := float64(len(tokens))

	content := 0
	for _, tok := range tokens {
		if lexicon.IsContent(tok) {
			content++
		}
	}
	sig.density = float64(content) / n
	sig.emphasis = clamp01(float64(sig.emphasisHits) / n * emphasisScale)
	sig.repetition = clamp01(float64(repeats(tokens)) / n)
	return sig
}

// repeats counts recurrences of content unigrams and of all bigrams.
func repeats(tokens []string) int {
	unigrams := make(map[string]int)
	bigrams := make(map[string]int)
	for i, tok := range tokens {
		if lexicon.IsContent(tok) {
			unigrams[tok]++
		}
		if i > 0 {
			bigrams[tokens[i-1]+" "+tok]++
		}
	}
	total := 0
	for _, c := range unigrams {
		total += c - 1
	}
	for _, c := range bigrams {
		total += c - 1
	}
	return total
}
