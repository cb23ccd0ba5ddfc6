package linguistics

import (
	"math"

	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
)

const paceWindowWords = 5

// paceVariation is the coefficient of variation of speaking rate when timing is
// available, otherwise of sentence length.
func paceVariation(d *document) float64 {
	var samples []float64
	if len(d.words) >= 2*paceWindowWords {
		for i := 0; i+paceWindowWords <= len(d.words); i += paceWindowWords {
			span := d.words[i+paceWindowWords-1].End - d.words[i].Start
			if span > 0 {
				samples = append(samples, paceWindowWords/span)
			}
		}
	} else {
		for _, s := range d.sentences {
			samples = append(samples, float64(len(s.Tokens)))
		}
	}
	return round3(clamp01(coefficientOfVariation(samples)))
}

func coefficientOfVariation(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, v := range samples {
		sq += (v - mean) * (v - mean)
	}
	return math.Sqrt(sq/float64(len(samples))) / mean
}

func (e *Extractor) usesQuestions(d *document) bool {
	if len(d.sentences) == 0 {
		return false
	}
	questions := 0
	for _, s := range d.sentences {
		if s.IsQuestion() {
			questions++
		}
	}
	return float64(questions)/float64(len(d.sentences)) >= e.cfg.QuestionRate
}

func usesAnalogies(d *document) bool {
	return lexicon.CountAny(d.tokens, lexicon.AnalogyMarkers) > 0
}

// storytelling: an anecdote in the opening wins, then a run of time markers,
// otherwise the speaker leads with the point.
func (e *Extractor) storytelling(d *document) types.StorytellingStyle {
	var opening []string
	for i := 0; i < len(d.sentences) && i < 2; i++ {
		opening = append(opening, d.sentences[i].Tokens...)
	}
	if lexicon.CountAny(opening, lexicon.AnecdoteMarkers) > 0 {
		return types.StorytellingAnecdoteFirst
	}
	if lexicon.CountAny(d.tokens, lexicon.ChronologyMarkers) >= e.cfg.ChronologyMarkers {
		return types.StorytellingChronological
	}
	return types.StorytellingThesisFirst
}
