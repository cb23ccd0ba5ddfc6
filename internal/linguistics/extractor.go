// Package linguistics extracts style features (rhythm, rhetoric, vocabulary,
// written structure, formality and tone) from a single piece of text.
package linguistics

import (
	"context"
	"fmt"
	"math"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
)

// Input is one contribution's raw material.
type Input struct {
	Text  string
	Words []types.WordTimestamp
	Kind  types.ContributionKind
}

// Extractor turns text into per-contribution Features. It is stateless and safe
// for concurrent use.
type Extractor struct {
	cfg      config.LinguisticsConfig
	baseline Baseline
}

// NewExtractor creates an Extractor. A nil baseline uses the embedded table.
func NewExtractor(cfg config.LinguisticsConfig, baseline Baseline) *Extractor {
	merged := (&config.Config{Linguistics: cfg}).MergeWithDefaults(config.Default())
	if baseline == nil {
		baseline = DefaultBaseline()
	}
	return &Extractor{cfg: merged.Linguistics, baseline: baseline}
}

// document is the tokenized form every feature reads from.
type document struct {
	text       string
	sentences  []lexicon.Sentence
	tokens     []string
	paragraphs []string
	words      []types.WordTimestamp
}

func newDocument(in Input) *document {
	d := &document{
		text:       in.Text,
		sentences:  lexicon.Sentences(in.Text),
		paragraphs: lexicon.Paragraphs(in.Text),
		words:      in.Words,
	}
	for _, s := range d.sentences {
		d.tokens = append(d.tokens, s.Tokens...)
	}
	return d
}

func (d *document) avgSentenceLength() float64 {
	if len(d.sentences) == 0 {
		return 0
	}
	return float64(len(d.tokens)) / float64(len(d.sentences))
}

func (d *document) density(phrases []string) float64 {
	if len(d.tokens) == 0 {
		return 0
	}
	return float64(lexicon.CountAny(d.tokens, phrases)) / float64(len(d.tokens))
}

// Extract computes the features of one contribution.
func (e *Extractor) Extract(ctx context.Context, in Input) (*types.Features, error) {
	doc := newDocument(in)
	if len(doc.tokens) == 0 {
		return nil, types.NewValidationError("text", "no words to analyze")
	}

	tone, err := e.scoreTone(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to score tone: %w", err)
	}

	f := &types.Features{
		SentenceLength:    e.sentenceBucket(doc.avgSentenceLength()),
		PaceVariation:     paceVariation(doc),
		UsesQuestions:     e.usesQuestions(doc),
		UsesAnalogies:     usesAnalogies(doc),
		StorytellingStyle: e.storytelling(doc),
		FrequentWords:     e.frequentWords(doc),
		SignaturePhrases:  e.signaturePhrases(doc),
		OpeningStyle:      openingStyle(doc),
		ClosingStyle:      closingStyle(doc),
		Formality:         formality(doc),
		Tonal:             tone,
		SentenceCount:     len(doc.sentences),
		WordCount:         len(doc.tokens),
	}

	if len(doc.paragraphs) >= 2 {
		f.ParagraphLength = e.paragraphBucket(doc)
		f.StructurePreference = structurePreference(doc)
	}
	return f, nil
}

func (e *Extractor) sentenceBucket(avg float64) types.SentenceLength {
	switch {
	case avg < float64(e.cfg.ShortSentenceMax):
		return types.SentenceShort
	case avg > float64(e.cfg.LongSentenceMin):
		return types.SentenceLong
	default:
		return types.SentenceMedium
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
