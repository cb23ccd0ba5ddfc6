package linguistics

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
)

const (
	punchyOpeningMax   = 6
	listLinesMin       = 3
	headingLinesMin    = 2
	headingWordsMax    = 8
	argumentMarkersMin = 3
)

var (
	listLine    = regexp.MustCompile(`^\s*(?:[-*•·]|\d+[.)])\s+\S`)
	headingLine = regexp.MustCompile(`^\s*#{1,6}\s+\S`)
)

var argumentMarkers = []string{
	"however", "therefore", "because", "on the other hand", "in contrast", "evidence",
	"argue", "claim", "consequently", "thus", "despite", "whereas", "critics",
}

func openingStyle(d *document) types.OpeningStyle {
	if len(d.sentences) == 0 {
		return ""
	}
	first := d.sentences[0]
	switch {
	case first.IsQuestion():
		return types.OpeningQuestion
	case lexicon.CountAny(first.Tokens, lexicon.AnecdoteMarkers) > 0:
		return types.OpeningStory
	case lexicon.CountAny(first.Tokens, lexicon.HookCues) > 0,
		first.IsExclamation(),
		len(first.Tokens) <= punchyOpeningMax:
		return types.OpeningHook
	default:
		return types.OpeningContext
	}
}

func closingStyle(d *document) types.ClosingStyle {
	if len(d.sentences) == 0 {
		return ""
	}
	last := d.sentences[len(d.sentences)-1]
	switch {
	case last.IsQuestion():
		return types.ClosingQuestion
	case lexicon.CountAny(last.Tokens, lexicon.SummaryCues) > 0:
		return types.ClosingSummary
	case lexicon.ImperativeStarters[last.Tokens[0]],
		lexicon.CountAny(last.Tokens, lexicon.CTACues) > 0:
		return types.ClosingCTA
	default:
		return types.ClosingReflection
	}
}

func (e *Extractor) paragraphBucket(d *document) types.ParagraphLength {
	total := 0
	for _, p := range d.paragraphs {
		total += len(lexicon.Tokenize(p))
	}
	avg := float64(total) / float64(len(d.paragraphs))
	switch {
	case avg < float64(e.cfg.ShortParagraphMax):
		return types.ParagraphShort
	case avg > float64(e.cfg.LongParagraphMin):
		return types.ParagraphLong
	default:
		return types.ParagraphMedium
	}
}

func structurePreference(d *document) types.StructurePreference {
	lists, headings := 0, 0
	for _, line := range strings.Split(d.text, "\n") {
		switch {
		case listLine.MatchString(line):
			lists++
		case headingLine.MatchString(line), isBareHeading(line):
			headings++
		}
	}
	switch {
	case lists >= listLinesMin:
		return types.StructureListicle
	case headings >= headingLinesMin:
		return types.StructureSectioned
	case lexicon.CountAny(d.tokens, argumentMarkers) >= argumentMarkersMin:
		return types.StructureArgumentative
	default:
		return types.StructureNarrative
	}
}

// isBareHeading matches a short standalone line with no closing punctuation.
func isBareHeading(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line[len(line)-1:], ".!?,;:\"'") {
		return false
	}
	n := len(lexicon.Tokenize(line))
	return n > 0 && n <= headingWordsMax && unicode.IsUpper([]rune(line)[0])
}

// formality blends four signals: fewer contractions, less slang, more complex
// sentences and fewer personal pronouns all read as more formal.
func formality(d *document) float64 {
	n := float64(len(d.tokens))
	if n == 0 {
		return 0
	}

	var contractions, slang, pronouns, letters int
	for _, tok := range d.tokens {
		if lexicon.IsContraction(tok) {
			contractions++
		}
		if lexicon.IsSlang(tok) {
			slang++
		}
		if lexicon.IsPersonalPronoun(tok) {
			pronouns++
		}
		letters += len([]rune(tok))
	}

	contractionSignal := clamp01(float64(contractions) / n * 10)
	slangSignal := clamp01(float64(slang) / n * 20)
	pronounSignal := clamp01(float64(pronouns) / n * 8)

	sentenceComplexity := clamp01((d.avgSentenceLength() - 8) / 20)
	wordComplexity := clamp01((float64(letters)/n - 3.5) / 3)
	complexity := 0.5*sentenceComplexity + 0.5*wordComplexity

	score := 0.3*(1-contractionSignal) + 0.2*(1-slangSignal) + 0.3*complexity + 0.2*(1-pronounSignal)
	return round3(clamp01(score))
}
