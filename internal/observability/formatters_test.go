package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPrintVoiceDNA(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	dna := &types.VoiceDNA{
		CalibrationScore:      58,
		VoiceSessionsAnalyzed: 2,
		TonalAttributes:       types.TonalAttributes{Warmth: 0.8},
		LearnedRules:          []types.LearnedRule{{Type: types.RuleVocabulary, Content: "Plain words", Confidence: 0.9}},
	}
	dna.SpokenPatterns.Rhythm.AvgSentenceLength = types.SentenceShort
	dna.SpokenPatterns.Vocabulary.FrequentWords = []types.WordFrequency{
		{Word: "pricing", Count: 5}, {Word: "a", Count: 1}, {Word: "b", Count: 1},
		{Word: "c", Count: 1}, {Word: "d", Count: 1}, {Word: "e", Count: 1},
	}

	p.PrintVoiceDNA(dna)
	output := buf.String()

	assert.Contains(t, output, "VOICE DNA")
	assert.Contains(t, output, "Calibration score: 58/100")
	assert.Contains(t, output, "Sentences:  short")
	assert.Contains(t, output, "warmth      0.80")
	assert.Contains(t, output, "pricing (5)")
	assert.Contains(t, output, "... and 1 more")
	assert.Contains(t, output, "Plain words (0.90)")
}

func TestPrinters_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintVoiceDNA(nil)
	p.PrintSummary(nil)
	p.PrintEnthusiasm(nil)
	p.PrintBlend(nil)
	p.PrintCalibrationRound(nil)
	p.PrintReferents(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSummary(&profile.Summary{
		State:            profile.StateNascent,
		CalibrationLevel: "developing",
		CalibrationScore: 44,
		Strengths:        []string{"warm and personable"},
		SignaturePhrases: []string{"here's the thing"},
	})
	output := buf.String()

	assert.Contains(t, output, "VOICE PROFILE SUMMARY")
	assert.Contains(t, output, "developing (44/100)")
	assert.Contains(t, output, "warm and personable")
	assert.Contains(t, output, `"here's the thing"`)
}

func TestPrintEnthusiasm(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintEnthusiasm(&types.EnthusiasmAnalysis{
		OverallEnergy: 0.62,
		PeakMoments: []types.PeakMoment{
			{Timestamp: 3.2, Text: strings.Repeat("very long peak text ", 5), UseAs: types.UseAsHook},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "ENTHUSIASM MAP")
	assert.Contains(t, output, "Overall energy: 0.62")
	assert.Contains(t, output, "3.2s")
	assert.Contains(t, output, "...")
	assert.Contains(t, output, "use as hook")
}

func TestPrintBlend(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintBlend(&types.ReferentInfluences{
		UserWeight: 70,
		Referents:  []types.ReferentInfluence{{Name: "The Coach", Weight: 30, ActiveTraits: []string{"Speaks directly"}}},
	})
	output := buf.String()

	assert.Contains(t, output, "Your voice: 70%")
	assert.Contains(t, output, "The Coach: 30%")
	assert.Contains(t, output, "Speaks directly")
}

func TestPrintCalibrationRound(t *testing.T) {
	var buf bytes.Buffer
	rating := 4
	NewPrinter(&buf).PrintCalibrationRound(&types.CalibrationRound{
		RoundNumber:       2,
		PromptText:        "Tell me about a win.",
		Rating:            &rating,
		InsightsExtracted: []types.CalibrationInsight{{Type: types.RuleStructure, Insight: "Shorter"}},
	})
	output := buf.String()

	assert.Contains(t, output, "Round 2")
	assert.Contains(t, output, "Rating: 4/5")
	assert.Contains(t, output, "[structure] Shorter")
}

func TestPrintReferents(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReferents([]types.ReferentStyleProfile{
		{Name: "The Coach", Slug: "coach", KeyCharacteristics: []string{"Speaks directly"}},
	})
	assert.Contains(t, buf.String(), "The Coach (coach)")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("TITLE", strings.Repeat("x", 100))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[3], "...")
}
