package linguistics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	return NewExtractor(config.LinguisticsConfig{}, nil)
}

func extract(t *testing.T, text string) *types.Features {
	t.Helper()
	f, err := newTestExtractor().Extract(context.Background(), Input{Text: text, Kind: types.ContributionVoiceSession})
	require.NoError(t, err)
	return f
}

func TestExtract_EmptyText(t *testing.T) {
	f, err := newTestExtractor().Extract(context.Background(), Input{Text: "   ...  "})
	require.Error(t, err)
	assert.Nil(t, f)
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestExtract_SentenceBuckets(t *testing.T) {
	long := strings.Repeat("word ", 25) + "."
	medium := strings.Repeat("word ", 15) + "."

	tests := []struct {
		name string
		text string
		want types.SentenceLength
	}{
		{"short", "Short one. Another short. Yes.", types.SentenceShort},
		{"medium", medium, types.SentenceMedium},
		{"long", long, types.SentenceLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, tt.text).SentenceLength)
		})
	}
}

func TestExtract_FrequentWords(t *testing.T) {
	f := extract(t, "Pricing matters. Pricing is strategy. The strategy behind pricing is the product.")
	require.GreaterOrEqual(t, len(f.FrequentWords), 3)
	assert.Equal(t, types.WordFrequency{Word: "pricing", Count: 3}, f.FrequentWords[0])
	assert.Equal(t, types.WordFrequency{Word: "strategy", Count: 2}, f.FrequentWords[1])
	for _, wf := range f.FrequentWords {
		assert.NotEqual(t, "the", wf.Word)
		assert.NotEqual(t, "is", wf.Word)
	}
}

func TestExtract_FrequentWordsRetainLimit(t *testing.T) {
	e := NewExtractor(config.LinguisticsConfig{VocabularyRetain: 2, VocabularySurface: 1}, nil)
	f, err := e.Extract(context.Background(), Input{Text: "alpha beta gamma delta alpha beta alpha"})
	require.NoError(t, err)
	assert.Equal(t, []types.WordFrequency{{Word: "alpha", Count: 3}, {Word: "beta", Count: 2}}, f.FrequentWords)
}

func TestExtract_SignaturePhrases(t *testing.T) {
	text := "Let's dive deep into pricing. Then let's dive deep into churn. Finally let's dive deep into hiring plans."
	f := extract(t, text)
	assert.Equal(t, []string{"let's dive deep into"}, f.SignaturePhrases)
}

func TestExtract_SignaturePhrasesRespectBaseline(t *testing.T) {
	table := `
fallback_rate: 0.05
ngrams:
  "let's dive deep into": 900
  "let's dive deep": 900
  "dive deep into": 900
  "let's dive": 900
  "dive deep": 900
  "deep into": 900
`
	baseline, err := LoadBaseline(strings.NewReader(table))
	require.NoError(t, err)

	e := NewExtractor(config.LinguisticsConfig{}, baseline)
	text := "Let's dive deep into pricing. Then let's dive deep into churn. Finally let's dive deep into hiring plans."
	f, err := e.Extract(context.Background(), Input{Text: text})
	require.NoError(t, err)
	assert.Empty(t, f.SignaturePhrases)
}

func TestExtract_SignaturePhrasesSkipFunctionWords(t *testing.T) {
	f := extract(t, "It is what it is. It is what it is. And it is what it is.")
	for _, p := range f.SignaturePhrases {
		assert.False(t, allFunctionWords(strings.Fields(p)), p)
	}
}

func TestExtract_Rhetoric(t *testing.T) {
	f := extract(t, "Why does this matter? Because users care. What happens next? We ship. Hiring is like a garden.")
	assert.True(t, f.UsesQuestions)
	assert.True(t, f.UsesAnalogies)

	plain := extract(t, "We build tools. Customers use them. Revenue follows.")
	assert.False(t, plain.UsesQuestions)
	assert.False(t, plain.UsesAnalogies)
}

func TestExtract_Storytelling(t *testing.T) {
	tests := []struct {
		name string
		text string
		want types.StorytellingStyle
	}{
		{
			name: "anecdote first",
			text: "I remember the day I pitched my first investor. It went badly. We learned a lot.",
			want: types.StorytellingAnecdoteFirst,
		},
		{
			name: "chronological",
			text: "We built the prototype. Then we tested it. After that we raised money. Finally we launched. Eventually we grew.",
			want: types.StorytellingChronological,
		},
		{
			name: "thesis first",
			text: "Pricing is a product decision. Teams forget this. They pay for it.",
			want: types.StorytellingThesisFirst,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extract(t, tt.text).StorytellingStyle)
		})
	}
}

func TestExtract_OpeningAndClosing(t *testing.T) {
	f := extract(t, "What if your team shipped twice as fast? Most teams never measure it. Try it this week.")
	assert.Equal(t, types.OpeningQuestion, f.OpeningStyle)
	assert.Equal(t, types.ClosingCTA, f.ClosingStyle)

	f = extract(t, "Last year I almost quit my job over a spreadsheet. The numbers were wrong for months. In short, check your data.")
	assert.Equal(t, types.OpeningStory, f.OpeningStyle)
	assert.Equal(t, types.ClosingSummary, f.ClosingStyle)

	f = extract(t, "Stop hiring for resumes! The best engineers I know have unusual backgrounds. Would you hire them?")
	assert.Equal(t, types.OpeningHook, f.OpeningStyle)
	assert.Equal(t, types.ClosingQuestion, f.ClosingStyle)

	f = extract(t, "Our quarterly planning process has evolved considerably over the past several years of growth. It now involves every team lead in the company.")
	assert.Equal(t, types.OpeningContext, f.OpeningStyle)
	assert.Equal(t, types.ClosingReflection, f.ClosingStyle)
}

func TestExtract_WrittenStructureNeedsParagraphs(t *testing.T) {
	voice := extract(t, "We talked about onboarding for a while and then moved on to pricing.")
	assert.Empty(t, voice.StructurePreference)
	assert.Empty(t, voice.ParagraphLength)

	listicle := extract(t, "Three habits of great teams.\n\n- They write things down.\n- They ship small.\n- They ask for help early.\n\nThat's it.")
	assert.Equal(t, types.StructureListicle, listicle.StructurePreference)
	assert.Equal(t, types.ParagraphShort, listicle.ParagraphLength)

	sectioned := extract(t, "# Why\n\nBecause nothing else worked for us.\n\n# How\n\nWe rewrote the onboarding flow from scratch.")
	assert.Equal(t, types.StructureSectioned, sectioned.StructurePreference)

	narrative := extract(t, "The team met on a rainy morning.\n\nBy lunch the plan had changed twice.")
	assert.Equal(t, types.StructureNarrative, narrative.StructurePreference)
}

func TestExtract_Formality(t *testing.T) {
	casual := extract(t, "yeah I'm gonna be honest, we're kinda winging it lol")
	formal := extract(t, "The committee evaluated the proposal and determined that additional documentation was required.")

	assert.Less(t, casual.Formality, formal.Formality)
	assert.GreaterOrEqual(t, casual.Formality, 0.0)
	assert.LessOrEqual(t, formal.Formality, 1.0)
	assert.Greater(t, formal.Formality, 0.7)
}

func TestExtract_Tone(t *testing.T) {
	warm := extract(t, "Thank you so much, friends. We love this community and we are grateful to share it together.")
	neutral := extract(t, "The report lists quarterly revenue by region.")
	assert.Greater(t, warm.Tonal.Warmth, neutral.Tonal.Warmth)

	certain := extract(t, "The data clearly shows results. Research proves this.")
	hedgy := extract(t, "Maybe it might work, I think, perhaps.")
	assert.Greater(t, certain.Tonal.Authority, hedgy.Tonal.Authority)

	funny := extract(t, "That was hilarious, honestly a ridiculous joke. We laughed for an hour.")
	assert.Greater(t, funny.Tonal.Humor, neutral.Tonal.Humor)

	for _, f := range []*types.Features{warm, neutral, certain, hedgy, funny} {
		for _, dim := range types.TonalOrder {
			v := f.Tonal.Get(dim)
			assert.GreaterOrEqual(t, v, 0.0, dim)
			assert.LessOrEqual(t, v, 1.0, dim)
		}
	}
}

func TestExtract_PaceVariationFromTimestamps(t *testing.T) {
	text := "one two three four five six seven eight nine ten"
	var steady, varied []types.WordTimestamp
	for i, w := range strings.Fields(text) {
		s := float64(i) * 0.4
		steady = append(steady, types.WordTimestamp{Word: w, Start: s, End: s + 0.3})

		step := 0.4
		if i >= 5 {
			step = 0.12
		}
		vs := 0.0
		if len(varied) > 0 {
			vs = varied[len(varied)-1].Start + step
		}
		varied = append(varied, types.WordTimestamp{Word: w, Start: vs, End: vs + 0.1})
	}

	e := newTestExtractor()
	fs, err := e.Extract(context.Background(), Input{Text: text, Words: steady})
	require.NoError(t, err)
	fv, err := e.Extract(context.Background(), Input{Text: text, Words: varied})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, fs.PaceVariation, 1e-9)
	assert.Greater(t, fv.PaceVariation, 0.0)
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestExtractor().Extract(ctx, Input{Text: "Some words to analyze here."})
	assert.Error(t, err)
}

func TestExtract_Counts(t *testing.T) {
	f := extract(t, "One two three. Four five.")
	assert.Equal(t, 2, f.SentenceCount)
	assert.Equal(t, 5, f.WordCount)
}

func TestLoadBaseline(t *testing.T) {
	_, err := LoadBaseline(strings.NewReader("fallback_rate: 0\n"))
	assert.Error(t, err)

	_, err = LoadBaseline(strings.NewReader("fallback_rate: 0.1\nunknown: 1\n"))
	assert.Error(t, err)

	_, err = LoadBaseline(strings.NewReader("fallback_rate: 0.1\nngrams:\n  \"a b\": -1\n"))
	assert.Error(t, err)

	b, err := LoadBaseline(strings.NewReader("fallback_rate: 0.1\nngrams:\n  \"A   Lot\": 2\n"))
	require.NoError(t, err)
	rate, ok := b.RatePerThousand("a lot")
	assert.True(t, ok)
	assert.InDelta(t, 2.0, rate, 1e-9)
}

func TestDefaultBaseline(t *testing.T) {
	b := DefaultBaseline()
	assert.Greater(t, b.Len(), 10)
	rate, ok := b.RatePerThousand("a lot of")
	assert.True(t, ok)
	assert.InDelta(t, 3.5, rate, 1e-9)
	_, ok = b.RatePerThousand("purple elephant parade")
	assert.False(t, ok)
	assert.InDelta(t, 0.05, b.FallbackRate(), 1e-9)
}
