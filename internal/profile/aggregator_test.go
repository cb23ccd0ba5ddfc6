package profile

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator(cfg config.AggregatorConfig) *Aggregator {
	a := NewAggregator(cfg)
	a.now = func() time.Time { return t0 }
	return a
}

func features(formality float64) *types.Features {
	return &types.Features{
		SentenceLength:    types.SentenceMedium,
		PaceVariation:     0.3,
		StorytellingStyle: types.StorytellingThesisFirst,
		OpeningStyle:      types.OpeningHook,
		ClosingStyle:      types.ClosingCTA,
		Formality:         formality,
		Tonal:             types.TonalAttributes{Warmth: 0.5, Authority: 0.5, Humor: 0.2, Directness: 0.6, Empathy: 0.4},
	}
}

func voiceSession(id string, at time.Time, f *types.Features) types.Contribution {
	return types.Contribution{ID: id, Kind: types.ContributionVoiceSession, Features: f, OccurredAt: at}
}

func TestMerge_NewProfile(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	f := features(0.42)
	f.FrequentWords = []types.WordFrequency{{Word: "pricing", Count: 3}}
	f.SignaturePhrases = []string{"here's the thing"}

	res, err := a.Merge(nil, types.Contribution{
		ID:         "s1",
		Kind:       types.ContributionVoiceSession,
		Features:   f,
		Enthusiasm: &types.EnthusiasmSummary{OverallEnergy: 0.61, Topics: []string{"pricing"}},
		OccurredAt: t0,
	})
	require.NoError(t, err)

	p := res.Profile
	assert.True(t, res.IsNewProfile)
	assert.Equal(t, 1, p.VoiceSessionsAnalyzed)
	assert.Equal(t, 0, p.WritingSamplesAnalyzed)
	assert.InDelta(t, 0.42, p.WrittenPatterns.Formality, 1e-9)
	assert.Equal(t, f.Tonal, p.TonalAttributes)
	assert.Equal(t, types.SentenceMedium, p.SpokenPatterns.Rhythm.AvgSentenceLength)
	assert.Equal(t, types.OpeningHook, p.WrittenPatterns.OpeningStyle)
	assert.Equal(t, []types.WordFrequency{{Word: "pricing", Count: 3}}, p.SpokenPatterns.Vocabulary.FrequentWords)
	assert.Equal(t, []string{"here's the thing"}, p.SpokenPatterns.Vocabulary.SignaturePhrases)
	assert.InDelta(t, 0.61, p.SpokenPatterns.Enthusiasm.AverageEnergy, 1e-9)
	assert.Equal(t, []string{"pricing"}, p.SpokenPatterns.Enthusiasm.ExcitedTopics)
	assert.Equal(t, t0, p.CreatedAt)
	assert.Equal(t, t0, p.UpdatedAt)

	// ln(2)/ln(21) * 0.6 * 100 rounds to 14.
	assert.Equal(t, 14, p.CalibrationScore)
	assert.Equal(t, 14, res.CalibrationScoreChange)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	first, err := a.Merge(nil, voiceSession("s1", t0, features(0.4)))
	require.NoError(t, err)

	before := Clone(first.Profile)
	_, err = a.Merge(first.Profile, voiceSession("s2", t0.Add(time.Hour), features(0.9)))
	require.NoError(t, err)

	assert.Equal(t, before, first.Profile)
}

func TestMerge_RunningAverage(t *testing.T) {
	tests := []struct {
		name  string
		prior int
		old   float64
		in    float64
		want  float64
	}{
		{"one prior", 1, 0.5, 0.8, 0.65},
		{"three prior", 3, 0.4, 0.8, 0.5},
		{"capped at ten", 20, 0.5, 0.8, 0.527},
	}

	a := newTestAggregator(config.AggregatorConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := &types.VoiceDNA{VoiceSessionsAnalyzed: tt.prior}
			existing.WrittenPatterns.Formality = tt.old
			res, err := a.Merge(existing, voiceSession("x", t0, features(tt.in)))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, res.Profile.WrittenPatterns.Formality, 1e-9)
			assert.False(t, res.IsNewProfile)
		})
	}
}

func TestMerge_MajorityVoteTieGoesToMostRecent(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	openings := []types.OpeningStyle{types.OpeningHook, types.OpeningQuestion, types.OpeningHook, types.OpeningQuestion, types.OpeningStory}
	want := []types.OpeningStyle{types.OpeningHook, types.OpeningQuestion, types.OpeningHook, types.OpeningQuestion, types.OpeningQuestion}

	var p *types.VoiceDNA
	for i, o := range openings {
		f := features(0.5)
		f.OpeningStyle = o
		res, err := a.Merge(p, voiceSession(fmt.Sprintf("s%d", i), t0.Add(time.Duration(i)*time.Minute), f))
		require.NoError(t, err)
		p = res.Profile
		assert.Equal(t, want[i], p.WrittenPatterns.OpeningStyle, "after contribution %d", i)
	}
	assert.Equal(t, map[string]int{"hook": 2, "question": 2, "story": 1}, p.Votes.OpeningStyle.Counts)
}

func TestMerge_EmptyCategoricalCastsNoVote(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	f := features(0.5)
	f.StructurePreference = types.StructureListicle
	res, err := a.Merge(nil, types.Contribution{ID: "w1", Kind: types.ContributionWritingSample, Features: f, OccurredAt: t0})
	require.NoError(t, err)

	res, err = a.Merge(res.Profile, voiceSession("s1", t0.Add(time.Hour), features(0.5)))
	require.NoError(t, err)

	assert.Equal(t, types.StructureListicle, res.Profile.WrittenPatterns.StructurePreference)
	assert.Equal(t, 1, res.Profile.WritingSamplesAnalyzed)
	assert.Equal(t, 1, res.Profile.VoiceSessionsAnalyzed)
}

func TestMerge_VocabularyAccumulates(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{PhraseLimit: 3})
	f1 := features(0.5)
	f1.FrequentWords = []types.WordFrequency{{Word: "pricing", Count: 3}, {Word: "churn", Count: 1}}
	f1.SignaturePhrases = []string{"a b", "c d"}
	res, err := a.Merge(nil, voiceSession("s1", t0, f1))
	require.NoError(t, err)

	f2 := features(0.5)
	f2.FrequentWords = []types.WordFrequency{{Word: "churn", Count: 2}, {Word: "growth", Count: 1}}
	f2.SignaturePhrases = []string{"c d", "e f", "g h"}
	res, err = a.Merge(res.Profile, voiceSession("s2", t0, f2))
	require.NoError(t, err)

	vocab := res.Profile.SpokenPatterns.Vocabulary
	assert.Equal(t, []types.WordFrequency{
		{Word: "churn", Count: 3},
		{Word: "pricing", Count: 3},
		{Word: "growth", Count: 1},
	}, vocab.FrequentWords)
	assert.Equal(t, []string{"a b", "c d", "e f"}, vocab.SignaturePhrases)

	// A later session without the phrases keeps them.
	res, err = a.Merge(res.Profile, voiceSession("s3", t0, features(0.5)))
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "c d", "e f"}, res.Profile.SpokenPatterns.Vocabulary.SignaturePhrases)
}

func TestMerge_EnthusiasmAverage(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	c := voiceSession("s1", t0, features(0.5))
	c.Enthusiasm = &types.EnthusiasmSummary{OverallEnergy: 0.6, Topics: []string{"hiring"}}
	res, err := a.Merge(nil, c)
	require.NoError(t, err)

	c = voiceSession("s2", t0, features(0.5))
	c.Enthusiasm = &types.EnthusiasmSummary{OverallEnergy: 0.8, Topics: []string{"hiring", "culture"}}
	res, err = a.Merge(res.Profile, c)
	require.NoError(t, err)

	e := res.Profile.SpokenPatterns.Enthusiasm
	assert.InDelta(t, 0.7, e.AverageEnergy, 1e-9)
	assert.Equal(t, []string{"hiring", "culture"}, e.ExcitedTopics)
}

func TestMerge_CalibrationAddsRules(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	res, err := a.Merge(nil, voiceSession("s1", t0, features(0.5)))
	require.NoError(t, err)

	res, err = a.Merge(res.Profile, types.Contribution{
		ID:   "r1",
		Kind: types.ContributionCalibration,
		Insights: []types.CalibrationInsight{
			{Type: types.RuleStylePreference, Insight: "Use shorter sentences", Confidence: 0.9},
			{Type: types.RuleToneAdjustment, Insight: "Less formal", Confidence: 0.5},
		},
		Round:      1,
		OccurredAt: t0,
	})
	require.NoError(t, err)

	p := res.Profile
	require.Len(t, p.LearnedRules, 2)
	assert.Equal(t, types.LearnedRule{Type: types.RuleStylePreference, Content: "Use shorter sentences", Confidence: 0.9, SourceRound: 1}, p.LearnedRules[0])
	assert.Equal(t, 1, p.CalibrationRoundsCompleted)
	assert.Equal(t, 1, p.VoiceSessionsAnalyzed)

	// 0.6*ln(3)/ln(21) + 0.4*0.9 rounds to 58; only the 0.9 rule clears the floor.
	assert.Equal(t, 58, p.CalibrationScore)
	assert.Equal(t, 44, res.CalibrationScoreChange)
}

func TestMerge_RuleConsolidation(t *testing.T) {
	insight := func(typ types.RuleType, text string, conf float64) types.Contribution {
		return types.Contribution{
			ID:         text,
			Kind:       types.ContributionCalibration,
			Insights:   []types.CalibrationInsight{{Type: typ, Insight: text, Confidence: conf}},
			Round:      2,
			OccurredAt: t0,
		}
	}

	a := newTestAggregator(config.AggregatorConfig{})
	res, err := a.Merge(nil, insight(types.RuleStylePreference, "Use shorter sentences", 0.7))
	require.NoError(t, err)
	res, err = a.Merge(res.Profile, insight(types.RuleStylePreference, "use shorter sentences.", 0.8))
	require.NoError(t, err)
	assert.Len(t, res.Profile.LearnedRules, 2, "accumulates by default")

	a = newTestAggregator(config.AggregatorConfig{RuleMergeThreshold: 0.9})
	res, err = a.Merge(nil, insight(types.RuleStylePreference, "Use shorter sentences", 0.7))
	require.NoError(t, err)
	res, err = a.Merge(res.Profile, insight(types.RuleStylePreference, "use shorter sentences.", 0.8))
	require.NoError(t, err)
	require.Len(t, res.Profile.LearnedRules, 1)
	assert.InDelta(t, 0.94, res.Profile.LearnedRules[0].Confidence, 1e-9)

	res, err = a.Merge(res.Profile, insight(types.RuleToneAdjustment, "Use shorter sentences", 0.7))
	require.NoError(t, err)
	assert.Len(t, res.Profile.LearnedRules, 2, "different rule types never merge")
}

func TestMerge_RecencyDiscountsStaleContributions(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	first, err := a.Merge(nil, voiceSession("s1", t0, features(0.5)))
	require.NoError(t, err)

	fresh, err := a.Merge(first.Profile, voiceSession("s2", t0.Add(24*time.Hour), features(0.5)))
	require.NoError(t, err)
	stale, err := a.Merge(first.Profile, voiceSession("s2", t0.Add(200*24*time.Hour), features(0.5)))
	require.NoError(t, err)

	assert.Equal(t, 22, fresh.Profile.CalibrationScore)
	assert.Equal(t, 18, stale.Profile.CalibrationScore)
}

func TestMerge_HistoryIsBounded(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{HistoryLimit: 3})
	var p *types.VoiceDNA
	for i := 0; i < 5; i++ {
		res, err := a.Merge(p, voiceSession(fmt.Sprintf("s%d", i), t0, features(0.5)))
		require.NoError(t, err)
		p = res.Profile
	}
	require.Len(t, p.History, 3)
	assert.Equal(t, "s2", p.History[0].ContributionID)
	assert.Equal(t, "s4", p.History[2].ContributionID)
	assert.True(t, p.HasContribution("s4"))
	assert.False(t, p.HasContribution("s0"))
	assert.Equal(t, 5, p.VoiceSessionsAnalyzed)
}

func TestMerge_ValidationErrors(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	tests := []struct {
		name string
		c    types.Contribution
	}{
		{"unknown kind", types.Contribution{ID: "x", Kind: "podcast", Features: features(0.5)}},
		{"missing features", types.Contribution{ID: "x", Kind: types.ContributionVoiceSession}},
		{"bad rule type", types.Contribution{ID: "x", Kind: types.ContributionCalibration,
			Insights: []types.CalibrationInsight{{Type: "mood", Insight: "x", Confidence: 0.5}}}},
		{"empty insight", types.Contribution{ID: "x", Kind: types.ContributionCalibration,
			Insights: []types.CalibrationInsight{{Type: types.RuleVocabulary, Insight: " ", Confidence: 0.5}}}},
		{"confidence out of range", types.Contribution{ID: "x", Kind: types.ContributionCalibration,
			Insights: []types.CalibrationInsight{{Type: types.RuleVocabulary, Insight: "x", Confidence: 1.5}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Merge(nil, tt.c)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, types.ErrValidation))
		})
	}
}

func TestMerge_InvariantViolation(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	existing := &types.VoiceDNA{
		VoiceSessionsAnalyzed: 1,
		ReferentInfluences: &types.ReferentInfluences{
			UserWeight: 40,
			Referents:  []types.ReferentInfluence{{ID: "ref-coach", Weight: 60}},
		},
	}

	res, err := a.Merge(existing, voiceSession("s2", t0, features(0.5)))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrAggregationFailed))

	var aggErr *AggregationError
	require.True(t, errors.As(err, &aggErr))
	assert.Equal(t, "referent_influences", aggErr.Invariant)
	assert.Equal(t, 1, existing.VoiceSessionsAnalyzed)
}

func TestMerge_ScoreBoundedAndMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	kinds := []types.ContributionKind{types.ContributionVoiceSession, types.ContributionWritingSample, types.ContributionCalibration}
	ruleTypes := []types.RuleType{types.RuleStylePreference, types.RuleToneAdjustment, types.RuleVocabulary, types.RuleStructure}

	for run := 0; run < 20; run++ {
		a := newTestAggregator(config.AggregatorConfig{HistoryLimit: 1 + rng.Intn(30)})
		var p *types.VoiceDNA
		prev := 0
		at := t0
		for i := 0; i < 60; i++ {
			at = at.Add(time.Duration(rng.Intn(40*24)) * time.Hour)
			c := types.Contribution{ID: fmt.Sprintf("%d-%d", run, i), Kind: kinds[rng.Intn(len(kinds))], OccurredAt: at}
			if c.Kind == types.ContributionCalibration {
				c.Round = i
				c.Insights = []types.CalibrationInsight{{
					Type:       ruleTypes[rng.Intn(len(ruleTypes))],
					Insight:    fmt.Sprintf("rule %d", i),
					Confidence: rng.Float64(),
				}}
			} else {
				f := features(rng.Float64())
				f.PaceVariation = rng.Float64()
				for _, dim := range types.TonalOrder {
					f.Tonal.Set(dim, rng.Float64())
				}
				c.Features = f
			}

			res, err := a.Merge(p, c)
			require.NoError(t, err)
			p = res.Profile

			assert.GreaterOrEqual(t, p.CalibrationScore, prev)
			assert.LessOrEqual(t, p.CalibrationScore, 100)
			assert.Equal(t, p.CalibrationScore-prev, res.CalibrationScoreChange)
			assert.GreaterOrEqual(t, p.WrittenPatterns.Formality, 0.0)
			assert.LessOrEqual(t, p.WrittenPatterns.Formality, 1.0)
			prev = p.CalibrationScore
		}
	}
}

func TestRecalibrate(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})
	res, err := a.Merge(nil, voiceSession("s1", t0, features(0.5)))
	require.NoError(t, err)

	inflated := Clone(res.Profile)
	inflated.CalibrationScore = 90

	rec, err := a.Recalibrate(inflated)
	require.NoError(t, err)
	assert.Equal(t, 14, rec.Profile.CalibrationScore)
	assert.Equal(t, -76, rec.CalibrationScoreChange)
	assert.Equal(t, 90, inflated.CalibrationScore)

	_, err = a.Recalibrate(nil)
	assert.True(t, errors.Is(err, types.ErrValidation))
}

func TestDeriveState(t *testing.T) {
	assert.Equal(t, StateNone, DeriveState(nil, 70))
	assert.Equal(t, StateNone, DeriveState(&types.VoiceDNA{}, 70))
	assert.Equal(t, StateNascent, DeriveState(&types.VoiceDNA{VoiceSessionsAnalyzed: 1, CalibrationScore: 14}, 70))
	assert.Equal(t, StateCalibrated, DeriveState(&types.VoiceDNA{VoiceSessionsAnalyzed: 9, CalibrationScore: 70}, 70))
}

func TestSummarize(t *testing.T) {
	a := newTestAggregator(config.AggregatorConfig{})

	empty := a.Summarize(nil)
	assert.Equal(t, StateNone, empty.State)
	assert.Equal(t, "learning", empty.CalibrationLevel)
	assert.Empty(t, empty.Strengths)

	f := features(0.5)
	f.Tonal.Warmth = 0.8
	f.UsesAnalogies = true
	f.FrequentWords = []types.WordFrequency{{Word: "pricing", Count: 2}}
	res, err := a.Merge(nil, voiceSession("s1", t0, f))
	require.NoError(t, err)

	s := a.Summarize(res.Profile)
	assert.Equal(t, StateNascent, s.State)
	assert.Equal(t, 14, s.CalibrationScore)
	assert.Equal(t, []string{"warm and personable", "direct and to the point", "explains through analogies"}, s.Strengths)
	assert.Equal(t, []string{"pricing"}, s.TopWords)
	assert.Equal(t, 1, s.VoiceSessionsAnalyzed)
}
