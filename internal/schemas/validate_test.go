package schemas

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *types.VoiceDNA {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &types.VoiceDNA{
		CalibrationScore:      14,
		VoiceSessionsAnalyzed: 1,
		LearnedRules:          []types.LearnedRule{{Type: types.RuleVocabulary, Content: "Plain words", Confidence: 0.8, SourceRound: 1}},
		History:               []types.ContributionRecord{{ContributionID: "s1", Kind: types.ContributionVoiceSession, At: at}},
		CreatedAt:             at,
		UpdatedAt:             at,
	}
	p.SpokenPatterns.Rhythm.AvgSentenceLength = types.SentenceShort
	p.SpokenPatterns.Vocabulary.FrequentWords = []types.WordFrequency{{Word: "pricing", Count: 2}}
	p.TonalAttributes = types.TonalAttributes{Warmth: 0.5, Authority: 0.5, Humor: 0.1, Directness: 0.6, Empathy: 0.4}
	p.ReferentInfluences = &types.ReferentInfluences{
		UserWeight: 70,
		Referents:  []types.ReferentInfluence{{ID: "ref-coach", Name: "The Coach", Weight: 30}},
	}
	return p
}

func TestValidateVoiceDNA_Valid(t *testing.T) {
	assert.NoError(t, ValidateVoiceDNA(validProfile()))
	assert.NoError(t, ValidateVoiceDNA(&types.VoiceDNA{}), "a zero profile with nil lists is still well formed")
}

func TestValidateVoiceDNA_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *types.VoiceDNA)
		field  string
	}{
		{"score above range", func(p *types.VoiceDNA) { p.CalibrationScore = 101 }, "calibration_score"},
		{"negative counter", func(p *types.VoiceDNA) { p.WritingSamplesAnalyzed = -1 }, "writing_samples_analyzed"},
		{"tone out of range", func(p *types.VoiceDNA) { p.TonalAttributes.Humor = 1.5 }, "tonal_attributes.humor"},
		{"unknown bucket", func(p *types.VoiceDNA) { p.SpokenPatterns.Rhythm.AvgSentenceLength = "tiny" }, "spoken_patterns.rhythm.avg_sentence_length"},
		{"bad rule type", func(p *types.VoiceDNA) { p.LearnedRules[0].Type = "mood" }, "learned_rules.0.type"},
		{"user weight below floor", func(p *types.VoiceDNA) { p.ReferentInfluences.UserWeight = 40 }, "referent_influences.user_weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)

			err := ValidateVoiceDNA(p)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, VoiceDNA, ve.Document)
			fields := make([]string, len(ve.Errors))
			for i, fe := range ve.Errors {
				fields[i] = fe.Field
			}
			assert.Contains(t, fields, tt.field)
			assert.Contains(t, err.Error(), "voice_dna validation failed")
		})
	}
}

func TestValidateCalibrationRound(t *testing.T) {
	rating := 4
	r := &types.CalibrationRound{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		RoundNumber: 1,
		PromptText:  "Tell me about a win.",
		Response:    &types.RoundResponse{Type: types.ResponseText, Content: "We shipped."},
		Rating:      &rating,
		CreatedAt:   time.Now().UTC(),
	}
	assert.NoError(t, ValidateCalibrationRound(r))

	bad := 9
	r.Rating = &bad
	assert.Error(t, ValidateCalibrationRound(r))

	r.Rating = &rating
	r.RoundNumber = 0
	assert.Error(t, ValidateCalibrationRound(r))
}

func TestValidate_RawDocuments(t *testing.T) {
	assert.Error(t, Validate(VoiceDNA, []byte(`{"calibration_score": 10}`)))
	assert.Error(t, Validate(VoiceDNA, []byte(`not json`)))

	err := Validate(Document("missing"), []byte(`{}`))
	var le *SchemaLoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), "missing.schema.json")
}
