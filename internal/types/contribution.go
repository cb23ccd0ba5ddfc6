package types

import "time"

// ContributionKind identifies where a profile contribution came from.
type ContributionKind string

const (
	ContributionVoiceSession  ContributionKind = "voice_session"
	ContributionWritingSample ContributionKind = "writing_sample"
	ContributionCalibration   ContributionKind = "calibration"
)

// Features are the per-contribution values produced by the linguistic extractor.
// Empty categorical fields cast no vote when merged.
type Features struct {
	SentenceLength    SentenceLength    `json:"sentence_length,omitempty"`
	PaceVariation     float64           `json:"pace_variation"`
	UsesQuestions     bool              `json:"uses_questions"`
	UsesAnalogies     bool              `json:"uses_analogies"`
	StorytellingStyle StorytellingStyle `json:"storytelling_style,omitempty"`
	FrequentWords     []WordFrequency   `json:"frequent_words"`
	SignaturePhrases  []string          `json:"signature_phrases"`

	StructurePreference StructurePreference `json:"structure_preference,omitempty"`
	ParagraphLength     ParagraphLength     `json:"paragraph_length,omitempty"`
	OpeningStyle        OpeningStyle        `json:"opening_style,omitempty"`
	ClosingStyle        ClosingStyle        `json:"closing_style,omitempty"`
	Formality           float64             `json:"formality"`

	Tonal TonalAttributes `json:"tonal"`

	SentenceCount int `json:"sentence_count"`
	WordCount     int `json:"word_count"`
}

// EnthusiasmSummary is the part of an enthusiasm analysis that feeds the profile.
type EnthusiasmSummary struct {
	OverallEnergy float64  `json:"overall_energy"`
	Topics        []string `json:"topics"`
}

// CalibrationInsight is a single piece of feedback extracted from a rated round.
type CalibrationInsight struct {
	Type       RuleType `json:"type"`
	Insight    string   `json:"insight"`
	Confidence float64  `json:"confidence"`
}

// Contribution is one unit of evidence merged into a VoiceDNA profile.
type Contribution struct {
	ID         string               `json:"id"`
	Kind       ContributionKind     `json:"kind"`
	Features   *Features            `json:"features,omitempty"`
	Enthusiasm *EnthusiasmSummary   `json:"enthusiasm,omitempty"`
	Insights   []CalibrationInsight `json:"insights,omitempty"`
	Round      int                  `json:"round,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}
