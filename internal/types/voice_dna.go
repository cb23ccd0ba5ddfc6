// Package types provides type definitions for structured data used throughout the voicedna system.
package types

import (
	"time"
)

// SentenceLength is a coarse bucket for average sentence length.
type SentenceLength string

const (
	SentenceShort  SentenceLength = "short"
	SentenceMedium SentenceLength = "medium"
	SentenceLong   SentenceLength = "long"
)

// StorytellingStyle describes how a speaker orders narrative material.
type StorytellingStyle string

const (
	StorytellingChronological StorytellingStyle = "chronological"
	StorytellingAnecdoteFirst StorytellingStyle = "anecdote_first"
	StorytellingThesisFirst   StorytellingStyle = "thesis_first"
)

// StructurePreference describes how written content is usually organized.
type StructurePreference string

const (
	StructureNarrative     StructurePreference = "narrative"
	StructureSectioned     StructurePreference = "sectioned"
	StructureListicle      StructurePreference = "listicle"
	StructureArgumentative StructurePreference = "argumentative"
)

// ParagraphLength is a coarse bucket for written paragraph size.
type ParagraphLength string

const (
	ParagraphShort  ParagraphLength = "short"
	ParagraphMedium ParagraphLength = "medium"
	ParagraphLong   ParagraphLength = "long"
)

// OpeningStyle classifies how a piece of content starts.
type OpeningStyle string

const (
	OpeningHook     OpeningStyle = "hook"
	OpeningContext  OpeningStyle = "context"
	OpeningQuestion OpeningStyle = "question"
	OpeningStory    OpeningStyle = "story"
)

// ClosingStyle classifies how a piece of content ends.
type ClosingStyle string

const (
	ClosingCTA        ClosingStyle = "cta"
	ClosingSummary    ClosingStyle = "summary"
	ClosingQuestion   ClosingStyle = "question"
	ClosingReflection ClosingStyle = "reflection"
)

// RuleType classifies a learned rule.
type RuleType string

const (
	RuleStylePreference RuleType = "style_preference"
	RuleToneAdjustment  RuleType = "tone_adjustment"
	RuleVocabulary      RuleType = "vocabulary"
	RuleStructure       RuleType = "structure"
)

// ValidRuleType reports whether t is one of the known rule types.
func ValidRuleType(t RuleType) bool {
	switch t {
	case RuleStylePreference, RuleToneAdjustment, RuleVocabulary, RuleStructure:
		return true
	}
	return false
}

// WordFrequency is a vocabulary entry with an accumulated count.
type WordFrequency struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Rhythm captures the cadence of someone's speech.
type Rhythm struct {
	AvgSentenceLength SentenceLength `json:"avg_sentence_length,omitempty"`
	PaceVariation     float64        `json:"pace_variation"`
}

// Rhetoric captures persuasive and narrative habits.
type Rhetoric struct {
	UsesQuestions     bool              `json:"uses_questions"`
	UsesAnalogies     bool              `json:"uses_analogies"`
	StorytellingStyle StorytellingStyle `json:"storytelling_style,omitempty"`
}

// Vocabulary holds the words and phrases someone reaches for.
type Vocabulary struct {
	FrequentWords    []WordFrequency `json:"frequent_words"`
	SignaturePhrases []string        `json:"signature_phrases"`
}

// EnthusiasmProfile tracks what someone gets excited about.
type EnthusiasmProfile struct {
	ExcitedTopics []string `json:"excited_topics"`
	AverageEnergy float64  `json:"average_energy"`
}

// SpokenPatterns groups everything learned from voice sessions.
type SpokenPatterns struct {
	Rhythm     Rhythm            `json:"rhythm"`
	Rhetoric   Rhetoric          `json:"rhetoric"`
	Vocabulary Vocabulary        `json:"vocabulary"`
	Enthusiasm EnthusiasmProfile `json:"enthusiasm"`
}

// WrittenPatterns groups everything learned about written structure.
type WrittenPatterns struct {
	StructurePreference StructurePreference `json:"structure_preference,omitempty"`
	Formality           float64             `json:"formality"`
	ParagraphLength     ParagraphLength     `json:"paragraph_length,omitempty"`
	OpeningStyle        OpeningStyle        `json:"opening_style,omitempty"`
	ClosingStyle        ClosingStyle        `json:"closing_style,omitempty"`
}

// TonalAttributes are the five tone dimensions, each in [0,1].
type TonalAttributes struct {
	Warmth     float64 `json:"warmth"`
	Authority  float64 `json:"authority"`
	Humor      float64 `json:"humor"`
	Directness float64 `json:"directness"`
	Empathy    float64 `json:"empathy"`
}

// TonalDimension names one tonal attribute.
type TonalDimension string

const (
	ToneWarmth     TonalDimension = "warmth"
	ToneAuthority  TonalDimension = "authority"
	ToneHumor      TonalDimension = "humor"
	ToneDirectness TonalDimension = "directness"
	ToneEmpathy    TonalDimension = "empathy"
)

// TonalOrder is the fixed rendering order of tonal attributes.
var TonalOrder = []TonalDimension{ToneWarmth, ToneAuthority, ToneHumor, ToneDirectness, ToneEmpathy}

// Get returns the value of one dimension.
func (t TonalAttributes) Get(d TonalDimension) float64 {
	switch d {
	case ToneWarmth:
		return t.Warmth
	case ToneAuthority:
		return t.Authority
	case ToneHumor:
		return t.Humor
	case ToneDirectness:
		return t.Directness
	case ToneEmpathy:
		return t.Empathy
	}
	return 0
}

// Set assigns the value of one dimension.
func (t *TonalAttributes) Set(d TonalDimension, v float64) {
	switch d {
	case ToneWarmth:
		t.Warmth = v
	case ToneAuthority:
		t.Authority = v
	case ToneHumor:
		t.Humor = v
	case ToneDirectness:
		t.Directness = v
	case ToneEmpathy:
		t.Empathy = v
	}
}

// LearnedRule is a piece of feedback distilled from a calibration round.
type LearnedRule struct {
	Type        RuleType `json:"type"`
	Content     string   `json:"content"`
	Confidence  float64  `json:"confidence"`
	SourceRound int      `json:"source_round"`
}

// ReferentInfluence is one resolved referent in a blend.
type ReferentInfluence struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Weight       int      `json:"weight"`
	ActiveTraits []string `json:"active_traits"`
}

// ReferentInfluences is a resolved blend. UserWeight + sum of weights is always 100.
type ReferentInfluences struct {
	UserWeight int                 `json:"user_weight"`
	Referents  []ReferentInfluence `json:"referents"`
}

// ReferentTotal returns the sum of the referent weights.
func (r *ReferentInfluences) ReferentTotal() int {
	total := 0
	for _, ref := range r.Referents {
		total += ref.Weight
	}
	return total
}

// VoteTally counts the values a categorical field has been observed with.
// Recent lists each value once, most recently voted first, and breaks ties.
type VoteTally struct {
	Counts map[string]int `json:"counts"`
	Recent []string       `json:"recent,omitempty"`
}

// Votes holds the tallies behind every majority-voted field.
type Votes struct {
	SentenceLength      VoteTally `json:"sentence_length"`
	StorytellingStyle   VoteTally `json:"storytelling_style"`
	UsesQuestions       VoteTally `json:"uses_questions"`
	UsesAnalogies       VoteTally `json:"uses_analogies"`
	StructurePreference VoteTally `json:"structure_preference"`
	ParagraphLength     VoteTally `json:"paragraph_length"`
	OpeningStyle        VoteTally `json:"opening_style"`
	ClosingStyle        VoteTally `json:"closing_style"`
}

// ContributionRecord is a history entry for one merged contribution.
type ContributionRecord struct {
	ContributionID string           `json:"contribution_id"`
	Kind           ContributionKind `json:"kind"`
	At             time.Time        `json:"at"`
}

// VoiceDNA is the persistent per-user style profile.
type VoiceDNA struct {
	SpokenPatterns     SpokenPatterns      `json:"spoken_patterns"`
	WrittenPatterns    WrittenPatterns     `json:"written_patterns"`
	TonalAttributes    TonalAttributes     `json:"tonal_attributes"`
	LearnedRules       []LearnedRule       `json:"learned_rules"`
	ReferentInfluences *ReferentInfluences `json:"referent_influences,omitempty"`
	CalibrationScore   int                 `json:"calibration_score"`

	VoiceSessionsAnalyzed      int `json:"voice_sessions_analyzed"`
	WritingSamplesAnalyzed     int `json:"writing_samples_analyzed"`
	CalibrationRoundsCompleted int `json:"calibration_rounds_completed"`

	Votes   Votes                `json:"votes"`
	History []ContributionRecord `json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalContributions is the number of contributions merged so far.
func (v *VoiceDNA) TotalContributions() int {
	if v == nil {
		return 0
	}
	return v.VoiceSessionsAnalyzed + v.WritingSamplesAnalyzed + v.CalibrationRoundsCompleted
}

// FeatureContributions is the number of merged contributions that carried extracted features.
func (v *VoiceDNA) FeatureContributions() int {
	if v == nil {
		return 0
	}
	return v.VoiceSessionsAnalyzed + v.WritingSamplesAnalyzed
}

// HasContribution reports whether a contribution id is in the retained history.
func (v *VoiceDNA) HasContribution(id string) bool {
	if v == nil || id == "" {
		return false
	}
	for _, rec := range v.History {
		if rec.ContributionID == id {
			return true
		}
	}
	return false
}
