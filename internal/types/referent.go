package types

// LinguisticPatterns summarizes how a referent writes.
type LinguisticPatterns struct {
	SentenceLength   SentenceLength `json:"sentence_length" yaml:"sentence_length"`
	VocabularyLevel  string         `json:"vocabulary_level" yaml:"vocabulary_level"`
	SignaturePhrases []string       `json:"signature_phrases" yaml:"signature_phrases"`
}

// ReferentStyleProfile is a catalog entry for a named style influence.
type ReferentStyleProfile struct {
	ID                 string             `json:"id" yaml:"id"`
	Name               string             `json:"name" yaml:"name"`
	Slug               string             `json:"slug" yaml:"slug"`
	Description        string             `json:"description" yaml:"description"`
	KeyCharacteristics []string           `json:"key_characteristics" yaml:"key_characteristics"`
	LinguisticPatterns LinguisticPatterns `json:"linguistic_patterns" yaml:"linguistic_patterns"`
	TonalAttributes    TonalAttributes    `json:"tonal_attributes" yaml:"tonal_attributes"`
	PromptGuidance     string             `json:"prompt_guidance" yaml:"prompt_guidance"`
}

// ReferentSelection is a requested referent and weight, before resolution.
type ReferentSelection struct {
	ReferentID string `json:"referent_id" validate:"required"`
	Weight     int    `json:"weight" validate:"gt=0,lte=100"`
}
