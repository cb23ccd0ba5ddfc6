package types

// WordTimestamp is a single recognized word with its timing in seconds.
type WordTimestamp struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcript is what the transcription collaborator hands to the engine.
type Transcript struct {
	Text     string          `json:"text"`
	Words    []WordTimestamp `json:"words"`
	Duration float64         `json:"duration"`
	Language string          `json:"language,omitempty"`
}

// Indicator names a signal that raised a segment's energy.
type Indicator string

const (
	IndicatorPaceIncrease  Indicator = "pace_increase"
	IndicatorDenseSpeech   Indicator = "dense_speech"
	IndicatorEmphasisWords Indicator = "emphasis_words"
	IndicatorRepetition    Indicator = "repetition"
)

// UseAs suggests how a peak moment could be used in generated content.
type UseAs string

const (
	UseAsHook       UseAs = "hook"
	UseAsKeyPoint   UseAs = "key_point"
	UseAsConclusion UseAs = "conclusion"
	UseAsQuote      UseAs = "quote"
)

// EnergySegment is a contiguous run of words with a shared energy score.
type EnergySegment struct {
	StartTime   float64     `json:"start_time"`
	EndTime     float64     `json:"end_time"`
	Text        string      `json:"text"`
	EnergyScore float64     `json:"energy_score"`
	Indicators  []Indicator `json:"indicators"`
}

// PeakMoment is a high-energy segment worth surfacing to the writer.
type PeakMoment struct {
	Timestamp float64 `json:"timestamp"`
	Text      string  `json:"text"`
	Reason    string  `json:"reason"`
	UseAs     UseAs   `json:"use_as"`
}

// EnthusiasmAnalysis is the result of analyzing one session's timestamps.
type EnthusiasmAnalysis struct {
	OverallEnergy float64         `json:"overall_energy"`
	Segments      []EnergySegment `json:"segments"`
	PeakMoments   []PeakMoment    `json:"peak_moments"`
}
