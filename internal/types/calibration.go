package types

import (
	"time"

	"github.com/google/uuid"
)

// ResponseType says how a calibration prompt was answered.
type ResponseType string

const (
	ResponseVoice ResponseType = "voice"
	ResponseText  ResponseType = "text"
)

// RoundResponse is the user's answer to a calibration prompt.
type RoundResponse struct {
	Type    ResponseType `json:"type"`
	Content string       `json:"content"`
}

// CalibrationRound is one prompt/response/rating cycle.
// Rating and Feedback are written at most once.
type CalibrationRound struct {
	ID                uuid.UUID            `json:"id"`
	UserID            uuid.UUID            `json:"user_id"`
	RoundNumber       int                  `json:"round_number"`
	PromptText        string               `json:"prompt_text"`
	Response          *RoundResponse       `json:"response,omitempty"`
	GeneratedSample   string               `json:"generated_sample,omitempty"`
	Rating            *int                 `json:"rating,omitempty"`
	Feedback          string               `json:"feedback,omitempty"`
	InsightsExtracted []CalibrationInsight `json:"insights_extracted"`
	CreatedAt         time.Time            `json:"created_at"`
	RatedAt           *time.Time           `json:"rated_at,omitempty"`
}

// IsRated reports whether the round already carries a rating.
func (r *CalibrationRound) IsRated() bool {
	return r.Rating != nil
}

// VoiceSession is the record of one analyzed recording.
type VoiceSession struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"user_id"`
	Transcript string              `json:"transcript"`
	Duration   float64             `json:"duration"`
	Language   string              `json:"language,omitempty"`
	Enthusiasm *EnthusiasmAnalysis `json:"enthusiasm,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// WritingSample is the record of one analyzed piece of writing.
type WritingSample struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	SourceURL string    `json:"source_url,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
