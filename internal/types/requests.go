package types

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator caches struct metadata per type.
var validate = validator.New()

// validateStruct runs the struct tags and reports the first failure as a
// ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(strings.ToLower(fe.Field()), "failed on '"+fe.Tag()+"' validation")
	}
	return NewValidationError("request", err.Error())
}

// ContentOutline is an optional structure the composer can follow.
type ContentOutline struct {
	Title       string           `json:"title,omitempty"`
	Format      string           `json:"format,omitempty"`
	TargetWords int              `json:"target_words,omitempty" validate:"gte=0"`
	Sections    []OutlineSection `json:"sections" validate:"dive"`
}

// OutlineSection is one heading of an outline.
type OutlineSection struct {
	Heading   string   `json:"heading" validate:"required"`
	KeyPoints []string `json:"key_points"`
}

// FollowUp is a clarifying question and the user's answer.
type FollowUp struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// AnalyzeSessionRequest submits a transcribed voice session for analysis.
type AnalyzeSessionRequest struct {
	ContributionID string          `json:"contribution_id,omitempty"`
	Transcript     string          `json:"transcript" validate:"required"`
	Words          []WordTimestamp `json:"words"`
	Duration       float64         `json:"duration" validate:"gte=0"`
	Language       string          `json:"language,omitempty"`
}

// WritingSampleRequest submits a piece of the user's writing.
type WritingSampleRequest struct {
	ContributionID string `json:"contribution_id,omitempty"`
	Text           string `json:"text" validate:"required"`
	SourceURL      string `json:"source_url,omitempty" validate:"omitempty,url"`
}

// ImportSampleRequest asks the server to fetch a writing sample from a URL.
type ImportSampleRequest struct {
	URL        string `json:"url" validate:"required,url"`
	UseBrowser bool   `json:"use_browser,omitempty"`
}

// BlendRequest sets the referent influences on the user's profile.
type BlendRequest struct {
	Referents []ReferentSelection `json:"referents" validate:"dive"`
}

// RespondRoundRequest answers a calibration prompt.
type RespondRoundRequest struct {
	Type    ResponseType `json:"type" validate:"required,oneof=voice text"`
	Content string       `json:"content" validate:"required"`
}

// RateRoundRequest rates the sample generated for a calibration round.
type RateRoundRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Feedback string `json:"feedback,omitempty" validate:"max=4000"`
}

// ComposeRequest asks for a generation prompt built from the stored profile.
type ComposeRequest struct {
	Transcript string              `json:"transcript"`
	Enthusiasm *EnthusiasmAnalysis `json:"enthusiasm,omitempty"`
	Outline    *ContentOutline     `json:"outline,omitempty"`
	FollowUps  []FollowUp          `json:"follow_ups,omitempty" validate:"dive"`
}

// Validate validates the AnalyzeSessionRequest using the validator.
func (r *AnalyzeSessionRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the WritingSampleRequest using the validator.
func (r *WritingSampleRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the ImportSampleRequest using the validator.
func (r *ImportSampleRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the BlendRequest using the validator.
func (r *BlendRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the RespondRoundRequest using the validator.
func (r *RespondRoundRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the RateRoundRequest using the validator.
func (r *RateRoundRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the ComposeRequest using the validator.
func (r *ComposeRequest) Validate() error {
	return validateStruct(r)
}
