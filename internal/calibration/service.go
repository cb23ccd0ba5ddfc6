// Package calibration runs the prompt, response, rating cycle that teaches a
// voice profile what the user does and does not like.
package calibration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/prompts"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
)

const (
	promptFile = "calibration.json"

	// SampleWords is the target length of a generated calibration sample.
	SampleWords = 200
)

// Service creates and advances calibration rounds. The LLM client is optional;
// without one, insights come from the feedback cue table.
type Service struct {
	client      llm.Client
	prompts     []string
	insightTask string
	logger      *zap.Logger
	now         func() time.Time
}

// NewService loads the round prompts and insight template.
func NewService(client llm.Client, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	roundPrompts, err := prompts.Lines(promptFile, "round-prompts")
	if err != nil {
		return nil, fmt.Errorf("failed to load calibration prompts: %w", err)
	}
	if len(roundPrompts) == 0 {
		return nil, fmt.Errorf("calibration prompt set is empty")
	}
	task, err := prompts.Get(promptFile, "extract-insights")
	if err != nil {
		return nil, fmt.Errorf("failed to load insight template: %w", err)
	}
	return &Service{
		client:      client,
		prompts:     roundPrompts,
		insightTask: task,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// NewRound starts the next round for a user. Round numbers continue from the
// highest existing one and prompts rotate through the prompt set.
func (s *Service) NewRound(userID uuid.UUID, previous []types.CalibrationRound) *types.CalibrationRound {
	next := 1
	for _, r := range previous {
		if r.RoundNumber >= next {
			next = r.RoundNumber + 1
		}
	}
	return &types.CalibrationRound{
		ID:                uuid.New(),
		UserID:            userID,
		RoundNumber:       next,
		PromptText:        s.prompts[(next-1)%len(s.prompts)],
		InsightsExtracted: []types.CalibrationInsight{},
		CreatedAt:         s.now().UTC(),
	}
}

// Respond records the user's answer. A round can be re-answered until it is rated.
func (s *Service) Respond(round *types.CalibrationRound, resp types.RoundResponse) error {
	if round.IsRated() {
		return ErrRoundAlreadyRated
	}
	if resp.Type != types.ResponseVoice && resp.Type != types.ResponseText {
		return types.NewValidationError("type", fmt.Sprintf("unknown response type %q", resp.Type))
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return types.NewValidationError("content", "response content is required")
	}
	round.Response = &types.RoundResponse{Type: resp.Type, Content: content}
	round.GeneratedSample = ""
	return nil
}

// AttachSample stores the sample generated from the user's response.
func (s *Service) AttachSample(round *types.CalibrationRound, sample string) error {
	if round.IsRated() {
		return ErrRoundAlreadyRated
	}
	if round.Response == nil {
		return ErrRoundNotAnswered
	}
	round.GeneratedSample = strings.TrimSpace(sample)
	return nil
}

// SampleOutline is the outline used when generating a round's sample.
func SampleOutline(round *types.CalibrationRound) *types.ContentOutline {
	return &types.ContentOutline{
		Title:       round.PromptText,
		Format:      "calibration sample",
		TargetWords: SampleWords,
	}
}

// Rate records the rating and feedback exactly once and extracts insights.
// On error the round is left unchanged.
func (s *Service) Rate(ctx context.Context, round *types.CalibrationRound, rating int, feedback string) error {
	if round.IsRated() {
		return ErrRoundAlreadyRated
	}
	if round.Response == nil {
		return ErrRoundNotAnswered
	}
	if rating < 1 || rating > 5 {
		return types.NewValidationError("rating", "rating must be between 1 and 5")
	}

	feedback = strings.TrimSpace(feedback)
	insights := s.ExtractInsights(ctx, rating, feedback, round.GeneratedSample)

	ratedAt := s.now().UTC()
	round.Rating = &rating
	round.Feedback = feedback
	round.InsightsExtracted = insights
	round.RatedAt = &ratedAt
	return nil
}

// Contribution turns a rated round into the profile contribution it feeds.
func Contribution(round *types.CalibrationRound) (types.Contribution, error) {
	if !round.IsRated() || round.RatedAt == nil {
		return types.Contribution{}, types.NewValidationError("rating", "only rated rounds contribute to the profile")
	}
	insights := make([]types.CalibrationInsight, len(round.InsightsExtracted))
	copy(insights, round.InsightsExtracted)
	return types.Contribution{
		ID:         "calibration:" + round.ID.String(),
		Kind:       types.ContributionCalibration,
		Insights:   insights,
		Round:      round.RoundNumber,
		OccurredAt: *round.RatedAt,
	}, nil
}
