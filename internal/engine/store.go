package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/voicedna/internal/types"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing profile or calibration round.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Store persists profiles and the records they were built from. Commit
// methods write the profile and its source record in one transaction, so a
// failed commit leaves the previous profile in place.
type Store interface {
	// LoadVoiceDNA returns nil, nil when the user has no profile yet.
	LoadVoiceDNA(ctx context.Context, userID uuid.UUID) (*types.VoiceDNA, error)
	SaveVoiceDNA(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA) error

	CommitAnalysis(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA, session *types.VoiceSession) error
	CommitWritingSample(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA, sample *types.WritingSample) error
	CommitCalibration(ctx context.Context, userID uuid.UUID, p *types.VoiceDNA, round *types.CalibrationRound) error

	// ListCalibrationRounds returns the user's rounds ordered by round number.
	ListCalibrationRounds(ctx context.Context, userID uuid.UUID) ([]types.CalibrationRound, error)
	// GetCalibrationRound returns a NotFoundError when the round does not
	// exist or belongs to another user.
	GetCalibrationRound(ctx context.Context, userID, roundID uuid.UUID) (*types.CalibrationRound, error)
	SaveCalibrationRound(ctx context.Context, round *types.CalibrationRound) error
}
