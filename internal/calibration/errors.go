package calibration

import "errors"

var (
	// ErrRoundAlreadyRated is returned when a round that carries a rating is
	// modified again.
	ErrRoundAlreadyRated = errors.New("calibration round already rated")

	// ErrRoundNotAnswered is returned when a round is rated before the user responded.
	ErrRoundNotAnswered = errors.New("calibration round has no response")
)
