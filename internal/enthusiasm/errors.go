package enthusiasm

import (
	"errors"
	"fmt"
	"math"

	"github.com/jonathan/voicedna/internal/types"
)

// ErrMalformedTimestamps is matched by every timestamp validation failure.
var ErrMalformedTimestamps = errors.New("malformed timestamps")

// MalformedTimestampsError describes the first word whose timing is invalid.
type MalformedTimestampsError struct {
	Index   int
	Message string
}

func (e *MalformedTimestampsError) Error() string {
	return fmt.Sprintf("malformed timestamps at word %d: %s", e.Index, e.Message)
}

// Is lets callers match both the specific and the general validation sentinel.
func (e *MalformedTimestampsError) Is(target error) bool {
	return target == ErrMalformedTimestamps || target == types.ErrValidation
}

// validateTimestamps enforces finite times, start < end, non-decreasing
// starts and no overlap.
func validateTimestamps(words []types.WordTimestamp) error {
	for i, w := range words {
		if !finite(w.Start) || !finite(w.End) {
			return &MalformedTimestampsError{Index: i, Message: fmt.Sprintf("non-finite timestamp %v-%v", w.Start, w.End)}
		}
		if w.Start < 0 {
			return &MalformedTimestampsError{Index: i, Message: fmt.Sprintf("negative start %.3f", w.Start)}
		}
		if w.Start >= w.End {
			return &MalformedTimestampsError{Index: i, Message: fmt.Sprintf("start %.3f is not before end %.3f", w.Start, w.End)}
		}
		if i == 0 {
			continue
		}
		prev := words[i-1]
		if w.Start < prev.Start {
			return &MalformedTimestampsError{Index: i, Message: fmt.Sprintf("start %.3f precedes previous start %.3f", w.Start, prev.Start)}
		}
		if w.Start < prev.End {
			return &MalformedTimestampsError{Index: i, Message: fmt.Sprintf("start %.3f overlaps previous word ending at %.3f", w.Start, prev.End)}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
