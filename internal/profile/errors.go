package profile

import (
	"errors"
	"fmt"
)

// ErrAggregationFailed is matched by every AggregationError.
var ErrAggregationFailed = errors.New("aggregation failed")

// AggregationError reports that a merge would leave the profile in an
// inconsistent state. The merged profile must not be persisted.
type AggregationError struct {
	Invariant string
	Detail    string
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregation failed: %s: %s", e.Invariant, e.Detail)
}

// Is makes errors.Is(err, ErrAggregationFailed) hold.
func (e *AggregationError) Is(target error) bool {
	return target == ErrAggregationFailed
}

func invariantError(invariant, format string, args ...any) *AggregationError {
	return &AggregationError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}
