package composer

import (
	"errors"
	"fmt"
)

// ErrComposerInputIncomplete is matched by every InputIncompleteError.
var ErrComposerInputIncomplete = errors.New("composer input incomplete")

// InputIncompleteError reports a required input that is missing. No partial
// prompt is ever returned alongside it.
type InputIncompleteError struct {
	Field  string
	Reason string
}

func (e *InputIncompleteError) Error() string {
	return fmt.Sprintf("composer input incomplete: %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrComposerInputIncomplete) hold.
func (e *InputIncompleteError) Is(target error) bool {
	return target == ErrComposerInputIncomplete
}
