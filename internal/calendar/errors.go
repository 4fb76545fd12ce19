package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent is matched by every *ValidationError via errors.Is.
var ErrInvalidEvent = errors.New("invalid calendar input")

// ValidationError reports malformed input detected at construction time.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidEvent) match any validation failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidEvent
}
