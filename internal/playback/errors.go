package playback

import (
	"errors"
	"fmt"
	"strings"
)

// ActuationError reports that a pause or play request could not be verified
// after every strategy was exhausted. Callers are expected to fail open: log
// and record the error, never block UI-visible effects on it.
type ActuationError struct {
	Op    string
	Tried []string
	Cause error
}

func (e *ActuationError) Error() string {
	msg := fmt.Sprintf("%s not verified after strategies [%s]", e.Op, strings.Join(e.Tried, ", "))
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ActuationError) Unwrap() error { return e.Cause }

// IsActuationError reports whether err wraps an ActuationError.
func IsActuationError(err error) bool {
	var target *ActuationError
	return errors.As(err, &target)
}
