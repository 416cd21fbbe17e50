package theme

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

var ErrInvalidTheme = errors.New("invalid theme")

type ThemeErrorCause string

const (
	ErrCauseInvalidValue  ThemeErrorCause = "invalid value"
	ErrCausePersistFailed ThemeErrorCause = "persist failed"
)

type ThemeError struct {
	Message string
	Cause   ThemeErrorCause
	Err     error
}

func (e *ThemeError) Error() string {
	return fmt.Sprintf("theme error: %s: %s", e.Cause, e.Message)
}

func (e *ThemeError) Unwrap() error {
	return e.Err
}

// Severity is recoverable: the preference only affects presentation.
func (e *ThemeError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func (e *ThemeError) IsRetryable() bool {
	return false
}
