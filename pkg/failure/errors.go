package failure

import "errors"

type Severity int

// caller control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRecoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

type ClassifiedError interface {
	error
	Severity() Severity
}

// IsRetryable reports whether err, or any error it wraps, declares itself retryable.
// Errors that do not implement IsRetryable are treated as not retryable.
func IsRetryable(err error) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}
	var r hasRetryable
	if errors.As(err, &r) {
		return r.IsRetryable()
	}
	return false
}
