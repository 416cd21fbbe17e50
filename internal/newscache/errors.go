package newscache

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

type CacheErrorCause string

const (
	ErrCauseInvalidFetchPayload CacheErrorCause = "invalid fetch payload"
	ErrCauseFetchFailure        CacheErrorCause = "fetch failed"
)

type CacheError struct {
	Message   string
	Retryable bool
	Cause     CacheErrorCause
	Err       error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("news cache error: %s: %s", e.Cause, e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func (e *CacheError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *CacheError) IsRetryable() bool {
	return e.Retryable
}

// IsInvalidPayload reports whether err is a cache error caused by a payload of the wrong shape.
func IsInvalidPayload(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr) && cacheErr.Cause == ErrCauseInvalidFetchPayload
}

// mapCacheErrorToMetadataCause maps cache-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapCacheErrorToMetadataCause(err *CacheError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseInvalidFetchPayload:
		return metadata.CauseContentInvalid
	case ErrCauseFetchFailure:
		return metadata.CauseNetworkFailure
	default:
		return metadata.CauseUnknown
	}
}
