package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseInvalidRequest        FetchErrorCause = "invalid request"
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseBodyTooLarge          FetchErrorCause = "response body too large"
	ErrCauseNotJSON               FetchErrorCause = "non-JSON content"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestForbidden      FetchErrorCause = "forbidden"
	ErrCauseRequestTooMany        FetchErrorCause = "too many requests"
	ErrCauseRequest4xx            FetchErrorCause = "4xx"
	ErrCauseRequest5xx            FetchErrorCause = "5xx"
)

type FetchError struct {
	Message    string
	Retryable  bool
	Cause      FetchErrorCause
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// IsRetryable returns whether this error is retryable
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure, ErrCauseReadResponseBodyError, ErrCauseRequest5xx:
		return metadata.CauseNetworkFailure
	case ErrCauseRequestForbidden, ErrCauseRequestTooMany, ErrCauseRequest4xx, ErrCauseRedirectLimitExceeded:
		return metadata.CauseRemoteRejected
	case ErrCauseNotJSON, ErrCauseBodyTooLarge:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
