package store

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

type StoreErrorCause string

const (
	ErrCauseQuotaExceeded  StoreErrorCause = "quota exceeded"
	ErrCauseUnavailable    StoreErrorCause = "storage unavailable"
	ErrCauseWriteFailure   StoreErrorCause = "write failed"
	ErrCauseDiskFull       StoreErrorCause = "disk is full"
	ErrCauseUnknownBackend StoreErrorCause = "unknown backend"
)

type StoreError struct {
	Message   string
	Retryable bool
	Cause     StoreErrorCause
	Key       string
}

func (e *StoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store error: %s: %s", e.Cause, e.Message)
	}
	return fmt.Sprintf("store error: %s (key %q): %s", e.Cause, e.Key, e.Message)
}

func (e *StoreError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *StoreError) IsRetryable() bool {
	return e.Retryable
}

// mapStoreErrorToMetadataCause maps store-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStoreErrorToMetadataCause(err *StoreError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseQuotaExceeded, ErrCauseUnavailable, ErrCauseWriteFailure, ErrCauseDiskFull:
		return metadata.CauseStorageFailure
	default:
		return metadata.CauseUnknown
	}
}
