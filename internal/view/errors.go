package view

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

type RenderErrorCause string

const (
	ErrCauseUnknownFormat RenderErrorCause = "unknown format"
	ErrCauseConversion    RenderErrorCause = "conversion failed"
	ErrCauseWrite         RenderErrorCause = "write failed"
)

type RenderError struct {
	Message string
	Cause   RenderErrorCause
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("view error: %s: %s", e.Cause, e.Message)
}

func (e *RenderError) Severity() failure.Severity {
	return failure.SeverityFatal
}

func (e *RenderError) IsRetryable() bool {
	return false
}

// mapRenderErrorToMetadataCause maps view-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRenderErrorToMetadataCause(err *RenderError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseConversion:
		return metadata.CauseContentInvalid
	case ErrCauseUnknownFormat:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
