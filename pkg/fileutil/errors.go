package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

type FileErrorCause string

const (
	ErrCausePathError    FileErrorCause = "path error"
	ErrCauseWriteFailure FileErrorCause = "write failed"
	ErrCauseDiskFull     FileErrorCause = "disk is full"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
	Path      string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Message)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FileError) IsRetryable() bool {
	return e.Retryable
}
