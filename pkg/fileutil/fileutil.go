package fileutil

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

const (
	dirPerms  = 0o700
	filePerms = 0o600
)

// EnsureDir check if a given directory plus the following path exist, then create one if not
func EnsureDir(dir string, path ...string) failure.ClassifiedError {
	targetPath := []string{dir}
	targetPath = append(targetPath, path...)

	fullDir := filepath.Join(targetPath...)
	if err := os.MkdirAll(fullDir, dirPerms); err != nil {
		return &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      fullDir,
		}
	}
	return nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it into place,
// so readers observe either the previous content or the new content, never a torn write.
func WriteFileAtomic(path string, data []byte) failure.ClassifiedError {
	tmpPath := path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, data, filePerms); err != nil {
		_ = os.Remove(tmpPath)
		return classifyWriteError(path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return classifyWriteError(path, err)
	}
	return nil
}

func classifyWriteError(path string, err error) *FileError {
	if errors.Is(err, syscall.ENOSPC) {
		return &FileError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseDiskFull,
			Path:      path,
		}
	}
	return &FileError{
		Message:   err.Error(),
		Retryable: false,
		Cause:     ErrCauseWriteFailure,
		Path:      path,
	}
}
