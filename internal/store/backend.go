package store

import (
	"fmt"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendMemory, BackendFile, BackendSQLite:
		return true
	default:
		return false
	}
}

// Open returns the backend-specific store rooted at dir.
// dir is ignored by the memory backend.
func Open(backend Backend, dir string, metadataSink metadata.MetadataSink) (ClosableStore, failure.ClassifiedError) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		s, err := NewFileStore(dir, metadataSink)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendSQLite:
		s, err := OpenSQLiteStore(dir, metadataSink)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, &StoreError{
			Message:   fmt.Sprintf("backend %q is not one of memory, file, sqlite", backend),
			Retryable: false,
			Cause:     ErrCauseUnknownBackend,
		}
	}
}
