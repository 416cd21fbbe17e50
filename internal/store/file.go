package store

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
	"github.com/rohmanhakim/newsfeed/pkg/fileutil"
	"github.com/rohmanhakim/newsfeed/pkg/hashutil"
)

/*
Output Characteristics
- One file per key: <dir>/<blake3(key)[:16]>.json
- Deterministic filenames
- Atomic overwrite (temp file + rename)
*/

const fileNameHashLength = 16

type FileStore struct {
	dir          string
	metadataSink metadata.MetadataSink
}

// NewFileStore creates the directory if needed and returns a store rooted at it.
func NewFileStore(dir string, metadataSink metadata.MetadataSink) (*FileStore, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnavailable,
		}
	}
	return &FileStore{
		dir:          dir,
		metadataSink: metadataSink,
	}, nil
}

func (f *FileStore) Read(key string) (string, bool) {
	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.metadataSink.RecordError(
				time.Now(),
				"store",
				"FileStore.Read",
				metadata.CauseStorageFailure,
				err.Error(),
				[]metadata.Attribute{
					metadata.NewAttr(metadata.AttrKey, key),
					metadata.NewAttr(metadata.AttrWritePath, f.Path(key)),
				},
			)
		}
		return "", false
	}
	return string(data), true
}

func (f *FileStore) Write(key string, value string) failure.ClassifiedError {
	path := f.Path(key)
	if err := fileutil.WriteFileAtomic(path, []byte(value)); err != nil {
		storeErr := &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		}
		var fileErr *fileutil.FileError
		if errors.As(err, &fileErr) && fileErr.Cause == fileutil.ErrCauseDiskFull {
			storeErr.Cause = ErrCauseDiskFull
			storeErr.Retryable = true
		}
		f.metadataSink.RecordError(
			time.Now(),
			"store",
			"FileStore.Write",
			mapStoreErrorToMetadataCause(storeErr),
			storeErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrKey, key),
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
		return storeErr
	}

	f.metadataSink.RecordArtifact(
		metadata.ArtifactStoreValue,
		path,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrKey, key),
			metadata.NewAttr(metadata.AttrBackend, string(BackendFile)),
		},
	)
	return nil
}

// Path returns the file that holds key.
func (f *FileStore) Path(key string) string {
	name, err := hashutil.ShortHash(key, fileNameHashLength, hashutil.HashAlgoBLAKE3)
	if err != nil {
		// blake3 is always supported; fall back to the raw key rather than fail.
		name = key
	}
	return filepath.Join(f.dir, name+".json")
}

func (f *FileStore) Dir() string {
	return f.dir
}

// Close is a no-op so FileStore satisfies ClosableStore.
func (f *FileStore) Close() error {
	return nil
}
