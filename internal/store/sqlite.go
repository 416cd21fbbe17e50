package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
	"github.com/rohmanhakim/newsfeed/pkg/fileutil"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "newsfeed.db"

// SQLiteStore keeps every key in a single kv table.
type SQLiteStore struct {
	db           *sql.DB
	path         string
	metadataSink metadata.MetadataSink
}

// OpenSQLiteStore opens (or creates) dir/newsfeed.db and prepares the schema.
func OpenSQLiteStore(dir string, metadataSink metadata.MetadataSink) (*SQLiteStore, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnavailable,
		}
	}

	path := filepath.Join(dir, sqliteFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{
			Message:   fmt.Sprintf("opening %s: %v", path, err),
			Retryable: false,
			Cause:     ErrCauseUnavailable,
		}
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path, metadataSink: metadataSink}
	if err := s.init(); err != nil {
		db.Close()
		return nil, &StoreError{
			Message:   fmt.Sprintf("initializing schema: %v", err),
			Retryable: false,
			Cause:     ErrCauseUnavailable,
		}
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStore) Read(key string) (string, bool) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			s.metadataSink.RecordError(
				time.Now(),
				"store",
				"SQLiteStore.Read",
				metadata.CauseStorageFailure,
				err.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrKey, key)},
			)
		}
		return "", false
	}
	return value, true
}

func (s *SQLiteStore) Write(key string, value string) failure.ClassifiedError {
	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		storeErr := &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Key:       key,
		}
		if isSQLiteFull(err) {
			storeErr.Cause = ErrCauseQuotaExceeded
		}
		s.metadataSink.RecordError(
			time.Now(),
			"store",
			"SQLiteStore.Write",
			mapStoreErrorToMetadataCause(storeErr),
			storeErr.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrKey, key)},
		)
		return storeErr
	}

	s.metadataSink.RecordArtifact(
		metadata.ArtifactStoreValue,
		s.path,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrKey, key),
			metadata.NewAttr(metadata.AttrBackend, string(BackendSQLite)),
		},
	)
	return nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteFull(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database or disk is full") || strings.Contains(msg, "sqlite_full")
}
