package newscache_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
	"github.com/stretchr/testify/mock"
)

// storeMock is a testify mock for store.Store
type storeMock struct {
	mock.Mock
}

func (s *storeMock) Read(key string) (string, bool) {
	args := s.Called(key)
	return args.String(0), args.Bool(1)
}

func (s *storeMock) Write(key string, value string) failure.ClassifiedError {
	args := s.Called(key, value)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(failure.ClassifiedError)
}

// countingFetch returns a FetchFunc stub and a pointer to its call count.
func countingFetch(payload string, err error) (func(ctx context.Context) (json.RawMessage, error), *int) {
	calls := 0
	return func(ctx context.Context) (json.RawMessage, error) {
		calls++
		if err != nil {
			return nil, err
		}
		return json.RawMessage(payload), nil
	}, &calls
}

// retryableFetchError mimics a transport failure from the fetcher
type retryableFetchError struct{}

func (retryableFetchError) Error() string              { return "connection reset" }
func (retryableFetchError) Severity() failure.Severity { return failure.SeverityRecoverable }
func (retryableFetchError) IsRetryable() bool          { return true }

var errHTTP500 = errors.New("http status 500")

// eventRecordingSink collects cache events in order
type eventRecordingSink struct {
	events     []metadata.CacheEventKind
	errorCount int
	lastCause  metadata.ErrorCause
}

func (e *eventRecordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	e.errorCount++
	e.lastCause = cause
}

func (e *eventRecordingSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte int,
) {
}

func (e *eventRecordingSink) RecordCacheEvent(kind metadata.CacheEventKind, key string, attrs []metadata.Attribute) {
	e.events = append(e.events, kind)
}

func (e *eventRecordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
}
