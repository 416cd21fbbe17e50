package metadata

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/*
Metadata Collected
- Fetch timings and HTTP status codes
- Cache decisions (hit, miss, stale, malformed, write failures)
- Persisted artifacts

Metadata is write-only.
No component may read metadata to decide whether to fetch, cache or serve.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		sizeByte int,
	)

	RecordCacheEvent(kind CacheEventKind, key string, attrs []Attribute)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

// Recorder emits every metadata event as one structured zerolog line.
// All lines produced by a Recorder share a session id.
type Recorder struct {
	sessionID string
	logger    zerolog.Logger
}

func NewRecorder(logger zerolog.Logger) *Recorder {
	sessionID := uuid.NewString()
	return &Recorder{
		sessionID: sessionID,
		logger:    logger.With().Str("session", sessionID).Logger(),
	}
}

func (r *Recorder) SessionID() string {
	return r.sessionID
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	event := r.logger.Error().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Stringer("cause", cause)
	withAttrs(event, attrs).Msg(details)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte int,
) {
	r.logger.Info().
		Str("url", fetchUrl).
		Int("http_status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("size_byte", sizeByte).
		Msg("fetch")
}

func (r *Recorder) RecordCacheEvent(kind CacheEventKind, key string, attrs []Attribute) {
	level := zerolog.DebugLevel
	switch kind {
	case CacheWriteFailed, CacheServedStale:
		level = zerolog.WarnLevel
	case CacheMiss, CacheStale, CacheWritten:
		level = zerolog.InfoLevel
	}
	event := r.logger.WithLevel(level).
		Str("cache_event", string(kind)).
		Str("key", key)
	withAttrs(event, attrs).Msg("cache")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	event := r.logger.Debug().
		Str("artifact", string(kind)).
		Str("path", path)
	withAttrs(event, attrs).Msg("artifact")
}

func withAttrs(event *zerolog.Event, attrs []Attribute) *zerolog.Event {
	for _, attr := range attrs {
		event = event.Str(string(attr.Key), attr.Value)
	}
	return event
}

// NoopSink implements MetadataSink but does nothing.
// Callers (or tests) decide whether to inject a Recorder or a NoopSink.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte int,
) {
}

func (n *NoopSink) RecordCacheEvent(kind CacheEventKind, key string, attrs []Attribute) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}
