package store_test

import (
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
)

// metadataSinkMock is a mock for metadata.MetadataSink
type metadataSinkMock struct {
	recordErrorCalled    bool
	recordErrorAction    string
	recordErrorCause     metadata.ErrorCause
	recordArtifactCalled bool
	recordArtifactKind   metadata.ArtifactKind
	recordArtifactPath   string
	recordArtifactAttrs  []metadata.Attribute
}

func (m *metadataSinkMock) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.recordErrorCalled = true
	m.recordErrorAction = action
	m.recordErrorCause = cause
}

func (m *metadataSinkMock) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	sizeByte int,
) {
}

func (m *metadataSinkMock) RecordCacheEvent(kind metadata.CacheEventKind, key string, attrs []metadata.Attribute) {
}

func (m *metadataSinkMock) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	m.recordArtifactCalled = true
	m.recordArtifactKind = kind
	m.recordArtifactPath = path
	m.recordArtifactAttrs = attrs
}

// findAttrValue finds an attribute value by key in a slice of attributes
func findAttrValue(attrs []metadata.Attribute, key metadata.AttributeKey) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value
		}
	}
	return ""
}
