package newscache

import (
	"context"
	"encoding/json"
	"time"
)

const (
	// CacheKey is the single store key the news cache owns.
	CacheKey = "newsCache"

	// DefaultFreshnessWindow is how long a fetched payload is trusted.
	DefaultFreshnessWindow = 12 * time.Hour
)

// Article is one record of the fetched feed. The cache never looks inside it.
type Article = json.RawMessage

// FetchFunc retrieves a fresh payload from the remote endpoint.
// A returned error means the fetch failed; a nil error with a payload that
// is not a JSON array is reported as an invalid payload by the cache.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Envelope is the persisted form of the cache entry.
type Envelope struct {
	Articles  []Article `json:"articles"`
	Timestamp int64     `json:"timestamp"`
}

// Status describes the stored envelope without touching the network.
type Status struct {
	Present      bool
	Malformed    bool
	Fresh        bool
	FetchedAt    time.Time
	Age          time.Duration
	Window       time.Duration
	ArticleCount int
	Raw          string
}
