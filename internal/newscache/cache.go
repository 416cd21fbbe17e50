package newscache

import (
	"context"
	"strconv"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/internal/store"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
	"github.com/rohmanhakim/newsfeed/pkg/timeutil"
)

/*
Responsibilities
- Decide on every load whether the stored envelope may be served
- Refetch through the caller-supplied delegate when it may not
- Persist only payloads that are JSON arrays

Guarantees
- A stored envelope younger than the freshness window is served without fetching
- A failed or invalid fetch never overwrites the stored envelope
- A failed store write never hides freshly fetched data from the caller
- No retries and no timeouts: both belong to the fetch delegate
*/

// Cache is a read-through cache of the single news resource.
// It is not safe for concurrent refreshes; callers that share a Cache
// across goroutines coalesce GetNews calls themselves.
type Cache struct {
	store             store.Store
	window            time.Duration
	serveStaleOnError bool
	metadataSink      metadata.MetadataSink
}

type Option func(*Cache)

// WithFreshnessWindow overrides DefaultFreshnessWindow. Non-positive values are ignored.
func WithFreshnessWindow(window time.Duration) Option {
	return func(c *Cache) {
		if window > 0 {
			c.window = window
		}
	}
}

// WithServeStaleOnError makes GetNews return an expired envelope's articles
// when the refresh fetch fails, instead of reporting the failure.
func WithServeStaleOnError(enabled bool) Option {
	return func(c *Cache) {
		c.serveStaleOnError = enabled
	}
}

func WithMetadataSink(sink metadata.MetadataSink) Option {
	return func(c *Cache) {
		if sink != nil {
			c.metadataSink = sink
		}
	}
}

func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:        s,
		window:       DefaultFreshnessWindow,
		metadataSink: &metadata.NoopSink{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Window() time.Duration {
	return c.window
}

// GetNews returns the cached articles when they are fresh and otherwise
// fetches, validates and stores a new payload.
func (c *Cache) GetNews(ctx context.Context, fetch FetchFunc, now timeutil.NowFunc) ([]Article, failure.ClassifiedError) {
	cached, hasCached, fresh := c.lookup(now())
	if hasCached && fresh {
		return cached.Articles, nil
	}

	return c.refill(ctx, fetch, now, cached, hasCached)
}

// Refresh fetches and stores a new payload regardless of the stored envelope's age.
// Failures behave as in GetNews.
func (c *Cache) Refresh(ctx context.Context, fetch FetchFunc, now timeutil.NowFunc) ([]Article, failure.ClassifiedError) {
	cached, hasCached, _ := c.lookup(now())
	return c.refill(ctx, fetch, now, cached, hasCached)
}

func (c *Cache) refill(ctx context.Context, fetch FetchFunc, now timeutil.NowFunc, cached Envelope, hasCached bool) ([]Article, failure.ClassifiedError) {
	payload, err := fetch(ctx)
	if err != nil {
		cacheErr := &CacheError{
			Message:   err.Error(),
			Retryable: failure.IsRetryable(err),
			Cause:     ErrCauseFetchFailure,
			Err:       err,
		}
		c.recordError("refill", cacheErr)
		if c.serveStaleOnError && hasCached {
			c.metadataSink.RecordCacheEvent(metadata.CacheServedStale, CacheKey, []metadata.Attribute{
				metadata.NewAttr(metadata.AttrAgeMillis, strconv.FormatInt(timeutil.AgeMillis(now(), cached.Timestamp), 10)),
				metadata.NewAttr(metadata.AttrMessage, cacheErr.Message),
			})
			return cached.Articles, nil
		}
		return nil, cacheErr
	}

	articles, shapeErr := decodeArticles(payload)
	if shapeErr != nil {
		cacheErr := &CacheError{
			Message:   shapeErr.Error(),
			Retryable: false,
			Cause:     ErrCauseInvalidFetchPayload,
		}
		c.recordError("refill", cacheErr)
		return nil, cacheErr
	}

	c.persist(Envelope{Articles: articles, Timestamp: timeutil.ToEpochMillis(now())})
	return articles, nil
}

// Status inspects the stored envelope as GetNews would, without fetching.
func (c *Cache) Status(now timeutil.NowFunc) Status {
	status := Status{Window: c.window}

	raw, found := c.store.Read(CacheKey)
	if !found {
		return status
	}
	status.Present = true
	status.Raw = raw

	envelope, err := ParseEnvelope(raw)
	if err != nil {
		status.Malformed = true
		return status
	}

	status.FetchedAt = timeutil.FromEpochMillis(envelope.Timestamp)
	status.Age = time.Duration(timeutil.AgeMillis(now(), envelope.Timestamp)) * time.Millisecond
	status.Fresh = c.isFresh(envelope, now())
	status.ArticleCount = len(envelope.Articles)
	return status
}

// lookup reads and parses the stored envelope.
// found is false when nothing usable is stored; absent and malformed look the same to the caller.
func (c *Cache) lookup(now time.Time) (envelope Envelope, found bool, fresh bool) {
	raw, ok := c.store.Read(CacheKey)
	if !ok {
		c.metadataSink.RecordCacheEvent(metadata.CacheMiss, CacheKey, nil)
		return Envelope{}, false, false
	}

	envelope, err := ParseEnvelope(raw)
	if err != nil {
		c.metadataSink.RecordCacheEvent(metadata.CacheMalformed, CacheKey, []metadata.Attribute{
			metadata.NewAttr(metadata.AttrMessage, err.Error()),
		})
		return Envelope{}, false, false
	}

	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrAgeMillis, strconv.FormatInt(timeutil.AgeMillis(now, envelope.Timestamp), 10)),
		metadata.NewAttr(metadata.AttrArticleCount, strconv.Itoa(len(envelope.Articles))),
	}
	fresh = c.isFresh(envelope, now)
	if fresh {
		c.metadataSink.RecordCacheEvent(metadata.CacheHit, CacheKey, attrs)
	} else {
		c.metadataSink.RecordCacheEvent(metadata.CacheStale, CacheKey, attrs)
	}
	return envelope, true, fresh
}

// isFresh holds for 0 <= age < window. A timestamp in the future counts as stale.
func (c *Cache) isFresh(envelope Envelope, now time.Time) bool {
	age := timeutil.AgeMillis(now, envelope.Timestamp)
	return age >= 0 && age < c.window.Milliseconds()
}

func (c *Cache) persist(envelope Envelope) {
	encoded, err := envelope.Encode()
	if err != nil {
		c.metadataSink.RecordError(
			time.Now(),
			"newscache",
			"Cache.persist",
			metadata.CauseInvariantViolation,
			err.Error(),
			[]metadata.Attribute{metadata.NewAttr(metadata.AttrKey, CacheKey)},
		)
		return
	}

	attrs := []metadata.Attribute{
		metadata.NewAttr(metadata.AttrArticleCount, strconv.Itoa(len(envelope.Articles))),
	}
	if writeErr := c.store.Write(CacheKey, encoded); writeErr != nil {
		c.metadataSink.RecordCacheEvent(metadata.CacheWriteFailed, CacheKey, append(attrs,
			metadata.NewAttr(metadata.AttrMessage, writeErr.Error()),
		))
		return
	}
	c.metadataSink.RecordCacheEvent(metadata.CacheWritten, CacheKey, attrs)
}

func (c *Cache) recordError(action string, err *CacheError) {
	c.metadataSink.RecordError(
		time.Now(),
		"newscache",
		"Cache."+action,
		mapCacheErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrKey, CacheKey)},
	)
}
