package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used to decide whether a payload is cached or served.
	 - Packages MAY map their local errors to ErrorCause, but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

  - Transport failure or remote unavailability (timeouts, DNS, connection resets, 5xx).

# CauseRemoteRejected

  - The endpoint answered but refused the request (4xx, redirects we do not follow).

# CauseContentInvalid

  - Content arrived but is not usable (non-JSON body, JSON that is not an array).

# CauseStorageFailure

  - The store could not persist a value (quota exceeded, disk full, storage disabled).

# CauseInvariantViolation

  - An internal consistency check failed (an envelope that cannot be encoded).
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseRemoteRejected
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseRemoteRejected:
		return "remote_rejected"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// CacheEventKind names the decision the freshness gate took for a single lookup.
type CacheEventKind string

const (
	CacheHit         CacheEventKind = "hit"
	CacheMiss        CacheEventKind = "miss"
	CacheStale       CacheEventKind = "stale"
	CacheMalformed   CacheEventKind = "malformed"
	CacheWritten     CacheEventKind = "written"
	CacheWriteFailed CacheEventKind = "write_failed"
	CacheServedStale CacheEventKind = "served_stale"
)

type ArtifactKind string

const (
	ArtifactStoreValue ArtifactKind = "store_value"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrKey          AttributeKey = "key"
	AttrURL          AttributeKey = "url"
	AttrHTTPStatus   AttributeKey = "http_status"
	AttrAgeMillis    AttributeKey = "age_ms"
	AttrArticleCount AttributeKey = "article_count"
	AttrWritePath    AttributeKey = "write_path"
	AttrBackend      AttributeKey = "backend"
	AttrMessage      AttributeKey = "message"
)
