package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

/*
Responsibilities

- Perform one HTTP GET against the feed endpoint
- Apply headers and the client timeout
- Classify responses

Fetch Semantics

- Only 2xx responses with a syntactically valid JSON body succeed
- Whether the JSON is an array is decided by the caller
- No retries: a failure is reported once and left to the caller
- Every attempt is recorded with metadata

The fetcher never interprets records; it only returns bytes and metadata.
*/

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	maxRedirects        = 5
)

type FeedFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	maxBodyBytes int64
}

func NewFeedFetcher(
	metadataSink metadata.MetadataSink,
	timeout time.Duration,
) FeedFetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return FeedFetcher{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// NewFeedFetcherWithClient is used by tests and callers that share an http.Client.
func NewFeedFetcherWithClient(metadataSink metadata.MetadataSink, client *http.Client, maxBodyBytes int64) FeedFetcher {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return FeedFetcher{
		metadataSink: metadataSink,
		httpClient:   client,
		maxBodyBytes: maxBodyBytes,
	}
}

func (f *FeedFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "FeedFetcher.Fetch"
	startTime := time.Now()

	result, statusCode, contentType, err := f.performFetch(ctx, fetchParam.fetchUrl, fetchParam.userAgent)

	f.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		time.Since(startTime),
		contentType,
		len(result.body),
	)

	if err != nil {
		f.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchParam.fetchUrl.String()),
				metadata.NewAttr(metadata.AttrHTTPStatus, fmt.Sprintf("%d", statusCode)),
			},
		)
		return FetchResult{}, err
	}

	return result, nil
}

// FetchFunc adapts Fetch to the delegate shape the news cache calls.
func (f *FeedFetcher) FetchFunc(fetchParam FetchParam) func(ctx context.Context) (json.RawMessage, error) {
	return func(ctx context.Context) (json.RawMessage, error) {
		result, err := f.Fetch(ctx, fetchParam)
		if err != nil {
			return nil, err
		}
		return result.Body(), nil
	}
}

func (f *FeedFetcher) performFetch(ctx context.Context, fetchUrl url.URL, userAgent string) (FetchResult, int, string, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, 0, "", &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseInvalidRequest,
		}
	}

	for key, value := range requestHeaders(userAgent) {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, 0, "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		return FetchResult{}, resp.StatusCode, contentType, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}
	if int64(len(body)) > f.maxBodyBytes {
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message:    fmt.Sprintf("body exceeds %d bytes", f.maxBodyBytes),
			Retryable:  false,
			Cause:      ErrCauseBodyTooLarge,
			StatusCode: resp.StatusCode,
		}
	}

	// Content-Type is ignored; validity is judged on the body alone.
	if !json.Valid(body) {
		return FetchResult{}, resp.StatusCode, contentType, &FetchError{
			Message:    fmt.Sprintf("body is not valid JSON (content type %q)", contentType),
			Retryable:  false,
			Cause:      ErrCauseNotJSON,
			StatusCode: resp.StatusCode,
		}
	}

	return FetchResult{
		url:  fetchUrl,
		body: body,
		meta: ResponseMeta{
			statusCode:  resp.StatusCode,
			contentType: contentType,
		},
	}, resp.StatusCode, contentType, nil
}

func classifyTransportError(err error) *FetchError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Message:   fmt.Sprintf("request timed out: %v", err),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}
	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseNetworkFailure,
	}
}

func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 500:
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusForbidden:
		return &FetchError{
			Message:    "access forbidden (403)",
			Retryable:  false,
			Cause:      ErrCauseRequestForbidden,
			StatusCode: statusCode,
		}

	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}

	case statusCode >= 300:
		// the client follows redirects; reaching here means the chain was cut off
		return &FetchError{
			Message:    fmt.Sprintf("redirect error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}

	case statusCode < 200:
		return &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}
	}
	return nil
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent": userAgent,
		"Accept":     "application/json",
	}
}
