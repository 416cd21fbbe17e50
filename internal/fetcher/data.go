package fetcher

import (
	"encoding/json"
	"net/url"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

func (p FetchParam) UserAgent() string {
	return p.userAgent
}

// FetchResult is a successful response whose body is syntactically valid JSON.
// Its shape (array or not) is left to the caller.
type FetchResult struct {
	url  url.URL
	body json.RawMessage
	meta ResponseMeta
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() json.RawMessage {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) ContentType() string {
	return f.meta.contentType
}

func (f *FetchResult) SizeByte() int {
	return len(f.body)
}

type ResponseMeta struct {
	statusCode  int
	contentType string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	contentType string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:  statusCode,
			contentType: contentType,
		},
	}
}
