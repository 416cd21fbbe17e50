package view

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/newscache"
)

// Upstream field names are case-sensitive.
const (
	fieldTitle   = "Title"
	fieldSummary = "Summary"
	fieldPubDate = "PubDate"
	fieldLink    = "Link"
	fieldFeed    = "feed"
)

const displayDateLayout = "Jan 2, 2006"

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewCard reads the known fields of an article leniently.
// Records that are not JSON objects render with every fallback.
func NewCard(article newscache.Article, summaries *SummaryConverter) Card {
	fields := map[string]json.RawMessage{}
	_ = json.Unmarshal(article, &fields)

	card := Card{
		Title:     orDefault(textField(fields[fieldTitle]), FallbackTitle),
		Feed:      orDefault(textField(fields[fieldFeed]), FallbackFeed),
		Published: formatPubDate(fields[fieldPubDate]),
		Link:      safeLink(textField(fields[fieldLink])),
	}

	summaryHTML, summaryMarkdown := summaries.Convert(textField(fields[fieldSummary]))
	if strings.TrimSpace(summaryMarkdown) == "" {
		card.SummaryHTML = FallbackSummary
		card.SummaryMarkdown = FallbackSummary
	} else {
		card.SummaryHTML = summaryHTML
		card.SummaryMarkdown = summaryMarkdown
	}
	return card
}

// textField renders a scalar JSON value as text.
// Falsy values (null, "", 0, false) and containers yield "".
func textField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == 0 {
			return ""
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "true"
		}
		return ""
	default:
		return ""
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// formatPubDate accepts the common feed date layouts or epoch milliseconds.
func formatPubDate(raw json.RawMessage) string {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil && number != 0 {
		return time.UnixMilli(int64(number)).UTC().Format(displayDateLayout)
	}

	text := strings.TrimSpace(textField(raw))
	if text == "" {
		return FallbackDate
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return FallbackDate
}

// safeLink keeps absolute http and https links only.
func safeLink(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String()
	default:
		return ""
	}
}
