package view

import (
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/theme"
)

const (
	FallbackTitle   = "No Title"
	FallbackFeed    = "Source"
	FallbackSummary = "No summary available."
	FallbackDate    = "Date unavailable"
	ReadMoreLabel   = "Read More"
	PageTitle       = "News Feed"
)

type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

func (f Format) Valid() bool {
	switch f {
	case FormatMarkdown, FormatHTML, FormatJSON:
		return true
	default:
		return false
	}
}

// Card is one article with every fallback already applied.
type Card struct {
	Title string `json:"title"`
	Feed  string `json:"feed"`
	// SummaryHTML is sanitized markup; SummaryMarkdown is derived from it.
	SummaryHTML     string `json:"summaryHtml"`
	SummaryMarkdown string `json:"summary"`
	Published       string `json:"published"`
	// Link is empty when the article carries no usable http(s) link.
	Link string `json:"link,omitempty"`
}

// Page is everything a renderer needs for one load.
type Page struct {
	Outcome newscache.Outcome
	Cards   []Card
	Theme   theme.Theme
	Year    int
}

// Message is the text shown instead of cards, empty when there are cards.
func (p Page) Message() string {
	return p.Outcome.Message()
}
