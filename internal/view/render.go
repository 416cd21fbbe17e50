package view

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rohmanhakim/newsfeed/internal/metadata"
	"github.com/rohmanhakim/newsfeed/internal/newscache"
	"github.com/rohmanhakim/newsfeed/internal/theme"
	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

/*
Responsibilities
- Turn one GetNews result into a Page
- Render the Page as Markdown, HTML or JSON

Rendering Rules
- Exactly one of: cards, the empty message, the format error, the fetch failure
- Every missing article field falls back to a fixed placeholder
- Markdown is the canonical form; HTML is derived from it
*/

type Renderer struct {
	summaries    *SummaryConverter
	metadataSink metadata.MetadataSink
}

func NewRenderer(metadataSink metadata.MetadataSink) *Renderer {
	return &Renderer{
		summaries:    NewSummaryConverter(),
		metadataSink: metadataSink,
	}
}

// BuildPage classifies a GetNews result and prepares its cards.
func (r *Renderer) BuildPage(articles []newscache.Article, err error, t theme.Theme, now time.Time) Page {
	page := Page{
		Outcome: newscache.Classify(articles, err),
		Theme:   t,
		Year:    now.Year(),
	}
	if page.Outcome != newscache.OutcomeArticles {
		return page
	}

	page.Cards = make([]Card, 0, len(articles))
	for _, article := range articles {
		page.Cards = append(page.Cards, NewCard(article, r.summaries))
	}
	return page
}

// Render writes page to w in the requested format.
func (r *Renderer) Render(w io.Writer, format Format, page Page) failure.ClassifiedError {
	var err *RenderError
	switch format {
	case FormatMarkdown:
		err = r.writeMarkdown(w, page)
	case FormatHTML:
		err = r.writeHTML(w, page)
	case FormatJSON:
		err = writeJSON(w, page)
	default:
		err = &RenderError{
			Message: fmt.Sprintf("%q is not one of markdown, html, json", format),
			Cause:   ErrCauseUnknownFormat,
		}
	}

	if err != nil {
		r.metadataSink.RecordError(
			time.Now(),
			"view",
			"Renderer.Render",
			mapRenderErrorToMetadataCause(err),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, string(format)),
			},
		)
		return err
	}
	return nil
}

type jsonPage struct {
	Outcome  string `json:"outcome"`
	Message  string `json:"message,omitempty"`
	Theme    string `json:"theme"`
	Year     int    `json:"year"`
	Articles []Card `json:"articles"`
}

func writeJSON(w io.Writer, page Page) *RenderError {
	cards := page.Cards
	if cards == nil {
		cards = []Card{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(jsonPage{
		Outcome:  page.Outcome.String(),
		Message:  page.Message(),
		Theme:    string(page.Theme),
		Year:     page.Year,
		Articles: cards,
	}); err != nil {
		return &RenderError{Message: err.Error(), Cause: ErrCauseWrite}
	}
	return nil
}
