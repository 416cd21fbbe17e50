package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/rohmanhakim/newsfeed/internal/newscache"
)

func (r *Renderer) writeMarkdown(w io.Writer, page Page) *RenderError {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", PageTitle)
	if len(page.Cards) == 0 {
		fmt.Fprintf(&b, "%s\n\n", r.messageMarkdown(page))
	}
	for _, card := range page.Cards {
		b.WriteString(r.cardMarkdown(card))
		b.WriteString("---\n\n")
	}
	fmt.Fprintf(&b, "© %d %s\n", page.Year, PageTitle)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return &RenderError{Message: err.Error(), Cause: ErrCauseWrite}
	}
	return nil
}

func (r *Renderer) messageMarkdown(page Page) string {
	return r.summaries.Text(messageText(page))
}

// messageText is the outcome message; a page without cards always shows one.
func messageText(page Page) string {
	if message := page.Message(); message != "" {
		return message
	}
	return newscache.MessageEmpty
}

func (r *Renderer) cardMarkdown(card Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", r.summaries.Text(card.Title))
	fmt.Fprintf(&b, "*%s* · Published: %s\n\n", r.summaries.Text(card.Feed), card.Published)
	fmt.Fprintf(&b, "%s\n\n", card.SummaryMarkdown)
	if card.Link != "" {
		fmt.Fprintf(&b, "[%s](%s)\n\n", ReadMoreLabel, markdownDestination.Replace(card.Link))
	}
	return b.String()
}
