package view

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/net/html"
)

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title></title>
<style>
body { font-family: system-ui, sans-serif; margin: 0; padding: 1rem; }
body[data-theme="dark"] { background: #121212; color: #e0e0e0; }
body[data-theme="dark"] a { color: #8ab4f8; }
body[data-theme="light"] { background: #fafafa; color: #202124; }
.news-container { display: grid; gap: 1rem; max-width: 48rem; margin: 0 auto; }
.news-card { border: 1px solid #8884; border-radius: 8px; padding: 1rem; }
.card-meta { font-size: 0.875rem; opacity: 0.8; }
</style>
</head>
<body>
<header>
<h1></h1>
<form class="theme-toggle" method="post" action="/theme"><button type="submit"></button></form>
</header>
<main class="news-container"></main>
<footer><p>© <span id="copyright-year"></span> News Feed</p></footer>
</body>
</html>`

const cardShell = `<article class="news-card">
<h2 class="card-title"></h2>
<p class="card-meta"><em class="card-feed"></em> · Published: <span class="card-date"></span></p>
<div class="card-summary"></div>
</article>`

// writeHTML fills the page shell. Titles, feeds and dates are set as text;
// only the summary Markdown goes through gomarkdown.
func (r *Renderer) writeHTML(w io.Writer, page Page) *RenderError {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageShell))
	if err != nil {
		return &RenderError{Message: err.Error(), Cause: ErrCauseConversion}
	}

	doc.Find("title").SetText(PageTitle)
	doc.Find("header h1").SetText(PageTitle)
	doc.Find("body").SetAttr("data-theme", string(page.Theme))
	doc.Find(".theme-toggle button").SetText("Switch to " + string(page.Theme.Opposite()) + " theme")
	doc.Find("#copyright-year").SetText(strconv.Itoa(page.Year))

	container := doc.Find(".news-container")
	if len(page.Cards) == 0 {
		container.SetHtml(`<p class="news-message"></p>`)
		container.Find(".news-message").SetText(messageText(page))
	}
	for _, card := range page.Cards {
		container.AppendHtml(cardShell)
		appendCard(container.Children().Last(), card)
	}

	if err := html.Render(w, doc.Nodes[0]); err != nil {
		return &RenderError{Message: err.Error(), Cause: ErrCauseWrite}
	}
	return nil
}

func appendCard(cardSel *goquery.Selection, card Card) {
	cardSel.Find(".card-title").SetText(card.Title)
	cardSel.Find(".card-feed").SetText(card.Feed)
	cardSel.Find(".card-date").SetText(card.Published)

	summary := cardSel.Find(".card-summary")
	summary.SetHtml(string(markdownToHTML(card.SummaryMarkdown)))
	restrictLinks(summary)

	if card.Link != "" {
		cardSel.AppendHtml(`<p><a class="card-link"></a></p>`)
		link := cardSel.Find(".card-link")
		link.SetAttr("href", card.Link)
		link.SetText(ReadMoreLabel)
		setExternal(link)
	}
}

// markdownToHTML converts summary Markdown. Raw HTML in the input is dropped;
// link targets are checked afterwards by restrictLinks.
func markdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.SkipHTML,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}
