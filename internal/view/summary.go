package view

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/PuerkitoBio/goquery"
)

/*
Summary Handling
- Summaries arrive as HTML fragments from RSS items
- Active content (scripts, frames, forms, event handlers) is removed
- Links are kept only for http and https and open in a new tab
- The sanitized fragment is converted to Markdown for terminal output
*/

var unsafeElements = strings.Join([]string{
	"script", "style", "iframe", "frame", "frameset", "object", "embed",
	"form", "input", "button", "textarea", "select", "link", "meta", "base", "noscript",
}, ", ")

// SummaryConverter sanitizes summary HTML and converts it to Markdown.
type SummaryConverter struct {
	conv *converter.Converter
}

func NewSummaryConverter() *SummaryConverter {
	return &SummaryConverter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Convert returns the sanitized HTML and its Markdown form.
// An empty or content-free summary yields two empty strings.
func (s *SummaryConverter) Convert(summary string) (string, string) {
	if strings.TrimSpace(summary) == "" {
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return "", ""
	}
	body := doc.Find("body")
	sanitize(body)

	sanitized, err := body.Html()
	if err != nil {
		return "", ""
	}
	sanitized = strings.TrimSpace(sanitized)

	markdown, err := s.conv.ConvertString(sanitized)
	if err != nil {
		text := strings.TrimSpace(body.Text())
		return sanitized, text
	}
	return sanitized, strings.TrimSpace(markdown)
}

// Text writes plain text as a single Markdown line that renders back to the same text.
func (s *SummaryConverter) Text(text string) string {
	return markdownEscaper.Replace(strings.Join(strings.Fields(text), " "))
}

// markdownEscaper backslash-escapes the characters that open inline Markdown syntax.
var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
)

// markdownDestination percent-encodes the characters that would end a link destination early.
var markdownDestination = strings.NewReplacer(
	"(", "%28",
	")", "%29",
	"<", "%3C",
	">", "%3E",
	" ", "%20",
)

func sanitize(root *goquery.Selection) {
	root.Find(unsafeElements).Remove()

	root.Find("*").Each(func(i int, sel *goquery.Selection) {
		for _, node := range sel.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				key := strings.ToLower(attr.Key)
				if strings.HasPrefix(key, "on") || key == "style" || key == "srcdoc" {
					continue
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})

	restrictLinks(root)
}

// restrictLinks keeps anchors and images with absolute http(s) targets only.
// Other anchors are replaced by their contents so no empty link survives.
func restrictLinks(root *goquery.Selection) {
	root.Find("a").Each(func(i int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		safe := safeLink(href)
		if safe == "" {
			link.ReplaceWithSelection(link.Contents())
			return
		}
		link.SetAttr("href", safe)
		setExternal(link)
	})

	root.Find("img").Each(func(i int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if safeLink(src) == "" {
			img.Remove()
		}
	})
}

// setExternal makes a link open in a new tab without exposing the opener.
func setExternal(link *goquery.Selection) {
	link.SetAttr("target", "_blank")
	link.SetAttr("rel", "noopener noreferrer")
}
