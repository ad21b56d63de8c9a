package processor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// strippedSelector matches elements whose text never belongs to the page
// content, like chrome and embedded code.
const strippedSelector = "script, style, noscript, nav, header, footer, aside"

// Processor extracts plain text, titles, and links from HTML pages.
type Processor struct{}

// New creates a new HTML processor.
func New() *Processor {
	return &Processor{}
}

// ExtractText returns the visible text content of the page with whitespace
// collapsed to single spaces. Boilerplate regions (navigation, headers,
// footers, sidebars) and non-text elements are removed first. When the page
// has a <main> or <article> landmark, only that region is used.
func (p *Processor) ExtractText(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	doc.Find(strippedSelector).Remove()

	region := doc.Find("main").First()
	if region.Length() == 0 {
		region = doc.Find("article").First()
	}
	if region.Length() == 0 {
		region = doc.Find("body").First()
	}

	text := region.Text()
	if region.Length() == 0 {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " ")
}

// ExtractTitle extracts the <title> content from HTML.
func (p *Processor) ExtractTitle(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var findTitle func(*html.Node)
	findTitle = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findTitle(c)
		}
	}
	findTitle(doc)

	return strings.TrimSpace(title)
}

// ExtractLinks returns the absolute target of every anchor on the page,
// resolved against baseURL. Non-HTTP schemes are dropped. Duplicates are
// kept; the crawler dedupes after normalization.
func (p *Processor) ExtractLinks(baseURL, htmlContent string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		links = append(links, abs.String())
	})
	return links
}
