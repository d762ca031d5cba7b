package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/medwire/internal/models"
)

// Minimum usable lengths per field. Shorter matches are treated as
// boilerplate and the cascade moves to the next selector.
const (
	minTitleLen    = 5
	minContentLen  = 100
	minAuthorLen   = 2
	minSummaryLen  = 20
	minCategoryLen = 2

	minParagraphLen = 20
)

var dateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// ExtractionRules hold a source's selector cascades, most specific
// first. Empty cascades skip the field entirely.
type ExtractionRules struct {
	TitleSelectors    []string
	ContentSelectors  []string
	SummarySelectors  []string
	AuthorSelectors   []string
	DateSelectors     []string
	CategorySelectors []string
}

// Extractor pulls article fields out of a parsed page using a source's
// selector cascades. Title and content are required; every other field
// degrades to empty when nothing plausible matches.
type Extractor struct {
	rules ExtractionRules
}

// NewExtractor creates an extractor for one source's rules
func NewExtractor(rules ExtractionRules) *Extractor {
	return &Extractor{rules: rules}
}

// Extract builds an article from the document. It returns an
// *ExtractionError when a required field has no plausible match.
func (e *Extractor) Extract(doc *goquery.Document, url string) (*models.Article, error) {
	title := e.firstMatch(doc, e.rules.TitleSelectors, minTitleLen)
	if title == "" {
		return nil, &ExtractionError{URL: url, Field: "title"}
	}

	content := e.extractContent(doc)
	if content == "" {
		return nil, &ExtractionError{URL: url, Field: "content"}
	}

	article := &models.Article{
		Title:       title,
		Content:     content,
		Summary:     e.firstMatch(doc, e.rules.SummarySelectors, minSummaryLen),
		Author:      e.extractAuthor(doc),
		Category:    e.firstMatch(doc, e.rules.CategorySelectors, minCategoryLen),
		URL:         url,
		PublishedAt: e.extractDate(doc),
	}
	return article, nil
}

// firstMatch walks a cascade and returns the first cleaned match longer
// than the floor
func (e *Extractor) firstMatch(doc *goquery.Document, selectors []string, minLen int) string {
	for _, sel := range selectors {
		text := CleanText(doc.Find(sel).First().Text())
		if len(text) > minLen {
			return text
		}
	}
	return ""
}

// extractContent joins all paragraph texts under the first matching
// container, falling back to every substantial paragraph on the page
func (e *Extractor) extractContent(doc *goquery.Document) string {
	for _, sel := range e.rules.ContentSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		text := joinParagraphs(container.Find("p"))
		if text == "" {
			// Containers without <p> children still count when their
			// own text is substantial, minus embedded script/style noise
			container.Find("script, style").Remove()
			text = CleanText(container.Text())
		}
		if len(text) > minContentLen {
			return text
		}
	}

	text := joinParagraphs(doc.Find("p"))
	if len(text) > minContentLen {
		return text
	}
	return ""
}

func joinParagraphs(sel *goquery.Selection) string {
	var parts []string
	sel.Each(func(_ int, p *goquery.Selection) {
		text := CleanText(p.Text())
		if len(text) > minParagraphLen {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

// extractAuthor strips a leading "By " credit line
func (e *Extractor) extractAuthor(doc *goquery.Document) string {
	author := e.firstMatch(doc, e.rules.AuthorSelectors, minAuthorLen)
	author = strings.TrimSpace(strings.TrimPrefix(author, "By "))
	if len(author) <= minAuthorLen {
		return ""
	}
	return author
}

// extractDate prefers a machine-readable datetime attribute, then tries
// the common human-readable layouts against element text
func (e *Extractor) extractDate(doc *goquery.Document) *time.Time {
	for _, sel := range e.rules.DateSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		if attr, ok := node.Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(attr)); err == nil {
				return &t
			}
			if t := parseDateText(attr); t != nil {
				return t
			}
		}

		if t := parseDateText(node.Text()); t != nil {
			return t
		}
	}
	return nil
}

func parseDateText(text string) *time.Time {
	text = CleanText(text)
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return &t
		}
	}
	return nil
}
