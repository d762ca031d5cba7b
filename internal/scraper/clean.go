package scraper

import (
	"regexp"
	"strings"
)

// Entities are decoded before whitespace collapsing so a non-breaking
// space between words cannot survive as a double space.
var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// CleanText normalizes extracted text: decodes common HTML entities,
// collapses runs of whitespace to single spaces and trims the result
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = entityReplacer.Replace(text)
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
