package scraper

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

var testRules = ExtractionRules{
	TitleSelectors:    []string{"h1", ".article-title"},
	ContentSelectors:  []string{".article-content", "article"},
	SummarySelectors:  []string{".summary"},
	AuthorSelectors:   []string{".byline", ".author"},
	DateSelectors:     []string{"time[datetime]", ".date"},
	CategorySelectors: []string{".category"},
}

const longParagraph = "Researchers at a large teaching hospital followed two thousand patients over five years and found that consistent sleep schedules were associated with measurably better cardiovascular outcomes across every age group studied."

func TestExtractor_FullArticle(t *testing.T) {
	html := `<html><body>
		<h1>Sleep and Heart Health</h1>
		<p class="summary">A five-year study links regular sleep to better heart outcomes.</p>
		<span class="byline">By Maria Cohen</span>
		<time datetime="2025-03-14T09:30:00Z">March 14, 2025</time>
		<span class="category">Cardiology</span>
		<div class="article-content">
			<p>` + longParagraph + `</p>
			<p>` + longParagraph + `</p>
		</div>
	</body></html>`

	article, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/sleep")
	require.NoError(t, err)

	assert.Equal(t, "Sleep and Heart Health", article.Title)
	assert.Contains(t, article.Content, "cardiovascular outcomes")
	assert.Equal(t, "A five-year study links regular sleep to better heart outcomes.", article.Summary)
	assert.Equal(t, "Maria Cohen", article.Author, "leading By must be stripped")
	assert.Equal(t, "Cardiology", article.Category)
	require.NotNil(t, article.PublishedAt)
	assert.Equal(t, time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC), article.PublishedAt.UTC())
	assert.Equal(t, "https://example.com/articles/sleep", article.URL)
}

func TestExtractor_MissingTitleIsError(t *testing.T) {
	html := `<html><body><div class="article-content"><p>` + longParagraph + `</p></div></body></html>`

	_, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "title", extErr.Field)
}

func TestExtractor_MissingContentIsError(t *testing.T) {
	html := `<html><body><h1>Just a Headline Here</h1><p>Too short.</p></body></html>`

	_, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "content", extErr.Field)
}

func TestExtractor_TitleFloorMovesCascadeAlong(t *testing.T) {
	// The h1 match is too short to be a real title, the fallback class wins
	html := `<html><body>
		<h1>Ad</h1>
		<div class="article-title">Gut Microbiome Findings Published</div>
		<article><p>` + longParagraph + `</p></article>
	</body></html>`

	article, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	require.NoError(t, err)
	assert.Equal(t, "Gut Microbiome Findings Published", article.Title)
}

func TestExtractor_ParagraphFallback(t *testing.T) {
	// No content container matches; substantial paragraphs anywhere on
	// the page are joined, short ones dropped
	html := `<html><body>
		<h1>Vitamin D Guidance Updated</h1>
		<p>Short one.</p>
		<p>` + longParagraph + `</p>
	</body></html>`

	article, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	require.NoError(t, err)
	assert.NotContains(t, article.Content, "Short one.")
	assert.Contains(t, article.Content, "cardiovascular outcomes")
}

func TestExtractor_JoinedContentHasNoWhitespaceRuns(t *testing.T) {
	html := `<html><body>
		<h1>Blood Pressure Guidance Revised</h1>
		<div class="article-content">
			<p>` + longParagraph + `</p>
			<p>` + longParagraph + `</p>
			<p>` + longParagraph + `</p>
		</div>
	</body></html>`

	article, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	require.NoError(t, err)
	assert.NotContains(t, article.Content, "\n")
	assert.NotContains(t, article.Content, "  ")
	assert.Equal(t, 3, strings.Count(article.Content, "cardiovascular outcomes"))
}

func TestExtractor_ContainerTextSkipsScriptAndStyle(t *testing.T) {
	// Container without <p> children falls back to its own text, which
	// must not pick up embedded script or style bodies
	html := `<html><body>
		<h1>Allergy Season Arrives Early</h1>
		<div class="article-content">
			<script>window.trackingId = "abc123";</script>
			<style>.banner { display: none; }</style>
			<div>` + longParagraph + `</div>
		</div>
	</body></html>`

	article, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	require.NoError(t, err)
	assert.NotContains(t, article.Content, "trackingId")
	assert.NotContains(t, article.Content, "display: none")
	assert.Contains(t, article.Content, "cardiovascular outcomes")
}

func TestExtractor_OptionalFieldsDegradeToEmpty(t *testing.T) {
	html := `<html><body>
		<h1>Measles Outbreak Contained</h1>
		<article><p>` + longParagraph + `</p></article>
	</body></html>`

	article, err := NewExtractor(testRules).Extract(parseHTML(t, html), "https://example.com/articles/x")
	require.NoError(t, err)
	assert.Empty(t, article.Author)
	assert.Empty(t, article.Summary)
	assert.Empty(t, article.Category)
	assert.Nil(t, article.PublishedAt)
}

func TestExtractor_DateTextLayouts(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"2025-03-14", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"March 14, 2025", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"Mar 14, 2025", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"14 March 2025", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
		{"14 Mar 2025", time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := parseDateText(tt.text)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
		})
	}

	assert.Nil(t, parseDateText("last Tuesday"))
}
