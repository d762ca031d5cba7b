package badger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
	"github.com/ternarybob/medwire/internal/models"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()
	mgr, err := NewManager(arbor.NewLogger(), &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "medwire-test"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func testArticle(url string) *models.Article {
	return &models.Article{
		Title:            "Trial Shows Promise for New Migraine Drug",
		Content:          "A phase three trial of the drug reported a significant reduction in monthly migraine days compared with placebo.",
		Source:           "Medical News Today",
		URL:              url,
		CredibilityScore: 8.5,
	}
}

func TestArticleStorage_SaveAndGet(t *testing.T) {
	storage := newTestManager(t).ArticleStorage()

	article := testArticle("https://example.com/articles/migraine-drug")
	stored, created, err := storage.SaveArticle(article)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	got, err := storage.GetArticle(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Title, got.Title)

	byURL, err := storage.GetArticleByURL(article.URL)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, byURL.ID)
}

func TestArticleStorage_SaveIsIdempotentByURL(t *testing.T) {
	storage := newTestManager(t).ArticleStorage()

	first, created, err := storage.SaveArticle(testArticle("https://example.com/articles/dup"))
	require.NoError(t, err)
	require.True(t, created)

	duplicate := testArticle("https://example.com/articles/dup")
	duplicate.Title = "A Different Title Entirely"
	second, created, err := storage.SaveArticle(duplicate)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Title, second.Title, "existing record wins")

	count, err := storage.CountArticles()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestArticleStorage_SaveRejectsInvalid(t *testing.T) {
	storage := newTestManager(t).ArticleStorage()

	bad := testArticle("https://example.com/articles/bad")
	bad.Content = ""
	_, _, err := storage.SaveArticle(bad)
	assert.Error(t, err)
}

func TestArticleStorage_ListWithFilters(t *testing.T) {
	storage := newTestManager(t).ArticleStorage()

	a := testArticle("https://example.com/articles/a")
	a.Source = "Healthline"
	a.Summary = "Already summarized."
	b := testArticle("https://example.com/articles/b")
	c := testArticle("https://example.com/articles/c")
	c.CredibilityScore = 5.0

	for _, art := range []*models.Article{a, b, c} {
		_, _, err := storage.SaveArticle(art)
		require.NoError(t, err)
	}

	bySource, err := storage.ListArticles(&models.ArticleFilter{Source: "Healthline"})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "https://example.com/articles/a", bySource[0].URL)

	credible, err := storage.ListArticles(&models.ArticleFilter{MinCredibility: 8.0})
	require.NoError(t, err)
	assert.Len(t, credible, 2)

	unsummarized, err := storage.ListArticles(&models.ArticleFilter{MissingSummary: true})
	require.NoError(t, err)
	assert.Len(t, unsummarized, 2)

	limited, err := storage.ListArticles(&models.ArticleFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestArticleStorage_SearchStaysInsideOtherFilters(t *testing.T) {
	storage := newTestManager(t).ArticleStorage()

	mnt := testArticle("https://example.com/articles/mnt-diabetes")
	mnt.Title = "Diabetes Drug Passes Late-Stage Trial"
	mnt.Content = "The diabetes treatment lowered average blood glucose over twelve weeks of follow-up in adults."
	hl := testArticle("https://example.com/articles/hl-diabetes")
	hl.Source = "Healthline"
	hl.Title = "Managing Blood Sugar Day to Day"
	hl.Content = "Practical diabetes management starts with consistent meal timing and regular glucose checks."
	other := testArticle("https://example.com/articles/mnt-migraine")

	for _, art := range []*models.Article{mnt, hl, other} {
		_, _, err := storage.SaveArticle(art)
		require.NoError(t, err)
	}

	// Content matches in other sources must not leak through a source filter
	results, err := storage.ListArticles(&models.ArticleFilter{
		Source: "Medical News Today",
		Search: "diabetes",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/articles/mnt-diabetes", results[0].URL)

	// Search alone still matches on either title or content
	results, err = storage.ListArticles(&models.ArticleFilter{Search: "diabetes"})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = storage.ListArticles(&models.ArticleFilter{Search: "glucose checks"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Healthline", results[0].Source)
}

func TestArticleStorage_UpdateAndDelete(t *testing.T) {
	storage := newTestManager(t).ArticleStorage()

	stored, _, err := storage.SaveArticle(testArticle("https://example.com/articles/upd"))
	require.NoError(t, err)

	stored.Summary = "Condensed view of the trial results."
	require.NoError(t, storage.UpdateArticle(stored))

	got, err := storage.GetArticle(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Condensed view of the trial results.", got.Summary)

	require.NoError(t, storage.DeleteArticle(stored.ID))
	_, err = storage.GetArticle(stored.ID)
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestTaskStorage_RoundTripWithResultPayload(t *testing.T) {
	storage := newTestManager(t).TaskStorage()

	task := models.NewTask("task_abc", "scrape", map[string]interface{}{"scraper_name": "healthline"})
	task.MarkStarted()
	task.MarkSuccess(&models.ScrapeResult{
		ScraperName: "healthline",
		Stats:       &models.ScrapeStats{TotalAttempted: 2, Successful: 2, FailedURLs: []string{}},
	})
	require.NoError(t, storage.SaveTask(task))

	got, err := storage.GetTask("task_abc")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusSuccess, got.Status)
	assert.Equal(t, "scrape", got.Name)
	assert.NotNil(t, got.Result)

	_, err = storage.GetTask("task_missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskStorage_ListNewestFirst(t *testing.T) {
	storage := newTestManager(t).TaskStorage()

	for _, id := range []string{"task_1", "task_2", "task_3"} {
		task := models.NewTask(id, "scrape", nil)
		task.MarkFailure("boom")
		require.NoError(t, storage.SaveTask(task))
	}

	tasks, err := storage.ListTasks(2)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "task_3", tasks[0].ID)
	assert.Equal(t, "task_2", tasks[1].ID)
}
