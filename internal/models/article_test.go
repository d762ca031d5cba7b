package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticle_Validate(t *testing.T) {
	valid := Article{
		Title:            "New Study Links Sleep to Recovery",
		Content:          "Researchers found that sleep quality strongly predicts recovery outcomes.",
		URL:              "https://www.medicalnewstoday.com/articles/sleep-recovery",
		Source:           "Medical News Today",
		CredibilityScore: 8.5,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(a *Article)
	}{
		{"missing title", func(a *Article) { a.Title = "   " }},
		{"missing content", func(a *Article) { a.Content = "" }},
		{"missing url", func(a *Article) { a.URL = "" }},
		{"credibility too high", func(a *Article) { a.CredibilityScore = 10.5 }},
		{"credibility negative", func(a *Article) { a.CredibilityScore = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}
