package models

import (
	"fmt"
	"strings"
	"time"
)

// Article represents a scraped news article.
// URL is the identity key for persistence: creating an article whose URL
// already exists returns the stored record instead of a duplicate.
type Article struct {
	ID               string     `json:"id" badgerhold:"key"`
	Title            string     `json:"title"`
	Content          string     `json:"content"`
	Summary          string     `json:"summary,omitempty"`
	Author           string     `json:"author,omitempty"`
	Source           string     `json:"source"`
	URL              string     `json:"url" badgerhold:"unique"`
	PublishedAt      *time.Time `json:"published_at,omitempty"`
	Category         string     `json:"category,omitempty"`
	Tags             string     `json:"tags,omitempty"` // Comma-joined
	CredibilityScore float64    `json:"credibility_score,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Validate checks the fields required before persistence
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("article title is required")
	}
	if strings.TrimSpace(a.Content) == "" {
		return fmt.Errorf("article content is required")
	}
	if strings.TrimSpace(a.URL) == "" {
		return fmt.Errorf("article url is required")
	}
	if a.CredibilityScore < 0 || a.CredibilityScore > 10 {
		return fmt.Errorf("credibility score must be between 0 and 10, got %.2f", a.CredibilityScore)
	}
	return nil
}

// ArticleFilter contains list/query criteria for stored articles
type ArticleFilter struct {
	Source         string
	Category       string
	Author         string
	MinCredibility float64
	MissingSummary bool
	Search         string // Substring match against title and content
	Limit          int
	Offset         int
}
