package interfaces

import "context"

// SummarizeOptions tune a single summarization request
type SummarizeOptions struct {
	Style     string // concise | detailed | bullet_points
	Focus     string // Optional aspect to emphasize
	MaxLength int    // Target maximum words, 0 for default
	MinLength int    // Target minimum words, 0 for default
}

// SummarizerService generates article summaries via the Claude API
type SummarizerService interface {
	// Summarize produces a summary for the given content. Content below
	// the minimum usable length fails without an API call.
	Summarize(ctx context.Context, content string, opts *SummarizeOptions) (string, error)

	// IsConfigured reports whether an API key is available
	IsConfigured() bool
}
