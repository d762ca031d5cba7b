package summarizer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
)

func newUnconfiguredService() *Service {
	return NewService(&common.ClaudeConfig{
		Model:         "claude-sonnet-4-20250514",
		Timeout:       "60s",
		MaxInputChars: 12000,
	}, arbor.NewLogger())
}

func TestSummarize_ContentTooShort(t *testing.T) {
	svc := newUnconfiguredService()

	_, err := svc.Summarize(context.Background(), "Brief note.", nil)
	require.Error(t, err)

	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.ErrorIs(t, err, ErrContentTooShort)
}

func TestSummarize_ShortAfterTrimming(t *testing.T) {
	svc := newUnconfiguredService()

	padded := "   " + strings.Repeat("x", minContentLength-1) + "   "
	_, err := svc.Summarize(context.Background(), padded, nil)
	assert.ErrorIs(t, err, ErrContentTooShort)
}

func TestSummarize_NoAPIKey(t *testing.T) {
	svc := newUnconfiguredService()
	assert.False(t, svc.IsConfigured())

	long := strings.Repeat("The study followed patients for a decade. ", 10)
	_, err := svc.Summarize(context.Background(), long, nil)
	require.Error(t, err)

	var sumErr *SummarizationError
	require.ErrorAs(t, err, &sumErr)
	assert.NotErrorIs(t, err, ErrContentTooShort)
}

func TestBuildPrompt_Styles(t *testing.T) {
	content := "Article body goes here."

	concise := buildPrompt(content, nil)
	assert.Contains(t, concise, "concise summary")
	assert.Contains(t, concise, "between 50 and 150 words")
	assert.Contains(t, concise, content)

	detailed := buildPrompt(content, &interfaces.SummarizeOptions{Style: "detailed"})
	assert.Contains(t, detailed, "detailed summary")

	bullets := buildPrompt(content, &interfaces.SummarizeOptions{Style: "bullet_points"})
	assert.Contains(t, bullets, "bullet points")
}

func TestBuildPrompt_FocusAndLengths(t *testing.T) {
	prompt := buildPrompt("Body.", &interfaces.SummarizeOptions{
		Focus:     "treatment side effects",
		MinLength: 30,
		MaxLength: 80,
	})
	assert.Contains(t, prompt, "Focus on treatment side effects.")
	assert.Contains(t, prompt, "between 30 and 80 words")
}
