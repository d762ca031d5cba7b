package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medwire/internal/common"
	"github.com/ternarybob/medwire/internal/interfaces"
)

// Content below this length carries too little signal to summarize and
// fails before any API call is made
const minContentLength = 100

// ErrContentTooShort is wrapped in the SummarizationError returned for
// inputs under the minimum usable length
var ErrContentTooShort = errors.New("content too short to summarize")

// SummarizationError reports a failed summarization request
type SummarizationError struct {
	Reason string
	Err    error
}

func (e *SummarizationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("summarization failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("summarization failed: %s", e.Reason)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// Service generates article summaries with the Claude Messages API
type Service struct {
	config *common.ClaudeConfig
	client *anthropic.Client
	logger arbor.ILogger
}

// NewService creates the summarizer. A missing API key is not an error
// here; summarization requests fail individually until one is set.
func NewService(config *common.ClaudeConfig, logger arbor.ILogger) *Service {
	svc := &Service{
		config: config,
		logger: logger,
	}

	if config.APIKey != "" {
		client := anthropic.NewClient(
			option.WithAPIKey(config.APIKey),
		)
		svc.client = &client

		logger.Debug().
			Str("model", config.Model).
			Int("max_tokens", config.MaxTokens).
			Int("max_input_chars", config.MaxInputChars).
			Msg("Claude summarizer initialized")
	} else {
		logger.Warn().Msg("No Claude API key configured, summarization is disabled")
	}

	return svc
}

// IsConfigured reports whether an API key is available
func (s *Service) IsConfigured() bool {
	return s.client != nil
}

// Summarize produces a summary for the given content
func (s *Service) Summarize(ctx context.Context, content string, opts *interfaces.SummarizeOptions) (string, error) {
	content = strings.TrimSpace(content)
	if len(content) < minContentLength {
		return "", &SummarizationError{
			Reason: fmt.Sprintf("content must be at least %d characters", minContentLength),
			Err:    ErrContentTooShort,
		}
	}

	if !s.IsConfigured() {
		return "", &SummarizationError{Reason: "no API key configured"}
	}

	if s.config.MaxInputChars > 0 && len(content) > s.config.MaxInputChars {
		content = content[:s.config.MaxInputChars] + "..."
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens()),
		System: []anthropic.TextBlockParam{
			{Text: "You are a medical news editor. You write accurate, plain-language summaries of medical and health articles without adding claims that are not in the source text."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(content, opts))),
		},
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}

	start := time.Now()
	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		s.logger.Error().Err(err).Msg("Claude API call failed")
		return "", &SummarizationError{Reason: "API call failed", Err: err}
	}

	var summary strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			summary.WriteString(block.Text)
		}
	}
	if summary.Len() == 0 {
		return "", &SummarizationError{Reason: "empty response from API"}
	}

	s.logger.Debug().
		Int("content_length", len(content)).
		Int("summary_length", summary.Len()).
		Dur("duration", time.Since(start)).
		Msg("Summary generated")

	return strings.TrimSpace(summary.String()), nil
}

func (s *Service) timeout() time.Duration {
	if d, err := time.ParseDuration(s.config.Timeout); err == nil && d > 0 {
		return d
	}
	return 60 * time.Second
}

func (s *Service) maxTokens() int {
	if s.config.MaxTokens > 0 {
		return s.config.MaxTokens
	}
	return 1024
}

// buildPrompt assembles the summarization instruction from options
func buildPrompt(content string, opts *interfaces.SummarizeOptions) string {
	if opts == nil {
		opts = &interfaces.SummarizeOptions{}
	}

	var b strings.Builder
	switch opts.Style {
	case "detailed":
		b.WriteString("Write a detailed summary of the following medical article, covering the key findings, methodology and implications.")
	case "bullet_points":
		b.WriteString("Summarize the following medical article as a list of bullet points covering its key findings.")
	default:
		b.WriteString("Write a concise summary of the following medical article.")
	}

	if opts.Focus != "" {
		fmt.Fprintf(&b, " Focus on %s.", opts.Focus)
	}

	minWords, maxWords := opts.MinLength, opts.MaxLength
	if maxWords <= 0 {
		maxWords = 150
	}
	if minWords <= 0 {
		minWords = 50
	}
	fmt.Fprintf(&b, " Keep the summary between %d and %d words.", minWords, maxWords)

	b.WriteString("\n\nArticle:\n")
	b.WriteString(content)
	return b.String()
}
