package scraper

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"collapse spaces", "hello    world", "hello world"},
		{"collapse mixed whitespace", "hello\t\n  world", "hello world"},
		{"trim", "  hello world  ", "hello world"},
		{"nbsp between words", "a &nbsp; b", "a b"},
		{"amp", "research &amp; development", "research & development"},
		{"angle brackets", "&lt;b&gt;bold&lt;/b&gt;", "<b>bold</b>"},
		{"quotes", "&quot;quoted&quot; and &#39;single&#39;", "\"quoted\" and 'single'"},
		{"only whitespace", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestCleanText_NeverLeavesConsecutiveWhitespace(t *testing.T) {
	inputs := []string{
		"a &nbsp; b",
		"a&nbsp;&nbsp;b",
		"x \t &nbsp; \n y",
		"  &amp;  &amp;  ",
	}
	double := regexp.MustCompile(`\s\s`)
	for _, in := range inputs {
		out := CleanText(in)
		assert.False(t, double.MatchString(out), "consecutive whitespace in %q from %q", out, in)
	}
}
