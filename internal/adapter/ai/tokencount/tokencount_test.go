package tokencount

import (
	"errors"
	"testing"

	tiktoken "github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeModelName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"gpt-4":                           "gpt-4",
		"gpt-4o-mini":                     "gpt-4",
		"GPT-3.5-turbo-0125":              "gpt-3.5-turbo",
		"openai/gpt-3.5-turbo":            "gpt-3.5-turbo",
		"claude-sonnet-4-20250514":        "gpt-4",
		"meta-llama/llama-3.1-8b-instruct": "gpt-4",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeModelName(in), in)
	}
}

func TestEstimate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("abc"))
	assert.Equal(t, 2, Estimate("abcdefgh"))
}

func TestCalculateUsage_FallsBackWhenEncodingUnavailable(t *testing.T) {
	t.Parallel()

	c := NewCounter()
	c.load = func(string) (*tiktoken.Tiktoken, error) { return nil, errors.New("offline") }

	u := c.CalculateUsage("system prompt", "user prompt!", "{}", "gpt-4")
	assert.True(t, u.Estimated)
	assert.Equal(t, Estimate("system prompt")+Estimate("user prompt!"), u.PromptTokens)
	assert.Equal(t, 1, u.CompletionTokens)
	assert.Equal(t, u.PromptTokens+u.CompletionTokens, u.TotalTokens)
	assert.Equal(t, "gpt-4", u.Model)
}

func TestCounter_EncodingIsCachedPerModelFamily(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewCounter()
	c.load = func(string) (*tiktoken.Tiktoken, error) {
		calls++
		return nil, errors.New("offline")
	}
	_, _ = c.CountTokens("x", "gpt-4")
	_, _ = c.CountTokens("x", "gpt-4o")
	assert.Equal(t, 2, calls, "failed loads are not cached")
}
