// Package tokencount estimates prompt and completion sizes of scoring calls
// with tiktoken-go so that token usage can be exported as metrics.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Usage is the token count of one chat call.
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Estimated        bool   `json:"estimated"`
}

// Counter caches encodings per normalised model name. Safe for concurrent use.
type Counter struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
	load      func(model string) (*tiktoken.Tiktoken, error)
}

// NewCounter creates a Counter backed by tiktoken.
func NewCounter() *Counter {
	return &Counter{
		encodings: make(map[string]*tiktoken.Tiktoken),
		load:      loadEncoding,
	}
}

func loadEncoding(model string) (*tiktoken.Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err == nil {
		return enc, nil
	}
	return tiktoken.GetEncoding("cl100k_base")
}

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	key := normalizeModelName(model)

	c.mu.RLock()
	enc, ok := c.encodings[key]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodings[key]; ok {
		return enc, nil
	}
	enc, err := c.load(key)
	if err != nil {
		return nil, err
	}
	c.encodings[key] = enc
	return enc, nil
}

// normalizeModelName maps provider model ids onto a tiktoken model. Only the
// GPT-3.5 family uses a different encoding; everything else, Claude included,
// is approximated with the GPT-4 one.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	if strings.Contains(model, "gpt-3.5") {
		return "gpt-3.5-turbo"
	}
	return "gpt-4"
}

// CountTokens counts the tokens of text.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountChatTokens counts a system+user prompt including per-message framing.
func (c *Counter) CountChatTokens(systemPrompt, userPrompt, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	const perMessage, replyPrimer = 4, 3
	n := replyPrimer
	for _, part := range []string{"system", systemPrompt, "user", userPrompt} {
		n += len(enc.Encode(part, nil, nil))
	}
	return n + 2*perMessage, nil
}

// CalculateUsage counts a whole call. When no encoding can be loaded (for
// example offline) it falls back to four characters per token.
func (c *Counter) CalculateUsage(systemPrompt, userPrompt, completion, model string) Usage {
	u := Usage{Model: model}
	prompt, err := c.CountChatTokens(systemPrompt, userPrompt, model)
	if err != nil {
		slog.Debug("token encoding unavailable, estimating", slog.String("model", model), slog.Any("error", err))
		u.Estimated = true
		prompt = Estimate(systemPrompt) + Estimate(userPrompt)
	}
	completionTokens, err := c.CountTokens(completion, model)
	if err != nil {
		u.Estimated = true
		completionTokens = Estimate(completion)
	}
	u.PromptTokens = prompt
	u.CompletionTokens = completionTokens
	u.TotalTokens = prompt + completionTokens
	return u
}

// Estimate is the character-based fallback.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// DefaultCounter is shared by the provider clients.
var DefaultCounter = NewCounter()
