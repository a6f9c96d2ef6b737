package openai

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatJSON requests a JSON object completion and returns the message content.
func (c *Client) ChatJSON(ctx context.Context, apiKey, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if apiKey == "" {
		return "", domain.NewProviderError(ProviderName, domain.FailureUnavailable, errors.New("missing API key"))
	}
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.ScoringModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    c.cfg.ScoringTemp,
		MaxTokens:      maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", domain.NewProviderError(ProviderName, domain.FailureNetwork, err)
	}

	raw, err := c.post(ctx, "chat", "/chat/completions", apiKey, "application/json", body)
	if err != nil {
		return "", err
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", domain.NewProviderError(ProviderName, domain.FailureMalformed, err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", domain.NewProviderError(ProviderName, domain.FailureMalformed, errors.New("empty choices"))
	}
	content := out.Choices[0].Message.Content

	usage := tokencount.DefaultCounter.CalculateUsage(systemPrompt, userPrompt, content, c.cfg.ScoringModel)
	observability.AITokensTotal.WithLabelValues(ProviderName, "prompt").Add(float64(usage.PromptTokens))
	observability.AITokensTotal.WithLabelValues(ProviderName, "completion").Add(float64(usage.CompletionTokens))
	slog.Debug("chat completion ok",
		slog.String("provider", ProviderName),
		slog.String("model", out.Model),
		slog.Int("total_tokens", usage.TotalTokens))
	return content, nil
}
