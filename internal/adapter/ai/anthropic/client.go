// Package anthropic scores answers through the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

// ProviderName labels metrics, logs and errors produced by this package.
const ProviderName = "anthropic"

// jsonOnly is appended to the system prompt; the Messages API has no JSON mode.
const jsonOnly = "Respond with a single JSON object and nothing else."

// Client implements domain.ChatClient.
type Client struct {
	model   string
	baseURL string
	hc      *http.Client
}

// New builds a client from config. Retries are left to the caller's fallback.
func New(cfg config.Config) *Client {
	timeout := cfg.AIRequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		model:   cfg.AnthropicModel,
		baseURL: cfg.AnthropicBaseURL,
		hc:      &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Provider implements domain.ChatClient.
func (c *Client) Provider() string { return ProviderName }

// ChatJSON implements domain.ChatClient.
func (c *Client) ChatJSON(ctx context.Context, apiKey, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if apiKey == "" {
		return "", domain.NewProviderError(ProviderName, domain.FailureUnavailable, errors.New("missing API key"))
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(c.hc),
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	client := sdk.NewClient(opts...)

	start := time.Now()
	msg, err := client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		System: []sdk.TextBlockParam{
			{Text: systemPrompt + "\n" + jsonOnly},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(userPrompt)),
		},
	})
	observability.AIRequestsTotal.WithLabelValues(ProviderName, "chat").Inc()
	observability.AIRequestDuration.WithLabelValues(ProviderName, "chat").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", classify(err)
	}

	observability.AITokensTotal.WithLabelValues(ProviderName, "prompt").Add(float64(msg.Usage.InputTokens))
	observability.AITokensTotal.WithLabelValues(ProviderName, "completion").Add(float64(msg.Usage.OutputTokens))

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", domain.NewProviderError(ProviderName, domain.FailureMalformed, errors.New("no text content in response"))
	}
	slog.Debug("anthropic message ok",
		slog.String("model", string(msg.Model)),
		slog.Int64("tokens_in", msg.Usage.InputTokens),
		slog.Int64("tokens_out", msg.Usage.OutputTokens))
	return b.String(), nil
}

func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		kind := domain.FailureStatus
		if apiErr.StatusCode == http.StatusTooManyRequests {
			kind = domain.FailureRateLimited
		}
		pe := domain.NewProviderError(ProviderName, kind, err)
		pe.StatusCode = apiErr.StatusCode
		return pe
	}
	return domain.NewProviderError(ProviderName, domain.FailureNetwork, err)
}
