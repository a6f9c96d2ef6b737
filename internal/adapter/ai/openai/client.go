// Package openai talks to OpenAI-compatible chat-completion and audio
// transcription endpoints.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fairyhunter13/ai-interview-simulator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

// ProviderName labels metrics, logs and errors produced by this package.
const ProviderName = "openai"

const maxResponseBytes = 4 << 20

// Client implements domain.ChatClient and domain.SpeechToText.
type Client struct {
	cfg     config.Config
	baseURL string
	hc      *http.Client
}

// New constructs a client. Requests are traced through an otelhttp transport.
func New(cfg config.Config) *Client {
	timeout := cfg.AIRequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Provider implements domain.ChatClient.
func (c *Client) Provider() string { return ProviderName }

func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.code, e.body)
}

// post sends body to path with retries: 429 and 5xx are retried, other 4xx
// are permanent. The returned error is always a *domain.ProviderError.
func (c *Client) post(ctx context.Context, op, path, apiKey, contentType string, body []byte) ([]byte, error) {
	endpoint := c.baseURL + path
	var payload []byte
	attempt := func() error {
		start := time.Now()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Content-Type", contentType)
		resp, err := c.hc.Do(req)
		observability.AIRequestsTotal.WithLabelValues(ProviderName, op).Inc()
		observability.AIRequestDuration.WithLabelValues(ProviderName, op).Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return err
		}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			slog.Warn("ai provider rate limited", slog.String("provider", ProviderName), slog.String("op", op),
				slog.String("x_request_id", resp.Header.Get("X-Request-Id")))
			return &statusError{code: resp.StatusCode, body: snippet(b)}
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			slog.Warn("ai provider 4xx", slog.String("provider", ProviderName), slog.String("op", op),
				slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", snippet(b)))
			return backoff.Permanent(&statusError{code: resp.StatusCode, body: snippet(b)})
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			slog.Error("ai provider non-2xx", slog.String("provider", ProviderName), slog.String("op", op),
				slog.Int("status", resp.StatusCode), slog.String("endpoint", endpoint), slog.String("body", snippet(b)))
			return &statusError{code: resp.StatusCode, body: snippet(b)}
		}
		payload = b
		return nil
	}

	if err := backoff.Retry(attempt, backoff.WithContext(c.getBackoffConfig(), ctx)); err != nil {
		return nil, classify(err)
	}
	return payload, nil
}

func classify(err error) error {
	var se *statusError
	if errors.As(err, &se) {
		kind := domain.FailureStatus
		if se.code == http.StatusTooManyRequests {
			kind = domain.FailureRateLimited
		}
		pe := domain.NewProviderError(ProviderName, kind, err)
		pe.StatusCode = se.code
		return pe
	}
	return domain.NewProviderError(ProviderName, domain.FailureNetwork, err)
}

func snippet(b []byte) string {
	if len(b) > 512 {
		b = b[:512]
	}
	return string(b)
}
