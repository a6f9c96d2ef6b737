package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-simulator/internal/config"
	"github.com/fairyhunter13/ai-interview-simulator/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.Config{AnthropicBaseURL: srv.URL + "/", AnthropicModel: "claude-test"})
}

func TestChatJSON_Success(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])
		assert.EqualValues(t, 512, body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "{\"confidence\": 80}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 6}
		}`)
	})

	out, err := c.ChatJSON(context.Background(), "sk-ant", "system", "user", 512)
	require.NoError(t, err)
	assert.Equal(t, `{"confidence": 80}`, out)
	assert.Equal(t, "anthropic", c.Provider())
}

func TestChatJSON_MissingKey(t *testing.T) {
	t.Parallel()

	c := New(config.Config{})
	_, err := c.ChatJSON(context.Background(), "", "s", "u", 10)
	assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
}

func TestChatJSON_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   domain.FailureKind
	}{
		{http.StatusUnauthorized, domain.FailureStatus},
		{http.StatusTooManyRequests, domain.FailureRateLimited},
		{http.StatusInternalServerError, domain.FailureStatus},
	}
	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"nope"}}`)
		})
		_, err := c.ChatJSON(context.Background(), "sk-ant", "s", "u", 10)
		require.Error(t, err)
		var pe *domain.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, tt.kind, pe.Kind, "status %d", tt.status)
		assert.Equal(t, tt.status, pe.StatusCode)
	}
}

func TestChatJSON_NoTextContent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"m","type":"message","role":"assistant","model":"x","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`)
	})
	_, err := c.ChatJSON(context.Background(), "sk-ant", "s", "u", 10)
	assert.Equal(t, domain.FailureMalformed, domain.FailureKindOf(err))
}
