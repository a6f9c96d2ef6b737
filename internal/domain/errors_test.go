package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorConstants(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrInvalidArgument", ErrInvalidArgument, "invalid argument"},
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrConflict", ErrConflict, "conflict"},
		{"ErrInvalidTransition", ErrInvalidTransition, "invalid state transition"},
		{"ErrNoActiveSession", ErrNoActiveSession, "no active session"},
		{"ErrRateLimited", ErrRateLimited, "rate limited"},
		{"ErrUpstreamTimeout", ErrUpstreamTimeout, "upstream timeout"},
		{"ErrUpstreamRateLimit", ErrUpstreamRateLimit, "upstream rate limit"},
		{"ErrSchemaInvalid", ErrSchemaInvalid, "schema invalid"},
		{"ErrProviderUnavailable", ErrProviderUnavailable, "provider unavailable"},
		{"ErrInternal", ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Expected %s to be %q, got %q", tt.name, tt.expected, tt.err.Error())
			}
		})
	}
}

func TestProviderError_UnwrapsToSentinels(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")

	tests := []struct {
		kind     FailureKind
		sentinel error
	}{
		{FailureUnavailable, ErrProviderUnavailable},
		{FailureCircuitOpen, ErrProviderUnavailable},
		{FailureMalformed, ErrSchemaInvalid},
		{FailureRateLimited, ErrUpstreamRateLimit},
	}
	for _, tt := range tests {
		err := fmt.Errorf("op=test: %w", NewProviderError("openai", tt.kind, cause))
		assert.ErrorIs(t, err, tt.sentinel, string(tt.kind))
		assert.ErrorIs(t, err, cause, string(tt.kind))
		assert.Equal(t, tt.kind, FailureKindOf(err))
	}
}

func TestProviderError_Message(t *testing.T) {
	t.Parallel()
	pe := &ProviderError{Provider: "whisper", Kind: FailureStatus, StatusCode: 502, Err: errors.New("bad gateway")}
	assert.Equal(t, "provider=whisper kind=status status=502: bad gateway", pe.Error())
	assert.ErrorIs(t, pe, pe.Err)
	assert.Equal(t, FailureKind(""), FailureKindOf(errors.New("plain")))
}

func TestDifficultyRank(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, DifficultyJunior.Rank())
	assert.Equal(t, 3, DifficultyStaff.Rank())
	assert.Equal(t, -1, Difficulty("principal").Rank())
}

func TestCategoryIsTechnical(t *testing.T) {
	t.Parallel()
	assert.False(t, CategoryBehavioral.IsTechnical())
	for _, c := range []QuestionCategory{CategorySystemDesign, CategoryCodingConcepts, CategoryProblemSolving, CategoryArchitecture} {
		assert.True(t, c.IsTechnical(), string(c))
	}
}
