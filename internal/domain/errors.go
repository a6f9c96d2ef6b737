package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrNoActiveSession     = errors.New("no active session")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamTimeout     = errors.New("upstream timeout")
	ErrUpstreamRateLimit   = errors.New("upstream rate limit")
	ErrSchemaInvalid       = errors.New("schema invalid")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrInternal            = errors.New("internal error")
)

// FailureKind classifies why a remote provider call did not produce a result.
type FailureKind string

const (
	FailureUnavailable FailureKind = "unavailable"
	FailureNetwork     FailureKind = "network"
	FailureStatus      FailureKind = "status"
	FailureMalformed   FailureKind = "malformed"
	FailureRateLimited FailureKind = "rate-limited"
	FailureCircuitOpen FailureKind = "circuit-open"
)

// ProviderError is returned by remote transcription and scoring providers.
// Callers decide whether to fall back; providers never do.
type ProviderError struct {
	Provider   string
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("provider=%s kind=%s", e.Provider, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" status=%d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	switch e.Kind {
	case FailureUnavailable, FailureCircuitOpen:
		return errors.Join(ErrProviderUnavailable, e.Err)
	case FailureMalformed:
		return errors.Join(ErrSchemaInvalid, e.Err)
	case FailureRateLimited:
		return errors.Join(ErrUpstreamRateLimit, e.Err)
	}
	return e.Err
}

// NewProviderError builds a ProviderError.
func NewProviderError(provider string, kind FailureKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// FailureKindOf extracts the failure kind from err, or "" when err is not a ProviderError.
func FailureKindOf(err error) FailureKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
