package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Veraticus/sift/internal/common"
)

// Reason classifies why a provider call failed.
type Reason string

// Failure reasons.
const (
	ReasonAuthMissing       Reason = "AuthMissing"
	ReasonRateLimited       Reason = "RateLimited"
	ReasonTimeout           Reason = "Timeout"
	ReasonMalformedResponse Reason = "MalformedResponse"
	ReasonNetworkError      Reason = "NetworkError"
)

// ProviderError is returned by every Provider on failure.
type ProviderError struct {
	Err        error
	Provider   string
	Reason     Reason
	StatusCode int
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets rate-limit failures match common.ErrRateLimit.
func (e *ProviderError) Is(target error) bool {
	return target == common.ErrRateLimit && e.Reason == ReasonRateLimited
}

// ReasonOf extracts the failure reason from err, or "" if err is not a
// ProviderError.
func ReasonOf(err error) Reason {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}

// NewProviderError builds a ProviderError without an HTTP status.
func NewProviderError(provider string, reason Reason, err error) *ProviderError {
	return &ProviderError{Provider: provider, Reason: reason, Err: err}
}

// statusError maps a non-200 HTTP status into a ProviderError.
func statusError(provider string, status int, body string) *ProviderError {
	reason := ReasonNetworkError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		reason = ReasonAuthMissing
	case status == http.StatusTooManyRequests:
		reason = ReasonRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		reason = ReasonTimeout
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return &ProviderError{
		Provider:   provider,
		Reason:     reason,
		StatusCode: status,
		Err:        fmt.Errorf("unexpected status: %s", body),
	}
}

// transportError maps a failed round trip into a ProviderError.
func transportError(provider string, err error) *ProviderError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewProviderError(provider, ReasonTimeout, err)
	}
	return NewProviderError(provider, ReasonNetworkError, err)
}
