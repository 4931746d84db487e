package refine

import (
	"fmt"
	"time"
)

// ConnectionError means the endpoint could not be reached at all.
type ConnectionError struct {
	Provider string
	Endpoint string
	Hint     string
	Err      error
}

func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("could not connect to %s at %s", e.Provider, e.Endpoint)
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError means the call exceeded its deadline.
type TimeoutError struct {
	Provider string
	Timeout  time.Duration
	Err      error
}

func (e *TimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("request to %s timed out after %s", e.Provider, e.Timeout)
	}
	return fmt.Sprintf("request to %s timed out", e.Provider)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// AuthError is a 401 from the backend. CredentialSource names where the
// credential is expected to come from.
type AuthError struct {
	Provider         string
	CredentialSource string
}

func (e *AuthError) Error() string {
	if e.CredentialSource == "" {
		return fmt.Sprintf("authentication failed for %s", e.Provider)
	}
	return fmt.Sprintf("authentication failed for %s; check your %s environment variable", e.Provider, e.CredentialSource)
}

// RateLimitError is a 429 from the backend.
type RateLimitError struct {
	Provider string
	Body     string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s; wait and try again", e.Provider)
}

// HTTPError covers every other failed call. StatusCode is 0 when the
// request never produced a response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("HTTP request to %s failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s returned error %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ParseError means the provider text did not match the response schema.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse refiner response as JSON: %v. Raw content:\n%s", e.Err, e.Raw)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmptyResultError means the provider answered with an empty refined_prompt.
type EmptyResultError struct {
	Raw string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("refiner returned an empty refined_prompt. Raw content:\n%s", e.Raw)
}

// MissingCredentialError is reported before any call when a hosted
// provider is selected without an API key.
type MissingCredentialError struct {
	Provider string
	EnvVar   string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s requires an API key. Set the %s environment variable or use --api-key", e.Provider, e.EnvVar)
}
