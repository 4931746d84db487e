package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/HexSleeves/prep/internal/refine"
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 4096

// classifyTransportError maps a failure that produced no HTTP response.
func classifyTransportError(name, endpoint, hint string, timeout time.Duration, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &refine.TimeoutError{Provider: name, Timeout: timeout, Err: err}
	case isConnectError(err):
		return &refine.ConnectionError{Provider: name, Endpoint: endpoint, Hint: hint, Err: err}
	default:
		return &refine.HTTPError{Provider: name, Err: err}
	}
}

func isConnectError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// statusError maps a non-2xx response.
func statusError(name, credentialEnv string, status int, body string) error {
	switch status {
	case http.StatusUnauthorized:
		return &refine.AuthError{Provider: name, CredentialSource: credentialEnv}
	case http.StatusTooManyRequests:
		return &refine.RateLimitError{Provider: name, Body: body}
	default:
		return &refine.HTTPError{Provider: name, StatusCode: status, Body: body}
	}
}

// jsonCaller posts JSON envelopes to hand-rolled HTTP backends and turns
// every failure into the shared error taxonomy.
type jsonCaller struct {
	name          string
	endpoint      string
	credentialEnv string
	connectHint   string
	client        *http.Client
}

func (c *jsonCaller) post(ctx context.Context, path string, headers map[string]string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return nil, classifyTransportError(c.name, c.endpoint, c.connectHint, c.client.Timeout, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
		return nil, statusError(c.name, c.credentialEnv, response.StatusCode, string(body))
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, classifyTransportError(c.name, c.endpoint, c.connectHint, c.client.Timeout, err)
	}
	return body, nil
}
