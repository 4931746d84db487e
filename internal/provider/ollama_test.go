package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/HexSleeves/prep/internal/refine"
)

func ollamaEnvelope(t *testing.T, content string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"model":   "llama3.2",
		"message": map[string]string{"role": "assistant", "content": content},
		"done":    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestOllamaLocal_Refine(t *testing.T) {
	var got ollamaChatRequest
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, ollamaEnvelope(t, refinerJSON(t, "Build a landing page", false)))
	}))
	defer srv.Close()

	p := NewOllamaLocal(srv.URL, "llama3.2", srv.Client())
	resp, err := p.Refine(context.Background(), refine.Request{Prompt: "make a website", Context: "brand: acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.RefinedPrompt != "Build a landing page" {
		t.Errorf("refined=%q", resp.RefinedPrompt)
	}

	if got.Model != "llama3.2" || got.Stream || got.Format != "json" {
		t.Errorf("unexpected envelope: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Fatalf("messages=%+v", got.Messages)
	}
	if got.Messages[0].Content != refine.SystemPrompt {
		t.Error("system message should carry the shared system prompt")
	}
	if !strings.Contains(got.Messages[1].Content, "make a website") || !strings.HasPrefix(got.Messages[1].Content, "Context:\nbrand: acme") {
		t.Errorf("user message=%q", got.Messages[1].Content)
	}
	if authHeader != "" {
		t.Errorf("local ollama must not send a credential, got %q", authHeader)
	}
}

func TestOllamaCloud_SendsBearer(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		fmt.Fprint(w, ollamaEnvelope(t, refinerJSON(t, "X", false)))
	}))
	defer srv.Close()

	p := NewOllamaCloud(srv.URL, "llama3.2", "secret", srv.Client())
	if _, err := p.Refine(context.Background(), refine.Request{Prompt: "p"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authHeader != "Bearer secret" {
		t.Errorf("Authorization=%q", authHeader)
	}
}

func TestOllama_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, func(t *testing.T, err error) {
			var ae *refine.AuthError
			if !errors.As(err, &ae) {
				t.Fatalf("err=%v, want *AuthError", err)
			}
			if ae.CredentialSource != "OLLAMA_API_KEY" {
				t.Errorf("credential source=%q", ae.CredentialSource)
			}
		}},
		{"rate limited", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var re *refine.RateLimitError
			if !errors.As(err, &re) {
				t.Fatalf("err=%v, want *RateLimitError", err)
			}
		}},
		{"server error", http.StatusInternalServerError, func(t *testing.T, err error) {
			var he *refine.HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("err=%v, want *HTTPError", err)
			}
			if he.StatusCode != 500 || !strings.Contains(he.Body, "model not loaded") {
				t.Errorf("status=%d body=%q", he.StatusCode, he.Body)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":"model not loaded"}`)
			}))
			defer srv.Close()

			p := NewOllamaCloud(srv.URL, "m", "k", srv.Client())
			_, err := p.Refine(context.Background(), refine.Request{Prompt: "p"})
			tt.check(t, err)
		})
	}
}

func TestOllama_BadEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaLocal(srv.URL, "m", srv.Client())
	_, err := p.Refine(context.Background(), refine.Request{Prompt: "p"})
	var pe *refine.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err=%v, want *ParseError", err)
	}
	if pe.Raw != `{"done":true}` {
		t.Errorf("raw=%q", pe.Raw)
	}
}

func TestOllama_ContractViolations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Case") == "empty" {
			fmt.Fprint(w, ollamaEnvelope(t, `{"refined_prompt":""}`))
			return
		}
		fmt.Fprint(w, ollamaEnvelope(t, "I refined it for you!"))
	}))
	defer srv.Close()

	p := NewOllamaLocal(srv.URL, "m", srv.Client())
	_, err := p.Refine(context.Background(), refine.Request{Prompt: "p"})
	var pe *refine.ParseError
	if !errors.As(err, &pe) || pe.Raw != "I refined it for you!" {
		t.Errorf("err=%v, want *ParseError with raw text", err)
	}

	client := srv.Client()
	client.Transport = headerTransport{base: client.Transport, key: "X-Case", value: "empty"}
	p = NewOllamaLocal(srv.URL, "m", client)
	_, err = p.Refine(context.Background(), refine.Request{Prompt: "p"})
	var ee *refine.EmptyResultError
	if !errors.As(err, &ee) {
		t.Errorf("err=%v, want *EmptyResultError", err)
	}
}

func TestOllama_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	p := NewOllamaLocal(endpoint, "m", &http.Client{Timeout: 5 * time.Second})
	_, err := p.Refine(context.Background(), refine.Request{Prompt: "p"})
	var ce *refine.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("err=%v (%T), want *ConnectionError", err, err)
	}
	if ce.Endpoint != endpoint {
		t.Errorf("endpoint=%q, want %q", ce.Endpoint, endpoint)
	}
	if !strings.Contains(err.Error(), "ollama serve") {
		t.Errorf("expected local hint in %q", err.Error())
	}
}

func TestOllama_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewOllamaLocal(srv.URL, "m", &http.Client{Timeout: 50 * time.Millisecond})
	_, err := p.Refine(context.Background(), refine.Request{Prompt: "p"})
	var te *refine.TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("err=%v (%T), want *TimeoutError", err, err)
	}
}

type headerTransport struct {
	base       http.RoundTripper
	key, value string
}

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set(h.key, h.value)
	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}
