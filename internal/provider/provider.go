// Package provider adapts the generic refine operation to concrete LLM
// backends. Each backend gets its own Provider implementation; they share
// nothing beyond the interface and a few transport helpers.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/HexSleeves/prep/internal/refine"
)

// Timeout bounds every outbound call.
const Timeout = 300 * time.Second

// Provider is the capability every backend adapter implements.
type Provider interface {
	// Name returns the display label, e.g. "OpenAI".
	Name() string
	// Model returns the model the provider was built with.
	Model() string
	// Refine performs exactly one outbound call and validates the result
	// against the response contract.
	Refine(ctx context.Context, req refine.Request) (*refine.Response, error)
}

// Kind identifies a backend.
type Kind string

const (
	KindOllama      Kind = "ollama"
	KindOllamaCloud Kind = "ollama-cloud"
	KindOpenAI      Kind = "openai"
	KindAnthropic   Kind = "anthropic"
)

type kindInfo struct {
	display  string
	endpoint string
	model    string
	envVar   string // credential source; empty when no credential is used
}

var kinds = map[Kind]kindInfo{
	KindOllama:      {display: "Ollama", endpoint: "http://localhost:11434", model: "llama3.2"},
	KindOllamaCloud: {display: "Ollama Cloud", endpoint: "https://api.ollama.com", model: "llama3.2", envVar: "OLLAMA_API_KEY"},
	KindOpenAI:      {display: "OpenAI", endpoint: "https://api.openai.com/v1", model: "gpt-4o", envVar: "OPENAI_API_KEY"},
	KindAnthropic:   {display: "Anthropic", endpoint: "https://api.anthropic.com/v1", model: "claude-sonnet-4-20250514", envVar: "ANTHROPIC_API_KEY"},
}

// ParseKind resolves a provider name or one of its aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ollama", "ollama-local", "local":
		return KindOllama, nil
	case "ollama-cloud", "cloud":
		return KindOllamaCloud, nil
	case "openai", "gpt":
		return KindOpenAI, nil
	case "anthropic", "claude":
		return KindAnthropic, nil
	case "":
		return "", fmt.Errorf("no provider configured (set default.provider or use --provider)")
	default:
		return "", fmt.Errorf("unknown provider: %q", s)
	}
}

// Kinds lists every known backend in name order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DisplayName returns the human label for k.
func (k Kind) DisplayName() string {
	if info, ok := kinds[k]; ok {
		return info.display
	}
	return string(k)
}

// DefaultEndpoint returns the endpoint used when none is configured.
func (k Kind) DefaultEndpoint() string { return kinds[k].endpoint }

// DefaultModel returns the model used when none is configured.
func (k Kind) DefaultModel() string { return kinds[k].model }

// CredentialEnv names the environment variable holding the API key, or ""
// when the backend takes no credential.
func (k Kind) CredentialEnv() string { return kinds[k].envVar }

// RequiresCredential reports whether an API key is mandatory.
func (k Kind) RequiresCredential() bool { return kinds[k].envVar != "" }

// Identity is a fully resolved backend selection.
type Identity struct {
	Kind     Kind
	Endpoint string
	Model    string
	APIKey   string
}

// Option customises provider construction.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the default HTTP client, whose timeout is Timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New builds the Provider for id. A hosted backend without an API key
// fails with *refine.MissingCredentialError before anything is sent.
func New(id Identity, opts ...Option) (Provider, error) {
	info, ok := kinds[id.Kind]
	if !ok {
		if id.Kind == "" {
			return nil, fmt.Errorf("no provider configured (set default.provider or use --provider)")
		}
		return nil, fmt.Errorf("unknown provider: %q", id.Kind)
	}
	if info.envVar != "" && id.APIKey == "" {
		return nil, &refine.MissingCredentialError{Provider: info.display, EnvVar: info.envVar}
	}

	if id.Endpoint == "" {
		id.Endpoint = info.endpoint
	}
	id.Endpoint = strings.TrimRight(id.Endpoint, "/")
	if id.Model == "" {
		id.Model = info.model
	}

	o := options{httpClient: &http.Client{Timeout: Timeout}}
	for _, opt := range opts {
		opt(&o)
	}

	switch id.Kind {
	case KindOllama:
		return NewOllamaLocal(id.Endpoint, id.Model, o.httpClient), nil
	case KindOllamaCloud:
		return NewOllamaCloud(id.Endpoint, id.Model, id.APIKey, o.httpClient), nil
	case KindOpenAI:
		return NewOpenAI(id.Endpoint, id.Model, id.APIKey, o.httpClient), nil
	default:
		return NewAnthropic(id.Endpoint, id.Model, id.APIKey, o.httpClient), nil
	}
}
