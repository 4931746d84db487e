package provider

import (
	"context"
	"net/http"

	"github.com/HexSleeves/prep/internal/refine"
)

// OllamaCloud talks to the hosted Ollama API with a bearer token.
type OllamaCloud struct {
	model  string
	apiKey string
	caller *jsonCaller
}

func NewOllamaCloud(endpoint, model, apiKey string, client *http.Client) *OllamaCloud {
	return &OllamaCloud{
		model:  model,
		apiKey: apiKey,
		caller: &jsonCaller{
			name:          "Ollama Cloud",
			endpoint:      endpoint,
			credentialEnv: KindOllamaCloud.CredentialEnv(),
			client:        client,
		},
	}
}

func (p *OllamaCloud) Name() string  { return "Ollama Cloud" }
func (p *OllamaCloud) Model() string { return p.model }

func (p *OllamaCloud) Refine(ctx context.Context, req refine.Request) (*refine.Response, error) {
	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	body, err := p.caller.post(ctx, "/api/chat", headers, newOllamaChatRequest(p.model, req))
	if err != nil {
		return nil, err
	}
	return parseOllamaChat(body)
}
