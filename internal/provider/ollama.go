package provider

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/HexSleeves/prep/internal/refine"
)

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format"`
}

func newOllamaChatRequest(model string, req refine.Request) ollamaChatRequest {
	return ollamaChatRequest{
		Model: model,
		Messages: []ollamaMessage{
			{Role: "system", Content: refine.SystemPrompt},
			{Role: "user", Content: refine.BuildUserMessage(req)},
		},
		Stream: false,
		Format: "json",
	}
}

// parseOllamaChat pulls message.content out of an /api/chat envelope and
// validates it against the response contract.
func parseOllamaChat(body []byte) (*refine.Response, error) {
	content := gjson.GetBytes(body, "message.content")
	if !content.Exists() || content.Type != gjson.String {
		return nil, &refine.ParseError{Raw: string(body), Err: errors.New("response envelope has no message.content")}
	}
	return refine.ParseResponse(content.String())
}

// OllamaLocal talks to a local Ollama server. It sends no credential.
type OllamaLocal struct {
	model  string
	caller *jsonCaller
}

func NewOllamaLocal(endpoint, model string, client *http.Client) *OllamaLocal {
	return &OllamaLocal{
		model: model,
		caller: &jsonCaller{
			name:        "Ollama",
			endpoint:    endpoint,
			connectHint: "Is Ollama running? Try: ollama serve",
			client:      client,
		},
	}
}

func (p *OllamaLocal) Name() string  { return "Ollama" }
func (p *OllamaLocal) Model() string { return p.model }

func (p *OllamaLocal) Refine(ctx context.Context, req refine.Request) (*refine.Response, error) {
	body, err := p.caller.post(ctx, "/api/chat", nil, newOllamaChatRequest(p.model, req))
	if err != nil {
		return nil, err
	}
	return parseOllamaChat(body)
}
