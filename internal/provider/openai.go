package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	openaigo "github.com/sashabaranov/go-openai"

	"github.com/HexSleeves/prep/internal/refine"
)

// OpenAI uses the chat completions API in JSON object mode.
type OpenAI struct {
	endpoint string
	model    string
	timeout  time.Duration
	client   *openaigo.Client
}

func NewOpenAI(endpoint, model, apiKey string, httpClient *http.Client) *OpenAI {
	cfg := openaigo.DefaultConfig(apiKey)
	cfg.BaseURL = endpoint
	cfg.HTTPClient = httpClient
	return &OpenAI{
		endpoint: endpoint,
		model:    model,
		timeout:  httpClient.Timeout,
		client:   openaigo.NewClientWithConfig(cfg),
	}
}

func (p *OpenAI) Name() string  { return "OpenAI" }
func (p *OpenAI) Model() string { return p.model }

func (p *OpenAI) Refine(ctx context.Context, req refine.Request) (*refine.Response, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: p.model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: refine.SystemPrompt},
			{Role: openaigo.ChatMessageRoleUser, Content: refine.BuildUserMessage(req)},
		},
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, p.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &refine.ParseError{Err: errors.New("no choices in OpenAI response")}
	}
	return refine.ParseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAI) mapError(err error) error {
	env := KindOpenAI.CredentialEnv()

	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) {
		return statusError(p.Name(), env, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return statusError(p.Name(), env, reqErr.HTTPStatusCode, body)
	}
	return classifyTransportError(p.Name(), p.endpoint, "", p.timeout, err)
}
