package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/HexSleeves/prep/internal/refine"
)

const anthropicMaxTokens = 4096

// Anthropic uses the Messages API. Claude has no JSON output mode, so the
// system prompt demands raw JSON and any code fence is stripped anyway.
type Anthropic struct {
	endpoint string
	model    string
	timeout  time.Duration
	client   *anthropic.Client
}

func NewAnthropic(endpoint, model, apiKey string, httpClient *http.Client) *Anthropic {
	c := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(anthropicBaseURL(endpoint)),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	)
	return &Anthropic{
		endpoint: endpoint,
		model:    model,
		timeout:  httpClient.Timeout,
		client:   &c,
	}
}

// anthropicBaseURL turns a configured ".../v1" endpoint into the SDK base
// URL, which already prefixes request paths with "v1/".
func anthropicBaseURL(endpoint string) string {
	base := strings.TrimSuffix(strings.TrimRight(endpoint, "/"), "/v1")
	return base + "/"
}

func (p *Anthropic) Name() string  { return "Anthropic" }
func (p *Anthropic) Model() string { return p.model }

func (p *Anthropic) Refine(ctx context.Context, req refine.Request) (*refine.Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: anthropicMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: refine.SystemPrompt + refine.StrictJSONSuffix}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(refine.BuildUserMessage(req))),
		},
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.mapError(err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	text := out.String()
	if text == "" {
		return nil, &refine.ParseError{Err: errors.New("no text content in Anthropic response")}
	}
	return parseFenced(text)
}

// parseFenced validates fenced model output while keeping the untouched
// text in any contract error.
func parseFenced(text string) (*refine.Response, error) {
	resp, err := refine.ParseResponse(stripCodeFence(text))
	if err != nil {
		var pe *refine.ParseError
		if errors.As(err, &pe) {
			pe.Raw = text
		}
		var ee *refine.EmptyResultError
		if errors.As(err, &ee) {
			ee.Raw = text
		}
		return nil, err
	}
	return resp, nil
}

func (p *Anthropic) mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError(p.Name(), KindAnthropic.CredentialEnv(), apiErr.StatusCode, apiErr.Error())
	}
	return classifyTransportError(p.Name(), p.endpoint, "", p.timeout, err)
}
