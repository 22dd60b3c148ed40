package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// openAIChat serves every OpenAI-compatible chat completions API: OpenAI
// itself, Groq, Ollama and custom endpoints.
type openAIChat struct {
	id     string
	model  string
	client *openai.Client
}

func newOpenAI(cfg Config) (*openAIChat, error) {
	hc, err := makeHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = hc

	return &openAIChat{
		id:     cfg.ID,
		model:  cfg.Model,
		client: openai.NewClientWithConfig(oc),
	}, nil
}

func (o *openAIChat) Name() string {
	return o.id
}

func (o *openAIChat) Translate(ctx context.Context, text, source, target string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: resolvePrompt(source, target),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.3,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", wrap(o.id, fmt.Errorf("API returned status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return "", wrap(o.id, fmt.Errorf("API request failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", wrap(o.id, errors.New("no translation returned"))
	}

	out := cleanCompletion(resp.Choices[0].Message.Content)
	if out == "" {
		return "", wrap(o.id, errors.New("empty translation returned"))
	}
	return out, nil
}
