package backend

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// gemini uses the Gemini API through the official genai SDK.
type gemini struct {
	model  string
	client *genai.Client
}

func newGemini(ctx context.Context, cfg Config) (*gemini, error) {
	hc, err := makeHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &gemini{model: cfg.Model, client: client}, nil
}

func (g *gemini) Name() string {
	return ProviderGemini
}

func (g *gemini) Translate(ctx context.Context, text, source, target string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(resolvePrompt(source, target), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.3),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), config)
	if err != nil {
		return "", wrap(g.Name(), fmt.Errorf("API request failed: %w", err))
	}

	out := cleanCompletion(resp.Text())
	if out == "" {
		return "", wrap(g.Name(), errors.New("empty translation returned"))
	}
	return out, nil
}
