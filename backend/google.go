package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/minios-linux/yamltr/langmeta"
)

const (
	googleWebURL   = "https://translate.googleapis.com/translate_a/single"
	googleCloudURL = "https://translation.googleapis.com/language/translate/v2"

	// googleMaxChars is the longest text the web endpoint accepts per request.
	googleMaxChars = 5000
)

// google talks to Google Translate. Without an API key it uses the public
// web endpoint; with a key it uses the Cloud Translation v2 REST API.
type google struct {
	client   *http.Client
	apiKey   string
	endpoint string
}

func newGoogle(cfg Config) (*google, error) {
	endpoint := cfg.BaseURL
	if cfg.APIKey != "" && (endpoint == "" || endpoint == googleWebURL) {
		endpoint = googleCloudURL
	}
	if endpoint == "" {
		endpoint = googleWebURL
	}
	client, err := makeHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &google{
		client:   client,
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
	}, nil
}

func (g *google) Name() string {
	return ProviderGoogle
}

func (g *google) Translate(ctx context.Context, text, source, target string) (string, error) {
	if n := utf8.RuneCountInString(text); n > googleMaxChars {
		return "", wrap(g.Name(), fmt.Errorf("text is %d characters long, limit is %d", n, googleMaxChars))
	}
	if source == "" {
		source = langmeta.Auto
	}

	var (
		out string
		err error
	)
	if g.apiKey != "" {
		out, err = g.translateCloud(ctx, text, source, target)
	} else {
		out, err = g.translateWeb(ctx, text, source, target)
	}
	if err != nil {
		return "", wrap(g.Name(), err)
	}
	return out, nil
}

func (g *google) translateWeb(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	body, err := g.do(req)
	if err != nil {
		return "", err
	}
	return parseWebResponse(body)
}

// parseWebResponse extracts the translation from the web endpoint's nested
// array: [[["segment","source",...],["segment",...]],null,"en",...].
func parseWebResponse(body []byte) (string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(raw) == 0 {
		return "", errors.New("empty response")
	}
	segments, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected response: %s", truncate(string(body), 200))
	}

	var sb strings.Builder
	for _, s := range segments {
		seg, ok := s.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		if part, ok := seg[0].(string); ok {
			sb.WriteString(part)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translation in response: %s", truncate(string(body), 200))
	}
	return sb.String(), nil
}

func (g *google) translateCloud(ctx context.Context, text, source, target string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("target", target)
	form.Set("format", "text")
	if source != langmeta.Auto {
		form.Set("source", source)
	}

	endpoint := g.endpoint + "?key=" + url.QueryEscape(g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := g.do(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(resp.Data.Translations) == 0 {
		return "", errors.New("no translation in response")
	}
	return resp.Data.Translations[0].TranslatedText, nil
}

func (g *google) do(req *http.Request) ([]byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 500))
	}
	return body, nil
}
