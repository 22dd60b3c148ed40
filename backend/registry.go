package backend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Provider IDs accepted by --backend and the config file.
const (
	ProviderGoogle       = "google"
	ProviderOpenAI       = "openai"
	ProviderGroq         = "groq"
	ProviderOllama       = "ollama"
	ProviderCustomOpenAI = "custom-openai"
	ProviderGemini       = "gemini"
	ProviderPassthrough  = "passthrough"
)

// Provider holds the static description of a translation service.
type Provider struct {
	// ID is the provider identifier (google, openai, groq, ...).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL. Empty means the library default.
	BaseURL string
	// Model is the default model identifier for LLM providers.
	Model string
	// NeedsKey reports whether the provider refuses to run without an API key.
	NeedsKey bool
	// Timeout is the default request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google Translate",
			BaseURL: googleWebURL,
			Timeout: 30 * time.Second,
		},
		ProviderOpenAI: {
			ID:       ProviderOpenAI,
			Name:     "OpenAI",
			Model:    openai.GPT4oMini,
			NeedsKey: true,
			Timeout:  60 * time.Second,
		},
		ProviderGroq: {
			ID:       ProviderGroq,
			Name:     "Groq",
			BaseURL:  "https://api.groq.com/openai/v1",
			Model:    "llama-3.3-70b-versatile",
			NeedsKey: true,
			Timeout:  60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.2",
			Timeout: 120 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
		ProviderGemini: {
			ID:       ProviderGemini,
			Name:     "Google Gemini",
			Model:    "gemini-2.0-flash",
			NeedsKey: true,
			Timeout:  120 * time.Second,
		},
		ProviderPassthrough: {
			ID:   ProviderPassthrough,
			Name: "Passthrough (no translation)",
		},
	}
}

// IDs returns the known provider IDs in sorted order.
func IDs() []string {
	providers := DefaultProviders()
	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Config selects and parameterizes a backend. Zero values fall back to the
// provider defaults.
type Config struct {
	ID      string
	APIKey  string
	Model   string
	BaseURL string
	Proxy   string
	Timeout time.Duration
	Breaker BreakerSettings
}

// Resolve merges cfg over the provider defaults and validates the result.
func Resolve(cfg Config) (Provider, Config, error) {
	if cfg.ID == "" {
		cfg.ID = ProviderGoogle
	}
	prov, ok := DefaultProviders()[cfg.ID]
	if !ok {
		return Provider{}, cfg, fmt.Errorf("unknown backend %q (available: %v)", cfg.ID, IDs())
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = prov.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = prov.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = prov.Timeout
	}

	if cfg.Proxy != "" {
		if _, err := ParseProxy(cfg.Proxy); err != nil {
			return prov, cfg, err
		}
	}
	if prov.NeedsKey && cfg.APIKey == "" {
		return prov, cfg, fmt.Errorf("backend %q requires an API key (--api-key, YAMLTR_API_KEY or 'yamltr auth set')", cfg.ID)
	}
	if cfg.ID == ProviderCustomOpenAI {
		if cfg.BaseURL == "" {
			return prov, cfg, fmt.Errorf("backend %q requires --base-url", cfg.ID)
		}
		if cfg.Model == "" {
			return prov, cfg, fmt.Errorf("backend %q requires --model", cfg.ID)
		}
	}
	return prov, cfg, nil
}

// New creates the backend selected by cfg. When cfg.Breaker is enabled the
// backend is wrapped in a circuit breaker.
func New(ctx context.Context, cfg Config) (Backend, error) {
	_, cfg, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	var b Backend
	switch cfg.ID {
	case ProviderGoogle:
		b, err = newGoogle(cfg)
	case ProviderOpenAI, ProviderGroq, ProviderOllama, ProviderCustomOpenAI:
		b, err = newOpenAI(cfg)
	case ProviderGemini:
		b, err = newGemini(ctx, cfg)
	case ProviderPassthrough:
		b = Passthrough{}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.ID)
	}

	if err != nil {
		return nil, err
	}

	if cfg.Breaker.Enabled {
		b = WithBreaker(b, cfg.Breaker)
	}
	return b, nil
}
