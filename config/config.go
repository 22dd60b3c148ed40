// Package config loads the yamltr run configuration.
//
// Settings come from a YAML file (protected_keys.yml by default) and from
// YAMLTR_* environment variables, which take precedence over the file:
//
//	protected_keys: [name, id]
//	protected_match: key
//	backend: google
//	breaker:
//	  enabled: true
//
// A missing file is not an error; defaults plus environment apply.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/minios-linux/yamltr/backend"
	"github.com/minios-linux/yamltr/translate"
)

// FileName is the default config file name, looked up in the working directory.
const FileName = "protected_keys.yml"

// EnvPrefix is the prefix of environment variables overriding file settings.
const EnvPrefix = "YAMLTR"

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// Breaker configures the optional circuit breaker around the backend.
type Breaker struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// Config is the configuration of a single run. It is loaded once and passed
// down explicitly.
type Config struct {
	// ProtectedKeys lists keys (or dotted paths) whose values are never translated.
	ProtectedKeys []string `mapstructure:"protected_keys"`
	// ProtectedMatch is "key" (nearest key) or "path" (dotted path prefix).
	ProtectedMatch string `mapstructure:"protected_match"`
	// Backend is the translation provider ID.
	Backend string `mapstructure:"backend"`
	// APIKey authenticates against the backend.
	APIKey string `mapstructure:"api_key"`
	// Model overrides the provider's default model.
	Model string `mapstructure:"model"`
	// BaseURL overrides the provider's API endpoint.
	BaseURL string `mapstructure:"base_url"`
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string `mapstructure:"proxy"`
	// Timeout is the per-request timeout (0 = provider default).
	Timeout time.Duration `mapstructure:"timeout"`
	// Indent is the number of spaces per level in the output file.
	Indent int `mapstructure:"indent"`
	// Breaker configures the circuit breaker.
	Breaker Breaker `mapstructure:"breaker"`

	// Source is the config file that was read, empty when none was.
	Source string `mapstructure:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	def := backend.DefaultBreakerSettings()
	return &Config{
		ProtectedKeys:  []string{},
		ProtectedMatch: string(translate.MatchKey),
		Backend:        backend.ProviderGoogle,
		Indent:         2,
		Breaker: Breaker{
			MaxFailures: def.MaxFailures,
			OpenTimeout: def.OpenTimeout,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("protected_keys", d.ProtectedKeys)
	v.SetDefault("protected_match", d.ProtectedMatch)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("model", d.Model)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("proxy", d.Proxy)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("indent", d.Indent)
	v.SetDefault("breaker.enabled", d.Breaker.Enabled)
	v.SetDefault("breaker.max_failures", d.Breaker.MaxFailures)
	v.SetDefault("breaker.open_timeout", d.Breaker.OpenTimeout)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the config file at path (FileName when empty), applies
// environment overrides and validates the result. A missing file yields the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FileName
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	source := path
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		source = ""
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		if source == "" {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load that never fails: a malformed or invalid config is
// logged as a warning and the built-in defaults are used instead.
func LoadOrDefault(path string, log *slog.Logger) *Config {
	cfg, err := Load(path)
	if err != nil {
		if log != nil {
			log.Warn("Config file ignored, using defaults", "error", err)
		}
		return Default()
	}
	return cfg
}

// Validate checks field values and normalizes protected keys.
func (c *Config) Validate() error {
	if _, err := translate.ParseMatchMode(c.ProtectedMatch); err != nil {
		return err
	}
	if _, ok := backend.DefaultProviders()[c.Backend]; !ok {
		return fmt.Errorf("unknown backend %q (available: %s)", c.Backend, strings.Join(backend.IDs(), ", "))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", c.Timeout)
	}
	if c.Indent < 0 || c.Indent > 9 {
		return fmt.Errorf("indent must be between 0 (default) and 9, got %d", c.Indent)
	}
	if c.Proxy != "" {
		if _, err := backend.ParseProxy(c.Proxy); err != nil {
			return err
		}
	}
	if c.Breaker.OpenTimeout < 0 {
		return fmt.Errorf("breaker.open_timeout must not be negative, got %v", c.Breaker.OpenTimeout)
	}

	keys := c.ProtectedKeys[:0]
	for _, k := range c.ProtectedKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	c.ProtectedKeys = keys
	return nil
}

// ---------------------------------------------------------------------------
// Derived values
// ---------------------------------------------------------------------------

// Protector builds the protected key matcher for this config.
func (c *Config) Protector() *translate.Protector {
	mode, err := translate.ParseMatchMode(c.ProtectedMatch)
	if err != nil {
		mode = translate.MatchKey
	}
	return translate.NewProtector(c.ProtectedKeys, mode)
}

// BackendConfig returns the backend settings for this config.
func (c *Config) BackendConfig() backend.Config {
	return backend.Config{
		ID:      c.Backend,
		APIKey:  c.APIKey,
		Model:   c.Model,
		BaseURL: c.BaseURL,
		Proxy:   c.Proxy,
		Timeout: c.Timeout,
		Breaker: backend.BreakerSettings{
			Enabled:     c.Breaker.Enabled,
			MaxFailures: c.Breaker.MaxFailures,
			OpenTimeout: c.Breaker.OpenTimeout,
		},
	}
}
