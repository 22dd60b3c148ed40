// Package settings provides storage for yamltr user settings, currently the
// backend credentials.
//
// Settings are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/yamltr/  (default: ~/.local/share/yamltr/)
//
// Files stored:
//   - auth.json: API keys and custom endpoints per backend
//
// The file is a JSON object keyed by backend ID:
//
//	{"openai": {"type": "api", "key": "sk-..."}}
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for API keys:
//  1. --api-key flag (highest priority)
//  2. YAMLTR_API_KEY environment variable or api_key in the config file
//  3. The backend's own environment variable (OPENAI_API_KEY, ...)
//  4. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	dataDirName = "yamltr"
	fileName    = "auth.json"
)

// ---------------------------------------------------------------------------
// Auth entries
// ---------------------------------------------------------------------------

// Info is the credential entry stored per backend in auth.json.
type Info struct {
	// Type is "api" for API key entries.
	Type string `json:"type"`
	// Key is the API key.
	Key string `json:"key,omitempty"`
	// BaseURL is a custom endpoint URL (custom-openai, self-hosted ollama).
	BaseURL string `json:"baseUrl,omitempty"`
}

// IsAPI returns true if this is an API key entry.
func (i *Info) IsAPI() bool {
	return i.Type == "api"
}

// Store holds all backend credentials, keyed by backend ID.
type Store map[string]*Info

// IDs returns the backend IDs present in the store, sorted.
func (s Store) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for yamltr.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the yamltr data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil || store == nil {
		return make(Store)
	}
	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the auth entry for a backend, or nil if not found.
func Get(backendID string) *Info {
	return Load()[backendID]
}

// Set stores an auth entry for a backend (upsert).
func Set(backendID string, info *Info) error {
	store := Load()
	store[backendID] = info
	return Save(store)
}

// Remove deletes credentials for a backend.
func Remove(backendID string) error {
	store := Load()
	if _, ok := store[backendID]; !ok {
		return nil
	}
	delete(store, backendID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// API key helpers
// ---------------------------------------------------------------------------

// SetAPIKey stores an API key and optional base URL for a backend.
func SetAPIKey(backendID, key, baseURL string) error {
	return Set(backendID, &Info{
		Type:    "api",
		Key:     key,
		BaseURL: baseURL,
	})
}

// GetAPIKey retrieves the stored API key for a backend.
// Returns empty string if not found or not an API key entry.
func GetAPIKey(backendID string) string {
	info := Get(backendID)
	if info == nil || !info.IsAPI() {
		return ""
	}
	return info.Key
}

// GetBaseURL retrieves the stored base URL for a backend.
func GetBaseURL(backendID string) string {
	info := Get(backendID)
	if info == nil {
		return ""
	}
	return info.BaseURL
}

// EnvVarForProvider returns the conventional API key variable of a backend,
// or "" when it has none.
func EnvVarForProvider(backendID string) string {
	switch backendID {
	case "google":
		return "GOOGLE_TRANSLATE_API_KEY"
	case "openai", "custom-openai":
		return "OPENAI_API_KEY"
	case "groq":
		return "GROQ_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// ResolveAPIKey returns explicit when set, then the backend's environment
// variable, then the stored key.
func ResolveAPIKey(backendID, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := EnvVarForProvider(backendID); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return GetAPIKey(backendID)
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
