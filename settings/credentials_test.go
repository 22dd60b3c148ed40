package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDataDirAndFilePathUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	wantDir := filepath.Join(tmp, "yamltr")
	if dir != wantDir {
		t.Fatalf("DataDir() = %q, want %q", dir, wantDir)
	}

	wantPath := filepath.Join(tmp, "yamltr", "auth.json")
	if got := FilePath(); got != wantPath {
		t.Fatalf("FilePath() = %q, want %q", got, wantPath)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store := Store{
		"openai":        {Type: "api", Key: "apikey123456"},
		"custom-openai": {Type: "api", Key: "k", BaseURL: "http://llm.local/v1"},
	}

	if err := Save(store); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(tmp, "yamltr", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	loaded := Load()
	if got := loaded.IDs(); !reflect.DeepEqual(got, []string{"custom-openai", "openai"}) {
		t.Fatalf("IDs() = %v", got)
	}
	if got := GetAPIKey("openai"); got != "apikey123456" {
		t.Fatalf("GetAPIKey(openai) = %q", got)
	}
	if got := GetBaseURL("custom-openai"); got != "http://llm.local/v1" {
		t.Fatalf("GetBaseURL(custom-openai) = %q", got)
	}

	if err := Remove("openai"); err != nil {
		t.Fatalf("Remove(openai) error: %v", err)
	}
	if got := GetAPIKey("openai"); got != "" {
		t.Fatalf("GetAPIKey after remove = %q, want empty", got)
	}
	if Get("custom-openai") == nil {
		t.Fatalf("custom-openai should remain after removing openai")
	}

	if err := Remove("missing-provider"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("auth.json should be removed, stat err=%v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() after RemoveAll should be empty, got=%#v", got)
	}
}

func TestLoadIgnoresCorruptFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := os.MkdirAll(filepath.Join(tmp, "yamltr"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "yamltr", "auth.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() = %#v, want empty store", got)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if err := SetAPIKey("groq", "stored-key", ""); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	t.Setenv("GROQ_API_KEY", "env-key")

	if got := ResolveAPIKey("groq", "flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveAPIKey("groq", ""); got != "env-key" {
		t.Fatalf("env should win over store, got %q", got)
	}

	t.Setenv("GROQ_API_KEY", "")
	if got := ResolveAPIKey("groq", ""); got != "stored-key" {
		t.Fatalf("stored key expected, got %q", got)
	}
	if got := ResolveAPIKey("ollama", ""); got != "" {
		t.Fatalf("no key expected for ollama, got %q", got)
	}
}

func TestEnvVarForProviderAndMaskKey(t *testing.T) {
	cases := map[string]string{
		"google":        "GOOGLE_TRANSLATE_API_KEY",
		"openai":        "OPENAI_API_KEY",
		"custom-openai": "OPENAI_API_KEY",
		"groq":          "GROQ_API_KEY",
		"gemini":        "GEMINI_API_KEY",
		"ollama":        "",
		"passthrough":   "",
		"unknown":       "",
	}
	for provider, want := range cases {
		if got := EnvVarForProvider(provider); got != want {
			t.Fatalf("EnvVarForProvider(%q) = %q, want %q", provider, got, want)
		}
	}

	if got := MaskKey("short"); got != "****" {
		t.Fatalf("MaskKey(short) = %q, want ****", got)
	}
	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
