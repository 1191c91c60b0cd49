package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("LLMCAST_TEST_KEY", "sk-expanded")

	path := writeConfigFile(t, `
default_provider: deepseek
providers:
  deepseek:
    api_key: ${LLMCAST_TEST_KEY}
    model: deepseek-chat
    timeout: 45s
  ollama:
    base_url: http://localhost:11434/v1
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.DefaultProvider != "deepseek" {
		t.Fatalf("DefaultProvider = %q, want %q", cfg.DefaultProvider, "deepseek")
	}

	ds, ok := cfg.Provider("deepseek")
	if !ok {
		t.Fatal("deepseek entry missing")
	}
	if ds.APIKey != "sk-expanded" {
		t.Fatalf("APIKey = %q, want env-expanded value", ds.APIKey)
	}
	if ds.Model != "deepseek-chat" {
		t.Fatalf("Model = %q, want %q", ds.Model, "deepseek-chat")
	}
	if ds.Timeout != 45*time.Second {
		t.Fatalf("Timeout = %v, want 45s", ds.Timeout)
	}

	if cfg.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	// Unset sections keep their defaults.
	if cfg.Logging.Format != "text" {
		t.Fatalf("Logging.Format = %q, want default %q", cfg.Logging.Format, "text")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "providers: [not: a: map\n")
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr bool
	}{
		{
			name: "valid",
			config: `
default_provider: openai
providers:
  openai:
    api_key: sk-test
`,
			wantErr: false,
		},
		{
			name: "unknown default provider",
			config: `
default_provider: nope
providers:
  openai:
    api_key: sk-test
`,
			wantErr: true,
		},
		{
			name: "bad base url",
			config: `
providers:
  openai:
    base_url: "ftp://example.com"
`,
			wantErr: true,
		},
		{
			name: "negative timeout",
			config: `
providers:
  openai:
    timeout: -5s
`,
			wantErr: true,
		},
		{
			name: "negative dimensions",
			config: `
providers:
  openai:
    dimensions: -1
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.config)
			_, err := LoadFromFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadFromFile() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderDefaultLookup(t *testing.T) {
	path := writeConfigFile(t, `
default_provider: moonshot
providers:
  moonshot:
    model: kimi-k2
  openai:
    model: gpt-4o
`)
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	pc, ok := cfg.Provider("")
	if !ok {
		t.Fatal("empty name should resolve to the default provider")
	}
	if pc.Model != "kimi-k2" {
		t.Fatalf("Model = %q, want default provider's model", pc.Model)
	}

	if _, ok := cfg.Provider("unknown"); ok {
		t.Fatal("unknown provider should not resolve")
	}

	names := cfg.Names()
	if len(names) != 2 || names[0] != "moonshot" || names[1] != "openai" {
		t.Fatalf("Names() = %v, want sorted [moonshot openai]", names)
	}
}
