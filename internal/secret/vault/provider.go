// Package vault implements a secret provider backed by HashiCorp Vault.
package vault

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// Provider resolves vault:// references. Reads are token-authenticated;
// address and token come from Config or the standard VAULT_ADDR/VAULT_TOKEN
// environment. Token renewal is the embedding process's concern.
type Provider struct {
	client *vault.Client
}

// Config holds optional overrides for the Vault client. Zero values defer
// to the VAULT_* environment.
type Config struct {
	Address string
	Token   string
}

// New creates a Vault provider.
func New(cfg Config) (*Provider, error) {
	vConfig := vault.DefaultConfig()
	if cfg.Address != "" {
		vConfig.Address = cfg.Address
	}

	client, err := vault.NewClient(vConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if client.Token() == "" {
		return nil, fmt.Errorf("no vault token available (set VAULT_TOKEN)")
	}
	return &Provider{client: client}, nil
}

// Get reads a secret. Path format: "path/to/secret#key"; the key defaults
// to "value". KV v2 data wrappers are unwrapped transparently.
func (p *Provider) Get(ctx context.Context, path string) (string, error) {
	secretPath := path
	key := "value"
	if idx := strings.LastIndex(path, "#"); idx != -1 {
		secretPath = path[:idx]
		key = path[idx+1:]
	}

	secret, err := p.client.Logical().ReadWithContext(ctx, secretPath)
	if err != nil {
		return "", fmt.Errorf("read vault secret %q: %w", secretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret %q not found", secretPath)
	}

	data := secret.Data
	if v, ok := data["data"]; ok {
		if nested, ok := v.(map[string]interface{}); ok {
			data = nested
		}
	}

	val, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	return fmt.Sprintf("%v", val), nil
}

// Close is a no-op; the underlying client holds no connections.
func (p *Provider) Close() error {
	return nil
}
