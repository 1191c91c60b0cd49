package secret

import (
	"log/slog"
	"os"

	"github.com/llmcast/llmcast/internal/secret/env"
	"github.com/llmcast/llmcast/internal/secret/vault"
)

// NewDefaultManager builds the manager used when the caller does not inject
// one: env:// is always available, vault:// is registered when VAULT_ADDR
// is set and the client can be constructed. Both are wrapped with the
// default TTL cache.
func NewDefaultManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := NewManager()
	m.Register("env", NewCachedProvider(env.New(), DefaultCacheTTL))

	if os.Getenv("VAULT_ADDR") != "" {
		vp, err := vault.New(vault.Config{})
		if err != nil {
			logger.Debug("vault secret provider unavailable", slog.String("error", err.Error()))
		} else {
			m.Register("vault", NewCachedProvider(vp, DefaultCacheTTL))
		}
	}
	return m
}
