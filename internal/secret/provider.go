// Package secret resolves API key references from configuration. A
// reference is either a literal value, env://NAME for an environment
// variable, or vault://path#key for HashiCorp Vault.
package secret

import "context"

// Provider retrieves secrets from one backing source. The path it receives
// has the scheme already stripped.
type Provider interface {
	Get(ctx context.Context, path string) (string, error)

	// Close releases any resources held by the provider.
	Close() error
}
