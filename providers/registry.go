// Package providers is the built-in backend catalog. Each subpackage
// declares one backend as descriptor data; this package indexes them by
// name so configuration files and CLIs can refer to providers by string.
package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/llmcast/llmcast"
	llmerrors "github.com/llmcast/llmcast/pkg/errors"
	"github.com/llmcast/llmcast/pkg/provider"
	"github.com/llmcast/llmcast/providers/deepseek"
	"github.com/llmcast/llmcast/providers/groq"
	"github.com/llmcast/llmcast/providers/moonshot"
	"github.com/llmcast/llmcast/providers/ollama"
	"github.com/llmcast/llmcast/providers/openai"
	"github.com/llmcast/llmcast/providers/openrouter"
	"github.com/llmcast/llmcast/providers/qwen"
	"github.com/llmcast/llmcast/providers/siliconflow"
	"github.com/llmcast/llmcast/providers/zhipu"
)

var (
	mu       sync.RWMutex
	catalog  = make(map[string]provider.Descriptor)
	builtins = make(map[string]bool)
)

func init() {
	for _, d := range []provider.Descriptor{
		openai.Descriptor,
		deepseek.Descriptor,
		moonshot.Descriptor,
		zhipu.Descriptor,
		siliconflow.Descriptor,
		openrouter.Descriptor,
		ollama.Descriptor,
		groq.Descriptor,
		qwen.Descriptor,
	} {
		catalog[d.Name] = d.Normalized()
		builtins[d.Name] = true
	}
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (provider.Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := catalog[name]
	return d, ok
}

// IsBuiltin reports whether name ships with the module.
func IsBuiltin(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return builtins[name]
}

// Register adds a custom descriptor to the catalog. The catalog is
// append-only: registering an existing name is an error, built-in or not.
func Register(desc provider.Descriptor) error {
	desc = desc.Normalized()
	if err := desc.Validate(); err != nil {
		return llmerrors.NewConfigurationError(desc.Name, err.Error())
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := catalog[desc.Name]; exists {
		return llmerrors.NewConfigurationError(desc.Name, "provider is already registered")
	}
	catalog[desc.Name] = desc
	return nil
}

// Names returns all registered provider names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a client for the named backend.
func New(name string, opts ...llmcast.Option) (*llmcast.Client, error) {
	desc, ok := Lookup(name)
	if !ok {
		return nil, llmerrors.NewNotFoundError(name,
			fmt.Sprintf("unknown provider %q (available: %s)", name, strings.Join(Names(), ", ")))
	}
	return llmcast.New(desc, opts...)
}
