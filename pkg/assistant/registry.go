package assistant

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arnavsurve/virtuoso-converter/pkg/core"
)

type ProviderFactory func(cfg core.ProviderConfig) (Service, error)

// registry maps a provider type ("openai") to the factory building its
// Service. Providers register themselves from init().
var (
	registryMu sync.RWMutex
	registry   = map[string]ProviderFactory{}
)

func RegisterProviderFactory(providerType string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[providerType] = factory
}

// NewService builds the Service for cfg.Type using its registered factory.
func NewService(cfg core.ProviderConfig) (Service, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no assistant provider registered for type: %s (registered: %s)", cfg.Type, strings.Join(Providers(), ", "))
	}
	return factory(cfg)
}

// Providers lists the registered provider types.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
