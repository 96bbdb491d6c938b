package translation

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultProviderKind is used when no provider is configured.
const DefaultProviderKind = ProviderFreeEndpoint

// Registry stores translation providers and resolves a default provider.
type Registry struct {
	providers       map[ProviderKind]Provider
	defaultProvider ProviderKind
}

func NewRegistry(defaultProvider ProviderKind) *Registry {
	if strings.TrimSpace(string(defaultProvider)) == "" {
		defaultProvider = DefaultProviderKind
	}
	return &Registry{
		providers:       make(map[ProviderKind]Provider),
		defaultProvider: defaultProvider,
	}
}

// Register adds one provider, replacing any provider of the same kind.
func (r *Registry) Register(provider Provider) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}
	kind := provider.Kind()
	if strings.TrimSpace(string(kind)) == "" {
		return fmt.Errorf("provider kind is required")
	}
	r.providers[kind] = provider
	return nil
}

// Provider resolves a provider by kind. An empty kind uses the default provider.
func (r *Registry) Provider(kind ProviderKind) (Provider, error) {
	if r == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("%w: no providers are registered", ErrUnknownProvider)
	}

	resolved := kind
	if strings.TrimSpace(string(resolved)) == "" {
		resolved = r.defaultProvider
	}
	provider, ok := r.providers[resolved]
	if ok {
		return provider, nil
	}

	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, resolved, strings.Join(r.ProviderNames(), ", "))
}

func (r *Registry) DefaultProvider() ProviderKind {
	if r == nil {
		return ""
	}
	return r.defaultProvider
}

func (r *Registry) ProviderNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for kind := range r.providers {
		names = append(names, string(kind))
	}
	sort.Strings(names)
	return names
}
