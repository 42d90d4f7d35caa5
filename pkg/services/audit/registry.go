package audit

import (
	"context"
	"fmt"
	"sync"
)

// ProviderFactory builds the provider set for a platform from a config
// profile path.
type ProviderFactory func(ctx context.Context, profile string) (Providers, error)

// Registry manages platform provider factories.
type Registry interface {
	// Register adds a new platform provider factory
	Register(platform string, factory ProviderFactory) error
	// Create instantiates the provider set for the specified platform using the provided profile
	Create(ctx context.Context, platform, profile string) (Providers, error)
	// ListPlatforms returns a list of registered platforms
	ListPlatforms() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates a registry pre-populated with the given factories.
func NewRegistry(factories map[string]ProviderFactory) Registry {
	r := &registry{factories: make(map[string]ProviderFactory)}
	for platform, factory := range factories {
		r.factories[platform] = factory
	}
	return r
}

func (r *registry) Register(platform string, factory ProviderFactory) error {
	if platform == "" {
		return fmt.Errorf("platform name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[platform]; exists {
		return fmt.Errorf("platform %q is already registered", platform)
	}

	r.factories[platform] = factory
	return nil
}

func (r *registry) Create(ctx context.Context, platform, profile string) (Providers, error) {
	r.mu.RLock()
	factory, exists := r.factories[platform]
	r.mu.RUnlock()

	if !exists {
		return Providers{}, fmt.Errorf("platform %q is not registered", platform)
	}

	return factory(ctx, profile)
}

func (r *registry) ListPlatforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	platforms := make([]string, 0, len(r.factories))
	for platform := range r.factories {
		platforms = append(platforms, platform)
	}
	return platforms
}
