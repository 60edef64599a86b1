// Package registry holds the process-wide set of provider runtimes. The set
// is fixed at startup: every provider the gateway exposes is compiled in, so
// capability schemas, scopes and risk classifications are auditable at build
// time. Components receive the registry by injection rather than through
// ambient globals.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/provider"
)

// ErrProviderNotFound indicates no provider is registered under the
// requested id.
var ErrProviderNotFound = errors.New("provider not found")

// IsProviderNotFound checks whether err indicates an unknown provider.
func IsProviderNotFound(err error) bool {
	return errors.Is(err, ErrProviderNotFound)
}

// CatalogEntry pairs a provider's identity with its capability descriptors.
// Fully enumerable without executing anything; the offline scope-manifest
// tooling depends on that.
type CatalogEntry struct {
	Provider     provider.Metadata   `json:"provider"`
	Capabilities []capability.Meta   `json:"capabilities"`
	ScopeMapping map[string][]string `json:"scope_mapping,omitempty"`
}

type Registry struct {
	logger    *slog.Logger
	providers map[string]*provider.Runtime
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		providers: make(map[string]*provider.Runtime),
	}
}

// Register adds a provider runtime. Duplicate ids are refused; the provider
// set must be unambiguous at startup.
func (r *Registry) Register(runtime *provider.Runtime) error {
	id := runtime.Metadata().ID
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("provider %q already registered", id)
	}

	r.providers[id] = runtime
	r.logger.Info("Registered provider",
		"provider_id", id,
		"capabilities", len(runtime.Capabilities()),
		"triggers", len(runtime.Triggers()),
		"webhooks", len(runtime.Webhooks()))

	return nil
}

// Provider resolves a provider runtime by id.
func (r *Registry) Provider(id string) (*provider.Runtime, error) {
	runtime, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("no provider registered as %q: %w", id, ErrProviderNotFound)
	}

	return runtime, nil
}

// Providers returns all registered runtimes sorted by provider id.
func (r *Registry) Providers() []*provider.Runtime {
	runtimes := make([]*provider.Runtime, 0, len(r.providers))
	for _, runtime := range r.providers {
		runtimes = append(runtimes, runtime)
	}

	sort.Slice(runtimes, func(i, j int) bool {
		return runtimes[i].Metadata().ID < runtimes[j].Metadata().ID
	})

	return runtimes
}

// Catalog returns every provider's capability descriptors, each capability
// listed exactly once with the scopes it declares itself.
func (r *Registry) Catalog() []CatalogEntry {
	providers := r.Providers()

	entries := make([]CatalogEntry, 0, len(providers))
	for _, runtime := range providers {
		entries = append(entries, CatalogEntry{
			Provider:     runtime.Metadata(),
			Capabilities: runtime.Capabilities(),
			ScopeMapping: runtime.ScopeMapping(),
		})
	}

	return entries
}
