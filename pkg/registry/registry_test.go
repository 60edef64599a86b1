package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/provider"
)

type echoCapability struct {
	meta capability.Meta
}

func (c *echoCapability) Meta() capability.Meta { return c.meta }

func (c *echoCapability) Execute(_ context.Context, _ capability.ExecutionContext, params map[string]any) (any, error) {
	return params, nil
}

func testRuntime(id string, capabilityIDs ...string) *provider.Runtime {
	factories := make(map[string]capability.Factory, len(capabilityIDs))

	for _, capabilityID := range capabilityIDs {
		capabilityID := capabilityID
		factories[capabilityID] = func() capability.Capability {
			return &echoCapability{meta: capability.Meta{
				ID:             capabilityID,
				RequiredScopes: []string{capabilityID + ":scope"},
			}}
		}
	}

	return provider.MustNewRuntime(provider.Metadata{
		ID:   id,
		Kind: provider.KindInternal,
		Auth: provider.AuthNone,
	}, factories, nil, nil)
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := NewRegistry(slog.Default())

	require.NoError(t, reg.Register(testRuntime("alpha", "do")))

	runtime, err := reg.Provider("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", runtime.Metadata().ID)
}

func TestRegistry_UnknownProvider(t *testing.T) {
	reg := NewRegistry(slog.Default())

	_, err := reg.Provider("ghost")
	assert.ErrorIs(t, err, ErrProviderNotFound)
	assert.True(t, IsProviderNotFound(err))
}

func TestRegistry_DuplicateRegistrationRefused(t *testing.T) {
	reg := NewRegistry(slog.Default())

	require.NoError(t, reg.Register(testRuntime("alpha", "do")))

	err := reg.Register(testRuntime("alpha", "other"))
	require.Error(t, err)

	// The original runtime stays in place.
	runtime, err := reg.Provider("alpha")
	require.NoError(t, err)
	assert.Equal(t, "do", runtime.Capabilities()[0].ID)
}

func TestRegistry_ProvidersSorted(t *testing.T) {
	reg := NewRegistry(slog.Default())

	require.NoError(t, reg.Register(testRuntime("zulu")))
	require.NoError(t, reg.Register(testRuntime("alpha")))
	require.NoError(t, reg.Register(testRuntime("mike")))

	providers := reg.Providers()
	require.Len(t, providers, 3)
	assert.Equal(t, "alpha", providers[0].Metadata().ID)
	assert.Equal(t, "mike", providers[1].Metadata().ID)
	assert.Equal(t, "zulu", providers[2].Metadata().ID)
}

func TestRegistry_CatalogListsEachCapabilityOnce(t *testing.T) {
	reg := NewRegistry(slog.Default())

	require.NoError(t, reg.Register(testRuntime("alpha", "send", "list")))
	require.NoError(t, reg.Register(testRuntime("beta", "ping")))

	catalog := reg.Catalog()
	require.Len(t, catalog, 2)

	seen := map[string]int{}

	for _, entry := range catalog {
		runtime, err := reg.Provider(entry.Provider.ID)
		require.NoError(t, err)

		for _, meta := range entry.Capabilities {
			seen[entry.Provider.ID+"/"+meta.ID]++

			// Every capability's scope mapping entry matches its own
			// declared scopes, both in the catalog and on the runtime.
			assert.Equal(t, meta.RequiredScopes, entry.ScopeMapping[meta.ID])
			assert.Equal(t, meta.RequiredScopes, runtime.ScopeMapping()[meta.ID])
		}
	}

	assert.Equal(t, map[string]int{
		"alpha/send": 1,
		"alpha/list": 1,
		"beta/ping":  1,
	}, seen)
}
