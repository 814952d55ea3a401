package factory

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicehub/payments-service/internal/credentials"
	"github.com/practicehub/payments-service/internal/gateway"
)

// countingRegistry wraps a registry with a factory that counts constructions,
// so cache hits and invalidations are observable.
func countingRegistry(counter *int) *Registry {
	r := NewRegistry()
	r.Register(GatewayInfo{Key: "mock", DisplayName: "Mock", Implemented: true},
		func(creds *credentials.Resolved) (gateway.PaymentGateway, error) {
			*counter++
			return gateway.NewMockGateway(&gateway.MockConfig{
				WebhookSecret:  creds.WebhookSecret,
				OrganizationID: creds.OrganizationID,
			}), nil
		})
	return r
}

func testCipher(t *testing.T) *credentials.Cipher {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	c, err := credentials.NewCipher(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	return c
}

func storeWithMockConfig(t *testing.T, id, orgID string, isDefault bool) *credentials.MemoryStore {
	t.Helper()
	store := credentials.NewMemoryStore()
	store.Put(&credentials.GatewayConfig{
		ID:             id,
		OrganizationID: orgID,
		Provider:       "mock",
		IsDefault:      isDefault,
		IsActive:       true,
		CreatedAt:      time.Now(),
	})
	return store
}

func TestFactory_CachesByConfig(t *testing.T) {
	counted := 0
	store := storeWithMockConfig(t, "cfg-1", "org-001", true)
	f := New(credentials.NewResolver(store, testCipher(t)), countingRegistry(&counted), Options{}, nil)
	ctx := context.Background()

	gw1, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)
	gw2, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)

	assert.Same(t, gw1, gw2, "repeated lookups must hit the cache")
	assert.Equal(t, 1, counted, "adapter must be constructed once")
	assert.Equal(t, 1, f.Size())
}

func TestFactory_InvalidateConfig(t *testing.T) {
	counted := 0
	store := storeWithMockConfig(t, "cfg-1", "org-001", true)
	f := New(credentials.NewResolver(store, testCipher(t)), countingRegistry(&counted), Options{}, nil)
	ctx := context.Background()

	gw1, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)

	f.InvalidateConfig("org-001", "cfg-1")
	assert.Equal(t, 0, f.Size())

	gw2, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)

	assert.NotSame(t, gw1, gw2, "invalidation must force a rebuild")
	assert.Equal(t, 2, counted)
}

func TestFactory_InvalidateOrganization(t *testing.T) {
	counted := 0
	store := credentials.NewMemoryStore()
	store.Put(&credentials.GatewayConfig{
		ID: "cfg-a", OrganizationID: "org-001", Provider: "mock",
		IsActive: true, CreatedAt: time.Now(),
	})
	store.Put(&credentials.GatewayConfig{
		ID: "cfg-b", OrganizationID: "org-002", Provider: "mock",
		IsActive: true, CreatedAt: time.Now(),
	})
	f := New(credentials.NewResolver(store, testCipher(t)), countingRegistry(&counted), Options{}, nil)
	ctx := context.Background()

	_, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)
	_, err = f.GetGateway(ctx, "org-002", "mock")
	require.NoError(t, err)
	require.Equal(t, 2, f.Size())

	f.InvalidateOrganization("org-001")

	// Only org-001's entry is dropped
	assert.Equal(t, 1, f.Size())
	_, err = f.GetGateway(ctx, "org-002", "mock")
	require.NoError(t, err)
	assert.Equal(t, 2, counted, "org-002's adapter must survive")
}

func TestFactory_Clear(t *testing.T) {
	counted := 0
	store := storeWithMockConfig(t, "cfg-1", "org-001", true)
	f := New(credentials.NewResolver(store, testCipher(t)), countingRegistry(&counted), Options{}, nil)
	ctx := context.Background()

	_, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)
	require.Equal(t, 1, f.Size())

	f.Clear()
	assert.Equal(t, 0, f.Size())
}

func TestFactory_CompositeKeySeparatesTenants(t *testing.T) {
	counted := 0
	store := credentials.NewMemoryStore()
	store.Put(&credentials.GatewayConfig{
		ID: "cfg-a", OrganizationID: "org-001", Provider: "mock",
		IsActive: true, CreatedAt: time.Now(),
	})
	store.Put(&credentials.GatewayConfig{
		ID: "cfg-b", OrganizationID: "org-002", Provider: "mock",
		IsActive: true, CreatedAt: time.Now(),
	})
	f := New(credentials.NewResolver(store, testCipher(t)), countingRegistry(&counted), Options{}, nil)
	ctx := context.Background()

	gwA, err := f.GetGateway(ctx, "org-001", "mock")
	require.NoError(t, err)
	gwB, err := f.GetGateway(ctx, "org-002", "mock")
	require.NoError(t, err)

	assert.NotSame(t, gwA, gwB, "tenants must never share an adapter instance")
	assert.Equal(t, 2, counted)
}

func TestFactory_WithBreaker(t *testing.T) {
	counted := 0
	store := storeWithMockConfig(t, "cfg-1", "org-001", true)
	f := New(credentials.NewResolver(store, testCipher(t)), countingRegistry(&counted), Options{WithBreaker: true}, nil)

	gw, err := f.GetGateway(context.Background(), "org-001", "mock")
	require.NoError(t, err)

	_, ok := gw.(*gateway.BreakerGateway)
	assert.True(t, ok, "expected adapter wrapped in a circuit breaker")
	assert.Equal(t, "mock", gw.Provider())
}

func TestRegistry_UnknownProvider(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build(&credentials.Resolved{Provider: "carrierpigeon"})

	var unsupported *gateway.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "carrierpigeon", unsupported.Provider)
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	infos := r.Supported()

	keys := make([]string, 0, len(infos))
	implemented := map[string]bool{}
	for _, info := range infos {
		keys = append(keys, info.Key)
		implemented[info.Key] = info.Implemented
	}

	assert.Equal(t, []string{"cashfree", "razorpay", "stripe"}, keys,
		"the default registry must not advertise the mock provider")
	assert.True(t, implemented["razorpay"])
	assert.True(t, implemented["stripe"])
	assert.False(t, implemented["cashfree"], "cashfree ships as a declared but unimplemented provider")
}

func TestRegisterMock(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Build(&credentials.Resolved{Provider: "mock"})
	var unsupported *gateway.UnsupportedError
	require.ErrorAs(t, err, &unsupported, "mock must be unroutable until explicitly registered")

	RegisterMock(r)
	gw, err := r.Build(&credentials.Resolved{Provider: "mock", OrganizationID: "org-001"})
	require.NoError(t, err)
	assert.Equal(t, "mock", gw.Provider())
}

func TestDefaultRegistry_CashfreeConstructionFails(t *testing.T) {
	r := DefaultRegistry()
	_, err := r.Build(&credentials.Resolved{Provider: "cashfree", APISecret: "x"})

	var unsupported *gateway.UnsupportedError
	require.ErrorAs(t, err, &unsupported)
}
