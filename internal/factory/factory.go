package factory

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/practicehub/payments-service/internal/credentials"
	"github.com/practicehub/payments-service/internal/gateway"
)

// cacheKey is composite on the configuration row id, not just the provider
// name, so switching an organization's default or adding a second row for the
// same provider never collides with a live entry.
type cacheKey struct {
	orgID    string
	configID string
}

// Options tunes factory behavior.
type Options struct {
	// WithBreaker wraps constructed adapters in a circuit breaker.
	WithBreaker bool
}

// Factory resolves (organization, provider) to a live adapter instance,
// caching instances by configuration row so repeated requests skip the
// decrypt-and-construct work. It is an explicit service object with its own
// lifecycle; nothing here is process-global.
//
// Concurrency: lookups take the read lock; construction happens outside any
// lock, so two simultaneous misses on one key may construct twice. That is
// deliberate — construction is idempotent and cheap compared to serializing
// unrelated organizations behind a single flight.
type Factory struct {
	resolver *credentials.Resolver
	registry *Registry
	opts     Options
	log      *zap.Logger

	mu    sync.RWMutex
	cache map[cacheKey]gateway.PaymentGateway
}

// New creates a Factory with an empty instance cache.
func New(resolver *credentials.Resolver, registry *Registry, opts Options, log *zap.Logger) *Factory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Factory{
		resolver: resolver,
		registry: registry,
		opts:     opts,
		log:      log,
		cache:    make(map[cacheKey]gateway.PaymentGateway),
	}
}

// GetGateway returns the adapter for an organization and provider key. An
// empty provider selects the organization's default configuration. The
// decrypted credentials live only inside this call.
func (f *Factory) GetGateway(ctx context.Context, orgID, provider string) (gateway.PaymentGateway, error) {
	cfg, err := f.resolver.Lookup(ctx, orgID, strings.ToLower(provider))
	if err != nil {
		return nil, err
	}

	key := cacheKey{orgID: orgID, configID: cfg.ID}
	f.mu.RLock()
	gw, ok := f.cache[key]
	f.mu.RUnlock()
	if ok {
		return gw, nil
	}

	creds, err := f.resolver.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	gw, err = f.registry.Build(creds)
	if err != nil {
		return nil, err
	}
	if f.opts.WithBreaker {
		gw = gateway.NewBreakerGateway(gw)
	}

	f.mu.Lock()
	// A concurrent miss may have stored first; keep the existing instance so
	// all callers converge on one adapter.
	if existing, ok := f.cache[key]; ok {
		gw = existing
	} else {
		f.cache[key] = gw
	}
	f.mu.Unlock()

	f.log.Debug("gateway constructed",
		zap.String("organization_id", orgID),
		zap.String("provider", cfg.Provider),
		zap.String("config_id", cfg.ID),
	)
	return gw, nil
}

// InvalidateConfig drops the cached adapter for one configuration row. The
// admin workflow calls this in the same request that persists a credential
// change, before any other request can observe the new row.
func (f *Factory) InvalidateConfig(orgID, configID string) {
	f.mu.Lock()
	delete(f.cache, cacheKey{orgID: orgID, configID: configID})
	f.mu.Unlock()
}

// InvalidateOrganization drops every cached adapter for one organization.
func (f *Factory) InvalidateOrganization(orgID string) {
	f.mu.Lock()
	for key := range f.cache {
		if key.orgID == orgID {
			delete(f.cache, key)
		}
	}
	f.mu.Unlock()
}

// Clear drops the whole cache. Called at process start so entries can never
// survive a deploy that changed decryption keys or schema.
func (f *Factory) Clear() {
	f.mu.Lock()
	f.cache = make(map[cacheKey]gateway.PaymentGateway)
	f.mu.Unlock()
}

// Size reports the number of live cache entries.
func (f *Factory) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.cache)
}

// SupportedGateways lists the registered providers for presentation.
func (f *Factory) SupportedGateways() []GatewayInfo {
	return f.registry.Supported()
}
