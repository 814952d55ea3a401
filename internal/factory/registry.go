package factory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/practicehub/payments-service/internal/credentials"
	"github.com/practicehub/payments-service/internal/gateway"
)

// AdapterFactory constructs one provider's adapter from decrypted credentials.
// The credentials value must not be retained past the call.
type AdapterFactory func(creds *credentials.Resolved) (gateway.PaymentGateway, error)

// GatewayInfo describes a registered provider for presentation purposes only;
// no routing behavior depends on it.
type GatewayInfo struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Implemented bool   `json:"implemented"`
}

// Registry maps provider keys to adapter factories. Populated at startup;
// adding a provider means registering one factory, not editing a switch.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]AdapterFactory
	info      map[string]GatewayInfo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]AdapterFactory),
		info:      make(map[string]GatewayInfo),
	}
}

// Register adds a provider factory under its key.
func (r *Registry) Register(info GatewayInfo, fn AdapterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[info.Key] = fn
	r.info[info.Key] = info
}

// Build constructs an adapter for the provider key.
func (r *Registry) Build(creds *credentials.Resolved) (gateway.PaymentGateway, error) {
	r.mu.RLock()
	fn, ok := r.factories[creds.Provider]
	r.mu.RUnlock()
	if !ok {
		return nil, &gateway.UnsupportedError{
			Provider: creds.Provider,
			Hint:     fmt.Sprintf("no adapter registered; known providers: %v", r.keys()),
		}
	}
	return fn(creds)
}

// Supported lists registered providers in stable order.
func (r *Registry) Supported() []GatewayInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GatewayInfo, 0, len(r.info))
	for _, info := range r.info {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) keys() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultRegistry returns the registry with the real provider adapters
// registered. The mock gateway is opt-in via RegisterMock.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(GatewayInfo{
		Key:         "razorpay",
		DisplayName: "Razorpay",
		Description: "Cards, UPI, netbanking and wallets for Indian organizations",
		Implemented: true,
	}, func(creds *credentials.Resolved) (gateway.PaymentGateway, error) {
		return gateway.NewRazorpayGateway(&gateway.RazorpayConfig{
			KeyID:          creds.APIKey,
			KeySecret:      creds.APISecret,
			WebhookSecret:  creds.WebhookSecret,
			Environment:    creds.Environment,
			OrganizationID: creds.OrganizationID,
		})
	})
	r.Register(GatewayInfo{
		Key:         "stripe",
		DisplayName: "Stripe",
		Description: "Card payments for international organizations",
		Implemented: true,
	}, func(creds *credentials.Resolved) (gateway.PaymentGateway, error) {
		return gateway.NewStripeGateway(&gateway.StripeConfig{
			SecretKey:      creds.APISecret,
			WebhookSecret:  creds.WebhookSecret,
			Environment:    creds.Environment,
			OrganizationID: creds.OrganizationID,
		})
	})
	r.Register(GatewayInfo{
		Key:         "cashfree",
		DisplayName: "Cashfree",
		Description: "Coming soon",
		Implemented: false,
	}, func(creds *credentials.Resolved) (gateway.PaymentGateway, error) {
		return gateway.NewCashfreeGateway(&gateway.CashfreeConfig{
			AppID:          creds.APIKey,
			SecretKey:      creds.APISecret,
			WebhookSecret:  creds.WebhookSecret,
			Environment:    creds.Environment,
			OrganizationID: creds.OrganizationID,
		})
	})
	return r
}

// RegisterMock adds the in-memory mock gateway. Only development and load
// wiring calls this; a production registry must never route a tenant config
// row to an adapter that settles nothing.
func RegisterMock(r *Registry) {
	r.Register(GatewayInfo{
		Key:         "mock",
		DisplayName: "Mock",
		Description: "In-memory gateway for tests and load environments",
		Implemented: true,
	}, func(creds *credentials.Resolved) (gateway.PaymentGateway, error) {
		return gateway.NewMockGateway(&gateway.MockConfig{
			WebhookSecret:  creds.WebhookSecret,
			OrganizationID: creds.OrganizationID,
		}), nil
	})
}
