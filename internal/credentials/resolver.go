package credentials

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/practicehub/payments-service/internal/gateway"
)

// envConfigPrefix marks synthetic rows built from process environment
// credentials rather than tenant configuration.
const envConfigPrefix = "env:"

// envFallbackOrder is the hard-coded preference order consulted when an
// organization has no configuration rows at all.
var envFallbackOrder = []string{"razorpay", "stripe"}

// envVarsByProvider names the process-wide fallback variables per provider.
var envVarsByProvider = map[string]struct {
	key, secret, webhook string
}{
	"razorpay": {key: "RAZORPAY_KEY_ID", secret: "RAZORPAY_KEY_SECRET", webhook: "RAZORPAY_WEBHOOK_SECRET"},
	"stripe":   {key: "STRIPE_PUBLISHABLE_KEY", secret: "STRIPE_SECRET_KEY", webhook: "STRIPE_WEBHOOK_SECRET"},
}

// Resolver combines the tenant configuration store with the environment
// fallback and performs lazy decryption. Lookup is cheap and cacheable by row
// id; Resolve decrypts and must only be called when an adapter is about to be
// constructed.
type Resolver struct {
	store  Store
	cipher *Cipher
}

// NewResolver creates a Resolver.
func NewResolver(store Store, cipher *Cipher) *Resolver {
	return &Resolver{store: store, cipher: cipher}
}

// Lookup finds the configuration row for (organization, provider). An empty
// provider selects the organization's default row. When no tenant row exists,
// a synthetic env-backed row is returned if the environment carries credentials
// for the provider (or, for the default lookup, the first provider in the
// fallback order that does).
func (r *Resolver) Lookup(ctx context.Context, orgID, provider string) (*GatewayConfig, error) {
	var (
		cfg *GatewayConfig
		err error
	)
	if provider != "" {
		cfg, err = r.store.GetActiveConfig(ctx, orgID, provider)
	} else {
		cfg, err = r.store.GetDefaultConfig(ctx, orgID)
	}
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrConfigNotFound) {
		return nil, fmt.Errorf("lookup gateway config: %w", err)
	}

	candidates := envFallbackOrder
	if provider != "" {
		candidates = []string{provider}
	}
	for _, p := range candidates {
		if envCfg := envConfig(orgID, p); envCfg != nil {
			return envCfg, nil
		}
	}
	return nil, &gateway.NotConfiguredError{OrganizationID: orgID, Provider: provider}
}

// Resolve decrypts a configuration row into its short-lived in-memory form.
// The result must not outlive the adapter construction it feeds.
func (r *Resolver) Resolve(cfg *GatewayConfig) (*Resolved, error) {
	if strings.HasPrefix(cfg.ID, envConfigPrefix) {
		vars := envVarsByProvider[cfg.Provider]
		return &Resolved{
			ConfigID:       cfg.ID,
			OrganizationID: cfg.OrganizationID,
			Provider:       cfg.Provider,
			APIKey:         os.Getenv(vars.key),
			APISecret:      os.Getenv(vars.secret),
			WebhookSecret:  os.Getenv(vars.webhook),
			Environment:    cfg.Environment,
		}, nil
	}

	if r.cipher == nil {
		return nil, fmt.Errorf("no decryption key configured for config %s", cfg.ID)
	}

	apiKey, err := r.cipher.Decrypt(cfg.APIKeyEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt api key for config %s: %w", cfg.ID, err)
	}
	apiSecret, err := r.cipher.Decrypt(cfg.APISecretEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt api secret for config %s: %w", cfg.ID, err)
	}
	webhookSecret, err := r.cipher.Decrypt(cfg.WebhookSecEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt webhook secret for config %s: %w", cfg.ID, err)
	}
	publicKey, err := r.cipher.Decrypt(cfg.PublicKeyEnc)
	if err != nil {
		return nil, fmt.Errorf("decrypt public key for config %s: %w", cfg.ID, err)
	}

	return &Resolved{
		ConfigID:       cfg.ID,
		OrganizationID: cfg.OrganizationID,
		Provider:       cfg.Provider,
		APIKey:         apiKey,
		APISecret:      apiSecret,
		WebhookSecret:  webhookSecret,
		PublicKey:      publicKey,
		Environment:    cfg.Environment,
	}, nil
}

// envConfig builds a synthetic row when the environment holds credentials for
// a provider. The secret key (or Razorpay key pair) is the gate; webhook
// secrets stay optional.
func envConfig(orgID, provider string) *GatewayConfig {
	vars, ok := envVarsByProvider[provider]
	if !ok {
		return nil
	}
	if os.Getenv(vars.secret) == "" {
		return nil
	}
	if provider == "razorpay" && os.Getenv(vars.key) == "" {
		return nil
	}
	environment := "test"
	if env := os.Getenv("PAYMENT_GATEWAY_ENVIRONMENT"); env != "" {
		environment = env
	}
	now := time.Now().UTC()
	return &GatewayConfig{
		ID:             envConfigPrefix + provider,
		OrganizationID: orgID,
		Provider:       provider,
		Environment:    environment,
		IsDefault:      true,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
