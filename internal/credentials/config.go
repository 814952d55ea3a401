package credentials

import (
	"errors"
	"time"
)

// ErrConfigNotFound is returned by stores when no matching row exists. The
// resolver turns it into an environment fallback or a not-configured error.
var ErrConfigNotFound = errors.New("gateway configuration not found")

// GatewayConfig is one organization's configuration row for one provider.
// Secret fields hold ciphertext; this service reads rows, it never writes them.
// The admin workflow that rotates a row must invalidate the factory cache in
// the same request that persists the change.
type GatewayConfig struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Provider       string    `json:"provider"`
	APIKeyEnc      string    `json:"-"`
	APISecretEnc   string    `json:"-"`
	WebhookSecEnc  string    `json:"-"`
	PublicKeyEnc   string    `json:"-"`
	Environment    string    `json:"environment"` // sandbox | production
	IsDefault      bool      `json:"is_default"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Resolved is the decrypted, in-memory form of a GatewayConfig. It exists only
// for the duration of one adapter construction: never persisted, never cached,
// never logged.
type Resolved struct {
	ConfigID       string
	OrganizationID string
	Provider       string
	APIKey         string
	APISecret      string
	WebhookSecret  string
	PublicKey      string
	Environment    string
}
