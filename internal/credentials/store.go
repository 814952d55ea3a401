package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/practicehub/payments-service/pkg/database"
)

// Store reads per-organization gateway configuration rows. Read-only by
// design: writing and rotating credentials belongs to the admin workflow.
type Store interface {
	// GetActiveConfig returns the organization's active row for a provider.
	GetActiveConfig(ctx context.Context, orgID, provider string) (*GatewayConfig, error)
	// GetDefaultConfig returns the organization's default active row. When the
	// uniqueness invariant is violated upstream, the most recently created row
	// wins deterministically.
	GetDefaultConfig(ctx context.Context, orgID string) (*GatewayConfig, error)
}

const configColumns = `
	id, organization_id, provider, api_key_enc, api_secret_enc,
	COALESCE(webhook_secret_enc, ''), COALESCE(public_key_enc, ''),
	environment, is_default, is_active, created_at, updated_at
`

// PostgresStore implements Store against the payment_gateway_configs table.
type PostgresStore struct {
	db *database.PostgresDB
}

// NewPostgresStore creates a PostgreSQL-backed configuration store.
func NewPostgresStore(db *database.PostgresDB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetActiveConfig(ctx context.Context, orgID, provider string) (*GatewayConfig, error) {
	query := `SELECT ` + configColumns + `
		FROM payment_gateway_configs
		WHERE organization_id = $1 AND provider = $2 AND is_active
		ORDER BY created_at DESC
		LIMIT 1`
	return s.scanConfig(s.db.QueryRow(ctx, query, orgID, provider))
}

func (s *PostgresStore) GetDefaultConfig(ctx context.Context, orgID string) (*GatewayConfig, error) {
	query := `SELECT ` + configColumns + `
		FROM payment_gateway_configs
		WHERE organization_id = $1 AND is_default AND is_active
		ORDER BY created_at DESC
		LIMIT 1`
	return s.scanConfig(s.db.QueryRow(ctx, query, orgID))
}

func (s *PostgresStore) scanConfig(row pgx.Row) (*GatewayConfig, error) {
	var cfg GatewayConfig
	err := row.Scan(
		&cfg.ID,
		&cfg.OrganizationID,
		&cfg.Provider,
		&cfg.APIKeyEnc,
		&cfg.APISecretEnc,
		&cfg.WebhookSecEnc,
		&cfg.PublicKeyEnc,
		&cfg.Environment,
		&cfg.IsDefault,
		&cfg.IsActive,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan gateway config: %w", err)
	}
	return &cfg, nil
}
