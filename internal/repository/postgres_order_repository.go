package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/practicehub/payments-service/internal/domain"
	"github.com/practicehub/payments-service/pkg/database"
)

const pgUniqueViolationCode = "23505"

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db *database.PostgresDB
}

// NewPostgresOrderRepository creates a PostgreSQL order repository.
func NewPostgresOrderRepository(db *database.PostgresDB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

const orderColumns = `
	id, organization_id, provider, provider_order_id, provider_payment_id,
	receipt, amount, amount_refunded, currency, status, session_id,
	redirect_url, customer, metadata, created_at, updated_at, paid_at
`

func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *domain.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	customerJSON, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	metadataJSON, err := json.Marshal(order.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx, query,
		order.ID,
		order.OrganizationID,
		order.Provider,
		order.ProviderOrderID,
		nullString(order.ProviderPayment),
		order.Receipt,
		order.Amount,
		order.AmountRefunded,
		order.Currency,
		string(order.Status),
		nullString(order.SessionID),
		nullString(order.RedirectURL),
		customerJSON,
		metadataJSON,
		order.CreatedAt,
		order.UpdatedAt,
		order.PaidAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("create payment order: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) GetOrder(ctx context.Context, orgID, orderID string) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE organization_id = $1 AND id = $2`
	return r.scanOrder(r.db.Pool().QueryRow(ctx, query, orgID, orderID))
}

func (r *PostgresOrderRepository) GetOrderByReceipt(ctx context.Context, orgID, receipt string) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE organization_id = $1 AND receipt = $2`
	return r.scanOrder(r.db.Pool().QueryRow(ctx, query, orgID, receipt))
}

func (r *PostgresOrderRepository) GetOrderByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM payment_orders WHERE provider_order_id = $1`
	return r.scanOrder(r.db.Pool().QueryRow(ctx, query, providerOrderID))
}

func (r *PostgresOrderRepository) UpdateOrder(ctx context.Context, order *domain.PaymentOrder) error {
	query := `
		UPDATE payment_orders SET
			provider_payment_id = $1, amount_refunded = $2, status = $3,
			session_id = $4, redirect_url = $5, updated_at = $6, paid_at = $7
		WHERE id = $8`

	tag, err := r.db.Pool().Exec(ctx, query,
		nullString(order.ProviderPayment),
		order.AmountRefunded,
		string(order.Status),
		nullString(order.SessionID),
		nullString(order.RedirectURL),
		order.UpdatedAt,
		order.PaidAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *PostgresOrderRepository) CreateRefund(ctx context.Context, refund *domain.RefundRecord) error {
	query := `
		INSERT INTO payment_refunds (
			id, order_id, provider_refund_id, provider, amount, currency,
			status, reason, processed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Pool().Exec(ctx, query,
		refund.ID,
		refund.OrderID,
		refund.ProviderRefundID,
		refund.Provider,
		refund.Amount,
		refund.Currency,
		string(refund.Status),
		nullString(refund.Reason),
		refund.ProcessedAt,
		refund.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create refund record: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) ListRefunds(ctx context.Context, orderID string) ([]*domain.RefundRecord, error) {
	query := `
		SELECT id, order_id, provider_refund_id, provider, amount, currency,
			status, COALESCE(reason, ''), processed_at, created_at
		FROM payment_refunds WHERE order_id = $1 ORDER BY created_at`

	rows, err := r.db.Pool().Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("query refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*domain.RefundRecord
	for rows.Next() {
		var rec domain.RefundRecord
		var status string
		if err := rows.Scan(
			&rec.ID, &rec.OrderID, &rec.ProviderRefundID, &rec.Provider,
			&rec.Amount, &rec.Currency, &status, &rec.Reason,
			&rec.ProcessedAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan refund: %w", err)
		}
		rec.Status = domain.RefundStatus(status)
		refunds = append(refunds, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refunds: %w", err)
	}
	return refunds, nil
}

func (r *PostgresOrderRepository) scanOrder(row pgx.Row) (*domain.PaymentOrder, error) {
	var (
		order            domain.PaymentOrder
		status           string
		providerPayment  *string
		sessionID        *string
		redirectURL      *string
		customerJSON     []byte
		metadataJSON     []byte
	)
	err := row.Scan(
		&order.ID,
		&order.OrganizationID,
		&order.Provider,
		&order.ProviderOrderID,
		&providerPayment,
		&order.Receipt,
		&order.Amount,
		&order.AmountRefunded,
		&order.Currency,
		&status,
		&sessionID,
		&redirectURL,
		&customerJSON,
		&metadataJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.PaidAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment order: %w", err)
	}

	order.Status = domain.PaymentStatus(status)
	if providerPayment != nil {
		order.ProviderPayment = *providerPayment
	}
	if sessionID != nil {
		order.SessionID = *sessionID
	}
	if redirectURL != nil {
		order.RedirectURL = *redirectURL
	}
	if len(customerJSON) > 0 {
		if err := json.Unmarshal(customerJSON, &order.Customer); err != nil {
			return nil, fmt.Errorf("unmarshal customer: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &order.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &order, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
