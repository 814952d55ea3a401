package repository

import (
	"context"

	"github.com/practicehub/payments-service/internal/domain"
)

// OrderRepository persists payment orders and their refund records. The
// gateway core produces these records; business workflows own them.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.PaymentOrder) error
	GetOrder(ctx context.Context, orgID, orderID string) (*domain.PaymentOrder, error)
	GetOrderByReceipt(ctx context.Context, orgID, receipt string) (*domain.PaymentOrder, error)
	GetOrderByProviderOrderID(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error)
	UpdateOrder(ctx context.Context, order *domain.PaymentOrder) error

	CreateRefund(ctx context.Context, refund *domain.RefundRecord) error
	ListRefunds(ctx context.Context, orderID string) ([]*domain.RefundRecord, error)
}
