package service

import (
	"context"

	"github.com/practicehub/payments-service/internal/domain"
	"github.com/practicehub/payments-service/internal/gateway"
)

// CreateOrderRequest is the service-level request for opening an order.
type CreateOrderRequest struct {
	OrganizationID string
	Provider       string // empty selects the organization's default gateway
	Receipt        string
	Amount         float64
	Currency       string
	Customer       domain.Customer
	Metadata       map[string]string
	ReturnURL      string
	NotifyURL      string
}

// RefundOrderRequest is the service-level request for refunding an order.
type RefundOrderRequest struct {
	OrganizationID string
	OrderID        string
	Amount         float64 // zero means full refund of what remains
	Reason         string
	Notes          map[string]string
}

// WebhookRequest carries exactly what the external HTTP layer received: raw
// body bytes, the header signature, and the optional header timestamp.
type WebhookRequest struct {
	OrganizationID string
	Provider       string
	Signature      string
	Timestamp      string
	Payload        []byte
}

// PaymentService is the inbound boundary business workflows call. All
// operations are keyed by organization; the service resolves the gateway,
// invokes one contract operation, and keeps the persisted record in step.
type PaymentService interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error)
	GetPaymentStatus(ctx context.Context, orgID, orderID string) (*domain.PaymentOrder, error)
	RefundOrder(ctx context.Context, req *RefundOrderRequest) (*domain.RefundRecord, error)
	HandleWebhook(ctx context.Context, req *WebhookRequest) (*gateway.WebhookVerification, error)
	CheckoutAsset(ctx context.Context, orgID, provider string) (gateway.CheckoutAsset, error)
}
