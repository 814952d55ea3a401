package dto

import (
	"time"

	"github.com/practicehub/payments-service/internal/domain"
	"github.com/practicehub/payments-service/internal/gateway"
)

// CreateOrderRequest represents a request to open a payment order
type CreateOrderRequest struct {
	Provider  string            `json:"provider,omitempty"`
	Receipt   string            `json:"receipt" binding:"required"`
	Amount    float64           `json:"amount" binding:"required,gt=0"`
	Currency  string            `json:"currency" binding:"required"`
	Customer  domain.Customer   `json:"customer,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ReturnURL string            `json:"return_url,omitempty"`
	NotifyURL string            `json:"notify_url,omitempty"`
}

// RefundOrderRequest represents a request to refund a paid order
type RefundOrderRequest struct {
	Amount float64           `json:"amount,omitempty"` // Optional: partial refund amount
	Reason string            `json:"reason,omitempty"`
	Notes  map[string]string `json:"notes,omitempty"`
}

// OrderResponse represents a payment order response
type OrderResponse struct {
	ID              string               `json:"id"`
	OrganizationID  string               `json:"organization_id"`
	Provider        string               `json:"provider"`
	ProviderOrderID string               `json:"provider_order_id,omitempty"`
	ProviderPayment string               `json:"provider_payment_id,omitempty"`
	Receipt         string               `json:"receipt"`
	Amount          float64              `json:"amount"`
	AmountRefunded  float64              `json:"amount_refunded,omitempty"`
	Currency        string               `json:"currency"`
	Status          domain.PaymentStatus `json:"status"`
	Customer        domain.Customer      `json:"customer,omitempty"`
	Metadata        map[string]string    `json:"metadata,omitempty"`
	SessionID       string               `json:"session_id,omitempty"`
	RedirectURL     string               `json:"redirect_url,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// FromOrder converts a domain PaymentOrder to OrderResponse
func FromOrder(o *domain.PaymentOrder) *OrderResponse {
	return &OrderResponse{
		ID:              o.ID,
		OrganizationID:  o.OrganizationID,
		Provider:        o.Provider,
		ProviderOrderID: o.ProviderOrderID,
		ProviderPayment: o.ProviderPayment,
		Receipt:         o.Receipt,
		Amount:          o.Amount,
		AmountRefunded:  o.AmountRefunded,
		Currency:        o.Currency,
		Status:          o.Status,
		Customer:        o.Customer,
		Metadata:        o.Metadata,
		SessionID:       o.SessionID,
		RedirectURL:     o.RedirectURL,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// RefundResponse represents a refund response
type RefundResponse struct {
	ID               string              `json:"id"`
	OrderID          string              `json:"order_id"`
	ProviderRefundID string              `json:"provider_refund_id,omitempty"`
	Amount           float64             `json:"amount"`
	Currency         string              `json:"currency"`
	Status           domain.RefundStatus `json:"status"`
	Reason           string              `json:"reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
}

// FromRefund converts a domain RefundRecord to RefundResponse
func FromRefund(r *domain.RefundRecord) *RefundResponse {
	return &RefundResponse{
		ID:               r.ID,
		OrderID:          r.OrderID,
		ProviderRefundID: r.ProviderRefundID,
		Amount:           r.Amount,
		Currency:         r.Currency,
		Status:           r.Status,
		Reason:           r.Reason,
		CreatedAt:        r.CreatedAt,
	}
}

// GatewayInfoResponse describes one selectable payment provider
type GatewayInfoResponse struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Implemented bool   `json:"implemented"`
}

// GatewayListResponse represents the list of selectable providers
type GatewayListResponse struct {
	Gateways []GatewayInfoResponse `json:"gateways"`
	Total    int                   `json:"total"`
}

// CheckoutAssetResponse represents the provider checkout script reference
type CheckoutAssetResponse struct {
	Src       string `json:"src"`
	Integrity string `json:"integrity,omitempty"`
}

// FromCheckoutAsset converts a gateway CheckoutAsset to its response form
func FromCheckoutAsset(a gateway.CheckoutAsset) *CheckoutAssetResponse {
	return &CheckoutAssetResponse{Src: a.Src, Integrity: a.Integrity}
}

// WebhookAckResponse acknowledges a verified provider callback
type WebhookAckResponse struct {
	Received  bool   `json:"received"`
	EventType string `json:"event_type,omitempty"`
}
