package gateway

import (
	"context"

	"github.com/practicehub/payments-service/internal/domain"
)

// CreateOrderRequest carries the provider-agnostic fields for opening an order.
// Receipt is the caller-supplied order id, unique per organization; the core
// does not enforce idempotency itself, it forwards Receipt so the provider or
// caller can.
type CreateOrderRequest struct {
	Receipt   string
	Amount    float64
	Currency  string
	Customer  domain.Customer
	Metadata  map[string]string
	ReturnURL string
	NotifyURL string
}

// RefundRequest carries the fields for issuing a refund against a payment.
// A zero Amount means full refund.
type RefundRequest struct {
	Amount float64
	Reason string
	Notes  map[string]string
}

// WebhookVerification is the outcome of webhook signature verification. A
// forged or malformed payload yields Valid=false with no event content exposed.
type WebhookVerification struct {
	Valid     bool
	EventType string
	Event     map[string]any
	Reason    string // diagnostic only, safe to log, never provider content
}

// CheckoutAsset is the static client-side script reference for a provider's
// hosted checkout. No external call is made to produce it.
type CheckoutAsset struct {
	Src       string `json:"src"`
	Integrity string `json:"integrity,omitempty"`
}

// PaymentGateway is the contract every provider adapter implements. Adapters
// translate these calls into provider-native SDK requests and translate native
// responses and errors back into canonical shapes; no SDK type crosses this
// boundary.
//
// Calls may block until the external provider responds. The core applies no
// timeout and never retries a mutating call; both are the caller's policy.
type PaymentGateway interface {
	// Provider returns the registry key this adapter is registered under.
	Provider() string

	// CreateOrder opens an order with the provider. Provider rejections come
	// back as *RequestError.
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error)

	// GetPaymentStatus fetches the full order record by the provider-assigned
	// order id. Unknown ids come back as *NotFoundError.
	GetPaymentStatus(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error)

	// RefundPayment refunds a captured payment, partially when req.Amount is
	// set below the paid amount. Non-refundable states and over-refunds come
	// back as *RequestError; amounts are never clamped.
	RefundPayment(ctx context.Context, providerPaymentID string, req *RefundRequest) (*domain.RefundRecord, error)

	// VerifyWebhookSignature proves the raw payload originated from this
	// provider before anything in it is trusted. timestamp is the optional
	// header-carried value some providers mix into the signature base.
	// Attacker-controlled failures return Valid=false; an error is returned
	// only for configuration bugs such as a missing webhook secret.
	VerifyWebhookSignature(signature string, payload []byte, timestamp string) (*WebhookVerification, error)

	// CheckoutAsset returns the provider's static checkout script reference.
	CheckoutAsset() CheckoutAsset
}
