package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/practicehub/payments-service/internal/domain"
)

const stripeCheckoutSrc = "https://js.stripe.com/v3/"

var stripeStatuses = statusTable{
	"requires_payment_method": domain.PaymentStatusPending,
	"requires_confirmation":   domain.PaymentStatusPending,
	"requires_action":         domain.PaymentStatusProcessing,
	"requires_capture":        domain.PaymentStatusProcessing,
	"processing":              domain.PaymentStatusProcessing,
	"succeeded":               domain.PaymentStatusPaid,
	"canceled":                domain.PaymentStatusCancelled,
	"payment_failed":          domain.PaymentStatusFailed,
}

var stripeRefundStatuses = refundStatusTable{
	"pending":         domain.RefundStatusPending,
	"requires_action": domain.RefundStatusPending,
	"succeeded":       domain.RefundStatusProcessed,
	"failed":          domain.RefundStatusFailed,
	"canceled":        domain.RefundStatusFailed,
}

// StripeGateway implements PaymentGateway using Stripe PaymentIntents. Each
// instance carries its own API client; the package-global stripe.Key is never
// touched, so tenants with different keys can share a process.
type StripeGateway struct {
	config *StripeConfig
	api    *client.API
}

// StripeConfig holds the decrypted Stripe credentials for one tenant.
type StripeConfig struct {
	SecretKey      string
	WebhookSecret  string
	Environment    string // "sandbox" ("test") or "production" ("live")
	OrganizationID string
}

// NewStripeGateway creates a Stripe adapter bound to one tenant's keys.
func NewStripeGateway(config *StripeConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	api := &client.API{}
	api.Init(config.SecretKey, nil)

	return &StripeGateway{config: config, api: api}, nil
}

// Provider returns the registry key.
func (g *StripeGateway) Provider() string {
	return "stripe"
}

// CreateOrder opens a PaymentIntent. The client secret is exposed as the
// session id the frontend uses to complete the payment.
func (g *StripeGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("create order request is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(stripeCents(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"receipt":         req.Receipt,
			"organization_id": g.config.OrganizationID,
		},
	}
	params.Context = mutationContext(ctx)
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}
	if req.Customer.Email != "" {
		params.ReceiptEmail = stripe.String(req.Customer.Email)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, g.wrapError("create order", req.Receipt, err)
	}

	order, buildErr := domain.NewPaymentOrder(g.config.OrganizationID, g.Provider(), req.Receipt, req.Amount, req.Currency)
	if buildErr != nil {
		return nil, buildErr
	}
	order.ProviderOrderID = pi.ID
	order.SessionID = pi.ClientSecret
	order.Status = g.normalizeStatus(string(pi.Status))
	order.Customer = req.Customer
	order.Metadata = req.Metadata
	order.ProviderMetadata = map[string]any{"payment_intent": pi.ID, "livemode": pi.Livemode}
	return order, nil
}

// GetPaymentStatus fetches the PaymentIntent by id.
func (g *StripeGateway) GetPaymentStatus(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	if providerOrderID == "" {
		return nil, fmt.Errorf("provider order id is required")
	}

	pi, err := g.api.PaymentIntents.Get(providerOrderID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, g.wrapError("get payment status", providerOrderID, err)
	}

	order := &domain.PaymentOrder{
		OrganizationID:  g.config.OrganizationID,
		Provider:        g.Provider(),
		ProviderOrderID: pi.ID,
		ProviderPayment: pi.ID,
		Receipt:         pi.Metadata["receipt"],
		Amount:          float64(pi.Amount) / 100,
		Currency:        strings.ToUpper(string(pi.Currency)),
		Status:          g.normalizeStatus(string(pi.Status)),
		SessionID:       pi.ClientSecret,
		Metadata:        pi.Metadata,
		UpdatedAt:       time.Now().UTC(),
	}
	if pi.LastPaymentError != nil {
		order.Status = domain.PaymentStatusFailed
	}
	return order, nil
}

// RefundPayment refunds a PaymentIntent, partially when an amount is given.
func (g *StripeGateway) RefundPayment(ctx context.Context, providerPaymentID string, req *RefundRequest) (*domain.RefundRecord, error) {
	if providerPaymentID == "" {
		return nil, fmt.Errorf("provider payment id is required")
	}
	if req == nil {
		req = &RefundRequest{}
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(providerPaymentID),
		Metadata:      map[string]string{},
	}
	params.Context = mutationContext(ctx)
	if req.Amount > 0 {
		params.Amount = stripe.Int64(stripeCents(req.Amount))
	}
	if req.Reason != "" {
		params.Metadata["reason"] = req.Reason
	}
	for k, v := range req.Notes {
		params.Metadata[k] = v
	}

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, g.wrapError("refund payment", providerPaymentID, err)
	}

	record := &domain.RefundRecord{
		ID:               r.ID,
		ProviderRefundID: r.ID,
		Provider:         g.Provider(),
		Amount:           float64(r.Amount) / 100,
		Currency:         strings.ToUpper(string(r.Currency)),
		Status:           normalizeRefundStatus(stripeRefundStatuses, string(r.Status)),
		Reason:           req.Reason,
		CreatedAt:        time.Now().UTC(),
	}
	if record.Status == domain.RefundStatusProcessed {
		now := time.Now().UTC()
		record.ProcessedAt = &now
	}
	return record, nil
}

// VerifyWebhookSignature validates the Stripe-Signature header over the raw
// body. Stripe carries its timestamp inside the header, so the separate
// timestamp argument is ignored.
func (g *StripeGateway) VerifyWebhookSignature(signature string, payload []byte, _ string) (*WebhookVerification, error) {
	if g.config.WebhookSecret == "" {
		return nil, errMissingWebhookSecret
	}

	event, err := webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
	if err != nil {
		return &WebhookVerification{Valid: false, Reason: "signature mismatch"}, nil
	}

	var data map[string]any
	if err := json.Unmarshal(event.Data.Raw, &data); err != nil {
		return &WebhookVerification{Valid: false, Reason: "payload parse failure"}, nil
	}
	return &WebhookVerification{
		Valid:     true,
		EventType: string(event.Type),
		Event:     data,
	}, nil
}

// CheckoutAsset returns the Stripe.js script reference.
func (g *StripeGateway) CheckoutAsset() CheckoutAsset {
	return CheckoutAsset{Src: stripeCheckoutSrc}
}

func (g *StripeGateway) normalizeStatus(native string) domain.PaymentStatus {
	return normalizeStatus(stripeStatuses, native)
}

func (g *StripeGateway) wrapError(op, id string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return &NotFoundError{Provider: g.Provider(), ID: id}
		}
		return &RequestError{Provider: g.Provider(), Op: op, Reason: stripeErr.Msg, Err: err}
	}
	return &RequestError{Provider: g.Provider(), Op: op, Reason: err.Error(), Err: err}
}

// stripeCents converts a major-unit amount to Stripe's smallest currency unit.
func stripeCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// mutationContext detaches caller cancellation from a mutating provider call.
// Once a charge or refund is in flight, aborting the HTTP exchange mid-request
// leaves the provider-side outcome unknown; the call runs to completion and
// cancellation only governs who is still waiting for the answer.
func mutationContext(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
