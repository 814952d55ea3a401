package gateway

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	razorpayutils "github.com/razorpay/razorpay-go/utils"

	"github.com/practicehub/payments-service/internal/domain"
)

const razorpayCheckoutSrc = "https://checkout.razorpay.com/v1/checkout.js"

// razorpayStatuses covers both order statuses (created/attempted/paid) and
// payment statuses (created/authorized/captured/refunded/failed), since the
// dashboard vocabulary mixes the two.
var razorpayStatuses = statusTable{
	"created":    domain.PaymentStatusPending,
	"attempted":  domain.PaymentStatusProcessing,
	"authorized": domain.PaymentStatusProcessing,
	"captured":   domain.PaymentStatusPaid,
	"paid":       domain.PaymentStatusPaid,
	"failed":     domain.PaymentStatusFailed,
	"refunded":   domain.PaymentStatusRefunded,
}

var razorpayRefundStatuses = refundStatusTable{
	"pending":   domain.RefundStatusPending,
	"created":   domain.RefundStatusPending,
	"processed": domain.RefundStatusProcessed,
	"failed":    domain.RefundStatusFailed,
}

// RazorpayGateway implements PaymentGateway using the Razorpay Go SDK.
type RazorpayGateway struct {
	client *razorpay.Client
	config *RazorpayConfig
}

// RazorpayConfig holds the decrypted Razorpay credentials for one tenant.
type RazorpayConfig struct {
	KeyID          string
	KeySecret      string
	WebhookSecret  string
	Environment    string // "sandbox" or "production"
	OrganizationID string
}

// NewRazorpayGateway creates a Razorpay adapter bound to one tenant's keys.
func NewRazorpayGateway(config *RazorpayConfig) (*RazorpayGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("razorpay config is required")
	}
	if config.KeyID == "" || config.KeySecret == "" {
		return nil, fmt.Errorf("razorpay key id and key secret are required")
	}

	return &RazorpayGateway{
		client: razorpay.NewClient(config.KeyID, config.KeySecret),
		config: config,
	}, nil
}

// Provider returns the registry key.
func (g *RazorpayGateway) Provider() string {
	return "razorpay"
}

// CreateOrder opens a Razorpay order. Amounts are sent in paise.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("create order request is required")
	}

	notes := map[string]interface{}{
		"organization_id": g.config.OrganizationID,
	}
	for k, v := range req.Metadata {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":   paise(req.Amount),
		"currency": strings.ToUpper(req.Currency),
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	native, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, g.wrapError("create order", req.Receipt, err)
	}

	order, buildErr := domain.NewPaymentOrder(g.config.OrganizationID, g.Provider(), req.Receipt, req.Amount, req.Currency)
	if buildErr != nil {
		return nil, buildErr
	}
	order.ProviderOrderID = asString(native["id"])
	order.Status = g.normalizeStatus(asString(native["status"]))
	order.Customer = req.Customer
	order.Metadata = req.Metadata
	order.ProviderMetadata = native
	return order, nil
}

// GetPaymentStatus fetches the order and, once a payment has been attempted,
// the latest payment attached to it.
func (g *RazorpayGateway) GetPaymentStatus(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	if providerOrderID == "" {
		return nil, fmt.Errorf("provider order id is required")
	}

	native, err := g.client.Order.Fetch(providerOrderID, nil, nil)
	if err != nil {
		return nil, g.wrapError("get payment status", providerOrderID, err)
	}

	order := &domain.PaymentOrder{
		OrganizationID:   g.config.OrganizationID,
		Provider:         g.Provider(),
		ProviderOrderID:  providerOrderID,
		Receipt:          asString(native["receipt"]),
		Amount:           rupees(native["amount"]),
		AmountRefunded:   rupees(native["amount_refunded"]),
		Currency:         asString(native["currency"]),
		Status:           g.normalizeStatus(asString(native["status"])),
		ProviderMetadata: native,
		UpdatedAt:        time.Now().UTC(),
	}

	// The order object itself never reports failure; the payment does.
	if order.Status != domain.PaymentStatusPending {
		if payment := g.latestPayment(providerOrderID); payment != nil {
			order.ProviderPayment = asString(payment["id"])
			order.Status = g.normalizeStatus(asString(payment["status"]))
		}
	}
	return order, nil
}

// latestPayment returns the most recent payment made against an order, or nil.
func (g *RazorpayGateway) latestPayment(providerOrderID string) map[string]interface{} {
	resp, err := g.client.Order.Payments(providerOrderID, nil, nil)
	if err != nil {
		return nil
	}
	items, ok := resp["items"].([]interface{})
	if !ok || len(items) == 0 {
		return nil
	}
	payment, ok := items[len(items)-1].(map[string]interface{})
	if !ok {
		return nil
	}
	return payment
}

// RefundPayment issues a refund against a captured payment. A zero amount
// requests a full refund.
func (g *RazorpayGateway) RefundPayment(ctx context.Context, providerPaymentID string, req *RefundRequest) (*domain.RefundRecord, error) {
	if providerPaymentID == "" {
		return nil, fmt.Errorf("provider payment id is required")
	}
	if req == nil {
		req = &RefundRequest{}
	}

	notes := map[string]interface{}{}
	if req.Reason != "" {
		notes["reason"] = req.Reason
	}
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	amount := paise(req.Amount)
	if amount == 0 {
		// The SDK sends the amount field unconditionally, and Razorpay
		// rejects amount: 0. A full refund therefore has to ask the
		// provider what remains refundable on the payment.
		payment, fetchErr := g.client.Payment.Fetch(providerPaymentID, nil, nil)
		if fetchErr != nil {
			return nil, g.wrapError("refund payment", providerPaymentID, fetchErr)
		}
		amount = refundablePaise(payment)
		if amount <= 0 {
			return nil, &RequestError{
				Provider: g.Provider(),
				Op:       "refund payment",
				Reason:   "payment has no refundable amount remaining",
			}
		}
	}

	native, err := g.client.Payment.Refund(providerPaymentID, amount, data, nil)
	if err != nil {
		return nil, g.wrapError("refund payment", providerPaymentID, err)
	}

	record := &domain.RefundRecord{
		ID:               asString(native["id"]),
		ProviderRefundID: asString(native["id"]),
		Provider:         g.Provider(),
		Amount:           rupees(native["amount"]),
		Currency:         asString(native["currency"]),
		Status:           normalizeRefundStatus(razorpayRefundStatuses, asString(native["status"])),
		Reason:           req.Reason,
		CreatedAt:        time.Now().UTC(),
	}
	if record.Status == domain.RefundStatusProcessed {
		now := time.Now().UTC()
		record.ProcessedAt = &now
	}
	return record, nil
}

// VerifyWebhookSignature validates the X-Razorpay-Signature HMAC over the raw
// body using the SDK helper, then decodes the event. Razorpay does not mix a
// timestamp into the signature base.
func (g *RazorpayGateway) VerifyWebhookSignature(signature string, payload []byte, _ string) (*WebhookVerification, error) {
	if g.config.WebhookSecret == "" {
		return nil, errMissingWebhookSecret
	}
	if !razorpayutils.VerifyWebhookSignature(string(payload), signature, g.config.WebhookSecret) {
		return &WebhookVerification{Valid: false, Reason: "signature mismatch"}, nil
	}
	return decodeWebhookEvent(payload)
}

// CheckoutAsset returns the hosted checkout script reference.
func (g *RazorpayGateway) CheckoutAsset() CheckoutAsset {
	return CheckoutAsset{Src: razorpayCheckoutSrc}
}

func (g *RazorpayGateway) normalizeStatus(native string) domain.PaymentStatus {
	return normalizeStatus(razorpayStatuses, native)
}

// wrapError converts SDK failures into the two gateway error kinds. Razorpay
// reports unknown ids with a "does not exist" bad-request body.
func (g *RazorpayGateway) wrapError(op, id string, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found") {
		return &NotFoundError{Provider: g.Provider(), ID: id}
	}
	return &RequestError{Provider: g.Provider(), Op: op, Reason: msg, Err: err}
}

// paise converts a major-unit amount to Razorpay's smallest currency unit.
func paise(amount float64) int {
	return int(math.Round(amount * 100))
}

// refundablePaise reports what remains refundable on a fetched payment, in
// the smallest currency unit. The SDK decodes both fields as float64.
func refundablePaise(payment map[string]interface{}) int {
	return nativePaise(payment["amount"]) - nativePaise(payment["amount_refunded"])
}

func nativePaise(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}

// rupees converts a native smallest-unit amount back to major units.
func rupees(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n / 100
	case int:
		return float64(n) / 100
	case int64:
		return float64(n) / 100
	}
	return 0
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
