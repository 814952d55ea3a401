package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/practicehub/payments-service/internal/domain"
)

const alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAlphanumeric(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumericChars[rand.Intn(len(alphanumericChars))]
	}
	return string(b)
}

var mockStatuses = statusTable{
	"created":    domain.PaymentStatusPending,
	"authorized": domain.PaymentStatusProcessing,
	"captured":   domain.PaymentStatusPaid,
	"failed":     domain.PaymentStatusFailed,
	"cancelled":  domain.PaymentStatusCancelled,
	"refunded":   domain.PaymentStatusRefunded,
}

// mockOrder is the provider-side record the mock keeps per order.
type mockOrder struct {
	receipt        string
	amount         float64
	amountRefunded float64
	currency       string
	nativeStatus   string
	metadata       map[string]string
}

// MockGateway implements the full contract in memory. It backs tests and load
// environments: orders live in a sync.Map, webhooks are HMAC-signed with the
// configured secret, and native statuses can be driven from the outside to
// simulate provider-side settlement.
type MockGateway struct {
	config *MockConfig
	orders sync.Map // providerOrderID -> *mockOrder
	mu     sync.Mutex
}

// MockConfig holds configuration for the mock gateway.
type MockConfig struct {
	WebhookSecret  string
	OrganizationID string
	// DelayMs simulates provider latency on each call.
	DelayMs int
}

// NewMockGateway creates a mock adapter.
func NewMockGateway(config *MockConfig) *MockGateway {
	if config == nil {
		config = &MockConfig{WebhookSecret: "mock-webhook-secret"}
	}
	return &MockGateway{config: config}
}

// Provider returns the registry key.
func (g *MockGateway) Provider() string {
	return "mock"
}

func (g *MockGateway) delay(ctx context.Context) error {
	if g.config.DelayMs <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		return nil
	}
}

// CreateOrder opens an in-memory order in the native "created" state.
func (g *MockGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("create order request is required")
	}
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, &RequestError{Provider: g.Provider(), Op: "create order", Reason: "amount must be positive"}
	}

	providerOrderID := fmt.Sprintf("order_mock_%s", randomAlphanumeric(14))
	g.orders.Store(providerOrderID, &mockOrder{
		receipt:      req.Receipt,
		amount:       req.Amount,
		currency:     req.Currency,
		nativeStatus: "created",
		metadata:     req.Metadata,
	})

	order, err := domain.NewPaymentOrder(g.config.OrganizationID, g.Provider(), req.Receipt, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	order.ProviderOrderID = providerOrderID
	order.Status = g.normalizeStatus("created")
	order.Customer = req.Customer
	order.Metadata = req.Metadata
	return order, nil
}

// GetPaymentStatus reports the order's current native status, normalized.
func (g *MockGateway) GetPaymentStatus(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	v, ok := g.orders.Load(providerOrderID)
	if !ok {
		return nil, &NotFoundError{Provider: g.Provider(), ID: providerOrderID}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	mo := v.(*mockOrder)
	return &domain.PaymentOrder{
		OrganizationID:  g.config.OrganizationID,
		Provider:        g.Provider(),
		ProviderOrderID: providerOrderID,
		ProviderPayment: providerOrderID,
		Receipt:         mo.receipt,
		Amount:          mo.amount,
		AmountRefunded:  mo.amountRefunded,
		Currency:        mo.currency,
		Status:          g.normalizeStatus(mo.nativeStatus),
		Metadata:        mo.metadata,
		UpdatedAt:       time.Now().UTC(),
	}, nil
}

// RefundPayment refunds a captured order. Over-refunds fail, never clamp.
func (g *MockGateway) RefundPayment(ctx context.Context, providerPaymentID string, req *RefundRequest) (*domain.RefundRecord, error) {
	if err := g.delay(ctx); err != nil {
		return nil, err
	}
	v, ok := g.orders.Load(providerPaymentID)
	if !ok {
		return nil, &NotFoundError{Provider: g.Provider(), ID: providerPaymentID}
	}
	if req == nil {
		req = &RefundRequest{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	mo := v.(*mockOrder)
	if g.normalizeStatus(mo.nativeStatus) != domain.PaymentStatusPaid {
		return nil, &RequestError{Provider: g.Provider(), Op: "refund payment", Reason: "payment is not in a refundable state"}
	}

	amount := req.Amount
	if amount == 0 {
		amount = mo.amount - mo.amountRefunded
	}
	if amount <= 0 || mo.amountRefunded+amount > mo.amount {
		return nil, &RequestError{Provider: g.Provider(), Op: "refund payment", Reason: "refund amount exceeds amount paid"}
	}

	mo.amountRefunded += amount
	if mo.amountRefunded >= mo.amount {
		mo.nativeStatus = "refunded"
	}

	now := time.Now().UTC()
	return &domain.RefundRecord{
		ID:               fmt.Sprintf("rfnd_mock_%s", randomAlphanumeric(14)),
		ProviderRefundID: fmt.Sprintf("rfnd_mock_%s", randomAlphanumeric(14)),
		Provider:         g.Provider(),
		Amount:           amount,
		Currency:         mo.currency,
		Status:           domain.RefundStatusProcessed,
		Reason:           req.Reason,
		ProcessedAt:      &now,
		CreatedAt:        now,
	}, nil
}

// VerifyWebhookSignature runs the shared HMAC verification.
func (g *MockGateway) VerifyWebhookSignature(signature string, payload []byte, timestamp string) (*WebhookVerification, error) {
	return verifyAndDecode(g.config.WebhookSecret, signature, payload, timestamp)
}

// CheckoutAsset returns a placeholder script reference.
func (g *MockGateway) CheckoutAsset() CheckoutAsset {
	return CheckoutAsset{Src: "https://mock.practicehub.dev/checkout.js"}
}

func (g *MockGateway) normalizeStatus(native string) domain.PaymentStatus {
	return normalizeStatus(mockStatuses, native)
}

// SetNativeStatus drives provider-side transitions from tests and simulations,
// e.g. marking an order "captured" to mimic settlement.
func (g *MockGateway) SetNativeStatus(providerOrderID, native string) error {
	v, ok := g.orders.Load(providerOrderID)
	if !ok {
		return &NotFoundError{Provider: g.Provider(), ID: providerOrderID}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	v.(*mockOrder).nativeStatus = native
	return nil
}

// SignWebhook produces a signature the verifier accepts for the given payload,
// matching what the real provider would send.
func (g *MockGateway) SignWebhook(payload []byte, timestamp string) string {
	return computeSignature(g.config.WebhookSecret, payload, timestamp)
}
