package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"

	"github.com/practicehub/payments-service/internal/domain"
)

// flakyGateway fails every network call with a configurable error.
type flakyGateway struct {
	err   error
	calls int
}

func (g *flakyGateway) Provider() string { return "flaky" }

func (g *flakyGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &domain.PaymentOrder{Status: domain.PaymentStatusPending}, nil
}

func (g *flakyGateway) GetPaymentStatus(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &domain.PaymentOrder{Status: domain.PaymentStatusPending}, nil
}

func (g *flakyGateway) RefundPayment(ctx context.Context, providerPaymentID string, req *RefundRequest) (*domain.RefundRecord, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &domain.RefundRecord{Status: domain.RefundStatusProcessed}, nil
}

func (g *flakyGateway) VerifyWebhookSignature(signature string, payload []byte, timestamp string) (*WebhookVerification, error) {
	return &WebhookVerification{Valid: false}, nil
}

func (g *flakyGateway) CheckoutAsset() CheckoutAsset {
	return CheckoutAsset{Src: "https://flaky.example/checkout.js"}
}

func TestBreakerGateway_OpensOnConsecutiveFailures(t *testing.T) {
	inner := &flakyGateway{err: errors.New("connection reset")}
	g := NewBreakerGateway(inner)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := g.GetPaymentStatus(ctx, "order_x"); err == nil {
			t.Fatal("Expected failure")
		}
	}

	// Breaker is now open; the inner adapter must not be reached.
	callsBefore := inner.calls
	_, err := g.GetPaymentStatus(ctx, "order_x")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Expected ErrOpenState, got %v", err)
	}
	if inner.calls != callsBefore {
		t.Error("Open breaker must not call the inner adapter")
	}
}

func TestBreakerGateway_BusinessErrorsDoNotTrip(t *testing.T) {
	inner := &flakyGateway{err: &RequestError{Provider: "flaky", Op: "refund payment", Reason: "already refunded"}}
	g := NewBreakerGateway(inner)
	ctx := context.Background()

	// Provider rejections are answers, not outages; the breaker stays closed
	// no matter how many arrive.
	for i := 0; i < 20; i++ {
		_, err := g.RefundPayment(ctx, "pay_x", &RefundRequest{Amount: 1})
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			t.Fatalf("Expected RequestError passthrough, got %v", err)
		}
	}

	inner.err = &NotFoundError{Provider: "flaky", ID: "order_y"}
	for i := 0; i < 20; i++ {
		_, err := g.GetPaymentStatus(ctx, "order_y")
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("Expected NotFoundError passthrough, got %v", err)
		}
	}
}

func TestBreakerGateway_LocalOperationsBypass(t *testing.T) {
	inner := &flakyGateway{err: errors.New("down")}
	g := NewBreakerGateway(inner)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		g.CreateOrder(ctx, &CreateOrderRequest{Receipt: "r", Amount: 1, Currency: "USD"})
	}

	// Even with the breaker open, signature verification and checkout assets
	// are local and keep working.
	if _, err := g.VerifyWebhookSignature("sig", []byte("{}"), ""); err != nil {
		t.Errorf("VerifyWebhookSignature should bypass the breaker: %v", err)
	}
	if asset := g.CheckoutAsset(); asset.Src == "" {
		t.Error("CheckoutAsset should bypass the breaker")
	}
}
