package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/practicehub/payments-service/internal/domain"
)

func newTestMockGateway() *MockGateway {
	return NewMockGateway(&MockConfig{
		WebhookSecret:  "mock-webhook-secret",
		OrganizationID: "org-001",
	})
}

func TestMockGateway_OrderLifecycle(t *testing.T) {
	g := newTestMockGateway()
	ctx := context.Background()

	order, err := g.CreateOrder(ctx, &CreateOrderRequest{
		Receipt:  "ord_1",
		Amount:   100.00,
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != domain.PaymentStatusPending {
		t.Errorf("Expected new order pending, got %s", order.Status)
	}
	if order.ProviderOrderID == "" {
		t.Fatal("Expected provider order id")
	}

	// Simulate the customer completing payment on the provider side
	if err := g.SetNativeStatus(order.ProviderOrderID, "captured"); err != nil {
		t.Fatalf("SetNativeStatus failed: %v", err)
	}

	got, err := g.GetPaymentStatus(ctx, order.ProviderOrderID)
	if err != nil {
		t.Fatalf("GetPaymentStatus failed: %v", err)
	}
	if got.Status != domain.PaymentStatusPaid {
		t.Errorf("Expected paid after capture, got %s", got.Status)
	}
	if got.Amount != 100.00 {
		t.Errorf("Expected amount 100.00, got %.2f", got.Amount)
	}
}

func TestMockGateway_PartialThenFullRefund(t *testing.T) {
	g := newTestMockGateway()
	ctx := context.Background()

	order, _ := g.CreateOrder(ctx, &CreateOrderRequest{Receipt: "ord_1", Amount: 100.00, Currency: "USD"})
	g.SetNativeStatus(order.ProviderOrderID, "captured")

	refund, err := g.RefundPayment(ctx, order.ProviderOrderID, &RefundRequest{Amount: 40.00})
	if err != nil {
		t.Fatalf("partial refund failed: %v", err)
	}
	if refund.Status != domain.RefundStatusProcessed {
		t.Errorf("Expected processed refund, got %s", refund.Status)
	}
	if refund.Amount != 40.00 {
		t.Errorf("Expected refund amount 40.00, got %.2f", refund.Amount)
	}

	// After a partial refund the order is still paid
	got, _ := g.GetPaymentStatus(ctx, order.ProviderOrderID)
	if got.Status != domain.PaymentStatusPaid {
		t.Errorf("Expected order to stay paid after partial refund, got %s", got.Status)
	}
	if got.AmountRefunded != 40.00 {
		t.Errorf("Expected 40.00 refunded, got %.2f", got.AmountRefunded)
	}

	// Refunding with no amount takes the remainder and closes the order
	refund, err = g.RefundPayment(ctx, order.ProviderOrderID, &RefundRequest{})
	if err != nil {
		t.Fatalf("remainder refund failed: %v", err)
	}
	if refund.Amount != 60.00 {
		t.Errorf("Expected remainder 60.00, got %.2f", refund.Amount)
	}
	got, _ = g.GetPaymentStatus(ctx, order.ProviderOrderID)
	if got.Status != domain.PaymentStatusRefunded {
		t.Errorf("Expected refunded after full refund, got %s", got.Status)
	}
}

func TestMockGateway_RefundRejections(t *testing.T) {
	g := newTestMockGateway()
	ctx := context.Background()

	order, _ := g.CreateOrder(ctx, &CreateOrderRequest{Receipt: "ord_2", Amount: 100.00, Currency: "USD"})

	// Not yet paid
	var reqErr *RequestError
	_, err := g.RefundPayment(ctx, order.ProviderOrderID, &RefundRequest{Amount: 10})
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError for unpaid order, got %v", err)
	}

	g.SetNativeStatus(order.ProviderOrderID, "captured")

	// Over-refund fails, it is never clamped
	_, err = g.RefundPayment(ctx, order.ProviderOrderID, &RefundRequest{Amount: 100.01})
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError for over-refund, got %v", err)
	}

	// Unknown payment id
	var nfErr *NotFoundError
	_, err = g.RefundPayment(ctx, "order_mock_nonexistent", &RefundRequest{Amount: 10})
	if !errors.As(err, &nfErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
}

func TestMockGateway_GetPaymentStatus_NotFound(t *testing.T) {
	g := newTestMockGateway()

	var nfErr *NotFoundError
	_, err := g.GetPaymentStatus(context.Background(), "order_mock_missing")
	if !errors.As(err, &nfErr) {
		t.Fatalf("Expected NotFoundError, got %v", err)
	}
	if nfErr.ID != "order_mock_missing" {
		t.Errorf("Expected id in error, got %s", nfErr.ID)
	}
}

func TestMockGateway_WebhookRoundTrip(t *testing.T) {
	g := newTestMockGateway()

	payload := []byte(`{"event":"payment.captured","payload":{"order_id":"order_mock_x1"}}`)
	sig := g.SignWebhook(payload, "1700000000")

	v, err := g.VerifyWebhookSignature(sig, payload, "1700000000")
	if err != nil {
		t.Fatalf("VerifyWebhookSignature failed: %v", err)
	}
	if !v.Valid {
		t.Fatalf("Expected valid webhook, got reason %q", v.Reason)
	}
	if v.EventType != "payment.captured" {
		t.Errorf("Expected payment.captured, got %s", v.EventType)
	}

	// A tampered signature must not verify
	flipped := "0"
	if sig[0] == '0' {
		flipped = "1"
	}
	v, _ = g.VerifyWebhookSignature(flipped+sig[1:], payload, "1700000000")
	if v.Valid {
		t.Error("Tampered signature must not verify")
	}
}

func TestMockGateway_CreateOrder_InvalidAmount(t *testing.T) {
	g := newTestMockGateway()

	var reqErr *RequestError
	_, err := g.CreateOrder(context.Background(), &CreateOrderRequest{Receipt: "ord_3", Amount: -5, Currency: "USD"})
	if !errors.As(err, &reqErr) {
		t.Fatalf("Expected RequestError for negative amount, got %v", err)
	}
}
