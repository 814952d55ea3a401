package gateway

import (
	"context"
	"testing"

	"github.com/stripe/stripe-go/v82"
)

func TestNewStripeGateway_PerTenantKeys(t *testing.T) {
	a, err := NewStripeGateway(&StripeConfig{SecretKey: "sk_test_org_a", OrganizationID: "org-a"})
	if err != nil {
		t.Fatalf("NewStripeGateway: %v", err)
	}
	b, err := NewStripeGateway(&StripeConfig{SecretKey: "sk_test_org_b", OrganizationID: "org-b"})
	if err != nil {
		t.Fatalf("NewStripeGateway: %v", err)
	}

	// Constructing an adapter must never write the package-global key; a
	// second tenant's construction would silently repoint every cached
	// adapter at its account.
	if stripe.Key != "" {
		t.Errorf("package-global stripe.Key mutated to %q", stripe.Key)
	}
	if got := a.api.PaymentIntents.Key; got != "sk_test_org_a" {
		t.Errorf("adapter a key = %q, want sk_test_org_a", got)
	}
	if got := b.api.PaymentIntents.Key; got != "sk_test_org_b" {
		t.Errorf("adapter b key = %q, want sk_test_org_b", got)
	}
	if a.api.Refunds.Key != "sk_test_org_a" {
		t.Errorf("refund client key = %q, want sk_test_org_a", a.api.Refunds.Key)
	}
}

func TestNewStripeGateway_RequiresSecretKey(t *testing.T) {
	if _, err := NewStripeGateway(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewStripeGateway(&StripeConfig{}); err == nil {
		t.Error("expected error for missing secret key")
	}
}

func TestMutationContext_DetachesCancellation(t *testing.T) {
	type ctxKey struct{}
	ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "trace-1"))
	detached := mutationContext(ctx)
	cancel()

	if err := detached.Err(); err != nil {
		t.Fatalf("detached context cancelled: %v", err)
	}
	select {
	case <-detached.Done():
		t.Fatal("detached context must not observe caller cancellation")
	default:
	}
	// Tracing and request-scoped values still flow through
	if v := detached.Value(ctxKey{}); v != "trace-1" {
		t.Errorf("context value lost, got %v", v)
	}
}
