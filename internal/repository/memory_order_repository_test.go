package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/practicehub/payments-service/internal/domain"
)

func newStoredOrder(t *testing.T, orgID, receipt string) *domain.PaymentOrder {
	t.Helper()
	order, err := domain.NewPaymentOrder(orgID, "mock", receipt, 250.00, "INR")
	if err != nil {
		t.Fatalf("NewPaymentOrder: %v", err)
	}
	order.ProviderOrderID = "order_" + order.ID[:8]
	return order
}

func TestMemoryOrderRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newStoredOrder(t, "org-001", "rcpt-1")
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	got, err := repo.GetOrder(ctx, "org-001", order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Receipt != "rcpt-1" || got.Amount != 250.00 {
		t.Errorf("unexpected order %+v", got)
	}
}

func TestMemoryOrderRepository_DuplicateReceipt(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	if err := repo.CreateOrder(ctx, newStoredOrder(t, "org-001", "rcpt-1")); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	err := repo.CreateOrder(ctx, newStoredOrder(t, "org-001", "rcpt-1"))
	if !errors.Is(err, domain.ErrOrderAlreadyExists) {
		t.Errorf("expected ErrOrderAlreadyExists, got %v", err)
	}

	// Same receipt under another organization is a different order
	if err := repo.CreateOrder(ctx, newStoredOrder(t, "org-002", "rcpt-1")); err != nil {
		t.Errorf("receipt should be scoped per organization, got %v", err)
	}
}

func TestMemoryOrderRepository_TenantIsolation(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newStoredOrder(t, "org-001", "rcpt-1")
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if _, err := repo.GetOrder(ctx, "org-002", order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("order must not be visible to another organization, got %v", err)
	}
	if _, err := repo.GetOrderByReceipt(ctx, "org-002", "rcpt-1"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("receipt lookup must not cross organizations, got %v", err)
	}
}

func TestMemoryOrderRepository_GetByReceiptAndProviderOrderID(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newStoredOrder(t, "org-001", "rcpt-1")
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	byReceipt, err := repo.GetOrderByReceipt(ctx, "org-001", "rcpt-1")
	if err != nil {
		t.Fatalf("GetOrderByReceipt: %v", err)
	}
	if byReceipt.ID != order.ID {
		t.Errorf("receipt lookup returned %s, want %s", byReceipt.ID, order.ID)
	}

	byProvider, err := repo.GetOrderByProviderOrderID(ctx, order.ProviderOrderID)
	if err != nil {
		t.Fatalf("GetOrderByProviderOrderID: %v", err)
	}
	if byProvider.ID != order.ID {
		t.Errorf("provider order lookup returned %s, want %s", byProvider.ID, order.ID)
	}

	if _, err := repo.GetOrderByProviderOrderID(ctx, "order_missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestMemoryOrderRepository_UpdateOrder(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newStoredOrder(t, "org-001", "rcpt-1")
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	order.Status = domain.PaymentStatusPaid
	if err := repo.UpdateOrder(ctx, order); err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	got, err := repo.GetOrder(ctx, "org-001", order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != domain.PaymentStatusPaid {
		t.Errorf("status = %s, want paid", got.Status)
	}

	missing := newStoredOrder(t, "org-001", "rcpt-2")
	if err := repo.UpdateOrder(ctx, missing); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound for unknown order, got %v", err)
	}
}

func TestMemoryOrderRepository_CopySemantics(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newStoredOrder(t, "org-001", "rcpt-1")
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// Mutating the caller's copy must not leak into the stored record
	order.Status = domain.PaymentStatusFailed
	got, err := repo.GetOrder(ctx, "org-001", order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != domain.PaymentStatusPending {
		t.Errorf("stored order mutated through caller pointer, status = %s", got.Status)
	}

	// Nor the other way around
	got.Status = domain.PaymentStatusCancelled
	again, _ := repo.GetOrder(ctx, "org-001", order.ID)
	if again.Status != domain.PaymentStatusPending {
		t.Errorf("returned order aliased storage, status = %s", again.Status)
	}
}

func TestMemoryOrderRepository_Refunds(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	order := newStoredOrder(t, "org-001", "rcpt-1")
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	now := time.Now().UTC()
	for i, amount := range []float64{100.00, 150.00} {
		err := repo.CreateRefund(ctx, &domain.RefundRecord{
			ID:               order.ID + "-r" + string(rune('1'+i)),
			OrderID:          order.ID,
			ProviderRefundID: "rfnd_" + string(rune('1'+i)),
			Provider:         "mock",
			Amount:           amount,
			Currency:         "INR",
			Status:           domain.RefundStatusProcessed,
			ProcessedAt:      &now,
			CreatedAt:        now,
		})
		if err != nil {
			t.Fatalf("CreateRefund: %v", err)
		}
	}

	refunds, err := repo.ListRefunds(ctx, order.ID)
	if err != nil {
		t.Fatalf("ListRefunds: %v", err)
	}
	if len(refunds) != 2 {
		t.Fatalf("len(refunds) = %d, want 2", len(refunds))
	}
	if refunds[0].Amount != 100.00 || refunds[1].Amount != 150.00 {
		t.Errorf("refunds out of order: %+v", refunds)
	}

	none, err := repo.ListRefunds(ctx, "missing-order")
	if err != nil || len(none) != 0 {
		t.Errorf("refunds for unknown order = %v, %v", none, err)
	}
}
