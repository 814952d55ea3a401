package domain

import (
	"errors"
	"testing"
)

func TestNewPaymentOrder(t *testing.T) {
	order, err := NewPaymentOrder("org-001", "razorpay", "rcpt-001", 1500.00, "inr")
	if err != nil {
		t.Fatalf("NewPaymentOrder failed: %v", err)
	}

	if order.ID == "" {
		t.Error("Expected non-empty order ID")
	}
	if order.Status != PaymentStatusPending {
		t.Errorf("Expected status pending, got %s", order.Status)
	}
	if order.Currency != "INR" {
		t.Errorf("Expected currency normalized to INR, got %s", order.Currency)
	}
	if order.AmountRefunded != 0 {
		t.Errorf("Expected zero refunded amount, got %f", order.AmountRefunded)
	}
}

func TestNewPaymentOrder_Validation(t *testing.T) {
	tests := []struct {
		name     string
		orgID    string
		receipt  string
		amount   float64
		currency string
		wantErr  error
	}{
		{"zero amount", "org-001", "rcpt-1", 0, "INR", ErrInvalidAmount},
		{"negative amount", "org-001", "rcpt-1", -10, "INR", ErrInvalidAmount},
		{"bad currency", "org-001", "rcpt-1", 100, "RUPEES", ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPaymentOrder(tt.orgID, "razorpay", tt.receipt, tt.amount, tt.currency)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := NewPaymentOrder("", "razorpay", "rcpt-1", 100, "INR"); err == nil {
		t.Error("Expected error for missing organization")
	}
	if _, err := NewPaymentOrder("org-001", "razorpay", "", 100, "INR"); err == nil {
		t.Error("Expected error for missing receipt")
	}
}

func TestPaymentOrder_ApplyStatus(t *testing.T) {
	order, _ := NewPaymentOrder("org-001", "mock", "rcpt-1", 100, "USD")

	if err := order.ApplyStatus(PaymentStatusProcessing); err != nil {
		t.Fatalf("pending -> processing failed: %v", err)
	}
	if err := order.ApplyStatus(PaymentStatusPaid); err != nil {
		t.Fatalf("processing -> paid failed: %v", err)
	}
	if order.PaidAt == nil {
		t.Error("Expected PaidAt to be set when order becomes paid")
	}

	// Paid may only move to refunded
	if err := order.ApplyStatus(PaymentStatusFailed); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Errorf("Expected ErrInvalidOrderStatus for paid -> failed, got %v", err)
	}
	if err := order.ApplyStatus(PaymentStatusRefunded); err != nil {
		t.Fatalf("paid -> refunded failed: %v", err)
	}

	// Terminal states never regress
	if err := order.ApplyStatus(PaymentStatusPending); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Errorf("Expected ErrInvalidOrderStatus for refunded -> pending, got %v", err)
	}

	// Same status is a no-op
	if err := order.ApplyStatus(PaymentStatusRefunded); err != nil {
		t.Errorf("Expected no-op for same status, got %v", err)
	}
}

func TestPaymentOrder_RecordRefund_Partial(t *testing.T) {
	order, _ := NewPaymentOrder("org-001", "mock", "ord_1", 100.00, "USD")
	order.ApplyStatus(PaymentStatusPaid)

	if err := order.RecordRefund(40.00); err != nil {
		t.Fatalf("partial refund failed: %v", err)
	}
	if order.Status != PaymentStatusPaid {
		t.Errorf("Expected order to stay paid after partial refund, got %s", order.Status)
	}
	if order.AmountRefunded != 40.00 {
		t.Errorf("Expected refunded amount 40.00, got %.2f", order.AmountRefunded)
	}

	// Refunding the remainder flips the order to refunded
	if err := order.RecordRefund(60.00); err != nil {
		t.Fatalf("remainder refund failed: %v", err)
	}
	if order.Status != PaymentStatusRefunded {
		t.Errorf("Expected refunded after cumulative full refund, got %s", order.Status)
	}
}

func TestPaymentOrder_RecordRefund_Bounds(t *testing.T) {
	order, _ := NewPaymentOrder("org-001", "mock", "ord_2", 100.00, "USD")

	// Not refundable before payment
	if err := order.RecordRefund(10); !errors.Is(err, ErrInvalidOrderStatus) {
		t.Errorf("Expected ErrInvalidOrderStatus on pending order, got %v", err)
	}

	order.ApplyStatus(PaymentStatusPaid)

	if err := order.RecordRefund(150.00); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for over-refund, got %v", err)
	}
	if err := order.RecordRefund(0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for zero refund, got %v", err)
	}

	order.RecordRefund(70.00)
	if err := order.RecordRefund(40.00); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount for cumulative over-refund, got %v", err)
	}
}

func TestPaymentOrder_IsRefundable(t *testing.T) {
	order, _ := NewPaymentOrder("org-001", "mock", "ord_3", 100, "USD")
	if order.IsRefundable() {
		t.Error("Pending order should not be refundable")
	}

	order.ApplyStatus(PaymentStatusPaid)
	if !order.IsRefundable() {
		t.Error("Paid order should be refundable")
	}
	if order.IsFinal() {
		t.Error("Paid order is not terminal")
	}

	order.ApplyStatus(PaymentStatusRefunded)
	if order.IsRefundable() {
		t.Error("Refunded order should not be refundable")
	}
	if !order.IsFinal() {
		t.Error("Refunded order is terminal")
	}
}
