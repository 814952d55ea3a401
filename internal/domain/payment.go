package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the canonical, provider-agnostic payment lifecycle state.
// Every adapter maps its native vocabulary into this enum.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// RefundStatus is the canonical status of a refund record.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "pending"
	RefundStatusProcessed RefundStatus = "processed"
	RefundStatusFailed    RefundStatus = "failed"
)

var (
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrOrderAlreadyExists = errors.New("payment order already exists for this receipt")
	ErrInvalidOrderStatus = errors.New("invalid payment order status transition")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidCurrency    = errors.New("currency must be a three-letter ISO code")
)

// Customer carries the buyer details an adapter forwards to the provider.
type Customer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PaymentOrder is the provider-agnostic record produced by order creation and
// status lookups. ProviderOrderID is the gateway-assigned id; Receipt is the
// caller-supplied order id, unique per organization.
type PaymentOrder struct {
	ID               string            `json:"id"`
	OrganizationID   string            `json:"organization_id"`
	Provider         string            `json:"provider"`
	ProviderOrderID  string            `json:"provider_order_id"`
	ProviderPayment  string            `json:"provider_payment_id,omitempty"`
	Receipt          string            `json:"receipt"`
	Amount           float64           `json:"amount"`
	AmountRefunded   float64           `json:"amount_refunded"`
	Currency         string            `json:"currency"`
	Status           PaymentStatus     `json:"status"`
	SessionID        string            `json:"session_id,omitempty"`
	RedirectURL      string            `json:"redirect_url,omitempty"`
	Customer         Customer          `json:"customer,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	ProviderMetadata map[string]any    `json:"provider_metadata,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	PaidAt           *time.Time        `json:"paid_at,omitempty"`
}

// NewPaymentOrder validates the caller-supplied fields and builds a pending order.
func NewPaymentOrder(orgID, provider, receipt string, amount float64, currency string) (*PaymentOrder, error) {
	if orgID == "" {
		return nil, errors.New("organization_id is required")
	}
	if receipt == "" {
		return nil, errors.New("receipt is required")
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	now := time.Now().UTC()
	return &PaymentOrder{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Provider:       provider,
		Receipt:        receipt,
		Amount:         amount,
		Currency:       strings.ToUpper(currency),
		Status:         PaymentStatusPending,
		Metadata:       make(map[string]string),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ApplyStatus moves the order to the status reported by the provider.
// Terminal states other than paid never regress.
func (o *PaymentOrder) ApplyStatus(status PaymentStatus) error {
	if o.Status == status {
		return nil
	}
	switch o.Status {
	case PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return ErrInvalidOrderStatus
	case PaymentStatusPaid:
		if status != PaymentStatusRefunded {
			return ErrInvalidOrderStatus
		}
	}
	if status == PaymentStatusPaid {
		now := time.Now().UTC()
		o.PaidAt = &now
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordRefund accumulates a processed refund amount. The order stays paid for
// partial refunds; only a cumulative full refund moves it to refunded.
func (o *PaymentOrder) RecordRefund(amount float64) error {
	if o.Status != PaymentStatusPaid {
		return ErrInvalidOrderStatus
	}
	if amount <= 0 || o.AmountRefunded+amount > o.Amount {
		return ErrInvalidAmount
	}
	o.AmountRefunded += amount
	if o.AmountRefunded >= o.Amount {
		o.Status = PaymentStatusRefunded
	}
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// IsFinal reports whether the order is in a terminal state.
func (o *PaymentOrder) IsFinal() bool {
	switch o.Status {
	case PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsRefundable reports whether a refund may be issued against this order.
func (o *PaymentOrder) IsRefundable() bool {
	return o.Status == PaymentStatusPaid
}

// RefundRecord is the provider-agnostic result of a refund operation, always
// tied to exactly one previously paid order.
type RefundRecord struct {
	ID               string       `json:"id"`
	OrderID          string       `json:"order_id"`
	ProviderRefundID string       `json:"provider_refund_id"`
	Provider         string       `json:"provider"`
	Amount           float64      `json:"amount"`
	Currency         string       `json:"currency"`
	Status           RefundStatus `json:"status"`
	Reason           string       `json:"reason,omitempty"`
	ProcessedAt      *time.Time   `json:"processed_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}
